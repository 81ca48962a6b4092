package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"stowaway/internal/secrets"
	"stowaway/internal/services"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCredentials resolves and validates upload credentials.
func CheckCredentials(source CredentialSource) (secrets.Credentials, Result) {
	const name = "FTP credentials"

	if source == nil {
		return secrets.Credentials{}, Result{Name: name, Detail: "no credential source"}
	}
	creds, err := source()
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return creds, Result{Name: name, Detail: "not stored (run: stowaway credentials set)"}
		}
		return creds, Result{Name: name, Detail: err.Error()}
	}
	if err := creds.Validate(); err != nil {
		return creds, Result{Name: name, Detail: err.Error()}
	}
	return creds, Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s@%s", creds.User, creds.Address())}
}

// CheckFTP logs in to the server once with a bounded timeout.
func CheckFTP(ctx context.Context, pinger Pinger, creds secrets.Credentials, timeout time.Duration) Result {
	const name = "FTP server"

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := pinger.Ping(checkCtx, creds); err != nil {
		return Result{Name: name, Detail: summarizeFTPError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (login ok)", creds.Address())}
}

func summarizeFTPError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "login timed out (server unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "login timed out (server unreachable)"
	}
	return err.Error()
}
