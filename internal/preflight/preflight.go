package preflight

import (
	"context"
	"path/filepath"

	"stowaway/internal/config"
	"stowaway/internal/secrets"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// CredentialSource resolves the credentials an upload would use.
type CredentialSource func() (secrets.Credentials, error)

// Pinger verifies that a server accepts the given login.
type Pinger interface {
	Ping(ctx context.Context, creds secrets.Credentials) error
}

// RunAll executes every applicable check. The FTP check runs only when
// credentials resolve and a pinger is supplied.
func RunAll(ctx context.Context, cfg *config.Config, source CredentialSource, pinger Pinger) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Paths.OutputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	}
	results = append(results, CheckDirectoryAccess("List directory", filepath.Dir(cfg.Paths.ListFile)))

	creds, credResult := CheckCredentials(source)
	results = append(results, credResult)
	if credResult.Passed && pinger != nil {
		results = append(results, CheckFTP(ctx, pinger, creds, cfg.FTPTimeout()))
	}
	return results
}
