package upload

import (
	"context"
	"io"

	"stowaway/internal/secrets"
)

// Transport opens sessions against the upload server.
type Transport interface {
	Connect(ctx context.Context, creds secrets.Credentials) (Session, error)
}

// Session is one logged-in connection.
//
// Size returns an error wrapping services.ErrNotFound when the server reports
// the file as unavailable; any other error means the query itself failed.
// Store creates or overwrites name with everything read from r.
type Session interface {
	Size(ctx context.Context, name string) (int64, error)
	Store(ctx context.Context, name string, r io.Reader) error
	Close() error
}
