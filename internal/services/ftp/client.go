package ftp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/textproto"
	"time"

	"github.com/jlaffaye/ftp"

	"stowaway/internal/logging"
	"stowaway/internal/secrets"
	"stowaway/internal/services"
	"stowaway/internal/upload"
)

// conn is the subset of *ftp.ServerConn the session uses.
type conn interface {
	Login(user, password string) error
	FileSize(path string) (int64, error)
	Stor(path string, r io.Reader) error
	Quit() error
}

// Dialer opens a control connection.
type Dialer func(ctx context.Context, addr string, timeout time.Duration) (conn, error)

// Option configures the client.
type Option func(*Client)

// WithTimeout sets the dial and command timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDialer replaces the network dialer (primarily for tests).
func WithDialer(d Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dial = d
		}
	}
}

// Client implements upload.Transport over FTP.
type Client struct {
	timeout time.Duration
	dial    Dialer
	logger  *slog.Logger
}

// New constructs a Client with a 30 second timeout.
func New(opts ...Option) *Client {
	c := &Client{timeout: 30 * time.Second, dial: dialNetwork, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "ftp")
	return c
}

func dialNetwork(ctx context.Context, addr string, timeout time.Duration) (conn, error) {
	sc, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(timeout))
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// Connect dials the server and logs in.
func (c *Client) Connect(ctx context.Context, creds secrets.Credentials) (upload.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	addr := creds.Address()
	sc, err := c.dial(ctx, addr, c.timeout)
	if err != nil {
		return nil, services.Wrap(services.ErrAuthOrConnectivity, "ftp", "dial", addr, err)
	}
	if err := sc.Login(creds.User, creds.Password); err != nil {
		_ = sc.Quit()
		return nil, services.Wrap(services.ErrAuthOrConnectivity, "ftp", "login", fmt.Sprintf("user %q", creds.User), err)
	}
	c.logger.Debug("ftp session opened", logging.String("server", addr), logging.String("user", creds.User))
	return &session{conn: sc, addr: addr, logger: c.logger}, nil
}

// Ping connects and disconnects, for preflight checks.
func (c *Client) Ping(ctx context.Context, creds secrets.Credentials) error {
	s, err := c.Connect(ctx, creds)
	if err != nil {
		return err
	}
	return s.Close()
}

type session struct {
	conn   conn
	addr   string
	logger *slog.Logger
}

func (s *session) Size(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	size, err := s.conn.FileSize(name)
	if err != nil {
		if isFileUnavailable(err) {
			return 0, services.Wrap(services.ErrNotFound, "ftp", "size", name, err)
		}
		return 0, services.Wrap(services.ErrAuthOrConnectivity, "ftp", "size", name, err)
	}
	return size, nil
}

func (s *session) Store(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.conn.Stor(name, r); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (s *session) Close() error {
	if err := s.conn.Quit(); err != nil {
		s.logger.Debug("ftp quit failed", logging.String("server", s.addr), logging.Error(err))
		return err
	}
	return nil
}

func isFileUnavailable(err error) bool {
	var tpErr *textproto.Error
	return errors.As(err, &tpErr) && tpErr.Code == ftp.StatusFileUnavailable
}
