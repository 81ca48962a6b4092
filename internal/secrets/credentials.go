package secrets

import (
	"net"
	"strconv"
	"strings"

	"stowaway/internal/services"
)

// DefaultPort is the FTP control port used when none is stored.
const DefaultPort = 21

// Credentials identify and authenticate against the upload server.
type Credentials struct {
	Host     string `msgpack:"host"`
	Port     int    `msgpack:"port"`
	User     string `msgpack:"user"`
	Password string `msgpack:"password"`
}

// Address returns host:port, defaulting the port.
func (c Credentials) Address() string {
	port := c.Port
	if port <= 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(strings.TrimSpace(c.Host), strconv.Itoa(port))
}

// Validate checks the fields required to connect.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return services.Wrap(services.ErrConfiguration, "secrets", "validate", "ftp host is empty", nil)
	}
	if c.Port < 0 || c.Port > 65535 {
		return services.Wrap(services.ErrConfiguration, "secrets", "validate", "ftp port out of range", nil)
	}
	if strings.TrimSpace(c.User) == "" {
		return services.Wrap(services.ErrConfiguration, "secrets", "validate", "ftp user is empty", nil)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Credentials) Redacted() Credentials {
	if c.Password != "" {
		c.Password = "********"
	}
	return c
}
