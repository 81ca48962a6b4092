package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"stowaway/internal/catalog"
	"stowaway/internal/config"
	"stowaway/internal/logging"
	"stowaway/internal/secrets"
	"stowaway/internal/services/ftp"
	"stowaway/internal/upload"
	"stowaway/internal/workspace"
)

// passwordEnv supplies the FTP password when none is stored.
const passwordEnv = "STOWAWAY_FTP_PASSWORD"

// ftpTransport is what upload and doctor need from the FTP client.
type ftpTransport interface {
	upload.Transport
	Ping(ctx context.Context, creds secrets.Credentials) error
}

type commandContext struct {
	configFlag *string
	listFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, listFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		listFlag:   listFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the file+stderr logger once and prunes old logs.
func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
			Dir:     cfg.Paths.LogDir,
			Pattern: "*.log",
			Exclude: []string{cfg.LogFilePath()},
		})
	})
	return c.logger
}

func (c *commandContext) listPath() (string, error) {
	if c.listFlag != nil {
		if flag := strings.TrimSpace(*c.listFlag); flag != "" {
			return config.ExpandPath(flag)
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Paths.ListFile, nil
}

// withWorkspace locks and loads the list file for the duration of fn.
func (c *commandContext) withWorkspace(fn func(*workspace.Workspace) error) error {
	path, err := c.listPath()
	if err != nil {
		return err
	}
	ws, err := workspace.Open(path, c.ensureLogger())
	if err != nil {
		return err
	}
	defer ws.Close()
	return fn(ws)
}

func (c *commandContext) credentialStore() (*secrets.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return secrets.NewStore(cfg.Secrets.KeyFile, cfg.Secrets.CredentialsFile), nil
}

// configCredentials are the non-secret defaults from config.toml plus the
// password environment variable.
func (c *commandContext) configCredentials() secrets.Credentials {
	cfg, err := c.ensureConfig()
	if err != nil {
		return secrets.Credentials{}
	}
	return secrets.Credentials{
		Host:     cfg.FTP.Host,
		Port:     cfg.FTP.Port,
		User:     cfg.FTP.User,
		Password: os.Getenv(passwordEnv),
	}
}

func (c *commandContext) resolveCredentials() (secrets.Credentials, error) {
	store, err := c.credentialStore()
	if err != nil {
		return secrets.Credentials{}, err
	}
	return secrets.Resolve(store, c.configCredentials())
}

func (c *commandContext) transport() ftpTransport {
	cfg, _ := c.ensureConfig()
	return newTransport(cfg, c.ensureLogger())
}

// newTransport is replaced in tests.
var newTransport = func(cfg *config.Config, logger *slog.Logger) ftpTransport {
	opts := []ftp.Option{ftp.WithLogger(logger)}
	if cfg != nil {
		opts = append(opts, ftp.WithTimeout(cfg.FTPTimeout()))
	}
	return ftp.New(opts...)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// resolveSequences maps 1-based entry numbers from args to registry indices.
func resolveSequences(registry *catalog.Registry, args []string) ([]int, error) {
	indices := make([]int, 0, len(args))
	for _, arg := range args {
		seq, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(arg), "#"))
		if err != nil {
			return nil, fmt.Errorf("invalid entry number %q", arg)
		}
		idx, err := registry.IndexOfSequence(seq)
		if err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
