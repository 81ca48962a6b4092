package polyglot

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"stowaway/internal/fileutil"
	"stowaway/internal/logging"
	"stowaway/internal/services"
)

const (
	outputSuffix     = "_payload"
	defaultExtension = ".png"
)

// InjectResult describes a produced polyglot file.
type InjectResult struct {
	OutputPath      string
	Size            int64
	HostSize        int64
	UsedPlaceholder bool
}

// Builder writes host-plus-archive files. It never touches the entry list.
type Builder struct {
	placeholder PlaceholderSource
	workDir     string
	logger      *slog.Logger
}

// BuilderOption customizes a Builder.
type BuilderOption func(*Builder)

// WithPlaceholder overrides the source used when the host file is missing.
func WithPlaceholder(source PlaceholderSource) BuilderOption {
	return func(b *Builder) {
		if source != nil {
			b.placeholder = source
		}
	}
}

// WithWorkDir sets the output directory used when neither the host nor the
// payload path carries a directory. Empty means the process working directory.
func WithWorkDir(dir string) BuilderOption {
	return func(b *Builder) { b.workDir = dir }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder constructs a Builder with the procedural PNG placeholder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{placeholder: DefaultPlaceholder{}, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.NewComponentLogger(b.logger, "polyglot")
	return b
}

// Inject embeds the file at payloadPath into the host at hostPath and writes
// the result as <payload>_payload<hostExt> in the resolved output directory.
func (b *Builder) Inject(hostPath, payloadPath string) (InjectResult, error) {
	hostPath = strings.TrimSpace(hostPath)
	payloadPath = strings.TrimSpace(payloadPath)

	if payloadPath == "" {
		return InjectResult{}, services.Wrap(services.ErrNotFound, "polyglot", "inject", "payload path is empty", nil)
	}
	payloadInfo, err := os.Stat(payloadPath)
	if err != nil || !payloadInfo.Mode().IsRegular() {
		return InjectResult{}, services.Wrap(services.ErrNotFound, "polyglot", "inject",
			fmt.Sprintf("payload %q not found", payloadPath), err)
	}

	host, usedPlaceholder, err := b.hostBytes(hostPath)
	if err != nil {
		return InjectResult{}, err
	}

	payload, err := os.Open(payloadPath)
	if err != nil {
		return InjectResult{}, services.Wrap(services.ErrIO, "polyglot", "inject",
			fmt.Sprintf("open payload %q", payloadPath), err)
	}
	defer payload.Close()

	data, err := Build(host, filepath.Base(payloadPath), payload, payloadInfo.ModTime())
	if err != nil {
		return InjectResult{}, services.Wrap(services.ErrIO, "polyglot", "inject", "build archive", err)
	}

	outDir, err := b.outputDir(hostPath, payloadPath)
	if err != nil {
		return InjectResult{}, err
	}
	outPath := filepath.Join(outDir, OutputName(hostPath, payloadPath))
	if err := fileutil.WriteFileAtomic(outPath, data, 0o644); err != nil {
		return InjectResult{}, services.Wrap(services.ErrIO, "polyglot", "inject",
			fmt.Sprintf("write %q", outPath), err)
	}

	b.logger.Info("payload injected",
		logging.String("output", outPath),
		logging.Int("host_bytes", len(host)),
		logging.Int("total_bytes", len(data)),
		logging.Bool("placeholder", usedPlaceholder),
		logging.String(logging.FieldEventType, "payload_injected"),
	)
	return InjectResult{
		OutputPath:      outPath,
		Size:            int64(len(data)),
		HostSize:        int64(len(host)),
		UsedPlaceholder: usedPlaceholder,
	}, nil
}

func (b *Builder) hostBytes(hostPath string) ([]byte, bool, error) {
	exists, err := fileutil.IsRegularFile(hostPath)
	if err != nil {
		return nil, false, services.Wrap(services.ErrIO, "polyglot", "inject",
			fmt.Sprintf("stat host %q", hostPath), err)
	}
	if exists {
		data, err := os.ReadFile(hostPath)
		if err != nil {
			return nil, false, services.Wrap(services.ErrIO, "polyglot", "inject",
				fmt.Sprintf("read host %q", hostPath), err)
		}
		return data, false, nil
	}

	if hostPath != "" {
		logging.WarnWithContext(b.logger, "host file missing; using placeholder image", "host_missing",
			logging.String("host", hostPath),
			logging.String(logging.FieldImpact, "output carries the built-in placeholder instead of the host media"),
			logging.String(logging.FieldErrorHint, "check the entry's host path"),
		)
	}
	if b.placeholder == nil {
		return nil, false, services.Wrap(services.ErrResourceMissing, "polyglot", "inject", "no placeholder image configured", nil)
	}
	data, err := b.placeholder.PlaceholderPNG()
	if err != nil || len(data) == 0 {
		return nil, false, services.Wrap(services.ErrResourceMissing, "polyglot", "inject", "placeholder image unavailable", err)
	}
	return data, true, nil
}

func (b *Builder) outputDir(hostPath, payloadPath string) (string, error) {
	if dir := dirOf(hostPath); dir != "" {
		return dir, nil
	}
	if dir := dirOf(payloadPath); dir != "" {
		return dir, nil
	}
	if b.workDir != "" {
		return b.workDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", services.Wrap(services.ErrIO, "polyglot", "inject", "resolve working directory", err)
	}
	return wd, nil
}

// OutputName returns <payloadBase>_payload<hostExt>, with .png when the host
// path has no extension.
func OutputName(hostPath, payloadPath string) string {
	base := filepath.Base(payloadPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	ext := filepath.Ext(hostPath)
	if ext == "" {
		ext = defaultExtension
	}
	return base + outputSuffix + ext
}

// dirOf returns the directory component of path, or "" for a bare file name.
func dirOf(path string) string {
	if path == "" {
		return ""
	}
	dir := filepath.Dir(path)
	if dir == "." && !strings.HasPrefix(path, "."+string(filepath.Separator)) {
		return ""
	}
	return dir
}
