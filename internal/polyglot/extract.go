package polyglot

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"stowaway/internal/fileutil"
	"stowaway/internal/logging"
	"stowaway/internal/services"
)

const extractSuffix = "_extract.zip"

// ExtractResult describes a recovered archive.
type ExtractResult struct {
	ArchivePath string
	Offset      int64
	Size        int64
}

// Scanner recovers appended archives from polyglot files.
type Scanner struct {
	logger *slog.Logger
}

// NewScanner constructs a Scanner. A nil logger discards output.
func NewScanner(logger *slog.Logger) *Scanner {
	return &Scanner{logger: logging.NewComponentLogger(logger, "polyglot")}
}

// Extract copies everything from the rightmost zip signature in sourcePath to
// EOF into <sourceBase>_extract.zip beside the source. The bytes are not
// validated as an archive.
func (s *Scanner) Extract(sourcePath string) (ExtractResult, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return ExtractResult{}, services.Wrap(services.ErrNotFound, "polyglot", "extract", "source path is empty", nil)
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ExtractResult{}, services.Wrap(services.ErrNotFound, "polyglot", "extract",
				fmt.Sprintf("source %q not found", sourcePath), err)
		}
		return ExtractResult{}, services.Wrap(services.ErrIO, "polyglot", "extract",
			fmt.Sprintf("read source %q", sourcePath), err)
	}

	offset := LastSignatureOffset(data)
	if offset < 0 {
		return ExtractResult{}, services.Wrap(services.ErrNotFound, "polyglot", "extract",
			fmt.Sprintf("no embedded archive in %q", filepath.Base(sourcePath)), nil)
	}

	archivePath := ExtractName(sourcePath)
	blob := data[offset:]
	if err := fileutil.WriteFileAtomic(archivePath, blob, 0o644); err != nil {
		return ExtractResult{}, services.Wrap(services.ErrIO, "polyglot", "extract",
			fmt.Sprintf("write %q", archivePath), err)
	}

	s.logger.Info("payload extracted",
		logging.String("source", sourcePath),
		logging.String("archive", archivePath),
		logging.Int("offset", offset),
		logging.Int("archive_bytes", len(blob)),
		logging.String(logging.FieldEventType, "payload_extracted"),
	)
	return ExtractResult{ArchivePath: archivePath, Offset: int64(offset), Size: int64(len(blob))}, nil
}

// ExtractName returns the archive path written for sourcePath.
func ExtractName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(sourcePath), base+extractSuffix)
}

// Unpack writes every file in the archive at archivePath into destDir and
// returns the written paths. Entries that would escape destDir are rejected.
func Unpack(archivePath, destDir string) ([]string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "polyglot", "unpack",
			fmt.Sprintf("open archive %q", archivePath), err)
	}
	defer zr.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "polyglot", "unpack", "resolve destination", err)
	}

	var written []string
	for _, file := range zr.File {
		if file.FileInfo().IsDir() {
			continue
		}
		target := filepath.Join(root, filepath.FromSlash(file.Name))
		if !strings.HasPrefix(target, root+string(filepath.Separator)) {
			return written, services.Wrap(services.ErrValidation, "polyglot", "unpack",
				fmt.Sprintf("entry %q escapes destination", file.Name), nil)
		}
		if err := unpackFile(file, target); err != nil {
			return written, services.Wrap(services.ErrIO, "polyglot", "unpack",
				fmt.Sprintf("write %q", target), err)
		}
		written = append(written, target)
	}
	return written, nil
}

func unpackFile(file *zip.File, target string) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return fileutil.WriteReaderAtomic(target, rc, 0o644)
}
