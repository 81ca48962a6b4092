package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"stowaway/internal/services"
)

var foldCase = cases.Fold()

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff", ".webp", ".heic", ".heif"}

var videoExtensions = []string{".mp4", ".mov", ".m4v", ".avi", ".wmv", ".mkv", ".webm", ".3gp", ".3g2", ".mpeg", ".mpg"}

var allowedExtensions = func() map[string]struct{} {
	set := make(map[string]struct{}, len(imageExtensions)+len(videoExtensions))
	for _, ext := range imageExtensions {
		set[ext] = struct{}{}
	}
	for _, ext := range videoExtensions {
		set[ext] = struct{}{}
	}
	return set
}()

// AllowedExtensions returns the host file extensions the photo service accepts.
func AllowedExtensions() []string {
	out := make([]string, 0, len(imageExtensions)+len(videoExtensions))
	out = append(out, imageExtensions...)
	return append(out, videoExtensions...)
}

// IsAllowedFileName reports whether name carries an accepted host extension.
// Comparison ignores case.
func IsAllowedFileName(name string) bool {
	ext := filepath.Ext(strings.TrimSpace(name))
	if ext == "" {
		return false
	}
	_, ok := allowedExtensions[foldCase.String(ext)]
	return ok
}

// ValidateHostPath accepts an empty path (placeholder host) or a path with an
// allowed extension.
func ValidateHostPath(path string) error {
	if strings.TrimSpace(path) == "" || IsAllowedFileName(path) {
		return nil
	}
	return services.Wrap(
		services.ErrValidation,
		"catalog",
		"validate host",
		fmt.Sprintf("%q is not an uploadable image or video (allowed: %s)", filepath.Base(path), strings.Join(AllowedExtensions(), " ")),
		nil,
	)
}
