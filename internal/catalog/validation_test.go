package catalog_test

import (
	"errors"
	"testing"

	"stowaway/internal/catalog"
	"stowaway/internal/services"
)

func TestIsAllowedFileName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"photo.jpg", true},
		{"PHOTO.JPEG", true},
		{"clip.Mp4", true},
		{"/a/b/movie.3g2", true},
		{"scan.heic", true},
		{"notes.txt", false},
		{"archive.zip", false},
		{"noext", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := catalog.IsAllowedFileName(tt.name); got != tt.want {
			t.Errorf("IsAllowedFileName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestValidateHostPath(t *testing.T) {
	if err := catalog.ValidateHostPath(""); err != nil {
		t.Fatalf("empty host should be accepted: %v", err)
	}
	if err := catalog.ValidateHostPath("a.png"); err != nil {
		t.Fatalf("png should be accepted: %v", err)
	}
	err := catalog.ValidateHostPath("a.txt")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
