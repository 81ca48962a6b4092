package polyglot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// PlaceholderSource supplies host bytes when an entry has no usable host file.
type PlaceholderSource interface {
	PlaceholderPNG() ([]byte, error)
}

// PlaceholderFunc adapts a function to PlaceholderSource.
type PlaceholderFunc func() ([]byte, error)

func (f PlaceholderFunc) PlaceholderPNG() ([]byte, error) { return f() }

const placeholderSize = 64

// DefaultPlaceholder renders a small two-tone tile as PNG.
type DefaultPlaceholder struct{}

func (DefaultPlaceholder) PlaceholderPNG() ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))
	light := color.NRGBA{R: 0xE8, G: 0xEA, B: 0xED, A: 0xFF}
	dark := color.NRGBA{R: 0x42, G: 0x85, B: 0xF4, A: 0xFF}
	for y := 0; y < placeholderSize; y++ {
		for x := 0; x < placeholderSize; x++ {
			c := light
			if (x/8+y/8)%2 == 0 {
				c = dark
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}
