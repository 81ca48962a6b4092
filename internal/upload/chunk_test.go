package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

type recordingWriter struct {
	writes []int
	buf    bytes.Buffer
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.writes = append(w.writes, len(p))
	return w.buf.Write(p)
}

func TestChunkReaderWriteToUsesFixedBlocks(t *testing.T) {
	data := bytes.Repeat([]byte{7}, 2500)
	var percents []int
	r := newChunkReader(context.Background(), bytes.NewReader(data), int64(len(data)), 1000, func(_ int64, pct int) {
		percents = append(percents, pct)
	})
	w := &recordingWriter{}
	n, err := io.Copy(w, r)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n != 2500 || !bytes.Equal(w.buf.Bytes(), data) {
		t.Fatalf("copied %d bytes", n)
	}
	if len(w.writes) != 3 || w.writes[0] != 1000 || w.writes[1] != 1000 || w.writes[2] != 500 {
		t.Fatalf("unexpected block sizes %v", w.writes)
	}
	if len(percents) != 3 || percents[0] != 40 || percents[2] != 100 {
		t.Fatalf("unexpected percents %v", percents)
	}
}

func TestChunkReaderStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	data := bytes.Repeat([]byte{1}, 3000)
	r := newChunkReader(ctx, bytes.NewReader(data), 3000, 1000, func(sent int64, _ int) {
		if sent >= 1000 {
			cancel()
		}
	})
	n, err := io.Copy(io.Discard, r)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n != 1000 {
		t.Fatalf("expected one chunk before cancel, got %d", n)
	}
}

func TestPercentOf(t *testing.T) {
	tests := []struct {
		sent, size int64
		want       int
	}{
		{0, 0, 100},
		{0, 10, 0},
		{5, 10, 50},
		{10, 10, 100},
		{12, 10, 100},
	}
	for _, tt := range tests {
		if got := percentOf(tt.sent, tt.size); got != tt.want {
			t.Errorf("percentOf(%d, %d) = %d, want %d", tt.sent, tt.size, got, tt.want)
		}
	}
}
