package upload

import (
	"context"
	"io"
)

// chunkReader hands out at most chunkSize bytes per call, checks ctx before
// each chunk, and reports percent sent after each one.
type chunkReader struct {
	ctx      context.Context
	src      io.Reader
	size     int64
	sent     int64
	chunk    int
	progress func(sent int64, percent int)
}

func newChunkReader(ctx context.Context, src io.Reader, size int64, chunk int, progress func(int64, int)) *chunkReader {
	if chunk <= 0 {
		chunk = 81920
	}
	if progress == nil {
		progress = func(int64, int) {}
	}
	return &chunkReader{ctx: ctx, src: src, size: size, chunk: chunk, progress: progress}
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	if len(p) > c.chunk {
		p = p[:c.chunk]
	}
	n, err := c.src.Read(p)
	if n > 0 {
		c.advance(n)
	}
	return n, err
}

// WriteTo lets io.Copy move exactly chunk-sized blocks.
func (c *chunkReader) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, c.chunk)
	var total int64
	for {
		if err := c.ctx.Err(); err != nil {
			return total, err
		}
		n, rerr := io.ReadFull(c.src, buf)
		if n > 0 {
			written, werr := w.Write(buf[:n])
			total += int64(written)
			if written > 0 {
				c.advance(written)
			}
			if werr != nil {
				return total, werr
			}
			if written != n {
				return total, io.ErrShortWrite
			}
		}
		switch rerr {
		case nil:
		case io.EOF, io.ErrUnexpectedEOF:
			return total, nil
		default:
			return total, rerr
		}
	}
}

func (c *chunkReader) advance(n int) {
	c.sent += int64(n)
	c.progress(c.sent, percentOf(c.sent, c.size))
}

func percentOf(sent, size int64) int {
	if size <= 0 {
		return 100
	}
	pct := int(sent * 100 / size)
	if pct > 100 {
		pct = 100
	}
	return pct
}
