package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"stowaway/internal/logging"
	"stowaway/internal/upload"
)

// newProgressSink draws bars on a terminal and plain lines elsewhere.
func newProgressSink(out io.Writer) upload.ProgressSink {
	if isTerminal(out) {
		return &barSink{out: out}
	}
	return &lineSink{out: out, sampler: logging.NewProgressSampler(25)}
}

type barSink struct {
	mu    sync.Mutex
	out   io.Writer
	bar   *progressbar.ProgressBar
	done  int
	total int
}

func (s *barSink) FileStarted(name string, position, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked()
	s.bar = progressbar.NewOptions(100,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetDescription(fmt.Sprintf("[%d/%d] %s", position, total, name)),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
}

func (s *barSink) FileProgress(_ string, percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		_ = s.bar.Set(percent)
	}
}

func (s *barSink) Overall(done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done, s.total = done, total
}

func (s *barSink) Log(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bar != nil {
		_ = s.bar.Clear()
	}
	fmt.Fprintf(s.out, "%s (%d/%d)\n", message, s.done, s.total)
}

// Close removes any bar still on screen.
func (s *barSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishLocked()
}

func (s *barSink) finishLocked() {
	if s.bar != nil {
		_ = s.bar.Finish()
		s.bar = nil
	}
}

type lineSink struct {
	mu      sync.Mutex
	out     io.Writer
	sampler *logging.ProgressSampler
	done    int
	total   int
}

func (s *lineSink) FileStarted(name string, position, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "[%d/%d] %s\n", position, total, name)
}

func (s *lineSink) FileProgress(name string, percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if percent > 0 && percent < 100 && s.sampler.ShouldLog(name, float64(percent)) {
		fmt.Fprintf(s.out, "  %s %d%%\n", name, percent)
	}
}

func (s *lineSink) Overall(done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done, s.total = done, total
}

func (s *lineSink) Log(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "  %s (%d/%d)\n", message, s.done, s.total)
}
