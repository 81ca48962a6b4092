package logging

import "strings"

// ProgressSampler throttles per-file upload progress logs to bucket crossings.
// Switching to a new file always emits.
type ProgressSampler struct {
	bucketSize float64
	lastFile   string
	lastBucket int
}

// NewProgressSampler constructs a sampler with the given bucket width in
// percent (default 10).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event for file at percent should be
// logged. Negative percent means unknown and only file changes emit.
func (s *ProgressSampler) ShouldLog(file string, percent float64) bool {
	if s == nil {
		return true
	}
	file = strings.TrimSpace(file)
	emit := false
	if file != "" && file != s.lastFile {
		s.lastFile = file
		s.lastBucket = -1
		emit = true
	}
	if percent < 0 {
		return emit
	}
	if percent > 100 {
		percent = 100
	}
	if bucket := int(percent / s.bucketSize); bucket > s.lastBucket {
		s.lastBucket = bucket
		emit = true
	}
	return emit
}

// Reset clears the sampler state before a new run.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastFile = ""
	s.lastBucket = -1
}
