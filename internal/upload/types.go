package upload

import (
	"fmt"
	"strings"

	"stowaway/internal/catalog"
	"stowaway/internal/config"
	"stowaway/internal/services"
)

// Decision is a ConflictResolver answer for an existing remote file.
type Decision int

const (
	Overwrite Decision = iota
	Skip
	CancelAll
)

func (d Decision) String() string {
	switch d {
	case Overwrite:
		return "overwrite"
	case Skip:
		return "skip"
	case CancelAll:
		return "cancel"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// ConflictResolver decides what to do when the remote name already exists.
type ConflictResolver interface {
	Decide(name string) Decision
}

// ResolverFunc adapts a function to ConflictResolver.
type ResolverFunc func(name string) Decision

func (f ResolverFunc) Decide(name string) Decision { return f(name) }

// FixedResolver always returns the same decision.
type FixedResolver Decision

func (r FixedResolver) Decide(string) Decision { return Decision(r) }

// ResolverForPolicy maps a config conflict policy to a resolver. The ask
// policy returns ask, which must be non-nil.
func ResolverForPolicy(policy string, ask ConflictResolver) (ConflictResolver, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case config.ConflictOverwrite:
		return FixedResolver(Overwrite), nil
	case config.ConflictSkip:
		return FixedResolver(Skip), nil
	case config.ConflictCancel:
		return FixedResolver(CancelAll), nil
	case config.ConflictAsk, "":
		if ask == nil {
			return nil, services.Wrap(services.ErrConfiguration, "upload", "conflict policy", "ask policy needs an interactive terminal", nil)
		}
		return ask, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "upload", "conflict policy", fmt.Sprintf("unknown policy %q", policy), nil)
	}
}

// ProgressSink receives progress from the upload goroutine. Implementations
// must be safe to call from a goroutine other than the one that started the
// upload.
type ProgressSink interface {
	FileStarted(name string, position, total int)
	FileProgress(name string, percent int)
	Overall(done, total int)
	Log(message string)
}

// NopSink discards progress.
type NopSink struct{}

func (NopSink) FileStarted(string, int, int) {}
func (NopSink) FileProgress(string, int)     {}
func (NopSink) Overall(int, int)             {}
func (NopSink) Log(string)                   {}

// Item is one file to upload.
type Item struct {
	Entry     catalog.Ref
	LocalPath string
}

// RemoteName is the name the file is stored under on the server.
func (i Item) RemoteName() string {
	return remoteName(i.LocalPath)
}

// State is the orchestrator lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCancelled
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Failure records why a file was not uploaded.
type Failure struct {
	Entry  catalog.Ref
	Name   string
	Kind   services.Kind
	Reason error
}

// Result is the outcome of one upload run.
type Result struct {
	RunID     string
	State     State
	Succeeded []catalog.Ref
	Failed    []Failure
	Bytes     int64
}
