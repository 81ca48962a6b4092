package upload

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"stowaway/internal/catalog"
)

// Run is a background upload started by Launch.
type Run struct {
	ID     string
	cancel context.CancelFunc
	done   chan struct{}
	state  atomic.Int32
	once   sync.Once
	result Result
}

// Launch snapshots the registry's selected entries, freezes the registry, and
// uploads them in a goroutine. Each success sets the entry's Uploaded flag.
// Launch fails with catalog.ErrFrozen when another run holds the registry.
func (o *Orchestrator) Launch(ctx context.Context, registry *catalog.Registry, req Request) (*Run, error) {
	release, err := registry.Freeze()
	if err != nil {
		return nil, err
	}

	snapshot := registry.Snapshot()
	items := make([]Item, 0, len(snapshot))
	for idx, entry := range snapshot {
		if !entry.Selected {
			continue
		}
		items = append(items, Item{Entry: entry.Ref(idx), LocalPath: entry.GeneratedPath})
	}
	req.Items = items

	userHook := req.OnUploaded
	req.OnUploaded = func(ref catalog.Ref) {
		_ = registry.SetUploaded(ref.Index, true)
		if userHook != nil {
			userHook(ref)
		}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	run := &Run{ID: uuid.NewString(), cancel: cancel, done: make(chan struct{})}
	run.state.Store(int32(StateRunning))

	go func() {
		defer close(run.done)
		defer release()
		defer cancel()
		res := o.upload(runCtx, run.ID, req)
		run.result = res
		run.state.Store(int32(res.State))
	}()
	return run, nil
}

// Cancel requests a cooperative stop. The current chunk write finishes first.
func (r *Run) Cancel() {
	r.once.Do(r.cancel)
}

// Done is closed when the run finishes.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes and returns its result.
func (r *Run) Wait() Result {
	<-r.done
	return r.result
}

// State reports the current lifecycle state.
func (r *Run) State() State {
	return State(r.state.Load())
}
