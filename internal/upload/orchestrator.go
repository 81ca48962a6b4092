package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"stowaway/internal/catalog"
	"stowaway/internal/history"
	"stowaway/internal/logging"
	"stowaway/internal/secrets"
	"stowaway/internal/services"
)

// DefaultChunkSize is the transfer block size when none is configured.
const DefaultChunkSize = 81920

// Journal records per-file outcomes. *history.Store satisfies it.
type Journal interface {
	Record(ctx context.Context, attempt history.Attempt) error
}

// Request carries one upload run's inputs.
type Request struct {
	Items       []Item
	Credentials secrets.Credentials
	Resolver    ConflictResolver
	Sink        ProgressSink
	// OnUploaded runs after each successful transfer.
	OnUploaded func(catalog.Ref)
}

// Options configures an Orchestrator.
type Options struct {
	ChunkSize int
	// StrictExistenceCheck reports size-query failures other than "file
	// unavailable" as auth/connectivity failures and skips the transfer.
	StrictExistenceCheck bool
	ProgressBucket       float64
	Journal              Journal
	Logger               *slog.Logger
}

// Orchestrator runs uploads over a Transport.
type Orchestrator struct {
	transport Transport
	chunkSize int
	strict    bool
	bucket    float64
	journal   Journal
	logger    *slog.Logger
}

// NewOrchestrator wires an orchestrator.
func NewOrchestrator(transport Transport, opts Options) *Orchestrator {
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	return &Orchestrator{
		transport: transport,
		chunkSize: chunk,
		strict:    opts.StrictExistenceCheck,
		bucket:    opts.ProgressBucket,
		journal:   opts.Journal,
		logger:    logging.NewComponentLogger(opts.Logger, "upload"),
	}
}

type runState struct {
	ctx     context.Context
	req     Request
	result  Result
	session Session
	sampler *logging.ProgressSampler
	logger  *slog.Logger
	done    int
	total   int
}

// Upload transfers req.Items in order and returns every outcome.
func (o *Orchestrator) Upload(ctx context.Context, req Request) Result {
	return o.upload(ctx, uuid.NewString(), req)
}

func (o *Orchestrator) upload(ctx context.Context, runID string, req Request) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Sink == nil {
		req.Sink = NopSink{}
	}
	if req.Resolver == nil {
		req.Resolver = FixedResolver(Skip)
	}
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithOperation(ctx, "upload")

	rs := &runState{
		ctx:     ctx,
		req:     req,
		result:  Result{RunID: runID, State: StateRunning},
		sampler: logging.NewProgressSampler(o.bucket),
		logger:  logging.WithContext(ctx, o.logger),
		total:   len(req.Items),
	}
	defer rs.closeSession()

	rs.logger.Info("upload started",
		logging.Int("files", rs.total),
		logging.String("server", req.Credentials.Address()),
		logging.String(logging.FieldEventType, "upload_started"),
	)

	rs.result.State = StateCompleted
	for i, item := range req.Items {
		if ctx.Err() != nil {
			rs.result.State = StateCancelled
			break
		}
		if !o.uploadOne(rs, i, item) {
			rs.result.State = StateCancelled
			break
		}
	}

	rs.logger.Info("upload finished",
		logging.String("state", rs.result.State.String()),
		logging.Int("succeeded", len(rs.result.Succeeded)),
		logging.Int("failed", len(rs.result.Failed)),
		logging.Int64("bytes", rs.result.Bytes),
		logging.String(logging.FieldEventType, "upload_finished"),
	)
	return rs.result
}

// uploadOne processes a single item and reports whether the batch continues.
func (o *Orchestrator) uploadOne(rs *runState, position int, item Item) (keepGoing bool) {
	name := item.RemoteName()
	ctx := services.WithEntry(rs.ctx, item.Entry.Sequence)
	logger := logging.WithContext(ctx, o.logger)
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			rs.closeSession()
			o.fail(rs, item, name, services.KindTransfer,
				services.Wrap(services.ErrTransfer, "upload", "store", fmt.Sprintf("unexpected panic: %v", r), nil), started)
			keepGoing = true
		}
	}()

	rs.req.Sink.FileStarted(name, position+1, rs.total)

	size, ok := localSize(item.LocalPath)
	if !ok {
		o.fail(rs, item, name, services.KindLocalMissing,
			services.Wrap(services.ErrNotFound, "upload", "local check", fmt.Sprintf("local file %q missing", item.LocalPath), nil), started)
		return true
	}

	session, err := rs.ensureSession(o.transport)
	if err != nil {
		if ctx.Err() != nil {
			o.fail(rs, item, name, services.KindCancelled, services.Wrap(services.ErrCancelled, "upload", "connect", "", ctx.Err()), started)
			return false
		}
		kind, marker := services.KindTransfer, services.ErrTransfer
		if o.strict {
			kind, marker = services.KindAuthOrConnectivity, services.ErrAuthOrConnectivity
		}
		o.fail(rs, item, name, kind, services.Wrap(marker, "upload", "connect", rs.req.Credentials.Address(), err), started)
		return true
	}

	exists, err := o.remoteExists(ctx, session, name)
	if ctx.Err() != nil {
		o.fail(rs, item, name, services.KindCancelled, services.Wrap(services.ErrCancelled, "upload", "existence check", name, ctx.Err()), started)
		return false
	}
	if err != nil {
		rs.closeSession()
		o.fail(rs, item, name, services.KindAuthOrConnectivity, err, started)
		return true
	}
	if exists {
		decision := rs.req.Resolver.Decide(name)
		logger.Info("remote file exists",
			logging.String("name", name),
			logging.String("decision", decision.String()),
			logging.String(logging.FieldEventType, "conflict_decided"),
		)
		switch decision {
		case Skip:
			o.fail(rs, item, name, services.KindRemoteConflictSkipped,
				services.Wrap(services.ErrRemoteConflictSkipped, "upload", "conflict", fmt.Sprintf("%q exists on server", name), nil), started)
			return true
		case CancelAll:
			rs.req.Sink.Log(fmt.Sprintf("upload cancelled at %s", name))
			return false
		}
	}

	if err := o.store(ctx, rs, session, name, item.LocalPath, size); err != nil {
		rs.closeSession()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			o.fail(rs, item, name, services.KindCancelled,
				services.Wrap(services.ErrCancelled, "upload", "store", fmt.Sprintf("transfer of %q interrupted", name), nil), started)
			return false
		}
		o.fail(rs, item, name, services.KindTransfer, services.Wrap(services.ErrTransfer, "upload", "store", name, err), started)
		return true
	}

	rs.result.Succeeded = append(rs.result.Succeeded, item.Entry)
	rs.result.Bytes += size
	if rs.req.OnUploaded != nil {
		rs.req.OnUploaded(item.Entry)
	}
	rs.done++
	rs.req.Sink.Overall(rs.done, rs.total)
	rs.req.Sink.Log(fmt.Sprintf("uploaded %s", name))
	o.record(ctx, rs, item, name, history.OutcomeUploaded, "", size, started)
	logger.Info("file uploaded",
		logging.String("name", name),
		logging.Int64("bytes", size),
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldEventType, "file_uploaded"),
	)
	return true
}

// remoteExists returns (false, nil) for "not there". With strict checking,
// query failures other than file-unavailable come back as errors.
func (o *Orchestrator) remoteExists(ctx context.Context, session Session, name string) (bool, error) {
	_, err := session.Size(ctx, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, services.ErrNotFound) || !o.strict {
		return false, nil
	}
	return false, services.Wrap(services.ErrAuthOrConnectivity, "upload", "existence check", name, err)
}

func (o *Orchestrator) store(ctx context.Context, rs *runState, session Session, name, localPath string, size int64) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	rs.sampler.Reset()
	reader := newChunkReader(ctx, file, size, o.chunkSize, func(sent int64, percent int) {
		rs.req.Sink.FileProgress(name, percent)
		if rs.sampler.ShouldLog(name, float64(percent)) {
			rs.logger.Debug("upload progress",
				logging.String("name", name),
				logging.Int("percent", percent),
				logging.Int64("sent", sent),
				logging.Int64("size", size),
			)
		}
	})
	rs.req.Sink.FileProgress(name, 0)
	if err := session.Store(ctx, name, reader); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil && reader.sent < size {
		return err
	}
	rs.req.Sink.FileProgress(name, 100)
	return nil
}

func (o *Orchestrator) fail(rs *runState, item Item, name string, kind services.Kind, reason error, started time.Time) {
	rs.result.Failed = append(rs.result.Failed, Failure{Entry: item.Entry, Name: name, Kind: kind, Reason: reason})
	rs.done++
	rs.req.Sink.Overall(rs.done, rs.total)
	rs.req.Sink.Log(fmt.Sprintf("%s: %s", name, kind))
	o.record(rs.ctx, rs, item, name, string(kind), reason.Error(), 0, started)
	logging.WarnWithContext(logging.WithContext(services.WithEntry(rs.ctx, item.Entry.Sequence), o.logger),
		"file not uploaded", "upload_failed",
		logging.String("name", name),
		logging.String("kind", string(kind)),
		logging.Error(reason),
		logging.String(logging.FieldImpact, "entry stays marked as not uploaded"),
	)
}

func (o *Orchestrator) record(ctx context.Context, rs *runState, item Item, name, outcome, detail string, size int64, started time.Time) {
	if o.journal == nil {
		return
	}
	attempt := history.Attempt{
		RunID:      rs.result.RunID,
		Sequence:   item.Entry.Sequence,
		LocalPath:  item.LocalPath,
		RemoteName: name,
		Server:     rs.req.Credentials.Address(),
		Outcome:    outcome,
		Detail:     detail,
		Bytes:      size,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	// A cancelled run context must not drop the journal row.
	if err := o.journal.Record(context.WithoutCancel(ctx), attempt); err != nil {
		logging.WarnWithContext(o.logger, "upload journal write failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "attempt missing from history"),
		)
	}
}

func (rs *runState) ensureSession(transport Transport) (Session, error) {
	if rs.session != nil {
		return rs.session, nil
	}
	if transport == nil {
		return nil, errors.New("no transport configured")
	}
	session, err := transport.Connect(rs.ctx, rs.req.Credentials)
	if err != nil {
		return nil, err
	}
	rs.session = session
	return session, nil
}

func (rs *runState) closeSession() {
	if rs.session == nil {
		return
	}
	_ = rs.session.Close()
	rs.session = nil
}

func localSize(path string) (int64, bool) {
	if strings.TrimSpace(path) == "" {
		return 0, false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}

func remoteName(localPath string) string {
	return filepath.Base(strings.TrimSpace(localPath))
}
