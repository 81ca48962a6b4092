package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"stowaway/internal/catalog"
	"stowaway/internal/logging"
	"stowaway/internal/polyglot"
	"stowaway/internal/services"
)

const (
	OperationInject  = "inject"
	OperationExtract = "extract"
)

// Injector produces polyglot files. *polyglot.Builder satisfies it.
type Injector interface {
	Inject(hostPath, payloadPath string) (polyglot.InjectResult, error)
}

// Extractor recovers appended archives. *polyglot.Scanner satisfies it.
type Extractor interface {
	Extract(sourcePath string) (polyglot.ExtractResult, error)
}

// Processor applies inject and extract across registry entries.
type Processor struct {
	registry  *catalog.Registry
	injector  Injector
	extractor Extractor
	logger    *slog.Logger
}

// NewProcessor wires a processor over registry.
func NewProcessor(registry *catalog.Registry, injector Injector, extractor Extractor, logger *slog.Logger) *Processor {
	return &Processor{
		registry:  registry,
		injector:  injector,
		extractor: extractor,
		logger:    logging.NewComponentLogger(logger, "batch"),
	}
}

// InjectSelected injects every listed entry, ignoring HasPayload.
func (p *Processor) InjectSelected(ctx context.Context, indices []int) Report {
	return p.run(ctx, OperationInject, indices, false)
}

// ExtractSelected extracts every listed entry, ignoring HasPayload.
func (p *Processor) ExtractSelected(ctx context.Context, indices []int) Report {
	return p.run(ctx, OperationExtract, indices, false)
}

// InjectPending injects every entry that has a payload path and no payload yet.
func (p *Processor) InjectPending(ctx context.Context) Report {
	return p.run(ctx, OperationInject, p.allIndices(), true)
}

// ExtractPending extracts every entry that has a payload path and no payload
// yet. The filter matches InjectPending.
func (p *Processor) ExtractPending(ctx context.Context) Report {
	return p.run(ctx, OperationExtract, p.allIndices(), true)
}

func (p *Processor) allIndices() []int {
	n := p.registry.Len()
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func (p *Processor) run(ctx context.Context, operation string, indices []int, pendingOnly bool) Report {
	if ctx == nil {
		ctx = context.Background()
	}
	report := Report{RunID: uuid.NewString(), Operation: operation}
	ctx = services.WithRunID(ctx, report.RunID)
	ctx = services.WithOperation(ctx, operation)
	logger := logging.WithContext(ctx, p.logger)

	logger.Info("batch started",
		logging.Int("entries", len(indices)),
		logging.Bool("pending_only", pendingOnly),
		logging.String(logging.FieldEventType, "batch_started"),
	)

	for _, idx := range indices {
		entry, err := p.registry.Get(idx)
		if err != nil {
			report.Failed = append(report.Failed, Failure{
				Entry:  catalog.Ref{Index: idx, Sequence: idx + 1},
				Reason: services.Wrap(services.ErrValidation, "batch", operation, "", err),
			})
			continue
		}
		if pendingOnly && !entry.Pending() {
			report.Skipped++
			continue
		}

		entryCtx := services.WithEntry(ctx, entry.Sequence)
		output, err := p.processEntry(operation, idx, entry)
		if err != nil {
			report.Failed = append(report.Failed, Failure{Entry: entry.Ref(idx), Reason: err})
			logging.WarnWithContext(logging.WithContext(entryCtx, p.logger), operation+" failed", operation+"_failed",
				logging.Error(err),
				logging.String("kind", string(services.KindOf(err))),
				logging.String(logging.FieldImpact, "entry left unchanged"),
			)
			continue
		}
		report.Succeeded = append(report.Succeeded, output)
	}

	logger.Info("batch finished",
		logging.Int("succeeded", len(report.Succeeded)),
		logging.Int("failed", len(report.Failed)),
		logging.Int("skipped", report.Skipped),
		logging.String(logging.FieldEventType, "batch_finished"),
	)
	return report
}

func (p *Processor) processEntry(operation string, idx int, entry catalog.Entry) (output string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = services.Wrap(services.ErrIO, "batch", operation, fmt.Sprintf("unexpected panic: %v", r), nil)
		}
	}()

	switch operation {
	case OperationInject:
		if strings.TrimSpace(entry.PayloadPath) == "" {
			return "", services.Wrap(services.ErrNotFound, "batch", operation, "entry has no payload file", nil)
		}
		res, err := p.injector.Inject(entry.HostPath, entry.PayloadPath)
		if err != nil {
			return "", err
		}
		if err := p.registry.Update(idx, func(e *catalog.Entry) {
			e.HasPayload = true
			e.GeneratedPath = res.OutputPath
		}); err != nil {
			return "", services.Wrap(services.ErrIO, "batch", operation, "record result", err)
		}
		return res.OutputPath, nil
	case OperationExtract:
		res, err := p.extractor.Extract(entry.ExtractionSource())
		if err != nil {
			return "", err
		}
		return res.ArchivePath, nil
	default:
		return "", services.Wrap(services.ErrValidation, "batch", operation, "unknown operation", nil)
	}
}
