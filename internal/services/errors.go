package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrResourceMissing       = errors.New("resource missing")
	ErrIO                    = errors.New("io error")
	ErrValidation            = errors.New("validation error")
	ErrConfiguration         = errors.New("configuration error")
	ErrRemoteConflictSkipped = errors.New("remote conflict skipped")
	ErrCancelled             = errors.New("cancelled")
	ErrTransfer              = errors.New("transfer error")
	ErrAuthOrConnectivity    = errors.New("auth or connectivity error")
)

// Kind classifies a failure for consolidated reports and the upload journal.
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindResourceMissing       Kind = "resource_missing"
	KindIO                    Kind = "io_error"
	KindValidation            Kind = "validation"
	KindConfiguration         Kind = "configuration"
	KindLocalMissing          Kind = "local_missing"
	KindRemoteConflictSkipped Kind = "remote_conflict_skipped"
	KindCancelled             Kind = "cancelled"
	KindTransfer              Kind = "transfer_error"
	KindAuthOrConnectivity    Kind = "auth_or_connectivity_error"
	KindUnknown               Kind = "unknown"
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf maps an error to its report classification. Upload-specific kinds
// such as LocalMissing are assigned by the orchestrator, not derived here.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrResourceMissing):
		return KindResourceMissing
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrRemoteConflictSkipped):
		return KindRemoteConflictSkipped
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	case errors.Is(err, ErrAuthOrConnectivity):
		return KindAuthOrConnectivity
	case errors.Is(err, ErrTransfer):
		return KindTransfer
	case errors.Is(err, ErrIO):
		return KindIO
	default:
		return KindUnknown
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
