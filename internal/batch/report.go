package batch

import (
	"stowaway/internal/catalog"
	"stowaway/internal/services"
)

// Failure pairs an entry with the reason it could not be processed.
type Failure struct {
	Entry  catalog.Ref
	Reason error
}

// Kind classifies the failure reason.
func (f Failure) Kind() services.Kind {
	return services.KindOf(f.Reason)
}

// Report is the consolidated outcome of a batch run. Succeeded holds produced
// file paths in processing order.
type Report struct {
	RunID     string
	Operation string
	Succeeded []string
	Failed    []Failure
	Skipped   int
}

// Total returns the number of entries attempted.
func (r Report) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

// OK reports whether nothing failed.
func (r Report) OK() bool {
	return len(r.Failed) == 0
}
