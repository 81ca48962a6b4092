package catalog

import "strings"

// Entry is one row of the working list.
type Entry struct {
	Sequence      int
	Selected      bool
	HostPath      string
	PayloadPath   string
	GeneratedPath string
	HasPayload    bool
	Uploaded      bool
	Description   string
}

// Ref identifies an entry in reports by both position and display number.
type Ref struct {
	Index    int
	Sequence int
}

// Ref returns the report reference for an entry at index.
func (e Entry) Ref(index int) Ref {
	return Ref{Index: index, Sequence: e.Sequence}
}

// ExtractionSource returns the file a payload should be extracted from: the
// generated polyglot when one exists, otherwise the host file.
func (e Entry) ExtractionSource() string {
	if strings.TrimSpace(e.GeneratedPath) != "" {
		return e.GeneratedPath
	}
	return e.HostPath
}

// Pending reports whether a pending-mode batch should process the entry.
func (e Entry) Pending() bool {
	return !e.HasPayload && strings.TrimSpace(e.PayloadPath) != ""
}
