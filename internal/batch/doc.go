// Package batch runs inject and extract over many catalog entries.
//
// Each entry is processed on its own; a failure is recorded in the Report and
// the loop moves on. Selected-mode calls act on an explicit index list and
// redo work already done. Pending-mode calls walk the whole list and skip
// entries that already carry a payload or have no payload path.
package batch
