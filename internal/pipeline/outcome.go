package pipeline

import (
	"fmt"

	"github.com/OfficiallySp/Audiology/internal/metadata"
)

// Stage marks how far a file travelled through the per-file state
// machine. Outcomes carry the furthest stage reached so failures can be
// located precisely.
type Stage int

const (
	StagePending Stage = iota
	StageSampled
	StageRecognized
	StageAwaitingOperator
	StageTagsWritten
	StageArtworkApplied
	StageRenamed
)

func (s Stage) String() string {
	switch s {
	case StageSampled:
		return "sampled"
	case StageRecognized:
		return "recognized"
	case StageAwaitingOperator:
		return "awaiting operator"
	case StageTagsWritten:
		return "tags written"
	case StageArtworkApplied:
		return "artwork applied"
	case StageRenamed:
		return "renamed"
	}
	return "pending"
}

// Status is a file's terminal disposition.
type Status int

const (
	// StatusDone means the file was tagged (and possibly renamed).
	StatusDone Status = iota
	// StatusSkipped means the file was deliberately left untouched.
	StatusSkipped
	// StatusFailed means an error stopped the file's processing.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return "done"
}

// Outcome is the per-file result record. One file's outcome never
// affects another's: the batch always runs to the end and reports every
// outcome.
type Outcome struct {
	Path     string // path the file was discovered under
	NewPath  string // set when the file was renamed (dry runs: the target it would get)
	Status   Status
	Stage    Stage          // furthest stage reached
	Track    metadata.Track // the record written (proposed record for dry runs)
	Reason   string         // why the file was skipped or left unchanged
	Err      error          // what failed
	Warnings []string       // non-fatal degradations, e.g. artwork problems
}

// WriteError reports a failed tag save. No rename is attempted after one.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write tags to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// RenameError reports a failed rename to the canonical file name. The
// tags written before it stand; only the name keeps its old value.
type RenameError struct {
	Path   string
	Target string
	Err    error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("failed to rename %s to %s: %v", e.Path, e.Target, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }
