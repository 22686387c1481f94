package pipeline

import "github.com/OfficiallySp/Audiology/internal/metadata"

// EventKind discriminates worker notifications.
type EventKind int

const (
	// EventProgress reports the integer percentage of files completed.
	// Emitted once per file, monotonically non-decreasing across a run.
	EventProgress EventKind = iota
	// EventReview asks the operator to confirm or edit a proposed write.
	// The worker stays suspended until the request is resolved.
	EventReview
	// EventFileDone reports one file's final outcome.
	EventFileDone
)

// Event is a one-way notification from the worker to the presentation
// layer. Exactly one payload field is set, selected by Kind.
type Event struct {
	Kind    EventKind
	Percent int            // EventProgress
	Review  *ReviewRequest // EventReview
	Outcome *Outcome       // EventFileDone
}

// ReviewRequest is the worker's suspension point for human review. The
// consumer resolves it by calling exactly one of Apply or Skip, exactly
// once; the worker resumes on its own channel, so resolving a request
// never re-enters worker state.
type ReviewRequest struct {
	Path     string
	Old      metadata.Track // tags currently on disk
	Proposed metadata.Track // merged recognition result

	decision chan reviewDecision
}

type reviewDecision struct {
	apply bool
	edit  metadata.Edit
}

// Apply resumes the file with the operator's confirmed fields overlaid
// on the proposed record. Label and artwork are not operator-editable
// and keep their proposed values.
func (r *ReviewRequest) Apply(edit metadata.Edit) {
	r.decision <- reviewDecision{apply: true, edit: edit}
}

// Skip leaves the file untouched: no tag write, no rename.
func (r *ReviewRequest) Skip() {
	r.decision <- reviewDecision{}
}
