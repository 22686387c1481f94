// Package pipeline sequences recognition and tagging per file: sample →
// recognize → (operator review) → tag write → artwork embed → rename.
// A single worker processes the batch strictly in order and notifies the
// presentation layer over a one-way event channel.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/OfficiallySp/Audiology/internal/logger"
	"github.com/OfficiallySp/Audiology/internal/metadata"
	"github.com/OfficiallySp/Audiology/internal/recognize"
	"github.com/OfficiallySp/Audiology/internal/tags"
)

// Sampler extracts a WAV-encoded excerpt used for fingerprinting.
type Sampler interface {
	Extract(ctx context.Context, path string, container tags.Container) ([]byte, error)
}

// Recognizer identifies a track from a WAV sample.
type Recognizer interface {
	Recognize(ctx context.Context, wavSample []byte) recognize.Result
}

// ArtworkFetcher downloads cover art ready for embedding.
type ArtworkFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Options configure a run.
type Options struct {
	Review bool               // suspend for operator review before each write
	Merge  metadata.MergeMode // how recognized tags reconcile with disk tags
	Rename bool               // rename tagged files to "<artist> - <title>"
	DryRun bool               // recognize and report without touching files
}

// Runner drives the per-file state machine over a batch of paths.
type Runner struct {
	logger     *logger.Logger
	sampler    Sampler
	recognizer Recognizer
	artFetcher ArtworkFetcher
	opts       Options
	events     chan Event
}

func New(log *logger.Logger, sampler Sampler, recognizer Recognizer, artFetcher ArtworkFetcher, opts Options) *Runner {
	return &Runner{
		logger:     log,
		sampler:    sampler,
		recognizer: recognizer,
		artFetcher: artFetcher,
		opts:       opts,
		events:     make(chan Event),
	}
}

// Events returns the notification channel. It is closed when Run
// returns; the consumer must drain it until then or the worker stalls.
func (r *Runner) Events() <-chan Event {
	return r.events
}

// Run processes paths strictly sequentially and returns one outcome per
// processed file. Each outcome is also delivered as an EventFileDone,
// followed by an EventProgress. One file's failure never aborts the
// batch; cancellation is honored between files and during review waits.
func (r *Runner) Run(ctx context.Context, paths []string) []Outcome {
	defer close(r.events)

	r.logger.Info("=== Processing %d files ===", len(paths))

	outcomes := make([]Outcome, 0, len(paths))
	for i, path := range paths {
		select {
		case <-ctx.Done():
			r.logger.Warn("Cancelled after %d of %d files", i, len(paths))
			return outcomes
		default:
		}

		outcome := r.processFile(ctx, path)
		outcomes = append(outcomes, outcome)

		r.emit(ctx, Event{Kind: EventFileDone, Outcome: &outcome})
		r.emit(ctx, Event{Kind: EventProgress, Percent: (i + 1) * 100 / len(paths)})
	}
	return outcomes
}

func (r *Runner) processFile(ctx context.Context, path string) Outcome {
	outcome := Outcome{Path: path, Status: StatusFailed}

	r.logger.Info("Processing %s", filepath.Base(path))

	container, err := tags.Detect(path)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	adapter := tags.ForContainer(container)
	r.logger.Debug("  Container: %s", container)

	sample, err := r.sampler.Extract(ctx, path, container)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Stage = StageSampled

	result := r.recognizer.Recognize(ctx, sample)
	outcome.Stage = StageRecognized
	if !result.Recognized {
		outcome.Status = StatusSkipped
		outcome.Reason = result.Reason
		return outcome
	}
	r.logger.Debug("  Recognized as %q by %q", result.Track.Title, result.Track.Artist)

	old, err := adapter.Read(path)
	if err != nil {
		// Existing tags only matter for merging; unreadable ones count
		// as absent.
		r.logger.Debug("  Could not read existing tags: %v", err)
		old = metadata.Track{}
	}
	final := metadata.Merge(old, result.Track, r.opts.Merge)

	if r.opts.DryRun {
		outcome.Track = final
		outcome.Status = StatusDone
		outcome.Reason = "dry run"
		if r.opts.Rename {
			if name, ok := metadata.TargetName(final, filepath.Ext(path)); ok {
				outcome.NewPath = filepath.Join(filepath.Dir(path), name)
			}
		}
		return outcome
	}

	if r.opts.Review {
		outcome.Stage = StageAwaitingOperator
		confirmed, ok, err := r.awaitReview(ctx, path, old, final)
		if err != nil {
			outcome.Err = err
			return outcome
		}
		if !ok {
			outcome.Status = StatusSkipped
			outcome.Reason = "skipped by operator"
			return outcome
		}
		final = confirmed
	}
	outcome.Track = final

	if err := adapter.WriteTags(path, final); err != nil {
		outcome.Err = &WriteError{Path: path, Err: err}
		return outcome
	}
	outcome.Stage = StageTagsWritten

	r.applyArtwork(ctx, adapter, path, final.ArtworkURL, &outcome)

	if r.opts.Rename {
		if err := r.rename(path, final, &outcome); err != nil {
			outcome.Err = err
			outcome.Warnings = append(outcome.Warnings, "the new tags were written before the rename failed")
			return outcome
		}
	}

	outcome.Status = StatusDone
	return outcome
}

// awaitReview suspends the worker until the operator resolves the
// proposed write or the run is cancelled.
func (r *Runner) awaitReview(ctx context.Context, path string, old, proposed metadata.Track) (metadata.Track, bool, error) {
	req := &ReviewRequest{
		Path:     path,
		Old:      old,
		Proposed: proposed,
		decision: make(chan reviewDecision, 1),
	}
	r.emit(ctx, Event{Kind: EventReview, Review: req})

	select {
	case d := <-req.decision:
		if !d.apply {
			return metadata.Track{}, false, nil
		}
		return d.edit.Apply(proposed), true, nil
	case <-ctx.Done():
		return metadata.Track{}, false, ctx.Err()
	}
}

// applyArtwork fetches and embeds cover art after the tag write. Nothing
// in here fails the file: capability limits, fetch errors and embed
// errors all degrade to warnings and the new tags stand.
func (r *Runner) applyArtwork(ctx context.Context, adapter tags.Adapter, path, url string, outcome *Outcome) {
	if url == "" {
		return
	}

	if !adapter.SupportsArtwork() {
		capErr := &tags.CapabilityError{Container: adapter.Container(), Op: "artwork embedding"}
		outcome.Warnings = append(outcome.Warnings, capErr.Error())
		r.logger.Warn("  %v", capErr)
		return
	}

	art, err := r.artFetcher.Fetch(ctx, url)
	if err != nil {
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("artwork not embedded: %v", err))
		r.logger.Warn("  Failed to fetch artwork: %v", err)
		return
	}
	if len(art) == 0 {
		return
	}

	if err := adapter.WriteArtwork(path, art); err != nil {
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("artwork not embedded: %v", err))
		r.logger.Warn("  Failed to embed artwork: %v", err)
		return
	}
	outcome.Stage = StageArtworkApplied
	r.logger.Debug("  Embedded %d bytes of cover art", len(art))
}

// rename moves the file to its canonical "<artist> - <title>" name in
// the same directory. An unusable sanitized stem skips the rename with a
// warning; an existing target is a RenameError, never an overwrite.
func (r *Runner) rename(path string, t metadata.Track, outcome *Outcome) error {
	name, ok := metadata.TargetName(t, filepath.Ext(path))
	if !ok {
		outcome.Warnings = append(outcome.Warnings, "rename skipped: sanitized name is empty")
		return nil
	}

	target := filepath.Join(filepath.Dir(path), name)
	if target == path {
		return nil
	}

	if _, err := os.Stat(target); err == nil {
		return &RenameError{Path: path, Target: target, Err: os.ErrExist}
	} else if !errors.Is(err, os.ErrNotExist) {
		return &RenameError{Path: path, Target: target, Err: err}
	}

	if err := os.Rename(path, target); err != nil {
		return &RenameError{Path: path, Target: target, Err: err}
	}

	outcome.NewPath = target
	outcome.Stage = StageRenamed
	r.logger.Info("  Renamed to %s", name)
	return nil
}

func (r *Runner) emit(ctx context.Context, ev Event) {
	select {
	case r.events <- ev:
	case <-ctx.Done():
	}
}
