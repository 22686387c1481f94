package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/OfficiallySp/Audiology/internal/logger"
	"github.com/OfficiallySp/Audiology/internal/metadata"
	"github.com/OfficiallySp/Audiology/internal/recognize"
	"github.com/OfficiallySp/Audiology/internal/tags"
)

// testJPEG is a minimal JFIF header, enough for frame metadata checks.
var testJPEG = []byte{
	0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00,
	0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0xFF, 0xD9,
}

func writeTestWAV(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 8000, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           make([]int, 800),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write wav data: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finalize wav: %v", err)
	}
	return path
}

func writeTestMP3(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)

	data := append([]byte{0xFF, 0xFB, 0x90, 0x00}, make([]byte, 256)...)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	return path
}

func seedTags(t *testing.T, path string, track metadata.Track) {
	t.Helper()
	adapter, err := tags.ForFile(path)
	if err != nil {
		t.Fatalf("failed to detect %s: %v", path, err)
	}
	if err := adapter.WriteTags(path, track); err != nil {
		t.Fatalf("failed to seed tags on %s: %v", path, err)
	}
}

func readTags(t *testing.T, path string) metadata.Track {
	t.Helper()
	adapter, err := tags.ForFile(path)
	if err != nil {
		t.Fatalf("failed to detect %s: %v", path, err)
	}
	track, err := adapter.Read(path)
	if err != nil {
		t.Fatalf("failed to read tags from %s: %v", path, err)
	}
	return track
}

// Fake collaborators. The sampler hands the path back as the "sample"
// so the recognizer can be keyed per file.

type fakeSampler struct {
	errFor map[string]error
}

func (s *fakeSampler) Extract(_ context.Context, path string, _ tags.Container) ([]byte, error) {
	if err := s.errFor[path]; err != nil {
		return nil, err
	}
	return []byte(path), nil
}

type fakeRecognizer struct {
	results map[string]recognize.Result
}

func (r *fakeRecognizer) Recognize(_ context.Context, sample []byte) recognize.Result {
	if res, ok := r.results[string(sample)]; ok {
		return res
	}
	return recognize.Result{Reason: "track not recognized"}
}

type fakeArtFetcher struct {
	data    []byte
	err     error
	fetched []string
}

func (f *fakeArtFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.fetched = append(f.fetched, url)
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func recognized(t metadata.Track) recognize.Result {
	return recognize.Result{Recognized: true, Track: t}
}

// collectRun drives a full run, resolving review requests with onReview
// and gathering everything the worker reports.
func collectRun(t *testing.T, r *Runner, paths []string, onReview func(*ReviewRequest)) ([]Outcome, []Event) {
	t.Helper()

	done := make(chan []Outcome, 1)
	go func() { done <- r.Run(context.Background(), paths) }()

	var events []Event
	for ev := range r.Events() {
		events = append(events, ev)
		if ev.Kind == EventReview {
			if onReview == nil {
				t.Errorf("unexpected review request for %s", ev.Review.Path)
				ev.Review.Skip()
				continue
			}
			onReview(ev.Review)
		}
	}
	return <-done, events
}

func TestRunTagsAndRenames(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "mystery track.wav")
	seedTags(t, path, metadata.Track{Artist: "Old"})

	art := &fakeArtFetcher{data: testJPEG}
	runner := New(logger.New(false), &fakeSampler{}, &fakeRecognizer{results: map[string]recognize.Result{
		path: recognized(metadata.Track{Artist: "New", Title: "Song", ArtworkURL: "https://img.example/cover.jpg"}),
	}}, art, Options{Rename: true})

	outcomes, _ := collectRun(t, runner, []string{path}, nil)
	if len(outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(outcomes))
	}

	got := outcomes[0]
	if got.Status != StatusDone {
		t.Fatalf("Status = %s, want done (err: %v)", got.Status, got.Err)
	}
	want := filepath.Join(dir, "New - Song.wav")
	if got.NewPath != want {
		t.Errorf("NewPath = %q, want %q", got.NewPath, want)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("original path still exists after rename")
	}

	track := readTags(t, want)
	if track.Artist != "New" || track.Title != "Song" {
		t.Errorf("tags = %q / %q, want %q / %q", track.Artist, track.Title, "New", "Song")
	}

	// WAV cannot hold artwork: the capability warning is reported and
	// the fetch is never attempted, but the file still completes.
	if len(art.fetched) != 0 {
		t.Errorf("artwork fetched for wav: %v", art.fetched)
	}
	if len(got.Warnings) == 0 {
		t.Error("no capability warning reported for wav artwork")
	}
}

func TestRunFailureIsolation(t *testing.T) {
	dir := t.TempDir()
	corrupt := writeTestWAV(t, dir, "corrupt.wav")
	good := writeTestWAV(t, dir, "good.wav")
	unknown := writeTestWAV(t, dir, "unknown.wav")

	decodeErr := errors.New("synthetic decode failure")
	runner := New(logger.New(false),
		&fakeSampler{errFor: map[string]error{corrupt: decodeErr}},
		&fakeRecognizer{results: map[string]recognize.Result{
			good: recognized(metadata.Track{Artist: "A", Title: "B"}),
		}},
		&fakeArtFetcher{}, Options{})

	outcomes, _ := collectRun(t, runner, []string{corrupt, good, unknown}, nil)
	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(outcomes))
	}

	if outcomes[0].Status != StatusFailed || !errors.Is(outcomes[0].Err, decodeErr) {
		t.Errorf("corrupt file: status %s err %v, want failed with decode error", outcomes[0].Status, outcomes[0].Err)
	}
	if outcomes[1].Status != StatusDone {
		t.Errorf("good file: status %s err %v, want done", outcomes[1].Status, outcomes[1].Err)
	}
	if outcomes[2].Status != StatusSkipped || outcomes[2].Reason != "track not recognized" {
		t.Errorf("unknown file: status %s reason %q, want skipped", outcomes[2].Status, outcomes[2].Reason)
	}

	if got := readTags(t, good).Artist; got != "A" {
		t.Errorf("good file artist = %q, want %q", got, "A")
	}
	if got := readTags(t, unknown); !got.IsZero() {
		t.Errorf("unrecognized file was written: %+v", got)
	}
}

func TestRunProgressEvents(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeTestWAV(t, dir, "one.wav"),
		writeTestWAV(t, dir, "two.wav"),
		writeTestWAV(t, dir, "three.wav"),
	}

	runner := New(logger.New(false), &fakeSampler{}, &fakeRecognizer{}, &fakeArtFetcher{}, Options{})
	_, events := collectRun(t, runner, paths, nil)

	var percents []int
	dones := 0
	for _, ev := range events {
		switch ev.Kind {
		case EventProgress:
			percents = append(percents, ev.Percent)
		case EventFileDone:
			dones++
		}
	}

	if dones != 3 {
		t.Errorf("file done events = %d, want 3", dones)
	}
	if len(percents) != 3 || percents[0] != 33 || percents[1] != 66 || percents[2] != 100 {
		t.Fatalf("progress = %v, want [33 66 100]", percents)
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Errorf("progress decreased: %v", percents)
		}
	}
}

func TestRunReviewApply(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "review.wav")
	seedTags(t, path, metadata.Track{Artist: "Old", Album: "Keep Me"})

	runner := New(logger.New(false), &fakeSampler{}, &fakeRecognizer{results: map[string]recognize.Result{
		path: recognized(metadata.Track{Artist: "AI Artist", Title: "Wrong Title"}),
	}}, &fakeArtFetcher{}, Options{Review: true, Merge: metadata.MergePreserve, Rename: true})

	outcomes, _ := collectRun(t, runner, []string{path}, func(req *ReviewRequest) {
		if req.Old.Artist != "Old" {
			t.Errorf("Old.Artist = %q, want %q", req.Old.Artist, "Old")
		}
		if req.Proposed.Artist != "AI Artist" {
			t.Errorf("Proposed.Artist = %q, want %q", req.Proposed.Artist, "AI Artist")
		}
		// Preserve mode backfills the album the recognizer did not return.
		if req.Proposed.Album != "Keep Me" {
			t.Errorf("Proposed.Album = %q, want %q", req.Proposed.Album, "Keep Me")
		}

		edit := metadata.EditOf(req.Proposed)
		edit.Title = "Right Title"
		req.Apply(edit)
	})

	if len(outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(outcomes))
	}
	got := outcomes[0]
	if got.Status != StatusDone {
		t.Fatalf("Status = %s, want done (err: %v)", got.Status, got.Err)
	}

	want := filepath.Join(dir, "AI Artist - Right Title.wav")
	if got.NewPath != want {
		t.Errorf("NewPath = %q, want %q", got.NewPath, want)
	}
	track := readTags(t, want)
	if track.Title != "Right Title" {
		t.Errorf("Title = %q, want %q", track.Title, "Right Title")
	}
	if track.Album != "Keep Me" {
		t.Errorf("Album = %q, want %q", track.Album, "Keep Me")
	}
}

func TestRunReviewSkip(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "review.wav")
	seedTags(t, path, metadata.Track{Artist: "Old"})

	runner := New(logger.New(false), &fakeSampler{}, &fakeRecognizer{results: map[string]recognize.Result{
		path: recognized(metadata.Track{Artist: "New", Title: "Song"}),
	}}, &fakeArtFetcher{}, Options{Review: true, Rename: true})

	outcomes, _ := collectRun(t, runner, []string{path}, func(req *ReviewRequest) {
		req.Skip()
	})

	if len(outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(outcomes))
	}
	got := outcomes[0]
	if got.Status != StatusSkipped {
		t.Fatalf("Status = %s, want skipped (err: %v)", got.Status, got.Err)
	}
	if got.Reason != "skipped by operator" {
		t.Errorf("Reason = %q, want %q", got.Reason, "skipped by operator")
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("skipped file was renamed: %v", err)
	}
	if got := readTags(t, path).Artist; got != "Old" {
		t.Errorf("skipped file artist = %q, want %q", got, "Old")
	}
}

func TestRunRenameCollision(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "incoming.wav")
	writeTestWAV(t, dir, "New - Song.wav") // occupies the rename target

	runner := New(logger.New(false), &fakeSampler{}, &fakeRecognizer{results: map[string]recognize.Result{
		path: recognized(metadata.Track{Artist: "New", Title: "Song"}),
	}}, &fakeArtFetcher{}, Options{Rename: true})

	outcomes, _ := collectRun(t, runner, []string{path}, nil)
	if len(outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(outcomes))
	}

	got := outcomes[0]
	if got.Status != StatusFailed {
		t.Fatalf("Status = %s, want failed", got.Status)
	}
	var renameErr *RenameError
	if !errors.As(got.Err, &renameErr) {
		t.Fatalf("Err = %v, want *RenameError", got.Err)
	}
	if !errors.Is(got.Err, os.ErrExist) {
		t.Errorf("Err = %v, want wrapped os.ErrExist", got.Err)
	}

	// The write preceded the rename, so the tags stand under the old name.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("original file missing after failed rename: %v", err)
	}
	if got := readTags(t, path).Artist; got != "New" {
		t.Errorf("artist = %q, want %q", got, "New")
	}
}

func TestRunDryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "preview.wav")
	seedTags(t, path, metadata.Track{Artist: "Old"})

	runner := New(logger.New(false), &fakeSampler{}, &fakeRecognizer{results: map[string]recognize.Result{
		path: recognized(metadata.Track{Artist: "New", Title: "Song"}),
	}}, &fakeArtFetcher{}, Options{DryRun: true, Rename: true})

	outcomes, _ := collectRun(t, runner, []string{path}, nil)
	if len(outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(outcomes))
	}

	got := outcomes[0]
	if got.Status != StatusDone || got.Reason != "dry run" {
		t.Fatalf("outcome = %s (%q), want done dry run", got.Status, got.Reason)
	}
	if got.Track.Artist != "New" {
		t.Errorf("Track.Artist = %q, want %q", got.Track.Artist, "New")
	}
	if want := filepath.Join(dir, "New - Song.wav"); got.NewPath != want {
		t.Errorf("NewPath = %q, want %q", got.NewPath, want)
	}

	// Nothing on disk moves or changes in a dry run.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file renamed during dry run: %v", err)
	}
	if got := readTags(t, path).Artist; got != "Old" {
		t.Errorf("artist = %q, want %q after dry run", got, "Old")
	}
}

func TestRunUnusableNameSkipsRename(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "symbols.wav")

	runner := New(logger.New(false), &fakeSampler{}, &fakeRecognizer{results: map[string]recognize.Result{
		path: recognized(metadata.Track{Artist: "???", Title: "!!!"}),
	}}, &fakeArtFetcher{}, Options{Rename: true})

	outcomes, _ := collectRun(t, runner, []string{path}, nil)
	got := outcomes[0]
	if got.Status != StatusDone {
		t.Fatalf("Status = %s, want done (err: %v)", got.Status, got.Err)
	}
	if got.NewPath != "" {
		t.Errorf("NewPath = %q, want empty", got.NewPath)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file renamed despite unusable name: %v", err)
	}
	if len(got.Warnings) == 0 {
		t.Error("no warning reported for skipped rename")
	}
}

func TestRunEmbedsArtwork(t *testing.T) {
	dir := t.TempDir()
	path := writeTestMP3(t, dir, "track.mp3")

	art := &fakeArtFetcher{data: testJPEG}
	runner := New(logger.New(false), &fakeSampler{}, &fakeRecognizer{results: map[string]recognize.Result{
		path: recognized(metadata.Track{Artist: "New", Title: "Song", ArtworkURL: "https://img.example/cover.jpg"}),
	}}, art, Options{})

	outcomes, _ := collectRun(t, runner, []string{path}, nil)
	got := outcomes[0]
	if got.Status != StatusDone {
		t.Fatalf("Status = %s, want done (err: %v)", got.Status, got.Err)
	}
	if got.Stage != StageArtworkApplied {
		t.Errorf("Stage = %s, want artwork applied", got.Stage)
	}
	if len(art.fetched) != 1 || art.fetched[0] != "https://img.example/cover.jpg" {
		t.Errorf("fetched = %v, want the recognized URL once", art.fetched)
	}
	if len(got.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", got.Warnings)
	}
}

func TestRunArtworkFailureIsWarning(t *testing.T) {
	dir := t.TempDir()
	path := writeTestMP3(t, dir, "track.mp3")

	art := &fakeArtFetcher{err: errors.New("image host down")}
	runner := New(logger.New(false), &fakeSampler{}, &fakeRecognizer{results: map[string]recognize.Result{
		path: recognized(metadata.Track{Artist: "New", Title: "Song", ArtworkURL: "https://img.example/cover.jpg"}),
	}}, art, Options{})

	outcomes, _ := collectRun(t, runner, []string{path}, nil)
	got := outcomes[0]
	if got.Status != StatusDone {
		t.Fatalf("Status = %s, want done (err: %v)", got.Status, got.Err)
	}
	if got.Stage != StageTagsWritten {
		t.Errorf("Stage = %s, want tags written", got.Stage)
	}
	if len(got.Warnings) == 0 {
		t.Error("no warning reported for failed artwork fetch")
	}
	if gotArtist := readTags(t, path).Artist; gotArtist != "New" {
		t.Errorf("artist = %q, want %q despite artwork failure", gotArtist, "New")
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "never.wav")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := New(logger.New(false), &fakeSampler{}, &fakeRecognizer{}, &fakeArtFetcher{}, Options{})
	done := make(chan []Outcome, 1)
	go func() { done <- runner.Run(ctx, []string{path}) }()
	for range runner.Events() {
	}

	if outcomes := <-done; len(outcomes) != 0 {
		t.Errorf("outcomes = %d, want 0 after cancellation", len(outcomes))
	}
}
