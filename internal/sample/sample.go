// Package sample renders the short PCM excerpt the recognition service
// fingerprints: it decodes a track, cuts the middle of it, and re-encodes
// the cut as an in-memory WAV stream. No temporary files are involved.
package sample

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/OfficiallySp/Audiology/internal/logger"
	"github.com/OfficiallySp/Audiology/internal/tags"
)

// defaultWindowMs is the excerpt length the recognition service expects.
const defaultWindowMs = 10000

// Extractor decodes audio files and renders recognition excerpts.
type Extractor struct {
	logger   *logger.Logger
	windowMs int64
}

// New creates an Extractor. windowSeconds <= 0 selects the default
// ten-second excerpt.
func New(log *logger.Logger, windowSeconds int) *Extractor {
	windowMs := int64(windowSeconds) * 1000
	if windowMs <= 0 {
		windowMs = defaultWindowMs
	}
	return &Extractor{logger: log, windowMs: windowMs}
}

// Extract returns a WAV-encoded excerpt of the track at path: tracks
// longer than the window contribute their middle stretch, shorter tracks
// are sampled whole. The container has already been detected by the
// caller and selects the decoder. All failures come back as *DecodeError
// and abort only this file.
func (e *Extractor) Extract(ctx context.Context, path string, container tags.Container) ([]byte, error) {
	clip, err := e.decode(ctx, path, container)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if clip.Frames() == 0 {
		return nil, &DecodeError{Path: path, Err: errors.New("no audio samples decoded")}
	}

	excerpt := clip.Excerpt(e.windowMs)
	e.logger.Debug("Sampled %s: %dms of %dms at %dHz",
		filepath.Base(path), excerpt.DurationMs(), clip.DurationMs(), clip.Rate)

	data, err := encodeWAV(excerpt)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return data, nil
}

func (e *Extractor) decode(ctx context.Context, path string, container tags.Container) (*Clip, error) {
	switch container {
	case tags.MP3:
		return decodeWith(path, decodeMP3)
	case tags.FLAC:
		return decodeFLAC(path)
	case tags.WAV:
		return decodeWith(path, decodeWAV)
	case tags.Other:
		// Ogg Vorbis hides behind Other; the native decoder rejects
		// anything else quickly and the fallback takes over.
		if clip, err := decodeWith(path, decodeOGG); err == nil {
			return clip, nil
		}
	}
	return decodeFFmpeg(ctx, path)
}
