package sample

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Clip is decoded PCM audio held in memory: interleaved samples at a
// fixed rate, Channels samples per frame.
type Clip struct {
	Rate     int // frames per second
	Channels int
	Depth    int // bits per sample
	Samples  []int
}

// Frames returns the number of sample frames (samples per channel).
func (c *Clip) Frames() int {
	if c.Channels == 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// DurationMs returns the clip length in milliseconds.
func (c *Clip) DurationMs() int64 {
	if c.Rate == 0 {
		return 0
	}
	return int64(c.Frames()) * 1000 / int64(c.Rate)
}

// Excerpt returns the representative slice sent for recognition: tracks
// longer than lengthMs contribute their middle lengthMs, shorter tracks
// are used whole.
func (c *Clip) Excerpt(lengthMs int64) *Clip {
	d := c.DurationMs()
	if d <= lengthMs {
		return c
	}
	return c.window((d-lengthMs)/2, lengthMs)
}

// window slices [startMs, startMs+lengthMs), clamped to the clip bounds.
func (c *Clip) window(startMs, lengthMs int64) *Clip {
	total := c.Frames()
	start := int(startMs * int64(c.Rate) / 1000)
	if start > total {
		start = total
	}
	frames := int(lengthMs * int64(c.Rate) / 1000)
	if start+frames > total {
		frames = total - start
	}

	out := *c
	out.Samples = c.Samples[start*c.Channels : (start+frames)*c.Channels]
	return &out
}

// encodeWAV renders the clip as a RIFF/WAVE byte stream, entirely in
// memory: the encoder needs a seekable sink to patch chunk sizes, so it
// runs over seekBuffer instead of a temporary file.
func encodeWAV(c *Clip) ([]byte, error) {
	var buf seekBuffer
	enc := wav.NewEncoder(&buf, c.Rate, c.Depth, c.Channels, 1)
	ib := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: c.Channels, SampleRate: c.Rate},
		Data:           c.Samples,
		SourceBitDepth: c.Depth,
	}
	if err := enc.Write(ib); err != nil {
		return nil, fmt.Errorf("failed to encode wav sample: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize wav sample: %w", err)
	}
	return buf.data, nil
}

// seekBuffer is an in-memory io.WriteSeeker.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.data) {
		b.data = append(b.data, make([]byte, need-len(b.data))...)
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(b.pos) + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("seek before start of buffer")
	}
	b.pos = int(pos)
	return pos, nil
}
