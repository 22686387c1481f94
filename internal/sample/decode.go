package sample

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// DecodeError wraps any decoder failure: corrupt data, unsupported
// codecs, truncated streams. It aborts processing of its file only.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeWith(path string, dec func(*os.File) (*Clip, error)) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dec(f)
}

// decodeMP3 synthesizes PCM from an MPEG stream. The decoder always
// emits 16-bit little-endian stereo regardless of the source layout.
func decodeMP3(f *os.File) (*Clip, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}
	return &Clip{
		Rate:     dec.SampleRate(),
		Channels: 2,
		Depth:    16,
		Samples:  samplesFromPCM16(raw),
	}, nil
}

func decodeFLAC(path string) (*Clip, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	clip := &Clip{
		Rate:     int(info.SampleRate),
		Channels: channels,
		Depth:    int(info.BitsPerSample),
	}
	if info.NSamples > 0 {
		clip.Samples = make([]int, 0, int(info.NSamples)*channels)
	}

	for {
		fr, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(fr.Subframes) == 0 {
			continue
		}
		// Interleave the per-channel subframes.
		n := len(fr.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels && ch < len(fr.Subframes); ch++ {
				clip.Samples = append(clip.Samples, int(fr.Subframes[ch].Samples[i]))
			}
		}
	}
	return clip, nil
}

func decodeWAV(f *os.File) (*Clip, error) {
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf.Format == nil || buf.Format.SampleRate == 0 {
		return nil, errors.New("wav stream carries no format header")
	}

	depth := int(dec.BitDepth)
	if buf.SourceBitDepth > 0 {
		depth = buf.SourceBitDepth
	}
	return &Clip{
		Rate:     buf.Format.SampleRate,
		Channels: buf.Format.NumChannels,
		Depth:    depth,
		Samples:  buf.Data,
	}, nil
}

func decodeOGG(f *os.File) (*Clip, error) {
	r, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, err
	}

	clip := &Clip{Rate: r.SampleRate(), Channels: r.Channels(), Depth: 16}
	buf := make([]float32, 4096)
	for {
		n, err := r.Read(buf)
		for _, s := range buf[:n] {
			clip.Samples = append(clip.Samples, int(clampPCM16(s)))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return clip, nil
}

// clampPCM16 converts a float sample in [-1, 1] to signed 16-bit.
func clampPCM16(s float32) int16 {
	v := int32(s * 32767)
	if v > 32767 {
		v = 32767
	}
	if v < -32768 {
		v = -32768
	}
	return int16(v)
}

func samplesFromPCM16(raw []byte) []int {
	samples := make([]int, len(raw)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(raw[2*i:])))
	}
	return samples
}
