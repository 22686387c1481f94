package sample

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ffmpegAvailable reports whether the ffmpeg binary is on PATH.
// Containers without a native decoder (notably M4A/AAC) fall back to it.
func ffmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// decodeFFmpeg shells out to ffmpeg for codecs no native decoder handles,
// reading raw 16-bit stereo PCM from its stdout.
func decodeFFmpeg(ctx context.Context, path string) (*Clip, error) {
	if !ffmpegAvailable() {
		return nil, fmt.Errorf("no native decoder for this container and ffmpeg is not installed")
	}

	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", "2",
		"-ar", "44100",
		"pipe:1",
	)
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %s", msg)
	}

	raw := out.Bytes()
	if len(raw) < 4 {
		return nil, fmt.Errorf("ffmpeg produced no audio data")
	}
	return &Clip{
		Rate:     44100,
		Channels: 2,
		Depth:    16,
		Samples:  samplesFromPCM16(raw),
	}, nil
}
