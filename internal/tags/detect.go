package tags

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dhowden/tag"
)

// Detect classifies a file's container by its actual structure. The file
// extension is never consulted: extension and container can disagree, and
// the tag scheme must follow what is really on disk.
func Detect(path string) (Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return Other, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	// Tagged signatures (ID3, fLaC, OggS, ftyp) are classified by the
	// tag library.
	format, fileType, err := tag.Identify(f)
	if err == nil {
		switch {
		case fileType == tag.MP3:
			return MP3, nil
		case fileType == tag.FLAC:
			return FLAC, nil
		case format == tag.MP4:
			return MP4, nil
		case fileType == tag.OGG:
			return Other, nil
		}
	}

	// Identify rejects signatures that carry no tag container: RIFF/WAVE
	// and bare MPEG audio streams end up here.
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Other, fmt.Errorf("failed to rewind %s: %w", path, err)
	}
	header := make([]byte, 12)
	n, _ := io.ReadFull(f, header)
	header = header[:n]

	switch {
	case len(header) >= 12 && bytes.HasPrefix(header, []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return WAV, nil
	case len(header) >= 8 && bytes.Equal(header[4:8], []byte("ftyp")):
		return MP4, nil
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		// MPEG frame sync: an MP3 with no leading ID3 header.
		return MP3, nil
	}
	return Other, nil
}
