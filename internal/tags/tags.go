package tags

import (
	"fmt"

	"github.com/OfficiallySp/Audiology/internal/metadata"
)

// Container identifies the on-disk audio file structure, which dictates
// the native tag scheme an adapter speaks.
type Container int

const (
	MP3 Container = iota
	FLAC
	MP4
	WAV
	Other
)

func (c Container) String() string {
	switch c {
	case MP3:
		return "mp3"
	case FLAC:
		return "flac"
	case MP4:
		return "mp4"
	case WAV:
		return "wav"
	}
	return "other"
}

// CapabilityError reports an operation a tag format cannot express. The
// caller is expected to degrade gracefully: every supported field is
// still written and the file stays usable.
type CapabilityError struct {
	Container Container
	Op        string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s tags do not support %s", e.Container, e.Op)
}

// Adapter is one container format's view of a file's tags.
//
// Writes are partial updates: an empty Track field leaves the matching
// on-disk value untouched, never cleared. Artwork is embedded separately
// from text tags so an artwork failure cannot undo a completed tag write.
// Read returns empty fields, not an error, for files with no tags.
type Adapter interface {
	Container() Container
	Read(path string) (metadata.Track, error)
	WriteTags(path string, t metadata.Track) error
	WriteArtwork(path string, jpeg []byte) error
	SupportsArtwork() bool
}

// ForContainer returns the adapter handling the given container. The set
// is closed; unrecognized containers share the generic key/value fallback.
func ForContainer(c Container) Adapter {
	switch c {
	case MP3:
		return id3Adapter{}
	case FLAC:
		return flacAdapter{}
	case MP4:
		return mp4Adapter{}
	default:
		return genericAdapter{container: c}
	}
}

// ForFile detects path's container and returns the matching adapter.
func ForFile(path string) (Adapter, error) {
	c, err := Detect(path)
	if err != nil {
		return nil, err
	}
	return ForContainer(c), nil
}
