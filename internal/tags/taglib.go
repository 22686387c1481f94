package tags

import (
	"fmt"

	"go.senan.xyz/taglib"

	"github.com/OfficiallySp/Audiology/internal/metadata"
)

// labelKey is not among taglib's predeclared normalized keys, but TagLib
// accepts arbitrary property names.
const labelKey = "LABEL"

// mp4Adapter drives TagLib for MP4/M4A: ARTIST/TITLE/ALBUM/DATE map onto
// the ©ART/©nam/©alb/©day atoms and artwork onto the covr atom. Label has
// no atom in this scheme and is dropped.
type mp4Adapter struct{}

func (mp4Adapter) Container() Container { return MP4 }

func (mp4Adapter) SupportsArtwork() bool { return true }

func (mp4Adapter) Read(path string) (metadata.Track, error) {
	return readTagLib(path, false)
}

func (mp4Adapter) WriteTags(path string, t metadata.Track) error {
	t.Label = ""
	return writeTagLib(path, t)
}

func (mp4Adapter) WriteArtwork(path string, jpeg []byte) error {
	if err := taglib.WriteImage(path, jpeg); err != nil {
		return fmt.Errorf("failed to write artwork to %s: %w", path, err)
	}
	return nil
}

// genericAdapter is the fallback for WAV and anything else TagLib can
// open: a best-effort flat key/value dictionary. It is the only variant
// that persists Label. Artwork embedding is not supported.
type genericAdapter struct {
	container Container
}

func (a genericAdapter) Container() Container { return a.container }

func (genericAdapter) SupportsArtwork() bool { return false }

func (genericAdapter) Read(path string) (metadata.Track, error) {
	return readTagLib(path, true)
}

func (genericAdapter) WriteTags(path string, t metadata.Track) error {
	return writeTagLib(path, t)
}

func (a genericAdapter) WriteArtwork(string, []byte) error {
	return &CapabilityError{Container: a.container, Op: "artwork embedding"}
}

func readTagLib(path string, withLabel bool) (metadata.Track, error) {
	tagMap, err := taglib.ReadTags(path)
	if err != nil {
		return metadata.Track{}, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}

	t := metadata.Track{
		Artist:      firstTag(tagMap, taglib.Artist),
		Title:       firstTag(tagMap, taglib.Title),
		Album:       firstTag(tagMap, taglib.Album),
		ReleaseDate: firstTag(tagMap, taglib.Date),
	}
	if withLabel {
		t.Label = firstTag(tagMap, labelKey)
	}
	return t, nil
}

func writeTagLib(path string, t metadata.Track) error {
	tagMap := make(map[string][]string)
	if t.Artist != "" {
		tagMap[taglib.Artist] = []string{t.Artist}
	}
	if t.Title != "" {
		tagMap[taglib.Title] = []string{t.Title}
	}
	if t.Album != "" {
		tagMap[taglib.Album] = []string{t.Album}
	}
	if t.ReleaseDate != "" {
		tagMap[taglib.Date] = []string{t.ReleaseDate}
	}
	if t.Label != "" {
		tagMap[labelKey] = []string{t.Label}
	}
	if len(tagMap) == 0 {
		return nil
	}

	if err := taglib.WriteTags(path, tagMap, 0); err != nil {
		return fmt.Errorf("failed to write tags to %s: %w", path, err)
	}
	return nil
}

func firstTag(tagMap map[string][]string, key string) string {
	if vals, ok := tagMap[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}
