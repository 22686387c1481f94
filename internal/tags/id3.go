package tags

import (
	"fmt"

	"github.com/bogem/id3v2"

	"github.com/OfficiallySp/Audiology/internal/metadata"
)

// id3Adapter stores tags in ID3v2 text frames (artist=TPE1, title=TIT2,
// album=TALB, date=TDRC) with artwork as a single front-cover attached
// picture. Label has no frame in this scheme and is dropped.
type id3Adapter struct{}

func (id3Adapter) Container() Container { return MP3 }

func (id3Adapter) SupportsArtwork() bool { return true }

func (id3Adapter) Read(path string) (metadata.Track, error) {
	tg, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return metadata.Track{}, fmt.Errorf("failed to parse id3 tags in %s: %w", path, err)
	}
	defer tg.Close()

	return metadata.Track{
		Artist:      tg.Artist(),
		Title:       tg.Title(),
		Album:       tg.Album(),
		ReleaseDate: tg.GetTextFrame("TDRC").Text,
	}, nil
}

func (id3Adapter) WriteTags(path string, t metadata.Track) error {
	tg, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open %s for tagging: %w", path, err)
	}
	defer tg.Close()

	if t.Artist != "" {
		tg.SetArtist(t.Artist)
	}
	if t.Title != "" {
		tg.SetTitle(t.Title)
	}
	if t.Album != "" {
		tg.SetAlbum(t.Album)
	}
	if t.ReleaseDate != "" {
		tg.AddTextFrame("TDRC", id3v2.EncodingUTF8, t.ReleaseDate)
	}

	if err := tg.Save(); err != nil {
		return fmt.Errorf("failed to save id3 tags to %s: %w", path, err)
	}
	return nil
}

func (id3Adapter) WriteArtwork(path string, jpeg []byte) error {
	tg, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open %s for artwork: %w", path, err)
	}
	defer tg.Close()

	tg.DeleteFrames(tg.CommonID("Attached picture"))
	tg.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     jpeg,
	})

	if err := tg.Save(); err != nil {
		return fmt.Errorf("failed to save artwork to %s: %w", path, err)
	}
	return nil
}
