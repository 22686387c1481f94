package tags

import (
	"fmt"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"github.com/OfficiallySp/Audiology/internal/metadata"
)

// flacAdapter stores tags as Vorbis comment fields with artwork in a
// front-cover picture block. Label has no standard field here and is
// dropped.
type flacAdapter struct{}

func (flacAdapter) Container() Container { return FLAC }

func (flacAdapter) SupportsArtwork() bool { return true }

func (flacAdapter) Read(path string) (metadata.Track, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return metadata.Track{}, fmt.Errorf("failed to parse flac file %s: %w", path, err)
	}

	cmts := existingComments(f)
	if cmts == nil {
		return metadata.Track{}, nil
	}
	return metadata.Track{
		Artist:      vorbisField(cmts, flacvorbis.FIELD_ARTIST),
		Title:       vorbisField(cmts, flacvorbis.FIELD_TITLE),
		Album:       vorbisField(cmts, flacvorbis.FIELD_ALBUM),
		ReleaseDate: vorbisField(cmts, flacvorbis.FIELD_DATE),
	}, nil
}

func (flacAdapter) WriteTags(path string, t metadata.Track) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse flac file %s: %w", path, err)
	}

	cmts := existingComments(f)
	if cmts == nil {
		cmts = flacvorbis.New()
	}

	fields := []struct {
		name  string
		value string
	}{
		{flacvorbis.FIELD_ARTIST, t.Artist},
		{flacvorbis.FIELD_TITLE, t.Title},
		{flacvorbis.FIELD_ALBUM, t.Album},
		{flacvorbis.FIELD_DATE, t.ReleaseDate},
	}
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		if err := setVorbisField(cmts, field.name, field.value); err != nil {
			return fmt.Errorf("failed to set %s on %s: %w", strings.ToLower(field.name), path, err)
		}
	}

	block := cmts.Marshal()
	f.Meta = replaceBlock(f.Meta, flac.VorbisComment, &block)

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save flac tags to %s: %w", path, err)
	}
	return nil
}

func (flacAdapter) WriteArtwork(path string, jpeg []byte) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to parse flac file %s: %w", path, err)
	}

	picture, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Cover", jpeg, "image/jpeg")
	if err != nil {
		return fmt.Errorf("failed to build flac picture block: %w", err)
	}
	block := picture.Marshal()
	f.Meta = replaceBlock(f.Meta, flac.Picture, &block)

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save flac artwork to %s: %w", path, err)
	}
	return nil
}

// existingComments returns the file's Vorbis comment block, or nil when
// the file has none.
func existingComments(f *flac.File) *flacvorbis.MetaDataBlockVorbisComment {
	for _, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err == nil {
				return cmts
			}
		}
	}
	return nil
}

func vorbisField(cmts *flacvorbis.MetaDataBlockVorbisComment, field string) string {
	vals, err := cmts.Get(field)
	if err != nil || len(vals) == 0 {
		return ""
	}
	return strings.Join(vals, ", ")
}

// setVorbisField replaces every existing value of field with val.
// Vorbis comment field names compare case-insensitively.
func setVorbisField(cmts *flacvorbis.MetaDataBlockVorbisComment, field, val string) error {
	kept := cmts.Comments[:0]
	for _, cmt := range cmts.Comments {
		if name, _, ok := strings.Cut(cmt, "="); !ok || !strings.EqualFold(name, field) {
			kept = append(kept, cmt)
		}
	}
	cmts.Comments = kept
	return cmts.Add(field, val)
}

// replaceBlock swaps the first metadata block of the given type for repl,
// dropping duplicates; repl is appended when no such block exists.
func replaceBlock(meta []*flac.MetaDataBlock, typ flac.BlockType, repl *flac.MetaDataBlock) []*flac.MetaDataBlock {
	out := make([]*flac.MetaDataBlock, 0, len(meta)+1)
	replaced := false
	for _, m := range meta {
		if m.Type == typ {
			if !replaced {
				out = append(out, repl)
				replaced = true
			}
			continue
		}
		out = append(out, m)
	}
	if !replaced {
		out = append(out, repl)
	}
	return out
}
