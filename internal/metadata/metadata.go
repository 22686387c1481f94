package metadata

// Track is the normalized metadata record exchanged between pipeline
// stages. Every field is optional; the empty string means "absent".
// ArtworkURL is transient: it points at cover art to fetch and is
// never itself persisted into a file's tags.
type Track struct {
	Artist      string
	Title       string
	Album       string
	ReleaseDate string // full date "2020-03-20" when the service provides one
	Label       string
	ArtworkURL  string
}

// IsZero reports whether every taggable field is absent.
func (t Track) IsZero() bool {
	return t.Artist == "" && t.Title == "" && t.Album == "" &&
		t.ReleaseDate == "" && t.Label == ""
}

// Edit is the operator-adjustable slice of a Track. Label and artwork
// are not editable; they always come from the recognized record.
type Edit struct {
	Artist      string
	Title       string
	Album       string
	ReleaseDate string
}

// EditOf extracts the editable fields of a Track.
func EditOf(t Track) Edit {
	return Edit{
		Artist:      t.Artist,
		Title:       t.Title,
		Album:       t.Album,
		ReleaseDate: t.ReleaseDate,
	}
}

// Apply overlays the edit onto t, replacing the editable fields verbatim.
func (e Edit) Apply(t Track) Track {
	t.Artist = e.Artist
	t.Title = e.Title
	t.Album = e.Album
	t.ReleaseDate = e.ReleaseDate
	return t
}
