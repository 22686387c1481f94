package metadata

import "testing"

func TestMerge(t *testing.T) {
	old := Track{
		Artist:      "Old Artist",
		Title:       "Old Title",
		Album:       "Old Album",
		ReleaseDate: "1999-01-01",
		Label:       "Old Label",
	}

	tests := []struct {
		name       string
		recognized Track
		mode       MergeMode
		want       Track
	}{
		{
			name: "replace takes recognized verbatim",
			recognized: Track{
				Artist: "New Artist",
				Title:  "New Title",
			},
			mode: MergeReplace,
			want: Track{
				Artist: "New Artist",
				Title:  "New Title",
			},
		},
		{
			name: "preserve backfills empty fields from disk",
			recognized: Track{
				Artist: "New Artist",
				Title:  "New Title",
			},
			mode: MergePreserve,
			want: Track{
				Artist:      "New Artist",
				Title:       "New Title",
				Album:       "Old Album",
				ReleaseDate: "1999-01-01",
				Label:       "Old Label",
			},
		},
		{
			name: "preserve treats whitespace-only as empty",
			recognized: Track{
				Artist: "   ",
				Title:  "New Title",
			},
			mode: MergePreserve,
			want: Track{
				Artist:      "Old Artist",
				Title:       "New Title",
				Album:       "Old Album",
				ReleaseDate: "1999-01-01",
				Label:       "Old Label",
			},
		},
		{
			name: "preserve keeps recognized values when both set",
			recognized: Track{
				Artist:      "New Artist",
				Title:       "New Title",
				Album:       "New Album",
				ReleaseDate: "2020-03-20",
				Label:       "New Label",
			},
			mode: MergePreserve,
			want: Track{
				Artist:      "New Artist",
				Title:       "New Title",
				Album:       "New Album",
				ReleaseDate: "2020-03-20",
				Label:       "New Label",
			},
		},
		{
			name: "preserve carries artwork URL through",
			recognized: Track{
				Title:      "New Title",
				ArtworkURL: "https://img.example/cover.jpg",
			},
			mode: MergePreserve,
			want: Track{
				Artist:      "Old Artist",
				Title:       "New Title",
				Album:       "Old Album",
				ReleaseDate: "1999-01-01",
				Label:       "Old Label",
				ArtworkURL:  "https://img.example/cover.jpg",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(old, tt.recognized, tt.mode)
			if got != tt.want {
				t.Errorf("Merge() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain name unchanged",
			in:   "Artist - Title",
			want: "Artist - Title",
		},
		{
			name: "path separators dropped",
			in:   "AC/DC - Back\\In Black",
			want: "ACDC - BackIn Black",
		},
		{
			name: "punctuation dropped",
			in:   "What's Up? (Remix) [2020]",
			want: "Whats Up Remix 2020",
		},
		{
			name: "allowed punctuation kept",
			in:   "Mr. Blue-Sky_v2",
			want: "Mr. Blue-Sky_v2",
		},
		{
			name: "unicode letters kept",
			in:   "Sigur Rós - Ágætis byrjun",
			want: "Sigur Rós - Ágætis byrjun",
		},
		{
			name: "trailing whitespace trimmed",
			in:   "Title!!!   ",
			want: "Title",
		},
		{
			name: "everything dropped",
			in:   "!?*&%",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeName(tt.in)
			if got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
			// Sanitizing must be idempotent.
			if again := SanitizeName(got); again != got {
				t.Errorf("SanitizeName(%q) = %q, not idempotent", got, again)
			}
		})
	}
}

func TestTargetName(t *testing.T) {
	tests := []struct {
		name   string
		track  Track
		ext    string
		want   string
		wantOK bool
	}{
		{
			name:   "artist and title",
			track:  Track{Artist: "New", Title: "Song"},
			ext:    ".mp3",
			want:   "New - Song.mp3",
			wantOK: true,
		},
		{
			name:   "illegal characters stripped",
			track:  Track{Artist: "AC/DC", Title: "T.N.T?"},
			ext:    ".flac",
			want:   "ACDC - T.N.T.flac",
			wantOK: true,
		},
		{
			name:   "title only still names the file",
			track:  Track{Title: "Song"},
			ext:    ".wav",
			want:   " - Song.wav",
			wantOK: true,
		},
		{
			name:   "empty metadata skips rename",
			track:  Track{},
			ext:    ".mp3",
			wantOK: false,
		},
		{
			name:   "stem with no name content skips rename",
			track:  Track{Artist: "???", Title: "!!!"},
			ext:    ".mp3",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TargetName(tt.track, tt.ext)
			if ok != tt.wantOK {
				t.Fatalf("TargetName() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("TargetName() = %q, want %q", got, tt.want)
			}
		})
	}
}
