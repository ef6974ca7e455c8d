package catalog

import (
	"path/filepath"
	"testing"
)

func TestTargetPath(t *testing.T) {
	root := filepath.Join("music", "Road Trip")

	tests := []struct {
		name  string
		track Track
		ext   string
		want  string
	}{
		{
			name:  "numbered track",
			track: NewTrack("Yesterday", "The Beatles", "Help!", 13),
			ext:   ".mp3",
			want:  filepath.Join(root, "The Beatles", "Help!", "13 - Yesterday.mp3"),
		},
		{
			name:  "single digit is padded",
			track: NewTrack("Song Title", "Artist", "Album", 3),
			ext:   ".flac",
			want:  filepath.Join(root, "Artist", "Album", "03 - Song Title.flac"),
		},
		{
			name:  "missing number and album",
			track: NewTrack("Title", "Artist", "", 0),
			ext:   ".m4a",
			want:  filepath.Join(root, "Artist", "Unknown Album", "01 - Title.m4a"),
		},
		{
			name:  "separators stay inside segments",
			track: NewTrack("Either/Or", "AC/DC", "Live: 1991", 1),
			ext:   ".opus",
			want:  filepath.Join(root, "AC_DC", "Live_ 1991", "01 - Either_Or.opus"),
		},
		{
			name:  "three digit track number",
			track: NewTrack("Long", "Artist", "Box Set", 104),
			ext:   ".ogg",
			want:  filepath.Join(root, "Artist", "Box Set", "104 - Long.ogg"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.track.TargetPath(root, tt.ext); got != tt.want {
				t.Errorf("TargetPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizedKey(t *testing.T) {
	tr := NewTrack("  Yesterday ", "The  BEATLES", "", 0)
	if got, want := tr.NormalizedKey(), "yesterday the beatles"; got != want {
		t.Errorf("NormalizedKey() = %q, want %q", got, want)
	}
}

func TestNewTrackDefaults(t *testing.T) {
	tr := NewTrack("", " ", "", -1)
	if tr.Title() != UnknownTitle || tr.Artist() != UnknownArtist || tr.Album() != UnknownAlbum || tr.TrackNumber() != 0 {
		t.Errorf("defaults not applied: %+v", tr)
	}
	if tr.NumberPrefix() != "01" {
		t.Errorf("NumberPrefix() = %q, want 01", tr.NumberPrefix())
	}
}

func TestQuery(t *testing.T) {
	tr := NewTrack("Yesterday", "The Beatles", "Help!", 13)
	if got := tr.Query(); got != "Yesterday The Beatles" {
		t.Errorf("Query() = %q", got)
	}
}
