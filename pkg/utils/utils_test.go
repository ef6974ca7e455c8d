package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractSpotifyID(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123", "37i9dQZF1DXcBWIGoYBM5M"},
		{"https://open.spotify.com/album/4aawyAB9vmqN3uQ7FjRGTy/", "4aawyAB9vmqN3uQ7FjRGTy"},
		{"https://open.spotify.com/track/3n3Ppam7vgaVa1iaRUc9Lp", "3n3Ppam7vgaVa1iaRUc9Lp"},
		{"https://open.spotify.com/intl-de/track/3n3Ppam7vgaVa1iaRUc9Lp?si=x", "3n3Ppam7vgaVa1iaRUc9Lp"},
		{"https://example.com/something/else", "else"},
		{"justanid", "justanid"},
	}

	for _, tt := range tests {
		if got := ExtractSpotifyID(tt.link); got != tt.want {
			t.Errorf("ExtractSpotifyID(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}

func TestCleanSpotifyURL(t *testing.T) {
	got := CleanSpotifyURL(" https://open.spotify.com/playlist/abc?si=1&pt=2 ")
	if want := "https://open.spotify.com/playlist/abc"; got != want {
		t.Errorf("CleanSpotifyURL() = %q, want %q", got, want)
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "song.mp3")
	dst := filepath.Join(dir, "Artist", "Album", "01 - Song.mp3")
	os.WriteFile(src, []byte("data"), 0644)

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile() error: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source still exists after move")
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "data" {
		t.Errorf("destination content = %q, %v", data, err)
	}
}

func TestMoveFileRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "new.mp3")
	dst := filepath.Join(dir, "existing.mp3")
	os.WriteFile(src, []byte("new"), 0644)
	os.WriteFile(dst, []byte("old"), 0644)

	err := MoveFile(src, dst)
	if !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("MoveFile() error = %v, want ErrDestinationExists", err)
	}
	if data, _ := os.ReadFile(dst); string(data) != "old" {
		t.Errorf("destination overwritten: %q", data)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("source removed despite refused move")
	}
}

func TestMoveFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := MoveFile(filepath.Join(dir, "nope.mp3"), filepath.Join(dir, "x.mp3")); err == nil {
		t.Error("MoveFile() should fail for a missing source")
	}
}

func TestMoveFileEmptyPaths(t *testing.T) {
	if err := MoveFile("", "x"); err == nil {
		t.Error("expected error for empty source")
	}
}
