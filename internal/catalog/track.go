package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"spotsync/internal/textnorm"
)

// Defaults applied when a catalog record is missing a field.
const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// Track is one catalog entry. Fields are unexported so a Track cannot change
// after NewTrack has applied the defaults.
type Track struct {
	title       string
	artist      string
	album       string
	trackNumber int
}

// NewTrack builds a Track, replacing blank fields and negative track numbers
// with their defaults.
func NewTrack(title, artist, album string, trackNumber int) Track {
	if strings.TrimSpace(title) == "" {
		title = UnknownTitle
	}
	if strings.TrimSpace(artist) == "" {
		artist = UnknownArtist
	}
	if strings.TrimSpace(album) == "" {
		album = UnknownAlbum
	}
	if trackNumber < 0 {
		trackNumber = 0
	}
	return Track{
		title:       title,
		artist:      artist,
		album:       album,
		trackNumber: trackNumber,
	}
}

func (t Track) Title() string    { return t.title }
func (t Track) Artist() string   { return t.artist }
func (t Track) Album() string    { return t.album }
func (t Track) TrackNumber() int { return t.trackNumber }

// NormalizedKey is the normalized title and artist joined by a space.
// It is only used for matching.
func (t Track) NormalizedKey() string {
	return textnorm.Normalize(t.title) + " " + textnorm.Normalize(t.artist)
}

// NumberPrefix is the zero-padded track number used in file names.
// Unnumbered tracks are filed as "01".
func (t Track) NumberPrefix() string {
	if t.trackNumber > 0 {
		return fmt.Sprintf("%02d", t.trackNumber)
	}
	return "01"
}

// Query is the search term handed to the acquisition tool.
func (t Track) Query() string {
	return t.title + " " + t.artist
}

func (t Track) String() string {
	return t.title + " – " + t.artist
}

// AlbumDir returns root/artist/album with each segment made filesystem-safe.
func (t Track) AlbumDir(root string) string {
	return filepath.Join(root, textnorm.SafeSegment(t.artist), textnorm.SafeSegment(t.album))
}

// FileName returns the canonical "NN - Title" file name with ext appended.
// ext includes its leading dot.
func (t Track) FileName(ext string) string {
	return textnorm.SafeSegment(t.NumberPrefix()+" - "+t.title) + ext
}

// TargetPath returns the canonical location of the track under root.
func (t Track) TargetPath(root, ext string) string {
	return filepath.Join(t.AlbumDir(root), t.FileName(ext))
}
