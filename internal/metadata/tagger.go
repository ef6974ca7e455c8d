// Package metadata writes catalog metadata into organized audio files.
package metadata

import (
	"fmt"
	"strconv"

	"spotsync/internal/catalog"

	"go.senan.xyz/taglib"
)

// WriteTrackTags stores the track's title, artist, album and number in the
// file at path. Existing tags not listed here are left untouched.
func WriteTrackTags(path string, t catalog.Track) error {
	tags := map[string][]string{
		taglib.Title:  {t.Title()},
		taglib.Artist: {t.Artist()},
		taglib.Album:  {t.Album()},
	}
	if t.TrackNumber() > 0 {
		tags[taglib.TrackNumber] = []string{strconv.Itoa(t.TrackNumber())}
	}

	if err := taglib.WriteTags(path, tags, 0); err != nil {
		return fmt.Errorf("failed to write tags to %s: %w", path, err)
	}
	return nil
}
