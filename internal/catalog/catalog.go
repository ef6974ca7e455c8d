// Package catalog loads the track list produced by the metadata tool and
// derives each track's canonical location on disk.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrCatalogUnreadable is wrapped by every Load failure. Without a catalog
// there is nothing to reconcile, so callers treat it as fatal.
var ErrCatalogUnreadable = errors.New("catalog unreadable")

// Catalog is the ordered track list of one playlist, album or single track.
type Catalog struct {
	Name   string
	Tracks []Track
}

// IsCollection reports whether the catalog came from a multi-track source.
func (c Catalog) IsCollection() bool {
	return strings.TrimSpace(c.Name) != ""
}

// Load reads a catalog file: a JSON array of track objects. Missing or
// invalid fields are defaulted; only an absent or structurally invalid
// file is an error.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("%w: %v", ErrCatalogUnreadable, err)
	}
	return Parse(data)
}

// Parse decodes catalog file contents.
func Parse(data []byte) (Catalog, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return Catalog{}, fmt.Errorf("%w: %v", ErrCatalogUnreadable, err)
	}
	if records == nil {
		return Catalog{}, fmt.Errorf("%w: expected an array of tracks", ErrCatalogUnreadable)
	}

	var cat Catalog
	if len(records) > 0 {
		cat.Name = stringField(records[0], "list_name")
	}

	cat.Tracks = make([]Track, 0, len(records))
	for i, rec := range records {
		if rec == nil {
			return Catalog{}, fmt.Errorf("%w: entry %d is not an object", ErrCatalogUnreadable, i)
		}
		cat.Tracks = append(cat.Tracks, trackFromRecord(rec))
	}
	return cat, nil
}

func trackFromRecord(rec map[string]any) Track {
	title := firstString(rec, "name", "title")
	artist := firstArtist(rec["artists"])
	if artist == "" {
		artist = stringField(rec, "artist")
	}
	album := firstString(rec, "album_name", "album")

	number := 0
	for _, key := range []string{"track_number", "track-number"} {
		if n, ok := intField(rec[key]); ok && n != 0 {
			number = n
			break
		}
	}

	return NewTrack(title, artist, album, number)
}

func firstString(rec map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringField(rec, key); s != "" {
			return s
		}
	}
	return ""
}

func stringField(rec map[string]any, key string) string {
	s, _ := rec[key].(string)
	return s
}

func firstArtist(v any) string {
	switch artists := v.(type) {
	case []any:
		if len(artists) == 0 {
			return ""
		}
		s, _ := artists[0].(string)
		return s
	case string:
		return artists
	}
	return ""
}

// intField accepts JSON numbers and numeric strings. Fractional values
// and anything else are rejected.
func intField(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}
