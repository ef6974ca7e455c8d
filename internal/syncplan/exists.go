// Package syncplan decides which catalog tracks are missing from a playlist
// folder and hands them to the acquisition tool.
package syncplan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"spotsync/internal/catalog"
	"spotsync/internal/library"
	"spotsync/internal/textnorm"
)

// Exists reports whether folder already holds a file for t. It only reads
// the filesystem, so repeated calls on an unchanged tree agree.
func Exists(t catalog.Track, folder string) bool {
	return ExistsWithPlanned(t, folder, nil)
}

// ExistsWithPlanned is Exists on the tree as it would look once the files
// in planned exist too. A dry run uses it so that its planned moves count
// the same way real moves would.
func ExistsWithPlanned(t catalog.Track, folder string, planned []string) bool {
	albumDir := t.AlbumDir(folder)
	virtual := plannedUnder(albumDir, planned)

	info, err := os.Stat(albumDir)
	onDisk := err == nil && info.IsDir()
	if !onDisk && len(virtual) == 0 {
		return false
	}

	title := textnorm.Normalize(t.Title())
	if t.TrackNumber() > 0 {
		prefix := t.NumberPrefix() + " - "
		if onDisk && hasNumberPrefix(albumDir, prefix) {
			return true
		}
		for _, rel := range virtual {
			if !strings.ContainsRune(rel, filepath.Separator) && hasPrefixNormalized(rel, prefix) {
				return true
			}
		}
	}

	if onDisk && hasTitle(albumDir, title) {
		return true
	}
	for _, rel := range virtual {
		if strings.Contains(textnorm.Normalize(filepath.Base(rel)), title) {
			return true
		}
	}
	return false
}

// plannedUnder returns the audio paths in planned that lie below dir,
// relative to it.
func plannedUnder(dir string, planned []string) []string {
	var rels []string
	for _, p := range planned {
		rel, err := filepath.Rel(dir, p)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if library.IsAudio(rel) {
			rels = append(rels, rel)
		}
	}
	return rels
}

func hasPrefixNormalized(name, prefix string) bool {
	return strings.HasPrefix(textnorm.Normalize(name), textnorm.Normalize(prefix))
}

// hasNumberPrefix scans only the direct children of dir.
func hasNumberPrefix(dir, prefix string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() || !library.IsAudio(e.Name()) {
			continue
		}
		if hasPrefixNormalized(e.Name(), prefix) {
			return true
		}
	}
	return false
}

// hasTitle walks dir recursively for an audio file whose name contains title.
func hasTitle(dir, title string) bool {
	found := false
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && library.IsAudio(d.Name()) && strings.Contains(textnorm.Normalize(d.Name()), title) {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
