// Package library discovers audio files already present on disk.
package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"spotsync/internal/textnorm"
)

// Extensions is the audio allow-list. Files with any other extension are
// invisible to scanning, matching and existence checks.
var Extensions = []string{".mp3", ".wav", ".m4a", ".flac", ".opus", ".ogg"}

var extensionSet = func() map[string]bool {
	m := make(map[string]bool, len(Extensions))
	for _, ext := range Extensions {
		m[ext] = true
	}
	return m
}()

// AudioFile is an audio file found on disk.
type AudioFile struct {
	Path string
	Stem string // file name without extension
	Ext  string // extension as found on disk, with leading dot
}

// IsAudio reports whether name carries an allowed extension (case-insensitive).
func IsAudio(name string) bool {
	return extensionSet[strings.ToLower(filepath.Ext(name))]
}

func newAudioFile(path string) AudioFile {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return AudioFile{
		Path: path,
		Stem: strings.TrimSuffix(base, ext),
		Ext:  ext,
	}
}

// ScanTree walks root recursively and returns the normalized stem of every
// audio file. Unreadable subdirectories are skipped.
func ScanTree(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("directory does not exist: %s", root)
	}

	var stems []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && IsAudio(d.Name()) {
			stems = append(stems, textnorm.Normalize(newAudioFile(path).Stem))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", root, err)
	}
	return stems, nil
}

// ListRootFiles returns the audio files that are direct children of folder,
// in lexical order. Subdirectories are not descended into.
func ListRootFiles(folder string) ([]AudioFile, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", folder, err)
	}

	var files []AudioFile
	for _, e := range entries {
		if e.IsDir() || !IsAudio(e.Name()) {
			continue
		}
		path := filepath.Join(folder, e.Name())
		// Follow symlinks: only regular files count.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, newAudioFile(path))
	}
	return files, nil
}
