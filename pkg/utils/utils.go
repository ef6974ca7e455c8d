package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
)

// ErrDestinationExists is returned by MoveFile instead of overwriting.
var ErrDestinationExists = errors.New("destination already exists")

// CheckDependencies verifies that the spotdl executable can be found.
func CheckDependencies(spotdl string) error {
	if _, err := exec.LookPath(spotdl); err != nil {
		return fmt.Errorf("required command '%s' not found in PATH. Install with: pip install spotdl", spotdl)
	}
	return nil
}

// CleanSpotifyURL drops query parameters such as ?si=.
func CleanSpotifyURL(link string) string {
	link, _, _ = strings.Cut(strings.TrimSpace(link), "?")
	return link
}

// ExtractSpotifyID returns the playlist, album or track ID of a Spotify
// link, falling back to the last path segment for anything else.
func ExtractSpotifyID(link string) string {
	clean := strings.TrimRight(CleanSpotifyURL(link), "/")

	for _, kind := range []string{"playlist", "album", "track"} {
		if _, rest, ok := strings.Cut(clean, kind+"/"); ok {
			id, _, _ := strings.Cut(rest, "/")
			return id
		}
	}

	if i := strings.LastIndex(clean, "/"); i >= 0 {
		return clean[i+1:]
	}
	return clean
}

// MoveFile moves src to dst, creating dst's directory. It never replaces an
// existing dst. Falls back to copy+delete across filesystems.
func MoveFile(src, dst string) error {
	if src == "" || dst == "" {
		return fmt.Errorf("source and destination paths cannot be empty")
	}

	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("source file does not exist: %s", src)
	}

	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	if err := os.Rename(src, dst); err != nil {
		var linkErr *os.LinkError
		if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
			return copyAndDelete(src, dst)
		}
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}

	return nil
}

func copyAndDelete(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source %s: %w", src, err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source %s: %w", src, err)
	}

	// O_EXCL keeps the no-overwrite guarantee on this path too.
	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, srcInfo.Mode())
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		}
		return fmt.Errorf("failed to create destination %s: %w", dst, err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	if err := dstFile.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to close destination %s: %w", dst, err)
	}

	return os.Remove(src)
}
