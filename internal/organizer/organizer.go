// Package organizer moves stray audio files from a playlist folder's root
// into the canonical artist/album/"NN - Title" layout.
package organizer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"spotsync/internal/catalog"
	"spotsync/internal/library"
	"spotsync/internal/logger"
	"spotsync/internal/matcher"
	"spotsync/pkg/utils"
)

// TagWriter stores track metadata in a moved file.
type TagWriter func(path string, t catalog.Track) error

// Move records one stray file relocated (or, in dry-run, to be relocated).
type Move struct {
	From  string
	To    string
	Track catalog.Track
}

// Result summarizes one Organize call.
type Result struct {
	Moved      []Move
	Duplicates []string // strays whose destination was already occupied, left in place
	Failed     []string // strays that matched but could not be moved
	Unmatched  []string // strays no track claimed, left in place
}

// Organizer relocates stray files. It owns the playlist folder for the
// duration of a call; concurrent calls on one folder are unsafe.
type Organizer struct {
	Logger    *logger.Logger
	DryRun    bool
	WriteTags TagWriter // optional
}

// New creates an Organizer.
func New(log *logger.Logger, dryRun bool) *Organizer {
	return &Organizer{Logger: log, DryRun: dryRun}
}

// Organize matches the root-level audio files of folder against tracks, in
// catalog order, and moves each match to its canonical path. A file is
// offered to at most one track. An occupied destination is never
// overwritten. A missing folder has no strays.
func (o *Organizer) Organize(folder string, tracks []catalog.Track) (Result, error) {
	var res Result

	strays, err := library.ListRootFiles(folder)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, nil
		}
		return res, fmt.Errorf("failed to list stray files: %w", err)
	}
	if len(strays) == 0 {
		return res, nil
	}

	o.Logger.Info("Found %d unorganized file(s) in playlist root. Organizing...", len(strays))

	pool := matcher.NewPool(strays)
	claimed := make(map[string]bool)
	for _, t := range tracks {
		if pool.Len() == 0 {
			break
		}
		f, ok := pool.Take(t)
		if !ok {
			continue
		}
		o.place(folder, f, t, claimed, &res)
	}

	for _, f := range pool.Remaining() {
		res.Unmatched = append(res.Unmatched, f.Path)
	}

	if len(res.Unmatched) > 0 {
		o.Logger.Info("Unmatched root files:")
		for _, p := range res.Unmatched {
			o.Logger.Info(" - %s", filepath.Base(p))
		}
	}
	if len(res.Failed) > 0 {
		o.Logger.Warn("%d file(s) could not be moved", len(res.Failed))
	}

	verb := "Organized"
	if o.DryRun {
		verb = "Would organize"
	}
	o.Logger.Info("%s %d file(s).", verb, len(res.Moved))

	return res, nil
}

func (o *Organizer) place(folder string, f library.AudioFile, t catalog.Track, claimed map[string]bool, res *Result) {
	dest := t.TargetPath(folder, f.Ext)

	// claimed covers destinations a dry run has not actually created.
	if _, err := os.Lstat(dest); err == nil || claimed[dest] {
		o.Logger.Debug("Already organized, leaving %s: %s exists", filepath.Base(f.Path), dest)
		res.Duplicates = append(res.Duplicates, f.Path)
		return
	}

	if o.DryRun {
		claimed[dest] = true
		o.Logger.Info(" - %s -> %s (dry-run)", filepath.Base(f.Path), dest)
		res.Moved = append(res.Moved, Move{From: f.Path, To: dest, Track: t})
		return
	}

	if err := utils.MoveFile(f.Path, dest); err != nil {
		if errors.Is(err, utils.ErrDestinationExists) {
			res.Duplicates = append(res.Duplicates, f.Path)
			return
		}
		o.Logger.Warn("Error moving %s: %v", f.Path, err)
		res.Failed = append(res.Failed, f.Path)
		return
	}

	claimed[dest] = true
	o.Logger.Info(" - %s -> %s", filepath.Base(f.Path), dest)
	res.Moved = append(res.Moved, Move{From: f.Path, To: dest, Track: t})

	if o.WriteTags != nil {
		if err := o.WriteTags(dest, t); err != nil {
			o.Logger.Warn("Failed to tag %s: %v", dest, err)
		}
	}
}
