package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"spotsync/internal/catalog"
	"spotsync/internal/config"
	"spotsync/internal/library"
	"spotsync/internal/logger"
	"spotsync/internal/metadata"
	"spotsync/internal/organizer"
	"spotsync/internal/spotdl"
	"spotsync/internal/syncplan"
	"spotsync/internal/textnorm"
	"spotsync/pkg/utils"
)

// Hooks let a front end follow a run. Any of them may be nil.
type Hooks struct {
	OnMissing  func(total int)
	OnProgress func(t catalog.Track)
	OnWarning  func(msg string)
}

// MetadataFetcher saves the catalog of a Spotify link to a file.
type MetadataFetcher interface {
	SaveMetadata(ctx context.Context, link, dest string) error
}

// Summary is the outcome of one run.
type Summary struct {
	Collection string   `json:"collection,omitempty"`
	Folder     string   `json:"folder"`
	Tracks     int      `json:"tracks"`
	Organized  int      `json:"organized"`
	Duplicates int      `json:"duplicates"`
	Unmatched  []string `json:"unmatched,omitempty"`
	Missing    []string `json:"missing,omitempty"`
}

// Runner executes the sync of one playlist folder. Fetcher and Acquirer
// default to a spotdl client built from Config.
type Runner struct {
	Config   config.Config
	Logger   *logger.Logger
	Fetcher  MetadataFetcher
	Acquirer syncplan.Acquirer
	Hooks    Hooks
}

// New creates a Runner backed by spotdl.
func New(cfg config.Config, log *logger.Logger, hooks Hooks) *Runner {
	client := spotdl.New(cfg, log)
	return &Runner{
		Config:   cfg,
		Logger:   log,
		Fetcher:  client,
		Acquirer: client,
		Hooks:    hooks,
	}
}

// Run executes the full pipeline: fetch catalog → load → organize strays →
// find missing → acquire. Only an unreadable catalog or an unusable playlist
// folder aborts the run.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	cfg := r.Config

	catalogPath, fetched, err := r.catalogFile(ctx)
	if err != nil {
		return Summary{}, err
	}
	if fetched && !cfg.KeepMetadataFile {
		defer os.Remove(catalogPath)
	}

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load catalog: %w", err)
	}

	folder := PlaylistFolder(cfg, cat)
	summary := Summary{Collection: cat.Name, Folder: folder, Tracks: len(cat.Tracks)}
	r.Logger.Info("Loaded %d track(s) from %s", len(cat.Tracks), filepath.Base(catalogPath))

	if _, err := os.Stat(folder); os.IsNotExist(err) && !cfg.DryRun {
		r.Logger.Info("Creating folder: %s", folder)
		if err := os.MkdirAll(folder, 0755); err != nil {
			return summary, fmt.Errorf("failed to create playlist folder: %w", err)
		}
	}

	if stems, err := library.ScanTree(folder); err == nil {
		r.Logger.Debug("%d audio file(s) under %s", len(stems), folder)
	}

	org := organizer.New(r.Logger, cfg.DryRun)
	if cfg.WriteTags {
		org.WriteTags = metadata.WriteTrackTags
	}
	res, err := org.Organize(folder, cat.Tracks)
	if err != nil {
		r.warn(fmt.Sprintf("organizing failed: %v", err))
	}
	summary.Organized = len(res.Moved)
	summary.Duplicates = len(res.Duplicates)
	summary.Unmatched = res.Unmatched
	if len(res.Failed) > 0 && r.Hooks.OnWarning != nil {
		r.Hooks.OnWarning(fmt.Sprintf("%d file(s) could not be moved", len(res.Failed)))
	}

	planner := syncplan.NewPlanner(r.Acquirer, r.Logger, cfg.DryRun)
	planner.OnMissing = r.Hooks.OnMissing
	planner.OnAcquired = r.Hooks.OnProgress
	if cfg.DryRun {
		for _, m := range res.Moved {
			planner.Planned = append(planner.Planned, m.To)
		}
	}

	plan, err := planner.Run(ctx, cat.Tracks, folder)
	for _, t := range plan.Missing {
		summary.Missing = append(summary.Missing, t.String())
	}
	if err != nil {
		return summary, fmt.Errorf("sync interrupted: %w", err)
	}

	return summary, nil
}

// catalogFile returns the catalog path, fetching it first unless a local
// catalog file was configured.
func (r *Runner) catalogFile(ctx context.Context) (string, bool, error) {
	cfg := r.Config
	if cfg.CatalogFile != "" {
		return cfg.CatalogFile, false, nil
	}

	id := utils.ExtractSpotifyID(cfg.SpotifyURL)
	dest := filepath.Join(cfg.BaseDir, textnorm.SafeCollectionName(id)+".spotdl")
	if err := r.Fetcher.SaveMetadata(ctx, utils.CleanSpotifyURL(cfg.SpotifyURL), dest); err != nil {
		return "", false, fmt.Errorf("failed to fetch metadata: %w", err)
	}
	return dest, true, nil
}

// PlaylistFolder is base/<collection name> for playlists and albums, or
// base/<singles folder> for single tracks.
func PlaylistFolder(cfg config.Config, cat catalog.Catalog) string {
	if cat.IsCollection() {
		return filepath.Join(cfg.BaseDir, textnorm.SafeCollectionName(cat.Name))
	}
	return filepath.Join(cfg.BaseDir, cfg.SinglesFolder)
}

func (r *Runner) warn(msg string) {
	r.Logger.Warn("%s", msg)
	if r.Hooks.OnWarning != nil {
		r.Hooks.OnWarning(msg)
	}
}

// Report logs the end-of-run summary.
func (s Summary) Report(log *logger.Logger) {
	log.Info("")
	log.Info("Folder:     %s", s.Folder)
	log.Info("Tracks:     %d", s.Tracks)
	log.Info("Organized:  %d", s.Organized)
	log.Info("Duplicates: %d", s.Duplicates)
	log.Info("Unmatched:  %d", len(s.Unmatched))
	log.Info("Missing:    %d", len(s.Missing))
}
