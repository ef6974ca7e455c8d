// Package spotdl drives the external spotdl tool: it saves playlist
// metadata to a catalog file and downloads single tracks.
package spotdl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"spotsync/internal/catalog"
	"spotsync/internal/config"
	"spotsync/internal/logger"
)

// Runner executes a command. Tests replace it to avoid spawning spotdl.
type Runner func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error

func execRunner(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Client wraps the spotdl command line.
type Client struct {
	Config config.Config
	Logger *logger.Logger
	Run    Runner
}

// New creates a Client that runs the spotdl binary from cfg.
func New(cfg config.Config, log *logger.Logger) *Client {
	return &Client{
		Config: cfg,
		Logger: log,
		Run:    execRunner,
	}
}

// SaveMetadata writes the catalog of link to dest via `spotdl save`. A
// failing spotdl is only logged; the run stops only if dest was not written.
func (c *Client) SaveMetadata(ctx context.Context, link, dest string) error {
	c.Logger.Info("Fetching playlist metadata...")
	c.Logger.Debug("Metadata file: %s", dest)

	var stderr bytes.Buffer
	args := []string{"save", link, "--save-file", dest}
	if err := c.Run(ctx, c.Config.SpotdlPath, args, c.output(), &stderr); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("metadata fetch cancelled: %w", ctx.Err())
		}
		c.Logger.Warn("spotdl save failed: %v", err)
		if s := strings.TrimSpace(stderr.String()); s != "" {
			c.Logger.Debug("Details: %s", s)
		}
	}

	if _, err := os.Stat(dest); err != nil {
		return fmt.Errorf("%w: metadata file not created: %s", catalog.ErrCatalogUnreadable, dest)
	}
	return nil
}

// buildDownloadArgs constructs the spotdl arguments for one track.
func (c *Client) buildDownloadArgs(t catalog.Track, folder string) []string {
	args := []string{
		t.Query(),
		"--output", filepath.Join(folder, c.Config.OutputTemplate),
	}
	if c.Config.AudioFormat != "" {
		args = append(args, "--format", c.Config.AudioFormat)
	}
	return args
}

// Acquire downloads one track into folder using the output template.
// The returned error is informational; callers do not act on it.
func (c *Client) Acquire(ctx context.Context, t catalog.Track, folder string) error {
	args := c.buildDownloadArgs(t, folder)
	c.Logger.Debug("Running: %s %s", c.Config.SpotdlPath, strings.Join(args, " "))

	var stderr bytes.Buffer
	err := c.Run(ctx, c.Config.SpotdlPath, args, c.output(), &stderr)
	if ctx.Err() != nil {
		return fmt.Errorf("download cancelled: %w", ctx.Err())
	}
	if err != nil {
		return fmt.Errorf("spotdl failed for %q: %w", t.Query(), err)
	}
	return nil
}

func (c *Client) output() io.Writer {
	if c.Config.Verbose {
		return os.Stdout
	}
	return io.Discard
}
