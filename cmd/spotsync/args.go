package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"spotsync/internal/config"
)

var (
	errShowHelp   = errors.New("help requested")
	errInitConfig = errors.New("init config requested")
)

// parseArgs parses command-line arguments and loads configuration.
// Priority: CLI flags > config file > defaults
func parseArgs(args []string) (config.Config, string, error) {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return config.Config{}, "", errShowHelp
		}
		if arg == "--init-config" {
			return config.Config{}, "", errInitConfig
		}
	}

	var configPath string
	for i := 0; i < len(args); i++ {
		if args[i] == "--config" || args[i] == "-c" {
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--config requires a path argument")
			}
			configPath = args[i+1]
			break
		}
	}

	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("failed to load config: %w", err)
	}
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--verbose", "-v":
			cfg.Verbose = true

		case "--dry-run", "-n":
			cfg.DryRun = true

		case "--write-tags":
			cfg.WriteTags = true

		case "--base-dir", "-b":
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--base-dir requires a directory")
			}
			i++
			cfg.BaseDir = config.ExpandHome(args[i])

		case "--format", "-f":
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--format requires a format name")
			}
			i++
			cfg.AudioFormat = args[i]

		case "--catalog":
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--catalog requires a file path")
			}
			i++
			cfg.CatalogFile = config.ExpandHome(args[i])

		case "--config", "-c":
			i++

		default:
			if len(arg) > 0 && arg[0] == '-' {
				return config.Config{}, "", fmt.Errorf("unknown flag: %s", arg)
			}
			if cfg.SpotifyURL != "" {
				return config.Config{}, "", fmt.Errorf("only one Spotify link can be given, got %q and %q", cfg.SpotifyURL, arg)
			}
			cfg.SpotifyURL = arg
		}
	}

	return cfg, configPath, nil
}

// isTerminal reports whether f is a character device such as a terminal.
// Piped or redirected input is read without showing the prompt.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// promptLink asks for a Spotify link on in and returns the trimmed answer.
func promptLink(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Paste Spotify playlist link: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read link: %w", err)
	}
	link := strings.TrimSpace(line)
	if link == "" {
		return "", fmt.Errorf("no Spotify link given")
	}
	return link, nil
}

// initConfigFile creates a new config file with default values
func initConfigFile() error {
	path := config.GetDefaultConfigPath()

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config file already exists at: %s\n", path)
		fmt.Println("Delete it first if you want to recreate it.")
		return nil
	}

	cfg := config.DefaultConfig()
	cfg.BaseDir = "~/Music"

	if err := config.SaveConfigFile(cfg, path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Printf("Created default config file at: %s\n", path)
	fmt.Println("\nYou can now edit this file to customize your settings.")
	fmt.Println("Available options:")
	fmt.Println("  base_dir: folder that holds one subfolder per playlist")
	fmt.Println("  singles_folder: subfolder for single tracks (default: Singles)")
	fmt.Println("  spotdl_path: spotdl executable (default: spotdl)")
	fmt.Println("  audio_format: mp3, m4a, opus, flac, wav, ogg (empty: spotdl default)")
	fmt.Println("  write_tags: true/false (tag files when organizing)")
	fmt.Println("  keep_metadata_file: true/false (keep the .spotdl catalog after a run)")
	return nil
}

// printUsage displays the help message
func printUsage() {
	fmt.Println("spotsync - Keep a local folder in sync with a Spotify playlist")
	fmt.Println()
	fmt.Println("Usage: spotsync [options] [spotify_link]")
	fmt.Println()
	fmt.Println("Without a link, spotsync asks for one.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -v, --verbose              Show detailed output")
	fmt.Println("  -n, --dry-run              Show planned moves and missing tracks, change nothing")
	fmt.Println("  -b, --base-dir <dir>       Folder that holds the playlist folders (default: current dir)")
	fmt.Println("  -f, --format <format>      Audio format for new downloads: mp3, m4a, opus, flac, wav, ogg")
	fmt.Println("      --catalog <file>       Use an existing .spotdl catalog instead of fetching one")
	fmt.Println("      --write-tags           Write title/artist/album tags to organized files")
	fmt.Println("  -c, --config <path>        Path to config file")
	fmt.Println("  -h, --help                 Show this help message")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  --init-config              Create a default config file")
	fmt.Println()
	fmt.Println("Config file locations (checked in order):")
	fmt.Println("  ./spotsync.yaml")
	fmt.Println("  ~/.config/spotsync/config.yaml")
	fmt.Println("  ~/.spotsync.yaml")
	fmt.Println()
	fmt.Println("Logging:")
	fmt.Println("  Normal mode: Progress bar shown, detailed logs saved to:")
	fmt.Println("    ~/.local/share/spotsync/logs/")
	fmt.Println("  Verbose mode: All output to stdout, no progress bar, no file logging")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Preview what would be organized and downloaded")
	fmt.Println("  spotsync --dry-run https://open.spotify.com/playlist/...")
	fmt.Println()
	fmt.Println("  # Sync a playlist into ~/Music/<playlist name>")
	fmt.Println("  spotsync -b ~/Music https://open.spotify.com/playlist/...")
	fmt.Println()
	fmt.Println("  # Re-run against a catalog saved earlier")
	fmt.Println("  spotsync --catalog ~/Music/37i9dQZF1DXcBWIGoYBM5M.spotdl")
}
