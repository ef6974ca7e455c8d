package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultOutputTemplate is the layout spotdl writes acquired tracks into,
// relative to the playlist folder.
const DefaultOutputTemplate = "{artist}/{album}/{track-number} - {title}.{output-ext}"

// Config contains the program configuration
type Config struct {
	SpotifyURL       string `yaml:"-"`
	CatalogFile      string `yaml:"-"`
	BaseDir          string `yaml:"base_dir"`
	SinglesFolder    string `yaml:"singles_folder"`
	SpotdlPath       string `yaml:"spotdl_path"`
	OutputTemplate   string `yaml:"output_template"`
	AudioFormat      string `yaml:"audio_format"`
	WriteTags        bool   `yaml:"write_tags"`
	KeepMetadataFile bool   `yaml:"keep_metadata_file"`
	Verbose          bool   `yaml:"verbose"`
	DryRun           bool   `yaml:"dry_run"`
}

// ValidAudioFormats are the spotdl output formats the library scanner can see.
var ValidAudioFormats = []string{"mp3", "m4a", "opus", "flac", "wav", "ogg"}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BaseDir:          workingDir(),
		SinglesFolder:    "Singles",
		SpotdlPath:       "spotdl",
		OutputTemplate:   DefaultOutputTemplate,
		KeepMetadataFile: true,
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.BaseDir = ExpandHome(cfg.BaseDir)

	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./spotsync.yaml",
		"./spotsync.yml",
		filepath.Join(home, ".config", "spotsync", "config.yaml"),
		filepath.Join(home, ".config", "spotsync", "config.yml"),
		filepath.Join(home, ".spotsync.yaml"),
		filepath.Join(home, ".spotsync.yml"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the current configuration to a YAML file
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "spotsync", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "spotsync", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SpotifyURL == "" && c.CatalogFile == "" {
		return fmt.Errorf("a Spotify link or a catalog file is required")
	}
	if c.SpotifyURL != "" && !strings.Contains(c.SpotifyURL, "spotify.com/") {
		return fmt.Errorf("not a Spotify link: %s", c.SpotifyURL)
	}

	if strings.TrimSpace(c.BaseDir) == "" {
		return fmt.Errorf("base_dir cannot be empty")
	}
	if strings.TrimSpace(c.SinglesFolder) == "" {
		return fmt.Errorf("singles_folder cannot be empty")
	}
	if strings.ContainsAny(c.SinglesFolder, `/\`) {
		return fmt.Errorf("singles_folder must be a single folder name, got %q", c.SinglesFolder)
	}
	if strings.TrimSpace(c.SpotdlPath) == "" {
		return fmt.Errorf("spotdl_path cannot be empty")
	}
	if !strings.Contains(c.OutputTemplate, "{title}") {
		return fmt.Errorf("output_template must contain {title}, got %q", c.OutputTemplate)
	}

	if c.AudioFormat != "" {
		isValid := false
		for _, format := range ValidAudioFormats {
			if c.AudioFormat == format {
				isValid = true
				break
			}
		}
		if !isValid {
			return fmt.Errorf("unsupported audio format '%s', valid formats: %v", c.AudioFormat, ValidAudioFormats)
		}
	}

	return nil
}
