// Package config loads the blogbuilder configuration file.
package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Output  OutputConfig  `yaml:"output"`
	Build   BuildConfig   `yaml:"build"`
	Serve   ServeConfig   `yaml:"serve"`
}

// SiteConfig describes the site the posts belong to.
type SiteConfig struct {
	Title       string `yaml:"title"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// ContentConfig locates the post sources.
type ContentConfig struct {
	Dir        string   `yaml:"dir"`
	Extensions []string `yaml:"extensions,omitempty"` // defaults to .md, .markdown, .html
	Include    []string `yaml:"include,omitempty"`    // glob patterns over relative paths, empty means all
	Exclude    []string `yaml:"exclude,omitempty"`    // e.g. "drafts/*"
}

// OutputConfig controls where the site model manifest is written.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Manifest string `yaml:"manifest,omitempty"` // file name within Dir
}

// BuildConfig tunes the build pass.
type BuildConfig struct {
	Workers int `yaml:"workers,omitempty"` // parse workers, defaults to GOMAXPROCS
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr            string `yaml:"addr,omitempty"`
	Watch           bool   `yaml:"watch"`
	RebuildInterval string `yaml:"rebuild_interval,omitempty"` // Go duration, empty disables scheduled rebuilds
	HistoryDB       string `yaml:"history_db,omitempty"`       // sqlite path, ":memory:" by default
}

// RebuildEvery parses the scheduled rebuild interval. Zero means disabled.
func (s ServeConfig) RebuildEvery() (time.Duration, error) {
	if s.RebuildInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.RebuildInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid rebuild_interval %q: %w", s.RebuildInterval, err)
	}
	return d, nil
}

// Load loads configuration from the specified file.
//
// A .env file next to the process is loaded first (best effort), and
// environment variables are expanded inside the YAML content.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Blog"
	}
	if c.Content.Dir == "" {
		c.Content.Dir = "./posts"
	}
	if len(c.Content.Extensions) == 0 {
		c.Content.Extensions = []string{".md", ".markdown", ".html"}
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "./site"
	}
	if c.Output.Manifest == "" {
		c.Output.Manifest = "site.json"
	}
	if c.Build.Workers <= 0 {
		c.Build.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":8080"
	}
	if c.Serve.HistoryDB == "" {
		c.Serve.HistoryDB = ":memory:"
	}
}

const defaultConfig = `# blogbuilder configuration
site:
  title: "My Blog"
  base_url: "https://example.com"

content:
  dir: "./posts"

output:
  dir: "./site"

serve:
  addr: ":8080"
  watch: true
`

// Init writes a default configuration file. Refuses to overwrite an existing
// file unless force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	return os.WriteFile(configPath, []byte(defaultConfig), 0o644)
}
