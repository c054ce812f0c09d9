package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/matheuskafuri/headlines/internal/news"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const APIKeyEnv = "HEADLINES_API_KEY"

const (
	SourceNewsAPI = "newsapi"
	SourceRSS     = "rss"
)

type Source struct {
	Type    string `yaml:"type"`
	BaseURL string `yaml:"base_url"`
	Path    string `yaml:"path"`
	FeedURL string `yaml:"feed_url"`
}

type Config struct {
	Source         Source `yaml:"source"`
	APIKey         string `yaml:"api_key"`
	Query          string `yaml:"query"`
	PageSize       int    `yaml:"page_size"`
	RequestTimeout string `yaml:"request_timeout"`
	Retries        int    `yaml:"retries"`
	DownloadsDir   string `yaml:"downloads_dir"`
	Identity       string `yaml:"identity"`
	Dedupe         bool   `yaml:"dedupe"`
	LogLevel       string `yaml:"log_level"`
}

// Key returns the API key, preferring the environment over the file.
func (c *Config) Key() string {
	if k := os.Getenv(APIKeyEnv); k != "" {
		return k
	}
	return c.APIKey
}

func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// RequestBudget bounds one page load or image download including retries.
func (c *Config) RequestBudget() time.Duration {
	return c.Timeout() * time.Duration(max(c.Retries, 0)+2)
}

// Downloads returns the image directory, defaulting to the user's
// download directory. A leading ~ is expanded.
func (c *Config) Downloads() string {
	dir := c.DownloadsDir
	switch {
	case dir == "":
		return xdg.UserDirs.Download
	case dir == "~":
		return xdg.Home
	case strings.HasPrefix(dir, "~/"):
		return filepath.Join(xdg.Home, dir[2:])
	default:
		return dir
	}
}

func (c *Config) IdentityMode() news.IdentityMode {
	if c.Identity == string(news.IdentityHash) {
		return news.IdentityHash
	}
	return news.IdentityTitle
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "headlines", "config.yaml")
}

func MediaIndexPath() string {
	return filepath.Join(xdg.CacheHome, "headlines", "media.db")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, "headlines", "headlines.log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path (the XDG location when empty). Keys the
// file leaves out keep their default values. A missing file is created
// from the defaults.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults still apply
			_ = writeDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	switch cfg.Source.Type {
	case SourceNewsAPI:
		if err := checkHTTPURL("source.base_url", cfg.Source.BaseURL); err != nil {
			return err
		}
		if !strings.HasPrefix(cfg.Source.Path, "/") {
			return fmt.Errorf("source.path must start with /, got %q", cfg.Source.Path)
		}
	case SourceRSS:
		if err := checkHTTPURL("source.feed_url", cfg.Source.FeedURL); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown source type %q (valid: newsapi, rss)", cfg.Source.Type)
	}

	if cfg.PageSize < 1 || cfg.PageSize > 100 {
		return fmt.Errorf("page_size must be between 1 and 100, got %d", cfg.PageSize)
	}
	if cfg.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", cfg.Retries)
	}
	if d, err := time.ParseDuration(cfg.RequestTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid request_timeout %q", cfg.RequestTimeout)
	}
	switch news.IdentityMode(cfg.Identity) {
	case news.IdentityTitle, news.IdentityHash:
	default:
		return fmt.Errorf("unknown identity %q (valid: title, hash)", cfg.Identity)
	}
	return nil
}

func checkHTTPURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid url: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: url scheme must be http or https, got %q", field, u.Scheme)
	}
	return nil
}
