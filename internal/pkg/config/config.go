package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Scraper  ScraperConfig  `yaml:"scraper"`
	Browser  BrowserConfig  `yaml:"browser"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Telegram TelegramConfig `yaml:"telegram"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ScraperConfig struct {
	ScheduleURL string `yaml:"schedule_url"`
	// Inclusive range; equal values scrape a single matchday.
	StartPeriod int           `yaml:"start_period"`
	EndPeriod   int           `yaml:"end_period"`
	WaitTimeout time.Duration `yaml:"wait_timeout"` // Bound for every wait on the page
	OutputDir   string        `yaml:"output_dir"`
	// Links in the match report column with any other text (e.g. "Head-to-Head") are ignored.
	DetailLinkText string `yaml:"detail_link_text"`
	// WriteManifest writes manifest.json with the run outcome next to the artifacts.
	WriteManifest bool `yaml:"write_manifest"`
}

type BrowserConfig struct {
	Mode         string        `yaml:"mode"` // "chrome" or "static"
	ShowWindow   bool          `yaml:"show_window"`
	UserAgent    string        `yaml:"user_agent"`
	ExecPath     string        `yaml:"exec_path"`
	RemoteURL    string        `yaml:"remote_url"` // Attach to a running Chrome instead of starting one
	UserDataDir  string        `yaml:"user_data_dir"`
	Debug        bool          `yaml:"debug"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"` // static mode only
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type MetricsConfig struct {
	Port              int           `yaml:"port"` // 0 disables the health/metrics server
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json, pretty
	File   string `yaml:"file"`   // Optional JSON log file
}

const (
	ModeChrome = "chrome"
	ModeStatic = "static"
)

// Default returns the configuration used for every unset field.
func Default() Config {
	return Config{
		Scraper: ScraperConfig{
			ScheduleURL:    "https://fbref.com/en/comps/9/schedule/Premier-League-Scores-and-Fixtures",
			StartPeriod:    1,
			EndPeriod:      38,
			WaitTimeout:    20 * time.Second,
			OutputDir:      ".",
			DetailLinkText: "Match Report",
		},
		Browser: BrowserConfig{
			Mode:         ModeChrome,
			FetchTimeout: 30 * time.Second,
		},
		Mongo: MongoConfig{
			Database:   "fplstats",
			Collection: "facet_rows",
		},
		Metrics: MetricsConfig{
			ReadHeaderTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config over Default and applies environment overrides.
// Keys present in the file win even when they hold a zero value. An empty
// path yields the defaults.
func Load(configPath string) (*Config, error) {
	config := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadDotEnv loads variables from .env style files that exist; missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Environment variables that override secrets and endpoints from the file.
const (
	EnvPostgresDSN    = "FPLSTATS_POSTGRES_DSN"
	EnvSQLitePath     = "FPLSTATS_SQLITE_PATH"
	EnvMongoURI       = "FPLSTATS_MONGO_URI"
	EnvTelegramToken  = "FPLSTATS_TELEGRAM_TOKEN"
	EnvTelegramChatID = "FPLSTATS_TELEGRAM_CHAT_ID"
	EnvChromeRemote   = "FPLSTATS_CHROME_REMOTE_URL"
)

func applyEnv(cfg *Config) error {
	var env Config
	env.Postgres.DSN = os.Getenv(EnvPostgresDSN)
	env.SQLite.Path = os.Getenv(EnvSQLitePath)
	env.Mongo.URI = os.Getenv(EnvMongoURI)
	env.Telegram.BotToken = os.Getenv(EnvTelegramToken)
	env.Browser.RemoteURL = os.Getenv(EnvChromeRemote)
	if v := os.Getenv(EnvTelegramChatID); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTelegramChatID, err)
		}
		env.Telegram.ChatID = id
	}

	// Only variables that are set (non-zero) replace file values.
	if err := mergo.Merge(cfg, env, mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to apply environment: %w", err)
	}
	return nil
}

// Validate checks the values the scraper cannot run without.
func (c *Config) Validate() error {
	if c.Scraper.ScheduleURL == "" {
		return fmt.Errorf("scraper.schedule_url must be set")
	}
	if c.Scraper.StartPeriod < 0 || c.Scraper.EndPeriod < 0 {
		return fmt.Errorf("scraper periods must be non-negative")
	}
	if c.Scraper.StartPeriod > c.Scraper.EndPeriod {
		return fmt.Errorf("scraper.start_period (%d) is after scraper.end_period (%d)", c.Scraper.StartPeriod, c.Scraper.EndPeriod)
	}
	if c.Scraper.WaitTimeout <= 0 {
		return fmt.Errorf("scraper.wait_timeout must be positive")
	}
	switch c.Browser.Mode {
	case ModeChrome, ModeStatic:
	default:
		return fmt.Errorf("unknown browser.mode %q (want %q or %q)", c.Browser.Mode, ModeChrome, ModeStatic)
	}
	if c.Metrics.Port < 0 {
		return fmt.Errorf("metrics.port must not be negative")
	}
	return nil
}
