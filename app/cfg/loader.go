package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath      string `long:"db-path" env:"DB_PATH" default:"./data/importer.db" description:"SQLite database file"`
	UploadsDir  string `long:"uploads-dir" env:"UPLOADS_DIR" default:"./uploads/files" description:"Directory for imported media files"`
	SearchIndex string `long:"search-index" env:"SEARCH_INDEX" description:"Search index directory (in-memory when empty)"`
	SeedFile    string `long:"seed-file" env:"SEED_FILE" description:"YAML file with categories and feeds to seed on startup"`

	// HTTP
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://news.example.com)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Import
	UserAgent      string `long:"user-agent" env:"USER_AGENT" description:"User agent string for feed and image requests"`
	ImportInterval int    `long:"import-interval" env:"IMPORT_INTERVAL" default:"3600" description:"Seconds between scheduled imports"`
	LockTTL        int    `long:"lock-ttl" env:"LOCK_TTL" default:"3600" description:"Seconds an import run holds the process lock"`
	Language       string `long:"language" env:"CONTENT_LANGUAGE" default:"en" description:"Locale of imported articles, tags and media"`
	AuthorEmail    string `long:"author-email" env:"AUTHOR_EMAIL" description:"Email of the user imported articles are attributed to"`
	ExtractContent bool   `long:"extract-content" env:"EXTRACT_CONTENT" description:"Fetch the article page when an entry has no body"`

	// Redis
	RedisAddr     string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for caching and events (disabled when empty)"`
	RedisPassword string `long:"redis-password" env:"REDIS_PASSWORD" description:"Redis password"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load reads .env if present, then flags and environment from the process
func Load() (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args and the environment. It returns nil without error when
// help was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:         raw.DBPath,
		UploadsDir:     raw.UploadsDir,
		SearchIndex:    raw.SearchIndex,
		SeedFile:       raw.SeedFile,
		Port:           raw.Port,
		BaseUrl:        raw.BaseUrl,
		APIAccessKey:   raw.APIAccessKey,
		UserAgent:      cmp.Or(raw.UserAgent, DefaultUserAgent),
		ImportInterval: raw.ImportInterval,
		LockTTL:        raw.LockTTL,
		Language:       raw.Language,
		AuthorEmail:    raw.AuthorEmail,
		ExtractContent: raw.ExtractContent,
		RedisAddr:      raw.RedisAddr,
		RedisPassword:  raw.RedisPassword,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func validate(cfg *Cfg) error {
	if cfg.ImportInterval <= 0 {
		return fmt.Errorf("import interval must be positive, got %d", cfg.ImportInterval)
	}
	if cfg.LockTTL <= 0 {
		return fmt.Errorf("lock ttl must be positive, got %d", cfg.LockTTL)
	}
	if cfg.Language == "" {
		return fmt.Errorf("language is required")
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return err
		}
		time.Local = loc
	}
	return nil
}
