// Package config loads application configuration from environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSearchTerms is used when neither the environment nor a show config
// file supplies search terms.
var DefaultSearchTerms = []string{"Your Show trailer", "Your Show review"}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	YouTubeAPIKey       string
	SearchTerms         []string
	PublishedAfter      time.Time
	MaxVideos           int
	MaxCommentsPerVideo int
	RetryBackoff        time.Duration
	MaxRetries          int
	RequestsPerSecond   float64
	CollectInterval     time.Duration

	DataDir        string
	ShowConfigPath string
	ShowID         string
	Lang           string

	ListenAddr string
	DBPath     string
	LogLevel   string
}

// HasYouTubeCredentials returns true when an API key is configured. The
// composition root only builds a YouTube client when this is true.
func (c *Config) HasYouTubeCredentials() bool {
	return c.YouTubeAPIKey != ""
}

// ShowConfig is the optional per-show override file. Fields left empty keep
// the environment values.
type ShowConfig struct {
	YouTubeSearchTerms []string `json:"youtube_search_terms"`
	ShowID             string   `json:"show_id"`
}

// Load reads configuration from environment variables and returns a validated Config.
// A .env file (MENTIONPIPE_ENV_FILE, default ".env") is loaded first if present;
// real environment variables take precedence over it. The YouTube API key
// (MENTIONPIPE_YOUTUBE_API_KEY) is optional here; runs fail fast without it.
// A show config file (MENTIONPIPE_SHOW_CONFIG_PATH, default <data dir>/ShowConfig.json)
// overrides search terms and show id when present.
func Load() (*Config, error) {
	envFile := ".env"
	if v, ok := os.LookupEnv("MENTIONPIPE_ENV_FILE"); ok {
		envFile = v
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file %q: %w", envFile, err)
	}

	cfg := &Config{
		YouTubeAPIKey:       os.Getenv("MENTIONPIPE_YOUTUBE_API_KEY"),
		SearchTerms:         DefaultSearchTerms,
		PublishedAfter:      time.Now().UTC().Add(-7 * 24 * time.Hour).Truncate(time.Second),
		MaxVideos:           25,
		MaxCommentsPerVideo: 200,
		RetryBackoff:        5 * time.Second,
		MaxRetries:          5,
		RequestsPerSecond:   5,
		DataDir:             "data",
		ShowID:              os.Getenv("MENTIONPIPE_SHOW_ID"),
		Lang:                "en",
		ListenAddr:          "127.0.0.1:8080",
		DBPath:              "mentionpipe.db",
		LogLevel:            "info",
	}

	if v, ok := os.LookupEnv("MENTIONPIPE_YT_SEARCH_TERMS"); ok && v != "" {
		cfg.SearchTerms = splitList(v)
	}

	if v, ok := os.LookupEnv("MENTIONPIPE_YT_PUBLISHED_AFTER"); ok && v != "" {
		t, err := parseCutoff(v)
		if err != nil {
			return nil, fmt.Errorf("MENTIONPIPE_YT_PUBLISHED_AFTER has invalid timestamp %q: %w", v, err)
		}
		cfg.PublishedAfter = t
	}

	var err error
	if cfg.MaxVideos, err = positiveInt("MENTIONPIPE_YT_MAX_VIDEOS", cfg.MaxVideos); err != nil {
		return nil, err
	}
	if cfg.MaxCommentsPerVideo, err = positiveInt("MENTIONPIPE_YT_MAX_COMMENTS_PER_VIDEO", cfg.MaxCommentsPerVideo); err != nil {
		return nil, err
	}

	if v, ok := os.LookupEnv("MENTIONPIPE_YT_MAX_RETRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("MENTIONPIPE_YT_MAX_RETRIES must be a non-negative integer, got %q", v)
		}
		cfg.MaxRetries = n
	}

	if v, ok := os.LookupEnv("MENTIONPIPE_YT_RETRY_BACKOFF"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("MENTIONPIPE_YT_RETRY_BACKOFF has invalid duration %q: %w", v, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("MENTIONPIPE_YT_RETRY_BACKOFF must not be negative, got %q", v)
		}
		cfg.RetryBackoff = d
	}

	if v, ok := os.LookupEnv("MENTIONPIPE_YT_REQUESTS_PER_SECOND"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("MENTIONPIPE_YT_REQUESTS_PER_SECOND has invalid number %q: %w", v, err)
		}
		cfg.RequestsPerSecond = f
	}

	if v, ok := os.LookupEnv("MENTIONPIPE_COLLECT_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("MENTIONPIPE_COLLECT_INTERVAL must be a non-negative duration, got %q", v)
		}
		cfg.CollectInterval = d
	}

	if v, ok := os.LookupEnv("MENTIONPIPE_DATA_DIR"); ok && v != "" {
		cfg.DataDir = v
	}
	cfg.ShowConfigPath = filepath.Join(cfg.DataDir, "ShowConfig.json")
	if v, ok := os.LookupEnv("MENTIONPIPE_SHOW_CONFIG_PATH"); ok && v != "" {
		cfg.ShowConfigPath = v
	}

	if v, ok := os.LookupEnv("MENTIONPIPE_LANG"); ok && v != "" {
		cfg.Lang = v
	}
	if v, ok := os.LookupEnv("MENTIONPIPE_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("MENTIONPIPE_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("MENTIONPIPE_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}

	show, err := LoadShowConfig(cfg.ShowConfigPath)
	if err != nil {
		return nil, err
	}
	if show != nil {
		if len(show.YouTubeSearchTerms) > 0 {
			cfg.SearchTerms = show.YouTubeSearchTerms
		}
		if show.ShowID != "" {
			cfg.ShowID = show.ShowID
		}
	}

	if len(cfg.SearchTerms) == 0 {
		return nil, errors.New("no search terms configured: set MENTIONPIPE_YT_SEARCH_TERMS")
	}

	return cfg, nil
}

// LoadShowConfig reads a show config file. Returns nil, nil if the file does not exist.
func LoadShowConfig(path string) (*ShowConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading show config %s: %w", path, err)
	}

	var show ShowConfig
	if err := json.Unmarshal(data, &show); err != nil {
		return nil, fmt.Errorf("parsing show config %s: %w", path, err)
	}
	return &show, nil
}

// splitList splits a comma-separated value, trimming blanks.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseCutoff accepts an RFC 3339 timestamp or a bare date (midnight UTC).
func parseCutoff(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, v)
}

func positiveInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
