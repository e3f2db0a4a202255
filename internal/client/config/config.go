package config

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultServerBaseURL is the production backend.
const DefaultServerBaseURL = "https://alnpetdev.thomasdurand.fr"

// Config holds runtime settings for the client.
type Config struct {
	ServerBaseURL       string
	DatabasePath        string
	OnlineCheckInterval time.Duration
	StatusPollInterval  time.Duration
	RequestTimeout      time.Duration
	RequestRate         float64
	RequestBurst        int
	LogLevel            string
	MetricsAddr         string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = DefaultServerBaseURL
	c.DatabasePath = defaultDatabasePath()
	c.OnlineCheckInterval = 3 * time.Second
	c.StatusPollInterval = 30 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.RequestRate = 5
	c.RequestBurst = 5
	c.LogLevel = "info"
	c.MetricsAddr = ""
}

// LoadConfig applies defaults, then the JSON file, then flags from args
// (usually os.Args[1:]).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "aln.db"
	}
	return filepath.Join(dir, "aln", "aln.db")
}
