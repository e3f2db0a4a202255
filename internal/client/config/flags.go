package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/aln/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-i", "-p", "-t", "-r", "-b", "-l", "-m"}

// parseFlags overlays cfg with command-line flags. Flags that belong to
// other parsers (such as -c) are filtered out first.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("aln", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "backend base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.DurationVar(&cfg.OnlineCheckInterval, "i", cfg.OnlineCheckInterval, "connectivity probe interval")
	fs.DurationVar(&cfg.StatusPollInterval, "p", cfg.StatusPollInterval, "feeder status poll interval")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.Float64Var(&cfg.RequestRate, "r", cfg.RequestRate, "outbound requests per second")
	fs.IntVar(&cfg.RequestBurst, "b", cfg.RequestBurst, "outbound request burst")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
