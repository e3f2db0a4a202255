package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/aln/internal/flagx"
	"github.com/dmitrijs2005/aln/internal/timex"
)

// jsonConfig mirrors Config for decoding. Pointers tell an absent key from a
// zero value.
type jsonConfig struct {
	ServerBaseURL       *string         `json:"server_base_url"`
	DatabasePath        *string         `json:"database_path"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	StatusPollInterval  *timex.Duration `json:"status_poll_interval"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	RequestRate         *float64        `json:"request_rate"`
	RequestBurst        *int            `json:"request_burst"`
	LogLevel            *string         `json:"log_level"`
	MetricsAddr         *string         `json:"metrics_addr"`
}

// parseJSON overlays cfg with the file named by -c / -config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setIf(&cfg.ServerBaseURL, jc.ServerBaseURL)
	setIf(&cfg.DatabasePath, jc.DatabasePath)
	setIf(&cfg.RequestRate, jc.RequestRate)
	setIf(&cfg.RequestBurst, jc.RequestBurst)
	setIf(&cfg.LogLevel, jc.LogLevel)
	setIf(&cfg.MetricsAddr, jc.MetricsAddr)
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.StatusPollInterval != nil {
		cfg.StatusPollInterval = jc.StatusPollInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
