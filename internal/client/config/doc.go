// Package config loads runtime configuration for the aln terminal client.
//
// Values are resolved in three passes, each overriding the previous one:
//
//  1. built-in defaults (see (*Config).LoadDefaults);
//  2. an optional JSON file named by -c or -config;
//  3. command-line flags.
//
// Flags
//
//	-a string     backend base URL
//	-d string     local database path
//	-i duration   connectivity probe interval
//	-p duration   feeder status poll interval
//	-t duration   per-request timeout
//	-r float      outbound requests per second (0 disables throttling)
//	-b int        outbound request burst
//	-l string     log level (debug, info, warn, error)
//	-m string     listen address for /metrics (empty disables it)
//
// The JSON file uses snake_case keys; durations are strings such as "3s" or
// integer nanoseconds:
//
//	{
//	  "server_base_url": "https://alnpetdev.thomasdurand.fr",
//	  "database_path": "~/.aln/aln.db",
//	  "online_check_interval": "3s",
//	  "status_poll_interval": "30s",
//	  "request_timeout": "10s",
//	  "request_rate": 5,
//	  "request_burst": 5,
//	  "log_level": "info",
//	  "metrics_addr": "127.0.0.1:9464"
//	}
//
// Keys missing from the file keep their default.
package config
