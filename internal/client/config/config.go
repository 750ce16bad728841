package config

import "time"

// Config holds runtime settings for the Sidereal client.
//
// Fields:
//   - ServerBaseURL: base URL of the backend HTTP API.
//   - DataDir: directory for the local state database and credential slot.
//   - ProbeInterval: how often the client probes server reachability.
//   - RetryDelay: fixed delay before a manually requested re-probe fires.
//   - RequestTimeout: per-request HTTP deadline.
type Config struct {
	ServerBaseURL  string
	DataDir        string
	ProbeInterval  time.Duration
	RetryDelay     time.Duration
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DataDir = "sidereal-data"
	c.ProbeInterval = 30 * time.Second
	c.RetryDelay = 2 * time.Second
	c.RequestTimeout = 15 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
