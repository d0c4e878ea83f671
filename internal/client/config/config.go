// Package config handles configuration for the client: defaults, an
// optional JSON file overlay, with command-line flags applied on top by
// the CLI layer.
package config

import "time"

// Config holds runtime settings for the visitlog client.
//
// Fields:
//   - ServerBaseURL: base URL of the backend HTTP API.
//   - DatabasePath: path of the local SQLite database file.
//   - AuthToken: bearer token sent with every API request (may be empty).
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - ForceOffline: when true the client never contacts the server,
//     regardless of reachability.
type Config struct {
	ServerBaseURL       string
	DatabasePath        string
	AuthToken           string
	OnlineCheckInterval time.Duration
	ForceOffline        bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "visitlog.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.ForceOffline = false
}

// Load constructs a Config: defaults first, then the JSON file at path
// (skipped when path is empty). Flags are overlaid later by the CLI.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}
