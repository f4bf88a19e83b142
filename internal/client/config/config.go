package config

import "time"

// Config holds runtime settings for the cloudbox CLI.
//
// Units: RequestTimeout is a time.Duration; UploadRateLimit is bytes per
// second with 0 meaning unlimited.
type Config struct {
	APIBaseURL      string
	DatabasePath    string
	RequestTimeout  time.Duration
	UploadRateLimit int
	LogLevel        string
	DownloadDir     string

	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BaseEndpoint string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080/api"
	c.DatabasePath = "cloudbox.db"
	c.RequestTimeout = 30 * time.Second
	c.UploadRateLimit = 0
	c.LogLevel = "info"
	c.DownloadDir = "downloads"
	c.S3Region = "us-east-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (and an optional .env file), JSON (if present) and
// command-line flags (if present). Later sources take precedence over
// earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
