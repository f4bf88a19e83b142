package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/cloudbox/internal/flagx"
	"github.com/dmitrijs2005/cloudbox/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the timeout either as a
// string like "30s" or as integer nanoseconds.
type JsonConfig struct {
	APIBaseURL      string         `json:"api_base_url"`
	DatabasePath    string         `json:"database_path"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
	UploadRateLimit int            `json:"upload_rate_limit"`
	LogLevel        string         `json:"log_level"`
	DownloadDir     string         `json:"download_dir"`
	S3Region        string         `json:"s3_region"`
	S3AccessKey     string         `json:"s3_access_key"`
	S3SecretKey     string         `json:"s3_secret_key"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Keys missing from the file keep their current values.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	jc := JsonConfig{
		APIBaseURL:      cfg.APIBaseURL,
		DatabasePath:    cfg.DatabasePath,
		RequestTimeout:  timex.Duration{Duration: cfg.RequestTimeout},
		UploadRateLimit: cfg.UploadRateLimit,
		LogLevel:        cfg.LogLevel,
		DownloadDir:     cfg.DownloadDir,
		S3Region:        cfg.S3Region,
		S3AccessKey:     cfg.S3AccessKey,
		S3SecretKey:     cfg.S3SecretKey,
		S3BaseEndpoint:  cfg.S3BaseEndpoint,
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.APIBaseURL = jc.APIBaseURL
	cfg.DatabasePath = jc.DatabasePath
	cfg.RequestTimeout = jc.RequestTimeout.Duration
	cfg.UploadRateLimit = jc.UploadRateLimit
	cfg.LogLevel = jc.LogLevel
	cfg.DownloadDir = jc.DownloadDir
	cfg.S3Region = jc.S3Region
	cfg.S3AccessKey = jc.S3AccessKey
	cfg.S3SecretKey = jc.S3SecretKey
	cfg.S3BaseEndpoint = jc.S3BaseEndpoint
}
