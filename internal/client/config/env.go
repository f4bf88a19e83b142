package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/cloudbox/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "CLOUDBOX_"

const defaultEnvFile = ".env"

var envSetters = map[string]func(cfg *Config, v string) error{
	"API_BASE_URL":  func(c *Config, v string) error { c.APIBaseURL = v; return nil },
	"DATABASE_PATH": func(c *Config, v string) error { c.DatabasePath = v; return nil },
	"REQUEST_TIMEOUT": func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.RequestTimeout = d
		return nil
	},
	"UPLOAD_RATE_LIMIT": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.UploadRateLimit = n
		return nil
	},
	"LOG_LEVEL":        func(c *Config, v string) error { c.LogLevel = v; return nil },
	"DOWNLOAD_DIR":     func(c *Config, v string) error { c.DownloadDir = v; return nil },
	"S3_REGION":        func(c *Config, v string) error { c.S3Region = v; return nil },
	"S3_ACCESS_KEY":    func(c *Config, v string) error { c.S3AccessKey = v; return nil },
	"S3_SECRET_KEY":    func(c *Config, v string) error { c.S3SecretKey = v; return nil },
	"S3_BASE_ENDPOINT": func(c *Config, v string) error { c.S3BaseEndpoint = v; return nil },
}

// parseEnv overlays Config with CLOUDBOX_* variables.
//
// Values come from a dotenv file (-e/-env, or ./.env when present) and are
// then overridden by the process environment. Panics on an unreadable
// explicit file or a malformed value.
func parseEnv(cfg *Config) {
	vars := map[string]string{}

	file := flagx.EnvFileFlags()
	explicit := file != ""
	if !explicit {
		file = defaultEnvFile
	}
	fromFile, err := godotenv.Read(file)
	switch {
	case err == nil:
		for k, v := range fromFile {
			vars[k] = v
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		panic(err)
	}

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, envPrefix) {
			vars[k] = v
		}
	}

	if err := applyEnv(cfg, vars); err != nil {
		panic(err)
	}
}

func applyEnv(cfg *Config, vars map[string]string) error {
	for k, v := range vars {
		name, ok := strings.CutPrefix(k, envPrefix)
		if !ok {
			continue
		}
		set, ok := envSetters[name]
		if !ok {
			continue
		}
		if err := set(cfg, v); err != nil {
			return &EnvError{Key: k, Err: err}
		}
	}
	return nil
}

// EnvError reports a variable that could not be parsed.
type EnvError struct {
	Key string
	Err error
}

func (e *EnvError) Error() string {
	return "config: " + e.Key + ": " + e.Err.Error()
}

func (e *EnvError) Unwrap() error {
	return e.Err
}
