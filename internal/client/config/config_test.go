package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8080/api", c.APIBaseURL)
	assert.Equal(t, "cloudbox.db", c.DatabasePath)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Zero(t, c.UploadRateLimit)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "downloads", c.DownloadDir)
	assert.Equal(t, "us-east-1", c.S3Region)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cloudbox"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://localhost:8080/api", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	envFile := writeTempFile(t, dir, "cloudbox.env",
		"CLOUDBOX_API_BASE_URL=http://env-file/api\nCLOUDBOX_DATABASE_PATH=env.db\nCLOUDBOX_LOG_LEVEL=warn\n")
	jsonFile := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"database_path": "json.db",
		"log_level":     "error",
	})
	t.Setenv("CLOUDBOX_S3_REGION", "eu-central-1")

	os.Args = []string{"cloudbox", "-e", envFile, "-c", jsonFile, "-l", "debug"}
	cfg := LoadConfig()

	assert.Equal(t, "http://env-file/api", cfg.APIBaseURL)
	assert.Equal(t, "json.db", cfg.DatabasePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "eu-central-1", cfg.S3Region)
}
