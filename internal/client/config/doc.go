// Package config loads runtime configuration for the cloudbox CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. CLOUDBOX_* variables, read from a dotenv file (-e or -env, or ./.env
//     when present) and then from the process environment (see parseEnv).
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   API base URL
//	-d string   local SQLite database path
//	-t int      request timeout (seconds)
//	-r int      upload rate limit (bytes per second)
//	-l string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be
// either strings like "30s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8080/api",
//	  "database_path": "cloudbox.db",
//	  "request_timeout": "30s",
//	  "upload_rate_limit": 0,
//	  "log_level": "info",
//	  "download_dir": "downloads",
//	  "s3_region": "us-east-1",
//	  "s3_access_key": "",
//	  "s3_secret_key": "",
//	  "s3_base_endpoint": "http://localhost:9000"
//	}
//
// # Environment
//
// Each JSON key has an upper-case CLOUDBOX_ counterpart, e.g.
// CLOUDBOX_API_BASE_URL or CLOUDBOX_REQUEST_TIMEOUT=30s.
package config
