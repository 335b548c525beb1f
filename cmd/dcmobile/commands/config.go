package commands

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"dcinside-mobile/internal/components/telemetry"
	"dcinside-mobile/internal/configutil"
	"dcinside-mobile/internal/dcmobile"

	"github.com/joho/godotenv"
)

type EndpointsConfig struct {
	Mobile string `json:"mobile"`
	Sign   string `json:"sign"`
	Upload string `json:"upload"`
}

type Config struct {
	// Database is a sqlite file or a libsql url holding stored sessions.
	Database          string           `json:"database"`
	UserAgent         string           `json:"user_agent"`
	Proxy             string           `json:"proxy"`
	TimeoutSeconds    int              `json:"timeout_seconds"`
	RetryCount        int              `json:"retry_count"`
	RequestsPerSecond float64          `json:"requests_per_second"`
	CloudflareBypass  bool             `json:"cloudflare_bypass"`
	Endpoints         EndpointsConfig  `json:"endpoints"`
	Telemetry         telemetry.Config `json:"telemetry"`
}

var defaultConfig = Config{
	Database:       "dcmobile.db",
	TimeoutSeconds: 15,
	RetryCount:     2,
}

// loadConfig reads the json5 config if there is one, then applies .env and
// the environment. A missing config file is not an error.
func loadConfig(name string) (Config, error) {
	read := configutil.ReadRecursively[Config]
	if filepath.IsAbs(name) {
		read = configutil.ReadConfig[Config]
	}
	out, err := read(name)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	out, err = configutil.WithDefaults(out, defaultConfig)
	if err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "err", err)
	}
	if v := os.Getenv("DCMOBILE_DATABASE"); v != "" {
		out.Database = v
	}
	if v := os.Getenv("DCMOBILE_PROXY"); v != "" {
		out.Proxy = v
	}
	if v := os.Getenv("DCMOBILE_USER_AGENT"); v != "" {
		out.UserAgent = v
	}
	if v := os.Getenv("DCMOBILE_REQUESTS_PER_SECOND"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, err
		}
		out.RequestsPerSecond = rps
	}
	return out, nil
}

func (c Config) clientOptions() dcmobile.ClientOptions {
	ep := dcmobile.DefaultEndpoints()
	if c.Endpoints.Mobile != "" {
		ep.Mobile = c.Endpoints.Mobile
	}
	if c.Endpoints.Sign != "" {
		ep.Sign = c.Endpoints.Sign
	}
	if c.Endpoints.Upload != "" {
		ep.Upload = c.Endpoints.Upload
	}
	return dcmobile.ClientOptions{
		Endpoints:         ep,
		UserAgent:         c.UserAgent,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		RetryCount:        c.RetryCount,
		RequestsPerSecond: c.RequestsPerSecond,
		CloudflareBypass:  c.CloudflareBypass,
		Proxy:             c.Proxy,
	}
}
