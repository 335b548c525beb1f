package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	UserAgent string `json:"user_agent"`
	Retries   int    `json:"retries"`
	Profile   string `json:"profile"`
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "dcmobile.json5"), []byte(`{
		// comments are allowed
		user_agent: "base-ua",
		retries: 3,
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "dcmobile.local.json5"), []byte(`{retries: 5, profile: "me"}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "dcmobile.json5"))
	require.NoError(t, err)
	require.Equal(t, testConfig{UserAgent: "base-ua", Retries: 5, Profile: "me"}, cfg)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nothing.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestWithDefaults(t *testing.T) {
	cfg, err := WithDefaults(testConfig{Retries: 1}, testConfig{UserAgent: "ua", Retries: 3})
	require.NoError(t, err)
	require.Equal(t, "ua", cfg.UserAgent)
	require.Equal(t, 1, cfg.Retries)
}
