package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every REVIEWHUB_ env var that Load() reads.
var allConfigKeys = []string{
	"REVIEWHUB_LISTEN_ADDR",
	"REVIEWHUB_DB_PATH",
	"REVIEWHUB_SEND_REVIEW_MAIL",
	"REVIEWHUB_REQUIRE_SITEWIDE_LOGIN",
}

// isolateConfigEnv saves and unsets all REVIEWHUB_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("REVIEWHUB_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("REVIEWHUB_DB_PATH", "/tmp/test.db")
	t.Setenv("REVIEWHUB_SEND_REVIEW_MAIL", "true")
	t.Setenv("REVIEWHUB_REQUIRE_SITEWIDE_LOGIN", "1")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.True(t, cfg.SendReviewMail)
	assert.True(t, cfg.RequireSitewideLogin)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "reviewhub.db", cfg.DBPath)
	assert.False(t, cfg.SendReviewMail)
	assert.False(t, cfg.RequireSitewideLogin)
}

func TestLoad_InvalidListenAddr(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("REVIEWHUB_LISTEN_ADDR", "not an address")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "REVIEWHUB_LISTEN_ADDR")
}

func TestLoad_InvalidBool(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("REVIEWHUB_SEND_REVIEW_MAIL", "maybe")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "REVIEWHUB_SEND_REVIEW_MAIL")
}
