package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPrivateKey = "PVT_R1_2qZH5Pi9MJ7P3AB8Q4es6Mv56q54omL5xbpYZG4CC75GUPSEe"
	testPublicKey  = "PUB_R1_6ZNjnsuzXsdhgMzP2JkfWYtWVPfajpzvgA7xn8ytaTCEJoXkYk"
)

func missingDotEnv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("EOSR1_PRIVATE_KEY", testPrivateKey)
	t.Setenv("EOSR1_PUBLIC_KEY", testPublicKey)
	t.Setenv("EOSR1_WORKERS", "4")

	cfg, err := Load("", missingDotEnv(t))
	require.NoError(t, err)

	assert.Equal(t, testPrivateKey, cfg.PrivateKey)
	assert.Equal(t, testPublicKey, cfg.PublicKey)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 256, cfg.MaxSignAttempts)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.RequireKeys())
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eosr1.yaml")
	content := "public_key: " + testPublicKey + "\n" +
		"max_sign_attempts: 32\n" +
		"log:\n  format: json\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, missingDotEnv(t))
	require.NoError(t, err)

	assert.Equal(t, testPublicKey, cfg.PublicKey)
	assert.Equal(t, 32, cfg.MaxSignAttempts)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Error(t, cfg.RequireKeys())
}

func TestLoad_DotEnv(t *testing.T) {
	dotEnv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotEnv, []byte("EOSR1_PRIVATE_KEY="+testPrivateKey+"\n"), 0o600))
	t.Setenv("EOSR1_PRIVATE_KEY", "")
	os.Unsetenv("EOSR1_PRIVATE_KEY")

	cfg, err := Load("", dotEnv)
	require.NoError(t, err)
	assert.Equal(t, testPrivateKey, cfg.PrivateKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "wrong private prefix", env: map[string]string{"EOSR1_PRIVATE_KEY": "PVT_K1_abc"}},
		{name: "wrong public prefix", env: map[string]string{"EOSR1_PUBLIC_KEY": "EOS6abc"}},
		{name: "attempts too high", env: map[string]string{"EOSR1_MAX_SIGN_ATTEMPTS": "100000"}},
		{name: "negative workers", env: map[string]string{"EOSR1_WORKERS": "-1"}},
		{name: "unknown log format", env: map[string]string{"EOSR1_LOG_FORMAT": "xml"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load("", missingDotEnv(t))
			assert.Error(t, err)
		})
	}
}
