package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REPORT_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg := Load()

	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Empty(t, cfg.RecordsAPIURL)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, []string{"participation.changed"}, cfg.ConsumerTopics)
	require.Equal(t, 15*time.Second, cfg.FetchTimeout)
	require.False(t, cfg.SummaryAPIEnabled)
	require.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
}

func TestLoadEnvOverridesDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.env")
	require.NoError(t, os.WriteFile(path, []byte("RECORDS_API_URL=http://records.local/\nFETCH_TIMEOUT=3s\nKAFKA_BROKERS=a:9092, b:9092\n"), 0o600))
	t.Setenv("REPORT_ENV_FILE", path)
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("SUMMARY_API_ENABLED", "true")
	t.Cleanup(func() {
		os.Unsetenv("RECORDS_API_URL")
		os.Unsetenv("KAFKA_BROKERS")
	})

	cfg := Load()

	require.Equal(t, "http://records.local", cfg.RecordsAPIURL)
	require.Equal(t, 5*time.Second, cfg.FetchTimeout)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.SummaryAPIEnabled)
}
