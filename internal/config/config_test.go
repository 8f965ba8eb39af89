package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, ".cc-codex", cfg.Store.Namespace)
	require.Equal(t, 5, cfg.Store.MaxRounds)
	require.Equal(t, 120, cfg.Store.CleanupMinutes)
	require.True(t, cfg.Journal.Enabled)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  namespace: .reviews
  max_rounds: 3
journal:
  enabled: false
server:
  transport: http
  port: 9000
log:
  level: debug
`), 0o644))

	t.Setenv("TOPICS_CONFIG_PATH", path)
	t.Setenv("TOPICS_MAX_ROUNDS", "7")
	t.Setenv("TOPICS_SERVER_PORT", "9100")
	t.Setenv("TOPICS_AUTH_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ".reviews", cfg.Store.Namespace)
	require.Equal(t, 7, cfg.Store.MaxRounds)
	require.Equal(t, 120, cfg.Store.CleanupMinutes)
	require.False(t, cfg.Journal.Enabled)
	require.Equal(t, "http", cfg.Server.Transport)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "secret", cfg.Server.AuthToken)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_JournalSwitch(t *testing.T) {
	t.Setenv("TOPICS_JOURNAL", "off")
	cfg, err := Load()
	require.NoError(t, err)
	require.False(t, cfg.Journal.Enabled)

	t.Setenv("TOPICS_JOURNAL", "maybe")
	_, err = Load()
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	for name, env := range map[string][2]string{
		"port":      {"TOPICS_SERVER_PORT", "eighty"},
		"rounds":    {"TOPICS_MAX_ROUNDS", "0"},
		"minutes":   {"TOPICS_CLEANUP_MINUTES", "-5"},
		"namespace": {"TOPICS_NAMESPACE", "a/b"},
		"transport": {"TOPICS_TRANSPORT", "carrier-pigeon"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env[0], env[1])
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("TOPICS_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)
}
