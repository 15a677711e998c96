package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, found, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "data_file: /tmp/x/tasks.txt\nbot_name: Jarvis\nreject_duplicates: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, found, err := Load(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, Config{DataFile: "/tmp/x/tasks.txt", BotName: "Jarvis", RejectDuplicates: true}, cfg)
}

func TestLoadTOMLFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("reject_duplicates = true\n"), 0o644))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.RejectDuplicates)
	assert.Equal(t, DefaultBotName, cfg.BotName)
	assert.Equal(t, Default().DataFile, cfg.DataFile)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bot_name: [unclosed\n"), 0o644))
	_, _, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestSaveAndReload(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		path := filepath.Join(t.TempDir(), name)
		cfg := Default()
		require.NoError(t, cfg.Set("bot_name", "Robo"))
		require.NoError(t, cfg.Set("reject_duplicates", "yes"))
		require.NoError(t, cfg.Save(path))

		got, found, err := Load(path)
		require.NoError(t, err, name)
		assert.True(t, found)
		assert.Equal(t, cfg, got, name)
	}
}

func TestSetValidates(t *testing.T) {
	cfg := Default()
	require.ErrorIs(t, cfg.Set("reject_duplicates", "maybe"), ErrInvalid)
	require.ErrorIs(t, cfg.Set("data_file", ""), ErrInvalid)
	require.ErrorIs(t, cfg.Set("colour", "red"), ErrInvalid)

	require.NoError(t, cfg.Set("bot_name", "none"))
	assert.Equal(t, DefaultBotName, cfg.BotName)
	assert.Equal(t, "false", cfg.Get("reject_duplicates"))
}

func TestDataPath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/root/x", "data", "tasks.txt"), cfg.DataPath("/root/x"))

	cfg.DataFile = "/var/tasks.txt"
	assert.Equal(t, "/var/tasks.txt", cfg.DataPath("/root/x"))
}

func TestDefaultRootHonoursEnv(t *testing.T) {
	t.Setenv(RootEnv, "/srv/chatterbox")
	assert.Equal(t, "/srv/chatterbox", DefaultRoot())
}
