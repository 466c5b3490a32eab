package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testDatabase struct {
	File string `json:"file"`
	Url  string `json:"url"`
}

type testConfig struct {
	Username string       `json:"username"`
	Password string       `json:"password"`
	Database testDatabase `json:"database"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	writeFile(t, name, `{
		// comments are allowed in json5
		username: "manager",
		password: "",
		database: { file: "history.db" },
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{
		password: "secret",
		database: { url: "libsql://example.turso.io" },
	}`)

	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		Username: "manager",
		Password: "secret",
		Database: testDatabase{
			File: "history.db",
			Url:  "libsql://example.turso.io",
		},
	}, cfg)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{username: "local"}`)

	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Username)
}

func TestReadConfigNotFound(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("a", "b", "config.local.json5"), LocalPath(filepath.Join("a", "b", "config.json5")))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	expanded, err := ExpandHome("~/.comunio/history.db")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".comunio", "history.db"), expanded)

	expanded, err = ExpandHome("/tmp/history.db")
	require.NoError(t, err)
	require.Equal(t, "/tmp/history.db", expanded)
}
