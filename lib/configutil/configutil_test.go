package configutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name        string   `json:"name"`
	Port        int      `json:"port"`
	Departments []string `json:"departments"`
	Nested      struct {
		Endpoint string `json:"endpoint"`
	} `json:"nested"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("a", "config.local.json5"), LocalPath(filepath.Join("a", "config.json5")))
	require.Equal(t, filepath.Join("a", "config.local"), LocalPath(filepath.Join("a", "config")))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	_, err := ReadConfig[testConfig](name)
	require.True(t, errors.Is(err, os.ErrNotExist))

	writeFile(t, name, `{
		// comments are allowed
		name: "syllabus",
		port: 8080,
		departments: ["J", "M"],
	}`)
	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "syllabus", cfg.Name)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, []string{"J", "M"}, cfg.Departments)

	writeFile(t, filepath.Join(dir, "config.local.json5"), `{
		port: 9000,
		nested: { endpoint: "http://localhost:4318" },
	}`)
	cfg, err = ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "syllabus", cfg.Name)
	require.Equal(t, 9000, cfg.Port)
	require.Equal(t, "http://localhost:4318", cfg.Nested.Endpoint)
}

func TestReadConfigWithDefaults(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	defaults := testConfig{Name: "default", Port: 3000, Departments: []string{"C"}}

	cfg, err := ReadConfigWithDefaults(name, defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, cfg)

	writeFile(t, name, `{ port: 4000 }`)
	cfg, err = ReadConfigWithDefaults(name, defaults)
	require.NoError(t, err)
	require.Equal(t, "default", cfg.Name)
	require.Equal(t, 4000, cfg.Port)
	require.Equal(t, []string{"C"}, cfg.Departments)

	writeFile(t, name, `{ port: `)
	_, err = ReadConfigWithDefaults(name, defaults)
	require.Error(t, err)
}

func TestReadConfigExplicitZero(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	defaults := testConfig{Name: "default", Port: 3000}

	writeFile(t, name, `{ port: 0, departments: [] }`)
	cfg, err := ReadConfigWithDefaults(name, defaults)
	require.NoError(t, err)
	require.Equal(t, "default", cfg.Name)
	require.Equal(t, 0, cfg.Port)
	require.NotNil(t, cfg.Departments)
	require.Empty(t, cfg.Departments)

	writeFile(t, name, `{ port: 4000 }`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{ port: 0 }`)
	cfg, err = ReadConfigWithDefaults(name, defaults)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Port)
	require.Nil(t, cfg.Departments)
}

func TestReadRecursively(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "telemetry.json5"), `{ name: "found" }`)

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0700))
	t.Chdir(nested)

	cfg, err := ReadRecursively[testConfig]("telemetry.json5")
	require.NoError(t, err)
	require.Equal(t, "found", cfg.Name)
}
