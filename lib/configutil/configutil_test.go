package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl  string   `json:"base_url"`
	PageSize int      `json:"page_size"`
	Filters  []string `json:"filters"`
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{
		// comments are allowed
		base_url: "https://example.edu/r25ws/wrd/test/run",
		page_size: 500,
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{ page_size: 25 }`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://example.edu/r25ws/wrd/test/run", cfg.BaseUrl)
	require.Equal(t, 25, cfg.PageSize)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadConfigWithDefaults(t *testing.T) {
	defaults := testConfig{PageSize: 500, Filters: []string{"BL", "IN"}}

	cfg, err := ReadConfigWithDefaults(filepath.Join(t.TempDir(), "config.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, cfg)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{ base_url: "https://x.test" }`)
	cfg, err = ReadConfigWithDefaults(filepath.Join(dir, "config.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, "https://x.test", cfg.BaseUrl)
	require.Equal(t, 500, cfg.PageSize)
	require.Equal(t, []string{"BL", "IN"}, cfg.Filters)
}

func TestReadConfigWithDefaultsEmptyList(t *testing.T) {
	defaults := testConfig{PageSize: 500, Filters: []string{"BL", "IN"}}

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{ filters: [] }`)
	cfg, err := ReadConfigWithDefaults(filepath.Join(dir, "config.json5"), defaults)
	require.NoError(t, err)
	require.NotNil(t, cfg.Filters)
	require.Empty(t, cfg.Filters)
	require.Equal(t, 500, cfg.PageSize)

	dir = t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{ filters: ["SP"] }`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{ filters: [] }`)
	cfg, err = ReadConfigWithDefaults(filepath.Join(dir, "config.json5"), defaults)
	require.NoError(t, err)
	require.NotNil(t, cfg.Filters)
	require.Empty(t, cfg.Filters)

	dir = t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{ filters: ["SP"] }`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{ page_size: 10 }`)
	cfg, err = ReadConfigWithDefaults(filepath.Join(dir, "config.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, []string{"SP"}, cfg.Filters)
	require.Equal(t, 10, cfg.PageSize)
	require.Equal(t, []string{"BL", "IN"}, defaults.Filters)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{ base_url: `)
	_, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.Error(t, err)
	require.False(t, os.IsNotExist(err))
}
