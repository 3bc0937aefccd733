package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, "lastfm:\n  api_key: abc\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.LastFM.APIKey)
	assert.Equal(t, 10*time.Second, cfg.LastFM.Timeout)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.NotEmpty(t, cfg.Storage.DataDir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.RedirectDelay)
	assert.Equal(t, 10*time.Minute, cfg.Server.ViewTTL)
	assert.InDelta(t, 2.33, cfg.Render.Scale, 0.001)
	assert.Equal(t, "png", cfg.Render.Encoding)
	assert.Equal(t, 16, cfg.Chart.TableLimit)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `
lastfm:
  api_key: abc
  timeout: 5s
storage:
  driver: bolt
  data_dir: /tmp/chartfm-test
server:
  redirect_delay: 1s
render:
  scale: 1.75
  encoding: jpeg
chart:
  table_limit: 25
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.LastFM.Timeout)
	assert.Equal(t, "bolt", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/chartfm-test", cfg.Storage.DataDir)
	assert.Equal(t, time.Second, cfg.Server.RedirectDelay)
	assert.InDelta(t, 1.75, cfg.Render.Scale, 0.001)
	assert.Equal(t, "jpeg", cfg.Render.Encoding)
	assert.Equal(t, 25, cfg.Chart.TableLimit)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CHARTFM_LASTFM_API_KEY", "from-env")
	t.Setenv("CHARTFM_SERVER_ADDR", ":9999")
	path := writeConfig(t, "lastfm:\n  api_key: from-file\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LastFM.APIKey)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoad_Validation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := map[string]string{
		"missing api key": "storage:\n  driver: sqlite\n",
		"bad driver":      "lastfm:\n  api_key: abc\nstorage:\n  driver: redis\n",
		"scale too large": "lastfm:\n  api_key: abc\nrender:\n  scale: 9\n",
		"bad encoding":    "lastfm:\n  api_key: abc\nrender:\n  encoding: gif\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestRead_DoesNotValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Read(writeConfig(t, "storage:\n  driver: file\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.LastFM.APIKey)
	assert.Error(t, cfg.Validate())
}

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Read(writeConfig(t, "lastfm:\n  api_key: abc\n"))
	require.NoError(t, err)
	cfg.Storage.Driver = "file"
	cfg.Chart.TableLimit = 30

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", loaded.LastFM.APIKey)
	assert.Equal(t, "file", loaded.Storage.Driver)
	assert.Equal(t, 30, loaded.Chart.TableLimit)
}

func TestSave_KeepsEverySetting(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Read(writeConfig(t, `lastfm:
  api_key: abc
  timeout: 30s
storage:
  driver: redis
  data_dir: /srv/chartfm
  redis:
    addr: cache:6380
    password: hunter2
    db: 4
server:
  redirect_delay: 5s
  view_ttl: 1h
render:
  jpeg_quality: 75
  workers: 4
log:
  level: debug
  file: /var/log/chartfm.log
`))
	require.NoError(t, err)
	cfg.LastFM.APIKey = "def"

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "def", loaded.LastFM.APIKey)
	assert.Equal(t, 30*time.Second, loaded.LastFM.Timeout)
	assert.Equal(t, "redis", loaded.Storage.Driver)
	assert.Equal(t, "/srv/chartfm", loaded.Storage.DataDir)
	assert.Equal(t, RedisConfig{Addr: "cache:6380", Password: "hunter2", DB: 4}, loaded.Storage.Redis)
	assert.Equal(t, 5*time.Second, loaded.Server.RedirectDelay)
	assert.Equal(t, time.Hour, loaded.Server.ViewTTL)
	assert.Equal(t, 75, loaded.Render.JPEGQuality)
	assert.Equal(t, 4, loaded.Render.Workers)
	assert.Equal(t, LogConfig{Level: "debug", File: "/var/log/chartfm.log"}, loaded.Log)
}

func TestPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	assert.Equal(t, "/tmp/custom.yaml", Path("/tmp/custom.yaml"))
	assert.Equal(t, filepath.Join(GetConfigDir(), "config.yaml"), Path(""))
}
