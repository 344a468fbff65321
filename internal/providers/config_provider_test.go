package providers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"angelupdate/internal/structures"
)

const testConfigYAML = `webServer:
  host: 127.0.0.1
  port: 9090

logger:
  level: debug
  mode: 0644
  dir: /tmp

cache:
  enabled: true
  size: 16

redis:
  enabled: false
  addr: ""

update:
  contentDir: /tmp/content
  packageDir: /tmp/packages
  responseTTL: 1h
  diffTTL: 10m
  packageMaxAgeDays: 14
  cleanupInterval: 12h
  serviceVersion: 2.0.0

collectors:
  enabled: true
  mockMode: true
  newsInterval: 30m
  weatherInterval: 15m
  recipesInterval: 2h

metrics:
  enabled: true
`

func TestNewConfigProvider_LoadsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0644))

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, "AngelUpdateService", conf.AppName)
	assert.True(t, conf.Debug)
	assert.Equal(t, path, conf.Path)
	assert.Equal(t, "127.0.0.1", conf.WebServer.Host)
	assert.Equal(t, 9090, conf.WebServer.Port)
	assert.Equal(t, "debug", conf.Logger.Level)
	assert.Equal(t, 16, conf.Cache.Size)
	assert.Equal(t, "/tmp/content", conf.Update.ContentDir)
	assert.Equal(t, time.Hour, conf.Update.ResponseTTL)
	assert.Equal(t, 10*time.Minute, conf.Update.DiffTTL)
	assert.Equal(t, 14, conf.Update.PackageMaxAgeDays)
	assert.Equal(t, "2.0.0", conf.Update.ServiceVersion)
	assert.True(t, conf.Collectors.MockMode)
	assert.Equal(t, 30*time.Minute, conf.Collectors.NewsInterval)
	assert.True(t, conf.Metrics.Enabled)
}
