package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "[AUTO]", cfg.Notion.AutoHeading)
	assert.Equal(t, "jp", cfg.Serper.Gl)
	assert.Equal(t, 24, cfg.Limits.Hours)
	assert.Equal(t, 5, cfg.Limits.MaxArticlesPerLabel)
	assert.Equal(t, 10, cfg.Limits.DigestTopN)
	assert.Equal(t, 1, cfg.Limits.LabelPauseSecs)
	assert.InDelta(t, 4.0, cfg.Thresholds.High, 0.001)
	assert.InDelta(t, 2.5, cfg.Thresholds.Medium, 0.001)
	assert.Equal(t, "config/targets.yml", cfg.Paths.TargetsFile)
	assert.Equal(t, "logs/notion_audit.jsonl", cfg.Paths.AuditLog)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 30000, cfg.Retry.MaxBackoffMs)
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)

	yaml := `
notion:
  token: secret-token
  articles_db: adb
  daily_db: ddb
  article_properties:
    body_hash:
      name: ContentHash
limits:
  hours: 48
  exclude_types: [stock]
thresholds:
  high: 5.5
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(".", "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.Notion.Token)
	assert.True(t, cfg.Notion.Enabled())
	assert.Equal(t, "ContentHash", cfg.Notion.ArticleProperties["body_hash"].Name)
	assert.Equal(t, 48, cfg.Limits.Hours)
	assert.Equal(t, []string{"stock"}, cfg.Limits.ExcludeTypes)
	assert.InDelta(t, 5.5, cfg.Thresholds.High, 0.001)
	assert.InDelta(t, 2.5, cfg.Thresholds.Medium, 0.001) // default kept
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestNotionEnabled(t *testing.T) {
	assert.False(t, NotionConfig{}.Enabled())
	assert.False(t, NotionConfig{Token: "t", ArticlesDB: "a"}.Enabled())
	assert.True(t, NotionConfig{Token: "t", ArticlesDB: "a", DailyDB: "d"}.Enabled())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
