package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
jwt:
  secret: "test-secret"
log:
  file: "`+filepath.ToSlash(filepath.Join(t.TempDir(), "logs", "app.log"))+`"
analytics:
  timezone: "Asia/Shanghai"
  dashboard_cache_ttl: 1m
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 10, cfg.Gamification.XPFastAnswer)
	assert.Equal(t, 5, cfg.Gamification.XPSlowAnswer)
	assert.Equal(t, 30000, cfg.Gamification.FastAnswerMs)
	assert.Equal(t, 100, cfg.Gamification.XPPerLevel)
	assert.Equal(t, 10, cfg.Analytics.HardestDefaultLimit)
	assert.Equal(t, 15*time.Minute, cfg.Analytics.LessonRecomputeInterval)
	assert.Equal(t, time.Minute, cfg.Analytics.DashboardCacheTTL)
	assert.Equal(t, 200*time.Millisecond, cfg.Repair.InitialBackoff)
	assert.Equal(t, "Asia/Shanghai", cfg.Analytics.Location().String())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := writeConfig(t, `
jwt:
  secret: "from-file"
log:
  file: ""
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:       ServerConfig{Mode: "debug"},
			JWT:          JWTConfig{Secret: "short"},
			Gamification: GamificationConfig{XPFastAnswer: 10, XPSlowAnswer: 5, FastAnswerMs: 30000, XPPerLevel: 100},
			Analytics:    AnalyticsConfig{Timezone: "UTC"},
		}
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(c *Config){
		"short secret in release": func(c *Config) { c.Server.Mode = "release" },
		"zero fast award":         func(c *Config) { c.Gamification.XPFastAnswer = 0 },
		"negative slow award":     func(c *Config) { c.Gamification.XPSlowAnswer = -1 },
		"zero xp per level":       func(c *Config) { c.Gamification.XPPerLevel = 0 },
		"negative threshold":      func(c *Config) { c.Gamification.FastAnswerMs = -1 },
		"unknown timezone":        func(c *Config) { c.Analytics.Timezone = "Nowhere/City" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestAnalyticsLocation_FallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, AnalyticsConfig{}.Location())
	assert.Equal(t, time.UTC, AnalyticsConfig{Timezone: "bogus"}.Location())
}
