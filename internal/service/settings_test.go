package service

import (
	"logicfy_backend/internal/config"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
)

func TestSettingsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Gamification: config.GamificationConfig{XPFastAnswer: 20, XPSlowAnswer: 8, FastAnswerMs: 15000},
		Analytics:    config.AnalyticsConfig{Timezone: "Asia/Shanghai"},
	}
	s := SettingsFromConfig(cfg)
	assert.Equal(t, 20, s.XPFastAnswer)
	assert.Equal(t, 8, s.XPSlowAnswer)
	assert.Equal(t, int64(15000), s.FastAnswerMs)
	assert.Equal(t, 100, s.XPPerLevel)
	assert.Equal(t, "Asia/Shanghai", s.Location.String())

	cfg.Analytics.Timezone = "Mars/Olympus"
	assert.Equal(t, time.UTC, SettingsFromConfig(cfg).Location)
}

func TestSettingsStore_ConcurrentReload(t *testing.T) {
	st := NewSettingsStore(DefaultGamificationSettings())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s := DefaultGamificationSettings()
			s.XPFastAnswer = n + 1
			st.Store(s)
		}(i)
		go func() {
			defer wg.Done()
			assert.Positive(t, st.Load().XPFastAnswer)
		}()
	}
	wg.Wait()

	st.Store(GamificationSettings{XPFastAnswer: 1})
	assert.Equal(t, time.UTC, st.Load().Location)
}
