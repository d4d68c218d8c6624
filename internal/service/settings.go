package service

import (
	"logicfy_backend/internal/config"
	"sync/atomic"
	"time"
)

// GamificationSettings 经验奖励与等级参数，支持热更新
type GamificationSettings struct {
	XPFastAnswer int
	XPSlowAnswer int
	FastAnswerMs int64
	XPPerLevel   int
	Location     *time.Location
}

func DefaultGamificationSettings() GamificationSettings {
	return GamificationSettings{
		XPFastAnswer: 10,
		XPSlowAnswer: 5,
		FastAnswerMs: 30000,
		XPPerLevel:   100,
		Location:     time.UTC,
	}
}

func SettingsFromConfig(cfg *config.Config) GamificationSettings {
	s := DefaultGamificationSettings()
	g := cfg.Gamification
	if g.XPFastAnswer > 0 {
		s.XPFastAnswer = g.XPFastAnswer
	}
	if g.XPSlowAnswer > 0 {
		s.XPSlowAnswer = g.XPSlowAnswer
	}
	if g.FastAnswerMs > 0 {
		s.FastAnswerMs = int64(g.FastAnswerMs)
	}
	if g.XPPerLevel > 0 {
		s.XPPerLevel = g.XPPerLevel
	}
	s.Location = cfg.Analytics.Location()
	return s
}

// SettingsStore 并发安全的配置快照
type SettingsStore struct {
	v atomic.Pointer[GamificationSettings]
}

func NewSettingsStore(s GamificationSettings) *SettingsStore {
	st := &SettingsStore{}
	st.Store(s)
	return st
}

func (st *SettingsStore) Load() GamificationSettings {
	return *st.v.Load()
}

func (st *SettingsStore) Store(s GamificationSettings) {
	if s.Location == nil {
		s.Location = time.UTC
	}
	st.v.Store(&s)
}

// AwardForElapsed 按作答耗时计算经验奖励
func (s GamificationSettings) AwardForElapsed(elapsedMs int64) int {
	if elapsedMs <= s.FastAnswerMs {
		return s.XPFastAnswer
	}
	return s.XPSlowAnswer
}

// LevelForXP 每 perLevel 经验升一级，最低 1 级
func LevelForXP(total, perLevel int) int {
	if perLevel <= 0 {
		perLevel = 100
	}
	if total < 0 {
		total = 0
	}
	return total/perLevel + 1
}
