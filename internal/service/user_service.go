package service

import (
	"context"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/repository"
	"logicfy_backend/internal/util"
	"time"
)

// UserService 每日连续学习天数，作为用户行上的缓存维护
type UserService struct {
	UserRepo   *repository.UserRepository
	AnswerRepo *repository.AnswerRepository
	Settings   *SettingsStore
}

func NewUserService(userRepo *repository.UserRepository, answerRepo *repository.AnswerRepository, settings *SettingsStore) *UserService {
	return &UserService{
		UserRepo:   userRepo,
		AnswerRepo: answerRepo,
		Settings:   settings,
	}
}

func (s *UserService) GetUser(ctx context.Context, userID uint) (*model.User, error) {
	u, err := s.UserRepo.FindByID(ctx, userID)
	return u, storeErr(err, util.ErrUserNotFound)
}

// TouchStreak 记录 at 当天有学习行为：昨天活跃则 +1，今天已记录则不变，否则重置为 1
func (s *UserService) TouchStreak(ctx context.Context, userID uint, at time.Time) (int, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	loc := s.Settings.Load().Location
	today := util.DayKey(at, loc)
	streak := nextStreak(user.LastActiveDay, user.Streak, at, loc)
	if today == user.LastActiveDay && streak == user.Streak {
		return streak, nil
	}
	if err := s.UserRepo.UpdateStreak(ctx, userID, streak, today); err != nil {
		return 0, util.Transient(err)
	}
	return streak, nil
}

// RecomputeStreak 从作答流水重算连续天数
func (s *UserService) RecomputeStreak(ctx context.Context, userID uint) (int, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return 0, err
	}
	times, err := s.AnswerRepo.ActiveTimes(ctx, userID)
	if err != nil {
		return 0, util.Transient(err)
	}
	if len(times) == 0 {
		return 0, util.Transient(s.UserRepo.UpdateStreak(ctx, userID, 0, ""))
	}

	loc := s.Settings.Load().Location
	streak, last := 0, ""
	for _, t := range times {
		streak = nextStreak(last, streak, t, loc)
		last = util.DayKey(t, loc)
	}
	return streak, util.Transient(s.UserRepo.UpdateStreak(ctx, userID, streak, last))
}

func nextStreak(lastDay string, streak int, at time.Time, loc *time.Location) int {
	today := util.DayKey(at, loc)
	yesterday := util.DayKey(at.In(loc).AddDate(0, 0, -1), loc)
	switch lastDay {
	case today:
		if streak < 1 {
			return 1
		}
		return streak
	case yesterday:
		return streak + 1
	default:
		return 1
	}
}

// currentStreak 最后活跃日早于昨天时连续天数已中断
func currentStreak(user *model.User, now time.Time, loc *time.Location) int {
	if user.LastActiveDay == "" {
		return 0
	}
	if user.LastActiveDay == util.DayKey(now, loc) ||
		user.LastActiveDay == util.DayKey(now.In(loc).AddDate(0, 0, -1), loc) {
		return user.Streak
	}
	return 0
}
