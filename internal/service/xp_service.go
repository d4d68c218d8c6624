package service

import (
	"context"
	"fmt"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/repository"
	"logicfy_backend/internal/util"
	"logicfy_backend/pkg/logger"
	"logicfy_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// XpService 经验流水是唯一数据源，users.xp / users.level 只是随流水同事务写入的缓存
type XpService struct {
	DB               *gorm.DB
	XpRepo           *repository.XpRepository
	UserRepo         *repository.UserRepository
	LeaderboardCache *repository.LeaderboardCache
	Settings         *SettingsStore
	Now              func() time.Time
}

func NewXpService(
	db *gorm.DB,
	xpRepo *repository.XpRepository,
	userRepo *repository.UserRepository,
	leaderboard *repository.LeaderboardCache,
	settings *SettingsStore,
) *XpService {
	return &XpService{
		DB:               db,
		XpRepo:           xpRepo,
		UserRepo:         userRepo,
		LeaderboardCache: leaderboard,
		Settings:         settings,
		Now:              time.Now,
	}
}

// Grant 追加一条经验流水，每次调用都是一次新的发放
func (s *XpService) Grant(ctx context.Context, userID uint, source string, amount int) (*model.XpLog, error) {
	entry, _, err := s.grant(ctx, userID, source, amount, false)
	return entry, err
}

// GrantOnce 同一 source 已存在流水时不再发放，供修复任务重试使用
func (s *XpService) GrantOnce(ctx context.Context, userID uint, source string, amount int) (*model.XpLog, bool, error) {
	return s.grant(ctx, userID, source, amount, true)
}

func (s *XpService) grant(ctx context.Context, userID uint, source string, amount int, once bool) (*model.XpLog, bool, error) {
	if amount <= 0 {
		return nil, false, fmt.Errorf("%w: got %d", util.ErrInvalidAmount, amount)
	}
	if source == "" {
		source = util.XpSourceAdmin
	}

	perLevel := s.Settings.Load().XPPerLevel
	var (
		entry   *model.XpLog
		total   int
		granted bool
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userRepo := s.UserRepo.WithTx(tx)
		xpRepo := s.XpRepo.WithTx(tx)

		if _, err := userRepo.LockByID(ctx, userID); err != nil {
			return storeErr(err, util.ErrUserNotFound)
		}

		if once {
			exists, err := xpRepo.ExistsBySource(ctx, userID, source)
			if err != nil {
				return util.Transient(err)
			}
			if exists {
				return nil
			}
		}

		entry = &model.XpLog{UserID: userID, Source: source, Amount: amount}
		if err := xpRepo.Append(ctx, entry); err != nil {
			return util.Transient(err)
		}

		sum, err := xpRepo.SumByUser(ctx, userID)
		if err != nil {
			return util.Transient(err)
		}
		total = sum
		granted = true
		return util.Transient(userRepo.UpdateXPCache(ctx, userID, total, LevelForXP(total, perLevel)))
	})
	if err != nil {
		return nil, false, err
	}
	if !granted {
		return nil, false, nil
	}

	monitoring.XpGranted.Add(float64(amount))
	s.syncLeaderboard(ctx, userID, total)
	return entry, true, nil
}

func (s *XpService) syncLeaderboard(ctx context.Context, userID uint, total int) {
	if !s.LeaderboardCache.Enabled() {
		return
	}
	if err := s.LeaderboardCache.SetTotal(ctx, userID, total); err != nil {
		logger.Log.Warn("Failed to update xp leaderboard",
			zap.Uint("user_id", userID),
			zap.Error(err))
	}
}

func (s *XpService) ensureUser(ctx context.Context, userID uint) (*model.User, error) {
	u, err := s.UserRepo.FindByID(ctx, userID)
	return u, storeErr(err, util.ErrUserNotFound)
}

// TotalXp 流水累加和
func (s *XpService) TotalXp(ctx context.Context, userID uint) (int, error) {
	if _, err := s.ensureUser(ctx, userID); err != nil {
		return 0, err
	}
	total, err := s.XpRepo.SumByUser(ctx, userID)
	return total, util.Transient(err)
}

// DailyXp date 所在自然日（按统计时区）内获得的经验
func (s *XpService) DailyXp(ctx context.Context, userID uint, date time.Time) (int, error) {
	if _, err := s.ensureUser(ctx, userID); err != nil {
		return 0, err
	}
	from, to := util.DayRange(date, s.Settings.Load().Location)
	total, err := s.XpRepo.SumBetween(ctx, userID, from, to)
	return total, util.Transient(err)
}

func (s *XpService) Level(ctx context.Context, userID uint) (int, error) {
	total, err := s.TotalXp(ctx, userID)
	if err != nil {
		return 0, err
	}
	return LevelForXP(total, s.Settings.Load().XPPerLevel), nil
}

func (s *XpService) Stats(ctx context.Context, userID uint) (*model.XpStats, error) {
	user, err := s.ensureUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings := s.Settings.Load()

	total, err := s.XpRepo.SumByUser(ctx, userID)
	if err != nil {
		return nil, util.Transient(err)
	}
	from, to := util.DayRange(s.Now(), settings.Location)
	daily, err := s.XpRepo.SumBetween(ctx, userID, from, to)
	if err != nil {
		return nil, util.Transient(err)
	}

	level := LevelForXP(total, settings.XPPerLevel)
	return &model.XpStats{
		TotalXp:     total,
		DailyXp:     daily,
		Level:       level,
		NextLevelXp: level * settings.XPPerLevel,
		Streak:      currentStreak(user, s.Now(), settings.Location),
	}, nil
}

func (s *XpService) History(ctx context.Context, userID uint, limit int) ([]model.XpLog, error) {
	if _, err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	logs, err := s.XpRepo.ListByUser(ctx, userID, limit)
	return logs, util.Transient(err)
}

// RebuildUserCache 从流水重算用户经验与等级缓存
func (s *XpService) RebuildUserCache(ctx context.Context, userID uint) (int, error) {
	perLevel := s.Settings.Load().XPPerLevel
	var total int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userRepo := s.UserRepo.WithTx(tx)
		if _, err := userRepo.LockByID(ctx, userID); err != nil {
			return storeErr(err, util.ErrUserNotFound)
		}
		sum, err := s.XpRepo.WithTx(tx).SumByUser(ctx, userID)
		if err != nil {
			return util.Transient(err)
		}
		total = sum
		return util.Transient(userRepo.UpdateXPCache(ctx, userID, total, LevelForXP(total, perLevel)))
	})
	if err != nil {
		return 0, err
	}
	s.syncLeaderboard(ctx, userID, total)
	return total, nil
}

// Leaderboard 优先读取 Redis 排行榜，不可用或为空时回退到数据库
func (s *XpService) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	perLevel := s.Settings.Load().XPPerLevel

	if s.LeaderboardCache.Enabled() {
		scores, err := s.LeaderboardCache.Top(ctx, limit)
		if err != nil {
			logger.Log.Warn("Leaderboard cache unavailable, falling back to database", zap.Error(err))
		} else if len(scores) > 0 {
			ids := make([]uint, len(scores))
			for i, sc := range scores {
				ids[i] = sc.UserID
			}
			users, err := s.UserRepo.FindByIDs(ctx, ids)
			if err != nil {
				return nil, util.Transient(err)
			}
			names := make(map[uint]string, len(users))
			for _, u := range users {
				names[u.ID] = u.Name
			}
			entries := make([]model.LeaderboardEntry, 0, len(scores))
			for _, sc := range scores {
				entries = append(entries, model.LeaderboardEntry{
					Rank:   len(entries) + 1,
					UserID: sc.UserID,
					Name:   names[sc.UserID],
					XP:     sc.XP,
					Level:  LevelForXP(sc.XP, perLevel),
				})
			}
			return entries, nil
		}
	}

	users, err := s.UserRepo.FindTopByXP(ctx, limit)
	if err != nil {
		return nil, util.Transient(err)
	}
	entries := make([]model.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, model.LeaderboardEntry{
			Rank:   i + 1,
			UserID: u.ID,
			Name:   u.Name,
			XP:     u.XP,
			Level:  LevelForXP(u.XP, perLevel),
		})
	}
	return entries, nil
}
