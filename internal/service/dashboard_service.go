package service

import (
	"context"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/repository"
	"logicfy_backend/internal/util"
	"logicfy_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const recentAnswersOnDashboard = 10

// DashboardService 组合内容规模、经验与统计数据的只读视图
type DashboardService struct {
	ContentRepo    *repository.ContentRepository
	EnrollmentRepo *repository.EnrollmentRepository
	AnswerRepo     *repository.AnswerRepository
	Analytics      *AnalyticsService
	Xp             *XpService
	Progress       *ProgressService
	Cache          *repository.DashboardCache
	HardestLimit   int
	Now            func() time.Time
}

func NewDashboardService(
	contentRepo *repository.ContentRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	answerRepo *repository.AnswerRepository,
	analytics *AnalyticsService,
	xp *XpService,
	progress *ProgressService,
	cache *repository.DashboardCache,
	hardestLimit int,
) *DashboardService {
	if hardestLimit <= 0 {
		hardestLimit = 10
	}
	return &DashboardService{
		ContentRepo:    contentRepo,
		EnrollmentRepo: enrollmentRepo,
		AnswerRepo:     answerRepo,
		Analytics:      analytics,
		Xp:             xp,
		Progress:       progress,
		Cache:          cache,
		HardestLimit:   hardestLimit,
		Now:            time.Now,
	}
}

// AdminDashboard 各部分互不依赖，并发读取；配置了 Redis 时缓存短时间
func (s *DashboardService) AdminDashboard(ctx context.Context) (*model.AdminDashboard, error) {
	if s.Cache.Enabled() {
		cached, err := s.Cache.Get(ctx)
		if err != nil {
			logger.Log.Warn("Dashboard cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	now := s.Now()
	d := &model.AdminDashboard{GeneratedAt: now.UTC()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		totals, err := s.ContentRepo.Totals(gctx)
		if err != nil {
			return err
		}
		d.Totals = *totals
		return nil
	})
	g.Go(func() error {
		lessons, err := s.EnrollmentRepo.TopLessons(gctx, 1)
		if err != nil {
			return err
		}
		if len(lessons) > 0 {
			d.MostFollowedLesson = &lessons[0]
		}
		return nil
	})
	g.Go(func() error {
		units, err := s.EnrollmentRepo.TopUnits(gctx, 1)
		if err != nil {
			return err
		}
		if len(units) > 0 {
			d.MostFollowedUnit = &units[0]
		}
		return nil
	})
	g.Go(func() error {
		qs, err := s.Analytics.QuestionSummary(gctx)
		if err != nil {
			return err
		}
		d.Questions = *qs
		return nil
	})
	g.Go(func() error {
		ls, err := s.Analytics.LessonSummary(gctx)
		if err != nil {
			return err
		}
		d.Lessons = *ls
		return nil
	})
	g.Go(func() error {
		buckets, err := s.ContentRepo.DifficultyDistribution(gctx)
		if err != nil {
			return err
		}
		d.Difficulty = buckets
		return nil
	})
	g.Go(func() error {
		langs, err := s.ContentRepo.ListLanguages(gctx)
		if err != nil {
			return err
		}
		stats := make([]model.LanguageStats, 0, len(langs))
		for i := range langs {
			st, err := s.ContentRepo.LanguageStats(gctx, &langs[i])
			if err != nil {
				return err
			}
			stats = append(stats, *st)
		}
		d.Languages = stats
		return nil
	})
	g.Go(func() error {
		recent, err := s.ContentRepo.AddedSince(gctx, now.AddDate(0, 0, -7).UTC())
		if err != nil {
			return err
		}
		d.RecentAdditions = *recent
		return nil
	})
	g.Go(func() error {
		weekly, err := s.Analytics.WeeklyActivity(gctx, now)
		if err != nil {
			return err
		}
		d.WeeklyActivity = weekly
		return nil
	})
	g.Go(func() error {
		hardest, err := s.Analytics.HardestQuestions(gctx, s.HardestLimit)
		if err != nil {
			return err
		}
		d.HardestQuestions = hardest
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, util.Transient(err)
	}

	if s.Cache.Enabled() {
		if err := s.Cache.Set(ctx, d); err != nil {
			logger.Log.Warn("Dashboard cache write failed", zap.Error(err))
		}
	}
	return d, nil
}

// LearnerDashboard 学员视角：经验、进度与最近作答
func (s *DashboardService) LearnerDashboard(ctx context.Context, userID uint) (*model.LearnerDashboard, error) {
	stats, err := s.Xp.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &model.LearnerDashboard{Stats: *stats}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		units, err := s.Progress.UnitProgress(gctx, userID)
		d.UnitProgress = units
		return err
	})
	g.Go(func() error {
		sections, err := s.Progress.SectionProgress(gctx, userID)
		d.SectionProgress = sections
		return err
	})
	g.Go(func() error {
		answers, err := s.AnswerRepo.ListByUser(gctx, userID, recentAnswersOnDashboard)
		d.RecentAnswers = answers
		return util.Transient(err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// LanguageDetail 语言详情：统计数据与 单元 → 小节 → 课程 树
func (s *DashboardService) LanguageDetail(ctx context.Context, languageID uint) (*model.LanguageDetail, error) {
	lang, err := s.ContentRepo.FindLanguage(ctx, languageID)
	if err != nil {
		return nil, storeErr(err, util.ErrLanguageNotFound)
	}
	stats, err := s.ContentRepo.LanguageStats(ctx, lang)
	if err != nil {
		return nil, util.Transient(err)
	}

	units, err := s.ContentRepo.UnitsOfLanguage(ctx, languageID)
	if err != nil {
		return nil, util.Transient(err)
	}
	unitIDs := make([]uint, len(units))
	for i, u := range units {
		unitIDs[i] = u.ID
	}
	sections, err := s.ContentRepo.SectionsOfUnits(ctx, unitIDs)
	if err != nil {
		return nil, util.Transient(err)
	}
	sectionIDs := make([]uint, len(sections))
	for i, sec := range sections {
		sectionIDs[i] = sec.ID
	}
	lessons, err := s.ContentRepo.LessonsOfSections(ctx, sectionIDs)
	if err != nil {
		return nil, util.Transient(err)
	}
	lessonIDs := make([]uint, len(lessons))
	for i, l := range lessons {
		lessonIDs[i] = l.ID
	}
	questionCounts, err := s.ContentRepo.QuestionCountsByLesson(ctx, lessonIDs)
	if err != nil {
		return nil, util.Transient(err)
	}

	lessonsBySection := make(map[uint][]model.LessonNode)
	for _, l := range lessons {
		lessonsBySection[l.SectionID] = append(lessonsBySection[l.SectionID], model.LessonNode{
			ID:            l.ID,
			Title:         l.Title,
			Order:         l.Order,
			QuestionCount: questionCounts[l.ID],
		})
	}
	sectionsByUnit := make(map[uint][]model.SectionNode)
	for _, sec := range sections {
		nodes := lessonsBySection[sec.ID]
		sectionsByUnit[sec.UnitID] = append(sectionsByUnit[sec.UnitID], model.SectionNode{
			ID:          sec.ID,
			Title:       sec.Title,
			Order:       sec.Order,
			LessonCount: len(nodes),
			Lessons:     nodes,
		})
	}

	detail := &model.LanguageDetail{Language: *lang, Stats: *stats, Units: make([]model.UnitNode, 0, len(units))}
	for _, u := range units {
		nodes := sectionsByUnit[u.ID]
		detail.Units = append(detail.Units, model.UnitNode{
			ID:           u.ID,
			Title:        u.Title,
			Order:        u.Order,
			SectionCount: len(nodes),
			Sections:     nodes,
		})
	}
	return detail, nil
}
