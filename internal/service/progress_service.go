package service

import (
	"context"
	"fmt"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/repository"
	"logicfy_backend/internal/util"
	"logicfy_backend/pkg/monitoring"
	"logicfy_backend/pkg/tracing"
	"math"

	"gorm.io/gorm"
)

// ProgressService 进度汇总引擎：课程 → 小节 → 单元 顺序级联，按 (用户, 目标) 串行
//
// 每一级都是「取 key 锁 → 开事务 → 行锁 → 重算 → 覆盖写入 → 提交 → 释放 key 锁」，
// 各级之间不嵌套持锁，事务内只使用事务句柄。
type ProgressService struct {
	DB           *gorm.DB
	ContentRepo  *repository.ContentRepository
	AnswerRepo   *repository.AnswerRepository
	ProgressRepo *repository.ProgressRepository
	UserRepo     *repository.UserRepository
	Locker       Locker
}

func NewProgressService(
	db *gorm.DB,
	contentRepo *repository.ContentRepository,
	answerRepo *repository.AnswerRepository,
	progressRepo *repository.ProgressRepository,
	userRepo *repository.UserRepository,
	locker Locker,
) *ProgressService {
	return &ProgressService{
		DB:           db,
		ContentRepo:  contentRepo,
		AnswerRepo:   answerRepo,
		ProgressRepo: progressRepo,
		UserRepo:     userRepo,
		Locker:       locker,
	}
}

// percentOf 四舍五入的百分比；未全部完成时不会显示为 100
func percentOf(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	p := int(math.Round(100 * float64(completed) / float64(total)))
	if completed < total && p >= 100 {
		p = 99
	}
	return p
}

func (s *ProgressService) ensureUser(ctx context.Context, userID uint) error {
	ok, err := s.UserRepo.Exists(ctx, userID)
	if err != nil {
		return util.Transient(err)
	}
	if !ok {
		return util.ErrUserNotFound
	}
	return nil
}

// withKey 在 key 锁内执行一次写事务
func (s *ProgressService) withKey(ctx context.Context, key string, fn func(tx *gorm.DB) error) error {
	unlock, err := s.Locker.Lock(ctx, key)
	if err != nil {
		return util.Transient(err)
	}
	defer unlock()
	return s.DB.WithContext(ctx).Transaction(fn)
}

// RecomputeLessonProgress 重算课程进度并依次级联到所属小节与单元
func (s *ProgressService) RecomputeLessonProgress(ctx context.Context, userID, lessonID uint) (p *model.LessonProgress, err error) {
	ctx, span := tracing.StartSpan(ctx, "progress.RecomputeLessonProgress", map[string]uint{"user_id": userID, "lesson_id": lessonID})
	defer func() { tracing.EndSpan(span, err) }()

	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	lesson, err := s.ContentRepo.FindLesson(ctx, lessonID)
	if err != nil {
		return nil, storeErr(err, util.ErrLessonNotFound)
	}

	p, err = s.recomputeLesson(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	section, err := s.ContentRepo.FindSection(ctx, lesson.SectionID)
	if err != nil {
		return nil, storeErr(err, util.ErrSectionNotFound)
	}
	if _, err := s.recomputeSection(ctx, userID, section.ID); err != nil {
		return nil, err
	}
	if _, err := s.recomputeUnit(ctx, userID, section.UnitID); err != nil {
		return nil, err
	}
	return p, nil
}

// RecomputeSectionProgress 只重算小节本身
func (s *ProgressService) RecomputeSectionProgress(ctx context.Context, userID, sectionID uint) (*model.SectionProgress, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.ContentRepo.FindSection(ctx, sectionID); err != nil {
		return nil, storeErr(err, util.ErrSectionNotFound)
	}
	return s.recomputeSection(ctx, userID, sectionID)
}

func (s *ProgressService) RecomputeUnitProgress(ctx context.Context, userID, unitID uint) (*model.UnitProgress, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.ContentRepo.FindUnit(ctx, unitID); err != nil {
		return nil, storeErr(err, util.ErrUnitNotFound)
	}
	return s.recomputeUnit(ctx, userID, unitID)
}

func (s *ProgressService) recomputeLesson(ctx context.Context, userID, lessonID uint) (*model.LessonProgress, error) {
	defer monitoring.ObserveRollup("lesson")()

	var out *model.LessonProgress
	key := fmt.Sprintf("progress:lesson:%d:%d", userID, lessonID)
	err := s.withKey(ctx, key, func(tx *gorm.DB) error {
		progressRepo := s.ProgressRepo.WithTx(tx)
		if _, err := progressRepo.LockLesson(ctx, userID, lessonID); err != nil {
			return util.Transient(err)
		}

		total, err := s.ContentRepo.WithTx(tx).CountLessonQuestions(ctx, lessonID)
		if err != nil {
			return util.Transient(err)
		}
		completed, err := s.AnswerRepo.WithTx(tx).CountDistinctCorrect(ctx, userID, lessonID)
		if err != nil {
			return util.Transient(err)
		}
		if completed > total {
			completed = total
		}

		row := &model.LessonProgress{
			UserID:         userID,
			LessonID:       lessonID,
			CompletedCount: int(completed),
			TotalCount:     int(total),
			Percent:        percentOf(completed, total),
			Completed:      total > 0 && completed == total,
		}
		if err := progressRepo.UpsertLesson(ctx, row); err != nil {
			return util.Transient(err)
		}
		out, err = progressRepo.FindLesson(ctx, userID, lessonID)
		return util.Transient(err)
	})
	return out, err
}

func (s *ProgressService) recomputeSection(ctx context.Context, userID, sectionID uint) (*model.SectionProgress, error) {
	defer monitoring.ObserveRollup("section")()

	var out *model.SectionProgress
	key := fmt.Sprintf("progress:section:%d:%d", userID, sectionID)
	err := s.withKey(ctx, key, func(tx *gorm.DB) error {
		progressRepo := s.ProgressRepo.WithTx(tx)
		if _, err := progressRepo.LockSection(ctx, userID, sectionID); err != nil {
			return util.Transient(err)
		}

		lessonIDs, err := s.ContentRepo.WithTx(tx).LessonIDsInSection(ctx, sectionID)
		if err != nil {
			return util.Transient(err)
		}
		completed, err := progressRepo.CountCompletedLessons(ctx, userID, lessonIDs)
		if err != nil {
			return util.Transient(err)
		}
		total := int64(len(lessonIDs))

		row := &model.SectionProgress{
			UserID:         userID,
			SectionID:      sectionID,
			CompletedCount: int(completed),
			TotalCount:     int(total),
			Percent:        percentOf(completed, total),
		}
		if err := progressRepo.UpsertSection(ctx, row); err != nil {
			return util.Transient(err)
		}
		out, err = progressRepo.FindSection(ctx, userID, sectionID)
		return util.Transient(err)
	})
	return out, err
}

func (s *ProgressService) recomputeUnit(ctx context.Context, userID, unitID uint) (*model.UnitProgress, error) {
	defer monitoring.ObserveRollup("unit")()

	var out *model.UnitProgress
	key := fmt.Sprintf("progress:unit:%d:%d", userID, unitID)
	err := s.withKey(ctx, key, func(tx *gorm.DB) error {
		progressRepo := s.ProgressRepo.WithTx(tx)
		if _, err := progressRepo.LockUnit(ctx, userID, unitID); err != nil {
			return util.Transient(err)
		}

		lessonIDs, err := s.ContentRepo.WithTx(tx).LessonIDsInUnit(ctx, unitID)
		if err != nil {
			return util.Transient(err)
		}
		completed, err := progressRepo.CountCompletedLessons(ctx, userID, lessonIDs)
		if err != nil {
			return util.Transient(err)
		}
		total := int64(len(lessonIDs))

		row := &model.UnitProgress{
			UserID:         userID,
			UnitID:         unitID,
			CompletedCount: int(completed),
			TotalCount:     int(total),
			Percent:        percentOf(completed, total),
		}
		if err := progressRepo.UpsertUnit(ctx, row); err != nil {
			return util.Transient(err)
		}
		out, err = progressRepo.FindUnit(ctx, userID, unitID)
		return util.Transient(err)
	})
	return out, err
}

// SeedLessonTotal 报名时写入初始总数，已有进度行时不覆盖
func (s *ProgressService) SeedLessonTotal(ctx context.Context, userID, lessonID uint) error {
	total, err := s.ContentRepo.CountLessonQuestions(ctx, lessonID)
	if err != nil {
		return util.Transient(err)
	}
	return util.Transient(s.ProgressRepo.SeedLessonTotal(ctx, userID, lessonID, int(total)))
}

func (s *ProgressService) LessonProgress(ctx context.Context, userID uint) ([]model.LessonProgress, error) {
	list, err := s.ProgressRepo.ListLessons(ctx, userID)
	return list, util.Transient(err)
}

func (s *ProgressService) LessonProgressByID(ctx context.Context, userID, lessonID uint) (*model.LessonProgress, error) {
	p, err := s.ProgressRepo.FindLesson(ctx, userID, lessonID)
	return p, storeErr(err, util.ErrProgressNotFound)
}

func (s *ProgressService) SectionProgress(ctx context.Context, userID uint) ([]model.SectionProgress, error) {
	list, err := s.ProgressRepo.ListSections(ctx, userID)
	return list, util.Transient(err)
}

func (s *ProgressService) SectionProgressByID(ctx context.Context, userID, sectionID uint) (*model.SectionProgress, error) {
	p, err := s.ProgressRepo.FindSection(ctx, userID, sectionID)
	return p, storeErr(err, util.ErrProgressNotFound)
}

func (s *ProgressService) UnitProgress(ctx context.Context, userID uint) ([]model.UnitProgress, error) {
	list, err := s.ProgressRepo.ListUnits(ctx, userID)
	return list, util.Transient(err)
}

func (s *ProgressService) UnitProgressByID(ctx context.Context, userID, unitID uint) (*model.UnitProgress, error) {
	p, err := s.ProgressRepo.FindUnit(ctx, userID, unitID)
	return p, storeErr(err, util.ErrProgressNotFound)
}
