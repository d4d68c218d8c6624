package service

import (
	"context"
	"errors"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/repository"
	"logicfy_backend/internal/util"
	"logicfy_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnrollmentService 课程报名与关注计数
type EnrollmentService struct {
	DB             *gorm.DB
	EnrollmentRepo *repository.EnrollmentRepository
	ContentRepo    *repository.ContentRepository
	UserRepo       *repository.UserRepository
	Progress       *ProgressService
}

func NewEnrollmentService(
	db *gorm.DB,
	enrollmentRepo *repository.EnrollmentRepository,
	contentRepo *repository.ContentRepository,
	userRepo *repository.UserRepository,
	progress *ProgressService,
) *EnrollmentService {
	return &EnrollmentService{
		DB:             db,
		EnrollmentRepo: enrollmentRepo,
		ContentRepo:    contentRepo,
		UserRepo:       userRepo,
		Progress:       progress,
	}
}

// Enroll 每个 (用户, 课程) 只能报名一次，重复报名返回 ErrEnrollmentExists
func (s *EnrollmentService) Enroll(ctx context.Context, userID, lessonID uint) (*model.LessonEnrollment, error) {
	if ok, err := s.UserRepo.Exists(ctx, userID); err != nil {
		return nil, util.Transient(err)
	} else if !ok {
		return nil, util.ErrUserNotFound
	}
	lesson, err := s.ContentRepo.FindLesson(ctx, lessonID)
	if err != nil {
		return nil, storeErr(err, util.ErrLessonNotFound)
	}
	section, err := s.ContentRepo.FindSection(ctx, lesson.SectionID)
	if err != nil {
		return nil, storeErr(err, util.ErrSectionNotFound)
	}

	enrollment := &model.LessonEnrollment{UserID: userID, LessonID: lessonID, Active: true}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.EnrollmentRepo.WithTx(tx)
		if _, err := repo.Find(ctx, userID, lessonID); err == nil {
			return util.ErrEnrollmentExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return util.Transient(err)
		}
		if err := repo.Create(ctx, enrollment); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrEnrollmentExists
			}
			return util.Transient(err)
		}
		if err := repo.IncLessonFollowers(ctx, lessonID, 1); err != nil {
			return util.Transient(err)
		}
		return util.Transient(repo.IncUnitFollowers(ctx, section.UnitID, 1))
	})
	if err != nil {
		return nil, err
	}

	if err := s.Progress.SeedLessonTotal(ctx, userID, lessonID); err != nil {
		logger.Log.Warn("Failed to seed lesson progress",
			zap.Uint("user_id", userID),
			zap.Uint("lesson_id", lessonID),
			zap.Error(err))
	}
	return enrollment, nil
}

func (s *EnrollmentService) SetActive(ctx context.Context, userID, lessonID uint, active bool) error {
	n, err := s.EnrollmentRepo.SetActive(ctx, userID, lessonID, active)
	if err != nil {
		return util.Transient(err)
	}
	if n == 0 {
		// 值未变化时部分驱动返回 0 行，再确认一次
		if _, err := s.EnrollmentRepo.Find(ctx, userID, lessonID); err != nil {
			return storeErr(err, util.ErrEnrollmentNotFound)
		}
	}
	return nil
}

// Unenroll 取消报名并减少关注计数（不低于 0）
func (s *EnrollmentService) Unenroll(ctx context.Context, userID, lessonID uint) error {
	lesson, err := s.ContentRepo.FindLesson(ctx, lessonID)
	if err != nil {
		return storeErr(err, util.ErrLessonNotFound)
	}
	section, err := s.ContentRepo.FindSection(ctx, lesson.SectionID)
	if err != nil {
		return storeErr(err, util.ErrSectionNotFound)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.EnrollmentRepo.WithTx(tx)
		n, err := repo.Delete(ctx, userID, lessonID)
		if err != nil {
			return util.Transient(err)
		}
		if n == 0 {
			return util.ErrEnrollmentNotFound
		}
		if err := repo.IncLessonFollowers(ctx, lessonID, -1); err != nil {
			return util.Transient(err)
		}
		return util.Transient(repo.IncUnitFollowers(ctx, section.UnitID, -1))
	})
}

func (s *EnrollmentService) ListEnrollments(ctx context.Context, userID uint) ([]model.LessonEnrollment, error) {
	list, err := s.EnrollmentRepo.ListByUser(ctx, userID)
	return list, util.Transient(err)
}

func (s *EnrollmentService) MostFollowedLessons(ctx context.Context, limit int) ([]model.FollowedItem, error) {
	items, err := s.EnrollmentRepo.TopLessons(ctx, limit)
	return items, util.Transient(err)
}

func (s *EnrollmentService) MostFollowedUnits(ctx context.Context, limit int) ([]model.FollowedItem, error) {
	items, err := s.EnrollmentRepo.TopUnits(ctx, limit)
	return items, util.Transient(err)
}
