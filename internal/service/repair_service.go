package service

import (
	"context"
	"errors"
	"fmt"
	"logicfy_backend/internal/repository"
	"logicfy_backend/internal/util"
	"logicfy_backend/pkg/logger"

	"go.uber.org/zap"
)

// RepairService 从流水重算派生数据，可重入，可与线上流量并发执行
type RepairService struct {
	Content        *ContentService
	Progress       *ProgressService
	Xp             *XpService
	Analytics      *AnalyticsService
	Users          *UserService
	AnswerRepo     *repository.AnswerRepository
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
}

func NewRepairService(
	content *ContentService,
	progress *ProgressService,
	xp *XpService,
	analytics *AnalyticsService,
	users *UserService,
	answerRepo *repository.AnswerRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
) *RepairService {
	return &RepairService{
		Content:        content,
		Progress:       progress,
		Xp:             xp,
		Analytics:      analytics,
		Users:          users,
		AnswerRepo:     answerRepo,
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
	}
}

type UserRepairReport struct {
	UserID  uint `json:"userId"`
	Lessons int  `json:"lessons"`
	TotalXp int  `json:"totalXp"`
	Streak  int  `json:"streak"`
}

type LessonRepairReport struct {
	LessonID      uint  `json:"lessonId"`
	QuestionCount int64 `json:"questionCount"`
	Questions     int   `json:"questions"`
	Users         int   `json:"users"`
}

// RepairUser 重算用户作答或报名过的全部课程进度（级联），并重建经验缓存与连续天数
func (s *RepairService) RepairUser(ctx context.Context, userID uint) (*UserRepairReport, error) {
	if _, err := s.Users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	answered, err := s.AnswerRepo.LessonIDsForUser(ctx, userID)
	if err != nil {
		return nil, util.Transient(err)
	}
	enrolled, err := s.EnrollmentRepo.LessonIDsForUser(ctx, userID)
	if err != nil {
		return nil, util.Transient(err)
	}

	report := &UserRepairReport{UserID: userID}
	for _, lessonID := range unionIDs(answered, enrolled) {
		if _, err := s.Progress.RecomputeLessonProgress(ctx, userID, lessonID); err != nil {
			if errors.Is(err, util.ErrNotFound) {
				logger.Log.Debug("Skip repair for removed lesson", zap.Uint("lesson_id", lessonID))
				continue
			}
			return nil, err
		}
		report.Lessons++
	}

	if report.TotalXp, err = s.Xp.RebuildUserCache(ctx, userID); err != nil {
		return nil, err
	}
	if report.Streak, err = s.Users.RecomputeStreak(ctx, userID); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *RepairService) RepairQuestion(ctx context.Context, questionID uint) error {
	_, err := s.Analytics.RecomputeQuestionAnalytic(ctx, questionID)
	return err
}

// RepairLesson 刷新题目计数缓存、重算题目与课程统计，并重算所有相关用户的进度
func (s *RepairService) RepairLesson(ctx context.Context, lessonID uint) (*LessonRepairReport, error) {
	count, err := s.Content.RefreshLessonQuestionCount(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	report := &LessonRepairReport{LessonID: lessonID, QuestionCount: count}

	questionIDs, err := s.Content.ContentRepo.QuestionIDsInLesson(ctx, lessonID)
	if err != nil {
		return nil, util.Transient(err)
	}
	for _, qID := range questionIDs {
		if _, err := s.Analytics.RecomputeQuestionAnalytic(ctx, qID); err != nil {
			return nil, err
		}
		report.Questions++
	}
	if _, err := s.Analytics.LessonPerformance(ctx, lessonID); err != nil {
		return nil, err
	}

	answered, err := s.AnswerRepo.UserIDsForLesson(ctx, lessonID)
	if err != nil {
		return nil, util.Transient(err)
	}
	enrolled, err := s.EnrollmentRepo.UserIDsForLesson(ctx, lessonID)
	if err != nil {
		return nil, util.Transient(err)
	}
	tracked, err := s.ProgressRepo.UserIDsForLesson(ctx, lessonID)
	if err != nil {
		return nil, util.Transient(err)
	}
	for _, userID := range unionIDs(answered, enrolled, tracked) {
		if _, err := s.Progress.RecomputeLessonProgress(ctx, userID, lessonID); err != nil {
			if errors.Is(err, util.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		report.Users++
	}
	return report, nil
}

// Handle 执行单个修复任务
func (s *RepairService) Handle(ctx context.Context, task RepairTask) error {
	switch task.Kind {
	case RepairQuestionAnalytic:
		return s.RepairQuestion(ctx, task.QuestionID)
	case RepairXpGrant:
		_, _, err := s.Xp.GrantOnce(ctx, task.UserID, task.Source, task.Amount)
		return err
	case RepairLessonProgress:
		_, err := s.Progress.RecomputeLessonProgress(ctx, task.UserID, task.LessonID)
		return err
	case RepairStreak:
		_, err := s.Users.RecomputeStreak(ctx, task.UserID)
		return err
	case RepairUserTask:
		_, err := s.RepairUser(ctx, task.UserID)
		return err
	case RepairLessonTask:
		_, err := s.RepairLesson(ctx, task.LessonID)
		return err
	}
	return fmt.Errorf("unknown repair task kind %q: %w", task.Kind, util.ErrInvalidPayload)
}

// unionIDs 合并去重，保持首次出现的顺序
func unionIDs(lists ...[]uint) []uint {
	seen := make(map[uint]struct{})
	var out []uint
	for _, list := range lists {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
