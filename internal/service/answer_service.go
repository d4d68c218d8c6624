package service

import (
	"context"
	"encoding/json"
	"fmt"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/repository"
	"logicfy_backend/internal/util"
	"logicfy_backend/pkg/logger"
	"logicfy_backend/pkg/monitoring"
	"logicfy_backend/pkg/tracing"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type questionStatsRecorder interface {
	RecordQuestionAnswer(ctx context.Context, questionID uint, correct bool, elapsedMs int64) (*model.QuestionAnalytic, error)
}

type xpGranter interface {
	Grant(ctx context.Context, userID uint, source string, amount int) (*model.XpLog, error)
}

type lessonRollup interface {
	RecomputeLessonProgress(ctx context.Context, userID, lessonID uint) (*model.LessonProgress, error)
}

type streakTracker interface {
	TouchStreak(ctx context.Context, userID uint, at time.Time) (int, error)
}

type repairScheduler interface {
	Enqueue(task RepairTask) bool
}

type RecordAnswerInput struct {
	UserID     uint            `json:"-"`
	QuestionID uint            `json:"questionId" binding:"required"`
	Payload    json.RawMessage `json:"answer" binding:"required"`
	ElapsedMs  int64           `json:"elapsedMs"`
}

// AnswerService 作答记录：事件落库是唯一必须成功的步骤，其后的统计、经验、进度更新失败只记录并交给修复队列
type AnswerService struct {
	AnswerRepo  *repository.AnswerRepository
	ContentRepo *repository.ContentRepository
	UserRepo    *repository.UserRepository
	Grader      *Grader
	Stats       questionStatsRecorder
	Xp          xpGranter
	Rollup      lessonRollup
	Streaks     streakTracker
	Repairs     repairScheduler
	Settings    *SettingsStore
}

func NewAnswerService(
	answerRepo *repository.AnswerRepository,
	contentRepo *repository.ContentRepository,
	userRepo *repository.UserRepository,
	grader *Grader,
	stats questionStatsRecorder,
	xp xpGranter,
	rollup lessonRollup,
	streaks streakTracker,
	repairs repairScheduler,
	settings *SettingsStore,
) *AnswerService {
	return &AnswerService{
		AnswerRepo:  answerRepo,
		ContentRepo: contentRepo,
		UserRepo:    userRepo,
		Grader:      grader,
		Stats:       stats,
		Xp:          xp,
		Rollup:      rollup,
		Streaks:     streaks,
		Repairs:     repairs,
		Settings:    settings,
	}
}

// RecordAnswer 依次执行：落库 → 单题统计 → 答对发经验 → 课程进度级联 → 连续天数
func (s *AnswerService) RecordAnswer(ctx context.Context, in RecordAnswerInput) (ev *model.AnswerEvent, err error) {
	ctx, span := tracing.StartSpan(ctx, "answer.RecordAnswer", map[string]uint{"user_id": in.UserID, "question_id": in.QuestionID})
	defer func() { tracing.EndSpan(span, err) }()

	if in.ElapsedMs < 0 {
		return nil, fmt.Errorf("%w: elapsedMs must not be negative", util.ErrInvalidPayload)
	}

	question, err := s.ContentRepo.FindQuestion(ctx, in.QuestionID)
	if err != nil {
		return nil, storeErr(err, util.ErrQuestionNotFound)
	}
	ok, err := s.UserRepo.Exists(ctx, in.UserID)
	if err != nil {
		return nil, util.Transient(err)
	}
	if !ok {
		return nil, util.ErrUserNotFound
	}

	correct, err := s.Grader.Grade(question, in.Payload)
	if err != nil {
		return nil, err
	}

	ev = &model.AnswerEvent{
		UserID:     in.UserID,
		QuestionID: question.ID,
		LessonID:   question.LessonID,
		IsCorrect:  correct,
		AnswerJSON: string(in.Payload),
		ElapsedMs:  in.ElapsedMs,
	}
	if err := s.AnswerRepo.Create(ctx, ev); err != nil {
		return nil, util.Transient(err)
	}
	monitoring.AnswersRecorded.WithLabelValues(strconv.FormatBool(correct)).Inc()

	// 事件已落库，后续步骤不受请求取消影响
	sideCtx := context.WithoutCancel(ctx)
	s.applySideEffects(sideCtx, ev)
	return ev, nil
}

func (s *AnswerService) applySideEffects(ctx context.Context, ev *model.AnswerEvent) {
	requestID := uuid.NewString()

	if _, err := s.Stats.RecordQuestionAnswer(ctx, ev.QuestionID, ev.IsCorrect, ev.ElapsedMs); err != nil {
		s.sideEffectFailed(requestID, "question_analytic", ev, err, RepairTask{
			Kind:       RepairQuestionAnalytic,
			QuestionID: ev.QuestionID,
		})
	}

	if ev.IsCorrect {
		amount := s.Settings.Load().AwardForElapsed(ev.ElapsedMs)
		source := AnswerXpSource(ev.ID)
		if _, err := s.Xp.Grant(ctx, ev.UserID, source, amount); err != nil {
			s.sideEffectFailed(requestID, "xp_grant", ev, err, RepairTask{
				Kind:   RepairXpGrant,
				UserID: ev.UserID,
				Source: source,
				Amount: amount,
			})
		}
	}

	if _, err := s.Rollup.RecomputeLessonProgress(ctx, ev.UserID, ev.LessonID); err != nil {
		s.sideEffectFailed(requestID, "lesson_progress", ev, err, RepairTask{
			Kind:     RepairLessonProgress,
			UserID:   ev.UserID,
			LessonID: ev.LessonID,
		})
	}

	if _, err := s.Streaks.TouchStreak(ctx, ev.UserID, ev.CreatedAt); err != nil {
		s.sideEffectFailed(requestID, "streak", ev, err, RepairTask{
			Kind:   RepairStreak,
			UserID: ev.UserID,
		})
	}
}

func (s *AnswerService) sideEffectFailed(requestID, step string, ev *model.AnswerEvent, err error, task RepairTask) {
	monitoring.SideEffectFailures.WithLabelValues(step).Inc()
	logger.Log.Warn("Answer side effect failed, scheduling repair",
		zap.String("request_id", requestID),
		zap.String("step", step),
		zap.Uint("event_id", ev.ID),
		zap.Uint("user_id", ev.UserID),
		zap.Uint("question_id", ev.QuestionID),
		zap.Error(err))
	if s.Repairs != nil {
		s.Repairs.Enqueue(task)
	}
}

// AnswerXpSource 每个作答事件对应唯一的经验来源
func AnswerXpSource(eventID uint) string {
	return util.XpSourceAnswer + ":" + strconv.FormatUint(uint64(eventID), 10)
}

func (s *AnswerService) ListAnswers(ctx context.Context, userID uint, limit int) ([]model.AnswerEvent, error) {
	list, err := s.AnswerRepo.ListByUser(ctx, userID, limit)
	return list, util.Transient(err)
}

func (s *AnswerService) LatestAnswer(ctx context.Context, userID, questionID uint) (*model.AnswerEvent, error) {
	ev, err := s.AnswerRepo.Latest(ctx, userID, questionID)
	return ev, storeErr(err, fmt.Errorf("answer for question %d: %w", questionID, util.ErrNotFound))
}
