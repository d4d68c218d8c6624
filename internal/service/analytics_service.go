package service

import (
	"context"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/repository"
	"logicfy_backend/internal/util"
	"logicfy_backend/pkg/logger"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	hardestTimeWeight  = 0.6
	hardestErrorWeight = 0.4
	activityWindowDays = 7
)

type AnalyticsService struct {
	DB            *gorm.DB
	AnalyticsRepo *repository.AnalyticsRepository
	AnswerRepo    *repository.AnswerRepository
	ContentRepo   *repository.ContentRepository
	Settings      *SettingsStore
}

func NewAnalyticsService(
	db *gorm.DB,
	analyticsRepo *repository.AnalyticsRepository,
	answerRepo *repository.AnswerRepository,
	contentRepo *repository.ContentRepository,
	settings *SettingsStore,
) *AnalyticsService {
	return &AnalyticsService{
		DB:            db,
		AnalyticsRepo: analyticsRepo,
		AnswerRepo:    answerRepo,
		ContentRepo:   contentRepo,
		Settings:      settings,
	}
}

// RecordQuestionAnswer 增量更新单题统计，平均耗时按滚动平均计算
func (s *AnalyticsService) RecordQuestionAnswer(ctx context.Context, questionID uint, correct bool, elapsedMs int64) (*model.QuestionAnalytic, error) {
	if err := s.AnalyticsRepo.EnsureQuestion(ctx, questionID); err != nil {
		return nil, util.Transient(err)
	}

	var out *model.QuestionAnalytic
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.AnalyticsRepo.WithTx(tx)
		a, err := repo.LockQuestion(ctx, questionID)
		if err != nil {
			return util.Transient(err)
		}
		applyAnswer(a, correct, elapsedMs)
		if err := repo.SaveQuestion(ctx, a); err != nil {
			return util.Transient(err)
		}
		out = a
		return nil
	})
	return out, err
}

func applyAnswer(a *model.QuestionAnalytic, correct bool, elapsedMs int64) {
	a.AnsweredCount++
	if correct {
		a.CorrectCount++
	} else {
		a.IncorrectCount++
	}
	a.AverageTimeMs += (float64(elapsedMs) - a.AverageTimeMs) / float64(a.AnsweredCount)
}

// RecomputeQuestionAnalytic 从作答流水全量重算单题统计
func (s *AnalyticsService) RecomputeQuestionAnalytic(ctx context.Context, questionID uint) (*model.QuestionAnalytic, error) {
	if _, err := s.ContentRepo.FindQuestion(ctx, questionID); err != nil {
		return nil, storeErr(err, util.ErrQuestionNotFound)
	}
	agg, err := s.AnswerRepo.AggregateByQuestion(ctx, questionID)
	if err != nil {
		return nil, util.Transient(err)
	}
	row := &model.QuestionAnalytic{
		QuestionID:     questionID,
		AnsweredCount:  int(agg.Answered),
		CorrectCount:   int(agg.Correct),
		IncorrectCount: int(agg.Answered - agg.Correct),
		AverageTimeMs:  agg.AvgTimeMs,
	}
	if err := s.AnalyticsRepo.UpsertQuestion(ctx, row); err != nil {
		return nil, util.Transient(err)
	}
	return s.QuestionAnalyticByID(ctx, questionID)
}

func (s *AnalyticsService) QuestionAnalyticByID(ctx context.Context, questionID uint) (*model.QuestionAnalytic, error) {
	a, err := s.AnalyticsRepo.FindQuestion(ctx, questionID)
	return a, storeErr(err, util.ErrAnalyticNotFound)
}

func (s *AnalyticsService) LessonAnalyticByID(ctx context.Context, lessonID uint) (*model.LessonAnalytic, error) {
	a, err := s.AnalyticsRepo.FindLesson(ctx, lessonID)
	return a, storeErr(err, util.ErrAnalyticNotFound)
}

type scoredQuestion struct {
	row   model.QuestionAnalytic
	score float64
}

// rankByDifficulty 综合分 = 0.6*归一化平均耗时 + 0.4*错误率，降序稳定排序
func rankByDifficulty(rows []model.QuestionAnalytic) []scoredQuestion {
	var maxAvg float64
	for _, r := range rows {
		if r.AnsweredCount > 0 && r.AverageTimeMs > maxAvg {
			maxAvg = r.AverageTimeMs
		}
	}

	scored := make([]scoredQuestion, 0, len(rows))
	for _, r := range rows {
		// 从未被作答的题目没有难度数据，不参与排名
		if r.AnsweredCount == 0 {
			continue
		}
		var normalized float64
		if maxAvg > 0 {
			normalized = r.AverageTimeMs / maxAvg
		}
		graded := r.CorrectCount + r.IncorrectCount
		errorRate := 1 - float64(r.CorrectCount)/float64(max(1, graded))
		scored = append(scored, scoredQuestion{
			row:   r,
			score: hardestTimeWeight*normalized + hardestErrorWeight*errorRate,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored
}

// HardestQuestions 难题排行，同分按统计行插入顺序
func (s *AnalyticsService) HardestQuestions(ctx context.Context, limit int) ([]model.HardestQuestion, error) {
	rows, err := s.AnalyticsRepo.ListQuestionAnalytics(ctx)
	if err != nil {
		return nil, util.Transient(err)
	}
	scored := rankByDifficulty(rows)
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	ids := make([]uint, len(scored))
	for i, sq := range scored {
		ids[i] = sq.row.QuestionID
	}
	questions, err := s.ContentRepo.FindQuestionsByIDs(ctx, ids)
	if err != nil {
		return nil, util.Transient(err)
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	out := make([]model.HardestQuestion, 0, len(scored))
	for _, sq := range scored {
		q := byID[sq.row.QuestionID]
		out = append(out, model.HardestQuestion{
			QuestionID:     sq.row.QuestionID,
			LessonID:       q.LessonID,
			Text:           q.Text,
			AnsweredCount:  sq.row.AnsweredCount,
			CorrectCount:   sq.row.CorrectCount,
			IncorrectCount: sq.row.IncorrectCount,
			AverageTimeMs:  round2(sq.row.AverageTimeMs),
			Score:          round4(sq.score),
		})
	}
	return out, nil
}

// WeeklyActivity 返回 [endDate-6, endDate] 每天的作答数，无数据的日期补 0
func (s *AnalyticsService) WeeklyActivity(ctx context.Context, endDate time.Time) ([]model.DailyActivity, error) {
	loc := s.Settings.Load().Location
	y, m, d := endDate.In(loc).Date()
	endDay := time.Date(y, m, d, 0, 0, 0, 0, loc)
	startDay := endDay.AddDate(0, 0, -(activityWindowDays - 1))

	times, err := s.AnswerRepo.CreatedBetween(ctx, startDay.UTC(), endDay.AddDate(0, 0, 1).UTC())
	if err != nil {
		return nil, util.Transient(err)
	}

	counts := make(map[string]int64, activityWindowDays)
	for _, t := range times {
		counts[util.DayKey(t, loc)]++
	}

	points := make([]model.DailyActivity, 0, activityWindowDays)
	for i := 0; i < activityWindowDays; i++ {
		day := startDay.AddDate(0, 0, i).Format(util.DateFormat)
		points = append(points, model.DailyActivity{Date: day, Count: counts[day]})
	}
	return points, nil
}

// LessonPerformance 由课程下各题统计重算课程表现并持久化
//   - 平均完成耗时：各题平均耗时之和，即每题作答一次的期望总耗时
//   - 平均正确率：全部题目的总答对数 / 总判题数（百分比）
//   - 最难题：课程内综合分最高的题目
func (s *AnalyticsService) LessonPerformance(ctx context.Context, lessonID uint) (*model.LessonAnalytic, error) {
	if _, err := s.ContentRepo.FindLesson(ctx, lessonID); err != nil {
		return nil, storeErr(err, util.ErrLessonNotFound)
	}
	questionIDs, err := s.ContentRepo.QuestionIDsInLesson(ctx, lessonID)
	if err != nil {
		return nil, util.Transient(err)
	}
	rows, err := s.AnalyticsRepo.ListByQuestionIDs(ctx, questionIDs)
	if err != nil {
		return nil, util.Transient(err)
	}

	row := summarizeLesson(lessonID, rows)
	if err := s.AnalyticsRepo.UpsertLesson(ctx, row); err != nil {
		return nil, util.Transient(err)
	}
	return s.LessonAnalyticByID(ctx, lessonID)
}

func summarizeLesson(lessonID uint, rows []model.QuestionAnalytic) *model.LessonAnalytic {
	out := &model.LessonAnalytic{LessonID: lessonID}
	var correct, graded int
	for _, r := range rows {
		if r.AnsweredCount == 0 {
			continue
		}
		out.AverageCompletionTimeMs += r.AverageTimeMs
		correct += r.CorrectCount
		graded += r.CorrectCount + r.IncorrectCount
	}
	out.AverageCompletionTimeMs = round2(out.AverageCompletionTimeMs)
	if graded > 0 {
		out.AverageAccuracy = round2(100 * float64(correct) / float64(graded))
	}
	if ranked := rankByDifficulty(rows); len(ranked) > 0 {
		id := ranked[0].row.QuestionID
		out.HardestQuestionID = &id
	}
	return out
}

// RecomputeAllLessonPerformance 定时任务：重算全部课程表现，返回成功数量
func (s *AnalyticsService) RecomputeAllLessonPerformance(ctx context.Context) (int, error) {
	ids, err := s.ContentRepo.AllLessonIDs(ctx)
	if err != nil {
		return 0, util.Transient(err)
	}
	done := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		if _, err := s.LessonPerformance(ctx, id); err != nil {
			logger.Log.Warn("Lesson performance recompute failed", zap.Uint("lesson_id", id), zap.Error(err))
			continue
		}
		done++
	}
	return done, nil
}

// QuestionSummary 正确率为全部题目合并后的总体比例
func (s *AnalyticsService) QuestionSummary(ctx context.Context) (*model.QuestionSummary, error) {
	rows, err := s.AnalyticsRepo.ListQuestionAnalytics(ctx)
	if err != nil {
		return nil, util.Transient(err)
	}
	sum := &model.QuestionSummary{}
	var timeTotal float64
	for _, r := range rows {
		if r.AnsweredCount == 0 {
			continue
		}
		sum.QuestionsWithStats++
		sum.TotalAnswers += int64(r.AnsweredCount)
		sum.TotalCorrect += int64(r.CorrectCount)
		sum.TotalIncorrect += int64(r.IncorrectCount)
		timeTotal += r.AverageTimeMs
	}
	if graded := sum.TotalCorrect + sum.TotalIncorrect; graded > 0 {
		sum.AccuracyPercent = round2(100 * float64(sum.TotalCorrect) / float64(graded))
	}
	if sum.QuestionsWithStats > 0 {
		sum.AverageTimeMs = round2(timeTotal / float64(sum.QuestionsWithStats))
	}
	return sum, nil
}

func (s *AnalyticsService) LessonSummary(ctx context.Context) (*model.LessonSummary, error) {
	sum, err := s.AnalyticsRepo.LessonSummary(ctx)
	if err != nil {
		return nil, util.Transient(err)
	}
	sum.AverageCompletionTimeMs = round2(sum.AverageCompletionTimeMs)
	sum.AverageAccuracy = round2(sum.AverageAccuracy)
	return sum, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
