package repository

import (
	"context"
	"logicfy_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

func (r *AnswerRepository) WithTx(tx *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: tx}
}

func (r *AnswerRepository) Create(ctx context.Context, ev *model.AnswerEvent) error {
	return r.DB.WithContext(ctx).Create(ev).Error
}

// CountDistinctCorrect 统计用户在课程中至少答对一次的题目数，已删除的题目不计入
func (r *AnswerRepository) CountDistinctCorrect(ctx context.Context, userID, lessonID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.AnswerEvent{}).
		Joins("JOIN questions ON questions.id = answer_events.question_id AND questions.deleted_at IS NULL").
		Where("answer_events.user_id = ? AND questions.lesson_id = ? AND answer_events.is_correct = ?", userID, lessonID, true).
		Distinct("answer_events.question_id").
		Count(&n).Error
	return n, err
}

func (r *AnswerRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.AnswerEvent, error) {
	var events []model.AnswerEvent
	q := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&events).Error
	return events, err
}

func (r *AnswerRepository) Latest(ctx context.Context, userID, questionID uint) (*model.AnswerEvent, error) {
	var ev model.AnswerEvent
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Order("created_at desc, id desc").
		First(&ev).Error
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// QuestionAggregate 单题作答的全量聚合
type QuestionAggregate struct {
	Answered  int64
	Correct   int64
	AvgTimeMs float64
}

func (r *AnswerRepository) AggregateByQuestion(ctx context.Context, questionID uint) (*QuestionAggregate, error) {
	var agg QuestionAggregate
	err := r.DB.WithContext(ctx).Model(&model.AnswerEvent{}).
		Select("COUNT(*) AS answered, "+
			"COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct, "+
			"COALESCE(AVG(elapsed_ms), 0) AS avg_time_ms").
		Where("question_id = ?", questionID).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

// CreatedBetween 返回 [from, to) 区间内所有作答时间，按天分桶在调用方按时区完成
func (r *AnswerRepository) CreatedBetween(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.DB.WithContext(ctx).Model(&model.AnswerEvent{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Pluck("created_at", &times).Error
	return times, err
}

// LessonIDsForUser 用户作答过的课程
func (r *AnswerRepository) LessonIDsForUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.AnswerEvent{}).
		Where("user_id = ?", userID).
		Distinct().
		Order("lesson_id asc").
		Pluck("lesson_id", &ids).Error
	return ids, err
}

// UserIDsForLesson 在课程中作答过的用户
func (r *AnswerRepository) UserIDsForLesson(ctx context.Context, lessonID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.AnswerEvent{}).
		Joins("JOIN questions ON questions.id = answer_events.question_id").
		Where("questions.lesson_id = ?", lessonID).
		Distinct().
		Order("answer_events.user_id asc").
		Pluck("answer_events.user_id", &ids).Error
	return ids, err
}

// ActiveTimes 用户全部作答时间（用于重算连续天数）
func (r *AnswerRepository) ActiveTimes(ctx context.Context, userID uint) ([]time.Time, error) {
	var times []time.Time
	err := r.DB.WithContext(ctx).Model(&model.AnswerEvent{}).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Pluck("created_at", &times).Error
	return times, err
}
