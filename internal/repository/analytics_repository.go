package repository

import (
	"context"
	"logicfy_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalyticsRepository struct {
	DB *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

func (r *AnalyticsRepository) WithTx(tx *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{DB: tx}
}

// EnsureQuestion 保证题目统计行存在
func (r *AnalyticsRepository) EnsureQuestion(ctx context.Context, questionID uint) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.QuestionAnalytic{QuestionID: questionID}).Error
}

func (r *AnalyticsRepository) LockQuestion(ctx context.Context, questionID uint) (*model.QuestionAnalytic, error) {
	var a model.QuestionAnalytic
	err := r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("question_id = ?", questionID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnalyticsRepository) SaveQuestion(ctx context.Context, a *model.QuestionAnalytic) error {
	return r.DB.WithContext(ctx).Model(&model.QuestionAnalytic{}).Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"answered_count":  a.AnsweredCount,
			"correct_count":   a.CorrectCount,
			"incorrect_count": a.IncorrectCount,
			"average_time_ms": a.AverageTimeMs,
		}).Error
}

// UpsertQuestion 用全量重算结果覆盖统计行
func (r *AnalyticsRepository) UpsertQuestion(ctx context.Context, a *model.QuestionAnalytic) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"answered_count", "correct_count", "incorrect_count", "average_time_ms", "updated_at"}),
	}).Create(a).Error
}

func (r *AnalyticsRepository) FindQuestion(ctx context.Context, questionID uint) (*model.QuestionAnalytic, error) {
	var a model.QuestionAnalytic
	if err := r.DB.WithContext(ctx).Where("question_id = ?", questionID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListQuestionAnalytics 仅返回仍存在的题目，按插入顺序排列
func (r *AnalyticsRepository) ListQuestionAnalytics(ctx context.Context) ([]model.QuestionAnalytic, error) {
	var list []model.QuestionAnalytic
	err := r.DB.WithContext(ctx).
		Joins("JOIN questions ON questions.id = question_analytics.question_id AND questions.deleted_at IS NULL").
		Order("question_analytics.id asc").
		Find(&list).Error
	return list, err
}

func (r *AnalyticsRepository) ListByQuestionIDs(ctx context.Context, questionIDs []uint) ([]model.QuestionAnalytic, error) {
	var list []model.QuestionAnalytic
	if len(questionIDs) == 0 {
		return list, nil
	}
	err := r.DB.WithContext(ctx).Where("question_id IN ?", questionIDs).Order("id asc").Find(&list).Error
	return list, err
}

func (r *AnalyticsRepository) UpsertLesson(ctx context.Context, a *model.LessonAnalytic) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"average_completion_time_ms", "average_accuracy", "hardest_question_id", "updated_at"}),
	}).Create(a).Error
}

func (r *AnalyticsRepository) FindLesson(ctx context.Context, lessonID uint) (*model.LessonAnalytic, error) {
	var a model.LessonAnalytic
	if err := r.DB.WithContext(ctx).Where("lesson_id = ?", lessonID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// LessonSummary 课程统计行的平均值
func (r *AnalyticsRepository) LessonSummary(ctx context.Context) (*model.LessonSummary, error) {
	var s model.LessonSummary
	err := r.DB.WithContext(ctx).Model(&model.LessonAnalytic{}).
		Joins("JOIN lessons ON lessons.id = lesson_analytics.lesson_id AND lessons.deleted_at IS NULL").
		Select("COUNT(*) AS lessons_with_stats, " +
			"COALESCE(AVG(lesson_analytics.average_completion_time_ms), 0) AS average_completion_time_ms, " +
			"COALESCE(AVG(lesson_analytics.average_accuracy), 0) AS average_accuracy").
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
