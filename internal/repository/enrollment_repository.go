package repository

import (
	"context"
	"logicfy_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) WithTx(tx *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: tx}
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *model.LessonEnrollment) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *EnrollmentRepository) Find(ctx context.Context, userID, lessonID uint) (*model.LessonEnrollment, error) {
	var e model.LessonEnrollment
	err := r.DB.WithContext(ctx).Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) SetActive(ctx context.Context, userID, lessonID uint, active bool) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.LessonEnrollment{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Update("active", active)
	return res.RowsAffected, res.Error
}

func (r *EnrollmentRepository) Delete(ctx context.Context, userID, lessonID uint) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Delete(&model.LessonEnrollment{})
	return res.RowsAffected, res.Error
}

func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID uint) ([]model.LessonEnrollment, error) {
	var list []model.LessonEnrollment
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&list).Error
	return list, err
}

func (r *EnrollmentRepository) LessonIDsForUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.LessonEnrollment{}).
		Where("user_id = ?", userID).
		Order("lesson_id asc").
		Pluck("lesson_id", &ids).Error
	return ids, err
}

func (r *EnrollmentRepository) UserIDsForLesson(ctx context.Context, lessonID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.LessonEnrollment{}).
		Where("lesson_id = ?", lessonID).
		Order("user_id asc").
		Pluck("user_id", &ids).Error
	return ids, err
}

// IncLessonFollowers 关注数 +delta，行不存在时插入；减少时不低于 0
func (r *EnrollmentRepository) IncLessonFollowers(ctx context.Context, lessonID uint, delta int) error {
	db := r.DB.WithContext(ctx)
	if delta > 0 {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lesson_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"followers": gorm.Expr("followers + ?", delta)}),
		}).Create(&model.LessonFollow{LessonID: lessonID, Followers: delta}).Error
	}
	return db.Model(&model.LessonFollow{}).
		Where("lesson_id = ? AND followers >= ?", lessonID, -delta).
		UpdateColumn("followers", gorm.Expr("followers + ?", delta)).Error
}

func (r *EnrollmentRepository) IncUnitFollowers(ctx context.Context, unitID uint, delta int) error {
	db := r.DB.WithContext(ctx)
	if delta > 0 {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "unit_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"followers": gorm.Expr("followers + ?", delta)}),
		}).Create(&model.UnitFollow{UnitID: unitID, Followers: delta}).Error
	}
	return db.Model(&model.UnitFollow{}).
		Where("unit_id = ? AND followers >= ?", unitID, -delta).
		UpdateColumn("followers", gorm.Expr("followers + ?", delta)).Error
}

func (r *EnrollmentRepository) LessonFollowers(ctx context.Context, lessonID uint) (int, error) {
	var f model.LessonFollow
	err := r.DB.WithContext(ctx).Where("lesson_id = ?", lessonID).First(&f).Error
	if err != nil {
		return 0, err
	}
	return f.Followers, nil
}

func (r *EnrollmentRepository) UnitFollowers(ctx context.Context, unitID uint) (int, error) {
	var f model.UnitFollow
	err := r.DB.WithContext(ctx).Where("unit_id = ?", unitID).First(&f).Error
	if err != nil {
		return 0, err
	}
	return f.Followers, nil
}

// TopLessons 关注数最多的课程，只统计仍存在的课程
func (r *EnrollmentRepository) TopLessons(ctx context.Context, limit int) ([]model.FollowedItem, error) {
	var items []model.FollowedItem
	err := r.DB.WithContext(ctx).Model(&model.LessonFollow{}).
		Select("lessons.id AS id, lessons.title AS title, lesson_follows.followers AS followers").
		Joins("JOIN lessons ON lessons.id = lesson_follows.lesson_id AND lessons.deleted_at IS NULL").
		Where("lesson_follows.followers > 0").
		Order("lesson_follows.followers desc, lessons.id asc").
		Limit(limit).
		Scan(&items).Error
	return items, err
}

func (r *EnrollmentRepository) TopUnits(ctx context.Context, limit int) ([]model.FollowedItem, error) {
	var items []model.FollowedItem
	err := r.DB.WithContext(ctx).Model(&model.UnitFollow{}).
		Select("units.id AS id, units.title AS title, unit_follows.followers AS followers").
		Joins("JOIN units ON units.id = unit_follows.unit_id AND units.deleted_at IS NULL").
		Where("unit_follows.followers > 0").
		Order("unit_follows.followers desc, units.id asc").
		Limit(limit).
		Scan(&items).Error
	return items, err
}
