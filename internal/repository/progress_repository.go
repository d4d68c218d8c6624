package repository

import (
	"context"
	"logicfy_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository 三个层级的进度行，仅由汇总引擎写入
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func (r *ProgressRepository) forUpdate(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

// LockLesson 在事务内锁定已有的课程进度行，不存在时返回 nil
func (r *ProgressRepository) LockLesson(ctx context.Context, userID, lessonID uint) (*model.LessonProgress, error) {
	var p model.LessonProgress
	err := r.forUpdate(ctx).Where("user_id = ? AND lesson_id = ?", userID, lessonID).Limit(1).Find(&p).Error
	if err != nil || p.ID == 0 {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) LockSection(ctx context.Context, userID, sectionID uint) (*model.SectionProgress, error) {
	var p model.SectionProgress
	err := r.forUpdate(ctx).Where("user_id = ? AND section_id = ?", userID, sectionID).Limit(1).Find(&p).Error
	if err != nil || p.ID == 0 {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) LockUnit(ctx context.Context, userID, unitID uint) (*model.UnitProgress, error) {
	var p model.UnitProgress
	err := r.forUpdate(ctx).Where("user_id = ? AND unit_id = ?", userID, unitID).Limit(1).Find(&p).Error
	if err != nil || p.ID == 0 {
		return nil, err
	}
	return &p, nil
}

// UpsertLesson 按 (user, lesson) 覆盖写入派生值
func (r *ProgressRepository) UpsertLesson(ctx context.Context, p *model.LessonProgress) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed_count", "total_count", "percent", "completed", "updated_at"}),
	}).Create(p).Error
}

func (r *ProgressRepository) UpsertSection(ctx context.Context, p *model.SectionProgress) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "section_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed_count", "total_count", "percent", "updated_at"}),
	}).Create(p).Error
}

func (r *ProgressRepository) UpsertUnit(ctx context.Context, p *model.UnitProgress) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "unit_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed_count", "total_count", "percent", "updated_at"}),
	}).Create(p).Error
}

// SeedLessonTotal 仅在行不存在时写入初始总数
func (r *ProgressRepository) SeedLessonTotal(ctx context.Context, userID, lessonID uint, total int) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.LessonProgress{UserID: userID, LessonID: lessonID, TotalCount: total}).Error
}

// CountCompletedLessons 统计给定课程中用户已完成的数量
func (r *ProgressRepository) CountCompletedLessons(ctx context.Context, userID uint, lessonIDs []uint) (int64, error) {
	if len(lessonIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.LessonProgress{}).
		Where("user_id = ? AND lesson_id IN ? AND completed = ?", userID, lessonIDs, true).
		Count(&n).Error
	return n, err
}

func (r *ProgressRepository) FindLesson(ctx context.Context, userID, lessonID uint) (*model.LessonProgress, error) {
	var p model.LessonProgress
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) FindSection(ctx context.Context, userID, sectionID uint) (*model.SectionProgress, error) {
	var p model.SectionProgress
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND section_id = ?", userID, sectionID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) FindUnit(ctx context.Context, userID, unitID uint) (*model.UnitProgress, error) {
	var p model.UnitProgress
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND unit_id = ?", userID, unitID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) ListLessons(ctx context.Context, userID uint) ([]model.LessonProgress, error) {
	var list []model.LessonProgress
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("lesson_id asc").Find(&list).Error
	return list, err
}

func (r *ProgressRepository) ListSections(ctx context.Context, userID uint) ([]model.SectionProgress, error) {
	var list []model.SectionProgress
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("section_id asc").Find(&list).Error
	return list, err
}

func (r *ProgressRepository) ListUnits(ctx context.Context, userID uint) ([]model.UnitProgress, error) {
	var list []model.UnitProgress
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("unit_id asc").Find(&list).Error
	return list, err
}

func (r *ProgressRepository) UserIDsForLesson(ctx context.Context, lessonID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.LessonProgress{}).
		Where("lesson_id = ?", lessonID).
		Order("user_id asc").
		Pluck("user_id", &ids).Error
	return ids, err
}
