package repository

import (
	"context"
	"logicfy_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// XpRepository 经验流水，只追加
type XpRepository struct {
	DB *gorm.DB
}

func NewXpRepository(db *gorm.DB) *XpRepository {
	return &XpRepository{DB: db}
}

func (r *XpRepository) WithTx(tx *gorm.DB) *XpRepository {
	return &XpRepository{DB: tx}
}

func (r *XpRepository) Append(ctx context.Context, entry *model.XpLog) error {
	return r.DB.WithContext(ctx).Create(entry).Error
}

func (r *XpRepository) SumByUser(ctx context.Context, userID uint) (int, error) {
	var total int
	err := r.DB.WithContext(ctx).Model(&model.XpLog{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total, err
}

// SumBetween [from, to) 区间内的经验和
func (r *XpRepository) SumBetween(ctx context.Context, userID uint, from, to time.Time) (int, error) {
	var total int
	err := r.DB.WithContext(ctx).Model(&model.XpLog{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Scan(&total).Error
	return total, err
}

func (r *XpRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.XpLog, error) {
	var logs []model.XpLog
	q := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&logs).Error
	return logs, err
}

func (r *XpRepository) ExistsBySource(ctx context.Context, userID uint, source string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.XpLog{}).
		Where("user_id = ? AND source = ?", userID, source).
		Count(&n).Error
	return n > 0, err
}
