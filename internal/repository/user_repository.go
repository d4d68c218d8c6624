package repository

import (
	"context"
	"logicfy_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// LockByID 事务内对用户行加写锁
func (r *UserRepository) LockByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// UpdateXPCache 写回经验与等级缓存
func (r *UserRepository) UpdateXPCache(ctx context.Context, id uint, xp, level int) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{"xp": xp, "level": level}).Error
}

func (r *UserRepository) UpdateStreak(ctx context.Context, id uint, streak int, day string) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{"streak": streak, "last_active_day": day}).Error
}

func (r *UserRepository) FindTopByXP(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.WithContext(ctx).Order("xp desc, id asc").Limit(limit).Find(&users).Error
	return users, err
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}
