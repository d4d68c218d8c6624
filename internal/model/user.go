package model

type UserRole string

const (
	Learner UserRole = "learner"
	Admin   UserRole = "admin"
)

// User XP、Level、Streak 均为缓存字段，可由流水重新计算
// swagger:model User
type User struct {
	BaseModel
	Name          string   `gorm:"size:100;not null" json:"name"`
	Email         string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Role          UserRole `gorm:"size:16;default:'learner'" json:"role"`
	XP            int      `gorm:"default:0" json:"xp"`
	Level         int      `gorm:"default:1" json:"level"`
	Streak        int      `gorm:"default:0" json:"streak"`
	LastActiveDay string   `gorm:"size:10" json:"lastActiveDay"` // YYYY-MM-DD，按统计时区
}

func (User) TableName() string {
	return "users"
}
