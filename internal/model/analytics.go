package model

// QuestionAnalytic 每题统计，AverageTimeMs 为作答耗时的滚动平均值
type QuestionAnalytic struct {
	DerivedModel
	QuestionID     uint    `gorm:"uniqueIndex;not null" json:"questionId"`
	AnsweredCount  int     `gorm:"not null;default:0" json:"answeredCount"`
	CorrectCount   int     `gorm:"not null;default:0" json:"correctCount"`
	IncorrectCount int     `gorm:"not null;default:0" json:"incorrectCount"`
	AverageTimeMs  float64 `gorm:"not null;default:0" json:"averageTimeMs"`
}

func (QuestionAnalytic) TableName() string {
	return "question_analytics"
}

// LessonAnalytic 课程表现统计，由该课程各题统计重新计算
type LessonAnalytic struct {
	DerivedModel
	LessonID                uint    `gorm:"uniqueIndex;not null" json:"lessonId"`
	AverageCompletionTimeMs float64 `gorm:"not null;default:0" json:"averageCompletionTimeMs"`
	AverageAccuracy         float64 `gorm:"not null;default:0" json:"averageAccuracy"`
	HardestQuestionID       *uint   `json:"hardestQuestionId"`
}

func (LessonAnalytic) TableName() string {
	return "lesson_analytics"
}

// LessonFollow 课程关注人数
type LessonFollow struct {
	DerivedModel
	LessonID  uint `gorm:"uniqueIndex;not null" json:"lessonId"`
	Followers int  `gorm:"not null;default:0" json:"followers"`
}

func (LessonFollow) TableName() string {
	return "lesson_follows"
}

// UnitFollow 单元关注人数
type UnitFollow struct {
	DerivedModel
	UnitID    uint `gorm:"uniqueIndex;not null" json:"unitId"`
	Followers int  `gorm:"not null;default:0" json:"followers"`
}

func (UnitFollow) TableName() string {
	return "unit_follows"
}
