package model

// AnswerEvent 作答流水，写入后不可修改
type AnswerEvent struct {
	EventModel
	UserID     uint   `gorm:"index:idx_answer_user_question,priority:1;not null" json:"userId"`
	QuestionID uint   `gorm:"index:idx_answer_user_question,priority:2;index;not null" json:"questionId"`
	LessonID   uint   `gorm:"index;not null" json:"lessonId"`
	IsCorrect  bool   `gorm:"not null" json:"isCorrect"`
	AnswerJSON string `gorm:"type:text" json:"answer"`
	ElapsedMs  int64  `gorm:"not null" json:"elapsedMs"`
}

func (AnswerEvent) TableName() string {
	return "answer_events"
}

// LessonEnrollment 用户报名课程
type LessonEnrollment struct {
	DerivedModel
	UserID   uint `gorm:"uniqueIndex:idx_enrollment_user_lesson,priority:1;not null" json:"userId"`
	LessonID uint `gorm:"uniqueIndex:idx_enrollment_user_lesson,priority:2;index;not null" json:"lessonId"`
	Active   bool `gorm:"default:true" json:"active"`
}

func (LessonEnrollment) TableName() string {
	return "lesson_enrollments"
}

type LessonProgress struct {
	DerivedModel
	UserID         uint `gorm:"uniqueIndex:idx_lesson_progress,priority:1;not null" json:"userId"`
	LessonID       uint `gorm:"uniqueIndex:idx_lesson_progress,priority:2;not null" json:"lessonId"`
	CompletedCount int  `gorm:"not null;default:0" json:"completedCount"`
	TotalCount     int  `gorm:"not null;default:0" json:"totalCount"`
	Percent        int  `gorm:"not null;default:0" json:"percent"`
	Completed      bool `gorm:"not null;default:false" json:"completed"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}

type SectionProgress struct {
	DerivedModel
	UserID         uint `gorm:"uniqueIndex:idx_section_progress,priority:1;not null" json:"userId"`
	SectionID      uint `gorm:"uniqueIndex:idx_section_progress,priority:2;not null" json:"sectionId"`
	CompletedCount int  `gorm:"not null;default:0" json:"completedCount"`
	TotalCount     int  `gorm:"not null;default:0" json:"totalCount"`
	Percent        int  `gorm:"not null;default:0" json:"percent"`
}

func (SectionProgress) TableName() string {
	return "section_progress"
}

type UnitProgress struct {
	DerivedModel
	UserID         uint `gorm:"uniqueIndex:idx_unit_progress,priority:1;not null" json:"userId"`
	UnitID         uint `gorm:"uniqueIndex:idx_unit_progress,priority:2;not null" json:"unitId"`
	CompletedCount int  `gorm:"not null;default:0" json:"completedCount"`
	TotalCount     int  `gorm:"not null;default:0" json:"totalCount"`
	Percent        int  `gorm:"not null;default:0" json:"percent"`
}

func (UnitProgress) TableName() string {
	return "unit_progress"
}

// XpLog 经验流水，用户总经验为其累加和
type XpLog struct {
	EventModel
	UserID uint   `gorm:"index;not null" json:"userId"`
	Source string `gorm:"size:64;index;not null" json:"source"`
	Amount int    `gorm:"not null" json:"amount"`
}

func (XpLog) TableName() string {
	return "xp_logs"
}
