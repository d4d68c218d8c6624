package model

import "time"

// HardestQuestion 难题排行项
type HardestQuestion struct {
	QuestionID     uint    `json:"questionId"`
	LessonID       uint    `json:"lessonId"`
	Text           string  `json:"text"`
	AnsweredCount  int     `json:"answeredCount"`
	CorrectCount   int     `json:"correctCount"`
	IncorrectCount int     `json:"incorrectCount"`
	AverageTimeMs  float64 `json:"averageTimeMs"`
	Score          float64 `json:"score"`
}

// DailyActivity 单日作答数
type DailyActivity struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// QuestionSummary 全部题目的汇总统计
type QuestionSummary struct {
	TotalAnswers       int64   `json:"totalAnswers"`
	TotalCorrect       int64   `json:"totalCorrect"`
	TotalIncorrect     int64   `json:"totalIncorrect"`
	AccuracyPercent    float64 `json:"accuracyPercent"`
	AverageTimeMs      float64 `json:"averageTimeMs"`
	QuestionsWithStats int64   `json:"questionsWithStats"`
}

// LessonSummary 课程统计的平均值
type LessonSummary struct {
	LessonsWithStats        int64   `json:"lessonsWithStats"`
	AverageCompletionTimeMs float64 `json:"averageCompletionTimeMs"`
	AverageAccuracy         float64 `json:"averageAccuracy"`
}

// ContentTotals 内容树规模
type ContentTotals struct {
	Languages int64 `json:"languages"`
	Units     int64 `json:"units"`
	Sections  int64 `json:"sections"`
	Lessons   int64 `json:"lessons"`
	Questions int64 `json:"questions"`
	Users     int64 `json:"users"`
}

// DifficultyBucket 课程难度分布
type DifficultyBucket struct {
	Difficulty int   `json:"difficulty"`
	Lessons    int64 `json:"lessons"`
}

// LanguageStats 单个语言的内容统计
type LanguageStats struct {
	LanguageID uint   `json:"languageId"`
	Name       string `json:"name"`
	Units      int64  `json:"units"`
	Sections   int64  `json:"sections"`
	Lessons    int64  `json:"lessons"`
	Questions  int64  `json:"questions"`
}

// RecentAdditions 最近 7 天新增的内容
type RecentAdditions struct {
	Since     time.Time `json:"since"`
	Units     int64     `json:"units"`
	Sections  int64     `json:"sections"`
	Lessons   int64     `json:"lessons"`
	Questions int64     `json:"questions"`
}

// FollowedItem 关注数排行项
type FollowedItem struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Followers int    `json:"followers"`
}

// AdminDashboard 管理端仪表盘快照
type AdminDashboard struct {
	Totals             ContentTotals      `json:"totals"`
	MostFollowedLesson *FollowedItem      `json:"mostFollowedLesson"`
	MostFollowedUnit   *FollowedItem      `json:"mostFollowedUnit"`
	Questions          QuestionSummary    `json:"questions"`
	Lessons            LessonSummary      `json:"lessons"`
	Difficulty         []DifficultyBucket `json:"difficulty"`
	Languages          []LanguageStats    `json:"languages"`
	RecentAdditions    RecentAdditions    `json:"recentAdditions"`
	WeeklyActivity     []DailyActivity    `json:"weeklyActivity"`
	HardestQuestions   []HardestQuestion  `json:"hardestQuestions"`
	GeneratedAt        time.Time          `json:"generatedAt"`
}

// XpStats 用户经验概览
type XpStats struct {
	TotalXp     int `json:"totalXp"`
	DailyXp     int `json:"dailyXp"`
	Level       int `json:"level"`
	NextLevelXp int `json:"nextLevelXp"`
	Streak      int `json:"streak"`
}

// LeaderboardEntry 经验排行项
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID uint   `json:"userId"`
	Name   string `json:"name,omitempty"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
}

// LearnerDashboard 学员仪表盘
type LearnerDashboard struct {
	Stats           XpStats           `json:"stats"`
	UnitProgress    []UnitProgress    `json:"unitProgress"`
	SectionProgress []SectionProgress `json:"sectionProgress"`
	RecentAnswers   []AnswerEvent     `json:"recentAnswers"`
}

// LessonNode 语言详情中的课程节点
type LessonNode struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	Order         int    `json:"order"`
	QuestionCount int64  `json:"questionCount"`
}

type SectionNode struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Order       int          `json:"order"`
	LessonCount int          `json:"lessonCount"`
	Lessons     []LessonNode `json:"lessons"`
}

type UnitNode struct {
	ID           uint          `json:"id"`
	Title        string        `json:"title"`
	Order        int           `json:"order"`
	SectionCount int           `json:"sectionCount"`
	Sections     []SectionNode `json:"sections"`
}

// LanguageDetail 语言详情（含内容树）
type LanguageDetail struct {
	Language Language      `json:"language"`
	Stats    LanguageStats `json:"stats"`
	Units    []UnitNode    `json:"units"`
}
