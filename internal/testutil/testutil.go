// Package testutil 提供基于内存 SQLite 的测试数据库与内容树夹具
package testutil

import (
	"encoding/json"
	"fmt"
	"logicfy_backend/internal/model"
	"logicfy_backend/pkg/database"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 每个测试独立的内存库；单连接保证 shared cache 下的事务互斥
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)

	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func SeedUser(t testing.TB, db *gorm.DB, role model.UserRole) *model.User {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.User{}).Count(&n).Error)
	u := &model.User{
		Name:  fmt.Sprintf("user-%d", n+1),
		Email: fmt.Sprintf("user%d@logicfy.test", n+1),
		Role:  role,
		Level: 1,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Tree 一个语言、一个单元，按 layout 生成小节与课程
type Tree struct {
	Language  model.Language
	Unit      model.Unit
	Sections  []model.Section
	Lessons   []model.Lesson
	Questions map[uint][]model.Question
}

// LessonsOf 返回某个小节下的课程
func (tr *Tree) LessonsOf(sectionID uint) []model.Lesson {
	var out []model.Lesson
	for _, l := range tr.Lessons {
		if l.SectionID == sectionID {
			out = append(out, l)
		}
	}
	return out
}

// SeedTree layout[i] 为第 i 个小节的课程数，每个课程含 questionsPerLesson 道单选题
func SeedTree(t testing.TB, db *gorm.DB, layout []int, questionsPerLesson int) *Tree {
	t.Helper()
	tr := &Tree{Questions: make(map[uint][]model.Question)}

	var n int64
	require.NoError(t, db.Model(&model.Language{}).Count(&n).Error)
	tr.Language = model.Language{Name: fmt.Sprintf("Lang %d", n+1), Code: fmt.Sprintf("lang%d", n+1), Active: true}
	require.NoError(t, db.Create(&tr.Language).Error)

	tr.Unit = model.Unit{LanguageID: tr.Language.ID, Title: "Unit 1", Order: 1}
	require.NoError(t, db.Create(&tr.Unit).Error)

	for i, lessons := range layout {
		sec := model.Section{UnitID: tr.Unit.ID, Title: fmt.Sprintf("Section %d", i+1), Order: i + 1}
		require.NoError(t, db.Create(&sec).Error)
		tr.Sections = append(tr.Sections, sec)

		for j := 0; j < lessons; j++ {
			l := model.Lesson{SectionID: sec.ID, Title: fmt.Sprintf("Lesson %d.%d", i+1, j+1), Order: j + 1, Difficulty: 1 + j%3}
			require.NoError(t, db.Create(&l).Error)
			tr.Lessons = append(tr.Lessons, l)
			for k := 0; k < questionsPerLesson; k++ {
				q := SeedChoiceQuestion(t, db, l.ID)
				tr.Questions[l.ID] = append(tr.Questions[l.ID], *q)
			}
		}
	}
	return tr
}

// SeedChoiceQuestion 两个选项的单选题，第一个选项正确
func SeedChoiceQuestion(t testing.TB, db *gorm.DB, lessonID uint) *model.Question {
	t.Helper()
	q := &model.Question{LessonID: lessonID, Kind: model.KindMultipleChoice, Text: "pick one", Difficulty: 1}
	require.NoError(t, db.Create(q).Error)

	opts := []model.QuestionOption{
		{QuestionID: q.ID, Text: "right", Order: 1},
		{QuestionID: q.ID, Text: "wrong", Order: 2},
	}
	require.NoError(t, db.Create(&opts).Error)
	q.CorrectOptionID = &opts[0].ID
	require.NoError(t, db.Model(q).Update("correct_option_id", opts[0].ID).Error)
	q.Options = opts
	return q
}

// RightAnswer 单选题的正确作答
func RightAnswer(q model.Question) json.RawMessage {
	return choice(q.Options[0].ID)
}

// WrongAnswer 单选题的错误作答
func WrongAnswer(q model.Question) json.RawMessage {
	return choice(q.Options[1].ID)
}

func choice(optionID uint) json.RawMessage {
	b, _ := json.Marshal(map[string]uint{"optionId": optionID})
	return b
}
