package repository

import (
	"context"
	"logicfy_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// ContentRepository 内容树只读访问及子节点计数缓存维护
type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) WithTx(tx *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: tx}
}

func (r *ContentRepository) db(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx)
}

// FindQuestion 查询题目并预加载所有题型的答案键
func (r *ContentRepository) FindQuestion(ctx context.Context, id uint) (*model.Question, error) {
	var q model.Question
	err := r.db(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc, id asc") }).
		Preload("WordBlock").
		Preload("FunctionSolutions").
		Preload("LivePreview").
		First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *ContentRepository) FindLanguage(ctx context.Context, id uint) (*model.Language, error) {
	var l model.Language
	if err := r.db(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ContentRepository) FindUnit(ctx context.Context, id uint) (*model.Unit, error) {
	var u model.Unit
	if err := r.db(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *ContentRepository) FindSection(ctx context.Context, id uint) (*model.Section, error) {
	var s model.Section
	if err := r.db(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ContentRepository) FindLesson(ctx context.Context, id uint) (*model.Lesson, error) {
	var l model.Lesson
	if err := r.db(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ContentRepository) FindLessonsByIDs(ctx context.Context, ids []uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	if len(ids) == 0 {
		return lessons, nil
	}
	err := r.db(ctx).Where("id IN ?", ids).Find(&lessons).Error
	return lessons, err
}

func (r *ContentRepository) FindQuestionsByIDs(ctx context.Context, ids []uint) ([]model.Question, error) {
	var questions []model.Question
	if len(ids) == 0 {
		return questions, nil
	}
	err := r.db(ctx).Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

// CountLessonQuestions 实时统计课程题目数（进度计算的依据）
func (r *ContentRepository) CountLessonQuestions(ctx context.Context, lessonID uint) (int64, error) {
	var n int64
	err := r.db(ctx).Model(&model.Question{}).Where("lesson_id = ?", lessonID).Count(&n).Error
	return n, err
}

func (r *ContentRepository) QuestionIDsInLesson(ctx context.Context, lessonID uint) ([]uint, error) {
	var ids []uint
	err := r.db(ctx).Model(&model.Question{}).
		Where("lesson_id = ?", lessonID).
		Order("id asc").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *ContentRepository) LessonIDsInSection(ctx context.Context, sectionID uint) ([]uint, error) {
	var ids []uint
	err := r.db(ctx).Model(&model.Lesson{}).
		Where("section_id = ?", sectionID).
		Order("sort_order asc, id asc").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *ContentRepository) SectionIDsInUnit(ctx context.Context, unitID uint) ([]uint, error) {
	var ids []uint
	err := r.db(ctx).Model(&model.Section{}).
		Where("unit_id = ?", unitID).
		Order("sort_order asc, id asc").
		Pluck("id", &ids).Error
	return ids, err
}

// LessonIDsInUnit 通过小节关联查询单元下全部课程
func (r *ContentRepository) LessonIDsInUnit(ctx context.Context, unitID uint) ([]uint, error) {
	var ids []uint
	err := r.db(ctx).Model(&model.Lesson{}).
		Joins("JOIN sections ON sections.id = lessons.section_id AND sections.deleted_at IS NULL").
		Where("sections.unit_id = ?", unitID).
		Order("lessons.id asc").
		Pluck("lessons.id", &ids).Error
	return ids, err
}

func (r *ContentRepository) AllLessonIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db(ctx).Model(&model.Lesson{}).Order("id asc").Pluck("id", &ids).Error
	return ids, err
}

func (r *ContentRepository) AllSectionIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db(ctx).Model(&model.Section{}).Order("id asc").Pluck("id", &ids).Error
	return ids, err
}

func (r *ContentRepository) AllUnitIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db(ctx).Model(&model.Unit{}).Order("id asc").Pluck("id", &ids).Error
	return ids, err
}

func (r *ContentRepository) SetLessonQuestionCount(ctx context.Context, lessonID uint, n int64) error {
	return r.db(ctx).Model(&model.Lesson{}).Where("id = ?", lessonID).
		UpdateColumn("question_count_cache", n).Error
}

func (r *ContentRepository) CountSectionLessons(ctx context.Context, sectionID uint) (int64, error) {
	var n int64
	err := r.db(ctx).Model(&model.Lesson{}).Where("section_id = ?", sectionID).Count(&n).Error
	return n, err
}

func (r *ContentRepository) SetSectionLessonCount(ctx context.Context, sectionID uint, n int64) error {
	return r.db(ctx).Model(&model.Section{}).Where("id = ?", sectionID).
		UpdateColumn("lesson_count_cache", n).Error
}

func (r *ContentRepository) CountUnitSections(ctx context.Context, unitID uint) (int64, error) {
	var n int64
	err := r.db(ctx).Model(&model.Section{}).Where("unit_id = ?", unitID).Count(&n).Error
	return n, err
}

func (r *ContentRepository) SetUnitSectionCount(ctx context.Context, unitID uint, n int64) error {
	return r.db(ctx).Model(&model.Unit{}).Where("id = ?", unitID).
		UpdateColumn("section_count_cache", n).Error
}

func (r *ContentRepository) CountLanguageUnits(ctx context.Context, languageID uint) (int64, error) {
	var n int64
	err := r.db(ctx).Model(&model.Unit{}).Where("language_id = ?", languageID).Count(&n).Error
	return n, err
}

func (r *ContentRepository) DeleteLesson(ctx context.Context, id uint) error {
	return r.db(ctx).Delete(&model.Lesson{}, id).Error
}

func (r *ContentRepository) DeleteSection(ctx context.Context, id uint) error {
	return r.db(ctx).Delete(&model.Section{}, id).Error
}

func (r *ContentRepository) DeleteUnit(ctx context.Context, id uint) error {
	return r.db(ctx).Delete(&model.Unit{}, id).Error
}

func (r *ContentRepository) DeleteQuestion(ctx context.Context, id uint) error {
	return r.db(ctx).Delete(&model.Question{}, id).Error
}

// Totals 仪表盘使用的内容规模统计
func (r *ContentRepository) Totals(ctx context.Context) (*model.ContentTotals, error) {
	var t model.ContentTotals
	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&model.Language{}, &t.Languages},
		{&model.Unit{}, &t.Units},
		{&model.Section{}, &t.Sections},
		{&model.Lesson{}, &t.Lessons},
		{&model.Question{}, &t.Questions},
		{&model.User{}, &t.Users},
	}
	for _, c := range counts {
		if err := r.db(ctx).Model(c.model).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// DifficultyDistribution 按难度统计课程数量
func (r *ContentRepository) DifficultyDistribution(ctx context.Context) ([]model.DifficultyBucket, error) {
	var buckets []model.DifficultyBucket
	err := r.db(ctx).Model(&model.Lesson{}).
		Select("difficulty, COUNT(*) AS lessons").
		Group("difficulty").
		Order("difficulty asc").
		Scan(&buckets).Error
	return buckets, err
}

func (r *ContentRepository) ListLanguages(ctx context.Context) ([]model.Language, error) {
	var langs []model.Language
	err := r.db(ctx).Order("sort_order asc, id asc").Find(&langs).Error
	return langs, err
}

// LanguageStats 单个语言下各层级节点数量
func (r *ContentRepository) LanguageStats(ctx context.Context, lang *model.Language) (*model.LanguageStats, error) {
	stats := &model.LanguageStats{LanguageID: lang.ID, Name: lang.Name}

	if err := r.db(ctx).Model(&model.Unit{}).
		Where("language_id = ?", lang.ID).
		Count(&stats.Units).Error; err != nil {
		return nil, err
	}
	if err := r.db(ctx).Model(&model.Section{}).
		Joins("JOIN units ON units.id = sections.unit_id AND units.deleted_at IS NULL").
		Where("units.language_id = ?", lang.ID).
		Count(&stats.Sections).Error; err != nil {
		return nil, err
	}
	if err := r.db(ctx).Model(&model.Lesson{}).
		Joins("JOIN sections ON sections.id = lessons.section_id AND sections.deleted_at IS NULL").
		Joins("JOIN units ON units.id = sections.unit_id AND units.deleted_at IS NULL").
		Where("units.language_id = ?", lang.ID).
		Count(&stats.Lessons).Error; err != nil {
		return nil, err
	}
	if err := r.db(ctx).Model(&model.Question{}).
		Joins("JOIN lessons ON lessons.id = questions.lesson_id AND lessons.deleted_at IS NULL").
		Joins("JOIN sections ON sections.id = lessons.section_id AND sections.deleted_at IS NULL").
		Joins("JOIN units ON units.id = sections.unit_id AND units.deleted_at IS NULL").
		Where("units.language_id = ?", lang.ID).
		Count(&stats.Questions).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// AddedSince 统计 since 之后新增的内容
func (r *ContentRepository) AddedSince(ctx context.Context, since time.Time) (*model.RecentAdditions, error) {
	ra := &model.RecentAdditions{Since: since}
	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&model.Unit{}, &ra.Units},
		{&model.Section{}, &ra.Sections},
		{&model.Lesson{}, &ra.Lessons},
		{&model.Question{}, &ra.Questions},
	}
	for _, c := range counts {
		if err := r.db(ctx).Model(c.model).Where("created_at >= ?", since).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return ra, nil
}

func (r *ContentRepository) UnitsOfLanguage(ctx context.Context, languageID uint) ([]model.Unit, error) {
	var units []model.Unit
	err := r.db(ctx).Where("language_id = ?", languageID).Order("sort_order asc, id asc").Find(&units).Error
	return units, err
}

func (r *ContentRepository) SectionsOfUnits(ctx context.Context, unitIDs []uint) ([]model.Section, error) {
	var sections []model.Section
	if len(unitIDs) == 0 {
		return sections, nil
	}
	err := r.db(ctx).Where("unit_id IN ?", unitIDs).Order("sort_order asc, id asc").Find(&sections).Error
	return sections, err
}

func (r *ContentRepository) LessonsOfSections(ctx context.Context, sectionIDs []uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	if len(sectionIDs) == 0 {
		return lessons, nil
	}
	err := r.db(ctx).Where("section_id IN ?", sectionIDs).Order("sort_order asc, id asc").Find(&lessons).Error
	return lessons, err
}

type lessonCount struct {
	LessonID uint
	N        int64
}

// QuestionCountsByLesson 批量统计各课程的实时题目数
func (r *ContentRepository) QuestionCountsByLesson(ctx context.Context, lessonIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(lessonIDs))
	if len(lessonIDs) == 0 {
		return out, nil
	}
	var rows []lessonCount
	err := r.db(ctx).Model(&model.Question{}).
		Select("lesson_id, COUNT(*) AS n").
		Where("lesson_id IN ?", lessonIDs).
		Group("lesson_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.LessonID] = row.N
	}
	return out, nil
}
