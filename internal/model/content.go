package model

// Language 编程语言，内容树的根节点
// swagger:model Language
type Language struct {
	BaseModel
	Name    string `gorm:"size:100;not null" json:"name"`
	Code    string `gorm:"size:32;uniqueIndex" json:"code"`
	IconURL string `gorm:"size:255" json:"iconUrl"`
	Active  bool   `gorm:"default:true" json:"active"`
	Order   int    `gorm:"column:sort_order;default:0" json:"order"`
}

func (Language) TableName() string {
	return "languages"
}

// Unit 单元
type Unit struct {
	BaseModel
	LanguageID        uint   `gorm:"index;not null" json:"languageId"`
	Title             string `gorm:"size:200;not null" json:"title"`
	Description       string `gorm:"type:text" json:"description"`
	Order             int    `gorm:"column:sort_order;default:0" json:"order"`
	SectionCountCache int    `gorm:"default:0" json:"sectionCount"`
}

func (Unit) TableName() string {
	return "units"
}

// Section 小节
type Section struct {
	BaseModel
	UnitID           uint   `gorm:"index;not null" json:"unitId"`
	Title            string `gorm:"size:200;not null" json:"title"`
	Order            int    `gorm:"column:sort_order;default:0" json:"order"`
	LessonCountCache int    `gorm:"default:0" json:"lessonCount"`
}

func (Section) TableName() string {
	return "sections"
}

// Lesson 课程
type Lesson struct {
	BaseModel
	SectionID          uint   `gorm:"index;not null" json:"sectionId"`
	Title              string `gorm:"size:200;not null" json:"title"`
	Order              int    `gorm:"column:sort_order;default:0" json:"order"`
	EstimatedMinutes   int    `gorm:"default:0" json:"estimatedMinutes"`
	Difficulty         int    `gorm:"default:1" json:"difficulty"`
	QuestionCountCache int    `gorm:"default:0" json:"questionCount"`
}

func (Lesson) TableName() string {
	return "lessons"
}

type QuestionKind int

const (
	KindMultipleChoice   QuestionKind = 1
	KindCodeCompletion   QuestionKind = 2
	KindFunctionSolution QuestionKind = 3
	KindLivePreview      QuestionKind = 4
)

func (k QuestionKind) Valid() bool {
	return k >= KindMultipleChoice && k <= KindLivePreview
}

// Question 题目，答案键按题型存放在关联表中
type Question struct {
	BaseModel
	LessonID        uint         `gorm:"index;not null" json:"lessonId"`
	Kind            QuestionKind `gorm:"not null" json:"kind"`
	Text            string       `gorm:"type:text" json:"text"`
	Code            string       `gorm:"type:text" json:"code"`
	Difficulty      int          `gorm:"default:1" json:"difficulty"`
	Order           int          `gorm:"column:sort_order;default:0" json:"order"`
	CorrectOptionID *uint        `json:"-"`
	ExtraJSON       string       `gorm:"type:text" json:"extra,omitempty"`

	Options           []QuestionOption           `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
	WordBlock         *QuestionWordBlock         `gorm:"foreignKey:QuestionID" json:"-"`
	FunctionSolutions []QuestionFunctionSolution `gorm:"foreignKey:QuestionID" json:"-"`
	LivePreview       *QuestionLivePreview       `gorm:"foreignKey:QuestionID" json:"-"`
}

func (Question) TableName() string {
	return "questions"
}

// HasOption 判断选项是否属于该题
func (q *Question) HasOption(optionID uint) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

type QuestionOption struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"type:text" json:"text"`
	Order      int    `gorm:"column:sort_order;default:0" json:"order"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}

// QuestionWordBlock 代码补全题的答案键
type QuestionWordBlock struct {
	BaseModel
	QuestionID  uint   `gorm:"uniqueIndex;not null" json:"questionId"`
	CorrectCode string `gorm:"type:text" json:"-"`
	WordsJSON   string `gorm:"type:text" json:"words"`
}

func (QuestionWordBlock) TableName() string {
	return "question_word_blocks"
}

// QuestionFunctionSolution 函数题的参考解，允许多个
type QuestionFunctionSolution struct {
	BaseModel
	QuestionID   uint   `gorm:"index;not null" json:"questionId"`
	SolutionCode string `gorm:"type:text" json:"-"`
}

func (QuestionFunctionSolution) TableName() string {
	return "question_function_solutions"
}

// QuestionLivePreview 实时预览题的答案键
type QuestionLivePreview struct {
	BaseModel
	QuestionID         uint   `gorm:"uniqueIndex;not null" json:"questionId"`
	CorrectHTML        string `gorm:"type:text" json:"-"`
	CorrectCSS         string `gorm:"type:text" json:"-"`
	RequiredTagsJSON   string `gorm:"type:text" json:"-"`
	RequiredStylesJSON string `gorm:"type:text" json:"-"`
}

func (QuestionLivePreview) TableName() string {
	return "question_live_previews"
}
