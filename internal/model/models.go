package model

// All 返回需要迁移的全部模型
func All() []interface{} {
	return []interface{}{
		&User{},
		&Language{},
		&Unit{},
		&Section{},
		&Lesson{},
		&Question{},
		&QuestionOption{},
		&QuestionWordBlock{},
		&QuestionFunctionSolution{},
		&QuestionLivePreview{},
		&AnswerEvent{},
		&LessonEnrollment{},
		&LessonProgress{},
		&SectionProgress{},
		&UnitProgress{},
		&XpLog{},
		&QuestionAnalytic{},
		&LessonAnalytic{},
		&LessonFollow{},
		&UnitFollow{},
	}
}
