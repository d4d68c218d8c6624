package service

import (
	"context"
	"fmt"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/repository"
	"logicfy_backend/internal/util"
	"logicfy_backend/pkg/logger"

	"go.uber.org/zap"
)

// ContentService 内容树查询、子节点计数缓存刷新与空节点删除
type ContentService struct {
	ContentRepo *repository.ContentRepository
}

func NewContentService(contentRepo *repository.ContentRepository) *ContentService {
	return &ContentService{ContentRepo: contentRepo}
}

func (s *ContentService) GetQuestion(ctx context.Context, id uint) (*model.Question, error) {
	q, err := s.ContentRepo.FindQuestion(ctx, id)
	return q, storeErr(err, util.ErrQuestionNotFound)
}

func (s *ContentService) GetLesson(ctx context.Context, id uint) (*model.Lesson, error) {
	l, err := s.ContentRepo.FindLesson(ctx, id)
	return l, storeErr(err, util.ErrLessonNotFound)
}

func (s *ContentService) GetSection(ctx context.Context, id uint) (*model.Section, error) {
	sec, err := s.ContentRepo.FindSection(ctx, id)
	return sec, storeErr(err, util.ErrSectionNotFound)
}

func (s *ContentService) GetUnit(ctx context.Context, id uint) (*model.Unit, error) {
	u, err := s.ContentRepo.FindUnit(ctx, id)
	return u, storeErr(err, util.ErrUnitNotFound)
}

// GetLessonQuestionCount 实时题目数
func (s *ContentService) GetLessonQuestionCount(ctx context.Context, lessonID uint) (int64, error) {
	n, err := s.ContentRepo.CountLessonQuestions(ctx, lessonID)
	return n, storeErr(err, util.ErrLessonNotFound)
}

func (s *ContentService) GetLessonsInSection(ctx context.Context, sectionID uint) ([]uint, error) {
	ids, err := s.ContentRepo.LessonIDsInSection(ctx, sectionID)
	return ids, storeErr(err, util.ErrSectionNotFound)
}

func (s *ContentService) GetSectionsInUnit(ctx context.Context, unitID uint) ([]uint, error) {
	ids, err := s.ContentRepo.SectionIDsInUnit(ctx, unitID)
	return ids, storeErr(err, util.ErrUnitNotFound)
}

// RefreshLessonQuestionCount 用实时题目数覆盖课程的计数缓存
func (s *ContentService) RefreshLessonQuestionCount(ctx context.Context, lessonID uint) (int64, error) {
	if _, err := s.GetLesson(ctx, lessonID); err != nil {
		return 0, err
	}
	n, err := s.ContentRepo.CountLessonQuestions(ctx, lessonID)
	if err != nil {
		return 0, util.Transient(err)
	}
	if err := s.ContentRepo.SetLessonQuestionCount(ctx, lessonID, n); err != nil {
		return 0, util.Transient(err)
	}
	return n, nil
}

func (s *ContentService) RefreshSectionLessonCount(ctx context.Context, sectionID uint) (int64, error) {
	if _, err := s.GetSection(ctx, sectionID); err != nil {
		return 0, err
	}
	n, err := s.ContentRepo.CountSectionLessons(ctx, sectionID)
	if err != nil {
		return 0, util.Transient(err)
	}
	if err := s.ContentRepo.SetSectionLessonCount(ctx, sectionID, n); err != nil {
		return 0, util.Transient(err)
	}
	return n, nil
}

func (s *ContentService) RefreshUnitSectionCount(ctx context.Context, unitID uint) (int64, error) {
	if _, err := s.GetUnit(ctx, unitID); err != nil {
		return 0, err
	}
	n, err := s.ContentRepo.CountUnitSections(ctx, unitID)
	if err != nil {
		return 0, util.Transient(err)
	}
	if err := s.ContentRepo.SetUnitSectionCount(ctx, unitID, n); err != nil {
		return 0, util.Transient(err)
	}
	return n, nil
}

// RefreshCountsResult 全量刷新的节点数量
type RefreshCountsResult struct {
	Lessons  int `json:"lessons"`
	Sections int `json:"sections"`
	Units    int `json:"units"`
}

// RefreshAllCounts 刷新全部节点的计数缓存，单个节点失败不影响其余节点
func (s *ContentService) RefreshAllCounts(ctx context.Context) (*RefreshCountsResult, error) {
	res := &RefreshCountsResult{}

	lessonIDs, err := s.ContentRepo.AllLessonIDs(ctx)
	if err != nil {
		return nil, util.Transient(err)
	}
	for _, id := range lessonIDs {
		if _, err := s.RefreshLessonQuestionCount(ctx, id); err != nil {
			logger.Log.Warn("Refresh lesson count failed", zap.Uint("lesson_id", id), zap.Error(err))
			continue
		}
		res.Lessons++
	}

	sectionIDs, err := s.ContentRepo.AllSectionIDs(ctx)
	if err != nil {
		return nil, util.Transient(err)
	}
	for _, id := range sectionIDs {
		if _, err := s.RefreshSectionLessonCount(ctx, id); err != nil {
			logger.Log.Warn("Refresh section count failed", zap.Uint("section_id", id), zap.Error(err))
			continue
		}
		res.Sections++
	}

	unitIDs, err := s.ContentRepo.AllUnitIDs(ctx)
	if err != nil {
		return nil, util.Transient(err)
	}
	for _, id := range unitIDs {
		if _, err := s.RefreshUnitSectionCount(ctx, id); err != nil {
			logger.Log.Warn("Refresh unit count failed", zap.Uint("unit_id", id), zap.Error(err))
			continue
		}
		res.Units++
	}

	return res, nil
}

// DeleteLesson 课程下仍有题目时拒绝删除
func (s *ContentService) DeleteLesson(ctx context.Context, id uint) error {
	lesson, err := s.GetLesson(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.ContentRepo.CountLessonQuestions(ctx, id)
	if err != nil {
		return util.Transient(err)
	}
	if n > 0 {
		return fmt.Errorf("lesson %d has %d questions: %w", id, n, util.ErrHasChildren)
	}
	if err := s.ContentRepo.DeleteLesson(ctx, id); err != nil {
		return util.Transient(err)
	}
	_, err = s.RefreshSectionLessonCount(ctx, lesson.SectionID)
	return err
}

func (s *ContentService) DeleteSection(ctx context.Context, id uint) error {
	section, err := s.GetSection(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.ContentRepo.CountSectionLessons(ctx, id)
	if err != nil {
		return util.Transient(err)
	}
	if n > 0 {
		return fmt.Errorf("section %d has %d lessons: %w", id, n, util.ErrHasChildren)
	}
	if err := s.ContentRepo.DeleteSection(ctx, id); err != nil {
		return util.Transient(err)
	}
	_, err = s.RefreshUnitSectionCount(ctx, section.UnitID)
	return err
}

func (s *ContentService) DeleteUnit(ctx context.Context, id uint) error {
	if _, err := s.GetUnit(ctx, id); err != nil {
		return err
	}
	n, err := s.ContentRepo.CountUnitSections(ctx, id)
	if err != nil {
		return util.Transient(err)
	}
	if n > 0 {
		return fmt.Errorf("unit %d has %d sections: %w", id, n, util.ErrHasChildren)
	}
	if err := s.ContentRepo.DeleteUnit(ctx, id); err != nil {
		return util.Transient(err)
	}
	return nil
}

// DeleteQuestion 删除题目并刷新所属课程的计数缓存
func (s *ContentService) DeleteQuestion(ctx context.Context, id uint) (*model.Question, error) {
	q, err := s.GetQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ContentRepo.DeleteQuestion(ctx, id); err != nil {
		return nil, util.Transient(err)
	}
	if _, err := s.RefreshLessonQuestionCount(ctx, q.LessonID); err != nil {
		return nil, err
	}
	return q, nil
}
