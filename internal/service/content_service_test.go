package service

import (
	"context"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/testutil"
	"logicfy_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshAllCounts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tree := testutil.SeedTree(t, h.db, []int{2, 1}, 2)

	res, err := h.content.RefreshAllCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, RefreshCountsResult{Lessons: 3, Sections: 2, Units: 1}, *res)

	lesson, err := h.content.GetLesson(ctx, tree.Lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, lesson.QuestionCountCache)

	sec, err := h.content.GetSection(ctx, tree.Sections[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sec.LessonCountCache)

	unit, err := h.content.GetUnit(ctx, tree.Unit.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unit.SectionCountCache)
}

func TestRefreshCounts_UnknownNodes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.content.RefreshLessonQuestionCount(ctx, 42)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
	_, err = h.content.RefreshSectionLessonCount(ctx, 42)
	assert.ErrorIs(t, err, util.ErrSectionNotFound)
	_, err = h.content.RefreshUnitSectionCount(ctx, 42)
	assert.ErrorIs(t, err, util.ErrUnitNotFound)
}

func TestDelete_RejectsNodesWithChildren(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tree := testutil.SeedTree(t, h.db, []int{1}, 1)
	lesson := tree.Lessons[0]

	err := h.content.DeleteLesson(ctx, lesson.ID)
	assert.ErrorIs(t, err, util.ErrHasChildren)
	assert.ErrorIs(t, err, util.ErrConflict)
	assert.ErrorIs(t, h.content.DeleteSection(ctx, tree.Sections[0].ID), util.ErrHasChildren)
	assert.ErrorIs(t, h.content.DeleteUnit(ctx, tree.Unit.ID), util.ErrHasChildren)

	// 自底向上逐层删除
	q, err := h.content.DeleteQuestion(ctx, tree.Questions[lesson.ID][0].ID)
	require.NoError(t, err)
	assert.Equal(t, lesson.ID, q.LessonID)

	got, err := h.content.GetLesson(ctx, lesson.ID)
	require.NoError(t, err)
	assert.Zero(t, got.QuestionCountCache)

	require.NoError(t, h.content.DeleteLesson(ctx, lesson.ID))
	sec, err := h.content.GetSection(ctx, tree.Sections[0].ID)
	require.NoError(t, err)
	assert.Zero(t, sec.LessonCountCache)

	require.NoError(t, h.content.DeleteSection(ctx, tree.Sections[0].ID))
	require.NoError(t, h.content.DeleteUnit(ctx, tree.Unit.ID))

	_, err = h.content.GetUnit(ctx, tree.Unit.ID)
	assert.ErrorIs(t, err, util.ErrUnitNotFound)
	_, err = h.content.GetQuestion(ctx, q.ID)
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}

func TestContentQueries(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tree := testutil.SeedTree(t, h.db, []int{2, 1}, 3)

	n, err := h.content.GetLessonQuestionCount(ctx, tree.Lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	lessons, err := h.content.GetLessonsInSection(ctx, tree.Sections[0].ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{tree.Lessons[0].ID, tree.Lessons[1].ID}, lessons)

	sections, err := h.content.GetSectionsInUnit(ctx, tree.Unit.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{tree.Sections[0].ID, tree.Sections[1].ID}, sections)

	q, err := h.content.GetQuestion(ctx, tree.Questions[tree.Lessons[2].ID][0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.KindMultipleChoice, q.Kind)
}
