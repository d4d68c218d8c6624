package service

import (
	"context"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/testutil"
	"logicfy_backend/internal/util"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentOf(t *testing.T) {
	cases := []struct {
		completed, total int64
		want             int
	}{
		{0, 0, 0},
		{0, 5, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{199, 200, 99},
		{5, 3, 100},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, percentOf(c.completed, c.total), "percentOf(%d, %d)", c.completed, c.total)
	}
}

func TestRecomputeLessonProgress_CountsDistinctCorrectQuestions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, h.db, model.Learner)
	tree := testutil.SeedTree(t, h.db, []int{1}, 3)
	lesson := tree.Lessons[0]
	qs := tree.Questions[lesson.ID]

	h.answer(t, user.ID, qs[0], true, 1000)
	h.answer(t, user.ID, qs[0], true, 1000)
	h.answer(t, user.ID, qs[1], false, 1000)

	p, err := h.progress.LessonProgressByID(ctx, user.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CompletedCount)
	assert.Equal(t, 3, p.TotalCount)
	assert.Equal(t, 33, p.Percent)
	assert.False(t, p.Completed)

	h.answer(t, user.ID, qs[1], true, 1000)
	h.answer(t, user.ID, qs[2], true, 1000)

	p, err = h.progress.LessonProgressByID(ctx, user.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.CompletedCount)
	assert.Equal(t, 100, p.Percent)
	assert.True(t, p.Completed)
}

func TestRecomputeLessonProgress_CascadesToSectionAndUnit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, h.db, model.Learner)
	tree := testutil.SeedTree(t, h.db, []int{2, 1}, 1)
	first := tree.Lessons[0]

	h.answer(t, user.ID, tree.Questions[first.ID][0], true, 500)

	sec, err := h.progress.SectionProgressByID(ctx, user.ID, tree.Sections[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sec.CompletedCount)
	assert.Equal(t, 2, sec.TotalCount)
	assert.Equal(t, 50, sec.Percent)

	unit, err := h.progress.UnitProgressByID(ctx, user.ID, tree.Unit.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unit.CompletedCount)
	assert.Equal(t, 3, unit.TotalCount)
	assert.Equal(t, 33, unit.Percent)

	// 其他小节尚无进度行
	_, err = h.progress.SectionProgressByID(ctx, user.ID, tree.Sections[1].ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestRecomputeLessonProgress_DeletedQuestionShrinksTotal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, h.db, model.Learner)
	tree := testutil.SeedTree(t, h.db, []int{1}, 2)
	lesson := tree.Lessons[0]
	qs := tree.Questions[lesson.ID]

	h.answer(t, user.ID, qs[0], true, 100)
	_, err := h.content.DeleteQuestion(ctx, qs[1].ID)
	require.NoError(t, err)

	p, err := h.progress.RecomputeLessonProgress(ctx, user.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalCount)
	assert.Equal(t, 1, p.CompletedCount)
	assert.True(t, p.Completed)

	_, err = h.content.DeleteQuestion(ctx, qs[0].ID)
	require.NoError(t, err)
	p, err = h.progress.RecomputeLessonProgress(ctx, user.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.TotalCount)
	assert.Equal(t, 0, p.CompletedCount)
	assert.Equal(t, 0, p.Percent)
	assert.False(t, p.Completed)
}

func TestRecomputeLessonProgress_UnknownIDs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, h.db, model.Learner)
	tree := testutil.SeedTree(t, h.db, []int{1}, 1)

	_, err := h.progress.RecomputeLessonProgress(ctx, 9999, tree.Lessons[0].ID)
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	_, err = h.progress.RecomputeLessonProgress(ctx, user.ID, 9999)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestRecomputeLessonProgress_ConcurrentCallsKeepOneRow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, h.db, model.Learner)
	tree := testutil.SeedTree(t, h.db, []int{1}, 2)
	lesson := tree.Lessons[0]
	h.answer(t, user.ID, tree.Questions[lesson.ID][0], true, 100)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.progress.RecomputeLessonProgress(ctx, user.ID, lesson.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var n int64
	require.NoError(t, h.db.Model(&model.LessonProgress{}).Where("user_id = ? AND lesson_id = ?", user.ID, lesson.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	p, err := h.progress.LessonProgressByID(ctx, user.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Percent)
}

func TestRecomputeLessonProgress_RepeatWithoutEventsIsStable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, h.db, model.Learner)
	tree := testutil.SeedTree(t, h.db, []int{1}, 3)
	lesson := tree.Lessons[0]
	qs := tree.Questions[lesson.ID]

	h.answer(t, user.ID, qs[0], true, 1000)
	h.answer(t, user.ID, qs[1], false, 1000)

	first, err := h.progress.RecomputeLessonProgress(ctx, user.ID, lesson.ID)
	require.NoError(t, err)
	second, err := h.progress.RecomputeLessonProgress(ctx, user.ID, lesson.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, first.LessonID, second.LessonID)
	assert.Equal(t, first.CompletedCount, second.CompletedCount)
	assert.Equal(t, first.TotalCount, second.TotalCount)
	assert.Equal(t, first.Percent, second.Percent)
	assert.Equal(t, first.Completed, second.Completed)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.Equal(t, 1, second.CompletedCount)
	assert.Equal(t, 33, second.Percent)

	var rows int64
	require.NoError(t, h.db.Model(&model.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ?", user.ID, lesson.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestRecomputeSectionProgress_DoesNotCascade(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, h.db, model.Learner)
	tree := testutil.SeedTree(t, h.db, []int{2}, 1)

	sec, err := h.progress.RecomputeSectionProgress(ctx, user.ID, tree.Sections[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sec.CompletedCount)
	assert.Equal(t, 2, sec.TotalCount)

	_, err = h.progress.UnitProgressByID(ctx, user.ID, tree.Unit.ID)
	assert.ErrorIs(t, err, util.ErrProgressNotFound)

	unit, err := h.progress.RecomputeUnitProgress(ctx, user.ID, tree.Unit.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unit.TotalCount)

	_, err = h.progress.RecomputeUnitProgress(ctx, user.ID, 9999)
	assert.ErrorIs(t, err, util.ErrUnitNotFound)
}
