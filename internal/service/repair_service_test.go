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

func TestUnionIDs(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2, 5}, unionIDs([]uint{3, 1}, []uint{1, 2}, nil, []uint{5, 3}))
	assert.Empty(t, unionIDs())
}

func TestRepairUser_RebuildsDerivedState(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, h.db, model.Learner)
	tree := testutil.SeedTree(t, h.db, []int{2}, 2)
	first, second := tree.Lessons[0], tree.Lessons[1]

	h.answer(t, user.ID, tree.Questions[first.ID][0], true, 100)
	h.answer(t, user.ID, tree.Questions[first.ID][1], true, 100)
	_, err := h.enrollment.Enroll(ctx, user.ID, second.ID)
	require.NoError(t, err)

	// 人为破坏派生数据
	require.NoError(t, h.db.Where("user_id = ?", user.ID).Delete(&model.LessonProgress{}).Error)
	require.NoError(t, h.db.Where("user_id = ?", user.ID).Delete(&model.SectionProgress{}).Error)
	require.NoError(t, h.repos.user.UpdateXPCache(ctx, user.ID, 0, 1))
	require.NoError(t, h.repos.user.UpdateStreak(ctx, user.ID, 0, ""))

	report, err := h.repair.RepairUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Lessons)
	assert.Equal(t, 20, report.TotalXp)
	assert.Equal(t, 1, report.Streak)

	p, err := h.progress.LessonProgressByID(ctx, user.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, p.Completed)
	p, err = h.progress.LessonProgressByID(ctx, user.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalCount)

	sec, err := h.progress.SectionProgressByID(ctx, user.ID, tree.Sections[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 50, sec.Percent)

	// 再次执行结果不变
	again, err := h.repair.RepairUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, report, again)

	_, err = h.repair.RepairUser(ctx, 9999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestRepairLesson_RecomputesEveryTrackedUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := testutil.SeedUser(t, h.db, model.Learner)
	b := testutil.SeedUser(t, h.db, model.Learner)
	c := testutil.SeedUser(t, h.db, model.Learner)
	tree := testutil.SeedTree(t, h.db, []int{1}, 2)
	lesson := tree.Lessons[0]
	qs := tree.Questions[lesson.ID]

	h.answer(t, a.ID, qs[0], true, 100)
	h.answer(t, b.ID, qs[1], false, 300)
	_, err := h.enrollment.Enroll(ctx, c.ID, lesson.ID)
	require.NoError(t, err)

	extra := testutil.SeedChoiceQuestion(t, h.db, lesson.ID)

	report, err := h.repair.RepairLesson(ctx, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.QuestionCount)
	assert.Equal(t, 3, report.Questions)
	assert.Equal(t, 3, report.Users)

	for _, u := range []*model.User{a, b, c} {
		p, err := h.progress.LessonProgressByID(ctx, u.ID, lesson.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, p.TotalCount, "user %d", u.ID)
	}

	a1, err := h.analytics.QuestionAnalyticByID(ctx, extra.ID)
	require.NoError(t, err)
	assert.Zero(t, a1.AnsweredCount)

	perf, err := h.analytics.LessonAnalyticByID(ctx, lesson.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50, perf.AverageAccuracy, 1e-9)

	_, err = h.repair.RepairLesson(ctx, 9999)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestRepairHandle_Dispatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, h.db, model.Learner)
	tree := testutil.SeedTree(t, h.db, []int{1}, 1)
	lesson := tree.Lessons[0]
	q := tree.Questions[lesson.ID][0]
	h.answer(t, user.ID, q, true, 100)
	require.NoError(t, h.db.Where("user_id = ?", user.ID).Delete(&model.LessonProgress{}).Error)

	require.NoError(t, h.repair.Handle(ctx, RepairTask{Kind: RepairLessonProgress, UserID: user.ID, LessonID: lesson.ID}))
	p, err := h.progress.LessonProgressByID(ctx, user.ID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, p.Completed)

	require.NoError(t, h.repair.Handle(ctx, RepairTask{Kind: RepairStreak, UserID: user.ID}))
	require.NoError(t, h.repair.Handle(ctx, RepairTask{Kind: RepairUserTask, UserID: user.ID}))
	require.NoError(t, h.repair.Handle(ctx, RepairTask{Kind: RepairLessonTask, LessonID: lesson.ID}))

	err = h.repair.Handle(ctx, RepairTask{Kind: "bogus"})
	assert.True(t, util.IsInvalidInput(err))

	err = h.repair.Handle(ctx, RepairTask{Kind: RepairQuestionAnalytic, QuestionID: 9999})
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}
