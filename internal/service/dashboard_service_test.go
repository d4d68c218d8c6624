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

func TestAdminDashboard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, h.db, model.Learner)
	testutil.SeedUser(t, h.db, model.Admin)
	tree := testutil.SeedTree(t, h.db, []int{2, 1}, 2)
	other := testutil.SeedTree(t, h.db, []int{1}, 1)

	lesson := tree.Lessons[0]
	h.answer(t, user.ID, tree.Questions[lesson.ID][0], true, 1000)
	h.answer(t, user.ID, tree.Questions[lesson.ID][1], false, 4000)
	_, err := h.enrollment.Enroll(ctx, user.ID, lesson.ID)
	require.NoError(t, err)

	d, err := h.dashboard.AdminDashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, model.ContentTotals{Languages: 2, Units: 2, Sections: 3, Lessons: 4, Questions: 7, Users: 2}, d.Totals)
	require.NotNil(t, d.MostFollowedLesson)
	assert.Equal(t, lesson.ID, d.MostFollowedLesson.ID)
	require.NotNil(t, d.MostFollowedUnit)
	assert.Equal(t, tree.Unit.ID, d.MostFollowedUnit.ID)

	assert.Equal(t, int64(2), d.Questions.TotalAnswers)
	assert.InDelta(t, 50, d.Questions.AccuracyPercent, 1e-9)

	require.Len(t, d.Languages, 2)
	assert.Equal(t, model.LanguageStats{LanguageID: tree.Language.ID, Name: tree.Language.Name, Units: 1, Sections: 2, Lessons: 3, Questions: 6}, d.Languages[0])
	assert.Equal(t, other.Language.ID, d.Languages[1].LanguageID)

	assert.Equal(t, int64(4), d.RecentAdditions.Lessons)
	require.Len(t, d.WeeklyActivity, 7)
	assert.Equal(t, int64(2), d.WeeklyActivity[6].Count)
	require.Len(t, d.HardestQuestions, 2)
	assert.Equal(t, tree.Questions[lesson.ID][1].ID, d.HardestQuestions[0].QuestionID)

	var lessons int64
	for _, b := range d.Difficulty {
		lessons += b.Lessons
	}
	assert.Equal(t, int64(4), lessons)
}

func TestAdminDashboard_EmptyStore(t *testing.T) {
	h := newHarness(t)

	d, err := h.dashboard.AdminDashboard(context.Background())
	require.NoError(t, err)
	assert.Nil(t, d.MostFollowedLesson)
	assert.Nil(t, d.MostFollowedUnit)
	assert.Empty(t, d.HardestQuestions)
	assert.Zero(t, d.Questions.AccuracyPercent)
	require.Len(t, d.WeeklyActivity, 7)
}

func TestLearnerDashboard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, h.db, model.Learner)
	tree := testutil.SeedTree(t, h.db, []int{1}, 2)
	qs := tree.Questions[tree.Lessons[0].ID]

	h.answer(t, user.ID, qs[0], true, 100)
	h.answer(t, user.ID, qs[1], false, 100)

	d, err := h.dashboard.LearnerDashboard(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, d.Stats.TotalXp)
	assert.Equal(t, 1, d.Stats.Streak)
	require.Len(t, d.UnitProgress, 1)
	assert.Equal(t, tree.Unit.ID, d.UnitProgress[0].UnitID)
	require.Len(t, d.SectionProgress, 1)
	require.Len(t, d.RecentAnswers, 2)

	_, err = h.dashboard.LearnerDashboard(ctx, 9999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestLanguageDetail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	tree := testutil.SeedTree(t, h.db, []int{2, 1}, 2)

	d, err := h.dashboard.LanguageDetail(ctx, tree.Language.ID)
	require.NoError(t, err)
	assert.Equal(t, tree.Language.ID, d.Language.ID)
	assert.Equal(t, int64(3), d.Stats.Lessons)

	require.Len(t, d.Units, 1)
	unit := d.Units[0]
	assert.Equal(t, 2, unit.SectionCount)
	require.Len(t, unit.Sections, 2)
	assert.Equal(t, tree.Sections[0].ID, unit.Sections[0].ID)
	assert.Equal(t, 2, unit.Sections[0].LessonCount)
	require.Len(t, unit.Sections[0].Lessons, 2)
	assert.Equal(t, int64(2), unit.Sections[0].Lessons[0].QuestionCount)
	assert.Equal(t, 1, unit.Sections[1].LessonCount)

	_, err = h.dashboard.LanguageDetail(ctx, 9999)
	assert.ErrorIs(t, err, util.ErrLanguageNotFound)
}
