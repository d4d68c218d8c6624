package service

import (
	"context"
	"logicfy_backend/internal/model"
	"logicfy_backend/internal/repository"
	"logicfy_backend/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// harness 按生产方式装配的服务集合，Redis 关闭
type harness struct {
	db         *gorm.DB
	settings   *SettingsStore
	repos      harnessRepos
	content    *ContentService
	users      *UserService
	xp         *XpService
	analytics  *AnalyticsService
	progress   *ProgressService
	enrollment *EnrollmentService
	repair     *RepairService
	dashboard  *DashboardService
	answers    *AnswerService
	queue      *recordingQueue
}

type harnessRepos struct {
	user       *repository.UserRepository
	content    *repository.ContentRepository
	answer     *repository.AnswerRepository
	enrollment *repository.EnrollmentRepository
	progress   *repository.ProgressRepository
	xp         *repository.XpRepository
	analytics  *repository.AnalyticsRepository
}

// recordingQueue 记录入队的修复任务
type recordingQueue struct {
	tasks []RepairTask
}

func (q *recordingQueue) Enqueue(task RepairTask) bool {
	q.tasks = append(q.tasks, task)
	return true
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	h := &harness{db: db, queue: &recordingQueue{}}
	h.settings = NewSettingsStore(DefaultGamificationSettings())
	h.repos = harnessRepos{
		user:       repository.NewUserRepository(db),
		content:    repository.NewContentRepository(db),
		answer:     repository.NewAnswerRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		progress:   repository.NewProgressRepository(db),
		xp:         repository.NewXpRepository(db),
		analytics:  repository.NewAnalyticsRepository(db),
	}
	r := h.repos

	h.content = NewContentService(r.content)
	h.users = NewUserService(r.user, r.answer, h.settings)
	h.xp = NewXpService(db, r.xp, r.user, repository.NewLeaderboardCache(nil), h.settings)
	h.analytics = NewAnalyticsService(db, r.analytics, r.answer, r.content, h.settings)
	h.progress = NewProgressService(db, r.content, r.answer, r.progress, r.user, NewLocalLocker())
	h.enrollment = NewEnrollmentService(db, r.enrollment, r.content, r.user, h.progress)
	h.repair = NewRepairService(h.content, h.progress, h.xp, h.analytics, h.users, r.answer, r.enrollment, r.progress)
	h.dashboard = NewDashboardService(r.content, r.enrollment, r.answer, h.analytics, h.xp, h.progress, repository.NewDashboardCache(nil, 0), 10)
	h.answers = NewAnswerService(r.answer, r.content, r.user, NewGrader(), h.analytics, h.xp, h.progress, h.users, h.queue, h.settings)
	return h
}

// answer 以给定耗时提交一次作答
func (h *harness) answer(t *testing.T, userID uint, q model.Question, correct bool, elapsedMs int64) *model.AnswerEvent {
	t.Helper()
	payload := testutil.WrongAnswer(q)
	if correct {
		payload = testutil.RightAnswer(q)
	}
	ev, err := h.answers.RecordAnswer(context.Background(), RecordAnswerInput{
		UserID:     userID,
		QuestionID: q.ID,
		Payload:    payload,
		ElapsedMs:  elapsedMs,
	})
	require.NoError(t, err)
	return ev
}

// backdate 把作答事件挪到指定时间，用于按天统计的测试
func (h *harness) backdate(t *testing.T, ev *model.AnswerEvent, at time.Time) {
	t.Helper()
	require.NoError(t, h.db.Model(&model.AnswerEvent{}).Where("id = ?", ev.ID).Update("created_at", at.UTC()).Error)
}

// fixedClock 固定 Now，返回原函数以便恢复
func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
