package service

import (
	"context"
	"errors"
	"logicfy_backend/internal/util"
	"logicfy_backend/pkg/logger"
	"logicfy_backend/pkg/monitoring"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// 修复任务类型
const (
	RepairQuestionAnalytic = "question_analytic"
	RepairXpGrant          = "xp_grant"
	RepairLessonProgress   = "lesson_progress"
	RepairStreak           = "streak"
	RepairUserTask         = "user"
	RepairLessonTask       = "lesson"
)

// RepairTask 一次需要补偿的派生数据更新
type RepairTask struct {
	Kind       string
	UserID     uint
	QuestionID uint
	LessonID   uint
	Source     string
	Amount     int
}

type RepairHandler interface {
	Handle(ctx context.Context, task RepairTask) error
}

// RepairQueue 有界队列 + 单个后台 worker，任务按指数退避重试
type RepairQueue struct {
	tasks          chan RepairTask
	handler        RepairHandler
	maxAttempts    int
	initialBackoff time.Duration
	wg             sync.WaitGroup
}

func NewRepairQueue(handler RepairHandler, size, maxAttempts int, initialBackoff time.Duration) *RepairQueue {
	if size <= 0 {
		size = 1024
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if initialBackoff <= 0 {
		initialBackoff = 200 * time.Millisecond
	}
	return &RepairQueue{
		tasks:          make(chan RepairTask, size),
		handler:        handler,
		maxAttempts:    maxAttempts,
		initialBackoff: initialBackoff,
	}
}

// Enqueue 从不阻塞，队列已满时丢弃并返回 false
func (q *RepairQueue) Enqueue(task RepairTask) bool {
	select {
	case q.tasks <- task:
		monitoring.RepairQueueDepth.Inc()
		return true
	default:
		monitoring.RepairTasks.WithLabelValues(task.Kind, "dropped").Inc()
		logger.Log.Error("Repair queue full, task dropped",
			zap.String("kind", task.Kind),
			zap.Uint("user_id", task.UserID),
			zap.Uint("lesson_id", task.LessonID),
			zap.Uint("question_id", task.QuestionID))
		return false
	}
}

// Len 当前排队的任务数
func (q *RepairQueue) Len() int {
	return len(q.tasks)
}

// Run 消费任务直到 ctx 结束
func (q *RepairQueue) Run(ctx context.Context) {
	q.wg.Add(1)
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-q.tasks:
			monitoring.RepairQueueDepth.Dec()
			q.process(ctx, task)
		}
	}
}

// Wait 等待 worker 退出
func (q *RepairQueue) Wait() {
	q.wg.Wait()
}

func (q *RepairQueue) process(ctx context.Context, task RepairTask) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = q.initialBackoff
	b.MaxElapsedTime = 0

	attempts := 0
	op := func() error {
		attempts++
		err := q.handler.Handle(ctx, task)
		if err != nil && (errors.Is(err, util.ErrNotFound) || util.IsInvalidInput(err)) {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(q.maxAttempts-1)), ctx))
	if err != nil {
		monitoring.RepairTasks.WithLabelValues(task.Kind, "failed").Inc()
		logger.Log.Error("Repair task failed",
			zap.String("kind", task.Kind),
			zap.Uint("user_id", task.UserID),
			zap.Uint("lesson_id", task.LessonID),
			zap.Uint("question_id", task.QuestionID),
			zap.Int("attempts", attempts),
			zap.Error(err))
		return
	}
	monitoring.RepairTasks.WithLabelValues(task.Kind, "succeeded").Inc()
}
