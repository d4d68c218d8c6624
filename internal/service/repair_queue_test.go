package service

import (
	"context"
	"errors"
	"fmt"
	"logicfy_backend/internal/util"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedHandler 按调用次数返回预设错误，用完后返回 nil
type scriptedHandler struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (h *scriptedHandler) Handle(ctx context.Context, task RepairTask) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if h.calls <= len(h.errs) {
		return h.errs[h.calls-1]
	}
	return nil
}

func (h *scriptedHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func runQueue(t *testing.T, q *RepairQueue) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go q.Run(ctx)
	t.Cleanup(func() {
		cancel()
		q.Wait()
	})
}

func TestRepairQueue_RetriesTransientErrors(t *testing.T) {
	busy := util.Transient(errors.New("db busy"))
	h := &scriptedHandler{errs: []error{busy, busy}}
	q := NewRepairQueue(h, 4, 5, time.Millisecond)
	runQueue(t, q)

	require.True(t, q.Enqueue(RepairTask{Kind: RepairStreak, UserID: 1}))
	require.Eventually(t, func() bool { return h.count() == 3 }, 2*time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, h.count())
}

func TestRepairQueue_StopsAfterMaxAttempts(t *testing.T) {
	fail := util.Transient(errors.New("down"))
	h := &scriptedHandler{errs: []error{fail, fail, fail, fail, fail}}
	q := NewRepairQueue(h, 4, 3, time.Millisecond)
	runQueue(t, q)

	q.Enqueue(RepairTask{Kind: RepairUserTask, UserID: 1})
	require.Eventually(t, func() bool { return h.count() >= 3 }, 2*time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 3, h.count())
}

func TestRepairQueue_PermanentErrorsAreNotRetried(t *testing.T) {
	for _, err := range []error{
		fmt.Errorf("%w", util.ErrLessonNotFound),
		fmt.Errorf("%w: bad", util.ErrInvalidPayload),
	} {
		h := &scriptedHandler{errs: []error{err}}
		q := NewRepairQueue(h, 4, 5, time.Millisecond)
		runQueue(t, q)

		q.Enqueue(RepairTask{Kind: RepairLessonTask, LessonID: 1})
		// 等待第一次调用完成，再留出可能的重试时间
		require.Eventually(t, func() bool { return h.count() >= 1 }, 2*time.Second, time.Millisecond)
		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, 1, h.count(), "error %v", err)
	}
}

func TestRepairQueue_DropsWhenFull(t *testing.T) {
	q := NewRepairQueue(&scriptedHandler{}, 2, 1, time.Millisecond)

	assert.True(t, q.Enqueue(RepairTask{Kind: RepairStreak, UserID: 1}))
	assert.True(t, q.Enqueue(RepairTask{Kind: RepairStreak, UserID: 2}))
	assert.False(t, q.Enqueue(RepairTask{Kind: RepairStreak, UserID: 3}))
	assert.Equal(t, 2, q.Len())
}
