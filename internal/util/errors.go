package util

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 所有"不存在"类错误的根
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrLanguageNotFound   = fmt.Errorf("language %w", ErrNotFound)
	ErrUnitNotFound       = fmt.Errorf("unit %w", ErrNotFound)
	ErrSectionNotFound    = fmt.Errorf("section %w", ErrNotFound)
	ErrLessonNotFound     = fmt.Errorf("lesson %w", ErrNotFound)
	ErrQuestionNotFound   = fmt.Errorf("question %w", ErrNotFound)
	ErrProgressNotFound   = fmt.Errorf("progress %w", ErrNotFound)
	ErrAnalyticNotFound   = fmt.Errorf("analytic %w", ErrNotFound)
	ErrEnrollmentNotFound = fmt.Errorf("enrollment %w", ErrNotFound)

	// ErrConflict 唯一约束冲突类错误的根
	ErrConflict         = errors.New("conflict")
	ErrEnrollmentExists = fmt.Errorf("enrollment already exists: %w", ErrConflict)
	ErrHasChildren      = fmt.Errorf("node still has children: %w", ErrConflict)

	ErrInvalidAmount    = errors.New("xp amount must be positive")
	ErrInvalidPayload   = errors.New("invalid answer payload")
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTransientStore 存储层暂时性故障，可重试
	ErrTransientStore = errors.New("transient store error")
)

type transientError struct {
	err error
}

func (e *transientError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransientStore.Error(), e.err)
}

func (e *transientError) Unwrap() []error {
	return []error{ErrTransientStore, e.err}
}

// Transient 将存储错误标记为暂时性故障，nil 原样返回
func Transient(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTransientStore) {
		return err
	}
	return &transientError{err: err}
}

// IsInvalidInput 判断是否为调用方输入错误
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrInvalidPayload)
}
