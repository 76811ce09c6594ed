package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("该邮箱已被注册")
	ErrModuleNotFound       = errors.New("module not found")
	ErrLessonNotFound       = errors.New("lesson not found")
	ErrProgressNotFound     = errors.New("progress not found")
	ErrCohortNotFound       = errors.New("cohort not found")
	ErrMemberNotFound       = errors.New("member not found in this cohort")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAssessmentNotFound   = errors.New("assessment not found")
	ErrPostNotFound         = errors.New("forum post not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)

// PolicyError 业务规则拒绝。与 NotFound 区分：资源存在但操作不被允许，
// 原因需要原样返回给调用方。
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string {
	return e.Reason
}

func Policy(reason string) error {
	return &PolicyError{Reason: reason}
}

func Policyf(format string, args ...interface{}) error {
	return &PolicyError{Reason: fmt.Sprintf(format, args...)}
}

func IsPolicyError(err error) bool {
	var pe *PolicyError
	return errors.As(err, &pe)
}

func IsNotFound(err error) bool {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrModuleNotFound),
		errors.Is(err, ErrLessonNotFound),
		errors.Is(err, ErrProgressNotFound),
		errors.Is(err, ErrCohortNotFound),
		errors.Is(err, ErrMemberNotFound),
		errors.Is(err, ErrAttemptNotFound),
		errors.Is(err, ErrAssessmentNotFound),
		errors.Is(err, ErrPostNotFound),
		errors.Is(err, ErrNotificationNotFound),
		errors.Is(err, ErrSessionNotFound):
		return true
	}
	return false
}
