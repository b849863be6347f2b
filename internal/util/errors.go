package util

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPathNotFound       = errors.New("learning path not found")
	ErrProgressNotFound   = errors.New("no progress found for this learning path")
	ErrAlreadyEnrolled    = errors.New("you have already started this learning path")
	ErrVersionConflict    = errors.New("progress was modified concurrently")
	ErrStorageUnavailable = errors.New("progress storage temporarily unavailable")
)

// IsTransient 判断存储层错误是否值得重试：超时、乐观锁冲突、数据库锁等待/死锁
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrVersionConflict) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"deadlock", "lock wait timeout", "database is locked", "database table is locked", "could not serialize", "connection reset", "bad connection"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// ErrorKind 把错误归类为日志/指标中使用的失败类型
func ErrorKind(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return KindValidation
	case errors.Is(err, ErrProgressNotFound), errors.Is(err, ErrPathNotFound), errors.Is(err, ErrUserNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyEnrolled), errors.Is(err, gorm.ErrDuplicatedKey):
		return KindConflict
	case errors.Is(err, ErrStorageUnavailable), IsTransient(err):
		return KindTransient
	default:
		return KindInternal
	}
}
