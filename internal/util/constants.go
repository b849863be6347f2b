package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// 失败类型，用于日志和指标标签
const (
	KindNotFound   = "not_found"
	KindConflict   = "conflict"
	KindValidation = "validation"
	KindTransient  = "transient"
	KindInternal   = "internal"
)

const ContextUserKey = "user"
