package util

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError 单个字段的校验失败
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 请求在任何修改之前被拒绝，携带字段级别的错误信息
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// NewValidator 与 gin binding 使用相同的 tag 名和字段命名
func NewValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(JSONFieldName)
	return v
}

// UseJSONFieldNames 让 gin 绑定校验报告 json 字段名
func UseJSONFieldNames() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(JSONFieldName)
	}
}

// JSONFieldName 校验错误中使用 json 字段名而不是 Go 字段名
func JSONFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// AsValidationError 把 validator / 绑定错误转换为 ValidationError，无法转换时返回 nil
func AsValidationError(err error) *ValidationError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return nil
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(ves))}
	for _, fe := range ves {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
