package domain

import (
	"fmt"
	"strings"
	"time"
)

// ErrorKind 核心错误分类
type ErrorKind string

const (
	ErrKindValidation      ErrorKind = "validation"
	ErrKindStateTransition ErrorKind = "state_transition"
	ErrKindAPI             ErrorKind = "api"
	ErrKindForm            ErrorKind = "form"
)

// Severity 错误级别
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// CoreError 结构化错误的公共接口（调用方按错误类别分支处理，不依赖字符串匹配）
type CoreError interface {
	error
	ErrKind() ErrorKind
	ErrSeverity() Severity
	Details() map[string]any
	OccurredAt() time.Time
}

// ValidationError 字段级校验失败（提交前的必填/格式检查）
type ValidationError struct {
	Field      string
	StatusKind Status
	Message    string
	Timestamp  time.Time
}

// NewValidationError 创建字段校验错误
func NewValidationError(field string, statusKind Status, message string) *ValidationError {
	return &ValidationError{
		Field:      field,
		StatusKind: statusKind,
		Message:    message,
		Timestamp:  time.Now(),
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: field %q (status %s): %s", e.Field, e.StatusKind, e.Message)
}

func (e *ValidationError) ErrKind() ErrorKind { return ErrKindValidation }
func (e *ValidationError) ErrSeverity() Severity { return SeverityError }
func (e *ValidationError) OccurredAt() time.Time { return e.Timestamp }
func (e *ValidationError) Details() map[string]any {
	return map[string]any{
		"field":       e.Field,
		"status_kind": string(e.StatusKind),
	}
}

// StateTransitionError 非法的状态转移
// 携带完整上下文（当前状态/目标状态/模式/条目 ID）便于诊断，
// 永远不会以裸字符串抛出。
type StateTransitionError struct {
	ItemID    string
	Current   Status
	Target    Status
	Mode      DialogMode
	Reason    string
	Timestamp time.Time
}

// NewStateTransitionError 创建状态转移错误
func NewStateTransitionError(itemID string, current, target Status, mode DialogMode, reason string) *StateTransitionError {
	return &StateTransitionError{
		ItemID:    itemID,
		Current:   current,
		Target:    target,
		Mode:      mode,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s (item %s, mode %s): %s",
		e.Current, e.Target, e.ItemID, e.Mode, e.Reason)
}

func (e *StateTransitionError) ErrKind() ErrorKind { return ErrKindStateTransition }
func (e *StateTransitionError) ErrSeverity() Severity { return SeverityError }
func (e *StateTransitionError) OccurredAt() time.Time { return e.Timestamp }
func (e *StateTransitionError) Details() map[string]any {
	return map[string]any{
		"item_id": e.ItemID,
		"current": string(e.Current),
		"target":  string(e.Target),
		"mode":    string(e.Mode),
	}
}

// ApiError 远端持久化调用失败（网络/服务端）
// 乐观更新已经发生后才会出现该错误：只做瞬时通知，不回滚本地存储。
type ApiError struct {
	Op         string // 如 "create-status"
	StatusCode int    // HTTP 状态码，传输层失败时为 0
	Message    string
	Err        error
	Timestamp  time.Time
}

// NewApiError 创建远端调用错误
func NewApiError(op string, statusCode int, message string, err error) *ApiError {
	return &ApiError{
		Op:         op,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
		Timestamp:  time.Now(),
	}
}

func (e *ApiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote call %s failed: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("remote call %s failed: %s", e.Op, e.Message)
}

func (e *ApiError) Unwrap() error { return e.Err }
func (e *ApiError) ErrKind() ErrorKind { return ErrKindAPI }
func (e *ApiError) ErrSeverity() Severity { return SeverityWarning }
func (e *ApiError) OccurredAt() time.Time { return e.Timestamp }
func (e *ApiError) Details() map[string]any {
	return map[string]any{
		"op":          e.Op,
		"status_code": e.StatusCode,
	}
}

// FormError 面向用户展示的聚合错误（由上述错误映射而来）
type FormError struct {
	Message   string
	Errors    []error
	Timestamp time.Time
}

// NewFormError 聚合一个或多个底层错误
func NewFormError(message string, errs ...error) *FormError {
	return &FormError{
		Message:   message,
		Errors:    errs,
		Timestamp: time.Now(),
	}
}

func (e *FormError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}

func (e *FormError) Unwrap() []error { return e.Errors }
func (e *FormError) ErrKind() ErrorKind { return ErrKindForm }
func (e *FormError) ErrSeverity() Severity { return SeverityError }
func (e *FormError) OccurredAt() time.Time { return e.Timestamp }
func (e *FormError) Details() map[string]any {
	return map[string]any{"error_count": len(e.Errors)}
}
