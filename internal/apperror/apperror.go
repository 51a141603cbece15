package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 业务错误分类，每一类对应一个HTTP状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error 是各层之间传递的带类型错误，Message可以直接展示给用户，Err只用于日志
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status 把错误分类映射成HTTP状态码
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal 包装存储层、对象存储等底层错误，对外统一只显示通用提示
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: InternalMessage, Err: err}
}

const InternalMessage = "服务器内部错误"

// As 取出err链上的*Error；不是业务错误的一律当成Internal
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind 判断err是不是某一类业务错误
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
