package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 标识错误类别，决定对外暴露的 HTTP 状态码。
type Code string

const (
	CodeNotFound        Code = "not_found"
	CodeInvalidArgument Code = "invalid_argument"
	CodeConflict        Code = "conflict"
	CodeInternal        Code = "internal"
)

var defaultMessages = map[Code]string{
	CodeNotFound:        "resource not found",
	CodeInvalidArgument: "invalid argument",
	CodeConflict:        "resource already exists",
	CodeInternal:        "internal error",
}

// Error 携带错误类别、对外消息以及底层原因。
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = defaultMessages[e.Code]
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PublicMessage 返回可以直接展示给调用方的消息，不包含底层原因。
func (e *Error) PublicMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return defaultMessages[e.Code]
}

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap 用指定类别包装 err，err 为 nil 时返回 nil。
func Wrap(code Code, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func NotFound(format string, args ...any) *Error {
	return New(CodeNotFound, format, args...)
}

func InvalidArgument(format string, args ...any) *Error {
	return New(CodeInvalidArgument, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(CodeConflict, format, args...)
}

func Internal(err error, format string, args ...any) error {
	return Wrap(CodeInternal, err, format, args...)
}

// CodeOf 取出错误链上第一个 *Error 的类别，未分类的错误视为 internal。
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is 判断 err 是否属于指定类别。
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus 将错误类别映射为 HTTP 状态码。
func HTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message 返回对外消息；未分类错误不泄露细节。
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Code == CodeInternal {
			return defaultMessages[CodeInternal]
		}
		return appErr.PublicMessage()
	}
	return defaultMessages[CodeInternal]
}
