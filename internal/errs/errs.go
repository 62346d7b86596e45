// Package errs 定义业务错误类型，保证对外返回的错误信息稳定且不泄露存储细节。
package errs

import (
	"errors"
	"fmt"
)

// Kind 错误类别
type Kind int

const (
	Internal Kind = iota
	NotFound
	InvalidInput
	InvalidTransition
	TerminalStateViolation
	Conflict
	Unauthorized
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case InvalidInput:
		return "invalid_input"
	case InvalidTransition:
		return "invalid_transition"
	case TerminalStateViolation:
		return "terminal_state_violation"
	case Conflict:
		return "conflict"
	case Unauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// defaultMessages 每种错误类别的默认提示语，前端直接 toast 展示
var defaultMessages = map[Kind]string{
	Internal:               "internal server error",
	NotFound:               "resource not found",
	InvalidInput:           "invalid input",
	InvalidTransition:      "invalid status transition",
	TerminalStateViolation: "record is in a terminal state and cannot be changed",
	Conflict:               "conflicting update, please retry",
	Unauthorized:           "not authorized, login again",
}

// Error 业务错误
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = defaultMessages[e.Kind]
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is 让 errors.Is(err, errs.ErrNotFound) 这类按类别的判断成立
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// 按类别匹配的哨兵错误
var (
	ErrNotFound               = &Error{Kind: NotFound}
	ErrInvalidInput           = &Error{Kind: InvalidInput}
	ErrInvalidTransition      = &Error{Kind: InvalidTransition}
	ErrTerminalStateViolation = &Error{Kind: TerminalStateViolation}
	ErrConflict               = &Error{Kind: Conflict}
	ErrUnauthorized           = &Error{Kind: Unauthorized}
)

// 具体业务错误
var (
	ErrInvalidQuantity = &Error{Kind: InvalidInput, Msg: "quantity must be a non-negative integer"}
	ErrEmptyReply      = &Error{Kind: InvalidInput, Msg: "reply message cannot be empty"}
	ErrStockLimit      = &Error{Kind: InvalidInput, Msg: "stock cannot exceed 1000000000"}
)

// New 创建指定类别的错误
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误，底层错误信息不会出现在 Message 中
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf 返回错误类别，非业务错误一律视为 Internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message 返回可以展示给调用方的错误信息
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return defaultMessages[Internal]
	}
	if e.Kind == Internal {
		return defaultMessages[Internal]
	}
	if e.Msg != "" {
		return e.Msg
	}
	return defaultMessages[e.Kind]
}
