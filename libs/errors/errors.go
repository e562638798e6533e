package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// 业务错误码
const (
	CodeOK         = 0
	CodeBadRequest = 1000
	CodeNetwork    = 1001
	CodeUpstream   = 1002
	CodeDecode     = 1003
	CodeNoChoices  = 1004
	CodeBusy       = 1006
	CodeInternal   = 1999
)

// StackError 带错误码的业务错误，cause 保留调用栈
type StackError struct {
	code  int
	msg   string
	cause error
}

func New(code int, msg string) *StackError {
	return &StackError{code: code, msg: msg, cause: pkgerrors.New(msg)}
}

func Wrap(code int, err error, msg string) *StackError {
	if err == nil {
		return nil
	}
	return &StackError{code: code, msg: msg, cause: pkgerrors.WithStack(err)}
}

func (e *StackError) Code() int {
	return e.code
}

func (e *StackError) Msg() string {
	return e.msg
}

func (e *StackError) Error() string {
	if e.cause == nil || e.cause.Error() == e.msg {
		return fmt.Sprintf("[%d] %s", e.code, e.msg)
	}
	return fmt.Sprintf("[%d] %s: %v", e.code, e.msg, e.cause)
}

func (e *StackError) Unwrap() error {
	return pkgerrors.Cause(e.cause)
}

// Format %+v 时输出调用栈
func (e *StackError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "[%d] %s\n%+v", e.code, e.msg, e.cause)
		return
	}
	fmt.Fprint(s, e.Error())
}
