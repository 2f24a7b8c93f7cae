package errs

import "fmt"

// CodeError is a small coded error used by HTTP handlers so clients
// get a stable machine-readable code next to the message.
type CodeError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e CodeError) Error() string {
	return fmt.Sprintf("code=%d msg=%s", e.Code, e.Msg)
}

func NewCodeError(code int, msg string) CodeError {
	return CodeError{Code: code, Msg: msg}
}

var (
	ErrNoToken      = NewCodeError(1001, "no token")
	ErrTokenInvalid = NewCodeError(1002, "token invalid")
	ErrNotFound     = NewCodeError(1404, "record not found")
	ErrInternal     = NewCodeError(1500, "internal server error")
	ErrBadRequest   = NewCodeError(1400, "bad request")
)
