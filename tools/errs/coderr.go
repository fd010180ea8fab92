package errs

import "fmt"

// CodeError is the uniform error shape returned by the HTTP surface.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("[%d] %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("[%d] %s: %s", e.Code, e.Msg, e.Detail)
}

// WithDetail returns a copy carrying extra context; the receiver is untouched
// so the sentinel values below stay immutable.
func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

// Gateway error taxonomy. Connection-fatal errors terminate the session;
// per-command errors are reported inline and never do.
var (
	ErrAuthRejected       = NewCodeError(1001, "authentication rejected")
	ErrTokenRevoked       = NewCodeError(1002, "token revoked")
	ErrUnknownBackend     = NewCodeError(1101, "unknown backend")
	ErrBackendUnreachable = NewCodeError(1102, "backend unreachable")
	ErrMalformedCommand   = NewCodeError(1201, "malformed command")
	ErrCallFailure        = NewCodeError(1301, "backend call failed")
	ErrPersistence        = NewCodeError(1401, "history write failed")
)
