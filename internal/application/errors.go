package application

import (
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindBadRequest    ErrorKind = "bad_request"
	KindConfiguration ErrorKind = "configuration"
	KindServer        ErrorKind = "server"
)

// Messages returned to callers. Internal detail never leaves the process.
const (
	MsgEmptyTranscript = "ไม่มีข้อความจากการพูด"
	MsgDelegateNotSet  = "ยังไม่ได้ตั้งค่า N8N_WEBHOOK_URL"
	MsgServerError     = "Server error"
)

// Error is a resolver failure with a public message and a private cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

func ConfigurationError(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// ServerError hides err behind the generic message.
func ServerError(err error) *Error {
	return &Error{Kind: KindServer, Message: MsgServerError, Err: err}
}
