package protocol

import "fmt"

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

func NewError(code int, message string, data any) *Error {
	return &Error{Code: code, Message: message, Data: data}
}

func ParseError(detail string) *Error {
	return NewError(CodeParseError, "Parse error: "+detail, nil)
}

func InvalidRequest(detail string) *Error {
	return NewError(CodeInvalidRequest, "Invalid request: "+detail, nil)
}

func MethodNotFound(method string) *Error {
	return NewError(CodeMethodNotFound, "Method not found: "+method, nil)
}

func InvalidParams(detail string) *Error {
	return NewError(CodeInvalidParams, "Invalid params: "+detail, nil)
}

// InternalError hides err behind a generic message; the cause goes into data.
func InternalError(err error) *Error {
	var data any
	if err != nil {
		data = map[string]string{"detail": err.Error()}
	}
	return NewError(CodeInternalError, "Internal error", data)
}
