package protocol

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
)

// Version is the JSON-RPC version string carried in every envelope.
const Version = "2.0"

// Request is an incoming JSON-RPC 2.0 request or notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse JSON-RPC request: %w", err)
	}
	return &req, nil
}

// IsNotification returns true if the request carries no id.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response is an outgoing JSON-RPC 2.0 response. Exactly one of Result and
// Error is set. A nil ID serializes as null.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

func NewResult(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: Version, ID: id, Result: result}
}

func NewErrorResponse(id json.RawMessage, err *Error) *Response {
	return &Response{JSONRPC: Version, ID: id, Error: err}
}

func (r *Response) Serialize() ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalParams decodes params into T. Empty params decode to the zero value.
func UnmarshalParams[T any](params json.RawMessage) (*T, *Error) {
	var out T
	if len(params) == 0 || string(params) == "null" {
		return &out, nil
	}
	if err := json.Unmarshal(params, &out); err != nil {
		return nil, InvalidParams(err.Error())
	}
	return &out, nil
}

// IntID encodes n as a JSON-RPC id.
func IntID(n int64) json.RawMessage {
	return json.RawMessage(fmt.Sprintf("%d", n))
}

// Counter hands out process-wide, monotonically increasing sequence numbers.
type Counter struct {
	n atomic.Uint64
}

// Next increments the counter and returns the new value.
func (c *Counter) Next() uint64 {
	return c.n.Add(1)
}

// Current returns the last value handed out.
func (c *Counter) Current() uint64 {
	return c.n.Load()
}
