package tool

import (
	"encoding/json"
	"errors"
)

var (
	// ErrInvalidArgument is returned for arguments rejected before any store access.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownTool is returned when the requested tool is not registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrStoreQuery is returned when the backing store fails to answer.
	ErrStoreQuery = errors.New("store query error")
)

// Error codes carried in error payloads.
const (
	CodeInvalidArgument = "invalid_argument"
	CodeUnknownTool     = "unknown_tool"
	CodeStoreQuery      = "store_query_error"
	CodeToolError       = "tool_error"
)

// ErrorPayload is the structured body appended to history for a failed call.
type ErrorPayload struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorCode classifies err into one of the payload codes.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	case errors.Is(err, ErrUnknownTool):
		return CodeUnknownTool
	case errors.Is(err, ErrStoreQuery):
		return CodeStoreQuery
	default:
		return CodeToolError
	}
}

// NewErrorPayload renders err as the JSON error payload.
func NewErrorPayload(code, message string) string {
	b, err := json.Marshal(ErrorPayload{Error: ErrorDetail{Code: code, Message: message}})
	if err != nil {
		return `{"error":{"code":"tool_error","message":"unrenderable error"}}`
	}
	return string(b)
}
