// Package errors provides structured error handling for the server.
// It defines error types that map to JSON-RPC error codes and carry a
// category so the serve loop can tell protocol faults, tool faults and
// fatal stream faults apart.
package errors

import (
	"fmt"

	"github.com/friscolabs/frisco-mcp/pkg/protocol"
)

// Category represents the type/category of an error for classification and handling
type Category string

const (
	CategoryProtocol   Category = "protocol"
	CategoryValidation Category = "validation"
	CategoryNotFound   Category = "not_found"
	CategoryTool       Category = "tool"
	CategoryTimeout    Category = "timeout"
	CategoryTransport  Category = "transport"
	CategoryInternal   Category = "internal"
)

// Severity indicates how critical an error is
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// MCPError is the interface implemented by all server errors that can be
// answered over the wire as a JSON-RPC error object.
type MCPError interface {
	error

	// Code returns the JSON-RPC error code
	Code() protocol.ErrorCode

	// Message returns a human-readable error message
	Message() string

	// Data returns structured error data for programmatic handling
	Data() interface{}

	// Category returns the error category for classification
	Category() Category

	// Severity returns the error severity level
	Severity() Severity

	// WithData returns a copy of the error with structured data attached
	WithData(data interface{}) MCPError

	// Unwrap returns the underlying error for error chain traversal
	Unwrap() error
}

type baseError struct {
	code     protocol.ErrorCode
	message  string
	data     interface{}
	category Category
	severity Severity
	cause    error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Code() protocol.ErrorCode { return e.code }
func (e *baseError) Message() string          { return e.message }
func (e *baseError) Data() interface{}        { return e.data }
func (e *baseError) Category() Category       { return e.category }
func (e *baseError) Severity() Severity       { return e.severity }
func (e *baseError) Unwrap() error            { return e.cause }

func (e *baseError) WithData(data interface{}) MCPError {
	newErr := *e
	newErr.data = data
	return &newErr
}

// NewError creates a new MCPError with the specified parameters
func NewError(code protocol.ErrorCode, message string, category Category, severity Severity) MCPError {
	return &baseError{
		code:     code,
		message:  message,
		category: category,
		severity: severity,
	}
}

// NewErrorf creates a new MCPError with a formatted message
func NewErrorf(code protocol.ErrorCode, category Category, severity Severity, format string, args ...interface{}) MCPError {
	return &baseError{
		code:     code,
		message:  fmt.Sprintf(format, args...),
		category: category,
		severity: severity,
	}
}

// WrapError wraps an existing error as an MCPError
func WrapError(err error, code protocol.ErrorCode, message string, category Category, severity Severity) MCPError {
	return &baseError{
		code:     code,
		message:  message,
		category: category,
		severity: severity,
		cause:    err,
	}
}

// AsMCPError extracts an MCPError from any error
func AsMCPError(err error) (MCPError, bool) {
	if err == nil {
		return nil, false
	}
	if mcpErr, ok := err.(MCPError); ok {
		return mcpErr, true
	}
	return nil, false
}

// IsCategory checks if an error is of a specific category
func IsCategory(err error, category Category) bool {
	if mcpErr, ok := AsMCPError(err); ok {
		return mcpErr.Category() == category
	}
	return false
}

// IsCode checks if an error carries a specific JSON-RPC code
func IsCode(err error, code protocol.ErrorCode) bool {
	if mcpErr, ok := AsMCPError(err); ok {
		return mcpErr.Code() == code
	}
	return false
}

// ToJSONRPCError converts any error to a JSON-RPC error object.
// Non-MCP errors become internal errors.
func ToJSONRPCError(err error) *protocol.Error {
	if err == nil {
		return nil
	}
	if mcpErr, ok := AsMCPError(err); ok {
		return &protocol.Error{
			Code:    mcpErr.Code(),
			Message: mcpErr.Message(),
			Data:    mcpErr.Data(),
		}
	}
	return &protocol.Error{
		Code:    protocol.InternalError,
		Message: err.Error(),
	}
}

// ToJSONRPCResponse converts any error to a JSON-RPC error response
// carrying the originating request's id.
func ToJSONRPCResponse(err error, requestID interface{}) *protocol.Response {
	rpcErr := ToJSONRPCError(err)
	if rpcErr == nil {
		rpcErr = &protocol.Error{Code: protocol.InternalError, Message: "unknown error"}
	}
	return &protocol.Response{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      requestID,
		Error:   rpcErr,
	}
}
