package errors

import (
	"fmt"

	"github.com/friscolabs/frisco-mcp/pkg/protocol"
)

// ArgumentErrorData carries structured data for argument validation failures
type ArgumentErrorData struct {
	Tool     string `json:"tool"`
	Field    string `json:"field"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// ToolErrorData carries structured data for tool execution failures
type ToolErrorData struct {
	Tool   string `json:"tool"`
	Reason string `json:"reason,omitempty"`
}

// Protocol errors

// ParseFailure creates an error for a frame that was not valid JSON
func ParseFailure(err error) MCPError {
	return WrapError(err, protocol.ParseError, "parse error", CategoryProtocol, SeverityError)
}

// InvalidRequest creates an error for an envelope missing required fields
func InvalidRequest(detail string) MCPError {
	return NewErrorf(protocol.InvalidRequest, CategoryProtocol, SeverityError,
		"invalid request: %s", detail)
}

// MethodNotFound creates an error for an unknown method name
func MethodNotFound(method string) MCPError {
	return NewErrorf(protocol.MethodNotFound, CategoryProtocol, SeverityError,
		"method not found: %s", method).WithData(method)
}

// NotInitialized creates an error for a request received before the handshake
func NotInitialized(method string) MCPError {
	return NewErrorf(protocol.NotInitialized, CategoryProtocol, SeverityError,
		"server not initialized: %s rejected before initialize", method)
}

// ServerShuttingDown creates an error for a request received during shutdown
func ServerShuttingDown() MCPError {
	return NewError(protocol.ShuttingDown, "server is shutting down",
		CategoryProtocol, SeverityWarning)
}

// Tool errors

// UnknownTool creates an error for a tools/call naming an unregistered tool
func UnknownTool(name string) MCPError {
	return NewErrorf(protocol.UnknownTool, CategoryNotFound, SeverityError,
		"unknown tool: %s", name).WithData(name)
}

// MissingArgument creates an error for a required argument that was not supplied
func MissingArgument(tool, field string) MCPError {
	return NewErrorf(protocol.InvalidParams, CategoryValidation, SeverityError,
		"invalid arguments: missing required field %q", field).
		WithData(&ArgumentErrorData{Tool: tool, Field: field})
}

// WrongArgumentType creates an error for an argument of the wrong primitive type
func WrongArgumentType(tool, field, expected, actual string) MCPError {
	return NewErrorf(protocol.InvalidParams, CategoryValidation, SeverityError,
		"invalid arguments: field %q expected %s, got %s", field, expected, actual).
		WithData(&ArgumentErrorData{Tool: tool, Field: field, Expected: expected, Actual: actual})
}

// InvalidCallParams creates an error for malformed tools/call params
func InvalidCallParams(detail string) MCPError {
	return NewErrorf(protocol.InvalidParams, CategoryValidation, SeverityError,
		"invalid tool call params: %s", detail)
}

// ToolExecutionFailed wraps a handler-reported failure
func ToolExecutionFailed(tool string, err error) MCPError {
	return WrapError(err, protocol.ToolExecutionError,
		fmt.Sprintf("tool %s failed: %v", tool, err),
		CategoryTool, SeverityError).
		WithData(&ToolErrorData{Tool: tool, Reason: err.Error()})
}

// ToolExecutionTimeout marks a handler failure caused by its timeout bound
func ToolExecutionTimeout(tool string, err error) MCPError {
	return WrapError(err, protocol.ToolExecutionError,
		fmt.Sprintf("tool %s timed out: %v", tool, err),
		CategoryTimeout, SeverityError).
		WithData(&ToolErrorData{Tool: tool, Reason: err.Error()})
}

// ToolPanicked covers unexpected internal failures inside a handler.
// The recovered value is intentionally not echoed to the client.
func ToolPanicked(tool string) MCPError {
	return NewError(protocol.ToolExecutionError, "tool execution failed",
		CategoryInternal, SeverityCritical).
		WithData(&ToolErrorData{Tool: tool})
}

// Transport errors

// StdioTransportError creates an error for a fatal stream I/O failure
func StdioTransportError(operation string, err error) MCPError {
	return WrapError(err, protocol.InternalError,
		fmt.Sprintf("stdio transport %s failed", operation),
		CategoryTransport, SeverityCritical)
}
