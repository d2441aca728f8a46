package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	mcperrors "github.com/friscolabs/frisco-mcp/pkg/errors"
	"github.com/friscolabs/frisco-mcp/pkg/logging"
	"github.com/friscolabs/frisco-mcp/pkg/protocol"
	"github.com/friscolabs/frisco-mcp/pkg/tools"
)

// executeToolCall runs the tools/call pipeline: params decode, registry
// lookup, argument validation, then the handler itself.
func (s *Server) executeToolCall(ctx context.Context, params json.RawMessage) (*protocol.CallToolResult, error) {
	if len(params) == 0 {
		return nil, mcperrors.InvalidCallParams("params are required")
	}
	var p protocol.CallToolParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, mcperrors.InvalidCallParams(err.Error())
	}
	if p.Name == "" {
		return nil, mcperrors.InvalidCallParams("tool name is required")
	}

	reg, ok := s.registry.Lookup(p.Name)
	if !ok {
		return nil, mcperrors.UnknownTool(p.Name)
	}

	args, err := tools.ValidateArguments(p.Name, reg.Tool.InputSchema, p.Arguments)
	if err != nil {
		return nil, err
	}

	if s.tracing != nil {
		toolCtx, span := s.tracing.StartToolSpan(ctx, p.Name)
		defer span.End()
		ctx = toolCtx
	}

	start := time.Now()
	text, err := s.invokeHandler(ctx, p.Name, reg.Handler, args)
	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
	}
	if s.metrics != nil {
		s.metrics.RecordToolCall(p.Name, status, duration)
	}

	if err != nil {
		if s.tracing != nil {
			s.tracing.RecordError(ctx, err)
		}
		s.logger.Warn("tool call failed",
			logging.String("tool", p.Name),
			logging.Duration("duration", duration),
			logging.ErrorField(err))
		return nil, err
	}

	s.logger.Debug("tool call succeeded",
		logging.String("tool", p.Name),
		logging.Duration("duration", duration))
	return &protocol.CallToolResult{
		Content: []protocol.TextContent{protocol.NewTextContent(text)},
	}, nil
}

// invokeHandler runs one handler with panic containment. A panic is
// answered like any other execution failure and must never take down
// the serve loop.
func (s *Server) invokeHandler(ctx context.Context, name string, handler tools.Handler, args map[string]interface{}) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tool handler panicked",
				logging.String("tool", name),
				logging.Any("panic", r))
			err = mcperrors.ToolPanicked(name)
		}
	}()

	text, err = handler(ctx, args)
	if err != nil {
		if isTimeout(err) {
			return "", mcperrors.ToolExecutionTimeout(name, err)
		}
		return "", mcperrors.ToolExecutionFailed(name, err)
	}
	return text, nil
}

// isTimeout reports whether a handler failure was a deadline expiry
// rather than an ordinary error.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
