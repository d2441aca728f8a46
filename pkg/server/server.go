// Package server wires the protocol engine together: the dispatcher, the
// handshake state machine, the invocation executor and the shutdown
// controller around a strictly sequential read-dispatch-respond loop.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	mcperrors "github.com/friscolabs/frisco-mcp/pkg/errors"
	"github.com/friscolabs/frisco-mcp/pkg/logging"
	"github.com/friscolabs/frisco-mcp/pkg/observability"
	"github.com/friscolabs/frisco-mcp/pkg/protocol"
	"github.com/friscolabs/frisco-mcp/pkg/tools"
	"github.com/friscolabs/frisco-mcp/pkg/transport"
)

const (
	defaultServerName    = "frisco-weather-server"
	defaultServerVersion = "1.0.0"
)

// Process exit codes
const (
	// ExitOK means orderly shutdown: explicit request, signal while
	// idle, or input stream closed.
	ExitOK = 0
	// ExitFatal means an unrecoverable stream I/O failure
	ExitFatal = 1
	// ExitForced means the shutdown grace period elapsed with a tool
	// call still in flight.
	ExitForced = 2
)

// Server is the protocol engine for one stdio session
type Server struct {
	transport *transport.StdioTransport
	registry  *tools.Registry
	logger    logging.Logger
	metrics   observability.MetricsProvider
	tracing   *observability.TracingProvider

	name    string
	version string
	grace   time.Duration

	// state and initResult are only touched from the serve loop's
	// thread of control
	state      State
	initResult *protocol.InitializeResult
}

// Option configures a Server
type Option func(*Server)

// WithTransport sets the framing transport (stdio by default)
func WithTransport(t *transport.StdioTransport) Option {
	return func(s *Server) { s.transport = t }
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics sets the metrics provider
func WithMetrics(m observability.MetricsProvider) Option {
	return func(s *Server) { s.metrics = m }
}

// WithTracing sets the tracing provider
func WithTracing(t *observability.TracingProvider) Option {
	return func(s *Server) { s.tracing = t }
}

// WithShutdownGrace sets the in-flight grace period
func WithShutdownGrace(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.grace = d
		}
	}
}

// WithServerInfo sets the identity returned by initialize
func WithServerInfo(name, version string) Option {
	return func(s *Server) {
		s.name = name
		s.version = version
	}
}

// New creates a server around a tool registry
func New(registry *tools.Registry, options ...Option) *Server {
	s := &Server{
		transport: transport.NewStdioTransport(nil, nil),
		registry:  registry,
		logger:    logging.New(nil, logging.NewTextFormatter()),
		name:      defaultServerName,
		version:   defaultServerVersion,
		grace:     DefaultShutdownGrace,
		state:     StateUninitialized,
	}
	for _, option := range options {
		option(s)
	}
	s.logger = s.logger.WithFields(logging.String("session_id", uuid.New().String()))
	return s
}

// State returns the current handshake state. Only meaningful from the
// serve loop's thread of control; exposed for tests.
func (s *Server) State() State {
	return s.state
}

type frameOutcome struct {
	stop bool
	err  error
}

// Run drives the session until shutdown and returns the process exit
// code. One frame is fully processed, and its response emitted, before
// the next frame is taken; a termination signal is only acted on at
// frame boundaries, or by the grace timer when a call is in flight.
func (s *Server) Run(ctx context.Context) int {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if s.metrics != nil {
		if err := s.metrics.Start(runCtx); err != nil {
			s.logger.Warn("metrics listener failed to start", logging.ErrorField(err))
		}
	}
	defer s.shutdownObservability()

	transportErr := make(chan error, 1)
	go func() { transportErr <- s.transport.Start(runCtx) }()

	s.logger.Info("server started",
		logging.String("name", s.name),
		logging.String("version", s.version),
		logging.Int("tools", s.registry.Len()))

	for {
		select {
		case frame, ok := <-s.transport.Frames():
			if !ok {
				// Start returns promptly once the frames channel closes;
				// distinguish a plain EOF from a scanner I/O failure.
				var readErr error
				if transportErr != nil {
					readErr = <-transportErr
				}
				_ = s.transport.Stop()
				if readErr != nil && runCtx.Err() == nil {
					s.logger.Error("input stream failed", logging.ErrorField(readErr))
					return ExitFatal
				}
				s.logger.Info("input stream closed, exiting")
				return ExitOK
			}

			outcome := make(chan frameOutcome, 1)
			go func() {
				stop, err := s.handleFrame(runCtx, frame)
				outcome <- frameOutcome{stop: stop, err: err}
			}()

			select {
			case out := <-outcome:
				if out.err != nil {
					s.logger.Error("write failed, terminating", logging.ErrorField(out.err))
					_ = s.transport.Stop()
					return ExitFatal
				}
				if out.stop {
					_ = s.transport.Stop()
					return ExitOK
				}

			case <-sigCh:
				s.logger.Info("termination signal with call in flight",
					logging.Duration("grace", s.grace))
				timer := time.NewTimer(s.grace)
				select {
				case out := <-outcome:
					timer.Stop()
					s.state = StateShuttingDown
					_ = s.transport.Stop()
					if out.err != nil {
						return ExitFatal
					}
					s.logger.Info("in-flight call finished, exiting")
					return ExitOK
				case <-timer.C:
					s.logger.Error("grace period elapsed, abandoning in-flight call")
					_ = s.transport.Stop()
					return ExitForced
				}
			}

		case <-sigCh:
			s.state = StateShuttingDown
			s.logger.Info("termination signal received while idle, exiting")
			_ = s.transport.Stop()
			return ExitOK

		case err := <-transportErr:
			if err != nil && runCtx.Err() == nil {
				s.logger.Error("transport failed", logging.ErrorField(err))
				_ = s.transport.Stop()
				return ExitFatal
			}
			// Reader finished quietly; the frames channel close is
			// observed above. Selecting on a nil channel blocks, which
			// is exactly what we want from here on.
			transportErr = nil
		}
	}
}

// handleFrame processes one raw frame end to end. The returned error is
// fatal (a failed write); protocol and tool failures have already been
// converted into error responses by this point.
func (s *Server) handleFrame(ctx context.Context, frame []byte) (bool, error) {
	var msg protocol.Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		// Valid JSON with a wrongly typed envelope field is an invalid
		// request, not a parse error: the decoder fills the remaining
		// fields, so the id is still recoverable for correlation.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if msg.IsNotification() {
				s.logger.Warn("dropping invalid notification frame", logging.ErrorField(err))
				return false, nil
			}
			invalid := mcperrors.InvalidRequest(err.Error())
			return false, s.send(mcperrors.ToJSONRPCResponse(invalid, msg.ID))
		}
		s.logger.Warn("received unparseable frame", logging.ErrorField(err))
		// Parse errors cannot be correlated; the id is null.
		return false, s.send(mcperrors.ToJSONRPCResponse(mcperrors.ParseFailure(err), nil))
	}

	if msg.JSONRPC != protocol.JSONRPCVersion || msg.Method == "" {
		if msg.IsNotification() {
			s.logger.Warn("dropping invalid notification frame")
			return false, nil
		}
		err := mcperrors.InvalidRequest("missing jsonrpc version or method")
		return false, s.send(mcperrors.ToJSONRPCResponse(err, msg.ID))
	}

	if msg.IsNotification() {
		s.handleNotification(&msg)
		return false, nil
	}

	resp, stop := s.dispatchRequest(ctx, &msg)
	return stop, s.send(resp)
}

// handleNotification never produces a response, whatever the method
func (s *Server) handleNotification(msg *protocol.Message) {
	switch msg.Method {
	case protocol.NotificationInitialized:
		s.logger.Debug("client reported initialized")
	default:
		s.logger.Debug("ignoring notification", logging.String("method", msg.Method))
	}
}

// dispatchRequest routes one request and always yields a response
// bearing the request's id, echoed verbatim.
func (s *Server) dispatchRequest(ctx context.Context, msg *protocol.Message) (*protocol.Response, bool) {
	start := time.Now()

	if s.tracing != nil {
		var span trace.Span
		ctx, span = s.tracing.StartMethodSpan(ctx, msg.Method)
		defer span.End()
	}

	result, stop, err := s.routeRequest(ctx, msg)

	status := "success"
	if err != nil {
		status = "error"
		if s.tracing != nil {
			s.tracing.RecordError(ctx, err)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordRequest(msg.Method, status, time.Since(start))
		if mcpErr, ok := mcperrors.AsMCPError(err); ok {
			s.metrics.RecordError(strconv.Itoa(int(mcpErr.Code())))
		}
	}

	if err != nil {
		s.logger.Warn("request failed",
			logging.String("method", msg.Method),
			logging.ErrorField(err))
		return mcperrors.ToJSONRPCResponse(err, msg.ID), stop
	}

	resp, marshalErr := protocol.NewResponse(msg.ID, result)
	if marshalErr != nil {
		internal := mcperrors.WrapError(marshalErr, protocol.InternalError,
			"failed to encode result", mcperrors.CategoryInternal, mcperrors.SeverityError)
		return mcperrors.ToJSONRPCResponse(internal, msg.ID), stop
	}

	s.logger.Debug("request handled",
		logging.String("method", msg.Method),
		logging.Duration("duration", time.Since(start)))
	return resp, stop
}

// routeRequest consults the state machine, then the fixed method table
func (s *Server) routeRequest(ctx context.Context, msg *protocol.Message) (interface{}, bool, error) {
	switch s.state {
	case StateShuttingDown:
		return nil, false, mcperrors.ServerShuttingDown()
	case StateUninitialized:
		if msg.Method != protocol.MethodInitialize {
			return nil, false, mcperrors.NotInitialized(msg.Method)
		}
	}

	switch msg.Method {
	case protocol.MethodInitialize:
		return s.handleInitialize(msg.Params), false, nil
	case protocol.MethodListTools:
		return &protocol.ListToolsResult{Tools: s.registry.List()}, false, nil
	case protocol.MethodCallTool:
		result, err := s.executeToolCall(ctx, msg.Params)
		return result, false, err
	case protocol.MethodShutdown:
		s.state = StateShuttingDown
		s.logger.Info("shutdown requested by client")
		return &protocol.ShutdownResult{}, true, nil
	default:
		return nil, false, mcperrors.MethodNotFound(msg.Method)
	}
}

// handleInitialize performs the handshake. A duplicate initialize is
// accepted idempotently and re-returns the identical metadata.
func (s *Server) handleInitialize(params json.RawMessage) *protocol.InitializeResult {
	var p protocol.InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			s.logger.Warn("unparseable initialize params", logging.ErrorField(err))
		}
	}

	if s.state == StateInitialized {
		s.logger.Debug("duplicate initialize accepted")
		return s.initResult
	}

	s.state = StateInitialized
	s.initResult = &protocol.InitializeResult{
		ProtocolVersion: protocol.ProtocolVersion,
		Capabilities: protocol.ServerCapabilities{
			Tools: &protocol.ToolsCapability{},
		},
		ServerInfo: protocol.ServerInfo{Name: s.name, Version: s.version},
	}

	fields := []logging.Field{logging.String("protocol", protocol.ProtocolVersion)}
	if p.ClientInfo != nil {
		fields = append(fields,
			logging.String("client", p.ClientInfo.Name),
			logging.String("client_version", p.ClientInfo.Version))
	}
	s.logger.Info("session initialized", fields...)
	return s.initResult
}

// send serializes and writes one response frame
func (s *Server) send(resp *protocol.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return mcperrors.WrapError(err, protocol.InternalError,
			"failed to marshal response", mcperrors.CategoryInternal, mcperrors.SeverityCritical)
	}
	return s.transport.Send(data)
}

func (s *Server) shutdownObservability() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if s.metrics != nil {
		if err := s.metrics.Shutdown(ctx); err != nil {
			s.logger.Warn("metrics shutdown failed", logging.ErrorField(err))
		}
	}
	if s.tracing != nil {
		if err := s.tracing.Shutdown(ctx); err != nil {
			s.logger.Warn("tracing shutdown failed", logging.ErrorField(err))
		}
	}
}
