package server

// State tracks the handshake progress of the session. It is only ever
// touched from the serve loop goroutine, so no locking is needed.
type State int

const (
	// StateUninitialized is the state at process start; only initialize
	// is accepted.
	StateUninitialized State = iota
	// StateInitialized is reached on a successful initialize and is the
	// normal operating state.
	StateInitialized
	// StateShuttingDown is entered on a shutdown request or termination
	// signal and is irreversible. No further requests are accepted.
	StateShuttingDown
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}
