// Package tools holds the tool registry and the concrete tool handlers.
// The registry is built once at startup and immutable afterwards;
// registration order is the canonical listing order.
package tools

import (
	"context"
	"fmt"

	"github.com/friscolabs/frisco-mcp/pkg/protocol"
	"github.com/friscolabs/frisco-mcp/pkg/weather"
)

// Handler is the capability behind one tool: arguments in, formatted text
// out, or a failure for the executor to classify. Arguments arrive already
// validated against the tool's input schema.
type Handler func(ctx context.Context, args map[string]interface{}) (string, error)

// Registration pairs a published descriptor with its handler
type Registration struct {
	Tool    protocol.Tool
	Handler Handler
}

// Registry is a fixed, ordered catalogue of tools
type Registry struct {
	order   []string
	entries map[string]Registration
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Registration),
	}
}

// Register adds a tool. Names must be unique within the registry.
func (r *Registry) Register(tool protocol.Tool, handler Handler) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if handler == nil {
		return fmt.Errorf("tool %q has no handler", tool.Name)
	}
	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("tool %q already registered", tool.Name)
	}
	r.order = append(r.order, tool.Name)
	r.entries[tool.Name] = Registration{Tool: tool, Handler: handler}
	return nil
}

// List returns the descriptors in registration order. The result is a
// fresh slice; the descriptors themselves are never mutated, so repeated
// calls within a session are byte-identical once serialized.
func (r *Registry) List() []protocol.Tool {
	out := make([]protocol.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].Tool)
	}
	return out
}

// Lookup returns the registration for an exact name match
func (r *Registry) Lookup(name string) (Registration, bool) {
	reg, ok := r.entries[name]
	return reg, ok
}

// Len returns the number of registered tools
func (r *Registry) Len() int {
	return len(r.order)
}

// DefaultRegistry builds the server's fixed catalogue: echo, reverse,
// wordcount, weather, in that order.
func DefaultRegistry(weatherClient *weather.Client) *Registry {
	r := NewRegistry()
	// Registration cannot fail here: names are distinct literals.
	_ = r.Register(echoTool())
	_ = r.Register(reverseTool())
	_ = r.Register(wordcountTool())
	_ = r.Register(weatherTool(weatherClient))
	return r
}
