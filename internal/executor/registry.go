package executor

import (
	"context"
	"fmt"
	"sync"
)

// ErrUnknownCommand is returned by Execute when the command name has no
// registered handler. Unknown names are a dispatch-level error, never fatal.
var ErrUnknownCommand = fmt.Errorf("unknown command")

// Handler performs one OS-level or application-level effect and returns a
// short human-readable result string. Handlers are stateless between calls
// except where an implementation explicitly probes external services.
type Handler interface {
	Execute(ctx context.Context, params map[string]any) (string, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, params map[string]any) (string, error)

func (f HandlerFunc) Execute(ctx context.Context, params map[string]any) (string, error) {
	return f(ctx, params)
}

// Class partitions executors by their concurrency constraints. Automation
// executors drive the real pointer and keyboard, which is a single global
// resource, so they must never interleave.
type Class int

const (
	// ClassPlain executors (process launches, metric reads) may run fully
	// concurrently.
	ClassPlain Class = iota
	// ClassAutomation executors are serialized behind a single mutex.
	ClassAutomation
)

type entry struct {
	handler Handler
	class   Class
}

// Registry is a closed mapping from command name to handler, built once at
// startup and read-only afterwards.
type Registry struct {
	entries map[string]entry
	inputMu sync.Mutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a handler under the given command name. Later registrations
// for the same name replace earlier ones; registration happens only during
// startup wiring.
func (r *Registry) Register(name string, class Class, h Handler) {
	r.entries[name] = entry{handler: h, class: class}
}

// RegisterFunc registers a plain function handler.
func (r *Registry) RegisterFunc(name string, class Class, fn HandlerFunc) {
	r.Register(name, class, fn)
}

// Has reports whether a command name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Names returns the registered command names, for diagnostics.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	return out
}

// Execute dispatches a command by name. Unknown names return
// ErrUnknownCommand. Automation-class executors are serialized so one
// simulated input sequence completes before the next begins. Handler panics
// are recovered and converted to errors so a broken executor can never take
// the bridge down.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) (result string, err error) {
	ent, ok := r.entries[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	if ent.class == ClassAutomation {
		r.inputMu.Lock()
		defer r.inputMu.Unlock()
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("executor %s panicked: %v", name, rec)
		}
	}()

	return ent.handler.Execute(ctx, params)
}

// StringParam extracts a string parameter, tolerating a missing key.
func StringParam(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

// IntParam extracts an integer parameter. JSON numbers decode as float64.
func IntParam(params map[string]any, key string, fallback int) int {
	if params == nil {
		return fallback
	}
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}
