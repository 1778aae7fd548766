package manifest

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/steviee/mccmd/internal/command"
)

var (
	// ErrHandlerExists is returned when a handler name is registered twice.
	ErrHandlerExists = errors.New("handler already registered")

	// ErrUnknownHandler is returned when a manifest entry names a handler
	// nobody registered.
	ErrUnknownHandler = errors.New("unknown handler")

	// ErrUnknownSenderKind is returned for an unsupported executable_by value.
	ErrUnknownSenderKind = errors.New("unknown sender kind")
)

// Handler runs a manifest command.
type Handler func(sender command.Sender, args []string) error

// HandlerRegistry maps handler names used in manifests to Go functions.
// Plugins fill it at startup.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewHandlerRegistry creates an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]Handler)}
}

// Register adds h under name.
func (r *HandlerRegistry) Register(name string, h Handler) error {
	if name == "" {
		return fmt.Errorf("handler name cannot be empty")
	}
	if h == nil {
		return fmt.Errorf("handler %q cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("%w: %s", ErrHandlerExists, name)
	}
	r.handlers[name] = h
	return nil
}

// MustRegister is like Register but panics on error.
func (r *HandlerRegistry) MustRegister(name string, h Handler) {
	if err := r.Register(name, h); err != nil {
		panic(err)
	}
}

// Lookup returns the handler registered under name.
func (r *HandlerRegistry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered handler names, sorted.
func (r *HandlerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
