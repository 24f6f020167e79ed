// Package tools bridges remote tool-call requests to local application
// behavior through a fixed name-to-handler table.
package tools

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
)

// Param describes one named string argument of a tool. Arguments bind by
// name, never by position.
type Param struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Declaration is the tool signature advertised to the remote session.
type Declaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params,omitempty"`
}

// Handler executes a tool call and returns a human-readable status string.
type Handler func(ctx context.Context, args map[string]string) (string, error)

const (
	unsupportedToolResult = "Tool not supported."
	toolErrorResult       = "Error executing tool."
)

type registration struct {
	decl    Declaration
	handler Handler
}

// Registry is the fixed mapping from tool names to local callbacks.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registration
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// Register installs a handler under its declared name. Later
// registrations with the same name replace earlier ones.
func (r *Registry) Register(decl Declaration, h Handler) {
	name := strings.TrimSpace(decl.Name)
	if name == "" || h == nil {
		return
	}
	decl.Name = name
	r.mu.Lock()
	r.entries[name] = registration{decl: decl, handler: h}
	r.mu.Unlock()
}

// Declarations returns the advertised tool signatures, sorted by name.
func (r *Registry) Declarations() []Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Declaration, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.decl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Dispatch invokes the handler registered under name. It always produces
// a response string: unknown tools get a fixed "not supported" result,
// and handler errors or panics are absorbed into an error result so the
// remote turn can continue.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]string) (result string) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return unsupportedToolResult
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("tools: %s panicked: %v", name, rec)
			result = toolErrorResult
		}
	}()

	out, err := e.handler(ctx, args)
	if err != nil {
		log.Printf("tools: %s failed: %v", name, err)
		return toolErrorResult
	}
	if strings.TrimSpace(out) == "" {
		return fmt.Sprintf("Executed tool: %s", name)
	}
	return out
}

// Outcome classifies a Dispatch result for metrics labeling.
func Outcome(result string) string {
	switch result {
	case unsupportedToolResult:
		return "unsupported"
	case toolErrorResult:
		return "error"
	default:
		return "ok"
	}
}
