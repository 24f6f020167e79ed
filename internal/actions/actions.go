// Package actions provides the fixed set of application tools the voice
// assistant can invoke. Each action returns a human-readable status
// string relayed back to the remote model, and notifies an observer hook
// so the surrounding UI layer can react.
package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/guychenya/giton/internal/tools"
)

// Event describes one executed action for UI observers.
type Event struct {
	Name   string
	Args   map[string]string
	Result string
}

// Config wires the bridge to the surrounding application.
type Config struct {
	// Notify, when set, receives every executed action.
	Notify func(Event)
	// ResolveExample maps an example identifier to its display name.
	// Defaults to the identity mapping.
	ResolveExample func(name string) string
}

// Bridge registers the application's tool actions on a registry.
type Bridge struct {
	cfg Config
}

func NewBridge(cfg Config) *Bridge {
	if cfg.ResolveExample == nil {
		cfg.ResolveExample = func(name string) string { return name }
	}
	return &Bridge{cfg: cfg}
}

// RegisterAll installs every supported action on r.
func (b *Bridge) RegisterAll(r *tools.Registry) {
	r.Register(tools.Declaration{
		Name:        "filterByCategory",
		Description: "Filter the visible example list to one category.",
		Params:      []tools.Param{{Name: "category", Description: "Category to filter by.", Required: true}},
	}, b.action("filterByCategory", func(args map[string]string) string {
		return "Filtering by category: " + args["category"]
	}))

	r.Register(tools.Declaration{
		Name:        "searchExamples",
		Description: "Search the example list by a free-text term.",
		Params:      []tools.Param{{Name: "term", Description: "Search term.", Required: true}},
	}, b.action("searchExamples", func(args map[string]string) string {
		return "Searching examples for: " + args["term"]
	}))

	r.Register(tools.Declaration{
		Name:        "showExampleDetails",
		Description: "Open the detail view for one example.",
		Params:      []tools.Param{{Name: "name", Description: "Example identifier.", Required: true}},
	}, b.action("showExampleDetails", func(args map[string]string) string {
		return "Opened details for: " + b.cfg.ResolveExample(args["name"])
	}))

	r.Register(tools.Declaration{
		Name:        "closeDetails",
		Description: "Close the currently open detail view.",
	}, b.action("closeDetails", func(map[string]string) string {
		return "Closed the details view."
	}))

	r.Register(tools.Declaration{
		Name:        "closeAssistant",
		Description: "Dismiss the voice assistant panel.",
	}, b.action("closeAssistant", func(map[string]string) string {
		return "Closed the assistant."
	}))

	r.Register(tools.Declaration{
		Name:        "scrollToSectionInDetails",
		Description: "Scroll the open detail view to a named section.",
		Params:      []tools.Param{{Name: "id", Description: "Section identifier.", Required: true}},
	}, b.action("scrollToSectionInDetails", func(args map[string]string) string {
		return "Scrolled to section: " + args["id"]
	}))

	r.Register(tools.Declaration{
		Name:        "resetFilters",
		Description: "Clear all active filters and search terms.",
	}, b.action("resetFilters", func(map[string]string) string {
		return "Reset all filters."
	}))

	r.Register(tools.Declaration{
		Name:        "performGoogleSearch",
		Description: "Run a grounded web search for the given query.",
		Params:      []tools.Param{{Name: "query", Description: "Search query.", Required: true}},
	}, b.action("performGoogleSearch", func(args map[string]string) string {
		return "Searching the web for: " + args["query"]
	}))
}

func (b *Bridge) action(name string, build func(map[string]string) string) tools.Handler {
	return func(_ context.Context, args map[string]string) (string, error) {
		if args == nil {
			args = map[string]string{}
		}
		result := strings.TrimSpace(build(args))
		if result == "" {
			result = fmt.Sprintf("Executed tool: %s", name)
		}
		if b.cfg.Notify != nil {
			b.cfg.Notify(Event{Name: name, Args: args, Result: result})
		}
		return result, nil
	}
}
