package actions

import (
	"context"
	"testing"

	"github.com/guychenya/giton/internal/tools"
)

func TestRegisterAllInstallsEveryAction(t *testing.T) {
	r := tools.NewRegistry()
	NewBridge(Config{}).RegisterAll(r)

	want := []string{
		"closeAssistant",
		"closeDetails",
		"filterByCategory",
		"performGoogleSearch",
		"resetFilters",
		"scrollToSectionInDetails",
		"searchExamples",
		"showExampleDetails",
	}
	decls := r.Declarations()
	if len(decls) != len(want) {
		t.Fatalf("len(Declarations()) = %d, want %d", len(decls), len(want))
	}
	for i, d := range decls {
		if d.Name != want[i] {
			t.Fatalf("Declarations()[%d] = %q, want %q", i, d.Name, want[i])
		}
	}
}

func TestShowExampleDetailsUsesResolver(t *testing.T) {
	r := tools.NewRegistry()
	NewBridge(Config{
		ResolveExample: func(name string) string {
			if name == "auth" {
				return "Auth Module"
			}
			return name
		},
	}).RegisterAll(r)

	got := r.Dispatch(context.Background(), "showExampleDetails", map[string]string{"name": "auth"})
	if got != "Opened details for: Auth Module" {
		t.Fatalf("Dispatch = %q, want %q", got, "Opened details for: Auth Module")
	}
}

func TestActionsNotifyObserver(t *testing.T) {
	r := tools.NewRegistry()
	var events []Event
	NewBridge(Config{Notify: func(e Event) { events = append(events, e) }}).RegisterAll(r)

	got := r.Dispatch(context.Background(), "filterByCategory", map[string]string{"category": "testing"})
	if got != "Filtering by category: testing" {
		t.Fatalf("Dispatch = %q, want %q", got, "Filtering by category: testing")
	}
	if len(events) != 1 {
		t.Fatalf("observer events = %d, want 1", len(events))
	}
	if events[0].Name != "filterByCategory" || events[0].Result != got {
		t.Fatalf("event = %+v, want name filterByCategory with matching result", events[0])
	}
}

func TestZeroArgumentActions(t *testing.T) {
	r := tools.NewRegistry()
	NewBridge(Config{}).RegisterAll(r)

	cases := map[string]string{
		"closeDetails":   "Closed the details view.",
		"closeAssistant": "Closed the assistant.",
		"resetFilters":   "Reset all filters.",
	}
	for name, want := range cases {
		if got := r.Dispatch(context.Background(), name, nil); got != want {
			t.Fatalf("Dispatch(%s) = %q, want %q", name, got, want)
		}
	}
}
