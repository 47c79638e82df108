// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package cascade

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pmisuite/pmis/lib/apiclient"
)

type testOption struct {
	id    int
	label string
}

func (o testOption) OptionID() int       { return o.id }
func (o testOption) OptionLabel() string { return o.label }

// eventsNamed builds a one-event slice whose type names the selection
// that produced it, so tests can tell which fetch's result is showing.
func eventsNamed(name string) []apiclient.Event {
	return []apiclient.Event{{ID: 1, Type: name}}
}

// testHarness wires a controller to canned fetch functions and counts
// dependent fetches per option ID.
type testHarness struct {
	controller  *Controller
	optionRows  []Option
	optionsErr  error
	eventsErr   error
	eventCalls  []int
	eventsForID func(optionID int) []apiclient.Event
}

func newHarness(t *testing.T, dedupe bool) *testHarness {
	t.Helper()
	harness := &testHarness{
		eventsForID: func(optionID int) []apiclient.Event {
			return eventsNamed(fmt.Sprintf("events-for-%d", optionID))
		},
	}
	harness.controller = New(Config{
		ID: "test",
		FetchOptions: func(ctx context.Context, parentID int) ([]Option, error) {
			return harness.optionRows, harness.optionsErr
		},
		FetchEvents: func(ctx context.Context, optionID int) ([]apiclient.Event, error) {
			harness.eventCalls = append(harness.eventCalls, optionID)
			if harness.eventsErr != nil {
				return nil, harness.eventsErr
			}
			return harness.eventsForID(optionID), nil
		},
		DedupeByID: dedupe,
	})
	return harness
}

// pump executes a command and returns its message without applying it,
// letting tests control arrival order.
func pump(t *testing.T, command tea.Cmd) tea.Msg {
	t.Helper()
	if command == nil {
		t.Fatal("expected a command, got nil")
	}
	return command()
}

// loadOptions runs the full Reload → ApplyOptions → auto-select →
// ApplyEvents happy path for parent 10.
func (h *testHarness) loadOptions(t *testing.T) {
	t.Helper()
	optionsMsg := pump(t, h.controller.Reload(10))
	selectCmd := h.controller.ApplyOptions(optionsMsg.(OptionsResult))
	if selectCmd != nil {
		eventsMsg := pump(t, selectCmd)
		h.controller.ApplyEvents(eventsMsg.(EventsResult))
	}
}

func TestAutoSelectsFirstOptionAndFetchesOnce(t *testing.T) {
	harness := newHarness(t, false)
	harness.optionRows = []Option{testOption{1, "A"}, testOption{2, "B"}}

	harness.loadOptions(t)

	controller := harness.controller
	if controller.SelectedID() != 1 {
		t.Errorf("SelectedID = %d, want auto-selected 1", controller.SelectedID())
	}
	if len(harness.eventCalls) != 1 || harness.eventCalls[0] != 1 {
		t.Errorf("dependent fetches = %v, want exactly [1]", harness.eventCalls)
	}
	if len(controller.Events()) != 1 || controller.Events()[0].Type != "events-for-1" {
		t.Errorf("Events = %+v, want the fetch for selection 1", controller.Events())
	}
	if controller.OptionsLoading() || controller.EventsLoading() {
		t.Error("no fetch should remain outstanding")
	}
}

func TestStaleDependentResultIsDiscarded(t *testing.T) {
	harness := newHarness(t, false)
	harness.optionRows = []Option{testOption{1, "A"}, testOption{2, "B"}}
	controller := harness.controller

	optionsMsg := pump(t, controller.Reload(10))
	slowFetchForOne := controller.ApplyOptions(optionsMsg.(OptionsResult))

	// The user moves to selection 2 before selection 1's fetch lands.
	fetchForTwo := controller.Select(2)
	fastMsg := pump(t, fetchForTwo)
	controller.ApplyEvents(fastMsg.(EventsResult))

	if controller.Events()[0].Type != "events-for-2" {
		t.Fatalf("Events = %+v, want events-for-2 before the stale arrival", controller.Events())
	}

	// Selection 1's fetch finally resolves. It must not overwrite
	// the events shown for selection 2.
	lateMsg := pump(t, slowFetchForOne)
	controller.ApplyEvents(lateMsg.(EventsResult))

	if controller.SelectedID() != 2 {
		t.Errorf("SelectedID = %d, want 2", controller.SelectedID())
	}
	if len(controller.Events()) != 1 || controller.Events()[0].Type != "events-for-2" {
		t.Errorf("Events = %+v, want events-for-2 after the stale arrival", controller.Events())
	}
	if controller.EventsLoading() {
		t.Error("a discarded stale result must not resurrect the loading flag")
	}
}

func TestRapidReselectionSettlesOnLastSelection(t *testing.T) {
	harness := newHarness(t, false)
	harness.optionRows = []Option{testOption{1, "A"}, testOption{2, "B"}, testOption{3, "C"}}
	controller := harness.controller

	optionsMsg := pump(t, controller.Reload(10))
	first := controller.ApplyOptions(optionsMsg.(OptionsResult))
	second := controller.Select(2)
	third := controller.Select(3)

	// Responses arrive in reverse order of issue.
	for _, command := range []tea.Cmd{third, second, first} {
		controller.ApplyEvents(pump(t, command).(EventsResult))
	}

	if controller.SelectedID() != 3 {
		t.Errorf("SelectedID = %d, want the last selection 3", controller.SelectedID())
	}
	if controller.Events()[0].Type != "events-for-3" {
		t.Errorf("Events = %+v, want events-for-3", controller.Events())
	}
}

func TestDeduplicatesOptionsByID(t *testing.T) {
	harness := newHarness(t, true)
	harness.optionRows = []Option{testOption{5, "X"}, testOption{5, "X"}, testOption{7, "Y"}}

	harness.loadOptions(t)

	options := harness.controller.Options()
	if len(options) != 2 || options[0].OptionID() != 5 || options[1].OptionID() != 7 {
		ids := make([]int, len(options))
		for index, option := range options {
			ids[index] = option.OptionID()
		}
		t.Errorf("option IDs after dedupe = %v, want [5 7]", ids)
	}
	if harness.controller.SelectedID() != 5 {
		t.Errorf("SelectedID = %d, want 5", harness.controller.SelectedID())
	}
}

func TestClearingSelectionEmptiesEventsWithoutFetching(t *testing.T) {
	harness := newHarness(t, false)
	harness.optionRows = []Option{testOption{1, "A"}}
	harness.loadOptions(t)

	fetchesBefore := len(harness.eventCalls)
	if command := harness.controller.Select(0); command != nil {
		t.Error("clearing the selection must not issue a fetch")
	}

	controller := harness.controller
	if controller.Events() != nil {
		t.Errorf("Events = %+v, want nil after clear", controller.Events())
	}
	if len(harness.eventCalls) != fetchesBefore {
		t.Errorf("dependent fetches = %v, want no new fetch", harness.eventCalls)
	}
	if controller.EventsLoading() {
		t.Error("clear must not leave the loading flag set")
	}
}

func TestLateResultAfterClearIsDiscarded(t *testing.T) {
	harness := newHarness(t, false)
	harness.optionRows = []Option{testOption{1, "A"}}
	controller := harness.controller

	optionsMsg := pump(t, controller.Reload(10))
	inFlight := controller.ApplyOptions(optionsMsg.(OptionsResult))
	controller.Select(0)

	controller.ApplyEvents(pump(t, inFlight).(EventsResult))
	if controller.Events() != nil {
		t.Errorf("Events = %+v, want nil — the selection was cleared first", controller.Events())
	}
}

func TestOptionsErrorClearsDependentState(t *testing.T) {
	harness := newHarness(t, false)
	harness.optionRows = []Option{testOption{1, "A"}}
	harness.loadOptions(t)

	harness.optionsErr = errors.New("backend unavailable")
	optionsMsg := pump(t, harness.controller.Reload(10))
	if command := harness.controller.ApplyOptions(optionsMsg.(OptionsResult)); command != nil {
		t.Error("a failed options load must not trigger a dependent fetch")
	}

	controller := harness.controller
	if controller.OptionsError() != "backend unavailable" {
		t.Errorf("OptionsError = %q", controller.OptionsError())
	}
	if controller.Options() != nil || controller.Events() != nil {
		t.Error("options error must clear both options and events")
	}
}

func TestEventsErrorKeepsOptions(t *testing.T) {
	harness := newHarness(t, false)
	harness.optionRows = []Option{testOption{1, "A"}, testOption{2, "B"}}
	harness.eventsErr = errors.New("events endpoint down")

	harness.loadOptions(t)

	controller := harness.controller
	if controller.EventsError() != "events endpoint down" {
		t.Errorf("EventsError = %q", controller.EventsError())
	}
	if len(controller.Options()) != 2 {
		t.Error("a dependent-level error must not clear the options list")
	}
	if controller.Events() != nil {
		t.Errorf("Events = %+v, want nil on error", controller.Events())
	}
}

func TestReloadOrphansInFlightOptionsFetch(t *testing.T) {
	harness := newHarness(t, false)
	harness.optionRows = []Option{testOption{1, "old"}}
	controller := harness.controller

	staleReload := controller.Reload(10)
	staleMsg := pump(t, staleReload)

	harness.optionRows = []Option{testOption{2, "new"}}
	freshReload := controller.Reload(11)
	freshMsg := pump(t, freshReload)

	// The fresh result lands first; the stale one must be ignored.
	if command := controller.ApplyOptions(freshMsg.(OptionsResult)); command != nil {
		controller.ApplyEvents(pump(t, command).(EventsResult))
	}
	controller.ApplyOptions(staleMsg.(OptionsResult))

	if len(controller.Options()) != 1 || controller.Options()[0].OptionLabel() != "new" {
		t.Errorf("Options = %+v, want only the parent-11 list", controller.Options())
	}
	if controller.ParentID() != 11 {
		t.Errorf("ParentID = %d, want 11", controller.ParentID())
	}
}

func TestEmptyOptionListSelectsNothing(t *testing.T) {
	harness := newHarness(t, false)
	harness.optionRows = nil

	optionsMsg := pump(t, harness.controller.Reload(10))
	if command := harness.controller.ApplyOptions(optionsMsg.(OptionsResult)); command != nil {
		t.Error("an empty option list must not trigger a dependent fetch")
	}

	if harness.controller.SelectedID() != 0 {
		t.Errorf("SelectedID = %d, want 0", harness.controller.SelectedID())
	}
	if len(harness.eventCalls) != 0 {
		t.Errorf("dependent fetches = %v, want none", harness.eventCalls)
	}
}

func TestResultForOtherControllerIsIgnored(t *testing.T) {
	harness := newHarness(t, false)
	harness.optionRows = []Option{testOption{1, "A"}}
	harness.loadOptions(t)

	harness.controller.ApplyEvents(EventsResult{
		ControllerID: "someone-else",
		Generation:   99,
		Events:       eventsNamed("foreign"),
	})

	if harness.controller.Events()[0].Type != "events-for-1" {
		t.Errorf("Events = %+v, want events-for-1 untouched", harness.controller.Events())
	}
}

func TestSelectNextAndPrevious(t *testing.T) {
	harness := newHarness(t, false)
	harness.optionRows = []Option{testOption{1, "A"}, testOption{2, "B"}}
	harness.loadOptions(t)
	controller := harness.controller

	if command := controller.SelectNext(); command != nil {
		controller.ApplyEvents(pump(t, command).(EventsResult))
	}
	if controller.SelectedID() != 2 {
		t.Fatalf("SelectedID = %d, want 2 after SelectNext", controller.SelectedID())
	}

	if command := controller.SelectNext(); command != nil {
		t.Error("SelectNext at the end of the list must be a no-op")
	}

	if command := controller.SelectPrevious(); command != nil {
		controller.ApplyEvents(pump(t, command).(EventsResult))
	}
	if controller.SelectedID() != 1 {
		t.Errorf("SelectedID = %d, want 1 after SelectPrevious", controller.SelectedID())
	}
}
