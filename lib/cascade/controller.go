// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

// Package cascade implements the master-detail selection state machine
// used by every entity tab in the console: a list of selectable
// options scoped to a parent entity, a current selection, and the list
// of events fetched for that selection.
//
// The same control logic repeats for activities, personnel,
// procurement orders, bidders, and transactions; only the fetch
// functions and the option type differ, so the machine is built once
// and instantiated per family.
//
// Correctness contract: the events held by a controller always
// correspond to the fetch for the *current* selection. Both fetch
// levels carry a generation number captured when the fetch is issued;
// a result whose generation no longer matches the controller's is
// discarded silently on arrival. There is no transport-level abort —
// rapid re-selection simply orphans the older fetches. This is the
// single most important invariant in the console: without it, a slow
// response for an abandoned selection overwrites the events of the
// selection the user actually made.
//
// States: Idle → OptionsLoading → OptionsReady ⇄ DependentLoading ⇄
// DependentReady, with per-level error slots that absorb until the
// next reload or selection. An options failure clears the events; an
// events failure leaves the options untouched.
package cascade

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pmisuite/pmis/lib/apiclient"
)

// Option is one selectable entity in a controller's list. Implemented
// by the apiclient picker projections (Activity, PersonnelLite, ...).
type Option interface {
	// OptionID is the entity's numeric identifier, unique within its type.
	OptionID() int
	// OptionLabel is the display text for the selector.
	OptionLabel() string
}

// OptionsFetch loads the selectable entities scoped to a parent.
type OptionsFetch func(ctx context.Context, parentID int) ([]Option, error)

// EventsFetch loads the events scoped to a selected entity.
type EventsFetch func(ctx context.Context, optionID int) ([]apiclient.Event, error)

// Config assembles a Controller for one entity family.
type Config struct {
	// ID tags result messages so the owning page can route them back
	// to this instance. Must be unique among live controllers.
	ID string

	// FetchOptions and FetchEvents are the two collaborator calls.
	FetchOptions OptionsFetch
	FetchEvents  EventsFetch

	// DedupeByID drops repeated option IDs, keeping the first
	// occurrence. The personnel list endpoint returns duplicate rows,
	// so its instantiation sets this.
	DedupeByID bool
}

// OptionsResult is the message delivered when an options fetch
// completes. Generation is the value captured when the fetch was
// issued; the controller discards the message when it no longer
// matches.
type OptionsResult struct {
	ControllerID string
	Generation   uint64
	Options      []Option
	Err          error
}

// EventsResult is the message delivered when a dependent events fetch
// completes.
type EventsResult struct {
	ControllerID string
	Generation   uint64
	OptionID     int
	Events       []apiclient.Event
	Err          error
}

// Controller is one instance of the cascading selection machine. All
// methods must be called from the bubbletea update loop; the fetch
// commands it returns run on goroutines but only touch the controller
// again through Apply* messages.
type Controller struct {
	id           string
	fetchOptions OptionsFetch
	fetchEvents  EventsFetch
	dedupeByID   bool

	parentID   int
	options    []Option
	selectedID int // 0 = nothing selected.
	events     []apiclient.Event

	optionsLoading bool
	eventsLoading  bool
	optionsError   string
	eventsError    string

	// Monotonic per-level fetch generations. Incremented when a fetch
	// is issued or invalidated; compared on arrival.
	optionsGeneration uint64
	eventsGeneration  uint64
}

// New creates a Controller. It starts Idle: nothing is fetched until
// Reload.
func New(config Config) *Controller {
	return &Controller{
		id:           config.ID,
		fetchOptions: config.FetchOptions,
		fetchEvents:  config.FetchEvents,
		dedupeByID:   config.DedupeByID,
	}
}

// ID returns the routing tag.
func (c *Controller) ID() string { return c.id }

// Reload enters OptionsLoading for a (possibly new) parent entity.
// Any prior options, selection, and events are cleared — they belong
// to the old parent — and both generations advance so in-flight
// results for it are orphaned.
func (c *Controller) Reload(parentID int) tea.Cmd {
	c.parentID = parentID
	c.options = nil
	c.selectedID = 0
	c.events = nil
	c.optionsError = ""
	c.eventsError = ""
	c.optionsLoading = true
	c.eventsLoading = false
	c.optionsGeneration++
	c.eventsGeneration++

	generation := c.optionsGeneration
	fetch := c.fetchOptions
	return func() tea.Msg {
		options, err := fetch(context.Background(), parentID)
		return OptionsResult{
			ControllerID: c.id,
			Generation:   generation,
			Options:      options,
			Err:          err,
		}
	}
}

// ApplyOptions folds an options fetch result into the controller.
// Returns the dependent fetch command for the auto-selected first
// option, or nil. Stale or misrouted results are ignored.
func (c *Controller) ApplyOptions(result OptionsResult) tea.Cmd {
	if result.ControllerID != c.id || result.Generation != c.optionsGeneration {
		return nil
	}

	c.optionsLoading = false

	if result.Err != nil {
		c.optionsError = result.Err.Error()
		c.options = nil
		c.selectedID = 0
		c.events = nil
		return nil
	}

	options := result.Options
	if c.dedupeByID {
		options = dedupeOptions(options)
	}
	c.options = options

	// Auto-select the first option in received order when nothing is
	// selected. Deliberate policy: an empty default selection would
	// render an empty events pane even when data exists.
	if c.selectedID == 0 && len(options) > 0 {
		return c.Select(options[0].OptionID())
	}
	if len(options) == 0 {
		c.selectedID = 0
		c.events = nil
	}
	return nil
}

// Select changes the current selection and enters DependentLoading.
// Selecting 0 clears the selection and empties the events immediately
// without issuing a fetch. Either way the events generation advances,
// orphaning any in-flight dependent fetch.
func (c *Controller) Select(optionID int) tea.Cmd {
	c.selectedID = optionID
	c.eventsGeneration++
	c.eventsError = ""

	if optionID == 0 {
		c.events = nil
		c.eventsLoading = false
		return nil
	}

	c.eventsLoading = true
	generation := c.eventsGeneration
	fetch := c.fetchEvents
	return func() tea.Msg {
		events, err := fetch(context.Background(), optionID)
		return EventsResult{
			ControllerID: c.id,
			Generation:   generation,
			OptionID:     optionID,
			Events:       events,
			Err:          err,
		}
	}
}

// ApplyEvents folds a dependent fetch result into the controller.
// A result from a superseded selection fails the generation check and
// is discarded without touching any state — including the loading
// flag, which belongs to the newer fetch.
func (c *Controller) ApplyEvents(result EventsResult) {
	if result.ControllerID != c.id || result.Generation != c.eventsGeneration {
		return
	}

	c.eventsLoading = false

	if result.Err != nil {
		c.eventsError = result.Err.Error()
		c.events = nil
		return
	}
	c.events = result.Events
}

// SelectNext moves the selection to the next option, if any.
func (c *Controller) SelectNext() tea.Cmd {
	return c.selectOffset(1)
}

// SelectPrevious moves the selection to the previous option, if any.
func (c *Controller) SelectPrevious() tea.Cmd {
	return c.selectOffset(-1)
}

func (c *Controller) selectOffset(offset int) tea.Cmd {
	if len(c.options) == 0 {
		return nil
	}
	index := c.selectedIndex() + offset
	if index < 0 || index >= len(c.options) {
		return nil
	}
	return c.Select(c.options[index].OptionID())
}

// selectedIndex returns the index of the selected option, or -1.
func (c *Controller) selectedIndex() int {
	for index, option := range c.options {
		if option.OptionID() == c.selectedID {
			return index
		}
	}
	return -1
}

// Options returns the current option list in received order. The
// controller never sorts; ordering is whatever the collaborator sent.
func (c *Controller) Options() []Option { return c.options }

// SelectedID returns the selected option's ID, or 0.
func (c *Controller) SelectedID() int { return c.selectedID }

// Selected returns the selected option, or nil.
func (c *Controller) Selected() Option {
	if index := c.selectedIndex(); index >= 0 {
		return c.options[index]
	}
	return nil
}

// SelectedIndex returns the position of the selection in Options, or -1.
func (c *Controller) SelectedIndex() int { return c.selectedIndex() }

// Events returns the dependent events for the current selection.
func (c *Controller) Events() []apiclient.Event { return c.events }

// OptionsLoading reports an outstanding options fetch.
func (c *Controller) OptionsLoading() bool { return c.optionsLoading }

// EventsLoading reports an outstanding dependent fetch.
func (c *Controller) EventsLoading() bool { return c.eventsLoading }

// OptionsError returns the options-level error message, or "".
func (c *Controller) OptionsError() string { return c.optionsError }

// EventsError returns the dependent-level error message, or "".
func (c *Controller) EventsError() string { return c.eventsError }

// ParentID returns the parent entity the options are scoped to.
func (c *Controller) ParentID() int { return c.parentID }

// dedupeOptions drops options whose ID was already seen, preserving
// first-occurrence order.
func dedupeOptions(options []Option) []Option {
	seen := make(map[int]bool, len(options))
	deduped := options[:0:0]
	for _, option := range options {
		id := option.OptionID()
		if seen[id] {
			continue
		}
		seen[id] = true
		deduped = append(deduped, option)
	}
	return deduped
}
