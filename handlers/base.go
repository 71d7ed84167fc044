// Package handlers fans engine state changes out to their consumers (SSE,
// WebSocket, Redis mirror, scan journal, webhooks).
package handlers

import "sniper-dashboard/models"

// StateHandler adalah interface dasar untuk semua consumer state event
type StateHandler interface {
	// Handle processes one state event. It must not block the caller for
	// long; wrap slow sinks with NewAsyncHandler.
	Handle(ev models.StateEvent) error

	// Name mengembalikan nama handler untuk logging
	Name() string
}

// HandlerFunc adapts a function to StateHandler.
type HandlerFunc struct {
	HandlerName string
	Fn          func(ev models.StateEvent) error
}

// Handle calls Fn.
func (f HandlerFunc) Handle(ev models.StateEvent) error { return f.Fn(ev) }

// Name returns HandlerName.
func (f HandlerFunc) Name() string { return f.HandlerName }

// EventFilter restricts a handler to the listed event types.
type EventFilter struct {
	StateHandler
	types map[string]bool
}

// OnlyEvents wraps h so it only sees the given event types.
func OnlyEvents(h StateHandler, types ...string) *EventFilter {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return &EventFilter{StateHandler: h, types: set}
}

// Handle forwards ev when its type is accepted.
func (f *EventFilter) Handle(ev models.StateEvent) error {
	if !f.types[ev.Type] {
		return nil
	}
	return f.StateHandler.Handle(ev)
}
