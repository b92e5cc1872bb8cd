// Package app holds the editing session: the loaded pages, the interaction
// mode, and the save pipeline, along with application events and theme.
package app

import (
	"sync"
)

// Mode is the current interaction mode of the editor.
type Mode int

const (
	ModeOff Mode = iota
	ModeSign
	ModeFill
	ModeErase
)

// Modes lists every mode in the order the UI presents them.
var Modes = []Mode{ModeOff, ModeSign, ModeFill, ModeErase}

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "Off"
	case ModeSign:
		return "Sign"
	case ModeFill:
		return "Fill"
	case ModeErase:
		return "Erase"
	default:
		return "Unknown"
	}
}

// ParseMode maps a label produced by String back to a Mode.
func ParseMode(s string) (Mode, bool) {
	for _, m := range Modes {
		if m.String() == s {
			return m, true
		}
	}
	return ModeOff, false
}

// EventType identifies different session events.
type EventType int

const (
	EventPageChanged EventType = iota
	EventAnnotationsChanged
	EventSelectionChanged
	EventModeChanged
	EventRedraw
	EventSaved
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// events is a small synchronous event bus.
type events struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventListener
}

// On registers an event listener for the specified event type.
func (e *events) On(event EventType, listener EventListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[event] = append(e.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (e *events) Emit(event EventType, data interface{}) {
	e.mu.RLock()
	listeners := e.listeners[event]
	e.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}
