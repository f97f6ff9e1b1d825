// Package events implements the listener registry and propagation protocol of
// the legacy Flash event model: per-object listener lists ordered by priority,
// a three-phase dispatch walk over the display tree (capture, target, bubble)
// with mid-flight cancellation, and a broadcast registry for delivery to
// objects that are not attached to any tree.
package events

import "fmt"

// Phase identifies where in the propagation walk an event currently is.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseCapturing
	PhaseAtTarget
	PhaseBubbling
)

func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "none"
	case PhaseCapturing:
		return "capturing"
	case PhaseAtTarget:
		return "at-target"
	case PhaseBubbling:
		return "bubbling"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Event carries one occurrence through the display tree. Type, Bubbles and
// Cancelable are fixed at construction; target, current target, phase and the
// cancellation flags are dispatch state owned by the Dispatcher. An Event may
// be dispatched more than once: every dispatch resets the mutable state at
// entry.
type Event struct {
	typ        string
	bubbles    bool
	cancelable bool

	target        Target
	currentTarget Target
	phase         Phase

	propagationStopped bool
	immediateStopped   bool
	defaultPrevented   bool
}

// NewEvent creates an event of the given type. Bubbles and cancelable cannot
// change after construction.
func NewEvent(typ string, bubbles, cancelable bool) *Event {
	return &Event{typ: typ, bubbles: bubbles, cancelable: cancelable}
}

// Type returns the event type name.
func (e *Event) Type() string { return e.typ }

// Bubbles reports whether the event participates in the bubbling phase.
func (e *Event) Bubbles() bool { return e.bubbles }

// Cancelable reports whether PreventDefault has any effect.
func (e *Event) Cancelable() bool { return e.cancelable }

// Target returns the object the event was dispatched on, or nil outside a
// dispatch.
func (e *Event) Target() Target { return e.target }

// CurrentTarget returns the object whose listeners are currently firing, or
// nil outside a dispatch.
func (e *Event) CurrentTarget() Target { return e.currentTarget }

// EventPhase returns the phase of the in-progress dispatch.
func (e *Event) EventPhase() Phase { return e.phase }

// StopPropagation prevents any further nodes on the path from firing. The
// remaining listeners on the current node still fire, and if called during
// the capturing phase the target itself still fires.
func (e *Event) StopPropagation() { e.propagationStopped = true }

// StopImmediatePropagation prevents all further listeners from firing,
// including the remaining listeners on the current node.
func (e *Event) StopImmediatePropagation() {
	e.propagationStopped = true
	e.immediateStopped = true
}

// PreventDefault cancels the event's default behavior. It has no effect on an
// event that is not cancelable.
func (e *Event) PreventDefault() {
	if e.cancelable {
		e.defaultPrevented = true
	}
}

// IsDefaultPrevented reports whether PreventDefault was called on a
// cancelable event.
func (e *Event) IsDefaultPrevented() bool { return e.defaultPrevented }

func (e *Event) String() string {
	return fmt.Sprintf("[Event type=%q bubbles=%v cancelable=%v]", e.typ, e.bubbles, e.cancelable)
}

// reset clears all dispatch-time state so the event can be dispatched again.
func (e *Event) reset() {
	e.target = nil
	e.currentTarget = nil
	e.phase = PhaseNone
	e.propagationStopped = false
	e.immediateStopped = false
	e.defaultPrevented = false
}
