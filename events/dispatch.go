package events

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidEvent is returned when dispatch is asked to deliver a value
	// that is not an Event. Nothing fires and no state changes.
	ErrInvalidEvent = errors.New("dispatched events must be Event values")

	// ErrInvalidListener is returned when registration or removal is given a
	// nil listener. The registry is not touched.
	ErrInvalidListener = errors.New("listener must not be nil")
)

// Target is any object that can own listeners and sit on a propagation path.
// The parent link is a lookup into externally owned tree structure, never an
// ownership edge. Implementations must be comparable values (pointers): the
// Dispatcher keys its per-object state on target identity.
type Target interface {
	// ParentTarget returns the next object toward the root, or nil for a
	// detached or root object.
	ParentTarget() Target
}

// Dispatcher owns all listener state for one runtime instance: the lazily
// created per-object dispatch lists and the broadcast registry. It is
// explicit state rather than a package singleton so independent runtimes
// never share registrations.
//
// Dispatcher is not safe for concurrent use; the host runtime runs script
// code, listener callbacks included, on a single logical thread.
type Dispatcher struct {
	lists     map[Target]*dispatchList
	broadcast broadcastRegistry
	log       logrus.FieldLogger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		lists:     make(map[Target]*dispatchList),
		broadcast: newBroadcastRegistry(),
		log:       logrus.StandardLogger(),
	}
}

// SetLogger replaces the dispatcher's logger.
func (d *Dispatcher) SetLogger(log logrus.FieldLogger) {
	if log != nil {
		d.log = log
	}
}

// list returns the target's dispatch list, allocating it on first use. An
// object can become visible to scripts before its constructor body runs, so
// the list cannot be created eagerly at construction.
func (d *Dispatcher) list(t Target) *dispatchList {
	dl := d.lists[t]
	if dl == nil {
		dl = newDispatchList()
		d.lists[t] = dl
	}
	return dl
}

// AddEventListener registers a listener on the target for the given type.
// Re-registering the same (listener, useCapture) pair for a type is a no-op
// that keeps the original priority and position. Non-capturing registrations
// are also recorded in the broadcast registry. useWeakReference from the
// legacy signature is intentionally absent: registrations are always strong.
func (d *Dispatcher) AddEventListener(t Target, typ string, priority int32, lis Listener, useCapture bool) error {
	if lis == nil {
		return ErrInvalidListener
	}
	d.list(t).add(typ, priority, lis, useCapture)
	if !useCapture {
		d.broadcast.register(typ, t)
	}
	return nil
}

// RemoveEventListener unregisters a listener; an absent listener is a silent
// no-op. The broadcast registry is never shrunk: stale entries are skipped at
// delivery time by the live listener check.
func (d *Dispatcher) RemoveEventListener(t Target, typ string, lis Listener, useCapture bool) error {
	if lis == nil {
		return ErrInvalidListener
	}
	if dl := d.lists[t]; dl != nil {
		dl.remove(typ, lis, useCapture)
	}
	return nil
}

// HasEventListener reports whether the target itself has any listener for
// the type, in either phase bucket.
func (d *Dispatcher) HasEventListener(t Target, typ string) bool {
	dl := d.lists[t]
	return dl != nil && dl.has(typ)
}

// WillTrigger reports whether a dispatch of the given type on the target
// would reach any listener along the path it would currently take: the
// target itself, then each ancestor up to the root.
func (d *Dispatcher) WillTrigger(t Target, typ string) bool {
	for n := t; n != nil; n = n.ParentTarget() {
		if d.HasEventListener(n, typ) {
			return true
		}
	}
	return false
}

// DispatchEvent delivers the event to the target through the three-phase
// walk: capture from the root down to the target's parent, the target
// itself, then bubbling back up if the event bubbles. The propagation path
// is fixed at entry; listeners that reparent nodes mid-flight observe the
// path as it was when dispatch began.
//
// The boolean result is true unless the event was cancelable and a listener
// prevented its default behavior. A listener error aborts the walk and is
// returned to the caller with the cause intact.
func (d *Dispatcher) DispatchEvent(t Target, e *Event) (bool, error) {
	if e == nil {
		return false, ErrInvalidEvent
	}

	e.reset()
	e.target = t

	// Ancestors from the target's parent up to the root. Computed once; tree
	// mutations during firing do not change the walk.
	var ancestors []Target
	for p := t.ParentTarget(); p != nil; p = p.ParentTarget() {
		ancestors = append(ancestors, p)
	}

	d.log.WithFields(logrus.Fields{
		"type":    e.typ,
		"bubbles": e.bubbles,
		"path":    len(ancestors) + 1,
	}).Debug("dispatching event")

	defer func() {
		e.currentTarget = nil
		e.phase = PhaseNone
	}()

	for i := len(ancestors) - 1; i >= 0; i-- {
		if e.propagationStopped {
			break
		}
		if err := d.fire(ancestors[i], e, PhaseCapturing, true); err != nil {
			return false, err
		}
	}

	// StopPropagation during capture skips the remaining ancestors but not
	// the target itself. A pending immediate stop skips these listeners too.
	if err := d.fire(t, e, PhaseAtTarget, false); err != nil {
		return false, err
	}

	if e.bubbles {
		for _, a := range ancestors {
			if e.propagationStopped {
				break
			}
			if err := d.fire(a, e, PhaseBubbling, false); err != nil {
				return false, err
			}
		}
	}

	return !(e.cancelable && e.defaultPrevented), nil
}

// fire invokes one node's listeners for the event from a snapshot taken at
// entry. A listener error stops the whole dispatch and propagates.
func (d *Dispatcher) fire(t Target, e *Event, phase Phase, capture bool) error {
	e.currentTarget = t
	e.phase = phase

	dl := d.lists[t]
	if dl == nil {
		return nil
	}
	for _, lis := range dl.snapshot(e.typ, capture) {
		if e.immediateStopped {
			break
		}
		if err := lis.HandleEvent(e); err != nil {
			d.log.WithError(err).WithFields(logrus.Fields{
				"type":  e.typ,
				"phase": phase.String(),
			}).Error("event listener failed")
			return errors.Wrapf(err, "%s listener for %q failed", phase, e.typ)
		}
	}
	return nil
}
