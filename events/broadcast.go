package events

// broadcastRegistry records every target that has ever registered a
// non-capturing listener for a type. It only grows: removal of a listener
// leaves the entry behind, and delivery re-checks listeners live, so a stale
// entry costs one lookup and nothing else. Targets are kept in registration
// order so delivery is deterministic.
type broadcastRegistry struct {
	types map[string][]Target
}

func newBroadcastRegistry() broadcastRegistry {
	return broadcastRegistry{types: make(map[string][]Target)}
}

func (r broadcastRegistry) register(typ string, t Target) {
	for _, have := range r.types[typ] {
		if have == t {
			return
		}
	}
	r.types[typ] = append(r.types[typ], t)
}

// BroadcastTargets returns the objects ever registered for the type, in
// registration order. The slice is a copy; listeners may register more
// targets while a caller iterates it.
func (d *Dispatcher) BroadcastTargets(typ string) []Target {
	have := d.broadcast.types[typ]
	if len(have) == 0 {
		return nil
	}
	out := make([]Target, len(have))
	copy(out, have)
	return out
}

// BroadcastEvent delivers the event directly to every object ever registered
// for its type, bypassing tree-path computation. Each object sees an
// at-target firing of its non-capture listeners; the bubbles flag is
// irrelevant since there is no path to walk. Objects whose listeners were
// all removed since registration are skipped silently. A listener error
// aborts the remaining deliveries and propagates.
func (d *Dispatcher) BroadcastEvent(e *Event) error {
	if e == nil {
		return ErrInvalidEvent
	}
	defer func() {
		e.currentTarget = nil
		e.phase = PhaseNone
	}()
	for _, t := range d.BroadcastTargets(e.typ) {
		if !d.HasEventListener(t, e.typ) {
			continue
		}
		e.reset()
		e.target = t
		if err := d.fire(t, e, PhaseAtTarget, false); err != nil {
			return err
		}
	}
	return nil
}
