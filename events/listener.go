package events

// Listener handles events delivered to a target it was registered on.
//
// Registration identity is the interface value itself: Go functions are not
// comparable, so implementations must be comparable values (in practice,
// pointers). Registering the same value twice for the same type and capture
// flag is a no-op; removal looks the value up the same way.
type Listener interface {
	HandleEvent(*Event) error
}

// Func adapts a plain function to a Listener. Each call returns a distinct
// identity; keep the returned value if the listener will be removed later.
func Func(fn func(*Event) error) Listener {
	return &funcListener{fn: fn}
}

type funcListener struct {
	fn func(*Event) error
}

func (l *funcListener) HandleEvent(e *Event) error { return l.fn(e) }

// entry is one registered interest. Registration order is the slice order:
// inserts place equal priorities after existing ones, so ties fire in the
// order they were added.
type entry struct {
	priority int32
	listener Listener
}

// listenerList is one phase bucket for one event type, kept sorted by
// descending priority, insertion-stable on ties. Lists are expected to stay
// in the single digits, so inserts and removals scan linearly.
type listenerList []entry

func (l listenerList) index(lis Listener) int {
	for i := range l {
		if l[i].listener == lis {
			return i
		}
	}
	return -1
}

// insert adds a listener unless it is already present. A duplicate keeps its
// original priority and position even when the new priority differs. The
// second return value reports whether anything was inserted.
func (l listenerList) insert(priority int32, lis Listener) (listenerList, bool) {
	if l.index(lis) >= 0 {
		return l, false
	}
	at := len(l)
	for i := range l {
		if l[i].priority < priority {
			at = i
			break
		}
	}
	l = append(l, entry{})
	copy(l[at+1:], l[at:])
	l[at] = entry{priority: priority, listener: lis}
	return l, true
}

// remove drops a listener if present; an absent listener is a no-op.
func (l listenerList) remove(lis Listener) listenerList {
	i := l.index(lis)
	if i < 0 {
		return l
	}
	return append(l[:i], l[i+1:]...)
}

// snapshot copies the listeners in firing order. The dispatch walk iterates
// snapshots so that listeners registering or removing listeners mid-flight
// only affect later dispatches, never the one in progress.
func (l listenerList) snapshot() []Listener {
	if len(l) == 0 {
		return nil
	}
	out := make([]Listener, len(l))
	for i := range l {
		out[i] = l[i].listener
	}
	return out
}

// buckets holds the two phase lists for one event type.
type buckets struct {
	capture listenerList
	bubble  listenerList
}

func (b *buckets) list(capture bool) listenerList {
	if capture {
		return b.capture
	}
	return b.bubble
}

func (b *buckets) setList(capture bool, l listenerList) {
	if capture {
		b.capture = l
	} else {
		b.bubble = l
	}
}

func (b *buckets) empty() bool {
	return len(b.capture) == 0 && len(b.bubble) == 0
}

// dispatchList is the per-object registry: event type to its phase buckets.
// It is created lazily by the Dispatcher on first registration, never at
// object construction.
type dispatchList struct {
	types map[string]*buckets
}

func newDispatchList() *dispatchList {
	return &dispatchList{types: make(map[string]*buckets)}
}

func (d *dispatchList) add(typ string, priority int32, lis Listener, useCapture bool) bool {
	b := d.types[typ]
	if b == nil {
		b = &buckets{}
		d.types[typ] = b
	}
	l, inserted := b.list(useCapture).insert(priority, lis)
	b.setList(useCapture, l)
	return inserted
}

func (d *dispatchList) remove(typ string, lis Listener, useCapture bool) {
	b := d.types[typ]
	if b == nil {
		return
	}
	b.setList(useCapture, b.list(useCapture).remove(lis))
	if b.empty() {
		delete(d.types, typ)
	}
}

func (d *dispatchList) has(typ string) bool {
	b := d.types[typ]
	return b != nil && !b.empty()
}

func (d *dispatchList) snapshot(typ string, capture bool) []Listener {
	b := d.types[typ]
	if b == nil {
		return nil
	}
	return b.list(capture).snapshot()
}
