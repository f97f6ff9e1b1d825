package avm

import (
	"github.com/dop251/goja"
	"github.com/pkg/errors"

	"github.com/embervm/ember/display"
	"github.com/embervm/ember/events"
)

// binder wires display targets and events into script space. It keeps one
// listener wrapper per distinct script callable per target, so script-side
// identity (the function value) maps onto the core's interface identity and
// the duplicate-registration rule is observable from scripts.
type binder struct {
	r *Runtime

	targets      map[*goja.Object]events.Target
	objsByTarget map[events.Target]*goja.Object
	wrappers     map[events.Target][]*scriptListener
	eventsByObj  map[*goja.Object]*events.Event
	objsByEvent  map[*events.Event]*goja.Object
}

func newBinder(r *Runtime) *binder {
	return &binder{
		r:            r,
		targets:      make(map[*goja.Object]events.Target),
		objsByTarget: make(map[events.Target]*goja.Object),
		wrappers:     make(map[events.Target][]*scriptListener),
		eventsByObj:  make(map[*goja.Object]*events.Event),
		objsByEvent:  make(map[*events.Event]*goja.Object),
	}
}

// scriptListener adapts one script callable registered on one target.
type scriptListener struct {
	b     *binder
	value goja.Value
	fn    goja.Callable
}

func (l *scriptListener) HandleEvent(e *events.Event) error {
	_, err := l.fn(goja.Undefined(), l.b.objectForEvent(e))
	return err
}

// listenerFor returns the wrapper for a script callable on a target,
// creating it on first sight. SameAs comparison makes re-registration of the
// same function resolve to the same wrapper.
func (b *binder) listenerFor(t events.Target, v goja.Value, fn goja.Callable) *scriptListener {
	if l := b.findListener(t, v); l != nil {
		return l
	}
	l := &scriptListener{b: b, value: v, fn: fn}
	b.wrappers[t] = append(b.wrappers[t], l)
	return l
}

func (b *binder) findListener(t events.Target, v goja.Value) *scriptListener {
	for _, l := range b.wrappers[t] {
		if l.value.SameAs(v) {
			return l
		}
	}
	return nil
}

// bindTarget installs the dispatcher surface on a script object backed by t.
func (b *binder) bindTarget(obj *goja.Object, t events.Target) {
	vm := b.r.vm
	d := b.r.dispatcher
	b.targets[obj] = t
	b.objsByTarget[t] = obj

	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.NewTypeError("addEventListener requires a type and a listener"))
		}
		typ := call.Argument(0).String()
		fn, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			panic(vm.NewTypeError("listener is not a function"))
		}
		useCapture := call.Argument(2).ToBoolean()
		priority := int32(call.Argument(3).ToInteger())
		// Argument 4, useWeakReference, is accepted and ignored:
		// registrations are always strong.
		l := b.listenerFor(t, call.Argument(1), fn)
		if err := d.AddEventListener(t, typ, priority, l, useCapture); err != nil {
			panic(vm.NewGoError(err))
		}
		return goja.Undefined()
	})

	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			panic(vm.NewTypeError("removeEventListener requires a type and a listener"))
		}
		typ := call.Argument(0).String()
		if _, ok := goja.AssertFunction(call.Argument(1)); !ok {
			panic(vm.NewTypeError("listener is not a function"))
		}
		useCapture := call.Argument(2).ToBoolean()
		l := b.findListener(t, call.Argument(1))
		if l == nil {
			return goja.Undefined()
		}
		if err := d.RemoveEventListener(t, typ, l, useCapture); err != nil {
			panic(vm.NewGoError(err))
		}
		return goja.Undefined()
	})

	obj.Set("hasEventListener", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(d.HasEventListener(t, call.Argument(0).String()))
	})

	obj.Set("willTrigger", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(d.WillTrigger(t, call.Argument(0).String()))
	})

	obj.Set("dispatchEvent", func(call goja.FunctionCall) goja.Value {
		evObj, ok := call.Argument(0).(*goja.Object)
		if !ok {
			panic(vm.NewTypeError("dispatched events must be Event values"))
		}
		e, ok := b.eventsByObj[evObj]
		if !ok {
			panic(vm.NewTypeError("dispatched events must be Event values"))
		}
		handled, err := d.DispatchEvent(t, e)
		if err != nil {
			// A failing script listener threw; rethrow the original value so
			// the dispatching script sees it unchanged.
			if ex, isEx := errors.Cause(err).(*goja.Exception); isEx {
				panic(ex)
			}
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(handled)
	})
}

// bindNode exposes a display node to scripts, installing the dispatcher
// surface plus tree accessors. Nodes are bound once; later lookups reuse the
// same script object so identity comparisons hold in script code.
func (b *binder) bindNode(node *display.Object) *goja.Object {
	if obj, ok := b.objsByTarget[node]; ok {
		return obj
	}
	vm := b.r.vm
	obj := vm.NewObject()
	b.bindTarget(obj, node)

	obj.Set("name", node.Name())
	obj.Set("kind", node.Kind().String())

	obj.DefineAccessorProperty("parent", vm.ToValue(func() goja.Value {
		p := node.Parent()
		if p == nil {
			return goja.Null()
		}
		return b.bindNode(p)
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("numChildren", vm.ToValue(func() goja.Value {
		return vm.ToValue(node.NumChildren())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.Set("getChildByName", func(call goja.FunctionCall) goja.Value {
		c := node.GetChildByName(call.Argument(0).String())
		if c == nil {
			return goja.Null()
		}
		return b.bindNode(c)
	})

	obj.Set("addChild", func(call goja.FunctionCall) goja.Value {
		child := b.nodeArgument(call.Argument(0))
		if err := node.AddChild(child); err != nil {
			panic(vm.NewGoError(err))
		}
		return goja.Undefined()
	})

	obj.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		node.RemoveChild(b.nodeArgument(call.Argument(0)))
		return goja.Undefined()
	})

	for _, c := range node.Children() {
		b.bindNode(c)
	}
	return obj
}

func (b *binder) nodeArgument(v goja.Value) *display.Object {
	obj, ok := v.(*goja.Object)
	if !ok {
		panic(b.r.vm.NewTypeError("argument is not a display object"))
	}
	node, ok := b.targets[obj].(*display.Object)
	if !ok {
		panic(b.r.vm.NewTypeError("argument is not a display object"))
	}
	return node
}

func (b *binder) objectForTarget(t events.Target) goja.Value {
	if t == nil {
		return goja.Null()
	}
	if obj, ok := b.objsByTarget[t]; ok {
		return obj
	}
	if node, ok := t.(*display.Object); ok {
		return b.bindNode(node)
	}
	return goja.Null()
}

// objectForEvent wraps a core event for script code. Dispatch-time state is
// exposed through accessors so scripts always observe the live values.
func (b *binder) objectForEvent(e *events.Event) *goja.Object {
	if obj, ok := b.objsByEvent[e]; ok {
		return obj
	}
	vm := b.r.vm
	obj := vm.NewObject()
	b.eventsByObj[obj] = e
	b.objsByEvent[e] = obj

	getter := func(fn func() goja.Value) goja.Value { return vm.ToValue(fn) }
	obj.DefineAccessorProperty("type", getter(func() goja.Value { return vm.ToValue(e.Type()) }), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("bubbles", getter(func() goja.Value { return vm.ToValue(e.Bubbles()) }), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("cancelable", getter(func() goja.Value { return vm.ToValue(e.Cancelable()) }), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("eventPhase", getter(func() goja.Value { return vm.ToValue(int(e.EventPhase())) }), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("target", getter(func() goja.Value { return b.objectForTarget(e.Target()) }), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	obj.DefineAccessorProperty("currentTarget", getter(func() goja.Value { return b.objectForTarget(e.CurrentTarget()) }), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.Set("stopPropagation", func(call goja.FunctionCall) goja.Value {
		e.StopPropagation()
		return goja.Undefined()
	})
	obj.Set("stopImmediatePropagation", func(call goja.FunctionCall) goja.Value {
		e.StopImmediatePropagation()
		return goja.Undefined()
	})
	obj.Set("preventDefault", func(call goja.FunctionCall) goja.Value {
		e.PreventDefault()
		return goja.Undefined()
	})
	obj.Set("isDefaultPrevented", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(e.IsDefaultPrevented())
	})
	obj.Set("toString", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(e.String())
	})
	return obj
}

// setupEventConstructor installs the Event constructor and the phase
// constants. The constructor takes the legacy positional signature:
// new Event(type, bubbles = false, cancelable = false).
func (b *binder) setupEventConstructor() {
	vm := b.r.vm

	vm.Set("Event", func(call goja.ConstructorCall) *goja.Object {
		typ := call.Argument(0).String()
		bubbles := call.Argument(1).ToBoolean()
		cancelable := call.Argument(2).ToBoolean()
		return b.objectForEvent(events.NewEvent(typ, bubbles, cancelable))
	})

	phases := vm.NewObject()
	phases.Set("CAPTURING_PHASE", int(events.PhaseCapturing))
	phases.Set("AT_TARGET", int(events.PhaseAtTarget))
	phases.Set("BUBBLING_PHASE", int(events.PhaseBubbling))
	vm.Set("EventPhase", phases)
}
