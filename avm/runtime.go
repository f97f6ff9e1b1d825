// Package avm hosts the script runtime for the event core. It embeds the
// goja engine (pure Go ECMAScript implementation) and exposes the legacy
// event-dispatcher surface to scripts: listener management on display
// objects, the Event constructor, and broadcast delivery.
package avm

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/sirupsen/logrus"

	"github.com/embervm/ember/display"
	"github.com/embervm/ember/events"
)

// Runtime wraps a goja runtime together with the dispatcher that owns all
// listener state for this instance. Independent runtimes never share
// registries.
type Runtime struct {
	vm         *goja.Runtime
	dispatcher *events.Dispatcher
	binder     *binder
	log        logrus.FieldLogger
	errors     []error
}

// NewRuntime creates a runtime with the event surface installed.
func NewRuntime() *Runtime {
	r := &Runtime{
		vm:         goja.New(),
		dispatcher: events.NewDispatcher(),
		log:        logrus.StandardLogger(),
	}
	r.binder = newBinder(r)
	r.setupConsole()
	r.binder.setupEventConstructor()
	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime { return r.vm }

// Dispatcher returns the runtime's event dispatcher.
func (r *Runtime) Dispatcher() *events.Dispatcher { return r.dispatcher }

// SetLogger replaces the runtime's logger, and the dispatcher's with it.
func (r *Runtime) SetLogger(log logrus.FieldLogger) {
	if log == nil {
		return
	}
	r.log = log
	r.dispatcher.SetLogger(log)
}

// Execute runs script code and returns the result.
func (r *Runtime) Execute(code string) (result goja.Value, err error) {
	// The goja parser panics on some malformed input; surface that as an
	// error like any other script failure.
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script execution panic: %v", p)
			r.errors = append(r.errors, err)
		}
	}()

	result, err = r.vm.RunString(code)
	if err != nil {
		r.errors = append(r.errors, err)
	}
	return result, err
}

// Errors returns every script error seen so far.
func (r *Runtime) Errors() []error { return r.errors }

// BindStage makes the display tree reachable from scripts: the root is
// installed as the global "stage", and every node carries the dispatcher
// surface plus name/parent/child accessors.
func (r *Runtime) BindStage(root *display.Object) {
	obj := r.binder.bindNode(root)
	r.vm.Set("stage", obj)
}

// BindTarget installs the dispatcher surface on an arbitrary script object
// backed by the given target.
func (r *Runtime) BindTarget(obj *goja.Object, t events.Target) {
	r.binder.bindTarget(obj, t)
}

// Broadcast delivers an event of the given type to every object that ever
// registered a non-capturing listener for it, regardless of tree membership.
func (r *Runtime) Broadcast(typ string) error {
	return r.dispatcher.BroadcastEvent(events.NewEvent(typ, false, false))
}

func (r *Runtime) setupConsole() {
	console := r.vm.NewObject()
	join := func(call goja.FunctionCall) string {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = a.String()
		}
		return strings.Join(parts, " ")
	}
	console.Set("log", func(call goja.FunctionCall) goja.Value {
		r.log.Info(join(call))
		return goja.Undefined()
	})
	console.Set("warn", func(call goja.FunctionCall) goja.Value {
		r.log.Warn(join(call))
		return goja.Undefined()
	})
	console.Set("error", func(call goja.FunctionCall) goja.Value {
		r.log.Error(join(call))
		return goja.Undefined()
	})
	r.vm.Set("console", console)
}
