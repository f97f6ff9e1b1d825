package avm

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embervm/ember/display"
)

// testStage builds stage -> world -> hero and binds it into a fresh runtime.
func testStage(t *testing.T) *Runtime {
	t.Helper()
	stage := display.NewObject("stage")
	world := display.NewObject("world")
	hero := display.NewObject("hero")
	require.NoError(t, stage.AddChild(world))
	require.NoError(t, world.AddChild(hero))

	r := NewRuntime()
	log := logrus.New()
	log.SetOutput(io.Discard)
	r.SetLogger(log)
	r.BindStage(stage)
	return r
}

func (r *Runtime) mustExecute(t *testing.T, code string) {
	t.Helper()
	_, err := r.Execute(code)
	require.NoError(t, err)
}

func (r *Runtime) eval(t *testing.T, expr string) interface{} {
	t.Helper()
	v, err := r.Execute(expr)
	require.NoError(t, err)
	return v.Export()
}

func TestScriptAddAndDispatch(t *testing.T) {
	r := testStage(t)
	r.mustExecute(t, `
		var fired = false;
		stage.addEventListener('go', function(e) { fired = true; });
		var handled = stage.dispatchEvent(new Event('go'));
	`)
	assert.Equal(t, true, r.eval(t, "fired"))
	assert.Equal(t, true, r.eval(t, "handled"))
}

func TestScriptCaptureTargetBubbleOrder(t *testing.T) {
	r := testStage(t)
	r.mustExecute(t, `
		var order = [];
		var hero = stage.getChildByName('world').getChildByName('hero');
		stage.addEventListener('go', function(e) { order.push('stage-capture:' + e.eventPhase); }, true);
		hero.addEventListener('go', function(e) { order.push('hero-target:' + e.eventPhase); });
		stage.getChildByName('world').addEventListener('go', function(e) { order.push('world-bubble:' + e.eventPhase); });
		hero.dispatchEvent(new Event('go', true));
	`)
	assert.Equal(t,
		"stage-capture:1,hero-target:2,world-bubble:3",
		r.eval(t, "order.join(',')"))
}

func TestScriptStopPropagation(t *testing.T) {
	r := testStage(t)
	r.mustExecute(t, `
		var order = [];
		var world = stage.getChildByName('world');
		var hero = world.getChildByName('hero');
		stage.addEventListener('go', function() { order.push('stage-capture'); }, true);
		stage.addEventListener('go', function() { order.push('stage-bubble'); });
		hero.addEventListener('go', function() { order.push('hero-target'); });
		world.addEventListener('go', function(e) { order.push('world-stop'); e.stopPropagation(); });
		hero.dispatchEvent(new Event('go', true));
	`)
	assert.Equal(t, "stage-capture,hero-target,world-stop", r.eval(t, "order.join(',')"))
}

func TestScriptPriorityOrdering(t *testing.T) {
	r := testStage(t)
	r.mustExecute(t, `
		var order = [];
		stage.addEventListener('go', function() { order.push('first-5'); }, false, 5);
		stage.addEventListener('go', function() { order.push('one'); }, false, 1);
		stage.addEventListener('go', function() { order.push('second-5'); }, false, 5);
		stage.addEventListener('go', function() { order.push('zero'); });
		stage.dispatchEvent(new Event('go'));
	`)
	assert.Equal(t, "first-5,second-5,one,zero", r.eval(t, "order.join(',')"))
}

func TestScriptDuplicateRegistrationIsNoOp(t *testing.T) {
	r := testStage(t)
	r.mustExecute(t, `
		var count = 0;
		function bump() { count++; }
		stage.addEventListener('go', bump);
		stage.addEventListener('go', bump, false, 99);
		stage.dispatchEvent(new Event('go'));
	`)
	assert.Equal(t, int64(1), r.eval(t, "count"))
}

func TestScriptRemoveEventListener(t *testing.T) {
	r := testStage(t)
	r.mustExecute(t, `
		var count = 0;
		function bump() { count++; }
		stage.addEventListener('go', bump);
		stage.dispatchEvent(new Event('go'));
		stage.removeEventListener('go', bump);
		stage.dispatchEvent(new Event('go'));
		var has = stage.hasEventListener('go');
	`)
	assert.Equal(t, int64(1), r.eval(t, "count"))
	assert.Equal(t, false, r.eval(t, "has"))
}

func TestScriptHasAndWillTrigger(t *testing.T) {
	r := testStage(t)
	r.mustExecute(t, `
		var hero = stage.getChildByName('world').getChildByName('hero');
		stage.addEventListener('go', function() {});
	`)
	assert.Equal(t, false, r.eval(t, "stage.getChildByName('world').getChildByName('hero').hasEventListener('go')"))
	assert.Equal(t, true, r.eval(t, "stage.getChildByName('world').getChildByName('hero').willTrigger('go')"))
	assert.Equal(t, false, r.eval(t, "stage.willTrigger('other')"))
}

func TestScriptPreventDefault(t *testing.T) {
	r := testStage(t)
	r.mustExecute(t, `
		stage.addEventListener('go', function(e) { e.preventDefault(); });
		var handledCancelable = stage.dispatchEvent(new Event('go', false, true));
		var handledPlain = stage.dispatchEvent(new Event('go', false, false));
	`)
	assert.Equal(t, false, r.eval(t, "handledCancelable"))
	assert.Equal(t, true, r.eval(t, "handledPlain"))
}

func TestScriptNonCallableListenerThrows(t *testing.T) {
	r := testStage(t)
	_, err := r.Execute(`stage.addEventListener('go', 42);`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listener is not a function")
	assert.Equal(t, false, r.eval(t, "stage.hasEventListener('go')"))

	_, err = r.Execute(`stage.removeEventListener('go', 'nope');`)
	require.Error(t, err)
}

func TestScriptDispatchInvalidEventThrows(t *testing.T) {
	r := testStage(t)
	r.mustExecute(t, `
		var fired = false;
		stage.addEventListener('go', function() { fired = true; });
	`)
	_, err := r.Execute(`stage.dispatchEvent({type: 'go'});`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be Event values")

	_, err = r.Execute(`stage.dispatchEvent(5);`)
	require.Error(t, err)
	assert.Equal(t, false, r.eval(t, "fired"))
}

func TestScriptListenerThrowReachesDispatcher(t *testing.T) {
	r := testStage(t)
	r.mustExecute(t, `
		var after = false;
		stage.addEventListener('go', function() { throw new Error('boom'); }, false, 1);
		stage.addEventListener('go', function() { after = true; });
		var caught = '';
		try {
			stage.dispatchEvent(new Event('go'));
		} catch (e) {
			caught = e.message;
		}
	`)
	assert.Equal(t, "boom", r.eval(t, "caught"))
	assert.Equal(t, false, r.eval(t, "after"))
}

func TestScriptUseWeakReferenceIsIgnored(t *testing.T) {
	r := testStage(t)
	r.mustExecute(t, `
		var fired = false;
		stage.addEventListener('go', function() { fired = true; }, false, 0, true);
		stage.dispatchEvent(new Event('go'));
	`)
	assert.Equal(t, true, r.eval(t, "fired"))
}

func TestScriptEventAccessors(t *testing.T) {
	r := testStage(t)
	r.mustExecute(t, `
		var e = new Event('go', true, false);
		var before = e.currentTarget;
		var seen = null;
		stage.addEventListener('go', function(ev) { seen = ev.currentTarget.name; });
		stage.dispatchEvent(e);
		var afterPhase = e.eventPhase;
		var target = e.target.name;
	`)
	assert.Nil(t, r.eval(t, "before"))
	assert.Equal(t, "stage", r.eval(t, "seen"))
	assert.Equal(t, int64(0), r.eval(t, "afterPhase"))
	assert.Equal(t, "stage", r.eval(t, "target"))
	assert.Equal(t, "go", r.eval(t, "e.type"))
	assert.Equal(t, true, r.eval(t, "e.bubbles"))
	assert.Equal(t, `[Event type="go" bubbles=true cancelable=false]`, r.eval(t, "e.toString()"))
}

func TestScriptTreeMutation(t *testing.T) {
	r := testStage(t)
	r.mustExecute(t, `
		var world = stage.getChildByName('world');
		var hero = world.getChildByName('hero');
		stage.removeChild(world);
		var detachedParent = world.parent;
		stage.addChild(world);
	`)
	assert.Nil(t, r.eval(t, "detachedParent"))
	assert.Equal(t, "stage", r.eval(t, "world.parent.name"))
	assert.Equal(t, int64(1), r.eval(t, "stage.numChildren"))
}

func TestBroadcastReachesScriptListeners(t *testing.T) {
	r := testStage(t)
	r.mustExecute(t, `
		var frames = [];
		stage.addEventListener('enterFrame', function(e) { frames.push('stage:' + e.eventPhase); });
		stage.getChildByName('world').addEventListener('enterFrame', function(e) { frames.push('world:' + e.eventPhase); });
	`)
	require.NoError(t, r.Broadcast("enterFrame"))
	// Tree-independent: both fire at-target, no capture or bubble walk.
	assert.Equal(t, "stage:2,world:2", r.eval(t, "frames.join(',')"))
}
