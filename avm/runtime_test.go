package avm

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embervm/ember/display"
)

func TestExecuteReturnsValue(t *testing.T) {
	r := NewRuntime()
	v, err := r.Execute("1 + 2")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.Export())
}

func TestExecuteRecordsErrors(t *testing.T) {
	r := NewRuntime()
	_, err := r.Execute("this is not javascript")
	require.Error(t, err)
	assert.Len(t, r.Errors(), 1)
}

func TestConsoleGoesToLogger(t *testing.T) {
	r := NewRuntime()
	log, hook := test.NewNullLogger()
	r.SetLogger(log)

	r.mustExecute(t, `console.log('hello', 'world'); console.warn('careful');`)

	require.Len(t, hook.Entries, 2)
	assert.Equal(t, "hello world", hook.Entries[0].Message)
	assert.Equal(t, logrus.WarnLevel, hook.Entries[1].Level)
}

func TestRuntimesDoNotShareRegistries(t *testing.T) {
	stage1 := display.NewObject("stage")
	stage2 := display.NewObject("stage")

	r1 := NewRuntime()
	r1.BindStage(stage1)
	r2 := NewRuntime()
	r2.BindStage(stage2)

	r1.mustExecute(t, `stage.addEventListener('go', function() {});`)
	assert.Equal(t, true, r1.eval(t, "stage.hasEventListener('go')"))
	assert.Equal(t, false, r2.eval(t, "stage.hasEventListener('go')"))
	assert.Len(t, r1.Dispatcher().BroadcastTargets("go"), 1)
	assert.Empty(t, r2.Dispatcher().BroadcastTargets("go"))
}

func TestEventPhaseConstants(t *testing.T) {
	r := NewRuntime()
	assert.Equal(t, int64(1), r.eval(t, "EventPhase.CAPTURING_PHASE"))
	assert.Equal(t, int64(2), r.eval(t, "EventPhase.AT_TARGET"))
	assert.Equal(t, int64(3), r.eval(t, "EventPhase.BUBBLING_PHASE"))
}
