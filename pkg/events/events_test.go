package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "mindcare.crisis.raised.psy-1", CrisisRaised("psy-1"))
	assert.Equal(t, "mindcare.crisis.status.crisis_1_abc", CrisisStatus("crisis_1_abc"))
	assert.Equal(t, "mindcare.message.new.u-2", MessageNew("u-2"))
	assert.Equal(t, "mindcare.message.new.*", AllMessageNew)
}

func TestTarget(t *testing.T) {
	assert.Equal(t, "psy-1", Target(CrisisRaised("psy-1")))
	assert.Equal(t, "", Target("nodots"))
}

type failing struct{}

func (failing) Publish(string, []byte) error { return errors.New("down") }

func TestEmit(t *testing.T) {
	rec := &Recorder{}
	Emit(rec, MessageNew("u"), "msg_1")
	assert.Equal(t, []Event{{Subject: "mindcare.message.new.u", Data: "msg_1"}}, rec.Events)

	// neither of these may panic
	Emit(failing{}, "x", "y")
	Emit(nil, "x", "y")
}
