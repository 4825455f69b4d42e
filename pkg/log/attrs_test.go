package log_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/floeworks/floe/pkg/api"
	"github.com/floeworks/floe/pkg/log"
)

type errStub string

func TestWorkflowID(t *testing.T) {
	attr := log.WorkflowID("wf-123")
	assertAttrEqual(t, attr, "workflow_id", "wf-123")
}

func TestExecutionID(t *testing.T) {
	attr := log.ExecutionID("exec-456")
	assertAttrEqual(t, attr, "execution_id", "exec-456")
}

func TestStepID(t *testing.T) {
	attr := log.StepID("step-abc")
	assertAttrEqual(t, attr, "step_id", "step-abc")
}

func TestStepType(t *testing.T) {
	attr := log.StepType(api.StepTypeNotification)
	assertAttrEqual(t, attr, "step_type", "notification")
}

func TestStatus(t *testing.T) {
	attr := log.Status(api.ExecutionCompleted)
	assertAttrEqual(t, attr, "status", "completed")
}

func TestAttempt(t *testing.T) {
	attr := log.Attempt(3)
	assert.Equal(t, "attempt", attr.Key)
	assert.Equal(t, int64(3), attr.Value.Int64())
}

func TestError(t *testing.T) {
	attr := log.Error(nil)
	assertAttrEqual(t, attr, "error", "")

	attr = log.Error(errStub("boom"))
	assertAttrEqual(t, attr, "error", "boom")
}

func TestErrorString(t *testing.T) {
	attr := log.ErrorString("badness")
	assertAttrEqual(t, attr, "error", "badness")
}

func (e errStub) Error() string { return string(e) }

func assertAttrEqual(t *testing.T, attr slog.Attr, key, value string) {
	t.Helper()
	assert.Equal(t, key, attr.Key)
	assert.Equal(t, value, attr.Value.String())
}
