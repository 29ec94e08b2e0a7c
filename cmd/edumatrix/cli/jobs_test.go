package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumatrix/edumatrix/jobs"
)

func TestBuildTask(t *testing.T) {
	task, err := BuildTask(jobs.TaskAuditPrune)
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskAuditPrune, task.Type())

	_, err = BuildTask(jobs.TaskAuthzDenied)
	assert.Error(t, err)
}

func TestNilCLIIsRejected(t *testing.T) {
	var c *JobsCLI
	_, err := c.Trigger(t.Context(), jobs.TaskAuditPrune)
	assert.Error(t, err)
	_, err = c.InspectQueues(t.Context())
	assert.Error(t, err)
}
