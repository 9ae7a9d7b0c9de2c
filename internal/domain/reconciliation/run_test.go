package reconciliation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRun(t *testing.T) {
	t.Run("starts an audit record", func(t *testing.T) {
		run, err := NewRun(OperationCleanup, "p-ops", `{"retention_days":30}`)

		require.NoError(t, err)
		assert.Equal(t, OperationCleanup, run.Operation)
		assert.Equal(t, "p-ops", run.Actor)
		assert.False(t, run.StartedAt.IsZero())
		assert.Nil(t, run.FinishedAt)
	})

	t.Run("rejects unknown operation", func(t *testing.T) {
		_, err := NewRun(Operation("prune"), "p-ops", "{}")

		assert.Error(t, err)
	})
}

func TestRun_Finish(t *testing.T) {
	run, err := NewRun(OperationImport, "p-ops", "{}")
	require.NoError(t, err)

	run.Finish(10, 8, 2, `{"created":5}`)

	assert.Equal(t, 10, run.TotalCount)
	assert.Equal(t, 8, run.SucceededCount)
	assert.Equal(t, 2, run.FailedCount)
	require.NotNil(t, run.FinishedAt)
	assert.Equal(t, 2, run.Version)
}
