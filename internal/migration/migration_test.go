package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSteps(t *testing.T) {
	steps := Steps()
	assert.Equal(t, "create_shared_analyses", steps[0].Name)

	names := make(map[string]bool)
	for _, step := range steps {
		assert.False(t, names[step.Name], "duplicate step %s", step.Name)
		names[step.Name] = true
		assert.Contains(t, step.SQL, "IF NOT EXISTS", "step %s must be idempotent", step.Name)
		assert.True(t, strings.Contains(step.SQL, "shared_analyses"))
	}
}

func TestRunnerVersion(t *testing.T) {
	assert.Equal(t, "1.0.0", NewRunner().Version())
}
