package parser

import (
	"errors"
	"testing"

	"abtest/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.StartMetric("signup", "signup"))
	require.NoError(t, b.AddVariant("control", 100, 10, "row 2"))
	require.NoError(t, b.AddVariant("treatment", 100, 12, "row 3"))

	set, err := b.Finish()
	require.NoError(t, err)
	m, ok := set.Get("signup")
	require.True(t, ok)
	assert.Len(t, m.Variants, 2)
}

func TestBuilder_ValidationOrder(t *testing.T) {
	b := NewBuilder()
	err := b.AddVariant("orphan", 10, 1, "row 1")
	assert.True(t, errors.Is(err, core.ErrFormat))

	require.NoError(t, b.StartMetric("m", "m"))
	err = b.AddVariant("", 10, 1, "row 2")
	assert.True(t, errors.Is(err, core.ErrFormat))

	err = b.AddVariant("over", 10, 11, "row 3")
	assert.True(t, errors.Is(err, core.ErrRange))

	// a rejected variant does not reserve its name
	require.NoError(t, b.AddVariant("over", 10, 9, "row 4"))
}
