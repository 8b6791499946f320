package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardDisabled(t *testing.T) {
	g := NewGuard("  ")
	assert.False(t, g.Enabled())
	assert.NoError(t, g.Check(""))
	assert.NoError(t, g.Check("anything"))
}

func TestGuardCheck(t *testing.T) {
	hash, err := HashPIN("4821")
	require.NoError(t, err)

	g := NewGuard(hash)
	assert.True(t, g.Enabled())
	assert.NoError(t, g.Check("4821"))
	assert.ErrorIs(t, g.Check("4822"), ErrInvalidPIN)
	assert.ErrorIs(t, g.Check(""), ErrInvalidPIN)

	g.SetHash("")
	assert.NoError(t, g.Check("4822"))
}

func TestHashPIN(t *testing.T) {
	_, err := HashPIN(" ")
	assert.ErrorIs(t, err, ErrEmptyPIN)

	a, err := HashPIN("1234")
	require.NoError(t, err)
	b, err := HashPIN("1234")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
