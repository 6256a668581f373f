package dice_test

import (
	"testing"

	"github.com/dunnston/dungeongraph/internal/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomRoller_Roll(t *testing.T) {
	roller := dice.NewRandomRoller()

	for i := 0; i < 100; i++ {
		result, err := roller.Roll(1, 20, 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Total, 1)
		assert.LessOrEqual(t, result.Total, 20)
		assert.Len(t, result.Rolls, 1)
		assert.Equal(t, result.RawTotal, result.Total)
	}
}

func TestRandomRoller_RollWithBonus(t *testing.T) {
	roller := dice.NewRandomRoller()

	result, err := roller.Roll(2, 6, 3)
	require.NoError(t, err)
	assert.Len(t, result.Rolls, 2)
	assert.Equal(t, result.RawTotal+3, result.Total)
	assert.GreaterOrEqual(t, result.RawTotal, 2)
	assert.LessOrEqual(t, result.RawTotal, 12)
}

func TestRandomRoller_InvalidInput(t *testing.T) {
	roller := dice.NewRandomRoller()

	_, err := roller.Roll(0, 20, 0)
	assert.Error(t, err)

	_, err = roller.Roll(1, 1, 0)
	assert.Error(t, err)
}

func TestRandomRoller_CritDetection(t *testing.T) {
	roller := dice.NewRandomRoller()

	sawCrit := false
	sawFumble := false
	for i := 0; i < 2000 && !(sawCrit && sawFumble); i++ {
		result, err := roller.Roll(1, 20, 0)
		require.NoError(t, err)
		if result.IsCrit {
			sawCrit = true
			assert.Equal(t, 20, result.Rolls[0])
		}
		if result.IsFumble {
			sawFumble = true
			assert.Equal(t, 1, result.Rolls[0])
		}
	}
	assert.True(t, sawCrit, "expected at least one natural 20 in 2000 rolls")
	assert.True(t, sawFumble, "expected at least one natural 1 in 2000 rolls")
}

func TestRandomRoller_Chance(t *testing.T) {
	roller := dice.NewRandomRoller()

	never, err := roller.Chance(0)
	require.NoError(t, err)
	assert.False(t, never)

	always, err := roller.Chance(1)
	require.NoError(t, err)
	assert.True(t, always)

	_, err = roller.Chance(1.5)
	assert.Error(t, err)
}
