package mockdice

import (
	"fmt"
	"sync"

	"github.com/dunnston/dungeongraph/internal/dice"
)

// ManualMockRoller implements dice.Roller for testing with predetermined results
type ManualMockRoller struct {
	mu         sync.Mutex
	rolls      []int
	rollIndex  int
	checks     []bool
	checkIndex int
}

// NewManualMockRoller creates a new mock dice roller
func NewManualMockRoller() *ManualMockRoller {
	return &ManualMockRoller{}
}

// SetNextRoll appends the next roll result
func (m *ManualMockRoller) SetNextRoll(roll int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = append(m.rolls, roll)
}

// SetRolls sets the predetermined roll results
func (m *ManualMockRoller) SetRolls(rolls []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = rolls
	m.rollIndex = 0
}

// SetChecks sets the predetermined Chance outcomes
func (m *ManualMockRoller) SetChecks(checks []bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks = checks
	m.checkIndex = 0
}

// Reset clears all predetermined results
func (m *ManualMockRoller) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = nil
	m.rollIndex = 0
	m.checks = nil
	m.checkIndex = 0
}

func (m *ManualMockRoller) getNextRoll() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rollIndex >= len(m.rolls) {
		return 0, fmt.Errorf("no more predetermined rolls available (used %d of %d)", m.rollIndex, len(m.rolls))
	}

	roll := m.rolls[m.rollIndex]
	m.rollIndex++
	return roll, nil
}

// Roll implements dice.Roller using the predetermined results. Each die in a
// multi-die roll consumes one predetermined value.
func (m *ManualMockRoller) Roll(count, sides, bonus int) (*dice.RollResult, error) {
	if count < 1 {
		return nil, fmt.Errorf("invalid dice count")
	}

	result := &dice.RollResult{
		Bonus: bonus,
		Count: count,
		Sides: sides,
		Rolls: make([]int, 0, count),
	}

	for i := 0; i < count; i++ {
		roll, err := m.getNextRoll()
		if err != nil {
			return nil, err
		}
		result.Rolls = append(result.Rolls, roll)
		result.RawTotal += roll
	}
	result.Total = result.RawTotal + bonus

	if count == 1 && sides == 20 {
		result.IsCrit = result.Rolls[0] == 20
		result.IsFumble = result.Rolls[0] == 1
	}

	return result, nil
}

// Chance implements dice.Roller using the predetermined check outcomes.
// When no outcomes were set it returns false, so tests that do not care
// about crits or dodges need no setup.
func (m *ManualMockRoller) Chance(probability float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.checkIndex >= len(m.checks) {
		return false, nil
	}

	check := m.checks[m.checkIndex]
	m.checkIndex++
	return check, nil
}
