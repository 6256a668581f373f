package dice

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// randomRoller implements Roller using math/rand
type randomRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomRoller creates a new random dice roller
func NewRandomRoller() Roller {
	return &randomRoller{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Roll implements Roller.Roll
func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	if count < 1 {
		return nil, errors.New("invalid dice count")
	}
	if sides < 2 {
		return nil, errors.New("invalid dice size")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	result := &RollResult{
		Bonus: bonus,
		Count: count,
		Sides: sides,
		Rolls: make([]int, 0, count),
	}

	for i := 0; i < count; i++ {
		roll := r.rng.Intn(sides) + 1
		result.Rolls = append(result.Rolls, roll)
		result.RawTotal += roll
	}
	result.Total = result.RawTotal + bonus

	// Crit/fumble only applies to a single d20
	if count == 1 && sides == 20 {
		result.IsCrit = result.Rolls[0] == 20
		result.IsFumble = result.Rolls[0] == 1
	}

	return result, nil
}

// Chance implements Roller.Chance
func (r *randomRoller) Chance(probability float64) (bool, error) {
	if probability < 0 || probability > 1 {
		return false, errors.New("probability must be between 0 and 1")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rng.Float64() < probability, nil
}
