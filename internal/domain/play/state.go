// Package play holds the mutable per-run player state and the rewards
// summary handed to the stat sink when a run ends.
package play

import (
	"time"

	"github.com/dunnston/dungeongraph/internal/domain/level"
)

// Stats is the player's attribute block supplied by the character-stat
// service before a run. The raw attribute value is used directly as a
// check modifier; there is no halved D&D-style modifier here.
type Stats struct {
	Level        int     `json:"level"`
	MaxHealth    int     `json:"max_health"`
	MaxMana      int     `json:"max_mana"`
	Strength     int     `json:"strength"`
	Intelligence int     `json:"intelligence"`
	Dexterity    int     `json:"dexterity"`
	Charisma     int     `json:"charisma"`
	Defense      int     `json:"defense"`
	CritChance   float64 `json:"crit_chance"`
	DodgeChance  float64 `json:"dodge_chance"`
}

// Score returns the raw attribute value for an ability score
func (s Stats) Score(ability level.AbilityScore) int {
	switch ability {
	case level.AbilityStrength:
		return s.Strength
	case level.AbilityIntelligence:
		return s.Intelligence
	case level.AbilityDexterity:
		return s.Dexterity
	case level.AbilityCharisma:
		return s.Charisma
	default:
		return 0
	}
}

// RunState is the mutable record for one traversal of a level. It is
// owned exclusively by the run handle; it is never shared between runs.
type RunState struct {
	CurrentNodeID string
	Visited       []string
	Health        int
	MaxHealth     int
	Mana          int
	Stats         Stats
	TotalXP       int
	TotalGold     int
	Inventory     []level.LootItem
}

// NewRunState builds the starting state for a run
func NewRunState(stats Stats) *RunState {
	return &RunState{
		Health:    stats.MaxHealth,
		MaxHealth: stats.MaxHealth,
		Mana:      stats.MaxMana,
		Stats:     stats,
	}
}

// Visit records a node visit, preserving order. Revisits are recorded
// again: the visited list is a trace, not a set.
func (s *RunState) Visit(nodeID string) {
	s.CurrentNodeID = nodeID
	s.Visited = append(s.Visited, nodeID)
}

// VisitCount returns how many times a node has been entered
func (s *RunState) VisitCount(nodeID string) int {
	count := 0
	for _, id := range s.Visited {
		if id == nodeID {
			count++
		}
	}
	return count
}

// ApplyDamage reduces health, floored at zero, and reports whether the
// player is still standing.
func (s *RunState) ApplyDamage(damage int) bool {
	s.Health -= damage
	if s.Health < 0 {
		s.Health = 0
	}
	return s.Health > 0
}

// Heal restores health up to the maximum
func (s *RunState) Heal(amount int) {
	s.Health += amount
	if s.Health > s.MaxHealth {
		s.Health = s.MaxHealth
	}
}

// AddRewards grants xp, gold, and items
func (s *RunState) AddRewards(xp, gold int, items []level.LootItem) {
	s.TotalXP += xp
	s.TotalGold += gold
	s.Inventory = append(s.Inventory, items...)
}

// Outcome is the terminal result of a run
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeDeadEnd   Outcome = "dead_end"
	OutcomeDefeated  Outcome = "defeated"
)

// RewardSummary is the final tally presented to the player
type RewardSummary struct {
	XP    int              `json:"xp"`
	Gold  int              `json:"gold"`
	Items []level.LootItem `json:"items,omitempty"`
}

// RunReport is what the engine hands to the stat sink when a run ends.
// Aborted runs are never reported.
type RunReport struct {
	ID          string           `json:"id"`
	PlayerID    string           `json:"player_id"`
	LevelID     string           `json:"level_id"`
	Outcome     Outcome          `json:"outcome"`
	XPDelta     int              `json:"xp_delta"`
	GoldDelta   int              `json:"gold_delta"`
	ItemsGained []level.LootItem `json:"items_gained,omitempty"`
	NewHealth   int              `json:"new_health"`
	NodesSeen   int              `json:"nodes_seen"`
	CreatedAt   time.Time        `json:"created_at"`
}
