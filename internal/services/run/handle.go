package run

import (
	"fmt"
	"sync/atomic"

	combatsvc "github.com/dunnston/dungeongraph/internal/services/combat"

	"github.com/dunnston/dungeongraph/internal/domain/level"
	"github.com/dunnston/dungeongraph/internal/domain/play"
	"github.com/dunnston/dungeongraph/internal/domain/quiz"
)

// waiting is the suspension point a handle is parked at
type waiting int

const (
	waitingNone waiting = iota
	waitingContinue
	waitingChoice
	waitingRoll
	waitingCheckAnswer
	waitingQuestion
	waitingTake
	waitingCombatAction
	waitingCombatAnswer
	waitingFleeAnswer
)

// encounterSpec is one flattened single-enemy encounter pending in a
// Combat or Boss node
type encounterSpec struct {
	ref            string
	levelOverride  int
	healthOverride int
}

// nodeRewards is a Combat or Boss node's reward block, granted exactly
// once after the node's last encounter is won
type nodeRewards struct {
	xp    int
	gold  int
	items []level.LootItem
}

// Handle owns one run's state for its lifetime. It is not safe for
// concurrent use: overlapping Resume calls are rejected, not serialized.
type Handle struct {
	id       string
	playerID string
	level    *level.Level
	state    *play.RunState

	busy     atomic.Bool
	aborted  bool
	terminal play.Outcome

	wait     waiting
	question *quiz.Question

	encounter      *combatsvc.Encounter
	encounterQueue []encounterSpec
	combatRewards  *nodeRewards

	diagnostics []string
}

// ID returns the handle's unique id
func (h *Handle) ID() string {
	return h.id
}

// State exposes the run state for inspection. Callers must not mutate it.
func (h *Handle) State() *play.RunState {
	return h.state
}

// Diagnostics returns non-fatal issues recorded during the run, such as
// ambiguous branch matches and degraded provider lookups.
func (h *Handle) Diagnostics() []string {
	return h.diagnostics
}

func (h *Handle) note(format string, args ...any) {
	h.diagnostics = append(h.diagnostics, fmt.Sprintf(format, args...))
}

func (h *Handle) clearCombat() {
	h.encounter = nil
	h.encounterQueue = nil
	h.combatRewards = nil
}

// actions builds the action list for the current suspension point
func (h *Handle) actions() []Action {
	switch h.wait {
	case waitingContinue:
		return []Action{{Kind: ActionContinue, Label: "Continue"}}
	case waitingRoll:
		return []Action{{Kind: ActionRoll, Label: "Roll"}}
	case waitingTake:
		return []Action{{Kind: ActionTake, Label: "Take"}}
	case waitingChoice:
		node := h.level.NodeByID(h.state.CurrentNodeID)
		if node == nil || node.Choice == nil {
			return nil
		}
		actions := make([]Action, 0, len(node.Choice.Options))
		for _, opt := range node.Choice.Options {
			actions = append(actions, Action{Kind: ActionOption, ID: opt.ID, Label: opt.Text})
		}
		return actions
	case waitingCheckAnswer, waitingQuestion, waitingCombatAnswer, waitingFleeAnswer:
		if h.question == nil {
			return nil
		}
		return answerActions(h.question)
	case waitingCombatAction:
		if h.encounter == nil {
			return nil
		}
		abilities := h.encounter.Abilities()
		actions := make([]Action, 0, len(abilities)+1)
		for _, ab := range abilities {
			label := ab.Name
			if ab.ManaCost > 0 {
				label = fmt.Sprintf("%s (%d mana)", ab.Name, ab.ManaCost)
			}
			actions = append(actions, Action{Kind: ActionAbility, ID: ab.ID, Label: label})
		}
		return append(actions, Action{Kind: ActionFlee, Label: "Flee"})
	default:
		return nil
	}
}
