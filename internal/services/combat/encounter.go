// Package combat implements the turn-based combat sub-engine. An
// Encounter is an explicit continuation object: the traversal engine
// creates one per enemy, suspends while the caller gathers an ability
// choice or a challenge answer, and feeds the result back in. Nothing
// here touches global state.
package combat

import (
	"fmt"

	"github.com/dunnston/dungeongraph/internal/dice"
	combatdomain "github.com/dunnston/dungeongraph/internal/domain/combat"
	"github.com/dunnston/dungeongraph/internal/domain/play"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

// State is where an encounter is suspended, or how it ended
type State string

const (
	// StateSelectAction waits for an ability choice or a flee attempt
	StateSelectAction State = "select_action"
	// StateChallenge waits for the answer gating the chosen ability
	StateChallenge State = "challenge"
	// StateFleeChallenge waits for the answer boosting the flee roll
	StateFleeChallenge State = "flee_challenge"

	StateVictory State = "victory"
	StateDefeat  State = "defeat"
	StateFled    State = "fled"
)

// Terminal reports whether the encounter is over
func (s State) Terminal() bool {
	return s == StateVictory || s == StateDefeat || s == StateFled
}

// Result is what a resolution step hands back to the traversal engine
type Result struct {
	State State
	Lines []string
}

// Config holds Encounter dependencies
type Config struct {
	Enemy     *combatdomain.Enemy
	Player    *play.RunState
	Abilities []combatdomain.Ability
	Roller    dice.Roller
}

// Encounter is one player-versus-one-enemy fight
type Encounter struct {
	enemy     *combatdomain.Enemy
	enemyHP   int
	player    *play.RunState
	abilities []combatdomain.Ability
	roller    dice.Roller

	state   State
	pending *combatdomain.Ability
}

// NewEncounter creates an encounter suspended at action selection
func NewEncounter(cfg *Config) *Encounter {
	if cfg == nil {
		panic("config is required")
	}
	if cfg.Enemy == nil {
		panic("enemy is required")
	}
	if cfg.Player == nil {
		panic("player state is required")
	}
	if cfg.Roller == nil {
		panic("dice roller is required")
	}

	abilities := cfg.Abilities
	if len(abilities) == 0 {
		abilities = combatdomain.DefaultAbilities()
	}

	return &Encounter{
		enemy:     cfg.Enemy,
		enemyHP:   cfg.Enemy.BaseHealth,
		player:    cfg.Player,
		abilities: abilities,
		roller:    cfg.Roller,
		state:     StateSelectAction,
	}
}

// State returns the current suspension point or terminal state
func (e *Encounter) State() State {
	return e.state
}

// Enemy returns the enemy definition
func (e *Encounter) Enemy() *combatdomain.Enemy {
	return e.enemy
}

// EnemyHP returns the enemy's remaining health
func (e *Encounter) EnemyHP() int {
	return e.enemyHP
}

// Abilities returns the player's available actions
func (e *Encounter) Abilities() []combatdomain.Ability {
	return e.abilities
}

// PendingAction returns the action type of the ability awaiting its
// challenge, so the caller can fetch a matching question.
func (e *Encounter) PendingAction() combatdomain.ActionType {
	if e.pending == nil {
		return ""
	}
	return e.pending.Action
}

// SelectAbility commits to an ability and moves to the challenge. An
// unknown id or insufficient mana is rejected with no state change and
// no turn consumed.
func (e *Encounter) SelectAbility(id string) error {
	if e.state != StateSelectAction {
		return apperr.InvalidArgument(fmt.Sprintf("cannot select an ability in state '%s'", e.state))
	}

	var chosen *combatdomain.Ability
	for i := range e.abilities {
		if e.abilities[i].ID == id {
			chosen = &e.abilities[i]
			break
		}
	}
	if chosen == nil {
		return apperr.InvalidArgument(fmt.Sprintf("unknown ability '%s'", id))
	}
	if chosen.ManaCost > e.player.Mana {
		return apperr.Validationf("not enough mana for %s: need %d, have %d",
			chosen.Name, chosen.ManaCost, e.player.Mana)
	}

	e.pending = chosen
	e.state = StateChallenge
	return nil
}

// ResolveTurn applies the pending ability gated by the challenge
// answer, then lets the enemy retaliate if it still stands. A wrong
// answer means the action fails outright; the mana is spent either way.
func (e *Encounter) ResolveTurn(answerCorrect bool) (*Result, error) {
	if e.state != StateChallenge {
		return nil, apperr.InvalidArgument(fmt.Sprintf("cannot resolve a turn in state '%s'", e.state))
	}
	ability := e.pending
	e.pending = nil

	var lines []string
	e.player.Mana -= ability.ManaCost

	if answerCorrect {
		applied, err := e.applyAbility(ability)
		if err != nil {
			return nil, err
		}
		lines = append(lines, applied...)
	} else {
		lines = append(lines, fmt.Sprintf("Your %s falters and fails.", ability.Name))
	}

	if e.enemyHP <= 0 {
		e.state = StateVictory
		lines = append(lines, fmt.Sprintf("%s is defeated!", e.enemy.Name))
		return &Result{State: e.state, Lines: lines}, nil
	}

	retaliation, err := e.enemyRetaliates()
	if err != nil {
		return nil, err
	}
	lines = append(lines, retaliation...)

	if e.player.Health <= 0 {
		e.state = StateDefeat
		lines = append(lines, "You have been defeated.")
	} else {
		e.state = StateSelectAction
	}
	return &Result{State: e.state, Lines: lines}, nil
}

func (e *Encounter) applyAbility(ability *combatdomain.Ability) ([]string, error) {
	value := ability.BaseValue + int(float64(e.scalingScore(ability.ScalingStat))*ability.ScalingRate)

	if ability.Effect == combatdomain.EffectHeal {
		e.player.Heal(value)
		return []string{fmt.Sprintf("%s restores %d health (now %d/%d).",
			ability.Name, value, e.player.Health, e.player.MaxHealth)}, nil
	}

	crit, err := e.roller.Chance(e.player.Stats.CritChance)
	if err != nil {
		return nil, err
	}
	if crit {
		value *= 2
	}
	e.enemyHP -= value
	if e.enemyHP < 0 {
		e.enemyHP = 0
	}

	line := fmt.Sprintf("%s hits %s for %d damage.", ability.Name, e.enemy.Name, value)
	if crit {
		line = fmt.Sprintf("Critical! %s hits %s for %d damage.", ability.Name, e.enemy.Name, value)
	}
	return []string{line}, nil
}

func (e *Encounter) enemyRetaliates() ([]string, error) {
	dodged, err := e.roller.Chance(e.player.Stats.DodgeChance)
	if err != nil {
		return nil, err
	}
	if dodged {
		return []string{fmt.Sprintf("You dodge %s's attack.", e.enemy.Name)}, nil
	}

	damage := e.enemy.BaseAttack - e.player.Stats.Defense
	if damage < 1 {
		damage = 1
	}
	e.player.ApplyDamage(damage)
	return []string{fmt.Sprintf("%s hits you for %d damage (now %d/%d).",
		e.enemy.Name, damage, e.player.Health, e.player.MaxHealth)}, nil
}

func (e *Encounter) scalingScore(stat string) int {
	switch stat {
	case "strength":
		return e.player.Stats.Strength
	case "intelligence":
		return e.player.Stats.Intelligence
	case "dexterity":
		return e.player.Stats.Dexterity
	case "charisma":
		return e.player.Stats.Charisma
	default:
		return 0
	}
}

// BeginFlee moves from action selection to the flee challenge
func (e *Encounter) BeginFlee() error {
	if e.state != StateSelectAction {
		return apperr.InvalidArgument(fmt.Sprintf("cannot flee in state '%s'", e.state))
	}
	e.state = StateFleeChallenge
	return nil
}

// ResolveFlee rolls the escape attempt. A correct answer adds the
// player's dexterity to the d20; failing the roll costs
// max(1, enemyAttack - floor(defense/2)) damage but the player escapes
// either way unless the damage kills them.
func (e *Encounter) ResolveFlee(answerCorrect bool) (*Result, error) {
	if e.state != StateFleeChallenge {
		return nil, apperr.InvalidArgument(fmt.Sprintf("cannot resolve a flee in state '%s'", e.state))
	}

	bonus := 0
	if answerCorrect {
		bonus = e.player.Stats.Dexterity
	}
	roll, err := e.roller.Roll(1, 20, bonus)
	if err != nil {
		return nil, err
	}

	dc := 10 + e.enemy.BaseAttack/2
	lines := []string{fmt.Sprintf("Escape roll: %d vs DC %d.", roll.Total, dc)}

	if roll.Total >= dc {
		e.state = StateFled
		lines = append(lines, fmt.Sprintf("You slip away from %s unharmed.", e.enemy.Name))
		return &Result{State: e.state, Lines: lines}, nil
	}

	damage := e.enemy.BaseAttack - e.player.Stats.Defense/2
	if damage < 1 {
		damage = 1
	}
	e.player.ApplyDamage(damage)
	lines = append(lines, fmt.Sprintf("%s catches you as you run for %d damage (now %d/%d).",
		e.enemy.Name, damage, e.player.Health, e.player.MaxHealth))

	if e.player.Health <= 0 {
		e.state = StateDefeat
		lines = append(lines, "You have been defeated.")
	} else {
		e.state = StateFled
		lines = append(lines, "You escape, bleeding.")
	}
	return &Result{State: e.state, Lines: lines}, nil
}
