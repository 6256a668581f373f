// Package combat defines enemy and ability types shared by the combat
// sub-engine and the enemy catalog.
package combat

// Enemy is an enemy definition from the catalog. Combat and Boss nodes
// reference enemies by Ref.
type Enemy struct {
	Ref         string   `json:"ref" yaml:"ref"`
	Name        string   `json:"name" yaml:"name"`
	Level       int      `json:"level,omitempty" yaml:"level,omitempty"`
	BaseHealth  int      `json:"base_health" yaml:"base_health"`
	BaseAttack  int      `json:"base_attack" yaml:"base_attack"`
	BaseDefense int      `json:"base_defense" yaml:"base_defense"`
	XPReward    int      `json:"xp_reward,omitempty" yaml:"xp_reward,omitempty"`
	GoldDropMin int      `json:"gold_drop_min,omitempty" yaml:"gold_drop_min,omitempty"`
	GoldDropMax int      `json:"gold_drop_max,omitempty" yaml:"gold_drop_max,omitempty"`
	Attacks     []string `json:"attacks,omitempty" yaml:"attacks,omitempty"`
	IsBoss      bool     `json:"is_boss,omitempty" yaml:"is_boss,omitempty"`
}

// ActionType tags an ability so the question provider can serve a
// challenge matching the action being attempted.
type ActionType string

const (
	ActionBasicAttack ActionType = "basic_attack"
	ActionSpell       ActionType = "spell"
	ActionHeal        ActionType = "heal"
	ActionDodge       ActionType = "dodge"
)

// EffectType is what an ability does when its challenge is answered
// correctly.
type EffectType string

const (
	EffectDamage EffectType = "damage"
	EffectHeal   EffectType = "heal"
)

// Ability is a combat action available to the player
type Ability struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Action      ActionType `json:"action" yaml:"action"`
	Effect      EffectType `json:"effect" yaml:"effect"`
	ManaCost    int        `json:"mana_cost" yaml:"mana_cost"`
	BaseValue   int        `json:"base_value" yaml:"base_value"`
	ScalingStat string     `json:"scaling_stat,omitempty" yaml:"scaling_stat,omitempty"` // strength, intelligence, dexterity
	ScalingRate float64    `json:"scaling_rate,omitempty" yaml:"scaling_rate,omitempty"`
}

// DefaultAbilities is the baseline action set every player carries into
// combat when the caller supplies nothing richer.
func DefaultAbilities() []Ability {
	return []Ability{
		{
			ID:          "basic_attack",
			Name:        "Basic Attack",
			Description: "A plain strike with your weapon.",
			Action:      ActionBasicAttack,
			Effect:      EffectDamage,
			ManaCost:    0,
			BaseValue:   8,
			ScalingStat: "strength",
			ScalingRate: 0.5,
		},
		{
			ID:          "power_strike",
			Name:        "Power Strike",
			Description: "A heavy blow that costs focus.",
			Action:      ActionSpell,
			Effect:      EffectDamage,
			ManaCost:    10,
			BaseValue:   14,
			ScalingStat: "strength",
			ScalingRate: 1.0,
		},
		{
			ID:          "fireball",
			Name:        "Fireball",
			Description: "A burst of arcane flame.",
			Action:      ActionSpell,
			Effect:      EffectDamage,
			ManaCost:    15,
			BaseValue:   18,
			ScalingStat: "intelligence",
			ScalingRate: 1.0,
		},
		{
			ID:          "heal",
			Name:        "Heal",
			Description: "Mend your wounds.",
			Action:      ActionHeal,
			Effect:      EffectHeal,
			ManaCost:    12,
			BaseValue:   20,
			ScalingStat: "intelligence",
			ScalingRate: 0.5,
		},
	}
}
