package level

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// nodeYAML mirrors nodeJSON for the authoring form: levels written by
// hand in YAML use the same id/kind/label/data shape as storage.
type nodeYAML struct {
	ID    string    `yaml:"id"`
	Kind  Kind      `yaml:"kind"`
	Label string    `yaml:"label,omitempty"`
	Data  yaml.Node `yaml:"data,omitempty"`
}

// MarshalYAML implements yaml.Marshaler
func (n Node) MarshalYAML() (any, error) {
	payload := n.payload()
	if payload == nil {
		return nil, fmt.Errorf("node %q: missing payload for kind %q", n.ID, n.Kind)
	}

	var data yaml.Node
	if err := data.Encode(payload); err != nil {
		return nil, fmt.Errorf("node %q: encode payload: %w", n.ID, err)
	}

	return nodeYAML{
		ID:    n.ID,
		Kind:  n.Kind,
		Label: n.Label,
		Data:  data,
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var raw nodeYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*n = Node{ID: raw.ID, Kind: raw.Kind, Label: raw.Label}

	decode := func(dst any) error {
		if raw.Data.IsZero() {
			return nil
		}
		if err := raw.Data.Decode(dst); err != nil {
			return fmt.Errorf("node %q: decode %s payload: %w", raw.ID, raw.Kind, err)
		}
		return nil
	}

	switch raw.Kind {
	case KindStart:
		n.Start = &StartPayload{}
		return decode(n.Start)
	case KindStory:
		n.Story = &StoryPayload{}
		return decode(n.Story)
	case KindChoice:
		n.Choice = &ChoicePayload{}
		return decode(n.Choice)
	case KindAbilityCheck:
		n.AbilityCheck = &AbilityCheckPayload{}
		return decode(n.AbilityCheck)
	case KindTrap:
		n.Trap = &TrapPayload{}
		return decode(n.Trap)
	case KindCombat:
		n.Combat = &CombatPayload{}
		return decode(n.Combat)
	case KindBoss:
		n.Boss = &BossPayload{}
		return decode(n.Boss)
	case KindLoot:
		n.Loot = &LootPayload{}
		return decode(n.Loot)
	case KindQuestion:
		n.Question = &QuestionPayload{}
		return decode(n.Question)
	case KindEnd:
		n.End = &EndPayload{}
		return decode(n.End)
	default:
		return fmt.Errorf("node %q: unknown kind %q", raw.ID, raw.Kind)
	}
}
