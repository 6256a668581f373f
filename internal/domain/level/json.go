package level

import (
	"encoding/json"
	"fmt"
)

// nodeJSON is the storage form of a node: the payload lives under a
// single "data" key discriminated by "kind".
type nodeJSON struct {
	ID    string          `json:"id"`
	Kind  Kind            `json:"kind"`
	Label string          `json:"label,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (n Node) MarshalJSON() ([]byte, error) {
	payload := n.payload()
	if payload == nil {
		return nil, fmt.Errorf("node %q: missing payload for kind %q", n.ID, n.Kind)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("node %q: marshal payload: %w", n.ID, err)
	}

	return json.Marshal(nodeJSON{
		ID:    n.ID,
		Kind:  n.Kind,
		Label: n.Label,
		Data:  data,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Node) UnmarshalJSON(b []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*n = Node{ID: raw.ID, Kind: raw.Kind, Label: raw.Label}

	data := raw.Data
	if len(data) == 0 {
		data = []byte("{}")
	}

	decode := func(dst any) error {
		if err := json.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("node %q: unmarshal %s payload: %w", raw.ID, raw.Kind, err)
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
