package level

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func fixtureLevel() *Level {
	return &Level{
		ID: "crypt-1",
		Metadata: Metadata{
			Name:             "The Sunken Crypt",
			Description:      "A short crawl through flooded halls.",
			Difficulty:       DifficultyMedium,
			RecommendedLevel: 3,
			Tags:             []string{"undead", "water"},
		},
		Nodes: []Node{
			{ID: "start", Kind: KindStart, Start: &StartPayload{WelcomeMessage: "You wade in."}},
			{ID: "fork", Kind: KindChoice, Choice: &ChoicePayload{
				Prompt: "Two doors.",
				Options: []ChoiceOption{
					{ID: "left", Text: "Left door", ResultText: "It creaks open."},
					{ID: "right", Text: "Right door"},
				},
			}},
			{ID: "lock", Kind: KindAbilityCheck, AbilityCheck: &AbilityCheckPayload{
				Ability:     AbilityDexterity,
				DC:          12,
				SuccessText: "The lock clicks.",
				FailureText: "The pick snaps.",
				MCQGate:     &MCQGate{QuestionID: "q-7"},
			}},
			{ID: "spikes", Kind: KindTrap, Trap: &TrapPayload{
				Damage:     10,
				AvoidCheck: &AvoidCheck{Ability: AbilityDexterity, DC: 10},
			}},
			{ID: "skirmish", Kind: KindCombat, Combat: &CombatPayload{
				EncounterGroups: []EncounterGroup{{EnemyRef: "skeleton", Count: 2}},
				RewardXP:        60,
				RewardGold:      20,
			}},
			{ID: "hoard", Kind: KindLoot, Loot: &LootPayload{
				Items: []LootItem{{Type: ItemTypeKey, Name: "Rusted Key", Quantity: 1}},
				Gold:  30,
			}},
			{ID: "riddle", Kind: KindQuestion, Question: &QuestionPayload{QuestionID: "q-9"}},
			{ID: "tomb", Kind: KindBoss, Boss: &BossPayload{
				EnemyRef:   "wight",
				Health:     80,
				RewardXP:   200,
				RewardGold: 100,
			}},
			{ID: "out", Kind: KindEnd, End: &EndPayload{
				CompletionMessage: "Daylight.",
				FinalRewards:      &FinalRewards{XP: 50},
			}},
		},
		Edges: []Edge{
			{ID: "e1", Source: "start", Target: "fork"},
			{ID: "e2", Source: "fork", Target: "lock", BranchTag: "left"},
			{ID: "e3", Source: "fork", Target: "spikes", BranchTag: "right"},
			{ID: "e4", Source: "lock", Target: "hoard", BranchTag: BranchSuccess},
			{ID: "e5", Source: "lock", Target: "spikes", BranchTag: BranchFailure},
			{ID: "e6", Source: "spikes", Target: "skirmish"},
			{ID: "e7", Source: "skirmish", Target: "riddle"},
			{ID: "e8", Source: "hoard", Target: "riddle"},
			{ID: "e9", Source: "riddle", Target: "tomb", BranchTag: BranchCorrect},
			{ID: "e10", Source: "riddle", Target: "tomb", BranchTag: BranchIncorrect},
			{ID: "e11", Source: "tomb", Target: "out"},
		},
	}
}

func TestLevel_JSONRoundTrip(t *testing.T) {
	original := fixtureLevel()

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Level
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, *original, decoded)
}

func TestLevel_YAMLRoundTrip(t *testing.T) {
	original := fixtureLevel()

	data, err := yaml.Marshal(original)
	require.NoError(t, err)

	var decoded Level
	require.NoError(t, yaml.Unmarshal(data, &decoded))

	assert.Equal(t, *original, decoded)
}

func TestNode_JSONKindDiscriminator(t *testing.T) {
	raw := `{"id":"s1","kind":"story","data":{"text":"A hall.","auto_progress":true}}`

	var n Node
	require.NoError(t, json.Unmarshal([]byte(raw), &n))

	require.NotNil(t, n.Story)
	assert.Equal(t, "A hall.", n.Story.Text)
	assert.True(t, n.Story.AutoProgress)
	assert.Nil(t, n.Choice)
}

func TestNode_JSONUnknownKindRejected(t *testing.T) {
	raw := `{"id":"x","kind":"teleporter","data":{}}`

	var n Node
	err := json.Unmarshal([]byte(raw), &n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestNode_MarshalMissingPayloadRejected(t *testing.T) {
	n := Node{ID: "s1", Kind: KindStory}

	_, err := json.Marshal(n)
	require.Error(t, err)
}
