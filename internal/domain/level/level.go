// Package level defines the graph data model for a dungeon level: typed
// nodes, tagged edges, and the validation rules a level must satisfy
// before it is playable. The graph is a general directed graph, cycles
// included; the traversal engine owns all runtime semantics.
package level

// Kind identifies a node's behavior and payload variant
type Kind string

const (
	KindStart        Kind = "start"
	KindStory        Kind = "story"
	KindChoice       Kind = "choice"
	KindAbilityCheck Kind = "ability_check"
	KindTrap         Kind = "trap"
	KindCombat       Kind = "combat"
	KindBoss         Kind = "boss"
	KindLoot         Kind = "loot"
	KindQuestion     Kind = "question"
	KindEnd          Kind = "end"
)

// Kinds lists every node kind, in no particular order
var Kinds = []Kind{
	KindStart, KindStory, KindChoice, KindAbilityCheck, KindTrap,
	KindCombat, KindBoss, KindLoot, KindQuestion, KindEnd,
}

// AbilityScore names a player attribute used as a check modifier
type AbilityScore string

const (
	AbilityStrength     AbilityScore = "STR"
	AbilityIntelligence AbilityScore = "INT"
	AbilityDexterity    AbilityScore = "DEX"
	AbilityCharisma     AbilityScore = "CHA"
)

// Branch tags produced by node outcomes. An edge with an empty tag is
// unconditional.
const (
	BranchSuccess   = "success"
	BranchFailure   = "failure"
	BranchCorrect   = "correct"
	BranchIncorrect = "incorrect"
)

// Difficulty rates a level or encounter
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyDeadly Difficulty = "deadly"
)

// ItemType categorizes a loot item
type ItemType string

const (
	ItemTypeWeapon   ItemType = "weapon"
	ItemTypeArmor    ItemType = "armor"
	ItemTypePotion   ItemType = "potion"
	ItemTypeScroll   ItemType = "scroll"
	ItemTypeGold     ItemType = "gold"
	ItemTypeKey      ItemType = "key"
	ItemTypeArtifact ItemType = "artifact"
)

// LootItem is an item granted by Loot, Boss, or End nodes
type LootItem struct {
	Type        ItemType `json:"type" yaml:"type"`
	Name        string   `json:"name" yaml:"name"`
	Quantity    int      `json:"quantity" yaml:"quantity"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Metadata describes a level for catalogs and editors
type Metadata struct {
	Name             string     `json:"name" yaml:"name"`
	Description      string     `json:"description,omitempty" yaml:"description,omitempty"`
	Difficulty       Difficulty `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	RecommendedLevel int        `json:"recommended_level,omitempty" yaml:"recommended_level,omitempty"`
	EstimatedMinutes int        `json:"estimated_minutes,omitempty" yaml:"estimated_minutes,omitempty"`
	Version          int        `json:"version,omitempty" yaml:"version,omitempty"`
	Tags             []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Edge is a directed connection between two nodes. BranchTag selects
// among multiple outcomes of the source node; empty means unconditional.
type Edge struct {
	ID        string `json:"id" yaml:"id"`
	Source    string `json:"source" yaml:"source"`
	Target    string `json:"target" yaml:"target"`
	BranchTag string `json:"branch_tag,omitempty" yaml:"branch_tag,omitempty"`
}

// Level is a complete dungeon level: an immutable directed graph owned
// by the catalog. Engines never mutate it.
type Level struct {
	ID       string   `json:"id" yaml:"id"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
	Nodes    []Node   `json:"nodes" yaml:"nodes"`
	Edges    []Edge   `json:"edges" yaml:"edges"`
}

// Node is a single step in the level graph. Exactly one payload pointer
// is set, matching Kind; the engine dispatches exhaustively on Kind.
type Node struct {
	ID    string
	Kind  Kind
	Label string

	Start        *StartPayload
	Story        *StoryPayload
	Choice       *ChoicePayload
	AbilityCheck *AbilityCheckPayload
	Trap         *TrapPayload
	Combat       *CombatPayload
	Boss         *BossPayload
	Loot         *LootPayload
	Question     *QuestionPayload
	End          *EndPayload
}

// StartPayload is the entry point of a level
type StartPayload struct {
	WelcomeMessage string `json:"welcome_message,omitempty" yaml:"welcome_message,omitempty"`
}

// StoryPayload is a narrative beat
type StoryPayload struct {
	Text         string `json:"text" yaml:"text"`
	AutoProgress bool   `json:"auto_progress,omitempty" yaml:"auto_progress,omitempty"`
}

// ChoiceOption is one branch of a Choice node. Its ID must equal the
// branch tag of exactly one outgoing edge.
type ChoiceOption struct {
	ID         string `json:"id" yaml:"id"`
	Text       string `json:"text" yaml:"text"`
	ResultText string `json:"result_text,omitempty" yaml:"result_text,omitempty"`
}

// ChoicePayload presents a branching decision
type ChoicePayload struct {
	Prompt  string         `json:"prompt" yaml:"prompt"`
	Options []ChoiceOption `json:"options" yaml:"options"`
}

// MCQGate gates an ability check behind a multiple-choice question.
// An empty QuestionID asks the provider for a random question.
type MCQGate struct {
	QuestionID string `json:"question_id,omitempty" yaml:"question_id,omitempty"`
}

// AbilityCheckPayload is a d20 roll against a difficulty class,
// branching success/failure
type AbilityCheckPayload struct {
	Ability     AbilityScore `json:"ability" yaml:"ability"`
	DC          int          `json:"dc" yaml:"dc"`
	SuccessText string       `json:"success_text,omitempty" yaml:"success_text,omitempty"`
	FailureText string       `json:"failure_text,omitempty" yaml:"failure_text,omitempty"`
	AllowRetry  bool         `json:"allow_retry,omitempty" yaml:"allow_retry,omitempty"`
	MCQGate     *MCQGate     `json:"mcq_gate,omitempty" yaml:"mcq_gate,omitempty"`
}

// AvoidCheck is the optional roll to avoid a trap's damage. Avoidance
// changes only whether damage is taken, never which edge is followed.
type AvoidCheck struct {
	Ability AbilityScore `json:"ability" yaml:"ability"`
	DC      int          `json:"dc" yaml:"dc"`
}

// TrapPayload deals damage, optionally avoidable
type TrapPayload struct {
	Damage      int         `json:"damage" yaml:"damage"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	AvoidCheck  *AvoidCheck `json:"avoid_check,omitempty" yaml:"avoid_check,omitempty"`
}

// EncounterGroup is a batch of identical enemies in a Combat node.
// Count N expands into N sequential single-enemy encounters.
type EncounterGroup struct {
	EnemyRef      string `json:"enemy_ref" yaml:"enemy_ref"`
	Count         int    `json:"count" yaml:"count"`
	LevelOverride int    `json:"level_override,omitempty" yaml:"level_override,omitempty"`
}

// CombatPayload is a multi-enemy encounter. Rewards are granted once,
// after the last encounter in the node is won.
type CombatPayload struct {
	EncounterGroups []EncounterGroup `json:"encounter_groups" yaml:"encounter_groups"`
	RewardXP        int              `json:"reward_xp,omitempty" yaml:"reward_xp,omitempty"`
	RewardGold      int              `json:"reward_gold,omitempty" yaml:"reward_gold,omitempty"`
	FlavorText      string           `json:"flavor_text,omitempty" yaml:"flavor_text,omitempty"`
}

// BossPayload is a single climactic encounter
type BossPayload struct {
	EnemyRef    string     `json:"enemy_ref" yaml:"enemy_ref"`
	Level       int        `json:"level,omitempty" yaml:"level,omitempty"`
	Health      int        `json:"health" yaml:"health"`
	Abilities   []string   `json:"abilities,omitempty" yaml:"abilities,omitempty"`
	RewardXP    int        `json:"reward_xp,omitempty" yaml:"reward_xp,omitempty"`
	RewardGold  int        `json:"reward_gold,omitempty" yaml:"reward_gold,omitempty"`
	RewardItems []LootItem `json:"reward_items,omitempty" yaml:"reward_items,omitempty"`
	FlavorText  string     `json:"flavor_text,omitempty" yaml:"flavor_text,omitempty"`
	IntroDialog string     `json:"intro_dialog,omitempty" yaml:"intro_dialog,omitempty"`
}

// LootPayload grants items, gold, and xp
type LootPayload struct {
	Items       []LootItem `json:"items,omitempty" yaml:"items,omitempty"`
	Gold        int        `json:"gold,omitempty" yaml:"gold,omitempty"`
	XP          int        `json:"xp,omitempty" yaml:"xp,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
}

// QuestionPayload branches correct/incorrect on a multiple-choice question
type QuestionPayload struct {
	QuestionID string `json:"question_id" yaml:"question_id"`
}

// FinalRewards are granted when the End node is reached
type FinalRewards struct {
	XP    int        `json:"xp,omitempty" yaml:"xp,omitempty"`
	Gold  int        `json:"gold,omitempty" yaml:"gold,omitempty"`
	Items []LootItem `json:"items,omitempty" yaml:"items,omitempty"`
}

// EndPayload terminates a run successfully
type EndPayload struct {
	CompletionMessage string        `json:"completion_message,omitempty" yaml:"completion_message,omitempty"`
	FinalRewards      *FinalRewards `json:"final_rewards,omitempty" yaml:"final_rewards,omitempty"`
}

// payload returns the variant pointer matching the node's kind, or nil
// when the payload is missing or mismatched.
func (n *Node) payload() any {
	switch n.Kind {
	case KindStart:
		if n.Start != nil {
			return n.Start
		}
	case KindStory:
		if n.Story != nil {
			return n.Story
		}
	case KindChoice:
		if n.Choice != nil {
			return n.Choice
		}
	case KindAbilityCheck:
		if n.AbilityCheck != nil {
			return n.AbilityCheck
		}
	case KindTrap:
		if n.Trap != nil {
			return n.Trap
		}
	case KindCombat:
		if n.Combat != nil {
			return n.Combat
		}
	case KindBoss:
		if n.Boss != nil {
			return n.Boss
		}
	case KindLoot:
		if n.Loot != nil {
			return n.Loot
		}
	case KindQuestion:
		if n.Question != nil {
			return n.Question
		}
	case KindEnd:
		if n.End != nil {
			return n.End
		}
	}
	return nil
}

// HasPayload reports whether the node carries the payload its kind requires
func (n *Node) HasPayload() bool {
	return n.payload() != nil
}

// NodeByID returns the node with the given id, or nil
func (l *Level) NodeByID(id string) *Node {
	for i := range l.Nodes {
		if l.Nodes[i].ID == id {
			return &l.Nodes[i]
		}
	}
	return nil
}

// OutgoingEdges returns the edges leaving a node, in declaration order.
// Declaration order matters: it is the tie-break for ambiguous branches.
func (l *Level) OutgoingEdges(nodeID string) []Edge {
	var out []Edge
	for _, e := range l.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// IncomingEdges returns the edges entering a node
func (l *Level) IncomingEdges(nodeID string) []Edge {
	var in []Edge
	for _, e := range l.Edges {
		if e.Target == nodeID {
			in = append(in, e)
		}
	}
	return in
}

// StartNode returns the level's Start node, or nil
func (l *Level) StartNode() *Node {
	for i := range l.Nodes {
		if l.Nodes[i].Kind == KindStart {
			return &l.Nodes[i]
		}
	}
	return nil
}
