package run

import (
	"strconv"

	"github.com/dunnston/dungeongraph/internal/domain/play"
	"github.com/dunnston/dungeongraph/internal/domain/quiz"
)

// EventType discriminates engine events
type EventType string

const (
	// EventAwaitingInput means the run is suspended on the actions list
	EventAwaitingInput EventType = "awaiting_input"
	// EventCompleted means the run reached an End node
	EventCompleted EventType = "completed"
	// EventDeadEnd means no outgoing edge matched; a legitimate stop
	EventDeadEnd EventType = "dead_end"
	// EventDefeated means the player's health reached zero
	EventDefeated EventType = "defeated"
)

// Event is what Start and Resume hand back to the caller
type Event struct {
	Type    EventType
	Lines   []string
	Actions []Action
	// Question is set when the expected input is an answer
	Question *quiz.Question
	// Rewards is set on EventCompleted
	Rewards *play.RewardSummary
}

// Terminal reports whether the event ends the run
func (e *Event) Terminal() bool {
	return e.Type != EventAwaitingInput
}

// ActionKind is the input shape an action expects
type ActionKind string

const (
	ActionContinue ActionKind = "continue"
	ActionOption   ActionKind = "option"
	ActionAnswer   ActionKind = "answer"
	ActionRoll     ActionKind = "roll"
	ActionTake     ActionKind = "take"
	ActionAbility  ActionKind = "ability"
	ActionFlee     ActionKind = "flee"
)

// Action is one thing the player can do at a suspension point
type Action struct {
	Kind  ActionKind
	ID    string
	Label string
}

// InputKind discriminates player inputs
type InputKind string

const (
	InputContinue InputKind = "continue"
	InputOption   InputKind = "option"
	InputAnswer   InputKind = "answer"
	InputRoll     InputKind = "roll"
	InputTake     InputKind = "take"
	InputAbility  InputKind = "ability"
	InputFlee     InputKind = "flee"
)

// Input is a discriminated player input for Resume
type Input struct {
	Kind        InputKind
	OptionID    string
	AnswerIndex int
	AbilityID   string
}

// ContinueInput advances past a suspended Story node
func ContinueInput() Input { return Input{Kind: InputContinue} }

// OptionInput picks a Choice option by id
func OptionInput(id string) Input { return Input{Kind: InputOption, OptionID: id} }

// AnswerInput answers a question by choice index
func AnswerInput(index int) Input { return Input{Kind: InputAnswer, AnswerIndex: index} }

// RollInput triggers a pending ability or trap-avoidance roll
func RollInput() Input { return Input{Kind: InputRoll} }

// TakeInput confirms taking the presented loot
func TakeInput() Input { return Input{Kind: InputTake} }

// AbilityInput picks a combat ability by id
func AbilityInput(id string) Input { return Input{Kind: InputAbility, AbilityID: id} }

// FleeInput attempts to flee the current encounter
func FleeInput() Input { return Input{Kind: InputFlee} }

func answerActions(q *quiz.Question) []Action {
	actions := make([]Action, 0, len(q.Choices))
	for i, choice := range q.Choices {
		actions = append(actions, Action{Kind: ActionAnswer, ID: strconv.Itoa(i), Label: choice})
	}
	return actions
}
