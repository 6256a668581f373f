// Package quiz defines the multiple-choice questions that gate ability
// checks, Question nodes, and combat actions.
package quiz

// Question is a four-choice question served by the challenge provider
type Question struct {
	ID           string   `json:"id" yaml:"id"`
	Prompt       string   `json:"prompt" yaml:"prompt"`
	Choices      []string `json:"choices" yaml:"choices"`
	CorrectIndex int      `json:"correct_index" yaml:"correct_index"`
	ActionType   string   `json:"action_type,omitempty" yaml:"action_type,omitempty"` // matches combat.ActionType values
	Difficulty   string   `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Topic        string   `json:"topic,omitempty" yaml:"topic,omitempty"`
}

// IsCorrect reports whether the given answer index is the right one
func (q *Question) IsCorrect(index int) bool {
	return index == q.CorrectIndex
}
