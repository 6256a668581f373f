package level

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messages(diags []Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.String())
	}
	return out
}

func assertHasDiagnostic(t *testing.T, diags []Diagnostic, severity Severity, substr string) {
	t.Helper()
	for _, d := range diags {
		if d.Severity == severity && strings.Contains(d.Message, substr) {
			return
		}
	}
	t.Fatalf("no %s diagnostic containing %q in %v", severity, substr, messages(diags))
}

func minimalLevel() *Level {
	return &Level{
		ID: "min",
		Nodes: []Node{
			{ID: "start", Kind: KindStart, Start: &StartPayload{}},
			{ID: "end", Kind: KindEnd, End: &EndPayload{}},
		},
		Edges: []Edge{
			{ID: "e1", Source: "start", Target: "end"},
		},
	}
}

func TestValidate_MinimalLevelPasses(t *testing.T) {
	diags := Validate(minimalLevel())
	assert.False(t, HasErrors(diags), "unexpected diagnostics: %v", messages(diags))
}

func TestValidate_FixturePasses(t *testing.T) {
	diags := Validate(fixtureLevel())
	assert.False(t, HasErrors(diags), "unexpected diagnostics: %v", messages(diags))
}

func TestValidate_NilAndEmpty(t *testing.T) {
	assert.True(t, HasErrors(Validate(nil)))

	diags := Validate(&Level{ID: "empty"})
	assertHasDiagnostic(t, diags, SeverityError, "no nodes")
}

func TestValidate_DuplicateNodeIDs(t *testing.T) {
	l := minimalLevel()
	l.Nodes = append(l.Nodes, Node{ID: "end", Kind: KindEnd, End: &EndPayload{}})

	assertHasDiagnostic(t, Validate(l), SeverityError, "duplicate node id")
}

func TestValidate_MissingPayload(t *testing.T) {
	l := minimalLevel()
	l.Nodes[0].Start = nil

	assertHasDiagnostic(t, Validate(l), SeverityError, "missing payload")
}

func TestValidate_StartNodeRules(t *testing.T) {
	t.Run("no start", func(t *testing.T) {
		l := &Level{
			ID:    "l",
			Nodes: []Node{{ID: "end", Kind: KindEnd, End: &EndPayload{}}},
		}
		assertHasDiagnostic(t, Validate(l), SeverityError, "no start node")
	})

	t.Run("two starts", func(t *testing.T) {
		l := minimalLevel()
		l.Nodes = append(l.Nodes, Node{ID: "start2", Kind: KindStart, Start: &StartPayload{}})
		l.Edges = append(l.Edges, Edge{ID: "e2", Source: "start2", Target: "end"})
		assertHasDiagnostic(t, Validate(l), SeverityError, "start nodes")
	})

	t.Run("incoming edge into start", func(t *testing.T) {
		l := minimalLevel()
		l.Edges = append(l.Edges, Edge{ID: "e2", Source: "end", Target: "start"})
		assertHasDiagnostic(t, Validate(l), SeverityError, "incoming edges, want 0")
	})
}

func TestValidate_NoEndNode(t *testing.T) {
	l := &Level{
		ID:    "l",
		Nodes: []Node{{ID: "start", Kind: KindStart, Start: &StartPayload{}}},
	}
	assertHasDiagnostic(t, Validate(l), SeverityError, "no end node")
}

func TestValidate_DanglingEdge(t *testing.T) {
	l := minimalLevel()
	l.Edges = append(l.Edges, Edge{ID: "e2", Source: "start", Target: "ghost"})

	assertHasDiagnostic(t, Validate(l), SeverityError, "unknown target")
}

func TestValidate_NonStartNodeNeedsIncoming(t *testing.T) {
	l := minimalLevel()
	l.Nodes = append(l.Nodes, Node{ID: "orphan", Kind: KindStory, Story: &StoryPayload{Text: "x"}})
	l.Edges = append(l.Edges, Edge{ID: "e2", Source: "orphan", Target: "end"})

	assertHasDiagnostic(t, Validate(l), SeverityError, "no incoming edges")
}

func TestValidate_ChoiceOptionEdgeMapping(t *testing.T) {
	base := func() *Level {
		return &Level{
			ID: "l",
			Nodes: []Node{
				{ID: "start", Kind: KindStart, Start: &StartPayload{}},
				{ID: "fork", Kind: KindChoice, Choice: &ChoicePayload{
					Prompt:  "?",
					Options: []ChoiceOption{{ID: "a", Text: "A"}, {ID: "b", Text: "B"}},
				}},
				{ID: "end", Kind: KindEnd, End: &EndPayload{}},
			},
			Edges: []Edge{
				{ID: "e1", Source: "start", Target: "fork"},
				{ID: "e2", Source: "fork", Target: "end", BranchTag: "a"},
				{ID: "e3", Source: "fork", Target: "end", BranchTag: "b"},
			},
		}
	}

	t.Run("well formed", func(t *testing.T) {
		assert.False(t, HasErrors(Validate(base())))
	})

	t.Run("option without edge", func(t *testing.T) {
		l := base()
		l.Edges = l.Edges[:2]
		assertHasDiagnostic(t, Validate(l), SeverityError, "has no outgoing edge")
	})

	t.Run("edge without option", func(t *testing.T) {
		l := base()
		l.Edges = append(l.Edges, Edge{ID: "e4", Source: "fork", Target: "end", BranchTag: "c"})
		assertHasDiagnostic(t, Validate(l), SeverityError, "matches no choice option")
	})

	t.Run("untagged edge on choice", func(t *testing.T) {
		l := base()
		l.Edges = append(l.Edges, Edge{ID: "e4", Source: "fork", Target: "end"})
		assertHasDiagnostic(t, Validate(l), SeverityError, "untagged outgoing edges")
	})

	t.Run("zero options warns", func(t *testing.T) {
		l := base()
		l.Nodes[1].Choice.Options = nil
		l.Edges = l.Edges[:2]
		diags := Validate(l)
		assertHasDiagnostic(t, diags, SeverityWarning, "no options")
	})

	t.Run("zero options with untagged edge stays playable", func(t *testing.T) {
		l := base()
		l.Nodes[1].Choice.Options = nil
		l.Edges = []Edge{
			{ID: "e1", Source: "start", Target: "fork"},
			{ID: "e2", Source: "fork", Target: "end"},
		}
		diags := Validate(l)
		assert.False(t, HasErrors(diags))
		assertHasDiagnostic(t, diags, SeverityWarning, "never followed")
	})
}

func TestValidate_CheckAndQuestionBranches(t *testing.T) {
	l := &Level{
		ID: "l",
		Nodes: []Node{
			{ID: "start", Kind: KindStart, Start: &StartPayload{}},
			{ID: "check", Kind: KindAbilityCheck, AbilityCheck: &AbilityCheckPayload{Ability: AbilityStrength, DC: 10}},
			{ID: "quiz", Kind: KindQuestion, Question: &QuestionPayload{QuestionID: "q"}},
			{ID: "end", Kind: KindEnd, End: &EndPayload{}},
		},
		Edges: []Edge{
			{ID: "e1", Source: "start", Target: "check"},
			{ID: "e2", Source: "check", Target: "quiz", BranchTag: BranchSuccess},
			{ID: "e3", Source: "quiz", Target: "end", BranchTag: BranchCorrect},
		},
	}

	diags := Validate(l)
	assertHasDiagnostic(t, diags, SeverityError, `missing a "failure" edge`)
	assertHasDiagnostic(t, diags, SeverityError, `missing a "incorrect" edge`)
}

func TestValidate_UntaggedEdgeOnMultiOutNode(t *testing.T) {
	l := minimalLevel()
	l.Nodes = append(l.Nodes, Node{ID: "hall", Kind: KindStory, Story: &StoryPayload{Text: "x"}})
	l.Edges = []Edge{
		{ID: "e1", Source: "start", Target: "hall"},
		{ID: "e2", Source: "hall", Target: "end"},
		{ID: "e3", Source: "hall", Target: "end"},
	}

	assertHasDiagnostic(t, Validate(l), SeverityError, "untagged edge on a node")
}

func TestValidate_CyclesAreLegal(t *testing.T) {
	l := &Level{
		ID: "loop",
		Nodes: []Node{
			{ID: "start", Kind: KindStart, Start: &StartPayload{}},
			{ID: "fork", Kind: KindChoice, Choice: &ChoicePayload{
				Prompt:  "?",
				Options: []ChoiceOption{{ID: "again", Text: "Again"}, {ID: "out", Text: "Out"}},
			}},
			{ID: "end", Kind: KindEnd, End: &EndPayload{}},
		},
		Edges: []Edge{
			{ID: "e1", Source: "start", Target: "fork"},
			{ID: "e2", Source: "fork", Target: "fork", BranchTag: "again"},
			{ID: "e3", Source: "fork", Target: "end", BranchTag: "out"},
		},
	}

	diags := Validate(l)
	assert.False(t, HasErrors(diags), "unexpected diagnostics: %v", messages(diags))
}

func TestValidate_EndMustBeReachable(t *testing.T) {
	l := &Level{
		ID: "l",
		Nodes: []Node{
			{ID: "start", Kind: KindStart, Start: &StartPayload{}},
			{ID: "hall", Kind: KindStory, Story: &StoryPayload{Text: "x"}},
			{ID: "end", Kind: KindEnd, End: &EndPayload{}},
		},
		Edges: []Edge{
			{ID: "e1", Source: "start", Target: "hall"},
			{ID: "e2", Source: "hall", Target: "hall"},
			// end has an incoming edge but sits behind the loop only
			{ID: "e3", Source: "end", Target: "end"},
		},
	}

	diags := Validate(l)
	require.True(t, HasErrors(diags))
	assertHasDiagnostic(t, diags, SeverityError, "no end node is reachable")
}

func TestValidate_UnreachableNodeWarns(t *testing.T) {
	l := minimalLevel()
	l.Nodes = append(l.Nodes, Node{ID: "vault", Kind: KindStory, Story: &StoryPayload{Text: "x"}})
	l.Edges = append(l.Edges, Edge{ID: "e2", Source: "vault", Target: "vault"})

	diags := Validate(l)
	assertHasDiagnostic(t, diags, SeverityWarning, "not reachable")
}
