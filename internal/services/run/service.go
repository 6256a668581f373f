// Package run implements the traversal engine: a cooperative
// suspend/resume interpreter that walks a validated level graph,
// mutates one run's player state, and delegates Combat and Boss nodes
// to the combat sub-engine. The engine does no work between calls and
// holds no timers; pacing is the caller's concern.
package run

import (
	"context"
	"fmt"
	"strings"

	"github.com/dunnston/dungeongraph/internal/dice"
	combatdomain "github.com/dunnston/dungeongraph/internal/domain/combat"
	"github.com/dunnston/dungeongraph/internal/domain/level"
	"github.com/dunnston/dungeongraph/internal/domain/play"
	"github.com/dunnston/dungeongraph/internal/domain/quiz"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
	"github.com/dunnston/dungeongraph/internal/repositories/enemies"
	"github.com/dunnston/dungeongraph/internal/repositories/questions"
	combatsvc "github.com/dunnston/dungeongraph/internal/services/combat"
	"github.com/dunnston/dungeongraph/internal/services/progress"
	"github.com/dunnston/dungeongraph/internal/uuid"
)

// maxAutoAdvance caps the number of nodes processed within a single
// Start or Resume call, so an all-auto cycle surfaces as an error
// instead of spinning.
const maxAutoAdvance = 256

// mcqWrongAnswerPenalty replaces the stat modifier when a gated check's
// question is answered incorrectly.
const mcqWrongAnswerPenalty = -2

// Service drives runs through level graphs
type Service interface {
	// Start validates the level, builds the run state, and processes
	// from the Start node until the run suspends or ends.
	Start(ctx context.Context, lvl *level.Level, playerID string, stats play.Stats) (*Handle, *Event, error)

	// Resume feeds a player input into a suspended run
	Resume(ctx context.Context, h *Handle, input Input) (*Event, error)

	// Abort discards the handle and its state. Nothing is reported to
	// the progress sink.
	Abort(h *Handle)
}

// ServiceConfig holds the service dependencies
type ServiceConfig struct {
	Questions     questions.Repository
	Enemies       enemies.Repository
	Progress      progress.Service
	Roller        dice.Roller
	UUIDGenerator uuid.Generator
}

type service struct {
	questions questions.Repository
	enemies   enemies.Repository
	progress  progress.Service
	roller    dice.Roller
	uuidGen   uuid.Generator
}

// NewService creates a new run service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("config is required")
	}
	if cfg.Questions == nil {
		panic("question repository is required")
	}
	if cfg.Enemies == nil {
		panic("enemy repository is required")
	}
	if cfg.Progress == nil {
		panic("progress service is required")
	}
	if cfg.Roller == nil {
		panic("dice roller is required")
	}
	if cfg.UUIDGenerator == nil {
		panic("uuid generator is required")
	}
	return &service{
		questions: cfg.Questions,
		enemies:   cfg.Enemies,
		progress:  cfg.Progress,
		roller:    cfg.Roller,
		uuidGen:   cfg.UUIDGenerator,
	}
}

func (s *service) Start(ctx context.Context, lvl *level.Level, playerID string, stats play.Stats) (*Handle, *Event, error) {
	if lvl == nil {
		return nil, nil, apperr.InvalidArgument("level cannot be nil")
	}
	if playerID == "" {
		return nil, nil, apperr.InvalidArgument("player id cannot be empty")
	}

	diags := level.Validate(lvl)
	if level.HasErrors(diags) {
		msgs := make([]string, 0, len(diags))
		for _, d := range diags {
			if d.Severity == level.SeverityError {
				msgs = append(msgs, d.Message)
			}
		}
		return nil, nil, apperr.Validationf("level '%s' is not playable: %s", lvl.ID, strings.Join(msgs, "; "))
	}

	h := &Handle{
		id:       s.uuidGen.New(),
		playerID: playerID,
		level:    lvl,
		state:    play.NewRunState(stats),
	}
	h.state.Visit(lvl.StartNode().ID)

	ev, err := s.process(ctx, h, nil)
	if err != nil {
		return nil, nil, err
	}
	return h, ev, nil
}

func (s *service) Abort(h *Handle) {
	if h == nil {
		return
	}
	h.aborted = true
	h.wait = waitingNone
	h.question = nil
	h.clearCombat()
}

func (s *service) Resume(ctx context.Context, h *Handle, input Input) (*Event, error) {
	if h == nil {
		return nil, apperr.InvalidArgument("handle cannot be nil")
	}
	if !h.busy.CompareAndSwap(false, true) {
		return nil, apperr.InvalidArgument("a resume is already in flight on this handle")
	}
	defer h.busy.Store(false)

	if h.aborted {
		return nil, apperr.InvalidArgument("handle has been aborted")
	}
	if h.terminal != "" {
		return nil, apperr.InvalidArgument(fmt.Sprintf("run already ended: %s", h.terminal))
	}
	if h.wait == waitingNone {
		return nil, apperr.InvalidArgument("run is not suspended")
	}

	node := h.level.NodeByID(h.state.CurrentNodeID)
	if node == nil {
		return nil, apperr.Internalf("run is at unknown node '%s'", h.state.CurrentNodeID)
	}

	var lines []string
	switch h.wait {
	case waitingContinue:
		if input.Kind != InputContinue {
			return nil, wrongInput(InputContinue, input.Kind)
		}
		if ev := s.follow(ctx, h, node, "", &lines); ev != nil {
			return ev, nil
		}
		return s.process(ctx, h, lines)

	case waitingChoice:
		if input.Kind != InputOption {
			return nil, wrongInput(InputOption, input.Kind)
		}
		var chosen *level.ChoiceOption
		for i := range node.Choice.Options {
			if node.Choice.Options[i].ID == input.OptionID {
				chosen = &node.Choice.Options[i]
				break
			}
		}
		if chosen == nil {
			return nil, apperr.InvalidArgument(fmt.Sprintf("unknown choice option '%s'", input.OptionID))
		}
		if chosen.ResultText != "" {
			lines = append(lines, chosen.ResultText)
		}
		if ev := s.follow(ctx, h, node, chosen.ID, &lines); ev != nil {
			return ev, nil
		}
		return s.process(ctx, h, lines)

	case waitingRoll:
		if input.Kind != InputRoll {
			return nil, wrongInput(InputRoll, input.Kind)
		}
		if node.Kind == level.KindTrap {
			return s.resolveTrapAvoidance(ctx, h, node, lines)
		}
		modifier := h.state.Stats.Score(node.AbilityCheck.Ability)
		return s.resolveCheck(ctx, h, node, modifier, lines)

	case waitingCheckAnswer:
		correct, err := s.consumeAnswer(h, input)
		if err != nil {
			return nil, err
		}
		modifier := mcqWrongAnswerPenalty
		if correct {
			lines = append(lines, "Correct!")
			modifier = h.state.Stats.Score(node.AbilityCheck.Ability)
		} else {
			lines = append(lines, "Wrong answer. Your focus slips.")
		}
		return s.resolveCheck(ctx, h, node, modifier, lines)

	case waitingQuestion:
		correct, err := s.consumeAnswer(h, input)
		if err != nil {
			return nil, err
		}
		label := level.BranchIncorrect
		if correct {
			lines = append(lines, "Correct!")
			label = level.BranchCorrect
		} else {
			lines = append(lines, "Not quite.")
		}
		if ev := s.follow(ctx, h, node, label, &lines); ev != nil {
			return ev, nil
		}
		return s.process(ctx, h, lines)

	case waitingTake:
		if input.Kind != InputTake {
			return nil, wrongInput(InputTake, input.Kind)
		}
		p := node.Loot
		h.state.AddRewards(p.XP, p.Gold, p.Items)
		lines = append(lines, lootSummary(p.XP, p.Gold, p.Items))
		if ev := s.follow(ctx, h, node, "", &lines); ev != nil {
			return ev, nil
		}
		return s.process(ctx, h, lines)

	case waitingCombatAction:
		return s.resumeCombatAction(ctx, h, input, lines)

	case waitingCombatAnswer:
		correct, err := s.consumeAnswer(h, input)
		if err != nil {
			return nil, err
		}
		result, err := h.encounter.ResolveTurn(correct)
		if err != nil {
			return nil, err
		}
		lines = append(lines, result.Lines...)
		return s.afterCombat(ctx, h, result.State, lines)

	case waitingFleeAnswer:
		correct, err := s.consumeAnswer(h, input)
		if err != nil {
			return nil, err
		}
		result, err := h.encounter.ResolveFlee(correct)
		if err != nil {
			return nil, err
		}
		lines = append(lines, result.Lines...)
		return s.afterCombat(ctx, h, result.State, lines)

	default:
		return nil, apperr.Internal("run is in an unknown suspension state")
	}
}

// process walks nodes from the current position until the run suspends
// or ends. The step cap turns all-auto cycles into an error.
func (s *service) process(ctx context.Context, h *Handle, lines []string) (*Event, error) {
	for steps := 0; steps < maxAutoAdvance; steps++ {
		node := h.level.NodeByID(h.state.CurrentNodeID)
		if node == nil {
			return nil, apperr.Internalf("run is at unknown node '%s'", h.state.CurrentNodeID)
		}

		switch node.Kind {
		case level.KindStart:
			if node.Start != nil && node.Start.WelcomeMessage != "" {
				lines = append(lines, node.Start.WelcomeMessage)
			}
			if ev := s.follow(ctx, h, node, "", &lines); ev != nil {
				return ev, nil
			}

		case level.KindStory:
			lines = append(lines, node.Story.Text)
			if node.Story.AutoProgress {
				if ev := s.follow(ctx, h, node, "", &lines); ev != nil {
					return ev, nil
				}
				continue
			}
			return s.suspend(h, waitingContinue, lines), nil

		case level.KindChoice:
			if node.Choice.Prompt != "" {
				lines = append(lines, node.Choice.Prompt)
			}
			if len(node.Choice.Options) == 0 {
				return s.finish(ctx, h, play.OutcomeDeadEnd, lines), nil
			}
			return s.suspend(h, waitingChoice, lines), nil

		case level.KindAbilityCheck:
			p := node.AbilityCheck
			if p.MCQGate != nil {
				q, err := s.fetchQuestion(ctx, p.MCQGate.QuestionID, "")
				if err != nil {
					h.note("check question unavailable at node '%s', falling back to an ungated roll: %v", node.ID, err)
					return s.suspend(h, waitingRoll, lines), nil
				}
				h.question = q
				return s.suspend(h, waitingCheckAnswer, lines), nil
			}
			return s.suspend(h, waitingRoll, lines), nil

		case level.KindTrap:
			if node.Trap.Description != "" {
				lines = append(lines, node.Trap.Description)
			}
			if node.Trap.AvoidCheck != nil {
				return s.suspend(h, waitingRoll, lines), nil
			}
			lines = append(lines, fmt.Sprintf("The trap hits you for %d damage.", node.Trap.Damage))
			if !h.state.ApplyDamage(node.Trap.Damage) {
				return s.finish(ctx, h, play.OutcomeDefeated, lines), nil
			}
			if ev := s.follow(ctx, h, node, "", &lines); ev != nil {
				return ev, nil
			}

		case level.KindCombat:
			p := node.Combat
			if p.FlavorText != "" {
				lines = append(lines, p.FlavorText)
			}
			var specs []encounterSpec
			for _, g := range p.EncounterGroups {
				for i := 0; i < g.Count; i++ {
					specs = append(specs, encounterSpec{ref: g.EnemyRef, levelOverride: g.LevelOverride})
				}
			}
			h.encounterQueue = specs
			h.combatRewards = &nodeRewards{xp: p.RewardXP, gold: p.RewardGold}
			ev, err := s.nextEncounter(ctx, h, node, &lines)
			if err != nil {
				return nil, err
			}
			if ev != nil {
				return ev, nil
			}

		case level.KindBoss:
			p := node.Boss
			if p.IntroDialog != "" {
				lines = append(lines, p.IntroDialog)
			}
			if p.FlavorText != "" {
				lines = append(lines, p.FlavorText)
			}
			h.encounterQueue = []encounterSpec{{
				ref:            p.EnemyRef,
				levelOverride:  p.Level,
				healthOverride: p.Health,
			}}
			h.combatRewards = &nodeRewards{xp: p.RewardXP, gold: p.RewardGold, items: p.RewardItems}
			ev, err := s.nextEncounter(ctx, h, node, &lines)
			if err != nil {
				return nil, err
			}
			if ev != nil {
				return ev, nil
			}

		case level.KindLoot:
			p := node.Loot
			if p.Description != "" {
				lines = append(lines, p.Description)
			}
			lines = append(lines, "You find: "+lootSummary(p.XP, p.Gold, p.Items))
			return s.suspend(h, waitingTake, lines), nil

		case level.KindQuestion:
			q, err := s.questions.Get(ctx, node.Question.QuestionID)
			if err != nil {
				h.note("question '%s' unavailable at node '%s', taking the correct branch: %v",
					node.Question.QuestionID, node.ID, err)
				if ev := s.follow(ctx, h, node, level.BranchCorrect, &lines); ev != nil {
					return ev, nil
				}
				continue
			}
			h.question = q
			return s.suspend(h, waitingQuestion, lines), nil

		case level.KindEnd:
			p := node.End
			if p != nil && p.CompletionMessage != "" {
				lines = append(lines, p.CompletionMessage)
			}
			if p != nil && p.FinalRewards != nil {
				fr := p.FinalRewards
				h.state.AddRewards(fr.XP, fr.Gold, fr.Items)
				lines = append(lines, "Final rewards: "+lootSummary(fr.XP, fr.Gold, fr.Items))
			}
			return s.finish(ctx, h, play.OutcomeCompleted, lines), nil

		default:
			return nil, apperr.Internalf("node '%s' has unknown kind '%s'", node.ID, node.Kind)
		}
	}
	return nil, apperr.Internal("auto-advance limit exceeded; the level cycles without requiring input")
}

// follow resolves the outgoing edge for an outcome label and moves the
// run. Edges match when their tag is empty or equals the label; zero
// matches end the run at a dead end; several matches follow the first
// in declaration order and record a diagnostic.
func (s *service) follow(ctx context.Context, h *Handle, node *level.Node, label string, lines *[]string) *Event {
	edges := h.level.OutgoingEdges(node.ID)
	var matches []level.Edge
	for _, e := range edges {
		if e.BranchTag == "" || e.BranchTag == label {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 {
		*lines = append(*lines, "There is nowhere left to go.")
		return s.finish(ctx, h, play.OutcomeDeadEnd, *lines)
	}
	if len(matches) > 1 {
		h.note("ambiguous branch at node '%s' for outcome '%s': %d matching edges, following '%s'",
			node.ID, label, len(matches), matches[0].ID)
	}
	h.state.Visit(matches[0].Target)
	return nil
}

func (s *service) suspend(h *Handle, w waiting, lines []string) *Event {
	h.wait = w
	return &Event{
		Type:     EventAwaitingInput,
		Lines:    lines,
		Actions:  h.actions(),
		Question: h.question,
	}
}

// finish ends the run, reports to the progress sink, and builds the
// terminal event. Sink failures degrade to a diagnostic; they never
// undo a finished run.
func (s *service) finish(ctx context.Context, h *Handle, outcome play.Outcome, lines []string) *Event {
	h.wait = waitingNone
	h.terminal = outcome
	h.question = nil
	h.clearCombat()

	report := &play.RunReport{
		PlayerID:    h.playerID,
		LevelID:     h.level.ID,
		Outcome:     outcome,
		XPDelta:     h.state.TotalXP,
		GoldDelta:   h.state.TotalGold,
		ItemsGained: h.state.Inventory,
		NewHealth:   h.state.Health,
		NodesSeen:   len(h.state.Visited),
	}
	if err := s.progress.Record(ctx, report); err != nil {
		h.note("failed to record run report: %v", err)
	}

	ev := &Event{Lines: lines}
	switch outcome {
	case play.OutcomeCompleted:
		ev.Type = EventCompleted
		ev.Rewards = &play.RewardSummary{
			XP:    h.state.TotalXP,
			Gold:  h.state.TotalGold,
			Items: h.state.Inventory,
		}
	case play.OutcomeDeadEnd:
		ev.Type = EventDeadEnd
	case play.OutcomeDefeated:
		ev.Type = EventDefeated
	}
	return ev
}

// consumeAnswer validates an answer input against the pending question
func (s *service) consumeAnswer(h *Handle, input Input) (bool, error) {
	if input.Kind != InputAnswer {
		return false, wrongInput(InputAnswer, input.Kind)
	}
	q := h.question
	if q == nil {
		return false, apperr.Internal("no question is pending")
	}
	if input.AnswerIndex < 0 || input.AnswerIndex >= len(q.Choices) {
		return false, apperr.InvalidArgument(fmt.Sprintf("answer index %d out of range for %d choices",
			input.AnswerIndex, len(q.Choices)))
	}
	h.question = nil
	return q.IsCorrect(input.AnswerIndex), nil
}

// resolveCheck rolls an ability check and branches success/failure. A
// failed check on an allow-retry node re-enters the node instead of
// taking the failure branch.
func (s *service) resolveCheck(ctx context.Context, h *Handle, node *level.Node, modifier int, lines []string) (*Event, error) {
	p := node.AbilityCheck
	roll, err := s.roller.Roll(1, 20, modifier)
	if err != nil {
		return nil, err
	}
	lines = append(lines, fmt.Sprintf("Check: %d%+d = %d vs DC %d.", roll.RawTotal, modifier, roll.Total, p.DC))

	if roll.Total >= p.DC {
		if p.SuccessText != "" {
			lines = append(lines, p.SuccessText)
		}
		if ev := s.follow(ctx, h, node, level.BranchSuccess, &lines); ev != nil {
			return ev, nil
		}
		return s.process(ctx, h, lines)
	}

	if p.FailureText != "" {
		lines = append(lines, p.FailureText)
	}
	if p.AllowRetry {
		lines = append(lines, "You steady yourself to try again.")
		return s.process(ctx, h, lines)
	}
	if ev := s.follow(ctx, h, node, level.BranchFailure, &lines); ev != nil {
		return ev, nil
	}
	return s.process(ctx, h, lines)
}

// resolveTrapAvoidance rolls against the trap's avoid check. Avoidance
// changes only whether damage applies; the edge taken never varies.
func (s *service) resolveTrapAvoidance(ctx context.Context, h *Handle, node *level.Node, lines []string) (*Event, error) {
	p := node.Trap
	modifier := h.state.Stats.Score(p.AvoidCheck.Ability)
	roll, err := s.roller.Roll(1, 20, modifier)
	if err != nil {
		return nil, err
	}
	lines = append(lines, fmt.Sprintf("Avoidance: %d%+d = %d vs DC %d.", roll.RawTotal, modifier, roll.Total, p.AvoidCheck.DC))

	if roll.Total >= p.AvoidCheck.DC {
		lines = append(lines, "You avoid the trap.")
	} else {
		lines = append(lines, fmt.Sprintf("The trap hits you for %d damage.", p.Damage))
		if !h.state.ApplyDamage(p.Damage) {
			return s.finish(ctx, h, play.OutcomeDefeated, lines), nil
		}
	}
	if ev := s.follow(ctx, h, node, "", &lines); ev != nil {
		return ev, nil
	}
	return s.process(ctx, h, lines)
}

// nextEncounter pops the next flattened encounter of the current Combat
// or Boss node. An empty queue grants the node's rewards exactly once
// and advances; a missing enemy skips the rest of the node without
// rewards rather than ending the run.
func (s *service) nextEncounter(ctx context.Context, h *Handle, node *level.Node, lines *[]string) (*Event, error) {
	if len(h.encounterQueue) == 0 {
		if r := h.combatRewards; r != nil && (r.xp > 0 || r.gold > 0 || len(r.items) > 0) {
			h.state.AddRewards(r.xp, r.gold, r.items)
			*lines = append(*lines, "Victory! "+lootSummary(r.xp, r.gold, r.items))
		}
		h.clearCombat()
		if ev := s.follow(ctx, h, node, "", lines); ev != nil {
			return ev, nil
		}
		return nil, nil
	}

	spec := h.encounterQueue[0]
	h.encounterQueue = h.encounterQueue[1:]

	enemy, err := s.enemies.Get(ctx, spec.ref)
	if err != nil {
		h.note("enemy '%s' unavailable at node '%s': %v", spec.ref, node.ID, err)
		*lines = append(*lines, "The encounter is unavailable. You press on.")
		h.clearCombat()
		if ev := s.follow(ctx, h, node, "", lines); ev != nil {
			return ev, nil
		}
		return nil, nil
	}
	if spec.healthOverride > 0 {
		enemy.BaseHealth = spec.healthOverride
	}
	if spec.levelOverride > 0 {
		enemy.Level = spec.levelOverride
	}

	*lines = append(*lines, fmt.Sprintf("%s appears!", enemy.Name))
	h.encounter = combatsvc.NewEncounter(&combatsvc.Config{
		Enemy:  enemy,
		Player: h.state,
		Roller: s.roller,
	})
	return s.suspend(h, waitingCombatAction, *lines), nil
}

// resumeCombatAction handles an ability pick or a flee attempt. A
// missing challenge question degrades to resolving the action as if
// answered correctly; content gaps never block a run.
func (s *service) resumeCombatAction(ctx context.Context, h *Handle, input Input, lines []string) (*Event, error) {
	switch input.Kind {
	case InputAbility:
		if err := h.encounter.SelectAbility(input.AbilityID); err != nil {
			return nil, err
		}
		q, err := s.questions.GetRandom(ctx, string(h.encounter.PendingAction()))
		if err != nil {
			h.note("combat challenge unavailable: %v", err)
			result, rerr := h.encounter.ResolveTurn(true)
			if rerr != nil {
				return nil, rerr
			}
			lines = append(lines, result.Lines...)
			return s.afterCombat(ctx, h, result.State, lines)
		}
		h.question = q
		return s.suspend(h, waitingCombatAnswer, lines), nil

	case InputFlee:
		if err := h.encounter.BeginFlee(); err != nil {
			return nil, err
		}
		q, err := s.questions.GetRandom(ctx, string(combatdomain.ActionDodge))
		if err != nil {
			h.note("flee challenge unavailable: %v", err)
			result, rerr := h.encounter.ResolveFlee(true)
			if rerr != nil {
				return nil, rerr
			}
			lines = append(lines, result.Lines...)
			return s.afterCombat(ctx, h, result.State, lines)
		}
		h.question = q
		return s.suspend(h, waitingFleeAnswer, lines), nil

	default:
		return nil, apperr.InvalidArgument(fmt.Sprintf("expected %s or %s input, got %s",
			InputAbility, InputFlee, input.Kind))
	}
}

func (s *service) afterCombat(ctx context.Context, h *Handle, st combatsvc.State, lines []string) (*Event, error) {
	node := h.level.NodeByID(h.state.CurrentNodeID)
	switch st {
	case combatsvc.StateSelectAction:
		return s.suspend(h, waitingCombatAction, lines), nil

	case combatsvc.StateVictory:
		h.encounter = nil
		ev, err := s.nextEncounter(ctx, h, node, &lines)
		if err != nil {
			return nil, err
		}
		if ev != nil {
			return ev, nil
		}
		return s.process(ctx, h, lines)

	case combatsvc.StateFled:
		h.clearCombat()
		if ev := s.follow(ctx, h, node, "", &lines); ev != nil {
			return ev, nil
		}
		return s.process(ctx, h, lines)

	case combatsvc.StateDefeat:
		return s.finish(ctx, h, play.OutcomeDefeated, lines), nil

	default:
		return nil, apperr.Internalf("encounter is in unexpected state '%s'", st)
	}
}

func (s *service) fetchQuestion(ctx context.Context, id, actionType string) (*quiz.Question, error) {
	if id != "" {
		return s.questions.Get(ctx, id)
	}
	return s.questions.GetRandom(ctx, actionType)
}

func wrongInput(want, got InputKind) error {
	return apperr.InvalidArgument(fmt.Sprintf("expected %s input, got %s", want, got))
}

// lootSummary renders a reward block as one narrative line
func lootSummary(xp, gold int, items []level.LootItem) string {
	var parts []string
	if xp > 0 {
		parts = append(parts, fmt.Sprintf("%d xp", xp))
	}
	if gold > 0 {
		parts = append(parts, fmt.Sprintf("%d gold", gold))
	}
	for _, it := range items {
		if it.Quantity > 1 {
			parts = append(parts, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
		} else {
			parts = append(parts, it.Name)
		}
	}
	if len(parts) == 0 {
		return "nothing of value"
	}
	return strings.Join(parts, ", ")
}
