// Package solver implements the goal-regression planner: drive a Situation
// from its initial state to satisfy every input goal, in position-sorted
// order, inserting a repair action whenever a goal's preconditions aren't
// yet met (spec §4.5). It is grounded on
// original_source/processor/components.py's SequenceSolver, with one
// deliberate fix: the "goal already achieved" branch (missing in the
// original, which would spin on the same action forever) now advances the
// queue, per spec §4.5's corrected pseudocode.
package solver

import (
	"context"

	"github.com/mars-robotics/buildseq/internal/apperr"
	"github.com/mars-robotics/buildseq/internal/model"
)

// ActionSource resolves the action(s) that produce a desired state
// transition — satisfied by internal/graph.Driver.
type ActionSource interface {
	GetActionByState(ctx context.Context, stateDef model.StateDef) ([]model.Action, error)
}

// Solver runs the planner against an ActionSource.
type Solver struct {
	actions ActionSource
}

// New creates a Solver backed by actions.
func New(actions ActionSource) *Solver {
	return &Solver{actions: actions}
}

type run struct {
	actions       ActionSource
	queue         []model.Action
	situation     model.Situation
	initSituation model.Situation
	history       *model.StateDef
	plan          []model.Action
}

// Resolve runs the solver to completion and returns the ordered plan.
// carrierStates and workStates are concatenated to build the working
// situation; carrierStates alone define "home" (spec §4.5 step 3: work
// state is not part of the home condition).
func (s *Solver) Resolve(ctx context.Context, goals []model.Action, carrierStates, workStates []model.StateObject) ([]model.Action, error) {
	r := &run{
		actions: s.actions,
		queue:   reversedStack(goals),
	}
	all := make([]model.StateObject, 0, len(carrierStates)+len(workStates))
	all = append(all, carrierStates...)
	all = append(all, workStates...)
	r.situation = model.NewSituation(all)
	r.initSituation = model.NewSituation(append([]model.StateObject(nil), carrierStates...))

	action, ok, err := r.nextGoal(ctx)
	if err != nil {
		return nil, err
	}
	for ok {
		switch {
		case action.Effect().Equals(r.situation):
			action, ok, err = r.nextGoal(ctx)
		case possible(action, r.situation):
			apply(action, &r.situation)
			r.plan = append(r.plan, action)
			r.history = nil
			action, ok, err = r.nextGoal(ctx)
		default:
			action, err = r.expand(ctx, action)
		}
		if err != nil {
			return nil, err
		}
	}
	return r.plan, nil
}

// reversedStack seeds the goal stack so the earliest position-sorted goal
// is popped first: the stack is drained from its tail, so the original
// list is reversed on the way in (spec §4.5 step 1).
func reversedStack(goals []model.Action) []model.Action {
	stack := make([]model.Action, len(goals))
	for i, g := range goals {
		stack[len(goals)-1-i] = g
	}
	return stack
}

func (r *run) pop() (model.Action, bool) {
	if len(r.queue) == 0 {
		return model.Action{}, false
	}
	last := r.queue[len(r.queue)-1]
	r.queue = r.queue[:len(r.queue)-1]
	return last, true
}

// push re-inserts a onto the same end pop drains, so a repair action
// returned alongside it runs first and a is re-attempted immediately after
// (spec §4.5 invariant: "expand appends the unsatisfied action after
// computing the repair").
func (r *run) push(a model.Action) {
	r.queue = append(r.queue, a)
}

// possible reports whether a's preconditions hold in situation. The
// preconditions are always the left ("self") operand of Equals, which is
// the one place relation asymmetry is load-bearing (spec §4.5 invariant).
func possible(a model.Action, situation model.Situation) bool {
	return a.Preconditions.Equals(situation)
}

func apply(a model.Action, situation *model.Situation) {
	for _, res := range a.Results {
		situation.Update(res)
	}
}

// nextGoal pops the next goal off the queue. Once it's empty, it resolves a
// synthetic "return-home" repair if the world no longer matches the
// carrier-only initial situation; if the world already matches home, or no
// repair action exists for the divergence, it returns a terminal (false, nil)
// rather than an error — the original system treats an unrepairable
// return-home as "done", not a failure (spec §4.5).
func (r *run) nextGoal(ctx context.Context) (model.Action, bool, error) {
	if a, ok := r.pop(); ok {
		return a, true, nil
	}
	if r.situation.Equals(r.initSituation) {
		return model.Action{}, false, nil
	}
	want, have, ok := r.initSituation.Compare(r.situation)
	if !ok {
		return model.Action{}, false, nil
	}
	stateDef := model.BuildStateDef(have, want)
	actions, err := r.actions.GetActionByState(ctx, stateDef)
	if err != nil {
		return model.Action{}, false, apperr.Wrap("solver.nextGoal", err)
	}
	if len(actions) == 0 {
		return model.Action{}, false, nil
	}
	return actions[0], true, nil
}

// expand locates a repair action for action's first unmet precondition
// (spec §4.5). It fails with solver/infinite-resolution if the repair
// request is identical to the last one attempted with no progress in
// between, and with solver/no-repair-action if the database has no action
// at all for the state (even after retrying with the precondition dropped).
func (r *run) expand(ctx context.Context, action model.Action) (model.Action, error) {
	want, have, ok := action.Preconditions.Compare(r.situation)
	if !ok {
		return model.Action{}, apperr.New(apperr.KindSolverNoRepair, []string{"solver.expand"},
			"action %s has unmet preconditions but no differing state object was found", action.UID)
	}
	stateDef := model.BuildStateDef(have, want)

	if r.history != nil && r.history.Equals(stateDef) {
		return model.Action{}, apperr.New(apperr.KindSolverInfinite, []string{"solver.expand"},
			"infinite resolution: repeated request to move %q to %q", stateDef.UID, stateDef.Result)
	}
	r.history = &stateDef

	repair, err := r.findRepair(ctx, stateDef)
	if err != nil {
		return model.Action{}, err
	}
	if repair == nil {
		withoutPrecond := stateDef
		withoutPrecond.HasPrecond = false
		withoutPrecond.Precondition = ""
		repair, err = r.findRepair(ctx, withoutPrecond)
		if err != nil {
			return model.Action{}, err
		}
	}
	if repair == nil {
		return model.Action{}, apperr.New(apperr.KindSolverNoRepair, []string{"solver.expand"},
			"no action repairs %q to %q", stateDef.UID, stateDef.Result)
	}

	r.push(action)
	return *repair, nil
}

func (r *run) findRepair(ctx context.Context, stateDef model.StateDef) (*model.Action, error) {
	actions, err := r.actions.GetActionByState(ctx, stateDef)
	if err != nil {
		return nil, apperr.Wrap("solver.expand", err)
	}
	if len(actions) == 0 {
		return nil, nil
	}
	return &actions[0], nil
}
