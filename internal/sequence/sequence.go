// Package sequence is the orchestrator: given a sequence kind, an area
// descriptor and an initial situation, it fetches the matching goal
// actions, position-sorts them, runs the solver, optimizes the result and
// hands back a plan ready for serialization (spec §4.7). Grounded on
// original_source/processor/components.py's SequenceUnit.build.
package sequence

import (
	"context"

	"github.com/mars-robotics/buildseq/internal/apperr"
	"github.com/mars-robotics/buildseq/internal/model"
	"github.com/mars-robotics/buildseq/internal/optimize"
	"github.com/mars-robotics/buildseq/internal/query"
	"github.com/mars-robotics/buildseq/internal/solver"
)

// Kind is the sequence-type registry (spec §4.7, §9 "Dynamic dispatch on
// sequence kind") — a total switch over a closed sum type, never a
// string-keyed map of handler functions.
type Kind int

const (
	WorkArea Kind = iota
	StationArea
	ApproachArea
)

// String renders the registry key used on the wire (spec §6: the sequence
// type is "<target>_area").
func (k Kind) String() string {
	switch k {
	case WorkArea:
		return "work_area"
	case StationArea:
		return "station_area"
	case ApproachArea:
		return "approach_area"
	default:
		return "unknown"
	}
}

// ParseKind resolves a wire key to a Kind, reporting false for anything
// outside the {work_area, station_area, approach_area} registry.
func ParseKind(key string) (Kind, bool) {
	switch key {
	case "work_area":
		return WorkArea, true
	case "station_area":
		return StationArea, true
	case "approach_area":
		return ApproachArea, true
	default:
		return 0, false
	}
}

// Lookup is everything the orchestrator needs from the data unit: the
// three area-scoped goal fetches plus the state-repair lookup the solver
// itself drives (internal/graph.Driver implements all four).
type Lookup interface {
	solver.ActionSource
	GetWorkByArea(ctx context.Context, area query.AreaDef) ([]model.Action, error)
	GetStationByArea(ctx context.Context, area query.AreaDef) ([]model.Action, error)
	GetApproachByArea(ctx context.Context, area query.AreaDef) ([]model.Action, error)
}

// Unit builds sequences against a Lookup.
type Unit struct {
	lookup Lookup
}

// New creates a Unit backed by lookup.
func New(lookup Lookup) *Unit {
	return &Unit{lookup: lookup}
}

// Build runs the fetch → sort → solve → optimize pipeline and returns the
// finished plan. carrierStates/workStates seed the solver's initial
// situation exactly as Solver.Resolve expects.
func (u *Unit) Build(ctx context.Context, kind Kind, area query.AreaDef, carrierStates, workStates []model.StateObject) ([]model.Action, error) {
	var goals []model.Action
	var err error

	switch kind {
	case WorkArea:
		goals, err = u.lookup.GetWorkByArea(ctx, area)
	case StationArea:
		goals, err = u.lookup.GetStationByArea(ctx, area)
	case ApproachArea:
		goals, err = u.lookup.GetApproachByArea(ctx, area)
	default:
		return nil, apperr.New(apperr.KindModelParseError, []string{"sequence.Build"},
			"unknown sequence kind %d", int(kind))
	}
	if err != nil {
		return nil, apperr.Wrap("sequence.Build", err)
	}

	goals, err = model.SortByPosition(goals)
	if err != nil {
		return nil, apperr.Wrap("sequence.Build", err)
	}

	plan, err := solver.New(u.lookup).Resolve(ctx, goals, carrierStates, workStates)
	if err != nil {
		return nil, apperr.Wrap("sequence.Build", err)
	}

	return optimize.BeginWithProbing(plan), nil
}

// StatesFromMap builds StateObjects from a wire-shaped {uid: value} map,
// forcing relation=eq on every entry (spec §6: "forces relation=eq").
func StatesFromMap(values map[string]string) []model.StateObject {
	out := make([]model.StateObject, 0, len(values))
	for uid, value := range values {
		out = append(out, model.NewStateObject(uid, model.RelationEq, value))
	}
	return out
}
