package sequence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mars-robotics/buildseq/internal/model"
	"github.com/mars-robotics/buildseq/internal/query"
)

// fakeLookup answers the three area lookups from one fixed list per sequence
// kind, ignoring the area, and GetActionByState from byResult, keyed by
// uid+"->"+result.
type fakeLookup struct {
	work, station, approach []model.Action
	byResult                map[string][]model.Action
}

func withPosition(a model.Action) model.Action {
	a.Metadata = map[string]any{"position": &model.Position{
		Area: model.Area{AircraftRail: "y+254"},
	}}
	return a
}

func (f *fakeLookup) GetWorkByArea(ctx context.Context, area query.AreaDef) ([]model.Action, error) {
	return f.work, nil
}

func (f *fakeLookup) GetStationByArea(ctx context.Context, area query.AreaDef) ([]model.Action, error) {
	return f.station, nil
}

func (f *fakeLookup) GetApproachByArea(ctx context.Context, area query.AreaDef) ([]model.Action, error) {
	return f.approach, nil
}

func (f *fakeLookup) GetActionByState(ctx context.Context, sd model.StateDef) ([]model.Action, error) {
	return f.byResult[sd.UID+"->"+sd.Result], nil
}

func TestParseKindRoundTrips(t *testing.T) {
	for _, k := range []Kind{WorkArea, StationArea, ApproachArea} {
		parsed, ok := ParseKind(k.String())
		require.True(t, ok)
		require.Equal(t, k, parsed)
	}
	_, ok := ParseKind("bogus_area")
	require.False(t, ok)
}

func TestBuildEmptyGoalsAlreadyHome(t *testing.T) {
	lookup := &fakeLookup{}
	u := New(lookup)

	plan, err := u.Build(context.Background(), WorkArea, query.AreaDef{},
		[]model.StateObject{model.NewStateObject("carrier", model.RelationEq, "home")}, nil)
	require.NoError(t, err)
	require.Empty(t, plan)
}

func TestBuildSortsSolvesAndOptimizes(t *testing.T) {
	goal := withPosition(model.Action{
		UID:           "g1",
		Preconditions: model.NewSituation(nil),
		Results: []model.StateObject{
			model.NewStateObject("carrier", model.RelationEq, "busy"),
		},
	})

	goHome := model.Action{
		UID: "go-home",
		Preconditions: model.NewSituation([]model.StateObject{
			model.NewStateObject("carrier", model.RelationEq, "busy"),
		}),
		Results: []model.StateObject{
			model.NewStateObject("carrier", model.RelationEq, "away"),
		},
	}

	lookup := &fakeLookup{
		work: []model.Action{goal},
		byResult: map[string][]model.Action{
			"carrier->away": {goHome},
		},
	}
	u := New(lookup)

	plan, err := u.Build(context.Background(), WorkArea, query.AreaDef{},
		[]model.StateObject{model.NewStateObject("carrier", model.RelationEq, "away")}, nil)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	require.Equal(t, "g1", plan[0].UID)
	require.Equal(t, "go-home", plan[1].UID)
}

func TestBuildPropagatesMissingPositionAsError(t *testing.T) {
	lookup := &fakeLookup{
		station: []model.Action{{UID: "no-position"}},
	}
	u := New(lookup)

	_, err := u.Build(context.Background(), StationArea, query.AreaDef{}, nil, nil)
	require.Error(t, err)
}

func TestStatesFromMapForcesEqRelation(t *testing.T) {
	states := StatesFromMap(map[string]string{"tool": "mounted"})
	require.Len(t, states, 1)
	require.Equal(t, model.RelationEq, states[0].Relation)
	require.Equal(t, "mounted", states[0].State)
}

func TestBuildAreaDefConstrainsEachFacetToOneValue(t *testing.T) {
	area := BuildAreaDef(map[string]string{"rail_area": "flange"})
	require.Contains(t, area, "rail_area")
	require.Equal(t, query.OneArea("flange"), area["rail_area"])
}

func TestSerializeRendersAssetsAndType(t *testing.T) {
	action := model.Action{
		UID:         "approach-1",
		Description: "approach the flange",
		Type:        model.ActionMoveTCPApproach,
		Assets: []model.Asset{
			{UID: "probe", Description: "probe tool", Interface: "tcp"},
		},
	}
	rows := Serialize([]model.Action{action})
	require.Len(t, rows, 1)
	require.Equal(t, "approach-1", rows[0].UID)
	require.Equal(t, "MOVE.TCP.APPROACH", rows[0].Type)
	require.Len(t, rows[0].Assets, 1)
	require.Equal(t, "probe", rows[0].Assets[0].UID)
}
