package amqpapi

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mars-robotics/buildseq/internal/config"
	"github.com/mars-robotics/buildseq/internal/model"
	"github.com/mars-robotics/buildseq/internal/query"
	"github.com/mars-robotics/buildseq/internal/sequence"
)

type fakeLookup struct {
	work     []model.Action
	lastArea query.AreaDef
}

func withPosition(a model.Action) model.Action {
	a.Metadata = map[string]any{"position": &model.Position{Area: model.Area{AircraftRail: "y+254"}}}
	return a
}

func (f *fakeLookup) GetWorkByArea(ctx context.Context, area query.AreaDef) ([]model.Action, error) {
	f.lastArea = area
	return f.work, nil
}
func (f *fakeLookup) GetStationByArea(ctx context.Context, area query.AreaDef) ([]model.Action, error) {
	return nil, nil
}
func (f *fakeLookup) GetApproachByArea(ctx context.Context, area query.AreaDef) ([]model.Action, error) {
	return nil, nil
}
func (f *fakeLookup) GetActionByState(ctx context.Context, sd model.StateDef) ([]model.Action, error) {
	return nil, nil
}

func defaultParams() config.DefaultParameters {
	return config.DefaultParameters{
		Situations: config.DefaultSituation{
			WorkSituation: map[string]config.StateEntry{
				"piece": {State: "undrilled", Relation: "eq"},
			},
			RobotSituation: map[string]config.StateEntry{
				"carrier": {State: "home", Relation: "eq"},
			},
		},
		Goals: config.DefaultGoals{
			DefaultType: "area",
			WorkArea:    map[string]string{"rail_area": "flange"},
		},
	}
}

func TestBuildResolvesTargetFromBodyAndReturnsRows(t *testing.T) {
	goal := withPosition(model.Action{
		UID:           "g1",
		Preconditions: model.NewSituation(nil),
		Results: []model.StateObject{
			model.NewStateObject("carrier", model.RelationEq, "busy"),
		},
	})
	lookup := &fakeLookup{work: []model.Action{goal}}
	c := &Consumer{unit: sequence.New(lookup), defaults: defaultParams()}

	body := []byte(`{"target": "work"}`)
	rows, err := c.build(context.Background(), body)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "g1", rows[0].UID)
}

func TestBuildOverlaysGoalsDefinitionFromBody(t *testing.T) {
	lookup := &fakeLookup{}
	c := &Consumer{unit: sequence.New(lookup), defaults: defaultParams()}

	body := []byte(`{"target": "work", "goalsDefinition": {"definitionType": "area", "definition": {"rail_area": "web"}}}`)
	rows, err := c.build(context.Background(), body)
	require.NoError(t, err)
	require.Empty(t, rows)
	require.Equal(t, query.OneArea("web"), lookup.lastArea["rail_area"])
}

func TestBuildRejectsUnknownTarget(t *testing.T) {
	lookup := &fakeLookup{}
	c := &Consumer{unit: sequence.New(lookup), defaults: defaultParams()}

	body := []byte(`{"target": "bogus"}`)
	_, err := c.build(context.Background(), body)
	require.Error(t, err)
}

func TestRequestBodyRoundTripsJSON(t *testing.T) {
	body := []byte(`{"target":"work","initialSituation":{"workSituation":{"piece":"drilled"}}}`)
	var req requestBody
	require.NoError(t, json.Unmarshal(body, &req))
	require.Equal(t, "work", req.Target)
	require.Equal(t, "drilled", req.InitialSituation.WorkSituation["piece"])
}
