package graph

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mars-robotics/buildseq/datalog"
	"github.com/mars-robotics/buildseq/internal/model"
	"github.com/mars-robotics/buildseq/internal/query"
)

func openTestDriver(t *testing.T) *Driver {
	t.Helper()
	dir, err := os.MkdirTemp("", "buildseq-graph-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	d, err := Open(context.Background(), dir, 0)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

// seedApproachAction writes one MOVE.TCP.APPROACH action reaching the
// rail_area=flange area flange-01, with one precondition, one result and one
// asset.
func seedApproachAction(t *testing.T, d *Driver) {
	t.Helper()
	tx := d.Transaction()

	action := datalog.NewIdentity("action:approach-1")
	require.NoError(t, tx.Add(action, attrActionUID, "approach-1"))
	require.NoError(t, tx.Add(action, attrActionType, string(model.ActionMoveTCPApproach)))
	require.NoError(t, tx.Add(action, attrActionDescription, "approach the flange"))

	precondState := datalog.NewIdentity("so:tool")
	require.NoError(t, tx.Add(precondState, attrStateObjectUID, "tool"))
	require.NoError(t, tx.Add(precondState, attrStateObjectDescription, "end effector tool"))

	precondLink := datalog.NewIdentity("link:precond-1")
	require.NoError(t, tx.Add(precondLink, attrPrecondAction, action))
	require.NoError(t, tx.Add(precondLink, attrPrecondStateRef, precondState))
	require.NoError(t, tx.Add(precondLink, attrPrecondState, "mounted"))
	require.NoError(t, tx.Add(precondLink, attrPrecondRelation, "eq"))
	require.NoError(t, tx.Add(precondLink, attrPrecondPriority, int64(1)))

	resultState := datalog.NewIdentity("so:tcp_approach")
	require.NoError(t, tx.Add(resultState, attrStateObjectUID, "tcp_approach"))

	resultLink := datalog.NewIdentity("link:result-1")
	require.NoError(t, tx.Add(resultLink, attrResultAction, action))
	require.NoError(t, tx.Add(resultLink, attrResultStateRef, resultState))
	require.NoError(t, tx.Add(resultLink, attrResultState, "flange-01"))
	require.NoError(t, tx.Add(resultLink, attrResultRelation, "eq"))

	asset := datalog.NewIdentity("asset:probe")
	require.NoError(t, tx.Add(asset, attrAssetUID, "probe"))
	require.NoError(t, tx.Add(asset, attrAssetType, "tool"))

	performLink := datalog.NewIdentity("link:perform-1")
	require.NoError(t, tx.Add(performLink, attrPerformAction, action))
	require.NoError(t, tx.Add(performLink, attrPerformAsset, asset))

	area := datalog.NewIdentity("area:flange-01")
	require.NoError(t, tx.Add(area, attrAreaUID, "flange-01"))
	require.NoError(t, tx.Add(area, attrAreaType, "rail_area"))
	require.NoError(t, tx.Add(area, attrAreaReference, "flange"))

	reachLink := datalog.NewIdentity("link:reach-1")
	require.NoError(t, tx.Add(reachLink, attrReachAction, action))
	require.NoError(t, tx.Add(reachLink, attrReachArea, area))

	_, err := tx.Commit()
	require.NoError(t, err)
}

func TestGetApproachByAreaResolvesFullAction(t *testing.T) {
	d := openTestDriver(t)
	seedApproachAction(t, d)

	actions, err := d.GetApproachByArea(context.Background(), query.AreaDef{
		"rail_area": query.OneArea("flange-01"),
	})
	require.NoError(t, err)
	require.Len(t, actions, 1)

	act := actions[0]
	require.Equal(t, "approach-1", act.UID)
	require.Equal(t, model.ActionMoveTCPApproach, act.Type)
	require.Len(t, act.Assets, 1)
	require.Equal(t, "probe", act.Assets[0].UID)
	require.Len(t, act.Results, 1)
	require.Equal(t, "flange-01", act.Results[0].State)

	pre, ok := act.Preconditions.Get("tool")
	require.True(t, ok)
	require.Equal(t, "mounted", pre.State)

	require.NotNil(t, act.Position())
	require.Equal(t, "flange", act.Position().Area.RailArea)
}

func TestGetApproachByAreaFiltersOutNonMatchingArea(t *testing.T) {
	d := openTestDriver(t)
	seedApproachAction(t, d)

	actions, err := d.GetApproachByArea(context.Background(), query.AreaDef{
		"rail_area": query.OneArea("web-02"),
	})
	require.NoError(t, err)
	require.Empty(t, actions)
}

func TestGetActionByStateFindsResultProducer(t *testing.T) {
	d := openTestDriver(t)
	seedApproachAction(t, d)

	actions, err := d.GetActionByState(context.Background(), model.StateDef{
		UID:    "tcp_approach",
		Result: "flange-01",
	})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	require.Equal(t, "approach-1", actions[0].UID)
}

func TestGetActionByStateHonorsEqNeqPrecondition(t *testing.T) {
	d := openTestDriver(t)
	seedApproachAction(t, d)

	// The precondition filter reads the action's precondition on the state
	// object it produces, so give approach-1 one on tcp_approach.
	tx := d.Transaction()
	link := datalog.NewIdentity("link:precond-2")
	require.NoError(t, tx.Add(link, attrPrecondAction, datalog.NewIdentity("action:approach-1")))
	require.NoError(t, tx.Add(link, attrPrecondStateRef, datalog.NewIdentity("so:tcp_approach")))
	require.NoError(t, tx.Add(link, attrPrecondState, "retracted"))
	require.NoError(t, tx.Add(link, attrPrecondRelation, "eq"))
	_, err := tx.Commit()
	require.NoError(t, err)

	matching, err := d.GetActionByState(context.Background(), model.StateDef{
		UID: "tcp_approach", Result: "flange-01",
		Precondition: "retracted", HasPrecond: true,
	})
	require.NoError(t, err)
	require.Len(t, matching, 1)

	nonMatching, err := d.GetActionByState(context.Background(), model.StateDef{
		UID: "tcp_approach", Result: "flange-01",
		Precondition: "empty", HasPrecond: true,
	})
	require.NoError(t, err)
	require.Empty(t, nonMatching)
}
