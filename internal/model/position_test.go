package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAreaScoreIsOneBasedAndWeighted(t *testing.T) {
	a := Area{AircraftRail: "y+1292", RailArea: "flange", RailSide: "right", CrossbeamSide: "front"}
	// indices: aircraft_rail=1*100, rail_area=1*1000, rail_side=1*1, crossbeam_side=1*10
	require.Equal(t, 100.0+1000.0+1.0+10.0, a.Score())
}

func TestCoordinatesReversalOnRearFlange(t *testing.T) {
	rearFlange := Area{RailArea: "flange", CrossbeamSide: "rear"}
	require.True(t, rearFlange.reverseX())

	frontFlange := Area{RailArea: "flange", CrossbeamSide: "front"}
	require.False(t, frontFlange.reverseX())

	c := Coordinates{X: 15100}
	require.InDelta(t, 0.0, c.Score(false), 1e-9)
	require.InDelta(t, 1.0, c.Score(true), 1e-9)
}

func TestSortByPositionStableAndMonotone(t *testing.T) {
	mk := func(uid string, score Area) Action {
		return Action{
			UID:      uid,
			Metadata: map[string]any{"position": &Position{Area: score}},
		}
	}

	actions := []Action{
		mk("second", Area{AircraftRail: "y+763"}), // index 2 -> 200
		mk("first", Area{AircraftRail: "y+1292"}), // index 1 -> 100
		mk("tied-a", Area{AircraftRail: "y+254"}), // index 3 -> 300
		mk("tied-b", Area{AircraftRail: "y+254"}), // index 3 -> 300, same score, must stay after tied-a
	}

	sorted, err := SortByPosition(actions)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second", "tied-a", "tied-b"}, uids(sorted))
}

func TestSortByPositionRejectsMissingPosition(t *testing.T) {
	_, err := SortByPosition([]Action{{UID: "no-pos"}})
	require.Error(t, err)
}

func uids(actions []Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.UID
	}
	return out
}
