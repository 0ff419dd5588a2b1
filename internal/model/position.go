package model

import (
	"fmt"
	"sort"
)

// Ordered value sets for the Area components, used for 1-based index
// scoring (spec §4.4). Order here is significant — it is the scoring order,
// not just a validation set.
var (
	aircraftRailOrder  = []string{"y+1292", "y+763", "y+254", "y-254", "y-763", "y-1292"}
	railAreaOrder      = []string{"flange", "web"}
	railSideOrder      = []string{"right", "left"}
	crossbeamSideOrder = []string{"front", "rear"}
)

const (
	aircraftRailCoeff  = 100.0
	railAreaCoeff      = 1000.0
	railSideCoeff      = 1.0
	crossbeamSideCoeff = 10.0
	coordXCoeff        = 1e-3
	coordXRefOffset    = -15100.0
)

// indexScore returns the 1-based index of value within order, times coeff,
// or 0 if value is empty (component not present on this Area).
func indexScore(order []string, value string, coeff float64) float64 {
	if value == "" {
		return 0
	}
	for i, v := range order {
		if v == value {
			return float64(i+1) * coeff
		}
	}
	return 0
}

// Area is the spatial descriptor used to pre-sort goals. Up to four
// components may be set; an empty string means "not present" and
// contributes 0 to the score.
type Area struct {
	AircraftRail  string
	RailArea      string
	RailSide      string
	CrossbeamSide string
}

// Score sums the per-component scores defined in spec §4.4.
func (a Area) Score() float64 {
	return indexScore(aircraftRailOrder, a.AircraftRail, aircraftRailCoeff) +
		indexScore(railAreaOrder, a.RailArea, railAreaCoeff) +
		indexScore(railSideOrder, a.RailSide, railSideCoeff) +
		indexScore(crossbeamSideOrder, a.CrossbeamSide, crossbeamSideCoeff)
}

// Coordinates carries the x/y/z position of an action or assembly. Only x
// contributes to the score (spec §4.4: y and z coefficients are 0).
type Coordinates struct {
	X, Y, Z float64
}

// Score applies the coefficient and reference offset to X, reversing it
// when reverse is true (crossbeam_side=="rear" && rail_area=="flange").
func (c Coordinates) Score(reverse bool) float64 {
	x := (c.X + coordXRefOffset) * coordXCoeff
	if reverse {
		x = 1 - x
	}
	return x
}

// Position composes an Area with optional Coordinates. HasCoordinates
// distinguishes "no coordinates supplied" from a legitimate (0,0,0).
type Position struct {
	Area           Area
	Coordinates    Coordinates
	HasCoordinates bool
}

// reverseX reports whether this Area's coordinate score must be reversed,
// per spec §4.4.
func (a Area) reverseX() bool {
	return a.CrossbeamSide == "rear" && a.RailArea == "flange"
}

// Score sums the Area score and, if present, the Coordinates score.
func (p Position) Score() float64 {
	score := p.Area.Score()
	if p.HasCoordinates {
		score += p.Coordinates.Score(p.Area.reverseX())
	}
	return score
}

// SortByPosition stable-sorts actions ascending by their metadata["position"]
// score. Every action must carry a *Position under "position"; an action
// without one is a data-unit contract violation and is reported as an error
// rather than silently scored as 0.
func SortByPosition(actions []Action) ([]Action, error) {
	sorted := make([]Action, len(actions))
	copy(sorted, actions)
	for _, a := range sorted {
		if a.Position() == nil {
			return nil, fmt.Errorf("action %s: no position at disposal for action", a.UID)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position().Score() < sorted[j].Position().Score()
	})
	return sorted, nil
}
