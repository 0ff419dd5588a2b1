package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateObjectEqualsRelationAsymmetry(t *testing.T) {
	eqLeft := NewStateObject("tool", RelationEq, "mounted")
	require.True(t, eqLeft.Equals(NewStateObject("tool", RelationEq, "mounted")))
	require.False(t, eqLeft.Equals(NewStateObject("tool", RelationEq, "empty")))

	neqLeft := NewStateObject("carrier", RelationNeq, "parked")
	require.True(t, neqLeft.Equals(NewStateObject("carrier", RelationEq, "moving")))
	require.False(t, neqLeft.Equals(NewStateObject("carrier", RelationEq, "parked")))

	// Asymmetry: the right operand's relation is irrelevant.
	right := NewStateObject("carrier", RelationEq, "moving")
	require.False(t, right.Equals(neqLeft))
}

func TestSituationEqualsIgnoresMissingUIDsOnOther(t *testing.T) {
	goal := NewSituation([]StateObject{
		NewStateObject("tool", RelationEq, "mounted"),
	})
	world := NewSituation([]StateObject{
		NewStateObject("tool", RelationEq, "mounted"),
		NewStateObject("carrier_position", RelationEq, "home"),
	})

	// goal has fewer uids than world; every uid goal does carry matches.
	require.True(t, goal.Equals(world))

	// world has an unconstrained extra uid on the left in the other
	// direction, but that doesn't matter here because equality is
	// evaluated from the precondition (smaller) side.
	unsatisfied := NewSituation([]StateObject{
		NewStateObject("tool", RelationEq, "empty"),
	})
	require.False(t, goal.Equals(unsatisfied))
}

func TestSituationCompareReturnsLowestPriorityMismatch(t *testing.T) {
	self := NewSituation([]StateObject{
		{UID: "a", Relation: RelationEq, State: "1", Priority: 2},
		{UID: "b", Relation: RelationEq, State: "2", Priority: 1},
	})
	other := NewSituation([]StateObject{
		{UID: "a", Relation: RelationEq, State: "1", Priority: 0},
		{UID: "b", Relation: RelationEq, State: "x", Priority: 0},
	})

	self_, other_, ok := self.Compare(other)
	require.True(t, ok)
	require.Equal(t, "b", self_.UID)
	require.Equal(t, "x", other_.State)
}

func TestSituationUpdateReplacesByUID(t *testing.T) {
	s := NewSituation([]StateObject{
		NewStateObject("tool", RelationEq, "empty"),
	})
	s.Update(NewStateObject("tool", RelationEq, "mounted"))

	got, ok := s.Get("tool")
	require.True(t, ok)
	require.Equal(t, "mounted", got.State)
	require.Equal(t, 1, s.Len())
}

func TestSituationCopyIsIndependent(t *testing.T) {
	s := NewSituation([]StateObject{NewStateObject("tool", RelationEq, "empty")})
	clone := s.Copy()
	clone.Update(NewStateObject("tool", RelationEq, "mounted"))

	original, _ := s.Get("tool")
	copied, _ := clone.Get("tool")
	require.Equal(t, "empty", original.State)
	require.Equal(t, "mounted", copied.State)
}
