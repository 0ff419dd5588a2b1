package model

import "fmt"

// StateObject is a single world fact: a named value under a relation. Two
// StateObjects with the same uid are equivalent under Equals when the
// receiver's relation, applied to (receiver.State, other.State), holds.
type StateObject struct {
	UID         string
	Relation    Relation
	State       string
	Description string
	Priority    int
}

// NewStateObject builds a StateObject with the default (zero) priority.
func NewStateObject(uid string, relation Relation, state string) StateObject {
	return StateObject{UID: uid, Relation: relation, State: state}
}

// Equals checks semantic equality under the receiver's relation. This is the
// only place relation asymmetry surfaces: so.Equals(other) is not guaranteed
// to equal other.Equals(so) when the two carry different relations.
func (so StateObject) Equals(other StateObject) bool {
	return applyRelation(so.Relation, so.State, other.State)
}

func (so StateObject) String() string {
	return fmt.Sprintf("%s -> %s -> %s", so.UID, so.Relation, so.State)
}

// StateDef is the {uid, result, precondition?} descriptor the solver sends
// to the data unit to look up a repair action (spec §4.5).
type StateDef struct {
	UID          string
	Result       string
	Precondition string
	HasPrecond   bool
}

func (sd StateDef) Equals(other StateDef) bool {
	return sd.UID == other.UID &&
		sd.Result == other.Result &&
		sd.HasPrecond == other.HasPrecond &&
		(!sd.HasPrecond || sd.Precondition == other.Precondition)
}

// BuildStateDef constructs a StateDef from a (precondition, result) pair,
// e.g. as returned by Situation.Compare.
func BuildStateDef(precondition, result StateObject) StateDef {
	return StateDef{
		UID:          result.UID,
		Result:       result.State,
		Precondition: precondition.State,
		HasPrecond:   true,
	}
}
