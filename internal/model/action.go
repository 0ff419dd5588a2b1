package model

// Asset is a resource an Action is performed with or on (an effector, a
// tool, a carrier). Assets are immutable once parsed.
type Asset struct {
	UID         string
	Description string
	Type        string
	Interface   string
}

// Action is a single robotic operation: a precondition Situation, a set of
// result StateObjects, the Assets it uses, and free-form metadata (notably
// "position", consumed by SortByPosition). Actions are immutable once parsed
// — Effect is computed on demand and never mutates Preconditions.
type Action struct {
	UID           string
	Description   string
	Type          ActionType
	Assets        []Asset
	Preconditions Situation
	Results       []StateObject
	Metadata      map[string]any
}

// ActionType enumerates the action kinds the optimizer's code alphabet
// understands (spec §4.6). Keeping it as a distinct string type (rather than
// a bare string) catches typos in the type-code table at compile time when
// used as a map key.
type ActionType string

const (
	ActionLoadEffector     ActionType = "LOAD.EFFECTOR"
	ActionUnloadEffector   ActionType = "UNLOAD.EFFECTOR"
	ActionMoveStationTool  ActionType = "MOVE.STATION.TOOL"
	ActionMoveStationWork  ActionType = "MOVE.STATION.WORK"
	ActionMoveStationHome  ActionType = "MOVE.STATION.HOME"
	ActionMoveTCPApproach  ActionType = "MOVE.TCP.APPROACH"
	ActionMoveTCPClearance ActionType = "MOVE.TCP.CLEARANCE"
	ActionMoveTCPWork      ActionType = "MOVE.TCP.WORK"
	ActionWorkProbe        ActionType = "WORK.PROBE"
)

// Effect is the Situation produced by applying every result on top of the
// preconditions. It is the termination check for "this goal is already
// satisfied" — note it is evaluated against the post-action world, so a
// goal whose effect already matches the world is elided without being
// re-applied (spec §4.2).
func (a Action) Effect() Situation {
	effect := a.Preconditions.Copy()
	for _, result := range a.Results {
		effect.Update(result)
	}
	return effect
}

// Position returns the metadata["position"] value typed as *Position, or nil
// if absent or of the wrong shape.
func (a Action) Position() *Position {
	raw, ok := a.Metadata["position"]
	if !ok {
		return nil
	}
	pos, ok := raw.(*Position)
	if !ok {
		return nil
	}
	return pos
}
