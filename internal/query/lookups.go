package query

import (
	"fmt"
	"sort"

	"github.com/mars-robotics/buildseq/internal/model"
)

// AreaComponent constrains one facet of an Area descriptor (spec §4.3's
// area_definition): either "all" (unconstrained, omitted from the where
// clause), a single uid, or an OR-list of uids.
type AreaComponent struct {
	all    bool
	values []string
}

// AnyArea leaves a facet unconstrained.
func AnyArea() AreaComponent { return AreaComponent{all: true} }

// OneArea constrains a facet to a single area uid.
func OneArea(uid string) AreaComponent { return AreaComponent{values: []string{uid}} }

// OneOfAreas constrains a facet to any of the given area uids.
func OneOfAreas(uids ...string) AreaComponent { return AreaComponent{values: uids} }

// Matches reports whether this facet is satisfied by the set of area uids
// an owner is actually linked to — unconstrained facets always match, a
// single or multi-valued facet matches if any candidate uid is present.
func (a AreaComponent) Matches(reached map[string]bool) bool {
	if a.all {
		return true
	}
	for _, uid := range a.values {
		if reached[uid] {
			return true
		}
	}
	return false
}

// AreaDef is the area_definition descriptor: zero or more named facets
// (e.g. "aircraft_rail", "rail_area") each independently constrained.
type AreaDef map[string]AreaComponent

func (a AreaDef) sortedKeys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildPreconditions is the canonical "action's preconditions" sub-query,
// shared by every lookup that resolves to an action.
func buildPreconditions() *Query {
	q := NewQuery()
	q.Input.Add("action")
	q.Match.Add("(action)<-[precondition:PRECONDITION]-(precond_state:Resource:StateObject)")
	q.With.Add(`collect({state:precondition.state,
		relation:precondition.relation,
		priority:precondition.priority,
		definition:properties(precond_state)})`, "preconditions")
	q.Return.Add("preconditions")
	return q
}

func buildResults() *Query {
	q := NewQuery()
	q.Input.Add("action")
	q.Match.Add("(action)-[result:RESULT]->(result_state:Resource:StateObject)")
	q.With.Add(`collect({definition:properties(result_state),
		state:result.state,
		relation:result.relation})`, "results")
	q.Return.Add("results")
	return q
}

func buildAssets() *Query {
	q := NewQuery()
	q.Input.Add("action")
	q.Match.Add("(action)-[:PERFORM_BY]->(asset:Resource:Asset)")
	q.With.Add(`collect({definition: properties(asset),
		type: labels(asset)})`, "assets")
	q.Return.Add("assets")
	return q
}

func buildActionPosition() *Query {
	q := NewQuery()
	q.Input.Add("action")
	q.Match.Add("(action)-[:TO_REACH]->(area:Process:Area)")
	q.With.Add(`{areas: collect({reference: area.reference,
		type: area.type,
		uid: area.uid})}`, "position")
	q.Return.Add("position")
	return q
}

// buildAreaWhere renders the `exists((node)-[:relation]->(:Process:Area{uid:...}))`
// predicate group for every constrained facet of area, OR-joining facets
// that carry more than one candidate uid.
func buildAreaWhere(node, relation string, area AreaDef) *LogicList {
	group := NewLogicList(And)
	for _, key := range area.sortedKeys() {
		comp := area[key]
		if comp.all {
			continue
		}
		if len(comp.values) == 1 {
			group.Add(existsClause(node, relation, comp.values[0]))
			continue
		}
		or := NewLogicList(Or)
		for _, uid := range comp.values {
			or.Add(existsClause(node, relation, uid))
		}
		group.AddGroup(or)
	}
	return group
}

func existsClause(node, relation, areaUID string) string {
	return fmt.Sprintf("exists((%s)-[:%s]->(:Process:Area{uid:'%s'}))", node, relation, areaUID)
}

// buildApproachStationByArea is shared by get_approach_by_area and
// get_station_by_area: both resolve a single move action type constrained
// by area, then join its preconditions/results/assets/position.
func buildApproachStationByArea(actionType model.ActionType, area AreaDef) *Pipeline {
	pipeline := NewPipeline()

	action := NewQuery()
	action.Match.Add(fmt.Sprintf(`(action:Resource:Action{type:"%s"})`, actionType))
	action.Where.Replace(buildAreaWhere("action", "TO_REACH", area))
	action.Return.Add("action")

	pipeline.Add(action)
	pipeline.Add(buildPreconditions())
	pipeline.Add(buildResults())
	pipeline.Add(buildAssets())
	pipeline.Add(buildActionPosition())

	pipeline.With.Add("properties(action)", "definition")
	pipeline.With.Add("preconditions", "")
	pipeline.With.Add("results", "")
	pipeline.With.Add("assets", "")
	pipeline.With.Add("position", "")

	pipeline.Return.Add("definition")
	pipeline.Return.Add("preconditions")
	pipeline.Return.Add("results")
	pipeline.Return.Add("assets")
	pipeline.Return.Add("position")

	return pipeline
}

// BuildApproachByArea resolves MOVE.TCP.APPROACH actions reaching area.
func BuildApproachByArea(area AreaDef) string {
	return buildApproachStationByArea(model.ActionMoveTCPApproach, area).Build()
}

// BuildStationByArea resolves MOVE.STATION.WORK actions reaching area.
func BuildStationByArea(area AreaDef) string {
	return buildApproachStationByArea(model.ActionMoveStationWork, area).Build()
}

// BuildWorkByArea resolves the MOVE.TCP.WORK action whose result state
// matches an assembly localized in area, carrying the assembly's own
// coordinates as the action's position.
func BuildWorkByArea(area AreaDef) string {
	pipeline := NewPipeline()

	assembly := NewQuery()
	assembly.Match.Add("(assembly:Product:Assembly)-[:LOCALIZED_IN]->(area:Process:Area)")
	assembly.Where.Replace(buildAreaWhere("assembly", "LOCALIZED_IN", area))
	assembly.With.Add("assembly.uid", "uid")
	assembly.With.Add(`{coordinates: {x:assembly.origin.x,
		y:assembly.origin.y,
		z:assembly.origin.z},
		areas:collect({reference: area.reference,
			type: area.type,
			uid: area.uid})}`, "position")
	assembly.With.Add(`collect({reference: area.reference,
		type: area.type,
		uid: area.uid})`, "areas")
	assembly.Return.Add("uid")
	assembly.Return.Add("position")
	assembly.Return.Add("areas")

	action := NewQuery()
	action.Input.Add("uid")
	action.Match.Add(`(action:Resource:Action{type:"MOVE.TCP.WORK"})
		-[result:RESULT]->(so:Resource:StateObject{uid:"tcp_work"})`)
	action.Where.Add("result.state in uid")
	action.Return.Add("action")

	pipeline.Add(assembly)
	pipeline.Add(action)
	pipeline.Add(buildPreconditions())
	pipeline.Add(buildResults())
	pipeline.Add(buildAssets())

	pipeline.With.Add("properties(action)", "definition")
	pipeline.With.Add("preconditions", "")
	pipeline.With.Add("results", "")
	pipeline.With.Add("assets", "")
	pipeline.With.Add("position", "")

	pipeline.Return.Add("definition")
	pipeline.Return.Add("preconditions")
	pipeline.Return.Add("results")
	pipeline.Return.Add("assets")
	pipeline.Return.Add("position")

	return pipeline.Build()
}

// buildStateObjectWhere mirrors the Python relation-asymmetry contract for
// "find an action whose preconditions are satisfied by stateDef and whose
// results produce it": the precondition side may be satisfied either by an
// "eq" match on stateDef.Precondition or a "neq" match on stateDef.Result
// (the action's precondition merely forbids the goal's own result state).
func buildStateObjectWhere(stateDef model.StateDef) *LogicList {
	group := NewLogicList(And)
	group.Add(fmt.Sprintf(`state_object.uid = "%s"`, stateDef.UID))
	group.Add(fmt.Sprintf(`result.state = "%s"`, stateDef.Result))

	if stateDef.HasPrecond {
		or := NewLogicList(Or)

		eqAnd := NewLogicList(And)
		eqAnd.Add(`precondition.relation = "eq"`)
		eqAnd.Add(fmt.Sprintf(`precondition.state = "%s"`, stateDef.Precondition))

		neqAnd := NewLogicList(And)
		neqAnd.Add(`precondition.relation = "neq"`)
		neqAnd.Add(fmt.Sprintf(`precondition.state = "%s"`, stateDef.Result))

		or.AddGroup(eqAnd)
		or.AddGroup(neqAnd)
		group.AddGroup(or)
	}
	return group
}

// BuildActionByState resolves the action(s) whose RESULT produces
// stateDef.Result on stateDef.UID, optionally constrained by a starting
// precondition — the solver's "find a repair action for this goal" query.
func BuildActionByState(stateDef model.StateDef) string {
	pipeline := NewPipeline()

	action := NewQuery()
	action.Match.Add("(state_object:StateObject)-[precondition:PRECONDITION]->(action:Action)-[result:RESULT]->(state_object)")
	action.Where.Replace(buildStateObjectWhere(stateDef))
	action.Return.Add("action")

	pipeline.Add(action)
	pipeline.Add(buildPreconditions())
	pipeline.Add(buildResults())
	pipeline.Add(buildAssets())

	pipeline.With.Add("properties(action)", "definition")
	pipeline.With.Add("preconditions", "")
	pipeline.With.Add("results", "")
	pipeline.With.Add("assets", "")

	pipeline.Return.Add("definition")
	pipeline.Return.Add("preconditions")
	pipeline.Return.Add("results")
	pipeline.Return.Add("assets")

	return pipeline.Build()
}
