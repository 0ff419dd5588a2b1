package graph

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mars-robotics/buildseq/datalog"
	"github.com/mars-robotics/buildseq/internal/apperr"
	"github.com/mars-robotics/buildseq/internal/model"
	"github.com/mars-robotics/buildseq/internal/query"
)

// resolveAsset builds a model.Asset from an asset entity's own attributes.
func (d *Driver) resolveAsset(e datalog.Identity) (model.Asset, error) {
	attrs, err := d.entityAttrs(e)
	if err != nil {
		return model.Asset{}, err
	}
	return model.Asset{
		UID:         asString(attrs[attrAssetUID.String()]),
		Description: asString(attrs[attrAssetDescription.String()]),
		Type:        asString(attrs[attrAssetType.String()]),
		Interface:   asString(attrs[attrAssetInterface.String()]),
	}, nil
}

// resolveAssets follows every PERFORM_BY link off action.
func (d *Driver) resolveAssets(action datalog.Identity) ([]model.Asset, error) {
	links, err := d.linksTo(attrPerformAction, action)
	if err != nil {
		return nil, err
	}
	assets := make([]model.Asset, 0, len(links))
	for _, link := range links {
		linkAttrs, err := d.entityAttrs(link)
		if err != nil {
			return nil, err
		}
		assetRef, ok := linkAttrs[attrPerformAsset.String()].(datalog.Identity)
		if !ok {
			continue
		}
		asset, err := d.resolveAsset(assetRef)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// resolvePreconditions follows every PRECONDITION link into action and
// builds the Situation the action requires before it can run.
func (d *Driver) resolvePreconditions(action datalog.Identity) (model.Situation, error) {
	links, err := d.linksTo(attrPrecondAction, action)
	if err != nil {
		return model.Situation{}, err
	}
	states := make([]model.StateObject, 0, len(links))
	for _, link := range links {
		linkAttrs, err := d.entityAttrs(link)
		if err != nil {
			return model.Situation{}, err
		}
		stateRef, ok := linkAttrs[attrPrecondStateRef.String()].(datalog.Identity)
		if !ok {
			continue
		}
		nodeAttrs, err := d.entityAttrs(stateRef)
		if err != nil {
			return model.Situation{}, err
		}
		so := model.StateObject{
			UID:         asString(nodeAttrs[attrStateObjectUID.String()]),
			Relation:    model.Relation(asString(linkAttrs[attrPrecondRelation.String()])),
			State:       asString(linkAttrs[attrPrecondState.String()]),
			Description: asString(nodeAttrs[attrStateObjectDescription.String()]),
			Priority:    int(asFloat(linkAttrs[attrPrecondPriority.String()])),
		}
		states = append(states, so)
	}
	return model.NewSituation(states), nil
}

// resolveResults follows every RESULT link off action.
func (d *Driver) resolveResults(action datalog.Identity) ([]model.StateObject, error) {
	links, err := d.linksTo(attrResultAction, action)
	if err != nil {
		return nil, err
	}
	results := make([]model.StateObject, 0, len(links))
	for _, link := range links {
		linkAttrs, err := d.entityAttrs(link)
		if err != nil {
			return nil, err
		}
		stateRef, ok := linkAttrs[attrResultStateRef.String()].(datalog.Identity)
		if !ok {
			continue
		}
		nodeAttrs, err := d.entityAttrs(stateRef)
		if err != nil {
			return nil, err
		}
		results = append(results, model.StateObject{
			UID:         asString(nodeAttrs[attrStateObjectUID.String()]),
			Relation:    model.Relation(asString(linkAttrs[attrResultRelation.String()])),
			State:       asString(linkAttrs[attrResultState.String()]),
			Description: asString(nodeAttrs[attrStateObjectDescription.String()]),
		})
	}
	return results, nil
}

// resolvePosition follows every TO_REACH link off action and scores the
// resulting Area (spec §4.4). An action with no TO_REACH link has no
// position (nil, not an error) — not every action kind reaches an area.
func (d *Driver) resolvePosition(action datalog.Identity) (*model.Position, error) {
	links, err := d.linksTo(attrReachAction, action)
	if err != nil {
		return nil, err
	}
	pos := &model.Position{}
	found := false
	for _, link := range links {
		linkAttrs, err := d.entityAttrs(link)
		if err != nil {
			return nil, err
		}
		areaRef, ok := linkAttrs[attrReachArea.String()].(datalog.Identity)
		if !ok {
			continue
		}
		areaAttrs, err := d.entityAttrs(areaRef)
		if err != nil {
			return nil, err
		}
		applyAreaFacet(&pos.Area, asString(areaAttrs[attrAreaType.String()]), asString(areaAttrs[attrAreaReference.String()]))
		found = true
	}
	if !found {
		return nil, nil
	}
	return pos, nil
}

// applyAreaFacet assigns an area node's reference onto the Area facet named
// by areaType ("aircraft_rail", "rail_area", "rail_side", "crossbeam_side").
func applyAreaFacet(area *model.Area, areaType, reference string) {
	switch areaType {
	case "aircraft_rail":
		area.AircraftRail = reference
	case "rail_area":
		area.RailArea = reference
	case "rail_side":
		area.RailSide = reference
	case "crossbeam_side":
		area.CrossbeamSide = reference
	}
}

// buildAction assembles a complete model.Action from an action entity,
// the shared final step of every lookup (spec §4.3's row shape: definition
// + preconditions + results + assets + position).
func (d *Driver) buildAction(action datalog.Identity) (model.Action, error) {
	attrs, err := d.entityAttrs(action)
	if err != nil {
		return model.Action{}, err
	}
	preconditions, err := d.resolvePreconditions(action)
	if err != nil {
		return model.Action{}, err
	}
	results, err := d.resolveResults(action)
	if err != nil {
		return model.Action{}, err
	}
	assets, err := d.resolveAssets(action)
	if err != nil {
		return model.Action{}, err
	}
	position, err := d.resolvePosition(action)
	if err != nil {
		return model.Action{}, err
	}

	act := model.Action{
		UID:           asString(attrs[attrActionUID.String()]),
		Description:   asString(attrs[attrActionDescription.String()]),
		Type:          model.ActionType(asString(attrs[attrActionType.String()])),
		Assets:        assets,
		Preconditions: preconditions,
		Results:       results,
	}
	if position != nil {
		act.Metadata = map[string]any{"position": position}
	}
	return act, nil
}

// actionsByType scans every action of the given type, filters by area
// (unless area is empty/unconstrained), and resolves each into a full
// model.Action.
func (d *Driver) actionsByType(ctx context.Context, actionType model.ActionType, area query.AreaDef) ([]model.Action, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	typeDatoms, err := d.qb.GetAttribute(attrActionType)
	if err != nil {
		return nil, apperr.Wrap("graph.actionsByType", err)
	}

	var actions []model.Action
	for _, dm := range typeDatoms {
		if !stringEquals(dm.V, string(actionType)) {
			continue
		}
		ok, err := d.matchesArea(dm.E, attrReachAction, attrReachArea, area)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		act, err := d.buildAction(dm.E)
		if err != nil {
			return nil, err
		}
		actions = append(actions, act)
	}
	return actions, nil
}

// matchesArea reports whether owner (an action or assembly) has a link of
// linkOwnerAttr/linkAreaAttr into every constrained facet of area.
func (d *Driver) matchesArea(owner datalog.Identity, linkOwnerAttr, linkAreaAttr datalog.Keyword, area query.AreaDef) (bool, error) {
	if len(area) == 0 {
		return true, nil
	}
	links, err := d.linksTo(linkOwnerAttr, owner)
	if err != nil {
		return false, err
	}
	reached := make(map[string]bool)
	for _, link := range links {
		linkAttrs, err := d.entityAttrs(link)
		if err != nil {
			return false, err
		}
		areaRef, ok := linkAttrs[linkAreaAttr.String()].(datalog.Identity)
		if !ok {
			continue
		}
		areaAttrs, err := d.entityAttrs(areaRef)
		if err != nil {
			return false, err
		}
		reached[asString(areaAttrs[attrAreaUID.String()])] = true
	}
	for _, comp := range area {
		if !comp.Matches(reached) {
			return false, nil
		}
	}
	return true, nil
}

// GetApproachByArea resolves MOVE.TCP.APPROACH actions reaching area.
func (d *Driver) GetApproachByArea(ctx context.Context, area query.AreaDef) ([]model.Action, error) {
	log.Debug().Str("lookup", "approach_by_area").Str("query", query.BuildApproachByArea(area)).Msg("graph lookup")
	return d.actionsByType(ctx, model.ActionMoveTCPApproach, area)
}

// GetStationByArea resolves MOVE.STATION.WORK actions reaching area.
func (d *Driver) GetStationByArea(ctx context.Context, area query.AreaDef) ([]model.Action, error) {
	log.Debug().Str("lookup", "station_by_area").Str("query", query.BuildStationByArea(area)).Msg("graph lookup")
	return d.actionsByType(ctx, model.ActionMoveStationWork, area)
}

// GetWorkByArea resolves the MOVE.TCP.WORK action whose result state
// matches an assembly localized in area, attaching the assembly's own
// coordinates to the action's position.
func (d *Driver) GetWorkByArea(ctx context.Context, area query.AreaDef) ([]model.Action, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	log.Debug().Str("lookup", "work_by_area").Str("query", query.BuildWorkByArea(area)).Msg("graph lookup")
	uidDatoms, err := d.qb.GetAttribute(attrAssemblyUID)
	if err != nil {
		return nil, apperr.Wrap("graph.GetWorkByArea", err)
	}

	var actions []model.Action
	for _, dm := range uidDatoms {
		assembly := dm.E
		ok, err := d.matchesArea(assembly, attrLocalizedAssembly, attrLocalizedArea, area)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		assemblyUID := asString(dm.V)

		resultDatoms, err := d.qb.GetAttribute(attrResultState)
		if err != nil {
			return nil, apperr.Wrap("graph.GetWorkByArea", err)
		}
		for _, rd := range resultDatoms {
			if !stringEquals(rd.V, assemblyUID) {
				continue
			}
			linkAttrs, err := d.entityAttrs(rd.E)
			if err != nil {
				return nil, err
			}
			actionRef, ok := linkAttrs[attrResultAction.String()].(datalog.Identity)
			if !ok {
				continue
			}
			act, err := d.buildAction(actionRef)
			if err != nil {
				return nil, err
			}
			if act.Type != model.ActionMoveTCPWork {
				continue
			}
			act.Metadata = map[string]any{"position": &model.Position{
				Coordinates:    d.assemblyCoordinates(assembly),
				HasCoordinates: true,
			}}
			actions = append(actions, act)
		}
	}
	return actions, nil
}

func (d *Driver) assemblyCoordinates(assembly datalog.Identity) model.Coordinates {
	attrs, err := d.entityAttrs(assembly)
	if err != nil {
		return model.Coordinates{}
	}
	return model.Coordinates{
		X: asFloat(attrs[attrAssemblyOriginX.String()]),
		Y: asFloat(attrs[attrAssemblyOriginY.String()]),
		Z: asFloat(attrs[attrAssemblyOriginZ.String()]),
	}
}

// GetActionByState resolves the action(s) whose RESULT produces
// stateDef.Result on stateDef.UID, optionally constrained by a starting
// precondition — the solver's repair-action query.
func (d *Driver) GetActionByState(ctx context.Context, stateDef model.StateDef) ([]model.Action, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	log.Debug().Str("lookup", "action_by_state").Str("query", query.BuildActionByState(stateDef)).Msg("graph lookup")
	resultDatoms, err := d.qb.GetAttribute(attrResultState)
	if err != nil {
		return nil, apperr.Wrap("graph.GetActionByState", err)
	}

	var actions []model.Action
	for _, rd := range resultDatoms {
		if !stringEquals(rd.V, stateDef.Result) {
			continue
		}
		linkAttrs, err := d.entityAttrs(rd.E)
		if err != nil {
			return nil, err
		}
		stateRef, ok := linkAttrs[attrResultStateRef.String()].(datalog.Identity)
		if !ok {
			continue
		}
		nodeAttrs, err := d.entityAttrs(stateRef)
		if err != nil {
			return nil, err
		}
		if asString(nodeAttrs[attrStateObjectUID.String()]) != stateDef.UID {
			continue
		}
		actionRef, ok := linkAttrs[attrResultAction.String()].(datalog.Identity)
		if !ok {
			continue
		}
		if stateDef.HasPrecond {
			satisfied, err := d.actionSatisfiesPrecondition(actionRef, stateDef)
			if err != nil {
				return nil, err
			}
			if !satisfied {
				continue
			}
		}
		act, err := d.buildAction(actionRef)
		if err != nil {
			return nil, err
		}
		actions = append(actions, act)
	}
	return actions, nil
}

// actionSatisfiesPrecondition implements the eq/neq disjunction from
// buildStateObjectWhere (internal/query): the action's precondition on this
// state object must either equal stateDef.Precondition under "eq", or
// equal stateDef.Result under "neq" (forbidding its own result beforehand).
func (d *Driver) actionSatisfiesPrecondition(action datalog.Identity, stateDef model.StateDef) (bool, error) {
	links, err := d.linksTo(attrPrecondAction, action)
	if err != nil {
		return false, err
	}
	for _, link := range links {
		linkAttrs, err := d.entityAttrs(link)
		if err != nil {
			return false, err
		}
		stateRef, ok := linkAttrs[attrPrecondStateRef.String()].(datalog.Identity)
		if !ok {
			continue
		}
		nodeAttrs, err := d.entityAttrs(stateRef)
		if err != nil {
			return false, err
		}
		if asString(nodeAttrs[attrStateObjectUID.String()]) != stateDef.UID {
			continue
		}
		relation := asString(linkAttrs[attrPrecondRelation.String()])
		state := asString(linkAttrs[attrPrecondState.String()])
		if relation == string(model.RelationEq) && state == stateDef.Precondition {
			return true, nil
		}
		if relation == string(model.RelationNeq) && state == stateDef.Result {
			return true, nil
		}
	}
	return false, nil
}
