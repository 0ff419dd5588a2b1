// Package graph is the data unit: it stores the build process property
// graph (actions, state objects, assets, areas, assemblies) as datoms in
// the teacher's badger-backed store and answers the four lookups spec §4.3
// names, in the row shape internal/query describes.
package graph

import "github.com/mars-robotics/buildseq/datalog"

// Attribute keywords. Edges with their own properties (a PRECONDITION's
// relation/priority, a RESULT's relation) are reified as small link
// entities rather than bare refs, since a Datom carries exactly one value.
var (
	attrActionUID         = datalog.NewKeyword(":action/uid")
	attrActionType        = datalog.NewKeyword(":action/type")
	attrActionDescription = datalog.NewKeyword(":action/description")

	attrStateObjectUID         = datalog.NewKeyword(":stateobject/uid")
	attrStateObjectDescription = datalog.NewKeyword(":stateobject/description")

	attrAssetUID         = datalog.NewKeyword(":asset/uid")
	attrAssetDescription = datalog.NewKeyword(":asset/description")
	attrAssetType        = datalog.NewKeyword(":asset/type")
	attrAssetInterface   = datalog.NewKeyword(":asset/interface")

	attrAreaUID       = datalog.NewKeyword(":area/uid")
	attrAreaReference = datalog.NewKeyword(":area/reference")
	attrAreaType      = datalog.NewKeyword(":area/type")

	attrAssemblyUID     = datalog.NewKeyword(":assembly/uid")
	attrAssemblyOriginX = datalog.NewKeyword(":assembly/origin-x")
	attrAssemblyOriginY = datalog.NewKeyword(":assembly/origin-y")
	attrAssemblyOriginZ = datalog.NewKeyword(":assembly/origin-z")

	// PRECONDITION link: action <-[precondition]- state_object. The edge
	// carries its own "state" value distinct from the state object node's
	// uid/description (spec §4.3: precondition.state vs precond_state.uid).
	attrPrecondAction   = datalog.NewKeyword(":precondition-link/action")
	attrPrecondStateRef = datalog.NewKeyword(":precondition-link/state-object")
	attrPrecondState    = datalog.NewKeyword(":precondition-link/state")
	attrPrecondRelation = datalog.NewKeyword(":precondition-link/relation")
	attrPrecondPriority = datalog.NewKeyword(":precondition-link/priority")

	// RESULT link: action -[result]-> state_object
	attrResultAction   = datalog.NewKeyword(":result-link/action")
	attrResultStateRef = datalog.NewKeyword(":result-link/state-object")
	attrResultState    = datalog.NewKeyword(":result-link/state")
	attrResultRelation = datalog.NewKeyword(":result-link/relation")

	// PERFORM_BY link: action -> asset
	attrPerformAction = datalog.NewKeyword(":perform-link/action")
	attrPerformAsset  = datalog.NewKeyword(":perform-link/asset")

	// TO_REACH link: action -> area
	attrReachAction = datalog.NewKeyword(":reach-link/action")
	attrReachArea   = datalog.NewKeyword(":reach-link/area")

	// LOCALIZED_IN link: assembly -> area
	attrLocalizedAssembly = datalog.NewKeyword(":localized-link/assembly")
	attrLocalizedArea     = datalog.NewKeyword(":localized-link/area")
)
