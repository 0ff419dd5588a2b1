package sequence

import (
	"github.com/mars-robotics/buildseq/internal/model"
	"github.com/mars-robotics/buildseq/internal/query"
)

// Row is the wire shape a plan action is serialized back to (spec §4.7
// step 6), grounded on original_source/processor/model/marsnode.py's
// Action.to_json/Asset.to_json.
type Row struct {
	UID         string     `json:"uid"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Assets      []AssetRow `json:"assets"`
}

// AssetRow is an Asset's wire shape.
type AssetRow struct {
	UID         string `json:"uid"`
	Description string `json:"description"`
	Interface   string `json:"interface"`
}

// Serialize renders a plan as the buildProcess row list (spec §6's
// successful-response body).
func Serialize(plan []model.Action) []Row {
	rows := make([]Row, len(plan))
	for i, a := range plan {
		assets := make([]AssetRow, len(a.Assets))
		for j, asset := range a.Assets {
			assets[j] = AssetRow{
				UID:         asset.UID,
				Description: asset.Description,
				Interface:   asset.Interface,
			}
		}
		rows[i] = Row{
			UID:         a.UID,
			Description: a.Description,
			Type:        string(a.Type),
			Assets:      assets,
		}
	}
	return rows
}

// BuildAreaDef converts a goalsDefinition.definition map (spec §6: flat
// {"aircraft_rail": "y+254", "rail_area": "flange", ...}) into an AreaDef,
// constraining each named facet to the single value given.
func BuildAreaDef(definition map[string]string) query.AreaDef {
	area := make(query.AreaDef, len(definition))
	for facet, value := range definition {
		area[facet] = query.OneArea(value)
	}
	return area
}
