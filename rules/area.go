// Package rules derives visa areas, visa-type labels, and document checklists
// from a traveler's destination and dates. The checklist rule table is data,
// not code: it ships as embedded YAML and can be replaced via configuration.
package rules

import (
	"strings"

	"github.com/VisaTrek/visa-trek-backend/types"
)

// schengenAlpha2 is the fixed set of Schengen-area member states by ISO
// alpha-2 code.
var schengenAlpha2 = map[string]struct{}{
	"AT": {}, "BE": {}, "CZ": {}, "DK": {}, "EE": {}, "FI": {},
	"FR": {}, "DE": {}, "GR": {}, "HU": {}, "IS": {}, "IT": {},
	"LV": {}, "LI": {}, "LT": {}, "LU": {}, "MT": {}, "NL": {},
	"NO": {}, "PL": {}, "PT": {}, "SK": {}, "SI": {}, "ES": {},
	"SE": {}, "CH": {},
}

// VisaAreaForDestination maps an ISO alpha-2 destination country code to the
// visa area it falls under. Case-insensitive. The second return is false when
// the code is empty or outside the supported areas.
func VisaAreaForDestination(alpha2 string) (types.VisaArea, bool) {
	up := strings.ToUpper(strings.TrimSpace(alpha2))
	switch {
	case up == "":
		return "", false
	case up == "US":
		return types.VisaAreaUS, true
	case up == "GB":
		return types.VisaAreaUK, true
	}
	if _, ok := schengenAlpha2[up]; ok {
		return types.VisaAreaSchengen, true
	}
	return "", false
}

// VisaLabelFor maps a visa area to its visa-type display label. The second
// return is false for an empty or unknown area.
func VisaLabelFor(area types.VisaArea) (types.VisaTypeLabel, bool) {
	switch area {
	case types.VisaAreaUS:
		return types.VisaTypeUSB1B2, true
	case types.VisaAreaSchengen:
		return types.VisaTypeSchengenC, true
	case types.VisaAreaUK:
		return types.VisaTypeUKStandard, true
	default:
		return "", false
	}
}
