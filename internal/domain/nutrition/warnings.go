package nutrition

import (
	"sort"
	"strconv"
)

// WarningKind separates catalog data problems from clinical advisories.
type WarningKind string

const (
	KindDataIntegrity WarningKind = "data_integrity"
	KindValidation    WarningKind = "validation"
)

const (
	CodeFormulaNotFound       = "formula_not_found"
	CodeModuleNotFound        = "module_not_found"
	CodeZeroReferenceAmount   = "zero_reference_amount"
	CodeFormulaSystemMismatch = "formula_system_mismatch"
	CodeRateAboveMax          = "infusion_rate_above_max"
	CodeDripAboveMax          = "drip_rate_above_max"
	CodeDurationAboveMax      = "infusion_duration_above_max"
	CodeGlucoseRateAboveMax   = "glucose_infusion_rate_above_max"
	CodeBagCountBelowRequired = "bag_count_below_required"
	CodeBagCountAboveRequired = "bag_count_above_required"
	CodeKcalTargetUnmet       = "kcal_target_unmet"
	CodeProteinTargetUnmet    = "protein_target_unmet"
	CodeRouteDetailsMissing   = "route_details_missing"
)

// Warning is a non-fatal finding returned with a computation. Ref points at
// the draft element it concerns, e.g. "enteral.formulas[0]".
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Ref     string      `json:"ref,omitempty"`
}

func dataWarning(code, ref, msg string) Warning {
	return Warning{Kind: KindDataIntegrity, Code: code, Ref: ref, Message: msg}
}

func validationWarning(code, ref, msg string) Warning {
	return Warning{Kind: KindValidation, Code: code, Ref: ref, Message: msg}
}

func sortWarnings(ws []Warning) {
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].Kind != ws[j].Kind {
			return ws[i].Kind < ws[j].Kind
		}
		if ws[i].Ref != ws[j].Ref {
			return ws[i].Ref < ws[j].Ref
		}
		return ws[i].Code < ws[j].Code
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
