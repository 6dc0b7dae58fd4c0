package nutrition

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/ehr/nutrition/internal/domain/catalog"
)

// DispensingPlan is the pack requisition for a closed-system formula line.
// Equipment volume is requested from the pharmacy but never delivered to the
// patient, so it stays out of the nutrition summary.
type DispensingPlan struct {
	FormulaID               uuid.UUID         `json:"formula_id"`
	FormulaName             string            `json:"formula_name,omitempty"`
	TotalVolumeForPatientMl float64           `json:"total_volume_for_patient_ml"`
	EquipmentVolumeMl       float64           `json:"equipment_volume_ml"`
	TotalVolumeToRequestMl  float64           `json:"total_volume_to_request_ml"`
	PackSizeMl              float64           `json:"pack_size_ml"`
	NumberOfPacksRequired   int               `json:"number_of_packs_required"`
	BagQuantities           map[TimeOfDay]int `json:"bag_quantities,omitempty"`
	ScheduledBags           int               `json:"scheduled_bags"`
	LeftoverMl              float64           `json:"leftover_ml"`
}

// MaxPacks caps PacksRequired so absurd volumes cannot overflow int.
const MaxPacks = math.MaxInt32

// PacksRequired is ceil(volume / packSize), 0 for no volume, at most MaxPacks.
func PacksRequired(volumeMl, packSizeMl float64) int {
	volumeMl = nonNegative(volumeMl)
	if volumeMl == 0 {
		return 0
	}
	if packSizeMl <= 0 || math.IsNaN(packSizeMl) {
		packSizeMl = catalog.DefaultPackSizeMl
	}
	packs := math.Ceil(volumeMl / packSizeMl)
	if packs > MaxPacks || math.IsNaN(packs) {
		return MaxPacks
	}
	return int(packs)
}

// PlanDispensing sizes the requisition for one formula line. When the formula
// is unknown the default pack size is used.
func PlanDispensing(formulaID uuid.UUID, f catalog.Formula, found bool, patientVolumeMl, equipmentVolumeMl float64, bags map[TimeOfDay]int) DispensingPlan {
	packSize := catalog.DefaultPackSizeMl
	name := ""
	if found {
		packSize = f.PackSize()
		name = f.Name
	}
	patientVolumeMl = nonNegative(patientVolumeMl)
	equipmentVolumeMl = nonNegative(equipmentVolumeMl)
	request := patientVolumeMl + equipmentVolumeMl

	plan := DispensingPlan{
		FormulaID:               formulaID,
		FormulaName:             name,
		TotalVolumeForPatientMl: patientVolumeMl,
		EquipmentVolumeMl:       equipmentVolumeMl,
		TotalVolumeToRequestMl:  request,
		PackSizeMl:              packSize,
		NumberOfPacksRequired:   PacksRequired(request, packSize),
	}
	plan.LeftoverMl = nonNegative(float64(plan.NumberOfPacksRequired)*packSize - request)
	if len(bags) > 0 {
		plan.BagQuantities = make(map[TimeOfDay]int, len(bags))
		for t, n := range bags {
			if !t.Valid() || n <= 0 {
				continue
			}
			plan.BagQuantities[t] = n
			plan.ScheduledBags += n
		}
	}
	return plan
}

// BagSlots returns the scheduled slots in ascending order.
func (p DispensingPlan) BagSlots() []TimeOfDay {
	out := make([]TimeOfDay, 0, len(p.BagQuantities))
	for t := range p.BagQuantities {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CheckBags compares the clinician's per-slot bag distribution with the
// required pack count. A mismatch is advisory and never blocks saving.
func CheckBags(p DispensingPlan) []Warning {
	switch {
	case p.ScheduledBags < p.NumberOfPacksRequired:
		return []Warning{validationWarning(CodeBagCountBelowRequired, "enteral.bag_quantities",
			fmt.Sprintf("%d bag(s) scheduled, %d required", p.ScheduledBags, p.NumberOfPacksRequired))}
	case p.ScheduledBags > p.NumberOfPacksRequired:
		return []Warning{validationWarning(CodeBagCountAboveRequired, "enteral.bag_quantities",
			fmt.Sprintf("%d bag(s) scheduled, only %d required", p.ScheduledBags, p.NumberOfPacksRequired))}
	}
	return nil
}
