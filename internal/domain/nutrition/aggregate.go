package nutrition

import "github.com/ehr/nutrition/internal/domain/catalog"

// ObesityBMI is the BMI above which protein is also reported per kg of ideal weight.
const ObesityBMI = 30.0

// IdealBMI is the reference BMI used to derive ideal weight.
const IdealBMI = 25.0

// NutritionSummary is the daily total across the active routes.
type NutritionSummary struct {
	Routes                  RouteCombination          `json:"routes"`
	TotalKcal               float64                   `json:"total_kcal"`
	TotalProteinG           float64                   `json:"total_protein_g"`
	TotalCarbG              float64                   `json:"total_carb_g"`
	TotalFatG               float64                   `json:"total_fat_g"`
	TotalFiberG             float64                   `json:"total_fiber_g"`
	TotalFreeWaterMl        float64                   `json:"total_free_water_ml"`
	TotalVolumeMl           float64                   `json:"total_volume_ml"`
	ResidueByRoute          map[Route]catalog.Residue `json:"residue_by_route,omitempty"`
	TotalResidue            catalog.Residue           `json:"total_residue"`
	KcalPerKg               float64                   `json:"kcal_per_kg"`
	ProteinPerKg            float64                   `json:"protein_per_kg"`
	ProteinPerKgIdealWeight float64                   `json:"protein_per_kg_ideal_weight"`
	BMI                     float64                   `json:"bmi"`
	IdealWeightKg           float64                   `json:"ideal_weight_kg"`
	GlucoseInfusionRate     float64                   `json:"glucose_infusion_rate"`
	ByRoute                 []Subtotal                `json:"by_route,omitempty"`
}

// IdealWeight is IdealBMI × height², or 0 when height is unknown.
func IdealWeight(heightM float64) float64 {
	if heightM <= 0 {
		return 0
	}
	return IdealBMI * heightM * heightM
}

// BMI is weight / height², or 0 when either is unknown.
func BMI(weightKg, heightM float64) float64 {
	if weightKg <= 0 || heightM <= 0 {
		return 0
	}
	return weightKg / (heightM * heightM)
}

// Aggregate sums the subtotals of the routes active in rc; subtotals of
// inactive routes are ignored. Per-kg fields are 0 when weight is unknown.
func Aggregate(rc RouteCombination, subtotals []Subtotal, p Patient) NutritionSummary {
	s := NutritionSummary{Routes: rc}
	for _, sub := range subtotals {
		if !rc.Has(sub.Route) {
			continue
		}
		s.TotalKcal += sub.Kcal
		s.TotalProteinG += sub.ProteinG
		s.TotalCarbG += sub.CarbG
		s.TotalFatG += sub.FatG
		s.TotalFiberG += sub.FiberG
		s.TotalFreeWaterMl += sub.FreeWaterMl
		s.TotalVolumeMl += sub.VolumeMl
		if s.ResidueByRoute == nil {
			s.ResidueByRoute = make(map[Route]catalog.Residue)
		}
		s.ResidueByRoute[sub.Route] = s.ResidueByRoute[sub.Route].Add(sub.Residue)
		s.TotalResidue = s.TotalResidue.Add(sub.Residue)
		if sub.GlucoseInfusionRate > s.GlucoseInfusionRate {
			s.GlucoseInfusionRate = sub.GlucoseInfusionRate
		}
		s.ByRoute = append(s.ByRoute, sub)
	}

	weight := p.weight()
	height := p.heightM()
	if weight > 0 {
		s.KcalPerKg = s.TotalKcal / weight
		s.ProteinPerKg = s.TotalProteinG / weight
	}
	s.BMI = BMI(weight, height)
	s.IdealWeightKg = IdealWeight(height)
	if s.BMI > ObesityBMI && s.IdealWeightKg > 0 {
		s.ProteinPerKgIdealWeight = s.TotalProteinG / s.IdealWeightKg
	}
	return s
}

func checkTargets(t Targets, s NutritionSummary, p Patient) []Warning {
	weight := p.weight()
	if weight <= 0 {
		return nil
	}
	var warns []Warning
	if t.KcalPerKg != nil && *t.KcalPerKg > 0 && s.KcalPerKg < *t.KcalPerKg {
		warns = append(warns, validationWarning(CodeKcalTargetUnmet, "targets.kcal_per_kg",
			"energy below target of "+formatFloat(*t.KcalPerKg)+" kcal/kg"))
	}
	if t.ProteinPerKg != nil && *t.ProteinPerKg > 0 && s.ProteinPerKg < *t.ProteinPerKg {
		warns = append(warns, validationWarning(CodeProteinTargetUnmet, "targets.protein_per_kg",
			"protein below target of "+formatFloat(*t.ProteinPerKg)+" g/kg"))
	}
	return warns
}
