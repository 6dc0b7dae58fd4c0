package nutrition

import "fmt"

// Energy factors for parenteral substrates, kcal per gram. Glucose is the
// hydrous monohydrate, hence 3.4 rather than 4.
const (
	KcalPerGramAminoAcid = 4.0
	KcalPerGramLipid     = 9.0
	KcalPerGramGlucose   = 3.4
)

// ParenteralCalculator computes energy and protein from daily substrate grams.
type ParenteralCalculator struct {
	Limits Limits
}

func (ParenteralCalculator) Route() Route { return RouteParenteral }

func (c ParenteralCalculator) Calculate(d *Draft, _ Catalog, p Patient) (Subtotal, []Warning) {
	sub := Subtotal{Route: RouteParenteral}
	if d == nil || d.Parenteral == nil {
		return sub, []Warning{validationWarning(CodeRouteDetailsMissing, "parenteral", "parenteral route is active but has no prescription")}
	}
	pn := d.Parenteral
	aa := nonNegative(pn.AminoAcidsG)
	lipids := nonNegative(pn.LipidsG)
	glucose := nonNegative(pn.GlucoseG)
	hours := nonNegative(pn.InfusionHours)

	sub.addLine(LineResult{
		Kind: LineSubstrate, Ref: "parenteral.aminoacids", Resolved: true,
		Amount: aa, Unit: string(UnitGram), Kcal: aa * KcalPerGramAminoAcid, ProteinG: aa,
	})
	sub.addLine(LineResult{
		Kind: LineSubstrate, Ref: "parenteral.lipids", Resolved: true,
		Amount: lipids, Unit: string(UnitGram), Kcal: lipids * KcalPerGramLipid,
	})
	sub.addLine(LineResult{
		Kind: LineSubstrate, Ref: "parenteral.glucose", Resolved: true,
		Amount: glucose, Unit: string(UnitGram), Kcal: glucose * KcalPerGramGlucose,
	})
	sub.CarbG = glucose
	sub.FatG = lipids
	sub.GlucoseInfusionRate = GlucoseInfusionRate(glucose, p.weight(), hours)

	var warns []Warning
	if c.Limits.MaxInfusionHours > 0 && hours > c.Limits.MaxInfusionHours {
		warns = append(warns, validationWarning(CodeDurationAboveMax, "parenteral",
			fmt.Sprintf("infusion time %.1f h exceeds %.0f h", hours, c.Limits.MaxInfusionHours)))
	}
	if c.Limits.MaxGlucoseInfusionRate > 0 && sub.GlucoseInfusionRate > c.Limits.MaxGlucoseInfusionRate {
		warns = append(warns, validationWarning(CodeGlucoseRateAboveMax, "parenteral",
			fmt.Sprintf("glucose infusion rate %.1f mg/kg/min exceeds %.1f", sub.GlucoseInfusionRate, c.Limits.MaxGlucoseInfusionRate)))
	}
	return sub, warns
}

// GlucoseInfusionRate is mg of glucose per kg per minute; 0 when weight or hours are unknown.
func GlucoseInfusionRate(glucoseG, weightKg, hours float64) float64 {
	if weightKg <= 0 || hours <= 0 {
		return 0
	}
	return nonNegative(glucoseG) * 1000 / (weightKg * hours * 60)
}
