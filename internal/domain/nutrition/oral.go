package nutrition

import "fmt"

// OralCalculator adds supplements and modules to the clinician's estimate of
// what the patient eats from the hospital diet.
type OralCalculator struct{}

func (OralCalculator) Route() Route { return RouteOral }

func (OralCalculator) Calculate(d *Draft, cat Catalog, _ Patient) (Subtotal, []Warning) {
	sub := Subtotal{Route: RouteOral}
	if d == nil || d.Oral == nil {
		return sub, []Warning{validationWarning(CodeRouteDetailsMissing, "oral", "oral route is active but has no prescription")}
	}
	o := d.Oral
	var warns []Warning

	sub.addLine(LineResult{
		Kind:     LineEstimate,
		Ref:      "oral.estimate",
		Resolved: true,
		Kcal:     nonNegative(o.EstimatedKcal),
		ProteinG: nonNegative(o.EstimatedProteinG),
	})

	for i, line := range o.Supplements {
		ref := fmt.Sprintf("oral.supplements[%d]", i)
		n := line.Meals.Count()
		vol := BolusVolume(line.AmountPerAdministration, n)
		lr := LineResult{
			Kind:            LineSupplement,
			Ref:             ref,
			ItemID:          line.FormulaID,
			Administrations: n,
			Amount:          vol,
			Unit:            string(UnitMillilitre),
		}
		f, ok := cat.Formula(line.FormulaID)
		if !ok {
			warns = append(warns, dataWarning(CodeFormulaNotFound, ref, "supplement "+line.FormulaID.String()+" not found in catalog; contributing zero"))
			sub.addLine(lr)
			continue
		}
		lr.Name = f.Name
		lr.Resolved = true
		fillFormulaLine(&sub, &lr, f, vol, vol/100*nonNegative(f.Composition.CaloriesPer100ml))
		sub.VolumeMl += vol
		sub.addLine(lr)
	}

	for i, line := range o.Modules {
		ref := fmt.Sprintf("oral.modules[%d]", i)
		n := line.Meals.Count()
		qty := nonNegative(line.QuantityPerAdministration) * float64(n)
		lr, fiber, w := moduleContribution(cat, line.ModuleID, ref, qty, n, line.Unit)
		warns = append(warns, w...)
		sub.FiberG += fiber
		sub.addLine(lr)
	}
	return sub, warns
}
