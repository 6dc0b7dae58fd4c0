package nutrition

import (
	"fmt"

	"github.com/ehr/nutrition/internal/domain/catalog"
)

// EnteralCalculator computes the tube-feeding subtotal: formulas, modules and hydration.
type EnteralCalculator struct {
	Limits Limits
}

func (EnteralCalculator) Route() Route { return RouteEnteral }

func (c EnteralCalculator) Calculate(d *Draft, cat Catalog, _ Patient) (Subtotal, []Warning) {
	sub := Subtotal{Route: RouteEnteral}
	if d == nil || d.Enteral == nil {
		return sub, []Warning{validationWarning(CodeRouteDetailsMissing, "enteral", "enteral route is active but has no prescription")}
	}
	e := d.Enteral
	var warns []Warning

	for i, line := range e.Formulas {
		ref := fmt.Sprintf("enteral.formulas[%d]", i)
		warns = append(warns, c.checkInfusion(e, line, ref)...)

		vol := AdministeredVolume(e.System, e.Mode, line)
		lr := LineResult{
			Kind:            LineFormula,
			Ref:             ref,
			ItemID:          line.FormulaID,
			Administrations: line.Schedule.Count(),
			Amount:          vol,
			Unit:            string(UnitMillilitre),
		}
		f, ok := cat.Formula(line.FormulaID)
		if !ok {
			warns = append(warns, dataWarning(CodeFormulaNotFound, ref, "formula "+line.FormulaID.String()+" not found in catalog; contributing zero"))
			sub.addLine(lr)
			continue
		}
		if e.System.Valid() && !f.Supports(string(e.System)) {
			warns = append(warns, validationWarning(CodeFormulaSystemMismatch, ref,
				fmt.Sprintf("%s is not available for %s system", f.Name, e.System)))
		}
		lr.Name = f.Name
		lr.Resolved = true
		fillFormulaLine(&sub, &lr, f, vol, vol*nonNegative(f.KcalPerMl()))
		sub.VolumeMl += vol
		sub.addLine(lr)
	}

	for i, line := range e.Modules {
		ref := fmt.Sprintf("enteral.modules[%d]", i)
		n := line.Schedule.Count()
		qty := nonNegative(line.QuantityPerAdministration) * float64(n)
		lr, fiber, w := moduleContribution(cat, line.ModuleID, ref, qty, n, line.Unit)
		warns = append(warns, w...)
		sub.FiberG += fiber
		sub.addLine(lr)
	}

	if h := e.Hydration; h != nil {
		n := h.Schedule.Count()
		vol := BolusVolume(h.VolumePerAdministrationMl, n)
		sub.addLine(LineResult{
			Kind:            LineHydration,
			Ref:             "enteral.hydration",
			Resolved:        true,
			Administrations: n,
			Amount:          vol,
			Unit:            string(UnitMillilitre),
			FreeWaterMl:     vol,
		})
	}
	return sub, warns
}

// fillFormulaLine adds the per-100 ml composition of vol ml of f. kcal is
// passed in because enteral lines use density and oral lines use kcal/100 ml.
func fillFormulaLine(sub *Subtotal, lr *LineResult, f catalog.Formula, vol, kcal float64) {
	per100 := vol / 100
	comp := f.Composition
	lr.Kcal = kcal
	lr.ProteinG = per100 * nonNegative(comp.ProteinPer100ml)
	lr.FreeWaterMl = vol * nonNegative(f.WaterFraction())
	sub.CarbG += per100 * nonNegative(comp.CarbPer100ml)
	sub.FatG += per100 * nonNegative(comp.FatPer100ml)
	sub.FiberG += per100 * nonNegative(comp.FiberPer100ml)
	sub.Residue = sub.Residue.Add(f.Residue.Scale(vol / 1000))
}

func (c EnteralCalculator) checkInfusion(e *EnteralPrescription, line FormulaLine, ref string) []Warning {
	if !IsContinuous(e.System, e.Mode) {
		return nil
	}
	var warns []Warning
	lim := c.Limits
	if e.Mode == ModePump && lim.MaxPumpRateMlPerHour > 0 && line.RateMlPerHour > lim.MaxPumpRateMlPerHour {
		warns = append(warns, validationWarning(CodeRateAboveMax, ref,
			fmt.Sprintf("pump rate %.0f ml/h exceeds %.0f ml/h", line.RateMlPerHour, lim.MaxPumpRateMlPerHour)))
	}
	if e.Mode == ModeGravity && lim.MaxGravityDropsPerMinute > 0 && line.DropsPerMinute > lim.MaxGravityDropsPerMinute {
		warns = append(warns, validationWarning(CodeDripAboveMax, ref,
			fmt.Sprintf("drip rate %.0f drops/min exceeds %.0f drops/min", line.DropsPerMinute, lim.MaxGravityDropsPerMinute)))
	}
	if lim.MaxInfusionHours > 0 && line.DurationHours > lim.MaxInfusionHours {
		warns = append(warns, validationWarning(CodeDurationAboveMax, ref,
			fmt.Sprintf("infusion duration %.1f h exceeds %.0f h", line.DurationHours, lim.MaxInfusionHours)))
	}
	return warns
}
