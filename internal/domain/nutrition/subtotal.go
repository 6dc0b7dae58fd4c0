package nutrition

import (
	"github.com/google/uuid"

	"github.com/ehr/nutrition/internal/domain/catalog"
)

// Catalog resolves formulas and modules by id. A miss returns ok == false and
// the engine substitutes a zero contribution.
type Catalog interface {
	Formula(id uuid.UUID) (catalog.Formula, bool)
	Module(id uuid.UUID) (catalog.Module, bool)
}

// RouteCalculator turns the route-specific part of a draft into a subtotal.
type RouteCalculator interface {
	Route() Route
	Calculate(d *Draft, cat Catalog, p Patient) (Subtotal, []Warning)
}

// LineKind identifies what produced a LineResult.
type LineKind string

const (
	LineFormula    LineKind = "formula"
	LineModule     LineKind = "module"
	LineHydration  LineKind = "hydration"
	LineSupplement LineKind = "supplement"
	LineEstimate   LineKind = "estimate"
	LineSubstrate  LineKind = "substrate"
)

// LineResult is the contribution of one prescription line.
type LineResult struct {
	Kind            LineKind  `json:"kind"`
	Ref             string    `json:"ref"`
	ItemID          uuid.UUID `json:"item_id,omitempty"`
	Name            string    `json:"name,omitempty"`
	Resolved        bool      `json:"resolved"`
	Administrations int       `json:"administrations"`
	Amount          float64   `json:"amount"`
	Unit            string    `json:"unit"`
	Kcal            float64   `json:"kcal"`
	ProteinG        float64   `json:"protein_g"`
	FreeWaterMl     float64   `json:"free_water_ml"`
}

// Subtotal is one route's daily contribution. VolumeMl counts formula volume
// only; hydration water is in FreeWaterMl.
type Subtotal struct {
	Route               Route           `json:"route"`
	Kcal                float64         `json:"kcal"`
	ProteinG            float64         `json:"protein_g"`
	CarbG               float64         `json:"carb_g"`
	FatG                float64         `json:"fat_g"`
	FiberG              float64         `json:"fiber_g"`
	FreeWaterMl         float64         `json:"free_water_ml"`
	VolumeMl            float64         `json:"volume_ml"`
	Residue             catalog.Residue `json:"residue"`
	GlucoseInfusionRate float64         `json:"glucose_infusion_rate,omitempty"`
	Lines               []LineResult    `json:"lines,omitempty"`
}

func (s *Subtotal) addLine(l LineResult) {
	s.Kcal += l.Kcal
	s.ProteinG += l.ProteinG
	s.FreeWaterMl += l.FreeWaterMl
	s.Lines = append(s.Lines, l)
}

// moduleContribution applies the reference-dose ratios of a module to the
// daily quantity. Shared by the enteral and oral calculators.
func moduleContribution(cat Catalog, id uuid.UUID, ref string, qty float64, administrations int, unit QuantityUnit) (LineResult, float64, []Warning) {
	lr := LineResult{Kind: LineModule, Ref: ref, ItemID: id, Administrations: administrations, Amount: qty, Unit: string(unit)}
	m, ok := cat.Module(id)
	if !ok {
		return lr, 0, []Warning{dataWarning(CodeModuleNotFound, ref, "module "+id.String()+" not found in catalog; contributing zero")}
	}
	lr.Name = m.Name
	lr.Resolved = true
	if lr.Unit == "" {
		lr.Unit = m.Unit
	}
	lr.Kcal = qty * nonNegative(m.Density)

	var warns []Warning
	protein, ok := m.PerUnit(nonNegative(m.ProteinG))
	if !ok {
		warns = append(warns, dataWarning(CodeZeroReferenceAmount, ref, "module "+m.Name+" has reference amount 0; protein, fiber and water ratios treated as 0"))
	}
	fiber, _ := m.PerUnit(nonNegative(m.FiberG))
	water, _ := m.PerUnit(nonNegative(m.FreeWaterMl))
	lr.ProteinG = nonNegative(qty * protein)
	lr.FreeWaterMl = nonNegative(qty * water)
	return lr, nonNegative(qty * fiber), warns
}
