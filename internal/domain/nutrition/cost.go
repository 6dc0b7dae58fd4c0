package nutrition

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NursingKey selects a nursing time entry.
type NursingKey struct {
	System SystemType
	Mode   InfusionMode
}

// CostConfig is the flat costing table passed in by the caller. Times are
// seconds of nursing work per administration event.
type CostConfig struct {
	NursingSeconds    map[NursingKey]float64
	BolusSeconds      float64
	HourlyRate        decimal.Decimal
	IndirectLaborCost decimal.Decimal
}

// SecondsPerEvent is the nursing time for one event. Bolus mode uses the
// shared bolus entry, as do modules and hydration.
func (c CostConfig) SecondsPerEvent(system SystemType, mode InfusionMode) float64 {
	if mode == ModeBolus {
		return nonNegative(c.BolusSeconds)
	}
	return nonNegative(c.NursingSeconds[NursingKey{System: system, Mode: mode}])
}

// CostItem is one priced line of the breakdown.
type CostItem struct {
	Ref            string          `json:"ref"`
	Description    string          `json:"description"`
	Units          int             `json:"units"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Material       decimal.Decimal `json:"material"`
	NursingEvents  int             `json:"nursing_events"`
	NursingSeconds float64         `json:"nursing_seconds"`
}

// CostBreakdown is the daily cost of a prescription.
type CostBreakdown struct {
	Items             []CostItem      `json:"items,omitempty"`
	MaterialCost      decimal.Decimal `json:"material_cost"`
	NursingSeconds    float64         `json:"nursing_seconds"`
	NursingCost       decimal.Decimal `json:"nursing_cost"`
	IndirectLaborCost decimal.Decimal `json:"indirect_labor_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
}

// CalculateCost prices the enteral and oral lines of a draft. Closed-system
// formulas are billed and hung per pack; everything else per administration.
// Unknown catalog items are priced at zero. Parenteral bags are compounded
// and billed by pharmacy, so they carry no cost here.
func CalculateCost(d *Draft, cat Catalog, equipmentVolumeMl float64, cfg CostConfig) CostBreakdown {
	var items []CostItem
	if d != nil && d.Routes.Has(RouteEnteral) && d.Enteral != nil {
		items = append(items, enteralCostItems(d.Enteral, cat, equipmentVolumeMl, cfg)...)
	}
	if d != nil && d.Routes.Has(RouteOral) && d.Oral != nil {
		items = append(items, oralCostItems(d.Oral, cat)...)
	}

	cb := CostBreakdown{Items: items, MaterialCost: decimal.Zero}
	for _, it := range items {
		cb.MaterialCost = cb.MaterialCost.Add(it.Material)
		cb.NursingSeconds += it.NursingSeconds
	}
	hours := decimal.NewFromFloat(cb.NursingSeconds).Div(decimal.NewFromInt(3600))
	cb.NursingCost = hours.Mul(cfg.HourlyRate).Round(2)
	cb.IndirectLaborCost = cfg.IndirectLaborCost
	cb.TotalCost = cb.MaterialCost.Add(cb.NursingCost).Add(cb.IndirectLaborCost)
	return cb
}

func enteralCostItems(e *EnteralPrescription, cat Catalog, equipmentVolumeMl float64, cfg CostConfig) []CostItem {
	var items []CostItem
	perEvent := cfg.SecondsPerEvent(e.System, e.Mode)
	for i, line := range e.Formulas {
		it := CostItem{Ref: fmt.Sprintf("enteral.formulas[%d]", i), UnitPrice: decimal.Zero}
		f, ok := cat.Formula(line.FormulaID)
		if IsContinuous(e.System, e.Mode) {
			packSize := 0.0
			if ok {
				packSize = f.PackSize()
			}
			it.Units = PacksRequired(AdministeredVolume(e.System, e.Mode, line)+nonNegative(equipmentVolumeMl), packSize)
		} else {
			it.Units = line.Schedule.Count()
		}
		if ok {
			it.Description = f.Name
			it.UnitPrice = f.BillingPrice
		}
		it.Material = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Units)))
		it.NursingEvents = it.Units
		it.NursingSeconds = float64(it.NursingEvents) * perEvent
		items = append(items, it)
	}
	for i, line := range e.Modules {
		n := line.Schedule.Count()
		it := CostItem{Ref: fmt.Sprintf("enteral.modules[%d]", i), Units: n, UnitPrice: decimal.Zero}
		if m, ok := cat.Module(line.ModuleID); ok {
			it.Description = m.Name
			it.UnitPrice = m.BillingPrice
		}
		it.Material = it.UnitPrice.Mul(decimal.NewFromInt(int64(n)))
		it.NursingEvents = n
		it.NursingSeconds = float64(n) * nonNegative(cfg.BolusSeconds)
		items = append(items, it)
	}
	if h := e.Hydration; h != nil {
		n := h.Schedule.Count()
		items = append(items, CostItem{
			Ref:            "enteral.hydration",
			Description:    "hidratação",
			UnitPrice:      decimal.Zero,
			Material:       decimal.Zero,
			NursingEvents:  n,
			NursingSeconds: float64(n) * nonNegative(cfg.BolusSeconds),
		})
	}
	return items
}

func oralCostItems(o *OralPrescription, cat Catalog) []CostItem {
	var items []CostItem
	for i, line := range o.Supplements {
		n := line.Meals.Count()
		it := CostItem{Ref: fmt.Sprintf("oral.supplements[%d]", i), Units: n, UnitPrice: decimal.Zero}
		if f, ok := cat.Formula(line.FormulaID); ok {
			it.Description = f.Name
			it.UnitPrice = f.BillingPrice
		}
		it.Material = it.UnitPrice.Mul(decimal.NewFromInt(int64(n)))
		items = append(items, it)
	}
	for i, line := range o.Modules {
		n := line.Meals.Count()
		it := CostItem{Ref: fmt.Sprintf("oral.modules[%d]", i), Units: n, UnitPrice: decimal.Zero}
		if m, ok := cat.Module(line.ModuleID); ok {
			it.Description = m.Name
			it.UnitPrice = m.BillingPrice
		}
		it.Material = it.UnitPrice.Mul(decimal.NewFromInt(int64(n)))
		items = append(items, it)
	}
	return items
}
