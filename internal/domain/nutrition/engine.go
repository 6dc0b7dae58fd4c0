package nutrition

import (
	"github.com/shopspring/decimal"

	"github.com/ehr/nutrition/internal/domain/catalog"
)

// Limits are clinical thresholds. Exceeding one yields a validation warning;
// the value is still used as entered.
type Limits struct {
	MaxPumpRateMlPerHour     float64
	MaxInfusionHours         float64
	MaxGravityDropsPerMinute float64
	MaxGlucoseInfusionRate   float64
}

// Config is everything a computation needs besides the draft, catalog and patient.
type Config struct {
	Costs                    CostConfig
	Limits                   Limits
	DefaultEquipmentVolumeMl float64
}

// DefaultConfig mirrors the defaults of the service configuration.
func DefaultConfig() Config {
	return Config{
		Costs: CostConfig{
			NursingSeconds: map[NursingKey]float64{
				{SystemClosed, ModePump}:    300,
				{SystemClosed, ModeGravity}: 420,
				{SystemOpen, ModePump}:      480,
				{SystemOpen, ModeGravity}:   600,
			},
			BolusSeconds:      360,
			HourlyRate:        decimal.RequireFromString("45.00"),
			IndirectLaborCost: decimal.RequireFromString("12.50"),
		},
		Limits: Limits{
			MaxPumpRateMlPerHour:     300,
			MaxInfusionHours:         24,
			MaxGravityDropsPerMinute: 100,
			MaxGlucoseInfusionRate:   5,
		},
	}
}

// Result is the full output of one computation. It holds no references into
// the catalog or the draft and can be stored as is.
type Result struct {
	Summary    NutritionSummary `json:"summary"`
	Plan       *DispensingPlan  `json:"dispensing_plan"`
	Cost       CostBreakdown    `json:"cost"`
	RecordText string           `json:"record_text"`
	Warnings   []Warning        `json:"warnings"`
}

// HasDataIntegrityIssues reports whether any catalog reference failed to resolve cleanly.
func (r Result) HasDataIntegrityIssues() bool {
	for _, w := range r.Warnings {
		if w.Kind == KindDataIntegrity {
			return true
		}
	}
	return false
}

// Calculators returns the route calculators in aggregation order.
func Calculators(limits Limits) []RouteCalculator {
	return []RouteCalculator{
		EnteralCalculator{Limits: limits},
		OralCalculator{},
		ParenteralCalculator{Limits: limits},
	}
}

// Compute runs every stage of the engine. It never fails: missing catalog
// entries, absent anthropometrics and out-of-range values degrade to zero
// contributions and warnings.
func Compute(d *Draft, cat Catalog, p Patient, cfg Config) Result {
	var (
		subtotals []Subtotal
		warns     []Warning
		routes    RouteCombination
	)
	if d != nil {
		routes = d.Routes
	}
	if cat == nil {
		cat = catalog.NewSnapshot(nil, nil)
	}
	for _, calc := range Calculators(cfg.Limits) {
		if !routes.Has(calc.Route()) {
			continue
		}
		sub, w := calc.Calculate(d, cat, p)
		subtotals = append(subtotals, sub)
		warns = append(warns, w...)
	}

	summary := Aggregate(routes, subtotals, p)
	if d != nil {
		warns = append(warns, checkTargets(d.Targets, summary, p)...)
	}

	equipment := equipmentVolume(d, cfg)
	var plan *DispensingPlan
	if d != nil && routes.Has(RouteEnteral) && d.Enteral != nil &&
		d.Enteral.System == SystemClosed && len(d.Enteral.Formulas) > 0 {
		e := d.Enteral
		line := e.Formulas[0]
		f, ok := cat.Formula(line.FormulaID)
		pl := PlanDispensing(line.FormulaID, f, ok, AdministeredVolume(e.System, e.Mode, line), equipment, e.BagQuantities)
		plan = &pl
		warns = append(warns, CheckBags(pl)...)
	}

	cost := CalculateCost(d, cat, equipment, cfg.Costs)
	sortWarnings(warns)
	if warns == nil {
		warns = []Warning{}
	}
	return Result{
		Summary:    summary,
		Plan:       plan,
		Cost:       cost,
		RecordText: RenderRecord(d, summary, plan, cat),
		Warnings:   warns,
	}
}

func equipmentVolume(d *Draft, cfg Config) float64 {
	if d != nil && d.Enteral != nil && d.Enteral.EquipmentVolumeMl != nil {
		return nonNegative(*d.Enteral.EquipmentVolumeMl)
	}
	return nonNegative(cfg.DefaultEquipmentVolumeMl)
}
