package nutrition

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ehr/nutrition/internal/domain/catalog"
)

var (
	peptamenID   = uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000001")
	standardID   = uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000002")
	supplementID = uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000003")
	proteinModID = uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000010")
	brokenModID  = uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000011")
	missingID    = uuid.MustParse("6f1c2a4e-0000-4000-8000-0000000000ff")
	patientID    = uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000100")
)

func ptr(v float64) *float64 { return &v }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func hours(hs ...int) Schedule {
	s := Schedule{}
	for _, h := range hs {
		s.Times = append(s.Times, TimeOfDay(h))
	}
	return s
}

func testCatalog() *catalog.Snapshot {
	formulas := []catalog.Formula{
		{
			ID:            peptamenID,
			Name:          "Peptamen 1.5",
			Manufacturer:  "Nestlé",
			System:        catalog.AvailableClosed,
			Density:       ptr(1.5),
			Composition:   catalog.Composition{CaloriesPer100ml: 150, ProteinPer100ml: 6.7, CarbPer100ml: 18.8, FatPer100ml: 5.6, WaterContentPer100ml: ptr(77)},
			Presentations: []float64{1000, 500},
			BillingPrice:  decimal.RequireFromString("38.90"),
			Residue:       catalog.Residue{PlasticG: 30},
		},
		{
			ID:           standardID,
			Name:         "Standard 1.0",
			System:       catalog.AvailableBoth,
			Composition:  catalog.Composition{CaloriesPer100ml: 100, ProteinPer100ml: 4, CarbPer100ml: 13.6, FatPer100ml: 3.4, FiberPer100ml: 1.5},
			BillingPrice: decimal.RequireFromString("9.50"),
			Residue:      catalog.Residue{PaperG: 20, MetalG: 5},
		},
		{
			ID:            supplementID,
			Name:          "Suplemento Hiperproteico",
			System:        catalog.AvailableOpen,
			Composition:   catalog.Composition{CaloriesPer100ml: 150, ProteinPer100ml: 10, WaterContentPer100ml: ptr(70)},
			Presentations: []float64{200},
			BillingPrice:  decimal.RequireFromString("7.20"),
			Residue:       catalog.Residue{PlasticG: 40},
		},
	}
	modules := []catalog.Module{
		{
			ID:                   proteinModID,
			Name:                 "Módulo Proteico",
			Unit:                 "g",
			Density:              3.6,
			ReferenceAmount:      10,
			ReferenceTimesPerDay: 3,
			ProteinG:             9,
			FiberG:               0,
			FreeWaterMl:          0,
			BillingPrice:         decimal.RequireFromString("2.10"),
		},
		{
			ID:           brokenModID,
			Name:         "Módulo Sem Referência",
			Unit:         "g",
			Density:      4,
			ProteinG:     5,
			BillingPrice: decimal.RequireFromString("1.00"),
		},
	}
	return catalog.NewSnapshot(formulas, modules)
}

// scenarioA is Peptamen 1.5 by pump at 50 ml/h for 20 h in a closed system.
func scenarioA() *Draft {
	return &Draft{
		PatientID: patientID,
		Routes:    EnteralOnly,
		Enteral: &EnteralPrescription{
			Access: AccessNasoenteric,
			System: SystemClosed,
			Mode:   ModePump,
			Formulas: []FormulaLine{
				{FormulaID: peptamenID, RateMlPerHour: 50, DurationHours: 20},
			},
			EquipmentVolumeMl: ptr(0),
		},
	}
}

func hasWarning(ws []Warning, code string) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}

func requireApprox(t *testing.T, name string, got, want float64) {
	t.Helper()
	if !approx(got, want) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func residue(plastic, paper float64) catalog.Residue {
	return catalog.Residue{PlasticG: plastic, PaperG: paper}
}
