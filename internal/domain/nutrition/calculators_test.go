package nutrition

import "testing"

func TestEnteral_ScenarioA_ClosedPump(t *testing.T) {
	d := scenarioA()
	sub, warns := EnteralCalculator{Limits: DefaultConfig().Limits}.Calculate(d, testCatalog(), Patient{})
	if len(warns) != 0 {
		t.Fatalf("expected no warnings, got %v", warns)
	}
	requireApprox(t, "volume", sub.VolumeMl, 1000)
	requireApprox(t, "kcal", sub.Kcal, 1500)
	requireApprox(t, "protein", sub.ProteinG, 67)
	requireApprox(t, "free water", sub.FreeWaterMl, 770)
	requireApprox(t, "plastic residue", sub.Residue.PlasticG, 30)
	if len(sub.Lines) != 1 || !sub.Lines[0].Resolved || sub.Lines[0].Name != "Peptamen 1.5" {
		t.Errorf("unexpected lines: %+v", sub.Lines)
	}
}

func TestEnteral_ScenarioB_OpenSystemTwoLines(t *testing.T) {
	d := &Draft{
		PatientID: patientID,
		Routes:    EnteralOnly,
		Enteral: &EnteralPrescription{
			System: SystemOpen,
			Mode:   ModeGravity,
			Formulas: []FormulaLine{
				{FormulaID: standardID, VolumePerAdministrationMl: 200, Schedule: hours(6, 12, 18)},
				{FormulaID: standardID, VolumePerAdministrationMl: 200, Schedule: hours(9, 15, 21)},
			},
		},
	}
	sub, warns := EnteralCalculator{}.Calculate(d, testCatalog(), Patient{})
	if len(warns) != 0 {
		t.Fatalf("expected no warnings, got %v", warns)
	}
	requireApprox(t, "volume", sub.VolumeMl, 1200)
	requireApprox(t, "kcal", sub.Kcal, 1200)
	requireApprox(t, "protein", sub.ProteinG, 48)
	requireApprox(t, "free water (default 80%)", sub.FreeWaterMl, 960)
	requireApprox(t, "fiber", sub.FiberG, 18)
}

func TestEnteral_ModulesAndHydration(t *testing.T) {
	d := scenarioA()
	d.Enteral.Modules = []ModuleLine{
		{ModuleID: proteinModID, QuantityPerAdministration: 10, Unit: UnitGram, Schedule: hours(8, 14, 20)},
	}
	d.Enteral.Hydration = &HydrationLine{VolumePerAdministrationMl: 100, Schedule: Schedule{Times: []TimeOfDay{10, 16}, Other: "se necessário"}}

	sub, warns := EnteralCalculator{}.Calculate(d, testCatalog(), Patient{})
	if len(warns) != 0 {
		t.Fatalf("expected no warnings, got %v", warns)
	}
	requireApprox(t, "kcal", sub.Kcal, 1500+108)
	requireApprox(t, "protein", sub.ProteinG, 67+27)
	requireApprox(t, "free water", sub.FreeWaterMl, 770+300)
	requireApprox(t, "formula volume excludes hydration", sub.VolumeMl, 1000)
}

func TestEnteral_FormulaNotInCatalog(t *testing.T) {
	d := scenarioA()
	d.Enteral.Formulas = append(d.Enteral.Formulas, FormulaLine{FormulaID: missingID, RateMlPerHour: 40, DurationHours: 10})

	sub, warns := EnteralCalculator{}.Calculate(d, testCatalog(), Patient{})
	if !hasWarning(warns, CodeFormulaNotFound) {
		t.Fatalf("expected %s warning, got %v", CodeFormulaNotFound, warns)
	}
	if warns[0].Kind != KindDataIntegrity || warns[0].Ref != "enteral.formulas[1]" {
		t.Errorf("unexpected warning: %+v", warns[0])
	}
	requireApprox(t, "kcal from resolved line only", sub.Kcal, 1500)
	if sub.Lines[1].Resolved || sub.Lines[1].Kcal != 0 {
		t.Errorf("expected unresolved zero line, got %+v", sub.Lines[1])
	}
}

func TestEnteral_ModuleWithZeroReferenceAmount(t *testing.T) {
	d := scenarioA()
	d.Enteral.Modules = []ModuleLine{
		{ModuleID: brokenModID, QuantityPerAdministration: 5, Unit: UnitGram, Schedule: hours(8, 20)},
	}
	sub, warns := EnteralCalculator{}.Calculate(d, testCatalog(), Patient{})
	if !hasWarning(warns, CodeZeroReferenceAmount) {
		t.Fatalf("expected %s warning, got %v", CodeZeroReferenceAmount, warns)
	}
	mod := sub.Lines[1]
	requireApprox(t, "module kcal still uses density", mod.Kcal, 40)
	requireApprox(t, "module protein", mod.ProteinG, 0)
}

func TestEnteral_InfusionLimits(t *testing.T) {
	d := scenarioA()
	d.Enteral.Formulas[0].RateMlPerHour = 350
	d.Enteral.Formulas[0].DurationHours = 26

	_, warns := EnteralCalculator{Limits: DefaultConfig().Limits}.Calculate(d, testCatalog(), Patient{})
	if !hasWarning(warns, CodeRateAboveMax) || !hasWarning(warns, CodeDurationAboveMax) {
		t.Errorf("expected rate and duration warnings, got %v", warns)
	}

	d.Enteral.System = SystemOpen
	_, warns = EnteralCalculator{Limits: DefaultConfig().Limits}.Calculate(d, testCatalog(), Patient{})
	if hasWarning(warns, CodeRateAboveMax) {
		t.Error("open system should not check pump rate")
	}
}

func TestEnteral_SystemMismatch(t *testing.T) {
	d := scenarioA()
	d.Enteral.System = SystemOpen
	d.Enteral.Formulas[0].VolumePerAdministrationMl = 250
	d.Enteral.Formulas[0].Schedule = hours(6, 12)

	sub, warns := EnteralCalculator{}.Calculate(d, testCatalog(), Patient{})
	if !hasWarning(warns, CodeFormulaSystemMismatch) {
		t.Fatalf("expected %s, got %v", CodeFormulaSystemMismatch, warns)
	}
	requireApprox(t, "kcal still counted", sub.Kcal, 750)
}

func TestEnteral_MonotonicInVolume(t *testing.T) {
	cat := testCatalog()
	prev := -1.0
	for _, rate := range []float64{0, 10, 25, 50, 80, 120} {
		d := scenarioA()
		d.Enteral.Formulas[0].RateMlPerHour = rate
		sub, _ := EnteralCalculator{}.Calculate(d, cat, Patient{})
		if sub.Kcal < prev {
			t.Errorf("kcal decreased at rate %v: %v < %v", rate, sub.Kcal, prev)
		}
		prev = sub.Kcal
	}
}

func TestOral_SupplementsAndEstimate(t *testing.T) {
	d := &Draft{
		PatientID: patientID,
		Routes:    OralOnly,
		Oral: &OralPrescription{
			EstimatedKcal:     800,
			EstimatedProteinG: 30,
			Supplements: []OralSupplementLine{
				{FormulaID: supplementID, AmountPerAdministration: 200, Meals: MealSchedule{Breakfast, Lunch, Dinner}},
			},
			Modules: []OralModuleLine{
				{ModuleID: proteinModID, QuantityPerAdministration: 10, Unit: UnitGram, Meals: MealSchedule{Lunch}},
			},
		},
	}
	sub, warns := OralCalculator{}.Calculate(d, testCatalog(), Patient{})
	if len(warns) != 0 {
		t.Fatalf("expected no warnings, got %v", warns)
	}
	requireApprox(t, "kcal", sub.Kcal, 800+900+36)
	requireApprox(t, "protein", sub.ProteinG, 30+60+9)
	requireApprox(t, "water", sub.FreeWaterMl, 420)
	requireApprox(t, "plastic", sub.Residue.PlasticG, 24)
	if len(sub.Lines) != 3 || sub.Lines[0].Kind != LineEstimate {
		t.Errorf("unexpected lines: %+v", sub.Lines)
	}
}

func TestOral_MissingSupplement(t *testing.T) {
	d := &Draft{
		Routes: OralOnly,
		Oral: &OralPrescription{
			EstimatedKcal: 500,
			Supplements:   []OralSupplementLine{{FormulaID: missingID, AmountPerAdministration: 200, Meals: MealSchedule{Supper}}},
			Modules:       []OralModuleLine{{ModuleID: missingID, QuantityPerAdministration: 5, Meals: MealSchedule{Supper}}},
		},
	}
	sub, warns := OralCalculator{}.Calculate(d, testCatalog(), Patient{})
	if !hasWarning(warns, CodeFormulaNotFound) || !hasWarning(warns, CodeModuleNotFound) {
		t.Errorf("expected formula and module warnings, got %v", warns)
	}
	requireApprox(t, "kcal", sub.Kcal, 500)
}

func TestParenteral_ScenarioC(t *testing.T) {
	d := &Draft{
		Routes:     ParenteralOnly,
		Parenteral: &ParenteralPrescription{AminoAcidsG: 80, LipidsG: 60, GlucoseG: 200, InfusionHours: 24},
	}
	sub, warns := ParenteralCalculator{Limits: DefaultConfig().Limits}.Calculate(d, nil, Patient{WeightKg: ptr(70)})
	if len(warns) != 0 {
		t.Fatalf("expected no warnings, got %v", warns)
	}
	requireApprox(t, "kcal", sub.Kcal, 1540)
	requireApprox(t, "protein", sub.ProteinG, 80)
	requireApprox(t, "GIR", sub.GlucoseInfusionRate, 200000.0/(70*24*60))
}

func TestParenteral_GlucoseRateAboveMax(t *testing.T) {
	d := &Draft{
		Routes:     ParenteralOnly,
		Parenteral: &ParenteralPrescription{GlucoseG: 400, InfusionHours: 12},
	}
	_, warns := ParenteralCalculator{Limits: DefaultConfig().Limits}.Calculate(d, nil, Patient{WeightKg: ptr(50)})
	if !hasWarning(warns, CodeGlucoseRateAboveMax) {
		t.Errorf("expected %s, got %v", CodeGlucoseRateAboveMax, warns)
	}

	_, warns = ParenteralCalculator{Limits: DefaultConfig().Limits}.Calculate(d, nil, Patient{})
	if hasWarning(warns, CodeGlucoseRateAboveMax) {
		t.Error("GIR is unknown without weight and must not warn")
	}
}

func TestGlucoseInfusionRate_MissingInputs(t *testing.T) {
	if GlucoseInfusionRate(200, 0, 24) != 0 || GlucoseInfusionRate(200, 70, 0) != 0 {
		t.Error("expected 0 without weight or hours")
	}
}

func TestCalculators_MissingRouteDetails(t *testing.T) {
	d := &Draft{Routes: EnteralPlusBoth}
	for _, calc := range Calculators(Limits{}) {
		sub, warns := calc.Calculate(d, testCatalog(), Patient{})
		if !hasWarning(warns, CodeRouteDetailsMissing) {
			t.Errorf("%s: expected %s, got %v", calc.Route(), CodeRouteDetailsMissing, warns)
		}
		if sub.Kcal != 0 || sub.Route != calc.Route() {
			t.Errorf("%s: expected empty subtotal, got %+v", calc.Route(), sub)
		}
	}
}
