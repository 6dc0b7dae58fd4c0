package nutrition

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// SystemType is the enteral delivery system.
type SystemType string

const (
	SystemOpen   SystemType = "open"
	SystemClosed SystemType = "closed"
)

func (s SystemType) Valid() bool { return s == SystemOpen || s == SystemClosed }

// InfusionMode is how the enteral formula is administered.
type InfusionMode string

const (
	ModePump    InfusionMode = "pump"
	ModeGravity InfusionMode = "gravity"
	ModeBolus   InfusionMode = "bolus"
)

func (m InfusionMode) Valid() bool { return m == ModePump || m == ModeGravity || m == ModeBolus }

// EnteralAccess is the feeding tube type.
type EnteralAccess string

const (
	AccessNasogastric EnteralAccess = "nasogastric"
	AccessNasoenteric EnteralAccess = "nasoenteric"
	AccessGastrostomy EnteralAccess = "gastrostomy"
	AccessJejunostomy EnteralAccess = "jejunostomy"
	AccessOther       EnteralAccess = "other"
)

// QuantityUnit is the dosing unit of a module line.
type QuantityUnit string

const (
	UnitGram       QuantityUnit = "g"
	UnitMillilitre QuantityUnit = "ml"
)

const (
	MaxModuleLines     = 3
	MaxSupplementLines = 3
)

// Draft is the prescription being edited. Catalog entries are referenced by id
// only and re-resolved on every computation.
type Draft struct {
	PatientID  uuid.UUID               `json:"patient_id"`
	Routes     RouteCombination        `json:"routes"`
	Enteral    *EnteralPrescription    `json:"enteral,omitempty"`
	Oral       *OralPrescription       `json:"oral,omitempty"`
	Parenteral *ParenteralPrescription `json:"parenteral,omitempty"`
	Targets    Targets                 `json:"targets"`
}

// Targets are optional daily goals per kg of body weight.
type Targets struct {
	KcalPerKg    *float64 `json:"kcal_per_kg,omitempty"`
	ProteinPerKg *float64 `json:"protein_per_kg,omitempty"`
}

type EnteralPrescription struct {
	Access            EnteralAccess     `json:"access"`
	System            SystemType        `json:"system_type"`
	Mode              InfusionMode      `json:"infusion_mode"`
	Formulas          []FormulaLine     `json:"formulas"`
	Modules           []ModuleLine      `json:"modules,omitempty"`
	Hydration         *HydrationLine    `json:"hydration,omitempty"`
	EquipmentVolumeMl *float64          `json:"equipment_volume_ml,omitempty"`
	BagQuantities     map[TimeOfDay]int `json:"bag_quantities,omitempty"`
}

// FormulaLine is one enteral formula. Rate, drops and duration apply to
// continuous closed-system infusion; the per-administration volume applies to
// open system and bolus.
type FormulaLine struct {
	FormulaID                 uuid.UUID `json:"formula_id"`
	VolumePerAdministrationMl float64   `json:"volume_per_administration_ml,omitempty"`
	RateMlPerHour             float64   `json:"rate_ml_per_hour,omitempty"`
	DropsPerMinute            float64   `json:"drops_per_minute,omitempty"`
	DurationHours             float64   `json:"duration_hours,omitempty"`
	Schedule                  Schedule  `json:"schedule"`
}

type ModuleLine struct {
	ModuleID                  uuid.UUID    `json:"module_id"`
	QuantityPerAdministration float64      `json:"quantity_per_administration"`
	Unit                      QuantityUnit `json:"unit"`
	Schedule                  Schedule     `json:"schedule"`
}

type HydrationLine struct {
	VolumePerAdministrationMl float64  `json:"volume_per_administration_ml"`
	Schedule                  Schedule `json:"schedule"`
}

type OralPrescription struct {
	EstimatedKcal     float64              `json:"estimated_kcal"`
	EstimatedProteinG float64              `json:"estimated_protein_g"`
	Supplements       []OralSupplementLine `json:"supplements,omitempty"`
	Modules           []OralModuleLine     `json:"modules,omitempty"`
}

type OralSupplementLine struct {
	FormulaID               uuid.UUID    `json:"formula_id"`
	AmountPerAdministration float64      `json:"amount_per_administration_ml"`
	Meals                   MealSchedule `json:"meals"`
}

type OralModuleLine struct {
	ModuleID                  uuid.UUID    `json:"module_id"`
	QuantityPerAdministration float64      `json:"quantity_per_administration"`
	Unit                      QuantityUnit `json:"unit"`
	Meals                     MealSchedule `json:"meals"`
}

type ParenteralPrescription struct {
	AminoAcidsG   float64 `json:"aminoacids_g"`
	LipidsG       float64 `json:"lipids_g"`
	GlucoseG      float64 `json:"glucose_g"`
	InfusionHours float64 `json:"infusion_hours"`
}

// Patient carries the anthropometrics used for per-kg metrics. Either field may be absent.
type Patient struct {
	WeightKg *float64 `json:"weight_kg,omitempty"`
	HeightCm *float64 `json:"height_cm,omitempty"`
}

func (p Patient) weight() float64 {
	if p.WeightKg == nil {
		return 0
	}
	return nonNegative(*p.WeightKg)
}

func (p Patient) heightM() float64 {
	if p.HeightCm == nil {
		return 0
	}
	return nonNegative(*p.HeightCm) / 100
}

// Validate checks the structural rules a draft must satisfy before it is saved.
// Computation never calls it: Compute accepts any draft.
func (d *Draft) Validate() error {
	if d == nil {
		return fmt.Errorf("draft is required")
	}
	if d.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if d.Routes.Has(RouteEnteral) {
		e := d.Enteral
		if e == nil {
			return fmt.Errorf("enteral prescription is required for routes %s", d.Routes)
		}
		if !e.System.Valid() {
			return fmt.Errorf("enteral system_type must be open or closed")
		}
		if !e.Mode.Valid() {
			return fmt.Errorf("enteral infusion_mode must be pump, gravity or bolus")
		}
		if len(e.Formulas) == 0 {
			return fmt.Errorf("at least one enteral formula is required")
		}
		for i, f := range e.Formulas {
			if f.FormulaID == uuid.Nil {
				return fmt.Errorf("enteral formulas[%d]: formula_id is required", i)
			}
		}
		if len(e.Modules) > MaxModuleLines {
			return fmt.Errorf("at most %d enteral modules are allowed", MaxModuleLines)
		}
		for i, m := range e.Modules {
			if m.ModuleID == uuid.Nil {
				return fmt.Errorf("enteral modules[%d]: module_id is required", i)
			}
		}
	}
	if d.Routes.Has(RouteOral) {
		o := d.Oral
		if o == nil {
			return fmt.Errorf("oral prescription is required for routes %s", d.Routes)
		}
		if len(o.Supplements) > MaxSupplementLines {
			return fmt.Errorf("at most %d oral supplements are allowed", MaxSupplementLines)
		}
		if len(o.Modules) > MaxModuleLines {
			return fmt.Errorf("at most %d oral modules are allowed", MaxModuleLines)
		}
	}
	if d.Routes.Has(RouteParenteral) && d.Parenteral == nil {
		return fmt.Errorf("parenteral prescription is required for routes %s", d.Routes)
	}
	return nil
}

// nonNegative turns NaN, infinities and negative values into 0.
func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
