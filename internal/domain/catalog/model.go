package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultPackSizeMl is used when a formula declares no presentations.
const DefaultPackSizeMl = 1000.0

// DefaultWaterContentPer100ml is assumed when a formula does not declare its water content.
const DefaultWaterContentPer100ml = 80.0

// Availability is the delivery system a formula can be prescribed in.
type Availability string

const (
	AvailableOpen   Availability = "open"
	AvailableClosed Availability = "closed"
	AvailableBoth   Availability = "both"
)

// ParseAvailability accepts the catalog spelling of a formula system type.
func ParseAvailability(s string) (Availability, error) {
	switch a := Availability(strings.ToLower(strings.TrimSpace(s))); a {
	case AvailableOpen, AvailableClosed, AvailableBoth:
		return a, nil
	case "":
		return AvailableBoth, nil
	default:
		return "", fmt.Errorf("unknown system type %q", s)
	}
}

// Composition holds nutrient content. Macronutrients and water are per 100 ml,
// minerals are in mg per 100 ml.
type Composition struct {
	CaloriesPer100ml     float64  `json:"calories_per_100ml"`
	ProteinPer100ml      float64  `json:"protein_per_100ml"`
	CarbPer100ml         float64  `json:"carb_per_100ml"`
	FatPer100ml          float64  `json:"fat_per_100ml"`
	FiberPer100ml        float64  `json:"fiber_per_100ml"`
	SodiumMg             float64  `json:"sodium_mg"`
	PotassiumMg          float64  `json:"potassium_mg"`
	CalciumMg            float64  `json:"calcium_mg"`
	PhosphorusMg         float64  `json:"phosphorus_mg"`
	WaterContentPer100ml *float64 `json:"water_content_per_100ml,omitempty"`
}

// Residue is packaging waste in grams. On a Formula it is expressed per 1000 ml
// of product; on computed totals it is the absolute amount.
type Residue struct {
	PlasticG float64 `json:"plastic_g"`
	PaperG   float64 `json:"paper_g"`
	MetalG   float64 `json:"metal_g"`
	GlassG   float64 `json:"glass_g"`
}

// Add returns the component-wise sum.
func (r Residue) Add(o Residue) Residue {
	return Residue{
		PlasticG: r.PlasticG + o.PlasticG,
		PaperG:   r.PaperG + o.PaperG,
		MetalG:   r.MetalG + o.MetalG,
		GlassG:   r.GlassG + o.GlassG,
	}
}

// Scale multiplies every component by f.
func (r Residue) Scale(f float64) Residue {
	return Residue{
		PlasticG: r.PlasticG * f,
		PaperG:   r.PaperG * f,
		MetalG:   r.MetalG * f,
		GlassG:   r.GlassG * f,
	}
}

// Total is the summed mass of all materials.
func (r Residue) Total() float64 {
	return r.PlasticG + r.PaperG + r.MetalG + r.GlassG
}

// Formula is an enteral or oral nutrition product.
type Formula struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Manufacturer  string          `json:"manufacturer,omitempty"`
	System        Availability    `json:"system_type"`
	Density       *float64        `json:"density,omitempty"`
	Composition   Composition     `json:"composition"`
	Presentations []float64       `json:"presentations,omitempty"`
	BillingPrice  decimal.Decimal `json:"billing_price"`
	Residue       Residue         `json:"residue_per_1000ml"`
}

// KcalPerMl returns the declared density, falling back to the per-100 ml energy.
func (f Formula) KcalPerMl() float64 {
	if f.Density != nil {
		return *f.Density
	}
	return f.Composition.CaloriesPer100ml / 100
}

// WaterFraction is the free-water fraction of one ml of product.
func (f Formula) WaterFraction() float64 {
	if f.Composition.WaterContentPer100ml != nil {
		return *f.Composition.WaterContentPer100ml / 100
	}
	return DefaultWaterContentPer100ml / 100
}

// PackSize is the first declared presentation, or DefaultPackSizeMl.
func (f Formula) PackSize() float64 {
	if len(f.Presentations) > 0 && f.Presentations[0] > 0 {
		return f.Presentations[0]
	}
	return DefaultPackSizeMl
}

// Supports reports whether the formula can be used in the given system ("open" or "closed").
func (f Formula) Supports(system string) bool {
	switch f.System {
	case AvailableBoth, "":
		return true
	default:
		return string(f.System) == system
	}
}

// Module is a powder or liquid additive dosed against a reference amount.
type Module struct {
	ID                   uuid.UUID       `json:"id"`
	Name                 string          `json:"name"`
	Unit                 string          `json:"unit"`
	Density              float64         `json:"density"`
	ReferenceAmount      float64         `json:"reference_amount"`
	ReferenceTimesPerDay int             `json:"reference_times_per_day"`
	ProteinG             float64         `json:"protein_g"`
	SodiumMg             float64         `json:"sodium_mg"`
	PotassiumMg          float64         `json:"potassium_mg"`
	FiberG               float64         `json:"fiber_g"`
	FreeWaterMl          float64         `json:"free_water_ml"`
	BillingPrice         decimal.Decimal `json:"billing_price"`
}

// PerUnit converts a per-reference-dose amount into an amount per unit of module.
// ok is false when the reference amount is zero; the ratio is then 0.
func (m Module) PerUnit(perReference float64) (ratio float64, ok bool) {
	if m.ReferenceAmount == 0 {
		return 0, false
	}
	return perReference / m.ReferenceAmount, true
}
