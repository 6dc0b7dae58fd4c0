package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG reads active catalog entries from the formula and nutrition_module tables.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const formulaCols = `id, name, manufacturer, system_type, density,
	calories_per_100ml, protein_per_100ml, carb_per_100ml, fat_per_100ml, fiber_per_100ml,
	sodium_mg, potassium_mg, calcium_mg, phosphorus_mg, water_content_per_100ml,
	presentations, billing_price::text,
	residue_plastic_g, residue_paper_g, residue_metal_g, residue_glass_g`

func scanFormula(row pgx.Row) (Formula, error) {
	var (
		f      Formula
		system string
		price  string
	)
	c := &f.Composition
	err := row.Scan(&f.ID, &f.Name, &f.Manufacturer, &system, &f.Density,
		&c.CaloriesPer100ml, &c.ProteinPer100ml, &c.CarbPer100ml, &c.FatPer100ml, &c.FiberPer100ml,
		&c.SodiumMg, &c.PotassiumMg, &c.CalciumMg, &c.PhosphorusMg, &c.WaterContentPer100ml,
		&f.Presentations, &price,
		&f.Residue.PlasticG, &f.Residue.PaperG, &f.Residue.MetalG, &f.Residue.GlassG)
	if err != nil {
		return Formula{}, err
	}
	if f.System, err = ParseAvailability(system); err != nil {
		return Formula{}, fmt.Errorf("formula %s: %w", f.ID, err)
	}
	if f.BillingPrice, err = decimal.NewFromString(price); err != nil {
		return Formula{}, fmt.Errorf("formula %s billing price: %w", f.ID, err)
	}
	return f, nil
}

func (r *repoPG) LoadFormulas(ctx context.Context) ([]Formula, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+formulaCols+` FROM formula WHERE active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query formulas: %w", err)
	}
	defer rows.Close()
	var items []Formula
	for rows.Next() {
		f, err := scanFormula(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

const moduleCols = `id, name, unit, density, reference_amount, reference_times_per_day,
	protein_g, sodium_mg, potassium_mg, fiber_g, free_water_ml, billing_price::text`

func scanModule(row pgx.Row) (Module, error) {
	var (
		m     Module
		price string
	)
	err := row.Scan(&m.ID, &m.Name, &m.Unit, &m.Density, &m.ReferenceAmount, &m.ReferenceTimesPerDay,
		&m.ProteinG, &m.SodiumMg, &m.PotassiumMg, &m.FiberG, &m.FreeWaterMl, &price)
	if err != nil {
		return Module{}, err
	}
	if m.BillingPrice, err = decimal.NewFromString(price); err != nil {
		return Module{}, fmt.Errorf("module %s billing price: %w", m.ID, err)
	}
	return m, nil
}

func (r *repoPG) LoadModules(ctx context.Context) ([]Module, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+moduleCols+` FROM nutrition_module WHERE active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query modules: %w", err)
	}
	defer rows.Close()
	var items []Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
