package nutrition

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const unknownItem = "item não cadastrado"

var (
	systemLabels = map[SystemType]string{SystemOpen: "aberto", SystemClosed: "fechado"}
	modeLabels   = map[InfusionMode]string{ModePump: "bomba de infusão", ModeGravity: "gravitacional", ModeBolus: "bolus"}
	accessLabels = map[EnteralAccess]string{
		AccessNasogastric: "sonda nasogástrica",
		AccessNasoenteric: "sonda nasoenteral",
		AccessGastrostomy: "gastrostomia",
		AccessJejunostomy: "jejunostomia",
		AccessOther:       "outro acesso",
	}
	routeLabels = map[Route]string{RouteEnteral: "enteral", RouteOral: "oral", RouteParenteral: "parenteral"}
)

// recordWriter formats numbers with fixed pt-BR conventions.
type recordWriter struct {
	b strings.Builder
	p *message.Printer
}

func newRecordWriter() *recordWriter {
	return &recordWriter{p: message.NewPrinter(language.BrazilianPortuguese)}
}

func (w *recordWriter) line(format string, args ...interface{}) {
	w.b.WriteString(w.p.Sprintf(format, args...))
	w.b.WriteByte('\n')
}

func (w *recordWriter) blank() { w.b.WriteByte('\n') }

func (w *recordWriter) kcal(v float64) string  { return w.p.Sprintf("%.0f kcal", v) }
func (w *recordWriter) ml(v float64) string    { return w.p.Sprintf("%.0f ml", v) }
func (w *recordWriter) grams(v float64) string { return w.p.Sprintf("%.1f g", v) }
func (w *recordWriter) num1(v float64) string  { return w.p.Sprintf("%.1f", v) }

// RenderRecord renders the prescription as a chart note. The output depends
// only on its arguments: equal inputs give byte-identical text.
func RenderRecord(d *Draft, s NutritionSummary, plan *DispensingPlan, cat Catalog) string {
	w := newRecordWriter()
	w.line("PRESCRIÇÃO DE TERAPIA NUTRICIONAL")
	routes := s.Routes.Routes()
	if len(routes) == 0 {
		w.line("Vias: nenhuma via ativa")
	} else {
		names := make([]string, len(routes))
		for i, r := range routes {
			names[i] = routeLabels[r]
		}
		w.line("Vias: %s", strings.Join(names, " + "))
	}

	if d != nil && s.Routes.Has(RouteEnteral) && d.Enteral != nil {
		w.blank()
		renderEnteral(w, d.Enteral, plan, cat)
	}
	if d != nil && s.Routes.Has(RouteOral) && d.Oral != nil {
		w.blank()
		renderOral(w, d.Oral, cat)
	}
	if d != nil && s.Routes.Has(RouteParenteral) && d.Parenteral != nil {
		w.blank()
		renderParenteral(w, d.Parenteral, s)
	}

	w.blank()
	renderTotals(w, s)
	return w.b.String()
}

func renderEnteral(w *recordWriter, e *EnteralPrescription, plan *DispensingPlan, cat Catalog) {
	w.line("TERAPIA NUTRICIONAL ENTERAL")
	w.line("Acesso: %s | Sistema: %s | Infusão: %s", labelOr(accessLabels[e.Access], string(e.Access)),
		labelOr(systemLabels[e.System], string(e.System)), labelOr(modeLabels[e.Mode], string(e.Mode)))
	for _, line := range e.Formulas {
		name := unknownItem
		if f, ok := cat.Formula(line.FormulaID); ok {
			name = f.Name
		}
		vol := AdministeredVolume(e.System, e.Mode, line)
		switch {
		case IsContinuous(e.System, e.Mode) && e.Mode == ModeGravity:
			w.line("- %s: %s gotas/min por %s h = %s/dia", name, w.p.Sprintf("%.0f", line.DropsPerMinute),
				w.num1(line.DurationHours), w.ml(vol))
		case IsContinuous(e.System, e.Mode):
			w.line("- %s: %s ml/h por %s h = %s/dia", name, w.num1(line.RateMlPerHour),
				w.num1(line.DurationHours), w.ml(vol))
		default:
			w.line("- %s: %s %s = %s/dia", name, w.ml(line.VolumePerAdministrationMl),
				scheduleText(line.Schedule), w.ml(vol))
		}
	}
	if len(e.Modules) > 0 {
		w.line("Módulos:")
		for _, line := range e.Modules {
			name := unknownItem
			if m, ok := cat.Module(line.ModuleID); ok {
				name = m.Name
			}
			w.line("- %s: %s %s", name, quantityText(w, line.QuantityPerAdministration, line.Unit), scheduleText(line.Schedule))
		}
	}
	if h := e.Hydration; h != nil && h.Schedule.Count() > 0 {
		w.line("Hidratação: %s %s = %s/dia", w.ml(h.VolumePerAdministrationMl), scheduleText(h.Schedule),
			w.ml(BolusVolume(h.VolumePerAdministrationMl, h.Schedule.Count())))
	}
	if plan != nil {
		w.line("Requisição: %d unidade(s) de %s (solicitar %s, volume de equipo %s)", plan.NumberOfPacksRequired,
			w.ml(plan.PackSizeMl), w.ml(plan.TotalVolumeToRequestMl), w.ml(plan.EquipmentVolumeMl))
		if slots := plan.BagSlots(); len(slots) > 0 {
			parts := make([]string, len(slots))
			for i, t := range slots {
				parts[i] = w.p.Sprintf("%s: %d", t.Label(), plan.BagQuantities[t])
			}
			w.line("Bolsas por horário: %s", strings.Join(parts, ", "))
		}
	}
}

func renderOral(w *recordWriter, o *OralPrescription, cat Catalog) {
	w.line("TERAPIA NUTRICIONAL ORAL")
	w.line("Dieta via oral estimada: %s | proteína %s", w.kcal(o.EstimatedKcal), w.grams(o.EstimatedProteinG))
	for _, line := range o.Supplements {
		name := unknownItem
		if f, ok := cat.Formula(line.FormulaID); ok {
			name = f.Name
		}
		w.line("- %s: %s %s", name, w.ml(line.AmountPerAdministration), mealText(line.Meals))
	}
	for _, line := range o.Modules {
		name := unknownItem
		if m, ok := cat.Module(line.ModuleID); ok {
			name = m.Name
		}
		w.line("- %s: %s %s", name, quantityText(w, line.QuantityPerAdministration, line.Unit), mealText(line.Meals))
	}
}

func renderParenteral(w *recordWriter, pn *ParenteralPrescription, s NutritionSummary) {
	w.line("TERAPIA NUTRICIONAL PARENTERAL")
	w.line("Aminoácidos %s | Lipídeos %s | Glicose %s | Infusão em %s h", w.grams(pn.AminoAcidsG),
		w.grams(pn.LipidsG), w.grams(pn.GlucoseG), w.num1(pn.InfusionHours))
	if s.GlucoseInfusionRate > 0 {
		w.line("Taxa de infusão de glicose: %s mg/kg/min", w.num1(s.GlucoseInfusionRate))
	}
}

func renderTotals(w *recordWriter, s NutritionSummary) {
	w.line("TOTAIS DIÁRIOS")
	w.line("Energia: %s", w.kcal(s.TotalKcal))
	w.line("Proteína: %s", w.grams(s.TotalProteinG))
	w.line("Água livre: %s", w.ml(s.TotalFreeWaterMl))
	if s.KcalPerKg > 0 || s.ProteinPerKg > 0 {
		w.line("Por kg de peso: %s kcal/kg | %s g proteína/kg", w.num1(s.KcalPerKg), w.num1(s.ProteinPerKg))
	}
	if s.ProteinPerKgIdealWeight > 0 {
		w.line("Proteína por kg de peso ideal (%s kg): %s g/kg", w.num1(s.IdealWeightKg), w.num1(s.ProteinPerKgIdealWeight))
	}
	r := s.TotalResidue
	if r.Total() > 0 {
		w.line("Resíduos: plástico %s | papel %s | metal %s | vidro %s", w.grams(r.PlasticG), w.grams(r.PaperG),
			w.grams(r.MetalG), w.grams(r.GlassG))
	}
}

func quantityText(w *recordWriter, qty float64, unit QuantityUnit) string {
	if unit == UnitMillilitre {
		return w.ml(qty)
	}
	return w.grams(qty)
}

func scheduleText(s Schedule) string {
	times := s.Sorted()
	parts := make([]string, 0, len(times)+1)
	for _, t := range times {
		parts = append(parts, t.Label())
	}
	if s.HasOther() {
		parts = append(parts, strings.TrimSpace(s.Other))
	}
	if len(parts) == 0 {
		return "(sem horário)"
	}
	return "às " + strings.Join(parts, ", ") + " (" + strconv.Itoa(s.Count()) + "x/dia)"
}

func mealText(m MealSchedule) string {
	meals := m.Sorted()
	if len(meals) == 0 {
		return "(sem refeição)"
	}
	parts := make([]string, len(meals))
	for i, meal := range meals {
		parts[i] = meal.Label()
	}
	return "no(a) " + strings.Join(parts, ", ") + " (" + strconv.Itoa(len(meals)) + "x/dia)"
}

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	if fallback == "" {
		return "não informado"
	}
	return fallback
}
