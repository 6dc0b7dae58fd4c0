package prescription

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ehr/nutrition/internal/domain/nutrition"
)

// RequisitionSheet is the worksheet name of the requisition workbook.
const RequisitionSheet = "Requisição"

var (
	planHeader = []string{"Fórmula", "Embalagem (ml)", "Volume paciente (ml)", "Volume equipo (ml)",
		"Volume a solicitar (ml)", "Embalagens", "Sobra (ml)"}
	bagHeader  = []string{"Horário", "Bolsas"}
	costHeader = []string{"Item", "Descrição", "Unidades", "Preço unitário", "Material"}
)

// sheetWriter writes rows top to bottom and keeps the first error.
type sheetWriter struct {
	f    *excelize.File
	row  int
	bold int
	err  error
}

func (w *sheetWriter) cell(col, row int, value interface{}) {
	if w.err != nil {
		return
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(RequisitionSheet, name, value)
}

func (w *sheetWriter) line(values ...interface{}) {
	w.row++
	for i, v := range values {
		w.cell(i+1, w.row, v)
	}
}

func (w *sheetWriter) header(titles []string) {
	w.row++
	for i, title := range titles {
		w.cell(i+1, w.row, title)
	}
	if w.err != nil {
		return
	}
	from, _ := excelize.CoordinatesToCellName(1, w.row)
	to, _ := excelize.CoordinatesToCellName(len(titles), w.row)
	w.err = w.f.SetCellStyle(RequisitionSheet, from, to, w.bold)
}

func (w *sheetWriter) skip() { w.row++ }

// BuildRequisition renders the dispensing plan, bag schedule and priced
// items of a prescription as an xlsx workbook.
func BuildRequisition(rx *Prescription, res nutrition.Result, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(RequisitionSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	w := &sheetWriter{f: f, bold: bold}
	w.line("Requisição de Terapia Nutricional")
	w.line("Paciente", rx.PatientID.String())
	w.line("Prescrição", rx.ID.String())
	w.line("Gerado em", generatedAt.Format("2006-01-02 15:04"))
	w.skip()

	w.header(planHeader)
	if p := res.Plan; p != nil {
		name := p.FormulaName
		if name == "" {
			name = p.FormulaID.String()
		}
		w.line(name, p.PackSizeMl, p.TotalVolumeForPatientMl, p.EquipmentVolumeMl,
			p.TotalVolumeToRequestMl, p.NumberOfPacksRequired, p.LeftoverMl)
		if slots := p.BagSlots(); len(slots) > 0 {
			w.skip()
			w.header(bagHeader)
			for _, t := range slots {
				w.line(t.String(), p.BagQuantities[t])
			}
		}
	} else {
		w.line("sem dispensação por sistema fechado")
	}
	w.skip()

	w.header(costHeader)
	for _, it := range res.Cost.Items {
		w.line(it.Ref, it.Description, it.Units, it.UnitPrice.InexactFloat64(), it.Material.InexactFloat64())
	}
	w.skip()
	w.line("Material", res.Cost.MaterialCost.StringFixed(2))
	w.line("Enfermagem", res.Cost.NursingCost.StringFixed(2))
	w.line("Mão de obra indireta", res.Cost.IndirectLaborCost.StringFixed(2))
	w.line("Total", res.Cost.TotalCost.StringFixed(2))
	if w.err != nil {
		return nil, fmt.Errorf("write requisition: %w", w.err)
	}

	if err := f.SetColWidth(RequisitionSheet, "A", "A", 28); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(RequisitionSheet, "B", "G", 20); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
