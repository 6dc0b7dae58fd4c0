package prescription

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/ehr/nutrition/internal/domain/nutrition"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(RequisitionSheet, cell)
	if err != nil {
		t.Fatalf("get %s: %v", cell, err)
	}
	return v
}

func TestBuildRequisition_ClosedSystem(t *testing.T) {
	svc := newTestService()
	rx := &Prescription{Draft: closedDraft(55)}
	if err := svc.Create(context.Background(), rx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := BuildRequisition(rx, *rx.Result, time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := openWorkbook(t, data)

	checks := map[string]string{
		"B2":  testPatientID.String(),
		"B3":  rx.ID.String(),
		"B4":  "2026-03-02 08:30",
		"A6":  "Fórmula",
		"A7":  "Peptamen 1.5",
		"E7":  "1115",
		"F7":  "2",
		"A9":  "Horário",
		"A10": "06:00",
		"A11": "18:00",
	}
	for cell, want := range checks {
		if got := cellValue(t, f, cell); got != want {
			t.Errorf("%s: expected %q, got %q", cell, want, got)
		}
	}
	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != RequisitionSheet {
		t.Errorf("unexpected sheets: %v", sheets)
	}
}

func TestBuildRequisition_WithoutPlan(t *testing.T) {
	rx := &Prescription{ID: uuid.New(), PatientID: testPatientID}
	res := nutrition.Compute(&nutrition.Draft{Routes: nutrition.OralOnly, Oral: &nutrition.OralPrescription{}},
		nil, nutrition.Patient{}, nutrition.DefaultConfig())

	data, err := BuildRequisition(rx, res, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := openWorkbook(t, data)
	if got := cellValue(t, f, "A7"); got != "sem dispensação por sistema fechado" {
		t.Errorf("unexpected A7: %q", got)
	}
}

func TestService_Requisition(t *testing.T) {
	svc := newTestService()
	rx := &Prescription{Draft: closedDraft(50)}
	if err := svc.Create(context.Background(), rx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := svc.Requisition(context.Background(), rx.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := openWorkbook(t, data)
	// 1000 ml for the patient plus 15 ml of equipment
	if got := cellValue(t, f, "E7"); got != "1015" {
		t.Errorf("expected 1015 ml requested, got %q", got)
	}
	if got := cellValue(t, f, "F7"); got != "2" {
		t.Errorf("expected 2 packs, got %q", got)
	}
}
