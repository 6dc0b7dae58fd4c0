package prescription

import (
	"time"

	"github.com/google/uuid"

	"github.com/ehr/nutrition/internal/domain/nutrition"
)

// Status is the lifecycle state of a saved prescription.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

var validStatuses = map[Status]bool{
	StatusDraft:     true,
	StatusActive:    true,
	StatusSuspended: true,
}

// Prescription is a saved draft together with the result last computed from it.
// Result is always derived from Draft and Patient; it is never edited directly.
type Prescription struct {
	ID        uuid.UUID         `json:"id"`
	PatientID uuid.UUID         `json:"patient_id"`
	Status    Status            `json:"status"`
	Draft     nutrition.Draft   `json:"draft"`
	Patient   nutrition.Patient `json:"patient"`
	Result    *nutrition.Result `json:"result,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CalculateRequest is the body of a preview computation.
type CalculateRequest struct {
	Draft   nutrition.Draft   `json:"draft"`
	Patient nutrition.Patient `json:"patient"`
}
