package appointment

import (
	"time"
)

// DefaultStatus is applied by the storage engine when an appointment is
// created without an explicit status.
const DefaultStatus = "scheduled"

// Appointment maps to the appointments table. PatientID must reference an
// existing patient; the storage engine enforces the relationship.
type Appointment struct {
	ID              int       `db:"id" json:"id"`
	PatientID       int       `db:"patient_id" json:"patient_id"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	Reason          *string   `db:"reason" json:"reason,omitempty"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// WithPatient is an appointment row joined with its patient's name, the
// shape the listing returns.
type WithPatient struct {
	Appointment
	PatientName string `db:"patient_name" json:"patient_name"`
}
