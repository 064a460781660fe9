package patient

import (
	"time"
)

// Patient maps to the patients table. The id is generated by the storage
// engine and never reused; created_at is set at insert and immutable.
type Patient struct {
	ID             int       `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Age            *int      `db:"age" json:"age,omitempty"`
	Gender         *string   `db:"gender" json:"gender,omitempty"`
	MedicalHistory *string   `db:"medical_history" json:"medical_history,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Intake validation bounds. These are enforced at the intake boundary only;
// the storage schema does not repeat them, so the raw SQL console can write
// rows that bypass them.
const (
	MinAge = 0
	MaxAge = 150
)

// Genders lists the accepted gender options.
var Genders = []string{"Male", "Female", "Other"}

// ValidGender reports whether g is one of the accepted options.
func ValidGender(g string) bool {
	for _, opt := range Genders {
		if g == opt {
			return true
		}
	}
	return false
}
