package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a registered clinic patient. UHID is the human-facing unique
// health identifier printed on cards and used for lookup.
type Patient struct {
	ID          uuid.UUID  `json:"id"`
	UHID        string     `json:"uhid"`
	FullName    string     `json:"fullName"`
	Gender      string     `json:"gender"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email,omitempty"`
	Address     string     `json:"address,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Age in whole years as of now. Zero when date of birth is unknown.
func (p *Patient) Age() int {
	if p.DateOfBirth == nil {
		return 0
	}
	now := time.Now()
	years := now.Year() - p.DateOfBirth.Year()
	if now.YearDay() < p.DateOfBirth.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
