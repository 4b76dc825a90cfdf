package vitals

import (
	"time"

	"github.com/google/uuid"
)

// VitalDefinition is one entry in the configurable vitals catalog. The Key
// identifies the vital across preferences and triage records; display fields
// drive the capture form.
type VitalDefinition struct {
	ID           uuid.UUID `json:"id"`
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	InputType    string    `json:"inputType"`
	Placeholder  string    `json:"placeholder"`
	Icon         string    `json:"icon"`
	Color        string    `json:"color"`
	DisplayOrder int       `json:"displayOrder"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Preference is a doctor's saved vitals layout: which vitals show on the
// triage pad and in what order.
type Preference struct {
	Order   []string `json:"vitalsOrder"`
	Enabled []string `json:"enabledVitals"`
}

// FallbackVitals is the built-in catalog used when the configured one cannot
// be loaded. Triage capture must never render an empty pad.
func FallbackVitals() []VitalDefinition {
	return []VitalDefinition{
		{Key: "bp", Name: "Blood Pressure", Unit: "mmHg", InputType: "text", Placeholder: "120/80", Icon: "activity", Color: "red", DisplayOrder: 1, IsActive: true},
		{Key: "pulse", Name: "Pulse Rate", Unit: "bpm", InputType: "number", Placeholder: "72", Icon: "heart", Color: "pink", DisplayOrder: 2, IsActive: true},
		{Key: "temp", Name: "Temperature", Unit: "°F", InputType: "number", Placeholder: "98.6", Icon: "thermometer", Color: "orange", DisplayOrder: 3, IsActive: true},
		{Key: "weight", Name: "Weight", Unit: "kg", InputType: "number", Placeholder: "70", Icon: "scale", Color: "blue", DisplayOrder: 4, IsActive: true},
		{Key: "height", Name: "Height", Unit: "cm", InputType: "number", Placeholder: "170", Icon: "ruler", Color: "green", DisplayOrder: 5, IsActive: true},
		{Key: "spo2", Name: "SpO2", Unit: "%", InputType: "number", Placeholder: "98", Icon: "droplet", Color: "cyan", DisplayOrder: 6, IsActive: true},
	}
}
