package assistant

import (
	"time"

	"github.com/google/uuid"

	"github.com/medmitra/api/internal/domain/encounter"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Session is one assistant conversation, keyed by the encounter it advises
// on. A session must be invoked before it can be chatted with.
type Session struct {
	ID          string    `json:"id"`
	EncounterID uuid.UUID `json:"encounterId"`
	Messages    []Message `json:"messages"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Suggestions is the structured consultation advice the assistant returns.
// Applying it overwrites the matching draft fields wholesale.
type Suggestions struct {
	ChiefComplaint string                 `json:"chiefComplaint"`
	Symptoms       string                 `json:"symptoms"`
	Diagnoses      []encounter.Diagnosis  `json:"diagnoses"`
	Medications    []encounter.Medication `json:"medications"`
	LabTests       []string               `json:"labTests"`
	Advice         string                 `json:"advice"`
	FollowUpDate   string                 `json:"followUpDate"`
}

// ChatResult pairs the assistant's reply with the structured suggestions
// extracted from it.
type ChatResult struct {
	Reply       string       `json:"reply"`
	Suggestions *Suggestions `json:"suggestions,omitempty"`
}
