package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medmitra/api/internal/domain/encounter"
)

var (
	ErrDisabled     = errors.New("assistant is disabled")
	ErrEmptyMessage = errors.New("message must not be empty")
)

type Service struct {
	store      SessionStore
	suggester  Suggester
	encounters *encounter.Service
	logger     zerolog.Logger
	now        func() time.Time
}

func NewService(store SessionStore, suggester Suggester, encounters *encounter.Service, logger zerolog.Logger) *Service {
	return &Service{
		store:      store,
		suggester:  suggester,
		encounters: encounters,
		logger:     logger,
		now:        time.Now,
	}
}

// Invoke starts (or resumes) the assistant session for an encounter. The
// session id is the encounter id, so one encounter has at most one live
// conversation. The encounter's current draft seeds the context.
func (s *Service) Invoke(ctx context.Context, encounterID uuid.UUID) (*Session, error) {
	if s.suggester == nil {
		return nil, ErrDisabled
	}

	id := encounterID.String()
	if existing, err := s.store.Get(ctx, id); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNoSession) {
		return nil, err
	}

	enc, err := s.encounters.Get(ctx, encounterID)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:          id,
		EncounterID: encounterID,
		CreatedAt:   s.now(),
		Messages: []Message{{
			Role:    RoleUser,
			Content: draftContext(enc),
			At:      s.now(),
		}},
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	s.logger.Info().Str("session_id", id).Msg("assistant session started")
	return session, nil
}

// Chat sends the doctor's message to an existing session and returns the
// assistant's reply. A session must have been invoked first.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*ChatResult, error) {
	if s.suggester == nil {
		return nil, ErrDisabled
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.Messages = append(session.Messages, Message{
		Role:    RoleUser,
		Content: message,
		At:      s.now(),
	})

	result, err := s.suggester.Suggest(ctx, session.Messages)
	if err != nil {
		return nil, err
	}

	session.Messages = append(session.Messages, Message{
		Role:    RoleAssistant,
		Content: result.Reply,
		At:      s.now(),
	})
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return result, nil
}

// Apply writes the suggestions onto the encounter draft, replacing the
// matching fields wholesale.
func (s *Service) Apply(ctx context.Context, sessionID string, sug Suggestions) (*encounter.Encounter, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	enc, err := s.encounters.OverwriteDraft(ctx, session.EncounterID, encounter.FinalizeRequest{
		ChiefComplaint: sug.ChiefComplaint,
		Symptoms:       sug.Symptoms,
		Diagnoses:      sug.Diagnoses,
		Medications:    sug.Medications,
		LabTests:       sug.LabTests,
		Advice:         sug.Advice,
		FollowUpDate:   sug.FollowUpDate,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("session_id", sessionID).
		Int("diagnoses", len(sug.Diagnoses)).
		Msg("assistant suggestions applied")
	return enc, nil
}

// End closes the conversation.
func (s *Service) End(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

func draftContext(enc *encounter.Encounter) string {
	var b strings.Builder
	b.WriteString("Current encounter draft.\n")
	fmt.Fprintf(&b, "Chief complaint: %s\n", enc.ChiefComplaint)
	fmt.Fprintf(&b, "Symptoms: %s\n", enc.Symptoms)
	if len(enc.Diagnoses) > 0 {
		b.WriteString("Diagnoses:\n")
		for _, d := range enc.Diagnoses {
			fmt.Fprintf(&b, "- %s %s\n", d.Code, d.Description)
		}
	}
	if len(enc.Medications) > 0 {
		b.WriteString("Medications:\n")
		for _, m := range enc.Medications {
			fmt.Fprintf(&b, "- %s %s %s\n", m.Name, m.Dosage, m.Frequency)
		}
	}
	return b.String()
}
