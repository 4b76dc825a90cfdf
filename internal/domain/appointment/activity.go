package appointment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Activity entry types.
const (
	ActivityAppointment  = "appointment"
	ActivityConsultation = "consultation"
)

// ActivityItem is one row on the patient's dashboard feed.
type ActivityItem struct {
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Detail       string    `json:"detail,omitempty"`
	RefID        uuid.UUID `json:"refId"`
	OccurredAt   time.Time `json:"occurredAt"`
	RelativeTime string    `json:"relativeTime"`
}

// ConsultationSource supplies finished consultations for the feed without
// this package depending on the encounter package.
type ConsultationSource interface {
	RecentConsultations(ctx context.Context, patientID uuid.UUID, limit int) ([]ActivityItem, error)
}

// SetConsultationSource wires the consultation feed after construction,
// since the encounter service is built later in startup.
func (s *Service) SetConsultationSource(src ConsultationSource) {
	s.consultations = src
}

// PatientActivity merges the patient's appointments and finished
// consultations into one feed, newest first, each entry labeled with a
// relative time. A failing consultation source degrades to an
// appointments-only feed.
func (s *Service) PatientActivity(ctx context.Context, patientID uuid.UUID, limit int) ([]ActivityItem, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	appts, _, err := s.repo.ListByPatient(ctx, patientID, limit, 0)
	if err != nil {
		return nil, err
	}

	items := make([]ActivityItem, 0, len(appts))
	for _, a := range appts {
		at, perr := time.Parse("2006-01-02T15:04:05", a.ScheduledAt)
		if perr != nil {
			at = a.CreatedAt
		}
		items = append(items, ActivityItem{
			Type:       ActivityAppointment,
			Title:      "Appointment (" + a.Status + ")",
			Detail:     a.Reason,
			RefID:      a.ID,
			OccurredAt: at,
		})
	}

	if s.consultations != nil {
		consults, err := s.consultations.RecentConsultations(ctx, patientID, limit)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("patient_id", patientID.String()).
				Msg("consultation feed unavailable")
		} else {
			items = append(items, consults...)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].OccurredAt.After(items[j].OccurredAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}

	now := s.now()
	for i := range items {
		items[i].RelativeTime = RelativeTime(now, items[i].OccurredAt)
	}
	return items, nil
}

// RelativeTime renders the feed label for a moment relative to now, in the
// style of "2 hours ago" and "in 3 days". Moments over a week away fall back
// to the calendar date.
func RelativeTime(now, at time.Time) string {
	d := now.Sub(at)
	future := d < 0
	if future {
		d = -d
	}

	var label string
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		label = plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		label = plural(int(d.Hours()), "hour")
	case d < 48*time.Hour:
		if future {
			return "tomorrow"
		}
		return "yesterday"
	case d < 7*24*time.Hour:
		label = plural(int(d.Hours()/24), "day")
	default:
		return at.Format("2 Jan 2006")
	}
	if future {
		return "in " + label
	}
	return label + " ago"
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
