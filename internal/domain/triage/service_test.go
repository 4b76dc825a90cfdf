package triage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	records map[uuid.UUID]*Record
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[uuid.UUID]*Record)}
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *mockRepo) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Record, error) {
	for _, rec := range m.records {
		if rec.AppointmentID == appointmentID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *mockRepo) Update(ctx context.Context, rec *Record) error {
	if _, ok := m.records[rec.ID]; !ok {
		return ErrNotFound
	}
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *mockRepo) ListPending(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var out []*Record
	for _, rec := range m.records {
		if rec.DoctorID == doctorID && !rec.SentToDoctor {
			out = append(out, rec)
		}
	}
	return out, len(out), nil
}

type mockGateway struct {
	marked []uuid.UUID
}

func (m *mockGateway) MarkWithDoctor(ctx context.Context, appointmentID uuid.UUID) error {
	m.marked = append(m.marked, appointmentID)
	return nil
}

func openRecord(t *testing.T, svc *Service) *Record {
	t.Helper()
	rec, err := svc.Open(context.Background(), uuid.New(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestOpen_Idempotent(t *testing.T) {
	svc := NewService(newMockRepo(), nil, zerolog.Nop())
	appointmentID := uuid.New()

	first, err := svc.Open(context.Background(), appointmentID, uuid.New(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Open(context.Background(), appointmentID, uuid.New(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Error("expected the same record on repeated open")
	}
}

func TestSaveVitals_RejectsEmpty(t *testing.T) {
	svc := NewService(newMockRepo(), nil, zerolog.Nop())
	rec := openRecord(t, svc)

	_, err := svc.SaveVitals(context.Background(), rec.ID, map[string]string{"bp": "", "pulse": "  "})
	if !errors.Is(err, ErrEmptyVitals) {
		t.Errorf("err = %v, want ErrEmptyVitals", err)
	}

	got, err := svc.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.VitalsCompleted {
		t.Error("empty submission must not complete vitals")
	}
}

func TestSaveVitals_SetsCompleted(t *testing.T) {
	svc := NewService(newMockRepo(), nil, zerolog.Nop())
	rec := openRecord(t, svc)

	got, err := svc.SaveVitals(context.Background(), rec.ID, map[string]string{"bp": "120/80", "pulse": "72"})
	if err != nil {
		t.Fatal(err)
	}
	if !got.VitalsCompleted {
		t.Error("expected vitalsCompleted")
	}
	if got.Vitals["pulse"] != 72.0 {
		t.Errorf("pulse = %v", got.Vitals["pulse"])
	}
}

func TestSavePayment_ComputesAmount(t *testing.T) {
	svc := NewService(newMockRepo(), nil, zerolog.Nop())
	rec := openRecord(t, svc)

	got, err := svc.SavePayment(context.Background(), rec.ID, PaymentRequest{
		Mode:              PaymentUPI,
		Status:            PaymentPaid,
		ConsultationFee:   500,
		AdditionalCharges: 150.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.PaymentAmount != "650.50" {
		t.Errorf("amount = %q, want 650.50", got.PaymentAmount)
	}
	if !got.PaymentCompleted {
		t.Error("expected paymentCompleted")
	}
}

func TestSavePayment_RejectsBadMode(t *testing.T) {
	svc := NewService(newMockRepo(), nil, zerolog.Nop())
	rec := openRecord(t, svc)

	_, err := svc.SavePayment(context.Background(), rec.ID, PaymentRequest{Mode: "Cheque", Status: PaymentPaid})
	if !errors.Is(err, ErrInvalidPayment) {
		t.Errorf("err = %v, want ErrInvalidPayment", err)
	}
	_, err = svc.SavePayment(context.Background(), rec.ID, PaymentRequest{Mode: PaymentCash, Status: "done"})
	if !errors.Is(err, ErrInvalidPayment) {
		t.Errorf("err = %v, want ErrInvalidPayment", err)
	}
}

func TestSavePayment_DefaultsStatusPaid(t *testing.T) {
	svc := NewService(newMockRepo(), nil, zerolog.Nop())
	rec := openRecord(t, svc)

	got, err := svc.SavePayment(context.Background(), rec.ID, PaymentRequest{
		Mode:            PaymentCash,
		ConsultationFee: 500,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.PaymentStatus != PaymentPaid {
		t.Errorf("status = %q, want %q", got.PaymentStatus, PaymentPaid)
	}
}

// sendRecord completes both triage steps and hands the patient over.
func sendRecord(t *testing.T, svc *Service, id uuid.UUID) {
	t.Helper()
	if _, err := svc.SaveVitals(context.Background(), id, map[string]string{"bp": "120/80"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SavePayment(context.Background(), id, PaymentRequest{
		Mode: PaymentCash, Status: PaymentPaid, ConsultationFee: 500,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendToDoctor(context.Background(), id); err != nil {
		t.Fatal(err)
	}
}

func TestSaveVitals_FrozenAfterHandover(t *testing.T) {
	svc := NewService(newMockRepo(), &mockGateway{}, zerolog.Nop())
	rec := openRecord(t, svc)
	sendRecord(t, svc, rec.ID)

	_, err := svc.SaveVitals(context.Background(), rec.ID, map[string]string{"pulse": "999"})
	if !errors.Is(err, ErrRecordFrozen) {
		t.Errorf("err = %v, want ErrRecordFrozen", err)
	}

	got, err := svc.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Vitals["pulse"] != nil {
		t.Errorf("vitals mutated after handover: %v", got.Vitals)
	}
	if got.Vitals["bp"] != "120/80" {
		t.Errorf("bp = %v, want the pre-handover reading", got.Vitals["bp"])
	}
}

func TestSavePayment_FrozenAfterHandover(t *testing.T) {
	svc := NewService(newMockRepo(), &mockGateway{}, zerolog.Nop())
	rec := openRecord(t, svc)
	sendRecord(t, svc, rec.ID)

	_, err := svc.SavePayment(context.Background(), rec.ID, PaymentRequest{
		Mode: PaymentUPI, Status: PaymentPending, ConsultationFee: 1,
	})
	if !errors.Is(err, ErrRecordFrozen) {
		t.Errorf("err = %v, want ErrRecordFrozen", err)
	}

	got, err := svc.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.PaymentAmount != "500.00" || got.PaymentMode != PaymentCash {
		t.Errorf("payment mutated after handover: %s %s", got.PaymentMode, got.PaymentAmount)
	}
}

func TestSendToDoctor_Gate(t *testing.T) {
	gw := &mockGateway{}
	svc := NewService(newMockRepo(), gw, zerolog.Nop())
	rec := openRecord(t, svc)

	if _, err := svc.SendToDoctor(context.Background(), rec.ID); !errors.Is(err, ErrVitalsIncomplete) {
		t.Errorf("no vitals: err = %v, want ErrVitalsIncomplete", err)
	}

	if _, err := svc.SaveVitals(context.Background(), rec.ID, map[string]string{"bp": "120/80"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendToDoctor(context.Background(), rec.ID); !errors.Is(err, ErrPaymentIncomplete) {
		t.Errorf("no payment: err = %v, want ErrPaymentIncomplete", err)
	}

	if _, err := svc.SavePayment(context.Background(), rec.ID, PaymentRequest{
		Mode: PaymentCash, Status: PaymentPaid, ConsultationFee: 500,
	}); err != nil {
		t.Fatal(err)
	}

	sent, err := svc.SendToDoctor(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !sent.SentToDoctor || sent.SentAt == nil {
		t.Error("expected handover to be recorded")
	}
	if len(gw.marked) != 1 || gw.marked[0] != rec.AppointmentID {
		t.Error("expected appointment to be marked with_doctor")
	}

	if _, err := svc.SendToDoctor(context.Background(), rec.ID); !errors.Is(err, ErrAlreadySent) {
		t.Errorf("repeat send: err = %v, want ErrAlreadySent", err)
	}
}
