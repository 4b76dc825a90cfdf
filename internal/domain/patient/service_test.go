package patient

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
	seq      int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByUHID(ctx context.Context, uhid string) (*Patient, error) {
	for _, p := range m.patients {
		if p.UHID == uhid {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Update(ctx context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	q := strings.ToLower(query)
	var out []*Patient
	for _, p := range m.patients {
		if strings.Contains(strings.ToLower(p.FullName), q) ||
			strings.Contains(strings.ToLower(p.UHID), q) ||
			strings.Contains(p.Phone, query) {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) NextUHIDSequence(ctx context.Context) (int64, error) {
	m.seq++
	return m.seq, nil
}

func TestRegisterPatient_AssignsUHID(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	p := &Patient{FullName: "Ravi Kumar", Phone: "9876543210"}

	if err := svc.RegisterPatient(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(p.UHID, "MM-") {
		t.Errorf("uhid = %q, want MM- prefix", p.UHID)
	}
	if !strings.HasSuffix(p.UHID, "000001") {
		t.Errorf("uhid = %q, want first sequence value", p.UHID)
	}
}

func TestRegisterPatient_Validation(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	if err := svc.RegisterPatient(context.Background(), &Patient{FullName: "Ravi"}); err != ErrInvalidPatient {
		t.Errorf("err = %v, want ErrInvalidPatient", err)
	}
}

func TestSearchPatients_RejectsShortQuery(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())

	// "र" is one rune but multiple bytes; the threshold counts characters.
	for _, q := range []string{"", "r", " r ", "र"} {
		_, _, err := svc.SearchPatients(context.Background(), q, 20, 0)
		if err != ErrQueryTooShort {
			t.Errorf("query %q: err = %v, want ErrQueryTooShort", q, err)
		}
	}
}

func TestSearchPatients_MatchesNameAndUHID(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())

	ravi := &Patient{FullName: "Ravi Kumar", Phone: "9876543210"}
	if err := svc.RegisterPatient(context.Background(), ravi); err != nil {
		t.Fatal(err)
	}
	if err := svc.RegisterPatient(context.Background(), &Patient{FullName: "Anita Shah", Phone: "9123456780"}); err != nil {
		t.Fatal(err)
	}

	got, total, err := svc.SearchPatients(context.Background(), "ravi", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || got[0].FullName != "Ravi Kumar" {
		t.Errorf("got %d results, want 1 for Ravi", total)
	}

	got, _, err = svc.SearchPatients(context.Background(), ravi.UHID, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("uhid search: got %d results, want 1", len(got))
	}
}
