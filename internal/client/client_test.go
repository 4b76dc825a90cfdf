package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medmitra/api/internal/domain/encounter"
	"github.com/medmitra/api/internal/domain/patient"
)

func envelopeJSON(success bool, data interface{}, message string) []byte {
	raw, _ := json.Marshal(map[string]interface{}{
		"success": success,
		"data":    data,
		"message": message,
	})
	return raw
}

func TestSearchPatients_DecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/patients/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if q := r.URL.Query().Get("q"); q != "rahul" {
			t.Errorf("q = %q", q)
		}
		w.Write(envelopeJSON(true, []patient.Patient{{UHID: "MM-2026-000042", FullName: "Rahul Sharma"}}, ""))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-token")
	patients, err := c.SearchPatients(context.Background(), "rahul")
	if err != nil {
		t.Fatal(err)
	}
	if len(patients) != 1 || patients[0].UHID != "MM-2026-000042" {
		t.Errorf("patients = %+v", patients)
	}
}

func TestAPIError_CarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write(envelopeJSON(false, nil, "search query must be at least 2 characters"))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.SearchPatients(context.Background(), "r")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d", apiErr.Status)
	}
	if apiErr.Message != "search query must be at least 2 characters" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestFinalizeEncounter_SendsIdempotencyKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(encounter.IdempotencyKeyHeader)
		w.Write(envelopeJSON(true, encounter.Encounter{Status: encounter.StatusFinalized}, ""))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	enc, err := c.FinalizeEncounter(context.Background(), uuid.New(), encounter.FinalizeRequest{ChiefComplaint: "fever"})
	if err != nil {
		t.Fatal(err)
	}
	if enc.Status != encounter.StatusFinalized {
		t.Errorf("status = %q", enc.Status)
	}
	if gotKey == "" {
		t.Error("expected an Idempotency-Key header")
	}
	if _, err := uuid.Parse(gotKey); err != nil {
		t.Errorf("key %q is not a uuid", gotKey)
	}
}

func TestFinalizeEncounterWithKey_ReplaysSameKey(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get(encounter.IdempotencyKeyHeader))
		w.Write(envelopeJSON(true, encounter.Encounter{}, ""))
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	id := uuid.New()
	for i := 0; i < 2; i++ {
		if _, err := c.FinalizeEncounterWithKey(context.Background(), id, encounter.FinalizeRequest{ChiefComplaint: "fever"}, "retry-key"); err != nil {
			t.Fatal(err)
		}
	}
	if len(keys) != 2 || keys[0] != "retry-key" || keys[1] != "retry-key" {
		t.Errorf("keys = %v", keys)
	}
}

func TestDebouncedSearch_OneCallPerBurst(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	fn := func(ctx context.Context, query string) ([]patient.Patient, error) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, query)
		return []patient.Patient{{FullName: "Rahul Sharma"}}, nil
	}

	d := NewDebouncedSearch(fn, 20*time.Millisecond)
	defer d.Close()

	ctx := context.Background()
	for _, q := range []string{"ra", "rah", "rahu", "rahul"} {
		d.Query(ctx, q)
		time.Sleep(2 * time.Millisecond)
	}

	select {
	case r := <-d.Results():
		if r.Query != "rahul" {
			t.Errorf("query = %q, want the last keystroke", r.Query)
		}
		if len(r.Patients) != 1 {
			t.Errorf("patients = %+v", r.Patients)
		}
	case <-time.After(time.Second):
		t.Fatal("no result delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 || calls[0] != "rahul" {
		t.Errorf("calls = %v, want exactly one with the final query", calls)
	}
}

func TestDebouncedSearch_ShortQuerySkipsServer(t *testing.T) {
	called := false
	fn := func(ctx context.Context, query string) ([]patient.Patient, error) {
		called = true
		return nil, nil
	}

	d := NewDebouncedSearch(fn, 5*time.Millisecond)
	defer d.Close()

	d.Query(context.Background(), " r ")

	select {
	case r := <-d.Results():
		if len(r.Patients) != 0 {
			t.Errorf("patients = %+v, want cleared results", r.Patients)
		}
	case <-time.After(time.Second):
		t.Fatal("no result delivered")
	}

	time.Sleep(20 * time.Millisecond)
	if called {
		t.Error("short query must not reach the server")
	}
}

func TestDebouncedSearch_ShortQueryCancelsPending(t *testing.T) {
	called := false
	fn := func(ctx context.Context, query string) ([]patient.Patient, error) {
		called = true
		return nil, nil
	}

	d := NewDebouncedSearch(fn, 20*time.Millisecond)
	defer d.Close()

	ctx := context.Background()
	d.Query(ctx, "rahul")
	d.Query(ctx, "r")

	time.Sleep(50 * time.Millisecond)
	if called {
		t.Error("clearing the query must cancel the pending search")
	}
}

func TestDebouncedSearch_CloseStopsDelivery(t *testing.T) {
	fn := func(ctx context.Context, query string) ([]patient.Patient, error) {
		return nil, nil
	}
	d := NewDebouncedSearch(fn, 10*time.Millisecond)
	d.Query(context.Background(), "rahul")
	d.Close()

	time.Sleep(30 * time.Millisecond)
	if _, ok := <-d.Results(); ok {
		t.Error("expected a closed result channel")
	}
}
