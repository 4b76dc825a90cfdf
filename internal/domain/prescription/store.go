package prescription

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("prescription not found")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrNotPDF          = errors.New("prescriptions must be PDF documents")
	ErrMissingFileName = errors.New("file name is required")
)

// MaxFileSize caps prescription uploads at 10 MB.
const MaxFileSize = 10 * 1024 * 1024

const pdfContentType = "application/pdf"

// Store is the contract for prescription document backends.
type Store interface {
	Upload(ctx context.Context, meta Prescription, content io.Reader) (*Prescription, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *Prescription, error)
	ListByEncounter(ctx context.Context, encounterID string) ([]*Prescription, error)
	Delete(ctx context.Context, id string) error
}

type storedDoc struct {
	meta    Prescription
	content []byte
}

// MemoryStore is a thread-safe in-memory Store for development and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*storedDoc
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*storedDoc)}
}

func validateUpload(meta *Prescription, content io.Reader) ([]byte, error) {
	if meta.FileName == "" {
		return nil, ErrMissingFileName
	}
	if meta.ContentType != pdfContentType {
		return nil, ErrNotPDF
	}
	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

func (s *MemoryStore) Upload(_ context.Context, meta Prescription, content io.Reader) (*Prescription, error) {
	data, err := validateUpload(&meta, content)
	if err != nil {
		return nil, err
	}

	h := sha256.Sum256(data)
	meta.ID = uuid.New().String()
	meta.Size = int64(len(data))
	meta.Hash = fmt.Sprintf("%x", h)
	meta.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	s.docs[meta.ID] = &storedDoc{meta: meta, content: data}
	s.mu.Unlock()

	out := meta
	return &out, nil
}

func (s *MemoryStore) Download(_ context.Context, id string) (io.ReadCloser, *Prescription, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrNotFound
	}
	meta := doc.meta
	return io.NopCloser(bytes.NewReader(doc.content)), &meta, nil
}

func (s *MemoryStore) ListByEncounter(_ context.Context, encounterID string) ([]*Prescription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Prescription
	for _, doc := range s.docs {
		if doc.meta.EncounterID == encounterID {
			m := doc.meta
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}
