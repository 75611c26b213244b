package testutil

import (
	"context"
	"sync"

	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/flexprice/invoicegen/internal/storage"
)

var _ storage.DocumentStore = (*InMemoryDocumentStore)(nil)

// InMemoryDocumentStore is a storage.DocumentStore with failure injection
type InMemoryDocumentStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	putCalls int

	// FailPuts makes the next n Put calls fail with PutErr
	FailPuts int
	PutErr   error
	// Presign enables PresignedURL, which returns "https://signed.test/<key>"
	Presign bool
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (s *InMemoryDocumentStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putCalls++
	if s.FailPuts != 0 {
		if s.FailPuts > 0 {
			s.FailPuts--
		}
		if s.PutErr != nil {
			return s.PutErr
		}
		return ierr.NewError("injected put failure").Mark(ierr.ErrHTTPClient)
	}

	s.objects[key] = append([]byte(nil), data...)
	s.types[key] = contentType
	return nil
}

func (s *InMemoryDocumentStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, ierr.NewErrorf("document %s not found", key).Mark(ierr.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (s *InMemoryDocumentStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.objects[key]
	return ok, nil
}

func (s *InMemoryDocumentStore) CanPresign() bool {
	return s.Presign
}

func (s *InMemoryDocumentStore) PresignedURL(_ context.Context, key string) (string, error) {
	if !s.Presign {
		return "", ierr.NewError("presign disabled").Mark(ierr.ErrInvalidOperation)
	}
	return "https://signed.test/" + key, nil
}

// Delete removes an object, simulating a lost artifact
func (s *InMemoryDocumentStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
}

// Keys returns the stored keys
func (s *InMemoryDocumentStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}

// ContentType returns the content type an object was stored with
func (s *InMemoryDocumentStore) ContentType(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.types[key]
}

// PutCalls counts every Put attempt, failed ones included
func (s *InMemoryDocumentStore) PutCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putCalls
}

func (s *InMemoryDocumentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = make(map[string][]byte)
	s.types = make(map[string]string)
	s.putCalls = 0
	s.FailPuts = 0
	s.PutErr = nil
	s.Presign = false
}
