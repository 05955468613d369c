package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	appidentity "github.com/institute/backend/internal/application/identity"
)

var _ appidentity.ObjectStorage = (*InMemoryObjectStorage)(nil)

// InMemoryObjectStorage keeps objects in a map. It backs development
// deployments without an S3 endpoint and the logo round-trip tests.
type InMemoryObjectStorage struct {
	// BaseURL prefixes the fake presigned URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string]storedObject
}

type storedObject struct {
	data        []byte
	contentType string
}

// NewInMemoryObjectStorage creates a new InMemoryObjectStorage
func NewInMemoryObjectStorage() *InMemoryObjectStorage {
	return &InMemoryObjectStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string]storedObject),
	}
}

// GenerateUploadURL returns a fake presigned upload URL
func (s *InMemoryObjectStorage) GenerateUploadURL(
	_ context.Context,
	storageKey, _ string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + storageKey, expiresAt, nil
}

// GenerateDownloadURL returns a fake presigned download URL
func (s *InMemoryObjectStorage) GenerateDownloadURL(
	_ context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/download/" + storageKey, expiresAt, nil
}

// GetObject returns the stored bytes for a key
func (s *InMemoryObjectStorage) GetObject(_ context.Context, storageKey string) ([]byte, string, error) {
	if storageKey == "" {
		return nil, "", errors.New("storage key is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[storageKey]
	if !ok {
		return nil, "", errors.New("object not found: " + storageKey)
	}
	return obj.data, obj.contentType, nil
}

// DeleteObject removes a stored object. Deleting a missing key succeeds.
func (s *InMemoryObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

// ObjectExists reports whether a key has been uploaded
func (s *InMemoryObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[storageKey]
	return ok, nil
}

// Upload stores data under a key
func (s *InMemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = storedObject{data: data, contentType: contentType}
	return nil
}
