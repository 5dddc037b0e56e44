package artifact

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"sync"

	apperrors "github.com/haircarepro/server/pkg/errors"

	"github.com/haircarepro/server/internal/domain/careplan"
)

type storedObject struct {
	data     []byte
	mimeType string
	etag     string
}

// MemoryStore is an in-process artifact store used when no bucket is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]storedObject
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]storedObject)}
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte, mimeType string) (careplan.StoredArtifact, error) {
	buf := make([]byte, len(data))
	copy(buf, data)
	sum := md5.Sum(buf)
	etag := hex.EncodeToString(sum[:])

	s.mu.Lock()
	s.objects[key] = storedObject{data: buf, mimeType: mimeType, etag: etag}
	s.mu.Unlock()

	return careplan.StoredArtifact{
		Key:      key,
		Size:     int64(len(buf)),
		MimeType: mimeType,
		ETag:     etag,
	}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.Wrap("artifact_not_found", "artifact not found", nil)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

var _ careplan.ArtifactStore = (*MemoryStore)(nil)
