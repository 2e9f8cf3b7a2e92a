package imagestore

import (
	"context"
	"fmt"
	"sync"
)

// Memory keeps images in process. It backs local development and records
// every call for tests.
type Memory struct {
	mu      sync.Mutex
	baseURL string
	assets  map[string][]byte
	uploads []UploadRequest
	deletes []string

	// UploadErr and DeleteErr, when set, fail every matching call.
	UploadErr error
	DeleteErr error
}

func NewMemory(baseURL string) *Memory {
	if baseURL == "" {
		baseURL = "https://images.local"
	}
	return &Memory{baseURL: baseURL, assets: map[string][]byte{}}
}

func (m *Memory) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.uploads = append(m.uploads, req)
	if m.UploadErr != nil {
		return UploadResult{}, m.UploadErr
	}
	if err := ctx.Err(); err != nil {
		return UploadResult{}, err
	}

	key := assetKey(req.Folder, req.PublicID)
	m.assets[key] = append([]byte(nil), req.Data...)
	return UploadResult{URL: fmt.Sprintf("%s/%s", m.baseURL, key), AssetID: key}, nil
}

func (m *Memory) Delete(_ context.Context, assetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deletes = append(m.deletes, assetID)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.assets, assetID)
	return nil
}

// Put seeds an asset without recording an upload.
func (m *Memory) Put(assetID string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[assetID] = data
}

func (m *Memory) Has(assetID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.assets[assetID]
	return ok
}

func (m *Memory) Uploads() []UploadRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]UploadRequest(nil), m.uploads...)
}

func (m *Memory) Deletes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletes...)
}

// Calls is the total number of uploads and deletes seen.
func (m *Memory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads) + len(m.deletes)
}
