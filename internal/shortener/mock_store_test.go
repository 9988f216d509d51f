package shortener_test

import (
	"context"
	"errors"
	"sync"

	"github.com/serroba/shortlink/internal/shortener"
)

var errStoreDown = errors.New("store unavailable")

// recordingStore is an in-memory Store that counts writes and can inject faults.
type recordingStore struct {
	mu          sync.Mutex
	data        map[string]string
	getErr      error
	keysErr     error
	setNXErr    error
	setErr      error
	deleteErr   error
	phantomKeys []string
	writes      int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{data: make(map[string]string)}
}

func (r *recordingStore) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.getErr != nil {
		return "", r.getErr
	}

	v, ok := r.data[key]
	if !ok {
		return "", shortener.ErrNotFound
	}

	return v, nil
}

func (r *recordingStore) Keys(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.keysErr != nil {
		return nil, r.keysErr
	}

	keys := append([]string{}, r.phantomKeys...)
	for k := range r.data {
		keys = append(keys, k)
	}

	return keys, nil
}

func (r *recordingStore) SetIfAbsent(_ context.Context, key, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.setNXErr != nil {
		return false, r.setNXErr
	}

	if _, ok := r.data[key]; ok {
		return false, nil
	}

	r.data[key] = value
	r.writes++

	return true, nil
}

func (r *recordingStore) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.setErr != nil {
		return r.setErr
	}

	r.data[key] = value
	r.writes++

	return nil
}

func (r *recordingStore) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleteErr != nil {
		return r.deleteErr
	}

	delete(r.data, key)
	r.writes++

	return nil
}

func (r *recordingStore) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writes
}
