package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/viant/afs"
)

// FileStore persists the token as a JSON document at the given URL. It is a
// lightweight way to survive process restarts in CLI or single-host services.
type FileStore struct {
	mu  sync.Mutex
	fs  afs.Service
	URL string
}

// NewFileStore creates a Store that persists the token at the given URL.
func NewFileStore(URL string) *FileStore {
	return &FileStore{
		fs:  afs.New(),
		URL: URL,
	}
}

// Lookup reads the persisted token if one exists.
func (f *FileStore) Lookup(ctx context.Context) (*Entry, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	exists, err := f.fs.Exists(ctx, f.URL)
	if err != nil || !exists {
		return nil, false, err
	}
	data, err := f.fs.DownloadWithURL(ctx, f.URL)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load token from %v: %w", f.URL, err)
	}
	entry := &Entry{}
	if err := json.Unmarshal(data, entry); err != nil {
		return nil, false, fmt.Errorf("failed to parse token at %v: %w", f.URL, err)
	}
	if entry.AccessToken == "" {
		return nil, false, nil
	}
	return entry, true, nil
}

// Save writes the token snapshot.
func (f *FileStore) Save(ctx context.Context, entry *Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := f.fs.Upload(ctx, f.URL, 0600, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to persist token at %v: %w", f.URL, err)
	}
	return nil
}

// Clear removes the persisted token if present.
func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	exists, err := f.fs.Exists(ctx, f.URL)
	if err != nil || !exists {
		return err
	}
	return f.fs.Delete(ctx, f.URL)
}
