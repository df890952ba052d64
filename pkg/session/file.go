package session

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStorage keeps the session in a small JSON file, so it survives a
// process restart of the CLI but can be wiped by deleting one file. With a
// ttl the file expires like a redis key: every write renews it, and a read
// past the deadline finds nothing and removes the file.
type FileStorage struct {
	path string
	ttl  time.Duration
	now  func() time.Time
	mu   sync.Mutex
}

type fileData struct {
	ExpiresAt *time.Time        `json:"expires_at,omitempty"`
	Values    map[string]string `json:"values"`
}

// NewFileStorage stores the session at path. A ttl of zero never expires.
func NewFileStorage(path string, ttl time.Duration) *FileStorage {
	return &FileStorage{path: path, ttl: ttl, now: time.Now}
}

func (f *FileStorage) Path() string {
	return f.path
}

func (f *FileStorage) read() (map[string]string, error) {
	data := make(map[string]string)
	js, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	if len(js) == 0 {
		return data, nil
	}
	fd := fileData{}
	if err := json.Unmarshal(js, &fd); err != nil {
		return nil, err
	}
	if fd.ExpiresAt != nil && !f.now().Before(*fd.ExpiresAt) {
		if err := f.write(nil); err != nil {
			return nil, err
		}
		return data, nil
	}
	for k, v := range fd.Values {
		data[k] = v
	}
	return data, nil
}

func (f *FileStorage) write(data map[string]string) error {
	if len(data) == 0 {
		err := os.Remove(f.path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	fd := fileData{Values: data}
	if f.ttl > 0 {
		exp := f.now().Add(f.ttl).UTC()
		fd.ExpiresAt = &exp
	}
	js, err := json.Marshal(fd)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(js); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *FileStorage) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return "", false, err
	}
	val, ok := data[key]
	return val, ok, nil
}

func (f *FileStorage) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return err
	}
	data[key] = value
	return f.write(data)
}

func (f *FileStorage) Remove(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return err
	}
	for _, key := range keys {
		delete(data, key)
	}
	return f.write(data)
}
