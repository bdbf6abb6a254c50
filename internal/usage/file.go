package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists usage records as one JSON document on local disk, the
// server-side analogue of the original client's localStorage record. The file
// holds a map of client id to record under the fixed storage key.
type FileStore struct {
	mu   sync.Mutex
	path string
}

type fileDocument struct {
	Records map[string]Record `json:"gzaf_audio_usage"`
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create usage dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(_ context.Context, clientID string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := doc.Records[clientID]
	return rec, ok, nil
}

func (s *FileStore) Save(_ context.Context, clientID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Records[clientID] = rec

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode usage file: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write usage file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace usage file: %w", err)
	}
	return nil
}

func (s *FileStore) read() (fileDocument, error) {
	doc := fileDocument{Records: make(map[string]Record)}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read usage file: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		// A corrupt counter file should not take audio down with it.
		return fileDocument{Records: make(map[string]Record)}, nil
	}
	if doc.Records == nil {
		doc.Records = make(map[string]Record)
	}
	return doc, nil
}

func (s *FileStore) Close() error { return nil }
