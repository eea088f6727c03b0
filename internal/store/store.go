// Package store persists node records between CLI invocations. Each record
// is one JSON file under the store directory.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrRecordNotFound indicates the requested record id is not stored.
	ErrRecordNotFound = errors.New("node record not found")
	// ErrStoreCorrupted indicates a record file holds invalid JSON.
	ErrStoreCorrupted = errors.New("store corrupted")
)

// NodeRecord describes one provisioned node.
type NodeRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	VMID         int       `json:"vmId"`
	TemplateName string    `json:"templateName"`
	ExternalName string    `json:"externalName"`
	IP           string    `json:"ip,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewRecordID returns a fresh record id: node-<timestamp>-<random>.
func NewRecordID() string {
	return fmt.Sprintf("node-%s-%s",
		time.Now().Format("20060102-150405"), uuid.NewString()[:8])
}

// Store manages persistence of node records.
type Store interface {
	Save(record *NodeRecord) error
	Load(id string) (*NodeRecord, error)
	List() ([]*NodeRecord, error)
	Delete(id string) error
}

// JSONStore implements Store with one JSON file per record.
type JSONStore struct {
	dir string
	mu  sync.RWMutex
}

var _ Store = (*JSONStore)(nil)

// NewJSONStore creates the store directory if needed.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	return &JSONStore{dir: dir}, nil
}

func (s *JSONStore) Save(record *NodeRecord) error {
	if record == nil {
		return errors.New("node record is nil")
	}

	if record.ID == "" {
		return errors.New("node record id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling node record: %w", err)
	}

	if err := os.WriteFile(s.filePath(record.ID), data, 0o644); err != nil {
		return fmt.Errorf("writing node record: %w", err)
	}

	return nil
}

func (s *JSONStore) Load(id string) (*NodeRecord, error) {
	if id == "" {
		return nil, errors.New("node record id is empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.load(id)
}

func (s *JSONStore) load(id string) (*NodeRecord, error) {
	data, err := os.ReadFile(s.filePath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%q: %w", id, ErrRecordNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("reading node record: %w", err)
	}

	record := &NodeRecord{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, errors.Join(err, ErrStoreCorrupted)
	}

	return record, nil
}

// List returns every readable record, oldest first. Unreadable or corrupted
// files are skipped.
func (s *JSONStore) List() ([]*NodeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading store directory: %w", err)
	}

	var records []*NodeRecord

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		record, err := s.load(entry.Name()[:len(entry.Name())-len(".json")])
		if err != nil {
			continue
		}

		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	return records, nil
}

func (s *JSONStore) Delete(id string) error {
	if id == "" {
		return errors.New("node record id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.filePath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%q: %w", id, ErrRecordNotFound)
	} else if err != nil {
		return fmt.Errorf("deleting node record: %w", err)
	}

	return nil
}

func (s *JSONStore) filePath(id string) string {
	return filepath.Join(s.dir, id+".json")
}
