package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore keeps records in memory and persists them as a YAML list.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	records map[string]Record
}

// OpenFileStore loads the records at path. A missing file yields an empty
// store that is created on the first Put.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, records: make(map[string]Record)}

	records, err := ReadRecords(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		normalized, err := r.Normalize()
		if err != nil {
			return nil, fmt.Errorf("invalid record in %s: %w", path, err)
		}
		s.records[normalized.Ticker] = normalized
	}
	return s, nil
}

// ReadRecords parses a YAML list of records.
func ReadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records in %s: %w", path, err)
	}
	return records, nil
}

func (s *FileStore) Get(_ context.Context, ticker string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[strings.ToUpper(strings.TrimSpace(ticker))]
	if !ok {
		return Record{}, fmt.Errorf("%s: %w", ticker, ErrNotFound)
	}
	record.Inputs = record.Inputs.Clone()
	return record, nil
}

func (s *FileStore) Search(_ context.Context, query string, limit int) ([]Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := make([]Candidate, 0, len(s.records))
	for _, r := range s.records {
		candidates = append(candidates, Candidate{Ticker: r.Ticker, Name: r.Name})
	}
	return rankCandidates(query, candidates, limit), nil
}

// Put stores the record and writes the file. The in-memory record is only
// kept when the write succeeds.
func (s *FileStore) Put(_ context.Context, record Record) error {
	record, err := record.Normalize()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	previous, existed := s.records[record.Ticker]
	s.records[record.Ticker] = record
	if err := s.save(); err != nil {
		if existed {
			s.records[record.Ticker] = previous
		} else {
			delete(s.records, record.Ticker)
		}
		return err
	}
	return nil
}

func (s *FileStore) save() error {
	records := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Ticker < records[j].Ticker })

	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
