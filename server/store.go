package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/skillscope/engine"
)

// Dataset is one uploaded assessment file. Records are never modified
// after the upload; every request builds its own views over them.
type Dataset struct {
	ID       string    `json:"id"`
	Filename string    `json:"filename"`
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at"`

	view engine.RecordView
}

// View returns the read-only record view of the dataset.
func (d *Dataset) View() engine.RecordView { return d.view }

// Store keeps uploaded datasets in memory. When full, adding a dataset
// evicts the oldest one.
type Store struct {
	mu       sync.RWMutex
	max      int
	datasets map[string]*Dataset
	order    []string
}

// NewStore creates a store holding at most max datasets.
func NewStore(max int) *Store {
	if max < 1 {
		max = 1
	}
	return &Store{
		max:      max,
		datasets: make(map[string]*Dataset),
	}
}

// Add registers records under a fresh ID. It returns the new dataset and
// the IDs evicted to make room.
func (s *Store) Add(filename string, records []engine.AssessmentRecord) (*Dataset, []string) {
	ds := &Dataset{
		ID:       uuid.NewString(),
		Filename: filename,
		Records:  len(records),
		LoadedAt: time.Now().UTC(),
		view:     engine.NewSliceView(records),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for len(s.order) >= s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.datasets, oldest)
		evicted = append(evicted, oldest)
	}

	s.datasets[ds.ID] = ds
	s.order = append(s.order, ds.ID)
	return ds, evicted
}

// Get looks up a dataset.
func (s *Store) Get(id string) (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[id]
	return ds, ok
}

// Delete removes a dataset and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return false
	}
	delete(s.datasets, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns the datasets oldest first.
func (s *Store) List() []*Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Dataset, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.datasets[id])
	}
	return list
}

// Len returns the number of stored datasets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}
