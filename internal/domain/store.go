package domain

import "sync"

// UpsertOutcome describes what LocationStore.Upsert did with a record.
type UpsertOutcome int

const (
	// Inserted means the WMO index was new.
	Inserted UpsertOutcome = iota
	// Replaced means the record outranked the stored one and took its place.
	Replaced
	// Kept means the stored record was retained.
	Kept
)

func (o UpsertOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Replaced:
		return "replaced"
	case Kept:
		return "kept"
	default:
		return "unknown"
	}
}

// LocationStore holds one Location per WMO index, resolving collisions by
// source-type rank. Records come back in first-insertion order of their
// WMO index; replacement keeps the original position.
type LocationStore struct {
	priority PriorityTable

	mu      sync.Mutex
	index   map[string]int // WMO index -> position in records
	records []Location
}

// NewLocationStore creates an empty store ranked by priority.
func NewLocationStore(priority PriorityTable) *LocationStore {
	return &LocationStore{
		priority: priority,
		index:    make(map[string]int),
	}
}

// Upsert inserts loc, or replaces the stored record for the same WMO index
// when loc has a strictly higher rank. Equal ranks keep the first-seen record.
func (s *LocationStore) Upsert(loc Location) UpsertOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[loc.WMOIndex]
	if !ok {
		s.index[loc.WMOIndex] = len(s.records)
		s.records = append(s.records, loc)
		return Inserted
	}

	if s.priority.Rank(loc.SourceType) > s.priority.Rank(s.records[i].SourceType) {
		s.records[i] = loc
		return Replaced
	}
	return Kept
}

// All returns a copy of the retained records in output order.
func (s *LocationStore) All() []Location {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Location, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the retained record for a WMO index.
func (s *LocationStore) Get(wmoIndex string) (Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[wmoIndex]
	if !ok {
		return Location{}, false
	}
	return s.records[i], true
}

// Len returns the number of distinct WMO indexes stored.
func (s *LocationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
