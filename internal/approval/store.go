package approval

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prismhq/prism/internal/action"
)

// Pending is a red-tier action waiting on a human decision.
type Pending struct {
	ID        string         `json:"id"`
	Action    action.Request `json:"action"`
	CreatedAt time.Time      `json:"created_at"`
}

// Store holds pending approvals for the life of the process. Entries are
// never expired automatically; removal happens only through Resolve. The
// surrounding system owns cleanup of abandoned entries.
type Store struct {
	mu      sync.Mutex
	pending map[string]*Pending
	seq     int
}

func NewStore() *Store {
	return &Store{
		pending: make(map[string]*Pending),
	}
}

// Add registers an action and returns its pending entry. IDs are
// "{action_type}_{ordinal}" with a counter that only ever grows, so two
// requests for the same action type get distinct ids even after earlier
// entries resolve.
func (s *Store) Add(req action.Request) *Pending {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("%s_%d", req.Type, s.seq)
	s.seq++
	p := &Pending{
		ID:        id,
		Action:    req,
		CreatedAt: time.Now(),
	}
	s.pending[id] = p
	return p
}

func (s *Store) Get(id string) (*Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[id]
	return p, ok
}

// List returns pending entries in submission order.
func (s *Store) List() []*Pending {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*Pending, 0, len(s.pending))
	for _, p := range s.pending {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

// Resolve removes and returns the entry, or false if the id is unknown
// or already resolved.
func (s *Store) Resolve(id string) (*Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return nil, false
	}
	delete(s.pending, id)
	return p, true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
