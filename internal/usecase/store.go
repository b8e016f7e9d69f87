package usecase

import (
	"sync"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
)

// LeadStore holds the last fetched collection for one provider, in fetch
// order. It is replaced wholesale by a fetch and only ever narrowed by
// bulk-action reconciliation.
type LeadStore struct {
	mu    sync.RWMutex
	leads []entity.Lead
	gen   uint64
}

func NewLeadStore() *LeadStore {
	return &LeadStore{}
}

// Replace installs a fresh fetch. Slots are reassigned from fetch order so
// they are unique within the collection.
func (s *LeadStore) Replace(leads []entity.Lead) {
	next := make([]entity.Lead, len(leads))
	for i, l := range leads {
		next[i] = l.Clone()
		next[i].Slot = i
	}

	s.mu.Lock()
	s.leads = next
	s.gen++
	s.mu.Unlock()
}

func (s *LeadStore) Clear() {
	s.mu.Lock()
	s.leads = nil
	s.gen++
	s.mu.Unlock()
}

// Generation changes every time the collection is replaced or cleared.
// Slots are only meaningful within one generation.
func (s *LeadStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func (s *LeadStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads)
}

// Snapshot returns a deep copy of the whole collection, deactivated leads
// included.
func (s *LeadStore) Snapshot() []entity.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Lead, len(s.leads))
	for i, l := range s.leads {
		out[i] = l.Clone()
	}
	return out
}

// Visible is the collection minus soft-deactivated leads.
func (s *LeadStore) Visible() []entity.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		if l.Deactivated {
			continue
		}
		out = append(out, l.Clone())
	}
	return out
}

// MarkDeactivated flags the leads at the given slots and returns how many
// were found.
func (s *LeadStore) MarkDeactivated(slots []int) int {
	set := slotSet(slots)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i := range s.leads {
		if _, ok := set[s.leads[i].Slot]; ok && !s.leads[i].Deactivated {
			s.leads[i].Deactivated = true
			n++
		}
	}
	return n
}

// Remove drops the leads at the given slots and returns how many went.
func (s *LeadStore) Remove(slots []int) int {
	set := slotSet(slots)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]entity.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		if _, ok := set[l.Slot]; ok {
			continue
		}
		kept = append(kept, l)
	}
	removed := len(s.leads) - len(kept)
	s.leads = kept
	return removed
}

func slotSet(slots []int) map[int]struct{} {
	set := make(map[int]struct{}, len(slots))
	for _, s := range slots {
		set[s] = struct{}{}
	}
	return set
}
