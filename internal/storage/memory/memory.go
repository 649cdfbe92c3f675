package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"billtracker/internal/core"
)

// Store keeps bills in process memory with the same semantics as the
// SQLite repository.
type Store struct {
	mu     sync.Mutex
	urls   core.URLBuilder
	now    func() time.Time
	nextID int64
	items  map[int64]core.Bill
}

func New(urls core.URLBuilder) *Store {
	return &Store{
		urls:   urls,
		now:    func() time.Time { return time.Now().UTC() },
		nextID: 1,
		items:  make(map[int64]core.Bill),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) ListAll(_ context.Context) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Bill, 0, len(s.items))
	for _, b := range s.items {
		out = append(out, clone(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].BillNumber < out[j].BillNumber
	})
	return out, nil
}

func (s *Store) GetByID(_ context.Context, id int64) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.items[id]
	if !ok {
		return core.Bill{}, core.ErrNotFound
	}
	return clone(b), nil
}

func (s *Store) Create(_ context.Context, d core.BillData) (core.Bill, error) {
	d = d.Normalized(s.urls)
	if err := d.Validate(); err != nil {
		return core.Bill{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.findByNumber(d.BillNumber); ok {
		return core.Bill{}, core.ErrDuplicate
	}
	b := d.ToBill()
	b.ID = s.nextID
	s.nextID++
	b.CreatedAt = s.now()
	b.UpdatedAt = b.CreatedAt
	s.items[b.ID] = b
	return clone(b), nil
}

func (s *Store) Upsert(_ context.Context, d core.BillData) (core.Bill, error) {
	d = d.ForUpsert(s.urls)
	if err := d.Validate(); err != nil {
		return core.Bill{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.findByNumber(d.BillNumber); ok {
		merged := core.MergeUpsert(existing, d)
		merged.UpdatedAt = now
		s.items[merged.ID] = merged
		return clone(merged), nil
	}

	b := d.ToBill()
	b.ID = s.nextID
	s.nextID++
	b.CreatedAt = now
	b.UpdatedAt = now
	s.items[b.ID] = b
	return clone(b), nil
}

func (s *Store) Update(_ context.Context, id int64, p core.BillPatch) (core.Bill, error) {
	if err := p.Validate(); err != nil {
		return core.Bill{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.items[id]
	if !ok {
		return core.Bill{}, core.ErrNotFound
	}
	p.Apply(&b)
	if other, ok := s.findByNumber(b.BillNumber); ok && other.ID != id {
		return core.Bill{}, core.ErrDuplicate
	}
	b.UpdatedAt = s.now()
	s.items[id] = b
	return clone(b), nil
}

func (s *Store) Delete(_ context.Context, id int64) (core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.items[id]
	if !ok {
		return core.Bill{}, core.ErrNotFound
	}
	delete(s.items, id)
	return clone(b), nil
}

// findByNumber expects s.mu to be held.
func (s *Store) findByNumber(billNumber string) (core.Bill, bool) {
	for _, b := range s.items {
		if b.BillNumber == billNumber {
			return b, true
		}
	}
	return core.Bill{}, false
}

func clone(b core.Bill) core.Bill {
	out := b
	for _, f := range []**string{
		&out.CompanionBills, &out.Title, &out.ShortTitle, &out.Description, &out.Committee,
		&out.CommitteeKey, &out.Status, &out.Sponsor, &out.Subcommittee, &out.LSB, &out.URL, &out.Notes,
	} {
		if *f != nil {
			v := **f
			*f = &v
		}
	}
	return out
}
