package cart

import (
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/velamoda/storefront/internal/storage"
)

// Store owns the cart line-item collection and the transient drawer flag.
//
// Mutations are pure transitions over the collection; persistence is a
// fire-and-forget side effect applied after each one. A persistence write
// failure is logged, never surfaced. The drawer flag is not persisted and
// starts closed on every fresh process.
type Store struct {
	mu    sync.Mutex
	items []Item
	open  bool

	st storage.Store
	lg *zap.Logger

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// NewStore creates a Store backed by st, restoring any previously persisted
// collection. Corrupt or absent saved state yields an empty cart; corruption
// is reported in the log only.
func NewStore(st storage.Store, lg *zap.Logger) *Store {
	s := &Store{
		st:   st,
		lg:   lg,
		subs: make(map[int]func()),
	}
	s.restore()
	return s
}

// Subscribe registers fn to run after every mutation, including drawer
// open/close. It returns an unsubscribe function.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Add merges the candidate into an existing line with the same identity key,
// summing quantities, or appends it as a new line preserving insertion order.
// A candidate quantity below 1 is clamped to 1.
func (s *Store) Add(item Item) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	s.mu.Lock()
	key := item.Key()
	merged := false
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// Remove deletes the line matching key exactly, including the no-size case.
// Removing an absent line is a no-op.
func (s *Store) Remove(key Key) {
	s.mu.Lock()
	changed := s.removeLocked(key)
	if changed {
		s.persistLocked()
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// UpdateQuantity sets the line's quantity. A quantity of zero or below removes
// the line entirely. Updating an absent line is a no-op and never creates one.
func (s *Store) UpdateQuantity(key Key, quantity int) {
	s.mu.Lock()
	changed := false
	if quantity <= 0 {
		changed = s.removeLocked(key)
	} else {
		for i := range s.items {
			if s.items[i].Key() == key {
				s.items[i].Quantity = quantity
				changed = true
				break
			}
		}
	}
	if changed {
		s.persistLocked()
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Clear empties the collection unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// Items returns a snapshot of the collection in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItems returns the sum of quantities, recomputed on every call.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// TotalPrice returns the sum of price times quantity over all lines,
// recomputed on every call.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Open marks the cart drawer open.
func (s *Store) Open() {
	s.mu.Lock()
	s.open = true
	s.mu.Unlock()
	s.notify()
}

// Close marks the cart drawer closed.
func (s *Store) Close() {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
	s.notify()
}

// IsOpen reports the transient drawer state.
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Store) removeLocked(key Key) bool {
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// persistLocked writes the full collection to storage. Must hold s.mu.
func (s *Store) persistLocked() {
	if s.st == nil {
		return
	}
	if err := s.st.Write(storage.KeyCart, EncodeItems(s.items)); err != nil {
		s.lg.Error("persist cart", zap.Error(err))
	}
}

// restore loads the persisted collection, treating absence and corruption
// alike as an empty cart.
func (s *Store) restore() {
	if s.st == nil {
		return
	}
	data, ok, err := s.st.Read(storage.KeyCart)
	if err != nil {
		s.lg.Error("read saved cart", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	items, err := DecodeItems(data)
	if err != nil {
		s.lg.Warn("saved cart is corrupt, starting empty", zap.Error(err))
		return
	}
	s.items = items
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
