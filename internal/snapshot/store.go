// internal/snapshot/store.go
package snapshot

// Store is an append-only, fixed-capacity history in capture order. The
// backing array is allocated once up front.
type Store struct {
	buf []Snapshot
}

// NewStore preallocates room for capacity snapshots. Non-positive
// capacity selects DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{buf: make([]Snapshot, 0, capacity)}
}

// Append stores s and reports whether it was accepted. It returns false
// once the store is full; that is the signal to stop polling.
func (st *Store) Append(s Snapshot) bool {
	if st.Full() {
		return false
	}
	st.buf = append(st.buf, s)
	return true
}

func (st *Store) Len() int          { return len(st.buf) }
func (st *Store) Cap() int          { return cap(st.buf) }
func (st *Store) Full() bool        { return len(st.buf) == cap(st.buf) }
func (st *Store) At(i int) Snapshot { return st.buf[i] }

// Last returns the newest snapshot.
func (st *Store) Last() (Snapshot, bool) {
	if len(st.buf) == 0 {
		return Snapshot{}, false
	}
	return st.buf[len(st.buf)-1], true
}

// All returns the whole history. The slice aliases the store and must be
// treated as read-only.
func (st *Store) All() []Snapshot { return st.buf[:len(st.buf):len(st.buf)] }

// Window returns history[from:to], clamped to the stored range.
func (st *Store) Window(from, to int) []Snapshot {
	if from < 0 {
		from = 0
	}
	if to > len(st.buf) {
		to = len(st.buf)
	}
	if from >= to {
		return nil
	}
	return st.buf[from:to:to]
}
