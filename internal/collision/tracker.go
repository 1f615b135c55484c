// Package collision indexes stream IDs by hash while staying correct when two
// different IDs share a hash.
package collision

// Tracker maps stream IDs to their declaration index.
//
// Lookups go through the 64-bit key first. Once two distinct IDs have produced
// the same key the tracker switches to comparing names, so a collision never
// resolves to the wrong stream.
type Tracker struct {
	byKey        map[uint64]int // key → first declaration index
	byName       map[string]int // populated only after a collision
	names        []string       // declaration order
	keyOf        func(string) uint64
	duplicates   []string
	hasCollision bool
}

// NewTracker creates a tracker that derives keys with keyOf.
func NewTracker(keyOf func(string) uint64) *Tracker {
	return &Tracker{
		byKey: make(map[uint64]int),
		keyOf: keyOf,
	}
}

// Track records the stream id at the next declaration index.
//
// A repeated id keeps its first index and is reported by Duplicates; stream
// order itself is never changed.
func (t *Tracker) Track(id string) {
	idx := len(t.names)
	t.names = append(t.names, id)

	if t.byName != nil {
		if _, ok := t.byName[id]; ok {
			t.duplicates = append(t.duplicates, id)
			return
		}
	}

	key := t.keyOf(id)
	first, exists := t.byKey[key]
	switch {
	case !exists:
		t.byKey[key] = idx
	case t.names[first] == id:
		t.duplicates = append(t.duplicates, id)
		return
	default:
		t.enableNames()
	}

	if t.byName != nil {
		t.byName[id] = idx
	}
}

// enableNames switches to name-based lookup after a hash collision.
func (t *Tracker) enableNames() {
	if t.hasCollision {
		return
	}

	t.hasCollision = true
	t.byName = make(map[string]int, len(t.names))
	for i, name := range t.names[:len(t.names)-1] {
		if _, ok := t.byName[name]; !ok {
			t.byName[name] = i
		}
	}
}

// Lookup returns the declaration index of id.
func (t *Tracker) Lookup(id string) (int, bool) {
	if t.hasCollision {
		idx, ok := t.byName[id]
		return idx, ok
	}

	idx, ok := t.byKey[t.keyOf(id)]
	if !ok || t.names[idx] != id {
		return 0, false
	}

	return idx, true
}

// LookupKey returns the declaration index for a precomputed key.
// It reports false when the key is ambiguous because of a collision.
func (t *Tracker) LookupKey(key uint64) (int, bool) {
	if t.hasCollision {
		return 0, false
	}

	idx, ok := t.byKey[key]

	return idx, ok
}

// HasCollision reports whether two distinct IDs produced the same key.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Duplicates returns IDs declared more than once, in the order they repeated.
func (t *Tracker) Duplicates() []string {
	return t.duplicates
}

// Count returns the number of tracked declarations.
func (t *Tracker) Count() int {
	return len(t.names)
}
