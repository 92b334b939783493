package machine

// stringTable is a hand-rolled open-addressing hash table keyed by interned
// string objects, used for the VM's intern set, the globals table and a
// Map's string-keyed side (§4.3, §4.4). It implements linear probing with
// tombstone deletion and grows at a 0.75 load factor, rather than leaning
// on a generic container. forEach visits entries in probe order; printMap
// sorts keys, so that order does not show in printed maps.
type stringTable struct {
	entries []stringEntry
	count   int // live entries, not counting tombstones
	used    int // live entries + tombstones, drives the growth decision
}

type stringEntry struct {
	key   *Object // nil: empty; tombstoneKey: deleted
	value Value
}

// tombstoneKey marks a deleted slot so probing can continue past it.
var tombstoneKey = &Object{}

const tableMaxLoad = 0.75

func newStringTable() *stringTable {
	return &stringTable{}
}

// Get looks up key, returning its value and whether it was found.
func (t *stringTable) Get(key *Object) (Value, bool) {
	if len(t.entries) == 0 {
		return Nil, false
	}
	e := t.find(key)
	if e.key == nil || e.key == tombstoneKey {
		return Nil, false
	}
	return e.value, true
}

// Set inserts or overwrites key's value, returning true if this added a new
// key rather than overwriting an existing one.
func (t *stringTable) Set(key *Object, value Value) bool {
	if float64(t.used+1) > float64(len(t.entries))*tableMaxLoad {
		t.grow()
	}
	e := t.find(key)
	isNew := e.key == nil || e.key == tombstoneKey
	if isNew && e.value.IsNil() {
		// A genuinely empty slot, not a reused tombstone: used grows.
		t.used++
	}
	e.key = key
	e.value = value
	if isNew {
		t.count++
	}
	return isNew
}

// Delete removes key, leaving a tombstone behind so later probes for other
// keys that hashed into the same run still succeed.
func (t *stringTable) Delete(key *Object) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := t.find(key)
	if e.key == nil || e.key == tombstoneKey {
		return false
	}
	e.key = tombstoneKey
	e.value = Bool(true) // non-nil sentinel so Set's used++ logic treats it as occupied
	t.count--
	return true
}

// Count returns the number of live keys.
func (t *stringTable) Count() int { return t.count }

// find returns the slot key belongs in: either the slot already holding it,
// the first tombstone seen along the probe sequence (preferred, to keep
// runs short), or the first empty slot.
func (t *stringTable) find(key *Object) *stringEntry {
	mask := uint64(len(t.entries) - 1)
	idx := key.hash & mask
	var tombstone *stringEntry
	for {
		e := &t.entries[idx]
		switch {
		case e.key == nil:
			if tombstone != nil {
				return tombstone
			}
			return e
		case e.key == tombstoneKey:
			if tombstone == nil {
				tombstone = e
			}
		case e.key == key || (e.key.chars == key.chars):
			return e
		}
		idx = (idx + 1) & mask
	}
}

func (t *stringTable) grow() {
	newCap := 8
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	old := t.entries
	t.entries = make([]stringEntry, newCap)
	t.count = 0
	t.used = 0
	for _, e := range old {
		if e.key == nil || e.key == tombstoneKey {
			continue
		}
		dst := t.find(e.key)
		dst.key = e.key
		dst.value = e.value
		t.count++
		t.used++
	}
}

// forEach calls fn for every live entry, in table (probe) order. fn must not
// mutate t.
func (t *stringTable) forEach(fn func(key *Object, value Value)) {
	for _, e := range t.entries {
		if e.key == nil || e.key == tombstoneKey {
			continue
		}
		fn(e.key, e.value)
	}
}
