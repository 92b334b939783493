package machine

import "golang.org/x/exp/slices"

// mapObj is ember's single heterogeneous container type (§3, §4.4). It
// dispatches between two independent hash tables: string keys (from dotted
// field access and literal string keys) live in a stringTable so that field
// access reads as a conventional string-keyed lookup; every other key
// (numbers, bools, nested maps/functions by reference) lives in a rawTable
// keyed by the value's raw bit pattern. A given key is never present in
// both at once.
type mapObj struct {
	str *stringTable
	raw *rawTable
}

func newMapObj() *mapObj {
	return &mapObj{str: newStringTable(), raw: newRawTable()}
}

func newObjMap() *Object {
	return &Object{kind: objMap, m: newMapObj()}
}

// Get looks up key, dispatching on whether it is a string.
func (m *mapObj) Get(key Value) (Value, bool) {
	if key.IsString() {
		return m.str.Get(key.AsObject())
	}
	return m.raw.Get(key)
}

// Set inserts or overwrites key's value.
func (m *mapObj) Set(key, value Value) {
	if key.IsString() {
		m.str.Set(key.AsObject(), value)
		return
	}
	m.raw.Set(key, value)
}

// Delete removes key, reporting whether it was present.
func (m *mapObj) Delete(key Value) bool {
	if key.IsString() {
		return m.str.Delete(key.AsObject())
	}
	return m.raw.Delete(key)
}

// Len returns the total number of entries across both tables.
func (m *mapObj) Len() int { return m.str.Count() + m.raw.Count() }

// printMap renders a map's contents for PRINT, sorting keys for
// deterministic output since the underlying hash tables have no stable
// iteration order across runs.
func printMap(m *mapObj) string {
	type pair struct {
		k, v string
	}
	var pairs []pair
	m.str.forEach(func(key *Object, value Value) {
		pairs = append(pairs, pair{key.chars, Print(value)})
	})
	m.raw.forEach(func(key, value Value) {
		pairs = append(pairs, pair{Print(key), Print(value)})
	})
	slices.SortFunc(pairs, func(a, b pair) int {
		switch {
		case a.k < b.k:
			return -1
		case a.k > b.k:
			return 1
		default:
			return 0
		}
	})

	out := "{"
	for i, p := range pairs {
		if i > 0 {
			out += ", "
		}
		out += p.k + ": " + p.v
	}
	return out + "}"
}
