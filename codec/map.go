package codec

import (
	"fmt"
	"sort"

	"github.com/Polkadex-Substrate/go-scale/scale"
)

// MapKind selects the ordering of a MapClass.
type MapKind int

const (
	// BTreeMap keeps entries sorted by key.
	BTreeMap MapKind = iota
	// HashMap keeps entries in insertion order.
	HashMap
)

func (k MapKind) String() string {
	if k == HashMap {
		return "HashMap"
	}
	return "BTreeMap"
}

// MapClass is a compact-length-prefixed sequence of key/value pairs.
type MapClass struct {
	Key   Class
	Value Class
	Kind  MapKind
}

func NewMapClass(kind MapKind, key, value Class) *MapClass {
	return &MapClass{Key: key, Value: value, Kind: kind}
}

func (cls *MapClass) RawType() string {
	return fmt.Sprintf("%s<%s,%s>", cls.Kind, cls.Key.RawType(), cls.Value.RawType())
}

// MapEntry is one key/value pair.
type MapEntry struct {
	Key   Codec
	Value Codec
}

// build drops repeated keys, the last value winning, and sorts BTreeMap
// entries by key.
func (cls *MapClass) build(entries []MapEntry) *Map {
	seen := make(map[string]int, len(entries))
	out := entries[:0]
	for _, e := range entries {
		key := string(e.Key.Encode())
		if i, ok := seen[key]; ok {
			out[i].Value = e.Value
			continue
		}
		seen[key] = len(out)
		out = append(out, e)
	}
	if cls.Kind == BTreeMap {
		sort.SliceStable(out, func(i, j int) bool {
			return compareCodecs(out[i].Key, out[j].Key) < 0
		})
	}
	return &Map{cls: cls, entries: out}
}

func (cls *MapClass) Decode(r *scale.Reader) (Codec, error) {
	n, err := decodeCount(r, cls.Key)
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	entries := make([]MapEntry, n)
	for i := range entries {
		if entries[i].Key, err = cls.Key.Decode(r); err != nil {
			return nil, wrapDecode(cls, err)
		}
		if entries[i].Value, err = cls.Value.Decode(r); err != nil {
			return nil, wrapDecode(cls, err)
		}
	}
	return cls.build(entries), nil
}

func (cls *MapClass) entry(k, v interface{}) (MapEntry, error) {
	key, err := cls.Key.New(k)
	if err != nil {
		return MapEntry{}, fmt.Errorf("%s key: %w", cls.RawType(), err)
	}
	value, err := cls.Value.New(v)
	if err != nil {
		return MapEntry{}, fmt.Errorf("%s value for %s: %w", cls.RawType(), key, err)
	}
	return MapEntry{Key: key, Value: value}, nil
}

func (cls *MapClass) New(value interface{}) (Codec, error) {
	if m, ok := value.(*Map); ok {
		entries := make([]MapEntry, 0, len(m.entries))
		for _, e := range m.entries {
			entry, err := cls.entry(e.Key, e.Value)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
		return cls.build(entries), nil
	}
	if value == nil {
		return &Map{cls: cls}, nil
	}
	if c, ok := value.(Codec); ok {
		value = c.ToJSON()
	}
	if m, ok := toMap(value); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]MapEntry, 0, len(m))
		for _, k := range keys {
			entry, err := cls.entry(k, m[k])
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
		return cls.build(entries), nil
	}
	list, err := toSlice(value)
	if err != nil {
		return nil, invalid(cls, value)
	}
	entries := make([]MapEntry, 0, len(list))
	for _, item := range list {
		pair, err := toSlice(item)
		if err != nil || len(pair) != 2 {
			return nil, fmt.Errorf("%s entry %v is not a pair: %w", cls.RawType(), item, ErrInvalidValue)
		}
		entry, err := cls.entry(pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return cls.build(entries), nil
}

type Map struct {
	cls     *MapClass
	entries []MapEntry
}

func (m *Map) Entries() []MapEntry { return m.entries }
func (m *Map) Len() int            { return len(m.entries) }

// Get looks up a key given as a Codec or any value the key class accepts.
func (m *Map) Get(key interface{}) (Codec, bool) {
	for _, e := range m.entries {
		if e.Key.Eq(key) {
			return e.Value, true
		}
	}
	return nil, false
}

func (m *Map) Class() Class { return m.cls }

func (m *Map) Encode() []byte {
	out := scale.EncodeCompactUint64(uint64(len(m.entries)))
	for _, e := range m.entries {
		out = append(out, e.Key.Encode()...)
		out = append(out, e.Value.Encode()...)
	}
	return out
}

func (m *Map) EncodedLength() int        { return len(m.Encode()) }
func (m *Map) IsEmpty() bool             { return len(m.entries) == 0 }
func (m *Map) Eq(other interface{}) bool { return equal(m, other) }

func (m *Map) ToHuman() interface{} {
	out := make(map[string]interface{}, len(m.entries))
	for _, e := range m.entries {
		out[fmt.Sprint(e.Key.ToHuman())] = e.Value.ToHuman()
	}
	return out
}

func (m *Map) ToJSON() interface{} {
	out := make(map[string]interface{}, len(m.entries))
	for _, e := range m.entries {
		out[e.Key.String()] = e.Value.ToJSON()
	}
	return out
}

// String renders the entries as JSON in map order.
func (m *Map) String() string {
	keys := make([]string, len(m.entries))
	values := make([]interface{}, len(m.entries))
	for i, e := range m.entries {
		keys[i], values[i] = e.Key.String(), e.Value.ToJSON()
	}
	return orderedJSON(keys, values)
}

func (m *Map) Hash() [32]byte { return hashOf(m) }
