package memorydb

import (
	"bytes"
	"sort"

	scaledb "github.com/Polkadex-Substrate/go-scale/db"
)

// Iterator walks a snapshot of the keys in range taken when it was created.
type Iterator struct {
	keys   []string
	cursor int
	db     *DB
}

func isKeyInRange(key []byte, start []byte, end []byte) bool {
	if bytes.Compare(key, start) < 0 {
		return false
	}
	return end == nil || bytes.Compare(key, end) < 0
}

func (db *DB) Iterator(start []byte, end []byte) scaledb.Iterator {
	db.lock.Lock()
	defer db.lock.Unlock()

	var keys []string
	for key := range db.db {
		if isKeyInRange([]byte(key), start, end) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	return &Iterator{keys: keys, db: db}
}

func (iter *Iterator) Next() error {
	if !iter.Valid() {
		return scaledb.ErrInvalidIterator
	}

	iter.cursor++
	return nil
}

func (iter *Iterator) Valid() bool {
	return iter.cursor < len(iter.keys)
}

func (iter *Iterator) Key() ([]byte, error) {
	if !iter.Valid() {
		return nil, scaledb.ErrInvalidIterator
	}

	return []byte(iter.keys[iter.cursor]), nil
}

// Value reads the current value from the live map, so it is nil if the key
// was deleted after the iterator was created.
func (iter *Iterator) Value() ([]byte, error) {
	if !iter.Valid() {
		return nil, scaledb.ErrInvalidIterator
	}

	value, _, err := iter.db.Get(nil, []byte(iter.keys[iter.cursor]))
	return value, err
}

func (iter *Iterator) Close() {
	iter.cursor = len(iter.keys)
}
