package badgerdb

import (
	"bytes"

	scaledb "github.com/Polkadex-Substrate/go-scale/db"
	"github.com/dgraph-io/badger/v2"
)

// Iterator walks keys inside a read-only badger transaction, which must be
// released with Close.
type Iterator struct {
	end  []byte
	tx   *badger.Txn
	iter *badger.Iterator
}

func (db *DB) Iterator(start, end []byte) scaledb.Iterator {
	badgerTx := db.db.NewTransaction(false)

	// values are fetched one at a time; a type bundle scan is small and a
	// version scan reads keys only
	opt := badger.DefaultIteratorOptions
	opt.PrefetchValues = false
	badgerIter := badgerTx.NewIterator(opt)
	badgerIter.Seek(start)

	return &Iterator{end: end, tx: badgerTx, iter: badgerIter}
}

func (iter *Iterator) Next() error {
	if !iter.Valid() {
		return scaledb.ErrInvalidIterator
	}
	iter.iter.Next()
	return nil
}

func (iter *Iterator) Valid() bool {
	if !iter.iter.Valid() {
		return false
	}
	return iter.end == nil || bytes.Compare(iter.iter.Item().Key(), iter.end) < 0
}

func (iter *Iterator) Key() ([]byte, error) {
	if !iter.Valid() {
		return nil, scaledb.ErrInvalidIterator
	}
	return iter.iter.Item().KeyCopy(nil), nil
}

func (iter *Iterator) Value() ([]byte, error) {
	if !iter.Valid() {
		return nil, scaledb.ErrInvalidIterator
	}
	return iter.iter.Item().ValueCopy(nil)
}

func (iter *Iterator) Close() {
	iter.iter.Close()
	iter.tx.Discard()
}
