// Package memorydb is a map-backed db.DB for tests and short-lived caches.
package memorydb

import (
	"container/list"
	"sync"

	scaledb "github.com/Polkadex-Substrate/go-scale/db"
)

func NewDB() *DB {
	return &DB{
		db: make(map[string][]byte),
	}
}

// Enforce database and transaction implements interfaces
var (
	_ scaledb.DB          = (*DB)(nil)
	_ scaledb.Transaction = (*Transaction)(nil)
	_ scaledb.Bulk        = (*Bulk)(nil)
)

type DB struct {
	lock sync.Mutex
	db   map[string][]byte
}

func (db *DB) Type() string {
	return "memorydb"
}

func (db *DB) Set(namespace []byte, key []byte, value []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = scaledb.ConvNilToBytes(scaledb.PrependNamespace(namespace, key))
	value = scaledb.ConvNilToBytes(value)

	stored := make([]byte, len(value))
	copy(stored, value)
	db.db[string(key)] = stored
	return nil
}

func (db *DB) Delete(namespace []byte, key []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = scaledb.ConvNilToBytes(scaledb.PrependNamespace(namespace, key))

	delete(db.db, string(key))
	return nil
}

func (db *DB) Get(namespace []byte, key []byte) ([]byte, bool, error) {
	db.lock.Lock()
	defer db.lock.Unlock()

	key = scaledb.ConvNilToBytes(scaledb.PrependNamespace(namespace, key))

	value, exists := db.db[string(key)]
	return value, exists, nil
}

func (db *DB) Close() error {
	return nil
}

func (db *DB) NewTx() scaledb.Transaction {
	return &Transaction{batch: batch{db: db, opList: list.New()}}
}

func (db *DB) NewBulk() scaledb.Bulk {
	return &Bulk{batch: batch{db: db, opList: list.New()}}
}
