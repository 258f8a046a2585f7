package memorydb

import (
	"container/list"
	"sync"

	"github.com/Polkadex-Substrate/go-scale/db"
)

type txOp struct {
	isSet bool
	key   []byte
	value []byte
}

// batch buffers writes until they are applied to the map in one step. It
// backs both Transaction and Bulk.
type batch struct {
	txLock    sync.Mutex
	db        *DB
	opList    *list.List
	isDiscard bool
	isCommit  bool
}

func (b *batch) Set(namespace []byte, key []byte, value []byte) error {
	b.txLock.Lock()
	defer b.txLock.Unlock()

	key = db.ConvNilToBytes(db.PrependNamespace(namespace, key))
	value = db.ConvNilToBytes(value)

	b.opList.PushBack(&txOp{true, key, value})
	return nil
}

func (b *batch) Delete(namespace []byte, key []byte) error {
	b.txLock.Lock()
	defer b.txLock.Unlock()

	key = db.ConvNilToBytes(db.PrependNamespace(namespace, key))

	b.opList.PushBack(&txOp{false, key, nil})
	return nil
}

func (b *batch) apply() error {
	b.txLock.Lock()
	defer b.txLock.Unlock()

	if b.isDiscard {
		return db.ErrTxDiscarded
	} else if b.isCommit {
		return db.ErrTxCommitted
	}

	b.db.lock.Lock()
	defer b.db.lock.Unlock()

	for e := b.opList.Front(); e != nil; e = e.Next() {
		op := e.Value.(*txOp)
		if op.isSet {
			b.db.db[string(op.key)] = op.value
		} else {
			delete(b.db.db, string(op.key))
		}
	}

	b.isCommit = true
	return nil
}

func (b *batch) discard() {
	b.txLock.Lock()
	defer b.txLock.Unlock()

	b.isDiscard = true
}

type Transaction struct {
	batch
}

func (transaction *Transaction) Commit() error { return transaction.apply() }
func (transaction *Transaction) Discard()      { transaction.discard() }

type Bulk struct {
	batch
}

func (bulk *Bulk) Flush() error { return bulk.apply() }
func (bulk *Bulk) DiscardLast() { bulk.discard() }
