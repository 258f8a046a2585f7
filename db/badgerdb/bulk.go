package badgerdb

import (
	"time"

	scaledb "github.com/Polkadex-Substrate/go-scale/db"
	"github.com/dgraph-io/badger/v2"
)

// Bulk writes through a badger WriteBatch, which splits the writes into as
// many transactions as needed.
type Bulk struct {
	bulk  *badger.WriteBatch
	stats writeStats
}

func (bulk *Bulk) Set(namespace []byte, key []byte, value []byte) error {
	key = scaledb.ConvNilToBytes(scaledb.PrependNamespace(namespace, key))
	value = scaledb.ConvNilToBytes(value)

	if err := bulk.bulk.Set(key, value); err != nil {
		return err
	}
	bulk.stats.set(key, value)
	return nil
}

func (bulk *Bulk) Delete(namespace []byte, key []byte) error {
	key = scaledb.ConvNilToBytes(scaledb.PrependNamespace(namespace, key))

	if err := bulk.bulk.Delete(key); err != nil {
		return err
	}
	bulk.stats.delCount++
	return nil
}

func (bulk *Bulk) Flush() error {
	writeStartT := time.Now()
	if err := bulk.bulk.Flush(); err != nil {
		return err
	}
	bulk.stats.done("flush", writeStartT)
	return nil
}

func (bulk *Bulk) DiscardLast() {
	bulk.bulk.Cancel()
}
