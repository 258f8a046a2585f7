package badgerdb

import (
	"time"

	scaledb "github.com/Polkadex-Substrate/go-scale/db"
	"github.com/dgraph-io/badger/v2"
)

const slowWrite = 100 * time.Millisecond

// writeStats counts what a Transaction or Bulk wrote, for the slow write
// warning.
type writeStats struct {
	db        *DB
	createT   time.Time
	setCount  uint
	delCount  uint
	keySize   uint64
	valueSize uint64
}

func (s *writeStats) set(key, value []byte) {
	s.setCount++
	s.keySize += uint64(len(key))
	s.valueSize += uint64(len(value))
}

// done logs slow writes and schedules a GC when anything was deleted.
func (s *writeStats) done(kind string, writeStartT time.Time) {
	if took := time.Since(writeStartT); took > slowWrite {
		logger.Warn().Str("name", s.db.name).Str("kind", kind).
			Dur("prepareTime", writeStartT.Sub(s.createT)).Dur("takenTime", took).
			Uint("delCount", s.delCount).Uint("setCount", s.setCount).
			Uint64("setKeySize", s.keySize).Uint64("setValueSize", s.valueSize).
			Msg("write takes long time")
	}
	if s.delCount > 0 {
		s.db.requestGC()
	}
}

type Transaction struct {
	tx    *badger.Txn
	stats writeStats
}

func (transaction *Transaction) Set(namespace []byte, key []byte, value []byte) error {
	key = scaledb.ConvNilToBytes(scaledb.PrependNamespace(namespace, key))
	value = scaledb.ConvNilToBytes(value)

	if err := transaction.tx.Set(key, value); err != nil {
		return err
	}
	transaction.stats.set(key, value)
	return nil
}

func (transaction *Transaction) Delete(namespace []byte, key []byte) error {
	key = scaledb.ConvNilToBytes(scaledb.PrependNamespace(namespace, key))

	if err := transaction.tx.Delete(key); err != nil {
		return err
	}
	transaction.stats.delCount++
	return nil
}

func (transaction *Transaction) Commit() error {
	writeStartT := time.Now()
	if err := transaction.tx.Commit(); err != nil {
		return err
	}
	transaction.stats.done("commit", writeStartT)
	return nil
}

func (transaction *Transaction) Discard() {
	transaction.tx.Discard()
}
