// Package badgerdb is a db.DB on top of badger, used to persist metadata
// between runs.
package badgerdb

import (
	"context"
	"errors"
	"time"

	scaledb "github.com/Polkadex-Substrate/go-scale/db"
	"github.com/Polkadex-Substrate/go-scale/log"
	"github.com/dgraph-io/badger/v2"
	"github.com/dgraph-io/badger/v2/options"
)

// Metadata blobs are hundreds of KB and written once per runtime upgrade;
// everything else stored next to them is a few bytes.
const (
	badgerValueThreshold   = 256 // digests, version keys and small bundles stay in the LSM tree
	badgerValueLogFileSize = 16<<20 - 1
	badgerMaxTableSize     = 4 << 20
	badgerNumMemtables     = 2
	badgerDiscardRatio     = 0.5
	badgerGcInterval       = time.Hour
	badgerGcMaxRounds      = 8
)

var logger = &extendedLog{Logger: log.NewLogger("db")}

// NewDB creates new database or load existing database in the directory
func NewDB(dir string) (*DB, error) {
	opts := badger.DefaultOptions(dir)

	// blobs are read once per decoration, so keep neither tables nor the
	// value log mapped
	opts.ValueLogLoadingMode = options.FileIO
	opts.TableLoadingMode = options.FileIO
	opts.ValueThreshold = badgerValueThreshold
	opts.ValueLogFileSize = badgerValueLogFileSize
	opts.MaxTableSize = badgerMaxTableSize
	opts.NumMemtables = badgerNumMemtables
	opts.Logger = logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	database := &DB{
		db:         db,
		ctx:        ctx,
		cancelFunc: cancelFunc,
		name:       dir,
		gcCh:       make(chan struct{}, 1),
		gcDone:     make(chan struct{}),
	}
	go database.runBadgerGC()

	return database, nil
}

// Enforce database and transaction implements interfaces
var (
	_ scaledb.DB          = (*DB)(nil)
	_ scaledb.Transaction = (*Transaction)(nil)
	_ scaledb.Bulk        = (*Bulk)(nil)
)

type DB struct {
	db         *badger.DB
	ctx        context.Context
	cancelFunc context.CancelFunc
	name       string

	gcCh   chan struct{}
	gcDone chan struct{}
}

// requestGC schedules a value log GC. Space is only reclaimable after
// deletes, which is when the cache asks for it.
func (db *DB) requestGC() {
	select {
	case db.gcCh <- struct{}{}:
	default:
	}
}

func (db *DB) runBadgerGC() {
	defer close(db.gcDone)
	ticker := time.NewTicker(badgerGcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-db.gcCh:
		case <-ticker.C:
		case <-db.ctx.Done():
			return
		}
		db.collectGarbage()
	}
}

// collectGarbage rewrites value log files until badger finds nothing more
// to reclaim.
func (db *DB) collectGarbage() {
	startGcT := time.Now()
	_, vlogSize := db.db.Size()
	rounds := 0
	for ; rounds < badgerGcMaxRounds; rounds++ {
		err := db.db.RunValueLogGC(badgerDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			logger.Error().Str("name", db.name).Err(err).Msg("Fail to GC at badger")
			return
		}
	}
	_, afterVlogSize := db.db.Size()
	logger.Debug().Str("name", db.name).Int("rounds", rounds).Int64("vlogSize", vlogSize).
		Int64("afterVlogSize", afterVlogSize).Dur("takenTime", time.Since(startGcT)).Msg("Finish to GC at badger")
}

func (db *DB) Type() string {
	return "badgerdb"
}

func (db *DB) Set(namespace []byte, key []byte, value []byte) error {
	key = scaledb.ConvNilToBytes(scaledb.PrependNamespace(namespace, key))
	value = scaledb.ConvNilToBytes(value)

	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (db *DB) Delete(namespace []byte, key []byte) error {
	key = scaledb.ConvNilToBytes(scaledb.PrependNamespace(namespace, key))

	if err := db.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	}); err != nil {
		return err
	}
	db.requestGC()
	return nil
}

func (db *DB) Get(namespace []byte, key []byte) ([]byte, bool, error) {
	key = scaledb.ConvNilToBytes(scaledb.PrependNamespace(namespace, key))

	var val []byte
	err := db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Close stops the GC goroutine before closing badger.
func (db *DB) Close() error {
	db.cancelFunc()
	<-db.gcDone
	return db.db.Close()
}

func (db *DB) NewTx() scaledb.Transaction {
	return &Transaction{
		tx:    db.db.NewTransaction(true),
		stats: writeStats{db: db, createT: time.Now()},
	}
}

func (db *DB) NewBulk() scaledb.Bulk {
	return &Bulk{
		bulk:  db.db.NewWriteBatch(),
		stats: writeStats{db: db, createT: time.Now()},
	}
}
