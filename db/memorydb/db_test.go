package memorydb

import (
	"testing"

	scaledb "github.com/Polkadex-Substrate/go-scale/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *DB {
	t.Helper()
	return NewDB()
}

func TestGetSet(t *testing.T) {
	db := openDB(t)
	assert.Equal(t, "memorydb", db.Type())

	require.NoError(t, db.Set(scaledb.NamespaceMetadata, []byte("k"), []byte("v")))
	value, exists, err := db.Get(scaledb.NamespaceMetadata, []byte("k"))
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []byte("v"), value)

	_, exists, err = db.Get(scaledb.NamespaceTypes, []byte("k"))
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, db.Delete(scaledb.NamespaceMetadata, []byte("k")))
	_, exists, err = db.Get(scaledb.NamespaceMetadata, []byte("k"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTransactionAndBulk(t *testing.T) {
	db := openDB(t)

	tx := db.NewTx()
	require.NoError(t, tx.Set(nil, []byte("a"), []byte("1")))
	require.NoError(t, tx.Set(nil, []byte("b"), []byte("2")))
	_, exists, err := db.Get(nil, []byte("a"))
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, tx.Commit())
	assert.ErrorIs(t, tx.Commit(), scaledb.ErrTxCommitted)

	discarded := db.NewTx()
	require.NoError(t, discarded.Set(nil, []byte("c"), []byte("3")))
	discarded.Discard()
	assert.ErrorIs(t, discarded.Commit(), scaledb.ErrTxDiscarded)
	_, exists, err = db.Get(nil, []byte("c"))
	require.NoError(t, err)
	assert.False(t, exists)

	bulk := db.NewBulk()
	require.NoError(t, bulk.Delete(nil, []byte("a")))
	require.NoError(t, bulk.Set(nil, []byte("d"), []byte("4")))
	require.NoError(t, bulk.Flush())

	_, exists, err = db.Get(nil, []byte("a"))
	require.NoError(t, err)
	assert.False(t, exists)
	value, exists, err := db.Get(nil, []byte("d"))
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []byte("4"), value)
}

func TestIterator(t *testing.T) {
	db := openDB(t)
	for _, k := range []string{"1", "2", "3"} {
		require.NoError(t, db.Set(scaledb.NamespaceMetadata, []byte(k), []byte("v"+k)))
	}
	require.NoError(t, db.Set(scaledb.NamespaceMetadataDigest, []byte("x"), []byte("other")))

	start, end := scaledb.NamespaceRange(scaledb.NamespaceMetadata)
	iter := db.Iterator(start, end)
	var keys, values []string
	for ; iter.Valid(); iter.Next() {
		key, err := iter.Key()
		require.NoError(t, err)
		value, err := iter.Value()
		require.NoError(t, err)
		keys = append(keys, string(scaledb.TrimNamespace(scaledb.NamespaceMetadata, key)))
		values = append(values, string(value))
	}
	iter.Close()
	assert.Equal(t, []string{"1", "2", "3"}, keys)
	assert.Equal(t, []string{"v1", "v2", "v3"}, values)

	from := db.Iterator(scaledb.PrependNamespace(scaledb.NamespaceMetadata, []byte("2")), end)
	defer from.Close()
	keys = nil
	for ; from.Valid(); from.Next() {
		key, err := from.Key()
		require.NoError(t, err)
		keys = append(keys, string(scaledb.TrimNamespace(scaledb.NamespaceMetadata, key)))
	}
	assert.Equal(t, []string{"2", "3"}, keys)
	assert.ErrorIs(t, from.Next(), scaledb.ErrInvalidIterator)
	_, err := from.Key()
	assert.ErrorIs(t, err, scaledb.ErrInvalidIterator)
}
