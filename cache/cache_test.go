package cache

import (
	"sync"
	"testing"

	"github.com/Polkadex-Substrate/go-scale/db/memorydb"
	"github.com/Polkadex-Substrate/go-scale/metadata"
	"github.com/Polkadex-Substrate/go-scale/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedMetadata(t *testing.T, extrinsicVersion int) []byte {
	t.Helper()
	md, err := metadata.New(registry.New(), 13, map[string]interface{}{
		"modules": []interface{}{
			map[string]interface{}{
				"name": "System",
				"calls": []interface{}{
					map[string]interface{}{"name": "remark", "args": []interface{}{
						map[string]interface{}{"name": "remark", "type": "Bytes"},
					}},
				},
				"constants": []interface{}{
					map[string]interface{}{"name": "Nonce", "type": "Nonce", "value": "0x2a000000"},
				},
				"index": 0,
			},
		},
		"extrinsic": map[string]interface{}{"version": extrinsicVersion},
	})
	require.NoError(t, err)
	return md.Encode()
}

func TestPutGet(t *testing.T) {
	c := New(memorydb.NewDB())
	raw := encodedMetadata(t, 4)

	digest, err := c.Put(9110, raw)
	require.NoError(t, err)
	assert.Equal(t, Digest(raw), digest)

	again, err := c.Put(9110, raw)
	require.NoError(t, err)
	assert.Equal(t, digest, again)

	_, err = c.Put(9110, encodedMetadata(t, 3))
	assert.ErrorIs(t, err, ErrConflict)

	got, err := c.Get(9110)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	version, err := c.VersionOf(digest)
	require.NoError(t, err)
	assert.Equal(t, uint32(9110), version)

	_, err = c.Get(1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Put(1, common.Hex2Bytes("00000000"))
	assert.ErrorIs(t, err, metadata.ErrInvalidMagic)
}

func TestVersionsAndPrune(t *testing.T) {
	c := New(memorydb.NewDB())
	for i, v := range []uint32{30, 256, 1} {
		_, err := c.Put(v, encodedMetadata(t, i))
		require.NoError(t, err)
	}
	versions, err := c.Versions()
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 30, 256}, versions)

	require.NoError(t, c.Delete(30))
	assert.ErrorIs(t, c.Delete(30), ErrNotFound)

	removed, err := c.Prune(1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, removed)
	versions, err = c.Versions()
	require.NoError(t, err)
	assert.Equal(t, []uint32{256}, versions)

	removed, err = c.Prune(5)
	require.NoError(t, err)
	assert.Empty(t, removed)

	for _, keep := range []int{-1, -5} {
		_, err = c.Prune(keep)
		assert.ErrorIs(t, err, ErrNegativeKeep)
	}
	versions, err = c.Versions()
	require.NoError(t, err)
	assert.Equal(t, []uint32{256}, versions)
}

func TestConcurrentPutConflict(t *testing.T) {
	c := New(memorydb.NewDB())
	blobs := make([][]byte, 8)
	for i := range blobs {
		blobs[i] = encodedMetadata(t, i)
	}

	errs := make([]error, len(blobs))
	var wg sync.WaitGroup
	for i := range blobs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Put(12, blobs[i])
		}(i)
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		if err == nil {
			require.Equal(t, -1, winner, "more than one put succeeded")
			winner = i
			continue
		}
		assert.ErrorIs(t, err, ErrConflict)
	}
	require.NotEqual(t, -1, winner)

	got, err := c.Get(12)
	require.NoError(t, err)
	assert.Equal(t, blobs[winner], got)
	for i, raw := range blobs {
		_, err := c.VersionOf(Digest(raw))
		if i == winner {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, ErrNotFound)
		}
	}
}

func TestDecoratedWithTypes(t *testing.T) {
	c := New(memorydb.NewDB())
	_, err := c.Put(7, encodedMetadata(t, 4))
	require.NoError(t, err)

	assert.Error(t, c.PutTypes("bad", []byte("types: [a")))
	require.NoError(t, c.PutTypes("custom", []byte("types:\n  Nonce: u32\n")))

	d, err := c.Decorated(7)
	require.NoError(t, err)
	same, err := c.Decorated(7)
	require.NoError(t, err)
	assert.Same(t, d, same)

	nonce, err := d.Consts["system"]["nonce"].Value()
	require.NoError(t, err)
	assert.True(t, nonce.Eq(42))

	data, err := d.Tx["system"]["remark"].Encode("0x01")
	require.NoError(t, err)
	assert.Equal(t, "00000401", common.Bytes2Hex(data))

	require.NoError(t, c.Delete(7))
	_, err = c.Decorated(7)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.DeleteTypes("custom"))
	assert.ErrorIs(t, c.DeleteTypes("custom"), ErrNotFound)
	reg, err := c.Registry()
	require.NoError(t, err)
	assert.False(t, reg.HasType("Nonce"))
}

func TestOpenDB(t *testing.T) {
	db, err := OpenDB("memorydb", "")
	require.NoError(t, err)
	assert.Equal(t, "memorydb", db.Type())

	db, err = OpenDB("badgerdb", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "badgerdb", db.Type())
	require.NoError(t, db.Close())

	_, err = OpenDB("leveldb", "")
	assert.ErrorIs(t, err, ErrUnknownDBType)
}
