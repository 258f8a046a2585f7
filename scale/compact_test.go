package scale

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactVectors(t *testing.T) {
	cases := []struct {
		value uint64
		hex   string
	}{
		{0, "00"},
		{1, "04"},
		{63, "fc"},
		{64, "0101"},
		{16383, "fdff"},
		{16384, "02000100"},
		{1073741823, "feffffff"},
		{1073741824, "0300000040"},
		{1 << 32, "070000000001"},
		{^uint64(0), "13ffffffffffffffff"},
	}
	for _, c := range cases {
		encoded := EncodeCompactUint64(c.value)
		assert.Equal(t, c.hex, common.Bytes2Hex(encoded), "encode %d", c.value)

		decoded, err := DecodeCompactUint64(NewReader(common.Hex2Bytes(c.hex)))
		require.NoError(t, err)
		assert.Equal(t, c.value, decoded)
	}
}

func TestCompactBig(t *testing.T) {
	v, ok := new(big.Int).SetString("340282366920938463463374607431768211455", 10) // u128 max
	require.True(t, ok)
	encoded, err := EncodeCompact(v)
	require.NoError(t, err)
	assert.Equal(t, "33ffffffffffffffffffffffffffffffff", common.Bytes2Hex(encoded))

	r := NewReader(encoded)
	decoded, err := DecodeCompact(r)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(decoded))
	assert.Equal(t, 0, r.Remaining())

	_, err = DecodeCompactUint64(NewReader(encoded))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestCompactErrors(t *testing.T) {
	_, err := EncodeCompact(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrNegativeCompact)

	_, err = EncodeCompact(new(big.Int).Lsh(big.NewInt(1), 540))
	assert.ErrorIs(t, err, ErrCompactTooLarge)

	_, err = DecodeCompact(NewReader([]byte{0x01}))
	assert.ErrorIs(t, err, ErrUnexpectedEOF)

	_, err = DecodeCompact(NewReader([]byte{0x07, 0x00}))
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestCompactNonCanonicalDecodes(t *testing.T) {
	// 1 written in two-byte mode
	v, err := DecodeCompactUint64(NewReader([]byte{0x05, 0x00}))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
}
