package scale

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUintRoundTrip(t *testing.T) {
	encoded, err := EncodeUint(big.NewInt(0x12345678), 32)
	require.NoError(t, err)
	assert.Equal(t, "78563412", common.Bytes2Hex(encoded))

	decoded, err := DecodeUint(NewReader(encoded), 32)
	require.NoError(t, err)
	assert.Equal(t, int64(0x12345678), decoded.Int64())

	_, err = EncodeUint(big.NewInt(256), 8)
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = EncodeUint(big.NewInt(-1), 8)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestIntTwosComplement(t *testing.T) {
	encoded, err := EncodeInt(big.NewInt(-1), 16)
	require.NoError(t, err)
	assert.Equal(t, "ffff", common.Bytes2Hex(encoded))

	encoded, err = EncodeInt(big.NewInt(-128), 8)
	require.NoError(t, err)
	assert.Equal(t, "80", common.Bytes2Hex(encoded))

	decoded, err := DecodeInt(NewReader(common.Hex2Bytes("feffffff")), 32)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), decoded.Int64())

	_, err = EncodeInt(big.NewInt(128), 8)
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = EncodeInt(big.NewInt(-129), 8)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestReader(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	b, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(1), b)

	peek, err := r.Peek()
	require.NoError(t, err)
	assert.Equal(t, byte(2), peek)

	rest, err := r.Read(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3}, rest)
	assert.Equal(t, 3, r.Offset())
	assert.Equal(t, 0, r.Remaining())

	_, err = r.ReadByte()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
	_, err = r.Read(1)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}
