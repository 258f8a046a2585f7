package scale

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

const (
	compactSingleMax = 1<<6 - 1
	compactTwoMax    = 1<<14 - 1
	compactFourMax   = 1<<30 - 1
	compactMaxBytes  = 67
)

// EncodeCompactUint64 encodes v in its canonical compact form.
func EncodeCompactUint64(v uint64) []byte {
	switch {
	case v <= compactSingleMax:
		return []byte{byte(v << 2)}
	case v <= compactTwoMax:
		out := make([]byte, 2)
		binary.LittleEndian.PutUint16(out, uint16(v<<2)|0b01)
		return out
	case v <= compactFourMax:
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, uint32(v<<2)|0b10)
		return out
	}
	n := 8
	for n > 4 && v>>(uint(n-1)*8) == 0 {
		n--
	}
	out := make([]byte, 1+n)
	out[0] = byte((n-4)<<2) | 0b11
	for i := 0; i < n; i++ {
		out[1+i] = byte(v >> (uint(i) * 8))
	}
	return out
}

// EncodeCompact encodes an arbitrary non-negative integer in compact form.
func EncodeCompact(v *big.Int) ([]byte, error) {
	if v.Sign() < 0 {
		return nil, ErrNegativeCompact
	}
	if v.IsUint64() {
		return EncodeCompactUint64(v.Uint64()), nil
	}
	be := v.Bytes()
	if len(be) > compactMaxBytes {
		return nil, ErrCompactTooLarge
	}
	out := make([]byte, 1+len(be))
	out[0] = byte((len(be)-4)<<2) | 0b11
	for i, b := range be {
		out[len(be)-i] = b
	}
	return out, nil
}

// DecodeCompact reads a compact integer of any size.
func DecodeCompact(r *Reader) (*big.Int, error) {
	first, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch first & 0b11 {
	case 0b00:
		return new(big.Int).SetUint64(uint64(first >> 2)), nil
	case 0b01:
		next, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		v := uint64(binary.LittleEndian.Uint16([]byte{first, next})) >> 2
		return new(big.Int).SetUint64(v), nil
	case 0b10:
		rest, err := r.Read(3)
		if err != nil {
			return nil, err
		}
		v := uint64(binary.LittleEndian.Uint32(append([]byte{first}, rest...))) >> 2
		return new(big.Int).SetUint64(v), nil
	}
	n := int(first>>2) + 4
	le, err := r.Read(n)
	if err != nil {
		return nil, err
	}
	return leToBig(le), nil
}

// DecodeCompactUint64 reads a compact integer that must fit in 64 bits.
func DecodeCompactUint64(r *Reader) (uint64, error) {
	v, err := DecodeCompact(r)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("compact %s does not fit u64: %w", v, ErrOverflow)
	}
	return v.Uint64(), nil
}

func leToBig(le []byte) *big.Int {
	be := make([]byte, len(le))
	for i, b := range le {
		be[len(le)-1-i] = b
	}
	return new(big.Int).SetBytes(be)
}
