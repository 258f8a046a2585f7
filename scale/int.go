package scale

import (
	"fmt"
	"math/big"
)

// EncodeUint writes v as an unsigned little-endian integer of bitLength bits.
func EncodeUint(v *big.Int, bitLength int) ([]byte, error) {
	if v.Sign() < 0 || v.BitLen() > bitLength {
		return nil, fmt.Errorf("u%d %s: %w", bitLength, v, ErrOverflow)
	}
	n := bitLength / 8
	out := make([]byte, n)
	be := v.Bytes()
	for i, b := range be {
		out[len(be)-1-i] = b
	}
	return out, nil
}

// DecodeUint reads an unsigned little-endian integer of bitLength bits.
func DecodeUint(r *Reader, bitLength int) (*big.Int, error) {
	le, err := r.Read(bitLength / 8)
	if err != nil {
		return nil, err
	}
	return leToBig(le), nil
}

// EncodeInt writes v as a two's complement little-endian integer.
func EncodeInt(v *big.Int, bitLength int) ([]byte, error) {
	if !IntFits(v, bitLength) {
		return nil, fmt.Errorf("i%d %s: %w", bitLength, v, ErrOverflow)
	}
	u := new(big.Int).Set(v)
	if v.Sign() < 0 {
		u.Add(u, new(big.Int).Lsh(big.NewInt(1), uint(bitLength)))
	}
	return EncodeUint(u, bitLength)
}

// DecodeInt reads a two's complement little-endian integer.
func DecodeInt(r *Reader, bitLength int) (*big.Int, error) {
	u, err := DecodeUint(r, bitLength)
	if err != nil {
		return nil, err
	}
	if u.Bit(bitLength-1) == 1 {
		u.Sub(u, new(big.Int).Lsh(big.NewInt(1), uint(bitLength)))
	}
	return u, nil
}

// UintFits reports whether v is representable in bitLength unsigned bits.
func UintFits(v *big.Int, bitLength int) bool {
	return v.Sign() >= 0 && v.BitLen() <= bitLength
}

// IntFits reports whether v is representable in bitLength signed bits.
func IntFits(v *big.Int, bitLength int) bool {
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bitLength-1))
	if v.Sign() >= 0 {
		return v.Cmp(limit) < 0
	}
	return new(big.Int).Neg(v).Cmp(limit) <= 0
}
