package codec

import (
	"fmt"
	"math/big"

	"github.com/Polkadex-Substrate/go-scale/scale"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// maxSafeInteger is the largest integer ToJSON emits as a number; larger
// values are emitted as big-endian hex.
var maxSafeInteger = big.NewInt(1<<53 - 1)

// UIntClass is an unsigned integer of BitLength bits.
type UIntClass struct {
	BitLength int
}

func NewUIntClass(bitLength int) *UIntClass {
	return &UIntClass{BitLength: bitLength}
}

func (cls *UIntClass) RawType() string { return fmt.Sprintf("u%d", cls.BitLength) }

func (cls *UIntClass) Decode(r *scale.Reader) (Codec, error) {
	v, err := scale.DecodeUint(r, cls.BitLength)
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	return &UInt{cls: cls, v: v}, nil
}

func (cls *UIntClass) New(value interface{}) (Codec, error) {
	v, err := toBigInt(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cls.RawType(), err)
	}
	if !scale.UintFits(v, cls.BitLength) {
		return nil, fmt.Errorf("%s from %s: %w", cls.RawType(), v, scale.ErrOverflow)
	}
	return &UInt{cls: cls, v: v}, nil
}

type UInt struct {
	cls *UIntClass
	v   *big.Int
}

func (u *UInt) BigInt() *big.Int { return new(big.Int).Set(u.v) }
func (u *UInt) Uint64() uint64   { return u.v.Uint64() }
func (u *UInt) BitLength() int   { return u.cls.BitLength }
func (u *UInt) Class() Class     { return u.cls }

func (u *UInt) Encode() []byte {
	out, _ := scale.EncodeUint(u.v, u.cls.BitLength)
	return out
}

func (u *UInt) EncodedLength() int        { return u.cls.BitLength / 8 }
func (u *UInt) IsEmpty() bool             { return u.v.Sign() == 0 }
func (u *UInt) Eq(other interface{}) bool { return equal(u, other) }
func (u *UInt) ToHuman() interface{}      { return formatNumber(u.v) }
func (u *UInt) ToJSON() interface{}       { return intJSON(u.v, u.cls.BitLength) }
func (u *UInt) String() string            { return u.v.String() }
func (u *UInt) Hash() [32]byte            { return hashOf(u) }

// IntClass is a two's complement signed integer of BitLength bits.
type IntClass struct {
	BitLength int
}

func NewIntClass(bitLength int) *IntClass {
	return &IntClass{BitLength: bitLength}
}

func (cls *IntClass) RawType() string { return fmt.Sprintf("i%d", cls.BitLength) }

func (cls *IntClass) Decode(r *scale.Reader) (Codec, error) {
	v, err := scale.DecodeInt(r, cls.BitLength)
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	return &Int{cls: cls, v: v}, nil
}

func (cls *IntClass) New(value interface{}) (Codec, error) {
	v, err := toBigInt(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cls.RawType(), err)
	}
	if !scale.IntFits(v, cls.BitLength) {
		return nil, fmt.Errorf("%s from %s: %w", cls.RawType(), v, scale.ErrOverflow)
	}
	return &Int{cls: cls, v: v}, nil
}

type Int struct {
	cls *IntClass
	v   *big.Int
}

func (i *Int) BigInt() *big.Int { return new(big.Int).Set(i.v) }
func (i *Int) Int64() int64     { return i.v.Int64() }
func (i *Int) Class() Class     { return i.cls }

func (i *Int) Encode() []byte {
	out, _ := scale.EncodeInt(i.v, i.cls.BitLength)
	return out
}

func (i *Int) EncodedLength() int        { return i.cls.BitLength / 8 }
func (i *Int) IsEmpty() bool             { return i.v.Sign() == 0 }
func (i *Int) Eq(other interface{}) bool { return equal(i, other) }
func (i *Int) ToHuman() interface{}      { return formatNumber(i.v) }
func (i *Int) ToJSON() interface{}       { return intJSON(i.v, i.cls.BitLength) }
func (i *Int) String() string            { return i.v.String() }
func (i *Int) Hash() [32]byte            { return hashOf(i) }

func intJSON(v *big.Int, bitLength int) interface{} {
	if new(big.Int).Abs(v).Cmp(maxSafeInteger) <= 0 {
		if v.Sign() < 0 {
			return v.Int64()
		}
		return v.Uint64()
	}
	if v.Sign() < 0 {
		return v.String()
	}
	be := make([]byte, bitLength/8)
	v.FillBytes(be)
	return hexutil.Encode(be)
}
