package codec

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/Polkadex-Substrate/go-scale/scale"
)

// SetValue is a named flag of a Set.
type SetValue struct {
	Name string
	Bit  uint64
}

// SetClass is a bitflag set stored as an unsigned integer of BitLength bits.
type SetClass struct {
	BitLength int
	Values    []SetValue
}

func NewSetClass(bitLength int, values []SetValue) *SetClass {
	return &SetClass{BitLength: bitLength, Values: values}
}

func (cls *SetClass) RawType() string {
	keys := make([]string, len(cls.Values))
	values := make([]interface{}, len(cls.Values))
	for i, v := range cls.Values {
		keys[i], values[i] = v.Name, v.Bit
	}
	inner := orderedJSON(keys, values)
	return fmt.Sprintf(`{"_bitLength":%d,"_set":%s}`, cls.BitLength, inner)
}

func (cls *SetClass) allBits() uint64 {
	var all uint64
	for _, v := range cls.Values {
		all |= v.Bit
	}
	return all
}

func (cls *SetClass) fromMask(mask uint64) (Codec, error) {
	if mask&^cls.allBits() != 0 {
		return nil, fmt.Errorf("mask %#x has unknown bits: %w", mask, ErrInvalidValue)
	}
	return &Set{cls: cls, mask: mask}, nil
}

func (cls *SetClass) bit(name string) (uint64, error) {
	for _, v := range cls.Values {
		if v.Name == name || strings.EqualFold(v.Name, name) {
			return v.Bit, nil
		}
	}
	return 0, fmt.Errorf("set member %s: %w", name, ErrInvalidValue)
}

func (cls *SetClass) Decode(r *scale.Reader) (Codec, error) {
	n, err := scale.DecodeUint(r, cls.BitLength)
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	out, err := cls.fromMask(n.Uint64())
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	return out, nil
}

func (cls *SetClass) New(value interface{}) (Codec, error) {
	same, value, err := sameType(cls, value)
	if same != nil || err != nil {
		return same, err
	}
	switch v := value.(type) {
	case nil:
		return &Set{cls: cls}, nil
	case string:
		if n, err := parseBigInt(v); err == nil && n.IsUint64() {
			return cls.fromMask(n.Uint64())
		}
		b, err := cls.bit(v)
		if err != nil {
			return nil, err
		}
		return &Set{cls: cls, mask: b}, nil
	}
	if list, err := toSlice(value); err == nil {
		var mask uint64
		for _, item := range list {
			name, ok := item.(string)
			if !ok {
				return nil, invalid(cls, item)
			}
			b, err := cls.bit(name)
			if err != nil {
				return nil, err
			}
			mask |= b
		}
		return &Set{cls: cls, mask: mask}, nil
	}
	n, err := toBigInt(value)
	if err != nil || !n.IsUint64() {
		return nil, invalid(cls, value)
	}
	return cls.fromMask(n.Uint64())
}

type Set struct {
	cls  *SetClass
	mask uint64
}

// Mask returns the raw bit pattern.
func (s *Set) Mask() uint64 { return s.mask }

// Strings lists the names of the set members in declaration order.
func (s *Set) Strings() []string {
	out := []string{}
	for _, v := range s.cls.Values {
		if v.Bit != 0 && s.mask&v.Bit == v.Bit {
			out = append(out, v.Name)
		}
	}
	return out
}

// Has reports whether every bit of the named member is set.
func (s *Set) Has(name string) bool {
	b, err := s.cls.bit(name)
	return err == nil && b != 0 && s.mask&b == b
}

func (s *Set) Class() Class { return s.cls }

func (s *Set) Encode() []byte {
	out, _ := scale.EncodeUint(new(big.Int).SetUint64(s.mask), s.cls.BitLength)
	return out
}

func (s *Set) EncodedLength() int        { return s.cls.BitLength / 8 }
func (s *Set) IsEmpty() bool             { return s.mask == 0 }
func (s *Set) Eq(other interface{}) bool { return equal(s, other) }
func (s *Set) ToHuman() interface{}      { return s.Strings() }
func (s *Set) ToJSON() interface{}       { return s.Strings() }
func (s *Set) String() string            { return jsonString(s.Strings()) }
func (s *Set) Hash() [32]byte            { return hashOf(s) }
