package codec

import (
	"strconv"

	"github.com/Polkadex-Substrate/go-scale/scale"
)

// NullClass is the zero-sized type.
type NullClass struct{}

func (*NullClass) RawType() string { return "Null" }

func (cls *NullClass) Decode(*scale.Reader) (Codec, error) {
	return &Null{cls: cls}, nil
}

func (cls *NullClass) New(interface{}) (Codec, error) {
	return &Null{cls: cls}, nil
}

type Null struct {
	cls *NullClass
}

func (n *Null) Class() Class              { return n.cls }
func (*Null) Encode() []byte              { return []byte{} }
func (*Null) EncodedLength() int          { return 0 }
func (*Null) IsEmpty() bool               { return true }
func (n *Null) Eq(other interface{}) bool { return other == nil || equal(n, other) }
func (*Null) ToHuman() interface{}        { return nil }
func (*Null) ToJSON() interface{}         { return nil }
func (*Null) String() string              { return "" }
func (n *Null) Hash() [32]byte            { return hashOf(n) }

// BoolClass is the single-byte boolean.
type BoolClass struct{}

func (*BoolClass) RawType() string { return "bool" }

func (cls *BoolClass) Decode(r *scale.Reader) (Codec, error) {
	b, err := r.ReadByte()
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	switch b {
	case 0:
		return &Bool{cls: cls}, nil
	case 1:
		return &Bool{cls: cls, v: true}, nil
	}
	return nil, wrapDecode(cls, invalid(cls, b))
}

func (cls *BoolClass) New(value interface{}) (Codec, error) {
	switch v := value.(type) {
	case nil:
		return &Bool{cls: cls}, nil
	case bool:
		return &Bool{cls: cls, v: v}, nil
	case *Bool:
		return &Bool{cls: cls, v: v.v}, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, invalid(cls, value)
		}
		return &Bool{cls: cls, v: b}, nil
	}
	n, err := toBigInt(value)
	if err != nil || !n.IsUint64() || n.Uint64() > 1 {
		return nil, invalid(cls, value)
	}
	return &Bool{cls: cls, v: n.Uint64() == 1}, nil
}

type Bool struct {
	cls *BoolClass
	v   bool
}

func (b *Bool) Value() bool { return b.v }

func (b *Bool) Class() Class { return b.cls }

func (b *Bool) Encode() []byte {
	if b.v {
		return []byte{1}
	}
	return []byte{0}
}

func (*Bool) EncodedLength() int          { return 1 }
func (b *Bool) IsEmpty() bool             { return !b.v }
func (b *Bool) Eq(other interface{}) bool { return equal(b, other) }
func (b *Bool) ToHuman() interface{}      { return b.v }
func (b *Bool) ToJSON() interface{}       { return b.v }
func (b *Bool) String() string            { return strconv.FormatBool(b.v) }
func (b *Bool) Hash() [32]byte            { return hashOf(b) }
