package codec

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/Polkadex-Substrate/go-scale/scale"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

func decodeLengthPrefixed(r *scale.Reader) ([]byte, error) {
	n, err := scale.DecodeCompactUint64(r)
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Remaining()) {
		return nil, fmt.Errorf("length %d with %d bytes left: %w", n, r.Remaining(), scale.ErrUnexpectedEOF)
	}
	return r.Read(int(n))
}

func encodeLengthPrefixed(b []byte) []byte {
	return append(scale.EncodeCompactUint64(uint64(len(b))), b...)
}

func isPrintable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// TextClass is a length-prefixed UTF-8 string.
type TextClass struct{}

func (*TextClass) RawType() string { return "Text" }

func (cls *TextClass) Decode(r *scale.Reader) (Codec, error) {
	b, err := decodeLengthPrefixed(r)
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	return &Text{cls: cls, v: string(b)}, nil
}

func (cls *TextClass) New(value interface{}) (Codec, error) {
	switch v := value.(type) {
	case nil:
		return &Text{cls: cls}, nil
	case string:
		return &Text{cls: cls, v: v}, nil
	case []byte:
		return &Text{cls: cls, v: string(v)}, nil
	case *Text:
		return &Text{cls: cls, v: v.v}, nil
	case BytesCodec:
		return &Text{cls: cls, v: string(v.Bytes())}, nil
	case fmt.Stringer:
		return &Text{cls: cls, v: v.String()}, nil
	}
	return nil, invalid(cls, value)
}

type Text struct {
	cls *TextClass
	v   string
}

func (t *Text) Value() string { return t.v }
func (t *Text) Class() Class  { return t.cls }

func (t *Text) Encode() []byte { return encodeLengthPrefixed([]byte(t.v)) }

func (t *Text) EncodedLength() int {
	return len(scale.EncodeCompactUint64(uint64(len(t.v)))) + len(t.v)
}

func (t *Text) IsEmpty() bool             { return t.v == "" }
func (t *Text) Eq(other interface{}) bool { return equal(t, other) }
func (t *Text) ToHuman() interface{}      { return t.v }
func (t *Text) ToJSON() interface{}       { return t.v }
func (t *Text) String() string            { return t.v }
func (t *Text) Hash() [32]byte            { return hashOf(t) }

// BytesClass is a length-prefixed byte string.
type BytesClass struct{}

func (*BytesClass) RawType() string { return "Bytes" }

func (cls *BytesClass) Decode(r *scale.Reader) (Codec, error) {
	b, err := decodeLengthPrefixed(r)
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	return &Bytes{cls: cls, v: b}, nil
}

func (cls *BytesClass) New(value interface{}) (Codec, error) {
	b, err := toBytes(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cls.RawType(), err)
	}
	return &Bytes{cls: cls, v: b}, nil
}

type Bytes struct {
	cls *BytesClass
	v   []byte
}

func (b *Bytes) Bytes() []byte {
	out := make([]byte, len(b.v))
	copy(out, b.v)
	return out
}

func (b *Bytes) Class() Class   { return b.cls }
func (b *Bytes) Encode() []byte { return encodeLengthPrefixed(b.v) }

func (b *Bytes) EncodedLength() int {
	return len(scale.EncodeCompactUint64(uint64(len(b.v)))) + len(b.v)
}

func (b *Bytes) IsEmpty() bool             { return len(b.v) == 0 }
func (b *Bytes) Eq(other interface{}) bool { return equal(b, other) }

func (b *Bytes) ToHuman() interface{} {
	if len(b.v) > 0 && isPrintable(b.v) {
		return string(b.v)
	}
	return hexutil.Encode(b.v)
}

func (b *Bytes) ToJSON() interface{} { return hexutil.Encode(b.v) }
func (b *Bytes) String() string      { return hexutil.Encode(b.v) }
func (b *Bytes) Hash() [32]byte      { return hashOf(b) }

// U8aFixedClass is a fixed-length byte array such as [u8; 32].
type U8aFixedClass struct {
	Length int
}

func NewU8aFixedClass(length int) *U8aFixedClass {
	return &U8aFixedClass{Length: length}
}

func (cls *U8aFixedClass) RawType() string { return fmt.Sprintf("[u8;%d]", cls.Length) }

func (cls *U8aFixedClass) Decode(r *scale.Reader) (Codec, error) {
	b, err := r.Read(cls.Length)
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	return &U8aFixed{cls: cls, v: b}, nil
}

func (cls *U8aFixedClass) New(value interface{}) (Codec, error) {
	if value == nil {
		return &U8aFixed{cls: cls, v: make([]byte, cls.Length)}, nil
	}
	b, err := toBytes(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cls.RawType(), err)
	}
	if len(b) == 0 {
		b = make([]byte, cls.Length)
	}
	if len(b) != cls.Length {
		return nil, fmt.Errorf("%s from %d bytes: %w", cls.RawType(), len(b), ErrInvalidValue)
	}
	return &U8aFixed{cls: cls, v: b}, nil
}

type U8aFixed struct {
	cls *U8aFixedClass
	v   []byte
}

func (u *U8aFixed) Bytes() []byte {
	out := make([]byte, len(u.v))
	copy(out, u.v)
	return out
}

func (u *U8aFixed) Class() Class { return u.cls }

func (u *U8aFixed) Encode() []byte { return u.Bytes() }

func (u *U8aFixed) EncodedLength() int { return len(u.v) }

func (u *U8aFixed) IsEmpty() bool {
	for _, b := range u.v {
		if b != 0 {
			return false
		}
	}
	return true
}

func (u *U8aFixed) Eq(other interface{}) bool { return equal(u, other) }
func (u *U8aFixed) ToHuman() interface{}      { return hexutil.Encode(u.v) }
func (u *U8aFixed) ToJSON() interface{}       { return hexutil.Encode(u.v) }
func (u *U8aFixed) String() string            { return hexutil.Encode(u.v) }
func (u *U8aFixed) Hash() [32]byte            { return hashOf(u) }
