package codec

import (
	"fmt"
	"math/big"

	"github.com/Polkadex-Substrate/go-scale/scale"
)

// CompactClass is the compact encoding of a numeric class.
type CompactClass struct {
	Inner Class
}

func NewCompactClass(inner Class) *CompactClass {
	return &CompactClass{Inner: inner}
}

func (cls *CompactClass) RawType() string {
	return fmt.Sprintf("Compact<%s>", cls.Inner.RawType())
}

func (cls *CompactClass) Decode(r *scale.Reader) (Codec, error) {
	v, err := scale.DecodeCompact(r)
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	inner, err := cls.Inner.New(v)
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	return &Compact{cls: cls, inner: inner}, nil
}

func (cls *CompactClass) New(value interface{}) (Codec, error) {
	if c, ok := value.(*Compact); ok {
		value = c.inner
	}
	inner, err := cls.Inner.New(value)
	if err != nil {
		return nil, err
	}
	if _, ok := inner.(BigIntCodec); !ok {
		return nil, fmt.Errorf("%s wraps non-numeric %s: %w", cls.RawType(), inner.Class().RawType(), ErrInvalidValue)
	}
	return &Compact{cls: cls, inner: inner}, nil
}

type Compact struct {
	cls   *CompactClass
	inner Codec
}

// Unwrap returns the wrapped numeric value.
func (c *Compact) Unwrap() Codec { return c.inner }

func (c *Compact) BigInt() *big.Int {
	if n, ok := c.inner.(BigIntCodec); ok {
		return n.BigInt()
	}
	return new(big.Int)
}

func (c *Compact) Class() Class { return c.cls }

func (c *Compact) Encode() []byte {
	out, _ := scale.EncodeCompact(c.BigInt())
	return out
}

func (c *Compact) EncodedLength() int        { return len(c.Encode()) }
func (c *Compact) IsEmpty() bool             { return c.BigInt().Sign() == 0 }
func (c *Compact) Eq(other interface{}) bool { return equal(c, other) }
func (c *Compact) ToHuman() interface{}      { return c.inner.ToHuman() }
func (c *Compact) ToJSON() interface{}       { return c.inner.ToJSON() }
func (c *Compact) String() string            { return c.inner.String() }
func (c *Compact) Hash() [32]byte            { return hashOf(c) }
