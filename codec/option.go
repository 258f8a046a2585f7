package codec

import (
	"fmt"

	"github.com/Polkadex-Substrate/go-scale/scale"
)

// OptionClass wraps an optional value: 0x00 for None, 0x01 followed by the
// value for Some. Option<bool> packs into one byte: 0 None, 1 true, 2 false.
type OptionClass struct {
	Inner Class
}

func NewOptionClass(inner Class) *OptionClass {
	return &OptionClass{Inner: inner}
}

func (cls *OptionClass) RawType() string {
	return fmt.Sprintf("Option<%s>", cls.Inner.RawType())
}

func (cls *OptionClass) isBool() bool {
	_, ok := Resolve(cls.Inner).(*BoolClass)
	return ok
}

func (cls *OptionClass) Decode(r *scale.Reader) (Codec, error) {
	b, err := r.ReadByte()
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	if cls.isBool() {
		switch b {
		case 0:
			return &Option{cls: cls}, nil
		case 1, 2:
			inner, err := cls.Inner.New(b == 1)
			if err != nil {
				return nil, wrapDecode(cls, err)
			}
			return &Option{cls: cls, value: inner}, nil
		}
		return nil, wrapDecode(cls, invalid(cls, b))
	}
	switch b {
	case 0:
		return &Option{cls: cls}, nil
	case 1:
		inner, err := cls.Inner.Decode(r)
		if err != nil {
			return nil, wrapDecode(cls, err)
		}
		return &Option{cls: cls, value: inner}, nil
	}
	return nil, wrapDecode(cls, invalid(cls, b))
}

func (cls *OptionClass) New(value interface{}) (Codec, error) {
	if o, ok := value.(*Option); ok {
		if o.value == nil {
			return &Option{cls: cls}, nil
		}
		value = o.value
	}
	if value == nil {
		return &Option{cls: cls}, nil
	}
	inner, err := cls.Inner.New(value)
	if err != nil {
		return nil, err
	}
	return &Option{cls: cls, value: inner}, nil
}

type Option struct {
	cls   *OptionClass
	value Codec
}

// Some wraps inner without conversion.
func (cls *OptionClass) Some(inner Codec) *Option {
	return &Option{cls: cls, value: inner}
}

func (o *Option) IsNone() bool { return o.value == nil }
func (o *Option) IsSome() bool { return o.value != nil }

// Unwrap returns the contained value and whether it is present.
func (o *Option) Unwrap() (Codec, bool) { return o.value, o.value != nil }

func (o *Option) Class() Class { return o.cls }

func (o *Option) Encode() []byte {
	if o.value == nil {
		return []byte{0}
	}
	if o.cls.isBool() {
		if b, ok := o.value.(*Bool); ok && !b.v {
			return []byte{2}
		}
		return []byte{1}
	}
	return append([]byte{1}, o.value.Encode()...)
}

func (o *Option) EncodedLength() int { return len(o.Encode()) }

func (o *Option) IsEmpty() bool { return o.value == nil }

func (o *Option) Eq(other interface{}) bool {
	if other == nil {
		return o.value == nil
	}
	return equal(o, other)
}

func (o *Option) ToHuman() interface{} {
	if o.value == nil {
		return nil
	}
	return o.value.ToHuman()
}

func (o *Option) ToJSON() interface{} {
	if o.value == nil {
		return nil
	}
	return o.value.ToJSON()
}

func (o *Option) String() string {
	if o.value == nil {
		return ""
	}
	return o.value.String()
}

func (o *Option) Hash() [32]byte { return hashOf(o) }
