package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Polkadex-Substrate/go-scale/scale"
)

// Variant is one arm of an enum. Index is the discriminant byte.
type Variant struct {
	Name  string
	Index uint8
	Class Class
}

// EnumClass is a tagged union with a single-byte discriminant.
type EnumClass struct {
	Variants []Variant
	rawType  string
}

// NewEnumClass builds an enum. Variants keep their Index as given.
func NewEnumClass(variants []Variant) *EnumClass {
	return &EnumClass{Variants: variants}
}

// NewBasicEnumClass builds an enum of Null variants indexed by position.
func NewBasicEnumClass(names ...string) *EnumClass {
	variants := make([]Variant, len(names))
	for i, name := range names {
		variants[i] = Variant{Name: name, Index: uint8(i), Class: &NullClass{}}
	}
	return NewEnumClass(variants)
}

// NewResultClass is Result<ok, err>: Ok at index 0 and Err at index 1.
func NewResultClass(ok, err Class) *EnumClass {
	return &EnumClass{
		Variants: []Variant{{Name: "Ok", Index: 0, Class: ok}, {Name: "Err", Index: 1, Class: err}},
		rawType:  fmt.Sprintf("Result<%s,%s>", ok.RawType(), err.RawType()),
	}
}

// IsBasic reports whether every variant carries no data.
func (cls *EnumClass) IsBasic() bool {
	for _, v := range cls.Variants {
		if _, ok := v.Class.(*NullClass); !ok {
			return false
		}
	}
	return true
}

func (cls *EnumClass) isSequential() bool {
	for i, v := range cls.Variants {
		if int(v.Index) != i {
			return false
		}
	}
	return true
}

func (cls *EnumClass) RawType() string {
	if cls.rawType != "" {
		return cls.rawType
	}
	var inner string
	switch {
	case cls.IsBasic() && cls.isSequential():
		names := make([]string, len(cls.Variants))
		for i, v := range cls.Variants {
			names[i] = v.Name
		}
		inner = jsonString(names)
	case cls.IsBasic():
		keys := make([]string, len(cls.Variants))
		values := make([]interface{}, len(cls.Variants))
		for i, v := range cls.Variants {
			keys[i], values[i] = v.Name, v.Index
		}
		inner = orderedJSON(keys, values)
	default:
		keys := make([]string, len(cls.Variants))
		values := make([]interface{}, len(cls.Variants))
		for i, v := range cls.Variants {
			keys[i], values[i] = v.Name, v.Class.RawType()
		}
		inner = orderedJSON(keys, values)
	}
	return orderedJSON([]string{"_enum"}, []interface{}{json.RawMessage(inner)})
}

// VariantByName matches exactly first, then case-insensitively.
func (cls *EnumClass) VariantByName(name string) (Variant, bool) {
	for _, v := range cls.Variants {
		if v.Name == name {
			return v, true
		}
	}
	for _, v := range cls.Variants {
		if strings.EqualFold(v.Name, name) {
			return v, true
		}
	}
	return Variant{}, false
}

func (cls *EnumClass) VariantByIndex(index uint8) (Variant, bool) {
	for _, v := range cls.Variants {
		if v.Index == index {
			return v, true
		}
	}
	return Variant{}, false
}

func (cls *EnumClass) Decode(r *scale.Reader) (Codec, error) {
	b, err := r.ReadByte()
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	variant, ok := cls.VariantByIndex(b)
	if !ok {
		return nil, wrapDecode(cls, fmt.Errorf("index %d: %w", b, ErrUnknownVariant))
	}
	value, err := variant.Class.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode variant %s: %w", variant.Name, err)
	}
	return &Enum{cls: cls, variant: variant, value: value}, nil
}

func (cls *EnumClass) with(variant Variant, value interface{}) (Codec, error) {
	inner, err := variant.Class.New(value)
	if err != nil {
		return nil, fmt.Errorf("variant %s: %w", variant.Name, err)
	}
	return &Enum{cls: cls, variant: variant, value: inner}, nil
}

func (cls *EnumClass) New(value interface{}) (Codec, error) {
	if len(cls.Variants) == 0 {
		return nil, fmt.Errorf("%s has no variants: %w", cls.RawType(), ErrInvalidValue)
	}
	if e, ok := value.(*Enum); ok && e.cls.RawType() != cls.RawType() {
		variant, found := cls.VariantByName(e.variant.Name)
		if !found {
			return nil, fmt.Errorf("%s: %w", e.variant.Name, ErrUnknownVariant)
		}
		return cls.with(variant, e.value)
	}
	same, value, err := sameType(cls, value)
	if same != nil || err != nil {
		return same, err
	}
	switch v := value.(type) {
	case nil:
		return cls.with(cls.Variants[0], nil)
	case string:
		variant, found := cls.VariantByName(v)
		if !found {
			return nil, fmt.Errorf("%s: %w", v, ErrUnknownVariant)
		}
		return cls.with(variant, nil)
	}
	if m, ok := toMap(value); ok {
		if len(m) != 1 {
			return nil, fmt.Errorf("enum object with %d keys: %w", len(m), ErrInvalidValue)
		}
		for name, inner := range m {
			variant, found := cls.VariantByName(name)
			if !found {
				return nil, fmt.Errorf("%s: %w", name, ErrUnknownVariant)
			}
			return cls.with(variant, inner)
		}
	}
	n, err := toBigInt(value)
	if err != nil || !n.IsUint64() || n.Uint64() > 0xff {
		return nil, invalid(cls, value)
	}
	variant, found := cls.VariantByIndex(uint8(n.Uint64()))
	if !found {
		return nil, fmt.Errorf("index %s: %w", n, ErrUnknownVariant)
	}
	return cls.with(variant, nil)
}

type Enum struct {
	cls     *EnumClass
	variant Variant
	value   Codec
}

func (e *Enum) Name() string { return e.variant.Name }
func (e *Enum) Index() uint8 { return e.variant.Index }
func (e *Enum) Value() Codec { return e.value }

// Is reports whether the active variant is name.
func (e *Enum) Is(name string) bool {
	return e.variant.Name == name || strings.EqualFold(e.variant.Name, name)
}

func (e *Enum) IsBasic() bool { return e.cls.IsBasic() }
func (e *Enum) Class() Class  { return e.cls }

func (e *Enum) Encode() []byte {
	return append([]byte{e.variant.Index}, e.value.Encode()...)
}

func (e *Enum) EncodedLength() int { return 1 + e.value.EncodedLength() }

func (e *Enum) IsEmpty() bool {
	return e.variant.Index == e.cls.Variants[0].Index && e.value.IsEmpty()
}

func (e *Enum) Eq(other interface{}) bool { return equal(e, other) }

func (e *Enum) ToHuman() interface{} {
	if e.cls.IsBasic() {
		return e.variant.Name
	}
	return map[string]interface{}{e.variant.Name: e.value.ToHuman()}
}

func (e *Enum) ToJSON() interface{} {
	if e.cls.IsBasic() {
		return e.variant.Name
	}
	return map[string]interface{}{lowerFirst(e.variant.Name): e.value.ToJSON()}
}

func (e *Enum) String() string {
	if e.cls.IsBasic() {
		return e.variant.Name
	}
	return jsonString(e.ToJSON())
}

func (e *Enum) Hash() [32]byte { return hashOf(e) }
