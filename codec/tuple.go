package codec

import (
	"fmt"
	"strings"

	"github.com/Polkadex-Substrate/go-scale/scale"
)

// TupleClass is a fixed sequence of heterogeneous values.
type TupleClass struct {
	Types []Class
}

func NewTupleClass(types ...Class) *TupleClass {
	return &TupleClass{Types: types}
}

func (cls *TupleClass) RawType() string {
	names := make([]string, len(cls.Types))
	for i, t := range cls.Types {
		names[i] = t.RawType()
	}
	return "(" + strings.Join(names, ",") + ")"
}

func (cls *TupleClass) Decode(r *scale.Reader) (Codec, error) {
	items := make([]Codec, len(cls.Types))
	var err error
	for i, t := range cls.Types {
		if items[i], err = t.Decode(r); err != nil {
			return nil, wrapDecode(cls, err)
		}
	}
	return &Tuple{cls: cls, items: items}, nil
}

func (cls *TupleClass) New(value interface{}) (Codec, error) {
	same, value, err := sameType(cls, value)
	if same != nil || err != nil {
		return same, err
	}
	var list []interface{}
	if value != nil {
		if list, err = toSlice(value); err != nil {
			return nil, fmt.Errorf("%s: %w", cls.RawType(), err)
		}
		if len(list) != len(cls.Types) {
			return nil, fmt.Errorf("%s from %d values: %w", cls.RawType(), len(list), ErrInvalidValue)
		}
	}
	items := make([]Codec, len(cls.Types))
	for i, t := range cls.Types {
		var v interface{}
		if list != nil {
			v = list[i]
		}
		if items[i], err = t.New(v); err != nil {
			return nil, fmt.Errorf("%s member %d: %w", cls.RawType(), i, err)
		}
	}
	return &Tuple{cls: cls, items: items}, nil
}

type Tuple struct {
	cls   *TupleClass
	items []Codec
}

func (t *Tuple) Items() []Codec    { return t.items }
func (t *Tuple) Index(i int) Codec { return t.items[i] }
func (t *Tuple) Class() Class      { return t.cls }
func (t *Tuple) Encode() []byte    { return encodeItems(nil, t.items) }

func (t *Tuple) EncodedLength() int { return len(t.Encode()) }

func (t *Tuple) IsEmpty() bool {
	for _, item := range t.items {
		if !item.IsEmpty() {
			return false
		}
	}
	return true
}

func (t *Tuple) Eq(other interface{}) bool { return equal(t, other) }
func (t *Tuple) ToHuman() interface{}      { return humanItems(t.items) }
func (t *Tuple) ToJSON() interface{}       { return jsonItems(t.items) }
func (t *Tuple) String() string            { return jsonString(t.ToJSON()) }
func (t *Tuple) Hash() [32]byte            { return hashOf(t) }
