package codec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Polkadex-Substrate/go-scale/scale"
)

func encodeItems(prefix []byte, items []Codec) []byte {
	out := prefix
	for _, item := range items {
		out = append(out, item.Encode()...)
	}
	return out
}

func humanItems(items []Codec) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item.ToHuman()
	}
	return out
}

func jsonItems(items []Codec) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = item.ToJSON()
	}
	return out
}

func newItems(cls Class, inner Class, value interface{}) ([]Codec, error) {
	list, err := toSlice(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cls.RawType(), err)
	}
	items := make([]Codec, len(list))
	for i, v := range list {
		if items[i], err = inner.New(v); err != nil {
			return nil, fmt.Errorf("%s item %d: %w", cls.RawType(), i, err)
		}
	}
	return items, nil
}

// decodeCount reads a compact element count, bounded by MaxLength and, for
// sized elements, by the remaining input.
func decodeCount(r *scale.Reader, inner Class) (int, error) {
	n, err := scale.DecodeCompactUint64(r)
	if err != nil {
		return 0, err
	}
	if n > MaxLength {
		return 0, fmt.Errorf("%d elements: %w", n, ErrLengthTooLarge)
	}
	if _, zeroSized := Resolve(inner).(*NullClass); !zeroSized && n > uint64(r.Remaining()) {
		return 0, fmt.Errorf("%d elements with %d bytes left: %w", n, r.Remaining(), scale.ErrUnexpectedEOF)
	}
	return int(n), nil
}

// VecClass is a compact-length-prefixed sequence.
type VecClass struct {
	Inner Class
}

func NewVecClass(inner Class) *VecClass {
	return &VecClass{Inner: inner}
}

func (cls *VecClass) RawType() string {
	return fmt.Sprintf("Vec<%s>", cls.Inner.RawType())
}

func (cls *VecClass) Decode(r *scale.Reader) (Codec, error) {
	n, err := decodeCount(r, cls.Inner)
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	items := make([]Codec, n)
	for i := range items {
		if items[i], err = cls.Inner.Decode(r); err != nil {
			return nil, wrapDecode(cls, err)
		}
	}
	return &Vec{cls: cls, items: items}, nil
}

func (cls *VecClass) New(value interface{}) (Codec, error) {
	same, value, err := sameType(cls, value)
	if same != nil || err != nil {
		return same, err
	}
	items, err := newItems(cls, cls.Inner, value)
	if err != nil {
		return nil, err
	}
	return &Vec{cls: cls, items: items}, nil
}

type Vec struct {
	cls   *VecClass
	items []Codec
}

func (v *Vec) Items() []Codec    { return v.items }
func (v *Vec) Len() int          { return len(v.items) }
func (v *Vec) Index(i int) Codec { return v.items[i] }
func (v *Vec) Class() Class      { return v.cls }

func (v *Vec) Encode() []byte {
	return encodeItems(scale.EncodeCompactUint64(uint64(len(v.items))), v.items)
}

func (v *Vec) EncodedLength() int        { return len(v.Encode()) }
func (v *Vec) IsEmpty() bool             { return len(v.items) == 0 }
func (v *Vec) Eq(other interface{}) bool { return equal(v, other) }
func (v *Vec) ToHuman() interface{}      { return humanItems(v.items) }
func (v *Vec) ToJSON() interface{}       { return jsonItems(v.items) }
func (v *Vec) String() string            { return jsonString(v.ToJSON()) }
func (v *Vec) Hash() [32]byte            { return hashOf(v) }

// VecFixedClass is a sequence of exactly Length elements with no prefix.
type VecFixedClass struct {
	Inner  Class
	Length int
}

func NewVecFixedClass(inner Class, length int) *VecFixedClass {
	return &VecFixedClass{Inner: inner, Length: length}
}

func (cls *VecFixedClass) RawType() string {
	return fmt.Sprintf("[%s;%d]", cls.Inner.RawType(), cls.Length)
}

func (cls *VecFixedClass) Decode(r *scale.Reader) (Codec, error) {
	items := make([]Codec, cls.Length)
	var err error
	for i := range items {
		if items[i], err = cls.Inner.Decode(r); err != nil {
			return nil, wrapDecode(cls, err)
		}
	}
	return &VecFixed{cls: cls, items: items}, nil
}

func (cls *VecFixedClass) New(value interface{}) (Codec, error) {
	same, value, err := sameType(cls, value)
	if same != nil || err != nil {
		return same, err
	}
	if value == nil {
		items := make([]Codec, cls.Length)
		for i := range items {
			if items[i], err = cls.Inner.New(nil); err != nil {
				return nil, err
			}
		}
		return &VecFixed{cls: cls, items: items}, nil
	}
	items, err := newItems(cls, cls.Inner, value)
	if err != nil {
		return nil, err
	}
	if len(items) != cls.Length {
		return nil, fmt.Errorf("%s from %d items: %w", cls.RawType(), len(items), ErrInvalidValue)
	}
	return &VecFixed{cls: cls, items: items}, nil
}

type VecFixed struct {
	cls   *VecFixedClass
	items []Codec
}

func (v *VecFixed) Items() []Codec { return v.items }
func (v *VecFixed) Class() Class   { return v.cls }
func (v *VecFixed) Encode() []byte { return encodeItems(nil, v.items) }

func (v *VecFixed) EncodedLength() int { return len(v.Encode()) }

func (v *VecFixed) IsEmpty() bool {
	for _, item := range v.items {
		if !item.IsEmpty() {
			return false
		}
	}
	return true
}

func (v *VecFixed) Eq(other interface{}) bool { return equal(v, other) }
func (v *VecFixed) ToHuman() interface{}      { return humanItems(v.items) }
func (v *VecFixed) ToJSON() interface{}       { return jsonItems(v.items) }
func (v *VecFixed) String() string            { return jsonString(v.ToJSON()) }
func (v *VecFixed) Hash() [32]byte            { return hashOf(v) }

// BTreeSetClass is a sorted, de-duplicated set.
type BTreeSetClass struct {
	Inner Class
}

func NewBTreeSetClass(inner Class) *BTreeSetClass {
	return &BTreeSetClass{Inner: inner}
}

func (cls *BTreeSetClass) RawType() string {
	return fmt.Sprintf("BTreeSet<%s>", cls.Inner.RawType())
}

func (cls *BTreeSetClass) Decode(r *scale.Reader) (Codec, error) {
	n, err := decodeCount(r, cls.Inner)
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	items := make([]Codec, n)
	for i := range items {
		if items[i], err = cls.Inner.Decode(r); err != nil {
			return nil, wrapDecode(cls, err)
		}
	}
	return &BTreeSet{cls: cls, items: sortUnique(items)}, nil
}

func (cls *BTreeSetClass) New(value interface{}) (Codec, error) {
	same, value, err := sameType(cls, value)
	if same != nil || err != nil {
		return same, err
	}
	items, err := newItems(cls, cls.Inner, value)
	if err != nil {
		return nil, err
	}
	return &BTreeSet{cls: cls, items: sortUnique(items)}, nil
}

type BTreeSet struct {
	cls   *BTreeSetClass
	items []Codec
}

func (s *BTreeSet) Items() []Codec { return s.items }
func (s *BTreeSet) Len() int       { return len(s.items) }
func (s *BTreeSet) Class() Class   { return s.cls }

func (s *BTreeSet) Has(value interface{}) bool {
	for _, item := range s.items {
		if item.Eq(value) {
			return true
		}
	}
	return false
}

func (s *BTreeSet) Encode() []byte {
	return encodeItems(scale.EncodeCompactUint64(uint64(len(s.items))), s.items)
}

func (s *BTreeSet) EncodedLength() int        { return len(s.Encode()) }
func (s *BTreeSet) IsEmpty() bool             { return len(s.items) == 0 }
func (s *BTreeSet) Eq(other interface{}) bool { return equal(s, other) }
func (s *BTreeSet) ToHuman() interface{}      { return humanItems(s.items) }
func (s *BTreeSet) ToJSON() interface{}       { return jsonItems(s.items) }
func (s *BTreeSet) String() string            { return jsonString(s.ToJSON()) }
func (s *BTreeSet) Hash() [32]byte            { return hashOf(s) }

// compareCodecs orders numbers numerically, text lexically and everything
// else by encoding.
func compareCodecs(a, b Codec) int {
	if an, ok := a.(BigIntCodec); ok {
		if bn, ok := b.(BigIntCodec); ok {
			return an.BigInt().Cmp(bn.BigInt())
		}
	}
	if at, ok := a.(*Text); ok {
		if bt, ok := b.(*Text); ok {
			return strings.Compare(at.v, bt.v)
		}
	}
	return strings.Compare(string(a.Encode()), string(b.Encode()))
}

func sortUnique(items []Codec) []Codec {
	sort.SliceStable(items, func(i, j int) bool {
		return compareCodecs(items[i], items[j]) < 0
	})
	out := items[:0]
	for i, item := range items {
		if i > 0 && compareCodecs(out[len(out)-1], item) == 0 {
			continue
		}
		out = append(out, item)
	}
	return out
}
