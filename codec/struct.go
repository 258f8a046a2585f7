package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Polkadex-Substrate/go-scale/scale"
)

// orderedJSON renders keys and values as a JSON object in the given order.
func orderedJSON(keys []string, values []interface{}) string {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		key, _ := json.Marshal(k)
		b.Write(key)
		b.WriteByte(':')
		if raw, ok := values[i].(json.RawMessage); ok {
			b.Write(raw)
			continue
		}
		b.WriteString(jsonString(values[i]))
	}
	b.WriteByte('}')
	return b.String()
}

// StructClass is an ordered sequence of named fields. Alias maps a field
// name to the key it is read from in JSON input.
type StructClass struct {
	Fields []Field
	Alias  map[string]string
}

func NewStructClass(fields []Field, alias map[string]string) *StructClass {
	return &StructClass{Fields: fields, Alias: alias}
}

func (cls *StructClass) RawType() string {
	keys := make([]string, len(cls.Fields))
	values := make([]interface{}, len(cls.Fields))
	for i, f := range cls.Fields {
		keys[i] = f.Name
		values[i] = f.Class.RawType()
	}
	return orderedJSON(keys, values)
}

// FieldClass returns the class of the named field.
func (cls *StructClass) FieldClass(name string) (Class, bool) {
	for _, f := range cls.Fields {
		if f.Name == name {
			return f.Class, true
		}
	}
	return nil, false
}

func (cls *StructClass) Decode(r *scale.Reader) (Codec, error) {
	values := make([]Codec, len(cls.Fields))
	var err error
	for i, f := range cls.Fields {
		if values[i], err = f.Class.Decode(r); err != nil {
			return nil, fmt.Errorf("decode field %s: %w", f.Name, err)
		}
	}
	return &Struct{cls: cls, values: values}, nil
}

func (cls *StructClass) New(value interface{}) (Codec, error) {
	if s, ok := value.(*Struct); ok && s.cls != cls {
		// convert field by field so aliased or reordered layouts still match
		m := make(map[string]interface{}, len(s.values))
		for i, f := range s.cls.Fields {
			m[f.Name] = s.values[i]
		}
		value = m
	}
	same, value, err := sameType(cls, value)
	if same != nil || err != nil {
		return same, err
	}
	values := make([]Codec, len(cls.Fields))
	if m, ok := toMap(value); ok {
		for i, f := range cls.Fields {
			v, found := lookupField(m, f.Name)
			if !found && cls.Alias[f.Name] != "" {
				v = m[cls.Alias[f.Name]]
			}
			if values[i], err = f.Class.New(v); err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
		return &Struct{cls: cls, values: values}, nil
	}
	var list []interface{}
	if value != nil {
		if list, err = toSlice(value); err != nil {
			return nil, invalid(cls, value)
		}
		if len(list) != len(cls.Fields) {
			return nil, fmt.Errorf("%d values for %d fields: %w", len(list), len(cls.Fields), ErrInvalidValue)
		}
	}
	for i, f := range cls.Fields {
		var v interface{}
		if list != nil {
			v = list[i]
		}
		if values[i], err = f.Class.New(v); err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	return &Struct{cls: cls, values: values}, nil
}

type Struct struct {
	cls    *StructClass
	values []Codec
}

// Get returns the named field.
func (s *Struct) Get(name string) (Codec, bool) {
	for i, f := range s.cls.Fields {
		if f.Name == name {
			return s.values[i], true
		}
	}
	return nil, false
}

// MustGet is Get for fields known to exist.
func (s *Struct) MustGet(name string) Codec {
	v, ok := s.Get(name)
	if !ok {
		panic(fmt.Sprintf("struct has no field %q", name))
	}
	return v
}

func (s *Struct) Fields() []Field { return s.cls.Fields }
func (s *Struct) Values() []Codec { return s.values }
func (s *Struct) Class() Class    { return s.cls }
func (s *Struct) Encode() []byte  { return encodeItems(nil, s.values) }

func (s *Struct) EncodedLength() int { return len(s.Encode()) }

func (s *Struct) IsEmpty() bool {
	for _, v := range s.values {
		if !v.IsEmpty() {
			return false
		}
	}
	return true
}

func (s *Struct) Eq(other interface{}) bool { return equal(s, other) }

func (s *Struct) ToHuman() interface{} {
	out := make(map[string]interface{}, len(s.values))
	for i, f := range s.cls.Fields {
		out[f.Name] = s.values[i].ToHuman()
	}
	return out
}

func (s *Struct) ToJSON() interface{} {
	out := make(map[string]interface{}, len(s.values))
	for i, f := range s.cls.Fields {
		out[f.Name] = s.values[i].ToJSON()
	}
	return out
}

// String renders the fields as JSON in declaration order.
func (s *Struct) String() string {
	keys := make([]string, len(s.values))
	values := make([]interface{}, len(s.values))
	for i, f := range s.cls.Fields {
		keys[i] = f.Name
		values[i] = s.values[i].ToJSON()
	}
	return orderedJSON(keys, values)
}

func (s *Struct) Hash() [32]byte { return hashOf(s) }
