package registry

import (
	"fmt"

	"github.com/Polkadex-Substrate/go-scale/codec"
	"github.com/Polkadex-Substrate/go-scale/typedef"
)

// ClassFromDef builds the class for a parsed type expression.
func (r *Registry) ClassFromDef(def *typedef.TypeDef) (codec.Class, error) {
	switch def.Info {
	case typedef.Plain:
		return r.named(def.Type)
	case typedef.Null:
		return &codec.NullClass{}, nil
	case typedef.Int:
		return codec.NewIntClass(def.Length), nil
	case typedef.UInt:
		return codec.NewUIntClass(def.Length), nil
	case typedef.DoNotConstruct:
		return &codec.DoNotConstructClass{Name: def.DisplayName}, nil
	case typedef.Compact, typedef.Option, typedef.Vec, typedef.BTreeSet:
		return r.wrapper(def)
	case typedef.BTreeMap, typedef.HashMap:
		subs, err := r.subClasses(def, 2)
		if err != nil {
			return nil, err
		}
		kind := codec.BTreeMap
		if def.Info == typedef.HashMap {
			kind = codec.HashMap
		}
		return codec.NewMapClass(kind, subs[0], subs[1]), nil
	case typedef.Result:
		subs, err := r.subClasses(def, 2)
		if err != nil {
			return nil, err
		}
		return codec.NewResultClass(subs[0], subs[1]), nil
	case typedef.Tuple:
		subs, err := r.subClasses(def, len(def.Sub))
		if err != nil {
			return nil, err
		}
		return codec.NewTupleClass(subs...), nil
	case typedef.VecFixed:
		if len(def.Sub) != 1 {
			return nil, fmt.Errorf("%s: %w", def.Type, ErrInvalidDefinition)
		}
		if sub := def.Sub[0]; sub.Info == typedef.Plain && sub.Type == "u8" {
			return codec.NewU8aFixedClass(def.Length), nil
		}
		inner, err := r.ClassFromDef(def.Sub[0])
		if err != nil {
			return nil, err
		}
		return codec.NewVecFixedClass(inner, def.Length), nil
	case typedef.Struct:
		return r.structClass(def)
	case typedef.Enum:
		return r.enumClass(def)
	case typedef.Set:
		values := make([]codec.SetValue, len(def.Sub))
		for i, sub := range def.Sub {
			values[i] = codec.SetValue{Name: sub.Name, Bit: sub.Value}
		}
		return codec.NewSetClass(def.Length, values), nil
	}
	return nil, fmt.Errorf("%s with info %s: %w", def.Type, def.Info, ErrInvalidDefinition)
}

func (r *Registry) subClasses(def *typedef.TypeDef, n int) ([]codec.Class, error) {
	if len(def.Sub) != n {
		return nil, fmt.Errorf("%s expects %d parameters: %w", def.Type, n, ErrInvalidDefinition)
	}
	out := make([]codec.Class, n)
	for i, sub := range def.Sub {
		cls, err := r.ClassFromDef(sub)
		if err != nil {
			return nil, err
		}
		out[i] = cls
	}
	return out, nil
}

func (r *Registry) wrapper(def *typedef.TypeDef) (codec.Class, error) {
	subs, err := r.subClasses(def, 1)
	if err != nil {
		return nil, err
	}
	switch def.Info {
	case typedef.Compact:
		return codec.NewCompactClass(subs[0]), nil
	case typedef.Option:
		return codec.NewOptionClass(subs[0]), nil
	case typedef.Vec:
		return codec.NewVecClass(subs[0]), nil
	}
	return codec.NewBTreeSetClass(subs[0]), nil
}

func (r *Registry) structClass(def *typedef.TypeDef) (codec.Class, error) {
	fields := make([]codec.Field, len(def.Sub))
	for i, sub := range def.Sub {
		cls, err := r.ClassFromDef(sub)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sub.Name, err)
		}
		fields[i] = codec.Field{Name: sub.Name, Class: cls}
	}
	return codec.NewStructClass(fields, def.Alias), nil
}

func (r *Registry) enumClass(def *typedef.TypeDef) (codec.Class, error) {
	variants := make([]codec.Variant, len(def.Sub))
	for i, sub := range def.Sub {
		cls, err := r.ClassFromDef(sub)
		if err != nil {
			return nil, fmt.Errorf("variant %s: %w", sub.Name, err)
		}
		variants[i] = codec.Variant{Name: sub.Name, Index: uint8(sub.Index), Class: cls}
	}
	return codec.NewEnumClass(variants), nil
}
