package typedef

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v2"
)

const defaultSetBitLength = 8

// ParseDefinition builds a TypeDef from an ordered object definition:
// {"_enum": ...}, {"_set": ...} or a struct field map with optional _alias.
func ParseDefinition(def yaml.MapSlice, name string) (*TypeDef, error) {
	var (
		out *TypeDef
		err error
	)
	switch {
	case hasKey(def, "_enum"):
		out, err = parseEnum(lookup(def, "_enum"))
	case hasKey(def, "_set"):
		out, err = parseSet(lookup(def, "_set"))
	default:
		out, err = parseStruct(def)
	}
	if err != nil {
		return nil, err
	}
	out.Name = name
	out.Type = Encode(out)
	return out, nil
}

func parseStruct(def yaml.MapSlice) (*TypeDef, error) {
	out := &TypeDef{Info: Struct}
	for _, item := range def {
		key := keyString(item.Key)
		if key == "_alias" {
			aliases, ok := item.Value.(yaml.MapSlice)
			if !ok {
				return nil, fmt.Errorf("_alias must be an object: %w", ErrInvalidDefinition)
			}
			out.Alias = make(map[string]string, len(aliases))
			for _, a := range aliases {
				target, ok := a.Value.(string)
				if !ok {
					return nil, fmt.Errorf("_alias %v: %w", a.Key, ErrInvalidDefinition)
				}
				out.Alias[keyString(a.Key)] = target
			}
			continue
		}
		sub, err := parseValue(item.Value, key)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		out.Sub = append(out.Sub, sub)
	}
	return out, nil
}

func parseEnum(value interface{}) (*TypeDef, error) {
	out := &TypeDef{Info: Enum}
	switch variants := value.(type) {
	case []interface{}:
		for i, v := range variants {
			name, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("_enum entry %v: %w", v, ErrInvalidDefinition)
			}
			out.Sub = append(out.Sub, &TypeDef{Info: Null, Type: "Null", Name: name, Index: i})
		}
	case yaml.MapSlice:
		indexed := len(variants) > 0
		for _, v := range variants {
			if _, ok := v.Value.(int); !ok {
				indexed = false
			}
		}
		for i, v := range variants {
			name := keyString(v.Key)
			if indexed {
				out.Sub = append(out.Sub, &TypeDef{Info: Null, Type: "Null", Name: name, Index: v.Value.(int)})
				continue
			}
			sub, err := parseValue(v.Value, name)
			if err != nil {
				return nil, fmt.Errorf("variant %s: %w", name, err)
			}
			sub.Index = i
			out.Sub = append(out.Sub, sub)
		}
	default:
		return nil, fmt.Errorf("_enum must be a list or object: %w", ErrInvalidDefinition)
	}
	seen := make(map[int]bool, len(out.Sub))
	for _, v := range out.Sub {
		if v.Index < 0 || v.Index > 255 || seen[v.Index] {
			return nil, fmt.Errorf("variant %s index %d: %w", v.Name, v.Index, ErrInvalidDefinition)
		}
		seen[v.Index] = true
	}
	return out, nil
}

func parseSet(value interface{}) (*TypeDef, error) {
	members, ok := value.(yaml.MapSlice)
	if !ok {
		return nil, fmt.Errorf("_set must be an object: %w", ErrInvalidDefinition)
	}
	out := &TypeDef{Info: Set, Length: defaultSetBitLength}
	for _, m := range members {
		key := keyString(m.Key)
		bits, err := toUint64(m.Value)
		if err != nil {
			return nil, fmt.Errorf("_set %s: %w", key, err)
		}
		if key == "_bitLength" {
			out.Length = int(bits)
			continue
		}
		out.Sub = append(out.Sub, &TypeDef{Info: Plain, Type: "bool", Name: key, Value: bits})
	}
	switch out.Length {
	case 8, 16, 32, 64:
	default:
		return nil, fmt.Errorf("_set bit length %d: %w", out.Length, ErrInvalidDefinition)
	}
	return out, nil
}

func parseValue(value interface{}, name string) (*TypeDef, error) {
	switch v := value.(type) {
	case nil:
		return &TypeDef{Info: Null, Type: "Null", Name: name}, nil
	case string:
		return ParseNamed(v, name)
	case yaml.MapSlice:
		return ParseDefinition(v, name)
	}
	return nil, fmt.Errorf("unsupported definition value %v: %w", value, ErrInvalidDefinition)
}

func toUint64(value interface{}) (uint64, error) {
	switch v := value.(type) {
	case int:
		if v >= 0 {
			return uint64(v), nil
		}
	case uint64:
		return v, nil
	case string:
		return strconv.ParseUint(v, 0, 64)
	}
	return 0, fmt.Errorf("expected unsigned integer, got %v: %w", value, ErrInvalidDefinition)
}

func hasKey(def yaml.MapSlice, key string) bool {
	for _, item := range def {
		if keyString(item.Key) == key {
			return true
		}
	}
	return false
}

func lookup(def yaml.MapSlice, key string) interface{} {
	for _, item := range def {
		if keyString(item.Key) == key {
			return item.Value
		}
	}
	return nil
}

func keyString(key interface{}) string {
	if s, ok := key.(string); ok {
		return s
	}
	return fmt.Sprint(key)
}
