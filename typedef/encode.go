package typedef

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Encode renders def back into a canonical type expression. Parsing the
// result gives an equivalent tree.
func Encode(def *TypeDef) string {
	switch def.Info {
	case Plain:
		return def.Type
	case Null:
		return "Null"
	case Compact, Option, Vec, BTreeSet:
		return fmt.Sprintf("%s<%s>", def.Info, Encode(def.Sub[0]))
	case DoNotConstruct:
		return fmt.Sprintf("DoNotConstruct<%s>", def.DisplayName)
	case BTreeMap, HashMap, Result:
		return fmt.Sprintf("%s<%s,%s>", def.Info, Encode(def.Sub[0]), Encode(def.Sub[1]))
	case Int, UInt:
		if def.DisplayName != "" {
			return fmt.Sprintf("%s<%d,%s>", def.Info, def.Length, def.DisplayName)
		}
		return fmt.Sprintf("%s<%d>", def.Info, def.Length)
	case VecFixed:
		return fmt.Sprintf("[%s;%d]", Encode(def.Sub[0]), def.Length)
	case Tuple:
		parts := make([]string, len(def.Sub))
		for i, sub := range def.Sub {
			parts[i] = Encode(sub)
		}
		return "(" + strings.Join(parts, ",") + ")"
	case Struct:
		return encodeStruct(def)
	case Enum:
		return encodeEnum(def)
	case Set:
		return encodeSet(def)
	}
	return def.Type
}

type jsonObject struct {
	keys   []string
	values []string
}

func (o *jsonObject) add(key string, raw string) {
	o.keys = append(o.keys, key)
	o.values = append(o.values, raw)
}

func (o *jsonObject) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(k))
		b.WriteByte(':')
		b.WriteString(o.values[i])
	}
	b.WriteByte('}')
	return b.String()
}

func quote(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}

// encodeValue renders a sub type as a JSON value: nested objects inline,
// everything else as a quoted type string.
func encodeValue(def *TypeDef) string {
	switch def.Info {
	case Struct, Enum, Set:
		return Encode(def)
	}
	return quote(Encode(def))
}

func encodeStruct(def *TypeDef) string {
	obj := &jsonObject{}
	for _, sub := range def.Sub {
		obj.add(sub.Name, encodeValue(sub))
	}
	if len(def.Alias) > 0 {
		names := make([]string, 0, len(def.Alias))
		for name := range def.Alias {
			names = append(names, name)
		}
		sort.Strings(names)
		alias := &jsonObject{}
		for _, name := range names {
			alias.add(name, quote(def.Alias[name]))
		}
		obj.add("_alias", alias.String())
	}
	return obj.String()
}

func encodeEnum(def *TypeDef) string {
	obj := &jsonObject{}
	switch {
	case def.IsBasicEnum() && def.IsIndexedEnum():
		variants := &jsonObject{}
		for _, sub := range def.Sub {
			variants.add(sub.Name, strconv.Itoa(sub.Index))
		}
		obj.add("_enum", variants.String())
	case def.IsBasicEnum():
		names := make([]string, len(def.Sub))
		for i, sub := range def.Sub {
			names[i] = quote(sub.Name)
		}
		obj.add("_enum", "["+strings.Join(names, ",")+"]")
	default:
		variants := &jsonObject{}
		for _, sub := range def.Sub {
			variants.add(sub.Name, encodeValue(sub))
		}
		obj.add("_enum", variants.String())
	}
	return obj.String()
}

func encodeSet(def *TypeDef) string {
	members := &jsonObject{}
	members.add("_bitLength", strconv.Itoa(def.Length))
	for _, sub := range def.Sub {
		members.add(sub.Name, strconv.FormatUint(sub.Value, 10))
	}
	obj := &jsonObject{}
	obj.add("_set", members.String())
	return obj.String()
}
