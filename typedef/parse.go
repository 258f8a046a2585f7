package typedef

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// Parse builds the TypeDef tree for a type expression.
func Parse(value string) (*TypeDef, error) {
	return ParseNamed(value, "")
}

// ParseNamed is Parse for a named struct field or enum variant.
func ParseNamed(value string, name string) (*TypeDef, error) {
	t := strings.TrimSpace(value)
	if strings.HasPrefix(t, "{") {
		var def yaml.MapSlice
		if err := yaml.Unmarshal([]byte(t), &def); err != nil {
			return nil, fmt.Errorf("parse definition %s: %w", t, ErrInvalidDefinition)
		}
		return ParseDefinition(def, name)
	}
	t = Sanitize(t)
	if !balanced(t) {
		return nil, fmt.Errorf("%q: %w", value, ErrUnbalanced)
	}
	def, err := parseSanitized(t)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", value, err)
	}
	def.Name = name
	return def, nil
}

func parseSanitized(t string) (*TypeDef, error) {
	switch {
	case t == "":
		return nil, ErrInvalidType
	case t == "Null":
		return &TypeDef{Info: Null, Type: "Null"}, nil
	case t[0] == '(':
		return parseTuple(t)
	case t[0] == '[':
		return parseFixed(t)
	case t[0] == '{':
		return ParseNamed(t, "")
	}
	open := strings.IndexByte(t, '<')
	if open < 0 {
		if !isIdent(t) {
			return nil, ErrInvalidType
		}
		return &TypeDef{Info: Plain, Type: t}, nil
	}
	if findClosing(t, open) != len(t)-1 {
		return nil, ErrInvalidType
	}
	return parseWrapper(t, t[:open], t[open+1:len(t)-1])
}

func parseTuple(t string) (*TypeDef, error) {
	if findClosing(t, 0) != len(t)-1 {
		return nil, ErrInvalidType
	}
	parts := splitTopLevel(t[1:len(t)-1], ',')
	switch len(parts) {
	case 0:
		return &TypeDef{Info: Null, Type: "Null"}, nil
	case 1:
		return parseSanitized(parts[0])
	}
	subs, err := parseAll(parts)
	if err != nil {
		return nil, err
	}
	return &TypeDef{Info: Tuple, Type: t, Sub: subs}, nil
}

func parseFixed(t string) (*TypeDef, error) {
	if findClosing(t, 0) != len(t)-1 {
		return nil, ErrInvalidType
	}
	parts := splitTopLevel(t[1:len(t)-1], ';')
	if len(parts) != 2 {
		return nil, ErrInvalidType
	}
	length, err := strconv.Atoi(parts[1])
	if err != nil || length < 0 {
		return nil, fmt.Errorf("fixed length %q: %w", parts[1], ErrInvalidType)
	}
	sub, err := parseSanitized(parts[0])
	if err != nil {
		return nil, err
	}
	return &TypeDef{Info: VecFixed, Type: t, Length: length, Sub: []*TypeDef{sub}}, nil
}

func parseWrapper(t, wrapper, inner string) (*TypeDef, error) {
	parts := splitTopLevel(inner, ',')
	var info Info
	arity := 1
	switch wrapper {
	case "Compact":
		info = Compact
	case "Option":
		info = Option
	case "Vec":
		info = Vec
	case "BTreeSet":
		info = BTreeSet
	case "DoNotConstruct":
		return &TypeDef{Info: DoNotConstruct, Type: t, DisplayName: inner}, nil
	case "BTreeMap":
		info, arity = BTreeMap, 2
	case "HashMap":
		info, arity = HashMap, 2
	case "Result":
		info, arity = Result, 2
	case "Int", "UInt":
		return parseSized(t, wrapper, parts)
	default:
		return nil, fmt.Errorf("unknown wrapper %s: %w", wrapper, ErrInvalidType)
	}
	if len(parts) != arity {
		return nil, fmt.Errorf("%s expects %d parameters, got %d: %w", wrapper, arity, len(parts), ErrInvalidType)
	}
	subs, err := parseAll(parts)
	if err != nil {
		return nil, err
	}
	return &TypeDef{Info: info, Type: t, Sub: subs}, nil
}

func parseSized(t, wrapper string, parts []string) (*TypeDef, error) {
	if len(parts) < 1 || len(parts) > 2 {
		return nil, fmt.Errorf("%s expects a bit length: %w", wrapper, ErrInvalidType)
	}
	length, err := strconv.Atoi(parts[0])
	if err != nil || length <= 0 || length%8 != 0 {
		return nil, fmt.Errorf("%s bit length %q: %w", wrapper, parts[0], ErrInvalidType)
	}
	def := &TypeDef{Info: Int, Type: t, Length: length}
	if wrapper == "UInt" {
		def.Info = UInt
	}
	if len(parts) == 2 {
		def.DisplayName = parts[1]
	}
	return def, nil
}

func parseAll(parts []string) ([]*TypeDef, error) {
	subs := make([]*TypeDef, 0, len(parts))
	for _, p := range parts {
		sub, err := parseSanitized(p)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func isIdent(t string) bool {
	for i := 0; i < len(t); i++ {
		if !isIdentByte(t[i]) {
			return false
		}
	}
	return t != ""
}
