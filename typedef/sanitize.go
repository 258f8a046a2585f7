package typedef

import (
	"regexp"
	"strings"
)

// wrappers keep their generic parameters through Sanitize; every other
// generic type has its parameters dropped.
var wrappers = map[string]bool{
	"BTreeMap":       true,
	"BTreeSet":       true,
	"Compact":        true,
	"DoNotConstruct": true,
	"HashMap":        true,
	"Int":            true,
	"UInt":           true,
	"Option":         true,
	"Result":         true,
	"Vec":            true,
	"Box":            true,
	"Cow":            true,
	"PairOf":         true,
}

var (
	reWhitespace  = regexp.MustCompile(`\s+`)
	reTraitCast   = regexp.MustCompile(`<[A-Za-z0-9_]+as[A-Za-z0-9_:]+(<[A-Za-z0-9_,]*>)?>::`)
	reTraitPrefix = regexp.MustCompile(`\b(T|I)::`)
	rePathPrefix  = regexp.MustCompile(`\b[a-z_][a-z0-9_]*::`)
	reStaticBytes = regexp.MustCompile(`&('static)?\[u8\]`)
	reLifetime    = regexp.MustCompile(`'[a-z_]+,?`)
	reVecU8       = regexp.MustCompile(`\bVec<u8>`)
	reString      = regexp.MustCompile(`\bString\b`)
	reEmptyTuple  = regexp.MustCompile(`\(\)`)
)

// Sanitize normalizes a Rust-flavoured type expression into the form the
// parser understands. JSON definitions are returned unchanged.
func Sanitize(value string) string {
	t := strings.TrimSpace(value)
	if strings.HasPrefix(t, "{") {
		return t
	}
	t = reWhitespace.ReplaceAllString(t, "")
	t = reStaticBytes.ReplaceAllString(t, "Bytes")
	t = reLifetime.ReplaceAllString(t, "")
	t = reTraitCast.ReplaceAllString(t, "")
	t = reTraitPrefix.ReplaceAllString(t, "")
	t = rePathPrefix.ReplaceAllString(t, "")
	t = unwrap(t, "Box")
	t = unwrap(t, "Cow")
	t = expandPairOf(t)
	t = removeGenerics(t)
	t = reVecU8.ReplaceAllString(t, "Bytes")
	t = reString.ReplaceAllString(t, "Text")
	if t == "()" {
		return "Null"
	}
	t = reEmptyTuple.ReplaceAllString(t, "Null")
	return flattenSingleTuple(t)
}

// unwrap replaces every Wrapper<X> with X.
func unwrap(t, wrapper string) string {
	prefix := wrapper + "<"
	for {
		start := indexIdent(t, prefix)
		if start < 0 {
			return t
		}
		open := start + len(wrapper)
		end := findClosing(t, open)
		if end < 0 {
			return t
		}
		t = t[:start] + t[open+1:end] + t[end+1:]
	}
}

func expandPairOf(t string) string {
	for {
		start := indexIdent(t, "PairOf<")
		if start < 0 {
			return t
		}
		open := start + len("PairOf")
		end := findClosing(t, open)
		if end < 0 {
			return t
		}
		inner := t[open+1 : end]
		t = t[:start] + "(" + inner + "," + inner + ")" + t[end+1:]
	}
}

// removeGenerics drops the parameters of generic types that are not
// wrappers, e.g. RawOrigin<AccountId> becomes RawOrigin.
func removeGenerics(t string) string {
	var b strings.Builder
	for i := 0; i < len(t); i++ {
		c := t[i]
		if c != '<' {
			b.WriteByte(c)
			continue
		}
		identStart := i
		for identStart > 0 && isIdentByte(t[identStart-1]) {
			identStart--
		}
		ident := t[identStart:i]
		if wrappers[ident] || ident == "" {
			b.WriteByte(c)
			continue
		}
		end := findClosing(t, i)
		if end < 0 {
			b.WriteByte(c)
			continue
		}
		i = end
	}
	return b.String()
}

func flattenSingleTuple(t string) string {
	for len(t) > 2 && t[0] == '(' && findClosing(t, 0) == len(t)-1 {
		inner := t[1 : len(t)-1]
		if len(splitTopLevel(inner, ',')) != 1 {
			return t
		}
		t = inner
	}
	return t
}

// indexIdent finds prefix at an identifier boundary.
func indexIdent(t, prefix string) int {
	from := 0
	for {
		idx := strings.Index(t[from:], prefix)
		if idx < 0 {
			return -1
		}
		idx += from
		if idx == 0 || !isIdentByte(t[idx-1]) {
			return idx
		}
		from = idx + 1
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

var closers = map[byte]byte{'<': '>', '(': ')', '[': ']', '{': '}'}

// findClosing returns the index of the bracket matching the one at open.
func findClosing(t string, open int) int {
	depth := 0
	for i := open; i < len(t); i++ {
		switch t[i] {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			depth--
			if depth == 0 {
				if closers[t[open]] != t[i] {
					return -1
				}
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits t on sep outside of any brackets.
func splitTopLevel(t string, sep byte) []string {
	if t == "" {
		return nil
	}
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(t); i++ {
		switch t[i] {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, t[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, t[last:])
}

func balanced(t string) bool {
	var stack []byte
	for i := 0; i < len(t); i++ {
		switch c := t[i]; c {
		case '<', '(', '[', '{':
			stack = append(stack, closers[c])
		case '>', ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}
