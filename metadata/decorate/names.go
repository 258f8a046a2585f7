package decorate

import "strings"

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// camelCase turns module and snake_case call names into accessor names:
// "TechnicalCommittee" becomes "technicalCommittee" and
// "transfer_keep_alive" becomes "transferKeepAlive".
func camelCase(s string) string {
	var b strings.Builder
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == ' ' || r == '-' }) {
		if b.Len() == 0 {
			b.WriteString(lowerFirst(part))
		} else {
			b.WriteString(upperFirst(part))
		}
	}
	return b.String()
}
