// Package typedef parses SCALE type expressions such as
// "Option<Vec<AccountId>>" or `{"_enum":["A","B"]}` into a descriptor tree
// that the registry turns into codec classes.
package typedef

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnbalanced        = errors.New("unbalanced brackets in type")
	ErrInvalidType       = errors.New("invalid type expression")
	ErrInvalidDefinition = errors.New("invalid type definition")
)

// Info is the kind of a TypeDef node.
type Info int

const (
	Plain Info = iota
	BTreeMap
	BTreeSet
	Compact
	DoNotConstruct
	Enum
	HashMap
	Int
	UInt
	Null
	Option
	Result
	Set
	Struct
	Tuple
	Vec
	VecFixed
)

var infoNames = [...]string{
	"Plain", "BTreeMap", "BTreeSet", "Compact", "DoNotConstruct", "Enum",
	"HashMap", "Int", "UInt", "Null", "Option", "Result", "Set", "Struct",
	"Tuple", "Vec", "VecFixed",
}

func (i Info) String() string {
	if i < 0 || int(i) >= len(infoNames) {
		return fmt.Sprintf("Info(%d)", int(i))
	}
	return infoNames[i]
}

func (i Info) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

// TypeDef is a parsed type expression.
//
// Sub holds the wrapped types (Option, Vec, Compact...), the key and value of
// maps, the ok and error of Result, tuple members, struct fields and enum
// variants. Fields and variants carry their Name; variants also carry their
// Index. Set members carry Name and the bit Value. Length is the VecFixed
// element count or the Int/UInt/Set bit length.
type TypeDef struct {
	Info        Info              `json:"info"`
	Type        string            `json:"type"`
	Name        string            `json:"name,omitempty"`
	DisplayName string            `json:"displayName,omitempty"`
	Length      int               `json:"length,omitempty"`
	Index       int               `json:"index,omitempty"`
	Value       uint64            `json:"value,omitempty"`
	Sub         []*TypeDef        `json:"sub,omitempty"`
	Alias       map[string]string `json:"alias,omitempty"`
}

// IsBasicEnum reports whether every variant of an Enum carries no data.
func (def *TypeDef) IsBasicEnum() bool {
	if def.Info != Enum {
		return false
	}
	for _, v := range def.Sub {
		if v.Info != Null {
			return false
		}
	}
	return true
}

// IsIndexedEnum reports whether the variant indices are not 0..n-1.
func (def *TypeDef) IsIndexedEnum() bool {
	if def.Info != Enum {
		return false
	}
	for i, v := range def.Sub {
		if v.Index != i {
			return true
		}
	}
	return false
}
