// Package codec implements the SCALE codec primitives. A Class describes one
// SCALE type and produces Codec values, either by decoding bytes or by
// converting native Go values.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Polkadex-Substrate/go-scale/scale"
	"golang.org/x/crypto/blake2b"
)

var (
	ErrInvalidValue    = errors.New("invalid value")
	ErrTrailingBytes   = errors.New("trailing bytes after decode")
	ErrLengthTooLarge  = errors.New("length exceeds limit")
	ErrDoNotConstruct  = errors.New("type cannot be constructed")
	ErrNoResolver      = errors.New("no metadata resolver installed")
	ErrUnknownVariant  = errors.New("unknown enum variant")
	ErrUnresolvedClass = errors.New("class cannot be resolved")
)

// MaxLength bounds the element count of decoded vectors and maps.
const MaxLength = 64 * 1024

// Codec is a SCALE value.
type Codec interface {
	// Class returns the class this value belongs to.
	Class() Class
	// Encode returns the SCALE encoding.
	Encode() []byte
	EncodedLength() int
	// IsEmpty reports whether the value is the default of its class.
	IsEmpty() bool
	// Eq compares against another Codec or any value the class accepts.
	Eq(other interface{}) bool
	ToHuman() interface{}
	ToJSON() interface{}
	String() string
	// Hash is the blake2b-256 digest of the encoding.
	Hash() [32]byte
}

// Class constructs values of one SCALE type.
type Class interface {
	// RawType is the canonical type expression of the class.
	RawType() string
	Decode(r *scale.Reader) (Codec, error)
	// New converts a native value. A nil value gives the default.
	New(value interface{}) (Codec, error)
}

// Field is a named member of a struct, call or event.
type Field struct {
	Name  string
	Class Class
}

// Decode decodes data with cls, ignoring any trailing bytes.
func Decode(cls Class, data []byte) (Codec, error) {
	return cls.Decode(scale.NewReader(data))
}

// DecodeStrict decodes data with cls and requires every byte to be consumed.
func DecodeStrict(cls Class, data []byte) (Codec, error) {
	r := scale.NewReader(data)
	out, err := cls.Decode(r)
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%s: %d of %d bytes left: %w", cls.RawType(), r.Remaining(), len(data), ErrTrailingBytes)
	}
	return out, nil
}

// MustNew is New that panics, for static values.
func MustNew(cls Class, value interface{}) Codec {
	out, err := cls.New(value)
	if err != nil {
		panic(err)
	}
	return out
}

func equal(c Codec, other interface{}) bool {
	if o, ok := other.(Codec); ok {
		return bytes.Equal(c.Encode(), o.Encode())
	}
	v, err := c.Class().New(other)
	if err != nil {
		return false
	}
	return bytes.Equal(c.Encode(), v.Encode())
}

func hashOf(c Codec) [32]byte {
	return blake2b.Sum256(c.Encode())
}

func jsonString(v interface{}) string {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(out)
}

// sameType clones a value of the same raw type by re-decoding it, and
// otherwise unwraps foreign codecs into their JSON form so every class can
// convert from the others.
func sameType(cls Class, value interface{}) (Codec, interface{}, error) {
	c, ok := value.(Codec)
	if !ok {
		return nil, value, nil
	}
	if c.Class().RawType() == cls.RawType() {
		out, err := DecodeStrict(cls, c.Encode())
		return out, nil, err
	}
	return nil, c.ToJSON(), nil
}

func invalid(cls Class, value interface{}) error {
	return fmt.Errorf("%s from %T %v: %w", cls.RawType(), value, value, ErrInvalidValue)
}

func wrapDecode(cls Class, err error) error {
	return fmt.Errorf("decode %s: %w", cls.RawType(), err)
}
