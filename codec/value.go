package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// BigIntCodec is implemented by the numeric codecs.
type BigIntCodec interface {
	Codec
	BigInt() *big.Int
}

// BytesCodec is implemented by the codecs that wrap a byte string.
type BytesCodec interface {
	Codec
	Bytes() []byte
}

func toBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case nil:
		return new(big.Int), nil
	case BigIntCodec:
		return v.BigInt(), nil
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("non-integral number %v: %w", v, ErrInvalidValue)
		}
		out, _ := new(big.Float).SetFloat64(v).Int(nil)
		return out, nil
	case json.Number:
		return parseBigInt(string(v))
	case string:
		return parseBigInt(v)
	case bool:
		if v {
			return big.NewInt(1), nil
		}
		return new(big.Int), nil
	}
	return nil, fmt.Errorf("%T is not a number: %w", value, ErrInvalidValue)
}

// parseBigInt accepts decimal strings (with optional thousands separators)
// and big-endian 0x hex.
func parseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if len(s) == 2 {
			return new(big.Int), nil
		}
		out, ok := new(big.Int).SetString(s[2:], 16)
		if !ok {
			return nil, fmt.Errorf("hex number %q: %w", s, ErrInvalidValue)
		}
		return out, nil
	}
	out, ok := new(big.Int).SetString(strings.ReplaceAll(s, ",", ""), 10)
	if !ok {
		return nil, fmt.Errorf("number %q: %w", s, ErrInvalidValue)
	}
	return out, nil
}

func toBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return []byte{}, nil
	case BytesCodec:
		return v.Bytes(), nil
	case *Text:
		return []byte(v.Value()), nil
	case []byte:
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	case string:
		if strings.HasPrefix(v, "0x") {
			if out, err := hexutil.Decode(v); err == nil {
				return out, nil
			}
		}
		return []byte(v), nil
	case Codec:
		return v.Encode(), nil
	}
	items, err := toSlice(value)
	if err != nil {
		return nil, fmt.Errorf("%T is not a byte string: %w", value, ErrInvalidValue)
	}
	out := make([]byte, len(items))
	for i, item := range items {
		n, err := toBigInt(item)
		if err != nil || !n.IsUint64() || n.Uint64() > 0xff {
			return nil, fmt.Errorf("byte %d: %w", i, ErrInvalidValue)
		}
		out[i] = byte(n.Uint64())
	}
	return out, nil
}

// toSlice converts any Go slice or array, or a sequence codec, to a list.
func toSlice(value interface{}) ([]interface{}, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		return v, nil
	case interface{ Items() []Codec }:
		items := v.Items()
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out, nil
	case string, []byte:
		return nil, fmt.Errorf("%T is not a list: %w", value, ErrInvalidValue)
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%T is not a list: %w", value, ErrInvalidValue)
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// toMap converts string-keyed Go maps to map[string]interface{}.
func toMap(value interface{}) (map[string]interface{}, bool) {
	if m, ok := value.(map[string]interface{}); ok {
		return m, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// lookupField finds name in m, trying the lower-first and upper-first forms.
func lookupField(m map[string]interface{}, name string) (interface{}, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	for _, alt := range []string{lowerFirst(name), upperFirst(name)} {
		if v, ok := m[alt]; ok {
			return v, true
		}
	}
	return nil, false
}

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

// formatNumber renders n with thousands separators.
func formatNumber(n *big.Int) string {
	s := new(big.Int).Abs(n).String()
	var b strings.Builder
	if n.Sign() < 0 {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
