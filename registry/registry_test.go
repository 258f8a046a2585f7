package registry

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Polkadex-Substrate/go-scale/codec"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeHex(t *testing.T, r *Registry, typ string, value interface{}) string {
	t.Helper()
	c, err := r.CreateType(typ, value)
	require.NoError(t, err)
	return common.Bytes2Hex(c.Encode())
}

func TestBaseTypes(t *testing.T) {
	r := New()
	for _, name := range []string{"bool", "u8", "u128", "i256", "Text", "Bytes", "H256", "Hash", "AccountId", "Balance",
		"BlockNumber", "Phase", "EventRecord", "DispatchError", "ModuleError", "Call", "Event"} {
		assert.True(t, r.HasType(name), name)
	}

	def, ok := r.Definition("Balance")
	require.True(t, ok)
	assert.Equal(t, "u128", def)
	def, ok = r.Definition("Pays")
	require.True(t, ok)
	assert.Equal(t, `{"_enum":["Yes","No"]}`, def)

	assert.Equal(t, "05000000000000000000000000000000", encodeHex(t, r, "Balance", 5))
	assert.Equal(t, strings.Repeat("00", 32), encodeHex(t, r, "AccountId", nil))
	assert.Equal(t, "01", encodeHex(t, r, "Pays", "No"))
}

func TestCreateClass(t *testing.T) {
	r := New()

	bytesClass, err := r.CreateClass("Vec<u8>")
	require.NoError(t, err)
	assert.Equal(t, "Bytes", bytesClass.RawType())

	fixed, err := r.CreateClass("[u8; 4]")
	require.NoError(t, err)
	assert.IsType(t, &codec.U8aFixedClass{}, fixed)

	a, err := r.CreateClass("Vec<u32>")
	require.NoError(t, err)
	b, err := r.CreateClass("Vec< u32 >")
	require.NoError(t, err)
	assert.Same(t, a, b)

	cls, err := r.CreateClass("Option<Compact<Balance>>")
	require.NoError(t, err)
	assert.Equal(t, "Option<Compact<Balance>>", cls.RawType())
	assert.Equal(t, "0114", encodeHex(t, r, "Option<Compact<Balance>>", 5))

	assert.Equal(t, "0800010102", encodeHex(t, r, "BTreeMap<u8,u8>", map[string]interface{}{"1": 2, "0": 1}))
	assert.Equal(t, "0100", encodeHex(t, r, "(u8,Option<bool>)", []interface{}{1, nil}))
	assert.Equal(t, "0a", encodeHex(t, r, "UInt<8, Tiny>", 10))
	assert.Equal(t, "01020304", encodeHex(t, r, "[u16;2]", []int{0x201, 0x403}))
}

func TestUnknownType(t *testing.T) {
	r := New()
	_, err := r.CreateClass("Vec<NotAType>")
	assert.ErrorIs(t, err, ErrUnknownType)
	_, err = r.CreateType("NotAType", nil)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestRegisterStruct(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("Point", `{"x": "u32", "y": "u32"}`))
	assert.Equal(t, "0100000002000000", encodeHex(t, r, "Point", map[string]interface{}{"x": 1, "y": 2}))

	v, err := r.DecodeType("Point", common.Hex2Bytes("0100000002000000"))
	require.NoError(t, err)
	assert.Equal(t, `{"x":1,"y":2}`, v.String())

	_, err = r.DecodeType("Point", common.Hex2Bytes("010000000200000000"))
	assert.ErrorIs(t, err, codec.ErrTrailingBytes)
}

func TestRecursiveType(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("Tree", `{"value": "u8", "children": "Vec<Tree>"}`))
	value := map[string]interface{}{
		"value":    1,
		"children": []interface{}{map[string]interface{}{"value": 2}},
	}
	assert.Equal(t, "01040200", encodeHex(t, r, "Tree", value))

	v, err := r.DecodeType("Tree", common.Hex2Bytes("01040200"))
	require.NoError(t, err)
	assert.Equal(t, `{"value":1,"children":[{"children":[],"value":2}]}`, v.String())
}

func TestSelfAlias(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("Loop", "Loop"))
	_, err := r.CreateType("Loop", nil)
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestMutualAlias(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterTypes(map[string]interface{}{"Ping": "Pong", "Pong": "Ping"}))

	_, err := r.DecodeType("Vec<Ping>", []byte{4, 1})
	assert.ErrorIs(t, err, ErrInvalidDefinition)
	_, err = r.CreateType("Pong", 1)
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	// an alias chain ending in a concrete type still resolves
	require.NoError(t, r.Register("Pong", "u8"))
	assert.Equal(t, "0401", encodeHex(t, r, "Vec<Ping>", []int{1}))
}

func TestRedefineDropsCache(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("Amount", "u8"))
	assert.Equal(t, "05", encodeHex(t, r, "Vec<Amount>", []int{5})[2:])

	require.NoError(t, r.Register("Amount", "u16"))
	assert.Equal(t, "0500", encodeHex(t, r, "Vec<Amount>", []int{5})[2:])
}

func TestRegisterErrors(t *testing.T) {
	r := New()
	assert.ErrorIs(t, r.Register("Bad", 42), ErrInvalidDefinition)
	assert.Error(t, r.Register("Bad", "Vec<u8"))
	assert.False(t, r.HasType("Bad"))
}

func TestRegisterTypesAndClass(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterTypes(map[string]interface{}{
		"Nonce":  "u64",
		"Flag":   codec.NewSetClass(8, []codec.SetValue{{Name: "A", Bit: 1}}),
		"Status": `{"_enum": {"Active": 0, "Retired": 7}}`,
	}))
	assert.Equal(t, "0100000000000000", encodeHex(t, r, "Nonce", 1))
	assert.Equal(t, "01", encodeHex(t, r, "Flag", []string{"A"}))
	assert.Equal(t, "07", encodeHex(t, r, "Status", "Retired"))
}

func TestLoadYAML(t *testing.T) {
	bundle := `
types:
  Nonce: u64
  Account:
    nonce: Nonce
    free: Balance
    _alias:
      free: freeBalance
  Kind:
    _enum: [A, B]
  Perm:
    _set:
      _bitLength: 16
      Read: 1
      Write: 256
`
	r := New()
	require.NoError(t, r.LoadYAML(strings.NewReader(bundle)))
	assert.Equal(t, "0100000000000000"+"02000000000000000000000000000000",
		encodeHex(t, r, "Account", map[string]interface{}{"nonce": 1, "freeBalance": 2}))
	assert.Equal(t, "01", encodeHex(t, r, "Kind", "B"))
	assert.Equal(t, "0101", encodeHex(t, r, "Perm", []string{"Read", "Write"}))

	flat := New()
	require.NoError(t, flat.LoadYAML(strings.NewReader("Nonce: u32\n")))
	assert.Equal(t, "01000000", encodeHex(t, flat, "Nonce", 1))

	assert.Error(t, New().LoadYAML(strings.NewReader("types: [a, b]")))
}

func TestDispatchError(t *testing.T) {
	r := New()
	v, err := r.DecodeType("DispatchError", common.Hex2Bytes("030502"))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"module": map[string]interface{}{"index": uint64(5), "error": uint64(2)}}, v.ToJSON())

	assert.Equal(t, "0601", encodeHex(t, r, "DispatchError", map[string]interface{}{"Token": "WouldDie"}))
	assert.Equal(t, "00", encodeHex(t, r, "DispatchResult", map[string]interface{}{"Ok": nil}))
}

type eventResolver struct{}

func (eventResolver) CallByIndex(index [2]byte) (*codec.CallDef, error) {
	return nil, fmt.Errorf("call %x: %w", index, codec.ErrUnknownVariant)
}

func (eventResolver) CallByName(section, method string) (*codec.CallDef, error) {
	return nil, fmt.Errorf("call %s.%s: %w", section, method, codec.ErrUnknownVariant)
}

func (eventResolver) EventByIndex(index [2]byte) (*codec.EventDef, error) {
	if index != [2]byte{0, 0} {
		return nil, fmt.Errorf("event %x: %w", index, codec.ErrUnknownVariant)
	}
	return &codec.EventDef{Section: "system", Method: "Remarked", Args: []codec.Class{codec.NewUIntClass(32)}}, nil
}

func TestEventRecords(t *testing.T) {
	r := New()
	data := common.Hex2Bytes("04" + "0001000000" + "0000" + "05000000" + "00")

	_, err := r.DecodeType("Vec<EventRecord>", data)
	assert.ErrorIs(t, err, codec.ErrNoResolver)

	r.SetResolver(eventResolver{})
	v, err := r.DecodeType("Vec<EventRecord>", data)
	require.NoError(t, err)
	records := v.(*codec.Vec).Items()
	require.Len(t, records, 1)
	record := records[0].(*codec.Struct)
	event := record.MustGet("event").(*codec.Event)
	assert.Equal(t, "Remarked", event.Method())
	assert.True(t, record.MustGet("phase").Eq(map[string]interface{}{"ApplyExtrinsic": 1}))
}

func TestConcurrentCreateClass(t *testing.T) {
	r := New()
	types := []string{"Vec<Balance>", "Option<Phase>", "DispatchInfo", "(u8,u16)", "BTreeMap<Text,u32>"}
	var wg sync.WaitGroup
	errs := make(chan error, 10*len(types))
	for i := 0; i < 10; i++ {
		for _, typ := range types {
			wg.Add(1)
			go func(typ string) {
				defer wg.Done()
				if _, err := r.CreateType(typ, nil); err != nil {
					errs <- err
				}
			}(typ)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
}
