package metadata

import (
	"testing"

	"github.com/Polkadex-Substrate/go-scale/codec"
	"github.com/Polkadex-Substrate/go-scale/hasher"
	"github.com/Polkadex-Substrate/go-scale/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type obj = map[string]interface{}
type list = []interface{}

func sampleV9() obj {
	return obj{
		"modules": list{
			obj{
				"name": "System",
				"storage": obj{
					"prefix": "System",
					"items": list{
						obj{
							"name":     "Number",
							"modifier": "Default",
							"type":     obj{"Plain": "BlockNumber"},
							"fallback": "0x00000000",
							"docs":     list{" The current block number."},
						},
						obj{
							"name":     "Account",
							"modifier": "Default",
							"type": obj{"Map": obj{
								"hasher": "Blake2_256",
								"key":    "AccountId",
								"value":  "u32",
								"linked": true,
							}},
							"fallback": "0x00000000",
						},
						obj{
							"name":     "EventTopics",
							"modifier": "Optional",
							"type": obj{"DoubleMap": obj{
								"hasher":     "Blake2_256",
								"key1":       "()",
								"key2":       "Hash",
								"value":      "Vec<(BlockNumber,u32)>",
								"key2Hasher": "Twox64Concat",
							}},
						},
					},
				},
				"calls": list{
					obj{"name": "remark", "args": list{obj{"name": "_remark", "type": "Vec<u8>"}}},
				},
				"events": list{
					obj{"name": "ExtrinsicSuccess", "args": list{"DispatchInfo"}},
				},
				"constants": list{
					obj{"name": "BlockHashCount", "type": "BlockNumber", "value": "0x60090000"},
				},
				"errors": list{obj{"name": "InvalidSpecName"}},
			},
			obj{
				"name":  "Timestamp",
				"calls": list{},
			},
		},
	}
}

func TestNewEncodeDecode(t *testing.T) {
	reg := registry.New()
	md, err := New(reg, 9, sampleV9())
	require.NoError(t, err)
	assert.Equal(t, 9, md.Version())
	assert.Same(t, reg, md.Registry())

	data := md.Encode()
	assert.Equal(t, "6d65746109", common.Bytes2Hex(data[:5]))

	decoded, err := Decode(reg, data)
	require.NoError(t, err)
	assert.Equal(t, 9, decoded.Version())
	assert.Equal(t, data, decoded.Encode())

	fromHex, err := DecodeHex(reg, "0x"+common.Bytes2Hex(data))
	require.NoError(t, err)
	assert.Equal(t, data, fromHex.Encode())

	doc := decoded.ToJSON()
	assert.Equal(t, MagicNumber, doc["magicNumber"])
	assert.Contains(t, doc["metadata"], "v9")
}

func TestMigrateToLatest(t *testing.T) {
	reg := registry.New()
	md, err := New(reg, 9, sampleV9())
	require.NoError(t, err)

	v11, err := md.AsVersion(11)
	require.NoError(t, err)
	assert.Equal(t, obj{"version": uint64(0), "signedExtensions": list{}}, v11.MustGet("extrinsic").ToJSON())

	v13, err := md.AsVersion(13)
	require.NoError(t, err)
	again, err := md.AsVersion(13)
	require.NoError(t, err)
	assert.Same(t, v13, again)

	module := v13.MustGet("modules").(*codec.Vec).Index(0).(*codec.Struct)
	assert.Equal(t, uint64(notIndexed), module.MustGet("index").ToJSON())
	storage, ok := module.MustGet("storage").(*codec.Option).Unwrap()
	require.True(t, ok)
	account := storage.(*codec.Struct).MustGet("items").(*codec.Vec).Index(1).(*codec.Struct)
	typ := account.MustGet("type").(*codec.Enum)
	assert.Equal(t, "Map", typ.Name())
	unused, found := typ.Value().(*codec.Struct).Get("unused")
	require.True(t, found)
	assert.Equal(t, true, unused.ToJSON())

	encoded, err := md.EncodeVersion(13)
	require.NoError(t, err)
	decoded, err := Decode(reg, encoded)
	require.NoError(t, err)
	assert.Equal(t, 13, decoded.Version())
	assert.Equal(t, encoded, decoded.Encode())
}

func TestAsLatest(t *testing.T) {
	md, err := New(registry.New(), 9, sampleV9())
	require.NoError(t, err)
	latest, err := md.AsLatest()
	require.NoError(t, err)
	again, err := md.AsLatest()
	require.NoError(t, err)
	assert.Same(t, latest, again)

	require.Len(t, latest.Modules, 2)
	system := latest.Modules[0]
	assert.Equal(t, "System", system.Name)
	assert.False(t, system.IsIndexed())
	assert.True(t, system.HasCalls())
	assert.True(t, system.HasEvents())
	require.NotNil(t, system.Storage)
	assert.Equal(t, "System", system.Storage.Prefix)

	items := system.Storage.Items
	require.Len(t, items, 3)
	assert.Equal(t, StorageEntryType{Kind: Plain, Value: "BlockNumber"}, items[0].Type)
	assert.Equal(t, []string{" The current block number."}, items[0].Docs)
	assert.Equal(t, StorageEntryType{
		Kind:    Map,
		Hashers: []hasher.Hasher{hasher.Blake2_256},
		Keys:    []string{"AccountId"},
		Value:   "u32",
	}, items[1].Type)
	assert.Equal(t, DoubleMap, items[2].Type.Kind)
	assert.Equal(t, []hasher.Hasher{hasher.Blake2_256, hasher.Twox64Concat}, items[2].Type.Hashers)
	assert.True(t, items[2].IsOptional())
	assert.Equal(t, []byte{0, 0, 0, 0}, []byte(items[0].Fallback))

	assert.Equal(t, []FunctionArgumentMetadata{{Name: "_remark", Type: "Vec<u8>"}}, system.Calls[0].Args)
	assert.Equal(t, []string{"DispatchInfo"}, system.Events[0].Args)
	assert.Equal(t, common.Hex2Bytes("60090000"), []byte(system.Constants[0].Value))
	assert.Equal(t, "InvalidSpecName", system.Errors[0].Name)

	timestamp := latest.Modules[1]
	assert.Nil(t, timestamp.Storage)
	assert.True(t, timestamp.HasCalls())
	assert.Empty(t, timestamp.Calls)
	assert.False(t, timestamp.HasEvents())

	assert.Equal(t, uint8(0), latest.Extrinsic.Version)
}

func TestDecodeMinimal(t *testing.T) {
	reg := registry.New()
	md, err := Decode(reg, common.Hex2Bytes("6d657461"+"0d"+"00"+"04"+"04"+"1c436865636b4964"))
	require.NoError(t, err)
	latest, err := md.AsLatest()
	require.NoError(t, err)
	assert.Empty(t, latest.Modules)
	assert.Equal(t, uint8(4), latest.Extrinsic.Version)
	assert.Equal(t, []string{"CheckId"}, latest.Extrinsic.SignedExtensions)

	// trailing bytes are tolerated
	_, err = Decode(reg, common.Hex2Bytes("6d657461"+"0c"+"00"+"04"+"00"+"ff"))
	assert.NoError(t, err)
}

func TestDecodeErrors(t *testing.T) {
	reg := registry.New()
	_, err := Decode(reg, common.Hex2Bytes("6d6574620d000400"))
	assert.ErrorIs(t, err, ErrInvalidMagic)

	_, err = Decode(reg, common.Hex2Bytes("6d65746108"))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
	_, err = Decode(reg, common.Hex2Bytes("6d6574610e"))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Decode(reg, common.Hex2Bytes("6d65"))
	assert.Error(t, err)
	_, err = Decode(reg, common.Hex2Bytes("6d6574610d04"))
	assert.Error(t, err)

	_, err = DecodeHex(reg, "not hex")
	assert.Error(t, err)

	_, err = New(reg, 8, nil)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestCustomMetadataAll(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register("MetadataAll", "u32"))
	_, err := Decode(reg, common.Hex2Bytes("6d6574610d000000"))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestNoDowngrade(t *testing.T) {
	md, err := New(registry.New(), 12, nil)
	require.NoError(t, err)
	_, err = md.AsVersion(11)
	assert.ErrorIs(t, err, ErrDowngrade)
	_, err = md.AsVersion(14)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
	_, err = md.EncodeVersion(9)
	assert.ErrorIs(t, err, ErrDowngrade)

	v13, err := md.AsVersion(13)
	require.NoError(t, err)
	assert.Equal(t, "00"+"0000", common.Bytes2Hex(v13.Encode()))
}

func TestRegisterIdempotent(t *testing.T) {
	reg := registry.New()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
	assert.True(t, reg.HasType("MetadataV13"))
	assert.True(t, reg.HasType("MetadataLatest"))
}
