package decorate

import (
	"strings"
	"testing"

	"github.com/Polkadex-Substrate/go-scale/codec"
	"github.com/Polkadex-Substrate/go-scale/hasher"
	"github.com/Polkadex-Substrate/go-scale/metadata"
	"github.com/Polkadex-Substrate/go-scale/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type obj = map[string]interface{}
type list = []interface{}

func sampleV13() obj {
	return obj{
		"modules": list{
			obj{
				"name": "System",
				"storage": obj{
					"prefix": "System",
					"items": list{
						obj{
							"name":     "Account",
							"modifier": "Default",
							"type": obj{"Map": obj{
								"hasher": "Blake2_128Concat",
								"key":    "AccountId",
								"value":  "u32",
							}},
							"fallback": "0x00000000",
						},
						obj{
							"name":     "Number",
							"modifier": "Default",
							"type":     obj{"Plain": "BlockNumber"},
							"fallback": "0x00000000",
						},
						obj{
							"name":     "Digest",
							"modifier": "Optional",
							"type":     obj{"Plain": "Bytes"},
						},
						obj{
							"name":     "Approvals",
							"modifier": "Default",
							"type": obj{"NMap": obj{
								"keyVec":  list{"u32", "AccountId"},
								"hashers": list{"Twox64Concat", "Blake2_128"},
								"value":   "bool",
							}},
							"fallback": "0x00",
						},
					},
				},
				"calls": list{
					obj{"name": "remark", "args": list{obj{"name": "_remark", "type": "Bytes"}}},
					obj{"name": "set_info", "args": list{obj{"name": "info", "type": "DispatchInfo"}}},
				},
				"events": list{
					obj{"name": "ExtrinsicSuccess", "args": list{"DispatchInfo"}},
				},
				"constants": list{
					obj{"name": "BlockHashCount", "type": "BlockNumber", "value": "0x60090000"},
				},
				"errors": list{
					obj{"name": "InvalidSpecName"},
					obj{"name": "SpecVersionNeedsToIncrease"},
				},
				"index": 0,
			},
			obj{
				"name": "Balances",
				"storage": obj{
					"prefix": "Balances",
					"items": list{
						obj{
							"name":     "TotalIssuance",
							"modifier": "Default",
							"type":     obj{"Plain": "Balance"},
							"fallback": "0x" + strings.Repeat("00", 16),
						},
					},
				},
				"calls": list{
					obj{"name": "transfer", "args": list{
						obj{"name": "dest", "type": "AccountId"},
						obj{"name": "value", "type": "Compact<Balance>"},
					}},
					obj{"name": "transfer_keep_alive", "args": list{
						obj{"name": "dest", "type": "AccountId"},
						obj{"name": "value", "type": "Compact<Balance>"},
					}},
				},
				"events": list{
					obj{"name": "Transfer", "args": list{"AccountId", "AccountId", "Balance"}},
				},
				"constants": list{
					obj{"name": "ExistentialDeposit", "type": "Balance", "value": "0xe8030000000000000000000000000000"},
				},
				"errors": list{obj{"name": "InsufficientBalance"}},
				"index": 5,
			},
		},
		"extrinsic": obj{"version": 4},
	}
}

func decorated(t *testing.T) (*registry.Registry, *Decorated) {
	t.Helper()
	reg := registry.New()
	md, err := metadata.New(reg, 13, sampleV13())
	require.NoError(t, err)
	d, err := New(reg, md)
	require.NoError(t, err)
	return reg, d
}

func TestNames(t *testing.T) {
	assert.Equal(t, "system", camelCase("System"))
	assert.Equal(t, "technicalCommittee", camelCase("TechnicalCommittee"))
	assert.Equal(t, "transferKeepAlive", camelCase("transfer_keep_alive"))
	assert.Equal(t, "remark", camelCase("_remark"))
	assert.Equal(t, "", camelCase(""))
}

func TestSections(t *testing.T) {
	_, d := decorated(t)
	assert.Contains(t, d.Storage, "system")
	assert.Contains(t, d.Storage["system"], "account")
	assert.Contains(t, d.Tx["balances"], "transferKeepAlive")
	assert.Contains(t, d.Events["balances"], "Transfer")
	assert.Contains(t, d.Errors["system"], "InvalidSpecName")
	assert.Contains(t, d.Consts["balances"], "existentialDeposit")
	assert.Equal(t, 13, d.Metadata().Version())
	assert.Len(t, d.Latest().Modules, 2)
}

func TestStoragePrefix(t *testing.T) {
	_, d := decorated(t)
	assert.Equal(t, "26aa394eea5630e07c48ae0c9558cef7b99d880ec681799c0cf30e8886371da9",
		common.Bytes2Hex(d.Storage["system"]["account"].Prefix()))

	key, err := d.Storage["system"]["number"].Key()
	require.NoError(t, err)
	assert.Equal(t, "26aa394eea5630e07c48ae0c9558cef702a5c1b19ab7a04f536c519aca4983ac", common.Bytes2Hex(key))

	key, err = d.Storage["balances"]["totalIssuance"].Key()
	require.NoError(t, err)
	assert.Equal(t, "c2261276cc9d1f8598ea4b6a74b15c2f57c875e4cff74148e4628f264b974c80", common.Bytes2Hex(key))

	_, err = d.Storage["system"]["number"].Key(1)
	assert.ErrorIs(t, err, ErrKeyArgs)
}

func TestStorageMapKey(t *testing.T) {
	_, d := decorated(t)
	entry := d.Storage["system"]["account"]
	account := common.Hex2Bytes(strings.Repeat("01", 32))

	key, err := entry.Key(account)
	require.NoError(t, err)
	require.Len(t, key, 32+16+32)
	assert.Equal(t, entry.Prefix(), key[:32])
	assert.Equal(t, hasher.Blake2b128(account), key[32:48])
	assert.Equal(t, account, key[48:])

	keys, err := entry.DecodeKey(key)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, account, keys[0].Encode())

	_, err = entry.DecodeKey(append(key, 0))
	assert.ErrorIs(t, err, ErrKeyTooLong)
	_, err = entry.DecodeKey(key[:40])
	assert.Error(t, err)
	_, err = d.Storage["system"]["number"].DecodeKey(key)
	assert.ErrorIs(t, err, ErrKeyPrefix)
}

func TestStorageNMapKey(t *testing.T) {
	_, d := decorated(t)
	entry := d.Storage["system"]["approvals"]
	assert.Equal(t, metadata.NMap, entry.Meta.Type.Kind)

	partial, err := entry.Key(7)
	require.NoError(t, err)
	assert.Equal(t, hasher.Twox64Concat.Hash([]byte{7, 0, 0, 0}), partial[32:])

	full, err := entry.Key(7, strings.Repeat("02", 32))
	require.NoError(t, err)
	assert.Equal(t, partial, full[:len(partial)])
	assert.Len(t, full, len(partial)+16)

	_, err = entry.DecodeKey(full)
	assert.ErrorIs(t, err, ErrOpaqueKey)

	_, err = entry.Key(1, 2, 3)
	assert.ErrorIs(t, err, ErrKeyArgs)
}

func TestStorageValues(t *testing.T) {
	_, d := decorated(t)
	account := d.Storage["system"]["account"]

	v, err := account.DecodeValue(nil, false)
	require.NoError(t, err)
	assert.True(t, v.Eq(0))
	v, err = account.DecodeValue(common.Hex2Bytes("05000000"), true)
	require.NoError(t, err)
	assert.True(t, v.Eq(5))

	digest := d.Storage["system"]["digest"]
	v, err = digest.DecodeValue(nil, false)
	require.NoError(t, err)
	assert.True(t, v.(*codec.Option).IsNone())
	v, err = digest.DecodeValue(common.Hex2Bytes("08abcd"), true)
	require.NoError(t, err)
	inner, ok := v.(*codec.Option).Unwrap()
	require.True(t, ok)
	assert.Equal(t, "0xabcd", inner.ToJSON())

	fallback, err := digest.Fallback()
	require.NoError(t, err)
	assert.True(t, fallback.IsEmpty())

	_, err = account.DecodeValue(common.Hex2Bytes("05"), true)
	assert.Error(t, err)
}

func TestCalls(t *testing.T) {
	_, d := decorated(t)
	transfer := d.Tx["balances"]["transfer"]
	assert.Equal(t, [2]byte{5, 0}, transfer.Index)
	assert.Equal(t, [2]byte{5, 1}, d.Tx["balances"]["transferKeepAlive"].Index)
	assert.Equal(t, [2]byte{0, 0}, d.Tx["system"]["remark"].Index)

	dest := "0x" + strings.Repeat("01", 32)
	data, err := transfer.Encode(dest, 12345)
	require.NoError(t, err)
	assert.Equal(t, "0500"+strings.Repeat("01", 32)+"e5c0", common.Bytes2Hex(data))

	byName, err := transfer.Encode(map[string]interface{}{"dest": dest, "value": 12345})
	require.NoError(t, err)
	assert.Equal(t, data, byName)

	call, err := d.DecodeCall(data)
	require.NoError(t, err)
	assert.Equal(t, "balances", call.Section())
	assert.Equal(t, "transfer", call.Method())
	value, ok := call.Arg("value")
	require.True(t, ok)
	assert.True(t, value.Eq(12345))

	remark, err := d.Tx["system"]["remark"].Encode("0x010203")
	require.NoError(t, err)
	assert.Equal(t, "00000c010203", common.Bytes2Hex(remark))

	_, err = transfer.Encode(dest)
	assert.Error(t, err)
	_, err = d.DecodeCall(common.Hex2Bytes("0900"))
	assert.ErrorIs(t, err, ErrUnknownCall)
}

func TestSingleStructArg(t *testing.T) {
	_, d := decorated(t)
	setInfo := d.Tx["system"]["setInfo"]
	require.NotNil(t, setInfo)
	assert.Equal(t, [2]byte{0, 1}, setInfo.Index)

	info := map[string]interface{}{"weight": 5, "class": "Operational", "paysFee": "No"}
	want := "0001" + "0500000000000000" + "01" + "01"
	data, err := setInfo.Encode(info)
	require.NoError(t, err)
	assert.Equal(t, want, common.Bytes2Hex(data))

	named, err := setInfo.Encode(map[string]interface{}{"info": info})
	require.NoError(t, err)
	assert.Equal(t, want, common.Bytes2Hex(named))

	_, err = d.Tx["balances"]["transfer"].Encode(map[string]interface{}{"dest": "0x" + strings.Repeat("01", 32), "amount": 1})
	assert.ErrorIs(t, err, codec.ErrInvalidValue)
}

func TestCallByName(t *testing.T) {
	reg, d := decorated(t)
	def, err := d.CallByName("Balances", "transfer_keep_alive")
	require.NoError(t, err)
	assert.Equal(t, [2]byte{5, 1}, def.Index)

	_, err = d.CallByName("balances", "burn")
	assert.ErrorIs(t, err, ErrUnknownCall)

	call, err := reg.CreateType("Call", map[string]interface{}{
		"section": "system",
		"method":  "remark",
		"args":    map[string]interface{}{"remark": "0x01"},
	})
	require.NoError(t, err)
	assert.Equal(t, "00000401", common.Bytes2Hex(call.Encode()))
}

func TestEvents(t *testing.T) {
	_, d := decorated(t)
	data := common.Hex2Bytes("08" +
		"0001000000" + "0000" + "e803000000000000" + "00" + "00" + "00" +
		"01" + "0502" + strings.Repeat("01", 32) + strings.Repeat("02", 32) + "0a000000000000000000000000000000" + "00")

	_, err := d.DecodeEvents(data)
	assert.ErrorIs(t, err, ErrUnknownEvent)

	data[len(data)-1-16-64-1] = 0x00
	records, err := d.DecodeEvents(data)
	require.NoError(t, err)
	require.Len(t, records, 2)

	success := records[0].MustGet("event").(*codec.Event)
	assert.True(t, d.Events["system"]["ExtrinsicSuccess"].Is(success))
	assert.False(t, d.Events["balances"]["Transfer"].Is(success))

	transfer := records[1].MustGet("event").(*codec.Event)
	assert.Equal(t, "balances", transfer.Section())
	assert.Equal(t, "Transfer", transfer.Method())
	require.Len(t, transfer.Data(), 3)
	assert.True(t, transfer.Data()[2].Eq(10))
	assert.True(t, records[1].MustGet("phase").Eq("Finalization"))
}

func TestErrors(t *testing.T) {
	reg, d := decorated(t)
	def, err := d.FindError(5, 0)
	require.NoError(t, err)
	assert.Equal(t, "balances", def.Section)
	assert.Equal(t, "InsufficientBalance", def.Name)

	def, err = d.FindError(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "SpecVersionNeedsToIncrease", def.Name)

	_, err = d.FindError(1, 0)
	assert.ErrorIs(t, err, ErrUnknownError)

	dispatch, err := reg.DecodeType("DispatchError", common.Hex2Bytes("030500"))
	require.NoError(t, err)
	def, err = d.FindDispatchError(dispatch)
	require.NoError(t, err)
	assert.Equal(t, "InsufficientBalance", def.Name)

	other, err := reg.DecodeType("DispatchError", common.Hex2Bytes("02"))
	require.NoError(t, err)
	_, err = d.FindDispatchError(other)
	assert.ErrorIs(t, err, ErrUnknownError)

	require.NoError(t, reg.LoadYAML(strings.NewReader(`types:
  LegacyModuleError:
    index: u8
    reason: u8
  LegacyDispatchError:
    _enum:
      Other: Null
      Module: LegacyModuleError
`)))
	legacy, err := reg.DecodeType("LegacyDispatchError", common.Hex2Bytes("010500"))
	require.NoError(t, err)
	_, err = d.FindDispatchError(legacy)
	assert.ErrorIs(t, err, ErrUnknownError)
}

func TestConstants(t *testing.T) {
	_, d := decorated(t)
	c := d.Consts["system"]["blockHashCount"]
	v, err := c.Value()
	require.NoError(t, err)
	assert.True(t, v.Eq(2400))
	again, err := c.Value()
	require.NoError(t, err)
	assert.Same(t, v, again)

	deposit, err := d.Consts["balances"]["existentialDeposit"].Value()
	require.NoError(t, err)
	assert.Equal(t, "1000", deposit.String())
}

func TestPositionalIndices(t *testing.T) {
	reg := registry.New()
	v12 := obj{
		"modules": list{
			obj{"name": "System", "calls": list{obj{"name": "remark"}}, "events": list{obj{"name": "Remarked"}},
				"errors": list{obj{"name": "A"}}, "index": 255},
			obj{"name": "Timestamp", "calls": list{obj{"name": "set"}}, "index": 255},
			obj{"name": "Indices", "errors": list{obj{"name": "B"}}, "index": 255},
			obj{"name": "Balances", "calls": list{obj{"name": "transfer"}}, "events": list{obj{"name": "Transfer"}},
				"errors": list{obj{"name": "C"}}, "index": 255},
		},
	}
	md, err := metadata.New(reg, 12, v12)
	require.NoError(t, err)
	d, err := New(reg, md)
	require.NoError(t, err)

	assert.Equal(t, [2]byte{1, 0}, d.Tx["timestamp"]["set"].Index)
	assert.Equal(t, [2]byte{2, 0}, d.Tx["balances"]["transfer"].Index)
	assert.Equal(t, [2]byte{1, 0}, d.Events["balances"]["Transfer"].Index)
	assert.Equal(t, [2]byte{2, 0}, d.Errors["indices"]["B"].Index)
	assert.Equal(t, [2]byte{3, 0}, d.Errors["balances"]["C"].Index)
	assert.NotContains(t, d.Tx, "indices")
}
