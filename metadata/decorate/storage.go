package decorate

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Polkadex-Substrate/go-scale/codec"
	"github.com/Polkadex-Substrate/go-scale/hasher"
	"github.com/Polkadex-Substrate/go-scale/metadata"
	"github.com/Polkadex-Substrate/go-scale/registry"
	"github.com/Polkadex-Substrate/go-scale/scale"
)

var (
	ErrKeyArgs    = errors.New("wrong number of storage key arguments")
	ErrKeyPrefix  = errors.New("storage key does not belong to entry")
	ErrOpaqueKey  = errors.New("storage key hasher is not reversible")
	ErrKeyTooLong = errors.New("storage key has trailing bytes")
)

// StorageEntry builds and reads keys of one storage item. Keys are
// twox128(prefix) ++ twox128(name) followed by each argument hashed with
// its hasher.
type StorageEntry struct {
	Section string
	Method  string
	Meta    metadata.StorageEntryMetadata

	reg    *registry.Registry
	prefix []byte
}

func newStorageEntry(reg *registry.Registry, section, modulePrefix string, meta metadata.StorageEntryMetadata) *StorageEntry {
	prefix := hasher.Twox128.Hash([]byte(modulePrefix))
	prefix = append(prefix, hasher.Twox128.Hash([]byte(meta.Name))...)
	return &StorageEntry{
		Section: section,
		Method:  lowerFirst(meta.Name),
		Meta:    meta,
		reg:     reg,
		prefix:  prefix,
	}
}

// Prefix returns the 32-byte key prefix shared by every key of the entry.
func (e *StorageEntry) Prefix() []byte {
	out := make([]byte, len(e.prefix))
	copy(out, e.prefix)
	return out
}

// Key returns the storage key for args. Fewer arguments than the entry has
// keys give the prefix for iterating the remaining ones.
func (e *StorageEntry) Key(args ...interface{}) ([]byte, error) {
	keys := e.Meta.Type.Keys
	if len(args) > len(keys) {
		return nil, fmt.Errorf("%s.%s takes %d keys, got %d: %w", e.Section, e.Method, len(keys), len(args), ErrKeyArgs)
	}
	out := e.Prefix()
	for i, arg := range args {
		cls, err := e.reg.CreateClass(keys[i])
		if err != nil {
			return nil, err
		}
		v, err := cls.New(arg)
		if err != nil {
			return nil, fmt.Errorf("%s.%s key %d: %w", e.Section, e.Method, i, err)
		}
		out = append(out, e.Meta.Type.Hashers[i].Hash(v.Encode())...)
	}
	return out, nil
}

// DecodeKey recovers the key arguments from a full storage key. Only keys
// hashed with a concat hasher can be recovered.
func (e *StorageEntry) DecodeKey(key []byte) ([]codec.Codec, error) {
	if !bytes.HasPrefix(key, e.prefix) {
		return nil, fmt.Errorf("%s.%s: %w", e.Section, e.Method, ErrKeyPrefix)
	}
	r := scale.NewReader(key[len(e.prefix):])
	out := make([]codec.Codec, len(e.Meta.Type.Keys))
	for i, typ := range e.Meta.Type.Keys {
		h := e.Meta.Type.Hashers[i]
		if !h.IsConcat() {
			return nil, fmt.Errorf("%s.%s key %d hashed with %s: %w", e.Section, e.Method, i, h, ErrOpaqueKey)
		}
		if _, err := r.Read(h.HashLength()); err != nil {
			return nil, fmt.Errorf("%s.%s key %d: %w", e.Section, e.Method, i, err)
		}
		cls, err := e.reg.CreateClass(typ)
		if err != nil {
			return nil, err
		}
		if out[i], err = cls.Decode(r); err != nil {
			return nil, fmt.Errorf("%s.%s key %d: %w", e.Section, e.Method, i, err)
		}
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%s.%s: %d bytes left: %w", e.Section, e.Method, r.Remaining(), ErrKeyTooLong)
	}
	return out, nil
}

func (e *StorageEntry) valueType() string {
	if e.Meta.IsOptional() {
		return fmt.Sprintf("Option<%s>", e.Meta.Type.Value)
	}
	return e.Meta.Type.Value
}

// ValueClass is the class of values read from the entry. Optional entries
// are wrapped in an Option.
func (e *StorageEntry) ValueClass() (codec.Class, error) {
	return e.reg.CreateClass(e.valueType())
}

// Fallback returns the value read when the key is absent.
func (e *StorageEntry) Fallback() (codec.Codec, error) {
	cls, err := e.ValueClass()
	if err != nil {
		return nil, err
	}
	if e.Meta.IsOptional() && len(e.Meta.Fallback) == 0 {
		return cls.New(nil)
	}
	return codec.Decode(cls, e.Meta.Fallback)
}

// DecodeValue decodes a storage value. When exists is false the value is
// the entry's fallback, or None for optional entries.
func (e *StorageEntry) DecodeValue(data []byte, exists bool) (codec.Codec, error) {
	if !exists {
		if e.Meta.IsOptional() {
			cls, err := e.ValueClass()
			if err != nil {
				return nil, err
			}
			return cls.New(nil)
		}
		return e.Fallback()
	}
	cls, err := e.reg.CreateClass(e.Meta.Type.Value)
	if err != nil {
		return nil, err
	}
	v, err := codec.Decode(cls, data)
	if err != nil {
		return nil, fmt.Errorf("%s.%s value: %w", e.Section, e.Method, err)
	}
	if !e.Meta.IsOptional() {
		return v, nil
	}
	opt, err := e.ValueClass()
	if err != nil {
		return nil, err
	}
	return opt.New(v)
}
