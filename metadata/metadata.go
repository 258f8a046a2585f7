// Package metadata decodes runtime metadata of versions 9 to 13 and
// migrates older versions forward to the latest layout.
package metadata

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/Polkadex-Substrate/go-scale/codec"
	"github.com/Polkadex-Substrate/go-scale/log"
	"github.com/Polkadex-Substrate/go-scale/registry"
	"github.com/Polkadex-Substrate/go-scale/scale"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	ErrInvalidMagic       = errors.New("invalid metadata magic number")
	ErrUnsupportedVersion = errors.New("unsupported metadata version")
	ErrDowngrade          = errors.New("metadata cannot be converted to an older version")
)

const (
	// MagicNumber is "meta" read as a little-endian u32.
	MagicNumber uint32 = 0x6174656d
	// MinVersion is the oldest decodable version.
	MinVersion = 9
	// LatestVersion is the layout every version migrates to.
	LatestVersion = 13
)

var logger = log.NewLogger("metadata")

//go:embed definitions.yaml
var definitions []byte

var registerLock sync.Mutex

// Register adds the metadata layouts to reg. It is a no-op when they are
// already present.
func Register(reg *registry.Registry) error {
	registerLock.Lock()
	defer registerLock.Unlock()
	if reg.HasType("MetadataAll") {
		return nil
	}
	if err := reg.LoadYAML(bytes.NewReader(definitions)); err != nil {
		return fmt.Errorf("register metadata types: %w", err)
	}
	return nil
}

// Metadata is decoded runtime metadata together with its migrated forms.
type Metadata struct {
	reg     *registry.Registry
	version int

	mu       sync.Mutex
	versions map[int]*codec.Struct
	latest   *Latest
}

// Decode decodes a magic-prefixed metadata blob.
func Decode(reg *registry.Registry, data []byte) (*Metadata, error) {
	if err := Register(reg); err != nil {
		return nil, err
	}
	r := scale.NewReader(data)
	magic, err := scale.DecodeUint(r, 32)
	if err != nil {
		return nil, fmt.Errorf("decode metadata magic: %w", err)
	}
	if magic.Cmp(new(big.Int).SetUint64(uint64(MagicNumber))) != 0 {
		return nil, fmt.Errorf("magic %#x: %w", magic, ErrInvalidMagic)
	}
	version, err := r.Peek()
	if err != nil {
		return nil, fmt.Errorf("decode metadata version: %w", err)
	}
	if version < MinVersion || version > LatestVersion {
		return nil, fmt.Errorf("version %d: %w", version, ErrUnsupportedVersion)
	}

	cls, err := reg.CreateClass("MetadataAll")
	if err != nil {
		return nil, err
	}
	all, err := cls.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode metadata v%d: %w", version, err)
	}
	if r.Remaining() > 0 {
		logger.Warn().Int("version", int(version)).Int("trailing", r.Remaining()).Msg("metadata has trailing bytes")
	}
	enum, ok := all.(*codec.Enum)
	if !ok {
		return nil, fmt.Errorf("MetadataAll decoded as %s: %w", all.Class().RawType(), ErrUnsupportedVersion)
	}
	st, ok := enum.Value().(*codec.Struct)
	if !ok {
		return nil, fmt.Errorf("metadata v%d is not a struct: %w", version, ErrUnsupportedVersion)
	}
	logger.Debug().Int("version", int(version)).Int("bytes", len(data)).Msg("decoded metadata")
	return &Metadata{
		reg:      reg,
		version:  int(version),
		versions: map[int]*codec.Struct{int(version): st},
	}, nil
}

// DecodeHex is Decode for 0x-prefixed hex input.
func DecodeHex(reg *registry.Registry, data string) (*Metadata, error) {
	raw, err := hexutil.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode metadata hex: %w", err)
	}
	return Decode(reg, raw)
}

// New wraps an already built metadata value of the given version.
func New(reg *registry.Registry, version int, value interface{}) (*Metadata, error) {
	if version < MinVersion || version > LatestVersion {
		return nil, fmt.Errorf("version %d: %w", version, ErrUnsupportedVersion)
	}
	if err := Register(reg); err != nil {
		return nil, err
	}
	v, err := reg.CreateType(fmt.Sprintf("MetadataV%d", version), value)
	if err != nil {
		return nil, err
	}
	return &Metadata{
		reg:      reg,
		version:  version,
		versions: map[int]*codec.Struct{version: v.(*codec.Struct)},
	}, nil
}

// Registry returns the registry the metadata types live in.
func (m *Metadata) Registry() *registry.Registry { return m.reg }

// Version is the version the metadata was decoded as.
func (m *Metadata) Version() int { return m.version }

// AsVersion returns the metadata migrated to version. Only forward
// migrations are possible; results are cached.
func (m *Metadata) AsVersion(version int) (*codec.Struct, error) {
	if version < m.version {
		return nil, fmt.Errorf("v%d to v%d: %w", m.version, version, ErrDowngrade)
	}
	if version > LatestVersion {
		return nil, fmt.Errorf("version %d: %w", version, ErrUnsupportedVersion)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.asVersion(version)
}

func (m *Metadata) asVersion(version int) (*codec.Struct, error) {
	if st, ok := m.versions[version]; ok {
		return st, nil
	}
	prev, err := m.asVersion(version - 1)
	if err != nil {
		return nil, err
	}
	st, err := migrate(m.reg, version, prev)
	if err != nil {
		return nil, fmt.Errorf("migrate metadata to v%d: %w", version, err)
	}
	logger.Debug().Int("from", version-1).Int("to", version).Msg("migrated metadata")
	m.versions[version] = st
	return st, nil
}

// Encode returns the magic-prefixed encoding of the metadata in its
// original version.
func (m *Metadata) Encode() []byte {
	m.mu.Lock()
	st := m.versions[m.version]
	m.mu.Unlock()
	return encodeVersioned(m.version, st)
}

// EncodeVersion encodes the metadata migrated to version.
func (m *Metadata) EncodeVersion(version int) ([]byte, error) {
	st, err := m.AsVersion(version)
	if err != nil {
		return nil, err
	}
	return encodeVersioned(version, st), nil
}

func encodeVersioned(version int, st *codec.Struct) []byte {
	out, _ := scale.EncodeUint(new(big.Int).SetUint64(uint64(MagicNumber)), 32)
	out = append(out, byte(version))
	return append(out, st.Encode()...)
}

// ToJSON returns the metadata in the shape {magicNumber, metadata: {vN}}.
func (m *Metadata) ToJSON() map[string]interface{} {
	m.mu.Lock()
	st := m.versions[m.version]
	m.mu.Unlock()
	return map[string]interface{}{
		"magicNumber": MagicNumber,
		"metadata":    map[string]interface{}{fmt.Sprintf("v%d", m.version): st.ToJSON()},
	}
}
