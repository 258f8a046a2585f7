package metadata

import (
	"encoding/json"
	"fmt"

	"github.com/Polkadex-Substrate/go-scale/hasher"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// StorageKind is the shape of a storage entry.
type StorageKind int

const (
	Plain StorageKind = iota
	Map
	DoubleMap
	NMap
)

func (k StorageKind) String() string {
	switch k {
	case Map:
		return "Map"
	case DoubleMap:
		return "DoubleMap"
	case NMap:
		return "NMap"
	}
	return "Plain"
}

// Latest is a typed view of the latest metadata layout.
type Latest struct {
	Modules   []ModuleMetadata  `json:"modules"`
	Extrinsic ExtrinsicMetadata `json:"extrinsic"`
}

type ExtrinsicMetadata struct {
	Version          uint8    `json:"version"`
	SignedExtensions []string `json:"signedExtensions"`
}

// ModuleMetadata describes one pallet. Calls and Events are nil when the
// module declares none.
type ModuleMetadata struct {
	Name      string             `json:"name"`
	Storage   *StorageMetadata   `json:"storage"`
	Calls     []FunctionMetadata `json:"calls"`
	Events    []EventMetadata    `json:"events"`
	Constants []ConstantMetadata `json:"constants"`
	Errors    []ErrorMetadata    `json:"errors"`
	Index     uint8              `json:"index"`
}

// HasCalls reports whether the module declares a call enum, even an empty
// one.
func (m *ModuleMetadata) HasCalls() bool { return m.Calls != nil }

func (m *ModuleMetadata) HasEvents() bool { return m.Events != nil }

// IsIndexed reports whether Index is the module's real index.
func (m *ModuleMetadata) IsIndexed() bool { return m.Index != notIndexed }

type StorageMetadata struct {
	Prefix string                 `json:"prefix"`
	Items  []StorageEntryMetadata `json:"items"`
}

type StorageEntryMetadata struct {
	Name     string           `json:"name"`
	Modifier string           `json:"modifier"`
	Type     StorageEntryType `json:"type"`
	Fallback hexutil.Bytes    `json:"fallback"`
	Docs     []string         `json:"docs"`
}

// IsOptional reports whether a missing value reads as None rather than the
// fallback.
func (e *StorageEntryMetadata) IsOptional() bool { return e.Modifier == "Optional" }

// StorageEntryType flattens the Plain, Map, DoubleMap and NMap layouts: one
// hasher per key, in key order.
type StorageEntryType struct {
	Kind    StorageKind
	Hashers []hasher.Hasher
	Keys    []string
	Value   string
}

func (t *StorageEntryType) UnmarshalJSON(data []byte) error {
	var variants map[string]json.RawMessage
	if err := json.Unmarshal(data, &variants); err != nil {
		return err
	}
	if len(variants) != 1 {
		return fmt.Errorf("storage entry type with %d variants", len(variants))
	}
	for name, raw := range variants {
		switch name {
		case "plain":
			*t = StorageEntryType{Kind: Plain}
			return json.Unmarshal(raw, &t.Value)
		case "map":
			var m struct {
				Hasher hasher.Hasher `json:"hasher"`
				Key    string        `json:"key"`
				Value  string        `json:"value"`
			}
			if err := json.Unmarshal(raw, &m); err != nil {
				return err
			}
			*t = StorageEntryType{Kind: Map, Hashers: []hasher.Hasher{m.Hasher}, Keys: []string{m.Key}, Value: m.Value}
			return nil
		case "doubleMap":
			var m struct {
				Hasher     hasher.Hasher `json:"hasher"`
				Key1       string        `json:"key1"`
				Key2       string        `json:"key2"`
				Value      string        `json:"value"`
				Key2Hasher hasher.Hasher `json:"key2Hasher"`
			}
			if err := json.Unmarshal(raw, &m); err != nil {
				return err
			}
			*t = StorageEntryType{
				Kind:    DoubleMap,
				Hashers: []hasher.Hasher{m.Hasher, m.Key2Hasher},
				Keys:    []string{m.Key1, m.Key2},
				Value:   m.Value,
			}
			return nil
		case "nMap":
			var m struct {
				KeyVec  []string        `json:"keyVec"`
				Hashers []hasher.Hasher `json:"hashers"`
				Value   string          `json:"value"`
			}
			if err := json.Unmarshal(raw, &m); err != nil {
				return err
			}
			if len(m.KeyVec) != len(m.Hashers) {
				return fmt.Errorf("nmap with %d keys and %d hashers", len(m.KeyVec), len(m.Hashers))
			}
			*t = StorageEntryType{Kind: NMap, Hashers: m.Hashers, Keys: m.KeyVec, Value: m.Value}
			return nil
		}
		return fmt.Errorf("unknown storage entry type %s", name)
	}
	return nil
}

type FunctionArgumentMetadata struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type FunctionMetadata struct {
	Name string                     `json:"name"`
	Args []FunctionArgumentMetadata `json:"args"`
	Docs []string                   `json:"docs"`
}

type EventMetadata struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
	Docs []string `json:"docs"`
}

type ConstantMetadata struct {
	Name  string        `json:"name"`
	Type  string        `json:"type"`
	Value hexutil.Bytes `json:"value"`
	Docs  []string      `json:"docs"`
}

type ErrorMetadata struct {
	Name string   `json:"name"`
	Docs []string `json:"docs"`
}

// AsLatest returns the typed view of the metadata migrated to the latest
// version.
func (m *Metadata) AsLatest() (*Latest, error) {
	st, err := m.AsVersion(LatestVersion)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest != nil {
		return m.latest, nil
	}
	raw, err := json.Marshal(st.ToJSON())
	if err != nil {
		return nil, fmt.Errorf("marshal metadata v%d: %w", LatestVersion, err)
	}
	latest := &Latest{}
	if err := json.Unmarshal(raw, latest); err != nil {
		return nil, fmt.Errorf("read metadata v%d: %w", LatestVersion, err)
	}
	m.latest = latest
	return latest, nil
}
