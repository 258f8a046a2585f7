package metadata

import (
	"fmt"

	"github.com/Polkadex-Substrate/go-scale/codec"
	"github.com/Polkadex-Substrate/go-scale/registry"
)

// notIndexed marks a module whose index was not part of the metadata it was
// migrated from. Calls and events then fall back to positional indices.
const notIndexed = 255

// migrations rewrite the JSON form of version-1 into the shape of version.
// Fields that only change type, such as hashers renumbered by name, convert
// through the JSON form as is.
var migrations = map[int]func(map[string]interface{}) error{
	10: func(map[string]interface{}) error { return nil },
	11: addExtrinsic,
	12: addModuleIndex,
	13: renameLinked,
}

func migrate(reg *registry.Registry, version int, prev *codec.Struct) (*codec.Struct, error) {
	step, ok := migrations[version]
	if !ok {
		return nil, fmt.Errorf("version %d: %w", version, ErrUnsupportedVersion)
	}
	doc, ok := prev.ToJSON().(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("metadata v%d is not an object", version-1)
	}
	if err := step(doc); err != nil {
		return nil, err
	}
	out, err := reg.CreateType(fmt.Sprintf("MetadataV%d", version), doc)
	if err != nil {
		return nil, err
	}
	return out.(*codec.Struct), nil
}

func addExtrinsic(doc map[string]interface{}) error {
	doc["extrinsic"] = map[string]interface{}{
		"version":          0,
		"signedExtensions": []interface{}{},
	}
	return nil
}

func addModuleIndex(doc map[string]interface{}) error {
	return eachModule(doc, func(module map[string]interface{}) error {
		module["index"] = notIndexed
		return nil
	})
}

func renameLinked(doc map[string]interface{}) error {
	return eachModule(doc, func(module map[string]interface{}) error {
		storage, ok := module["storage"].(map[string]interface{})
		if !ok {
			return nil
		}
		items, _ := storage["items"].([]interface{})
		for _, item := range items {
			entry, ok := item.(map[string]interface{})
			if !ok {
				return fmt.Errorf("storage item %v is not an object", item)
			}
			typ, _ := entry["type"].(map[string]interface{})
			if m, ok := typ["map"].(map[string]interface{}); ok {
				m["unused"] = m["linked"]
				delete(m, "linked")
			}
		}
		return nil
	})
}

func eachModule(doc map[string]interface{}, fn func(map[string]interface{}) error) error {
	modules, _ := doc["modules"].([]interface{})
	for _, m := range modules {
		module, ok := m.(map[string]interface{})
		if !ok {
			return fmt.Errorf("module %v is not an object", m)
		}
		if err := fn(module); err != nil {
			return err
		}
	}
	return nil
}
