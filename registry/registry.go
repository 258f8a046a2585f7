// Package registry maps type names to codec classes. Definitions are type
// expressions, ordered object definitions or ready-made classes; classes are
// built on demand and cached by their sanitized type expression.
package registry

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/Polkadex-Substrate/go-scale/codec"
	"github.com/Polkadex-Substrate/go-scale/log"
	"github.com/Polkadex-Substrate/go-scale/typedef"
	"gopkg.in/yaml.v2"
)

var (
	ErrUnknownType       = errors.New("unknown type")
	ErrInvalidDefinition = errors.New("invalid type definition")
)

var logger = log.NewLogger("registry")

//go:embed types.yaml
var baseTypes []byte

// Registry holds type definitions and the classes built from them. It is
// safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	defs     map[string]interface{}
	classes  map[string]codec.Class
	resolver codec.Resolver
}

// New returns a registry holding the primitive and common runtime types.
func New() *Registry {
	r := &Registry{
		defs:    make(map[string]interface{}),
		classes: make(map[string]codec.Class),
	}
	r.registerPrimitives()
	if err := r.LoadYAML(bytes.NewReader(baseTypes)); err != nil {
		panic(fmt.Sprintf("load base types: %v", err))
	}
	return r
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New()
	})
	return defaultRegistry
}

func (r *Registry) registerPrimitives() {
	prims := []codec.Class{
		&codec.BoolClass{},
		&codec.NullClass{},
		&codec.TextClass{},
		&codec.BytesClass{},
		codec.NewCallClass(r.currentResolver),
		codec.NewEventClass(r.currentResolver),
	}
	for _, bits := range []int{8, 16, 32, 64, 128, 256} {
		prims = append(prims, codec.NewUIntClass(bits), codec.NewIntClass(bits))
	}
	for _, cls := range prims {
		r.defs[cls.RawType()] = cls
	}
	r.defs["H160"] = codec.NewU8aFixedClass(20)
	r.defs["H256"] = codec.NewU8aFixedClass(32)
	r.defs["H512"] = codec.NewU8aFixedClass(64)
}

func (r *Registry) currentResolver() codec.Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolver
}

// SetResolver installs the call and event lookup used by the Call and Event
// classes.
func (r *Registry) SetResolver(res codec.Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolver = res
}

// Register defines name as a type expression string, an ordered object
// definition (yaml.MapSlice) or a codec.Class. Redefining a name drops every
// cached class.
func (r *Registry) Register(name string, def interface{}) error {
	switch d := def.(type) {
	case string:
		if _, err := typedef.ParseNamed(d, name); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	case yaml.MapSlice:
		if _, err := typedef.ParseDefinition(d, name); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	case codec.Class:
	default:
		return fmt.Errorf("register %s from %T: %w", name, def, ErrInvalidDefinition)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[name]; exists {
		logger.Debug().Str("type", name).Msg("redefine type")
	}
	r.defs[name] = def
	r.classes = make(map[string]codec.Class)
	return nil
}

// RegisterTypes registers every entry of defs in name order.
func (r *Registry) RegisterTypes(defs map[string]interface{}) error {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.Register(name, defs[name]); err != nil {
			return err
		}
	}
	return nil
}

// LoadYAML registers a type bundle: either a top-level map of definitions
// or a map with a "types" section.
func (r *Registry) LoadYAML(in io.Reader) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read type bundle: %w", err)
	}
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse type bundle: %w", err)
	}
	for _, item := range doc {
		if item.Key == "types" {
			section, ok := item.Value.(yaml.MapSlice)
			if !ok {
				return fmt.Errorf("types section must be a map: %w", ErrInvalidDefinition)
			}
			doc = section
			break
		}
	}
	for _, item := range doc {
		name := fmt.Sprint(item.Key)
		def := item.Value
		if def == nil {
			def = "Null"
		}
		if err := r.Register(name, def); err != nil {
			return err
		}
	}
	logger.Debug().Int("types", len(doc)).Stringer("names", log.DoLazyEval(func() string {
		names := make([]string, len(doc))
		for i, item := range doc {
			names[i] = fmt.Sprint(item.Key)
		}
		return strings.Join(names, ",")
	})).Msg("loaded type bundle")
	return nil
}

// HasType reports whether name is defined.
func (r *Registry) HasType(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[name]
	return ok
}

// Definition returns the type expression name is defined as.
func (r *Registry) Definition(name string) (string, bool) {
	r.mu.RLock()
	def, ok := r.defs[name]
	r.mu.RUnlock()
	if !ok {
		return "", false
	}
	switch d := def.(type) {
	case string:
		return d, true
	case yaml.MapSlice:
		parsed, err := typedef.ParseDefinition(d, name)
		if err != nil {
			return "", false
		}
		return parsed.Type, true
	case codec.Class:
		return d.RawType(), true
	}
	return "", false
}

// CreateClass returns the class for a type expression.
func (r *Registry) CreateClass(typ string) (codec.Class, error) {
	key := typedef.Sanitize(typ)
	r.mu.RLock()
	cls, ok := r.classes[key]
	r.mu.RUnlock()
	if ok {
		return cls, nil
	}

	def, err := typedef.Parse(typ)
	if err != nil {
		return nil, err
	}
	if cls, err = r.ClassFromDef(def); err != nil {
		return nil, fmt.Errorf("create class %s: %w", typ, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.classes[key]; ok {
		return cached, nil
	}
	r.classes[key] = cls
	return cls, nil
}

// MustCreateClass is CreateClass for types known to exist.
func (r *Registry) MustCreateClass(typ string) codec.Class {
	cls, err := r.CreateClass(typ)
	if err != nil {
		panic(err)
	}
	return cls
}

// CreateType converts value into a codec of type typ. A nil value gives
// the default.
func (r *Registry) CreateType(typ string, value interface{}) (codec.Codec, error) {
	cls, err := r.CreateClass(typ)
	if err != nil {
		return nil, err
	}
	return cls.New(value)
}

// DecodeType decodes data as typ and requires every byte to be consumed.
func (r *Registry) DecodeType(typ string, data []byte) (codec.Codec, error) {
	cls, err := r.CreateClass(typ)
	if err != nil {
		return nil, err
	}
	return codec.DecodeStrict(cls, data)
}

// named returns the class for a plain type name. Named definitions are
// wrapped in a LazyClass registered before it is resolved, so a type can
// refer to itself.
func (r *Registry) named(name string) (codec.Class, error) {
	r.mu.RLock()
	cls, ok := r.classes[name]
	r.mu.RUnlock()
	if ok {
		return cls, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cls, ok := r.classes[name]; ok {
		return cls, nil
	}
	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownType)
	}
	if c, ok := def.(codec.Class); ok {
		r.classes[name] = c
		return c, nil
	}
	var lazy *codec.LazyClass
	lazy = codec.NewLazyClass(name, func() (codec.Class, error) {
		if r.aliasCycle(name) {
			err := fmt.Errorf("%s is an alias of itself: %w", name, ErrInvalidDefinition)
			logger.Warn().Err(err).Str("type", name).Msg("failed to resolve type")
			return nil, err
		}
		resolved, err := r.resolveNamed(name, def)
		if err != nil {
			logger.Warn().Err(err).Str("type", name).Msg("failed to resolve type")
			return nil, err
		}
		if resolved == codec.Class(lazy) {
			return nil, fmt.Errorf("%s refers to itself: %w", name, ErrInvalidDefinition)
		}
		return resolved, nil
	})
	r.classes[name] = lazy
	return lazy, nil
}

// aliasCycle reports whether following plain aliases from name leads back
// to a name already visited. Such a chain has no concrete class.
func (r *Registry) aliasCycle(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	visited := map[string]bool{}
	for current := name; !visited[current]; {
		visited[current] = true
		def, ok := r.defs[current].(string)
		if !ok {
			return false
		}
		parsed, err := typedef.ParseNamed(def, current)
		if err != nil || parsed.Info != typedef.Plain {
			return false
		}
		current = parsed.Type
	}
	return true
}

func (r *Registry) resolveNamed(name string, def interface{}) (codec.Class, error) {
	var (
		parsed *typedef.TypeDef
		err    error
	)
	switch d := def.(type) {
	case string:
		parsed, err = typedef.ParseNamed(d, name)
	case yaml.MapSlice:
		parsed, err = typedef.ParseDefinition(d, name)
	default:
		err = fmt.Errorf("%s from %T: %w", name, def, ErrInvalidDefinition)
	}
	if err != nil {
		return nil, err
	}
	return r.ClassFromDef(parsed)
}
