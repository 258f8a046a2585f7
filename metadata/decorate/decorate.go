// Package decorate turns decoded metadata into accessors for storage keys,
// calls, events, errors and constants, grouped by section and method.
package decorate

import (
	"errors"
	"fmt"

	"github.com/Polkadex-Substrate/go-scale/codec"
	"github.com/Polkadex-Substrate/go-scale/log"
	"github.com/Polkadex-Substrate/go-scale/metadata"
	"github.com/Polkadex-Substrate/go-scale/registry"
)

var (
	ErrUnknownCall  = errors.New("unknown call")
	ErrUnknownEvent = errors.New("unknown event")
	ErrUnknownError = errors.New("unknown module error")
)

var logger = log.NewLogger("decorate")

// Decorated holds the accessors of one runtime's metadata. It is read-only
// once built and safe for concurrent use.
type Decorated struct {
	Storage map[string]map[string]*StorageEntry
	Tx      map[string]map[string]*CallFunction
	Events  map[string]map[string]*Event
	Errors  map[string]map[string]*ErrorDef
	Consts  map[string]map[string]*Constant

	reg    *registry.Registry
	md     *metadata.Metadata
	latest *metadata.Latest

	calls     map[[2]byte]*codec.CallDef
	events    map[[2]byte]*codec.EventDef
	errorDefs map[[2]byte]*ErrorDef
}

// New decorates md and installs the result as the call and event resolver
// of reg.
func New(reg *registry.Registry, md *metadata.Metadata) (*Decorated, error) {
	latest, err := md.AsLatest()
	if err != nil {
		return nil, err
	}
	cls, err := reg.CreateClass("Call")
	if err != nil {
		return nil, err
	}
	callClass, ok := codec.Resolve(cls).(*codec.CallClass)
	if !ok {
		return nil, fmt.Errorf("registry Call type is not a call class")
	}
	d := &Decorated{
		Storage:   map[string]map[string]*StorageEntry{},
		Tx:        map[string]map[string]*CallFunction{},
		Events:    map[string]map[string]*Event{},
		Errors:    map[string]map[string]*ErrorDef{},
		Consts:    map[string]map[string]*Constant{},
		reg:       reg,
		md:        md,
		latest:    latest,
		calls:     map[[2]byte]*codec.CallDef{},
		events:    map[[2]byte]*codec.EventDef{},
		errorDefs: map[[2]byte]*ErrorDef{},
	}

	var callPos, eventPos int
	for pos := range latest.Modules {
		mod := &latest.Modules[pos]
		section := camelCase(mod.Name)
		if mod.Storage != nil {
			d.decorateStorage(section, mod.Storage)
		}
		if mod.HasCalls() {
			d.decorateCalls(section, moduleIndex(mod, callPos), mod, callClass)
			callPos++
		}
		if mod.HasEvents() {
			d.decorateEvents(section, moduleIndex(mod, eventPos), mod)
			eventPos++
		}
		d.decorateErrors(section, moduleIndex(mod, pos), mod)
		d.decorateConsts(section, mod)
	}

	reg.SetResolver(d)
	logger.Debug().Int("version", md.Version()).Int("modules", len(latest.Modules)).
		Int("calls", len(d.calls)).Int("events", len(d.events)).Msg("decorated metadata")
	return d, nil
}

// moduleIndex is the module's declared index, or pos when the metadata
// predates module indices.
func moduleIndex(mod *metadata.ModuleMetadata, pos int) uint8 {
	if mod.IsIndexed() {
		return mod.Index
	}
	return uint8(pos)
}

func (d *Decorated) lazyClass(typ string) codec.Class {
	return codec.NewLazyClass(typ, func() (codec.Class, error) {
		return d.reg.CreateClass(typ)
	})
}

func (d *Decorated) decorateStorage(section string, storage *metadata.StorageMetadata) {
	entries := make(map[string]*StorageEntry, len(storage.Items))
	for _, item := range storage.Items {
		e := newStorageEntry(d.reg, section, storage.Prefix, item)
		entries[e.Method] = e
	}
	d.Storage[section] = entries
}

func (d *Decorated) decorateCalls(section string, index uint8, mod *metadata.ModuleMetadata, cls *codec.CallClass) {
	fns := make(map[string]*CallFunction, len(mod.Calls))
	for i, call := range mod.Calls {
		args := make([]codec.Field, len(call.Args))
		for j, a := range call.Args {
			args[j] = codec.Field{Name: camelCase(a.Name), Class: d.lazyClass(a.Type)}
		}
		def := &codec.CallDef{
			Index:   [2]byte{index, uint8(i)},
			Section: section,
			Method:  camelCase(call.Name),
			Args:    args,
			Docs:    call.Docs,
		}
		fns[def.Method] = &CallFunction{CallDef: def, cls: cls}
		d.calls[def.Index] = def
	}
	d.Tx[section] = fns
}

func (d *Decorated) decorateEvents(section string, index uint8, mod *metadata.ModuleMetadata) {
	events := make(map[string]*Event, len(mod.Events))
	for i, event := range mod.Events {
		args := make([]codec.Class, len(event.Args))
		for j, typ := range event.Args {
			args[j] = d.lazyClass(typ)
		}
		def := &codec.EventDef{
			Index:   [2]byte{index, uint8(i)},
			Section: section,
			Method:  event.Name,
			Args:    args,
			Docs:    event.Docs,
		}
		events[def.Method] = &Event{EventDef: def}
		d.events[def.Index] = def
	}
	d.Events[section] = events
}

func (d *Decorated) decorateErrors(section string, index uint8, mod *metadata.ModuleMetadata) {
	errs := make(map[string]*ErrorDef, len(mod.Errors))
	for i, e := range mod.Errors {
		def := &ErrorDef{
			Index:   [2]byte{index, uint8(i)},
			Section: section,
			Name:    e.Name,
			Docs:    e.Docs,
		}
		errs[def.Name] = def
		d.errorDefs[def.Index] = def
	}
	d.Errors[section] = errs
}

func (d *Decorated) decorateConsts(section string, mod *metadata.ModuleMetadata) {
	consts := make(map[string]*Constant, len(mod.Constants))
	for _, c := range mod.Constants {
		consts[lowerFirst(c.Name)] = &Constant{
			Section: section,
			Name:    c.Name,
			Type:    c.Type,
			Raw:     c.Value,
			Docs:    c.Docs,
			reg:     d.reg,
		}
	}
	d.Consts[section] = consts
}

func (d *Decorated) Metadata() *metadata.Metadata { return d.md }
func (d *Decorated) Latest() *metadata.Latest     { return d.latest }
func (d *Decorated) Registry() *registry.Registry { return d.reg }

func (d *Decorated) CallByIndex(index [2]byte) (*codec.CallDef, error) {
	def, ok := d.calls[index]
	if !ok {
		return nil, fmt.Errorf("call %#x: %w", index[:], ErrUnknownCall)
	}
	return def, nil
}

// CallByName accepts either accessor names or the names used in metadata.
func (d *Decorated) CallByName(section, method string) (*codec.CallDef, error) {
	fns, ok := d.Tx[section]
	if !ok {
		fns, ok = d.Tx[camelCase(section)]
	}
	if ok {
		if fn, found := fns[method]; found {
			return fn.CallDef, nil
		}
		if fn, found := fns[camelCase(method)]; found {
			return fn.CallDef, nil
		}
	}
	return nil, fmt.Errorf("call %s.%s: %w", section, method, ErrUnknownCall)
}

func (d *Decorated) EventByIndex(index [2]byte) (*codec.EventDef, error) {
	def, ok := d.events[index]
	if !ok {
		return nil, fmt.Errorf("event %#x: %w", index[:], ErrUnknownEvent)
	}
	return def, nil
}

// FindError returns the error declared at index by module.
func (d *Decorated) FindError(module, index uint8) (*ErrorDef, error) {
	def, ok := d.errorDefs[[2]byte{module, index}]
	if !ok {
		return nil, fmt.Errorf("error %d of module %d: %w", index, module, ErrUnknownError)
	}
	return def, nil
}

// FindDispatchError looks up the module error carried by a DispatchError
// value. Errors of other kinds are reported as not found.
func (d *Decorated) FindDispatchError(v codec.Codec) (*ErrorDef, error) {
	e, ok := v.(*codec.Enum)
	if !ok || !e.Is("Module") {
		return nil, fmt.Errorf("%s is not a module error: %w", v, ErrUnknownError)
	}
	st, ok := e.Value().(*codec.Struct)
	if !ok {
		return nil, fmt.Errorf("%s is not a module error: %w", v, ErrUnknownError)
	}
	moduleField, _ := st.Get("index")
	indexField, _ := st.Get("error")
	module, _ := moduleField.(*codec.UInt)
	index, _ := indexField.(*codec.UInt)
	if module == nil || index == nil {
		return nil, fmt.Errorf("%s is not a module error: %w", v, ErrUnknownError)
	}
	return d.FindError(uint8(module.Uint64()), uint8(index.Uint64()))
}

// DecodeCall decodes an encoded call.
func (d *Decorated) DecodeCall(data []byte) (*codec.Call, error) {
	v, err := d.reg.DecodeType("Call", data)
	if err != nil {
		return nil, err
	}
	call, ok := v.(*codec.Call)
	if !ok {
		return nil, fmt.Errorf("Call decoded as %s: %w", v.Class().RawType(), ErrUnknownCall)
	}
	return call, nil
}

// DecodeEvents decodes the value of System.Events.
func (d *Decorated) DecodeEvents(data []byte) ([]*codec.Struct, error) {
	v, err := d.reg.DecodeType("Vec<EventRecord>", data)
	if err != nil {
		return nil, err
	}
	items := v.(*codec.Vec).Items()
	out := make([]*codec.Struct, len(items))
	for i, item := range items {
		record, ok := item.(*codec.Struct)
		if !ok {
			return nil, fmt.Errorf("EventRecord decoded as %s: %w", item.Class().RawType(), ErrUnknownEvent)
		}
		out[i] = record
	}
	return out, nil
}
