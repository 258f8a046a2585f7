package codec

import (
	"fmt"

	"github.com/Polkadex-Substrate/go-scale/scale"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// CallDef describes a dispatchable function found in metadata.
type CallDef struct {
	Index   [2]byte
	Section string
	Method  string
	Args    []Field
	Docs    []string
}

// ArgIndex returns the position of the argument called name, matching the
// lower-first and upper-first forms too, or -1.
func (def *CallDef) ArgIndex(name string) int {
	for i, a := range def.Args {
		if name == a.Name || name == lowerFirst(a.Name) || name == upperFirst(a.Name) {
			return i
		}
	}
	return -1
}

// EventDef describes an event found in metadata.
type EventDef struct {
	Index   [2]byte
	Section string
	Method  string
	Args    []Class
	Docs    []string
}

// Resolver maps call and event indices to their metadata definitions.
type Resolver interface {
	CallByIndex(index [2]byte) (*CallDef, error)
	CallByName(section, method string) (*CallDef, error)
	EventByIndex(index [2]byte) (*EventDef, error)
}

// ResolverFunc returns the current resolver, or nil if none is installed.
type ResolverFunc func() Resolver

func (f ResolverFunc) get() (Resolver, error) {
	if f == nil {
		return nil, ErrNoResolver
	}
	r := f()
	if r == nil {
		return nil, ErrNoResolver
	}
	return r, nil
}

func readIndex(r *scale.Reader) ([2]byte, error) {
	var index [2]byte
	b, err := r.Read(2)
	if err != nil {
		return index, err
	}
	copy(index[:], b)
	return index, nil
}

func parseIndex(value interface{}) ([2]byte, error) {
	var index [2]byte
	b, err := toBytes(value)
	if err != nil || len(b) != 2 {
		return index, fmt.Errorf("call index %v: %w", value, ErrInvalidValue)
	}
	copy(index[:], b)
	return index, nil
}

// CallClass decodes extrinsic calls: a two-byte index followed by the
// arguments declared for it in metadata.
type CallClass struct {
	Resolver ResolverFunc
}

func NewCallClass(resolver ResolverFunc) *CallClass {
	return &CallClass{Resolver: resolver}
}

func (*CallClass) RawType() string { return "Call" }

func (cls *CallClass) Decode(r *scale.Reader) (Codec, error) {
	res, err := cls.Resolver.get()
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	index, err := readIndex(r)
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	def, err := res.CallByIndex(index)
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	args := make([]Codec, len(def.Args))
	for i, a := range def.Args {
		if args[i], err = a.Class.Decode(r); err != nil {
			return nil, fmt.Errorf("decode %s.%s arg %s: %w", def.Section, def.Method, a.Name, err)
		}
	}
	return &Call{cls: cls, def: def, args: args}, nil
}

// New accepts a *Call, or an object with either callIndex or section and
// method, plus args as an object or a list.
func (cls *CallClass) New(value interface{}) (Codec, error) {
	call, err := cls.newCall(value)
	if err != nil {
		return nil, err
	}
	return call, nil
}

func (cls *CallClass) newCall(value interface{}) (*Call, error) {
	if c, ok := value.(*Call); ok {
		return cls.NewCall(c.def, c.args)
	}
	res, err := cls.Resolver.get()
	if err != nil {
		return nil, err
	}
	if value == nil {
		def, err := res.CallByIndex([2]byte{})
		if err != nil {
			return nil, err
		}
		return cls.NewCall(def, nil)
	}
	m, ok := toMap(value)
	if !ok {
		return nil, invalid(cls, value)
	}
	var def *CallDef
	if idx, found := lookupField(m, "callIndex"); found {
		index, err := parseIndex(idx)
		if err != nil {
			return nil, err
		}
		if def, err = res.CallByIndex(index); err != nil {
			return nil, err
		}
	} else {
		section, _ := m["section"].(string)
		method, _ := m["method"].(string)
		if def, err = res.CallByName(section, method); err != nil {
			return nil, err
		}
	}
	return cls.NewCall(def, m["args"])
}

// NewCall builds a call for def with args given as an object keyed by
// argument name or as a positional list.
func (cls *CallClass) NewCall(def *CallDef, args interface{}) (*Call, error) {
	values := make([]Codec, len(def.Args))
	var list []interface{}
	m, isMap := toMap(args)
	if isMap {
		for name := range m {
			if def.ArgIndex(name) < 0 {
				return nil, fmt.Errorf("%s.%s has no arg %q: %w", def.Section, def.Method, name, ErrInvalidValue)
			}
		}
	} else if args != nil {
		var err error
		if list, err = toSlice(args); err != nil {
			return nil, invalid(cls, args)
		}
		if len(list) != len(def.Args) {
			return nil, fmt.Errorf("%s.%s takes %d args, got %d: %w", def.Section, def.Method, len(def.Args), len(list), ErrInvalidValue)
		}
	}
	for i, a := range def.Args {
		var v interface{}
		switch {
		case isMap:
			v, _ = lookupField(m, a.Name)
		case list != nil:
			v = list[i]
		}
		var err error
		if values[i], err = a.Class.New(v); err != nil {
			return nil, fmt.Errorf("%s.%s arg %s: %w", def.Section, def.Method, a.Name, err)
		}
	}
	return &Call{cls: cls, def: def, args: values}, nil
}

type Call struct {
	cls  *CallClass
	def  *CallDef
	args []Codec
}

func (c *Call) Def() *CallDef      { return c.def }
func (c *Call) Section() string    { return c.def.Section }
func (c *Call) Method() string     { return c.def.Method }
func (c *Call) CallIndex() [2]byte { return c.def.Index }
func (c *Call) Args() []Codec      { return c.args }

// Arg returns the named argument.
func (c *Call) Arg(name string) (Codec, bool) {
	for i, a := range c.def.Args {
		if a.Name == name {
			return c.args[i], true
		}
	}
	return nil, false
}

func (c *Call) Class() Class { return c.cls }

func (c *Call) Encode() []byte {
	return encodeItems([]byte{c.def.Index[0], c.def.Index[1]}, c.args)
}

func (c *Call) EncodedLength() int        { return len(c.Encode()) }
func (c *Call) IsEmpty() bool             { return false }
func (c *Call) Eq(other interface{}) bool { return equal(c, other) }

func (c *Call) argMap(human bool) map[string]interface{} {
	out := make(map[string]interface{}, len(c.args))
	for i, a := range c.def.Args {
		if human {
			out[a.Name] = c.args[i].ToHuman()
		} else {
			out[a.Name] = c.args[i].ToJSON()
		}
	}
	return out
}

func (c *Call) ToHuman() interface{} {
	return map[string]interface{}{
		"section": c.def.Section,
		"method":  c.def.Method,
		"args":    c.argMap(true),
	}
}

func (c *Call) ToJSON() interface{} {
	return map[string]interface{}{
		"callIndex": hexutil.Encode(c.def.Index[:]),
		"args":      c.argMap(false),
	}
}

func (c *Call) String() string { return jsonString(c.ToJSON()) }
func (c *Call) Hash() [32]byte { return hashOf(c) }

// EventClass decodes runtime events: a two-byte index followed by the
// event data declared in metadata.
type EventClass struct {
	Resolver ResolverFunc
}

func NewEventClass(resolver ResolverFunc) *EventClass {
	return &EventClass{Resolver: resolver}
}

func (*EventClass) RawType() string { return "Event" }

func (cls *EventClass) Decode(r *scale.Reader) (Codec, error) {
	res, err := cls.Resolver.get()
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	index, err := readIndex(r)
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	def, err := res.EventByIndex(index)
	if err != nil {
		return nil, wrapDecode(cls, err)
	}
	data := make([]Codec, len(def.Args))
	for i, a := range def.Args {
		if data[i], err = a.Decode(r); err != nil {
			return nil, fmt.Errorf("decode %s.%s data %d: %w", def.Section, def.Method, i, err)
		}
	}
	return &Event{cls: cls, def: def, data: data}, nil
}

// New accepts an *Event or an object with index and data.
func (cls *EventClass) New(value interface{}) (Codec, error) {
	event, err := cls.newValue(value)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (cls *EventClass) newValue(value interface{}) (*Event, error) {
	if e, ok := value.(*Event); ok {
		return cls.newEvent(e.def, e.data)
	}
	res, err := cls.Resolver.get()
	if err != nil {
		return nil, err
	}
	var index [2]byte
	var data interface{}
	if value != nil {
		m, ok := toMap(value)
		if !ok {
			return nil, invalid(cls, value)
		}
		if index, err = parseIndex(m["index"]); err != nil {
			return nil, err
		}
		data = m["data"]
	}
	def, err := res.EventByIndex(index)
	if err != nil {
		return nil, err
	}
	return cls.newEvent(def, data)
}

func (cls *EventClass) newEvent(def *EventDef, list interface{}) (*Event, error) {
	items, err := toSlice(list)
	if err != nil {
		return nil, invalid(cls, list)
	}
	if items != nil && len(items) != len(def.Args) {
		return nil, fmt.Errorf("%s.%s has %d fields, got %d: %w", def.Section, def.Method, len(def.Args), len(items), ErrInvalidValue)
	}
	data := make([]Codec, len(def.Args))
	for i, a := range def.Args {
		var v interface{}
		if items != nil {
			v = items[i]
		}
		if data[i], err = a.New(v); err != nil {
			return nil, fmt.Errorf("%s.%s data %d: %w", def.Section, def.Method, i, err)
		}
	}
	return &Event{cls: cls, def: def, data: data}, nil
}

type Event struct {
	cls  *EventClass
	def  *EventDef
	data []Codec
}

func (e *Event) Def() *EventDef  { return e.def }
func (e *Event) Section() string { return e.def.Section }
func (e *Event) Method() string  { return e.def.Method }
func (e *Event) Index() [2]byte  { return e.def.Index }
func (e *Event) Data() []Codec   { return e.data }
func (e *Event) Class() Class    { return e.cls }

func (e *Event) Encode() []byte {
	return encodeItems([]byte{e.def.Index[0], e.def.Index[1]}, e.data)
}

func (e *Event) EncodedLength() int        { return len(e.Encode()) }
func (e *Event) IsEmpty() bool             { return false }
func (e *Event) Eq(other interface{}) bool { return equal(e, other) }

func (e *Event) ToHuman() interface{} {
	return map[string]interface{}{
		"section": e.def.Section,
		"method":  e.def.Method,
		"index":   hexutil.Encode(e.def.Index[:]),
		"data":    humanItems(e.data),
	}
}

func (e *Event) ToJSON() interface{} {
	return map[string]interface{}{
		"index": hexutil.Encode(e.def.Index[:]),
		"data":  jsonItems(e.data),
	}
}

func (e *Event) String() string { return jsonString(e.ToJSON()) }
func (e *Event) Hash() [32]byte { return hashOf(e) }
