package decorate

import (
	"sync"

	"github.com/Polkadex-Substrate/go-scale/codec"
	"github.com/Polkadex-Substrate/go-scale/registry"
)

// CallFunction creates calls of one dispatchable.
type CallFunction struct {
	*codec.CallDef
	cls *codec.CallClass
}

// New builds the call from one object keyed by argument name, or from the
// arguments in declaration order. For a call with a single argument, an
// object is taken as named arguments only when all its keys name arguments.
func (f *CallFunction) New(args ...interface{}) (*codec.Call, error) {
	if len(args) == 1 && len(f.Args) != 1 {
		return f.cls.NewCall(f.CallDef, args[0])
	}
	if len(args) == 1 {
		if m, ok := args[0].(map[string]interface{}); ok && f.namesArgs(m) {
			return f.cls.NewCall(f.CallDef, m)
		}
	}
	return f.cls.NewCall(f.CallDef, append([]interface{}{}, args...))
}

func (f *CallFunction) namesArgs(m map[string]interface{}) bool {
	if len(m) == 0 {
		return false
	}
	for name := range m {
		if f.ArgIndex(name) < 0 {
			return false
		}
	}
	return true
}

// Encode returns the encoded call: the call index followed by the args.
func (f *CallFunction) Encode(args ...interface{}) ([]byte, error) {
	call, err := f.New(args...)
	if err != nil {
		return nil, err
	}
	return call.Encode(), nil
}

// Event identifies one event type.
type Event struct {
	*codec.EventDef
}

// Is reports whether e is an event of this type.
func (ev *Event) Is(e *codec.Event) bool {
	return e != nil && e.Index() == ev.Index
}

// ErrorDef is a module error declared in metadata.
type ErrorDef struct {
	Index   [2]byte
	Section string
	Name    string
	Docs    []string
}

// Constant is a module constant. Its value is decoded on first use.
type Constant struct {
	Section string
	Name    string
	Type    string
	Raw     []byte
	Docs    []string

	reg   *registry.Registry
	once  sync.Once
	value codec.Codec
	err   error
}

func (c *Constant) Value() (codec.Codec, error) {
	c.once.Do(func() {
		c.value, c.err = c.reg.DecodeType(c.Type, c.Raw)
	})
	return c.value, c.err
}
