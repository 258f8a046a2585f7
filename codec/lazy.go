package codec

import (
	"fmt"
	"sync"

	"github.com/Polkadex-Substrate/go-scale/scale"
)

// LazyClass defers building a class until first use, which lets named types
// refer to themselves.
type LazyClass struct {
	name    string
	resolve func() (Class, error)

	once  sync.Once
	class Class
	err   error
}

func NewLazyClass(name string, resolve func() (Class, error)) *LazyClass {
	return &LazyClass{name: name, resolve: resolve}
}

func (cls *LazyClass) RawType() string { return cls.name }

// Get resolves the underlying class once.
func (cls *LazyClass) Get() (Class, error) {
	cls.once.Do(func() {
		cls.class, cls.err = cls.resolve()
		if cls.err == nil && cls.class == nil {
			cls.err = fmt.Errorf("%s: %w", cls.name, ErrUnresolvedClass)
		}
	})
	return cls.class, cls.err
}

func (cls *LazyClass) Decode(r *scale.Reader) (Codec, error) {
	inner, err := cls.Get()
	if err != nil {
		return nil, err
	}
	return inner.Decode(r)
}

func (cls *LazyClass) New(value interface{}) (Codec, error) {
	inner, err := cls.Get()
	if err != nil {
		return nil, err
	}
	return inner.New(value)
}

// Resolve unwraps lazy classes. A class that fails to resolve, or a chain
// of lazy classes leading back to itself, is returned as is.
func Resolve(cls Class) Class {
	seen := map[*LazyClass]bool{}
	for {
		lazy, ok := cls.(*LazyClass)
		if !ok || seen[lazy] {
			return cls
		}
		seen[lazy] = true
		inner, err := lazy.Get()
		if err != nil {
			return cls
		}
		cls = inner
	}
}

// DoNotConstructClass marks a type that exists only as a placeholder.
type DoNotConstructClass struct {
	Name string
}

func (cls *DoNotConstructClass) RawType() string {
	if cls.Name == "" {
		return "DoNotConstruct"
	}
	return fmt.Sprintf("DoNotConstruct<%s>", cls.Name)
}

func (cls *DoNotConstructClass) Decode(*scale.Reader) (Codec, error) {
	return nil, fmt.Errorf("decode %s: %w", cls.RawType(), ErrDoNotConstruct)
}

func (cls *DoNotConstructClass) New(interface{}) (Codec, error) {
	return nil, fmt.Errorf("%s: %w", cls.RawType(), ErrDoNotConstruct)
}
