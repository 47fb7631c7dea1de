// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uarray

import (
	"reflect"
	"sync"
)

// Tree protocol.
// Children, MapChildren, KeyOf and IsConcrete describe how the engine walks
// and identifies arbitrary payloads. Unknown types are atomic: no children,
// identity mapping, runtime type as key, and concrete.

// Parent is implemented by payloads that directly contain boxes.
type Parent interface {
	Children() []*Box
}

// ChildMapper is implemented by payloads that can be rebuilt with every
// directly contained value transformed by fn. It drives [Copy].
type ChildMapper interface {
	MapChildren(fn func(any) any) any
}

// Keyer is implemented by payloads that choose their own dispatch key.
type Keyer interface {
	DispatchKey() any
}

// Concreter is implemented by payloads that may still await resolution.
type Concreter interface {
	Concrete() bool
}

// Protocol is the capability record for one payload type.
// A nil field falls back to the atomic default.
type Protocol struct {
	Children    func(v any) []*Box
	MapChildren func(v any, fn func(any) any) any
	Key         func(v any) any
	Concrete    func(v any) bool
}

// Node is the typed form of [Protocol] used by [RegisterNode].
type Node[T any] struct {
	Children    func(v T) []*Box
	MapChildren func(v T, fn func(any) any) T
	Key         func(v T) any
	Concrete    func(v T) bool
}

var (
	protocolsMu sync.RWMutex
	protocols   = map[reflect.Type]Protocol{}

	// resolved caches the capability record per type, registered or derived
	// from methods. Cleared on every registration.
	resolved sync.Map // reflect.Type -> *Protocol
)

// RegisterProtocol installs the capability record for payloads of type t.
// Explicit registration takes precedence over the method interfaces.
func RegisterProtocol(t reflect.Type, p Protocol) {
	protocolsMu.Lock()
	protocols[t] = p
	protocolsMu.Unlock()
	resolved.Clear()
}

// RegisterNode installs the capability record for payloads of type T.
func RegisterNode[T any](n Node[T]) {
	var p Protocol
	if n.Children != nil {
		p.Children = func(v any) []*Box { return n.Children(v.(T)) }
	}
	if n.MapChildren != nil {
		p.MapChildren = func(v any, fn func(any) any) any { return n.MapChildren(v.(T), fn) }
	}
	if n.Key != nil {
		p.Key = func(v any) any { return n.Key(v.(T)) }
	}
	if n.Concrete != nil {
		p.Concrete = func(v any) bool { return n.Concrete(v.(T)) }
	}
	RegisterProtocol(reflect.TypeFor[T](), p)
}

// protocolOf resolves the capability record for the dynamic type of v.
// The returned record has every field populated.
func protocolOf(v any) *Protocol {
	t := reflect.TypeOf(v)
	if t == nil {
		return &atomicProtocol
	}
	if p, ok := resolved.Load(t); ok {
		return p.(*Protocol)
	}
	p := resolveProtocol(t)
	actual, _ := resolved.LoadOrStore(t, p)
	return actual.(*Protocol)
}

func resolveProtocol(t reflect.Type) *Protocol {
	protocolsMu.RLock()
	p, ok := protocols[t]
	protocolsMu.RUnlock()
	if !ok {
		p = methodProtocol(t)
	}
	if p.Children == nil {
		p.Children = atomicProtocol.Children
	}
	if p.MapChildren == nil {
		p.MapChildren = atomicProtocol.MapChildren
	}
	if p.Key == nil {
		p.Key = atomicProtocol.Key
	}
	if p.Concrete == nil {
		p.Concrete = atomicProtocol.Concrete
	}
	return &p
}

var (
	parentType      = reflect.TypeFor[Parent]()
	childMapperType = reflect.TypeFor[ChildMapper]()
	keyerType       = reflect.TypeFor[Keyer]()
	concreterType   = reflect.TypeFor[Concreter]()
)

// methodProtocol derives a capability record from the method interfaces.
func methodProtocol(t reflect.Type) Protocol {
	var p Protocol
	if t.Implements(parentType) {
		p.Children = func(v any) []*Box { return v.(Parent).Children() }
	}
	if t.Implements(childMapperType) {
		p.MapChildren = func(v any, fn func(any) any) any { return v.(ChildMapper).MapChildren(fn) }
	}
	if t.Implements(keyerType) {
		p.Key = func(v any) any { return v.(Keyer).DispatchKey() }
	}
	if t.Implements(concreterType) {
		p.Concrete = func(v any) bool { return v.(Concreter).Concrete() }
	}
	return p
}

var atomicProtocol = Protocol{
	Children:    func(any) []*Box { return nil },
	MapChildren: func(v any, _ func(any) any) any { return v },
	Key:         func(v any) any { return reflect.TypeOf(v) },
	Concrete:    func(any) bool { return true },
}

// Children returns the boxes directly contained in v.
func Children(v any) []*Box { return protocolOf(v).Children(v) }

// MapChildren returns v rebuilt with fn applied to every directly contained
// value. The result has the same shape as v.
func MapChildren(v any, fn func(any) any) any { return protocolOf(v).MapChildren(v, fn) }

// KeyOf returns the dispatch key of v. By default this is its runtime type,
// so payloads sharing a type share a handler chain.
func KeyOf(v any) any { return protocolOf(v).Key(v) }

// KeyFor returns the default dispatch key of payloads of type T.
func KeyFor[T any]() any { return reflect.TypeFor[T]() }

// IsConcrete reports whether v is resolved. Values still awaiting a provider
// report false.
func IsConcrete(v any) bool { return protocolOf(v).Concrete(v) }

// IsConcreteTree reports whether v and the values of all boxes reachable
// through its children are concrete.
func IsConcreteTree(v any) bool {
	seen := map[*Box]struct{}{}
	var walk func(v any) bool
	walk = func(v any) bool {
		if !IsConcrete(v) {
			return false
		}
		for _, c := range Children(v) {
			if c == nil {
				return false
			}
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			if !walk(c.Value) {
				return false
			}
		}
		return true
	}
	return walk(v)
}

func init() {
	RegisterNode(Node[[]*Box]{
		Children: func(v []*Box) []*Box { return v },
		MapChildren: func(v []*Box, fn func(any) any) []*Box {
			if v == nil {
				return nil
			}
			out := make([]*Box, len(v))
			for i, b := range v {
				out[i], _ = fn(b).(*Box)
			}
			return out
		},
	})
}
