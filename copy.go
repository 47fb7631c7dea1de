// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uarray

import (
	"reflect"
	"sync"
)

// identity is the map key under which [Copy] records a produced clone.
// Only reference-like values have one; everything else is rebuilt on
// every visit.
type identity struct {
	t   reflect.Type
	ptr uintptr
	n   int
}

func identityOf(v any) (identity, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if rv.IsNil() {
			return identity{}, false
		}
		return identity{t: rv.Type(), ptr: rv.Pointer()}, true
	case reflect.Slice:
		if rv.IsNil() {
			return identity{}, false
		}
		return identity{t: rv.Type(), ptr: rv.Pointer(), n: rv.Len()}, true
	}
	return identity{}, false
}

// Copy clones v and everything reachable from it through the tree protocol.
//
// seen maps already visited originals to their clones and is updated in
// place; pass an empty map to start a fresh copy. Two references to one
// original yield two references to one clone. A Box is recorded before its
// value is copied, so a cycle through boxes reuses the in-progress clone
// instead of recursing. Atomic values are returned unchanged.
func Copy(v any, seen map[any]any) any {
	if b, ok := v.(*Box); ok {
		return copyBox(b, seen)
	}
	id, ok := identityOf(v)
	if ok {
		if c, done := seen[id]; done {
			return c
		}
	}
	c := MapChildren(v, func(child any) any { return Copy(child, seen) })
	if ok {
		seen[id] = c
	}
	return c
}

func copyBox(b *Box, seen map[any]any) *Box {
	if b == nil {
		return nil
	}
	id, _ := identityOf(b)
	if c, done := seen[id]; done {
		return c.(*Box)
	}
	c := &Box{meta: b.meta}
	seen[id] = c
	c.Value = Copy(b.Value, seen)
	return c
}

// Clone returns a deep copy of b.
func Clone(b *Box) *Box {
	seen := acquireSeen()
	defer releaseSeen(seen)
	return copyBox(b, seen)
}

var seenPool = sync.Pool{
	New: func() any { return make(map[any]any) },
}

func acquireSeen() map[any]any {
	return seenPool.Get().(map[any]any)
}

// releaseSeen clears m and returns it to the pool.
func releaseSeen(m map[any]any) {
	clear(m)
	seenPool.Put(m)
}
