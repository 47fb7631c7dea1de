// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uarray

import "fmt"

// Box is the mutable node of a rewritable expression tree.
//
// Value is the only field that changes after construction; the rewrite
// engine overwrites it in place when a handler accepts the node. The
// identifying metadata is fixed by the constructor and carried over
// unchanged by [Copy] and [Box.With].
type Box struct {
	Value any
	meta  any
}

// NewBox returns a Box holding v with no identifying metadata.
func NewBox(v any) *Box {
	return &Box{Value: v}
}

// NewMetaBox returns a Box holding v whose identifying metadata is meta.
// Metadata distinguishes boxes of the same payload type, e.g. an element
// type marker attached by a backend.
func NewMetaBox(meta, v any) *Box {
	return &Box{Value: v, meta: meta}
}

// Meta returns the identifying metadata set at construction.
func (b *Box) Meta() any { return b.meta }

// With returns a new Box with the same identifying metadata and value v.
// Handlers use it to build their accepted result.
func (b *Box) With(v any) *Box {
	return &Box{Value: v, meta: b.meta}
}

// String formats the box and its payload.
func (b *Box) String() string {
	if b == nil {
		return "Box(<nil>)"
	}
	if b.meta != nil {
		return fmt.Sprintf("Box[%v](%v)", b.meta, b.Value)
	}
	return fmt.Sprintf("Box(%v)", b.Value)
}
