// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uarray

import (
	"errors"
	"fmt"
)

var (
	// ErrNotBox is the structural error: a value that is not a Box was used
	// as a rewrite target.
	ErrNotBox = errors.New("uarray: not a box")

	// ErrFrozenTable is returned when registering into the default table.
	ErrFrozenTable = errors.New("uarray: table is frozen")

	// ErrUnresolved is returned by an operation whose expression reached a
	// fixpoint without becoming concrete and that has no default.
	ErrUnresolved = errors.New("uarray: unresolved at fixpoint")

	// ErrArity is returned when an operation is invoked with the wrong
	// number of arguments.
	ErrArity = errors.New("uarray: wrong number of arguments")
)

// NotBoxError reports the value that was used as a rewrite target.
// Parent is set when the value was found among the children of a box.
type NotBoxError struct {
	Value  any
	Parent *Box
}

func (e *NotBoxError) Error() string {
	if e.Parent != nil {
		return fmt.Sprintf("uarray: not a box: child %T of %T", e.Value, e.Parent.Value)
	}
	return fmt.Sprintf("uarray: not a box: %T", e.Value)
}

func (e *NotBoxError) Unwrap() error { return ErrNotBox }

// UnresolvedError reports the operation and the node left at the fixpoint.
type UnresolvedError struct {
	Op   *Operation
	Node *Box
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("uarray: %s: no backend resolved the expression", e.Op.Name())
}

func (e *UnresolvedError) Unwrap() error { return ErrUnresolved }

// HandlerError wraps an error returned by a replacement handler with the
// dispatch key under which the handler was found.
type HandlerError struct {
	Key any
	Err error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("uarray: handler for %v: %v", e.Key, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }
