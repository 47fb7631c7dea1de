// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uarray

// Result is the outcome of a replacement handler: either Accepted with the
// replacement box or Declined. The zero Result is a decline.
type Result struct {
	accepted bool
	box      *Box
}

// Accept creates an accepted Result carrying the replacement b.
// Accepting a nil box is a decline.
func Accept(b *Box) Result {
	if b == nil {
		return Result{}
	}
	return Result{accepted: true, box: b}
}

// Decline reports that a handler does not apply to the node it was given.
// The engine then tries the next handler in the chain, and stops at a
// fixpoint for the node once every handler has declined.
func Decline() Result { return Result{} }

// Accepted returns true if this is an accepted Result.
func (r Result) Accepted() bool { return r.accepted }

// Declined returns true if this is a declined Result.
func (r Result) Declined() bool { return !r.accepted }

// Box returns the replacement box and true, or nil and false.
func (r Result) Box() (*Box, bool) {
	if r.accepted {
		return r.box, true
	}
	return nil, false
}

// MatchResult pattern matches on the Result, calling onDecline or onAccept.
func MatchResult[T any](r Result, onDecline func() T, onAccept func(*Box) T) T {
	if r.accepted {
		return onAccept(r.box)
	}
	return onDecline()
}
