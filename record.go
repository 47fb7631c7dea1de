// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uarray

import (
	"context"
	"sync"
)

// EventKind classifies what happened when the engine consulted the table
// for one node.
type EventKind uint8

const (
	// EventRewrote: a handler accepted the node.
	EventRewrote EventKind = iota + 1
	// EventNoChain: no handler is registered for the node's key.
	EventNoChain
	// EventDeclined: handlers are registered but all of them declined.
	EventDeclined
)

func (k EventKind) String() string {
	switch k {
	case EventRewrote:
		return "rewrote"
	case EventNoChain:
		return "no-chain"
	case EventDeclined:
		return "declined"
	}
	return "unknown"
}

// Event is one table consultation.
type Event struct {
	Kind EventKind
	Key  any
	Box  *Box
}

// Recorder accumulates events. [Step] reports a fixpoint the same way for
// an absent chain and a declining one; a recorder tells them apart.
// Recorder is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	output []Event
}

type recorderKey struct{}

// WithRecorder returns a context under which the engine appends an event
// to r for every table consultation.
func WithRecorder(ctx context.Context, r *Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, r)
}

func recorderFrom(ctx context.Context) *Recorder {
	r, _ := ctx.Value(recorderKey{}).(*Recorder)
	return r
}

// tell appends e; no-op on a nil recorder.
func (r *Recorder) tell(e Event) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.output = append(r.output, e)
	r.mu.Unlock()
}

// Events returns a copy of the accumulated events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	written := make([]Event, len(r.output))
	copy(written, r.output)
	return written
}

// Count returns the number of accumulated events of kind k.
func (r *Recorder) Count(k EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.output {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Reset discards the accumulated events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.output = r.output[:0]
	r.mu.Unlock()
}
