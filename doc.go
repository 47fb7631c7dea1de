// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package uarray provides scoped multiple dispatch by fixpoint rewriting
// in Go.
//
// Code written once against a catalogue of abstract operations runs
// against whichever backends are active in the caller's scope. An
// operation invocation becomes a tree of [Box] nodes; the engine rewrites
// that tree, innermost node first, by asking the active dispatch table for
// a replacement of each node, until no handler applies.
//
// # Design Philosophy
//
// uarray provides:
//   - A type-agnostic substrate: no notion of arrays, numbers, or backend
//     selection heuristics
//   - Open per-type extension without engine changes
//   - Dynamically scoped dispatch that never leaks across goroutines
//
// # Tree Protocol
//
// Four functions describe how to walk and identify any payload. Unknown
// types are atomic.
//
//   - [Children]: Boxes directly contained in a value
//   - [MapChildren]: Rebuild a value with each child transformed
//   - [KeyOf]: Dispatch key, the runtime type by default
//   - [IsConcrete]: Whether a value still awaits a provider
//
// Types take part either by implementing [Parent], [ChildMapper], [Keyer]
// and [Concreter], or through [RegisterNode] / [RegisterProtocol].
// The capability record is resolved once per type and cached.
//
// # Deep Copy
//
//   - [Copy]: Cycle-safe structural clone that preserves sharing
//   - [Clone]: Copy a Box with a fresh, pooled identity map
//
// # Dispatch Table
//
// Handler dispatch returns an accepted [Result] carrying the replacement,
// or [Decline]. Declining is ordinary control flow, not an error.
//
//   - [Handler]: Replacement function
//   - [Chain]: Ordered handlers; first acceptance wins
//   - [Combine]: Chain-of-responsibility combinator
//   - [Table]: Key to chain mapping; registration prepends
//   - [Table.Layer]: Table that shadows a parent without modifying it
//   - [Default]: Frozen, empty process-wide table
//
// # Scoped Context
//
// The current table travels with a [context.Context]. Scopes are a strict
// stack and each [Scope] may be released exactly once. A context keeps the
// table it was derived with; leaving a scope means returning to the
// caller's context.
//
//   - [Current]: Table active in a context
//   - [ScopeFrom]: Innermost scope a context was derived from
//   - [Enter], [EnterLayer]: Activate a table, returning a [Scope]
//   - [WithScope], [WithLayer]: Bracketed activation, released on every
//     exit path including panics
//
// # Rewrite Engine
//
//   - [Step]: One in-place rewrite, innermost and leftmost first
//   - [Rewriter], [Rewrites]: Lazy, non-restartable sequence of steps
//   - [Replace]: Clone, then rewrite the clone to its fixpoint
//
// The only engine failure is the structural error [ErrNotBox]. A chain
// that keeps producing new non-fixpoint results never terminates; the
// engine imposes no iteration cap.
//
// # Operations
//
//   - [NewOperation]: Named, arity-fixed extension point
//   - [WithDefault]: Fallback when no backend resolves the call
//   - [RequireConcrete]: Handlers wait for concrete arguments
//   - [Register], [RegisterIn]: Install an implementation per argument key
//   - [ExtractArgs], [ExtractValue], [Extract]: Marshal to and from boxes
//
// # Diagnostics
//
//   - [WithLogger]: Debug logging of rewrites and scope changes (zap)
//   - [WithRecorder]: Per-node record telling absent chains from declines
//   - [Replace] emits an OpenTelemetry span per call
package uarray
