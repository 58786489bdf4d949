// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package urpc implements the core of a miniature RPC framework for
// constrained peer-to-peer links: one endpoint per peer, a rolling
// message-id correlation scheme, a signature-checked marshalling codec for
// a small primitive type system, a freelist-backed handle table for
// registered functions, and a type-adapter layer that lifts ordinary Go
// callables into the wire's uniform function shape.
//
// An Endpoint consumes and produces exactly one message per Recv/SendHook
// call; framing a byte stream into discrete messages is the transport's
// job, not this package's — see the transport subpackage for an optional
// adapter.
package urpc
