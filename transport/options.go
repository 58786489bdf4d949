// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/binary"
	"time"
)

// Protocol names a transport's boundary-preservation behavior: whether the
// underlying medium already delivers discrete messages, or whether this
// package must add its own length-prefix framing to recover message
// boundaries from a byte stream.
type Protocol uint8

const (
	// BinaryStream transports (TCP, Unix stream sockets, pipes) carry an
	// undifferentiated byte stream; a length-prefix header is added.
	BinaryStream Protocol = iota
	// SeqPacket transports preserve record boundaries but are not
	// addressed per-message (e.g. SCTP, WebSocket); pass-through.
	SeqPacket
	// Datagram transports (UDP, Unix datagram sockets) deliver one
	// message per underlying read/write; pass-through.
	Datagram
)

func (p Protocol) preserveBoundary() bool {
	return p == SeqPacket || p == Datagram
}

// Options configures a Reader, Writer, or Conn.
type Options struct {
	ReadProto  Protocol
	WriteProto Protocol

	ReadByteOrder  binary.ByteOrder
	WriteByteOrder binary.ByteOrder

	// ReadLimit caps the accepted message length. Zero means the wire
	// format's own maximum (2^56-1 bytes).
	ReadLimit int64

	// RetryDelay controls how a blocking read/write loop waits out an
	// iox.ErrWouldBlock from the underlying transport: negative means
	// "don't retry, propagate immediately", zero means cooperative
	// Gosched, positive is a fixed sleep.
	RetryDelay time.Duration
}

var defaultOptions = Options{
	ReadProto:      BinaryStream,
	WriteProto:     BinaryStream,
	ReadByteOrder:  binary.BigEndian,
	WriteByteOrder: binary.BigEndian,
}

// Option configures Options.
type Option func(*Options)

// WithReadLimit bounds the accepted message length on the read side.
func WithReadLimit(n int64) Option {
	return func(o *Options) { o.ReadLimit = n }
}

// WithRetryDelay sets how long a blocking Conn waits between
// iox.ErrWouldBlock retries.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryDelay = d }
}
