// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/binary"

	"code.hybscloud.com/urpc/internal/bo"
)

// Network option helpers and mapping.
//
// Single source of truth — transport → (Protocol, ByteOrder):
//   - TCP               → BinaryStream, BigEndian (network byte order)
//   - UDP               → Datagram,     BigEndian
//   - WebSocket         → SeqPacket,    BigEndian // boundaries preserved; pass-through
//   - SCTP              → SeqPacket,    BigEndian // boundaries preserved
//   - Unix (stream)     → BinaryStream, BigEndian
//   - UnixPacket        → Datagram,     BigEndian
//   - Local (stream)    → BinaryStream, native byte order
type netKind uint8

const (
	netTCP netKind = iota
	netUDP
	netWebSocket
	netSCTP
	netUnixStream
	netUnixPacket
	netLocalStream
)

func defaultsFor(kind netKind) (Protocol, binary.ByteOrder) {
	switch kind {
	case netTCP:
		return BinaryStream, binary.BigEndian
	case netUDP:
		return Datagram, binary.BigEndian
	case netWebSocket:
		return SeqPacket, binary.BigEndian
	case netSCTP:
		return SeqPacket, binary.BigEndian
	case netUnixStream:
		return BinaryStream, binary.BigEndian
	case netUnixPacket:
		return Datagram, binary.BigEndian
	case netLocalStream:
		return BinaryStream, bo.Native()
	default:
		return BinaryStream, binary.BigEndian
	}
}

// WithTCP configures both directions for TCP: BinaryStream with a
// BigEndian length prefix.
func WithTCP() Option {
	return func(o *Options) {
		p, ord := defaultsFor(netTCP)
		o.ReadProto, o.WriteProto = p, p
		o.ReadByteOrder, o.WriteByteOrder = ord, ord
	}
}

// WithUDP configures both directions for UDP: Datagram pass-through.
func WithUDP() Option {
	return func(o *Options) {
		p, ord := defaultsFor(netUDP)
		o.ReadProto, o.WriteProto = p, p
		o.ReadByteOrder, o.WriteByteOrder = ord, ord
	}
}

// WithWebSocket configures both directions for WebSocket: SeqPacket
// pass-through (the websocket layer already preserves message boundaries).
func WithWebSocket() Option {
	return func(o *Options) {
		p, ord := defaultsFor(netWebSocket)
		o.ReadProto, o.WriteProto = p, p
		o.ReadByteOrder, o.WriteByteOrder = ord, ord
	}
}

// WithSCTP configures both directions for SCTP: SeqPacket pass-through.
func WithSCTP() Option {
	return func(o *Options) {
		p, ord := defaultsFor(netSCTP)
		o.ReadProto, o.WriteProto = p, p
		o.ReadByteOrder, o.WriteByteOrder = ord, ord
	}
}

// WithUnix configures both directions for Unix stream sockets:
// BinaryStream, BigEndian.
func WithUnix() Option {
	return func(o *Options) {
		p, ord := defaultsFor(netUnixStream)
		o.ReadProto, o.WriteProto = p, p
		o.ReadByteOrder, o.WriteByteOrder = ord, ord
	}
}

// WithUnixPacket configures both directions for Unix datagram sockets:
// Datagram pass-through.
func WithUnixPacket() Option {
	return func(o *Options) {
		p, ord := defaultsFor(netUnixPacket)
		o.ReadProto, o.WriteProto = p, p
		o.ReadByteOrder, o.WriteByteOrder = ord, ord
	}
}

// WithLocal configures both directions for an in-process transport
// (e.g. io.Pipe): BinaryStream, native byte order.
func WithLocal() Option {
	return func(o *Options) {
		p, ord := defaultsFor(netLocalStream)
		o.ReadProto, o.WriteProto = p, p
		o.ReadByteOrder, o.WriteByteOrder = ord, ord
	}
}
