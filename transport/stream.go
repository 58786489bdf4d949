// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package transport adapts a byte-stream or packet transport (net.Conn,
// io.Pipe, a websocket connection, ...) into the discrete message
// boundaries a u-RPC Endpoint's Recv/SendHook pair expects.
//
// On stream transports (TCP, Unix stream sockets, pipes) it adds a
// compact length prefix and preserves one-message-per-Read/Write. On
// boundary-preserving transports (SeqPacket/Datagram: SCTP, UDP,
// WebSocket) it is pass-through. iox.ErrWouldBlock and iox.ErrMore are
// surfaced as control-flow signals (re-exposed as ErrWouldBlock/ErrMore)
// for hosts driving a non-blocking transport. Reads and writes retry
// ErrWouldBlock internally per RetryDelay (a negative RetryDelay returns
// it instead); ErrMore is not retried. Conn's Serve loop returns either
// to its caller and never passes them to the urpc.Endpoint.
//
// Wire format (stream mode): a 1-byte header followed by optional
// extended length bytes and then the payload. Let L be the payload
// length in bytes:
//   - 0 <= L <= 253: header[0] = L (no extended length)
//   - 254 <= L <= 65535: header[0] = 0xFE; next 2 bytes encode L
//   - 65536 <= L <= 2^56-1: header[0] = 0xFF; next 7 bytes encode the
//     lower 56 bits of L
//
// in the configured byte order. Maximum supported message is 2^56-1
// bytes; larger values produce ErrTooLong. A per-reader limit can be set
// via WithReadLimit.
package transport

import (
	"io"

	"code.hybscloud.com/iox"
)

// NewReader returns an io.Reader that reads one framed message per Read.
func NewReader(r io.Reader, opts ...Option) io.Reader {
	return &Reader{e: newEngine(r, nil, opts...)}
}

// NewWriter returns an io.Writer that writes one framed message per Write.
func NewWriter(w io.Writer, opts ...Option) io.Writer {
	return &Writer{e: newEngine(nil, w, opts...)}
}

// NewReadWriter returns an io.ReadWriter that reads and writes framed
// messages over the same underlying connection.
func NewReadWriter(r io.Reader, w io.Writer, opts ...Option) io.ReadWriter {
	e := newEngine(r, w, opts...)
	return &ReadWriter{Reader: &Reader{e: e}, Writer: &Writer{e: e}}
}

// NewPipe returns a synchronous in-memory framing pipe, handy for
// wiring two Endpoints together in tests without a real transport.
func NewPipe(opts ...Option) (reader io.Reader, writer io.Writer) {
	r, w := io.Pipe()
	pipe := NewReadWriter(r, w, opts...)
	return pipe, pipe
}

// Reader reads framed messages.
type Reader struct{ e *engine }

func (r *Reader) Read(p []byte) (int, error) { return r.e.read(p) }

// Writer writes framed messages.
type Writer struct{ e *engine }

func (w *Writer) Write(p []byte) (int, error) { return w.e.write(p) }

// ReadWriter groups Reader and Writer over one engine.
type ReadWriter struct {
	*Reader
	*Writer
}

// These are provided as package-level aliases so callers can reference
// the semantic control-flow errors without importing iox directly.
var (
	// ErrWouldBlock means "no further progress without waiting". It is an
	// expected, non-failure control-flow signal for non-blocking I/O; any
	// returned byte count still represents real progress.
	ErrWouldBlock = iox.ErrWouldBlock

	// ErrMore means "this completion is usable and more completions will
	// follow". The operation remains active and more data is expected.
	ErrMore = iox.ErrMore
)
