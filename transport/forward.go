// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package transport

import "io"

// Forwarder relays framed messages from a source to a destination while
// preserving message boundaries, without decoding them as u-RPC messages.
// It is useful for building a transparent bridge between two transports
// (e.g. a Unix socket and a TCP listener) that both carry the same u-RPC
// traffic.
//
// Semantics (BinaryStream):
//   - One call to ForwardOnce processes at most one message.
//   - Two-phase state machine per message: read a whole payload from src
//     into an internal buffer, then write that payload as exactly one
//     framed message to dst.
//   - Returns (n, nil) once a whole message has been forwarded.
//   - Returns (n>0, ErrWouldBlock|ErrMore) when progress happened in the
//     current phase but forwarding this message is incomplete.
//
// Semantics (SeqPacket/Datagram): one packet in, one packet out, per call.
//
// Retry rule: on ErrWouldBlock or ErrMore, the caller must retry
// ForwardOnce on the SAME Forwarder instance to complete the in-flight
// message; the in-flight state is internal to that instance.
type Forwarder struct {
	rr *engine
	ww *engine

	buf []byte

	need  int
	got   int
	state uint8 // 0: parse header, 1: read payload, 2: write frame

	eofAfterThis bool
	eofPending   bool
}

// NewForwarder constructs a Forwarder that relays messages from src to
// dst. Options apply per direction following Reader/Writer's rules.
func NewForwarder(dst io.Writer, src io.Reader, opts ...Option) *Forwarder {
	rr := newEngine(src, nil, opts...)
	ww := newEngine(nil, dst, opts...)
	capHint := rr.readLimit
	if capHint <= 0 {
		capHint = defaultReadBuf
	}
	return &Forwarder{rr: rr, ww: ww, buf: make([]byte, capHint)}
}

// ForwardOnce forwards at most one message. See Forwarder docs for
// semantics. n reflects progress in the current phase: during the read
// phase it is payload bytes read this call, during the write phase it is
// payload bytes written this call.
func (f *Forwarder) ForwardOnce() (n int, err error) {
	if f.state == 0 && f.eofPending {
		return 0, io.EOF
	}

	if f.state == 0 {
		if !f.rr.rpr.preserveBoundary() {
			_, e := f.rr.read(nil)
			if e != nil {
				if e == io.ErrShortBuffer {
					if f.rr.length > int64(cap(f.buf)) {
						return 0, io.ErrShortBuffer
					}
					f.need = int(f.rr.length)
					f.got = 0
					f.state = 1
				} else {
					if e == io.EOF {
						return 0, io.EOF
					}
					return 0, e
				}
			} else {
				f.need = 0
				f.got = 0
				f.state = 2
			}
		} else {
			f.got = 0
			f.need = 0
			f.state = 1
		}
	}

	if f.state == 1 {
		if f.rr.rpr.preserveBoundary() {
			max := cap(f.buf)
			if f.rr.readLimit > 0 && int64(max) > f.rr.readLimit {
				max = int(f.rr.readLimit)
			}
			rn, re := f.rr.read(f.buf[f.got:max])
			f.got += rn
			if re != nil {
				switch re {
				case ErrWouldBlock, ErrMore, ErrTooLong:
					return rn, re
				case io.EOF:
					if f.got == 0 {
						return 0, io.EOF
					}
					f.eofAfterThis = true
				default:
					return rn, re
				}
			}
			f.need = f.got
			f.state = 2
		} else {
			for f.got < f.need {
				rn, re := f.rr.read(f.buf[:f.need])
				f.got += rn
				if re != nil {
					if re == ErrWouldBlock || re == ErrMore {
						return rn, re
					}
					if re == io.EOF {
						return f.got, io.ErrUnexpectedEOF
					}
					return rn, re
				}
			}
			f.state = 2
		}
	}

	if f.state == 2 {
		wn, we := f.ww.write(f.buf[:f.need])
		if we != nil {
			return wn, we
		}
		if f.eofAfterThis {
			f.eofAfterThis = false
			f.eofPending = true
		}
		f.state = 0
		f.need = 0
		f.got = 0
		return wn, nil
	}

	return 0, nil
}
