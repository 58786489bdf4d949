// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/binary"
	"io"
	"runtime"
	"time"
)

const (
	frameHeaderLen          = 1
	framePayloadMaxLen8Bits = 1<<8 - 3
	framePayloadMaxLen16    = 1<<16 - 1
	framePayloadMaxLen56    = 1<<56 - 1
)

// engine is the message-framing state machine shared by Reader and Writer.
// On BinaryStream transports it adds a compact length prefix and preserves
// one-message-per-Read/Write; on boundary-preserving transports it is
// pass-through.
type engine struct {
	rd  io.Reader
	rbo binary.ByteOrder
	rpr Protocol
	wr  io.Writer
	wbo binary.ByteOrder
	wpr Protocol

	readLimit int64

	retryDelay time.Duration

	header [8]byte
	length int64
	offset int64

	rbuf []byte
	wbuf []byte
}

func newEngine(r io.Reader, w io.Writer, opts ...Option) *engine {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return &engine{
		rd:         r,
		wr:         w,
		rbo:        o.ReadByteOrder,
		wbo:        o.WriteByteOrder,
		rpr:        o.ReadProto,
		wpr:        o.WriteProto,
		readLimit:  o.ReadLimit,
		retryDelay: o.RetryDelay,
	}
}

func (e *engine) reset() {
	e.offset = 0
	e.length = 0
}

func (e *engine) read(p []byte) (n int, err error) {
	if e.rd == nil {
		return 0, ErrInvalidArgument
	}
	if e.rpr.preserveBoundary() {
		return e.readPacket(p)
	}
	return e.readStream(p)
}

func (e *engine) write(p []byte) (n int, err error) {
	if e.wr == nil {
		return 0, ErrInvalidArgument
	}
	if e.wpr.preserveBoundary() {
		return e.writePacket(p)
	}
	return e.writeStream(p)
}

func (e *engine) waitOnceOnWouldBlock() bool {
	if e.retryDelay < 0 {
		return false
	}
	if e.retryDelay == 0 {
		runtime.Gosched()
		return true
	}
	time.Sleep(e.retryDelay)
	return true
}

func (e *engine) readOnce(p []byte) (n int, err error) {
	for {
		n, err = e.rd.Read(p)
		if len(p) != 0 && n == 0 && err == nil {
			return 0, io.ErrNoProgress
		}
		if n > 0 {
			return n, err
		}
		if err != ErrWouldBlock {
			return n, err
		}
		if !e.waitOnceOnWouldBlock() {
			return n, err
		}
	}
}

func (e *engine) writeOnce(p []byte) (n int, err error) {
	for {
		n, err = e.wr.Write(p)
		if len(p) != 0 && n == 0 && err == nil {
			return 0, io.ErrShortWrite
		}
		if n > 0 {
			return n, err
		}
		if err != ErrWouldBlock {
			return n, err
		}
		if !e.waitOnceOnWouldBlock() {
			return n, err
		}
	}
}

func (e *engine) readPacket(p []byte) (n int, err error) {
	n, err = e.readOnce(p)
	if e.readLimit > 0 && int64(n) > e.readLimit {
		return n, ErrTooLong
	}
	return n, err
}

func (e *engine) writePacket(p []byte) (n int, err error) {
	if int64(len(p)) > framePayloadMaxLen56 {
		return 0, ErrTooLong
	}
	n, err = e.writeOnce(p)
	if err != nil {
		return n, err
	}
	if n != len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

func (e *engine) readStream(p []byte) (n int, err error) {
	for e.offset < frameHeaderLen {
		rn, re := e.readOnce(e.header[e.offset:frameHeaderLen])
		e.offset += int64(rn)
		if re != nil {
			if re == io.EOF {
				if e.offset == 0 {
					return 0, io.EOF
				}
				if e.offset < frameHeaderLen {
					return 0, io.ErrUnexpectedEOF
				}
				break
			}
			return 0, re
		}
	}

	exLen := int64(0)
	if e.offset >= frameHeaderLen {
		switch e.header[0] {
		case framePayloadMaxLen8Bits + 1:
			exLen = 2
		case framePayloadMaxLen8Bits + 2:
			exLen = 7
		}
	}

	for e.offset < frameHeaderLen+exLen {
		rn, re := e.readOnce(e.header[e.offset : frameHeaderLen+exLen])
		e.offset += int64(rn)
		if re != nil {
			if re == io.EOF {
				if e.offset < frameHeaderLen+exLen {
					return 0, io.ErrUnexpectedEOF
				}
				break
			}
			return 0, re
		}
	}

	if e.offset == frameHeaderLen+exLen {
		if exLen == 2 {
			e.length = int64(e.rbo.Uint16(e.header[frameHeaderLen : frameHeaderLen+exLen]))
		} else if exLen == 7 {
			u64 := e.rbo.Uint64(e.header[:])
			if e.rbo == binary.LittleEndian {
				e.length = int64(u64 >> 8)
			} else {
				e.length = int64(u64 & framePayloadMaxLen56)
			}
		} else {
			e.length = int64(e.header[0])
		}
	}

	if e.length < 0 || e.length > framePayloadMaxLen56 {
		return 0, ErrTooLong
	}
	if e.readLimit > 0 && e.length > e.readLimit {
		return 0, ErrTooLong
	}
	if int64(len(p)) < e.length {
		return 0, io.ErrShortBuffer
	}

	hdrSize := frameHeaderLen + exLen
	for e.offset < hdrSize+e.length {
		payloadOff := e.offset - hdrSize
		rn, re := e.readOnce(p[payloadOff:e.length])
		e.offset += int64(rn)
		n += rn
		if re != nil {
			if re == io.EOF {
				if e.offset < hdrSize+e.length {
					return n, io.ErrUnexpectedEOF
				}
				break
			}
			return n, re
		}
	}

	e.reset()
	return n, nil
}

func (e *engine) writeStream(p []byte) (n int, err error) {
	if int64(len(p)) > framePayloadMaxLen56 {
		return 0, ErrTooLong
	}

	if e.offset == 0 {
		e.length = int64(len(p))
	}
	if e.length != int64(len(p)) {
		return 0, io.ErrShortWrite
	}

	exLen := int64(0)
	if e.length <= framePayloadMaxLen8Bits {
		exLen = 0
	} else if e.length <= framePayloadMaxLen16 {
		exLen = 2
	} else {
		exLen = 7
	}

	if e.offset == 0 {
		if e.length <= framePayloadMaxLen8Bits {
			e.header[0] = byte(e.length)
		} else if e.length <= framePayloadMaxLen16 {
			e.header[0] = framePayloadMaxLen8Bits + 1
			e.wbo.PutUint16(e.header[frameHeaderLen:frameHeaderLen+exLen], uint16(e.length))
		} else {
			if e.wbo == binary.LittleEndian {
				e.wbo.PutUint64(e.header[:], uint64(e.length)<<8)
			} else {
				e.wbo.PutUint64(e.header[:], uint64(e.length&framePayloadMaxLen56))
			}
			e.header[0] = framePayloadMaxLen8Bits + 2
		}
	}

	hdrSize := frameHeaderLen + exLen
	for e.offset < hdrSize {
		wn, we := e.writeOnce(e.header[e.offset:hdrSize])
		e.offset += int64(wn)
		if we != nil {
			return 0, we
		}
	}

	for e.offset < hdrSize+e.length {
		payloadOff := e.offset - hdrSize
		wn, we := e.writeOnce(p[payloadOff:])
		e.offset += int64(wn)
		n += wn
		if we != nil {
			return n, we
		}
	}

	e.reset()
	return n, nil
}
