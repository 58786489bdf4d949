// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package urpc

import (
	"encoding/binary"
	"unicode/utf8"
)

// Tag is a u-RPC primitive type tag: a single byte from a closed set.
type Tag uint8

const (
	I8 Tag = iota
	U8
	I16
	U16
	I32
	U32
	I64
	U64
	// VARY is the variable-length primitive: a one-byte length prefix
	// followed by that many bytes (0-255).
	VARY
)

// tagSize returns the fixed wire size of tag, or ok=false for VARY and any
// tag outside the closed set.
func tagSize(tag Tag) (n int, ok bool) {
	switch tag {
	case I8, U8:
		return 1, true
	case I16, U16:
		return 2, true
	case I32, U32:
		return 4, true
	case I64, U64:
		return 8, true
	default:
		return 0, false
	}
}

// Codec is a byte cursor over an in-memory buffer with a forward-only
// position. The same type serves both directions: newReader wraps an
// existing buffer for parsing, newWriter starts from an empty buffer that
// grows as values are written.
type Codec struct {
	buf []byte
	pos int
}

func newReader(data []byte) *Codec { return &Codec{buf: data} }

func newWriter() *Codec { return &Codec{buf: make([]byte, 0, 16)} }

// Bytes returns the accumulated write buffer. Only meaningful on a writer
// Codec.
func (c *Codec) Bytes() []byte { return c.buf }

// Remaining reports how many unread bytes are left on a reader Codec.
func (c *Codec) Remaining() int { return len(c.buf) - c.pos }

// ReadPrimitive consumes exactly tagSize(tag) bytes and interprets them as
// a little-endian value of the width and signedness tag implies. It fails
// CodeBrokenMsg if the buffer is short.
func (c *Codec) ReadPrimitive(tag Tag) (any, *Error) {
	n, ok := tagSize(tag)
	if !ok {
		return nil, errNoSupport()
	}
	if c.pos+n > len(c.buf) {
		return nil, errBrokenMsg()
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	switch tag {
	case I8:
		return int8(b[0]), nil
	case U8:
		return b[0], nil
	case I16:
		return int16(binary.LittleEndian.Uint16(b)), nil
	case U16:
		return binary.LittleEndian.Uint16(b), nil
	case I32:
		return int32(binary.LittleEndian.Uint32(b)), nil
	case U32:
		return binary.LittleEndian.Uint32(b), nil
	case I64:
		return int64(binary.LittleEndian.Uint64(b)), nil
	case U64:
		return binary.LittleEndian.Uint64(b), nil
	default:
		return nil, errNoSupport()
	}
}

// WritePrimitive appends tagSize(tag) little-endian bytes for v. v may be
// any Go integer kind; it is truncated to the tag's width. Fitting the
// value into that width is the caller's responsibility.
func (c *Codec) WritePrimitive(tag Tag, v any) *Error {
	n, ok := tagSize(tag)
	if !ok {
		return errNoSupport()
	}
	bits, ok := toBits(v)
	if !ok {
		return errSigIncorrect()
	}
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], bits)
	c.buf = append(c.buf, tmp[:n]...)
	return nil
}

// ReadVary reads one U8 length L followed by L bytes. It fails
// CodeBrokenMsg on a short read.
func (c *Codec) ReadVary() ([]byte, *Error) {
	lv, err := c.ReadPrimitive(U8)
	if err != nil {
		return nil, err
	}
	l := int(lv.(uint8))
	if c.pos+l > len(c.buf) {
		return nil, errBrokenMsg()
	}
	data := make([]byte, l)
	copy(data, c.buf[c.pos:c.pos+l])
	c.pos += l
	return data, nil
}

// WriteVary writes one U8 length followed by b. It fails CodeTooLong if
// len(b) >= 256.
func (c *Codec) WriteVary(b []byte) *Error {
	if len(b) >= 256 {
		return errTooLong()
	}
	if err := c.WritePrimitive(U8, uint8(len(b))); err != nil {
		return err
	}
	c.buf = append(c.buf, b...)
	return nil
}

// utf8Valid reports whether b is well-formed UTF-8, used when decoding
// the name carried by a FUNC_QUERY message.
func utf8Valid(b []byte) bool { return utf8.Valid(b) }

// toBits widens any Go integer value to its raw uint64 bit pattern (via a
// sign-extending int64 round trip for signed kinds), ready for
// little-endian truncation to a narrower tag width.
func toBits(v any) (uint64, bool) {
	switch x := v.(type) {
	case int:
		return uint64(int64(x)), true
	case int8:
		return uint64(int64(x)), true
	case int16:
		return uint64(int64(x)), true
	case int32:
		return uint64(int64(x)), true
	case int64:
		return uint64(x), true
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	default:
		return 0, false
	}
}
