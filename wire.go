// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package urpc

// MsgType names one of the five u-RPC message kinds.
type MsgType uint8

const (
	MsgError      MsgType = 0
	MsgFuncQuery  MsgType = 1
	MsgFuncResp   MsgType = 2
	MsgCall       MsgType = 3
	MsgCallResult MsgType = 4
)

const (
	// magicNibble and protoVersion make up Layout B's single header byte:
	// (magicNibble<<4)|protoVersion.
	magicNibble  byte   = 10
	protoVersion byte   = 1
	legacyMagic  uint16 = 29301 // Layout A's two-byte magic, little-endian
	legacyVersion byte  = 0
)

// defaultMaxPayload is the sanity ceiling from spec §6: a 4-byte header,
// two VARY fields of 1 + 256 bytes each (a signature and a payload), and
// 256 eight-byte primitives.
const defaultMaxPayload = 4 + 1 + 256 + 1 + 256 + 8*256

// buildHeader writes a Layout B header for msgType, assigns it the
// current value of *counter as its message id, and advances the counter
// (wrapping modulo 2^16). It returns the writer Codec positioned after
// the header and the assigned id.
func buildHeader(msgType MsgType, counter *uint16) (*Codec, uint16) {
	id := *counter
	c := newWriter()
	_ = c.WritePrimitive(U8, (magicNibble<<4)|protoVersion)
	_ = c.WritePrimitive(U16, id)
	_ = c.WritePrimitive(U8, uint8(msgType))
	*counter++
	return c, id
}

// parseHeader reads a message header, accepting Layout B always and
// Layout A when acceptLayoutA is set, selecting between them by the high
// nibble of the first byte.
func parseHeader(c *Codec, acceptLayoutA bool) (id uint16, msgType MsgType, err *Error) {
	b0v, rerr := c.ReadPrimitive(U8)
	if rerr != nil {
		return 0, 0, errBrokenMsg()
	}
	b0 := b0v.(uint8)

	if b0>>4 == magicNibble {
		if b0&0x0F != protoVersion {
			return 0, 0, errNoSupport()
		}
		idv, rerr := c.ReadPrimitive(U16)
		if rerr != nil {
			return 0, 0, errBrokenMsg()
		}
		id = idv.(uint16)
		tv, rerr := c.ReadPrimitive(U8)
		if rerr != nil {
			return id, 0, errBrokenMsg()
		}
		return id, MsgType(tv.(uint8)), nil
	}

	if !acceptLayoutA {
		return 0, 0, errBrokenMsg()
	}
	b1v, rerr := c.ReadPrimitive(U8)
	if rerr != nil {
		return 0, 0, errBrokenMsg()
	}
	magic := uint16(b0) | uint16(b1v.(uint8))<<8
	if magic != legacyMagic {
		return 0, 0, errBrokenMsg()
	}
	verv, rerr := c.ReadPrimitive(U8)
	if rerr != nil {
		return 0, 0, errBrokenMsg()
	}
	if verv.(uint8) != legacyVersion {
		return 0, 0, errNoSupport()
	}
	idv, rerr := c.ReadPrimitive(U16)
	if rerr != nil {
		return 0, 0, errBrokenMsg()
	}
	id = idv.(uint16)
	tv, rerr := c.ReadPrimitive(U8)
	if rerr != nil {
		return id, 0, errBrokenMsg()
	}
	return id, MsgType(tv.(uint8)), nil
}

// tagsFromBytes interprets raw VARY bytes as a signature, failing
// CodeNoSupport on any byte outside the closed tag set.
func tagsFromBytes(b []byte) ([]Tag, *Error) {
	tags := make([]Tag, len(b))
	for i, x := range b {
		if Tag(x) > VARY {
			return nil, errNoSupport()
		}
		tags[i] = Tag(x)
	}
	return tags, nil
}

func tagsToBytes(tags []Tag) []byte {
	b := make([]byte, len(tags))
	for i, t := range tags {
		b[i] = byte(t)
	}
	return b
}
