// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package urpc

import "testing"

func TestHeader_BuildParseRoundTrip(t *testing.T) {
	t.Parallel()

	var counter uint16
	c, id := buildHeader(MsgCall, &counter)
	if id != 0 {
		t.Fatalf("first id = %d, want 0", id)
	}
	if counter != 1 {
		t.Fatalf("counter after build = %d, want 1", counter)
	}

	gotID, gotType, err := parseHeader(newReader(c.Bytes()), false)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if gotID != id || gotType != MsgCall {
		t.Fatalf("got (id=%d, type=%d), want (id=%d, type=%d)", gotID, gotType, id, MsgCall)
	}
}

func TestHeader_CounterWraps(t *testing.T) {
	t.Parallel()

	counter := uint16(0xFFFF)
	_, id := buildHeader(MsgError, &counter)
	if id != 0xFFFF {
		t.Fatalf("id = %d, want 0xFFFF", id)
	}
	if counter != 0 {
		t.Fatalf("counter after wrap = %d, want 0", counter)
	}
}

func TestParseHeader_LayoutA(t *testing.T) {
	t.Parallel()

	w := newWriter()
	_ = w.WritePrimitive(U16, legacyMagic)
	_ = w.WritePrimitive(U8, legacyVersion)
	_ = w.WritePrimitive(U16, uint16(7))
	_ = w.WritePrimitive(U8, uint8(MsgFuncQuery))

	id, msgType, err := parseHeader(newReader(w.Bytes()), true)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if id != 7 || msgType != MsgFuncQuery {
		t.Fatalf("got (id=%d, type=%d), want (id=7, type=%d)", id, msgType, MsgFuncQuery)
	}
}

func TestParseHeader_LayoutA_RejectedWhenDisabled(t *testing.T) {
	t.Parallel()

	w := newWriter()
	_ = w.WritePrimitive(U16, legacyMagic)
	_ = w.WritePrimitive(U8, legacyVersion)
	_ = w.WritePrimitive(U16, uint16(1))
	_ = w.WritePrimitive(U8, uint8(MsgCall))

	_, _, err := parseHeader(newReader(w.Bytes()), false)
	if err == nil || err.Code != CodeBrokenMsg {
		t.Fatalf("err = %v, want CodeBrokenMsg", err)
	}
}

func TestParseHeader_UnknownVersion(t *testing.T) {
	t.Parallel()

	w := newWriter()
	_ = w.WritePrimitive(U8, (magicNibble<<4)|0x0F)
	_ = w.WritePrimitive(U16, uint16(0))
	_ = w.WritePrimitive(U8, uint8(MsgCall))

	_, _, err := parseHeader(newReader(w.Bytes()), false)
	if err == nil || err.Code != CodeNoSupport {
		t.Fatalf("err = %v, want CodeNoSupport", err)
	}
}

func TestTagsBytesRoundTrip(t *testing.T) {
	t.Parallel()

	want := []Tag{I8, U16, VARY, I64}
	tags, err := tagsFromBytes(tagsToBytes(want))
	if err != nil {
		t.Fatalf("tagsFromBytes: %v", err)
	}
	if len(tags) != len(want) {
		t.Fatalf("len(tags) = %d, want %d", len(tags), len(want))
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("tags[%d] = %v, want %v", i, tags[i], want[i])
		}
	}
}

func TestTagsFromBytes_RejectsUnknownTag(t *testing.T) {
	t.Parallel()

	_, err := tagsFromBytes([]byte{0xFF})
	if err == nil || err.Code != CodeNoSupport {
		t.Fatalf("err = %v, want CodeNoSupport", err)
	}
}
