// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package urpc

import (
	"errors"
	"testing"
)

func TestWrap_PlainFunc(t *testing.T) {
	t.Parallel()

	h, err := Wrap([]any{I32, I32}, []any{I32}, func(a, b int32) int32 { return a + b })
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	retSig, rets, herr := h([]Tag{I32, I32}, []any{int32(2), int32(3)})
	if herr != nil {
		t.Fatalf("handler: %v", herr)
	}
	if len(retSig) != 1 || retSig[0] != I32 || rets[0] != int32(5) {
		t.Fatalf("got (%v, %v), want ([I32], [5])", retSig, rets)
	}
}

func TestWrap_TrailingError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	h, err := Wrap([]any{I32}, []any{I32}, func(a int32) (int32, error) {
		if a < 0 {
			return 0, boom
		}
		return a * 2, nil
	})
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}

	_, rets, herr := h([]Tag{I32}, []any{int32(3)})
	if herr != nil {
		t.Fatalf("handler: %v", herr)
	}
	if rets[0] != int32(6) {
		t.Fatalf("rets[0] = %v, want 6", rets[0])
	}

	_, _, herr = h([]Tag{I32}, []any{int32(-1)})
	uerr, ok := herr.(*Error)
	if !ok || uerr.Code != CodeException {
		t.Fatalf("herr = %v, want *Error{CodeException}", herr)
	}
}

func TestWrap_Panic(t *testing.T) {
	t.Parallel()

	h, err := Wrap([]any{I32}, []any{I32}, func(a int32) int32 { panic("nope") })
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	_, _, herr := h([]Tag{I32}, []any{int32(1)})
	uerr, ok := herr.(*Error)
	if !ok || uerr.Code != CodeException {
		t.Fatalf("herr = %v, want *Error{CodeException}", herr)
	}
}

func TestWrap_SigMismatch(t *testing.T) {
	t.Parallel()

	h, err := Wrap([]any{I32}, []any{I32}, func(a int32) int32 { return a })
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	_, _, herr := h([]Tag{U8}, []any{uint8(1)})
	uerr, ok := herr.(*Error)
	if !ok || uerr.Code != CodeSigIncorrect {
		t.Fatalf("herr = %v, want *Error{CodeSigIncorrect}", herr)
	}
}

func TestWrap_WithStringAdapter(t *testing.T) {
	t.Parallel()

	h, err := Wrap(
		[]any{NewStringType("utf-8")}, []any{NewStringType("utf-8")},
		func(s string) string { return s + s },
	)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	retSig, rets, herr := h([]Tag{VARY}, []any{[]byte("ab")})
	if herr != nil {
		t.Fatalf("handler: %v", herr)
	}
	if retSig[0] != VARY || string(rets[0].([]byte)) != "abab" {
		t.Fatalf("got (%v, %v)", retSig, rets)
	}
}

func TestStringType_RejectsInvalidUTF8(t *testing.T) {
	t.Parallel()

	st := NewStringType("")
	if _, err := st.Loads([]byte{0xFF, 0xFE}); err == nil {
		t.Fatalf("expected error on invalid utf-8")
	}
}

func TestBytesType_Identity(t *testing.T) {
	t.Parallel()

	bt := BytesType{}
	in := []byte("raw")
	dumped, err := bt.Dumps(in)
	if err != nil {
		t.Fatalf("Dumps: %v", err)
	}
	loaded, err := bt.Loads(dumped)
	if err != nil {
		t.Fatalf("Loads: %v", err)
	}
	if string(loaded.([]byte)) != string(in) {
		t.Fatalf("got %q, want %q", loaded, in)
	}
}
