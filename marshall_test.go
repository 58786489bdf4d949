// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package urpc

import "testing"

func TestMarshallUnmarshall_RoundTrip(t *testing.T) {
	t.Parallel()

	sig := []Tag{I32, VARY, U8}
	values := []any{int32(-42), []byte("payload"), uint8(9)}

	w := newWriter()
	if err := marshall(w, sig, values); err != nil {
		t.Fatalf("marshall: %v", err)
	}

	got, err := unmarshall(newReader(w.Bytes()), sig)
	if err != nil {
		t.Fatalf("unmarshall: %v", err)
	}
	if len(got) != len(values) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(values))
	}
	if got[0] != values[0] || got[2] != values[2] {
		t.Fatalf("got %v, want %v", got, values)
	}
	if string(got[1].([]byte)) != string(values[1].([]byte)) {
		t.Fatalf("got[1] = %q, want %q", got[1], values[1])
	}
}

func TestMarshall_LengthMismatch(t *testing.T) {
	t.Parallel()

	err := marshall(newWriter(), []Tag{I8, I8}, []any{int8(1)})
	if err == nil || err.Code != CodeSigIncorrect {
		t.Fatalf("err = %v, want CodeSigIncorrect", err)
	}
}

func TestMarshall_VaryWrongGoType(t *testing.T) {
	t.Parallel()

	err := marshall(newWriter(), []Tag{VARY}, []any{"not a []byte"})
	if err == nil || err.Code != CodeSigIncorrect {
		t.Fatalf("err = %v, want CodeSigIncorrect", err)
	}
}
