// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package urpc

import "testing"

// wirePair links two endpoints' SendHooks directly, bypassing any real
// transport — enough to exercise the full Recv dispatch table.
func wirePair(t *testing.T) (a, b *Endpoint) {
	t.Helper()
	a = NewEndpoint(nil)
	b = NewEndpoint(nil)
	a.sendHook = func(data []byte) error { return b.Recv(data) }
	b.sendHook = func(data []byte) error { return a.Recv(data) }
	return a, b
}

func TestEndpoint_QueryFuncAndCallFunc(t *testing.T) {
	t.Parallel()

	server, client := wirePair(t)
	if _, err := server.AddFunc(
		func(a, b int32) int32 { return a + b },
		[]any{I32, I32}, []any{I32}, "add",
	); err != nil {
		t.Fatalf("AddFunc: %v", err)
	}

	var handle uint16
	var queryErr error
	if err := client.QueryFunc("add", func(err error, result any) {
		queryErr = err
		if err == nil {
			handle = result.(uint16)
		}
	}); err != nil {
		t.Fatalf("QueryFunc: %v", err)
	}
	if queryErr != nil {
		t.Fatalf("query callback error: %v", queryErr)
	}

	var sum int32
	var callErr error
	argSig := []SigElem{I32, I32}
	if err := client.CallFunc(handle, argSig, []any{int32(4), int32(5)}, func(err error, result any) {
		callErr = err
		if err == nil {
			sum = result.([]any)[0].(int32)
		}
	}); err != nil {
		t.Fatalf("CallFunc: %v", err)
	}
	if callErr != nil {
		t.Fatalf("call callback error: %v", callErr)
	}
	if sum != 9 {
		t.Fatalf("sum = %d, want 9", sum)
	}
}

func TestEndpoint_QueryFunc_NonExist(t *testing.T) {
	t.Parallel()

	server, client := wirePair(t)
	_ = server

	var gotErr error
	if err := client.QueryFunc("missing", func(err error, result any) {
		gotErr = err
	}); err != nil {
		t.Fatalf("QueryFunc: %v", err)
	}
	uerr, ok := gotErr.(*Error)
	if !ok || uerr.Code != CodeNonExist {
		t.Fatalf("gotErr = %v, want *Error{CodeNonExist}", gotErr)
	}
}

func TestEndpoint_DeferredQueryAndCall(t *testing.T) {
	t.Parallel()

	server, client := wirePair(t)
	if _, err := server.AddFunc(
		func(s string) string { return s + "!" },
		[]any{NewStringType("utf-8")}, []any{NewStringType("utf-8")}, "shout",
	); err != nil {
		t.Fatalf("AddFunc: %v", err)
	}

	var result string
	err := client.Query("shout").Bind(func(err error, res any) {
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		handle := res.(uint16)
		argSig := []SigElem{NewStringType("utf-8")}
		berr := client.Call(handle, argSig, []any{"hi"}).Bind(func(err error, res any) {
			if err != nil {
				t.Fatalf("call: %v", err)
			}
			result = string(res.([]any)[0].([]byte))
		})
		if berr != nil {
			t.Fatalf("Call.Bind: %v", berr)
		}
	})
	if err != nil {
		t.Fatalf("Query.Bind: %v", err)
	}
	if result != "hi!" {
		t.Fatalf("result = %q, want %q", result, "hi!")
	}
}

func TestEndpoint_RemoveFunc(t *testing.T) {
	t.Parallel()

	server, client := wirePair(t)
	handle, err := server.AddFunc(func() int32 { return 1 }, []any{}, []any{I32}, "f")
	if err != nil {
		t.Fatalf("AddFunc: %v", err)
	}
	if err := server.RemoveFunc(handle); err != nil {
		t.Fatalf("RemoveFunc: %v", err)
	}

	var queryErr error
	if err := client.QueryFunc("f", func(err error, result any) { queryErr = err }); err != nil {
		t.Fatalf("QueryFunc: %v", err)
	}
	uerr, ok := queryErr.(*Error)
	if !ok || uerr.Code != CodeNonExist {
		t.Fatalf("queryErr = %v, want *Error{CodeNonExist}", queryErr)
	}
}

func TestEndpoint_CallFunc_UnknownHandle(t *testing.T) {
	t.Parallel()

	server, client := wirePair(t)
	_ = server

	var callErr error
	if err := client.CallFunc(999, nil, nil, func(err error, result any) { callErr = err }); err != nil {
		t.Fatalf("CallFunc: %v", err)
	}
	uerr, ok := callErr.(*Error)
	if !ok || uerr.Code != CodeNonExist {
		t.Fatalf("callErr = %v, want *Error{CodeNonExist}", callErr)
	}
}

func TestEndpoint_Cancel(t *testing.T) {
	t.Parallel()

	e := NewEndpoint(func(data []byte) error { return nil })
	_, id := buildHeader(MsgCall, &e.sendCounter)
	e.sendCounter--
	called := false
	e.pending[id] = func(err error, result any) { called = true }

	if !e.Cancel(id, nil) {
		t.Fatalf("Cancel: expected true")
	}
	if called {
		t.Fatalf("callback should not run when Cancel's err is nil")
	}
	if e.Cancel(id, nil) {
		t.Fatalf("second Cancel on same id should return false")
	}
}

func TestEndpoint_Recv_MaxPayload(t *testing.T) {
	t.Parallel()

	var sent [][]byte
	e := NewEndpoint(func(data []byte) error {
		sent = append(sent, data)
		return nil
	}, WithMaxPayload(4))

	if err := e.Recv(make([]byte, 100)); err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected one ERROR reply, got %d", len(sent))
	}
	_, msgType, perr := parseHeader(newReader(sent[0]), true)
	if perr != nil || msgType != MsgError {
		t.Fatalf("reply = (type=%v, err=%v), want MsgError", msgType, perr)
	}
}
