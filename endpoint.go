// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package urpc

import "fmt"

// SendHook is the transport collaborator: the endpoint calls it once per
// outbound message (a request, a reply, or an error). The transport is
// responsible for delivering the bytes as a single framed message.
type SendHook func(data []byte) error

// Callback is a pending continuation: err is non-nil (and, for a wire
// ERROR reply, an *Error) on failure; result is a uint16 handle for a
// completed Query, or a []any result list for a completed Call.
type Callback func(err error, result any)

// Endpoint is a u-RPC peer: it holds registered functions, a send hook,
// and the pending-callback table that correlates outbound messages with
// their eventual reply. An Endpoint performs no internal scheduling and
// is not safe for concurrent use — a host with multiple goroutines must
// serialize all of Recv/Query/Call/AddFunc/RemoveFunc itself. A callback
// invoked from Recv may freely call back into the endpoint (Query, Call,
// AddFunc, RemoveFunc); SendHook may therefore be reentered during Recv.
type Endpoint struct {
	funcs        *AllocTable
	nameToHandle map[string]uint16
	handleToName map[uint16]string

	sendCounter uint16
	recvCounter uint16
	pending     map[uint16]Callback

	sendHook      SendHook
	logger        Logger
	acceptLayoutA bool
	maxPayload    int
}

// NewEndpoint constructs an Endpoint backed by sendHook.
func NewEndpoint(sendHook SendHook, opts ...Option) *Endpoint {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	capacity := o.Capacity
	if capacity == 0 {
		capacity = defaultOptions.Capacity
	}
	maxPayload := o.MaxPayload
	if maxPayload == 0 {
		maxPayload = defaultMaxPayload
	}
	logger := o.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Endpoint{
		funcs:         NewAllocTable(capacity),
		nameToHandle:  make(map[string]uint16),
		handleToName:  make(map[uint16]string),
		pending:       make(map[uint16]Callback),
		sendHook:      sendHook,
		logger:        logger,
		acceptLayoutA: o.AcceptLayoutA,
		maxPayload:    maxPayload,
	}
}

func (e *Endpoint) send(data []byte) error {
	e.logger.Debugf("urpc: send %x", data)
	return e.sendHook(data)
}

// AddFunc registers fn and returns its handle. fn is one of:
//   - a Handler (or the underlying func([]Tag, []any) ([]Tag, []any, error)
//     type), used as-is — §4.4.2's "untyped function" path;
//   - a SigFunc, whose attached ArgTypes/RetTypes are applied via Wrap;
//   - an ordinary callable, wrapped via Wrap(argTypes, retTypes, fn).
//
// If name is non-empty it is registered into the bidirectional name
// index. AddFunc fails CodeNoMemory if the store is at capacity.
func (e *Endpoint) AddFunc(fn any, argTypes, retTypes []any, name string) (uint16, error) {
	if argTypes == nil && retTypes == nil {
		if sf, ok := fn.(SigFunc); ok {
			argTypes, retTypes, fn = sf.ArgTypes, sf.RetTypes, sf.Func
		}
	}

	var h Handler
	switch {
	case argTypes != nil || retTypes != nil:
		wrapped, err := Wrap(argTypes, retTypes, fn)
		if err != nil {
			return 0, err
		}
		h = wrapped
	case isHandler(fn):
		h = asHandler(fn)
	default:
		return 0, fmt.Errorf("urpc: AddFunc: fn has no declared signature and is not a Handler (%T)", fn)
	}

	handle, err := e.funcs.Add(h)
	if err != nil {
		return 0, err
	}
	if name != "" {
		e.nameToHandle[name] = handle
		e.handleToName[handle] = name
	}
	return handle, nil
}

func isHandler(fn any) bool {
	switch fn.(type) {
	case Handler, func([]Tag, []any) ([]Tag, []any, error):
		return true
	default:
		return false
	}
}

func asHandler(fn any) Handler {
	switch h := fn.(type) {
	case Handler:
		return h
	case func([]Tag, []any) ([]Tag, []any, error):
		return Handler(h)
	default:
		panic("urpc: asHandler: not a Handler")
	}
}

// RemoveFunc removes handle from the store and, if it was named, from
// the name index. It fails CodeNonExist if handle is unknown.
func (e *Endpoint) RemoveFunc(handle uint16) error {
	if err := e.funcs.Remove(handle); err != nil {
		return err
	}
	if name, ok := e.handleToName[handle]; ok {
		delete(e.handleToName, handle)
		delete(e.nameToHandle, name)
	}
	return nil
}

// QueryFunc asks the remote peer for name's handle, in continuation-
// passing style.
func (e *Endpoint) QueryFunc(name string, cb Callback) error {
	req, id := buildHeader(MsgFuncQuery, &e.sendCounter)
	if err := req.WriteVary([]byte(name)); err != nil {
		return err
	}
	e.pending[id] = cb
	return e.send(req.Bytes())
}

// QueryAcceptor is the deferred form of QueryFunc: Query returns one,
// and the query is not sent until Bind supplies a callback.
type QueryAcceptor struct {
	e    *Endpoint
	name string
}

// Query returns a one-shot acceptor for querying name's handle.
func (e *Endpoint) Query(name string) *QueryAcceptor {
	return &QueryAcceptor{e: e, name: name}
}

// Bind sends the query with cb as its callback.
func (a *QueryAcceptor) Bind(cb Callback) error {
	return a.e.QueryFunc(a.name, cb)
}

// SigElem is either a Tag or a TypeAdapter: one element of the
// arg_sig Call accepts, which may mix raw tags and high-level adapters.
type SigElem = any

// CallFunc invokes handle on the remote peer with args typed per argSig,
// in continuation-passing style. Adapter elements of argSig are replaced
// by their underlying_type on the wire, and the corresponding element of
// args is replaced by its dumped form.
func (e *Endpoint) CallFunc(handle uint16, argSig []SigElem, args []any, cb Callback) error {
	if len(argSig) != len(args) {
		return errSigIncorrect()
	}
	tags := make([]Tag, len(argSig))
	wireArgs := make([]any, len(args))
	copy(wireArgs, args)
	for i, se := range argSig {
		switch v := se.(type) {
		case Tag:
			tags[i] = v
		case TypeAdapter:
			dv, err := v.Dumps(wireArgs[i])
			if err != nil {
				return errException(err)
			}
			wireArgs[i] = dv
			tags[i] = v.UnderlyingType()
		default:
			return fmt.Errorf("urpc: CallFunc: invalid arg_sig element %T at index %d", se, i)
		}
	}

	req, id := buildHeader(MsgCall, &e.sendCounter)
	if err := req.WritePrimitive(U16, handle); err != nil {
		return err
	}
	if err := req.WriteVary(tagsToBytes(tags)); err != nil {
		return err
	}
	if err := marshall(req, tags, wireArgs); err != nil {
		return err
	}
	e.pending[id] = cb
	return e.send(req.Bytes())
}

// CallAcceptor is the deferred form of CallFunc.
type CallAcceptor struct {
	e      *Endpoint
	handle uint16
	argSig []SigElem
	args   []any
}

// Call returns a one-shot acceptor for calling handle.
func (e *Endpoint) Call(handle uint16, argSig []SigElem, args []any) *CallAcceptor {
	return &CallAcceptor{e: e, handle: handle, argSig: argSig, args: args}
}

// Bind sends the call with cb as its callback.
func (a *CallAcceptor) Bind(cb Callback) error {
	return a.e.CallFunc(a.handle, a.argSig, a.args, cb)
}

// Cancel removes msgID's pending callback, if any, optionally invoking it
// with err first. It reports whether an entry was found. Cancellation is
// not built into the protocol (spec §5); a host that needs it calls this
// directly.
func (e *Endpoint) Cancel(msgID uint16, err error) bool {
	cb, ok := e.pending[msgID]
	if !ok {
		return false
	}
	delete(e.pending, msgID)
	if err != nil {
		cb(err, nil)
	}
	return true
}

// Recv parses exactly one inbound message and dispatches it. Any
// protocol failure is converted to an outbound ERROR reply correlated
// with the inbound message id (0 if parsing failed before the id was
// known); Recv itself only returns an error if SendHook fails while
// emitting a reply.
func (e *Endpoint) Recv(data []byte) error {
	e.logger.Debugf("urpc: recv %x", data)
	if e.maxPayload > 0 && len(data) > e.maxPayload {
		return e.sendError(0, errTooLong())
	}

	c := newReader(data)
	msgID, msgType, perr := parseHeader(c, e.acceptLayoutA)
	if perr != nil {
		return e.sendError(msgID, perr)
	}

	var reply *Codec
	switch msgType {
	case MsgError:
		perr = e.handleErrorMsg(c, msgID)
	case MsgFuncQuery:
		reply, perr = e.handleFuncQuery(c, msgID)
	case MsgFuncResp:
		perr = e.handleFuncResp(c, msgID)
	case MsgCall:
		reply, perr = e.handleCall(c, msgID)
	case MsgCallResult:
		perr = e.handleCallResult(c, msgID)
	default:
		perr = errNoSupport()
	}

	if perr != nil {
		return e.sendError(msgID, perr)
	}
	if reply != nil {
		return e.send(reply.Bytes())
	}
	return nil
}

func (e *Endpoint) sendError(reqID uint16, perr *Error) error {
	reply, _ := buildHeader(MsgError, &e.recvCounter)
	_ = reply.WritePrimitive(U16, reqID)
	_ = reply.WritePrimitive(U8, uint8(perr.Code))
	return e.send(reply.Bytes())
}

func (e *Endpoint) takePending(reqID uint16) (Callback, bool) {
	cb, ok := e.pending[reqID]
	if ok {
		delete(e.pending, reqID)
	}
	return cb, ok
}

func (e *Endpoint) handleErrorMsg(c *Codec, _ uint16) *Error {
	reqIDv, err := c.ReadPrimitive(U16)
	if err != nil {
		return err
	}
	codev, err := c.ReadPrimitive(U8)
	if err != nil {
		return err
	}
	if cb, ok := e.takePending(reqIDv.(uint16)); ok {
		cb(&Error{Code: Code(codev.(uint8))}, nil)
	}
	return nil
}

func (e *Endpoint) handleFuncQuery(c *Codec, msgID uint16) (*Codec, *Error) {
	rawName, err := c.ReadVary()
	if err != nil {
		return nil, err
	}
	if !utf8Valid(rawName) {
		return nil, errBrokenMsg()
	}
	handle, ok := e.nameToHandle[string(rawName)]
	if !ok {
		return nil, errNonExist()
	}
	reply, _ := buildHeader(MsgFuncResp, &e.recvCounter)
	if err := reply.WritePrimitive(U16, msgID); err != nil {
		return nil, err
	}
	if err := reply.WritePrimitive(U16, handle); err != nil {
		return nil, err
	}
	return reply, nil
}

func (e *Endpoint) handleFuncResp(c *Codec, _ uint16) *Error {
	reqIDv, err := c.ReadPrimitive(U16)
	if err != nil {
		return err
	}
	handlev, err := c.ReadPrimitive(U16)
	if err != nil {
		return err
	}
	if cb, ok := e.takePending(reqIDv.(uint16)); ok {
		cb(nil, handlev.(uint16))
	}
	return nil
}

func (e *Endpoint) handleCall(c *Codec, msgID uint16) (*Codec, *Error) {
	handlev, err := c.ReadPrimitive(U16)
	if err != nil {
		return nil, err
	}
	rawArgSig, err := c.ReadVary()
	if err != nil {
		return nil, err
	}
	argSig, err := tagsFromBytes(rawArgSig)
	if err != nil {
		return nil, err
	}
	args, err := unmarshall(c, argSig)
	if err != nil {
		return nil, err
	}

	fv := e.funcs.Get(handlev.(uint16))
	if fv == nil {
		return nil, errNonExist()
	}
	h := fv.(Handler)

	retSig, rets, callErr := h(argSig, args)
	if callErr != nil {
		if ue, ok := callErr.(*Error); ok {
			return nil, ue
		}
		return nil, errException(callErr)
	}
	if len(retSig) != len(rets) {
		return nil, errSigIncorrect()
	}

	reply, _ := buildHeader(MsgCallResult, &e.recvCounter)
	if err := reply.WritePrimitive(U16, msgID); err != nil {
		return nil, err
	}
	if err := reply.WriteVary(tagsToBytes(retSig)); err != nil {
		return nil, err
	}
	if err := marshall(reply, retSig, rets); err != nil {
		return nil, err
	}
	return reply, nil
}

func (e *Endpoint) handleCallResult(c *Codec, _ uint16) *Error {
	reqIDv, err := c.ReadPrimitive(U16)
	if err != nil {
		return err
	}
	rawRetSig, err := c.ReadVary()
	if err != nil {
		return err
	}
	retSig, err := tagsFromBytes(rawRetSig)
	if err != nil {
		return err
	}
	rets, err := unmarshall(c, retSig)
	if err != nil {
		return err
	}
	if cb, ok := e.takePending(reqIDv.(uint16)); ok {
		cb(nil, rets)
	}
	return nil
}
