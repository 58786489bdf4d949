// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"io"

	"code.hybscloud.com/urpc"
)

const defaultReadBuf = 64 * 1024

// Conn pairs a urpc.Endpoint with a framed byte transport: inbound bytes
// are recovered into discrete messages and handed to the Endpoint's Recv;
// outbound messages produced by the Endpoint (via its SendHook) are
// written back out framed the same way.
type Conn struct {
	r   *Reader
	w   *Writer
	ep  *urpc.Endpoint
	buf []byte
}

// NewConn builds a Conn over rw, constructing its urpc.Endpoint with
// epOpts and framing the byte stream per transOpts (see WithTCP, WithUDP,
// WithLocal, ... for common transports).
//
// Reads and writes run on independent engines, each with its own header/
// offset/length state: Serve's read loop and a callback's concurrent
// Send (via QueryFunc/CallFunc) otherwise race on that state, since
// unlike Reader/Writer — always used one direction per instance — a Conn
// drives both directions of the same connection at once.
func NewConn(rw io.ReadWriter, transOpts []Option, epOpts []urpc.Option) *Conn {
	re := newEngine(rw, nil, transOpts...)
	we := newEngine(nil, rw, transOpts...)
	c := &Conn{r: &Reader{e: re}, w: &Writer{e: we}}
	c.ep = urpc.NewEndpoint(c.send, epOpts...)

	bufCap := re.readLimit
	if bufCap <= 0 || bufCap > defaultReadBuf {
		bufCap = defaultReadBuf
	}
	c.buf = make([]byte, bufCap)
	return c
}

// Endpoint returns the urpc.Endpoint driven by this Conn, for registering
// functions and issuing Query/Call.
func (c *Conn) Endpoint() *urpc.Endpoint { return c.ep }

func (c *Conn) send(data []byte) error {
	_, err := c.w.Write(data)
	return err
}

// Serve reads and dispatches framed messages until ctx is done or the
// transport reports io.EOF, at which point it returns nil. Any other read
// error is returned to the caller. The underlying Reader retries
// iox.ErrWouldBlock internally per the configured RetryDelay; ErrMore is
// not retried and is returned like any other read error. Bytes read
// together with an error other than io.EOF are not dispatched, so Recv is
// only ever handed a complete message.
func (c *Conn) Serve(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		n, err := c.r.Read(c.buf)
		if n > 0 && (err == nil || errors.Is(err, io.EOF)) {
			if rerr := c.ep.Recv(c.buf[:n]); rerr != nil {
				return rerr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
