// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package urpc

// Logger receives trace-level records of inbound/outbound messages. The
// zero value (noopLogger) discards everything; a host wires in whatever
// structured logger it already uses.
type Logger interface {
	Debugf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}

// Options configures an Endpoint.
type Options struct {
	// Capacity bounds the function store (AllocTable). Zero falls back
	// to the default of 256.
	Capacity uint16

	// Logger receives Debugf calls around Recv and outbound sends.
	Logger Logger

	// AcceptLayoutA allows parsing the legacy header layout on receive,
	// in addition to the normative Layout B. New deployments only ever
	// emit Layout B.
	AcceptLayoutA bool

	// MaxPayload rejects inbound messages longer than this many bytes
	// before any parsing is attempted. Zero falls back to
	// defaultMaxPayload.
	MaxPayload int
}

var defaultOptions = Options{
	Capacity:      256,
	Logger:        noopLogger{},
	AcceptLayoutA: true,
	MaxPayload:    defaultMaxPayload,
}

type Option func(*Options)

// WithCapacity sets the function store's slot count.
func WithCapacity(n uint16) Option {
	return func(o *Options) { o.Capacity = n }
}

// WithLogger sets the trace logger.
func WithLogger(l Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithLayoutAAcceptance toggles legacy-header acceptance on receive.
func WithLayoutAAcceptance(accept bool) Option {
	return func(o *Options) { o.AcceptLayoutA = accept }
}

// WithMaxPayload sets the inbound sanity ceiling.
func WithMaxPayload(n int) Option {
	return func(o *Options) { o.MaxPayload = n }
}
