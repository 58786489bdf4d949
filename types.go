// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package urpc

import (
	"fmt"
	"reflect"
	"unicode/utf8"
)

// Handler is the uniform shape every registered function reduces to:
// given the caller-declared argument signature and decoded argument
// values, produce a return signature and return values, or an error.
// A non-nil error that is not already an *Error is reported to the
// caller as CodeException.
type Handler func(argSig []Tag, args []any) (retSig []Tag, rets []any, err error)

// TypeAdapter lifts a host Go value across the wire's primitive type
// system. UnderlyingType names the primitive tag the adapter's wire form
// takes (typically VARY); Dumps converts a host value into that wire
// form, Loads is the inverse.
type TypeAdapter interface {
	UnderlyingType() Tag
	Dumps(value any) (any, error)
	Loads(wire any) (any, error)
}

// StringType adapts a Go string to VARY bytes and back. Only "utf-8" is
// supported; Encoding is kept for API parity with hosts that carry an
// explicit encoding, since Go strings are themselves always UTF-8 bytes.
type StringType struct {
	Encoding string
}

// NewStringType returns a StringType for encoding, defaulting to "utf-8".
func NewStringType(encoding string) *StringType {
	if encoding == "" {
		encoding = "utf-8"
	}
	return &StringType{Encoding: encoding}
}

func (t *StringType) UnderlyingType() Tag { return VARY }

func (t *StringType) Dumps(value any) (any, error) {
	if t.Encoding != "utf-8" {
		return nil, fmt.Errorf("urpc: StringType: unsupported encoding %q", t.Encoding)
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("urpc: StringType.Dumps: expected string, got %T", value)
	}
	return []byte(s), nil
}

func (t *StringType) Loads(wire any) (any, error) {
	if t.Encoding != "utf-8" {
		return nil, fmt.Errorf("urpc: StringType: unsupported encoding %q", t.Encoding)
	}
	b, ok := wire.([]byte)
	if !ok {
		return nil, fmt.Errorf("urpc: StringType.Loads: expected []byte, got %T", wire)
	}
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("urpc: StringType.Loads: invalid utf-8")
	}
	return string(b), nil
}

// BytesType is the identity VARY adapter: it passes raw bytes through
// unchanged. It exists so callers that want a uniform adapter-shaped
// signature for a VARY argument aren't forced to special-case the raw
// byte-slice case.
type BytesType struct{}

func (BytesType) UnderlyingType() Tag { return VARY }

func (BytesType) Dumps(value any) (any, error) {
	b, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("urpc: BytesType.Dumps: expected []byte, got %T", value)
	}
	return b, nil
}

func (BytesType) Loads(wire any) (any, error) {
	b, ok := wire.([]byte)
	if !ok {
		return nil, fmt.Errorf("urpc: BytesType.Loads: expected []byte, got %T", wire)
	}
	return b, nil
}

// SigFunc attaches a declared argument/return signature to fn without
// wrapping it, the Go shape of urpc_sig's metadata-only decoration.
// AddFunc recognizes a SigFunc passed with no explicit types and applies
// Wrap itself.
type SigFunc struct {
	ArgTypes []any
	RetTypes []any
	Func     any
}

// Sig attaches a declared signature to fn.
func Sig(argTypes, retTypes []any, fn any) SigFunc {
	return SigFunc{ArgTypes: argTypes, RetTypes: retTypes, Func: fn}
}

var errType = reflect.TypeFor[error]()

// Wrap lifts an ordinary Go callable into a Handler, enforcing that
// inbound calls declare exactly argTypes' underlying signature and
// encoding/decoding through any TypeAdapter elements of argTypes/retTypes.
//
// fn may optionally return a trailing error; a non-nil trailing error is
// reported as CodeException and is not counted against retTypes' length.
func Wrap(argTypes, retTypes []any, fn any) (Handler, error) {
	argTags, argAdapters, err := splitSig(argTypes)
	if err != nil {
		return nil, err
	}
	retTags, retAdapters, err := splitSig(retTypes)
	if err != nil {
		return nil, err
	}

	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, fmt.Errorf("urpc: Wrap: fn must be a function, got %T", fn)
	}
	ft := fv.Type()
	if ft.NumIn() != len(argTags) {
		return nil, fmt.Errorf("urpc: Wrap: fn takes %d arguments, argTypes has %d", ft.NumIn(), len(argTags))
	}

	return func(declaredArgSig []Tag, rawArgs []any) (_ []Tag, _ []any, handlerErr error) {
		if !tagsEqual(declaredArgSig, argTags) {
			return nil, nil, errSigIncorrect()
		}
		if len(rawArgs) != len(argTags) {
			return nil, nil, errSigIncorrect()
		}

		in := make([]reflect.Value, len(rawArgs))
		for i, raw := range rawArgs {
			decoded := raw
			if argAdapters[i] != nil {
				d, derr := argAdapters[i].Loads(raw)
				if derr != nil {
					return nil, nil, errException(derr)
				}
				decoded = d
			}
			want := ft.In(i)
			rv := reflect.ValueOf(decoded)
			if !rv.IsValid() || !rv.Type().AssignableTo(want) {
				if rv.IsValid() && rv.Type().ConvertibleTo(want) {
					rv = rv.Convert(want)
				} else {
					return nil, nil, errException(fmt.Errorf("urpc: argument %d: cannot use %T as %s", i, decoded, want))
				}
			}
			in[i] = rv
		}

		out, panicErr := callSafely(fv, in)
		if panicErr != nil {
			return nil, nil, errException(panicErr)
		}

		if len(out) > 0 && out[len(out)-1].Type() == errType {
			if !out[len(out)-1].IsNil() {
				return nil, nil, errException(out[len(out)-1].Interface().(error))
			}
			out = out[:len(out)-1]
		}
		if len(out) != len(retTags) {
			return nil, nil, errSigIncorrect()
		}

		results := make([]any, len(out))
		for i, rv := range out {
			v := rv.Interface()
			if retAdapters[i] != nil {
				dv, derr := retAdapters[i].Dumps(v)
				if derr != nil {
					return nil, nil, errException(derr)
				}
				v = dv
			}
			results[i] = v
		}
		return retTags, results, nil
	}, nil
}

func callSafely(fv reflect.Value, in []reflect.Value) (out []reflect.Value, panicErr error) {
	defer func() {
		if r := recover(); r != nil {
			panicErr = fmt.Errorf("urpc: handler panic: %v", r)
		}
	}()
	out = fv.Call(in)
	return out, nil
}

func splitSig(types []any) ([]Tag, []TypeAdapter, error) {
	tags := make([]Tag, len(types))
	adapters := make([]TypeAdapter, len(types))
	for i, t := range types {
		switch v := t.(type) {
		case Tag:
			tags[i] = v
		case TypeAdapter:
			tags[i] = v.UnderlyingType()
			adapters[i] = v
		default:
			return nil, nil, fmt.Errorf("urpc: invalid signature element %T at index %d", t, i)
		}
	}
	return tags, adapters, nil
}

func tagsEqual(a, b []Tag) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
