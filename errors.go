// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package urpc

import "fmt"

// Code is the closed set of u-RPC wire error codes.
//
// Code is the sole error channel the protocol uses: every failure sent or
// received over the wire reduces to one of these values. Local setup
// errors (an invalid signature element or callable passed to AddFunc,
// Wrap or CallFunc) are plain errors, and SendHook errors are returned
// unchanged.
type Code uint8

const (
	// CodeSigIncorrect means a declared signature did not match the
	// underlying signature, or a marshall/unmarshall length mismatch.
	CodeSigIncorrect Code = 0x20
	// CodeNonExist means a handle or function name had no live entry.
	CodeNonExist Code = 0x21
	// CodeNoSupport means an unknown protocol version, message type, or
	// type tag was encountered.
	CodeNoSupport Code = 0x22
	// CodeNoMemory means the function store is at capacity.
	CodeNoMemory Code = 0x23
	// CodeBrokenMsg means the header or payload was short or malformed.
	CodeBrokenMsg Code = 0x24
	// CodeException means a registered function panicked or returned an
	// error while servicing a CALL.
	CodeException Code = 0x25
	// CodeTooLong means a VARY payload was 256 bytes or longer.
	CodeTooLong Code = 0x26
)

func (c Code) String() string {
	switch c {
	case CodeSigIncorrect:
		return "SIG_INCORRECT"
	case CodeNonExist:
		return "NONEXIST"
	case CodeNoSupport:
		return "NO_SUPPORT"
	case CodeNoMemory:
		return "NO_MEMORY"
	case CodeBrokenMsg:
		return "BROKEN_MSG"
	case CodeException:
		return "EXCEPTION"
	case CodeTooLong:
		return "TOO_LONG"
	default:
		return fmt.Sprintf("Code(0x%02x)", uint8(c))
	}
}

// Error is the error type u-RPC returns from local operations and encodes
// on the wire for inbound CALL/FUNC_QUERY failures. Err, when set, is the
// underlying cause for CodeException and is reachable via errors.Unwrap.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("urpc: %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("urpc: %s", e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func errSigIncorrect() *Error { return &Error{Code: CodeSigIncorrect} }
func errNonExist() *Error     { return &Error{Code: CodeNonExist} }
func errNoSupport() *Error    { return &Error{Code: CodeNoSupport} }
func errNoMemory() *Error     { return &Error{Code: CodeNoMemory} }
func errBrokenMsg() *Error    { return &Error{Code: CodeBrokenMsg} }
func errTooLong() *Error      { return &Error{Code: CodeTooLong} }

func errException(cause error) *Error {
	return &Error{Code: CodeException, Err: cause}
}
