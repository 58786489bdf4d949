// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package transport

import "errors"

var (
	// ErrInvalidArgument is returned when a framing engine is driven in a
	// direction (read or write) it was not constructed for.
	ErrInvalidArgument = errors.New("transport: invalid argument")

	// ErrTooLong is returned when a message's encoded or declared length
	// exceeds what the wire framing or a configured ReadLimit allows.
	ErrTooLong = errors.New("transport: message too long")
)
