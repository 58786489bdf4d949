// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package urpc

// marshall traverses sig and values pairwise, writing each value through
// the Codec per its tag. It fails CodeSigIncorrect on a length mismatch.
func marshall(c *Codec, sig []Tag, values []any) *Error {
	if len(sig) != len(values) {
		return errSigIncorrect()
	}
	for i, tag := range sig {
		if tag == VARY {
			b, ok := values[i].([]byte)
			if !ok {
				return errSigIncorrect()
			}
			if err := c.WriteVary(b); err != nil {
				return err
			}
			continue
		}
		if err := c.WritePrimitive(tag, values[i]); err != nil {
			return err
		}
	}
	return nil
}

// unmarshall is the inverse of marshall: it reads len(sig) values off the
// Codec per their tags.
func unmarshall(c *Codec, sig []Tag) ([]any, *Error) {
	values := make([]any, len(sig))
	for i, tag := range sig {
		if tag == VARY {
			b, err := c.ReadVary()
			if err != nil {
				return nil, err
			}
			values[i] = b
			continue
		}
		v, err := c.ReadPrimitive(tag)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
