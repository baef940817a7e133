// Package encoding normalizes raw byte input into text before parsing.
//
// This is deliberately minimal bootstrap support: UTF-8 with an optional BOM.
// It is not a general charset-detection layer; callers that need other
// encodings must transcode before handing bytes to this package.
package encoding

import (
	"fmt"

	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// EncodingError reports an invalid byte sequence in the raw input.
//
// Offset is the byte position (in the raw input, BOM included) at which
// decoding stopped.
type EncodingError struct {
	Offset int
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("decode utf-8 at byte %d: %v", e.Offset, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// Decode validates data as UTF-8, strips a leading byte-order mark if present,
// and returns the resulting text.
//
// Edge cases:
//   - Empty input decodes to "".
//   - A document consisting of only a BOM decodes to "".
//
// Errors:
//   - Returns *EncodingError on invalid UTF-8, carrying the byte offset of the
//     first invalid sequence.
func Decode(data []byte) (string, error) {
	// Validate before the BOM decoder runs: the decoder substitutes invalid
	// bytes with U+FFFD, which would mask the failure.
	t := transform.Chain(xencoding.UTF8Validator, unicode.UTF8BOM.NewDecoder())
	out, n, err := transform.Bytes(t, data)
	if err != nil {
		return "", &EncodingError{Offset: n, Err: err}
	}
	return string(out), nil
}
