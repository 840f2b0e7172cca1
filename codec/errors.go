package codec

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrUnknownCodec     = errors.New("unknown codec")
	ErrUnknownToken     = errors.New("unknown token")
	ErrMalformedBlock   = errors.New("malformed block")
	ErrInvalidCodePoint = errors.New("invalid code point")
	ErrTruncated        = errors.New("truncated input")
	ErrDigitRange       = errors.New("digit out of range")
)

// DecodeError reports a token stream that cannot be decoded. Pos is the
// offset in runes from the start of the input and Excerpt holds the input
// found there.
type DecodeError struct {
	Codec   string
	Pos     int
	Excerpt string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Excerpt != "" {
		return fmt.Sprintf("%s: decode: %v at position %d: %q", e.Codec, e.Err, e.Pos, e.Excerpt)
	}

	return fmt.Sprintf("%s: decode: %v at position %d", e.Codec, e.Err, e.Pos)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports an internal inconsistency while encoding the rune at
// offset Pos.
type EncodeError struct {
	Codec string
	Pos   int
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s: encode: %v at position %d", e.Codec, e.Err, e.Pos)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Excerpt returns at most n runes of s starting at byte offset i.
func Excerpt(s string, i, n int) string {
	if i >= len(s) {
		return ""
	}

	j := i
	for ; n > 0 && j < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[j:])
		j += size
	}

	return s[i:j]
}
