package codec

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FormatDigits renders n in the given base, left-padded with zeros to at
// least width digits.
func FormatDigits(n uint64, base, width int) string {
	s := strconv.FormatUint(n, base)
	if len(s) >= width {
		return s
	}

	return strings.Repeat("0", width-len(s)) + s
}

// ParseRune parses digits in the given base and checks that the result is a
// Unicode scalar value.
func ParseRune(digits string, base int) (rune, error) {
	n, err := strconv.ParseUint(digits, base, 32)
	if errors.Is(err, strconv.ErrRange) {
		return 0, ErrInvalidCodePoint
	} else if err != nil {
		return 0, err
	}

	if r := rune(n); n <= utf8.MaxRune && utf8.ValidRune(r) {
		return r, nil
	}

	return 0, ErrInvalidCodePoint
}
