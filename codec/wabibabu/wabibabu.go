// Package wabibabu writes every UTF-16 code unit of the input as an
// unpadded base-3 numeral using the digits 歪, 比 and 吧, each numeral
// followed by 卜.
//
// Characters outside the Basic Multilingual Plane become two numerals, one
// per surrogate, and are joined again when decoding.
package wabibabu

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/gugugaga/gugugaga/codec"
	"github.com/gugugaga/gugugaga/logutil"
)

const (
	name       = "wabibabu"
	base       = 3
	terminator = "卜"
	excerptLen = 6
)

var vocabulary = codec.NewVocabulary(
	"0", "歪",
	"1", "比",
	"2", "吧",
).MustValidate(terminator)

type Codec struct{}

func init() {
	codec.Register(codec.Info{
		Name:        name,
		Base:        base,
		Alphabet:    append(append([]string{}, vocabulary.Tokens...), terminator),
		Description: "base-3 digits of UTF-16 code units",
	}, Codec{})
}

func (Codec) Encode(s string) (string, error) {
	return Encode(s), nil
}

func (Codec) Decode(s string) (string, error) {
	return Decode(s)
}

func Encode(s string) string {
	units := utf16.Encode([]rune(s))

	var sb strings.Builder
	for _, u := range units {
		for _, digit := range strconv.FormatUint(uint64(u), base) {
			tok, _ := vocabulary.Encode(string(digit))
			sb.WriteString(tok)
		}
		sb.WriteString(terminator)
	}

	logutil.Trace("wabibabu: encoded", "units", len(units), "bytes", sb.Len())
	return sb.String()
}

// Decode reverses Encode. Every numeral must be non-empty, use only the
// three digit glyphs, fit in 16 bits and end with 卜. A numeral longer than
// one digit may not start with 歪, so each code unit has exactly one
// spelling.
func Decode(s string) (string, error) {
	var units []uint16
	var digits strings.Builder

	// pos is the rune offset of s[i]; start and startByte mark the
	// numeral being read
	var pos, start, startByte int
	// high is the rune offset of an unmatched high surrogate, or -1
	high, highByte := -1, 0
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		tok := s[i : i+size]

		if tok == terminator {
			if digits.Len() == 0 {
				return "", fail(s, pos, i, codec.ErrMalformedBlock)
			}

			n, err := strconv.ParseUint(digits.String(), base, 16)
			if err != nil {
				return "", fail(s, start, startByte, codec.ErrInvalidCodePoint)
			}

			// surrogates must arrive as a high/low pair
			switch r := rune(n); {
			case high >= 0 && (r < 0xdc00 || r > 0xdfff):
				return "", fail(s, high, highByte, codec.ErrInvalidCodePoint)
			case high < 0 && r >= 0xdc00 && r <= 0xdfff:
				return "", fail(s, start, startByte, codec.ErrInvalidCodePoint)
			case high < 0 && r >= 0xd800 && r <= 0xdbff:
				high, highByte = start, startByte
			default:
				high = -1
			}

			units = append(units, uint16(n))
			digits.Reset()
		} else {
			digit, ok := vocabulary.Decode(tok)
			if !ok {
				return "", fail(s, pos, i, codec.ErrUnknownToken)
			}

			switch digits.String() {
			case "":
				start, startByte = pos, i
			case "0":
				return "", fail(s, start, startByte, codec.ErrMalformedBlock)
			}
			digits.WriteString(digit)
		}

		i += size
		pos++
	}

	if digits.Len() > 0 {
		return "", fail(s, start, startByte, codec.ErrTruncated)
	}

	if high >= 0 {
		return "", fail(s, high, highByte, codec.ErrInvalidCodePoint)
	}

	logutil.Trace("wabibabu: decoded", "units", len(units))
	return string(utf16.Decode(units)), nil
}

func fail(s string, pos, i int, err error) error {
	return &codec.DecodeError{
		Codec:   name,
		Pos:     pos,
		Excerpt: codec.Excerpt(s, i, excerptLen),
		Err:     err,
	}
}
