// Package gugugaga writes each code point as twelve base-4 digits, spelled
// two digits at a time with a sixteen-word vocabulary. Leading runs of zero
// digits are compressed into a single token.
package gugugaga

import (
	"strings"
	"unicode/utf8"

	"github.com/gugugaga/gugugaga/codec"
	"github.com/gugugaga/gugugaga/logutil"
)

const (
	name  = "gugugaga"
	base  = 4
	width = 12

	zeros8 = "00000000"
	zeros4 = "0000"

	// excerptLen is the number of runes quoted from the input when no
	// token matches.
	excerptLen = 6
)

var vocabulary = codec.NewVocabulary(
	zeros8, "⚡",
	zeros4, "🐧",
	"00", "咕咕",
	"01", "嘎嘎",
	"02", "刮擦",
	"03", "哈基密",
	"10", "叮咚鸡",
	"11", "灵感菇",
	"12", "🎵",
	"13", "🎤",
	"20", "🍄",
	"21", "🥒",
	"22", "菇灵咕",
	"23", "喂喂",
	"30", "大狗叫",
	"31", "🐱",
	"32", "曼波",
	"33", "🐔",
).MustValidate()

type Codec struct{}

func init() {
	codec.Register(codec.Info{
		Name:        name,
		Base:        base,
		Alphabet:    vocabulary.Tokens,
		Description: "base-4 digit pairs with zero-run compression",
	}, Codec{})
}

func (Codec) Encode(s string) (string, error) {
	return Encode(s), nil
}

func (Codec) Decode(s string) (string, error) {
	return Decode(s)
}

// Encode never fails: every code point fits in twelve base-4 digits.
func Encode(s string) string {
	var sb strings.Builder
	for _, r := range s {
		digits := codec.FormatDigits(uint64(r), base, width)

		for strings.HasPrefix(digits, zeros8) {
			sb.WriteString(token(zeros8))
			digits = digits[len(zeros8):]
		}

		for strings.HasPrefix(digits, zeros4) {
			sb.WriteString(token(zeros4))
			digits = digits[len(zeros4):]
		}

		for i := 0; i < len(digits); i += 2 {
			sb.WriteString(token(digits[i : i+2]))
		}
	}

	logutil.Trace("gugugaga: encoded", "runes", utf8.RuneCountInString(s), "bytes", sb.Len())
	return sb.String()
}

func token(pattern string) string {
	t, ok := vocabulary.Encode(pattern)
	if !ok {
		panic("gugugaga: no token for pattern " + pattern)
	}

	return t
}

// Decode reverses Encode. It fails with a *codec.DecodeError when the input
// contains text outside the vocabulary, stops in the middle of a code point,
// or spells a value that is not a Unicode scalar value.
func Decode(s string) (string, error) {
	var digits strings.Builder
	var runes []rune

	// pos counts runes consumed; start and startByte mark where the
	// current code point began
	var pos, start, startByte int
	for i := 0; i < len(s); {
		if digits.Len() == 0 {
			start, startByte = pos, i
		}

		pattern, tok, ok := vocabulary.Match(s[i:])
		if !ok {
			return "", &codec.DecodeError{
				Codec:   name,
				Pos:     pos,
				Excerpt: codec.Excerpt(s, i, excerptLen),
				Err:     codec.ErrUnknownToken,
			}
		}

		digits.WriteString(pattern)
		i += len(tok)
		pos += utf8.RuneCountInString(tok)

		for digits.Len() >= width {
			group := digits.String()
			r, err := codec.ParseRune(group[:width], base)
			if err != nil {
				return "", &codec.DecodeError{
					Codec:   name,
					Pos:     start,
					Excerpt: codec.Excerpt(s, startByte, excerptLen),
					Err:     codec.ErrInvalidCodePoint,
				}
			}

			runes = append(runes, r)
			digits.Reset()
			digits.WriteString(group[width:])
			start, startByte = pos, i
		}
	}

	if digits.Len() > 0 {
		return "", &codec.DecodeError{
			Codec:   name,
			Pos:     start,
			Excerpt: codec.Excerpt(s, startByte, excerptLen),
			Err:     codec.ErrTruncated,
		}
	}

	logutil.Trace("gugugaga: decoded", "runes", len(runes))
	return string(runes), nil
}
