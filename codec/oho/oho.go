// Package oho spells the decimal digits of each code point as runs of three
// glyphs, one glyph per place value inside a group of three digits:
//
//	'A'  (65)    -> 065      -> 齁齁齁齁齁齁！！！！！
//	'你' (20320) -> 020 320  -> 齁齁卜哦哦哦齁齁
//
// Groups of one character are joined by 卜 and characters by 卜卜. A group
// of three zeros is written as 〇 so that no group is ever empty.
package oho

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gugugaga/gugugaga/codec"
	"github.com/gugugaga/gugugaga/logutil"
)

const (
	name = "oho"
	base = 10

	hundreds  = "哦"
	tens      = "齁"
	ones      = "！"
	zeroGroup = "〇"

	blockSeparator = "卜"
	charSeparator  = blockSeparator + blockSeparator

	// groupLen is the number of decimal digits per block
	groupLen = 3
	// maxGroups is enough for utf8.MaxRune (1114111)
	maxGroups = 3
	maxRun    = 9

	excerptLen = 6
)

// vocabulary maps each glyph to the amount one occurrence adds to its
// three-digit group. The place of the 1 is the glyph's tier.
var vocabulary = codec.NewVocabulary(
	"100", hundreds,
	"010", tens,
	"001", ones,
	"000", zeroGroup,
).MustValidate(blockSeparator)

// tiers lists the place-value glyphs in the order they must appear.
var tiers = [groupLen]string{hundreds, tens, ones}

type Codec struct{}

func init() {
	codec.Register(codec.Info{
		Name:        name,
		Base:        base,
		Alphabet:    append(append([]string{}, vocabulary.Tokens...), blockSeparator),
		Description: "decimal digits as runs of place-value glyphs",
	}, Codec{})
}

func (Codec) Encode(s string) (string, error) {
	return Encode(s)
}

func (Codec) Decode(s string) (string, error) {
	return Decode(s)
}

// groups splits the decimal rendering of r into three-digit groups. Only
// the first group is zero padded.
func groups(r rune) []string {
	n := len(strconv.FormatInt(int64(r), base))
	width := (n + groupLen - 1) / groupLen * groupLen
	digits := codec.FormatDigits(uint64(r), base, width)

	gs := make([]string, 0, width/groupLen)
	for i := 0; i < len(digits); i += groupLen {
		gs = append(gs, digits[i:i+groupLen])
	}

	return gs
}

func writeGroup(sb *strings.Builder, group string) error {
	if group == "000" {
		sb.WriteString(zeroGroup)
		return nil
	}

	for i, tier := range tiers {
		d := group[i] - '0'
		if d > maxRun {
			return codec.ErrDigitRange
		}

		sb.WriteString(strings.Repeat(tier, int(d)))
	}

	return nil
}

// Encode fails only if a group holds something other than a decimal digit,
// which would be a bug in the digit rendering.
func Encode(s string) (string, error) {
	var sb strings.Builder

	var pos int
	for _, r := range s {
		if pos > 0 {
			sb.WriteString(charSeparator)
		}

		for i, group := range groups(r) {
			if i > 0 {
				sb.WriteString(blockSeparator)
			}

			if err := writeGroup(&sb, group); err != nil {
				return "", &codec.EncodeError{Codec: name, Pos: pos, Err: err}
			}
		}

		pos++
	}

	logutil.Trace("oho: encoded", "runes", pos, "bytes", sb.Len())
	return sb.String(), nil
}

// Decode reverses Encode. Every block must be 〇 or runs of 哦, 齁 and ！ in
// that order with at most nine of each; anything else is rejected with a
// *codec.DecodeError.
func Decode(s string) (string, error) {
	d := decoder{s: s}

	var runes []rune
	for d.i < len(d.s) {
		r, err := d.char()
		if err != nil {
			return "", err
		}

		runes = append(runes, r)
	}

	logutil.Trace("oho: decoded", "runes", len(runes))
	return string(runes), nil
}

type decoder struct {
	s string
	// i is the byte offset into s and pos the matching rune offset
	i, pos int
}

func (d *decoder) fail(pos, i int, err error) error {
	return &codec.DecodeError{
		Codec:   name,
		Pos:     pos,
		Excerpt: codec.Excerpt(d.s, i, excerptLen),
		Err:     err,
	}
}

// char reads the blocks of one character and the separator that follows it.
func (d *decoder) char() (rune, error) {
	pos, i := d.pos, d.i

	var digits strings.Builder
	for n := 0; ; n++ {
		if n == maxGroups {
			return 0, d.fail(pos, i, codec.ErrInvalidCodePoint)
		}

		group, err := d.block()
		if err != nil {
			return 0, err
		}

		if n > 0 && digits.String() == "000" {
			return 0, d.fail(pos, i, codec.ErrMalformedBlock)
		}
		digits.WriteString(group)

		if d.i == len(d.s) {
			break
		}

		// block stops at end of input or on a separator
		d.i += len(blockSeparator)
		d.pos++

		if strings.HasPrefix(d.s[d.i:], blockSeparator) {
			d.i += len(blockSeparator)
			d.pos++

			if d.i == len(d.s) {
				return 0, d.fail(d.pos, d.i, codec.ErrTruncated)
			}
			break
		}
	}

	r, err := codec.ParseRune(digits.String(), base)
	if err != nil {
		return 0, d.fail(pos, i, codec.ErrInvalidCodePoint)
	}

	return r, nil
}

// block reads glyphs up to the next separator and returns the three decimal
// digits they spell.
func (d *decoder) block() (string, error) {
	pos, i := d.pos, d.i

	var counts [groupLen]int
	var tier, glyphs int
	var zero bool
	for d.i < len(d.s) {
		_, size := utf8.DecodeRuneInString(d.s[d.i:])
		tok := d.s[d.i : d.i+size]
		if tok == blockSeparator {
			break
		}

		pattern, ok := vocabulary.Decode(tok)
		if !ok {
			return "", d.fail(d.pos, d.i, codec.ErrUnknownToken)
		}

		t := strings.IndexByte(pattern, '1')
		switch {
		case zero:
			return "", d.fail(d.pos, d.i, codec.ErrMalformedBlock)
		case t < 0:
			if glyphs > 0 {
				return "", d.fail(d.pos, d.i, codec.ErrMalformedBlock)
			}
			zero = true
		default:
			if t < tier || counts[t] == maxRun {
				return "", d.fail(d.pos, d.i, codec.ErrMalformedBlock)
			}

			tier = t
			counts[t]++
		}

		glyphs++
		d.i += size
		d.pos++
	}

	switch {
	case zero:
		return "000", nil
	case glyphs == 0:
		return "", d.fail(pos, i, codec.ErrMalformedBlock)
	}

	var sb strings.Builder
	for _, c := range counts {
		sb.WriteByte(byte('0' + c))
	}

	return sb.String(), nil
}
