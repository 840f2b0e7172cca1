package gugugaga

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gugugaga/gugugaga/codec"
)

func TestEncode(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		// 0 = 000000000000
		{"nul", "\x00", "⚡🐧"},
		// 65 = 000000001001
		{"ascii", "A", "⚡叮咚鸡嘎嘎"},
		// 20320 = 000010331200
		{"cjk", "你", "🐧叮咚鸡🐔🎵咕咕"},
		// 128512 = 000133120000
		{"emoji", "😀", "咕咕嘎嘎🐔🎵咕咕咕咕"},
		{"pair", "AB", "⚡叮咚鸡嘎嘎⚡叮咚鸡刮擦"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Encode(tt.input)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompression(t *testing.T) {
	// every code point below 4^4 has eight leading zero digits
	for r := rune(0); r < 256; r++ {
		got := Encode(string(r))
		require.True(t, strings.HasPrefix(got, "⚡"), "rune %d: %s", r, got)
		assert.False(t, strings.HasPrefix(got, "🐧🐧"), "rune %d: %s", r, got)
	}

	// 255 = 000000003333 is the largest value with eight leading zeros
	assert.Equal(t, "⚡🐔🐔", Encode("\u00ff"))

	// 256 = 000000010000 has only seven
	assert.Equal(t, "🐧咕咕嘎嘎咕咕咕咕", Encode("\u0100"))
	assert.False(t, strings.HasPrefix(Encode("\u0100"), "⚡"))

	// 16 = 000000000100
	assert.Equal(t, "⚡嘎嘎咕咕", Encode("\x10"))

	// 4096 = 000001000000
	assert.Equal(t, "🐧嘎嘎咕咕咕咕咕咕", Encode("က"))

	// trailing zero runs are spelled as pairs: 65536 = 000100000000
	assert.Equal(t, "咕咕嘎嘎咕咕咕咕咕咕咕咕", Encode("\U00010000"))
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"hello, world",
		"咕咕嘎嘎",
		"日本語のテキスト",
		"emoji 😀🐧⚡ mixed",
		"\x00\x01\x7f",
		"\uffff\U0010ffff",
		"tab\tnewline\n",
	}

	for _, input := range inputs {
		got, err := Decode(Encode(input))
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, input, got)
	}
}

func TestRoundTripSampled(t *testing.T) {
	var sb strings.Builder
	for r := rune(0); r <= utf8.MaxRune; r += 251 {
		if utf8.ValidRune(r) {
			sb.WriteRune(r)
		}
	}

	input := sb.String()
	got, err := Decode(Encode(input))
	require.NoError(t, err)
	require.Equal(t, input, got)
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		err     error
		pos     int
		excerpt string
	}{
		{"unknown glyph", "⚡叮咚鸡嘎嘎x", codec.ErrUnknownToken, 6, "x"},
		{"unknown at start", "hello world", codec.ErrUnknownToken, 0, "hello "},
		{"partial token", "⚡咕", codec.ErrUnknownToken, 1, "咕"},
		{"truncated group", "⚡叮咚鸡嘎嘎⚡咕咕", codec.ErrTruncated, 6, "⚡咕咕"},
		// 333333333333 in base 4 is 16777215
		{"too large", strings.Repeat("🐔", 6), codec.ErrInvalidCodePoint, 0, "🐔🐔🐔🐔🐔🐔"},
		// 0xd800 = 000031200000
		{"surrogate", "🐧🐱🍄咕咕咕咕", codec.ErrInvalidCodePoint, 0, "🐧🐱🍄咕咕咕"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input)
			require.ErrorIs(t, err, tt.err)

			var de *codec.DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, "gugugaga", de.Codec)
			assert.Equal(t, tt.pos, de.Pos)
			assert.Equal(t, tt.excerpt, de.Excerpt)
		})
	}
}

func TestVocabulary(t *testing.T) {
	require.NoError(t, vocabulary.Validate())
	assert.True(t, vocabulary.PrefixFree())
	assert.Len(t, vocabulary.Tokens, 18)

	for a := '0'; a <= '3'; a++ {
		for b := '0'; b <= '3'; b++ {
			_, ok := vocabulary.Encode(string([]rune{a, b}))
			assert.True(t, ok, "pair %c%c", a, b)
		}
	}
}

func TestRegistered(t *testing.T) {
	c, err := codec.Get("gugugaga")
	require.NoError(t, err)

	tokens, err := c.Encode("A")
	require.NoError(t, err)
	assert.Equal(t, Encode("A"), tokens)

	text, err := c.Decode(tokens)
	require.NoError(t, err)
	assert.Equal(t, "A", text)
}
