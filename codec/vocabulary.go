package codec

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"
)

// Vocabulary is a fixed bidirectional mapping between digit patterns and
// glyph tokens. Patterns[i] is written as Tokens[i]. Lookup tables are built
// on first use and never modified afterwards.
type Vocabulary struct {
	Patterns []string
	Tokens   []string

	patternsOnce sync.Once
	patterns     map[string]int32

	tokensOnce sync.Once
	tokens     map[string]int32

	longestOnce sync.Once
	longest     []int32
}

// NewVocabulary builds a vocabulary from pattern/token pairs given in
// alternating order.
func NewVocabulary(pairs ...string) *Vocabulary {
	if len(pairs)%2 != 0 {
		panic("codec: odd number of vocabulary arguments")
	}

	v := &Vocabulary{
		Patterns: make([]string, 0, len(pairs)/2),
		Tokens:   make([]string, 0, len(pairs)/2),
	}
	for i := 0; i < len(pairs); i += 2 {
		v.Patterns = append(v.Patterns, pairs[i])
		v.Tokens = append(v.Tokens, pairs[i+1])
	}

	return v
}

// Encode returns the token written for pattern.
func (v *Vocabulary) Encode(pattern string) (string, bool) {
	v.patternsOnce.Do(func() {
		v.patterns = make(map[string]int32, len(v.Patterns))
		for i, p := range v.Patterns {
			v.patterns[p] = int32(i)
		}
	})

	if id, ok := v.patterns[pattern]; ok {
		return v.Tokens[id], true
	}

	return "", false
}

// Decode returns the pattern a token stands for.
func (v *Vocabulary) Decode(token string) (string, bool) {
	v.tokensOnce.Do(func() {
		v.tokens = make(map[string]int32, len(v.Tokens))
		for i, t := range v.Tokens {
			v.tokens[t] = int32(i)
		}
	})

	if id, ok := v.tokens[token]; ok {
		return v.Patterns[id], true
	}

	return "", false
}

// Match finds the longest token that s starts with and returns its
// pattern and the token itself. Tokens of equal length are tried in
// vocabulary order.
func (v *Vocabulary) Match(s string) (pattern, token string, ok bool) {
	v.longestOnce.Do(func() {
		v.longest = make([]int32, len(v.Tokens))
		for i := range v.longest {
			v.longest[i] = int32(i)
		}

		slices.SortStableFunc(v.longest, func(a, b int32) int {
			return cmp.Compare(len(v.Tokens[b]), len(v.Tokens[a]))
		})
	})

	for _, id := range v.longest {
		if strings.HasPrefix(s, v.Tokens[id]) {
			return v.Patterns[id], v.Tokens[id], true
		}
	}

	return "", "", false
}

// Validate checks that the vocabulary is injective in both directions, that
// no token is empty or invalid UTF-8, and that no token contains one of the
// reserved separator strings.
func (v *Vocabulary) Validate(reserved ...string) error {
	if len(v.Patterns) != len(v.Tokens) {
		return fmt.Errorf("vocabulary has %d patterns but %d tokens", len(v.Patterns), len(v.Tokens))
	}

	patterns := make(map[string]struct{}, len(v.Patterns))
	tokens := make(map[string]string, len(v.Tokens))
	for i, token := range v.Tokens {
		pattern := v.Patterns[i]
		if token == "" || !utf8.ValidString(token) {
			return fmt.Errorf("pattern %q has an invalid token %q", pattern, token)
		}

		if _, ok := patterns[pattern]; ok {
			return fmt.Errorf("pattern %q is mapped more than once", pattern)
		}
		patterns[pattern] = struct{}{}

		if other, ok := tokens[token]; ok {
			return fmt.Errorf("token %q is shared by patterns %q and %q", token, other, pattern)
		}
		tokens[token] = pattern

		for _, r := range reserved {
			if strings.Contains(token, r) {
				return fmt.Errorf("token %q contains reserved separator %q", token, r)
			}
		}
	}

	return nil
}

// PrefixFree reports whether no token is a proper prefix of another, which
// makes longest-match tokenization unambiguous.
func (v *Vocabulary) PrefixFree() bool {
	for i, a := range v.Tokens {
		for j, b := range v.Tokens {
			if i != j && strings.HasPrefix(b, a) {
				return false
			}
		}
	}

	return true
}

// MustValidate panics if Validate fails. It is meant for package-level
// vocabularies checked once at init.
func (v *Vocabulary) MustValidate(reserved ...string) *Vocabulary {
	if err := v.Validate(reserved...); err != nil {
		panic("codec: " + err.Error())
	}

	return v
}
