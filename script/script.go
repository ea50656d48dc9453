// Package script classifies text by Unicode script block.
//
// A Profile describes one supported source script: the contiguous Unicode
// block it occupies, whether it uses the Brahmic danda sentence terminators,
// and which canonicalization it needs before dictionary lookup.
//
// All functions are safe for concurrent use by multiple goroutines.
package script

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// ErrUnsupportedScript is returned for a script tag outside the supported set.
var ErrUnsupportedScript = errors.New("unsupported script")

// Profile describes a source script.
type Profile struct {
	Tag string // Four-letter script tag (e.g., "Deva", "Taml")
	Lo  rune   // First code point of the block
	Hi  rune   // Last code point of the block

	// Dandas is true for scripts that terminate sentences with । and ॥.
	Dandas bool

	// SkipCanonical is true for scripts whose normalization is a literal
	// punctuation substitution only.
	SkipCanonical bool

	// Visarga is the script's visarga sign, or 0 if it has none.
	Visarga rune
}

var profiles = map[string]Profile{
	"Arab": {Tag: "Arab", Lo: 0x0600, Hi: 0x06FF, SkipCanonical: true},
	"Beng": {Tag: "Beng", Lo: 0x0980, Hi: 0x09FF, Dandas: true, Visarga: 0x0983},
	"Deva": {Tag: "Deva", Lo: 0x0900, Hi: 0x097F, Dandas: true, Visarga: 0x0903},
	"Guru": {Tag: "Guru", Lo: 0x0A00, Hi: 0x0A7F, Dandas: true, Visarga: 0x0A03},
	"Gujr": {Tag: "Gujr", Lo: 0x0A80, Hi: 0x0AFF, Dandas: true, Visarga: 0x0A83},
	"Orya": {Tag: "Orya", Lo: 0x0B00, Hi: 0x0B7F, Dandas: true, Visarga: 0x0B03},
	"Taml": {Tag: "Taml", Lo: 0x0B80, Hi: 0x0BFF},
	"Telu": {Tag: "Telu", Lo: 0x0C00, Hi: 0x0C7F, Visarga: 0x0C03},
	"Knda": {Tag: "Knda", Lo: 0x0C80, Hi: 0x0CFF, Visarga: 0x0C83},
	"Mlym": {Tag: "Mlym", Lo: 0x0D00, Hi: 0x0D7F, Visarga: 0x0D03},
}

// Lookup returns the profile for a four-letter script tag.
func Lookup(tag string) (Profile, error) {
	p, ok := profiles[tag]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnsupportedScript, tag)
	}
	return p, nil
}

// Tags returns the supported script tags in sorted order.
func Tags() []string {
	tags := make([]string, 0, len(profiles))
	for tag := range profiles {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Pattern returns a compiled character class matching one rune of the script.
func Pattern(tag string) (*regexp.Regexp, error) {
	p, err := Lookup(tag)
	if err != nil {
		return nil, err
	}
	return p.Pattern(), nil
}

// Pattern returns a compiled character class matching one rune of the script.
func (p Profile) Pattern() *regexp.Regexp {
	return regexp.MustCompile(p.Class())
}

// Class returns the script's character class in RE2 syntax.
func (p Profile) Class() string {
	return fmt.Sprintf(`[\x{%04X}-\x{%04X}]`, p.Lo, p.Hi)
}

// Contains reports whether r belongs to the script block.
func (p Profile) Contains(r rune) bool {
	return r >= p.Lo && r <= p.Hi
}

// IsWordRune reports whether r is a letter or combining sign of the script.
// Digits and punctuation inside the block are not word runes.
func (p Profile) IsWordRune(r rune) bool {
	return p.Contains(r) && (unicode.IsLetter(r) || unicode.In(r, unicode.Mn, unicode.Mc))
}

// WordClass returns an RE2 character class matching exactly the word runes
// of the script.
func (p Profile) WordClass() string {
	var b strings.Builder
	b.WriteByte('[')
	for r := p.Lo; r <= p.Hi; r++ {
		if !p.IsWordRune(r) {
			continue
		}
		end := r
		for end+1 <= p.Hi && p.IsWordRune(end+1) {
			end++
		}
		if end == r {
			fmt.Fprintf(&b, `\x{%04X}`, r)
		} else {
			fmt.Fprintf(&b, `\x{%04X}-\x{%04X}`, r, end)
		}
		r = end
	}
	b.WriteByte(']')
	return b.String()
}

// Matches reports whether s contains at least one letter or sign of the
// script. Script digits and punctuation alone do not match.
func (p Profile) Matches(s string) bool {
	for _, r := range s {
		if p.IsWordRune(r) {
			return true
		}
	}
	return false
}

// ExtractWords splits sentence on whitespace and keeps the tokens that
// contain at least one letter or sign of the script. Token text is returned as-is,
// punctuation included.
func (p Profile) ExtractWords(sentence string) []string {
	var words []string
	for _, tok := range strings.Fields(sentence) {
		if p.Matches(tok) {
			words = append(words, tok)
		}
	}
	return words
}

// ContainsLatin reports whether s contains an ASCII letter.
func ContainsLatin(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return true
		}
	}
	return false
}

// StripPunct trims whitespace and the sentence punctuation , . ! ? - from
// both ends of a token.
func StripPunct(token string) string {
	return strings.Trim(token, " \t\n\r\v\f,.!?-")
}

// symbols are the ASCII punctuation and symbols that never belong to a word.
const symbols = ".,;:!?()[]{}'\"<>@#$%^&*-_+=/\\|~`"

// StripSymbols replaces every digit, punctuation mark and ASCII symbol in s
// with a space, leaving word characters in place. Script punctuation such as
// the danda and the Arabic comma counts as punctuation.
func StripSymbols(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || unicode.IsPunct(r) || strings.ContainsRune(symbols, r) {
			return ' '
		}
		return r
	}, s)
}
