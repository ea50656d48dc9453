// Package normalize canonicalizes source-script text before dictionary lookup.
//
// Dictionary keys are stored in canonical form, so the same normalization must
// run on both the keys and every text that is matched against them. A
// Normalizer is immutable and safe for concurrent use.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/ZaguanLabs/xlitfix/script"
)

// maxPasses bounds the fixed-point iteration of the canonicalizer.
const maxPasses = 4

const (
	zwnj = '\u200C'
	zwj  = '\u200D'
)

// Normalizer canonicalizes text for one source language.
type Normalizer struct {
	lang    script.Language
	profile script.Profile
}

// New returns a Normalizer for a language tag such as "hin_Deva".
func New(lang string) (*Normalizer, error) {
	l, p, err := script.ParseLanguage(lang)
	if err != nil {
		return nil, err
	}
	return &Normalizer{lang: l, profile: p}, nil
}

// Normalize is a convenience wrapper around New and (*Normalizer).Normalize.
func Normalize(lang, text string) (string, error) {
	n, err := New(lang)
	if err != nil {
		return "", err
	}
	return n.Normalize(text), nil
}

// Language returns the language the normalizer was built for.
func (n *Normalizer) Language() script.Language {
	return n.lang
}

// Profile returns the script profile of the normalizer's language.
func (n *Normalizer) Profile() script.Profile {
	return n.profile
}

// Normalize returns the canonical form of text. The result is a fixed point:
// normalizing it again returns it unchanged.
func (n *Normalizer) Normalize(text string) string {
	text = Terminators(n.profile, text)
	if n.profile.SkipCanonical || text == "" {
		return text
	}

	for i := 0; i < maxPasses; i++ {
		next := n.canonicalize(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}

var (
	dandaReplacer  = strings.NewReplacer("\u0964", ".", "\u0965", ".", "|", ".")
	arabicReplacer = strings.NewReplacer("\u06D4", ".", "\u061F", "?")
)

// Terminators rewrites the script's sentence-terminator glyphs to ASCII.
// Scripts without terminator glyphs of their own are returned unchanged.
func Terminators(p script.Profile, text string) string {
	switch {
	case p.Dandas:
		return dandaReplacer.Replace(text)
	case p.Tag == "Arab":
		return arabicReplacer.Replace(text)
	}
	return text
}

// punctReplacer folds typographic punctuation variants to ASCII.
// Two-character sequences are listed first so they win over their prefixes.
var punctReplacer = strings.NewReplacer(
	"''", `"`,
	"\u00B4\u00B4", `"`,
	"\uFEFF", "",
	"\u00AD", "",
	"\r", "",
	"\u00A0", " ",
	"\u201E", `"`,
	"\u201C", `"`,
	"\u201D", `"`,
	"\u00AB", `"`,
	"\u00BB", `"`,
	"\u2018", "'",
	"\u2019", "'",
	"\u201A", "'",
	"\u00B4", "'",
	"\u2013", "-",
	"\u2014", " - ",
	"\u2026", "...",
)

// Nukta letters and the candra A are stored decomposed.
var precomposed = strings.NewReplacer(
	"\u0929", "\u0928\u093C",
	"\u0931", "\u0930\u093C",
	"\u0934", "\u0933\u093C",
	"\u0972", "\u0905\u0945",
)

// Consonant + virama + ZWJ is the legacy spelling of the atomic chillu letters.
var chillus = strings.NewReplacer(
	"\u0D23\u0D4D\u200D", "\u0D7A",
	"\u0D28\u0D4D\u200D", "\u0D7B",
	"\u0D30\u0D4D\u200D", "\u0D7C",
	"\u0D32\u0D4D\u200D", "\u0D7D",
	"\u0D33\u0D4D\u200D", "\u0D7E",
	"\u0D15\u0D4D\u200D", "\u0D7F",
)

// canonicalize runs one pass of the canonicalizer.
func (n *Normalizer) canonicalize(text string) string {
	text = punctReplacer.Replace(text)
	text = norm.NFC.String(text)

	switch n.profile.Tag {
	case "Deva":
		text = precomposed.Replace(text)
	case "Mlym":
		text = chillus.Replace(text)
	}

	return n.marks(text)
}

// marks drops stray joiners, turns a colon written after a letter into the
// script's visarga, and collapses repeated identical combining signs.
func (n *Normalizer) marks(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	var prev rune
	for _, r := range text {
		switch {
		case (r == zwnj || r == zwj) && n.profile.Tag != "Mlym":
			continue
		case r == ':' && n.profile.Visarga != 0 && n.isLetterOrSign(prev):
			r = n.profile.Visarga
		}

		if r == prev && n.isSign(r) {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func (n *Normalizer) isSign(r rune) bool {
	return n.profile.Contains(r) && unicode.In(r, unicode.Mn, unicode.Mc)
}

func (n *Normalizer) isLetterOrSign(r rune) bool {
	return n.profile.IsWordRune(r)
}
