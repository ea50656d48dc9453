package script

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedLanguage is returned for a language tag outside the supported set.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language is a supported source language.
type Language struct {
	Tag    string // Full tag (e.g., "tam_Taml")
	Code   string // Two-letter code used by transliteration models (e.g., "ta")
	Name   string // Human-readable name for prompts and logs
	Script string // Script tag (e.g., "Taml")
}

// Languages lists the supported language/script pairs.
var Languages = []Language{
	{Tag: "hin_Deva", Code: "hi", Name: "Hindi", Script: "Deva"},
	{Tag: "tam_Taml", Code: "ta", Name: "Tamil", Script: "Taml"},
	{Tag: "asm_Beng", Code: "as", Name: "Assamese", Script: "Beng"},
	{Tag: "ben_Beng", Code: "bn", Name: "Bengali", Script: "Beng"},
	{Tag: "kan_Knda", Code: "kn", Name: "Kannada", Script: "Knda"},
	{Tag: "mar_Deva", Code: "mr", Name: "Marathi", Script: "Deva"},
	{Tag: "mal_Mlym", Code: "ml", Name: "Malayalam", Script: "Mlym"},
	{Tag: "npi_Deva", Code: "ne", Name: "Nepali", Script: "Deva"},
	{Tag: "ory_Orya", Code: "or", Name: "Odia", Script: "Orya"},
	{Tag: "pan_Guru", Code: "pa", Name: "Punjabi", Script: "Guru"},
	{Tag: "san_Deva", Code: "sa", Name: "Sanskrit", Script: "Deva"},
	{Tag: "tel_Telu", Code: "te", Name: "Telugu", Script: "Telu"},
	{Tag: "urd_Arab", Code: "ur", Name: "Urdu", Script: "Arab"},
	{Tag: "guj_Gujr", Code: "gu", Name: "Gujarati", Script: "Gujr"},
}

var languagesByTag = func() map[string]Language {
	m := make(map[string]Language, len(Languages))
	for _, l := range Languages {
		m[l.Tag] = l
	}
	return m
}()

// LookupLanguage returns the language for a full tag.
func LookupLanguage(tag string) (Language, bool) {
	l, ok := languagesByTag[tag]
	return l, ok
}

// ParseLanguage splits a tag of the form <code>_<Script> and resolves both
// halves. An unknown script suffix yields ErrUnsupportedScript; a known
// script under a tag outside the supported set yields ErrUnsupportedLanguage.
func ParseLanguage(tag string) (Language, Profile, error) {
	idx := strings.LastIndexByte(tag, '_')
	if idx <= 0 || idx == len(tag)-1 {
		return Language{}, Profile{}, fmt.Errorf("%w: malformed tag %q", ErrUnsupportedScript, tag)
	}

	p, err := Lookup(tag[idx+1:])
	if err != nil {
		return Language{}, Profile{}, err
	}

	l, ok := languagesByTag[tag]
	if !ok {
		return Language{}, Profile{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, tag)
	}

	return l, p, nil
}
