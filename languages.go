package xlitfix

import (
	"strings"

	"github.com/ZaguanLabs/xlitfix/script"
)

// TargetNames maps target language codes to the names used in model prompts.
var TargetNames = map[string]string{
	"en": "English (Latin script)",
	"hi": "Hindi (Devanagari script)",
}

// SupportedLanguages returns the supported source language tags in table order.
func SupportedLanguages() []string {
	tags := make([]string, len(script.Languages))
	for i, l := range script.Languages {
		tags[i] = l.Tag
	}
	return tags
}

// GetLanguageName returns the human-readable name for a language tag
// ("tam_Taml") or short code ("ta").
// Falls back to the input itself if not found.
func GetLanguageName(lang string) string {
	if l, ok := script.LookupLanguage(lang); ok {
		return l.Name
	}
	for _, l := range script.Languages {
		if l.Code == lang {
			return l.Name
		}
	}
	if name, ok := TargetNames[lang]; ok {
		return name
	}
	return lang
}

// GetDirection returns "rtl" for source languages written right to left, "ltr" otherwise.
func GetDirection(lang string) string {
	if l, ok := script.LookupLanguage(NormalizeTag(lang)); ok && l.Script == "Arab" {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(lang string) bool {
	return GetDirection(lang) == "rtl"
}

// NormalizeTag converts a tag to the canonical <code>_<Script> form
// (e.g., "TAM-taml" → "tam_Taml").
func NormalizeTag(tag string) string {
	code, scr, found := strings.Cut(strings.ReplaceAll(tag, "-", "_"), "_")
	if !found || scr == "" {
		return tag
	}
	return strings.ToLower(code) + "_" + strings.ToUpper(scr[:1]) + strings.ToLower(scr[1:])
}

// ToHTMLLang converts a source tag to the HTML lang attribute of its
// romanized form (e.g., "tam_Taml" → "ta-Latn").
func ToHTMLLang(tag string) string {
	if l, ok := script.LookupLanguage(NormalizeTag(tag)); ok {
		return l.Code + "-Latn"
	}
	return strings.ReplaceAll(tag, "_", "-")
}
