package xlitfix

import "github.com/ZaguanLabs/xlitfix/script"

// Alignment maps tokens of a transliterated sentence back to the tokens of
// the original sentence they were produced from.
type Alignment struct {
	// Mapping is keyed by the punctuation-stripped transliterated token and
	// holds the punctuation-stripped original token at the same position.
	// When a transliterated token repeats, the last position wins.
	Mapping map[string]string

	// Pairs is the number of positions that were paired.
	Pairs int

	// Complete is false when the two sentences have different token counts;
	// tokens past the shorter sentence are then left unmapped and the
	// positional pairing may be wrong for tokens the model merged or split.
	Complete bool
}

// AlignPositional pairs transliterated[i] with original[i] for every i below
// the shorter length. It is a best-effort alignment: it assumes the model kept
// the original token count and order, and reports through Complete whether
// the counts at least agree.
func AlignPositional(transliterated, original []string) Alignment {
	n := min(len(transliterated), len(original))

	a := Alignment{
		Mapping:  make(map[string]string, n),
		Pairs:    n,
		Complete: len(transliterated) == len(original),
	}
	for i := 0; i < n; i++ {
		a.Mapping[script.StripPunct(transliterated[i])] = script.StripPunct(original[i])
	}
	return a
}
