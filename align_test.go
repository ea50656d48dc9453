package xlitfix

import (
	"strings"
	"testing"
)

func TestAlignPositional(t *testing.T) {
	tests := []struct {
		name           string
		transliterated string
		original       string
		wantPairs      int
		wantComplete   bool
		want           map[string]string
	}{
		{
			name:           "same length",
			transliterated: "rom செllல vendum.",
			original:       "ரோம் செல்ல வேண்டும்.",
			wantPairs:      3,
			wantComplete:   true,
			want:           map[string]string{"rom": "ரோம்", "செllல": "செல்ல", "vendum": "வேண்டும்"},
		},
		{
			name:           "model merged tokens",
			transliterated: "romsella vendum",
			original:       "ரோம் செல்ல வேண்டும்",
			wantPairs:      2,
			wantComplete:   false,
			want:           map[string]string{"romsella": "ரோம்", "vendum": "செல்ல"},
		},
		{
			name:           "empty",
			transliterated: "",
			original:       "ரோம்",
			wantPairs:      0,
			wantComplete:   false,
			want:           map[string]string{},
		},
		{
			name:           "repeated token keeps last position",
			transliterated: "a a",
			original:       "ஒன்று இரண்டு",
			wantPairs:      2,
			wantComplete:   true,
			want:           map[string]string{"a": "இரண்டு"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AlignPositional(strings.Fields(tt.transliterated), strings.Fields(tt.original))

			if a.Pairs != tt.wantPairs {
				t.Errorf("Pairs = %d, want %d", a.Pairs, tt.wantPairs)
			}
			if a.Complete != tt.wantComplete {
				t.Errorf("Complete = %v, want %v", a.Complete, tt.wantComplete)
			}
			if len(a.Mapping) != len(tt.want) {
				t.Fatalf("Mapping = %v, want %v", a.Mapping, tt.want)
			}
			for k, v := range tt.want {
				if a.Mapping[k] != v {
					t.Errorf("Mapping[%q] = %q, want %q", k, a.Mapping[k], v)
				}
			}
		})
	}
}
