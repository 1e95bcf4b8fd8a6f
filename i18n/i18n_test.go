package i18n

import "testing"

func TestPick(t *testing.T) {
	names := map[string]string{
		"en": "Dishes",
		"de": "Abwasch",
		"fr": "Vaisselle",
	}

	tests := []struct {
		name     string
		accept   string
		fallback string
		want     string
	}{
		{"exact match", "de", "en", "Abwasch"},
		{"regional variant", "de-AT", "en", "Abwasch"},
		{"quality weighted header", "fr-CH, fr;q=0.9, en;q=0.8", "en", "Vaisselle"},
		{"no match falls back", "ja", "en", "Dishes"},
		{"empty header falls back", "", "en", "Dishes"},
		{"garbage header falls back", "not a language tag", "en", "Dishes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pick(names, tt.accept, tt.fallback); got != tt.want {
				t.Errorf("Pick(%q) = %q, want %q", tt.accept, got, tt.want)
			}
		})
	}
}

func TestPick_FallbackMissing(t *testing.T) {
	names := map[string]string{
		"de": "Abwasch",
		"fr": "Vaisselle",
	}

	// With no match and no fallback entry, the alphabetically first name
	// still gives the task something displayable.
	if got := Pick(names, "ja", "en"); got != "Abwasch" {
		t.Errorf("Pick = %q, want %q", got, "Abwasch")
	}
}

func TestPick_Empty(t *testing.T) {
	if got := Pick(nil, "en", "en"); got != "" {
		t.Errorf("Pick(nil) = %q, want empty", got)
	}
}

func TestPick_SkipsInvalidKeys(t *testing.T) {
	names := map[string]string{
		"not a tag": "Mystery",
		"en":        "Dishes",
	}

	if got := Pick(names, "en-GB", "en"); got != "Dishes" {
		t.Errorf("Pick = %q, want %q", got, "Dishes")
	}
}
