package validators

import "testing"

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"trims whitespace", "  Neon Harbor  ", 100, "Neon Harbor"},
		{"caps long values", "abcdef", 4, "abcd"},
		{"zero max disables cap", "abcdef", 0, "abcdef"},
		{"counts runes not bytes", "héllo wörld", 5, "héllo"},
		{"empty input", "   ", 10, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeString(tc.input, tc.maxLen); got != tc.want {
				t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.want)
			}
		})
	}
}
