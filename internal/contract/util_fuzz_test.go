package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateText fuzzes TruncateText with random names and widths.
func FuzzTruncateText(f *testing.F) {
	f.Add("Kadın Siyah Elbise", 10)
	f.Add("", 0)
	f.Add("ğüşıöç", 4)
	f.Add("short", 100)

	f.Fuzz(func(t *testing.T, s string, width int) {
		out := TruncateText(s, width)
		if width > 3 && utf8.RuneCountInString(s) > width {
			if utf8.RuneCountInString(out) != width {
				t.Fatalf("truncated %q to %q, want %d runes", s, out, width)
			}
		}
	})
}

// FuzzParseSeconds fuzzes ParseSeconds and checks no negative duration escapes.
func FuzzParseSeconds(f *testing.F) {
	for _, seed := range []string{"1s", "0", "1.5", "-2", "250ms", "abc", ""} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		d, err := ParseSeconds(s)
		if err == nil && d < 0 {
			t.Fatalf("ParseSeconds(%q) returned negative %v", s, d)
		}
	})
}
