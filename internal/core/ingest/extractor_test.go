package ingest

import "testing"

func TestSanitizeUTF8Printable(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"\uFEFFtesto con marcatore", "testo con marcatore"},
		{"riga\nuna\ttab", "riga\nuna\ttab"},
		{"controllo\x00nullo", "controllonullo"},
		{"  spazi esterni  ", "spazi esterni"},
	}
	for _, c := range cases {
		if got := sanitizeUTF8Printable(c.in); got != c.want {
			t.Errorf("sanitizeUTF8Printable(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
