package ingest

import (
	"strings"
	"testing"
)

func TestBuildContentPreview(t *testing.T) {
	if got := buildContentPreview("\uFEFFanteprima del testo", 512); got != "anteprima del testo" {
		t.Fatalf("byte-order mark must be stripped, got %q", got)
	}
	if got := buildContentPreview("con\x00trollo", 512); got != "controllo" {
		t.Fatalf("non-printable runes must be stripped, got %q", got)
	}

	long := strings.Repeat("b", 600)
	if got := len([]rune(buildContentPreview(long, 512))); got != 512 {
		t.Fatalf("preview must truncate to 512 runes, got %d", got)
	}
}
