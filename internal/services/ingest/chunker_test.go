package ingest

import (
	"strings"
	"testing"
)

func TestBuildChunks_EmptyPagesSkipped(t *testing.T) {
	chunks := BuildChunks([]string{"", "   ", "contenuto"}, 600, 80)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].PageIndex != 3 {
		t.Fatalf("page index must be 1-based on the original pages, got %d", chunks[0].PageIndex)
	}
	if chunks[0].ChunkIndex != 0 {
		t.Fatalf("chunk index must start at 0, got %d", chunks[0].ChunkIndex)
	}
}

func TestBuildChunks_SplitsLongPageWithOverlap(t *testing.T) {
	// 100 target tokens = 400 chars per chunk, 10 overlap tokens = 40 chars.
	page := strings.Repeat("a", 1000)
	chunks := BuildChunks([]string{page}, 100, 10)

	if len(chunks) < 2 {
		t.Fatalf("long page must split, got %d chunks", len(chunks))
	}
	if got := len([]rune(chunks[0].Content)); got != 400 {
		t.Fatalf("expected 400-rune first chunk, got %d", got)
	}
	for i, c := range chunks {
		if c.ChunkIndex != int32(i) {
			t.Fatalf("chunk indices must be sequential, got %d at %d", c.ChunkIndex, i)
		}
	}
	// Consecutive chunks share the overlap region.
	if !strings.HasPrefix(chunks[1].Content, chunks[0].Content[400-40:]) {
		t.Fatal("second chunk must start with the overlap of the first")
	}
}

func TestBuildChunks_DefaultsForBadParams(t *testing.T) {
	chunks := BuildChunks([]string{"breve"}, 0, -5)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "breve" {
		t.Fatalf("unexpected content: %q", chunks[0].Content)
	}
}

func TestBuildChunks_ChunkIndexGlobalAcrossPages(t *testing.T) {
	chunks := BuildChunks([]string{"pagina uno", "pagina due"}, 600, 0)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].ChunkIndex != 0 || chunks[1].ChunkIndex != 1 {
		t.Fatalf("chunk index must be global across pages: %d, %d", chunks[0].ChunkIndex, chunks[1].ChunkIndex)
	}
	if chunks[0].PageIndex != 1 || chunks[1].PageIndex != 2 {
		t.Fatalf("unexpected page indices: %d, %d", chunks[0].PageIndex, chunks[1].PageIndex)
	}
}
