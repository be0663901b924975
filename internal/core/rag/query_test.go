package rag

import (
	"strings"
	"testing"

	"ai-course-concepts/internal/core/concepts"
)

func TestBuildQuery_BookTitleAndFocus(t *testing.T) {
	q := BuildQuery(concepts.DepthDetailed, "Il Paesaggio Geografico", []string{"erosione", "clima"})

	if !strings.Contains(q, `the book "Il Paesaggio Geografico"`) {
		t.Fatalf("book title missing from query: %q", q)
	}
	if !strings.Contains(q, "with focus on: erosione, clima") {
		t.Fatalf("focus topics missing from query: %q", q)
	}
	if !strings.Contains(q, "detailed explanations of the main concepts") {
		t.Fatalf("detailed clause missing from query: %q", q)
	}
}

func TestBuildQuery_NoBookNoFocus(t *testing.T) {
	q := BuildQuery(concepts.DepthBasic, "", nil)
	if q != "deep analysis of key concepts" {
		t.Fatalf("unexpected base query: %q", q)
	}
}

func TestBuildQuery_ComprehensiveClause(t *testing.T) {
	q := BuildQuery(concepts.DepthComprehensive, "", nil)
	if !strings.Contains(q, "historical context") || !strings.Contains(q, "practical implications") {
		t.Fatalf("comprehensive clause missing: %q", q)
	}
}

func TestBuildQuery_Deterministic(t *testing.T) {
	a := BuildQuery(concepts.DepthComprehensive, "Atlas", []string{"maps"})
	b := BuildQuery(concepts.DepthComprehensive, "Atlas", []string{"maps"})
	if a != b {
		t.Fatalf("same inputs produced different queries:\n%q\n%q", a, b)
	}
}

func TestMaxResultsForDepth(t *testing.T) {
	cases := []struct {
		depth concepts.DepthLevel
		want  int
	}{
		{concepts.DepthBasic, 8},
		{concepts.DepthDetailed, 5},
		{concepts.DepthComprehensive, 8},
	}
	for _, c := range cases {
		if got := MaxResultsForDepth(c.depth); got != c.want {
			t.Errorf("MaxResultsForDepth(%s) = %d, want %d", c.depth, got, c.want)
		}
	}
}

func TestSourceFilterForBook(t *testing.T) {
	if got := SourceFilterForBook(""); got != "" {
		t.Fatalf("empty book id must apply no filter, got %q", got)
	}
	if got := SourceFilterForBook("bk-7"); got != "books/bk-7/" {
		t.Fatalf("unexpected filter: %q", got)
	}
}
