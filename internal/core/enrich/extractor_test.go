package enrich

import (
	"strings"
	"testing"

	"ai-course-concepts/internal/core/concepts"
)

func passage(content string) concepts.RAGPassage {
	return concepts.RAGPassage{Content: content}
}

func TestExtractInsights_MatchesNameCaseInsensitively(t *testing.T) {
	c := concepts.Concept{Name: "Erosione"}
	results := []concepts.RAGPassage{
		passage("L'EROSIONE modella il paesaggio nel tempo."),
		passage("Il clima mediterraneo influenza la vegetazione."),
	}

	insights := ExtractInsights(c, results)
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	if insights[0] != "L'EROSIONE modella il paesaggio nel tempo." {
		t.Fatalf("unexpected insight: %q", insights[0])
	}
}

func TestExtractInsights_MatchesRelatedTopics(t *testing.T) {
	c := concepts.Concept{Name: "Morfologia", RelatedTopics: []string{"ghiacciai", "valli"}}
	results := []concepts.RAGPassage{
		passage("I ghiacciai scavano valli a U."),
	}

	insights := ExtractInsights(c, results)
	if len(insights) != 1 {
		t.Fatalf("expected match on related topic, got %d insights", len(insights))
	}
}

func TestExtractInsights_CapAndOrder(t *testing.T) {
	c := concepts.Concept{Name: "clima"}
	results := []concepts.RAGPassage{
		passage("clima A"),
		passage("clima B"),
		passage("clima C"),
		passage("clima D"),
	}

	insights := ExtractInsights(c, results)
	if len(insights) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(insights))
	}
	if insights[0] != "clima A" || insights[2] != "clima C" {
		t.Fatalf("passage order not preserved: %v", insights)
	}
}

func TestExtractInsights_DeduplicatesExcerpts(t *testing.T) {
	c := concepts.Concept{Name: "clima"}
	results := []concepts.RAGPassage{
		passage("clima e territorio"),
		passage("  clima e territorio  "),
	}

	insights := ExtractInsights(c, results)
	if len(insights) != 1 {
		t.Fatalf("expected duplicate excerpt to be skipped, got %v", insights)
	}
}

func TestExtractInsights_TruncatesTo300(t *testing.T) {
	c := concepts.Concept{Name: "clima"}
	long := "clima " + strings.Repeat("x", 400)
	insights := ExtractInsights(c, []concepts.RAGPassage{passage(long)})

	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	if got := len([]rune(insights[0])); got != 300 {
		t.Fatalf("expected 300-rune excerpt, got %d", got)
	}
}

func TestExtractInsights_NoMatchNoInsights(t *testing.T) {
	c := concepts.Concept{Name: "Tettonica"}
	insights := ExtractInsights(c, []concepts.RAGPassage{passage("nessuna corrispondenza qui")})
	if len(insights) != 0 {
		t.Fatalf("expected no insights, got %v", insights)
	}
}
