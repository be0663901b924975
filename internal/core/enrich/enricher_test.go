package enrich

import (
	"strings"
	"testing"

	"ai-course-concepts/internal/core/concepts"
)

type staticMiner struct {
	concepts []concepts.Concept
}

func (m *staticMiner) Mine(base []concepts.Concept, results []concepts.RAGPassage, focusTopics []string) []concepts.Concept {
	return m.concepts
}

func TestEnrich_CarriesInsightsAndEnhancedSummary(t *testing.T) {
	e := NewEnricher(&staticMiner{})
	base := []concepts.Concept{
		{ID: "c1", Name: "Erosione", Summary: "Processo di consumo del suolo."},
		{ID: "c2", Name: "Vulcanismo", Summary: "Attivita eruttiva."},
	}
	results := []concepts.RAGPassage{
		{Content: "L'erosione fluviale scava le valli."},
	}

	enriched := e.Enrich(base, results, nil)
	if len(enriched) != 2 {
		t.Fatalf("every base concept must appear once, got %d", len(enriched))
	}

	matched := enriched[0]
	if len(matched.RAGInsights) != 1 {
		t.Fatalf("expected 1 insight on matched concept, got %v", matched.RAGInsights)
	}
	if !strings.HasPrefix(matched.EnhancedSummary, "Processo di consumo del suolo.") {
		t.Fatalf("enhanced summary must start from the original: %q", matched.EnhancedSummary)
	}
	if !strings.Contains(matched.EnhancedSummary, "Insights from the course materials:\n1. ") {
		t.Fatalf("enhanced summary missing numbered insights: %q", matched.EnhancedSummary)
	}

	unmatched := enriched[1]
	if unmatched.RAGInsights != nil || unmatched.EnhancedSummary != "" {
		t.Fatalf("unmatched concept must stay untouched: %+v", unmatched)
	}
}

func TestEnrich_DoesNotMutateBase(t *testing.T) {
	e := NewEnricher(&staticMiner{})
	base := []concepts.Concept{{ID: "c1", Name: "Clima", Summary: "s"}}
	results := []concepts.RAGPassage{{Content: "il clima cambia"}}

	_ = e.Enrich(base, results, nil)

	if base[0].RAGInsights != nil || base[0].EnhancedSummary != "" {
		t.Fatalf("base slice was mutated: %+v", base[0])
	}
}

func TestEnrich_AppendsMinedConcepts(t *testing.T) {
	mined := []concepts.Concept{{ID: "rag-discovered-0", Name: "Isostasia", Source: "rag_analysis"}}
	e := NewEnricher(&staticMiner{concepts: mined})
	base := []concepts.Concept{{ID: "c1", Name: "Clima"}}

	enriched := e.Enrich(base, nil, nil)
	if len(enriched) != 2 {
		t.Fatalf("expected base + mined, got %d", len(enriched))
	}
	if enriched[1].ID != "rag-discovered-0" {
		t.Fatalf("mined concept must follow base concepts, got %s", enriched[1].ID)
	}
}
