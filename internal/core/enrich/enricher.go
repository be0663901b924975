package enrich

import (
	"fmt"
	"strings"

	"ai-course-concepts/internal/core/concepts"
)

// Enricher merges base concepts with passage-derived insights and appends
// newly mined concepts.
type Enricher struct {
	miner ConceptMiner
}

func NewEnricher(miner ConceptMiner) *Enricher {
	if miner == nil {
		miner = NewRegexMiner()
	}
	return &Enricher{miner: miner}
}

// Enrich returns one copy of every base concept, carrying insights and a
// synthesized enhanced summary where relevant passages were found, followed
// by up to two concepts mined from the passages. The input slice is not
// mutated; enrichment is request-scoped and never persisted.
func (e *Enricher) Enrich(base []concepts.Concept, results []concepts.RAGPassage, focusTopics []string) []concepts.Concept {
	enriched := make([]concepts.Concept, 0, len(base)+maxMinedConcepts)
	for _, c := range base {
		copied := c
		if insights := ExtractInsights(c, results); len(insights) > 0 {
			copied.RAGInsights = insights
			copied.EnhancedSummary = enhanceSummary(c.Summary, insights)
		}
		enriched = append(enriched, copied)
	}
	return append(enriched, e.miner.Mine(base, results, focusTopics)...)
}

// enhanceSummary appends a numbered insight list to the original summary.
func enhanceSummary(summary string, insights []string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(summary))
	b.WriteString("\n\nInsights from the course materials:\n")
	for i, insight := range insights {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, insight))
	}
	return strings.TrimRight(b.String(), "\n")
}
