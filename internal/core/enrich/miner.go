package enrich

import (
	"fmt"
	"regexp"
	"strings"

	"ai-course-concepts/internal/core/concepts"
)

const (
	maxMinedConcepts     = 2
	maxCandidatesPerPass = 5
	minedConceptIDPrefix = "rag-discovered"
	minedConceptSource   = "rag_analysis"
	minedConceptMinutes  = 30
	minedSummaryMaxRunes = 200
)

// ConceptMiner surfaces net-new concept candidates from retrieval passages.
// The regex implementation is deliberately heuristic; a stronger extraction
// strategy can replace it without touching the orchestrator.
type ConceptMiner interface {
	Mine(base []concepts.Concept, results []concepts.RAGPassage, focusTopics []string) []concepts.Concept
}

// Candidate name patterns, checked per passage in order. The multi-word
// capitalized phrase pattern is intentionally loose. The trigger words fold
// case by hand: a global (?i) would fold \p{Lu} too and the capture would run
// past the capitalized name into trailing lowercase words.
var minerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+)+`),
	regexp.MustCompile(`\b[Cc]oncetto\s+di\s+(\p{Lu}[\p{L}]*(?:\s+\p{Lu}[\p{L}]*)*)`),
	regexp.MustCompile(`\b[Cc]oncept\s+of\s+(\p{Lu}[\p{L}]*(?:\s+\p{Lu}[\p{L}]*)*)`),
	regexp.MustCompile(`\b[Pp]rincipio\s+di\s+(\p{Lu}[\p{L}]*(?:\s+\p{Lu}[\p{L}]*)*)`),
	regexp.MustCompile(`\b[Pp]rinciple\s+of\s+(\p{Lu}[\p{L}]*(?:\s+\p{Lu}[\p{L}]*)*)`),
	regexp.MustCompile(`\b[Tt]eoria\s+(?:della\s+|dello\s+|dei\s+|di\s+)?(\p{Lu}[\p{L}]*(?:\s+\p{Lu}[\p{L}]*)*)`),
	regexp.MustCompile(`\b[Tt]heory\s+of\s+(\p{Lu}[\p{L}]*(?:\s+\p{Lu}[\p{L}]*)*)`),
}

// RegexMiner implements ConceptMiner with lightweight textual patterns.
type RegexMiner struct{}

func NewRegexMiner() *RegexMiner {
	return &RegexMiner{}
}

// Mine scans passages, deduplicates candidates per passage (cap 5 before
// filtering), drops any candidate whose lowercased name collides with an
// existing base concept, and admits at most 2 concepts overall with
// sequential synthetic ids.
func (m *RegexMiner) Mine(base []concepts.Concept, results []concepts.RAGPassage, focusTopics []string) []concepts.Concept {
	known := map[string]bool{}
	for _, c := range base {
		known[strings.ToLower(c.Name)] = true
	}

	mined := make([]concepts.Concept, 0, maxMinedConcepts)
	for _, r := range results {
		if len(mined) >= maxMinedConcepts {
			break
		}
		for _, name := range candidateNames(r.Content) {
			if len(mined) >= maxMinedConcepts {
				break
			}
			key := strings.ToLower(name)
			if known[key] {
				continue
			}
			known[key] = true
			mined = append(mined, newMinedConcept(len(mined), name, r, focusTopics))
		}
	}
	return mined
}

// candidateNames extracts up to 5 distinct candidate names from one passage.
func candidateNames(content string) []string {
	names := make([]string, 0, maxCandidatesPerPass)
	seen := map[string]bool{}
	for _, re := range minerPatterns {
		if len(names) >= maxCandidatesPerPass {
			break
		}
		for _, match := range re.FindAllStringSubmatch(content, -1) {
			if len(names) >= maxCandidatesPerPass {
				break
			}
			name := match[0]
			if len(match) > 1 {
				name = match[1]
			}
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			seen[key] = true
			names = append(names, name)
		}
	}
	return names
}

func newMinedConcept(ordinal int, name string, passage concepts.RAGPassage, focusTopics []string) concepts.Concept {
	summary := fmt.Sprintf("Concept surfaced by retrieval analysis: %s.", truncateRunes(strings.TrimSpace(passage.Content), minedSummaryMaxRunes))
	return concepts.Concept{
		ID:      fmt.Sprintf("%s-%d", minedConceptIDPrefix, ordinal),
		Name:    name,
		Summary: summary,
		LearningObjectives: []string{
			fmt.Sprintf("Understand the fundamentals of %s", name),
			fmt.Sprintf("Relate %s to the rest of the course material", name),
		},
		RelatedTopics:      append([]string{}, focusTopics...),
		SuggestedReading:   []string{},
		QuizOutline:        []string{},
		RecommendedMinutes: minedConceptMinutes,
		Source:             minedConceptSource,
	}
}
