// Package topics groups a question's answers into thematic clusters.
package topics

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

const (
	LexicalAlgorithm = "TermOverlap"

	// OutlierLabel names the group of answers that matched no topic, and
	// the single group returned for inputs too small to model.
	OutlierLabel = "Miscellaneous"

	maxTopics    = 6
	topTermCount = 10
	minAnswers   = 5
)

// LexicalEngine clusters answers by shared high-frequency terms. Each answer
// is assigned to the seed term it overlaps most; answers matching no seed
// fall into a single outlier group. It trades modelling quality for
// determinism and zero external calls.
type LexicalEngine struct{}

func NewLexicalEngine() *LexicalEngine {
	return &LexicalEngine{}
}

func (e *LexicalEngine) Process(_ context.Context, answers []domain.AnalysisAnswer, questionID uuid.UUID) ([]domain.TopicResult, error) {
	if len(answers) == 0 {
		return nil, nil
	}

	docs := make([][]string, len(answers))
	docFreq := map[string]int{}
	for i, a := range answers {
		terms := contentTerms(a.Text)
		docs[i] = terms
		for _, t := range uniqueTerms(terms) {
			docFreq[t]++
		}
	}

	seeds := topSeeds(docFreq)
	if len(answers) < minAnswers || len(seeds) == 0 {
		return []domain.TopicResult{outlierGroup(answers, docFreq, questionID)}, nil
	}

	groups := make(map[string][]int, len(seeds))
	var outliers []int
	for i, terms := range docs {
		seed, ok := dominantSeed(terms, seeds)
		if !ok {
			outliers = append(outliers, i)
			continue
		}
		groups[seed] = append(groups[seed], i)
	}

	results := make([]domain.TopicResult, 0, len(groups)+1)
	for _, seed := range seeds {
		members := groups[seed]
		if len(members) == 0 {
			continue
		}
		top := groupTerms(docs, members)
		results = append(results, domain.TopicResult{
			ID:         uuid.New(),
			QuestionID: questionID,
			Algorithm:  LexicalAlgorithm,
			Label:      top[0],
			Terms:      strings.Join(top, ", "),
			Answers:    membersOf(answers, members),
		})
	}
	if len(outliers) > 0 {
		results = append(results, domain.TopicResult{
			ID:         uuid.New(),
			QuestionID: questionID,
			Algorithm:  LexicalAlgorithm,
			Label:      OutlierLabel,
			Terms:      OutlierLabel,
			Answers:    membersOf(answers, outliers),
		})
	}
	return results, nil
}

func outlierGroup(answers []domain.AnalysisAnswer, docFreq map[string]int, questionID uuid.UUID) domain.TopicResult {
	all := make([]int, len(answers))
	for i := range answers {
		all[i] = i
	}
	terms := rankedTerms(docFreq, topTermCount)
	t := OutlierLabel
	if len(terms) > 0 {
		t = strings.Join(terms, ", ")
	}
	return domain.TopicResult{
		ID:         uuid.New(),
		QuestionID: questionID,
		Algorithm:  LexicalAlgorithm,
		Label:      OutlierLabel,
		Terms:      t,
		Answers:    membersOf(answers, all),
	}
}

// topSeeds picks the terms that appear in more than one answer, most shared
// first, capped at maxTopics. A term shared by nothing cannot anchor a topic.
func topSeeds(docFreq map[string]int) []string {
	shared := map[string]int{}
	for t, n := range docFreq {
		if n >= 2 {
			shared[t] = n
		}
	}
	seeds := rankedTerms(shared, maxTopics)
	return seeds
}

// dominantSeed returns the highest-ranked seed present in the document.
func dominantSeed(terms []string, seeds []string) (string, bool) {
	present := map[string]struct{}{}
	for _, t := range terms {
		present[t] = struct{}{}
	}
	for _, seed := range seeds {
		if _, ok := present[seed]; ok {
			return seed, true
		}
	}
	return "", false
}

// groupTerms ranks terms by frequency within the member documents.
func groupTerms(docs [][]string, members []int) []string {
	freq := map[string]int{}
	for _, i := range members {
		for _, t := range docs[i] {
			freq[t]++
		}
	}
	ranked := rankedTerms(freq, topTermCount)
	if len(ranked) == 0 {
		return []string{OutlierLabel}
	}
	return ranked
}

// rankedTerms sorts by descending frequency, breaking ties alphabetically so
// output is stable across runs.
func rankedTerms(freq map[string]int, limit int) []string {
	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > limit {
		terms = terms[:limit]
	}
	return terms
}

func membersOf(answers []domain.AnalysisAnswer, idxs []int) []domain.Answer {
	out := make([]domain.Answer, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, domain.Answer{ID: answers[i].ID, Text: answers[i].Text})
	}
	return out
}

func contentTerms(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		t := strings.ToLower(f)
		if len(t) < 3 {
			continue
		}
		if _, stop := stopwords[t]; stop {
			continue
		}
		terms = append(terms, t)
	}
	return terms
}

func uniqueTerms(terms []string) []string {
	seen := map[string]struct{}{}
	out := terms[:0:0]
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "has": {}, "have": {}, "this": {},
	"that": {}, "with": {}, "they": {}, "from": {}, "their": {},
	"would": {}, "there": {}, "been": {}, "were": {}, "when": {},
	"what": {}, "which": {}, "them": {}, "than": {}, "then": {},
	"some": {}, "could": {}, "should": {}, "into": {}, "more": {},
	"very": {}, "also": {}, "because": {}, "about": {}, "think": {},
	"like": {}, "just": {}, "its": {}, "his": {}, "she": {}, "him": {},
	"will": {}, "your": {}, "how": {}, "too": {}, "much": {}, "dont": {},
	"does": {}, "did": {}, "get": {}, "got": {}, "really": {},
	"maybe": {}, "something": {}, "things": {}, "thing": {},
}
