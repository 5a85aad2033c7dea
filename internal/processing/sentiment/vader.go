// Package sentiment classifies answers with a VADER-style valence lexicon.
// Scoring follows Hutto & Gilbert: per-word valence with negation flips and
// degree boosters, a normalized compound score, and the standard +-0.05
// thresholds for the coarse verdict.
package sentiment

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

const Algorithm = "VADER"

const (
	negationScalar = -0.74
	normalizeAlpha = 15.0
	capsBoost      = 0.733
)

// LexiconEngine scores answers against the embedded valence lexicon. It is
// deterministic, allocation-light and needs no network, which makes it the
// default engine for live batches.
type LexiconEngine struct{}

func NewLexiconEngine() *LexiconEngine {
	return &LexiconEngine{}
}

func (e *LexiconEngine) Process(_ context.Context, answers []domain.AnalysisAnswer) ([]domain.SentimentResult, error) {
	results := make([]domain.SentimentResult, 0, len(answers))
	for _, answer := range answers {
		scores := score(answer.Text)
		results = append(results, domain.SentimentResult{
			ID:        uuid.New(),
			AnswerID:  answer.ID,
			Algorithm: Algorithm,
			Verdict:   verdictOf(scores.compound),
			Compound:  scores.compound,
			Positive:  scores.positive,
			Neutral:   scores.neutral,
			Negative:  scores.negative,
		})
	}
	return results, nil
}

func verdictOf(compound float64) domain.Verdict {
	switch {
	case compound >= 0.05:
		return domain.VerdictPositive
	case compound <= -0.05:
		return domain.VerdictNegative
	default:
		return domain.VerdictNeutral
	}
}

type polarityScores struct {
	compound float64
	positive float64
	neutral  float64
	negative float64
}

func score(text string) polarityScores {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return polarityScores{neutral: 1}
	}

	valences := make([]float64, 0, len(tokens))
	for i, tok := range tokens {
		v, ok := valence[tok.lower]
		if !ok {
			valences = append(valences, 0)
			continue
		}
		if tok.allCaps {
			if v > 0 {
				v += capsBoost
			} else {
				v -= capsBoost
			}
		}
		v = applyContext(tokens, i, v)
		valences = append(valences, v)
	}

	return aggregate(valences)
}

// applyContext scans up to three preceding tokens for negators and degree
// boosters, with booster weight decaying by distance.
func applyContext(tokens []token, idx int, v float64) float64 {
	for dist := 1; dist <= 3; dist++ {
		j := idx - dist
		if j < 0 {
			break
		}
		prev := tokens[j].lower
		if _, ok := negators[prev]; ok {
			v *= negationScalar
			continue
		}
		if b, ok := boosters[prev]; ok {
			switch dist {
			case 2:
				b *= 0.95
			case 3:
				b *= 0.9
			}
			if v > 0 {
				v += b
			} else if v < 0 {
				v -= b
			}
		}
	}
	return v
}

func aggregate(valences []float64) polarityScores {
	var sum, posSum, negSum float64
	var neuCount int
	for _, v := range valences {
		sum += v
		switch {
		case v > 0:
			posSum += v + 1
		case v < 0:
			negSum += v - 1
		default:
			neuCount++
		}
	}

	compound := sum / math.Sqrt(sum*sum+normalizeAlpha)
	compound = math.Max(-1, math.Min(1, compound))

	total := posSum + math.Abs(negSum) + float64(neuCount)
	if total == 0 {
		return polarityScores{compound: 0, neutral: 1}
	}
	return polarityScores{
		compound: round4(compound),
		positive: round3(posSum / total),
		negative: round3(math.Abs(negSum) / total),
		neutral:  round3(float64(neuCount) / total),
	}
}

type token struct {
	lower   string
	allCaps bool
}

func tokenize(text string) []token {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
	tokens := make([]token, 0, len(fields))
	for _, f := range fields {
		clean := strings.ReplaceAll(f, "'", "")
		if clean == "" {
			continue
		}
		tokens = append(tokens, token{
			lower:   strings.ToLower(clean),
			allCaps: len(clean) > 1 && clean == strings.ToUpper(clean) && clean != strings.ToLower(clean),
		})
	}
	return tokens
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
