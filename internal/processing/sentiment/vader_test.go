package sentiment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

func TestLexiconEngineVerdicts(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		verdict domain.Verdict
	}{
		{"positive", "The lecture was great and really helpful", domain.VerdictPositive},
		{"negative", "I was confused and the pace was terrible", domain.VerdictNegative},
		{"neutral", "We covered chapter three today", domain.VerdictNeutral},
		{"negated positive", "The assignments were not helpful", domain.VerdictNegative},
		{"boosted negative", "extremely boring and very confusing", domain.VerdictNegative},
		{"empty", "", domain.VerdictNeutral},
	}

	engine := NewLexiconEngine()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := engine.Process(context.Background(), []domain.AnalysisAnswer{
				{ID: uuid.New(), Text: tc.text},
			})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tc.verdict, results[0].Verdict)
			assert.Equal(t, "VADER", results[0].Algorithm)
		})
	}
}

func TestLexiconEngineOneResultPerAnswer(t *testing.T) {
	answers := []domain.AnalysisAnswer{
		{ID: uuid.New(), Text: "good"},
		{ID: uuid.New(), Text: "bad"},
		{ID: uuid.New(), Text: "table"},
	}

	results, err := NewLexiconEngine().Process(context.Background(), answers)
	require.NoError(t, err)
	require.Len(t, results, len(answers))
	for i, r := range results {
		assert.Equal(t, answers[i].ID, r.AnswerID)
		assert.NotEqual(t, uuid.Nil, r.ID)
	}
}

func TestLexiconEngineScoresSumToOne(t *testing.T) {
	results, err := NewLexiconEngine().Process(context.Background(), []domain.AnalysisAnswer{
		{ID: uuid.New(), Text: "great lecture but the assignments were hard and confusing"},
	})
	require.NoError(t, err)

	r := results[0]
	assert.InDelta(t, 1.0, r.Positive+r.Neutral+r.Negative, 0.01)
	assert.GreaterOrEqual(t, r.Compound, -1.0)
	assert.LessOrEqual(t, r.Compound, 1.0)
}
