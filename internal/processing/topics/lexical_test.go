package topics

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

func analysisAnswers(texts ...string) []domain.AnalysisAnswer {
	out := make([]domain.AnalysisAnswer, 0, len(texts))
	for _, t := range texts {
		out = append(out, domain.AnalysisAnswer{ID: uuid.New(), Text: t})
	}
	return out
}

func TestLexicalEngineEmptyInput(t *testing.T) {
	results, err := NewLexicalEngine().Process(context.Background(), nil, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLexicalEngineSmallInputSingleGroup(t *testing.T) {
	questionID := uuid.New()
	answers := analysisAnswers(
		"the pace felt fast",
		"assignments were long",
	)

	results, err := NewLexicalEngine().Process(context.Background(), answers, questionID)
	require.NoError(t, err)
	require.Len(t, results, 1)

	group := results[0]
	assert.Equal(t, OutlierLabel, group.Label)
	assert.Equal(t, questionID, group.QuestionID)
	assert.Len(t, group.Answers, len(answers))
}

func TestLexicalEngineGroupsBySharedTerms(t *testing.T) {
	questionID := uuid.New()
	answers := analysisAnswers(
		"the deadline pressure is stressful",
		"deadline always on monday morning",
		"extend the deadline please",
		"lectures felt rushed overall",
		"lectures need recordings online",
		"xylophone",
	)

	results, err := NewLexicalEngine().Process(context.Background(), answers, questionID)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	byLabel := map[string]domain.TopicResult{}
	total := 0
	for _, r := range results {
		byLabel[r.Label] = r
		total += len(r.Answers)
		assert.Equal(t, LexicalAlgorithm, r.Algorithm)
		assert.Equal(t, questionID, r.QuestionID)
	}

	// every answer ends up in exactly one group
	assert.Equal(t, len(answers), total)

	deadline, ok := byLabel["deadline"]
	require.True(t, ok, "expected a deadline topic, got %v", byLabel)
	assert.Len(t, deadline.Answers, 3)
	assert.Contains(t, deadline.Terms, "deadline")

	lectures, ok := byLabel["lectures"]
	require.True(t, ok)
	assert.Len(t, lectures.Answers, 2)

	outliers, ok := byLabel[OutlierLabel]
	require.True(t, ok)
	assert.Len(t, outliers.Answers, 1)
}

func TestLexicalEngineDeterministic(t *testing.T) {
	answers := analysisAnswers(
		"grading rubric unclear",
		"grading took weeks",
		"grading felt unfair",
		"labs were fun",
		"labs too short",
	)

	first, err := NewLexicalEngine().Process(context.Background(), answers, uuid.New())
	require.NoError(t, err)
	second, err := NewLexicalEngine().Process(context.Background(), answers, uuid.New())
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Label, second[i].Label)
		assert.Equal(t, first[i].Terms, second[i].Terms)
		assert.Equal(t, len(first[i].Answers), len(second[i].Answers))
	}
}
