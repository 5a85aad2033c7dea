package domain

import (
	"context"

	"github.com/google/uuid"
)

// Preprocessor cleans a batch of raw documents (spelling correction and
// translation). On success it returns exactly one document per input, in
// input order. Any error or length mismatch is treated as total failure by
// callers, which fall back to the raw text.
type Preprocessor interface {
	CorrectAndTranslate(ctx context.Context, documents []string) ([]string, error)
}

// SentimentEngine classifies a set of answers, one result per answer.
type SentimentEngine interface {
	Process(ctx context.Context, answers []AnalysisAnswer) ([]SentimentResult, error)
}

// TopicEngine groups a question's answers into topics. Implementations must
// handle small inputs by returning a single outlier group rather than
// failing. Returned answer ids may be stale; callers resolve them against
// the authoritative answer set.
type TopicEngine interface {
	Process(ctx context.Context, answers []AnalysisAnswer, questionID uuid.UUID) ([]TopicResult, error)
}

// Summarizer produces a summary for a question or a single topic.
type Summarizer interface {
	Process(ctx context.Context, request AnalysisRequest) (SummaryResult, error)
}

// ImportFormatter turns raw file contents into structured questions with
// answers, typically via an LLM when the content is not already JSON.
type ImportFormatter interface {
	Format(ctx context.Context, rawContent string) ([]QuestionImport, error)
}
