package analysis

import (
	"context"
	"errors"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

// ErrNoLanguageModel is returned by the disabled stand-ins used when no
// language model is configured.
var ErrNoLanguageModel = errors.New("no language model configured")

// DisabledSummarizer satisfies domain.Summarizer for deployments without a
// language model. Every request fails, which the pipeline treats as a
// skipped summary.
type DisabledSummarizer struct{}

func (DisabledSummarizer) Process(context.Context, domain.AnalysisRequest) (domain.SummaryResult, error) {
	return domain.SummaryResult{}, ErrNoLanguageModel
}

// DisabledFormatter satisfies domain.ImportFormatter for deployments
// without a language model. Imports then only accept pre-structured JSON.
type DisabledFormatter struct{}

func (DisabledFormatter) Format(context.Context, string) ([]domain.QuestionImport, error) {
	return nil, ErrNoLanguageModel
}
