package llm

import (
	"context"
	"fmt"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

const importSystemPrompt = `You will be provided with sets of questions and answers formatted as either .txt, .csv or .json.

Your task is to:
    1. Extract the open-ended questions and their related open-text answers from the provided data.
    2. Ignore multiple-choice, likert-scale, range and similar questions.
    3. Structure the questions and answers into the requested JSON format.
    4. Respond in valid JSON with the shape {{"content": [{{"question": "...", "answers": ["..."]}}]}}.`

// ImportFormatter restructures raw uploaded files into questions with
// answers. Callers short-circuit it when the upload already parses as the
// target JSON shape.
type ImportFormatter struct {
	client   *Client
	runnable runnableChain
}

var _ domain.ImportFormatter = (*ImportFormatter)(nil)

func NewImportFormatter(ctx context.Context, client *Client) (*ImportFormatter, error) {
	runnable, err := client.compile(ctx, importSystemPrompt, "{content}")
	if err != nil {
		return nil, err
	}
	return &ImportFormatter{client: client, runnable: runnable}, nil
}

func (f *ImportFormatter) Format(ctx context.Context, rawContent string) ([]domain.QuestionImport, error) {
	content, err := f.client.invoke(ctx, f.runnable, map[string]any{
		"content": rawContent,
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Content []domain.QuestionImport `json:"content"`
	}
	if err := decodeJSON(content, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Content) == 0 {
		return nil, fmt.Errorf("llm: no open-ended questions found in import")
	}
	return parsed.Content, nil
}
