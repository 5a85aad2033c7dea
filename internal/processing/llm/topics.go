package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

const topicModelPrompt = `You are analysing student answers collected by a student response system during a lecture.
Group the answers below into at most 6 topics based on shared themes.

Rules:
- Every answer index must appear in exactly one topic.
- Answers that fit no theme go into a single topic labelled "Miscellaneous".
- Label each topic with its most characteristic term.
- List up to 10 characteristic terms per topic.
- Respond in valid JSON with the shape {{"topics": [{{"label": "...", "terms": ["..."], "answers": [0, 1]}}]}} where answers holds the zero-based indices of the answers in the topic.

Answers (one per line, prefixed with its index):
{answers}`

// TopicModeller asks the language model to cluster answers into themes. It
// reports membership by answer index so stale ids cannot be hallucinated
// into existence.
type TopicModeller struct {
	client   *Client
	runnable runnableChain
}

var _ domain.TopicEngine = (*TopicModeller)(nil)

func NewTopicModeller(ctx context.Context, client *Client) (*TopicModeller, error) {
	runnable, err := client.compile(ctx, "", topicModelPrompt)
	if err != nil {
		return nil, err
	}
	return &TopicModeller{client: client, runnable: runnable}, nil
}

func (m *TopicModeller) Process(ctx context.Context, answers []domain.AnalysisAnswer, questionID uuid.UUID) ([]domain.TopicResult, error) {
	if len(answers) == 0 {
		return nil, nil
	}

	var b strings.Builder
	for i, a := range answers {
		fmt.Fprintf(&b, "%d: %s\n", i, a.Text)
	}

	content, err := m.client.invoke(ctx, m.runnable, map[string]any{
		"answers": b.String(),
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Topics []struct {
			Label   string   `json:"label"`
			Terms   []string `json:"terms"`
			Answers []int    `json:"answers"`
		} `json:"topics"`
	}
	if err := decodeJSON(content, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Topics) == 0 {
		return nil, fmt.Errorf("llm: topic modelling returned no topics")
	}

	results := make([]domain.TopicResult, 0, len(parsed.Topics))
	for _, topic := range parsed.Topics {
		members := make([]domain.Answer, 0, len(topic.Answers))
		for _, idx := range topic.Answers {
			if idx < 0 || idx >= len(answers) {
				continue
			}
			members = append(members, domain.Answer{ID: answers[idx].ID, Text: answers[idx].Text})
		}
		if len(members) == 0 {
			continue
		}
		results = append(results, domain.TopicResult{
			ID:         uuid.New(),
			QuestionID: questionID,
			Algorithm:  m.client.ModelName(),
			Label:      topic.Label,
			Terms:      strings.Join(topic.Terms, ", "),
			Answers:    members,
		})
	}
	return results, nil
}
