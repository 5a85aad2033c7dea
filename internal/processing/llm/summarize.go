package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

const questionSummaryPrompt = `You are in a lecture setting where students answer questions through a student response system.
You will be provided with three pieces of information:
    1. Context about the current quiz and ongoing lecture session.
    2. The current question.
    3. A list of student answers to that question.

Your task is to summarise the main insights from the answers to the question distributed across 2 or 3 bullet points of max 10 words each:
- Summary shall help the teacher make decisions
- Summary shall help the teacher gauge the students' understanding or feedback related to the question
- Summary shall help the teacher discover both patterns and curiosities in the answers
- Be as concrete as possible, avoid giving general advice!

No more than 25 words!
Respond in valid JSON with the shape {{"text": "...", "emoji": "..."}} where emoji is a single emoji capturing the overall mood.

Quiz context: {quiz_context}

Question: {question}

Answers: {answers}`

const topicSummaryPrompt = `You are in a lecture setting where students answer questions through a student response system.
Topic modelling has been performed on the students' answers to a question.
You will be provided with four pieces of information:
    1. Context about the current quiz and ongoing lecture session.
    2. The current question.
    3. The label of the topic.
    4. A list of student answers grouped under the topic.

Your task is to summarise the main insights from the answers in the topic distributed across 1 to 3 bullet points of max 8 words each:
- Summary shall provide the teacher with a quick, but concrete, overview of the topic
- Summary shall help the teacher discover both patterns and curiosities in the answers
- Be as concrete as possible, avoid giving general advice!

No more than 20 words!
Respond in valid JSON with the shape {{"text": "...", "emoji": "..."}} where emoji is a single emoji capturing the mood of the topic.

Quiz context: {quiz_context}

Question: {question}

Topic: {topic}

Answers: {answers}`

// Summarizer produces short bullet-point summaries, either for a whole
// question or for one topic within it.
type Summarizer struct {
	client        *Client
	questionChain runnableChain
	topicChain    runnableChain
}

var _ domain.Summarizer = (*Summarizer)(nil)

func NewSummarizer(ctx context.Context, client *Client) (*Summarizer, error) {
	questionChain, err := client.compile(ctx, "", questionSummaryPrompt)
	if err != nil {
		return nil, err
	}
	topicChain, err := client.compile(ctx, "", topicSummaryPrompt)
	if err != nil {
		return nil, err
	}
	return &Summarizer{client: client, questionChain: questionChain, topicChain: topicChain}, nil
}

func (s *Summarizer) Process(ctx context.Context, request domain.AnalysisRequest) (domain.SummaryResult, error) {
	input := map[string]any{
		"quiz_context": quizContext(request),
		"question":     request.Question,
		"answers":      quoteList(request.Answers),
	}

	chain := s.questionChain
	if request.TopicLabel != "" {
		chain = s.topicChain
		input["topic"] = request.TopicLabel
	}

	content, err := s.client.invoke(ctx, chain, input)
	if err != nil {
		return domain.SummaryResult{}, err
	}

	var parsed struct {
		Text  string `json:"text"`
		Emoji string `json:"emoji"`
	}
	if err := decodeJSON(content, &parsed); err != nil {
		return domain.SummaryResult{}, err
	}
	if strings.TrimSpace(parsed.Text) == "" {
		return domain.SummaryResult{}, fmt.Errorf("llm: summary text missing from model output")
	}

	return domain.SummaryResult{
		ID:        uuid.New(),
		Algorithm: s.client.ModelName(),
		Text:      strings.TrimSpace(parsed.Text),
		Emoji:     parsed.Emoji,
	}, nil
}

func quizContext(request domain.AnalysisRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quiz name: %q", request.QuizName)
	if request.QuizDescription != "" {
		fmt.Fprintf(&b, "\nQuiz description: %q", request.QuizDescription)
	}
	if request.AudienceCount != nil {
		fmt.Fprintf(&b, "\nNumber of participants: %d", *request.AudienceCount)
	}
	fmt.Fprintf(&b, "\nNumber of answers: %d", len(request.Answers))
	return b.String()
}
