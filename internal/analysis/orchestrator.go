// Package analysis drives the individual analysis steps against a set of
// prepared answers, persisting results through a transactional unit of work.
// Sentiment and topic modelling are all-or-nothing per call; per-topic
// summarization isolates failures so one bad topic never blocks the rest.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/fredrikfh/Quizzma/internal/domain"
	"github.com/fredrikfh/Quizzma/internal/metrics"
)

// Orchestrator holds the configured analysis engines. The engine choice is
// made once at startup; there is no per-request switching.
type Orchestrator struct {
	sentiment  domain.SentimentEngine
	topics     domain.TopicEngine
	summarizer domain.Summarizer
	formatter  domain.ImportFormatter
	clock      clockwork.Clock
}

func NewOrchestrator(sentiment domain.SentimentEngine, topics domain.TopicEngine, summarizer domain.Summarizer, formatter domain.ImportFormatter, clock clockwork.Clock) *Orchestrator {
	return &Orchestrator{
		sentiment:  sentiment,
		topics:     topics,
		summarizer: summarizer,
		formatter:  formatter,
		clock:      clock,
	}
}

// Sentiment runs the sentiment engine over a set of answers and persists one
// result per answer. No partial-failure handling: an engine or persistence
// error propagates to the caller.
func (o *Orchestrator) Sentiment(ctx context.Context, uow domain.UnitOfWork, answers []domain.AnalysisAnswer) ([]domain.SentimentResult, error) {
	defer o.observeStep("sentiment")()

	results, err := o.sentiment.Process(ctx, answers)
	if err != nil {
		return nil, fmt.Errorf("sentiment engine: %w", err)
	}

	for i := range results {
		if results[i].ID == uuid.Nil {
			results[i].ID = uuid.New()
		}
	}

	if err := uow.AddSentiments(ctx, results); err != nil {
		return nil, fmt.Errorf("persisting sentiments: %w", err)
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing sentiments: %w", err)
	}

	return results, nil
}

// TopicModelling runs the topic engine over a question's answers and
// persists one topic per group with its resolved answer membership. Answer
// ids returned by the engine are resolved against the authoritative answer
// set for the question; ids not found there are dropped.
func (o *Orchestrator) TopicModelling(ctx context.Context, uow domain.UnitOfWork, question domain.Question, answers []domain.AnalysisAnswer) ([]domain.TopicResult, error) {
	defer o.observeStep("topic_modelling")()

	rawTopics, err := o.topics.Process(ctx, answers, question.ID)
	if err != nil {
		return nil, fmt.Errorf("topic engine: %w", err)
	}

	authoritative, err := uow.AnswersByQuestion(ctx, question.ID)
	if err != nil {
		return nil, fmt.Errorf("loading answers for question: %w", err)
	}
	answerByID := make(map[uuid.UUID]domain.Answer, len(authoritative))
	for _, answer := range authoritative {
		answerByID[answer.ID] = answer
	}

	topics := make([]domain.TopicResult, 0, len(rawTopics))
	for _, raw := range rawTopics {
		members := make([]domain.Answer, 0, len(raw.Answers))
		for _, member := range raw.Answers {
			if resolved, ok := answerByID[member.ID]; ok {
				members = append(members, resolved)
			}
		}

		topic := raw
		if topic.ID == uuid.Nil {
			topic.ID = uuid.New()
		}
		topic.QuestionID = question.ID
		topic.Answers = members
		topics = append(topics, topic)
	}

	if err := uow.AddTopics(ctx, topics); err != nil {
		return nil, fmt.Errorf("persisting topics: %w", err)
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing topics: %w", err)
	}

	return topics, nil
}

// Summarisation invokes the summarizer over all answers to a question and
// persists exactly one question-scoped summary.
func (o *Orchestrator) Summarisation(ctx context.Context, uow domain.UnitOfWork, quiz domain.Quiz, question domain.Question, answers []domain.AnalysisAnswer, audienceCount *int) (domain.SummaryResult, error) {
	defer o.observeStep("summarisation")()

	texts := make([]string, len(answers))
	for i, answer := range answers {
		texts[i] = answer.Text
	}

	result, err := o.summarizer.Process(ctx, domain.AnalysisRequest{
		Question:        question.Text,
		Answers:         texts,
		QuizName:        quiz.Name,
		QuizDescription: quiz.Description,
		AudienceCount:   audienceCount,
	})
	if err != nil {
		return domain.SummaryResult{}, fmt.Errorf("summarizer: %w", err)
	}

	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	result.QuestionID = question.ID
	result.TopicID = nil

	if err := uow.AddSummaries(ctx, []domain.SummaryResult{result}); err != nil {
		return domain.SummaryResult{}, fmt.Errorf("persisting summary: %w", err)
	}
	if err := uow.Commit(ctx); err != nil {
		return domain.SummaryResult{}, fmt.Errorf("committing summary: %w", err)
	}

	return result, nil
}

type topicSummaryOutcome struct {
	summary domain.SummaryResult
	err     error
}

// TopicSummarisation summarizes every topic that lacks a summary,
// concurrently across topics. Each invocation's outcome is captured
// independently: a failed topic is logged and skipped, and never prevents
// the other summaries from being persisted. Must only be called after topic
// modelling has committed its topics.
func (o *Orchestrator) TopicSummarisation(ctx context.Context, uow domain.UnitOfWork, quiz domain.Quiz, questions []domain.Question, topics []domain.TopicResult, answers []domain.AnalysisAnswer, audienceCount *int) ([]domain.SummaryResult, error) {
	defer o.observeStep("topic_summarisation")()

	eligible, err := o.eligibleTopics(ctx, uow, topics)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	preparedByID := make(map[uuid.UUID]domain.AnalysisAnswer, len(answers))
	for _, answer := range answers {
		preparedByID[answer.ID] = answer
	}

	questionTextByID := make(map[uuid.UUID]string, len(questions))
	for _, question := range questions {
		questionTextByID[question.ID] = question.Text
	}

	outcomes := make([]topicSummaryOutcome, len(eligible))
	var wg sync.WaitGroup
	for i, topic := range eligible {
		wg.Add(1)
		go func(i int, topic domain.TopicResult) {
			defer wg.Done()

			texts := make([]string, 0, len(topic.Answers))
			for _, member := range topic.Answers {
				if prepared, ok := preparedByID[member.ID]; ok {
					texts = append(texts, prepared.Text)
				}
			}

			summary, err := o.summarizer.Process(ctx, domain.AnalysisRequest{
				Question:        questionTextByID[topic.QuestionID],
				TopicLabel:      topic.Label,
				Answers:         texts,
				QuizName:        quiz.Name,
				QuizDescription: quiz.Description,
				AudienceCount:   audienceCount,
			})
			outcomes[i] = topicSummaryOutcome{summary: summary, err: err}
		}(i, topic)
	}
	wg.Wait()

	summaries := make([]domain.SummaryResult, 0, len(eligible))
	for i, topic := range eligible {
		if outcomes[i].err != nil {
			metrics.TopicSummariesSkippedTotal.Inc()
			slog.Debug("Topic summarisation failed for a topic", "topic_id", topic.ID.String(), "error", outcomes[i].err)
			continue
		}

		summary := outcomes[i].summary
		if summary.ID == uuid.Nil {
			summary.ID = uuid.New()
		}
		summary.QuestionID = topic.QuestionID
		topicID := topic.ID
		summary.TopicID = &topicID
		summaries = append(summaries, summary)
	}

	if err := uow.AddSummaries(ctx, summaries); err != nil {
		return nil, fmt.Errorf("persisting topic summaries: %w", err)
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing topic summaries: %w", err)
	}

	return summaries, nil
}

// eligibleTopics filters out topics that already have a summary.
func (o *Orchestrator) eligibleTopics(ctx context.Context, uow domain.UnitOfWork, topics []domain.TopicResult) ([]domain.TopicResult, error) {
	summarized := make(map[uuid.UUID]bool)
	seen := make(map[uuid.UUID]bool)
	for _, topic := range topics {
		if seen[topic.QuestionID] {
			continue
		}
		seen[topic.QuestionID] = true

		ids, err := uow.SummarizedTopicIDs(ctx, topic.QuestionID)
		if err != nil {
			return nil, fmt.Errorf("loading summarized topics: %w", err)
		}
		for _, id := range ids {
			summarized[id] = true
		}
	}

	eligible := make([]domain.TopicResult, 0, len(topics))
	for _, topic := range topics {
		if !summarized[topic.ID] {
			eligible = append(eligible, topic)
		}
	}
	return eligible, nil
}

// FormatImport turns raw file contents into structured questions. Content
// that already parses as the expected JSON shape is used directly; anything
// else goes through the LLM formatter.
func (o *Orchestrator) FormatImport(ctx context.Context, rawContent string) ([]domain.QuestionImport, error) {
	var imports []domain.QuestionImport
	if err := json.Unmarshal([]byte(rawContent), &imports); err == nil && validImports(imports) {
		return imports, nil
	}

	slog.Debug("Running LLM formatting of file content")
	return o.formatter.Format(ctx, rawContent)
}

func validImports(imports []domain.QuestionImport) bool {
	if len(imports) == 0 {
		return false
	}
	for _, imp := range imports {
		if imp.Question == "" || len(imp.Answers) == 0 {
			return false
		}
	}
	return true
}

func (o *Orchestrator) observeStep(step string) func() {
	start := o.clock.Now()
	return func() {
		metrics.AnalysisStepDuration.WithLabelValues(step).Observe(o.clock.Since(start).Seconds())
	}
}
