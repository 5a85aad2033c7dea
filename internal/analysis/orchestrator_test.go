package analysis

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

type mockUnitOfWork struct {
	sentiments []domain.SentimentResult
	topics     []domain.TopicResult
	summaries  []domain.SummaryResult

	answersByQuestion  map[uuid.UUID][]domain.Answer
	summarizedTopicIDs map[uuid.UUID][]uuid.UUID

	addErr    error
	commitErr error

	commits   int
	rollbacks int
}

func newMockUnitOfWork() *mockUnitOfWork {
	return &mockUnitOfWork{
		answersByQuestion:  make(map[uuid.UUID][]domain.Answer),
		summarizedTopicIDs: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *mockUnitOfWork) AddSentiments(_ context.Context, sentiments []domain.SentimentResult) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.sentiments = append(m.sentiments, sentiments...)
	return nil
}

func (m *mockUnitOfWork) AddTopics(_ context.Context, topics []domain.TopicResult) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.topics = append(m.topics, topics...)
	return nil
}

func (m *mockUnitOfWork) AddSummaries(_ context.Context, summaries []domain.SummaryResult) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.summaries = append(m.summaries, summaries...)
	return nil
}

func (m *mockUnitOfWork) AnswersByQuestion(_ context.Context, questionID uuid.UUID) ([]domain.Answer, error) {
	return m.answersByQuestion[questionID], nil
}

func (m *mockUnitOfWork) TopicsByQuestion(_ context.Context, questionID uuid.UUID) ([]domain.TopicResult, error) {
	return nil, nil
}

func (m *mockUnitOfWork) SummarizedTopicIDs(_ context.Context, questionID uuid.UUID) ([]uuid.UUID, error) {
	return m.summarizedTopicIDs[questionID], nil
}

func (m *mockUnitOfWork) Commit(_ context.Context) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.commits++
	return nil
}

func (m *mockUnitOfWork) Rollback(_ context.Context) error {
	m.rollbacks++
	return nil
}

type stubSentimentEngine struct {
	fn func(answers []domain.AnalysisAnswer) ([]domain.SentimentResult, error)
}

func (s *stubSentimentEngine) Process(_ context.Context, answers []domain.AnalysisAnswer) ([]domain.SentimentResult, error) {
	return s.fn(answers)
}

type stubTopicEngine struct {
	fn func(answers []domain.AnalysisAnswer, questionID uuid.UUID) ([]domain.TopicResult, error)
}

func (s *stubTopicEngine) Process(_ context.Context, answers []domain.AnalysisAnswer, questionID uuid.UUID) ([]domain.TopicResult, error) {
	return s.fn(answers, questionID)
}

type stubSummarizer struct {
	fn func(request domain.AnalysisRequest) (domain.SummaryResult, error)
}

func (s *stubSummarizer) Process(_ context.Context, request domain.AnalysisRequest) (domain.SummaryResult, error) {
	return s.fn(request)
}

type stubFormatter struct {
	fn func(rawContent string) ([]domain.QuestionImport, error)
}

func (s *stubFormatter) Format(_ context.Context, rawContent string) ([]domain.QuestionImport, error) {
	return s.fn(rawContent)
}

func newTestOrchestrator(sentiment domain.SentimentEngine, topics domain.TopicEngine, summarizer domain.Summarizer, formatter domain.ImportFormatter) *Orchestrator {
	return NewOrchestrator(sentiment, topics, summarizer, formatter, clockwork.NewFakeClock())
}

func analysisAnswers(texts ...string) []domain.AnalysisAnswer {
	answers := make([]domain.AnalysisAnswer, len(texts))
	for i, text := range texts {
		answers[i] = domain.AnalysisAnswer{ID: uuid.New(), Text: text}
	}
	return answers
}

func TestSentiment_PersistsOneResultPerAnswer(t *testing.T) {
	answers := analysisAnswers("good", "bad")
	engine := &stubSentimentEngine{fn: func(in []domain.AnalysisAnswer) ([]domain.SentimentResult, error) {
		results := make([]domain.SentimentResult, len(in))
		for i, answer := range in {
			results[i] = domain.SentimentResult{AnswerID: answer.ID, Verdict: domain.VerdictNeutral}
		}
		return results, nil
	}}
	orch := newTestOrchestrator(engine, nil, nil, nil)
	uow := newMockUnitOfWork()

	results, err := orch.Sentiment(context.Background(), uow, answers)
	require.NoError(t, err)

	require.Len(t, results, 2)
	require.Len(t, uow.sentiments, 2)
	assert.Equal(t, 1, uow.commits)
	for i, result := range uow.sentiments {
		assert.Equal(t, answers[i].ID, result.AnswerID)
		assert.NotEqual(t, uuid.Nil, result.ID)
	}
}

func TestSentiment_EngineFailurePersistsNothing(t *testing.T) {
	engine := &stubSentimentEngine{fn: func([]domain.AnalysisAnswer) ([]domain.SentimentResult, error) {
		return nil, fmt.Errorf("engine offline")
	}}
	orch := newTestOrchestrator(engine, nil, nil, nil)
	uow := newMockUnitOfWork()

	_, err := orch.Sentiment(context.Background(), uow, analysisAnswers("hello"))
	require.Error(t, err)
	assert.Empty(t, uow.sentiments)
	assert.Zero(t, uow.commits)
}

func TestSentiment_CommitFailurePropagates(t *testing.T) {
	engine := &stubSentimentEngine{fn: func(in []domain.AnalysisAnswer) ([]domain.SentimentResult, error) {
		return []domain.SentimentResult{{AnswerID: in[0].ID}}, nil
	}}
	orch := newTestOrchestrator(engine, nil, nil, nil)
	uow := newMockUnitOfWork()
	uow.commitErr = fmt.Errorf("connection reset")

	_, err := orch.Sentiment(context.Background(), uow, analysisAnswers("hello"))
	assert.ErrorContains(t, err, "committing sentiments")
}

func TestTopicModelling_ResolvesMembershipAgainstStoredAnswers(t *testing.T) {
	question := domain.Question{ID: uuid.New(), Text: "What was unclear?"}
	stored := []domain.Answer{
		{ID: uuid.New(), QuestionID: question.ID, Text: "the recursion part"},
		{ID: uuid.New(), QuestionID: question.ID, Text: "nothing really"},
	}
	foreign := uuid.New()

	engine := &stubTopicEngine{fn: func([]domain.AnalysisAnswer, uuid.UUID) ([]domain.TopicResult, error) {
		return []domain.TopicResult{{
			Label: "Recursion",
			Answers: []domain.Answer{
				{ID: stored[0].ID},
				{ID: foreign},
			},
		}}, nil
	}}
	orch := newTestOrchestrator(nil, engine, nil, nil)
	uow := newMockUnitOfWork()
	uow.answersByQuestion[question.ID] = stored

	topics, err := orch.TopicModelling(context.Background(), uow, question, analysisAnswers("the recursion part", "nothing really"))
	require.NoError(t, err)

	require.Len(t, topics, 1)
	topic := topics[0]
	assert.NotEqual(t, uuid.Nil, topic.ID)
	assert.Equal(t, question.ID, topic.QuestionID)
	require.Len(t, topic.Answers, 1)
	assert.Equal(t, stored[0].ID, topic.Answers[0].ID)
	assert.Equal(t, stored[0].Text, topic.Answers[0].Text)

	assert.Len(t, uow.topics, 1)
	assert.Equal(t, 1, uow.commits)
}

func TestTopicModelling_EngineFailurePersistsNothing(t *testing.T) {
	engine := &stubTopicEngine{fn: func([]domain.AnalysisAnswer, uuid.UUID) ([]domain.TopicResult, error) {
		return nil, fmt.Errorf("no topics today")
	}}
	orch := newTestOrchestrator(nil, engine, nil, nil)
	uow := newMockUnitOfWork()

	_, err := orch.TopicModelling(context.Background(), uow, domain.Question{ID: uuid.New()}, nil)
	require.Error(t, err)
	assert.Empty(t, uow.topics)
	assert.Zero(t, uow.commits)
}

func TestSummarisation_PersistsQuestionScopedSummary(t *testing.T) {
	question := domain.Question{ID: uuid.New(), Text: "How was the pacing?"}
	summarizer := &stubSummarizer{fn: func(request domain.AnalysisRequest) (domain.SummaryResult, error) {
		assert.Equal(t, question.Text, request.Question)
		assert.Empty(t, request.TopicLabel)
		return domain.SummaryResult{Text: "- mostly fine", Emoji: "👍"}, nil
	}}
	orch := newTestOrchestrator(nil, nil, summarizer, nil)
	uow := newMockUnitOfWork()

	summary, err := orch.Summarisation(context.Background(), uow, domain.Quiz{Name: "Lecture 4"}, question, analysisAnswers("fine", "a bit fast"), nil)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, summary.ID)
	assert.Equal(t, question.ID, summary.QuestionID)
	assert.Nil(t, summary.TopicID)
	require.Len(t, uow.summaries, 1)
	assert.Equal(t, 1, uow.commits)
}

func TestTopicSummarisation_FailedTopicsAreSkippedNotFatal(t *testing.T) {
	question := domain.Question{ID: uuid.New(), Text: "Feedback?"}
	answers := analysisAnswers("a", "b", "c", "d", "e")

	topics := make([]domain.TopicResult, 5)
	for i := range topics {
		topics[i] = domain.TopicResult{
			ID:         uuid.New(),
			QuestionID: question.ID,
			Label:      fmt.Sprintf("Topic %d", i),
			Answers:    []domain.Answer{{ID: answers[i].ID}},
		}
	}

	summarizer := &stubSummarizer{fn: func(request domain.AnalysisRequest) (domain.SummaryResult, error) {
		if request.TopicLabel == "Topic 1" || request.TopicLabel == "Topic 3" {
			return domain.SummaryResult{}, fmt.Errorf("model timeout")
		}
		return domain.SummaryResult{Text: "- summary for " + request.TopicLabel}, nil
	}}
	orch := newTestOrchestrator(nil, nil, summarizer, nil)
	uow := newMockUnitOfWork()

	summaries, err := orch.TopicSummarisation(context.Background(), uow, domain.Quiz{Name: "Q"}, []domain.Question{question}, topics, answers, nil)
	require.NoError(t, err)

	require.Len(t, summaries, 3)
	require.Len(t, uow.summaries, 3)
	assert.Equal(t, 1, uow.commits)
	for _, summary := range summaries {
		require.NotNil(t, summary.TopicID)
		assert.Equal(t, question.ID, summary.QuestionID)
		assert.NotContains(t, summary.Text, "Topic 1")
		assert.NotContains(t, summary.Text, "Topic 3")
	}
}

func TestTopicSummarisation_SkipsAlreadySummarizedTopics(t *testing.T) {
	question := domain.Question{ID: uuid.New(), Text: "Feedback?"}
	done := domain.TopicResult{ID: uuid.New(), QuestionID: question.ID, Label: "Done"}
	fresh := domain.TopicResult{ID: uuid.New(), QuestionID: question.ID, Label: "Fresh"}

	summarizer := &stubSummarizer{fn: func(request domain.AnalysisRequest) (domain.SummaryResult, error) {
		require.Equal(t, "Fresh", request.TopicLabel)
		return domain.SummaryResult{Text: "- new ground"}, nil
	}}
	orch := newTestOrchestrator(nil, nil, summarizer, nil)
	uow := newMockUnitOfWork()
	uow.summarizedTopicIDs[question.ID] = []uuid.UUID{done.ID}

	summaries, err := orch.TopicSummarisation(context.Background(), uow, domain.Quiz{}, []domain.Question{question}, []domain.TopicResult{done, fresh}, nil, nil)
	require.NoError(t, err)

	require.Len(t, summaries, 1)
	assert.Equal(t, fresh.ID, *summaries[0].TopicID)
}

func TestTopicSummarisation_NothingEligible(t *testing.T) {
	question := domain.Question{ID: uuid.New()}
	done := domain.TopicResult{ID: uuid.New(), QuestionID: question.ID}

	orch := newTestOrchestrator(nil, nil, nil, nil)
	uow := newMockUnitOfWork()
	uow.summarizedTopicIDs[question.ID] = []uuid.UUID{done.ID}

	summaries, err := orch.TopicSummarisation(context.Background(), uow, domain.Quiz{}, []domain.Question{question}, []domain.TopicResult{done}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.Zero(t, uow.commits)
}

func TestFormatImport_ValidJSONBypassesFormatter(t *testing.T) {
	orch := newTestOrchestrator(nil, nil, nil, &stubFormatter{fn: func(string) ([]domain.QuestionImport, error) {
		t.Fatal("formatter must not be called for valid JSON")
		return nil, nil
	}})

	imports, err := orch.FormatImport(context.Background(), `[{"question":"How?","answers":["fine","great"]}]`)
	require.NoError(t, err)

	require.Len(t, imports, 1)
	assert.Equal(t, "How?", imports[0].Question)
	assert.Equal(t, []string{"fine", "great"}, imports[0].Answers)
}

func TestFormatImport_FallsBackToFormatter(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "free text", content: "Q1: How was it?\n- fine\n- great"},
		{name: "empty json array", content: `[]`},
		{name: "missing question text", content: `[{"question":"","answers":["a"]}]`},
		{name: "question without answers", content: `[{"question":"How?","answers":[]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			orch := newTestOrchestrator(nil, nil, nil, &stubFormatter{fn: func(rawContent string) ([]domain.QuestionImport, error) {
				called = true
				assert.Equal(t, tt.content, rawContent)
				return []domain.QuestionImport{{Question: "How?", Answers: []string{"fine"}}}, nil
			}})

			imports, err := orch.FormatImport(context.Background(), tt.content)
			require.NoError(t, err)
			assert.True(t, called)
			require.Len(t, imports, 1)
		})
	}
}
