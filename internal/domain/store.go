package domain

import (
	"context"

	"github.com/google/uuid"
)

// UnitOfWork is a transactional session over the analysis entities. The
// orchestrator commits once per logical pipeline step so partial progress
// survives a later step's failure.
type UnitOfWork interface {
	AddSentiments(ctx context.Context, sentiments []SentimentResult) error
	AddTopics(ctx context.Context, topics []TopicResult) error
	AddSummaries(ctx context.Context, summaries []SummaryResult) error

	AnswersByQuestion(ctx context.Context, questionID uuid.UUID) ([]Answer, error)
	TopicsByQuestion(ctx context.Context, questionID uuid.UUID) ([]TopicResult, error)
	SummarizedTopicIDs(ctx context.Context, questionID uuid.UUID) ([]uuid.UUID, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store opens transactional units of work against the relational store.
type Store interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// QuizRepository is the non-transactional persistence surface used by the
// HTTP layer for quiz, question and answer management plus analyses reads.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz *Quiz) error
	GetQuiz(ctx context.Context, quizID uuid.UUID) (*Quiz, error)
	ListQuizzes(ctx context.Context, userID string, includeAll bool) ([]Quiz, error)
	DeleteQuiz(ctx context.Context, quizID uuid.UUID) error

	AddQuestion(ctx context.Context, question *Question) error
	GetQuestion(ctx context.Context, questionID uuid.UUID) (*Question, error)
	UpdateQuestionText(ctx context.Context, questionID uuid.UUID, text string) error
	DeleteQuestion(ctx context.Context, questionID uuid.UUID) error

	AddAnswer(ctx context.Context, answer *Answer) error
	AddQuestionWithAnswers(ctx context.Context, question *Question, answers []Answer) error

	SentimentsByQuiz(ctx context.Context, quizID uuid.UUID) ([]SentimentResult, error)
	TopicsByQuiz(ctx context.Context, quizID uuid.UUID) ([]TopicResult, error)
	SummariesByQuiz(ctx context.Context, quizID uuid.UUID) ([]SummaryResult, error)
}
