package app

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/fredrikfh/Quizzma/internal/domain"
	apperrors "github.com/fredrikfh/Quizzma/internal/errors"
)

func (s *Service) CreateQuiz(ctx context.Context, userID, name, description string) (*domain.Quiz, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.ValidationError("quiz name cannot be blank")
	}
	quiz := &domain.Quiz{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: description,
	}
	if err := s.quizzes.CreateQuiz(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *Service) GetQuiz(ctx context.Context, userID string, quizID uuid.UUID) (*domain.Quiz, error) {
	return s.authorizeQuiz(ctx, userID, quizID)
}

// ListQuizzes returns the caller's quizzes; admins see every quiz.
func (s *Service) ListQuizzes(ctx context.Context, userID string) ([]domain.Quiz, error) {
	return s.quizzes.ListQuizzes(ctx, userID, s.isAdmin(userID))
}

func (s *Service) DeleteQuiz(ctx context.Context, userID string, quizID uuid.UUID) error {
	if _, err := s.authorizeQuiz(ctx, userID, quizID); err != nil {
		return err
	}
	return s.quizzes.DeleteQuiz(ctx, quizID)
}

func (s *Service) AddQuestion(ctx context.Context, userID string, quizID uuid.UUID, text string) (*domain.Question, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ValidationError("question text cannot be blank")
	}
	if _, err := s.authorizeQuiz(ctx, userID, quizID); err != nil {
		return nil, err
	}
	question := &domain.Question{
		ID:         uuid.New(),
		QuizID:     quizID,
		Text:       text,
		Predefined: true,
	}
	if err := s.quizzes.AddQuestion(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *Service) UpdateQuestion(ctx context.Context, userID string, questionID uuid.UUID, text string) error {
	question, err := s.quizzes.GetQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if _, err := s.authorizeQuiz(ctx, userID, question.QuizID); err != nil {
		return err
	}
	return s.quizzes.UpdateQuestionText(ctx, questionID, text)
}

func (s *Service) DeleteQuestion(ctx context.Context, userID string, questionID uuid.UUID) error {
	question, err := s.quizzes.GetQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if _, err := s.authorizeQuiz(ctx, userID, question.QuizID); err != nil {
		return err
	}
	return s.quizzes.DeleteQuestion(ctx, questionID)
}

// QuizAnalyses bundles every persisted analysis for a quiz.
type QuizAnalyses struct {
	Sentiments []domain.SentimentResult `json:"sentiments"`
	Topics     []domain.TopicResult     `json:"topics"`
	Summaries  []domain.SummaryResult   `json:"summaries"`
}

func (s *Service) GetQuizAnalyses(ctx context.Context, userID string, quizID uuid.UUID) (*QuizAnalyses, error) {
	if _, err := s.authorizeQuiz(ctx, userID, quizID); err != nil {
		return nil, err
	}

	sentiments, err := s.quizzes.SentimentsByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	topics, err := s.quizzes.TopicsByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	summaries, err := s.quizzes.SummariesByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	return &QuizAnalyses{
		Sentiments: sentiments,
		Topics:     topics,
		Summaries:  summaries,
	}, nil
}
