// Package app is the application layer — the only component that references
// multiple domain components. It orchestrates all use cases: quiz and
// question management, question imports, live session commands and the
// analysis pipelines behind them.
package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fredrikfh/Quizzma/internal/analysis"
	"github.com/fredrikfh/Quizzma/internal/domain"
	"github.com/fredrikfh/Quizzma/internal/session"
)

type Service struct {
	quizzes      domain.QuizRepository
	store        domain.Store
	orchestrator *analysis.Orchestrator
	preprocessor domain.Preprocessor
	sessions     *session.Manager
	adminIDs     map[string]struct{}
}

// NewService creates the application layer service. preprocessor may be nil
// when no language model is configured; imports then analyse raw text.
func NewService(quizzes domain.QuizRepository, store domain.Store, orchestrator *analysis.Orchestrator, preprocessor domain.Preprocessor, sessions *session.Manager, adminIDs []string) *Service {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Service{
		quizzes:      quizzes,
		store:        store,
		orchestrator: orchestrator,
		preprocessor: preprocessor,
		sessions:     sessions,
		adminIDs:     admins,
	}
}

// Sessions exposes the live session registry to the transport layer.
func (s *Service) Sessions() *session.Manager {
	return s.sessions
}

func (s *Service) isAdmin(userID string) bool {
	_, ok := s.adminIDs[userID]
	return ok
}

// authorizeQuiz loads a quiz and verifies the caller owns it or is an admin.
func (s *Service) authorizeQuiz(ctx context.Context, userID string, quizID uuid.UUID) (*domain.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.UserID != userID && !s.isAdmin(userID) {
		return nil, domain.ErrUnauthorized
	}
	return quiz, nil
}

// SentimentTask analyses one flushed sub-batch and persists the results in
// its own transaction. Wired into the session manager as the background
// sentiment hook.
func (s *Service) SentimentTask(ctx context.Context, prepared []domain.AnalysisAnswer) error {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	if _, err := s.orchestrator.Sentiment(ctx, uow, prepared); err != nil {
		if rbErr := uow.Rollback(ctx); rbErr != nil {
			slog.Debug("rollback after failed sentiment task", "error", rbErr)
		}
		return err
	}
	return nil
}
