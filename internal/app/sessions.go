package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/fredrikfh/Quizzma/internal/domain"
	"github.com/fredrikfh/Quizzma/internal/session"
	"github.com/fredrikfh/Quizzma/internal/ws"
)

// CreateSession starts a live session for a quiz the caller owns. If the
// quiz already has a running session, that session is returned instead of
// allocating a second id.
func (s *Service) CreateSession(ctx context.Context, userID string, quizID uuid.UUID) (*session.Session, error) {
	if _, err := s.authorizeQuiz(ctx, userID, quizID); err != nil {
		return nil, err
	}
	if existing := s.sessions.GetSessionByQuiz(quizID); existing != nil {
		return existing, nil
	}
	return s.sessions.CreateSession(userID, quizID)
}

// authorizeSession resolves a session and verifies the caller is its host.
func (s *Service) authorizeSession(userID, sessionID string) (*session.Session, error) {
	sess := s.sessions.GetSession(sessionID)
	if sess == nil {
		return nil, domain.ErrSessionNotFound
	}
	if sess.OwnerID != userID && !s.isAdmin(userID) {
		return nil, domain.ErrUnauthorized
	}
	return sess, nil
}

// AskQuestion presents a question to the audience, resetting the batch
// pipeline for the new question.
func (s *Service) AskQuestion(ctx context.Context, userID, sessionID string, questionID uuid.UUID) error {
	sess, err := s.authorizeSession(userID, sessionID)
	if err != nil {
		return err
	}
	question, err := s.quizzes.GetQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if question.QuizID != sess.QuizID {
		return domain.ErrQuestionNotFound
	}

	sess.StartQuestion(question)
	s.sessions.Broadcast(sess, ws.ServerMessageSync, nil)
	return nil
}

// OpenAnswers moves the session into the answering stage.
func (s *Service) OpenAnswers(ctx context.Context, userID, sessionID string) error {
	sess, err := s.authorizeSession(userID, sessionID)
	if err != nil {
		return err
	}
	if err := sess.OpenAnswers(); err != nil {
		return err
	}
	s.sessions.Broadcast(sess, ws.ServerMessageSync, nil)
	return nil
}

// Reveal closes answering, drains the batch pipeline and runs the full
// analysis suite for the current question: topic modelling and a
// question-scoped summary concurrently, then per-topic summaries.
func (s *Service) Reveal(ctx context.Context, userID, sessionID string) error {
	sess, err := s.authorizeSession(userID, sessionID)
	if err != nil {
		return err
	}
	question := sess.CurrentQuestion()
	if question == nil {
		return domain.ErrNoCurrentQuestion
	}

	prepared, err := sess.Reveal(ctx)
	if err != nil {
		return err
	}

	quiz, err := s.quizzes.GetQuiz(ctx, sess.QuizID)
	if err != nil {
		return err
	}

	audience := sess.AudienceCount()
	if err := s.analyzeQuestion(ctx, *quiz, *question, prepared, &audience); err != nil {
		return err
	}

	s.sessions.Broadcast(sess, ws.ServerMessageSync, nil)
	return nil
}

// KillSession tears down a live session. Killing an already-dead session is
// not an error.
func (s *Service) KillSession(userID, sessionID string) error {
	sess, err := s.authorizeSession(userID, sessionID)
	if err != nil {
		if err == domain.ErrSessionNotFound {
			return nil
		}
		return err
	}
	s.sessions.KillSession(sess)
	return nil
}

// SubmitAnswer registers an audience answer against the current question,
// persists it and pushes the updated snapshot to every client.
func (s *Service) SubmitAnswer(ctx context.Context, sess *session.Session, text string) error {
	answer, err := sess.RegisterAnswer(text)
	if err != nil {
		return err
	}
	if err := s.quizzes.AddAnswer(ctx, &answer); err != nil {
		return err
	}
	s.sessions.Broadcast(sess, ws.ServerMessageSync, nil)
	return nil
}

// ImportQuestions formats an uploaded file into questions with answers,
// persists them under the quiz and runs the full analysis suite over each
// imported question.
func (s *Service) ImportQuestions(ctx context.Context, userID string, quizID uuid.UUID, rawContent string) ([]domain.Question, error) {
	quiz, err := s.authorizeQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}

	imports, err := s.orchestrator.FormatImport(ctx, rawContent)
	if err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(imports))
	for _, imp := range imports {
		question := domain.Question{
			ID:     uuid.New(),
			QuizID: quizID,
			Text:   imp.Question,
		}
		answers := make([]domain.Answer, 0, len(imp.Answers))
		for _, text := range imp.Answers {
			answers = append(answers, domain.Answer{ID: uuid.New(), Text: text})
		}
		if err := s.quizzes.AddQuestionWithAnswers(ctx, &question, answers); err != nil {
			return nil, err
		}

		prepared := s.prepareAnswers(ctx, answers)
		if err := s.analyzeQuestion(ctx, *quiz, question, prepared, nil); err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, nil
}

// prepareAnswers runs answers through the preprocessor, falling back to the
// raw text when correction fails or changes the answer count.
func (s *Service) prepareAnswers(ctx context.Context, answers []domain.Answer) []domain.AnalysisAnswer {
	texts := make([]string, len(answers))
	for i, a := range answers {
		texts[i] = a.Text
	}

	corrected := texts
	if s.preprocessor != nil {
		out, err := s.preprocessor.CorrectAndTranslate(ctx, texts)
		if err != nil || len(out) != len(texts) {
			slog.Debug("preprocessing failed, using raw answers", "error", err)
		} else {
			corrected = out
		}
	}

	prepared := make([]domain.AnalysisAnswer, len(answers))
	for i, a := range answers {
		prepared[i] = domain.AnalysisAnswer{ID: a.ID, Text: corrected[i]}
	}
	return prepared
}

// analyzeQuestion runs sentiment, topic modelling and the question summary
// concurrently, then summarizes the discovered topics. Each step commits its
// own transaction so one failing step does not discard the others.
func (s *Service) analyzeQuestion(ctx context.Context, quiz domain.Quiz, question domain.Question, prepared []domain.AnalysisAnswer, audienceCount *int) error {
	if len(prepared) == 0 {
		return nil
	}

	var (
		wg     sync.WaitGroup
		topics []domain.TopicResult

		sentimentErr error
		topicsErr    error
		summaryErr   error
	)

	if audienceCount == nil {
		// live sessions already analysed sentiment batch by batch
		wg.Add(1)
		go func() {
			defer wg.Done()
			sentimentErr = s.SentimentTask(ctx, prepared)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		topics, topicsErr = s.runTopicModelling(ctx, question, prepared)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		summaryErr = s.runSummarisation(ctx, quiz, question, prepared, audienceCount)
	}()

	wg.Wait()

	for _, err := range []error{sentimentErr, topicsErr} {
		if err != nil {
			return err
		}
	}
	// A failed question summary degrades the result but does not discard
	// the committed sentiments and topics.
	if summaryErr != nil {
		slog.Warn("question summarisation failed", "question_id", question.ID.String(), "error", summaryErr)
	}

	if len(topics) == 0 {
		return nil
	}
	return s.runTopicSummarisation(ctx, quiz, question, topics, prepared, audienceCount)
}

func (s *Service) runTopicModelling(ctx context.Context, question domain.Question, prepared []domain.AnalysisAnswer) ([]domain.TopicResult, error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	topics, err := s.orchestrator.TopicModelling(ctx, uow, question, prepared)
	if err != nil {
		s.rollback(ctx, uow, "topic modelling")
		return nil, err
	}
	return topics, nil
}

func (s *Service) runSummarisation(ctx context.Context, quiz domain.Quiz, question domain.Question, prepared []domain.AnalysisAnswer, audienceCount *int) error {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	if _, err := s.orchestrator.Summarisation(ctx, uow, quiz, question, prepared, audienceCount); err != nil {
		s.rollback(ctx, uow, "summarisation")
		return err
	}
	return nil
}

func (s *Service) runTopicSummarisation(ctx context.Context, quiz domain.Quiz, question domain.Question, topics []domain.TopicResult, prepared []domain.AnalysisAnswer, audienceCount *int) error {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	questions := []domain.Question{question}
	if _, err := s.orchestrator.TopicSummarisation(ctx, uow, quiz, questions, topics, prepared, audienceCount); err != nil {
		s.rollback(ctx, uow, "topic summarisation")
		return err
	}
	return nil
}

func (s *Service) rollback(ctx context.Context, uow domain.UnitOfWork, step string) {
	if err := uow.Rollback(ctx); err != nil {
		slog.Debug("rollback failed", "step", step, "error", err)
	}
}
