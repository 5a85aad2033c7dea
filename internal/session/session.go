package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/fredrikfh/Quizzma/internal/domain"
	"github.com/fredrikfh/Quizzma/internal/logging"
	"github.com/fredrikfh/Quizzma/internal/metrics"
	"github.com/fredrikfh/Quizzma/internal/ws"
)

// SentimentFunc runs sentiment analysis over one flushed sub-batch and
// persists the results. It is invoked as detached background work; errors
// are logged and swallowed by the session.
type SentimentFunc func(ctx context.Context, prepared []domain.AnalysisAnswer) error

// Session owns one live quiz session: its state machine, its connection
// set, its pending answer batch and the background worker draining it.
//
// Locking: stateMu guards stage/question/answers, connMu guards the
// connection set, batchMu guards the batch slices and the sentiment task
// set. flushMu serializes flushes against each other and against question
// changes, and is held across the preprocessor call; batchMu is only ever
// held for short copies so answer registration never waits on preprocessing.
// Lock order where nested: flushMu, then stateMu, then batchMu. Answer
// registration and the question reset both hold stateMu across their batch
// writes so an answer is always appended to the batch of the question it
// was recorded against.
type Session struct {
	ID      string
	OwnerID string
	QuizID  uuid.UUID

	clock         clockwork.Clock
	preprocessor  domain.Preprocessor
	sentiment     SentimentFunc
	batchInterval time.Duration
	log           *slog.Logger

	stateMu         sync.RWMutex
	stage           domain.SessionStage
	currentQuestion *domain.Question
	currentAnswers  []domain.Answer

	connMu      sync.Mutex
	connections map[ws.Conn]struct{}

	flushMu         sync.Mutex
	batchMu         sync.Mutex
	answerBatch     []domain.Answer
	preparedAnswers []domain.AnalysisAnswer
	sentimentTasks  []chan struct{}

	stopCh        chan struct{}
	stopOnce      sync.Once
	workerStarted atomic.Bool
	workerDone    chan struct{}
}

func newSession(id, ownerID string, quizID uuid.UUID, clock clockwork.Clock, preprocessor domain.Preprocessor, sentiment SentimentFunc, batchInterval time.Duration) *Session {
	return &Session{
		ID:            id,
		OwnerID:       ownerID,
		QuizID:        quizID,
		clock:         clock,
		preprocessor:  preprocessor,
		sentiment:     sentiment,
		batchInterval: batchInterval,
		log:           logging.WithSession(id),
		stage:         domain.StageJoinSession,
		connections:   make(map[ws.Conn]struct{}),
		stopCh:        make(chan struct{}),
		workerDone:    make(chan struct{}),
	}
}

// RegisterConnection adds a client connection to the session.
func (s *Session) RegisterConnection(conn ws.Conn) {
	s.connMu.Lock()
	s.connections[conn] = struct{}{}
	s.connMu.Unlock()
}

// RemoveConnection removes a connection and reports whether it was still
// registered. Removing a connection that is not present is tolerated
// silently; disconnects race with explicit leaves and session teardown.
func (s *Session) RemoveConnection(conn ws.Conn) bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if _, present := s.connections[conn]; !present {
		return false
	}
	delete(s.connections, conn)
	return true
}

// Connections returns a copy of the current connection set.
func (s *Session) Connections() []ws.Conn {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	conns := make([]ws.Conn, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	return conns
}

// AudienceCount returns the number of live connections.
func (s *Session) AudienceCount() int {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return len(s.connections)
}

// Stage returns the current session stage.
func (s *Session) Stage() domain.SessionStage {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.stage
}

// CurrentQuestion returns the question currently being asked, if any.
func (s *Session) CurrentQuestion() *domain.Question {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.currentQuestion
}

// RegisterAnswer stores a raw answer for the current question and includes
// it in the next preprocessing batch. Answers submitted with no live
// question are rejected.
func (s *Session) RegisterAnswer(text string) (domain.Answer, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.currentQuestion == nil {
		return domain.Answer{}, domain.ErrNoCurrentQuestion
	}
	answer := domain.Answer{
		ID:         uuid.New(),
		QuestionID: s.currentQuestion.ID,
		Text:       text,
	}
	s.currentAnswers = append(s.currentAnswers, answer)

	// Both appends happen under stateMu so a concurrent StartQuestion can
	// never reset the batch between them and inherit this answer.
	s.batchMu.Lock()
	s.answerBatch = append(s.answerBatch, answer)
	s.batchMu.Unlock()

	return answer, nil
}

// StartQuestion moves the session to the ask_question stage for a new
// question. It waits for any flush in flight before resetting, so answer
// sets are never mixed across questions.
func (s *Session) StartQuestion(question *domain.Question) {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	s.stage = domain.StageAskQuestion
	s.currentQuestion = question
	s.currentAnswers = nil

	s.batchMu.Lock()
	s.answerBatch = nil
	s.preparedAnswers = nil
	s.sentimentTasks = nil
	s.batchMu.Unlock()
}

// OpenAnswers moves the session to the await_answers stage.
func (s *Session) OpenAnswers() error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.currentQuestion == nil {
		return domain.ErrNoCurrentQuestion
	}
	s.stage = domain.StageAwaitAnswers
	return nil
}

// Reveal drains the pending batch synchronously, waits for in-flight
// sentiment work, and enters the show_analyses stage. The returned prepared
// answers reflect the complete answer set for the current question.
func (s *Session) Reveal(ctx context.Context) ([]domain.AnalysisAnswer, error) {
	s.stateMu.RLock()
	question := s.currentQuestion
	s.stateMu.RUnlock()
	if question == nil {
		return nil, domain.ErrNoCurrentQuestion
	}

	prepared := s.GetPreparedAnswers(ctx)
	s.AwaitSentimentTasks()

	s.stateMu.Lock()
	s.stage = domain.StageShowAnalyses
	s.stateMu.Unlock()

	return prepared, nil
}

// GetPreparedAnswers flushes any remaining batch synchronously, then
// returns all prepared answers for the current question.
func (s *Session) GetPreparedAnswers(ctx context.Context) []domain.AnalysisAnswer {
	s.batchMu.Lock()
	pending := len(s.answerBatch)
	s.batchMu.Unlock()

	if pending > 0 {
		s.flush(ctx)
	}

	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	prepared := make([]domain.AnalysisAnswer, len(s.preparedAnswers))
	copy(prepared, s.preparedAnswers)
	return prepared
}

// AwaitSentimentTasks waits for all outstanding background sentiment tasks
// and clears the task set.
func (s *Session) AwaitSentimentTasks() {
	s.batchMu.Lock()
	tasks := s.sentimentTasks
	s.sentimentTasks = nil
	s.batchMu.Unlock()

	for _, done := range tasks {
		<-done
	}
}

// Snapshot returns the public view of the session.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	answers := make([]domain.Answer, len(s.currentAnswers))
	copy(answers, s.currentAnswers)

	return domain.SessionSnapshot{
		ID:              s.ID,
		OwnerID:         s.OwnerID,
		QuizID:          s.QuizID,
		Stage:           s.stage,
		AudienceCount:   s.AudienceCount(),
		CurrentQuestion: s.currentQuestion,
		CurrentAnswers:  answers,
	}
}

// Shutdown cancels the worker and closes every connection with the given
// reason. Safe to call more than once.
func (s *Session) Shutdown(reason string) {
	s.stopWorker()

	s.connMu.Lock()
	conns := make([]ws.Conn, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.connections = make(map[ws.Conn]struct{})
	s.connMu.Unlock()

	metrics.ConnectedClients.Sub(float64(len(conns)))
	for _, conn := range conns {
		conn.Close(reason)
	}
}
