package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredrikfh/Quizzma/internal/analysis"
	"github.com/fredrikfh/Quizzma/internal/app"
	"github.com/fredrikfh/Quizzma/internal/config"
	"github.com/fredrikfh/Quizzma/internal/domain"
	"github.com/fredrikfh/Quizzma/internal/session"
	"github.com/fredrikfh/Quizzma/internal/ws"
)

type memoryQuizRepo struct {
	mu        sync.Mutex
	quizzes   map[uuid.UUID]*domain.Quiz
	questions map[uuid.UUID]*domain.Question
	answers   map[uuid.UUID]*domain.Answer
}

func newMemoryQuizRepo() *memoryQuizRepo {
	return &memoryQuizRepo{
		quizzes:   make(map[uuid.UUID]*domain.Quiz),
		questions: make(map[uuid.UUID]*domain.Question),
		answers:   make(map[uuid.UUID]*domain.Answer),
	}
}

func (m *memoryQuizRepo) CreateQuiz(_ context.Context, quiz *domain.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[quiz.ID] = quiz
	return nil
}

func (m *memoryQuizRepo) GetQuiz(_ context.Context, quizID uuid.UUID) (*domain.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	quiz, ok := m.quizzes[quizID]
	if !ok {
		return nil, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (m *memoryQuizRepo) ListQuizzes(_ context.Context, userID string, includeAll bool) ([]domain.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Quiz, 0)
	for _, quiz := range m.quizzes {
		if includeAll || quiz.UserID == userID {
			out = append(out, *quiz)
		}
	}
	return out, nil
}

func (m *memoryQuizRepo) DeleteQuiz(_ context.Context, quizID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.quizzes, quizID)
	return nil
}

func (m *memoryQuizRepo) AddQuestion(_ context.Context, question *domain.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[question.ID] = question
	return nil
}

func (m *memoryQuizRepo) GetQuestion(_ context.Context, questionID uuid.UUID) (*domain.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	question, ok := m.questions[questionID]
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	return question, nil
}

func (m *memoryQuizRepo) UpdateQuestionText(_ context.Context, questionID uuid.UUID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	question, ok := m.questions[questionID]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	question.Text = text
	return nil
}

func (m *memoryQuizRepo) DeleteQuestion(_ context.Context, questionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.questions, questionID)
	return nil
}

func (m *memoryQuizRepo) AddAnswer(_ context.Context, answer *domain.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers[answer.ID] = answer
	return nil
}

func (m *memoryQuizRepo) AddQuestionWithAnswers(_ context.Context, question *domain.Question, answers []domain.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[question.ID] = question
	for i := range answers {
		answers[i].QuestionID = question.ID
		answer := answers[i]
		m.answers[answer.ID] = &answer
	}
	return nil
}

func (m *memoryQuizRepo) SentimentsByQuiz(_ context.Context, _ uuid.UUID) ([]domain.SentimentResult, error) {
	return []domain.SentimentResult{}, nil
}

func (m *memoryQuizRepo) TopicsByQuiz(_ context.Context, _ uuid.UUID) ([]domain.TopicResult, error) {
	return []domain.TopicResult{}, nil
}

func (m *memoryQuizRepo) SummariesByQuiz(_ context.Context, _ uuid.UUID) ([]domain.SummaryResult, error) {
	return []domain.SummaryResult{}, nil
}

type noopUnitOfWork struct{}

func (noopUnitOfWork) AddSentiments(context.Context, []domain.SentimentResult) error { return nil }
func (noopUnitOfWork) AddTopics(context.Context, []domain.TopicResult) error         { return nil }
func (noopUnitOfWork) AddSummaries(context.Context, []domain.SummaryResult) error    { return nil }
func (noopUnitOfWork) AnswersByQuestion(context.Context, uuid.UUID) ([]domain.Answer, error) {
	return nil, nil
}
func (noopUnitOfWork) TopicsByQuestion(context.Context, uuid.UUID) ([]domain.TopicResult, error) {
	return nil, nil
}
func (noopUnitOfWork) SummarizedTopicIDs(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}
func (noopUnitOfWork) Commit(context.Context) error   { return nil }
func (noopUnitOfWork) Rollback(context.Context) error { return nil }

type noopStore struct{}

func (noopStore) Begin(context.Context) (domain.UnitOfWork, error) {
	return noopUnitOfWork{}, nil
}

type testServer struct {
	srv  *Server
	svc  *app.Service
	repo *memoryQuizRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clock := clockwork.NewRealClock()
	repo := newMemoryQuizRepo()
	orch := analysis.NewOrchestrator(nil, nil, nil, nil, clock)

	manager := session.NewManager(session.ManagerConfig{
		Clock:         clock,
		BatchInterval: time.Minute,
	})
	t.Cleanup(func() { manager.KillAll("") })

	svc := app.NewService(repo, noopStore{}, orch, nil, manager, nil)
	verifier := NewStaticVerifier([]string{"host-token:host-1", "other-token:host-2"})

	cfg := &config.Config{Port: "0", MaxClientsPerSession: 2}
	srv := NewServer(cfg, svc, verifier, nil, clock)
	return &testServer{srv: srv, svc: svc, repo: repo}
}

func (ts *testServer) request(method, path, token string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestStaticVerifier(t *testing.T) {
	verifier := NewStaticVerifier([]string{"abc:user-1", "malformed", ":nouser", "notoken:", "def:user-2"})

	userID, err := verifier.Verify(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = verifier.Verify(context.Background(), "malformed")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = verifier.Verify(context.Background(), "unknown")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthMiddleware(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "missing header", authHeader: "", wantStatus: http.StatusForbidden},
		{name: "wrong scheme", authHeader: "Basic host-token", wantStatus: http.StatusForbidden},
		{name: "unknown token", authHeader: "Bearer stolen", wantStatus: http.StatusForbidden},
		{name: "valid token", authHeader: "Bearer host-token", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/quizzes", nil)
			if tt.authHeader != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.authHeader)
			}
			rec := httptest.NewRecorder()
			ts.srv.echo.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateAndFetchQuiz(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodPost, "/api/quizzes", "host-token", `{"name":"Lecture 4","description":"weekly"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Quiz
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Lecture 4", created.Name)
	assert.Equal(t, "host-1", created.UserID)

	rec = ts.request(http.MethodGet, "/api/quizzes/"+created.ID.String(), "host-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another host cannot read it.
	rec = ts.request(http.MethodGet, "/api/quizzes/"+created.ID.String(), "other-token", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateQuiz_BlankNameRejected(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodPost, "/api/quizzes", "host-token", `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetQuiz_InvalidAndUnknownIDs(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodGet, "/api/quizzes/not-a-uuid", "host-token", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.request(http.MethodGet, "/api/quizzes/"+uuid.NewString(), "host-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodPost, "/api/quizzes", "host-token", `{"name":"Lecture 4"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var quiz domain.Quiz
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quiz))

	rec = ts.request(http.MethodPost, "/api/quizzes/"+quiz.ID.String()+"/sessions", "host-token", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var snapshot domain.SessionSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Len(t, snapshot.ID, 4)
	assert.Equal(t, domain.StageJoinSession, snapshot.Stage)

	rec = ts.request(http.MethodGet, "/api/sessions/"+snapshot.ID, "host-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Only the host may command the session.
	rec = ts.request(http.MethodDelete, "/api/sessions/"+snapshot.ID, "other-token", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.request(http.MethodDelete, "/api/sessions/"+snapshot.ID, "host-token", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.request(http.MethodGet, "/api/sessions/"+snapshot.ID, "host-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParseUUIDParam(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("quizId")
	c.SetParamValues("not-a-uuid")
	_, err := parseUUIDParam(c, "quizId")
	assert.Error(t, err)

	want := uuid.New()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("quizId")
	c.SetParamValues(want.String())
	got, err := parseUUIDParam(c, "quizId")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func dialSession(t *testing.T, baseURL, sessionID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws/sessions/" + sessionID
	return websocket.DefaultDialer.Dial(wsURL, nil)
}

func readServerMessage(t *testing.T, conn *websocket.Conn) ws.ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg ws.ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestSessionSocket(t *testing.T) {
	ts := newTestServer(t)

	httpServer := httptest.NewServer(ts.srv.echo)
	t.Cleanup(httpServer.Close)

	quiz, err := ts.svc.CreateQuiz(context.Background(), "host-1", "Lecture 4", "")
	require.NoError(t, err)
	sess, err := ts.svc.CreateSession(context.Background(), "host-1", quiz.ID)
	require.NoError(t, err)

	conn, _, err := dialSession(t, httpServer.URL, sess.ID)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Joining triggers an immediate sync with the audience included.
	msg := readServerMessage(t, conn)
	assert.Equal(t, ws.ServerMessageSync, msg.Type)
	assert.Equal(t, sess.ID, msg.Session.ID)
	assert.Equal(t, 1, msg.Session.AudienceCount)

	// Unknown message types are rejected to this client only.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"vote"}`)))
	msg = readServerMessage(t, conn)
	assert.Equal(t, ws.ServerMessageError, msg.Type)
	require.NotNil(t, msg.Error)

	// Answers before a question is asked are rejected.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"answer","payload":{"text":"early"}}`)))
	msg = readServerMessage(t, conn)
	assert.Equal(t, ws.ServerMessageError, msg.Type)
}

func TestSessionSocket_UnknownSession(t *testing.T) {
	ts := newTestServer(t)

	httpServer := httptest.NewServer(ts.srv.echo)
	t.Cleanup(httpServer.Close)

	_, resp, err := dialSession(t, httpServer.URL, "0000")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionSocket_FullSessionRejected(t *testing.T) {
	ts := newTestServer(t)

	httpServer := httptest.NewServer(ts.srv.echo)
	t.Cleanup(httpServer.Close)

	quiz, err := ts.svc.CreateQuiz(context.Background(), "host-1", "Lecture 4", "")
	require.NoError(t, err)
	sess, err := ts.svc.CreateSession(context.Background(), "host-1", quiz.ID)
	require.NoError(t, err)

	// MaxClientsPerSession is 2 in the test config.
	for i := 0; i < 2; i++ {
		conn, _, err := dialSession(t, httpServer.URL, sess.ID)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		readServerMessage(t, conn)
	}

	require.Eventually(t, func() bool {
		return sess.AudienceCount() == 2
	}, 2*time.Second, 10*time.Millisecond)

	_, resp, err := dialSession(t, httpServer.URL, sess.ID)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
