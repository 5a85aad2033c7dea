package server

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	apperrors "github.com/fredrikfh/Quizzma/internal/errors"
	"github.com/fredrikfh/Quizzma/internal/metrics"
	"github.com/fredrikfh/Quizzma/internal/session"
	"github.com/fredrikfh/Quizzma/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (s *Server) handleCreateSession(c echo.Context) error {
	quizID, err := parseUUIDParam(c, "quizId")
	if err != nil {
		return err
	}
	sess, err := s.app.CreateSession(c.Request().Context(), currentUserID(c), quizID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(c echo.Context) error {
	sess := s.app.Sessions().GetSession(c.Param("id"))
	if sess == nil {
		return apperrors.NotFoundError("session not found")
	}
	return c.JSON(http.StatusOK, sess.Snapshot())
}

type askQuestionRequest struct {
	QuestionID string `json:"questionId"`
}

func (s *Server) handleAskQuestion(c echo.Context) error {
	var req askQuestionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	questionID, err := parseUUID(req.QuestionID, "questionId")
	if err != nil {
		return err
	}
	if err := s.app.AskQuestion(c.Request().Context(), currentUserID(c), c.Param("id"), questionID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleOpenAnswers(c echo.Context) error {
	if err := s.app.OpenAnswers(c.Request().Context(), currentUserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleReveal(c echo.Context) error {
	if err := s.app.Reveal(c.Request().Context(), currentUserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleKillSession(c echo.Context) error {
	if err := s.app.KillSession(currentUserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handleSessionSocket joins an audience member to a live session. The
// connection immediately receives the current snapshot and then every sync
// broadcast; inbound messages carry answers to the current question.
func (s *Server) handleSessionSocket(c echo.Context) error {
	sessionID := c.Param("id")
	manager := s.app.Sessions()
	sess := manager.GetSession(sessionID)
	if sess == nil {
		return apperrors.NotFoundError("session not found")
	}
	if sess.AudienceCount() >= s.config.MaxClientsPerSession {
		return apperrors.ExhaustedError("session is full")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return nil
	}

	client := ws.NewClient(conn, s.clock)
	if _, err := manager.JoinSession(sessionID, client); err != nil {
		client.Close("session is gone")
		return nil
	}

	manager.Broadcast(sess, ws.ServerMessageSync, nil)
	clientKey := c.RealIP()

	// Read pump (blocks until disconnect)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		s.handleClientMessage(c, sess, client, clientKey, data)
	}

	manager.LeaveSession(sessionID, client)
	client.Close("")
	manager.Broadcast(sess, ws.ServerMessageSync, nil)
	return nil
}

// handleClientMessage processes one inbound frame. Failures are reported to
// the offending client only, wrapped around the current snapshot.
func (s *Server) handleClientMessage(c echo.Context, sess *session.Session, client *ws.Client, clientKey string, data []byte) {
	ctx := c.Request().Context()

	msg, err := ws.ParseClientMessage(data)
	if err != nil {
		s.sendError(sess, client, "unknown message type")
		return
	}

	text, err := msg.AnswerText()
	if err != nil {
		s.sendError(sess, client, "answer text missing")
		return
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, sess.ID, clientKey)
		if err != nil {
			slog.Debug("answer rate limit check failed", "error", err)
		} else if !allowed {
			metrics.AnswersRateLimitedTotal.Inc()
			s.sendError(sess, client, "too many answers, slow down")
			return
		}
	}

	if err := s.app.SubmitAnswer(ctx, sess, text); err != nil {
		s.sendError(sess, client, "answer rejected")
	}
}

func (s *Server) sendError(sess *session.Session, client *ws.Client, message string) {
	payload := &ws.ErrorPayload{Message: message}
	data, err := ws.EncodeServerMessage(sess.Snapshot(), ws.ServerMessageError, payload)
	if err != nil {
		return
	}
	if err := client.Send(data); err != nil {
		slog.Debug("failed to deliver error message", "error", err)
	}
}

func parseUUID(value, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid " + name)
	}
	return id, nil
}
