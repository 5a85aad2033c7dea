package server

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/fredrikfh/Quizzma/internal/errors"
)

type createQuizRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateQuiz(c echo.Context) error {
	var req createQuizRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	quiz, err := s.app.CreateQuiz(c.Request().Context(), currentUserID(c), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, quiz)
}

func (s *Server) handleListQuizzes(c echo.Context) error {
	quizzes, err := s.app.ListQuizzes(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quizzes)
}

func (s *Server) handleGetQuiz(c echo.Context) error {
	quizID, err := parseUUIDParam(c, "quizId")
	if err != nil {
		return err
	}
	quiz, err := s.app.GetQuiz(c.Request().Context(), currentUserID(c), quizID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quiz)
}

func (s *Server) handleDeleteQuiz(c echo.Context) error {
	quizID, err := parseUUIDParam(c, "quizId")
	if err != nil {
		return err
	}
	if err := s.app.DeleteQuiz(c.Request().Context(), currentUserID(c), quizID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleQuizAnalyses(c echo.Context) error {
	quizID, err := parseUUIDParam(c, "quizId")
	if err != nil {
		return err
	}
	analyses, err := s.app.GetQuizAnalyses(c.Request().Context(), currentUserID(c), quizID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analyses)
}

type addQuestionRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAddQuestion(c echo.Context) error {
	quizID, err := parseUUIDParam(c, "quizId")
	if err != nil {
		return err
	}
	var req addQuestionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	question, err := s.app.AddQuestion(c.Request().Context(), currentUserID(c), quizID, req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, question)
}

func (s *Server) handleUpdateQuestion(c echo.Context) error {
	questionID, err := parseUUIDParam(c, "questionId")
	if err != nil {
		return err
	}
	var req addQuestionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	if err := s.app.UpdateQuestion(c.Request().Context(), currentUserID(c), questionID, req.Text); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteQuestion(c echo.Context) error {
	questionID, err := parseUUIDParam(c, "questionId")
	if err != nil {
		return err
	}
	if err := s.app.DeleteQuestion(c.Request().Context(), currentUserID(c), questionID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// maxImportSize bounds uploaded import files to 1 MiB.
const maxImportSize = 1 << 20

// handleImportQuestions accepts a raw .json, .csv or .txt body and imports
// its questions and answers into the quiz.
func (s *Server) handleImportQuestions(c echo.Context) error {
	quizID, err := parseUUIDParam(c, "quizId")
	if err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxImportSize+1))
	if err != nil {
		return apperrors.ValidationError("failed to read request body")
	}
	if len(body) == 0 {
		return apperrors.ValidationError("import file is empty")
	}
	if len(body) > maxImportSize {
		return apperrors.ValidationError("import file exceeds 1 MiB")
	}

	questions, err := s.app.ImportQuestions(c.Request().Context(), currentUserID(c), quizID, string(body))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, questions)
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid " + name)
	}
	return id, nil
}
