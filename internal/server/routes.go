package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/fredrikfh/Quizzma/internal/errors"
)

func (s *Server) registerRoutes() {
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(errors.Middleware())

	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Audience endpoint: no auth, the session id is the shared secret.
	s.echo.GET("/ws/sessions/:id", s.handleSessionSocket)

	api := s.echo.Group("/api", s.authMiddleware(), newRateLimiter(20, 40))

	api.POST("/quizzes", s.handleCreateQuiz)
	api.GET("/quizzes", s.handleListQuizzes)
	api.GET("/quizzes/:quizId", s.handleGetQuiz)
	api.DELETE("/quizzes/:quizId", s.handleDeleteQuiz)
	api.GET("/quizzes/:quizId/analyses", s.handleQuizAnalyses)
	api.POST("/quizzes/:quizId/questions", s.handleAddQuestion)
	api.POST("/quizzes/:quizId/import", s.handleImportQuestions)
	api.PATCH("/questions/:questionId", s.handleUpdateQuestion)
	api.DELETE("/questions/:questionId", s.handleDeleteQuestion)

	api.POST("/quizzes/:quizId/sessions", s.handleCreateSession)
	api.GET("/sessions/:id", s.handleGetSession)
	api.POST("/sessions/:id/question", s.handleAskQuestion)
	api.POST("/sessions/:id/open", s.handleOpenAnswers)
	api.POST("/sessions/:id/reveal", s.handleReveal)
	api.DELETE("/sessions/:id", s.handleKillSession)
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.Info("Request", attrs...)
			return nil
		},
	})
}

const rateLimiterExpiry = 5 * time.Minute

func newRateLimiter(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: rateLimiterExpiry,
		},
	)
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "rate limit exceeded",
			})
		},
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
