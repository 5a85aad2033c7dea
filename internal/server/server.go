// Package server exposes the HTTP and WebSocket surface: quiz management,
// question imports, live session commands for hosts and the audience
// WebSocket endpoint.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"github.com/fredrikfh/Quizzma/internal/app"
	"github.com/fredrikfh/Quizzma/internal/config"
)

// AnswerLimiter gates answer submissions per session and client. A nil
// limiter admits everything.
type AnswerLimiter interface {
	Allow(ctx context.Context, sessionID, clientKey string) (bool, error)
}

type Server struct {
	echo     *echo.Echo
	config   *config.Config
	app      *app.Service
	verifier Verifier
	limiter  AnswerLimiter
	clock    clockwork.Clock
}

func NewServer(cfg *config.Config, svc *app.Service, verifier Verifier, limiter AnswerLimiter, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:     e,
		config:   cfg,
		app:      svc,
		verifier: verifier,
		limiter:  limiter,
		clock:    clock,
	}
	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
