package domain

import "errors"

var (
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUnauthorized       = errors.New("operation not permitted for this identity")
	ErrIDSpaceExhausted   = errors.New("session id space exhausted")
	ErrNoCurrentQuestion  = errors.New("no question is currently being asked")
	ErrUnknownMessageType = errors.New("unknown message type")
)
