package domain

import "github.com/google/uuid"

// SessionStage coordinates host and audience clients through one question
// cycle.
type SessionStage string

const (
	StageJoinSession  SessionStage = "join_session"
	StageAskQuestion  SessionStage = "ask_question"
	StageAwaitAnswers SessionStage = "await_answers"
	StageShowAnalyses SessionStage = "show_analyses"
)

// SessionSnapshot is the public view of a live session pushed to clients.
// It never exposes internal state (connections, locks, task handles);
// AudienceCount is derived from the live connection count.
type SessionSnapshot struct {
	ID              string       `json:"id"`
	OwnerID         string       `json:"ownerId"`
	QuizID          uuid.UUID    `json:"quizId"`
	Stage           SessionStage `json:"stage"`
	AudienceCount   int          `json:"audienceCount"`
	CurrentQuestion *Question    `json:"currentQuestion,omitempty"`
	CurrentAnswers  []Answer     `json:"currentAnswers"`
}
