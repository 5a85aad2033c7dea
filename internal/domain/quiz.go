package domain

import "github.com/google/uuid"

// Quiz is a collection of questions owned by a single host identity.
type Quiz struct {
	ID          uuid.UUID  `json:"id"`
	UserID      string     `json:"userId"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions,omitempty"`
}

// Question is a single open-text question belonging to a quiz. Predefined
// questions are authored ahead of a session; imported ones arrive with their
// answers already attached.
type Question struct {
	ID         uuid.UUID `json:"id"`
	QuizID     uuid.UUID `json:"quizId"`
	Text       string    `json:"text"`
	Predefined bool      `json:"predefined"`
}

// Answer is a raw audience answer as submitted, before any preprocessing.
type Answer struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"questionId"`
	Text       string    `json:"text"`
}

// AnalysisAnswer is the immutable (id, text) pair passed between pipeline
// stages. The text may differ from the raw answer text after preprocessing;
// the id always refers back to the stored Answer.
type AnalysisAnswer struct {
	ID   uuid.UUID
	Text string
}
