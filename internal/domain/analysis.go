package domain

import "github.com/google/uuid"

// Verdict is the coarse sentiment classification of a single answer.
type Verdict string

const (
	VerdictPositive Verdict = "Positive"
	VerdictNeutral  Verdict = "Neutral"
	VerdictNegative Verdict = "Negative"
)

// SentimentResult is one sentiment classification per answer. The per-class
// scores are opaque payload as far as the orchestration layer is concerned.
type SentimentResult struct {
	ID        uuid.UUID `json:"id"`
	AnswerID  uuid.UUID `json:"answerId"`
	Algorithm string    `json:"algorithm"`
	Verdict   Verdict   `json:"verdict"`
	Compound  float64   `json:"compound"`
	Positive  float64   `json:"positive"`
	Neutral   float64   `json:"neutral"`
	Negative  float64   `json:"negative"`
}

// TopicResult is a cluster of answers sharing a discovered theme. Answers
// holds the resolved membership against the authoritative answer set.
type TopicResult struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"questionId"`
	Algorithm  string    `json:"algorithm"`
	Label      string    `json:"label"`
	Terms      string    `json:"terms"`
	Answers    []Answer  `json:"answers,omitempty"`
}

// SummaryResult is an LLM summary scoped either to a whole question
// (TopicID nil) or to a single topic.
type SummaryResult struct {
	ID         uuid.UUID  `json:"id"`
	QuestionID uuid.UUID  `json:"questionId"`
	TopicID    *uuid.UUID `json:"topicId,omitempty"`
	Algorithm  string     `json:"algorithm"`
	Text       string     `json:"summaryText"`
	Emoji      string     `json:"emoji,omitempty"`
}

// AnalysisRequest is the context object handed to the Summarizer. TopicLabel
// is set only for per-topic summaries; AudienceCount only when a live
// session is attached.
type AnalysisRequest struct {
	Question        string
	Answers         []string
	QuizName        string
	QuizDescription string
	AudienceCount   *int
	TopicLabel      string
}

// QuestionImport is one formatted question with its answers, produced from a
// raw file import.
type QuestionImport struct {
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
}
