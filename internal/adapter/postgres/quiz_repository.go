package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

// QuizRepo is the pool-backed implementation of domain.QuizRepository.
type QuizRepo struct {
	pool *pgxpool.Pool
}

var _ domain.QuizRepository = (*QuizRepo)(nil)

func NewQuizRepo(pool *pgxpool.Pool) *QuizRepo {
	return &QuizRepo{pool: pool}
}

func (r *QuizRepo) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz.ID == uuid.Nil {
		quiz.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quizzes (id, user_id, name, description) VALUES ($1, $2, $3, $4)`,
		quiz.ID, quiz.UserID, quiz.Name, nullable(quiz.Description),
	)
	if err != nil {
		return fmt.Errorf("failed to insert quiz: %w", err)
	}
	return nil
}

func (r *QuizRepo) GetQuiz(ctx context.Context, quizID uuid.UUID) (*domain.Quiz, error) {
	var quiz domain.Quiz
	var description *string
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, description FROM quizzes WHERE id = $1`,
		quizID,
	).Scan(&quiz.ID, &quiz.UserID, &quiz.Name, &description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if description != nil {
		quiz.Description = *description
	}

	questions, err := r.questionsByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	quiz.Questions = questions
	return &quiz, nil
}

func (r *QuizRepo) questionsByQuiz(ctx context.Context, quizID uuid.UUID) ([]domain.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, text, predefined FROM questions WHERE quiz_id = $1 ORDER BY created_at`,
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	questions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Question, error) {
		var q domain.Question
		err := row.Scan(&q.ID, &q.QuizID, &q.Text, &q.Predefined)
		return q, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan questions: %w", err)
	}
	return questions, nil
}

func (r *QuizRepo) ListQuizzes(ctx context.Context, userID string, includeAll bool) ([]domain.Quiz, error) {
	query := `SELECT id, user_id, name, description FROM quizzes WHERE user_id = $1 ORDER BY created_at DESC`
	args := []any{userID}
	if includeAll {
		query = `SELECT id, user_id, name, description FROM quizzes ORDER BY created_at DESC`
		args = nil
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quizzes: %w", err)
	}
	quizzes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Quiz, error) {
		var q domain.Quiz
		var description *string
		err := row.Scan(&q.ID, &q.UserID, &q.Name, &description)
		if description != nil {
			q.Description = *description
		}
		return q, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan quizzes: %w", err)
	}
	return quizzes, nil
}

func (r *QuizRepo) DeleteQuiz(ctx context.Context, quizID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, quizID)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (r *QuizRepo) AddQuestion(ctx context.Context, question *domain.Question) error {
	if question.ID == uuid.Nil {
		question.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO questions (id, quiz_id, text, predefined) VALUES ($1, $2, $3, $4)`,
		question.ID, question.QuizID, question.Text, question.Predefined,
	)
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}
	return nil
}

func (r *QuizRepo) GetQuestion(ctx context.Context, questionID uuid.UUID) (*domain.Question, error) {
	var q domain.Question
	err := r.pool.QueryRow(ctx,
		`SELECT id, quiz_id, text, predefined FROM questions WHERE id = $1`,
		questionID,
	).Scan(&q.ID, &q.QuizID, &q.Text, &q.Predefined)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}

func (r *QuizRepo) UpdateQuestionText(ctx context.Context, questionID uuid.UUID, text string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE questions SET text = $2 WHERE id = $1`,
		questionID, text,
	)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (r *QuizRepo) DeleteQuestion(ctx context.Context, questionID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, questionID)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (r *QuizRepo) AddAnswer(ctx context.Context, answer *domain.Answer) error {
	if answer.ID == uuid.Nil {
		answer.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO answers (id, question_id, text) VALUES ($1, $2, $3)`,
		answer.ID, answer.QuestionID, answer.Text,
	)
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}
	return nil
}

// AddQuestionWithAnswers persists an imported question and its answers in
// one transaction so a failed import leaves nothing behind.
func (r *QuizRepo) AddQuestionWithAnswers(ctx context.Context, question *domain.Question, answers []domain.Answer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if question.ID == uuid.Nil {
		question.ID = uuid.New()
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO questions (id, quiz_id, text, predefined) VALUES ($1, $2, $3, $4)`,
		question.ID, question.QuizID, question.Text, question.Predefined,
	); err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range answers {
		if answers[i].ID == uuid.Nil {
			answers[i].ID = uuid.New()
		}
		answers[i].QuestionID = question.ID
		batch.Queue(
			`INSERT INTO answers (id, question_id, text) VALUES ($1, $2, $3)`,
			answers[i].ID, answers[i].QuestionID, answers[i].Text,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert answers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *QuizRepo) SentimentsByQuiz(ctx context.Context, quizID uuid.UUID) ([]domain.SentimentResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.answer_id, s.algorithm, s.verdict, s.compound, s.positive, s.neutral, s.negative
		 FROM sentiments s
		 JOIN answers a ON a.id = s.answer_id
		 JOIN questions q ON q.id = a.question_id
		 WHERE q.quiz_id = $1`,
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sentiments: %w", err)
	}
	sentiments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SentimentResult, error) {
		var s domain.SentimentResult
		var verdict string
		err := row.Scan(&s.ID, &s.AnswerID, &s.Algorithm, &verdict, &s.Compound, &s.Positive, &s.Neutral, &s.Negative)
		s.Verdict = domain.Verdict(verdict)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan sentiments: %w", err)
	}
	return sentiments, nil
}

func (r *QuizRepo) TopicsByQuiz(ctx context.Context, quizID uuid.UUID) ([]domain.TopicResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.question_id, t.algorithm, t.label, t.terms
		 FROM topics t
		 JOIN questions q ON q.id = t.question_id
		 WHERE q.quiz_id = $1`,
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	topics, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TopicResult, error) {
		var t domain.TopicResult
		err := row.Scan(&t.ID, &t.QuestionID, &t.Algorithm, &t.Label, &t.Terms)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan topics: %w", err)
	}

	for i := range topics {
		members, err := r.topicAnswers(ctx, topics[i].ID)
		if err != nil {
			return nil, err
		}
		topics[i].Answers = members
	}
	return topics, nil
}

func (r *QuizRepo) topicAnswers(ctx context.Context, topicID uuid.UUID) ([]domain.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.question_id, a.text
		 FROM answers a
		 JOIN answer_topics lnk ON lnk.answer_id = a.id
		 WHERE lnk.topic_id = $1`,
		topicID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query topic answers: %w", err)
	}
	answers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Answer, error) {
		var a domain.Answer
		err := row.Scan(&a.ID, &a.QuestionID, &a.Text)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan topic answers: %w", err)
	}
	return answers, nil
}

func (r *QuizRepo) SummariesByQuiz(ctx context.Context, quizID uuid.UUID) ([]domain.SummaryResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.question_id, s.topic_id, s.algorithm, s.summary_text, s.emoji
		 FROM summaries s
		 JOIN questions q ON q.id = s.question_id
		 WHERE q.quiz_id = $1`,
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SummaryResult, error) {
		var s domain.SummaryResult
		var emoji *string
		err := row.Scan(&s.ID, &s.QuestionID, &s.TopicID, &s.Algorithm, &s.Text, &emoji)
		if emoji != nil {
			s.Emoji = *emoji
		}
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan summaries: %w", err)
	}
	return summaries, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
