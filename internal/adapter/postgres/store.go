package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fredrikfh/Quizzma/internal/domain"
)

// Store opens pgx transactions as units of work for the analysis pipeline.
type Store struct {
	pool *pgxpool.Pool
}

var _ domain.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &unitOfWork{tx: tx}, nil
}

type unitOfWork struct {
	tx pgx.Tx
}

var _ domain.UnitOfWork = (*unitOfWork)(nil)

func (u *unitOfWork) AddSentiments(ctx context.Context, sentiments []domain.SentimentResult) error {
	batch := &pgx.Batch{}
	for _, s := range sentiments {
		batch.Queue(
			`INSERT INTO sentiments (id, answer_id, algorithm, verdict, compound, positive, neutral, negative)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			s.ID, s.AnswerID, s.Algorithm, string(s.Verdict), s.Compound, s.Positive, s.Neutral, s.Negative,
		)
	}
	if err := u.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert sentiments: %w", err)
	}
	return nil
}

func (u *unitOfWork) AddTopics(ctx context.Context, topics []domain.TopicResult) error {
	batch := &pgx.Batch{}
	for _, t := range topics {
		batch.Queue(
			`INSERT INTO topics (id, question_id, algorithm, label, terms) VALUES ($1, $2, $3, $4, $5)`,
			t.ID, t.QuestionID, t.Algorithm, t.Label, t.Terms,
		)
		for _, a := range t.Answers {
			batch.Queue(
				`INSERT INTO answer_topics (answer_id, topic_id) VALUES ($1, $2)`,
				a.ID, t.ID,
			)
		}
	}
	if err := u.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert topics: %w", err)
	}
	return nil
}

func (u *unitOfWork) AddSummaries(ctx context.Context, summaries []domain.SummaryResult) error {
	batch := &pgx.Batch{}
	for _, s := range summaries {
		batch.Queue(
			`INSERT INTO summaries (id, question_id, topic_id, algorithm, summary_text, emoji)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			s.ID, s.QuestionID, s.TopicID, s.Algorithm, s.Text, s.Emoji,
		)
	}
	if err := u.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert summaries: %w", err)
	}
	return nil
}

func (u *unitOfWork) AnswersByQuestion(ctx context.Context, questionID uuid.UUID) ([]domain.Answer, error) {
	rows, err := u.tx.Query(ctx,
		`SELECT id, question_id, text FROM answers WHERE question_id = $1 ORDER BY created_at`,
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	answers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Answer, error) {
		var a domain.Answer
		err := row.Scan(&a.ID, &a.QuestionID, &a.Text)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan answers: %w", err)
	}
	return answers, nil
}

func (u *unitOfWork) TopicsByQuestion(ctx context.Context, questionID uuid.UUID) ([]domain.TopicResult, error) {
	rows, err := u.tx.Query(ctx,
		`SELECT id, question_id, algorithm, label, terms FROM topics WHERE question_id = $1`,
		questionID,
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
		members, err := u.topicAnswers(ctx, topics[i].ID)
		if err != nil {
			return nil, err
		}
		topics[i].Answers = members
	}
	return topics, nil
}

func (u *unitOfWork) topicAnswers(ctx context.Context, topicID uuid.UUID) ([]domain.Answer, error) {
	rows, err := u.tx.Query(ctx,
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

func (u *unitOfWork) SummarizedTopicIDs(ctx context.Context, questionID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := u.tx.Query(ctx,
		`SELECT topic_id FROM summaries WHERE question_id = $1 AND topic_id IS NOT NULL`,
		questionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query summarized topics: %w", err)
	}
	ids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (uuid.UUID, error) {
		var id uuid.UUID
		err := row.Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan summarized topics: %w", err)
	}
	return ids, nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if err := u.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}
