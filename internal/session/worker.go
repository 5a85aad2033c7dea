package session

import (
	"context"

	"github.com/fredrikfh/Quizzma/internal/domain"
	"github.com/fredrikfh/Quizzma/internal/metrics"
)

// StartWorker begins the background batching loop. The worker flushes the
// pending answer batch through preprocessing on a fixed interval, smoothing
// load instead of preparing every answer the moment it arrives.
func (s *Session) StartWorker() {
	if !s.workerStarted.CompareAndSwap(false, true) {
		return
	}
	go s.runWorker()
}

func (s *Session) runWorker() {
	defer close(s.workerDone)
	s.log.Debug("Batch worker started", "interval", s.batchInterval)

	for {
		timer := s.clock.NewTimer(s.batchInterval)
		select {
		case <-timer.Chan():
			s.flush(context.Background())
		case <-s.stopCh:
			// A pending stop interrupts the sleep immediately rather than
			// waiting out the interval.
			timer.Stop()
			s.log.Debug("Batch worker stopped")
			return
		}
	}
}

// stopWorker marks the loop for exit and cancels the current sleep. A final
// flush is the caller's responsibility via GetPreparedAnswers.
func (s *Session) stopWorker() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	if s.workerStarted.Load() {
		<-s.workerDone
	}
}

// flush snapshots and clears the pending batch, runs it through the
// preprocessor and appends the result to the prepared answers. Sentiment
// analysis over the flushed sub-batch is launched as tracked background
// work. At most one flush executes at a time per session.
func (s *Session) flush(ctx context.Context) {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	start := s.clock.Now()

	s.batchMu.Lock()
	batch := s.answerBatch
	s.answerBatch = nil
	s.batchMu.Unlock()

	if len(batch) == 0 {
		return
	}

	prepared := s.prepareBatch(ctx, batch)

	done := make(chan struct{})
	s.batchMu.Lock()
	s.preparedAnswers = append(s.preparedAnswers, prepared...)
	s.sentimentTasks = append(s.sentimentTasks, done)
	s.batchMu.Unlock()

	go s.runSentimentTask(prepared, done)

	metrics.BatchFlushSize.Observe(float64(len(batch)))
	metrics.BatchFlushDuration.Observe(s.clock.Since(start).Seconds())
	s.log.Debug("Batch flushed", "size", len(batch), "duration", s.clock.Since(start))
}

// prepareBatch runs the batch through the preprocessor and pairs the
// cleaned documents positionally with the original answer ids. On any
// failure or length mismatch the original raw text is used verbatim; an
// answer is never dropped because preprocessing failed.
func (s *Session) prepareBatch(ctx context.Context, batch []domain.Answer) []domain.AnalysisAnswer {
	if s.preprocessor == nil {
		prepared := make([]domain.AnalysisAnswer, len(batch))
		for i, answer := range batch {
			prepared[i] = domain.AnalysisAnswer{ID: answer.ID, Text: answer.Text}
		}
		return prepared
	}

	documents := make([]string, len(batch))
	for i, answer := range batch {
		documents[i] = answer.Text
	}

	cleaned, err := s.preprocessor.CorrectAndTranslate(ctx, documents)
	switch {
	case err != nil:
		s.log.Debug("Answer batch failed during correction and translation", "error", err)
	case len(cleaned) != len(batch):
		s.log.Debug("Answer batch was corrupted during correction and translation", "sent", len(batch), "received", len(cleaned))
	default:
		prepared := make([]domain.AnalysisAnswer, len(batch))
		for i, answer := range batch {
			prepared[i] = domain.AnalysisAnswer{ID: answer.ID, Text: cleaned[i]}
		}
		return prepared
	}

	metrics.PreprocessingFallbacksTotal.Inc()
	prepared := make([]domain.AnalysisAnswer, len(batch))
	for i, answer := range batch {
		prepared[i] = domain.AnalysisAnswer{ID: answer.ID, Text: answer.Text}
	}
	return prepared
}

func (s *Session) runSentimentTask(prepared []domain.AnalysisAnswer, done chan struct{}) {
	defer close(done)

	if s.sentiment == nil {
		return
	}

	// Sentiment is best-effort per flush and never blocks batching.
	if err := s.sentiment(context.Background(), prepared); err != nil {
		metrics.SentimentTaskFailuresTotal.Inc()
		s.log.Debug("Sentiment analysis failed for answer batch", "size", len(prepared), "error", err)
	}
}
