package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diyagk01/blii-pdf-service/internal/capability"
	"github.com/diyagk01/blii-pdf-service/internal/models"
	"go.uber.org/zap"
)

// DefaultStrategyTimeout bounds a single strategy attempt.
const DefaultStrategyTimeout = 2 * time.Minute

// DefaultMaxAbandoned is how many timed-out attempts may keep running in the
// background across all runs of a Chain.
const DefaultMaxAbandoned = 4

// abandonGrace is how long a timed-out attempt gets to notice cancellation
// before it counts as abandoned.
const abandonGrace = 100 * time.Millisecond

// Chain runs extractors in order until one succeeds.
type Chain struct {
	registry   *capability.Registry
	extractors []Extractor
	timeout    time.Duration
	abandoned  chan struct{}
	logger     *zap.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithLogger sets the logger used to report every attempt.
func WithLogger(l *zap.Logger) ChainOption {
	return func(c *Chain) { c.logger = l }
}

// WithStrategyTimeout bounds each attempt. Zero or negative disables the bound.
func WithStrategyTimeout(d time.Duration) ChainOption {
	return func(c *Chain) { c.timeout = d }
}

// WithMaxAbandoned caps the timed-out attempts left running in the background.
// Past the cap the chain waits for a timed-out attempt to return before trying
// the next strategy. Zero always waits.
func WithMaxAbandoned(n int) ChainOption {
	return func(c *Chain) {
		if n < 0 {
			n = 0
		}
		c.abandoned = make(chan struct{}, n)
	}
}

// NewChain returns a chain that tries extractors in the given order,
// skipping those whose capability registry lacks.
func NewChain(registry *capability.Registry, extractors []Extractor, opts ...ChainOption) *Chain {
	c := &Chain{
		registry:   registry,
		extractors: extractors,
		timeout:    DefaultStrategyTimeout,
		abandoned:  make(chan struct{}, DefaultMaxAbandoned),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run returns the first successful result together with every attempt made.
// When no strategy succeeds the error is a *ChainError.
func (c *Chain) Run(ctx context.Context, doc *models.Document) (*models.ExtractionResult, []models.ExtractionAttempt, error) {
	var attempts []models.ExtractionAttempt
	for _, ex := range c.extractors {
		method := ex.Method()
		if !c.registry.Has(ex.Capability()) {
			c.logger.Info("extraction strategy skipped",
				zap.String("method", method),
				zap.String("capability", ex.Capability()),
				zap.String("reason", c.registry.Reason(ex.Capability())))
			attempts = append(attempts, models.ExtractionAttempt{
				Method:  method,
				Outcome: models.OutcomeSkipped,
				Err:     fmt.Errorf("%s: %w", method, ErrBackendUnavailable),
			})
			continue
		}
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, models.ExtractionAttempt{Method: method, Outcome: models.OutcomeFailure, Err: err})
			break
		}

		start := time.Now()
		res, err := c.attempt(ctx, ex, doc)
		elapsed := time.Since(start)
		if err != nil {
			c.logger.Warn("extraction strategy failed",
				zap.String("method", method),
				zap.String("filename", doc.Filename),
				zap.Duration("duration", elapsed),
				zap.Error(err))
			attempts = append(attempts, models.ExtractionAttempt{
				Method:   method,
				Outcome:  models.OutcomeFailure,
				Err:      err,
				Duration: elapsed,
			})
			continue
		}
		c.logger.Info("extraction strategy succeeded",
			zap.String("method", method),
			zap.String("filename", doc.Filename),
			zap.Duration("duration", elapsed),
			zap.Int("words", res.Metadata.WordCount))
		attempts = append(attempts, models.ExtractionAttempt{
			Method:   method,
			Outcome:  models.OutcomeSuccess,
			Duration: elapsed,
		})
		return res, attempts, nil
	}
	return nil, attempts, &ChainError{Attempts: attempts}
}

type attemptResult struct {
	res *models.ExtractionResult
	err error
}

// Abandoned returns the number of timed-out attempts still running.
func (c *Chain) Abandoned() int {
	return len(c.abandoned)
}

// attempt runs one extractor on its own goroutine under the per-attempt
// deadline. A panic inside the extractor becomes an error. When the deadline
// passes first the extractor's context is cancelled and settle decides whether
// to wait for it.
func (c *Chain) attempt(ctx context.Context, ex Extractor, doc *models.Document) (*models.ExtractionResult, error) {
	parent := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	done := make(chan attemptResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- attemptResult{err: fmt.Errorf("%s: %w: panic: %v", ex.Method(), ErrUnsupportedOrCorrupt, r)}
			}
		}()
		res, err := ex.Attempt(ctx, doc)
		if err == nil && res == nil {
			err = fmt.Errorf("%s: %w", ex.Method(), ErrNoExtractableText)
		}
		done <- attemptResult{res: res, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: timed out after %s: %w", ex.Method(), c.timeout, r.err)
		}
		return r.res, r.err
	case <-ctx.Done():
		c.settle(parent, ex.Method(), done)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: timed out after %s: %w", ex.Method(), c.timeout, ctx.Err())
		}
		return nil, fmt.Errorf("%s: %w", ex.Method(), ctx.Err())
	}
}

// settle handles an attempt whose context ended before it returned. Most
// extractors return promptly once cancelled. One that does not is left running
// while a slot is free; otherwise the chain waits for it so strategies do not
// pile up. Only the caller's own cancellation ends that wait early.
func (c *Chain) settle(parent context.Context, method string, done <-chan attemptResult) {
	grace := time.NewTimer(abandonGrace)
	defer grace.Stop()
	select {
	case <-done:
		return
	case <-grace.C:
	}

	select {
	case c.abandoned <- struct{}{}:
		c.logger.Warn("extraction strategy still running after its deadline",
			zap.String("method", method),
			zap.Int("abandoned", len(c.abandoned)))
		go func() {
			<-done
			<-c.abandoned
			c.logger.Info("abandoned extraction strategy finished", zap.String("method", method))
		}()
	default:
		c.logger.Warn("too many abandoned extraction strategies, waiting for this one",
			zap.String("method", method),
			zap.Int("abandoned", len(c.abandoned)))
		select {
		case <-done:
		case <-parent.Done():
		}
	}
}
