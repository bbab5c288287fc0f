// Package ai coordinates calls to the generation backend and normalizes
// their output through the extraction chain.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fr-yash/CoBuilderr/internal/extract"
	"github.com/fr-yash/CoBuilderr/internal/metrics"
)

var (
	// ErrEmptyPrompt is returned when the trimmed prompt is empty.
	ErrEmptyPrompt = errors.New("empty prompt")
	// ErrUpstream wraps generation backend failures and timeouts.
	ErrUpstream = errors.New("generation backend error")
)

// Completer abstracts the model call so tests can stub the backend.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service invokes the backend with a bounded timeout and feeds the raw
// response through the extractor. It is stateless per call.
type Service struct {
	completer Completer
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewService creates a generation service around the given completer.
func NewService(completer Completer, timeout time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		completer: completer,
		timeout:   timeout,
		logger:    logger.With().Str("component", "ai").Logger(),
	}
}

// Generate runs prompt through the backend and returns the normalized
// result. Fails with ErrEmptyPrompt before invoking the backend, or
// ErrUpstream if the call errors or times out.
func (s *Service) Generate(ctx context.Context, prompt string) (extract.Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		metrics.GenerationsTotal.WithLabelValues("empty_prompt").Inc()
		return extract.Result{}, ErrEmptyPrompt
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.completer.Complete(ctx, prompt)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues("upstream_error").Inc()
		s.logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("generation call failed")
		return extract.Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	metrics.GenerationsTotal.WithLabelValues("ok").Inc()
	return extract.Extract(raw), nil
}
