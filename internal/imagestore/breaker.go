package imagestore

import (
	"context"
	"errors"
	"time"

	"github.com/leadervibe/internal/logging"
	"github.com/leadervibe/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker around a Store.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
}

// Guarded wraps a Store with a circuit breaker and request metrics. While the
// breaker is open, calls fail immediately instead of waiting on the provider.
type Guarded struct {
	next    Store
	uploads *gobreaker.CircuitBreaker[UploadResult]
	deletes *gobreaker.CircuitBreaker[struct{}]
}

func NewGuarded(next Store, cfg BreakerConfig) *Guarded {
	if cfg.Name == "" {
		cfg.Name = "image-store"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = 1
	}

	return &Guarded{
		next:    next,
		uploads: gobreaker.NewCircuitBreaker[UploadResult](breakerSettings(cfg.Name+"-upload", cfg)),
		deletes: gobreaker.NewCircuitBreaker[struct{}](breakerSettings(cfg.Name+"-delete", cfg)),
	}
}

func breakerSettings(name string, cfg BreakerConfig) gobreaker.Settings {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// caller cancellation is not a provider failure
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("image store circuit breaker state changed")
		},
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func (g *Guarded) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	res, err := g.uploads.Execute(func() (UploadResult, error) {
		return g.next.Upload(ctx, req)
	})
	observe("upload", err)
	return res, err
}

func (g *Guarded) Delete(ctx context.Context, assetID string) error {
	_, err := g.deletes.Execute(func() (struct{}, error) {
		return struct{}{}, g.next.Delete(ctx, assetID)
	})
	observe("delete", err)
	return err
}

func observe(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.ImageStoreRequests.WithLabelValues(operation, result).Inc()
}
