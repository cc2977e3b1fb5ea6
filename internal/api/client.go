// Package api adapts the Drive v2 service to remote.Service with retries,
// request tracing and error classification.
package api

import (
	"context"
	stderrors "errors"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/drive/v2"
	"google.golang.org/api/googleapi"

	"github.com/dl-alexandre/gdxfer/internal/errors"
	"github.com/dl-alexandre/gdxfer/internal/logging"
	"github.com/dl-alexandre/gdxfer/internal/types"
	"github.com/dl-alexandre/gdxfer/internal/utils"
)

// Client wraps the Drive API with retry logic and request shaping
type Client struct {
	service    *drive.Service
	maxRetries int
	retryDelay time.Duration
	pageSize   int64
	logger     logging.Logger
}

// Options tunes a Client. Zero values take the package defaults.
type Options struct {
	MaxRetries   int
	RetryDelayMs int
	PageSize     int64
	Logger       logging.Logger
}

// NewClient creates a new Drive API client
func NewClient(service *drive.Service, opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = logging.NewNoOpLogger()
	}
	if opts.RetryDelayMs <= 0 {
		opts.RetryDelayMs = utils.DefaultRetryDelayMs
	}
	if opts.PageSize <= 0 {
		opts.PageSize = utils.DefaultListPageSize
	}
	return &Client{
		service:    service,
		maxRetries: opts.MaxRetries,
		retryDelay: time.Duration(opts.RetryDelayMs) * time.Millisecond,
		pageSize:   opts.PageSize,
		logger:     opts.Logger,
	}
}

// NewRequestContext creates a new request context with trace ID
func NewRequestContext(requestType types.RequestType) *types.RequestContext {
	return &types.RequestContext{
		InvolvedFileIDs:   []string{},
		InvolvedParentIDs: []string{},
		RequestType:       requestType,
		TraceID:           uuid.New().String(),
	}
}

// WithFileIDs adds file IDs to the request context
func WithFileIDs(reqCtx *types.RequestContext, fileIDs ...string) *types.RequestContext {
	reqCtx.InvolvedFileIDs = append(reqCtx.InvolvedFileIDs, fileIDs...)
	return reqCtx
}

// WithParentIDs adds parent IDs to the request context
func WithParentIDs(reqCtx *types.RequestContext, parentIDs ...string) *types.RequestContext {
	reqCtx.InvolvedParentIDs = append(reqCtx.InvolvedParentIDs, parentIDs...)
	return reqCtx
}

// ExecuteWithRetry runs fn, retrying retryable failures up to the client's limit.
// The returned error is always classified.
func ExecuteWithRetry[T any](ctx context.Context, client *Client, reqCtx *types.RequestContext, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	logger := client.logger.WithTraceID(reqCtx.TraceID)
	logger.Debug("API operation starting",
		logging.F("requestType", reqCtx.RequestType),
		logging.F("fileIds", reqCtx.InvolvedFileIDs),
		logging.F("parentIds", reqCtx.InvolvedParentIDs),
	)

	start := time.Now()

	for attempt := 0; attempt <= client.maxRetries; attempt++ {
		if attempt > 0 {
			logger.Warn("Retrying API operation",
				logging.F("attempt", attempt),
				logging.F("maxRetries", client.maxRetries),
			)
		}

		result, lastErr = fn()
		if lastErr == nil {
			logger.Debug("API operation completed",
				logging.F("duration_ms", time.Since(start).Milliseconds()),
				logging.F("attempts", attempt+1),
			)
			return result, nil
		}

		if !isRetryable(lastErr) {
			logger.Error("API operation failed (non-retryable)",
				logging.F("duration_ms", time.Since(start).Milliseconds()),
				logging.F("error", lastErr.Error()),
				logging.F("attempts", attempt+1),
			)
			return result, classifyError(lastErr, reqCtx, logger)
		}

		if attempt < client.maxRetries {
			delay := calculateBackoff(client.retryDelay, attempt, lastErr)
			logger.Warn("API operation failed (retryable)",
				logging.F("attempt", attempt+1),
				logging.F("delay_ms", delay.Milliseconds()),
				logging.F("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return result, classifyError(ctx.Err(), reqCtx, logger)
			case <-time.After(delay):
			}
		}
	}

	logger.Error("API operation failed after max retries",
		logging.F("duration_ms", time.Since(start).Milliseconds()),
		logging.F("attempts", client.maxRetries+1),
		logging.F("error", lastErr.Error()),
	)

	return result, classifyError(lastErr, reqCtx, logger)
}

// isRetryable reports 429 and transient 5xx responses
func isRetryable(err error) bool {
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}

// calculateBackoff honours Retry-After, else base * 2^attempt with ±25% jitter
func calculateBackoff(baseDelay time.Duration, attempt int, err error) time.Duration {
	maxDelay := time.Duration(utils.MaxRetryDelayMs) * time.Millisecond

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) && apiErr.Header != nil {
		if seconds, perr := strconv.Atoi(apiErr.Header.Get("Retry-After")); perr == nil {
			return min(time.Duration(seconds)*time.Second, maxDelay)
		}
	}

	delay := min(baseDelay*time.Duration(math.Pow(2, float64(attempt))), maxDelay)

	jitterRange := delay / 4
	if jitterRange > 0 {
		delay += time.Duration(rand.Int63n(int64(jitterRange*2))) - jitterRange
	}
	if delay < 0 {
		delay = baseDelay
	}
	return delay
}

func classifyError(err error, reqCtx *types.RequestContext, logger logging.Logger) error {
	return errors.ClassifyGoogleAPIError(err, reqCtx, logger)
}

// Service returns the underlying Drive service
func (c *Client) Service() *drive.Service {
	return c.service
}
