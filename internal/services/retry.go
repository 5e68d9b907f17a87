package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// doRequestWithRetry performs the request built by newRequest, retrying transport errors,
// 429 and 5xx responses with exponential backoff. A Retry-After header overrides the backoff.
//
// The final response is returned as is, whatever its status, once retries are exhausted.
func (s *SpotifyService) doRequestWithRetry(ctx context.Context, newRequest func() (*http.Request, error)) (*http.Response, error) {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("request canceled: %w", err)
		}

		req, err := newRequest()
		if err != nil {
			return nil, err
		}

		resp, err := s.httpClient.Do(req)
		if ctxErr := ctx.Err(); ctxErr != nil {
			if resp != nil {
				resp.Body.Close()
			}
			return nil, fmt.Errorf("request canceled: %w", ctxErr)
		}

		retryAfter, retry := shouldRetry(resp, err)
		last := attempt == s.maxRetries-1
		if !retry || last {
			if err != nil {
				return nil, fmt.Errorf("request failed after %d attempts: %w", attempt+1, err)
			}
			return resp, nil
		}

		if err != nil {
			s.logger.Warn("retrying request", "attempt", attempt+1, "max", s.maxRetries, "error", err)
		} else {
			s.logger.Warn("retrying request", "attempt", attempt+1, "max", s.maxRetries, "status", resp.StatusCode)
			resp.Body.Close()
		}

		backoff := s.baseBackoff * time.Duration(1<<attempt)
		if retryAfter > 0 {
			backoff = retryAfter
		}

		if err := sleepWithContext(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts", s.maxRetries)
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}

	return 0, false
}

func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}

	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
