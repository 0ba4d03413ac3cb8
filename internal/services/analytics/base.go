package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	xhttp "CryptoLiquidity/pkg/http"
)

// HTTPServiceBase provides JSON request handling with retries for model-serving clients.
type HTTPServiceBase struct {
	baseURL string
	client  *xhttp.Client
	retries int
	backoff func() backoff.BackOff
}

// NewHTTPServiceBase builds a client for baseURL. retries is the number of
// extra attempts after the first one.
func NewHTTPServiceBase(baseURL string, timeout time.Duration, retries int, opts ...xhttp.ClientOption) *HTTPServiceBase {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	opts = append([]xhttp.ClientOption{xhttp.WithTimeout(timeout)}, opts...)
	return &HTTPServiceBase{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  xhttp.NewClient(opts...),
		retries: retries,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 50 * time.Millisecond
			b.MaxInterval = time.Second
			return b
		},
	}
}

// Do sends one request to path and decodes the JSON response into dest.
// Transport errors, 5xx and 429 are retried; other statuses fail immediately.
func (b *HTTPServiceBase) Do(ctx context.Context, method, path string, payload, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("model service client not initialized")
	}

	op := func() error {
		err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: method,
			URL:    b.baseURL + path,
			Body:   payload,
		}, dest)
		if err == nil {
			return nil
		}
		var se *xhttp.StatusError
		if errors.As(err, &se) && !se.Temporary() {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b.backoff(), uint64(max(b.retries, 0))), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return nil
}
