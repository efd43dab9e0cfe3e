package quadriga

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Transport performs one HTTP exchange and returns the raw response body.
// Failures, including non-2xx statuses, come back as *TransportError.
type Transport interface {
	Send(ctx context.Context, method, url string, header http.Header, body []byte) ([]byte, error)
}

type HTTPOptions struct {
	Timeout time.Duration
	// RatePerSec limits outgoing requests; zero disables limiting.
	RatePerSec float64
	Burst      int
	Client     *http.Client
	Logger     *zap.Logger
}

type HTTPTransport struct {
	client  *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewHTTPTransport(opts HTTPOptions) *HTTPTransport {
	timeout := 15 * time.Second
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	var limiter *rate.Limiter
	if opts.RatePerSec > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPTransport{client: client, limiter: limiter, log: log}
}

func (t *HTTPTransport) Send(ctx context.Context, method, url string, header http.Header, body []byte) ([]byte, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Method: method, URL: url, Err: err}
		}
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.ContentLength = int64(len(body))
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Debug("dispatch failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	t.log.Debug("dispatch",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBody)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if resp.StatusCode/100 != 2 {
		return nil, &TransportError{Method: method, URL: url, StatusCode: resp.StatusCode, Body: respBody}
	}
	return respBody, nil
}
