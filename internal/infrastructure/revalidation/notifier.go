// Package revalidation pushes the resource paths touched by a mutation to an
// external webhook so that cached views of invoices and budgets are refreshed.
package revalidation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/maintledger/backend/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// SecretHeader carries the shared secret expected by the webhook
const SecretHeader = "X-Revalidate-Secret"

const defaultQueueSize = 256

// Payload is the JSON body posted to the webhook
type Payload struct {
	Paths  []string  `json:"paths"`
	SentAt time.Time `json:"sent_at"`
}

// Notifier delivers revalidation requests. Send is synchronous; Enqueue hands
// the paths to a background worker started with Start.
type Notifier struct {
	client      *http.Client
	url         string
	secret      string
	callTimeout time.Duration
	retryCfg    retry.Config
	logger      *zap.Logger

	mu        sync.RWMutex
	closed    bool
	queue     chan []string
	wg        sync.WaitGroup
	startOnce sync.Once
}

// Option configures a Notifier
type Option func(*Notifier)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) {
		n.client = client
	}
}

// WithQueueSize sets the capacity of the background queue
func WithQueueSize(size int) Option {
	return func(n *Notifier) {
		if size > 0 {
			n.queue = make(chan []string, size)
		}
	}
}

// NewNotifier creates a notifier from configuration. With an empty webhook
// URL the notifier is disabled and every call is a no-op.
func NewNotifier(cfg config.RevalidationConfig, logger *zap.Logger, opts ...Option) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	callTimeout := cfg.Timeout
	if callTimeout <= 0 {
		callTimeout = 5 * time.Second
	}
	n := &Notifier{
		client:      &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		url:         cfg.WebhookURL,
		secret:      cfg.Secret,
		callTimeout: callTimeout,
		retryCfg: retry.Config{
			MaxAttempts:   attempts,
			InitialDelay:  cfg.InitialBackoff,
			BackoffPolicy: retry.BackoffExponential,
		},
		logger: logger,
		queue:  make(chan []string, defaultQueueSize),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Enabled reports whether a webhook is configured
func (n *Notifier) Enabled() bool {
	return n.url != ""
}

// Send posts the paths to the webhook, retrying with exponential backoff.
// Each attempt is bounded by the configured timeout.
func (n *Notifier) Send(ctx context.Context, paths []string) error {
	if !n.Enabled() || len(paths) == 0 {
		return nil
	}

	body, err := json.Marshal(Payload{Paths: paths, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode revalidation payload: %w", err)
	}

	r := retry.New[int](n.retryCfg)
	t := timeout.New[int](timeout.Config{DefaultTimeout: n.callTimeout})

	_, err = r.Do(ctx, func(ctx context.Context) (int, error) {
		return t.Execute(ctx, n.callTimeout, func(ctx context.Context) (int, error) {
			return n.post(ctx, body)
		})
	})
	if err != nil {
		return fmt.Errorf("failed to revalidate %d paths: %w", len(paths), err)
	}
	return nil
}

func (n *Notifier) post(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.secret != "" {
		req.Header.Set(SecretHeader, n.secret)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// Enqueue schedules the paths for background delivery. It never blocks; when
// the queue is full the request is dropped and logged.
func (n *Notifier) Enqueue(paths []string) {
	if !n.Enabled() || len(paths) == 0 {
		return
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}
	select {
	case n.queue <- paths:
	default:
		n.logger.Warn("revalidation queue full, dropping paths", zap.Strings("paths", paths))
	}
}

// Start launches the background worker
func (n *Notifier) Start(ctx context.Context) {
	n.startOnce.Do(func() {
		n.wg.Add(1)
		go n.run(ctx)
	})
}

func (n *Notifier) run(ctx context.Context) {
	defer n.wg.Done()
	for paths := range n.queue {
		if err := n.Send(ctx, paths); err != nil {
			n.logger.Warn("revalidation failed",
				zap.Strings("paths", paths),
				zap.Error(err),
			)
			continue
		}
		n.logger.Debug("revalidation sent", zap.Strings("paths", paths))
	}
}

// Stop closes the queue and waits for pending deliveries or ctx expiry
func (n *Notifier) Stop(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
