// Package worker drains the request queue: one long-lived polling loop
// that processes jobs strictly one at a time.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fetchdl/fetchdl/internal/domain"
	"github.com/fetchdl/fetchdl/internal/pipeline"
	"github.com/fetchdl/fetchdl/internal/provider"
	"github.com/fetchdl/fetchdl/internal/repository"
	"github.com/fetchdl/fetchdl/pkg/telegram"
)

// ErrShutdownTimeout is returned when the processor doesn't stop within
// the timeout.
var ErrShutdownTimeout = errors.New("worker shutdown timed out")

// Fetcher dispatches a URL to its provider. *provider.Dispatcher
// satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts provider.Options) (*domain.FetchResult, error)
}

// Config holds processor configuration.
type Config struct {
	// PollInterval is the sleep between drain passes.
	PollInterval time.Duration
	// JobTimeout bounds one job's full handling. Exceeding it fails
	// that job, not the loop.
	JobTimeout time.Duration
}

// Processor is the polling queue worker. Per drain pass it snapshots the
// pending list and, per job: dispatch, deliver, delete. Deletion is
// unconditional — success and failure both consume the job exactly once;
// there is no retry queue.
type Processor struct {
	cfg      Config
	store    repository.Store
	fetcher  Fetcher
	pipeline *pipeline.Pipeline
	sender   pipeline.Sender
	logger   *slog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a processor.
func New(cfg Config, store repository.Store, fetcher Fetcher, pl *pipeline.Pipeline, sender pipeline.Sender, logger *slog.Logger) *Processor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 50 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		cfg:      cfg,
		store:    store,
		fetcher:  fetcher,
		pipeline: pl,
		sender:   sender,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the polling loop.
func (p *Processor) Start() {
	p.logger.Info("starting queue worker", "poll_interval", p.cfg.PollInterval)

	p.wg.Add(1)
	go p.run()
}

// Stop gracefully stops the loop, waiting for an in-flight job to finish.
func (p *Processor) Stop(timeout time.Duration) error {
	p.logger.Info("stopping queue worker")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("queue worker stopped")
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}

func (p *Processor) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	// Drain whatever survived the last process lifetime before the
	// first tick.
	p.drain()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.drain()
		}
	}
}

// drain processes one snapshot of the pending list in FIFO order.
func (p *Processor) drain() {
	requests, err := p.store.PendingRequests(p.ctx)
	if err != nil {
		p.logger.Error("list pending requests failed", "error", err)
		return
	}
	if len(requests) == 0 {
		return
	}

	p.logger.Info("draining queue", "pending", len(requests))

	for _, req := range requests {
		if p.ctx.Err() != nil {
			return
		}
		p.process(req)
	}
}

// process handles one job end to end. Nothing it does can take down the
// loop: every failure is reported to the user and the job is deleted.
func (p *Processor) process(req domain.Request) {
	logger := p.logger.With("request_id", req.ID, "user_id", req.UserID)
	logger.Info("processing request", "url", req.URL)

	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.JobTimeout)
	defer cancel()

	result, err := p.fetcher.Fetch(ctx, req.URL, provider.Options{})
	if err != nil {
		logger.Warn("fetch failed", "error", err)
		p.notifyFailure(ctx, req, err)
		p.cleanup(req, logger)
		return
	}

	resolvedID, err := p.store.StoreResolvedURL(ctx, req.URL, req.UserID, result.Kind)
	if err != nil {
		// The delivery can still go out, just without the audio button.
		logger.Error("store resolved url failed", "error", err)
		resolvedID = ""
	}

	sent, deliverErr := p.pipeline.Deliver(ctx, req.UserID, req.MessageID, result, resolvedID)
	logger.Info("request delivered", "kind", result.Kind, "items", len(result.Items), "sent", sent, "delivery_error", deliverErr)

	p.cleanup(req, logger)
}

// notifyFailure replies to the original message with the error text.
func (p *Processor) notifyFailure(ctx context.Context, req domain.Request, fetchErr error) {
	text := fmt.Sprintf("❌ Error downloading media: %v", fetchErr)
	if _, err := p.sender.SendMessage(ctx, req.UserID, text, &telegram.SendOptions{ReplyTo: req.MessageID}); err != nil {
		p.logger.Error("send failure notice failed", "request_id", req.ID, "error", err)
	}
}

// cleanup consumes the job. A delete failure leaves it queued; the next
// drain pass retries it verbatim, which at worst duplicates a delivery.
func (p *Processor) cleanup(req domain.Request, logger *slog.Logger) {
	// Detached from the job context: a job timeout must not stop the
	// queue from consuming the job.
	if err := p.store.DeleteRequest(context.Background(), req.ID); err != nil {
		logger.Error("delete request failed", "error", err)
	}
}
