// Package bot is the Telegram-facing surface: it long-polls for updates,
// routes commands, enqueues download requests and serves the "audio only"
// callback.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/fetchdl/fetchdl/internal/domain"
	"github.com/fetchdl/fetchdl/internal/pipeline"
	"github.com/fetchdl/fetchdl/internal/provider"
	"github.com/fetchdl/fetchdl/internal/repository"
	"github.com/fetchdl/fetchdl/pkg/telegram"
)

// API is the slice of the Telegram client the bot uses.
type API interface {
	pipeline.Sender
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
	DeleteMessage(ctx context.Context, chatID string, messageID int) error
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// Fetcher dispatches a URL to its provider. *provider.Dispatcher
// satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts provider.Options) (*domain.FetchResult, error)
}

// Config holds bot configuration.
type Config struct {
	// PollTimeout is the getUpdates server hold time in seconds.
	PollTimeout int
	// CallbackTimeout bounds one audio-only callback's handling.
	CallbackTimeout time.Duration
}

// Bot receives updates and produces queue jobs. It shares only the store
// with the queue worker; the callback path runs its own fetch/deliver
// sequence concurrently with the worker loop.
type Bot struct {
	cfg      Config
	api      API
	store    repository.Store
	fetcher  Fetcher
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// New creates a bot.
func New(cfg Config, api API, store repository.Store, fetcher Fetcher, pl *pipeline.Pipeline, logger *slog.Logger) *Bot {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 30
	}
	if cfg.CallbackTimeout <= 0 {
		cfg.CallbackTimeout = 50 * time.Minute
	}

	return &Bot{
		cfg:      cfg,
		api:      api,
		store:    store,
		fetcher:  fetcher,
		pipeline: pl,
		logger:   logger,
	}
}

// Run long-polls for updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) {
	b.logger.Info("bot update loop started", "poll_timeout", b.cfg.PollTimeout)

	var offset int64
	for {
		if ctx.Err() != nil {
			b.logger.Info("bot update loop stopped")
			return
		}

		updates, err := b.api.GetUpdates(ctx, offset, b.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				b.logger.Info("bot update loop stopped")
				return
			}
			b.logger.Error("get updates failed", "error", err)
			// Back off instead of hammering the API on repeated errors.
			select {
			case <-ctx.Done():
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			b.dispatch(ctx, upd)
		}
	}
}

// dispatch routes one update. Messages are handled inline (store writes
// and a short reply); callbacks download media, so they get their own
// goroutine and must not block the poll loop.
func (b *Bot) dispatch(ctx context.Context, upd telegram.Update) {
	switch {
	case upd.Message != nil:
		b.handleMessage(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		cb := *upd.CallbackQuery
		go func() {
			cbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.cfg.CallbackTimeout)
			defer cancel()
			b.handleCallback(cbCtx, cb)
		}()
	}
}
