package repository

import (
	"context"

	"github.com/fetchdl/fetchdl/internal/domain"
)

// Store is the durable queue and bookkeeping storage shared by the intake
// handler, the polling worker and the callback handler. Every operation is
// a single atomic statement against the table it touches.
type Store interface {
	// EnqueueRequest persists a new download request and returns its ID.
	// It never blocks on downstream processing.
	EnqueueRequest(ctx context.Context, userID, url string, messageID int) (string, error)

	// PendingRequests returns all queued requests, oldest first.
	PendingRequests(ctx context.Context) ([]domain.Request, error)

	// DeleteRequest removes a request. Deleting an unknown ID is a no-op.
	DeleteRequest(ctx context.Context, id string) error

	// StoreResolvedURL records a classified URL for later interactive
	// re-resolution and returns the record ID.
	StoreResolvedURL(ctx context.Context, url, userID string, kind domain.URLKind) (string, error)

	// ResolvedURL looks up a resolved-URL record by ID.
	ResolvedURL(ctx context.Context, id string) (*domain.ResolvedURL, error)

	// UpsertUser inserts or replaces a user profile keyed by user ID.
	UpsertUser(ctx context.Context, user domain.User) error

	// Users returns all known users.
	Users(ctx context.Context) ([]domain.User, error)

	// Stats returns store counters for the ops surface.
	Stats(ctx context.Context) (*QueueStats, error)
}

// QueueStats contains store counters.
type QueueStats struct {
	Pending  int `json:"pending"`
	Users    int `json:"users"`
	Resolved int `json:"resolved"`
}
