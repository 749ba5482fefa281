package domain

import (
	"time"
)

// Request is a persisted download request: "user X asked for URL Y".
// It lives in the store from enqueue until exactly one processing attempt
// completes, then it is deleted regardless of outcome.
type Request struct {
	ID        string
	UserID    string
	URL       string
	MessageID int
	CreatedAt time.Time
}

// ResolvedURL is a durable record of a URL whose kind has already been
// classified, written after the first successful fetch. Interactive
// actions (the "audio only" button) reference it by ID instead of
// carrying the raw URL in the callback payload.
type ResolvedURL struct {
	ID        string
	URL       string
	UserID    string
	Kind      URLKind
	CreatedAt time.Time
}

// User is the last known profile of someone who messaged the bot.
// Upserted on every inbound message; not a history.
type User struct {
	ID           string
	Username     string
	FirstName    string
	IsBot        bool
	ChatType     string
	LanguageCode string
}
