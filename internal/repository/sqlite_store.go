package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fetchdl/fetchdl/internal/domain"
)

// SQLiteStore implements Store on a single SQLite database file. It owns
// the connection: constructed once at process start, closed on shutdown.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// The worker loop and the callback handler write concurrently;
	// serialize through one connection instead of letting a second one
	// hit SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS requests (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			message_id INTEGER NOT NULL,
			url TEXT NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			username TEXT,
			first_name TEXT,
			is_bot INTEGER,
			chat_type TEXT,
			language_code TEXT
		);
		CREATE TABLE IF NOT EXISTS urls (
			id TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			user_id TEXT,
			urlType TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_requests_timestamp ON requests(timestamp);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// EnqueueRequest persists a new download request and returns its ID.
func (s *SQLiteStore) EnqueueRequest(ctx context.Context, userID, url string, messageID int) (string, error) {
	id := newID()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (id, user_id, url, message_id, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, id, userID, url, messageID, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("insert request: %w", err)
	}

	return id, nil
}

// PendingRequests returns all queued requests in FIFO order. The ID
// tiebreak keeps the order stable for rows created within the same
// timestamp granularity.
func (s *SQLiteStore) PendingRequests(ctx context.Context) ([]domain.Request, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, url, message_id, timestamp
		FROM requests
		ORDER BY timestamp ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.Request
	for rows.Next() {
		var req domain.Request
		if err := rows.Scan(&req.ID, &req.UserID, &req.URL, &req.MessageID, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// DeleteRequest removes a request by ID. Unknown IDs are a no-op.
func (s *SQLiteStore) DeleteRequest(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM requests WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return nil
}

// StoreResolvedURL records a classified URL and returns the record ID.
func (s *SQLiteStore) StoreResolvedURL(ctx context.Context, url, userID string, kind domain.URLKind) (string, error) {
	id := newID()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO urls (id, url, user_id, urlType, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, id, url, userID, kind.String(), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("insert resolved url: %w", err)
	}

	return id, nil
}

// ResolvedURL looks up a resolved-URL record by ID.
func (s *SQLiteStore) ResolvedURL(ctx context.Context, id string) (*domain.ResolvedURL, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, url, user_id, urlType, timestamp
		FROM urls
		WHERE id = ?
	`, id)

	var rec domain.ResolvedURL
	var kind string
	if err := row.Scan(&rec.ID, &rec.URL, &rec.UserID, &kind, &rec.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrResolvedURLNotFound
		}
		return nil, fmt.Errorf("query resolved url: %w", err)
	}
	rec.Kind = domain.URLKind(kind)

	return &rec, nil
}

// UpsertUser inserts or replaces a user profile.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user domain.User) error {
	isBot := 0
	if user.IsBot {
		isBot = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO users (user_id, username, first_name, is_bot, chat_type, language_code)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.Username, user.FirstName, isBot, user.ChatType, user.LanguageCode)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

// Users returns all known users.
func (s *SQLiteStore) Users(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, username, first_name, is_bot, chat_type, language_code
		FROM users
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var isBot int
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &isBot, &u.ChatType, &u.LanguageCode); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.IsBot = isBot != 0
		users = append(users, u)
	}

	return users, rows.Err()
}

// Stats returns store counters.
func (s *SQLiteStore) Stats(ctx context.Context) (*QueueStats, error) {
	stats := &QueueStats{}

	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM requests),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM urls)
	`)
	if err := row.Scan(&stats.Pending, &stats.Users, &stats.Resolved); err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}

	return stats, nil
}
