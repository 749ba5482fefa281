package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fetchdl/fetchdl/internal/domain"
	"github.com/fetchdl/fetchdl/internal/repository"
)

// fakeStore only serves Stats; the health surface touches nothing else.
type fakeStore struct {
	stats    *repository.QueueStats
	statsErr error
}

func (s *fakeStore) EnqueueRequest(ctx context.Context, userID, url string, messageID int) (string, error) {
	return "", nil
}
func (s *fakeStore) PendingRequests(ctx context.Context) ([]domain.Request, error) { return nil, nil }
func (s *fakeStore) DeleteRequest(ctx context.Context, id string) error            { return nil }
func (s *fakeStore) StoreResolvedURL(ctx context.Context, url, userID string, kind domain.URLKind) (string, error) {
	return "", nil
}
func (s *fakeStore) ResolvedURL(ctx context.Context, id string) (*domain.ResolvedURL, error) {
	return nil, domain.ErrResolvedURLNotFound
}
func (s *fakeStore) UpsertUser(ctx context.Context, user domain.User) error { return nil }
func (s *fakeStore) Users(ctx context.Context) ([]domain.User, error)       { return nil, nil }
func (s *fakeStore) Stats(ctx context.Context) (*repository.QueueStats, error) {
	return s.stats, s.statsErr
}

func TestLive(t *testing.T) {
	h := NewHealthHandler(&fakeStore{})

	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q, want ok", resp.Status)
	}
}

func TestReady(t *testing.T) {
	h := NewHealthHandler(&fakeStore{stats: &repository.QueueStats{Pending: 3, Users: 7, Resolved: 2}})

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Queue == nil || resp.Queue.Pending != 3 {
		t.Errorf("Queue = %+v, want pending=3", resp.Queue)
	}
}

func TestReady_StoreDown(t *testing.T) {
	h := NewHealthHandler(&fakeStore{statsErr: errors.New("database is locked")})

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestStats(t *testing.T) {
	h := NewHealthHandler(&fakeStore{stats: &repository.QueueStats{Pending: 1}})

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var resp SystemStats
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.NumGoroutines <= 0 {
		t.Errorf("NumGoroutines = %d, want > 0", resp.NumGoroutines)
	}
	if resp.Queue == nil || resp.Queue.Pending != 1 {
		t.Errorf("Queue = %+v, want pending=1", resp.Queue)
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		name string
		d    string
		want string
	}{
		{"minutes", "5m", "5m"},
		{"hours", "3h25m", "3h 25m"},
		{"days", "50h5m", "2d 2h 5m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := time.ParseDuration(tt.d)
			if err != nil {
				t.Fatalf("parse duration: %v", err)
			}
			if got := formatUptime(d); got != tt.want {
				t.Errorf("formatUptime(%s) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}
