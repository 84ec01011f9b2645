package honcho

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandevgo/factbot/internal/config"
	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetrier() *retry.Retrier {
	return retry.NewRetrier(&retry.Config{
		MaxRetries:    2,
		BackoffFactor: 1,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
	})
}

func newTestClient(t *testing.T, handler http.Handler, pageSize int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&config.HonchoConfig{
		BaseURL:    srv.URL + "/",
		AppName:    "factbot",
		Collection: "facts",
		PageSize:   pageSize,
	}, fastRetrier())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// serveIdentity answers the app and user lookups: app "factbot" is "app1"
// and user name n is "usr-n".
func serveIdentity(mux *http.ServeMux) {
	mux.HandleFunc("GET /apps/name/factbot", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"id": "app1", "name": "factbot"})
	})
	mux.HandleFunc("GET /apps/app1/users/name/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		writeJSON(w, map[string]any{"id": "usr-" + name, "name": name})
	})
}

func TestClient_Sessions(t *testing.T) {
	var closed atomic.Bool

	mux := http.NewServeMux()
	serveIdentity(mux)
	mux.HandleFunc("GET /apps/app1/users/usr-discord_1/sessions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "chan", r.URL.Query().Get("location_id"))
		assert.Equal(t, "true", r.URL.Query().Get("is_active"))

		items := []map[string]any{}
		if !closed.Load() {
			items = append(items, map[string]any{
				"id": "s1", "location_id": "chan", "is_active": true,
				"created_at": "2024-03-01T10:00:00.123456",
			})
		}
		writeJSON(w, map[string]any{"items": items, "page": 1, "pages": 1})
	})
	mux.HandleFunc("POST /apps/app1/users/usr-discord_1/sessions", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, map[string]any{"id": "s2", "location_id": body["location_id"], "is_active": true})
	})
	mux.HandleFunc("DELETE /apps/app1/users/usr-discord_1/sessions/s1", func(w http.ResponseWriter, r *http.Request) {
		closed.Store(true)
		w.WriteHeader(http.StatusOK)
	})

	c := newTestClient(t, mux, 10)
	ctx := context.Background()

	sessions, err := c.ListSessions(ctx, "discord_1", "chan")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.Equal(t, "discord_1", sessions[0].UserID)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 123456000, time.UTC), sessions[0].CreatedAt)

	require.NoError(t, c.CloseSession(ctx, sessions[0]))

	sessions, err = c.ListSessions(ctx, "discord_1", "chan")
	require.NoError(t, err)
	assert.Empty(t, sessions)

	created, err := c.CreateSession(ctx, "discord_1", "chan")
	require.NoError(t, err)
	assert.Equal(t, core.Session{ID: "s2", UserID: "discord_1", LocationID: "chan", Active: true}, created)
}

func TestClient_MessagesPaginated(t *testing.T) {
	var mu sync.Mutex
	var stored []map[string]any

	mux := http.NewServeMux()
	serveIdentity(mux)
	mux.HandleFunc("GET /apps/app1/users/usr-u/sessions/s1/messages", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
		n, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pages := (len(stored) + size - 1) / size

		start := min((n-1)*size, len(stored))
		end := min(start+size, len(stored))
		writeJSON(w, map[string]any{"items": stored[start:end], "page": n, "pages": pages})
	})
	mux.HandleFunc("POST /apps/app1/users/usr-u/sessions/s1/messages", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		body["id"] = fmt.Sprint("m", len(stored))
		stored = append(stored, body)
		writeJSON(w, body)
	})

	c := newTestClient(t, mux, 2)
	ctx := context.Background()
	sess := core.Session{ID: "s1", UserID: "u"}

	for i := range 5 {
		turn, err := c.CreateMessage(ctx, sess, i%2 == 0, fmt.Sprint("msg ", i))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint("m", i), turn.ID)
	}

	turns, err := c.ListMessages(ctx, sess)
	require.NoError(t, err)
	require.Len(t, turns, 5)
	for i, turn := range turns {
		assert.Equal(t, fmt.Sprint("msg ", i), turn.Content)
		assert.Equal(t, i%2 == 0, turn.IsUser)
	}
}

func TestClient_FactsCollection(t *testing.T) {
	var lookups, creates atomic.Int32
	var created atomic.Bool

	mux := http.NewServeMux()
	serveIdentity(mux)
	mux.HandleFunc("GET /apps/app1/users/usr-u/collections/name/facts", func(w http.ResponseWriter, r *http.Request) {
		lookups.Add(1)
		if !created.Load() {
			http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"id": "col1", "name": "facts"})
	})
	mux.HandleFunc("POST /apps/app1/users/usr-u/collections", func(w http.ResponseWriter, r *http.Request) {
		creates.Add(1)
		created.Store(true)
		writeJSON(w, map[string]any{"id": "col1", "name": "facts"})
	})
	mux.HandleFunc("GET /apps/app1/users/usr-u/collections/col1/query", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Boston", r.URL.Query().Get("query"))
		assert.Equal(t, "10", r.URL.Query().Get("top_k"))
		writeJSON(w, []map[string]any{{"id": "d1", "content": "Lives in Boston"}})
	})
	mux.HandleFunc("POST /apps/app1/users/usr-u/collections/col1/documents", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, map[string]any{"id": "d2", "content": body["content"]})
	})

	c := newTestClient(t, mux, 10)
	ctx := context.Background()

	store, err := c.Facts(ctx, "u")
	require.NoError(t, err)

	docs, err := store.Query(ctx, "Boston", 10)
	require.NoError(t, err)
	assert.Equal(t, []core.Document{{ID: "d1", Content: "Lives in Boston"}}, docs)

	doc, err := store.CreateDocument(ctx, "Has a cat")
	require.NoError(t, err)
	assert.Equal(t, "Has a cat", doc.Content)

	_, err = c.Facts(ctx, "u")
	require.NoError(t, err)

	assert.Equal(t, int32(1), lookups.Load(), "collection id is cached")
	assert.Equal(t, int32(1), creates.Load())
}

func TestClient_Retries(t *testing.T) {
	tests := []struct {
		name      string
		failures  int32
		status    int
		wantCalls int32
		wantErr   bool
	}{
		{name: "recovers from 503", failures: 2, status: http.StatusServiceUnavailable, wantCalls: 3},
		{name: "recovers from 429", failures: 1, status: http.StatusTooManyRequests, wantCalls: 2},
		{name: "gives up after retries", failures: 10, status: http.StatusBadGateway, wantCalls: 3, wantErr: true},
		{name: "client error is not retried", failures: 10, status: http.StatusBadRequest, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			mux := http.NewServeMux()
			serveIdentity(mux)
			mux.HandleFunc("POST /apps/app1/users/usr-u/sessions", func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) <= tt.failures {
					http.Error(w, "nope", tt.status)
					return
				}
				writeJSON(w, map[string]any{"id": "s1", "is_active": true})
			})

			c := newTestClient(t, mux, 10)
			_, err := c.CreateSession(context.Background(), "u", "c")
			if tt.wantErr {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.status, apiErr.Code)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestClient_IdentityGetOrCreate(t *testing.T) {
	var appLookups, appCreates, userLookups, userCreates atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /apps/name/factbot", func(w http.ResponseWriter, r *http.Request) {
		appLookups.Add(1)
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("POST /apps", func(w http.ResponseWriter, r *http.Request) {
		appCreates.Add(1)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "factbot", body["name"])
		writeJSON(w, map[string]any{"id": "a-9", "name": body["name"]})
	})
	mux.HandleFunc("GET /apps/a-9/users/name/discord_7", func(w http.ResponseWriter, r *http.Request) {
		userLookups.Add(1)
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("POST /apps/a-9/users", func(w http.ResponseWriter, r *http.Request) {
		userCreates.Add(1)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "discord_7", body["name"])
		writeJSON(w, map[string]any{"id": "u-3", "name": body["name"]})
	})
	mux.HandleFunc("POST /apps/a-9/users/u-3/sessions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"id": "s1", "location_id": "chan", "is_active": true})
	})
	mux.HandleFunc("DELETE /apps/a-9/users/u-3/sessions/s1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	c := newTestClient(t, mux, 10)
	ctx := context.Background()

	sess, err := c.CreateSession(ctx, "discord_7", "chan")
	require.NoError(t, err)
	assert.Equal(t, "discord_7", sess.UserID)
	require.NoError(t, c.CloseSession(ctx, sess))

	assert.Equal(t, int32(1), appLookups.Load())
	assert.Equal(t, int32(1), appCreates.Load())
	assert.Equal(t, int32(1), userLookups.Load(), "user id is cached")
	assert.Equal(t, int32(1), userCreates.Load())
}

func TestClient_IdentityLookupFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /apps/name/factbot", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	c := newTestClient(t, mux, 10)
	_, err := c.Facts(context.Background(), "u")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Code)
}

func TestAPIError_NotFound(t *testing.T) {
	assert.ErrorIs(t, &APIError{Code: http.StatusNotFound}, core.ErrNotFound)
	assert.NotErrorIs(t, &APIError{Code: http.StatusBadRequest}, core.ErrNotFound)
}
