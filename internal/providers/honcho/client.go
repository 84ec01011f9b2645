package honcho

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/factbot/internal/config"
	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/pkg/log"
	"github.com/sandevgo/factbot/pkg/retry"
)

// Client talks to the Honcho memory service REST API.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	app        string
	collection string
	pageSize   int
	retrier    *retry.Retrier

	apps        *idCache
	users       *idCache
	collections *idCache
}

func NewClient(cfg *config.HonchoConfig, retrier *retry.Retrier) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Client{
		http:        &http.Client{Timeout: 30 * time.Second},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		app:         cfg.AppName,
		collection:  cfg.Collection,
		pageSize:    pageSize,
		retrier:     retrier,
		apps:        newIDCache(),
		users:       newIDCache(),
		collections: newIDCache(),
	}
}

// APIError is a non-2xx answer from Honcho.
type APIError struct {
	Code int
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("honcho http %d: %s", e.Code, e.Body)
}

func (e *APIError) Transient() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Is lets callers match a 404 with core.ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == core.ErrNotFound && e.Code == http.StatusNotFound
}

// idCache maps Honcho names to server ids for the process lifetime.
type idCache struct {
	mu  sync.Mutex
	ids map[string]string
}

func newIDCache() *idCache {
	return &idCache{ids: make(map[string]string)}
}

func (c *idCache) get(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.ids[name]
	return id, ok
}

func (c *idCache) put(name, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[name] = id
}

type named struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// getOrCreate looks a resource up by name under base and creates it on 404.
func (c *Client) getOrCreate(ctx context.Context, base, name string) (string, error) {
	var n named
	err := c.do(ctx, http.MethodGet, base+"/name/"+url.PathEscape(name), nil, nil, &n)
	if err == nil {
		return n.ID, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return "", fmt.Errorf("get %q: %w", name, err)
	}

	if err := c.do(ctx, http.MethodPost, base, nil, map[string]any{"name": name}, &n); err != nil {
		return "", fmt.Errorf("create %q: %w", name, err)
	}
	log.FromCtx(ctx).Info().Str("name", name).Str("id", n.ID).Str("under", base).Msg("honcho resource created")
	return n.ID, nil
}

func (c *Client) appPath(ctx context.Context) (string, error) {
	if id, ok := c.apps.get(c.app); ok {
		return "/apps/" + url.PathEscape(id), nil
	}

	id, err := c.getOrCreate(ctx, "/apps", c.app)
	if err != nil {
		return "", fmt.Errorf("app: %w", err)
	}
	c.apps.put(c.app, id)
	return "/apps/" + url.PathEscape(id), nil
}

// userPath resolves the app and the user to their ids, creating both on first use.
func (c *Client) userPath(ctx context.Context, userID string) (string, error) {
	app, err := c.appPath(ctx)
	if err != nil {
		return "", err
	}

	id, ok := c.users.get(userID)
	if !ok {
		if id, err = c.getOrCreate(ctx, app+"/users", userID); err != nil {
			return "", fmt.Errorf("user: %w", err)
		}
		c.users.put(userID, id)
	}
	return app + "/users/" + url.PathEscape(id), nil
}

// do sends a JSON request and decodes the answer into out, retrying transient failures.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	return c.retrier.Do(ctx, func() error {
		return retry.Classify(ctx, c.once(ctx, method, target, payload, out))
	})
}

func (c *Client) once(ctx context.Context, method, target string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", core.BotUserAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

// page is the paginated list envelope.
type page[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// listAll walks every page of a list endpoint.
func listAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("page_size", fmt.Sprint(c.pageSize))

	var all []T
	for n := 1; ; n++ {
		query.Set("page", fmt.Sprint(n))

		var p page[T]
		if err := c.do(ctx, http.MethodGet, path, query, nil, &p); err != nil {
			return nil, err
		}
		all = append(all, p.Items...)

		if len(p.Items) == 0 || n >= p.Pages {
			return all, nil
		}
	}
}

// timestamp accepts Honcho's ISO times with or without a zone.
type timestamp struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unknown time format %q", s)
}
