package honcho

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sandevgo/factbot/internal/core"
)

type document struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt timestamp `json:"created_at"`
}

func (d document) toCore() core.Document {
	return core.Document{ID: d.ID, Content: d.Content, CreatedAt: d.CreatedAt.Time}
}

// Facts returns the user's fact collection, creating it on first use.
func (c *Client) Facts(ctx context.Context, userID string) (core.FactStore, error) {
	user, err := c.userPath(ctx, userID)
	if err != nil {
		return nil, err
	}
	base := user + "/collections"

	id, ok := c.collections.get(userID)
	if !ok {
		if id, err = c.getOrCreate(ctx, base, c.collection); err != nil {
			return nil, fmt.Errorf("collection: %w", err)
		}
		c.collections.put(userID, id)
	}
	return &Collection{client: c, path: base + "/" + url.PathEscape(id)}, nil
}

// Collection is a user's Honcho document collection.
type Collection struct {
	client *Client
	path   string
}

func (c *Collection) Query(ctx context.Context, text string, topK int) ([]core.Document, error) {
	query := url.Values{}
	query.Set("query", text)
	query.Set("top_k", fmt.Sprint(topK))

	var docs []document
	if err := c.client.do(ctx, http.MethodGet, c.path+"/query", query, nil, &docs); err != nil {
		return nil, err
	}

	out := make([]core.Document, len(docs))
	for i, d := range docs {
		out[i] = d.toCore()
	}
	return out, nil
}

func (c *Collection) CreateDocument(ctx context.Context, content string) (core.Document, error) {
	var d document
	if err := c.client.do(ctx, http.MethodPost, c.path+"/documents", nil, map[string]any{"content": content}, &d); err != nil {
		return core.Document{}, err
	}
	return d.toCore(), nil
}
