package honcho

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sandevgo/factbot/internal/core"
)

type session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	LocationID string    `json:"location_id"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  timestamp `json:"created_at"`
}

func (s session) toCore(userID string) core.Session {
	return core.Session{
		ID:         s.ID,
		UserID:     userID,
		LocationID: s.LocationID,
		Active:     s.IsActive,
		CreatedAt:  s.CreatedAt.Time,
	}
}

type message struct {
	ID        string    `json:"id"`
	IsUser    bool      `json:"is_user"`
	Content   string    `json:"content"`
	CreatedAt timestamp `json:"created_at"`
}

func (m message) toCore() core.Turn {
	return core.Turn{ID: m.ID, IsUser: m.IsUser, Content: m.Content, CreatedAt: m.CreatedAt.Time}
}

func (c *Client) sessionPath(ctx context.Context, sess core.Session) (string, error) {
	user, err := c.userPath(ctx, sess.UserID)
	if err != nil {
		return "", err
	}
	return user + "/sessions/" + url.PathEscape(sess.ID), nil
}

// ListSessions returns the open sessions of the pair, most recent first.
func (c *Client) ListSessions(ctx context.Context, userID, locationID string) ([]core.Session, error) {
	query := url.Values{}
	query.Set("location_id", locationID)
	query.Set("is_active", "true")
	query.Set("reverse", "true")

	user, err := c.userPath(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := listAll[session](ctx, c, user+"/sessions", query)
	if err != nil {
		return nil, err
	}

	out := make([]core.Session, 0, len(items))
	for _, s := range items {
		if s.IsActive {
			out = append(out, s.toCore(userID))
		}
	}
	return out, nil
}

func (c *Client) CreateSession(ctx context.Context, userID, locationID string) (core.Session, error) {
	user, err := c.userPath(ctx, userID)
	if err != nil {
		return core.Session{}, err
	}

	var s session
	body := map[string]any{"location_id": locationID}
	if err := c.do(ctx, http.MethodPost, user+"/sessions", nil, body, &s); err != nil {
		return core.Session{}, err
	}
	return s.toCore(userID), nil
}

func (c *Client) CloseSession(ctx context.Context, sess core.Session) error {
	path, err := c.sessionPath(ctx, sess)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) ListMessages(ctx context.Context, sess core.Session) ([]core.Turn, error) {
	path, err := c.sessionPath(ctx, sess)
	if err != nil {
		return nil, err
	}

	items, err := listAll[message](ctx, c, path+"/messages", nil)
	if err != nil {
		return nil, err
	}

	turns := make([]core.Turn, len(items))
	for i, m := range items {
		turns[i] = m.toCore()
	}
	return turns, nil
}

func (c *Client) CreateMessage(ctx context.Context, sess core.Session, isUser bool, content string) (core.Turn, error) {
	path, err := c.sessionPath(ctx, sess)
	if err != nil {
		return core.Turn{}, err
	}

	body := map[string]any{"is_user": isUser, "content": content}

	var m message
	if err := c.do(ctx, http.MethodPost, path+"/messages", nil, body, &m); err != nil {
		return core.Turn{}, err
	}
	return m.toCore(), nil
}
