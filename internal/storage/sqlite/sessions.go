package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/factbot/internal/core"
)

func (s *Store) ListSessions(ctx context.Context, userID, locationID string) ([]core.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, location_id, is_active, created_at
		FROM sessions
		WHERE user_id = ? AND location_id = ? AND is_active = 1
		ORDER BY rowid DESC`,
		userID, locationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []core.Session
	for rows.Next() {
		var sess core.Session
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.LocationID, &sess.Active, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *Store) CreateSession(ctx context.Context, userID, locationID string) (core.Session, error) {
	sess := core.Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		LocationID: locationID,
		Active:     true,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, location_id, is_active, created_at) VALUES (?, ?, ?, 1, ?)`,
		sess.ID, sess.UserID, sess.LocationID, sess.CreatedAt,
	)
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to insert session: %w", err)
	}
	return sess, nil
}

func (s *Store) CloseSession(ctx context.Context, session core.Session) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET is_active = 0, closed_at = ? WHERE id = ? AND is_active = 1`,
		time.Now().UTC(), session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("open session %s: %w", session.ID, core.ErrNotFound)
	}
	return nil
}

func (s *Store) ListMessages(ctx context.Context, session core.Session) ([]core.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, is_user, content, created_at FROM messages WHERE session_id = ? ORDER BY seq ASC`,
		session.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var turns []core.Turn
	for rows.Next() {
		var t core.Turn
		if err := rows.Scan(&t.ID, &t.IsUser, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (s *Store) CreateMessage(ctx context.Context, session core.Session, isUser bool, content string) (core.Turn, error) {
	t := core.Turn{
		ID:        uuid.NewString(),
		IsUser:    isUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, is_user, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, session.ID, t.IsUser, t.Content, t.CreatedAt,
	)
	if err != nil {
		return core.Turn{}, fmt.Errorf("failed to insert message: %w", err)
	}
	return t, nil
}
