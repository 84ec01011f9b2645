package sqlite

import (
	"context"
	"database/sql"

	"github.com/sandevgo/factbot/internal/core"
)

// Store keeps sessions, messages and per-user facts in one SQLite file.
type Store struct {
	db       *sql.DB
	embedder core.Embedder
}

func NewStore(ctx context.Context, db *sql.DB, embedder core.Embedder) (*Store, error) {
	if err := ensureVecTable(ctx, db, embedder.Dims()); err != nil {
		return nil, err
	}
	return &Store{db: db, embedder: embedder}, nil
}

// Facts returns the fact store of one user. Users never see each other's facts.
func (s *Store) Facts(_ context.Context, userID string) (core.FactStore, error) {
	return &Facts{store: s, userID: userID}, nil
}
