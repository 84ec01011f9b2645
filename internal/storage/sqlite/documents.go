package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/factbot/internal/core"
)

// Facts is the vector-searchable document collection of a single user.
type Facts struct {
	store  *Store
	userID string
}

func (f *Facts) Query(ctx context.Context, text string, topK int) ([]core.Document, error) {
	if topK <= 0 {
		return []core.Document{}, nil
	}

	vector, err := f.store.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	blob, err := serializeVector(vector)
	if err != nil {
		return nil, err
	}

	// Lower distance is closer
	rows, err := f.store.db.QueryContext(ctx, `
		WITH knn AS (
			SELECT rowid, distance
			FROM documents_vec
			WHERE embedding MATCH ? AND k = ? AND user_id = ?
		)
		SELECT d.id, d.content, d.created_at
		FROM knn
		JOIN documents d ON d.seq = knn.rowid
		ORDER BY knn.distance`,
		blob, topK, f.userID,
	)
	if err != nil {
		return nil, fmt.Errorf("document search failed: %w", err)
	}
	defer rows.Close()

	docs := []core.Document{}
	for rows.Next() {
		var d core.Document
		if err := rows.Scan(&d.ID, &d.Content, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (f *Facts) CreateDocument(ctx context.Context, content string) (core.Document, error) {
	docs, err := f.CreateDocuments(ctx, []string{content})
	if err != nil {
		return core.Document{}, err
	}
	return docs[0], nil
}

// CreateDocuments writes all documents in one transaction. Content the user
// already has is returned as stored instead of being duplicated.
func (f *Facts) CreateDocuments(ctx context.Context, contents []string) ([]core.Document, error) {
	vectors := make([][]byte, len(contents))
	for i, c := range contents {
		v, err := f.store.embedder.Embed(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("embed document: %w", err)
		}
		if vectors[i], err = serializeVector(v); err != nil {
			return nil, err
		}
	}

	tx, err := f.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	docs := make([]core.Document, 0, len(contents))
	for i, c := range contents {
		doc, err := insertDocument(ctx, tx, f.userID, c, vectors[i])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit documents: %w", err)
	}
	return docs, nil
}

func insertDocument(ctx context.Context, tx *sql.Tx, userID, content string, blob []byte) (core.Document, error) {
	doc := core.Document{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	// 1. Insert metadata, keeping the existing row on exact duplicates
	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, user_id, content, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, content) DO NOTHING`,
		doc.ID, userID, doc.Content, doc.CreatedAt,
	)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to insert document: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return core.Document{}, err
	}
	if n == 0 {
		var existing core.Document
		err := tx.QueryRowContext(ctx,
			`SELECT id, content, created_at FROM documents WHERE user_id = ? AND content = ?`,
			userID, content,
		).Scan(&existing.ID, &existing.Content, &existing.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return core.Document{}, fmt.Errorf("document vanished during insert: %w", core.ErrNotFound)
		}
		return existing, err
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return core.Document{}, err
	}

	// 2. Insert the vector under the same rowid
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents_vec (rowid, user_id, embedding) VALUES (?, ?, ?)`,
		seq, userID, blob,
	); err != nil {
		return core.Document{}, fmt.Errorf("failed to insert document vector: %w", err)
	}

	return doc, nil
}
