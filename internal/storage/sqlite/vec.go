package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"

	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

const settingEmbeddingDims = "embedding_dims"

var vecOnce sync.Once

// registerVec makes the vec0 module available to every new sqlite3 connection.
func registerVec() {
	vecOnce.Do(vec.Auto)
}

// serializeVector converts a float32 slice to the little-endian blob sqlite-vec expects.
func serializeVector(v []float32) ([]byte, error) {
	blob, err := vec.SerializeFloat32(v)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize vector: %w", err)
	}
	return blob, nil
}

// ensureVecTable creates the document vector index for the embedder's size.
// The size is pinned on first use; reopening with another size is an error.
func ensureVecTable(ctx context.Context, db *sql.DB, dims int) error {
	if dims <= 0 {
		return fmt.Errorf("invalid embedding size %d", dims)
	}

	var stored string
	err := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, settingEmbeddingDims).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)`,
			settingEmbeddingDims, strconv.Itoa(dims),
		); err != nil {
			return fmt.Errorf("failed to save embedding size: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read embedding size: %w", err)
	case stored != strconv.Itoa(dims):
		return fmt.Errorf("database was created for %s-dimensional embeddings, embedder produces %d", stored, dims)
	}

	query := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS documents_vec USING vec0(user_id TEXT PARTITION KEY, embedding float[%d])`,
		dims,
	)
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create vector table: %w", err)
	}
	return nil
}
