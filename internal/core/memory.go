package core

import "context"

type SessionStore interface {
	// ListSessions returns the open sessions of the pair, most recent first.
	ListSessions(ctx context.Context, userID, locationID string) ([]Session, error)
	CreateSession(ctx context.Context, userID, locationID string) (Session, error)
	CloseSession(ctx context.Context, session Session) error
	ListMessages(ctx context.Context, session Session) ([]Turn, error)
	CreateMessage(ctx context.Context, session Session, isUser bool, content string) (Turn, error)
}

type FactStore interface {
	Query(ctx context.Context, text string, topK int) ([]Document, error)
	CreateDocument(ctx context.Context, content string) (Document, error)
}

// BatchFactStore is implemented by stores that can persist several facts atomically.
type BatchFactStore interface {
	FactStore
	CreateDocuments(ctx context.Context, contents []string) ([]Document, error)
}

// Memory is the session service plus per-user fact stores.
type Memory interface {
	SessionStore
	Facts(ctx context.Context, userID string) (FactStore, error)
}
