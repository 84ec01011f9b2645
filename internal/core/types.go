package core

import "time"

const (
	BotName          = "FactBot"
	BotUserAgent     = "FactBot/0.1"
	BotRepositoryURL = "https://github.com/sandevgo/factbot"
	BotVersion       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a role-tagged prompt message sent to a language model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is one stored message of a conversation. IsUser never changes after creation.
type Turn struct {
	ID        string    `json:"id"`
	IsUser    bool      `json:"is_user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an ordered conversation scoped to a (user, location) pair.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	LocationID string    `json:"location_id"`
	Active     bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Document is a stored fact returned by the fact store.
type Document struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Chat identifies where a message came from.
type Chat struct {
	UserID     string
	LocationID string
}

func (c Chat) Key() string {
	return c.UserID + "/" + c.LocationID
}
