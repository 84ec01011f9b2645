package conversation

import (
	"context"
	"fmt"

	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/internal/service/chain"
	"github.com/sandevgo/factbot/pkg/log"
)

// Service turns an incoming chat message into a reply, keeping the session
// history and the user's facts in memory.
type Service struct {
	memory   core.Memory
	pipeline *chain.Pipeline
	locks    *keyedMutex
}

func NewService(memory core.Memory, pipeline *chain.Pipeline) *Service {
	return &Service{
		memory:   memory,
		pipeline: pipeline,
		locks:    newKeyedMutex(),
	}
}

// HandleMessage runs one message through the pipeline. Messages of the same
// chat are handled one at a time.
func (s *Service) HandleMessage(ctx context.Context, chat core.Chat, input string) (string, error) {
	unlock := s.locks.Lock(chat.Key())
	defer unlock()

	logger := log.FromCtx(ctx).With().Str("user", chat.UserID).Str("location", chat.LocationID).Logger()
	ctx = logger.WithContext(ctx)

	session, err := s.activeSession(ctx, chat)
	if err != nil {
		return "", err
	}

	turns, err := s.memory.ListMessages(ctx, session)
	if err != nil {
		return "", core.ExternalCallError("list messages", err)
	}

	facts, err := s.memory.Facts(ctx, chat.UserID)
	if err != nil {
		return "", core.ExternalCallError("open fact store", err)
	}

	if _, err := s.memory.CreateMessage(ctx, session, true, input); err != nil {
		return "", core.ExternalCallError("save user message", err)
	}

	run := &chain.Run{
		Store:   facts,
		History: chain.ToMessages(turns),
		Input:   input,
	}
	if err := s.pipeline.Execute(ctx, run); err != nil {
		return "", fmt.Errorf("pipeline: %w", err)
	}

	if _, err := s.memory.CreateMessage(ctx, session, false, run.Reply); err != nil {
		logger.Error().Err(err).Str("session", session.ID).Msg("failed to save reply")
	}

	logger.Debug().
		Str("session", session.ID).
		Int("history", len(turns)).
		Int("new_facts", len(run.NewFacts)).
		Int("recalled", len(run.Recalled)).
		Msg("message handled")

	return run.Reply, nil
}

// Restart closes the chat's open session. The next message starts a new one.
func (s *Service) Restart(ctx context.Context, chat core.Chat) error {
	unlock := s.locks.Lock(chat.Key())
	defer unlock()

	sessions, err := s.memory.ListSessions(ctx, chat.UserID, chat.LocationID)
	if err != nil {
		return core.ExternalCallError("list sessions", err)
	}
	if len(sessions) == 0 {
		return fmt.Errorf("open session for %s: %w", chat.Key(), core.ErrNotFound)
	}

	if err := s.memory.CloseSession(ctx, sessions[0]); err != nil {
		return core.ExternalCallError("close session", err)
	}

	log.FromCtx(ctx).Info().Str("session", sessions[0].ID).Str("chat", chat.Key()).Msg("session closed")
	return nil
}

// Facts returns the top facts stored for the user that match query.
func (s *Service) Facts(ctx context.Context, userID, query string, topK int) ([]core.Document, error) {
	store, err := s.memory.Facts(ctx, userID)
	if err != nil {
		return nil, core.ExternalCallError("open fact store", err)
	}
	docs, err := store.Query(ctx, query, topK)
	if err != nil {
		return nil, core.ExternalCallError("query facts", err)
	}
	return docs, nil
}

// activeSession prefers an existing open session over creating one.
func (s *Service) activeSession(ctx context.Context, chat core.Chat) (core.Session, error) {
	sessions, err := s.memory.ListSessions(ctx, chat.UserID, chat.LocationID)
	if err != nil {
		return core.Session{}, core.ExternalCallError("list sessions", err)
	}
	if len(sessions) > 0 {
		return sessions[0], nil
	}

	session, err := s.memory.CreateSession(ctx, chat.UserID, chat.LocationID)
	if err != nil {
		return core.Session{}, core.ExternalCallError("create session", err)
	}
	log.FromCtx(ctx).Info().Str("session", session.ID).Msg("session started")
	return session, nil
}
