package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sandevgo/factbot/internal/config"
	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/pkg/log"
)

// Conversation produces replies to chat messages.
type Conversation interface {
	HandleMessage(ctx context.Context, chat core.Chat, input string) (string, error)
}

type Bot struct {
	session *discordgo.Session
	cfg     *config.DiscordConfig
	handler *handler

	registered []*discordgo.ApplicationCommand
}

func NewBot(
	ctx context.Context,
	cfg *config.DiscordConfig,
	conv Conversation,
	router core.CmdRouter,
) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	bot := &Bot{
		session: s,
		cfg:     cfg,
		handler: &handler{conv: conv, router: router},
	}

	// Handlers run on discordgo goroutines; they share the process context and logger
	s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		bot.handler.onMessage(ctx, s, s.State.User.ID, m)
	})
	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		bot.handler.onInteraction(ctx, s, i)
	})
	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.FromCtx(ctx).Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord bot ready")
	})

	return bot, nil
}

// Start connects to the gateway, registers slash commands and blocks until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("starting discord bot")

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}

	for _, cmd := range applicationCommands(b.handler.router.ListCommands()) {
		created, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.cfg.GuildID, cmd)
		if err != nil {
			logger.Error().Err(err).Str("command", cmd.Name).Msg("failed to register slash command")
			continue
		}
		b.registered = append(b.registered, created)
	}
	logger.Info().Int("count", len(b.registered)).Msg("slash commands registered")

	<-ctx.Done()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	// Guild commands are scoped to a test server; global ones stay registered.
	if b.cfg.GuildID != "" && b.session.State.User != nil {
		for _, cmd := range b.registered {
			if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.cfg.GuildID, cmd.ID); err != nil {
				log.FromCtx(ctx).Warn().Err(err).Str("command", cmd.Name).Msg("failed to delete slash command")
			}
		}
	}
	return b.session.Close()
}

// applicationCommands mirrors the text commands as slash commands.
func applicationCommands(cmds []core.Command) []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(cmds))
	for _, c := range cmds {
		ac := &discordgo.ApplicationCommand{
			Name:        c.Name(),
			Description: c.Description(),
		}
		if c.Name() == "facts" {
			ac.Options = []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "What to look for",
			}}
		}
		out = append(out, ac)
	}
	return out
}
