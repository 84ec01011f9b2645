package telegram

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sandevgo/factbot/internal/config"
	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const (
	baseContextKey = "base_context"
	userIDPrefix   = "telegram_"

	errorNotice = "Sorry, something went wrong while I was thinking about that. Please try again in a moment."
)

// Conversation produces replies to chat messages.
type Conversation interface {
	HandleMessage(ctx context.Context, chat core.Chat, input string) (string, error)
}

type Bot struct {
	bot     *tele.Bot
	cfg     *config.TelegramConfig
	conv    Conversation
	router  core.CmdRouter
	sender  *sender
	ownerID int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	conv Conversation,
	router core.CmdRouter,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: cfg.PollTimeout},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		cfg:     cfg,
		conv:    conv,
		router:  router,
		sender:  newSender(b),
		ownerID: cfg.OwnerID,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the owner
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || c.Sender().ID != bot.ownerID {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")

	commands := make([]tele.Command, 0)
	for _, c := range b.router.ListCommands() {
		commands = append(commands, tele.Command{Text: c.Name(), Description: c.Description()})
	}
	if err := b.bot.SetCommands(commands); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to publish bot commands")
	}

	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	chat := core.Chat{
		UserID:     userIDPrefix + strconv.FormatInt(c.Sender().ID, 10),
		LocationID: strconv.FormatInt(c.Chat().ID, 10),
	}
	logger := log.FromCtx(ctx).With().Str("chat", chat.Key()).Logger()
	ctx = logger.WithContext(ctx)

	if out, ok := b.router.Execute(ctx, chat, c.Text()); ok {
		return b.sender.sendMarkdown(ctx, c.Recipient(), out)
	}

	// Notify user we are working
	_ = c.Notify(tele.Typing)

	reply, err := b.conv.HandleMessage(ctx, chat, c.Text())
	if err != nil {
		logger.Error().Err(err).Msg("failed to handle message")
		return c.Send(errorNotice)
	}

	return b.sender.sendMarkdown(ctx, c.Recipient(), reply)
}
