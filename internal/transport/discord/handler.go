package discord

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/pkg/conv"
	"github.com/sandevgo/factbot/pkg/log"
)

const (
	maxMessageLen  = 2000
	typingInterval = 8 * time.Second
	userIDPrefix   = "discord_"

	errorNotice = "Sorry, something went wrong while I was thinking about that. Please try again in a moment."
)

// api is the part of the discordgo session the handler needs.
type api interface {
	ChannelTyping(channelID string, options ...discordgo.RequestOption) error
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type handler struct {
	conv   Conversation
	router core.CmdRouter
}

func (h *handler) onMessage(ctx context.Context, s api, selfID string, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == selfID || m.Author.Bot {
		return
	}

	input := stripMention(m.Content, selfID)
	if input == "" {
		return
	}

	chat := core.Chat{UserID: userIDPrefix + m.Author.ID, LocationID: m.ChannelID}
	logger := log.FromCtx(ctx).With().Str("chat", chat.Key()).Logger()
	ctx = logger.WithContext(ctx)

	if out, ok := h.router.Execute(ctx, chat, input); ok {
		h.send(ctx, s, m.ChannelID, out)
		return
	}

	stop := keepTyping(s, m.ChannelID)
	reply, err := h.conv.HandleMessage(ctx, chat, input)
	stop()

	if err != nil {
		logger.Error().Err(err).Msg("failed to handle message")
		h.send(ctx, s, m.ChannelID, errorNotice)
		return
	}
	h.send(ctx, s, m.ChannelID, reply)
}

func (h *handler) onInteraction(ctx context.Context, s api, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	input := "/" + data.Name
	for _, opt := range data.Options {
		if opt.Type == discordgo.ApplicationCommandOptionString {
			input += " " + opt.StringValue()
		}
	}

	chat := core.Chat{UserID: userIDPrefix + interactionUserID(i), LocationID: i.ChannelID}
	logger := log.FromCtx(ctx).With().Str("chat", chat.Key()).Str("command", data.Name).Logger()
	ctx = logger.WithContext(ctx)

	// Commands may wait on the memory service longer than the 3s ack window
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to acknowledge interaction")
		return
	}

	out, ok := h.router.Execute(ctx, chat, input)
	if !ok || strings.TrimSpace(out) == "" {
		out = errorNotice
	}

	chunks := conv.SplitMessage(out, maxMessageLen)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &chunks[0]}); err != nil {
		logger.Error().Err(err).Msg("failed to edit interaction response")
		return
	}
	for _, chunk := range chunks[1:] {
		if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: chunk}); err != nil {
			logger.Error().Err(err).Msg("failed to send followup")
			return
		}
	}
}

func (h *handler) send(ctx context.Context, s api, channelID, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	for i, chunk := range conv.SplitMessage(text, maxMessageLen) {
		if _, err := s.ChannelMessageSend(channelID, chunk); err != nil {
			log.FromCtx(ctx).Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send discord message")
			return
		}
	}
}

// keepTyping shows the typing indicator until the returned func is called.
func keepTyping(s api, channelID string) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		for {
			_ = s.ChannelTyping(channelID)
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()
	return func() { close(done) }
}

// stripMention removes a leading @bot mention used to address the bot in guilds.
func stripMention(content, selfID string) string {
	content = strings.TrimSpace(content)
	for _, prefix := range []string{"<@" + selfID + ">", "<@!" + selfID + ">"} {
		if strings.HasPrefix(content, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(content, prefix))
		}
	}
	return content
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
