package handler

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// ReplySink answers a single command message. Delivery failures are logged
// and otherwise ignored.
type ReplySink struct {
	session DiscordSession
	message *discordgo.Message
}

func NewReplySink(s DiscordSession, m *discordgo.Message) *ReplySink {
	return &ReplySink{session: s, message: m}
}

// Reply answers the command message with a reply that references it.
func (r *ReplySink) Reply(ctx context.Context, content string) {
	_, err := r.session.ChannelMessageSendReply(r.message.ChannelID, content, r.message.Reference())
	if err != nil {
		slog.ErrorContext(ctx, "Failed to send reply", "channelID", r.message.ChannelID, "error", err)
	}
}

// Say posts a plain message to the command's channel.
func (r *ReplySink) Say(ctx context.Context, content string) {
	_, err := r.session.ChannelMessageSend(r.message.ChannelID, content)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to send message", "channelID", r.message.ChannelID, "error", err)
	}
}

func (r *ReplySink) sendError(ctx context.Context, err *UserError) {
	if err.Reply {
		r.Reply(ctx, err.Message)
		return
	}
	r.Say(ctx, err.Message)
}
