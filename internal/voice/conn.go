package voice

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Conn is the part of a voice connection a call needs.
// discordConn adapts *discordgo.VoiceConnection to it.
type Conn interface {
	ChannelID() string
	ChangeChannel(channelID string, mute, deaf bool) error
	Speaking(speaking bool) error
	Send() chan<- []byte
	Disconnect() error
}

// Dialer opens (or moves) the voice connection of a guild.
type Dialer func(ctx context.Context, guildID, channelID string) (Conn, error)

type voiceJoiner interface {
	ChannelVoiceJoin(gID, cID string, mute, deaf bool) (*discordgo.VoiceConnection, error)
}

// DiscordDialer joins voice channels through a discordgo session.
// The bot joins neither muted nor deafened.
func DiscordDialer(s voiceJoiner) Dialer {
	return func(_ context.Context, guildID, channelID string) (Conn, error) {
		vc, err := s.ChannelVoiceJoin(guildID, channelID, false, false)
		if err != nil {
			return nil, err
		}
		return &discordConn{vc: vc}, nil
	}
}

type discordConn struct {
	vc *discordgo.VoiceConnection
}

func (c *discordConn) ChannelID() string {
	c.vc.RLock()
	defer c.vc.RUnlock()
	return c.vc.ChannelID
}

func (c *discordConn) ChangeChannel(channelID string, mute, deaf bool) error {
	return c.vc.ChangeChannel(channelID, mute, deaf)
}

func (c *discordConn) Speaking(speaking bool) error {
	return c.vc.Speaking(speaking)
}

func (c *discordConn) Send() chan<- []byte {
	return c.vc.OpusSend
}

func (c *discordConn) Disconnect() error {
	return c.vc.Disconnect()
}

var _ Conn = (*discordConn)(nil)
