package handler

import (
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

type ReadyHandler = func(*discordgo.Session, *discordgo.Ready)
type MessageCreateHandler = func(*discordgo.Session, *discordgo.MessageCreate)
type VoiceStateUpdateHandler = func(*discordgo.Session, *discordgo.VoiceStateUpdate)

var ReadyLog = func(s *discordgo.Session, r *discordgo.Ready) {
	username := r.User.Username
	userID := r.User.ID
	slog.Info("Bot is ready", "username", username, "userID", userID, "guilds", len(r.Guilds))
}

// DiscordSession is the part of *discordgo.Session used to answer commands.
type DiscordSession interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ DiscordSession = (*discordgo.Session)(nil)

// VoiceStateFinder looks up the voice channel a member is connected to.
type VoiceStateFinder interface {
	UserVoiceChannel(guildID, userID string) (string, bool)
}

// StateVoiceFinder answers from discordgo's state cache, which is kept up to
// date as long as the session has the GuildVoiceStates intent.
type StateVoiceFinder struct {
	State *discordgo.State
}

func (f StateVoiceFinder) UserVoiceChannel(guildID, userID string) (string, bool) {
	vs, err := f.State.VoiceState(guildID, userID)
	if err != nil {
		if !errors.Is(err, discordgo.ErrStateNotFound) {
			slog.Debug("Voice state lookup failed", "guildID", guildID, "userID", userID, "error", err)
		}
		return "", false
	}
	if vs.ChannelID == "" {
		return "", false
	}
	return vs.ChannelID, true
}

type Handlers struct {
	Ready            ReadyHandler
	MessageCreate    MessageCreateHandler
	VoiceStateUpdate VoiceStateUpdateHandler
}

// Intents are the gateway intents the bot needs to read prefix commands and
// track who is in which voice channel.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsMessageContent

func NewSession(token string, handlers Handlers) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = Intents

	if handlers.Ready != nil {
		s.AddHandler(handlers.Ready)
	}
	if handlers.MessageCreate != nil {
		s.AddHandler(handlers.MessageCreate)
	}
	if handlers.VoiceStateUpdate != nil {
		s.AddHandler(handlers.VoiceStateUpdate)
	}

	return s, nil
}
