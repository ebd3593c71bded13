package handler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/glizzus/mfp-bot/internal/episode"
	"github.com/glizzus/mfp-bot/internal/generator"
	"github.com/glizzus/mfp-bot/internal/presenters"
	"github.com/glizzus/mfp-bot/internal/repository"
	"github.com/glizzus/mfp-bot/internal/trackevents"
	"github.com/glizzus/mfp-bot/internal/util"
	"github.com/glizzus/mfp-bot/internal/voice"
	"github.com/google/uuid"
)

const DefaultPrefix = "!"

// greetingTrigger is answered in any channel, without a prefix.
const greetingTrigger = "hi"

// CommandContext is the invocation a command handler answers.
type CommandContext struct {
	AuthorID  string
	ChannelID string
	// GuildID is empty for direct messages.
	GuildID string
	Args    []string
	Replies *ReplySink
	Message *discordgo.Message
}

type command struct {
	name      string
	guildOnly bool
	run       func(ctx context.Context, cmd *CommandContext)
}

// Router parses prefix commands from chat messages and runs them.
type Router struct {
	prefix      string
	registry    voice.Registry
	episodes    *episode.Directory
	voiceStates VoiceStateFinder
	playback    repository.PlaybackRecorder
	trackErrors trackevents.Recorder
	ids         generator.Generator[uuid.UUID]

	commands []command
}

type RouterOption func(*Router)

func WithPrefix(prefix string) RouterOption {
	return func(r *Router) {
		r.prefix = prefix
	}
}

// WithPlaybackRecorder records every accepted play request.
func WithPlaybackRecorder(recorder repository.PlaybackRecorder) RouterOption {
	return func(r *Router) {
		r.playback = recorder
	}
}

// WithTrackErrorRecorder forwards track errors observed in joined calls.
func WithTrackErrorRecorder(recorder trackevents.Recorder) RouterOption {
	return func(r *Router) {
		r.trackErrors = recorder
	}
}

// WithRecordIDGenerator sets the generator for playback record IDs.
func WithRecordIDGenerator(ids generator.Generator[uuid.UUID]) RouterOption {
	return func(r *Router) {
		r.ids = ids
	}
}

func NewRouter(registry voice.Registry, episodes *episode.Directory, voiceStates VoiceStateFinder, opts ...RouterOption) *Router {
	r := &Router{
		prefix:      DefaultPrefix,
		registry:    registry,
		episodes:    episodes,
		voiceStates: voiceStates,
		playback:    repository.NopRecorder{},
		ids:         &generator.UUIDV4Generator{},
	}
	for _, opt := range opts {
		opt(r)
	}

	r.commands = []command{
		{name: "help", run: r.help},
		{name: "join", guildOnly: true, run: r.join},
		{name: "play", guildOnly: true, run: r.play},
		{name: "mute", guildOnly: true, run: r.mute},
		{name: "unmute", guildOnly: true, run: r.unmute},
		{name: "leave", guildOnly: true, run: r.leave},
	}
	return r
}

// MessageCreate is the discordgo handler for chat messages.
func (r *Router) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	r.Handle(context.Background(), s, m.Message)
}

// Handle runs the command in m, if any. Messages from bots and messages that
// do not name a known command are ignored.
func (r *Router) Handle(ctx context.Context, s DiscordSession, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}

	if m.Content == greetingTrigger {
		NewReplySink(s, m).Say(ctx, presenters.Greeting)
		return
	}

	name, args, ok := r.parse(m.Content)
	if !ok {
		return
	}

	cmd, found := util.FindFirst(r.commands, func(c command) bool { return c.name == name })
	if !found {
		return
	}
	if cmd.guildOnly && m.GuildID == "" {
		slog.DebugContext(ctx, "Ignoring guild command outside a guild", "command", name, "userID", m.Author.ID)
		return
	}

	slog.DebugContext(ctx, "Running command", "command", name, "guildID", m.GuildID, "userID", m.Author.ID)
	cmd.run(ctx, &CommandContext{
		AuthorID:  m.Author.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Args:      args,
		Replies:   NewReplySink(s, m),
		Message:   m,
	})
}

func (r *Router) parse(content string) (string, []string, bool) {
	rest, ok := strings.CutPrefix(content, r.prefix)
	if !ok {
		return "", nil, false
	}
	fields := strings.Fields(rest)
	// The command name must directly follow the prefix.
	if len(fields) == 0 || !strings.HasPrefix(rest, fields[0]) {
		return "", nil, false
	}
	return fields[0], fields[1:], true
}

func (r *Router) help(ctx context.Context, cmd *CommandContext) {
	cmd.Replies.Reply(ctx, presenters.HelpText(r.prefix))
}

func (r *Router) join(ctx context.Context, cmd *CommandContext) {
	channelID, ok := r.voiceStates.UserVoiceChannel(cmd.GuildID, cmd.AuthorID)
	if !ok {
		cmd.Replies.Reply(ctx, presenters.JoinWithoutVoiceChannel)
		return
	}

	session, err := r.registry.Join(ctx, cmd.GuildID, channelID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to join voice channel", "guildID", cmd.GuildID, "channelID", channelID, "error", err)
		return
	}

	cmd.Replies.Reply(ctx, presenters.Joined)
	session.AddGlobalEvent(NewTrackErrorObserver(cmd.GuildID, r.trackErrors))

	if err := session.Deafen(ctx, true); err != nil {
		cmd.Replies.Say(ctx, presenters.Failed("deafen", err))
	}
}

type playArgs struct {
	episode int
	loop    bool
}

// parsePlayArgs validates "<episode> [loop]". Checks run in a fixed order so
// the first problem found is the one reported.
func parsePlayArgs(args []string, count int) (playArgs, error) {
	if len(args) == 0 {
		return playArgs{}, &UserError{Message: presenters.EpisodeMissing}
	}

	loop := false
	if len(args) > 1 {
		if !strings.EqualFold(args[1], "loop") {
			return playArgs{}, &UserError{Message: presenters.InvalidSecondArg, Reply: true}
		}
		loop = true
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return playArgs{}, &UserError{Message: presenters.EpisodeNotDigits, Reply: true}
	}
	if n < 1 || n > count {
		return playArgs{}, &UserError{Message: presenters.EpisodeOutOfRange(count), Reply: true}
	}

	return playArgs{episode: n, loop: loop}, nil
}

func (r *Router) play(ctx context.Context, cmd *CommandContext) {
	args, err := parsePlayArgs(cmd.Args, episode.Count())
	if err != nil {
		var userErr *UserError
		if errors.As(err, &userErr) {
			cmd.Replies.sendError(ctx, userErr)
		}
		return
	}

	url, err := r.episodes.Resolve(args.episode)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to resolve episode", "episode", args.episode, "error", err)
		return
	}

	session, ok := r.registry.Get(cmd.GuildID)
	if !ok {
		cmd.Replies.Say(ctx, presenters.NotInChannelToPlay)
		return
	}

	track := session.Play(voice.PlaybackRequest{URL: url})
	if args.loop {
		if err := track.EnableLoop(); err != nil {
			cmd.Replies.Reply(ctx, presenters.Failed("enable loop", err))
		} else {
			cmd.Replies.Reply(ctx, presenters.LoopEnabled)
		}
	}

	cmd.Replies.Say(ctx, presenters.NowPlaying(args.episode))
	r.recordPlayback(ctx, cmd, args)
}

func (r *Router) recordPlayback(ctx context.Context, cmd *CommandContext, args playArgs) {
	id, err := r.ids.Next()
	if err != nil {
		slog.WarnContext(ctx, "Failed to generate playback record ID", "error", err)
		return
	}

	err = r.playback.Save(ctx, repository.PlaybackRecord{
		ID:        id,
		GuildID:   cmd.GuildID,
		ChannelID: cmd.ChannelID,
		UserID:    cmd.AuthorID,
		Episode:   args.episode,
		Loop:      args.loop,
	})
	if err != nil {
		slog.WarnContext(ctx, "Failed to record playback", "guildID", cmd.GuildID, "episode", args.episode, "error", err)
	}
}

func (r *Router) mute(ctx context.Context, cmd *CommandContext) {
	session, ok := r.registry.Get(cmd.GuildID)
	if !ok {
		cmd.Replies.Reply(ctx, presenters.NotInVoiceChannel)
		return
	}

	if session.IsMute() {
		cmd.Replies.Say(ctx, presenters.AlreadyMuted)
		return
	}

	if err := session.Mute(ctx, true); err != nil {
		cmd.Replies.Say(ctx, presenters.Failed("mute", err))
	}
	cmd.Replies.Say(ctx, presenters.NowMuted)
}

func (r *Router) unmute(ctx context.Context, cmd *CommandContext) {
	session, ok := r.registry.Get(cmd.GuildID)
	if !ok {
		cmd.Replies.Say(ctx, presenters.NotInChannelUnmute)
		return
	}

	if err := session.Mute(ctx, false); err != nil {
		cmd.Replies.Say(ctx, presenters.Failed("unmute", err))
	}
	cmd.Replies.Say(ctx, presenters.NowUnmuted)
}

func (r *Router) leave(ctx context.Context, cmd *CommandContext) {
	if _, ok := r.registry.Get(cmd.GuildID); !ok {
		cmd.Replies.Reply(ctx, presenters.NotInVoiceChannel)
		return
	}

	if err := r.registry.Remove(ctx, cmd.GuildID); err != nil {
		cmd.Replies.Say(ctx, presenters.Failed("leave", err))
	}
	cmd.Replies.Say(ctx, presenters.Goodbye)
}
