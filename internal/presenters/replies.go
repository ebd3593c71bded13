package presenters

import (
	"fmt"
	"strings"
)

const (
	JoinWithoutVoiceChannel = "Try again after joining a voice channel! ;)"
	Joined                  = "Joined your channel!"

	EpisodeMissing     = "Enter the number of the episode that you wish to play"
	InvalidSecondArg   = `The second argument should either be "loop" or empty`
	EpisodeNotDigits   = "Please enter the number of the episode in digits"
	NotInChannelToPlay = "Not in a voice channel to play in :c"
	LoopEnabled        = "Loop enabled!"
	NotInVoiceChannel  = "Not in a voice channel"
	AlreadyMuted       = "Already muted"
	NowMuted           = "Now muted"
	NotInChannelUnmute = "Not in a voice channel to be unmuted in"
	NowUnmuted         = "Now unmuted!"
	Goodbye            = "Bye bye!"

	Greeting = "Hello!!!"
)

// EpisodeOutOfRange asks for an index in 1..count.
func EpisodeOutOfRange(count int) string {
	return fmt.Sprintf("Please enter a number between 1..%d", count)
}

func NowPlaying(episode int) string {
	return fmt.Sprintf("Now playing: Episode %d", episode)
}

// Failed reports a failed action, e.g. Failed("mute", err) gives
// "Failed to mute: <err>".
func Failed(action string, err error) string {
	return fmt.Sprintf("Failed to %s: %v", action, err)
}

const helpTemplate = `A bot that plays some tunes to keep you from getting bored!

Commands:

{p}join: Joins the voice channel of the caller. Don't forget to join one before doing so! ;)

{p}play {Track #} [loop]: Starts playing the specified episode. The second argument can be "loop" if you wish to loop the track.
So to play the seventh track and loop it, you'd say:
    {p}play 7 loop

{p}mute: Mutes the bot.

{p}unmute: Unmutes the bot.

{p}leave: Leaves the voice channel.
`

// HelpText is the usage text for commands starting with prefix.
func HelpText(prefix string) string {
	return strings.ReplaceAll(helpTemplate, "{p}", prefix)
}
