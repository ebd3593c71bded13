package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/glizzus/mfp-bot/internal/trackevents"
	"github.com/glizzus/mfp-bot/internal/voice"
)

// TrackErrorObserver logs tracks of a guild that fail during playback and
// forwards them to an optional recorder.
type TrackErrorObserver struct {
	guildID  string
	recorder trackevents.Recorder
}

func NewTrackErrorObserver(guildID string, recorder trackevents.Recorder) *TrackErrorObserver {
	return &TrackErrorObserver{guildID: guildID, recorder: recorder}
}

func (o *TrackErrorObserver) HandleTrackEvents(ctx context.Context, events []voice.TrackEvent) {
	errs := make([]trackevents.TrackError, 0, len(events))
	for _, event := range events {
		id := event.Handle.UUID().String()
		slog.ErrorContext(
			ctx,
			"Track encountered an error",
			"guildID", o.guildID,
			"trackID", id,
			"state", event.State.Playing.String(),
			"position", event.State.Position,
			"error", event.State.Err,
		)

		var msg string
		if event.State.Err != nil {
			msg = event.State.Err.Error()
		}
		errs = append(errs, trackevents.TrackError{
			TrackID:  id,
			GuildID:  o.guildID,
			Position: event.State.Position,
			Loops:    event.State.Loops,
			Err:      msg,
			At:       time.Now(),
		})
	}

	if o.recorder == nil || len(errs) == 0 {
		return
	}
	if err := o.recorder.Record(ctx, errs...); err != nil {
		slog.WarnContext(ctx, "Failed to record track errors", "guildID", o.guildID, "error", err)
	}
}

var _ voice.TrackEventHandler = (*TrackErrorObserver)(nil)
