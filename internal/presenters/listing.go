package presenters

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/glizzus/mfp-bot/internal/episode"
	"github.com/glizzus/mfp-bot/internal/repository"
	"github.com/glizzus/mfp-bot/internal/trackevents"
)

// URLResolver turns an episode index into its download URL.
type URLResolver interface {
	Resolve(index int) (string, error)
}

func WriteEpisodes(w io.Writer, entries []episode.Entry, urls URLResolver) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSLUG\tURL")
	for _, e := range entries {
		u, err := urls.Resolve(e.Index)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Index, e.Slug, u)
	}
	return tw.Flush()
}

func WritePlaybackHistory(w io.Writer, records []repository.PlaybackRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No playback recorded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REQUESTED AT\tEPISODE\tLOOP\tCHANNEL\tUSER")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d\t%t\t%s\t%s\n",
			r.RequestedAt.UTC().Format(time.RFC3339),
			r.Episode,
			r.Loop,
			r.ChannelID,
			r.UserID,
		)
	}
	return tw.Flush()
}

func WriteTrackErrors(w io.Writer, errs []trackevents.TrackError) error {
	if len(errs) == 0 {
		_, err := fmt.Fprintln(w, "No track errors")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "AT\tGUILD\tTRACK\tPOSITION\tERROR")
	for _, e := range errs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.At.UTC().Format(time.RFC3339),
			e.GuildID,
			e.TrackID,
			e.Position,
			e.Err,
		)
	}
	return tw.Flush()
}
