package trackevents

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFromValues(t *testing.T) {
	got := fromValues(map[string]any{
		"trackID":  "6f1c9f3e-3a8b-4a8e-9c56-0c1d5b8e7a11",
		"guildID":  "1234567890",
		"position": "1m30s",
		"loops":    "2",
		"error":    "ffmpeg exited: exit status 1",
		"at":       "2024-05-01T12:00:00Z",
	})

	want := TrackError{
		TrackID:  "6f1c9f3e-3a8b-4a8e-9c56-0c1d5b8e7a11",
		GuildID:  "1234567890",
		Position: 90 * time.Second,
		Loops:    2,
		Err:      "ffmpeg exited: exit status 1",
		At:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("track error mismatch (-want +got):\n%s", diff)
	}
}

func TestFromValuesMissingFields(t *testing.T) {
	got := fromValues(map[string]any{"trackID": "abc", "loops": "many"})
	want := TrackError{TrackID: "abc"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("track error mismatch (-want +got):\n%s", diff)
	}
}
