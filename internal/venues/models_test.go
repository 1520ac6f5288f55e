package venues

import (
	"testing"

	"github.com/shopspring/decimal"

	"karaoke/internal/session"
)

func TestUpdateColumns(t *testing.T) {
	playing := &session.NowPlaying{ID: 4, SpotID: "bar_1", SongName: "A"}
	cols := updateColumns(session.Update{
		Patches: []session.Patch{
			session.PlaybackPatch{CurrentSinging: playing, TimeElapsed: 0},
			session.ElapsedPatch{TimeElapsed: 45, TimeIsUp: false},
		},
		At: testAt,
	})

	if _, ok := cols["spots"]; ok {
		t.Error("spots should not be written by a playback update")
	}
	if cols["time_elapsed"] != 45 {
		t.Errorf("expected later patch to win, got %v", cols["time_elapsed"])
	}
	current, ok := cols["current_singing"].(JSONValue[*session.NowPlaying])
	if !ok || current.Data == nil || current.Data.ID != 4 {
		t.Errorf("unexpected current_singing column %#v", cols["current_singing"])
	}
	if cols["last_updated"] != testAt {
		t.Errorf("expected last_updated stamp, got %v", cols["last_updated"])
	}
}

func TestJSONValueRoundTrip(t *testing.T) {
	in := NewJSONValue([]session.HistoryEntry{{ID: 9, SongName: "A", Price: decimal.RequireFromString("2.5")}})
	raw, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var out JSONValue[[]session.HistoryEntry]
	if err := out.Scan([]byte(raw.(string))); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(out.Data) != 1 || out.Data[0].ID != 9 || !out.Data[0].Price.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("unexpected round trip %+v", out.Data)
	}

	var empty JSONValue[*session.NowPlaying]
	if err := empty.Scan(nil); err != nil || empty.Data != nil {
		t.Errorf("expected nil data from NULL, got %+v err=%v", empty.Data, err)
	}
	if err := empty.Scan(42); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestDocumentStateRoundTrip(t *testing.T) {
	state := session.VenueState{
		VenueName:   "Sip & Sing",
		Spots:       session.InitializeSeats(),
		SongQueue:   []session.QueueEntry{{ID: "q", SpotID: "table_2", SongName: "B"}},
		TimeElapsed: 12,
		LastUpdated: testAt,
	}
	got := documentFromState("v1", state).toState()
	if got.VenueName != state.VenueName || len(got.Spots) != 20 || got.SongQueue[0].ID != "q" || got.TimeElapsed != 12 {
		t.Errorf("unexpected state %+v", got)
	}
}
