package apiclient

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/marcus/studysync/internal/fakeapi"
	"github.com/marcus/studysync/internal/models"
)

func TestReadEvents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		types   []models.SyncEventType
		wantErr error
	}{
		{
			name: "progress then complete",
			input: "data: {\"type\":\"progress\",\"progress\":10,\"message\":\"Fetching\"}\n\n" +
				": keepalive\n\n" +
				"data: {\"type\":\"complete\",\"progress\":100,\"total_added\":2}\n\n",
			types: []models.SyncEventType{models.SyncProgress, models.SyncComplete},
		},
		{
			name:  "bare error",
			input: "data: {\"error\": \"Canvas API not configured\"}\n\n",
			types: []models.SyncEventType{models.SyncError},
		},
		{
			name:  "events after terminal are ignored",
			input: "data: {\"type\":\"error\",\"error\":\"x\"}\n\ndata: {\"type\":\"progress\"}\n\n",
			types: []models.SyncEventType{models.SyncError},
		},
		{
			name:    "cut short",
			input:   "data: {\"type\":\"progress\",\"progress\":50}\n\n",
			types:   []models.SyncEventType{models.SyncProgress},
			wantErr: ErrStreamClosed,
		},
		{
			name:  "terminal without trailing blank line",
			input: "data: {\"type\":\"complete\"}",
			types: []models.SyncEventType{models.SyncComplete},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []models.SyncEventType
			err := readEvents(strings.NewReader(tt.input), func(ev models.SyncEvent) error {
				got = append(got, ev.Type)
				return nil
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("readEvents err = %v, want %v", err, tt.wantErr)
			}
			if strings.Join(typeStrings(got), ",") != strings.Join(typeStrings(tt.types), ",") {
				t.Errorf("events = %v, want %v", got, tt.types)
			}
		})
	}
}

func typeStrings(ts []models.SyncEventType) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}

func TestStreamSyncAgainstFake(t *testing.T) {
	fake := fakeapi.New()
	fake.SyncEvents = []models.SyncEvent{
		{Type: models.SyncProgress, Progress: 30, Assignment: &models.Assignment{ID: "s1", Title: "Quiz", DueAt: "2026-11-03T09:00:00"}},
		{Type: models.SyncComplete, Progress: 100, TotalAdded: 1},
	}
	c := newTestClient(t, fake.Handler())

	var events []models.SyncEvent
	err := c.StreamSync(context.Background(), true, func(ev models.SyncEvent) error {
		events = append(events, ev)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[1].TotalAdded != 1 {
		t.Fatalf("events = %+v", events)
	}
	if _, ok := fake.Assignment("s1"); !ok {
		t.Error("synced assignment not stored by backend")
	}
}

func TestStreamSyncHandlerErrorStops(t *testing.T) {
	fake := fakeapi.New()
	fake.SyncEvents = []models.SyncEvent{
		{Type: models.SyncProgress, Progress: 10},
		{Type: models.SyncProgress, Progress: 20},
		{Type: models.SyncComplete},
	}
	c := newTestClient(t, fake.Handler())

	stop := errors.New("stop")
	seen := 0
	err := c.StreamSync(context.Background(), false, func(models.SyncEvent) error {
		seen++
		return stop
	})
	if !errors.Is(err, stop) || seen != 1 {
		t.Fatalf("err = %v seen = %d", err, seen)
	}
}
