package nats

import (
	"encoding/json"
	"testing"
	"time"

	"sado-notes-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "notes.reminder_sent", Subject(events.ReminderSent))
}

func TestEncode(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	raw, err := Encode(events.BaseEvent{
		Type:       events.NoteCreated,
		Data:       map[string]interface{}{"note_id": "n-1"},
		OccurredAt: at,
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "NOTE_CREATED", decoded["type"])
	assert.Equal(t, "2026-01-02T03:04:05Z", decoded["occurred_at"])
	assert.Equal(t, "n-1", decoded["data"].(map[string]interface{})["note_id"])
}
