package scheduler

import (
	"fmt"
	"strconv"
	"strings"

	"sado-notes-be/pkg/apperror"

	"github.com/google/uuid"
)

type Cadence string

const (
	Hourly Cadence = "hourly"
	Daily  Cadence = "daily"

	DefaultTimeOfDay = "09:00"
)

// Trigger is the firing rule of a recurring reminder. Hour and Minute are
// only meaningful for Daily.
type Trigger struct {
	Cadence Cadence
	Hour    int
	Minute  int
}

// Spec renders the trigger as a standard five-field cron expression.
func (t Trigger) Spec() string {
	if t.Cadence == Hourly {
		return "0 * * * *"
	}
	return fmt.Sprintf("%d %d * * *", t.Minute, t.Hour)
}

func (t Trigger) String() string {
	if t.Cadence == Hourly {
		return "hourly@:00"
	}
	return fmt.Sprintf("daily@%02d:%02d", t.Hour, t.Minute)
}

// TriggerFor derives a trigger from a stored cadence and optional time of day.
// Daily falls back to DefaultTimeOfDay when no time is given.
func TriggerFor(cadence string, timeOfDay *string) (Trigger, error) {
	switch Cadence(strings.ToLower(strings.TrimSpace(cadence))) {
	case Hourly:
		return Trigger{Cadence: Hourly}, nil
	case Daily, "":
		raw := DefaultTimeOfDay
		if timeOfDay != nil && strings.TrimSpace(*timeOfDay) != "" {
			raw = *timeOfDay
		}
		hour, minute, err := ParseTimeOfDay(raw)
		if err != nil {
			return Trigger{}, err
		}
		return Trigger{Cadence: Daily, Hour: hour, Minute: minute}, nil
	default:
		return Trigger{}, apperror.Validation(fmt.Sprintf("unsupported notify_type %q", cadence)).
			WithDetails(map[string]string{"notify_type": "must be hourly or daily"})
	}
}

// ParseTimeOfDay accepts a 24h "HH:MM" value.
func ParseTimeOfDay(raw string) (int, int, error) {
	invalid := apperror.Validation(fmt.Sprintf("invalid notify_time %q", raw)).
		WithDetails(map[string]string{"notify_time": "must be HH:MM (24h)"})

	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, invalid
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, invalid
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, invalid
	}
	return hour, minute, nil
}

// JobKey identifies the single reminder job of a note.
type JobKey struct {
	UserID uuid.UUID
	NoteID uuid.UUID
}

func (k JobKey) String() string {
	return fmt.Sprintf("notify_%s_%s", k.UserID, k.NoteID)
}
