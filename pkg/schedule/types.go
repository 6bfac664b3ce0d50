// Package schedule resolves where each NPC is and what it is doing at a given
// clock time. Each NPC owns one Timeline holding hourly routine entries,
// day-of-week overrides and one-off special appointments; lookups resolve them
// by priority: special > weekly > hourly > synthesized default.
package schedule

import (
	"encoding/json"
	"fmt"
)

// RestingActivity is the activity of the synthesized fallback entry.
const RestingActivity = "Resting"

// Entry is one hourly interval of a daily routine: [StartHour, EndHour).
type Entry struct {
	LocationID string `json:"location_id"`
	StartHour  int    `json:"start_hour"`
	EndHour    int    `json:"end_hour"`
	Activity   string `json:"activity"`
}

// Covers reports whether the hour falls inside the entry.
func (e Entry) Covers(hour int) bool {
	return hour >= e.StartHour && hour < e.EndHour
}

// Valid reports whether the entry is a non-empty interval within a day.
func (e Entry) Valid(hoursPerDay int) bool {
	return e.StartHour >= 0 && e.StartHour < hoursPerDay &&
		e.EndHour > e.StartHour && e.EndHour <= hoursPerDay
}

// Appointment is a one-off location/activity override in absolute clock minutes.
// A nil EndTime means the appointment never ends once started.
type Appointment struct {
	ID        string `json:"id"`
	Location  string `json:"location"`
	Activity  string `json:"activity"`
	StartTime int64  `json:"start_time"`
	EndTime   *int64 `json:"end_time,omitempty"`
}

// Active reports whether the appointment window [StartTime, EndTime) contains t.
func (a Appointment) Active(t int64) bool {
	if t < a.StartTime {
		return false
	}
	return a.EndTime == nil || t < *a.EndTime
}

// OpenEnded reports whether the appointment has no end time.
func (a Appointment) OpenEnded() bool {
	return a.EndTime == nil
}

// Priority ranks the layers of a timeline.
type Priority int

const (
	PriorityDefault Priority = iota
	PriorityHourly
	PriorityWeekly
	PrioritySpecial
)

func (p Priority) String() string {
	switch p {
	case PriorityDefault:
		return "default"
	case PriorityHourly:
		return "hourly"
	case PriorityWeekly:
		return "weekly"
	case PrioritySpecial:
		return "special"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "default":
		*p = PriorityDefault
	case "hourly":
		*p = PriorityHourly
	case "weekly":
		*p = PriorityWeekly
	case "special":
		*p = PrioritySpecial
	default:
		return fmt.Errorf("unknown schedule priority %q", s)
	}
	return nil
}

// Slot is the single resolved answer to "where is this NPC and what is it doing".
type Slot struct {
	Entry
	Priority      Priority `json:"priority"`
	AppointmentID string   `json:"appointment_id,omitempty"`
}

// LocationChange records one NPC moving during UpdateLocations.
type LocationChange struct {
	NPCID         string `json:"npc_id"`
	OldLocationID string `json:"old_location_id"`
	NewLocationID string `json:"new_location_id"`
	Activity      string `json:"activity"`
}
