package schedule

import (
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/clock"
	"github.com/jwebster45206/npc-engine/pkg/state"
)

const (
	// DefaultDebounce is the minimum clock advance between two UpdateLocations passes.
	DefaultDebounce = 10

	// ForcedActivity labels hours spliced in through InitializeSchedule.
	ForcedActivity = "Visiting"

	// WeeklyActivity labels the full-day entry synthesized from a weekly override.
	WeeklyActivity = "Away for the day"
)

// Scheduler owns the timelines of every managed NPC.
type Scheduler struct {
	registry  state.NPCRegistry
	clock     clock.Clock
	debounce  int64
	timelines map[string]*Timeline
	logger    *slog.Logger

	lastUpdate int64
	updated    bool
}

// NewScheduler creates a scheduler over the given registry.
func NewScheduler(registry state.NPCRegistry, clk clock.Clock, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		registry:  registry,
		clock:     clk.Normalize(),
		debounce:  DefaultDebounce,
		timelines: make(map[string]*Timeline),
		logger:    logger,
	}
}

// WithDebounce sets the minimum clock advance between location updates.
// Returns the Scheduler for method chaining
func (s *Scheduler) WithDebounce(minutes int64) *Scheduler {
	s.debounce = minutes
	return s
}

// Clock returns the calendar the scheduler decomposes time with.
func (s *Scheduler) Clock() clock.Clock {
	return s.clock
}

// InitializeSchedule builds a timeline for the NPC from its occupation template
// if it has none, then splices each forced hour (hour -> location) into the
// hourly layer. Returns false for a nil NPC.
func (s *Scheduler) InitializeSchedule(npc *actor.NPC, forcedLocations map[int]string) bool {
	if npc == nil || npc.ID == "" {
		return false
	}

	tl, ok := s.timelines[npc.ID]
	if !ok {
		tl = &Timeline{Hourly: BuildFromTemplate(npc, s.clock.HoursPerDay)}
		s.timelines[npc.ID] = tl
		s.logger.Debug("Schedule created from template",
			"npc_id", npc.ID,
			"occupation", npc.Occupation,
			"entries", len(tl.Hourly))
	}

	hours := slices.Sorted(maps.Keys(forcedLocations))
	for _, hour := range hours {
		if hour < 0 || hour >= s.clock.HoursPerDay {
			s.logger.Warn("Ignoring forced location outside the day",
				"npc_id", npc.ID,
				"hour", hour)
			continue
		}
		tl.Hourly = Splice(tl.Hourly, Entry{
			LocationID: forcedLocations[hour],
			StartHour:  hour,
			EndHour:    hour + 1,
			Activity:   ForcedActivity,
		})
	}
	return true
}

// Schedule returns a copy of the NPC's hourly layer.
func (s *Scheduler) Schedule(npcID string) ([]Entry, bool) {
	tl, ok := s.timelines[npcID]
	if !ok {
		return nil, false
	}
	return slices.Clone(tl.Hourly), true
}

// SetSchedule replaces the hourly layer. Invalid entries are dropped and the
// rest are applied in order through Splice so the result never overlaps.
func (s *Scheduler) SetSchedule(npcID string, entries []Entry) bool {
	if _, ok := s.registry.GetNPC(npcID); !ok {
		return false
	}
	var hourly []Entry
	for _, e := range entries {
		if !e.Valid(s.clock.HoursPerDay) {
			s.logger.Warn("Dropping invalid schedule entry", "npc_id", npcID, "entry", e)
			continue
		}
		hourly = Splice(hourly, e)
	}
	tl := s.timeline(npcID)
	tl.Hourly = hourly
	return true
}

// SetWeeklyOverride sends the NPC to a location for the whole of a day of the week.
func (s *Scheduler) SetWeeklyOverride(npcID string, day int, locationID string) bool {
	if _, ok := s.registry.GetNPC(npcID); !ok {
		return false
	}
	if day < 0 || day >= s.clock.DaysPerWeek {
		return false
	}
	tl := s.timeline(npcID)
	if tl.Weekly == nil {
		tl.Weekly = make(map[int]string)
	}
	tl.Weekly[day] = locationID
	return true
}

// ClearWeeklyOverride removes the override for a day of the week.
func (s *Scheduler) ClearWeeklyOverride(npcID string, day int) bool {
	tl, ok := s.timelines[npcID]
	if !ok {
		return false
	}
	if _, ok := tl.Weekly[day]; !ok {
		return false
	}
	delete(tl.Weekly, day)
	return true
}

// UpdateLocations moves every managed NPC to where its timeline says it should
// be at currentTime. Calls closer together than the debounce interval are
// ignored. Only NPCs whose location actually changed are reported.
func (s *Scheduler) UpdateLocations(currentTime int64) []LocationChange {
	if s.updated && currentTime-s.lastUpdate < s.debounce {
		return nil
	}
	s.updated = true
	s.lastUpdate = currentTime

	var changes []LocationChange
	for _, npcID := range slices.Sorted(maps.Keys(s.timelines)) {
		npc, ok := s.registry.GetNPC(npcID)
		if !ok {
			continue
		}
		slot, ok := s.resolve(s.timelines[npcID], currentTime)
		if !ok {
			continue
		}
		if slot.LocationID == npc.Location {
			npc.CurrentActivity = slot.Activity
			continue
		}

		change := LocationChange{
			NPCID:         npc.ID,
			OldLocationID: npc.Location,
			NewLocationID: slot.LocationID,
			Activity:      slot.Activity,
		}
		npc.Location = slot.LocationID
		npc.CurrentActivity = slot.Activity
		s.registry.UpdateNPC(npc)
		changes = append(changes, change)

		s.logger.Debug("NPC moved",
			"npc_id", npc.ID,
			"from", change.OldLocationID,
			"to", change.NewLocationID,
			"activity", change.Activity,
			"priority", slot.Priority.String())
	}
	return changes
}

// GetCurrentActivity returns the single slot the NPC occupies at currentTime.
// It reports false only for an unknown NPC.
func (s *Scheduler) GetCurrentActivity(npcID string, currentTime int64) (Slot, bool) {
	npc, ok := s.registry.GetNPC(npcID)
	if !ok {
		return Slot{}, false
	}
	if tl, ok := s.timelines[npcID]; ok {
		if slot, ok := s.resolve(tl, currentTime); ok {
			return slot, true
		}
	}
	hour := s.clock.HourOfDay(currentTime)
	return Slot{
		Entry: Entry{
			LocationID: npc.Location,
			StartHour:  hour,
			EndHour:    hour + 1,
			Activity:   RestingActivity,
		},
		Priority: PriorityDefault,
	}, true
}

// resolve walks the timeline layers in priority order.
func (s *Scheduler) resolve(tl *Timeline, t int64) (Slot, bool) {
	if appt, ok := tl.activeAppointment(t); ok {
		hour := s.clock.HourOfDay(t)
		return Slot{
			Entry: Entry{
				LocationID: appt.Location,
				StartHour:  hour,
				EndHour:    hour + 1,
				Activity:   appt.Activity,
			},
			Priority:      PrioritySpecial,
			AppointmentID: appt.ID,
		}, true
	}
	if loc, ok := tl.Weekly[s.clock.DayOfWeek(t)]; ok {
		return Slot{
			Entry: Entry{
				LocationID: loc,
				StartHour:  0,
				EndHour:    s.clock.HoursPerDay,
				Activity:   WeeklyActivity,
			},
			Priority: PriorityWeekly,
		}, true
	}
	if e, ok := EntryAt(tl.Hourly, s.clock.HourOfDay(t)); ok {
		return Slot{Entry: e, Priority: PriorityHourly}, true
	}
	return Slot{}, false
}

// AddSpecialAppointment inserts an appointment for a known NPC, creating its
// timeline from the occupation template if needed.
func (s *Scheduler) AddSpecialAppointment(npcID string, appt Appointment) bool {
	npc, ok := s.registry.GetNPC(npcID)
	if !ok {
		return false
	}
	if appt.EndTime != nil && *appt.EndTime <= appt.StartTime {
		s.logger.Warn("Rejecting appointment that ends before it starts",
			"npc_id", npcID,
			"start", appt.StartTime,
			"end", *appt.EndTime)
		return false
	}
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	s.InitializeSchedule(npc, nil)
	s.timelines[npcID].insertAppointment(appt)
	return true
}

// CreateSpecialAppointment builds an appointment with a fresh ID and adds it.
func (s *Scheduler) CreateSpecialAppointment(npcID, location, activity string, start int64, end *int64) (Appointment, bool) {
	appt := Appointment{
		ID:        uuid.NewString(),
		Location:  location,
		Activity:  activity,
		StartTime: start,
		EndTime:   end,
	}
	if !s.AddSpecialAppointment(npcID, appt) {
		return Appointment{}, false
	}
	return appt, true
}

// RemoveSpecialAppointment deletes an appointment by ID.
func (s *Scheduler) RemoveSpecialAppointment(npcID, apptID string) bool {
	tl, ok := s.timelines[npcID]
	if !ok {
		return false
	}
	return tl.removeAppointment(apptID)
}

// Appointments returns the NPC's appointments sorted by start time.
func (s *Scheduler) Appointments(npcID string) []Appointment {
	tl, ok := s.timelines[npcID]
	if !ok {
		return nil
	}
	return tl.Clone().Specials
}

// DaySchedule projects the timeline onto the day containing currentTime: the
// hourly layer (or the weekly override as a full-day entry) with every special
// appointment touching that day spliced in. The projection is derived on each
// call, so it always agrees with GetCurrentActivity at hour granularity.
func (s *Scheduler) DaySchedule(npcID string, currentTime int64) ([]Entry, bool) {
	tl, ok := s.timelines[npcID]
	if !ok {
		return nil, false
	}

	var day []Entry
	if loc, ok := tl.Weekly[s.clock.DayOfWeek(currentTime)]; ok {
		day = []Entry{{LocationID: loc, StartHour: 0, EndHour: s.clock.HoursPerDay, Activity: WeeklyActivity}}
	} else {
		day = slices.Clone(tl.Hourly)
	}

	dayStart := s.clock.StartOfDay(currentTime)
	dayEnd := dayStart + s.clock.MinutesPerDay()
	mph := int64(s.clock.MinutesPerHour)
	for _, appt := range tl.Specials {
		start := max(appt.StartTime, dayStart)
		end := dayEnd
		if appt.EndTime != nil {
			end = min(*appt.EndTime, dayEnd)
		}
		if start >= end {
			continue
		}
		startHour := int((start - dayStart) / mph)
		endHour := int((end - dayStart + mph - 1) / mph)
		day = Splice(day, Entry{
			LocationID: appt.Location,
			StartHour:  startHour,
			EndHour:    endHour,
			Activity:   appt.Activity,
		})
	}
	return day, true
}

// Export returns a deep copy of every timeline keyed by NPC ID.
func (s *Scheduler) Export() map[string]*Timeline {
	out := make(map[string]*Timeline, len(s.timelines))
	for id, tl := range s.timelines {
		out[id] = tl.Clone()
	}
	return out
}

// Import replaces all timelines.
func (s *Scheduler) Import(timelines map[string]*Timeline) {
	s.timelines = make(map[string]*Timeline, len(timelines))
	for id, tl := range timelines {
		if tl == nil {
			continue
		}
		s.timelines[id] = tl.Clone()
	}
}

func (s *Scheduler) timeline(npcID string) *Timeline {
	tl, ok := s.timelines[npcID]
	if !ok {
		tl = &Timeline{}
		s.timelines[npcID] = tl
	}
	return tl
}
