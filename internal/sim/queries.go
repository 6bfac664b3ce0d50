package sim

import (
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/interaction"
	"github.com/jwebster45206/npc-engine/pkg/memory"
	"github.com/jwebster45206/npc-engine/pkg/schedule"
)

// npc looks up a live NPC pointer under the lock.
func (s *Simulation) npc(id string) (*actor.NPC, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.GetNPC(id)
}

// NPCs returns copies of every NPC ordered by ID.
func (s *Simulation) NPCs() []actor.NPC {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.world.AllNPCs()
	out := make([]actor.NPC, 0, len(all))
	for _, npc := range all {
		out = append(out, *npc.Clone())
	}
	return out
}

// NPC returns a copy of one NPC.
func (s *Simulation) NPC(id string) (actor.NPC, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	npc, ok := s.world.GetNPC(id)
	if !ok {
		return actor.NPC{}, false
	}
	return *npc.Clone(), true
}

// CurrentActivity resolves what the NPC is doing at the current clock.
func (s *Simulation) CurrentActivity(id string) (schedule.Slot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.GetCurrentActivity(id, s.world.Clock)
}

// DaySchedule projects the NPC's routine for the current day with weekly
// overrides and appointments applied.
func (s *Simulation) DaySchedule(id string) ([]schedule.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.DaySchedule(id, s.world.Clock)
}

func (s *Simulation) Appointments(id string) []schedule.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.Appointments(id)
}

// ScheduleAppointment books a special appointment. end may be nil for an
// open-ended one.
func (s *Simulation) ScheduleAppointment(npcID, location, activity string, start int64, end *int64) (schedule.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.world.GetNPC(npcID); !ok {
		return schedule.Appointment{}, ErrNPCNotFound
	}
	if location == "" {
		return schedule.Appointment{}, ErrInvalidAppointment
	}
	appt, ok := s.scheduler.CreateSpecialAppointment(npcID, location, activity, start, end)
	if !ok {
		return schedule.Appointment{}, ErrInvalidAppointment
	}
	return appt, nil
}

func (s *Simulation) CancelAppointment(npcID, apptID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.RemoveSpecialAppointment(npcID, apptID)
}

// Relationships lists the NPC's outgoing relationships. It reports false
// for an unknown NPC.
func (s *Simulation) Relationships(id string) ([]interaction.Relationship, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.world.GetNPC(id); !ok {
		return nil, false
	}
	rels := s.interactions.NPCRelationships(id)
	for i := range rels {
		rels[i].NPC = rels[i].NPC.Clone()
	}
	return rels, true
}

// RelationshipValue returns owner's value toward other, 0 if none.
func (s *Simulation) RelationshipValue(owner, other string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Value(owner, other)
}

func (s *Simulation) LocationInteractions(locationID string, limit int) []interaction.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interactions.RecentLocationInteractions(locationID, limit)
}

func (s *Simulation) InteractionsBetween(a, b string) []interaction.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interactions.InteractionsBetween(a, b)
}

// Memory returns a copy of what the NPC remembers of the player.
func (s *Simulation) Memory(id string) (*memory.Memory, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.memories.Get(id)
	if m == nil {
		return nil, false
	}
	return m.Clone(), true
}
