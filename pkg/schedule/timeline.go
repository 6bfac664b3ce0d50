package schedule

import (
	"cmp"
	"slices"
)

// Timeline is the complete schedule of one NPC.
type Timeline struct {
	Hourly   []Entry        `json:"hourly"`
	Weekly   map[int]string `json:"weekly,omitempty"`   // day of week -> location
	Specials []Appointment  `json:"specials,omitempty"` // sorted by StartTime
}

// Clone returns a deep copy.
func (tl *Timeline) Clone() *Timeline {
	c := &Timeline{
		Hourly:   slices.Clone(tl.Hourly),
		Specials: make([]Appointment, len(tl.Specials)),
	}
	for i, a := range tl.Specials {
		if a.EndTime != nil {
			end := *a.EndTime
			a.EndTime = &end
		}
		c.Specials[i] = a
	}
	if tl.Weekly != nil {
		c.Weekly = make(map[int]string, len(tl.Weekly))
		for d, loc := range tl.Weekly {
			c.Weekly[d] = loc
		}
	}
	return c
}

// EntryAt returns the hourly entry covering the hour.
func EntryAt(entries []Entry, hour int) (Entry, bool) {
	for _, e := range entries {
		if e.Covers(hour) {
			return e, true
		}
	}
	return Entry{}, false
}

// Splice inserts ins into a sorted, non-overlapping entry list. Every existing
// entry overlapping ins is split into the part before ins and the part after
// it; empty remainders are dropped. The result is sorted by start hour and
// adjacent entries with the same location and activity are merged.
func Splice(entries []Entry, ins Entry) []Entry {
	out := make([]Entry, 0, len(entries)+2)
	for _, e := range entries {
		if e.EndHour <= ins.StartHour || e.StartHour >= ins.EndHour {
			out = append(out, e)
			continue
		}
		if e.StartHour < ins.StartHour {
			before := e
			before.EndHour = ins.StartHour
			out = append(out, before)
		}
		if e.EndHour > ins.EndHour {
			after := e
			after.StartHour = ins.EndHour
			out = append(out, after)
		}
	}
	out = append(out, ins)
	SortEntries(out)
	return Merge(out)
}

// SortEntries orders entries by start hour.
func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.StartHour, b.StartHour)
	})
}

// Merge joins adjacent entries that share location and activity.
// The input must be sorted.
func Merge(entries []Entry) []Entry {
	if len(entries) < 2 {
		return entries
	}
	out := entries[:1]
	for _, e := range entries[1:] {
		last := &out[len(out)-1]
		if last.EndHour == e.StartHour && last.LocationID == e.LocationID && last.Activity == e.Activity {
			last.EndHour = e.EndHour
			continue
		}
		out = append(out, e)
	}
	return out
}

// Overlapping reports whether any two entries in a sorted list overlap.
func Overlapping(entries []Entry) bool {
	for i := 1; i < len(entries); i++ {
		if entries[i].StartHour < entries[i-1].EndHour {
			return true
		}
	}
	return false
}

// insertAppointment adds a into the specials list keeping it sorted by start
// time. An appointment with the same ID is replaced.
func (tl *Timeline) insertAppointment(a Appointment) {
	tl.removeAppointment(a.ID)
	i, _ := slices.BinarySearchFunc(tl.Specials, a.StartTime, func(x Appointment, t int64) int {
		if x.StartTime <= t {
			return -1
		}
		return 1
	})
	tl.Specials = slices.Insert(tl.Specials, i, a)
}

func (tl *Timeline) removeAppointment(id string) bool {
	n := len(tl.Specials)
	tl.Specials = slices.DeleteFunc(tl.Specials, func(a Appointment) bool { return a.ID == id })
	return len(tl.Specials) != n
}

// activeAppointment returns the most recently started appointment covering t.
func (tl *Timeline) activeAppointment(t int64) (Appointment, bool) {
	for i := len(tl.Specials) - 1; i >= 0; i-- {
		if tl.Specials[i].Active(t) {
			return tl.Specials[i], true
		}
	}
	return Appointment{}, false
}
