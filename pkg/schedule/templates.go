package schedule

import (
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/actor"
)

// Template placeholders resolved against the NPC when a schedule is built.
const (
	PlaceHome = "home"
	PlaceWork = "work"
)

// Templates are the occupation routines for a 24-hour day. Location IDs other
// than the placeholders are used as-is.
var Templates = map[string][]Entry{
	"merchant": {
		{PlaceHome, 0, 6, "Sleeping"},
		{PlaceHome, 6, 8, "Eating breakfast"},
		{PlaceWork, 8, 18, "Selling wares"},
		{"tavern", 18, 21, "Relaxing at the tavern"},
		{PlaceHome, 21, 24, "Sleeping"},
	},
	"blacksmith": {
		{PlaceHome, 0, 5, "Sleeping"},
		{PlaceWork, 5, 7, "Stoking the forge"},
		{PlaceWork, 7, 19, "Forging"},
		{"tavern", 19, 22, "Drinking with friends"},
		{PlaceHome, 22, 24, "Sleeping"},
	},
	"guard": {
		{PlaceWork, 0, 6, "Keeping the night watch"},
		{PlaceHome, 6, 14, "Sleeping"},
		{"market", 14, 18, "Patrolling"},
		{PlaceWork, 18, 24, "Standing guard"},
	},
	"farmer": {
		{PlaceHome, 0, 5, "Sleeping"},
		{PlaceWork, 5, 12, "Tending the fields"},
		{"market", 12, 15, "Selling produce"},
		{PlaceWork, 15, 19, "Tending the fields"},
		{PlaceHome, 19, 21, "Resting"},
		{PlaceHome, 21, 24, "Sleeping"},
	},
	"innkeeper": {
		{PlaceHome, 0, 2, "Closing up"},
		{PlaceHome, 2, 9, "Sleeping"},
		{"market", 9, 11, "Buying supplies"},
		{PlaceWork, 11, 24, "Serving customers"},
	},
	"priest": {
		{PlaceHome, 0, 5, "Sleeping"},
		{PlaceWork, 5, 7, "Morning prayers"},
		{PlaceWork, 7, 12, "Tending the faithful"},
		{"market", 12, 14, "Almsgiving"},
		{PlaceWork, 14, 20, "Tending the faithful"},
		{PlaceHome, 20, 24, "Sleeping"},
	},
	"scholar": {
		{PlaceHome, 0, 8, "Sleeping"},
		{PlaceWork, 8, 13, "Studying"},
		{"tavern", 13, 14, "Eating lunch"},
		{PlaceWork, 14, 22, "Studying"},
		{PlaceHome, 22, 24, "Sleeping"},
	},
	"noble": {
		{PlaceHome, 0, 9, "Sleeping"},
		{PlaceHome, 9, 12, "Holding court"},
		{"market", 12, 14, "Taking a stroll"},
		{PlaceHome, 14, 19, "Attending to affairs"},
		{"tavern", 19, 23, "Dining out"},
		{PlaceHome, 23, 24, "Sleeping"},
	},
}

// DefaultTemplate is the generic day/night routine for unknown occupations.
var DefaultTemplate = []Entry{
	{PlaceHome, 0, 7, "Sleeping"},
	{PlaceWork, 7, 21, "Going about the day"},
	{PlaceHome, 21, 24, "Sleeping"},
}

// BuildFromTemplate instantiates the occupation routine for an NPC, scaling
// template hours onto a day of hoursPerDay hours.
func BuildFromTemplate(npc *actor.NPC, hoursPerDay int) []Entry {
	tmpl, ok := Templates[strings.ToLower(npc.Occupation)]
	if !ok {
		tmpl = DefaultTemplate
	}

	entries := make([]Entry, 0, len(tmpl))
	for _, e := range tmpl {
		start := e.StartHour * hoursPerDay / 24
		end := e.EndHour * hoursPerDay / 24
		if end <= start {
			continue
		}
		loc := e.LocationID
		switch loc {
		case PlaceHome:
			loc = npc.HomeOrLocation()
		case PlaceWork:
			loc = npc.WorkplaceOrLocation()
		}
		entries = append(entries, Entry{LocationID: loc, StartHour: start, EndHour: end, Activity: e.Activity})
	}
	SortEntries(entries)
	return Merge(entries)
}
