package interaction

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/dice"
	"github.com/jwebster45206/npc-engine/pkg/narrative"
	"github.com/jwebster45206/npc-engine/pkg/relationship"
	"github.com/jwebster45206/npc-engine/pkg/schedule"
	"github.com/jwebster45206/npc-engine/pkg/state"
)

// Tuning defaults.
const (
	DefaultCooldown         = 60
	DefaultLogLimit         = 500
	DefaultVisibilityChance = 0.7

	// Relationship values past which an interaction type becomes possible.
	conflictThreshold      = -20
	collaborationThreshold = 20
	// Relationship values past which the outcome is biased.
	hostileBias = -50
	warmBias    = 50
	biasChance  = 0.7

	maxScoreRoll     = 50
	reciprocalJitter = 2
)

// ActivityResolver reports what an NPC is doing at a given time.
// *schedule.Scheduler satisfies it.
type ActivityResolver interface {
	GetCurrentActivity(npcID string, currentTime int64) (schedule.Slot, bool)
}

// Visibility decides whether the player notices an interaction.
type Visibility func(r Result) bool

// ChanceVisibility marks interactions visible with probability p.
func ChanceVisibility(rng dice.Source, p float64) Visibility {
	return func(Result) bool {
		return dice.Chance(rng, p)
	}
}

// Engine pairs co-located NPCs and records what happens between them.
type Engine struct {
	registry   state.NPCRegistry
	activities ActivityResolver
	graph      *relationship.Graph
	rng        dice.Source
	narrator   *narrative.Narrator
	visible    Visibility
	cooldown   int64
	logLimit   int
	logger     *slog.Logger

	log      []Result
	lastPair map[string]int64
}

func NewEngine(registry state.NPCRegistry, activities ActivityResolver, graph *relationship.Graph, rng dice.Source, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		registry:   registry,
		activities: activities,
		graph:      graph,
		rng:        rng,
		narrator:   narrative.NewNarrator(nil, logger),
		visible:    ChanceVisibility(rng, DefaultVisibilityChance),
		cooldown:   DefaultCooldown,
		logLimit:   DefaultLogLimit,
		logger:     logger,
		lastPair:   make(map[string]int64),
	}
}

// WithNarrator sets the narrator used for descriptions.
// Returns the Engine for method chaining
func (e *Engine) WithNarrator(n *narrative.Narrator) *Engine {
	if n != nil {
		e.narrator = n
	}
	return e
}

// WithVisibility replaces the visibility predicate.
func (e *Engine) WithVisibility(v Visibility) *Engine {
	if v != nil {
		e.visible = v
	}
	return e
}

// WithCooldown sets how long a pair must wait before interacting again.
func (e *Engine) WithCooldown(minutes int64) *Engine {
	e.cooldown = minutes
	return e
}

// WithLogLimit bounds the interaction log. Non-positive values are ignored.
func (e *Engine) WithLogLimit(n int) *Engine {
	if n > 0 {
		e.logLimit = n
	}
	return e
}

// ProcessInteractions runs one pass of pairing at every occupied location, or
// only at locationID when it is non-empty. It returns the interactions the
// player can see.
func (e *Engine) ProcessInteractions(ctx context.Context, currentTime int64, locationID string) []Result {
	groups := make(map[string][]*actor.NPC)
	if locationID != "" {
		groups[locationID] = e.registry.NPCsInLocation(locationID)
	} else {
		for _, npc := range e.registry.AllNPCs() {
			if npc.Location == "" {
				continue
			}
			groups[npc.Location] = append(groups[npc.Location], npc)
		}
	}

	var visible []Result
	for _, loc := range slices.Sorted(maps.Keys(groups)) {
		npcs := groups[loc]
		if len(npcs) < 2 {
			continue
		}
		available := e.available(npcs, currentTime)
		if len(available) < 2 {
			continue
		}

		rounds := len(available) / 2
		for range rounds {
			if len(available) < 2 {
				break
			}
			i := dice.Pick(e.rng, len(available))
			anchor := available[i]
			available = slices.Delete(available, i, i+1)

			j := e.bestPartner(anchor, available, currentTime)
			if j < 0 {
				continue
			}
			partner := available[j]
			available = slices.Delete(available, j, j+1)

			r := e.interact(ctx, anchor, partner, loc, currentTime)
			if r.IsVisible {
				visible = append(visible, r)
			}
		}
	}
	return visible
}

// available filters out NPCs who are asleep or busy.
func (e *Engine) available(npcs []*actor.NPC, t int64) []*actor.NPC {
	out := make([]*actor.NPC, 0, len(npcs))
	for _, npc := range npcs {
		activity := npc.CurrentActivity
		if e.activities != nil {
			if slot, ok := e.activities.GetCurrentActivity(npc.ID, t); ok {
				activity = slot.Activity
			}
		}
		a := strings.ToLower(activity)
		if strings.Contains(a, "sleep") || strings.Contains(a, "busy") {
			continue
		}
		out = append(out, npc)
	}
	return out
}

// bestPartner returns the index of the highest-scoring candidate not on
// cooldown with the anchor, or -1.
func (e *Engine) bestPartner(anchor *actor.NPC, candidates []*actor.NPC, t int64) int {
	best := -1
	var bestScore float64
	for i, c := range candidates {
		if e.onCooldown(anchor.ID, c.ID, t) {
			continue
		}
		score := dice.Uniform(e.rng, 0, maxScoreRoll) + float64(e.graph.Value(anchor.ID, c.ID))
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func (e *Engine) onCooldown(a, b string, t int64) bool {
	last, ok := e.lastPair[pairKey(a, b)]
	return ok && t-last < e.cooldown
}

// chooseType picks the interaction type for a pair given the anchor's opinion
// of the partner.
func (e *Engine) chooseType(anchor, partner *actor.NPC, value int) Type {
	switch {
	case value <= hostileBias:
		if dice.Chance(e.rng, biasChance) {
			return Conflict
		}
		return Conversation
	case value > warmBias:
		if dice.Chance(e.rng, biasChance) {
			return Collaboration
		}
		return Conversation
	}

	options := []Type{Conversation}
	if TradeCompatible(anchor.Occupation, partner.Occupation) {
		options = append(options, Trade)
	}
	if value < conflictThreshold {
		options = append(options, Conflict)
	}
	if value > collaborationThreshold {
		options = append(options, Collaboration)
	}
	return options[dice.Pick(e.rng, len(options))]
}

func (e *Engine) interact(ctx context.Context, anchor, partner *actor.NPC, loc string, t int64) Result {
	value := e.graph.Value(anchor.ID, partner.ID)
	kind := e.chooseType(anchor, partner, value)
	lo, hi := kind.DeltaRange()
	delta := dice.Between(e.rng, lo, hi)

	var relType string
	if rec := e.graph.Get(anchor.ID, partner.ID); rec != nil {
		relType = rec.Type.String()
	}
	desc := e.narrator.Describe(ctx, narrative.Scene{
		Kind:         kind.String(),
		Location:     loc,
		First:        participant(anchor),
		Second:       participant(partner),
		Relationship: relType,
		Delta:        delta,
	})

	r := Result{
		ID:                 uuid.NewString(),
		NPC1ID:             anchor.ID,
		NPC2ID:             partner.ID,
		Type:               kind,
		Description:        desc,
		RelationshipChange: delta,
		Timestamp:          t,
		Location:           loc,
	}
	r.IsVisible = e.visible(r)

	e.graph.Adjust(anchor.ID, partner.ID, delta, t)
	e.graph.Adjust(partner.ID, anchor.ID, delta+dice.Between(e.rng, -reciprocalJitter, reciprocalJitter), t)
	e.lastPair[pairKey(anchor.ID, partner.ID)] = t
	e.appendLog(r)

	e.logger.Debug("NPC interaction",
		"location", loc,
		"npc1", anchor.ID,
		"npc2", partner.ID,
		"type", kind.String(),
		"delta", delta,
		"visible", r.IsVisible)
	return r
}

func participant(npc *actor.NPC) narrative.Participant {
	return narrative.Participant{
		ID:         npc.ID,
		Name:       npc.Name,
		Occupation: npc.Occupation,
		Faction:    npc.Faction,
		Activity:   npc.CurrentActivity,
	}
}

func (e *Engine) appendLog(r Result) {
	e.log = append(e.log, r)
	if over := len(e.log) - e.logLimit; over > 0 {
		e.log = slices.Clone(e.log[over:])
	}
}
