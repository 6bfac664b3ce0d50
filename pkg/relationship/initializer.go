package relationship

import (
	"io"
	"log/slog"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/dice"
	"github.com/jwebster45206/npc-engine/pkg/state"
)

// Modifiers applied when seeding a relationship between strangers.
const (
	SeedMin              = -10
	SeedMax              = 29
	SeedLimit            = 75
	OccupationBonus      = 20
	SameFactionBonus     = 15
	FriendlyFactionBonus = 5
	HostileFactionBonus  = -25
	ReciprocalJitter     = 5
)

// CompatibleOccupations lists occupations that tend to get along. The check is
// symmetric, so each pair only needs to appear once.
var CompatibleOccupations = map[string][]string{
	"merchant":   {"blacksmith", "farmer", "innkeeper", "noble"},
	"blacksmith": {"guard", "farmer"},
	"guard":      {"noble", "priest", "innkeeper"},
	"farmer":     {"innkeeper", "priest"},
	"priest":     {"scholar", "noble"},
	"scholar":    {"noble"},
}

// FriendlyFactions and HostileFactions are unordered faction pairs.
var (
	FriendlyFactions = [][2]string{
		{"merchants_guild", "city_watch"},
		{"temple", "city_watch"},
		{"merchants_guild", "nobility"},
		{"farmers_union", "temple"},
	}
	HostileFactions = [][2]string{
		{"thieves_guild", "city_watch"},
		{"thieves_guild", "merchants_guild"},
		{"cult", "temple"},
		{"bandits", "farmers_union"},
	}
)

// OccupationsCompatible reports whether either occupation lists the other.
func OccupationsCompatible(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" || b == "" {
		return false
	}
	return listed(CompatibleOccupations[a], b) || listed(CompatibleOccupations[b], a)
}

// FactionBonus returns the seed modifier for two factions. Unaffiliated NPCs
// share nothing.
func FactionBonus(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return SameFactionBonus
	}
	if pairListed(FriendlyFactions, a, b) {
		return FriendlyFactionBonus
	}
	if pairListed(HostileFactions, a, b) {
		return HostileFactionBonus
	}
	return 0
}

func listed(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func pairListed(pairs [][2]string, a, b string) bool {
	for _, p := range pairs {
		if (p[0] == a && p[1] == b) || (p[0] == b && p[1] == a) {
			return true
		}
	}
	return false
}

// Initializer seeds relationships between NPCs that meet for the first time.
type Initializer struct {
	registry state.NPCRegistry
	graph    *Graph
	rng      dice.Source
	logger   *slog.Logger
}

func NewInitializer(registry state.NPCRegistry, graph *Graph, rng dice.Source, logger *slog.Logger) *Initializer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Initializer{registry: registry, graph: graph, rng: rng, logger: logger}
}

// InitializeRelationships creates a forward and a reciprocal record for every
// pair at the location with no relationship in either direction. It returns
// the number of pairs created.
func (in *Initializer) InitializeRelationships(locationID string, now int64) int {
	npcs := in.registry.NPCsInLocation(locationID)
	created := 0
	for i := 0; i < len(npcs); i++ {
		for j := i + 1; j < len(npcs); j++ {
			a, b := npcs[i], npcs[j]
			if in.graph.Has(a.ID, b.ID) {
				continue
			}

			value := dice.Between(in.rng, SeedMin, SeedMax)
			if OccupationsCompatible(a.Occupation, b.Occupation) {
				value += OccupationBonus
			}
			value += FactionBonus(a.Faction, b.Faction)
			value = Clamp(value, -SeedLimit, SeedLimit)

			reciprocal := value + dice.Between(in.rng, -ReciprocalJitter, ReciprocalJitter)
			reciprocal = Clamp(reciprocal, -SeedLimit, SeedLimit)

			in.graph.Set(a.ID, b.ID, value, now)
			in.graph.Set(b.ID, a.ID, reciprocal, now)
			created++

			in.logger.Debug("Relationship seeded",
				"location", locationID,
				"npc_a", a.ID,
				"npc_b", b.ID,
				"value", value,
				"reciprocal", reciprocal,
				"type", TypeFor(value).String())
		}
	}
	return created
}
