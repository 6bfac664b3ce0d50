package narrative

import (
	"fmt"
	"hash/fnv"
)

var fallbackTemplates = map[string][]string{
	"conversation": {
		"%[1]s and %[2]s chat for a while at the %[3]s.",
		"%[1]s exchanges a few words with %[2]s.",
		"%[1]s and %[2]s share the latest gossip at the %[3]s.",
	},
	"trade": {
		"%[1]s and %[2]s haggle over a deal at the %[3]s.",
		"%[1]s trades a few goods with %[2]s.",
	},
	"conflict": {
		"%[1]s and %[2]s argue loudly at the %[3]s.",
		"%[1]s exchanges sharp words with %[2]s.",
	},
	"collaboration": {
		"%[1]s and %[2]s work together on a task at the %[3]s.",
		"%[1]s lends %[2]s a helping hand.",
	},
}

// Fallback returns a template description of the scene. The same scene always
// yields the same text.
func Fallback(s Scene) string {
	first, second := s.First.DisplayName(), s.Second.DisplayName()
	place := DisplayName(s.Location)
	if place == "" {
		place = "square"
	}

	templates, ok := fallbackTemplates[s.Kind]
	if !ok {
		return fmt.Sprintf("%s and %s cross paths.", first, second)
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(s.Kind + "|" + s.First.ID + "|" + s.Second.ID + "|" + s.Location))
	tmpl := templates[int(h.Sum32()%uint32(len(templates)))]
	return fmt.Sprintf(tmpl, first, second, place)
}
