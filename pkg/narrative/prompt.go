package narrative

import (
	"fmt"
	"strings"
)

// Participant is one side of an interaction as the prompt sees it.
type Participant struct {
	ID         string
	Name       string
	Occupation string
	Faction    string
	Activity   string
}

// DisplayName returns the name, or a readable form of the ID.
func (p Participant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return DisplayName(p.ID)
}

// Scene is everything needed to narrate one NPC-to-NPC interaction.
type Scene struct {
	Kind         string // conversation, trade, conflict, collaboration
	Location     string
	First        Participant
	Second       Participant
	Relationship string // relationship type of First toward Second
	Delta        int
}

// MaxSentences is the longest description kept from a generator.
const MaxSentences = 2

const interactionSystemPrompt = `You narrate background events in a living town for a roleplaying game.
Write one or two short sentences in the present tense, third person, describing what the player
might notice. Do not invent new characters. Do not use quotation marks or dialogue tags.
Reply with the description only.`

// BuildInteractionPrompt renders the prompt for an interaction scene.
func BuildInteractionPrompt(s Scene) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Location: %s\n", DisplayName(s.Location))
	writeParticipant(&b, "First", s.First)
	writeParticipant(&b, "Second", s.Second)
	if s.Relationship != "" {
		fmt.Fprintf(&b, "%s regards %s as: %s\n", s.First.DisplayName(), s.Second.DisplayName(), strings.ReplaceAll(s.Relationship, "_", " "))
	}
	fmt.Fprintf(&b, "Interaction: %s (%s)\n", s.Kind, mood(s.Delta))
	b.WriteString("Describe this moment.")
	return Prompt{System: interactionSystemPrompt, User: b.String()}
}

func writeParticipant(b *strings.Builder, label string, p Participant) {
	fmt.Fprintf(b, "%s: %s", label, p.DisplayName())
	if p.Occupation != "" {
		fmt.Fprintf(b, ", %s", p.Occupation)
	}
	if p.Faction != "" {
		fmt.Fprintf(b, " of the %s", DisplayName(p.Faction))
	}
	if p.Activity != "" {
		fmt.Fprintf(b, ", currently %s", strings.ToLower(p.Activity))
	}
	b.WriteString("\n")
}

func mood(delta int) string {
	switch {
	case delta >= 5:
		return "it goes very well"
	case delta > 0:
		return "it goes well"
	case delta == 0:
		return "nothing much comes of it"
	case delta > -5:
		return "it goes a little badly"
	default:
		return "it goes badly"
	}
}
