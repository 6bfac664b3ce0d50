package actor

// NPC represents a non-player character in the game
type NPC struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Occupation      string   `json:"occupation,omitempty"`       // e.g. "merchant", "guard", "blacksmith"
	Faction         string   `json:"faction,omitempty"`          // e.g. "merchants_guild", "city_watch"
	Disposition     string   `json:"disposition,omitempty"`      // e.g. "hostile", "neutral", "friendly"
	Description     string   `json:"description,omitempty"`      // short description or backstory
	IsImportant     bool     `json:"important,omitempty"`        // whether this NPC is important to the story
	Location        string   `json:"location,omitempty"`         // where the NPC is currently located
	Home            string   `json:"home,omitempty"`             // where the NPC sleeps
	Workplace       string   `json:"workplace,omitempty"`        // where the NPC works
	CurrentActivity string   `json:"current_activity,omitempty"` // set by the scheduler
	Items           []string `json:"items,omitempty"`            // items the NPC has or can give
}

// HomeOrLocation returns the NPC's home, or its current location if it has none.
func (n *NPC) HomeOrLocation() string {
	if n.Home != "" {
		return n.Home
	}
	return n.Location
}

// WorkplaceOrLocation returns the NPC's workplace, or its current location if it has none.
func (n *NPC) WorkplaceOrLocation() string {
	if n.Workplace != "" {
		return n.Workplace
	}
	return n.Location
}

// Clone returns a copy that does not share slices with n.
func (n *NPC) Clone() *NPC {
	if n == nil {
		return nil
	}
	c := *n
	if n.Items != nil {
		c.Items = append([]string(nil), n.Items...)
	}
	return &c
}
