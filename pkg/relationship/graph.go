package relationship

import "slices"

// Graph stores every NPC's outgoing relationship records. A's record about B
// and B's record about A are independent.
type Graph struct {
	records map[string][]*Record
}

func NewGraph() *Graph {
	return &Graph{records: make(map[string][]*Record)}
}

// Get returns owner's record about other, or nil.
func (g *Graph) Get(owner, other string) *Record {
	for _, r := range g.records[owner] {
		if r.OtherNPCID == other {
			return r
		}
	}
	return nil
}

// Value returns owner's opinion of other. A missing record reads as 0.
func (g *Graph) Value(owner, other string) int {
	if r := g.Get(owner, other); r != nil {
		return r.Value
	}
	return 0
}

// Set writes owner's record about other, clamping the value and deriving the type.
func (g *Graph) Set(owner, other string, value int, now int64) *Record {
	r := g.Get(owner, other)
	if r == nil {
		r = &Record{OtherNPCID: other}
		g.records[owner] = append(g.records[owner], r)
	}
	r.Value = Clamp(value, MinValue, MaxValue)
	r.Type = TypeFor(r.Value)
	r.LastInteractionTime = now
	return r
}

// Adjust shifts owner's opinion of other by delta and returns the new value.
// A missing record starts at 0.
func (g *Graph) Adjust(owner, other string, delta int, now int64) int {
	return g.Set(owner, other, g.Value(owner, other)+delta, now).Value
}

// Records returns copies of owner's records in insertion order.
func (g *Graph) Records(owner string) []Record {
	out := make([]Record, 0, len(g.records[owner]))
	for _, r := range g.records[owner] {
		out = append(out, *r)
	}
	return out
}

// Has reports whether a relationship exists in either direction.
func (g *Graph) Has(a, b string) bool {
	return g.Get(a, b) != nil || g.Get(b, a) != nil
}

// Owners lists every NPC holding at least one record.
func (g *Graph) Owners() []string {
	owners := make([]string, 0, len(g.records))
	for id, recs := range g.records {
		if len(recs) > 0 {
			owners = append(owners, id)
		}
	}
	slices.Sort(owners)
	return owners
}

// Export returns a copy of the whole graph.
func (g *Graph) Export() map[string][]Record {
	out := make(map[string][]Record, len(g.records))
	for owner := range g.records {
		out[owner] = g.Records(owner)
	}
	return out
}

// Import replaces the graph. Values are re-clamped and types re-derived.
func (g *Graph) Import(data map[string][]Record) {
	g.records = make(map[string][]*Record, len(data))
	for owner, recs := range data {
		for _, r := range recs {
			g.Set(owner, r.OtherNPCID, r.Value, r.LastInteractionTime)
		}
	}
}
