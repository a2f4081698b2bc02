package channel

// ID addresses a channel record within its graph.
type ID int

// Graph stores channel records addressed by stable IDs. Records are never
// removed.
type Graph struct {
	records []*Channel
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return new(Graph)
}

// Get returns the record with the given id, or nil.
func (g *Graph) Get(id ID) *Channel {
	if id < 0 || int(id) >= len(g.records) {
		return nil
	}
	return g.records[id]
}

// Len returns the number of records stored.
func (g *Graph) Len() int {
	return len(g.records)
}

func (g *Graph) add(c *Channel) ID {
	g.records = append(g.records, c)
	return ID(len(g.records) - 1)
}

// List is an ordered sequence of channels in a graph. A *List may be shared by
// two layers: the producer sees it as outputs and the consumer as inputs, and
// any change made through one is visible through the other.
type List struct {
	graph *Graph
	ids   []ID
}

// NewList creates an empty list over g.
func NewList(g *Graph) *List {
	return &List{graph: g}
}

// Append stores c at the end of the list, numbering it by its position.
func (l *List) Append(c *Channel) *Channel {
	c.Index = len(l.ids)
	l.ids = append(l.ids, l.graph.add(c))
	return c
}

// Len returns the number of channels in the list.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.ids)
}

// At returns the i-th channel, or nil when out of range.
func (l *List) At(i int) *Channel {
	if l == nil || i < 0 || i >= len(l.ids) {
		return nil
	}
	return l.graph.Get(l.ids[i])
}

// First returns the first channel, or nil for an empty list.
func (l *List) First() *Channel {
	return l.At(0)
}

// Each calls fn for every channel in order until fn returns false.
func (l *List) Each(fn func(c *Channel) bool) {
	if l == nil {
		return
	}
	for _, id := range l.ids {
		if !fn(l.graph.Get(id)) {
			return
		}
	}
}

// IDs returns a copy of the id sequence.
func (l *List) IDs() []ID {
	if l == nil {
		return nil
	}
	return append([]ID(nil), l.ids...)
}

// Graph returns the graph the list lives in.
func (l *List) Graph() *Graph {
	return l.graph
}
