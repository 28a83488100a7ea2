// correlator.go reconciles tool call events with their results, which may
// arrive in either order.
package render

// Status is the lifecycle state of a tool invocation.
type Status int

const (
	StatusPending Status = iota
	StatusComplete
)

// Invocation tracks one tool call from request to completion. Agent is
// the sub-agent label for nested calls, empty for top-level ones.
type Invocation struct {
	ID     string
	Name   string
	Args   string
	Agent  string
	Status Status
	Result string
}

// Correlator matches call events to result events by id. Ids are unique
// only among concurrently pending invocations; the map is reset at every
// turn boundary so reused ids never match stale records.
type Correlator struct {
	order       []string
	invocations map[string]*Invocation
	early       map[string]string // results that arrived before their call
}

// NewCorrelator creates an empty correlator.
func NewCorrelator() *Correlator {
	c := &Correlator{}
	c.Reset()
	return c
}

// Call registers a new invocation. If the matching result already
// arrived, the invocation is completed immediately with the cached
// result and Call returns true. A repeated id replaces the previous
// record in place.
func (c *Correlator) Call(inv *Invocation) bool {
	if _, exists := c.invocations[inv.ID]; !exists {
		c.order = append(c.order, inv.ID)
	}
	c.invocations[inv.ID] = inv

	result, ok := c.early[inv.ID]
	if !ok {
		inv.Status = StatusPending
		return false
	}
	delete(c.early, inv.ID)
	inv.Status = StatusComplete
	inv.Result = result
	return true
}

// Resolve completes the invocation with the given id and returns it.
// If no invocation exists yet (the result raced ahead of its call), the
// result is cached and Resolve returns nil.
func (c *Correlator) Resolve(id, result string) *Invocation {
	inv, ok := c.invocations[id]
	if !ok {
		c.early[id] = result
		return nil
	}
	inv.Status = StatusComplete
	inv.Result = result
	return inv
}

// Pending returns all pending invocations in arrival order.
func (c *Correlator) Pending() []*Invocation {
	var out []*Invocation
	for _, id := range c.order {
		if inv := c.invocations[id]; inv.Status == StatusPending {
			out = append(out, inv)
		}
	}
	return out
}

// HasEarly reports whether a result for the given id is cached awaiting
// its call event.
func (c *Correlator) HasEarly(id string) bool {
	_, ok := c.early[id]
	return ok
}

// Reset discards all records and cached results.
func (c *Correlator) Reset() {
	c.order = nil
	c.invocations = make(map[string]*Invocation)
	c.early = make(map[string]string)
}
