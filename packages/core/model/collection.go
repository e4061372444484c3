package model

// Collection holds saved copies of request definitions.
type Collection struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Requests []RequestDefinition `json:"requests"`
}

// Save stores a copy of def, replacing any saved request with the same ID.
// Later edits to the draft do not change the saved copy.
func (c *Collection) Save(def *RequestDefinition) {
	saved := *def.Clone()
	for i := range c.Requests {
		if c.Requests[i].ID == def.ID {
			c.Requests[i] = saved
			return
		}
	}
	c.Requests = append(c.Requests, saved)
}

// Find returns a copy of the saved request with the given ID.
func (c *Collection) Find(id string) (*RequestDefinition, bool) {
	for i := range c.Requests {
		if c.Requests[i].ID == id {
			return c.Requests[i].Clone(), true
		}
	}
	return nil, false
}

// Remove deletes the saved request with the given ID.
func (c *Collection) Remove(id string) bool {
	for i := range c.Requests {
		if c.Requests[i].ID == id {
			c.Requests = append(c.Requests[:i], c.Requests[i+1:]...)
			return true
		}
	}
	return false
}
