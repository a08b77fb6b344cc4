package model

// ContainerCatalog holds the container types a user can pick from.
type ContainerCatalog struct {
	Containers []ContainerType `json:"containers"`
}

// DefaultCatalog returns the built-in shipping containers.
func DefaultCatalog() ContainerCatalog {
	return ContainerCatalog{
		Containers: []ContainerType{
			NewContainerType("C1", "40ft", 1200, 230, 240, 1),
			NewContainerType("C2", "20ft", 600, 230, 240, 1),
			NewContainerType("C3", "40ft HC", 1200, 230, 270, 1),
		},
	}
}

// FindByID returns a pointer to the container type with the given ID, or nil.
func (c *ContainerCatalog) FindByID(id string) *ContainerType {
	for i := range c.Containers {
		if c.Containers[i].ID == id {
			return &c.Containers[i]
		}
	}
	return nil
}

// Add appends a container type, replacing any entry with the same ID.
func (c *ContainerCatalog) Add(ct ContainerType) {
	for i := range c.Containers {
		if c.Containers[i].ID == ct.ID {
			c.Containers[i] = ct
			return
		}
	}
	c.Containers = append(c.Containers, ct)
}

// Remove removes a container type by ID. Returns true if found and removed.
func (c *ContainerCatalog) Remove(id string) bool {
	for i, ct := range c.Containers {
		if ct.ID == id {
			c.Containers = append(c.Containers[:i], c.Containers[i+1:]...)
			return true
		}
	}
	return false
}

// Select resolves the selected catalog IDs into container types with a
// quantity of one each, in catalog order. At most limit IDs are honoured, in
// selection order; a limit <= 0 means no limit. Unknown IDs are returned
// separately so callers can report them.
func (c *ContainerCatalog) Select(ids []string, limit int) (selected []ContainerType, unknown []string) {
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		if c.FindByID(id) == nil {
			unknown = append(unknown, id)
			continue
		}
		wanted[id] = true
	}
	for _, ct := range c.Containers {
		if wanted[ct.ID] {
			ct.Quantity = 1
			selected = append(selected, ct)
		}
	}
	return selected, unknown
}
