package venue

// Store exposes venue knowledge to the reply rules.
type Store interface {
	Exhibitions() []Exhibition
	Menu() []MenuItem
	Events() []Event
}

// MemoryStore implements Store over a fixed Catalog.
type MemoryStore struct {
	catalog Catalog
}

// NewMemoryStore returns a MemoryStore holding a copy of catalog.
func NewMemoryStore(catalog Catalog) *MemoryStore {
	return &MemoryStore{catalog: Catalog{
		Exhibitions: append([]Exhibition(nil), catalog.Exhibitions...),
		Menu:        append([]MenuItem(nil), catalog.Menu...),
		Events:      append([]Event(nil), catalog.Events...),
	}}
}

func (s *MemoryStore) Exhibitions() []Exhibition {
	return append([]Exhibition(nil), s.catalog.Exhibitions...)
}

func (s *MemoryStore) Menu() []MenuItem {
	return append([]MenuItem(nil), s.catalog.Menu...)
}

func (s *MemoryStore) Events() []Event {
	return append([]Event(nil), s.catalog.Events...)
}
