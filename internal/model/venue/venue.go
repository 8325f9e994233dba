package venue

import "fmt"

// Exhibition is a show currently on display.
type Exhibition struct {
	Title   string `json:"title"`
	Desc    string `json:"desc"`
	Gallery int    `json:"gallery"`
}

func (e Exhibition) String() string {
	return fmt.Sprintf("*%s* — %s (Gallery %d)", e.Title, e.Desc, e.Gallery)
}

// MenuItem is something the café serves.
type MenuItem struct {
	Item string `json:"item"`
	Desc string `json:"desc"`
}

func (m MenuItem) String() string {
	return fmt.Sprintf("%s: %s", m.Item, m.Desc)
}

// Event is a scheduled happening.
type Event struct {
	Name     string `json:"name"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

func (e Event) String() string {
	return fmt.Sprintf("%s at %s in %s", e.Name, e.Time, e.Location)
}

// Catalog bundles everything the concierge knows about the venue.
type Catalog struct {
	Exhibitions []Exhibition `json:"exhibitions"`
	Menu        []MenuItem   `json:"menu"`
	Events      []Event      `json:"events"`
}

// Seed provides the default Canyon catalog.
func Seed() Catalog {
	return Catalog{
		Exhibitions: []Exhibition{
			{Title: "Reflections in Real Time", Desc: "18 minutes of gorgeous glitch.", Gallery: 3},
			{Title: "Neon Aftermath", Desc: "Immersive light and sound.", Gallery: 1},
			{Title: "Postmodern Picnic", Desc: "Edible installations. Yes, really.", Gallery: 2},
		},
		Menu: []MenuItem{
			{Item: "Matcha Cloud Latte", Desc: "Frothy, dreamy, green."},
			{Item: "Pixel Croissant", Desc: "Flaky, meta, delicious."},
			{Item: "Glitch Salad", Desc: "Looks wrong, tastes right."},
		},
		Events: []Event{
			{Name: "Artist Q&A: Ada Loop", Time: "2:00 PM", Location: "Auditorium"},
			{Name: "Live Coding Demo", Time: "4:00 PM", Location: "Gallery 3"},
		},
	}
}
