package stone

import "strings"

// Size is the number of stones in the catalog. Owning all of them is a
// complete collection.
const Size = 6

// Stone is a catalog entry. AcquiredFrom is only set on stones held in a
// user's collection, never on the catalog itself.
type Stone struct {
	ID           string `json:"id" firestore:"id"`
	Name         string `json:"name" firestore:"name"`
	Color        string `json:"color" firestore:"color"`
	Power        string `json:"power" firestore:"power"`
	AcquiredFrom string `json:"acquiredFrom,omitempty" firestore:"acquiredFrom,omitempty"`
}

const (
	Power   = "power"
	Space   = "space"
	Reality = "reality"
	Soul    = "soul"
	Time    = "time"
	Mind    = "mind"
)

var catalog = [Size]Stone{
	{ID: Power, Name: "Power Stone", Color: "purple", Power: "Destructive Energy"},
	{ID: Space, Name: "Space Stone", Color: "blue", Power: "Spatial Manipulation"},
	{ID: Reality, Name: "Reality Stone", Color: "red", Power: "Reality Warping"},
	{ID: Soul, Name: "Soul Stone", Color: "orange", Power: "Soul Manipulation"},
	{ID: Time, Name: "Time Stone", Color: "green", Power: "Time Manipulation"},
	{ID: Mind, Name: "Mind Stone", Color: "yellow", Power: "Mental Manipulation"},
}

// All returns the catalog in its fixed order. The slice is a copy.
func All() []Stone {
	result := make([]Stone, Size)
	copy(result, catalog[:])
	return result
}

// Find looks a stone up by id.
func Find(id string) (Stone, bool) {
	for _, s := range catalog {
		if s.ID == id {
			return s, true
		}
	}
	return Stone{}, false
}

// WithAcquiredFrom returns a copy of s annotated with where it came from.
// Blank annotations are dropped.
func WithAcquiredFrom(s Stone, from string) Stone {
	s.AcquiredFrom = strings.TrimSpace(from)
	return s
}
