package user

import (
	"strings"
	"time"

	"stoneTracker/services/stone"
)

// DefaultName is used when someone signs up without giving a name.
const DefaultName = "Anonymous"

// User is a participant and the stones they currently hold, in the order
// they were acquired. ID is the document key and is not stored in the body.
type User struct {
	ID        string        `json:"id" firestore:"-"`
	Name      string        `json:"name" firestore:"name"`
	Email     string        `json:"email" firestore:"email"`
	Stones    []stone.Stone `json:"stones" firestore:"stones"`
	CreatedAt time.Time     `json:"createdAt" firestore:"createdAt"`
}

// Has reports whether the user holds the stone with the given id.
func (u User) Has(stoneID string) bool {
	for _, s := range u.Stones {
		if s.ID == stoneID {
			return true
		}
	}
	return false
}

func (u User) Count() int {
	return len(u.Stones)
}

// IsComplete reports whether the user holds every stone in the catalog.
func (u User) IsComplete() bool {
	return len(u.Stones) == stone.Size
}

// Progress is the share of the catalog held, as a whole percentage rounded down.
func (u User) Progress() int {
	return len(u.Stones) * 100 / stone.Size
}

// Clone returns a copy that shares no slice with u.
func (u User) Clone() User {
	c := u
	c.Stones = make([]stone.Stone, len(u.Stones))
	copy(c.Stones, u.Stones)
	return c
}

// Profile holds the user editable fields.
type Profile struct {
	Name  string
	Email string
}

// Normalize trims both fields.
func (p Profile) Normalize() Profile {
	return Profile{
		Name:  strings.TrimSpace(p.Name),
		Email: strings.TrimSpace(p.Email),
	}
}
