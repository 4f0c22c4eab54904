package generator

import (
	"fmt"
	"math/rand"
	"time"
)

var (
	adjectives = []string{
		"Cosmic", "Mad", "Mighty", "Silent", "Radiant",
		"Invincible", "Uncanny", "Astonishing", "Sensational", "Savage",
		"Spectacular", "Amazing", "Fantastic", "Incredible", "Unstoppable",
		"Stellar", "Quantum", "Eternal", "Celestial", "Wakandan",
	}
	nouns = []string{
		"Titan", "Guardian", "Avenger", "Sorcerer", "Warden",
		"Ravager", "Watcher", "Collector", "Kree", "Skrull",
		"Nova", "Valkyrie", "Revenger", "Defender", "Wanderer",
		"Gauntlet", "Champion", "Herald", "Seeker", "Keeper",
	}
)

// Namer builds display handles for people who sign in without a name.
type Namer struct {
	r *rand.Rand
}

func NewNamer(seed int64) *Namer {
	return &Namer{r: rand.New(rand.NewSource(seed))}
}

// HeroName picks an adjective and a noun, e.g. "Cosmic Ravager".
func (n *Namer) HeroName() string {
	adj := adjectives[n.r.Intn(len(adjectives))]
	noun := nouns[n.r.Intn(len(nouns))]
	return fmt.Sprintf("%s %s", adj, noun)
}

// HeroName uses a time seeded Namer.
func HeroName() string {
	return NewNamer(time.Now().UnixNano()).HeroName()
}
