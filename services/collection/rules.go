package collection

import (
	"fmt"

	"stoneTracker/services/stone"
	"stoneTracker/services/user"
	"stoneTracker/set"
)

func stoneID(s stone.Stone) string { return s.ID }

// AvailableStones returns the catalog stones u does not hold, in catalog order.
func AvailableStones(u user.User) []stone.Stone {
	owned := set.KeysOf(u.Stones, stoneID)
	return set.Missing(owned, stone.All(), stoneID)
}

// UsersWithCompleteCollection keeps the roster entries holding every stone.
func UsersWithCompleteCollection(roster []user.User) []user.User {
	result := make([]user.User, 0)
	for _, u := range roster {
		if u.IsComplete() {
			result = append(result, u)
		}
	}
	return result
}

// Rank is 1 plus the number of other roster entries holding strictly more
// stones than u, so equal counts share a rank. ok is false when u is not in
// the roster.
func Rank(u user.User, roster []user.User) (rank int, ok bool) {
	ahead := 0
	for _, other := range roster {
		if other.ID == u.ID {
			ok = true
			continue
		}
		if other.Count() > u.Count() {
			ahead++
		}
	}
	if !ok {
		return 0, false
	}
	return ahead + 1, true
}

// RankLabel renders a rank the way the profile screen shows it.
func RankLabel(rank int, ok bool, complete bool, total int) string {
	switch {
	case !ok || rank < 1:
		return "Unknown"
	case rank == 1 && complete:
		return "1st (Complete!)"
	case rank <= 3:
		return Ordinal(rank)
	default:
		return fmt.Sprintf("%d of %d", rank, total)
	}
}

// Ordinal formats n as 1st, 2nd, 3rd, 4th, ..., 11th, 12th, 13th, 21st.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// Summary is the roster overview shown above the leaderboard.
type Summary struct {
	Participants        int `json:"participants"`
	CompleteCollections int `json:"completeCollections"`
	StonesCollected     int `json:"stonesCollected"`
	StoneCapacity       int `json:"stoneCapacity"`
}

func Summarize(roster []user.User) Summary {
	s := Summary{
		Participants:  len(roster),
		StoneCapacity: len(roster) * stone.Size,
	}
	for _, u := range roster {
		s.StonesCollected += u.Count()
		if u.IsComplete() {
			s.CompleteCollections++
		}
	}
	return s
}
