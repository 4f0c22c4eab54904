package collection

import (
	"fmt"
	"strings"

	"stoneTracker/services/user"
)

// LockPolicy decides whether a complete collection can still change.
type LockPolicy int

const (
	// LockNone lets complete collections change freely.
	LockNone LockPolicy = iota
	// LockComplete freezes a collection once it holds every stone.
	LockComplete
)

func (p LockPolicy) String() string {
	switch p {
	case LockComplete:
		return "complete"
	default:
		return "none"
	}
}

func (p LockPolicy) locks(u user.User) bool {
	return p == LockComplete && u.IsComplete()
}

// ParseLockPolicy reads a policy name as used in configuration.
func ParseLockPolicy(name string) (LockPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return LockNone, nil
	case "complete":
		return LockComplete, nil
	}
	return LockNone, fmt.Errorf("unknown lock policy %q", name)
}
