package staging

import (
	"fmt"
	"strings"
)

// RepositoryState is the lifecycle state of a staging repository. The string
// forms are part of the legacy protocol's observable contract and must not
// change.
type RepositoryState int

const (
	StateOpen RepositoryState = iota
	StateClosed
	StateReleased
	// StateNotFound is never persisted; it is synthesized for unknown or
	// invalid keys.
	StateNotFound
)

func (s RepositoryState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateReleased:
		return "released"
	case StateNotFound:
		return "not_found"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseRepositoryState parses a persisted state token. Unrecognized tokens
// fail to parse.
func ParseRepositoryState(v string) (RepositoryState, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "open":
		return StateOpen, nil
	case "closed":
		return StateClosed, nil
	case "released":
		return StateReleased, nil
	case "not_found":
		return StateNotFound, nil
	default:
		return 0, fmt.Errorf("could not convert %q into a repository state", v)
	}
}
