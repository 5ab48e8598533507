package store

import (
	"fmt"
	"strings"
)

// LoadState is the fetch lifecycle of a store.
type LoadState int

const (
	Empty LoadState = iota
	Loading
	Loaded
	Refreshing
	LoadFailed
)

var loadStateNames = [...]string{"empty", "loading", "loaded", "refreshing", "loadFailed"}

func (s LoadState) String() string {
	if s >= 0 && int(s) < len(loadStateNames) {
		return loadStateNames[s]
	}
	return fmt.Sprintf("LoadState(%d)", int(s))
}

func (s LoadState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// InFlight reports whether a fetch is outstanding.
func (s LoadState) InFlight() bool {
	return s == Loading || s == Refreshing
}

// SortMode selects the ordering of the derived view.
type SortMode int

const (
	Alphabetical SortMode = iota
	Nearest
)

func (m SortMode) String() string {
	switch m {
	case Alphabetical:
		return "alphabetical"
	case Nearest:
		return "nearest"
	default:
		return fmt.Sprintf("SortMode(%d)", int(m))
	}
}

// ParseSortMode accepts "alphabetical" or "nearest", case-insensitively.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alphabetical":
		return Alphabetical, nil
	case "nearest":
		return Nearest, nil
	}
	return Alphabetical, fmt.Errorf("%w: %q", ErrUnknownSortMode, s)
}

func (m SortMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *SortMode) UnmarshalText(text []byte) error {
	parsed, err := ParseSortMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
