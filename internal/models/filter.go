package models

import "strings"

// FilterType selects entries by media type. The zero value matches any type.
type FilterType string

const (
	// AnyType matches movies and series.
	AnyType FilterType = ""
	// MoviesOnly matches MOVIE entries.
	MoviesOnly FilterType = FilterType(Movie)
	// SeriesOnly matches SERIES entries.
	SeriesOnly FilterType = FilterType(Series)
)

// ParseFilterType maps user input to a FilterType. "", "all" and "any"
// select every type; "movie" and "series" are case-insensitive.
func ParseFilterType(s string) (FilterType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "any":
		return AnyType, nil
	}
	t, err := ParseMediaType(s)
	if err != nil {
		return AnyType, err
	}
	return FilterType(t), nil
}

// Filter is a pure predicate over media entries.
type Filter struct {
	// Type restricts by media type; AnyType disables the restriction.
	Type FilterType
	// Watched, when set, restricts by watched status.
	Watched *bool
	// Query is a case-insensitive substring matched against title and genre.
	Query string
}

// IsZero reports whether the filter matches every entry.
func (f Filter) IsZero() bool {
	return f.Type == AnyType && f.Watched == nil && strings.TrimSpace(f.Query) == ""
}

// Matches reports whether e satisfies every predicate of f.
func (f Filter) Matches(e MediaEntry) bool {
	if f.Type != AnyType && MediaType(f.Type) != e.Type {
		return false
	}
	if f.Watched != nil && *f.Watched != e.Watched {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(e.Title), q) && !strings.Contains(strings.ToLower(e.Genre), q) {
			return false
		}
	}
	return true
}
