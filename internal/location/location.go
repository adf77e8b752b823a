// Package location parses and compares the legacy "City, State|StopName"
// location strings stored alongside stop ids.
package location

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Location is the parsed form of a legacy location string.
type Location struct {
	City  string
	State string
	Name  string
}

// Parse splits s on the first "|" and the left half on the first ",".
// Without a "|" the stop name defaults to the city.
func Parse(s string) Location {
	cityState, name, hasName := strings.Cut(s, "|")
	city, state, _ := strings.Cut(cityState, ",")

	loc := Location{
		City:  strings.TrimSpace(city),
		State: strings.TrimSpace(state),
		Name:  strings.TrimSpace(name),
	}
	if !hasName || loc.Name == "" {
		loc.Name = loc.City
	}
	return loc
}

// String renders the legacy encoding.
func (l Location) String() string {
	if l.State == "" {
		return l.City + "|" + l.Name
	}
	return l.City + ", " + l.State + "|" + l.Name
}

// Valid reports whether the location carries at least a city.
func (l Location) Valid() bool {
	return l.City != ""
}

// Normalize lower-cases s, strips diacritics and collapses whitespace.
func Normalize(s string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		s,
	)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// Equal compares two location strings after normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// SameCity reports whether two location strings resolve to the same city.
func SameCity(a, b string) bool {
	return Normalize(Parse(a).City) == Normalize(Parse(b).City)
}
