package services

import (
	"fmt"
	"strconv"
	"strings"

	"transroute/internal/location"
)

// Combination is one origin→destination pair of a route's stop sequence.
type Combination struct {
	Key              string `json:"key"`
	OriginIndex      int    `json:"origin_index"`
	DestinationIndex int    `json:"destination_index"`
	Origin           string `json:"origin"`
	Destination      string `json:"destination"`
	OriginCity       string `json:"origin_city"`
	DestinationCity  string `json:"destination_city"`
	IsIntraCity      bool   `json:"is_intra_city"`
	IsConsecutive    bool   `json:"is_consecutive"`
	IsMainTrip       bool   `json:"is_main_trip"`
}

// CombinationKey renders the "i-j" key used by route templates.
func CombinationKey(i, j int) string {
	return strconv.Itoa(i) + "-" + strconv.Itoa(j)
}

// ParseCombinationKey validates an "i-j" key against a sequence of n stops.
func ParseCombinationKey(key string, n int) (int, int, error) {
	a, b, ok := strings.Cut(key, "-")
	if !ok {
		return 0, 0, fmt.Errorf("key %q is not of the form i-j", key)
	}
	i, errI := strconv.Atoi(a)
	j, errJ := strconv.Atoi(b)
	if errI != nil || errJ != nil || key != CombinationKey(i, j) {
		return 0, 0, fmt.Errorf("key %q is not of the form i-j", key)
	}
	if i < 0 || j >= n || i >= j {
		return 0, 0, fmt.Errorf("key %q is outside 0 <= i < j < %d", key, n)
	}
	return i, j, nil
}

// GenerateCombinations emits every pair (i, j), i < j, of stops in
// row-major order: L*(L-1)/2 entries for L stops.
func GenerateCombinations(stops []string) []Combination {
	n := len(stops)
	if n < 2 {
		return nil
	}

	cities := make([]string, n)
	for k, s := range stops {
		cities[k] = location.Parse(s).City
	}

	out := make([]Combination, 0, n*(n-1)/2)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, Combination{
				Key:              CombinationKey(i, j),
				OriginIndex:      i,
				DestinationIndex: j,
				Origin:           stops[i],
				Destination:      stops[j],
				OriginCity:       cities[i],
				DestinationCity:  cities[j],
				IsIntraCity:      location.Normalize(cities[i]) == location.Normalize(cities[j]),
				IsConsecutive:    j == i+1,
				IsMainTrip:       i == 0 && j == n-1,
			})
		}
	}
	return out
}
