// Package geo implements proximity matching between clients and workers.
// All functions are pure and safe for concurrent use.
package geo

import (
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula
	EarthRadiusKm = 6371.0

	// DefaultMaxDistanceKm is the hard matching cutoff
	DefaultMaxDistanceKm = 3.0
)

// DefaultCenter is the fallback coordinate assigned to workers with no
// stored location (San Juan Pinaglabanan). Workers without coordinates are
// matched from here rather than excluded.
var DefaultCenter = Coordinate{
	Lat: 14.605104730989897,
	Lng: 121.0288131464939,
}

// Coordinate is a latitude/longitude pair in degrees
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Worker is a roster entry eligible for matching
type Worker struct {
	ID    uuid.UUID
	Name  string
	Skill string
	// Location is nil when the worker has no stored coordinates
	Location *Coordinate
}

// Candidate is a worker annotated with the computed distance to the origin
type Candidate struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Skill      string    `json:"skill"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	DistanceKm float64   `json:"distanceKm"`
}

// Distance computes the great-circle distance in kilometers between two
// coordinates using the haversine formula.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*
			math.Cos(degreesToRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Matcher filters and ranks workers by proximity to a requester
type Matcher struct {
	MaxDistanceKm float64
	Fallback      Coordinate
}

// NewMatcher creates a matcher with the given cutoff and fallback coordinate
func NewMatcher(maxDistanceKm float64, fallback Coordinate) *Matcher {
	return &Matcher{
		MaxDistanceKm: maxDistanceKm,
		Fallback:      fallback,
	}
}

// FindNearby returns the workers within the matcher's radius of the origin,
// sorted ascending by distance. Filters apply in order: distance cutoff,
// exact case-insensitive skill match, case-insensitive substring match
// against skill or name. The sort is stable, so exact distance ties keep
// roster order.
func (m *Matcher) FindNearby(originLat, originLng float64, roster []Worker, skillFilter, textFilter string) []Candidate {
	candidates := make([]Candidate, 0, len(roster))

	for _, w := range roster {
		loc := m.Fallback
		if w.Location != nil {
			loc = *w.Location
		}

		d := Distance(originLat, originLng, loc.Lat, loc.Lng)
		if d > m.MaxDistanceKm {
			continue
		}
		if skillFilter != "" && !strings.EqualFold(w.Skill, skillFilter) {
			continue
		}
		if textFilter != "" && !matchesText(w, textFilter) {
			continue
		}

		candidates = append(candidates, Candidate{
			ID:         w.ID,
			Name:       w.Name,
			Skill:      w.Skill,
			Lat:        loc.Lat,
			Lng:        loc.Lng,
			DistanceKm: d,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DistanceKm < candidates[j].DistanceKm
	})

	return candidates
}

func matchesText(w Worker, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(w.Skill), q) ||
		strings.Contains(strings.ToLower(w.Name), q)
}

func degreesToRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
