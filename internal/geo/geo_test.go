package geo

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"pgregory.net/rapid"
)

// ============================================
// Property Tests for Haversine Distance
// ============================================

// TestProperty_Distance_NonNegative tests that distance is never negative
// *For any* two coordinates, the computed distance SHALL be non-negative.
func TestProperty_Distance_NonNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lat1 := rapid.Float64Range(-90, 90).Draw(rt, "lat1")
		lng1 := rapid.Float64Range(-180, 180).Draw(rt, "lng1")
		lat2 := rapid.Float64Range(-90, 90).Draw(rt, "lat2")
		lng2 := rapid.Float64Range(-180, 180).Draw(rt, "lng2")

		d := Distance(lat1, lng1, lat2, lng2)
		if d < 0 {
			t.Fatalf("PROPERTY VIOLATION: distance should be non-negative, got %f", d)
		}
	})
}

// TestProperty_Distance_Symmetric tests that distance is symmetric
// *For any* two coordinates A and B, distance(A, B) SHALL equal distance(B, A).
func TestProperty_Distance_Symmetric(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lat1 := rapid.Float64Range(-90, 90).Draw(rt, "lat1")
		lng1 := rapid.Float64Range(-180, 180).Draw(rt, "lng1")
		lat2 := rapid.Float64Range(-90, 90).Draw(rt, "lat2")
		lng2 := rapid.Float64Range(-180, 180).Draw(rt, "lng2")

		forward := Distance(lat1, lng1, lat2, lng2)
		backward := Distance(lat2, lng2, lat1, lng1)

		if math.Abs(forward-backward) > 1e-9 {
			t.Fatalf("PROPERTY VIOLATION: distance should be symmetric, got %f and %f", forward, backward)
		}
	})
}

// TestProperty_Distance_IdentityIsZero tests that a point is at zero distance
// from itself
func TestProperty_Distance_IdentityIsZero(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lat := rapid.Float64Range(-90, 90).Draw(rt, "lat")
		lng := rapid.Float64Range(-180, 180).Draw(rt, "lng")

		d := Distance(lat, lng, lat, lng)
		if d > 1e-9 {
			t.Fatalf("PROPERTY VIOLATION: distance from a point to itself should be zero, got %f", d)
		}
	})
}

func TestDistance_KnownValue(t *testing.T) {
	// Two points roughly 0.13 km apart in San Juan
	d := Distance(14.6050, 121.0300, 14.6060, 121.0310)
	if d < 0.1 || d > 0.2 {
		t.Fatalf("expected roughly 0.13 km, got %f", d)
	}
}

// ============================================
// Property Tests for Nearby Matching
// ============================================

func randomRoster(rt *rapid.T) []Worker {
	n := rapid.IntRange(0, 30).Draw(rt, "rosterSize")
	roster := make([]Worker, n)
	for i := range roster {
		roster[i] = Worker{
			ID:    uuid.New(),
			Name:  rapid.StringMatching(`[A-Z][a-z]{2,8} [A-Z][a-z]{2,8}`).Draw(rt, "name"),
			Skill: rapid.SampledFrom([]string{"Plumbing", "Carpentry", "Electrical", "Cleaning"}).Draw(rt, "skill"),
		}
		if rapid.Bool().Draw(rt, "hasLocation") {
			roster[i].Location = &Coordinate{
				Lat: rapid.Float64Range(14.55, 14.65).Draw(rt, "lat"),
				Lng: rapid.Float64Range(120.98, 121.08).Draw(rt, "lng"),
			}
		}
	}
	return roster
}

// TestProperty_FindNearby_SortedAscending tests result ordering
// *For any* roster, FindNearby results SHALL be sorted ascending by distance.
func TestProperty_FindNearby_SortedAscending(t *testing.T) {
	m := NewMatcher(DefaultMaxDistanceKm, DefaultCenter)

	rapid.Check(t, func(rt *rapid.T) {
		roster := randomRoster(rt)
		originLat := rapid.Float64Range(14.55, 14.65).Draw(rt, "originLat")
		originLng := rapid.Float64Range(120.98, 121.08).Draw(rt, "originLng")

		results := m.FindNearby(originLat, originLng, roster, "", "")
		for i := 1; i < len(results); i++ {
			if results[i].DistanceKm < results[i-1].DistanceKm {
				t.Fatalf("PROPERTY VIOLATION: results not sorted, %f before %f",
					results[i-1].DistanceKm, results[i].DistanceKm)
			}
		}
	})
}

// TestProperty_FindNearby_WithinRadius tests the distance cutoff
// *For any* roster, every returned candidate SHALL be within the maximum
// distance of the origin.
func TestProperty_FindNearby_WithinRadius(t *testing.T) {
	m := NewMatcher(DefaultMaxDistanceKm, DefaultCenter)

	rapid.Check(t, func(rt *rapid.T) {
		roster := randomRoster(rt)
		originLat := rapid.Float64Range(14.55, 14.65).Draw(rt, "originLat")
		originLng := rapid.Float64Range(120.98, 121.08).Draw(rt, "originLng")

		results := m.FindNearby(originLat, originLng, roster, "", "")
		for _, r := range results {
			if r.DistanceKm > DefaultMaxDistanceKm {
				t.Fatalf("PROPERTY VIOLATION: candidate at %f km exceeds cutoff %f",
					r.DistanceKm, DefaultMaxDistanceKm)
			}
		}
	})
}

// TestProperty_FindNearby_SkillFilter tests that the skill filter is exact
// *For any* roster and skill, every returned candidate SHALL carry that skill.
func TestProperty_FindNearby_SkillFilter(t *testing.T) {
	m := NewMatcher(DefaultMaxDistanceKm, DefaultCenter)

	rapid.Check(t, func(rt *rapid.T) {
		roster := randomRoster(rt)
		skill := rapid.SampledFrom([]string{"Plumbing", "Carpentry", "Electrical", "Cleaning"}).Draw(rt, "filterSkill")

		results := m.FindNearby(DefaultCenter.Lat, DefaultCenter.Lng, roster, skill, "")
		for _, r := range results {
			if r.Skill != skill {
				t.Fatalf("PROPERTY VIOLATION: filter %q returned candidate with skill %q", skill, r.Skill)
			}
		}
	})
}

func TestFindNearby_CutoffScenario(t *testing.T) {
	m := NewMatcher(DefaultMaxDistanceKm, DefaultCenter)

	near := Worker{ID: uuid.New(), Name: "Juan Reyes", Skill: "Plumbing",
		Location: &Coordinate{Lat: 14.6060, Lng: 121.0310}}
	far := Worker{ID: uuid.New(), Name: "Pedro Cruz", Skill: "Plumbing",
		Location: &Coordinate{Lat: 14.70, Lng: 121.20}}

	results := m.FindNearby(14.6050, 121.0300, []Worker{far, near}, "", "")
	if len(results) != 1 {
		t.Fatalf("expected exactly one candidate, got %d", len(results))
	}
	if results[0].ID != near.ID {
		t.Fatalf("expected the nearby worker, got %s", results[0].Name)
	}
	if results[0].DistanceKm > 0.2 {
		t.Fatalf("expected roughly 0.13 km, got %f", results[0].DistanceKm)
	}
}

func TestFindNearby_FallbackLocation(t *testing.T) {
	m := NewMatcher(DefaultMaxDistanceKm, DefaultCenter)

	// No stored coordinates: the worker sits at the fallback center
	unlocated := Worker{ID: uuid.New(), Name: "Maria Santos", Skill: "Cleaning"}

	results := m.FindNearby(DefaultCenter.Lat, DefaultCenter.Lng, []Worker{unlocated}, "", "")
	if len(results) != 1 {
		t.Fatalf("expected the unlocated worker to match at the fallback, got %d results", len(results))
	}
	if results[0].DistanceKm > 1e-9 {
		t.Fatalf("expected zero distance at fallback, got %f", results[0].DistanceKm)
	}
}

func TestFindNearby_TextFilter(t *testing.T) {
	m := NewMatcher(DefaultMaxDistanceKm, DefaultCenter)

	roster := []Worker{
		{ID: uuid.New(), Name: "Juan Reyes", Skill: "Plumbing", Location: &DefaultCenter},
		{ID: uuid.New(), Name: "Maria Santos", Skill: "Carpentry", Location: &DefaultCenter},
	}

	results := m.FindNearby(DefaultCenter.Lat, DefaultCenter.Lng, roster, "", "santos")
	if len(results) != 1 || results[0].Name != "Maria Santos" {
		t.Fatalf("expected only Maria Santos, got %v", results)
	}

	results = m.FindNearby(DefaultCenter.Lat, DefaultCenter.Lng, roster, "", "plumb")
	if len(results) != 1 || results[0].Name != "Juan Reyes" {
		t.Fatalf("expected skill substring match for Juan Reyes, got %v", results)
	}
}

// ============================================
// Address Resolution
// ============================================

func TestIsValidAddressFormat(t *testing.T) {
	valid := "Sunrise Tower, Rizal St, San Juan Greenhills, San Juan, Metro Manila, Philippines"
	if !IsValidAddressFormat(valid) {
		t.Fatal("expected five-part address to be valid")
	}
	if IsValidAddressFormat("too, short, address") {
		t.Fatal("expected short address to be invalid")
	}
	if IsValidAddressFormat("   ") {
		t.Fatal("expected blank address to be invalid")
	}
}

func TestExtractBarangay(t *testing.T) {
	barangay := ExtractBarangay("Sunrise Tower, Rizal St, San Juan Greenhills, San Juan, Metro Manila, Philippines")
	if barangay != "San Juan Greenhills" {
		t.Fatalf("expected San Juan Greenhills, got %q", barangay)
	}
	if got := ExtractBarangay(""); got != "" {
		t.Fatalf("expected empty result for empty address, got %q", got)
	}
}

func TestCoordinatesForAddress(t *testing.T) {
	coord, ok := CoordinatesForAddress("Sunrise Tower, Rizal St, San Juan Greenhills, San Juan, Metro Manila, Philippines")
	if !ok {
		t.Fatal("expected known barangay to resolve")
	}
	if coord.Lat == 0 || coord.Lng == 0 {
		t.Fatalf("expected real coordinates, got %+v", coord)
	}

	if _, ok := CoordinatesForAddress("Sunrise Tower, Rizal St, Nowhere, San Juan, Metro Manila, Philippines"); ok {
		t.Fatal("expected unknown barangay to stay unresolved")
	}

	if _, ok := CoordinatesForAddress("no commas here"); ok {
		t.Fatal("expected malformed address to stay unresolved")
	}
}
