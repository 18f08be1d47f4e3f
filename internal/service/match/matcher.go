// internal/service/match/matcher.go

package match

import (
	"math"
	"strings"

	"itinera/internal/domain/itinerary"
)

// Config contains configuration for the location matcher.
type Config struct {
	// CoordinateThresholdMeters is the maximum great-circle distance at
	// which two coordinate pairs count as the same place.
	CoordinateThresholdMeters float64

	// FuzzyOverlapThreshold is the fraction of significant name tokens
	// that must find a counterpart for a fuzzy name match.
	FuzzyOverlapThreshold float64
}

// DefaultConfig returns the default matcher configuration.
func DefaultConfig() Config {
	return Config{
		CoordinateThresholdMeters: 100,
		FuzzyOverlapThreshold:     0.7,
	}
}

// LocationMatcher implements the continuity.Matcher interface. Checks run
// in order and short-circuit on the first decisive signal; ambiguous
// evidence resolves to "different".
type LocationMatcher struct {
	config Config
}

// NewLocationMatcher creates a new location matcher.
func NewLocationMatcher(config Config) *LocationMatcher {
	return &LocationMatcher{
		config: config,
	}
}

// IsSameLocation reports whether a and b denote the same physical place.
func (m *LocationMatcher) IsSameLocation(a, b itinerary.Location) bool {
	// Airport/station codes decide immediately when both sides have one.
	// A missing code on one side must not force a mismatch, so a single
	// code falls through to the name-based checks.
	codeA := strings.TrimSpace(a.Code)
	codeB := strings.TrimSpace(b.Code)
	if codeA != "" && codeB != "" {
		return strings.EqualFold(codeA, codeB)
	}

	// Coordinate proximity: only a match is decisive. Distant coordinates
	// still fall through, since geocoded points for the same venue can
	// disagree by more than the threshold.
	if a.Coordinates != nil && b.Coordinates != nil {
		if haversineMeters(*a.Coordinates, *b.Coordinates) <= m.config.CoordinateThresholdMeters {
			return true
		}
	}

	nameA := normalizeName(a.Name)
	nameB := normalizeName(b.Name)

	// One side's street address naming the other side's venue captures
	// "hotel name" vs "its own street address" references.
	streetA := normalizeName(a.Street)
	streetB := normalizeName(b.Street)
	if streetA != "" && streetA == nameB {
		return true
	}
	if streetB != "" && streetB == nameA {
		return true
	}

	if nameA == "" || nameB == "" {
		return false
	}

	// Exact normalized names
	if nameA == nameB {
		return true
	}

	// Substring containment, either direction
	if strings.Contains(nameA, nameB) || strings.Contains(nameB, nameA) {
		return true
	}

	return m.fuzzyNamesMatch(nameA, nameB)
}

// fuzzyNamesMatch tokenizes both normalized names, drops stop words and
// compares the remaining tokens pairwise. The names match when more than
// the configured fraction of either side's tokens find a similar
// counterpart on the other side. Both directions are evaluated so the
// result does not depend on argument order.
func (m *LocationMatcher) fuzzyNamesMatch(nameA, nameB string) bool {
	tokensA := significantTokens(nameA)
	tokensB := significantTokens(nameB)

	if len(tokensA) == 0 || len(tokensB) == 0 {
		return false
	}

	return overlapFraction(tokensA, tokensB) > m.config.FuzzyOverlapThreshold ||
		overlapFraction(tokensB, tokensA) > m.config.FuzzyOverlapThreshold
}

// overlapFraction returns the fraction of from-tokens with a similar
// counterpart among the to-tokens.
func overlapFraction(from, to []string) float64 {
	matched := 0
	for _, tok := range from {
		for _, other := range to {
			if tokensSimilar(tok, other) {
				matched++
				break
			}
		}
	}

	return float64(matched) / float64(len(from))
}

// haversineMeters computes the great-circle distance between two points.
func haversineMeters(a, b itinerary.Coordinates) float64 {
	const earthRadiusM = 6371000.0

	lat1 := a.Latitude * math.Pi / 180.0
	lon1 := a.Longitude * math.Pi / 180.0
	lat2 := b.Latitude * math.Pi / 180.0
	lon2 := b.Longitude * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	hSin := math.Sin(dLat / 2)
	hSin *= hSin

	vSin := math.Sin(dLon / 2)
	vSin *= vSin

	h := hSin + math.Cos(lat1)*math.Cos(lat2)*vSin

	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}
