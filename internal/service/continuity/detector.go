// internal/service/continuity/detector.go

package continuity

import (
	"fmt"
	"strings"

	"itinera/internal/domain/continuity"
	"itinera/internal/domain/itinerary"
)

// DetectorConfig contains configuration for the gap detector.
type DetectorConfig struct {
	// MinConfidence is the score a gap must reach to be reported.
	// Lower-confidence findings are suppressed to keep precision high on
	// ambiguous itineraries.
	MinConfidence int
}

// DefaultDetectorConfig returns the default detector configuration.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MinConfidence: 80,
	}
}

// GapDetector implements the continuity.Detector interface. It walks a
// chronologically sorted segment list and reports unexplained changes of
// location between consecutive segments.
type GapDetector struct {
	matcher    continuity.Matcher
	inferencer continuity.Inferencer
	config     DetectorConfig
}

// NewGapDetector creates a new gap detector.
func NewGapDetector(matcher continuity.Matcher, inferencer continuity.Inferencer, config DetectorConfig) *GapDetector {
	return &GapDetector{
		matcher:    matcher,
		inferencer: inferencer,
		config:     config,
	}
}

// DetectLocationGaps scans the segments for continuity violations. It is a
// pure function: the input slice is never mutated and results are stable
// for a given input.
func (d *GapDetector) DetectLocationGaps(segments []itinerary.Segment) []continuity.Gap {
	if len(segments) < 2 {
		return nil
	}

	sorted := itinerary.SortChronological(segments)

	var gaps []continuity.Gap
	for i := 0; i < len(sorted)-1; i++ {
		prev := sorted[i]
		next := sorted[i+1]

		endLoc := prev.EndLocation()
		startLoc := next.StartLocation()

		// Missing location data is not a violation; skip the pair and
		// keep scanning the rest of the itinerary.
		if endLoc == nil || startLoc == nil {
			continue
		}

		if d.matcher.IsSameLocation(*endLoc, *startLoc) {
			continue
		}

		gapType := classifyGap(*endLoc, *startLoc)
		confidence := gapConfidence(prev, next, gapType)
		if confidence < d.config.MinConfidence {
			continue
		}

		gaps = append(gaps, continuity.Gap{
			BeforeSegmentID: prev.ID,
			AfterSegmentID:  next.ID,
			BeforeIndex:     i,
			AfterIndex:      i + 1,
			From:            *endLoc,
			To:              *startLoc,
			Type:            gapType,
			Confidence:      confidence,
			Description:     describeGap(gapType, *endLoc, *startLoc),
			SuggestedFill:   suggestedFill(gapType),
			WindowStart:     d.inferencer.EffectiveEndTime(prev),
			WindowEnd:       next.StartTime,
		})
	}

	return gaps
}

// classifyGap compares the countries and cities of the two locations,
// consulting the airport table when a location only carries a code.
func classifyGap(from, to itinerary.Location) continuity.GapType {
	fromCountry := countryOf(from)
	toCountry := countryOf(to)

	if fromCountry != "" && toCountry != "" && !strings.EqualFold(fromCountry, toCountry) {
		return continuity.GapInternational
	}

	fromCity := cityOf(from)
	toCity := cityOf(to)

	switch {
	case fromCity != "" && toCity != "" && !strings.EqualFold(fromCity, toCity):
		return continuity.GapDomestic
	case fromCity != "" && toCity != "":
		return continuity.GapLocalTransfer
	case fromCity != "" || toCity != "":
		// One side is anchored to a known city and nothing suggests a
		// city change, so treat the move as local.
		return continuity.GapLocalTransfer
	default:
		return continuity.GapUnknown
	}
}

// countryOf returns the location's country, falling back to the airport
// table when only a code is present.
func countryOf(loc itinerary.Location) string {
	if loc.Country != "" {
		return loc.Country
	}
	if loc.Code != "" {
		if info, ok := lookupAirport(loc.Code); ok {
			return info.Country
		}
	}
	return ""
}

// cityOf returns the location's city, falling back to the airport table.
func cityOf(loc itinerary.Location) string {
	if loc.City != "" {
		return loc.City
	}
	if loc.Code != "" {
		if info, ok := lookupAirport(loc.Code); ok {
			return info.City
		}
	}
	return ""
}

// gapConfidence scores how certain the system is that a transportation
// segment is genuinely missing between the two segments, not merely that
// their locations differ.
func gapConfidence(prev, next itinerary.Segment, gapType continuity.GapType) int {
	// Without enough location data to classify the gap, no pairing of
	// segment kinds can raise certainty about what is missing.
	if gapType == continuity.GapUnknown {
		return 60
	}

	prevFlight := prev.Kind == itinerary.KindFlight
	nextFlight := next.Kind == itinerary.KindFlight
	prevHotel := prev.Kind == itinerary.KindHotel
	nextHotel := next.Kind == itinerary.KindHotel

	crossCity := gapType == continuity.GapDomestic || gapType == continuity.GapInternational

	switch {
	// A flight leaves travelers at an airport; a hotel or activity right
	// next to it almost certainly needs a connecting ride.
	case prevFlight && (nextHotel || next.Kind == itinerary.KindActivity):
		return 95
	case nextFlight && (prevHotel || prev.Kind == itinerary.KindActivity):
		return 95

	case prevHotel && nextHotel && crossCity:
		return 90

	// Hotel on exactly one side, no flight involved
	case (prevHotel != nextHotel) && !prevFlight && !nextFlight:
		return 85

	case gapType == continuity.GapLocalTransfer:
		return 80

	default:
		return 60
	}
}

// suggestedFill picks the segment kind a caller should synthesize to
// bridge the gap.
func suggestedFill(gapType continuity.GapType) continuity.FillKind {
	switch gapType {
	case continuity.GapInternational, continuity.GapDomestic:
		return continuity.FillFlight
	default:
		return continuity.FillTransfer
	}
}

// describeGap builds the human-readable finding text.
func describeGap(gapType continuity.GapType, from, to itinerary.Location) string {
	fromLabel := locationLabel(from)
	toLabel := locationLabel(to)

	switch gapType {
	case continuity.GapInternational:
		return fmt.Sprintf("international travel from %s to %s with no connecting segment", fromLabel, toLabel)
	case continuity.GapDomestic:
		return fmt.Sprintf("travel between cities from %s to %s with no connecting segment", fromLabel, toLabel)
	case continuity.GapLocalTransfer:
		return fmt.Sprintf("no transfer between %s and %s", fromLabel, toLabel)
	default:
		return fmt.Sprintf("unexplained move from %s to %s", fromLabel, toLabel)
	}
}

// locationLabel picks the most descriptive field for display.
func locationLabel(loc itinerary.Location) string {
	switch {
	case loc.Name != "":
		return loc.Name
	case loc.Code != "":
		return strings.ToUpper(loc.Code)
	case loc.City != "":
		return loc.City
	default:
		return "an unknown location"
	}
}
