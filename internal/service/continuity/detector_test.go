package continuity

import (
	"testing"
	"time"

	"itinera/internal/domain/continuity"
	"itinera/internal/domain/itinerary"
	"itinera/internal/service/duration"
	"itinera/internal/service/match"
)

func newTestDetector() *GapDetector {
	return NewGapDetector(
		match.NewLocationMatcher(match.DefaultConfig()),
		duration.NewInferencer(),
		DefaultDetectorConfig(),
	)
}

func at(hour int) time.Time {
	return time.Date(2026, 6, 1, hour, 0, 0, 0, time.UTC)
}

// TestFlightToHotelGap tests the canonical missing airport transfer: a
// flight landing at LAX followed by a hotel with no ride in between.
func TestFlightToHotelGap(t *testing.T) {
	d := newTestDetector()

	segments := []itinerary.Segment{
		{
			ID:          "flight-1",
			Kind:        itinerary.KindFlight,
			Name:        "JFK to LAX",
			StartTime:   at(8),
			EndTime:     at(14),
			Origin:      &itinerary.Location{Name: "JFK Airport", Code: "JFK"},
			Destination: &itinerary.Location{Name: "LAX Airport", Code: "LAX"},
		},
		{
			ID:        "hotel-1",
			Kind:      itinerary.KindHotel,
			Name:      "Check-in",
			StartTime: at(14),
			EndTime:   at(14),
			Location:  &itinerary.Location{Name: "Beverly Hills Hotel"},
		},
	}

	gaps := d.DetectLocationGaps(segments)
	if len(gaps) != 1 {
		t.Fatalf("Expected 1 gap, got %d", len(gaps))
	}

	g := gaps[0]
	if g.Type != continuity.GapLocalTransfer {
		t.Errorf("Expected local_transfer, got %s", g.Type)
	}
	if g.Confidence != 95 {
		t.Errorf("Expected confidence 95, got %d", g.Confidence)
	}
	if g.SuggestedFill != continuity.FillTransfer {
		t.Errorf("Expected transfer fill, got %s", g.SuggestedFill)
	}
	if g.BeforeSegmentID != "flight-1" || g.AfterSegmentID != "hotel-1" {
		t.Errorf("Gap references wrong segments: %s -> %s", g.BeforeSegmentID, g.AfterSegmentID)
	}
}

// TestNoGapWhenLocationsMatch tests that matching flanking locations
// produce no finding.
func TestNoGapWhenLocationsMatch(t *testing.T) {
	d := newTestDetector()

	segments := []itinerary.Segment{
		{
			ID:          "flight-1",
			Kind:        itinerary.KindFlight,
			StartTime:   at(8),
			EndTime:     at(11),
			Origin:      &itinerary.Location{Code: "JFK"},
			Destination: &itinerary.Location{Name: "Heathrow Airport", Code: "LHR"},
		},
		{
			ID:        "transfer-1",
			Kind:      itinerary.KindTransfer,
			StartTime: at(12),
			EndTime:   at(13),
			Pickup:    &itinerary.Location{Name: "Heathrow"},
			Dropoff:   &itinerary.Location{Name: "The Savoy"},
		},
		{
			ID:        "hotel-1",
			Kind:      itinerary.KindHotel,
			StartTime: at(14),
			EndTime:   at(14),
			Location:  &itinerary.Location{Name: "The Savoy Hotel"},
		},
	}

	gaps := d.DetectLocationGaps(segments)
	if len(gaps) != 0 {
		t.Fatalf("Expected no gaps on a bridged itinerary, got %d: %+v", len(gaps), gaps)
	}
}

// TestInternationalGap tests country inference from airport codes.
func TestInternationalGap(t *testing.T) {
	d := newTestDetector()

	segments := []itinerary.Segment{
		{
			ID:        "hotel-ny",
			Kind:      itinerary.KindHotel,
			StartTime: at(9),
			EndTime:   at(10),
			Location:  &itinerary.Location{Name: "The Plaza", City: "New York", Country: "United States"},
		},
		{
			ID:        "hotel-paris",
			Kind:      itinerary.KindHotel,
			StartTime: at(20),
			EndTime:   at(21),
			Location:  &itinerary.Location{Name: "Hotel Fabric", City: "Paris", Country: "France"},
		},
	}

	gaps := d.DetectLocationGaps(segments)
	if len(gaps) != 1 {
		t.Fatalf("Expected 1 gap, got %d", len(gaps))
	}

	g := gaps[0]
	if g.Type != continuity.GapInternational {
		t.Errorf("Expected international_gap, got %s", g.Type)
	}
	if g.Confidence != 90 {
		t.Errorf("Expected hotel-to-hotel cross-city confidence 90, got %d", g.Confidence)
	}
	if g.SuggestedFill != continuity.FillFlight {
		t.Errorf("Expected flight fill for an international gap, got %s", g.SuggestedFill)
	}
}

// TestConfidenceThresholdSuppressesWeakFindings tests that cross-city
// activity-to-activity gaps score 60 and are filtered out.
func TestConfidenceThresholdSuppressesWeakFindings(t *testing.T) {
	d := newTestDetector()

	segments := []itinerary.Segment{
		{
			ID:        "act-1",
			Kind:      itinerary.KindActivity,
			StartTime: at(9),
			EndTime:   at(11),
			Location:  &itinerary.Location{Name: "Golden Gate Walk", City: "San Francisco", Country: "United States"},
		},
		{
			ID:        "act-2",
			Kind:      itinerary.KindActivity,
			StartTime: at(15),
			EndTime:   at(17),
			Location:  &itinerary.Location{Name: "Griffith Observatory", City: "Los Angeles", Country: "United States"},
		},
	}

	gaps := d.DetectLocationGaps(segments)
	if len(gaps) != 0 {
		t.Fatalf("Expected low-confidence finding to be suppressed, got %d gaps", len(gaps))
	}
}

// TestUnknownGapIsSuppressed tests that a gap whose locations cannot be
// classified scores 60 regardless of the flanking segment kinds.
func TestUnknownGapIsSuppressed(t *testing.T) {
	d := newTestDetector()

	segments := []itinerary.Segment{
		{
			ID:          "flight-1",
			Kind:        itinerary.KindFlight,
			StartTime:   at(8),
			EndTime:     at(11),
			Origin:      &itinerary.Location{Code: "JFK"},
			Destination: &itinerary.Location{Code: "QQQ"},
		},
		{
			ID:        "hotel-1",
			Kind:      itinerary.KindHotel,
			StartTime: at(13),
			EndTime:   at(13),
			Location:  &itinerary.Location{Name: "Harbor Inn"},
		},
	}

	gaps := d.DetectLocationGaps(segments)
	if len(gaps) != 0 {
		t.Fatalf("Expected unclassifiable gap to be suppressed, got %d: %+v", len(gaps), gaps)
	}
}

// TestAllGapsMeetThreshold tests the threshold property over a mixed
// itinerary: every emitted gap carries confidence >= 80.
func TestAllGapsMeetThreshold(t *testing.T) {
	d := newTestDetector()

	segments := []itinerary.Segment{
		{
			ID: "f1", Kind: itinerary.KindFlight, StartTime: at(6), EndTime: at(9),
			Origin:      &itinerary.Location{Code: "JFK"},
			Destination: &itinerary.Location{Code: "ORD"},
		},
		{
			ID: "a1", Kind: itinerary.KindActivity, StartTime: at(10), EndTime: at(12),
			Location: &itinerary.Location{Name: "Art Institute", City: "Chicago", Country: "United States"},
		},
		{
			ID: "m1", Kind: itinerary.KindMeeting, StartTime: at(13), EndTime: at(14),
			Location: &itinerary.Location{Name: "Willis Tower", City: "Chicago", Country: "United States"},
		},
		{
			ID: "h1", Kind: itinerary.KindHotel, StartTime: at(18), EndTime: at(18),
			Location: &itinerary.Location{Name: "Palmer House", City: "Chicago", Country: "United States"},
		},
	}

	gaps := d.DetectLocationGaps(segments)
	for _, g := range gaps {
		if g.Confidence < 80 {
			t.Errorf("Gap %s -> %s emitted below threshold: %d", g.BeforeSegmentID, g.AfterSegmentID, g.Confidence)
		}
	}
}

// TestMissingLocationsAreSkipped tests that pairs lacking extractable
// locations are skipped without failing the rest of the pass.
func TestMissingLocationsAreSkipped(t *testing.T) {
	d := newTestDetector()

	segments := []itinerary.Segment{
		{ID: "c1", Kind: itinerary.KindCustom, StartTime: at(9), EndTime: at(9)},
		{
			ID: "h1", Kind: itinerary.KindHotel, StartTime: at(11), EndTime: at(11),
			Location: &itinerary.Location{Name: "Palmer House", City: "Chicago"},
		},
		{
			ID: "h2", Kind: itinerary.KindHotel, StartTime: at(15), EndTime: at(15),
			Location: &itinerary.Location{Name: "The Drake", City: "Chicago"},
		},
	}

	gaps := d.DetectLocationGaps(segments)
	if len(gaps) != 1 {
		t.Fatalf("Expected detection to continue past the data-less pair, got %d gaps", len(gaps))
	}
	if gaps[0].BeforeSegmentID != "h1" || gaps[0].AfterSegmentID != "h2" {
		t.Errorf("Expected the hotel-to-hotel pair, got %s -> %s", gaps[0].BeforeSegmentID, gaps[0].AfterSegmentID)
	}
}

// TestEmptyAndSingleSegmentLists tests the trivial inputs.
func TestEmptyAndSingleSegmentLists(t *testing.T) {
	d := newTestDetector()

	if gaps := d.DetectLocationGaps(nil); len(gaps) != 0 {
		t.Errorf("Expected no gaps for empty input, got %d", len(gaps))
	}

	single := []itinerary.Segment{{
		ID: "h1", Kind: itinerary.KindHotel, StartTime: at(9), EndTime: at(10),
		Location: &itinerary.Location{Name: "Palmer House"},
	}}
	if gaps := d.DetectLocationGaps(single); len(gaps) != 0 {
		t.Errorf("Expected no gaps for a single segment, got %d", len(gaps))
	}
}

// TestSortsBeforeScanning tests that detection order follows start times,
// not input order.
func TestSortsBeforeScanning(t *testing.T) {
	d := newTestDetector()

	segments := []itinerary.Segment{
		{
			ID: "hotel-1", Kind: itinerary.KindHotel, StartTime: at(14), EndTime: at(14),
			Location: &itinerary.Location{Name: "Beverly Hills Hotel"},
		},
		{
			ID: "flight-1", Kind: itinerary.KindFlight, StartTime: at(8), EndTime: at(14),
			Origin:      &itinerary.Location{Code: "JFK"},
			Destination: &itinerary.Location{Code: "LAX"},
		},
	}

	gaps := d.DetectLocationGaps(segments)
	if len(gaps) != 1 {
		t.Fatalf("Expected 1 gap, got %d", len(gaps))
	}
	if gaps[0].BeforeSegmentID != "flight-1" {
		t.Errorf("Expected the flight to come first after sorting, got %s", gaps[0].BeforeSegmentID)
	}
}

// TestGapWindowUsesInferredEndTime tests that the fill window starts at
// the inferred end of an open-ended segment.
func TestGapWindowUsesInferredEndTime(t *testing.T) {
	d := newTestDetector()

	segments := []itinerary.Segment{
		{
			ID: "dinner", Kind: itinerary.KindActivity, Name: "Dinner at Quince",
			StartTime: at(19), EndTime: at(19),
			Location: &itinerary.Location{Name: "Quince", City: "San Francisco", Country: "United States"},
		},
		{
			ID: "hotel", Kind: itinerary.KindHotel, StartTime: at(23), EndTime: at(23),
			Location: &itinerary.Location{Name: "Fairmont", City: "San Francisco", Country: "United States"},
		},
	}

	gaps := d.DetectLocationGaps(segments)
	if len(gaps) != 1 {
		t.Fatalf("Expected 1 gap, got %d", len(gaps))
	}

	// Dinner infers two hours: the transfer window opens at 21:00.
	if !gaps[0].WindowStart.Equal(at(21)) {
		t.Errorf("Expected window start at 21:00, got %v", gaps[0].WindowStart)
	}
	if !gaps[0].WindowEnd.Equal(at(23)) {
		t.Errorf("Expected window end at 23:00, got %v", gaps[0].WindowEnd)
	}
}

// TestAirportTableLookup tests country and city inference from codes.
func TestAirportTableLookup(t *testing.T) {
	if info, ok := lookupAirport("lhr"); !ok || info.Country != "United Kingdom" {
		t.Errorf("Expected LHR to resolve to the United Kingdom, got %+v (ok=%v)", info, ok)
	}
	if _, ok := lookupAirport("ZZZ"); ok {
		t.Error("Expected unknown code to miss the table")
	}
}
