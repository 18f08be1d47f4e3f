package duration

import (
	"testing"
	"time"

	"itinera/internal/domain/continuity"
	"itinera/internal/domain/itinerary"
)

// TestKeywordDurations tests the keyword table across the segment fields
// that are scanned.
func TestKeywordDurations(t *testing.T) {
	inf := NewInferencer()

	cases := []struct {
		name     string
		segment  itinerary.Segment
		hours    float64
		level    continuity.ConfidenceLevel
	}{
		{"dinner cruise", itinerary.Segment{Name: "Sunset Dinner Cruise"}, 2, continuity.ConfidenceHigh},
		{"breakfast", itinerary.Segment{Name: "Breakfast at Tiffany's Cafe"}, 1, continuity.ConfidenceHigh},
		{"brunch", itinerary.Segment{Name: "Sunday Brunch"}, 1.5, continuity.ConfidenceHigh},
		{"drinks", itinerary.Segment{Name: "Rooftop Drinks"}, 1.5, continuity.ConfidenceHigh},
		{"movie", itinerary.Segment{Name: "Movie Night"}, 2, continuity.ConfidenceHigh},
		{"concert", itinerary.Segment{Name: "Jazz Concert"}, 2.5, continuity.ConfidenceHigh},
		{"opera", itinerary.Segment{Name: "La Traviata", Description: "Evening at the opera"}, 3, continuity.ConfidenceHigh},
		{"tour", itinerary.Segment{Name: "Old Town Walking Tour"}, 3, continuity.ConfidenceHigh},
		{"hiking", itinerary.Segment{Name: "Coastal Trail", Category: "hiking"}, 3, continuity.ConfidenceHigh},
		{"museum via location", itinerary.Segment{Name: "Morning visit", Location: &itinerary.Location{Name: "British Museum"}}, 2, continuity.ConfidenceHigh},
		{"spa", itinerary.Segment{Name: "Spa Afternoon"}, 2, continuity.ConfidenceHigh},
		{"golf", itinerary.Segment{Name: "Golf at Pebble Beach"}, 4, continuity.ConfidenceHigh},
		{"cooking class", itinerary.Segment{Name: "Tuscan Cooking Class"}, 3, continuity.ConfidenceHigh},
		{"meeting", itinerary.Segment{Name: "Meeting with distributors"}, 1, continuity.ConfidenceMedium},
		{"workshop", itinerary.Segment{Name: "Pottery Workshop"}, 2, continuity.ConfidenceMedium},
		{"notes field", itinerary.Segment{Name: "Evening plans", Notes: "dinner reservation at 8"}, 2, continuity.ConfidenceHigh},
	}

	for _, tc := range cases {
		got := inf.InferActivityDuration(tc.segment)
		if got.Hours != tc.hours {
			t.Errorf("%s: expected %.1f hours, got %.1f", tc.name, tc.hours, got.Hours)
		}
		if got.Confidence != tc.level {
			t.Errorf("%s: expected %s confidence, got %s", tc.name, tc.level, got.Confidence)
		}
		if got.Reason == "" {
			t.Errorf("%s: expected a reason", tc.name)
		}
	}
}

// TestSpecificBeatsGeneric tests that meal keywords win over later,
// more generic patterns when both appear.
func TestSpecificBeatsGeneric(t *testing.T) {
	inf := NewInferencer()

	got := inf.InferActivityDuration(itinerary.Segment{Name: "Dinner and a show"})
	if got.Hours != 2 {
		t.Errorf("Expected the dinner pattern to win, got %.1f hours", got.Hours)
	}
}

// TestDefaultFallback tests totality: an unrecognized activity always
// resolves to two hours with low confidence.
func TestDefaultFallback(t *testing.T) {
	inf := NewInferencer()

	got := inf.InferActivityDuration(itinerary.Segment{Name: "Mystery outing"})
	if got.Hours != 2 {
		t.Errorf("Expected 2 hour default, got %.1f", got.Hours)
	}
	if got.Confidence != continuity.ConfidenceLow {
		t.Errorf("Expected low confidence, got %s", got.Confidence)
	}

	// An entirely empty segment still resolves
	got = inf.InferActivityDuration(itinerary.Segment{})
	if got.Hours != 2 || got.Confidence != continuity.ConfidenceLow {
		t.Errorf("Expected default estimate for empty segment, got %+v", got)
	}
}

// TestEffectiveEndTime tests the explicit-vs-inferred end time choice.
func TestEffectiveEndTime(t *testing.T) {
	inf := NewInferencer()

	start := time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	explicit := itinerary.Segment{Name: "Dinner", StartTime: start, EndTime: end}
	if got := inf.EffectiveEndTime(explicit); !got.Equal(end) {
		t.Errorf("Expected explicit end time %v, got %v", end, got)
	}

	open := itinerary.Segment{Name: "Dinner", StartTime: start, EndTime: start}
	want := start.Add(2 * time.Hour)
	if got := inf.EffectiveEndTime(open); !got.Equal(want) {
		t.Errorf("Expected inferred end %v, got %v", want, got)
	}

	unknown := itinerary.Segment{Name: "Mystery outing", StartTime: start, EndTime: start}
	if got := inf.EffectiveEndTime(unknown); !got.Equal(want) {
		t.Errorf("Expected default two hour end %v, got %v", want, got)
	}
}
