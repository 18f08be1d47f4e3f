// internal/domain/continuity/service.go

package continuity

import (
	"errors"
	"time"

	"itinera/internal/domain/itinerary"
)

// ErrSegmentNotFound is returned when a referenced segment does not exist
// in the supplied segment list.
var ErrSegmentNotFound = errors.New("segment not found")

// Matcher decides whether two location references denote the same physical
// place. Implementations must be symmetric and default to "different" when
// evidence is ambiguous.
type Matcher interface {
	IsSameLocation(a, b itinerary.Location) bool
}

// Detector walks a segment list and reports unexplained changes of
// location between consecutive segments.
type Detector interface {
	// DetectLocationGaps is a pure function over the given segments; it
	// sorts them chronologically itself and never mutates the input.
	DetectLocationGaps(segments []itinerary.Segment) []Gap
}

// Inferencer estimates durations for segments lacking an explicit end time.
type Inferencer interface {
	// InferActivityDuration never fails; unrecognized segments resolve to
	// a two hour default with low confidence.
	InferActivityDuration(s itinerary.Segment) DurationEstimate

	// EffectiveEndTime returns the explicit end time if meaningfully later
	// than the start, otherwise start plus the inferred duration.
	EffectiveEndTime(s itinerary.Segment) time.Time
}

// Adjuster propagates a time delta from a moved segment to every segment
// whose timing depends on it.
type Adjuster interface {
	// AdjustDependentSegments returns the full adjusted segment set or an
	// error (ErrSegmentNotFound, *CycleError). On error the input is
	// untouched and nothing may be applied.
	AdjustDependentSegments(segments []itinerary.Segment, deps []itinerary.Dependency, movedID string, delta time.Duration) (*CascadeResult, error)
}
