// internal/domain/itinerary/store.go

package itinerary

import (
	"context"
)

// Store defines persistence for segments and their dependency declarations.
type Store interface {
	// ListSegments returns all segments of an itinerary ordered by start time
	ListSegments(ctx context.Context, itineraryID string) ([]Segment, error)

	// GetSegment returns a segment by ID
	GetSegment(ctx context.Context, id string) (*Segment, error)

	// SaveSegment inserts or updates a segment
	SaveSegment(ctx context.Context, s Segment) error

	// DeleteSegment removes a segment and any dependency edges touching it
	DeleteSegment(ctx context.Context, id string) error

	// ListDependencies returns the explicit dependency edges of an itinerary
	ListDependencies(ctx context.Context, itineraryID string) ([]Dependency, error)

	// AddDependency declares an explicit dependency edge
	AddDependency(ctx context.Context, d Dependency) error

	// RemoveDependency removes an explicit dependency edge
	RemoveDependency(ctx context.Context, dependsOnID, segmentID string) error

	// ApplySegmentTimes persists the start/end times of the given segments
	// within a single transaction
	ApplySegmentTimes(ctx context.Context, segments []Segment) error
}
