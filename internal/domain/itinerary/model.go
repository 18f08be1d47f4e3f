package itinerary

import (
	"sort"
	"time"
)

// SegmentKind identifies the kind of itinerary segment. The set is closed:
// location extraction and time-shift logic switch exhaustively over it.
type SegmentKind string

const (
	KindFlight   SegmentKind = "flight"
	KindHotel    SegmentKind = "hotel"
	KindActivity SegmentKind = "activity"
	KindTransfer SegmentKind = "transfer"
	KindMeeting  SegmentKind = "meeting"
	KindCustom   SegmentKind = "custom"
)

// Coordinates is a geographic point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is a reference to a physical place. Every field is optional;
// matching degrades gracefully when fields are absent.
type Location struct {
	Name        string       `json:"name,omitempty"`
	Code        string       `json:"code,omitempty"` // 1-3 character airport/station code
	Street      string       `json:"street,omitempty"`
	City        string       `json:"city,omitempty"`
	Country     string       `json:"country,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// IsEmpty reports whether the location carries no usable reference at all.
func (l Location) IsEmpty() bool {
	return l.Name == "" && l.Code == "" && l.Street == "" &&
		l.City == "" && l.Country == "" && l.Coordinates == nil
}

// Segment is a single plannable unit of travel with a time span.
// Which location fields are populated depends on the kind: flights carry
// origin/destination, transfers pickup/dropoff, everything else a single
// location.
type Segment struct {
	ID          string      `json:"id"`
	ItineraryID string      `json:"itinerary_id"`
	Kind        SegmentKind `json:"kind"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     time.Time   `json:"end_time"` // may equal StartTime if unknown
	Origin      *Location   `json:"origin,omitempty"`
	Destination *Location   `json:"destination,omitempty"`
	Location    *Location   `json:"location,omitempty"`
	Pickup      *Location   `json:"pickup,omitempty"`
	Dropoff     *Location   `json:"dropoff,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// StartLocation returns the place where a traveler must be when the segment
// begins, or nil if the segment carries no usable location data.
func (s Segment) StartLocation() *Location {
	var loc *Location
	switch s.Kind {
	case KindFlight:
		loc = s.Origin
	case KindTransfer:
		loc = s.Pickup
	case KindHotel, KindActivity, KindMeeting, KindCustom:
		loc = s.Location
	}
	if loc == nil || loc.IsEmpty() {
		return nil
	}
	return loc
}

// EndLocation returns the place where the segment leaves the traveler.
// Hotels, activities, meetings and custom segments return travelers to the
// same place they arrived at.
func (s Segment) EndLocation() *Location {
	var loc *Location
	switch s.Kind {
	case KindFlight:
		loc = s.Destination
	case KindTransfer:
		loc = s.Dropoff
	case KindHotel, KindActivity, KindMeeting, KindCustom:
		loc = s.Location
	}
	if loc == nil || loc.IsEmpty() {
		return nil
	}
	return loc
}

// Dependency is a directed timing relationship between two segments:
// if the depended-on segment's end time shifts, the dependent segment's
// start time must shift by the same delta.
type Dependency struct {
	ItineraryID string    `json:"itinerary_id"`
	DependsOnID string    `json:"depends_on_id"` // the segment being depended on
	SegmentID   string    `json:"segment_id"`    // the dependent segment
	CreatedAt   time.Time `json:"created_at"`
}

// SortChronological returns a copy of segments ordered by start time.
// The sort is stable: ties keep their original order.
func SortChronological(segments []Segment) []Segment {
	sorted := make([]Segment, len(segments))
	copy(sorted, segments)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	return sorted
}
