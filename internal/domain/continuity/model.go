package continuity

import (
	"fmt"
	"strings"
	"time"

	"itinera/internal/domain/itinerary"
)

// GapType classifies the relationship between the locations flanking a gap.
type GapType string

const (
	GapLocalTransfer GapType = "local_transfer"
	GapDomestic      GapType = "domestic_gap"
	GapInternational GapType = "international_gap"
	GapUnknown       GapType = "unknown"
)

// FillKind is the kind of segment suggested to bridge a gap.
type FillKind string

const (
	FillFlight   FillKind = "flight"
	FillTransfer FillKind = "transfer"
)

// Gap is a detected, unexplained change of location between two
// chronologically adjacent segments. Gaps are recomputed fresh on every
// detection pass and never persisted.
type Gap struct {
	BeforeSegmentID string             `json:"before_segment_id"`
	AfterSegmentID  string             `json:"after_segment_id"`
	BeforeIndex     int                `json:"before_index"` // index in the sorted segment list
	AfterIndex      int                `json:"after_index"`
	From            itinerary.Location `json:"from"` // end location of the earlier segment
	To              itinerary.Location `json:"to"`   // start location of the later segment
	Type            GapType            `json:"type"`
	Confidence      int                `json:"confidence"` // 0-100
	Description     string             `json:"description"`
	SuggestedFill   FillKind           `json:"suggested_fill"`

	// WindowStart is the effective end time of the earlier segment
	// (inferred when it has no explicit end time) and WindowEnd the start
	// of the later one. A fill segment must fit inside this window.
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

// ConfidenceLevel grades how reliable a duration estimate is.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// DurationEstimate is an inferred duration for a segment lacking an
// explicit end time.
type DurationEstimate struct {
	Hours      float64         `json:"hours"`
	Confidence ConfidenceLevel `json:"confidence"`
	Reason     string          `json:"reason"`
}

// CascadeResult is the outcome of a successful cascade adjustment. Segments
// holds every input segment, shifted where affected; Changed lists the IDs
// whose times moved (the moved segment included) so callers can persist
// only those.
type CascadeResult struct {
	Segments []itinerary.Segment `json:"segments"`
	Changed  []string            `json:"changed"`
}

// CycleError reports that the dependency edges of an itinerary do not form
// a DAG. The requested move is fatal; nothing is applied.
type CycleError struct {
	SegmentIDs []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle involving segments: %s", strings.Join(e.SegmentIDs, " -> "))
}
