package cascade

import (
	"errors"
	"testing"
	"time"

	"itinera/internal/domain/continuity"
	"itinera/internal/domain/itinerary"
)

func seg(id string, start, end time.Time) itinerary.Segment {
	return itinerary.Segment{ID: id, Kind: itinerary.KindActivity, StartTime: start, EndTime: end}
}

func at(hour int) time.Time {
	return time.Date(2026, 6, 1, hour, 0, 0, 0, time.UTC)
}

func dep(dependsOn, dependent string) itinerary.Dependency {
	return itinerary.Dependency{DependsOnID: dependsOn, SegmentID: dependent}
}

// TestExplicitDependencyCascade tests that a declared dependency shifts
// the dependent segment while unrelated siblings stay put.
func TestExplicitDependencyCascade(t *testing.T) {
	a := NewAdjuster()

	segments := []itinerary.Segment{
		seg("flight", at(8), at(11)),
		seg("hotel", at(12), at(13)),
		seg("activity", at(15), at(17)),
	}
	deps := []itinerary.Dependency{dep("flight", "hotel")}

	result, err := a.AdjustDependentSegments(segments, deps, "flight", 2*time.Hour)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	byID := make(map[string]itinerary.Segment)
	for _, s := range result.Segments {
		byID[s.ID] = s
	}

	if !byID["flight"].StartTime.Equal(at(10)) || !byID["flight"].EndTime.Equal(at(13)) {
		t.Errorf("Moved segment not shifted: %+v", byID["flight"])
	}
	if !byID["hotel"].StartTime.Equal(at(14)) || !byID["hotel"].EndTime.Equal(at(15)) {
		t.Errorf("Dependent segment not shifted: %+v", byID["hotel"])
	}
	if !byID["activity"].StartTime.Equal(at(15)) || !byID["activity"].EndTime.Equal(at(17)) {
		t.Errorf("Sibling with no dependency edge was shifted: %+v", byID["activity"])
	}

	if len(result.Changed) != 2 {
		t.Errorf("Expected 2 changed segments, got %v", result.Changed)
	}
}

// TestChronologicalBaseline tests that without explicit declarations,
// chronological order forms the dependency chain.
func TestChronologicalBaseline(t *testing.T) {
	a := NewAdjuster()

	segments := []itinerary.Segment{
		seg("first", at(8), at(9)),
		seg("second", at(10), at(11)),
		seg("third", at(12), at(13)),
	}

	result, err := a.AdjustDependentSegments(segments, nil, "second", time.Hour)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	byID := make(map[string]itinerary.Segment)
	for _, s := range result.Segments {
		byID[s.ID] = s
	}

	if !byID["first"].StartTime.Equal(at(8)) {
		t.Errorf("Earlier segment should be untouched, got %+v", byID["first"])
	}
	if !byID["second"].StartTime.Equal(at(11)) {
		t.Errorf("Moved segment not shifted, got %+v", byID["second"])
	}
	if !byID["third"].StartTime.Equal(at(13)) {
		t.Errorf("Chronological dependent not shifted, got %+v", byID["third"])
	}
}

// TestCascadeConservation tests that every reachable segment shifts by
// exactly the delta and every unreachable one by zero.
func TestCascadeConservation(t *testing.T) {
	a := NewAdjuster()

	segments := []itinerary.Segment{
		seg("a", at(6), at(7)),
		seg("b", at(8), at(9)),
		seg("c", at(10), at(11)),
		seg("d", at(12), at(13)),
	}
	deps := []itinerary.Dependency{
		dep("a", "b"),
		dep("b", "c"),
		// d has no incoming edge
	}

	delta := -30 * time.Minute
	result, err := a.AdjustDependentSegments(segments, deps, "a", delta)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	changed := make(map[string]bool)
	for _, id := range result.Changed {
		changed[id] = true
	}

	for i, s := range result.Segments {
		orig := segments[i]
		if changed[s.ID] {
			if s.StartTime.Sub(orig.StartTime) != delta || s.EndTime.Sub(orig.EndTime) != delta {
				t.Errorf("Segment %s shifted by wrong delta: %+v", s.ID, s)
			}
		} else {
			if !s.StartTime.Equal(orig.StartTime) || !s.EndTime.Equal(orig.EndTime) {
				t.Errorf("Unreachable segment %s was modified: %+v", s.ID, s)
			}
		}
	}

	if !changed["a"] || !changed["b"] || !changed["c"] || changed["d"] {
		t.Errorf("Wrong affected set: %v", result.Changed)
	}

	// Input must not be mutated
	if !segments[0].StartTime.Equal(at(6)) {
		t.Error("Adjuster mutated its input")
	}
}

// TestCycleRejection tests that an explicit A->B->C->A cycle fails the
// move regardless of which segment is moved.
func TestCycleRejection(t *testing.T) {
	a := NewAdjuster()

	segments := []itinerary.Segment{
		seg("a", at(8), at(9)),
		seg("b", at(10), at(11)),
		seg("c", at(12), at(13)),
	}
	deps := []itinerary.Dependency{
		dep("a", "b"),
		dep("b", "c"),
		dep("c", "a"),
	}

	for _, moved := range []string{"a", "b", "c"} {
		_, err := a.AdjustDependentSegments(segments, deps, moved, time.Hour)

		var cycleErr *continuity.CycleError
		if !errors.As(err, &cycleErr) {
			t.Fatalf("Expected CycleError moving %s, got %v", moved, err)
		}
		if len(cycleErr.SegmentIDs) < 3 {
			t.Errorf("Expected the cycle members to be identified, got %v", cycleErr.SegmentIDs)
		}
	}

	// Nothing was applied
	if !segments[0].StartTime.Equal(at(8)) {
		t.Error("Segments modified on a failed move")
	}
}

// TestZeroDeltaIsNoOp tests that moving a segment by zero succeeds and
// leaves every segment's times unchanged.
func TestZeroDeltaIsNoOp(t *testing.T) {
	a := NewAdjuster()

	segments := []itinerary.Segment{
		seg("a", at(8), at(9)),
		seg("b", at(10), at(11)),
	}
	deps := []itinerary.Dependency{dep("a", "b")}

	result, err := a.AdjustDependentSegments(segments, deps, "a", 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i, s := range result.Segments {
		if !s.StartTime.Equal(segments[i].StartTime) || !s.EndTime.Equal(segments[i].EndTime) {
			t.Errorf("Segment %s changed on a zero-delta move: %+v", s.ID, s)
		}
	}
}

// TestMovedSegmentNotFound tests the not-found error path.
func TestMovedSegmentNotFound(t *testing.T) {
	a := NewAdjuster()

	segments := []itinerary.Segment{seg("a", at(8), at(9))}

	_, err := a.AdjustDependentSegments(segments, nil, "ghost", time.Hour)
	if !errors.Is(err, continuity.ErrSegmentNotFound) {
		t.Fatalf("Expected ErrSegmentNotFound, got %v", err)
	}
}

// TestDanglingDependencyIgnored tests that edges naming unknown segments
// do not break the cascade.
func TestDanglingDependencyIgnored(t *testing.T) {
	a := NewAdjuster()

	segments := []itinerary.Segment{
		seg("a", at(8), at(9)),
		seg("b", at(10), at(11)),
	}
	deps := []itinerary.Dependency{
		dep("a", "b"),
		dep("deleted", "b"),
		dep("a", "deleted"),
	}

	result, err := a.AdjustDependentSegments(segments, deps, "a", time.Hour)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Changed) != 2 {
		t.Errorf("Expected a and b to shift, got %v", result.Changed)
	}
}
