// internal/service/cascade/adjuster.go

package cascade

import (
	"time"

	"itinera/internal/domain/continuity"
	"itinera/internal/domain/itinerary"
)

// Adjuster implements the continuity.Adjuster interface. The dependency
// graph is rebuilt from the current segment list on every call; no graph
// state persists across calls.
type Adjuster struct{}

// NewAdjuster creates a new cascade adjuster.
func NewAdjuster() *Adjuster {
	return &Adjuster{}
}

// AdjustDependentSegments shifts the moved segment by delta and propagates
// the same delta to every segment transitively depending on it. The result
// is all-or-nothing: on any error nothing is shifted and the caller must
// not apply changes.
func (a *Adjuster) AdjustDependentSegments(
	segments []itinerary.Segment,
	deps []itinerary.Dependency,
	movedID string,
	delta time.Duration,
) (*continuity.CascadeResult, error) {
	byID := make(map[string]int, len(segments))
	for i, s := range segments {
		byID[s.ID] = i
	}

	if _, ok := byID[movedID]; !ok {
		return nil, continuity.ErrSegmentNotFound
	}

	edges := buildEdges(segments, deps, byID)

	if cycle := findCycle(segments, edges); cycle != nil {
		return nil, &continuity.CycleError{SegmentIDs: cycle}
	}

	// Reachability from the moved segment; the moved segment itself is
	// part of the affected set.
	affected := map[string]bool{movedID: true}
	stack := []string{movedID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, dependent := range edges[id] {
			if affected[dependent] {
				continue
			}
			affected[dependent] = true
			stack = append(stack, dependent)
		}
	}

	result := &continuity.CascadeResult{
		Segments: make([]itinerary.Segment, len(segments)),
	}

	for i, s := range segments {
		if affected[s.ID] {
			s.StartTime = s.StartTime.Add(delta)
			s.EndTime = s.EndTime.Add(delta)
			result.Changed = append(result.Changed, s.ID)
		}
		result.Segments[i] = s
	}

	return result, nil
}

// buildEdges constructs the adjacency list: depended-on segment ID to its
// dependent segment IDs. Explicit declarations take precedence; the
// chronological baseline (each segment depends on the one before it) only
// applies when the caller declared no explicit dependencies at all.
func buildEdges(segments []itinerary.Segment, deps []itinerary.Dependency, byID map[string]int) map[string][]string {
	edges := make(map[string][]string)

	explicit := 0
	for _, d := range deps {
		// Ignore edges pointing at segments not in the supplied list
		if _, ok := byID[d.DependsOnID]; !ok {
			continue
		}
		if _, ok := byID[d.SegmentID]; !ok {
			continue
		}
		edges[d.DependsOnID] = append(edges[d.DependsOnID], d.SegmentID)
		explicit++
	}

	if explicit > 0 {
		return edges
	}

	sorted := itinerary.SortChronological(segments)
	for i := 0; i < len(sorted)-1; i++ {
		edges[sorted[i].ID] = append(edges[sorted[i].ID], sorted[i+1].ID)
	}

	return edges
}

// findCycle runs a depth-first search with recursion-stack tracking over
// the whole graph. It returns the IDs forming a cycle, or nil when the
// graph is a DAG.
func findCycle(segments []itinerary.Segment, edges map[string][]string) []string {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)

	state := make(map[string]int, len(segments))
	var path []string

	var visit func(id string) []string
	visit = func(id string) []string {
		state[id] = inStack
		path = append(path, id)

		for _, next := range edges[id] {
			switch state[next] {
			case inStack:
				// Slice the recorded path from the first occurrence of
				// next to close the cycle.
				for i, p := range path {
					if p == next {
						cycle := make([]string, len(path)-i)
						copy(cycle, path[i:])
						return cycle
					}
				}
				return []string{next, id}
			case unvisited:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}

		path = path[:len(path)-1]
		state[id] = done
		return nil
	}

	for _, s := range segments {
		if state[s.ID] == unvisited {
			if cycle := visit(s.ID); cycle != nil {
				return cycle
			}
		}
	}

	return nil
}
