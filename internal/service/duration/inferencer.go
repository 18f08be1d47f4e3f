// internal/service/duration/inferencer.go

package duration

import (
	"strings"
	"time"

	"itinera/internal/domain/continuity"
	"itinera/internal/domain/itinerary"
)

// pattern maps activity keywords to a typical duration. Patterns are
// checked in order; the first keyword found anywhere in the segment's text
// wins.
type pattern struct {
	keywords   []string
	hours      float64
	confidence continuity.ConfidenceLevel
	reason     string
}

// patterns is ordered by specificity: meals before entertainment before
// generic activities before catch-all categories.
var patterns = []pattern{
	// Meals
	{[]string{"breakfast"}, 1, continuity.ConfidenceHigh, "breakfast typically lasts about an hour"},
	{[]string{"brunch"}, 1.5, continuity.ConfidenceHigh, "brunch typically lasts about 90 minutes"},
	{[]string{"lunch"}, 1.5, continuity.ConfidenceHigh, "lunch typically lasts about 90 minutes"},
	{[]string{"dinner", "supper"}, 2, continuity.ConfidenceHigh, "dinner typically lasts about two hours"},
	{[]string{"drinks", "cocktail", "aperitif"}, 1.5, continuity.ConfidenceHigh, "drinks typically last about 90 minutes"},

	// Entertainment
	{[]string{"movie", "cinema", "film"}, 2, continuity.ConfidenceHigh, "movies typically run about two hours"},
	{[]string{"theater", "theatre", "concert", "show"}, 2.5, continuity.ConfidenceHigh, "shows typically run about two and a half hours"},
	{[]string{"opera", "ballet"}, 3, continuity.ConfidenceHigh, "opera and ballet performances typically run about three hours"},

	// Activities
	{[]string{"tour", "excursion", "sightseeing"}, 3, continuity.ConfidenceHigh, "tours typically last about three hours"},
	{[]string{"hike", "hiking", "trek"}, 3, continuity.ConfidenceHigh, "hikes typically last about three hours"},
	{[]string{"museum", "gallery", "exhibit"}, 2, continuity.ConfidenceHigh, "museum visits typically last about two hours"},
	{[]string{"spa", "massage"}, 2, continuity.ConfidenceHigh, "spa visits typically last about two hours"},
	{[]string{"wine tasting", "tasting", "winery", "vineyard"}, 2, continuity.ConfidenceHigh, "tastings typically last about two hours"},
	{[]string{"golf"}, 4, continuity.ConfidenceHigh, "a round of golf typically takes about four hours"},
	{[]string{"cooking class", "cooking"}, 3, continuity.ConfidenceHigh, "cooking classes typically last about three hours"},

	// Generic categories
	{[]string{"meeting", "appointment", "call"}, 1, continuity.ConfidenceMedium, "meetings typically last about an hour"},
	{[]string{"game", "stadium", "sports"}, 3, continuity.ConfidenceMedium, "sports events typically last about three hours"},
	{[]string{"workshop", "class", "lesson", "seminar"}, 2, continuity.ConfidenceMedium, "classes typically last about two hours"},
}

// defaultEstimate is the fallback when no pattern matches. Inference never
// fails, so downstream gap filling can always compute a transfer window.
var defaultEstimate = continuity.DurationEstimate{
	Hours:      2,
	Confidence: continuity.ConfidenceLow,
	Reason:     "no recognized activity pattern, assuming two hours",
}

// Inferencer implements the continuity.Inferencer interface by keyword
// matching over a segment's descriptive text.
type Inferencer struct{}

// NewInferencer creates a new duration inferencer.
func NewInferencer() *Inferencer {
	return &Inferencer{}
}

// InferActivityDuration estimates how long a segment lasts based on its
// name, description, location name, category and notes.
func (inf *Inferencer) InferActivityDuration(s itinerary.Segment) continuity.DurationEstimate {
	text := searchText(s)

	for _, p := range patterns {
		for _, kw := range p.keywords {
			if strings.Contains(text, kw) {
				return continuity.DurationEstimate{
					Hours:      p.hours,
					Confidence: p.confidence,
					Reason:     p.reason,
				}
			}
		}
	}

	return defaultEstimate
}

// EffectiveEndTime returns the segment's explicit end time when it is
// meaningfully later than the start, otherwise the start plus the inferred
// duration.
func (inf *Inferencer) EffectiveEndTime(s itinerary.Segment) time.Time {
	if s.EndTime.After(s.StartTime) {
		return s.EndTime
	}

	estimate := inf.InferActivityDuration(s)
	return s.StartTime.Add(time.Duration(estimate.Hours * float64(time.Hour)))
}

// searchText concatenates the segment fields scanned for keywords.
func searchText(s itinerary.Segment) string {
	parts := []string{s.Name, s.Description, s.Category, s.Notes}
	if s.Location != nil {
		parts = append(parts, s.Location.Name)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
