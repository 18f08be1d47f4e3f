// internal/server/handlers/itinerary.go

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"itinera/internal/domain/continuity"
	"itinera/internal/domain/itinerary"
)

var validKinds = map[itinerary.SegmentKind]bool{
	itinerary.KindFlight:   true,
	itinerary.KindHotel:    true,
	itinerary.KindActivity: true,
	itinerary.KindTransfer: true,
	itinerary.KindMeeting:  true,
	itinerary.KindCustom:   true,
}

// ItineraryHandler handles segment and dependency HTTP requests
type ItineraryHandler struct {
	store       itinerary.Store
	adjuster    continuity.Adjuster
	eventBus    *nats.Conn
	eventsTopic string
}

// NewItineraryHandler creates a new itinerary handler
func NewItineraryHandler(store itinerary.Store, adjuster continuity.Adjuster, eventBus *nats.Conn, eventsTopic string) *ItineraryHandler {
	return &ItineraryHandler{
		store:       store,
		adjuster:    adjuster,
		eventBus:    eventBus,
		eventsTopic: eventsTopic,
	}
}

// ListSegments returns the segments of an itinerary in chronological order
func (h *ItineraryHandler) ListSegments(w http.ResponseWriter, r *http.Request) {
	itineraryID := chi.URLParam(r, "id")
	if itineraryID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing itinerary ID", nil)
		return
	}

	segments, err := h.store.ListSegments(r.Context(), itineraryID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list segments", err)
		return
	}

	if segments == nil {
		segments = []itinerary.Segment{}
	}

	respondWithJSON(w, http.StatusOK, segments)
}

// CreateSegment creates a new segment within an itinerary
func (h *ItineraryHandler) CreateSegment(w http.ResponseWriter, r *http.Request) {
	itineraryID := chi.URLParam(r, "id")
	if itineraryID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing itinerary ID", nil)
		return
	}

	var seg itinerary.Segment
	if err := json.NewDecoder(r.Body).Decode(&seg); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid segment payload", err)
		return
	}

	if !validKinds[seg.Kind] {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Unknown segment kind: %s", seg.Kind), nil)
		return
	}

	if seg.StartTime.IsZero() {
		respondWithError(w, http.StatusBadRequest, "Missing start time", nil)
		return
	}

	// An unknown end time is stored as the start time; the duration
	// inferencer supplies an estimate when one is needed.
	if seg.EndTime.IsZero() {
		seg.EndTime = seg.StartTime
	}
	if seg.EndTime.Before(seg.StartTime) {
		respondWithError(w, http.StatusBadRequest, "End time before start time", nil)
		return
	}

	seg.ID = uuid.New().String()
	seg.ItineraryID = itineraryID

	if err := h.store.SaveSegment(r.Context(), seg); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save segment", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, seg)
}

// UpdateSegment updates an existing segment
func (h *ItineraryHandler) UpdateSegment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing segment ID", nil)
		return
	}

	existing, err := h.store.GetSegment(r.Context(), id)
	if err != nil {
		if errors.Is(err, continuity.ErrSegmentNotFound) {
			respondWithError(w, http.StatusNotFound, "Segment not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to load segment", err)
		}
		return
	}

	var seg itinerary.Segment
	if err := json.NewDecoder(r.Body).Decode(&seg); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid segment payload", err)
		return
	}

	if !validKinds[seg.Kind] {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Unknown segment kind: %s", seg.Kind), nil)
		return
	}

	if seg.EndTime.IsZero() {
		seg.EndTime = seg.StartTime
	}
	if seg.EndTime.Before(seg.StartTime) {
		respondWithError(w, http.StatusBadRequest, "End time before start time", nil)
		return
	}

	// Identity and ownership are not updatable
	seg.ID = existing.ID
	seg.ItineraryID = existing.ItineraryID
	seg.CreatedAt = existing.CreatedAt

	if err := h.store.SaveSegment(r.Context(), seg); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save segment", err)
		return
	}

	respondWithJSON(w, http.StatusOK, seg)
}

// DeleteSegment removes a segment
func (h *ItineraryHandler) DeleteSegment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing segment ID", nil)
		return
	}

	if err := h.store.DeleteSegment(r.Context(), id); err != nil {
		if errors.Is(err, continuity.ErrSegmentNotFound) {
			respondWithError(w, http.StatusNotFound, "Segment not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to delete segment", err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// moveRequest is the payload for MoveSegment
type moveRequest struct {
	DeltaMs int64 `json:"delta_ms"`
}

// MoveSegment shifts a segment in time and cascades the shift to every
// segment depending on it. All resulting time changes are committed in a
// single transaction or not at all.
func (h *ItineraryHandler) MoveSegment(w http.ResponseWriter, r *http.Request) {
	itineraryID := chi.URLParam(r, "id")
	segmentID := chi.URLParam(r, "sid")
	if itineraryID == "" || segmentID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing itinerary or segment ID", nil)
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid move payload", err)
		return
	}
	segments, err := h.store.ListSegments(r.Context(), itineraryID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list segments", err)
		return
	}

	deps, err := h.store.ListDependencies(r.Context(), itineraryID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list dependencies", err)
		return
	}

	delta := time.Duration(req.DeltaMs) * time.Millisecond
	result, err := h.adjuster.AdjustDependentSegments(segments, deps, segmentID, delta)
	if err != nil {
		var cycleErr *continuity.CycleError
		switch {
		case errors.Is(err, continuity.ErrSegmentNotFound):
			respondWithError(w, http.StatusNotFound, "Segment not found in itinerary", nil)
		case errors.As(err, &cycleErr):
			respondWithJSON(w, http.StatusConflict, map[string]interface{}{
				"error":    "Dependency cycle detected",
				"segments": cycleErr.SegmentIDs,
			})
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to adjust segments", err)
		}
		return
	}

	changed := make(map[string]bool, len(result.Changed))
	for _, id := range result.Changed {
		changed[id] = true
	}

	var toApply []itinerary.Segment
	for _, s := range result.Segments {
		if changed[s.ID] {
			toApply = append(toApply, s)
		}
	}

	if err := h.store.ApplySegmentTimes(r.Context(), toApply); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to apply adjusted times", err)
		return
	}

	h.publishEvent(itineraryID, "segment.adjusted", map[string]interface{}{
		"moved_segment_id": segmentID,
		"delta_ms":         req.DeltaMs,
		"changed":          result.Changed,
	})

	respondWithJSON(w, http.StatusOK, result)
}

// dependencyRequest is the payload for AddDependency
type dependencyRequest struct {
	DependsOnID string `json:"depends_on_id"`
	SegmentID   string `json:"segment_id"`
}

// AddDependency declares that one segment's timing depends on another's
func (h *ItineraryHandler) AddDependency(w http.ResponseWriter, r *http.Request) {
	itineraryID := chi.URLParam(r, "id")
	if itineraryID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing itinerary ID", nil)
		return
	}

	var req dependencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid dependency payload", err)
		return
	}

	if req.DependsOnID == "" || req.SegmentID == "" {
		respondWithError(w, http.StatusBadRequest, "Both segment IDs are required", nil)
		return
	}
	if req.DependsOnID == req.SegmentID {
		respondWithError(w, http.StatusBadRequest, "A segment cannot depend on itself", nil)
		return
	}

	for _, id := range []string{req.DependsOnID, req.SegmentID} {
		seg, err := h.store.GetSegment(r.Context(), id)
		if err != nil {
			if errors.Is(err, continuity.ErrSegmentNotFound) {
				respondWithError(w, http.StatusNotFound, fmt.Sprintf("Segment not found: %s", id), nil)
			} else {
				respondWithError(w, http.StatusInternalServerError, "Failed to load segment", err)
			}
			return
		}
		if seg.ItineraryID != itineraryID {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Segment %s belongs to another itinerary", id), nil)
			return
		}
	}

	dep := itinerary.Dependency{
		ItineraryID: itineraryID,
		DependsOnID: req.DependsOnID,
		SegmentID:   req.SegmentID,
	}

	if err := h.store.AddDependency(r.Context(), dep); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save dependency", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, dep)
}

// RemoveDependency removes an explicit dependency edge
func (h *ItineraryHandler) RemoveDependency(w http.ResponseWriter, r *http.Request) {
	dependsOnID := r.URL.Query().Get("depends_on_id")
	segmentID := r.URL.Query().Get("segment_id")
	if dependsOnID == "" || segmentID == "" {
		respondWithError(w, http.StatusBadRequest, "Both segment IDs are required", nil)
		return
	}

	if err := h.store.RemoveDependency(r.Context(), dependsOnID, segmentID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to remove dependency", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// publishEvent publishes an itinerary event to the event bus
func (h *ItineraryHandler) publishEvent(itineraryID, eventType string, payload map[string]interface{}) {
	if h.eventBus == nil {
		return
	}

	payload["type"] = eventType
	payload["itinerary_id"] = itineraryID
	payload["time"] = time.Now()

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}

	subject := fmt.Sprintf("%s.%s.events", h.eventsTopic, itineraryID)
	if err := h.eventBus.Publish(subject, data); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil && code >= 500 {
		log.Printf("HTTP %d: %s: %v", code, message, err)
	}

	respondWithJSON(w, code, map[string]string{"error": message})
}
