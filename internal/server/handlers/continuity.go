// internal/server/handlers/continuity.go

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"

	"itinera/internal/domain/continuity"
	"itinera/internal/domain/itinerary"
)

// ContinuityHandler handles gap detection and location analysis requests
type ContinuityHandler struct {
	store       itinerary.Store
	detector    continuity.Detector
	matcher     continuity.Matcher
	inferencer  continuity.Inferencer
	eventBus    *nats.Conn
	eventsTopic string
}

// NewContinuityHandler creates a new continuity handler
func NewContinuityHandler(
	store itinerary.Store,
	detector continuity.Detector,
	matcher continuity.Matcher,
	inferencer continuity.Inferencer,
	eventBus *nats.Conn,
	eventsTopic string,
) *ContinuityHandler {
	return &ContinuityHandler{
		store:       store,
		detector:    detector,
		matcher:     matcher,
		inferencer:  inferencer,
		eventBus:    eventBus,
		eventsTopic: eventsTopic,
	}
}

// DetectGaps scans an itinerary for location discontinuities between
// consecutive segments and returns the gaps that meet the confidence
// threshold
func (h *ContinuityHandler) DetectGaps(w http.ResponseWriter, r *http.Request) {
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

	gaps := h.detector.DetectLocationGaps(segments)
	if gaps == nil {
		gaps = []continuity.Gap{}
	}

	for _, gap := range gaps {
		h.publishGapEvent(itineraryID, gap)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"itinerary_id": itineraryID,
		"gaps":         gaps,
	})
}

// matchRequest is the payload for MatchLocations
type matchRequest struct {
	A itinerary.Location `json:"a"`
	B itinerary.Location `json:"b"`
}

// MatchLocations reports whether two location descriptions refer to the
// same place
func (h *ContinuityHandler) MatchLocations(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid match payload", err)
		return
	}

	if req.A.IsEmpty() || req.B.IsEmpty() {
		respondWithError(w, http.StatusBadRequest, "Both locations are required", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{
		"same": h.matcher.IsSameLocation(req.A, req.B),
	})
}

// EstimateDuration returns the inferred duration and effective end time
// of a segment
func (h *ContinuityHandler) EstimateDuration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "Missing segment ID", nil)
		return
	}

	seg, err := h.store.GetSegment(r.Context(), id)
	if err != nil {
		if errors.Is(err, continuity.ErrSegmentNotFound) {
			respondWithError(w, http.StatusNotFound, "Segment not found", nil)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to load segment", err)
		}
		return
	}

	estimate := h.inferencer.InferActivityDuration(*seg)

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"segment_id":         seg.ID,
		"estimate":           estimate,
		"effective_end_time": h.inferencer.EffectiveEndTime(*seg),
	})
}

// publishGapEvent publishes a detected gap to the event bus
func (h *ContinuityHandler) publishGapEvent(itineraryID string, gap continuity.Gap) {
	if h.eventBus == nil {
		return
	}

	event := map[string]interface{}{
		"type":         "gap.detected",
		"itinerary_id": itineraryID,
		"gap":          gap,
		"time":         time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal gap event: %v", err)
		return
	}

	subject := fmt.Sprintf("%s.%s.events", h.eventsTopic, itineraryID)
	if err := h.eventBus.Publish(subject, data); err != nil {
		log.Printf("Failed to publish gap event: %v", err)
	}
}
