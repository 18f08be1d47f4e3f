// internal/adapter/storage/segment_store.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"itinera/internal/domain/continuity"
	"itinera/internal/domain/itinerary"
)

// SegmentStore implements itinerary.Store on top of PostgreSQL.
type SegmentStore struct {
	db *pgxpool.Pool
}

// NewSegmentStore creates a new segment store
func NewSegmentStore(db *pgxpool.Pool) *SegmentStore {
	return &SegmentStore{
		db: db,
	}
}

const segmentColumns = `
	id, itinerary_id, kind, name, description, category, notes,
	start_time, end_time,
	origin, destination, location, pickup, dropoff,
	created_at, updated_at
`

// ListSegments returns all segments of an itinerary ordered by start time
func (s *SegmentStore) ListSegments(ctx context.Context, itineraryID string) ([]itinerary.Segment, error) {
	query := `
		SELECT ` + segmentColumns + `
		FROM segments
		WHERE itinerary_id = $1
		ORDER BY start_time ASC, created_at ASC
	`

	rows, err := s.db.Query(ctx, query, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("error querying segments: %w", err)
	}
	defer rows.Close()

	var segments []itinerary.Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, *seg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating segments: %w", err)
	}

	return segments, nil
}

// GetSegment retrieves a segment by ID
func (s *SegmentStore) GetSegment(ctx context.Context, id string) (*itinerary.Segment, error) {
	query := `
		SELECT ` + segmentColumns + `
		FROM segments
		WHERE id = $1
	`

	seg, err := scanSegment(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, continuity.ErrSegmentNotFound
		}
		return nil, err
	}

	return seg, nil
}

// SaveSegment inserts or updates a segment
func (s *SegmentStore) SaveSegment(ctx context.Context, seg itinerary.Segment) error {
	query := `
		INSERT INTO segments (
			id, itinerary_id, kind, name, description, category, notes,
			start_time, end_time,
			origin, destination, location, pickup, dropoff,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9,
			$10, $11, $12, $13, $14,
			$15, $16
		)
		ON CONFLICT (id) DO UPDATE
		SET
			kind = $3,
			name = $4,
			description = $5,
			category = $6,
			notes = $7,
			start_time = $8,
			end_time = $9,
			origin = $10,
			destination = $11,
			location = $12,
			pickup = $13,
			dropoff = $14,
			updated_at = $16
	`

	if seg.CreatedAt.IsZero() {
		seg.CreatedAt = time.Now()
	}
	seg.UpdatedAt = time.Now()

	origin, err := marshalLocation(seg.Origin)
	if err != nil {
		return err
	}
	destination, err := marshalLocation(seg.Destination)
	if err != nil {
		return err
	}
	location, err := marshalLocation(seg.Location)
	if err != nil {
		return err
	}
	pickup, err := marshalLocation(seg.Pickup)
	if err != nil {
		return err
	}
	dropoff, err := marshalLocation(seg.Dropoff)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		ctx,
		query,
		seg.ID,
		seg.ItineraryID,
		seg.Kind,
		seg.Name,
		seg.Description,
		seg.Category,
		seg.Notes,
		seg.StartTime,
		seg.EndTime,
		origin,
		destination,
		location,
		pickup,
		dropoff,
		seg.CreatedAt,
		seg.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("error saving segment: %w", err)
	}

	return nil
}

// DeleteSegment removes a segment and any dependency edges touching it
func (s *SegmentStore) DeleteSegment(ctx context.Context, id string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM dependencies WHERE depends_on_id = $1 OR segment_id = $1`, id); err != nil {
		return fmt.Errorf("error deleting dependency edges: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM segments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting segment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return continuity.ErrSegmentNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing delete: %w", err)
	}

	return nil
}

// ListDependencies returns the explicit dependency edges of an itinerary
func (s *SegmentStore) ListDependencies(ctx context.Context, itineraryID string) ([]itinerary.Dependency, error) {
	query := `
		SELECT itinerary_id, depends_on_id, segment_id, created_at
		FROM dependencies
		WHERE itinerary_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.Query(ctx, query, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("error querying dependencies: %w", err)
	}
	defer rows.Close()

	var deps []itinerary.Dependency
	for rows.Next() {
		var d itinerary.Dependency
		if err := rows.Scan(&d.ItineraryID, &d.DependsOnID, &d.SegmentID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning dependency: %w", err)
		}
		deps = append(deps, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dependencies: %w", err)
	}

	return deps, nil
}

// AddDependency declares an explicit dependency edge
func (s *SegmentStore) AddDependency(ctx context.Context, d itinerary.Dependency) error {
	query := `
		INSERT INTO dependencies (itinerary_id, depends_on_id, segment_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (depends_on_id, segment_id) DO NOTHING
	`

	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	if _, err := s.db.Exec(ctx, query, d.ItineraryID, d.DependsOnID, d.SegmentID, d.CreatedAt); err != nil {
		return fmt.Errorf("error saving dependency: %w", err)
	}

	return nil
}

// RemoveDependency removes an explicit dependency edge
func (s *SegmentStore) RemoveDependency(ctx context.Context, dependsOnID, segmentID string) error {
	query := `DELETE FROM dependencies WHERE depends_on_id = $1 AND segment_id = $2`

	if _, err := s.db.Exec(ctx, query, dependsOnID, segmentID); err != nil {
		return fmt.Errorf("error deleting dependency: %w", err)
	}

	return nil
}

// ApplySegmentTimes persists the start/end times of the given segments
// within a single transaction, so a cascade is committed all-or-nothing.
func (s *SegmentStore) ApplySegmentTimes(ctx context.Context, segments []itinerary.Segment) error {
	if len(segments) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE segments
		SET start_time = $2, end_time = $3, updated_at = $4
		WHERE id = $1
	`

	now := time.Now()
	for _, seg := range segments {
		tag, err := tx.Exec(ctx, query, seg.ID, seg.StartTime, seg.EndTime, now)
		if err != nil {
			return fmt.Errorf("error updating segment %s: %w", seg.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("segment %s: %w", seg.ID, continuity.ErrSegmentNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing segment times: %w", err)
	}

	return nil
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSegment(row rowScanner) (*itinerary.Segment, error) {
	var seg itinerary.Segment
	var origin, destination, location, pickup, dropoff []byte

	err := row.Scan(
		&seg.ID,
		&seg.ItineraryID,
		&seg.Kind,
		&seg.Name,
		&seg.Description,
		&seg.Category,
		&seg.Notes,
		&seg.StartTime,
		&seg.EndTime,
		&origin,
		&destination,
		&location,
		&pickup,
		&dropoff,
		&seg.CreatedAt,
		&seg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("error scanning segment: %w", err)
	}

	if seg.Origin, err = unmarshalLocation(origin); err != nil {
		return nil, err
	}
	if seg.Destination, err = unmarshalLocation(destination); err != nil {
		return nil, err
	}
	if seg.Location, err = unmarshalLocation(location); err != nil {
		return nil, err
	}
	if seg.Pickup, err = unmarshalLocation(pickup); err != nil {
		return nil, err
	}
	if seg.Dropoff, err = unmarshalLocation(dropoff); err != nil {
		return nil, err
	}

	return &seg, nil
}

func marshalLocation(loc *itinerary.Location) ([]byte, error) {
	if loc == nil {
		return nil, nil
	}

	data, err := json.Marshal(loc)
	if err != nil {
		return nil, fmt.Errorf("error marshaling location: %w", err)
	}

	return data, nil
}

func unmarshalLocation(data []byte) (*itinerary.Location, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var loc itinerary.Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, fmt.Errorf("error unmarshaling location: %w", err)
	}

	return &loc, nil
}
