package venues

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"karaoke/internal/session"
)

// Store is a session.Persister that can also provision new venues
type Store interface {
	session.Persister
	CreateVenue(ctx context.Context, venueKey, venueName string) error
}

// PostgresRepository keeps venue documents in the venue_documents table
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Load(ctx context.Context, venueKey string) (*session.VenueState, error) {
	var doc VenueDocument
	err := r.db.WithContext(ctx).Where("venue_key = ?", venueKey).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("venue %s: %w", venueKey, session.ErrNotFound)
		}
		return nil, fmt.Errorf("load venue %s: %w", venueKey, err)
	}
	return doc.toState(), nil
}

// Save writes a full update as an upsert. A partial update only touches the
// columns it names; if the row does not exist yet it is created from the
// patches alone.
func (r *PostgresRepository) Save(ctx context.Context, venueKey string, update session.Update) error {
	if update.Full {
		return r.upsert(ctx, venueKey, update)
	}

	result := r.db.WithContext(ctx).
		Model(&VenueDocument{}).
		Where("venue_key = ?", venueKey).
		Updates(updateColumns(update))
	if result.Error != nil {
		return fmt.Errorf("update venue %s: %w", venueKey, result.Error)
	}
	if result.RowsAffected == 0 {
		return r.upsert(ctx, venueKey, update)
	}
	return nil
}

func (r *PostgresRepository) upsert(ctx context.Context, venueKey string, update session.Update) error {
	var state session.VenueState
	update.ApplyTo(&state)
	doc := documentFromState(venueKey, state)

	columns := make([]string, 0, 6)
	for col := range updateColumns(update) {
		columns = append(columns, col)
	}

	// venue_name is owned by registration and never overwritten here
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "venue_key"}},
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
	}).Create(doc).Error
	if err != nil {
		return fmt.Errorf("upsert venue %s: %w", venueKey, err)
	}
	return nil
}

// CreateVenue provisions a fresh document with the default seat layout. An
// existing document is left alone.
func (r *PostgresRepository) CreateVenue(ctx context.Context, venueKey, venueName string) error {
	doc := documentFromState(venueKey, session.VenueState{
		VenueName: venueName,
		Spots:     session.InitializeSeats(),
		SongQueue: []session.QueueEntry{},
		History:   []session.HistoryEntry{},
	})
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(doc).Error
	if err != nil {
		return fmt.Errorf("create venue %s: %w", venueKey, err)
	}
	return nil
}
