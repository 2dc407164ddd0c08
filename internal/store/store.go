package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"attendance-backend/internal/geofence"
	"attendance-backend/internal/model"
)

// SessionStore owns locations and sessions and enforces the
// single-active-session-per-admin invariant.
type SessionStore interface {
	CreateLocation(ctx context.Context, adminID uuid.UUID, name string, shape geofence.Shape) (model.Location, error)
	ListLocations(ctx context.Context, adminID uuid.UUID) ([]model.Location, error)
	DeleteLocation(ctx context.Context, adminID, locationID uuid.UUID) error

	StartSession(ctx context.Context, adminID, locationID uuid.UUID, name string) (model.Session, error)
	EndSession(ctx context.Context, adminID uuid.UUID) (model.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (model.Session, error)
	ActiveSession(ctx context.Context, adminID uuid.UUID) (model.Session, error)
	ListActiveSessions(ctx context.Context) ([]model.Session, error)
	SessionHistory(ctx context.Context, adminID uuid.UUID) ([]SessionWithCount, error)
	SetSessionReport(ctx context.Context, sessionID uuid.UUID, path string) error
}

// AttendanceLedger owns attendance records and enforces at-most-one
// record per (user, session) pair.
type AttendanceLedger interface {
	Mark(ctx context.Context, userID, sessionID uuid.UUID, verified, adminOverride bool) (model.Attendance, bool, error)
	Find(ctx context.Context, userID, sessionID uuid.UUID) (*model.Attendance, error)
	ListBySession(ctx context.Context, adminID, sessionID uuid.UUID) ([]model.Attendance, error)
}

// Store bundles both stores over one database handle.
type Store interface {
	SessionStore
	AttendanceLedger
	DB() *gorm.DB
}

// SessionWithCount is a history row: an ended session plus how many
// attendance records it accumulated.
type SessionWithCount struct {
	model.Session
	AttendeeCount int64 `json:"attendeeCount"`
}

// gormStore implements Store using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// CreateLocation validates the shape and persists a new zone.
func (s *gormStore) CreateLocation(ctx context.Context, adminID uuid.UUID, name string, shape geofence.Shape) (model.Location, error) {
	if err := geofence.Validate(shape); err != nil {
		return model.Location{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if name == "" {
		return model.Location{}, fmt.Errorf("%w: location name is required", ErrValidation)
	}

	loc := model.Location{
		ID:        uuid.New(),
		AdminID:   adminID,
		Name:      name,
		ShapeType: shape.Type,
		Center:    shape.Center,
		Radius:    shape.RadiusMeters,
		Path:      shape.Path,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&loc).Error; err != nil {
		return model.Location{}, fmt.Errorf("failed to create location: %w", err)
	}
	return loc, nil
}

func (s *gormStore) ListLocations(ctx context.Context, adminID uuid.UUID) ([]model.Location, error) {
	var locations []model.Location
	err := s.db.WithContext(ctx).
		Where("admin_id = ?", adminID).
		Order("created_at ASC").
		Find(&locations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

// DeleteLocation removes a zone unless an active session still references
// it. The existence check, the reference check and the delete run in one
// transaction so a session started concurrently cannot slip between them.
func (s *gormStore) DeleteLocation(ctx context.Context, adminID, locationID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loc model.Location
		err := tx.Where("id = ? AND admin_id = ?", locationID, adminID).First(&loc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: location %s", ErrNotFound, locationID)
		}
		if err != nil {
			return fmt.Errorf("failed to look up location: %w", err)
		}

		var active int64
		err = tx.Model(&model.Session{}).
			Where("location_id = ? AND state = ?", locationID, model.SessionActive).
			Count(&active).Error
		if err != nil {
			return fmt.Errorf("failed to count active sessions: %w", err)
		}
		if active > 0 {
			return fmt.Errorf("%w: location %s is bound to an active session", ErrConflict, locationID)
		}

		if err := tx.Delete(&model.Location{}, "id = ?", locationID).Error; err != nil {
			return fmt.Errorf("failed to delete location: %w", err)
		}
		return nil
	})
}

// StartSession creates a new active session bound to the given location.
// Every session the admin still has active is ended in the same
// transaction, so concurrent starts by the same admin cannot leave two
// sessions active.
func (s *gormStore) StartSession(ctx context.Context, adminID, locationID uuid.UUID, name string) (model.Session, error) {
	if name == "" {
		return model.Session{}, fmt.Errorf("%w: session name is required", ErrValidation)
	}

	var session model.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loc model.Location
		err := tx.Where("id = ? AND admin_id = ?", locationID, adminID).First(&loc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: location %s", ErrNotFound, locationID)
		}
		if err != nil {
			return fmt.Errorf("failed to look up location: %w", err)
		}

		now := time.Now().UTC()

		// Supersede rather than reject: the single-active-session policy
		// ends prior sessions as a side effect of starting a new one.
		err = tx.Model(&model.Session{}).
			Where("admin_id = ? AND state = ?", adminID, model.SessionActive).
			Updates(map[string]any{"state": model.SessionEnded, "end_time": now}).Error
		if err != nil {
			return fmt.Errorf("failed to end prior sessions: %w", err)
		}

		session = model.Session{
			ID:         uuid.New(),
			Name:       name,
			LocationID: loc.ID,
			AdminID:    adminID,
			State:      model.SessionActive,
			StartTime:  now,
		}
		if err := tx.Create(&session).Error; err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		session.Location = loc
		return nil
	})
	if err != nil {
		return model.Session{}, err
	}
	return session, nil
}

// EndSession transitions the caller's active session to ended. The
// transition is a conditional update keyed on the current state; if a
// concurrent writer got there first the row count comes back zero and
// the caller sees NotFound.
func (s *gormStore) EndSession(ctx context.Context, adminID uuid.UUID) (model.Session, error) {
	var session model.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Location").
			Where("admin_id = ? AND state = ?", adminID, model.SessionActive).
			Order("start_time DESC").
			First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no active session", ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to look up active session: %w", err)
		}

		now := time.Now().UTC()
		res := tx.Model(&model.Session{}).
			Where("id = ? AND state = ?", session.ID, model.SessionActive).
			Updates(map[string]any{"state": model.SessionEnded, "end_time": now})
		if res.Error != nil {
			return fmt.Errorf("failed to end session: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: no active session", ErrNotFound)
		}

		session.State = model.SessionEnded
		session.EndTime = &now
		return nil
	})
	if err != nil {
		return model.Session{}, err
	}
	return session, nil
}

func (s *gormStore) GetSession(ctx context.Context, id uuid.UUID) (model.Session, error) {
	var session model.Session
	err := s.db.WithContext(ctx).Preload("Location").First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Session{}, fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to look up session: %w", err)
	}
	return session, nil
}

// ActiveSession returns the caller's currently active session.
func (s *gormStore) ActiveSession(ctx context.Context, adminID uuid.UUID) (model.Session, error) {
	var session model.Session
	err := s.db.WithContext(ctx).Preload("Location").
		Where("admin_id = ? AND state = ?", adminID, model.SessionActive).
		Order("start_time DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Session{}, fmt.Errorf("%w: no active session", ErrNotFound)
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to look up active session: %w", err)
	}
	return session, nil
}

// ListActiveSessions returns every active session system-wide. Users may
// belong to several admins' audiences, so this view is not scoped.
func (s *gormStore) ListActiveSessions(ctx context.Context) ([]model.Session, error) {
	var sessions []model.Session
	err := s.db.WithContext(ctx).Preload("Location").
		Where("state = ?", model.SessionActive).
		Order("start_time DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	return sessions, nil
}

// SessionHistory returns the caller's ended sessions newest first, each
// with its attendance count attached from one aggregate query.
func (s *gormStore) SessionHistory(ctx context.Context, adminID uuid.UUID) ([]SessionWithCount, error) {
	var sessions []model.Session
	err := s.db.WithContext(ctx).Preload("Location").
		Where("admin_id = ? AND state = ?", adminID, model.SessionEnded).
		Order("start_time DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list session history: %w", err)
	}

	type aggRow struct {
		SessionID uuid.UUID
		Total     int64
	}
	var aggs []aggRow
	err = s.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Select("session_id as session_id, COUNT(*) as total").
		Where("admin_id = ?", adminID).
		Group("session_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attendance counts: %w", err)
	}

	aggMap := make(map[uuid.UUID]int64, len(aggs))
	for _, a := range aggs {
		aggMap[a.SessionID] = a.Total
	}

	history := make([]SessionWithCount, 0, len(sessions))
	for _, sess := range sessions {
		history = append(history, SessionWithCount{
			Session:       sess,
			AttendeeCount: aggMap[sess.ID],
		})
	}
	return history, nil
}

func (s *gormStore) SetSessionReport(ctx context.Context, sessionID uuid.UUID, path string) error {
	err := s.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ?", sessionID).
		Update("report_path", path).Error
	if err != nil {
		return fmt.Errorf("failed to set session report path: %w", err)
	}
	return nil
}
