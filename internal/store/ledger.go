package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"attendance-backend/internal/model"
)

// Mark admits a user to a session exactly once. Uniqueness on
// (user, session) is enforced by the storage layer: the insert runs with
// ON CONFLICT DO NOTHING, so of two concurrent calls exactly one row
// survives and the loser falls through to fetching it. The second return
// value reports whether this call created the record; the duplicate path
// is a designed no-op, not a suppressed error.
func (s *gormStore) Mark(ctx context.Context, userID, sessionID uuid.UUID, verified, adminOverride bool) (model.Attendance, bool, error) {
	var session model.Session
	err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Attendance{}, false, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return model.Attendance{}, false, fmt.Errorf("failed to look up session: %w", err)
	}
	if !session.Active() {
		return model.Attendance{}, false, fmt.Errorf("%w: session %s has ended", ErrInvalidState, sessionID)
	}

	// Resolve the attendee before touching the ledger so a bad user id
	// (an admin typo on the manual-mark path) fails clean instead of
	// leaving a row behind. Records are never deleted, so a phantom row
	// would pollute history counts forever.
	var user model.User
	err = s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Attendance{}, false, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	if err != nil {
		return model.Attendance{}, false, fmt.Errorf("failed to look up user: %w", err)
	}

	record := model.Attendance{
		ID:            uuid.New(),
		UserID:        userID,
		SessionID:     sessionID,
		AdminID:       session.AdminID,
		Timestamp:     time.Now().UTC(),
		Verified:      verified,
		AdminOverride: adminOverride,
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "session_id"}},
		DoNothing: true,
	}).Create(&record)
	if res.Error != nil {
		return model.Attendance{}, false, fmt.Errorf("failed to create attendance record: %w", res.Error)
	}

	created := res.RowsAffected > 0
	if !created {
		// Lost the race or a retry after a network drop: return the row
		// that won, unchanged.
		err = s.db.WithContext(ctx).Preload("User").
			Where("user_id = ? AND session_id = ?", userID, sessionID).
			First(&record).Error
		if err != nil {
			return model.Attendance{}, false, fmt.Errorf("failed to fetch existing attendance record: %w", err)
		}
		return record, false, nil
	}

	record.User = user
	return record, true, nil
}

// Find returns the user's record for the session, or nil if none exists.
func (s *gormStore) Find(ctx context.Context, userID, sessionID uuid.UUID) (*model.Attendance, error) {
	var record model.Attendance
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up attendance record: %w", err)
	}
	return &record, nil
}

// ListBySession returns the session's attendance records, oldest first.
// Only the owning admin may read them.
func (s *gormStore) ListBySession(ctx context.Context, adminID, sessionID uuid.UUID) ([]model.Attendance, error) {
	var session model.Session
	err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if session.AdminID != adminID {
		return nil, fmt.Errorf("%w: session %s belongs to another admin", ErrForbidden, sessionID)
	}

	var records []model.Attendance
	err = s.db.WithContext(ctx).Preload("User").
		Where("session_id = ?", sessionID).
		Order("timestamp ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	return records, nil
}
