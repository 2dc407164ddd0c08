package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockStore backs the store with sqlmock so tests can force SQL-level
// failures that an in-memory database never produces.
func newMockStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewGormStore(db), mock
}

func TestListLocations_QueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "locations"`)).
		WillReturnError(errors.New("connection reset"))

	_, err := s.ListLocations(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list locations")
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveSessions_QueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sessions"`)).
		WillReturnError(errors.New("connection reset"))

	_, err := s.ListActiveSessions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list active sessions")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetSessionReport_UpdateError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "sessions"`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.SetSessionReport(context.Background(), uuid.New(), "/reports/session-x.xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set session report path")

	assert.NoError(t, mock.ExpectationsWereMet())
}
