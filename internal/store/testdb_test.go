package store

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbinit "attendance-backend/internal/db"
	"attendance-backend/internal/geofence"
	"attendance-backend/internal/model"
)

// newTestDB opens an in-memory SQLite database scoped to the test. The
// pool is pinned to one connection so concurrent test goroutines
// serialize at the driver instead of tripping SQLITE_BUSY.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbinit.Migrate(db))
	return db
}

func seedAdmin(t *testing.T, db *gorm.DB) model.Admin {
	t.Helper()
	admin := model.Admin{
		ID:           uuid.New(),
		Name:         "Test Admin",
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()),
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, db.Create(&admin).Error)
	return admin
}

func seedUser(t *testing.T, db *gorm.DB) model.User {
	t.Helper()
	user := model.User{
		ID:             uuid.New(),
		Name:           "Test User",
		Email:          fmt.Sprintf("%s@example.com", uuid.NewString()),
		PasswordHash:   "x",
		FaceDescriptor: []float64{0.1, 0.2, 0.3},
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func testCircle() geofence.Shape {
	return geofence.Shape{
		Type:         geofence.ShapeCircle,
		Center:       geofence.LatLng{Lat: 40.0, Lng: -74.0},
		RadiusMeters: 150,
	}
}
