package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbinit "attendance-backend/internal/db"
	"attendance-backend/internal/geofence"
	"attendance-backend/internal/model"
	"attendance-backend/internal/notification"
	"attendance-backend/internal/store"
)

// recordingPublisher captures events and lets a test observe the store
// at the moment of publish.
type recordingPublisher struct {
	mu        sync.Mutex
	events    []notification.Event
	onPublish func(notification.Event)
}

func (p *recordingPublisher) Publish(event notification.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	if p.onPublish != nil {
		p.onPublish(event)
	}
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.events))
	for i, e := range p.events {
		names[i] = e.Name
	}
	return names
}

type stubReports struct {
	generated int
}

func (g *stubReports) Generate(session model.Session, records []model.Attendance) (string, error) {
	g.generated++
	return fmt.Sprintf("/reports/session-%s.xlsx", session.ID), nil
}

func setup(t *testing.T) (*gorm.DB, store.Store, *recordingPublisher, *stubReports, *Coordinator) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, dbinit.Migrate(db))

	s := store.NewGormStore(db)
	pub := &recordingPublisher{}
	reports := &stubReports{}
	coord := New(s, pub, reports, zerolog.Nop())
	return db, s, pub, reports, coord
}

func seed(t *testing.T, db *gorm.DB, s store.Store) (model.Admin, model.User, model.Location) {
	t.Helper()
	admin := model.Admin{ID: uuid.New(), Name: "Admin", Email: uuid.NewString() + "@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&admin).Error)
	user := model.User{ID: uuid.New(), Name: "User", Email: uuid.NewString() + "@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&user).Error)

	loc, err := s.CreateLocation(context.Background(), admin.ID, "lecture hall", geofence.Shape{
		Type:         geofence.ShapeCircle,
		Center:       geofence.LatLng{Lat: 40, Lng: -74},
		RadiusMeters: 100,
	})
	require.NoError(t, err)
	return admin, user, loc
}

func TestStartSession_PublishesAfterCommit(t *testing.T) {
	db, s, pub, _, coord := setup(t)
	admin, _, loc := seed(t, db, s)
	ctx := context.Background()

	// At publish time the store must already reflect the new session.
	pub.onPublish = func(event notification.Event) {
		session, ok := event.Data.(model.Session)
		require.True(t, ok)
		stored, err := s.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, model.SessionActive, stored.State)
	}

	session, err := coord.StartSession(ctx, admin.ID, loc.ID, "morning lecture")
	require.NoError(t, err)

	require.Equal(t, []string{notification.EventSessionStarted}, pub.names())
	published := pub.events[0].Data.(model.Session)
	assert.Equal(t, session.ID, published.ID)
	assert.Equal(t, loc.ID, published.Location.ID, "location resolved inline")
}

func TestStartSession_FailurePublishesNothing(t *testing.T) {
	db, s, pub, _, coord := setup(t)
	admin, _, _ := seed(t, db, s)

	_, err := coord.StartSession(context.Background(), admin.ID, uuid.New(), "nowhere")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, pub.names())
}

func TestEndSession_PublishesIDAndGeneratesReport(t *testing.T) {
	db, s, pub, reports, coord := setup(t)
	admin, user, loc := seed(t, db, s)
	ctx := context.Background()

	session, err := coord.StartSession(ctx, admin.ID, loc.ID, "morning lecture")
	require.NoError(t, err)
	_, err = coord.MarkAttendance(ctx, user.ID, session.ID, true, false)
	require.NoError(t, err)

	ended, err := coord.EndSession(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionEnded, ended.State)
	assert.Equal(t, 1, reports.generated)
	assert.NotEmpty(t, ended.ReportPath)

	names := pub.names()
	require.Equal(t, []string{
		notification.EventSessionStarted,
		notification.EventUserVerified,
		notification.EventSessionEnded,
	}, names)

	payload, ok := pub.events[2].Data.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, session.ID.String(), payload["sessionId"])

	// Report path persisted on the stored session too.
	stored, err := s.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, ended.ReportPath, stored.ReportPath)
}

func TestEndSession_NoAttendanceSkipsReport(t *testing.T) {
	db, s, pub, reports, coord := setup(t)
	admin, _, loc := seed(t, db, s)
	ctx := context.Background()

	_, err := coord.StartSession(ctx, admin.ID, loc.ID, "empty lecture")
	require.NoError(t, err)
	ended, err := coord.EndSession(ctx, admin.ID)
	require.NoError(t, err)

	assert.Zero(t, reports.generated)
	assert.Empty(t, ended.ReportPath)
	assert.Contains(t, pub.names(), notification.EventSessionEnded)
}

func TestMarkAttendance_DuplicateDoesNotRepublish(t *testing.T) {
	db, s, pub, _, coord := setup(t)
	admin, user, loc := seed(t, db, s)
	ctx := context.Background()

	session, err := coord.StartSession(ctx, admin.ID, loc.ID, "morning lecture")
	require.NoError(t, err)

	first, err := coord.MarkAttendance(ctx, user.ID, session.ID, true, false)
	require.NoError(t, err)

	second, err := coord.MarkAttendance(ctx, user.ID, session.ID, true, false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// One user-verified event despite two successful calls.
	verified := 0
	for _, name := range pub.names() {
		if name == notification.EventUserVerified {
			verified++
		}
	}
	assert.Equal(t, 1, verified)
}
