package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbinit "attendance-backend/internal/db"
	"attendance-backend/internal/identity"
	"attendance-backend/internal/model"
	"attendance-backend/internal/store"
)

func newReportHandler(t *testing.T, reportsDir string) (*Handler, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, dbinit.Migrate(db))

	return NewHandler(store.NewGormStore(db), nil, nil, nil, nil, reportsDir), db
}

func seedEndedSession(t *testing.T, db *gorm.DB, adminID uuid.UUID, reportPath string) model.Session {
	t.Helper()
	now := time.Now().UTC()
	session := model.Session{
		ID:         uuid.New(),
		Name:       "past lecture",
		LocationID: uuid.New(),
		AdminID:    adminID,
		State:      model.SessionEnded,
		StartTime:  now.Add(-time.Hour),
		EndTime:    &now,
		ReportPath: reportPath,
	}
	require.NoError(t, db.Create(&session).Error)
	return session
}

func downloadReport(h *Handler, principal identity.Principal, sessionID uuid.UUID) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/admin/sessions/"+sessionID.String()+"/report", nil)
	c.Params = gin.Params{{Key: "id", Value: sessionID.String()}}
	c.Set("principal", principal)
	h.DownloadReport(c)
	return w
}

func TestDownloadReport(t *testing.T) {
	reportsDir := t.TempDir()
	h, db := newReportHandler(t, reportsDir)
	admin := identity.Principal{ID: uuid.New(), Role: identity.RoleAdmin}

	t.Run("serves a report from the reports directory", func(t *testing.T) {
		path := filepath.Join(reportsDir, "session-x.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("xlsx-bytes"), 0o644))
		session := seedEndedSession(t, db, admin.ID, path)

		w := downloadReport(h, admin, session.ID)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "xlsx-bytes", w.Body.String())
	})

	t.Run("refuses a path outside the reports directory", func(t *testing.T) {
		session := seedEndedSession(t, db, admin.ID, "/etc/passwd")

		w := downloadReport(h, admin, session.ID)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("refuses a traversal out of the reports directory", func(t *testing.T) {
		session := seedEndedSession(t, db, admin.ID, filepath.Join(reportsDir, "..", "escape.xlsx"))

		w := downloadReport(h, admin, session.ID)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("another admin's session is forbidden", func(t *testing.T) {
		session := seedEndedSession(t, db, admin.ID, filepath.Join(reportsDir, "session-x.xlsx"))
		other := identity.Principal{ID: uuid.New(), Role: identity.RoleAdmin}

		w := downloadReport(h, other, session.ID)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("session without a report is not found", func(t *testing.T) {
		session := seedEndedSession(t, db, admin.ID, "")

		w := downloadReport(h, admin, session.ID)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
