// Package coordinator orchestrates session lifecycle and attendance
// admission over the store and pushes the resulting events out. Events
// are published strictly after the store mutation has committed, so a
// subscriber that queries the store on receipt observes the new state.
package coordinator

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"attendance-backend/internal/model"
	"attendance-backend/internal/notification"
	"attendance-backend/internal/report"
	"attendance-backend/internal/store"
)

// Coordinator wires the stores to the publish channel.
type Coordinator struct {
	store     store.Store
	publisher notification.Publisher
	reports   report.Generator
	logger    zerolog.Logger
}

// New creates a coordinator. The report generator may be nil, in which
// case ended sessions get no report file.
func New(s store.Store, publisher notification.Publisher, reports report.Generator, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		store:     s,
		publisher: publisher,
		reports:   reports,
		logger:    logger,
	}
}

// StartSession starts a new session, superseding any prior active one
// owned by the admin, and publishes session-started with the location
// resolved inline.
func (c *Coordinator) StartSession(ctx context.Context, adminID, locationID uuid.UUID, name string) (model.Session, error) {
	session, err := c.store.StartSession(ctx, adminID, locationID, name)
	if err != nil {
		return model.Session{}, err
	}

	c.publisher.Publish(notification.Event{
		Name: notification.EventSessionStarted,
		Data: session,
	})
	return session, nil
}

// EndSession ends the admin's active session, generates the attendance
// report best-effort and publishes session-ended with just the id, which
// is enough for consumers to discard their local state.
func (c *Coordinator) EndSession(ctx context.Context, adminID uuid.UUID) (model.Session, error) {
	session, err := c.store.EndSession(ctx, adminID)
	if err != nil {
		return model.Session{}, err
	}

	if c.reports != nil {
		if path, err := c.generateReport(ctx, adminID, session); err != nil {
			c.logger.Error().Err(err).Str("session", session.ID.String()).Msg("failed to generate session report")
		} else if path != "" {
			session.ReportPath = path
		}
	}

	c.publisher.Publish(notification.Event{
		Name: notification.EventSessionEnded,
		Data: map[string]string{"sessionId": session.ID.String()},
	})
	return session, nil
}

// MarkAttendance admits the user to the session. Only a fresh admission
// publishes user-verified; the idempotent duplicate path returns the
// existing record without an event.
func (c *Coordinator) MarkAttendance(ctx context.Context, userID, sessionID uuid.UUID, verified, adminOverride bool) (model.Attendance, error) {
	record, created, err := c.store.Mark(ctx, userID, sessionID, verified, adminOverride)
	if err != nil {
		return model.Attendance{}, err
	}

	if created {
		c.publisher.Publish(notification.Event{
			Name: notification.EventUserVerified,
			Data: record,
		})
	}
	return record, nil
}

func (c *Coordinator) generateReport(ctx context.Context, adminID uuid.UUID, session model.Session) (string, error) {
	records, err := c.store.ListBySession(ctx, adminID, session.ID)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}

	path, err := c.reports.Generate(session, records)
	if err != nil {
		return "", err
	}
	if err := c.store.SetSessionReport(ctx, session.ID, path); err != nil {
		return "", err
	}
	return path, nil
}
