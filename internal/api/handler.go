package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"attendance-backend/internal/coordinator"
	"attendance-backend/internal/facematch"
	"attendance-backend/internal/identity"
	"attendance-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      store.Store
	coord      *coordinator.Coordinator
	tokens     *identity.Service
	matcher    *facematch.Matcher
	webpush    *webpush.Options
	reportsDir string
}

// NewHandler creates a new API handler. reportsDir bounds which report
// files may be served back to clients.
func NewHandler(s store.Store, coord *coordinator.Coordinator, tokens *identity.Service, matcher *facematch.Matcher, webpushOptions *webpush.Options, reportsDir string) *Handler {
	return &Handler{
		store:      s,
		coord:      coord,
		tokens:     tokens,
		matcher:    matcher,
		webpush:    webpushOptions,
		reportsDir: reportsDir,
	}
}
