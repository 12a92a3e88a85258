// Package handlers contains the HTTP handler implementations for the
// planrelay service.
//
// This file implements the HacknPlan webhook handler. The handler is NOT
// behind auth middleware -- it is called directly by the source system.
// Security is a shared-secret query parameter compared in constant time.
package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"planrelay/internal/core"
	"planrelay/internal/payload"
	"planrelay/internal/pipeline"
	"planrelay/internal/types"
)

// eventTypeHeader is where the source system officially declares the event
// type. Older revisions put it in the body instead.
const eventTypeHeader = "X-HacknPlan-Event"

// eventTypeBodyKeys are the body fallbacks for the event type, tried in order.
var eventTypeBodyKeys = []string{"Event", "Type"}

// Dispatcher enqueues a notification for asynchronous delivery. Implemented
// by *delivery.Dispatcher; abstracted for testability.
type Dispatcher interface {
	Enqueue(msg types.NotificationMessage) bool
}

// ackResponse is the body returned to the source system. Always 200: the
// sender must never be pushed into a retry storm by delivery problems on our
// side.
type ackResponse struct {
	Status string `json:"status"`
}

// HacknPlanHandler receives source-system webhooks, normalizes them through
// the pipeline, and hands the result to the delivery dispatcher.
type HacknPlanHandler struct {
	token           types.SecretString
	maxBodyBytes    int64
	pipeline        *pipeline.Pipeline
	dispatcher      Dispatcher
	deliveryEnabled bool
	logger          *slog.Logger
}

// NewHacknPlanHandler creates the handler. dispatcher may be nil only when
// deliveryEnabled is false (no Discord webhook configured); events are then
// normalized and logged but not delivered.
func NewHacknPlanHandler(
	token types.SecretString,
	maxBodyBytes int64,
	pl *pipeline.Pipeline,
	dispatcher Dispatcher,
	deliveryEnabled bool,
	logger *slog.Logger,
) *HacknPlanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HacknPlanHandler{
		token:           token,
		maxBodyBytes:    maxBodyBytes,
		pipeline:        pl,
		dispatcher:      dispatcher,
		deliveryEnabled: deliveryEnabled,
		logger:          logger,
	}
}

// RegisterRoutes mounts the webhook endpoint.
func (h *HacknPlanHandler) RegisterRoutes(r chi.Router) {
	r.Post("/hacknplan", h.Handle)
}

// Handle processes one incoming webhook:
//  1. Validate the shared-secret token (when configured).
//  2. Parse the body into a payload tree, whatever the content type.
//  3. Determine the event type: header, then body keys, then inference.
//  4. Normalize through the pipeline and enqueue for delivery.
//  5. Acknowledge immediately with 200, regardless of delivery outcome.
func (h *HacknPlanHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if err := h.authorize(r); err != nil {
		core.Error(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	tree := payload.FromRequest(r)

	eventType := r.Header.Get(eventTypeHeader)
	if eventType == "" {
		eventType = eventTypeFromBody(tree)
	}

	msg := h.pipeline.Build(eventType, r.Method, tree)

	h.logger.Info("event received",
		"event_type", eventType,
		"headline", msg.Content,
		"request_id", types.GetRequestID(r.Context()),
	)

	if h.deliveryEnabled {
		h.dispatcher.Enqueue(msg)
	}

	core.JSON(w, r, http.StatusOK, ackResponse{Status: "ok"})
}

// authorize compares the ?token query parameter against the configured shared
// secret in constant time. An unset secret disables the check entirely.
func (h *HacknPlanHandler) authorize(r *http.Request) error {
	if !h.token.IsSet() {
		return nil
	}

	provided := r.URL.Query().Get("token")
	if provided == "" {
		return types.NewAppError(
			types.ErrCodeAuthTokenMissing,
			"missing token query parameter",
			nil,
		)
	}

	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.token.Unmask())) != 1 {
		return types.NewAppError(
			types.ErrCodeAuthTokenInvalid,
			"invalid token",
			nil,
		)
	}

	return nil
}

// eventTypeFromBody applies the historical body fallbacks. Only non-empty
// strings qualify; anything else leaves the event type empty so the pipeline
// falls back to best-effort inference.
func eventTypeFromBody(tree payload.Tree) string {
	values := make([]any, 0, len(eventTypeBodyKeys))
	for _, key := range eventTypeBodyKeys {
		values = append(values, payload.Get(tree, key))
	}
	return payload.PickString(values...)
}
