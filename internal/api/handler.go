package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wekolo/justified-grid/internal/grid"
	"github.com/wekolo/justified-grid/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires the justifier and storage dependencies into HTTP handlers.
type Handler struct {
	justifier grid.Justifier
	storage   storage.Storage
	logger    *zap.Logger

	clock func() time.Time

	mu                   sync.RWMutex
	constraintsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithLogger sets the logger used for layout diagnostics, such as dropped
// items. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(justifier grid.Justifier, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		justifier: justifier,
		storage:   store,
		logger:    zap.NewNop(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.constraintsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetConstraints(w http.ResponseWriter, r *http.Request) {
	_ = r
	constraints, err := h.storage.GetConstraints()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := constraintsResponse{
		Constraints: newConstraintsPayload(constraints),
		UpdatedAt:   h.currentConstraintsUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutConstraints(w http.ResponseWriter, r *http.Request) {
	var req constraintsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if req.Constraints == nil {
		writeError(w, http.StatusBadRequest, "Invalid constraints", "constraints object is required")
		return
	}

	if err := h.storage.SetConstraints(req.Constraints.toConstraints()); err != nil {
		if isConstraintViolation(err) {
			writeError(w, http.StatusBadRequest, "Invalid constraints", err.Error(), constraintSuggestion)
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markConstraintsUpdated()

	constraints, err := h.storage.GetConstraints()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := constraintsResponse{
		Constraints: newConstraintsPayload(constraints),
		UpdatedAt:   h.currentConstraintsUpdatedAt(),
		Message:     "Constraints updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Ratios) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid ratios", "ratios must contain at least one aspect ratio")
		return
	}
	for _, ratio := range req.Ratios {
		if ratio <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid ratios", "aspect ratios must be positive numbers")
			return
		}
	}

	var constraints grid.Constraints
	if req.Constraints != nil {
		constraints = req.Constraints.toConstraints()
	} else {
		stored, err := h.storage.GetConstraints()
		if err != nil {
			writeInternalError(w, err)
			return
		}
		constraints = stored
	}

	start := time.Now()
	layout, layoutErr := h.justifier.Justify(constraints, req.Ratios)
	elapsed := time.Since(start)

	if layoutErr != nil {
		if isConstraintViolation(layoutErr) {
			writeError(w, http.StatusBadRequest, "Invalid constraints", layoutErr.Error(), constraintSuggestion)
			return
		}
		writeInternalError(w, layoutErr)
		return
	}

	if layout.Dropped > 0 {
		h.logger.Warn("layout dropped items",
			zap.Int("dropped", layout.Dropped),
			zap.Int("ratios", len(req.Ratios)),
			zap.String("request_id", requestIDFromContext(r.Context())),
		)
	}

	rows := make([]rowPayload, 0, len(layout.Rows))
	for _, row := range layout.Rows {
		rows = append(rows, rowPayload{Count: row.Count, Height: row.Height})
	}

	resp := layoutResponse{
		Ratios:            len(req.Ratios),
		Rows:              rows,
		Heights:           layout.Heights,
		Dropped:           layout.Dropped,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) currentConstraintsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.constraintsUpdatedAt
}

func (h *Handler) markConstraintsUpdated() {
	h.mu.Lock()
	h.constraintsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

const constraintSuggestion = "Ensure minLineHeight <= maxLineHeight and availableWidth >= minItemWidth"

func isConstraintViolation(err error) bool {
	return errors.Is(err, grid.ErrMinHeightAboveMax) || errors.Is(err, grid.ErrWidthBelowMinItem)
}

// constraintsPayload is the JSON representation of grid.Constraints.
type constraintsPayload struct {
	AvailableWidth float64 `json:"availableWidth"`
	MinLineHeight  float64 `json:"minLineHeight"`
	MaxLineHeight  float64 `json:"maxLineHeight"`
	MinItemWidth   float64 `json:"minItemWidth"`
	Gap            float64 `json:"gap"`
}

func newConstraintsPayload(c grid.Constraints) constraintsPayload {
	return constraintsPayload{
		AvailableWidth: c.AvailableWidth,
		MinLineHeight:  c.MinLineHeight,
		MaxLineHeight:  c.MaxLineHeight,
		MinItemWidth:   c.MinItemWidth,
		Gap:            c.Gap,
	}
}

func (p constraintsPayload) toConstraints() grid.Constraints {
	return grid.Constraints{
		AvailableWidth: p.AvailableWidth,
		MinLineHeight:  p.MinLineHeight,
		MaxLineHeight:  p.MaxLineHeight,
		MinItemWidth:   p.MinItemWidth,
		Gap:            p.Gap,
	}
}

type constraintsRequest struct {
	Constraints *constraintsPayload `json:"constraints"`
}

type layoutRequest struct {
	Ratios      []float64           `json:"ratios"`
	Constraints *constraintsPayload `json:"constraints"`
}

type rowPayload struct {
	Count  int     `json:"count"`
	Height float64 `json:"height"`
}

type layoutResponse struct {
	Ratios            int          `json:"ratios"`
	Rows              []rowPayload `json:"rows"`
	Heights           []float64    `json:"heights"`
	Dropped           int          `json:"dropped"`
	CalculationTimeMs int64        `json:"calculationTimeMs"`
}

type constraintsResponse struct {
	Constraints constraintsPayload `json:"constraints"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	Message     string             `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
