// Package httpapi exposes the chat router over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/uniassist/supportcore/routercore/chat"
	"github.com/uniassist/supportcore/routercore/observability"
	"github.com/uniassist/supportcore/routercore/session"
	"github.com/uniassist/supportcore/routercore/workflow"
)

// maxChatBodyBytes bounds one chat request body.
const maxChatBodyBytes = 1 << 20

// Handler serves the chat API on top of a workflow manager.
type Handler struct {
	manager *workflow.Manager
	logger  *zap.Logger
}

func NewHandler(manager *workflow.Manager, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{manager: manager, logger: logger}
}

// RegisterRoutes mounts all API routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.Chat)
		r.Get("/history/{userID}", h.History)
		r.Delete("/history/{userID}", h.Reset)
		r.Get("/stats/{userID}", h.Stats)
	})
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

type chatRequest struct {
	UserID    string   `json:"user_id"`
	Message   string   `json:"message"`
	FilePaths []string `json:"file_paths,omitempty"`
}

// Chat runs one conversational turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		Error(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.Message == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	result := h.manager.ProcessMessage(r.Context(), req.UserID, req.Message, req.FilePaths...)

	status := http.StatusOK
	if result.Err {
		status = http.StatusInternalServerError
	}
	JSON(w, status, result)
}

type historyResponse struct {
	UserID   string             `json:"user_id"`
	Messages []chat.ChatMessage `json:"messages"`
}

// History returns the stored conversation for a user. An optional
// role query parameter narrows the result to one side of the dialogue.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	messages := h.manager.History(r.Context(), userID)

	if raw := r.URL.Query().Get("role"); raw != "" {
		role, err := chat.RoleFromString(raw)
		if err != nil {
			Error(w, http.StatusBadRequest, "unknown role: "+raw)
			return
		}
		filtered := make([]chat.ChatMessage, 0, len(messages))
		for _, msg := range messages {
			if msg.Role == role {
				filtered = append(filtered, msg)
			}
		}
		messages = filtered
	}

	if messages == nil {
		messages = []chat.ChatMessage{}
	}
	JSON(w, http.StatusOK, historyResponse{UserID: userID, Messages: messages})
}

// Reset clears a user's conversation and any pending confirmation.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	cleared := h.manager.Reset(r.Context(), userID)
	JSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"cleared": cleared,
	})
}

type statsResponse struct {
	UserID string        `json:"user_id"`
	Stats  session.Stats `json:"stats"`
}

// Stats returns per-user conversation statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	stats := h.manager.Stats(r.Context(), userID)
	JSON(w, http.StatusOK, statsResponse{UserID: userID, Stats: stats})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ===== Middleware =====

// Metrics records request counts and latency per route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		observability.RecordHTTPRequest(route, strconv.Itoa(rec.status), time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
