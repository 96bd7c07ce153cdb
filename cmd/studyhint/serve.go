package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/Lokesh-Kollepara/studyhint"
)

const maxMessageLen = 5000

var flagListenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hint chatbot HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		// JSON logs for the server process.
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})))

		cfg := loadConfig()
		if flagListenAddr != "" {
			cfg.ListenAddr = flagListenAddr
		}

		engine, err := studyhint.New(cfg)
		if err != nil {
			return fmt.Errorf("creating engine: %w", err)
		}
		defer engine.Close()

		// Load the knowledge base on startup like the original app.
		if cfg.DataDir != "" {
			if report, err := engine.IngestDir(cmd.Context(), cfg.DataDir); err != nil {
				slog.Warn("startup ingest failed", "error", err)
			} else {
				slog.Info("knowledge base loaded",
					"materials", report.MaterialsLoaded,
					"assignments", report.AssignmentsLoaded,
					"errors", len(report.Errors))
			}
		}

		// Expired sessions are swept periodically.
		sweepCtx, stopSweep := context.WithCancel(context.Background())
		defer stopSweep()
		go sessionSweeper(sweepCtx, engine)

		h := newAPIHandler(engine)
		srv := &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      h.routes(),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute, // hint generation can be slow
			IdleTimeout:  120 * time.Second,
		}

		done := make(chan os.Signal, 1)
		signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			slog.Info("server starting", "addr", cfg.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("server error", "error", err)
				os.Exit(1)
			}
		}()

		<-done
		slog.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		slog.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagListenAddr, "addr", "", "listen address (default from config, :8000)")
	rootCmd.AddCommand(serveCmd)
}

// sessionSweeper removes expired chat sessions every ten minutes.
func sessionSweeper(ctx context.Context, engine studyhint.Engine) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			engine.CleanupSessions()
		}
	}
}

type apiHandler struct {
	engine studyhint.Engine
}

func newAPIHandler(engine studyhint.Engine) *apiHandler {
	return &apiHandler{engine: engine}
}

func (h *apiHandler) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(logMiddleware)

	r.Get("/health", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.handleChat)
		r.Get("/history/{sessionID}", h.handleHistory)
		r.Post("/clear/{sessionID}", h.handleClear)
		r.Get("/session/{sessionID}", h.handleSessionInfo)
		r.Post("/cleanup", h.handleCleanup)
		r.Get("/stats", h.handleStats)
		r.Get("/assignment-questions", h.handleAssignmentQuestions)
	})
	return r
}

// POST /api/chat
func (h *apiHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(message) > maxMessageLen {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("message exceeds %d characters", maxMessageLen))
		return
	}

	result, err := h.engine.Ask(ctx, req.SessionID, message)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate a response")
		slog.Error("chat error", "error", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GET /api/history/{sessionID}
func (h *apiHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	history, err := h.engine.History(sessionID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"history":    history,
	})
}

// POST /api/clear/{sessionID}
func (h *apiHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.engine.ClearSession(sessionID); err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID,
		"status":     "cleared",
	})
}

// GET /api/session/{sessionID}
func (h *apiHandler) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	info, err := h.engine.SessionInfo(sessionID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// POST /api/cleanup
func (h *apiHandler) handleCleanup(w http.ResponseWriter, r *http.Request) {
	removed := h.engine.CleanupSessions()
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// GET /api/stats
func (h *apiHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.engine.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to collect stats")
		slog.Error("stats error", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GET /api/assignment-questions
func (h *apiHandler) handleAssignmentQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.engine.AssignmentQuestions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list assignment questions")
		slog.Error("assignment questions error", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"assignments": questions,
	})
}

// GET /health
func (h *apiHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, studyhint.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
	slog.Error("session error", "error", err)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// logMiddleware logs each request with method, path, status, and duration.
func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", time.Since(start).Round(time.Millisecond),
			"remote", r.RemoteAddr,
		)
	})
}

// recoveryMiddleware catches panics, logs the stack trace, and returns 500.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"error", fmt.Sprintf("%v", err),
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"error": "internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
