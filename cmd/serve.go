package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abuzz-labs/intel-cli/internal/chat"
	"github.com/abuzz-labs/intel-cli/internal/model"
	"github.com/abuzz-labs/intel-cli/internal/report"
	"github.com/abuzz-labs/intel-cli/internal/retrieval"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env.Chat, env.Report, cfg.Report.WindowDays),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(chatSvc *chat.Service, agg *report.Aggregator, defaultWindowDays int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/chat", handleChat(chatSvc))
	r.Post("/api/debrief", handleDebrief(agg, defaultWindowDays))

	return r
}

type chatRequest struct {
	Question string                   `json:"question"`
	History  []model.ConversationTurn `json:"history"`
}

func handleChat(svc *chat.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result, err := svc.Ask(r.Context(), req.Question, req.History)
		if err != nil {
			switch {
			case chat.IsInputError(err):
				writeError(w, http.StatusBadRequest, err.Error())
			case chat.IsGenerationError(err):
				zap.L().Error("chat generation failed", zap.Error(err))
				writeError(w, http.StatusBadGateway, "generation failed")
			default:
				zap.L().Error("chat request failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

type debriefRequest struct {
	Mode  string `json:"mode"` // "" generates; "count" only counts
	Days  int    `json:"days"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func handleDebrief(agg *report.Aggregator, defaultWindowDays int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req debriefRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		window, err := resolveWindow(req, time.Now().UTC(), defaultWindowDays)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if req.Mode == "count" {
			n, err := agg.Count(r.Context(), window)
			if err != nil {
				zap.L().Error("debrief count failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			writeJSON(w, http.StatusOK, map[string]int{"item_count": n})
			return
		}

		result, err := agg.Generate(r.Context(), window)
		if err != nil {
			zap.L().Error("debrief generation failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "generation failed")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func resolveWindow(req debriefRequest, now time.Time, defaultDays int) (*model.DateRange, error) {
	if req.Start != "" || req.End != "" {
		if req.Start == "" || req.End == "" {
			return nil, eris.New("both start and end are required when either is set")
		}
		start, err := time.Parse("2006-01-02", req.Start)
		if err != nil {
			return nil, eris.Errorf("unparseable start date %q", req.Start)
		}
		end, err := time.Parse("2006-01-02", req.End)
		if err != nil {
			return nil, eris.Errorf("unparseable end date %q", req.End)
		}
		if end.Before(start) {
			return nil, eris.New("end is before start")
		}
		return &model.DateRange{Start: start, End: end}, nil
	}

	days := req.Days
	if days <= 0 {
		days = defaultDays
	}
	w := retrieval.TrailingWindow(now, days)
	return &w, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
