package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"avisos/internal/config"
	"avisos/internal/database"
	"avisos/internal/handler"
	"avisos/internal/mw"
	"avisos/internal/service"
)

func main() {
	cfg := config.New()

	db, err := database.NewDB(cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB(db)

	if err := database.InitSchema(db); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		os.Exit(1)
	}

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		slog.Error("failed to load settings", "error", err)
		os.Exit(1)
	}

	festivos, err := service.LoadFestivos(cfg.FestivosPath)
	if err != nil {
		slog.Error("failed to load festivos", "error", err)
		os.Exit(1)
	}

	// Services
	authSvc := service.NewAuthService(db)
	avisoSvc := service.NewAvisoService(db)
	assignSvc := service.NewAssignService(avisoSvc)
	calSvc := service.NewCalendarService(avisoSvc, festivos)

	if err := calSvc.Refresh(context.Background()); err != nil {
		slog.Error("initial calendar refresh failed", "error", err)
		os.Exit(1)
	}

	// Router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/api/user/register", handler.RegisterHandler(authSvc, cfg.JWTSecret))
	r.Post("/api/user/login", handler.LoginHandler(authSvc, cfg.JWTSecret))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.JWTSecret))

		r.Get("/api/avisos", handler.ListAvisosHandler(avisoSvc))
		r.Get("/api/avisos/pendientes", handler.ListPendingHandler(avisoSvc))
		r.Get("/api/avisos/sin-asignar", handler.ListUnscheduledHandler(avisoSvc))
		r.Get("/api/avisos/dia/{fecha}", handler.DayHandler(avisoSvc))
		r.Get("/api/avisos/{orden}", handler.GetAvisoHandler(avisoSvc))
		r.Patch("/api/avisos/{orden}", handler.UpdateHandler(avisoSvc, calSvc))

		r.Post("/api/avisos/asignar", handler.BulkAssignHandler(assignSvc, calSvc))
		r.Post("/api/avisos/{orden}/asignar", handler.AssignHandler(assignSvc, calSvc))
		r.Post("/api/avisos/{orden}/desasignar", handler.UnassignHandler(assignSvc, calSvc))
		r.Post("/api/avisos/{orden}/realizado", handler.DoneHandler(assignSvc))
		r.Post("/api/avisos/{orden}/anular", handler.CancelHandler(assignSvc))
		r.Post("/api/avisos/{orden}/desanular", handler.ReinstateHandler(assignSvc))

		r.Get("/api/calendario", handler.CalendarHandler(calSvc))
		r.Get("/api/export/json", handler.ExportJSONHandler(avisoSvc))
		r.Get("/api/export/csv", handler.ExportCSVHandler(avisoSvc))
		r.Post("/api/import", handler.ImportHandler(avisoSvc, calSvc))

		r.Get("/api/config/horario", handler.HorarioHandler(settings))
		r.Post("/api/config/horario", handler.ToggleHorarioHandler(settings))
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
