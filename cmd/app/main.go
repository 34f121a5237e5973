package main

import (
	"heartcare-gateway/internal/cache"
	"heartcare-gateway/internal/config"
	activityGet "heartcare-gateway/internal/http-server/handlers/activity/get"
	apptCancel "heartcare-gateway/internal/http-server/handlers/appointments/cancel"
	apptCreate "heartcare-gateway/internal/http-server/handlers/appointments/create"
	apptGet "heartcare-gateway/internal/http-server/handlers/appointments/get"
	apptUpdate "heartcare-gateway/internal/http-server/handlers/appointments/update"
	authLogin "heartcare-gateway/internal/http-server/handlers/auth/login"
	authLogout "heartcare-gateway/internal/http-server/handlers/auth/logout"
	calendarGet "heartcare-gateway/internal/http-server/handlers/calendar/get"
	scheduleGet "heartcare-gateway/internal/http-server/handlers/schedules/get"
	scheduleSave "heartcare-gateway/internal/http-server/handlers/schedules/save"
	slotGet "heartcare-gateway/internal/http-server/handlers/slots/get"
	slotPreview "heartcare-gateway/internal/http-server/handlers/slots/preview"
	unavailCreate "heartcare-gateway/internal/http-server/handlers/unavailable/create"
	unavailDelete "heartcare-gateway/internal/http-server/handlers/unavailable/delete"
	unavailGet "heartcare-gateway/internal/http-server/handlers/unavailable/get"
	unavailUpdate "heartcare-gateway/internal/http-server/handlers/unavailable/update"
	mwauth "heartcare-gateway/internal/http-server/middleware/auth"
	svc "heartcare-gateway/internal/service"
	"heartcare-gateway/internal/session"
	"heartcare-gateway/internal/upstream"
	slogpretty "heartcare-gateway/pkg/handlers/slogPretty"
	"heartcare-gateway/pkg/middleware/mwLogger"
	"heartcare-gateway/pkg/sl"

	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API gateway", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	sessions := session.NewStore(cfg.SessionPath)
	if err := sessions.Load(); err != nil {
		log.Error("Failed to load stored session", sl.Err(err))
		os.Exit(1)
	}

	var respCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		c, err := cache.NewRedisCache(cfg.Redis.Addr)
		if err != nil {
			log.Error("Failed to init redis cache", sl.Err(err))
			os.Exit(1)
		}
		respCache = c
	} else {
		log.Debug("Redis address not set, response cache disabled")
	}

	backend := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, cfg.Upstream.RetryDelay, sessions)

	service := svc.NewService(backend, svc.Options{
		Cache:       respCache,
		CacheTTL:    cfg.Redis.CacheTTL,
		StepMinutes: cfg.Booking.SlotStepMinutes,
		HorizonDays: cfg.Booking.HorizonDays,
	})

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	// Login must stay reachable with an expired stored session.
	router.Post("/auth/login", authLogin.New(log, service))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	router.Group(func(r chi.Router) {
		r.Use(mwauth.New(log, sessions))

		r.Post("/auth/logout", authLogout.New(log, service))

		// Slots
		r.Get("/counselors/{id}/available-slots", slotGet.New(log, service))
		r.Get("/counselors/availability-preview", slotPreview.New(log, service))

		// Weekly schedules
		r.Get("/counselors/schedules", scheduleGet.New(log, service))
		r.Post("/counselors/schedules", scheduleSave.New(log, service))

		// Unavailable periods
		r.Get("/counselors/unavailable", unavailGet.New(log, service))
		r.Post("/counselors/unavailable", unavailCreate.New(log, service))
		r.Put("/counselors/unavailable/{id}", unavailUpdate.New(log, service))
		r.Delete("/counselors/unavailable/{id}", unavailDelete.New(log, service))

		// Appointments
		r.Get("/appointments/my-appointments", apptGet.New(log, service))
		r.Post("/appointments/create", apptCreate.New(log, service))
		r.Put("/appointments/{id}", apptUpdate.New(log, service))
		r.Delete("/appointments/{id}", apptCancel.New(log, service))

		// Aggregated views
		r.Get("/calendar", calendarGet.New(log, service))
		r.Get("/activity", activityGet.New(log, service))
	})

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if err := respCache.Close(); err != nil {
		log.Error("Failed to close cache", sl.Err(err))
	} else {
		log.Info("Cache closed")
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
