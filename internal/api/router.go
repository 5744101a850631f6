package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/abstractor/internal/api/handlers"
	mw "github.com/Harshitk-cp/abstractor/internal/api/middleware"
	"github.com/Harshitk-cp/abstractor/internal/buildconfig"
	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/pipeline"
	"github.com/Harshitk-cp/abstractor/internal/service"
	"github.com/Harshitk-cp/abstractor/internal/store"
)

// Deps are the collaborators the HTTP app is built from.
type Deps struct {
	Studies     domain.StudyStore
	Patients    domain.PatientStore
	Notes       domain.NoteStore
	Evidence    domain.EvidenceStore
	Resolutions domain.ResolutionStore
	Pipeline    *pipeline.Pipeline
	// Ping reports database health for GET /health.
	Ping func(ctx context.Context) error

	RateLimitRPS   float64
	RateLimitBurst int
}

// App holds the router and background services for lifecycle management.
type App struct {
	Router       *chi.Mux
	Reaggregator *service.ReaggregatorService
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
	metrics      *mw.MetricsCollector
}

// NewApp wires the Postgres stores behind the HTTP API.
func NewApp(db *pgxpool.Pool, p *pipeline.Pipeline, rps float64, burst int, logger *zap.Logger) *App {
	return NewAppWithDeps(Deps{
		Studies:        store.NewStudyStore(db),
		Patients:       store.NewPatientStore(db),
		Notes:          store.NewNoteStore(db),
		Evidence:       store.NewEvidenceStore(db),
		Resolutions:    store.NewResolutionStore(db),
		Pipeline:       p,
		Ping:           db.Ping,
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}, logger)
}

func NewAppWithDeps(d Deps, logger *zap.Logger) *App {
	if d.Pipeline == nil {
		d.Pipeline = pipeline.New(nil)
	}

	// Services
	patientSvc := service.NewPatientService(d.Patients)
	abstractionSvc := service.NewAbstractionService(d.Patients, d.Notes, d.Evidence, d.Resolutions, d.Pipeline, logger)
	reaggregatorSvc := service.NewReaggregatorService(d.Patients, abstractionSvc, logger)

	// Handlers
	studyHandler := handlers.NewStudyHandler(d.Studies)
	patientHandler := handlers.NewPatientHandler(patientSvc)
	abstractionHandler := handlers.NewAbstractionHandler(abstractionSvc, logger)

	r := chi.NewRouter()

	app := &App{
		Router:       r,
		Reaggregator: reaggregatorSvc,
		startTime:    time.Now(),
	}
	app.metrics = mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.metrics.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	if d.RateLimitRPS > 0 {
		r.Use(mw.RateLimit(d.RateLimitRPS, d.RateLimitBurst))
	}

	// Unauthenticated
	r.Get("/health", healthHandler(d.Ping))
	r.Get("/metrics", app.metricsHandler())
	r.Get("/version", versionHandler)

	// Study creation (bootstrap endpoint)
	r.Post("/v1/studies", studyHandler.Create)

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(d.Studies))

		r.Post("/sectionize", abstractionHandler.Sectionize)

		r.Route("/patients", func(r chi.Router) {
			r.Post("/", patientHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", patientHandler.GetByID)
				r.Post("/notes", abstractionHandler.IngestNote)
				r.Get("/evidence", abstractionHandler.Evidence)
				r.Post("/resolve", abstractionHandler.Resolve)
				r.Get("/resolved", abstractionHandler.Resolved)
			})
		})
	})

	return app
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(buildconfig.VersionInfo())
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"server_errors":  app.metrics.ServerErrors(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy interfaces at compile time.
var (
	_ domain.StudyStore      = (*store.StudyStore)(nil)
	_ domain.PatientStore    = (*store.PatientStore)(nil)
	_ domain.NoteStore       = (*store.NoteStore)(nil)
	_ domain.EvidenceStore   = (*store.EvidenceStore)(nil)
	_ domain.ResolutionStore = (*store.ResolutionStore)(nil)
)
