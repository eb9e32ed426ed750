package web

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sloppy/scanreport-console/internal/db"
	"github.com/sloppy/scanreport-console/internal/filters"
	"github.com/sloppy/scanreport-console/internal/listctl"
	"github.com/sloppy/scanreport-console/internal/metrics"
	"github.com/sloppy/scanreport-console/internal/rest"
)

// Reports is the backend surface the console uses: the list controller's
// CRUD calls plus report logs.
type Reports interface {
	listctl.Backend
	Logs(ctx context.Context, id string) (rest.Logs, error)
}

// Options configures a Server.
type Options struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Location       *time.Location
	DefaultLimit   int
	AllowedOrigins []string
}

// Server wires the web handlers and dependencies.
type Server struct {
	Reports Reports
	DB      *db.DB
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Format  filters.Formatter
	Limit   int
	Router  chi.Router
}

// NewServer constructs the router and registers routes.
func NewServer(reports Reports, database *db.DB, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.DefaultLimit
	if limit <= 0 {
		limit = 20
	}
	server := &Server{
		Reports: reports,
		DB:      database,
		Logger:  logger,
		Metrics: opts.Metrics,
		Format:  filters.Formatter{Location: opts.Location},
		Limit:   limit,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(server.requestLogger)

	r.Get("/", server.handleRoot)
	r.Get("/healthz", server.handleHealth)
	r.Get("/scanreports", server.handleReportList)
	r.Get("/scanreports/export", server.handleReportExport)
	r.Get("/scanreports/{id}", server.handleReportDetail)
	r.Get("/scanreports/{id}/logs", server.handleReportLogs)
	r.Post("/scanreports/{id}", server.handleReportUpdate)
	r.Post("/scanreports/{id}/delete", server.handleReportDelete)
	r.Get("/journal", server.handleJournal)
	r.Get("/views", server.handleViewsList)
	r.Post("/views", server.handleViewsCreate)
	r.Get("/views/{viewID}", server.handleViewOpen)
	r.Post("/views/{viewID}/delete", server.handleViewsDelete)

	r.Route("/api", func(api chi.Router) {
		// cors treats an empty origin list as "*", so only install it for an
		// explicit allowlist.
		if len(opts.AllowedOrigins) > 0 {
			api.Use(cors.Handler(cors.Options{
				AllowedOrigins: opts.AllowedOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
				ExposedHeaders: []string{"Content-Range"},
				MaxAge:         300,
			}))
		}
		api.Get("/scanreports", server.apiListReports)
		api.Get("/scanreports/{id}", server.apiGetReport)
		api.Put("/scanreports/{id}", server.apiUpdateReport)
		api.Delete("/scanreports/{id}", server.apiDeleteReport)
		api.Get("/scanreports/{id}/logs", server.apiReportLogs)
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	server.Router = r
	return server
}

// Handler exposes the configured router.
func (s *Server) Handler() http.Handler {
	return s.Router
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/scanreports", http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

// requestLogger logs one line per request and counts it.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.Metrics.ObserveHTTP(r.Method, strconv.Itoa(status))
		s.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
