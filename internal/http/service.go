package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/digital-store/internal/apperr"
	"github.com/tuanvumaihuynh/digital-store/internal/config"
	"github.com/tuanvumaihuynh/digital-store/internal/http/middleware"
	"github.com/tuanvumaihuynh/digital-store/internal/http/swagger"
	"github.com/tuanvumaihuynh/digital-store/internal/metric"
	"github.com/tuanvumaihuynh/digital-store/internal/service"
	"github.com/tuanvumaihuynh/digital-store/internal/session"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/db"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg       config.HTTP
	uploadCfg config.Upload
	logger    *slog.Logger
	metrics   *metric.Metrics
	gatherer  prometheus.Gatherer
	health    db.HealthChecker
	sessions  *session.Manager

	productSvc  service.ProductService
	categorySvc service.CategoryService
	userSvc     service.UserService
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	uploadCfg config.Upload,
	log *slog.Logger,
	metrics *metric.Metrics,
	gatherer prometheus.Gatherer,
	health db.HealthChecker,
	sessions *session.Manager,
	productSvc service.ProductService,
	categorySvc service.CategoryService,
	userSvc service.UserService,
) *Service {
	return &Service{
		cfg:         cfg,
		uploadCfg:   uploadCfg,
		logger:      log.With(slog.String("service", "http")),
		metrics:     metrics,
		gatherer:    gatherer,
		health:      health,
		sessions:    sessions,
		productSvc:  productSvc,
		categorySvc: categorySvc,
		userSvc:     userSvc,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	handler, err := s.Handler()
	if err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, handler)
}

// Handler builds the router with every middleware and route registered.
func (s *Service) Handler() (http.Handler, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		if err := swagger.Register(r); err != nil {
			return nil, fmt.Errorf("register swagger: %w", err)
		}
	}

	s.RegisterHandlers(r)

	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorContext(ctx, "http server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.CorsAllowedOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	rs := responder{logger: s.logger}
	products := newProductHandler(rs, s.productSvc, s.cfg.MultipartMemoryMB, s.uploadCfg)
	categories := newCategoryHandler(rs, s.categorySvc)
	auth := newAuthHandler(rs, s.userSvc, s.sessions)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rs.error(w, r, apperr.RouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rs.error(w, r, apperr.MethodNotAllowed)
	})

	r.Get(middleware.HealthPath, s.handleHealth)
	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))

	if s.uploadCfg.Disk == "" || s.uploadCfg.Disk == "local" {
		prefix := strings.TrimSuffix(s.uploadCfg.PublicPath, "/") + "/"
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(s.uploadCfg.Root)))
		r.Get(prefix+"*", fs.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.sessions.Middleware())

		r.Get("/products", products.ListProducts)

		r.Post("/auth/register", auth.Register)
		r.Post("/auth/login", auth.Login)
		r.Post("/auth/logout", auth.Logout)
		r.Get("/auth/session", auth.Session)

		r.With(middleware.RequireLogin).Post("/profile", auth.UpdateProfile)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/products", products.CreateProduct)
			r.Post("/products/update", products.UpdateProduct)
			r.Post("/products/delete", products.DeleteProduct)
			r.Delete("/products/delete", products.DeleteProduct)
			r.Delete("/products", products.DeleteProduct)

			r.Get("/categories", categories.GetCategories)
			r.Post("/categories", categories.CreateCategory)
			r.Put("/categories", categories.UpdateCategory)
			r.Delete("/categories", categories.DeleteCategory)
		})
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	rs := responder{logger: s.logger}

	if s.health != nil {
		if ok, err := s.health.IsHealthy(r.Context()); !ok {
			s.logger.ErrorContext(r.Context(), "health check failed", slog.Any("error", err))
			rs.json(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}

	rs.json(w, r, http.StatusOK, healthResponse{Status: "ok"})
}
