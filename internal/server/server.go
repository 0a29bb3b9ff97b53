package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"github.com/nholding/rate-calendar/internal/config"
	"github.com/nholding/rate-calendar/internal/metrics"
	"github.com/nholding/rate-calendar/internal/rate/service"
)

// ServiceName identifies the server in traces.
const ServiceName = "rate-calendar"

// Calendar routes.
const (
	RouteLegacy   = "/"
	RouteCalendar = "/api/v1/rates/calendar"
	RouteHealth   = "/health"
)

const (
	msgBodyTooLarge = "Request body too large."
	msgUnreadable   = "Request body could not be read."
	msgInternal     = "Internal error."
)

// Server serves the calendar over HTTP.
type Server struct {
	cfg        *config.Config
	svc        *service.CalendarService
	logger     *slog.Logger
	collectors *metrics.Collectors
	gatherer   prometheus.Gatherer
	engine     *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics counts requests on collectors and exposes gatherer on the
// configured metrics path when metrics are enabled.
func WithMetrics(collectors *metrics.Collectors, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.collectors = collectors
		s.gatherer = gatherer
	}
}

// New builds the server and its routes.
func New(cfg *config.Config, svc *service.CalendarService, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{cfg: cfg, svc: svc, logger: logger}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware(ServiceName), requestID(), accessLog(s.logger, s.collectors), cors(s.cfg.Server.AllowedOrigins))

	// Preflight OPTIONS requests are answered by the cors middleware.
	r.POST(RouteLegacy, s.handleCalendar)
	r.POST(RouteCalendar, s.handleCalendar)

	r.GET(RouteHealth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if s.cfg.Metrics.Enabled && s.gatherer != nil {
		r.GET(s.cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleCalendar(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithMessage(c, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		abortWithMessage(c, http.StatusBadRequest, msgUnreadable)
		return
	}

	sub, err := s.svc.Submit(c.Request.Context(), body, c.ClientIP())
	if err != nil {
		s.logger.Error("calendar request failed",
			slog.String("request_id", c.GetString(ctxRequestID)),
			slog.String("error", err.Error()),
		)
		abortWithMessage(c, http.StatusInternalServerError, msgInternal)
		return
	}

	c.Header("ETag", `"`+sub.ETag+`"`)
	c.Header(headerBatchID, sub.BatchID)
	c.Data(http.StatusOK, "application/json", sub.Body)
}

// abortWithMessage answers in the same {"errors":[{"msg":...}]} shape as
// domain failures.
func abortWithMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"errors": []gin.H{{"msg": msg}},
	})
}

// Run serves on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		s.logger.Info("http server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
