package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/gymbalance/internal/config"
	"github.com/2beens/gymbalance/internal/db"
	"github.com/2beens/gymbalance/internal/middleware"
	"github.com/2beens/gymbalance/internal/report"
	"github.com/2beens/gymbalance/internal/telemetry/metrics"
	"github.com/2beens/gymbalance/internal/telemetry/tracing"
	"github.com/2beens/gymbalance/internal/workouts"
	"github.com/2beens/gymbalance/internal/workouts/archive"
	workoutsmcp "github.com/2beens/gymbalance/internal/workouts/mcp"
	"github.com/2beens/gymbalance/pkg"
	"github.com/2beens/gymbalance/web"
)

const (
	saveRouteName   = "save-workout"
	healthPingLimit = 2 * time.Second
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config    *config.Config
	service   *workouts.Service
	csvStore  *workouts.CSVStore
	templates *template.Template
	reporter  *report.WeeklyReporter

	// optional, nil when not configured
	dbPool      *pgxpool.Pool
	archiveRepo *archive.Repo
	redisClient *redis.Client

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	var (
		dbPool        *pgxpool.Pool
		poolCollector prometheus.Collector
		archiveRepo   *archive.Repo
		err           error
	)
	if cfg.ArchiveEnabled() {
		dbPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			TracingEnabled: params.HoneycombTracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := archive.RunMigrations(db.ConnString(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDBName)); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("archive migrations: %w", err)
		}
		poolCollector = db.NewPoolCollector(dbPool, cfg.PostgresDBName)
		archiveRepo = archive.NewRepo(dbPool)
	} else {
		log.Debugln("postgres archive disabled")
	}

	promRegistry := metrics.SetupPrometheus(poolCollector)
	metricsManager := metrics.NewManager("gymbalance", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	var rdb *redis.Client
	if cfg.RedisEnabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0,
		})
		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	} else {
		log.Debugln("redis disabled, save requests will not be rate limited")
	}

	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gymbalance", rdb)
	if err != nil {
		return nil, err
	}

	templates, err := template.ParseFS(web.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	csvStore := workouts.NewCSVStore(cfg.WorkoutsCsvPath)
	serviceParams := workouts.ServiceParams{
		Store:          csvStore,
		Limits:         cfg.Limits,
		NeglectRatio:   cfg.NeglectRatio,
		Cache:          workouts.NewSummaryCache(cfg.SummaryCacheSizeMB, metricsManager),
		MetricsManager: metricsManager,
	}
	reporterParams := report.WeeklyReporterParams{
		CronExpr:       cfg.WeeklyReportCron,
		MetricsManager: metricsManager,
	}
	if archiveRepo != nil {
		serviceParams.Archiver = archiveRepo
		reporterParams.Archive = archiveRepo
	}
	service := workouts.NewService(serviceParams)
	reporterParams.Service = service

	s := &Server{
		config:      cfg,
		service:     service,
		csvStore:    csvStore,
		templates:   templates,
		reporter:    report.NewWeeklyReporter(reporterParams),
		dbPool:      dbPool,
		archiveRepo: archiveRepo,
		redisClient: rdb,

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	if archiveRepo != nil {
		s.backfillArchive(ctx)
	}

	return s, nil
}

// backfillArchive copies csv entries missing from postgres, e.g. the ones saved while the db was down.
func (s *Server) backfillArchive(ctx context.Context) {
	entries, err := s.csvStore.LoadAll(ctx)
	if err != nil {
		log.Errorf("archive backfill, load entries: %s", err)
		return
	}
	added, err := s.archiveRepo.Backfill(ctx, entries)
	if err != nil {
		log.Errorf("archive backfill: %s", err)
		return
	}
	log.Debugf("archive backfill: %d of %d entries added", added, len(entries))
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("gymbalance-router"))

	workoutsHandler := workouts.NewHandler(s.service, s.templates)

	var saveHandler http.Handler = http.HandlerFunc(workoutsHandler.HandleSave)
	if s.redisClient != nil {
		saveHandler = middleware.RateLimit(
			redis_rate.NewLimiter(s.redisClient),
			saveRouteName,
			s.config.SaveRateLimitPerMin,
			s.metricsManager,
		)(saveHandler)
	}

	r.HandleFunc("/", workoutsHandler.HandleIndex).Methods("GET").Name("index")
	r.HandleFunc("/health", s.handleHealth).Methods("GET").Name("health")
	r.HandleFunc("/workouts/catalog", workoutsHandler.HandleCatalog).Methods("GET", "OPTIONS").Name("workouts-catalog")
	r.Handle("/workouts", saveHandler).Methods("POST", "OPTIONS").Name(saveRouteName)
	r.HandleFunc("/workouts", workoutsHandler.HandleList).Methods("GET").Name("list-workouts")
	r.HandleFunc("/workouts/summary", workoutsHandler.HandleSummary).Methods("GET", "OPTIONS").Name("workouts-summary")
	r.HandleFunc("/workouts/export.xlsx", workoutsHandler.HandleExport).Methods("GET").Name("workouts-export")

	mcpServer := workoutsmcp.NewServer(s.service)
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return mcpServer
	}, nil)
	r.Handle("/mcp", otelhttp.NewHandler(mcpHandler, "mcp")).Name("mcp")

	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

type healthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis,omitempty"`
	DB     string `json:"db,omitempty"`
}

// handleHealth reports ok unless one of the configured backends is unreachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingLimit)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	status := http.StatusOK
	if s.redisClient != nil {
		resp.Redis = "ok"
		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			log.Errorf("health, ping redis: %s", err)
			resp.Redis = "unreachable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	if s.dbPool != nil {
		resp.DB = "ok"
		if err := s.dbPool.Ping(ctx); err != nil {
			log.Errorf("health, ping db: %s", err)
			resp.DB = "unreachable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	respBytes, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal health response: %s", err)
		http.Error(w, "error, internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, status)
}

func (s *Server) Serve(host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	if err := s.reporter.Start(); err != nil {
		log.Errorf("weekly report not scheduled: %s", err)
	}

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.reporter.Stop()

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
	}
}
