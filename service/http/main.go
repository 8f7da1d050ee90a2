package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"calc/engine"
	"calc/lib/cache"
	httplib "calc/lib/http"
	"calc/lib/logging"
	"calc/service/common"

	"github.com/alexflint/go-arg"
	"github.com/gorilla/mux"
	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// ------------------------ START metric definitions ----------------------------

var totalRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Number of incoming HTTP requests.",
	},
	[]string{"path"},
)

var totalRequestsProcessed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_processed_total",
		Help: "Number of HTTP requests processed.",
	},
	[]string{"path"},
)

var responseStatus = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "response_status",
		Help: "Status of HTTP response",
	},
	[]string{"path", "status"},
)

var httpDuration = promauto.NewSummaryVec(prometheus.SummaryOpts{
	Name: "http_response_time_seconds",
	Help: "Duration of HTTP requests.",
	// Track quantiles within small error
	Objectives: map[float64]float64{
		0.25: 0.05,
		0.50: 0.05,
		0.75: 0.05,
		0.90: 0.05,
		0.95: 0.02,
		0.99: 0.01,
	},
}, []string{"path"})

// ------------------------ END metric definitions ------------------------------

// response writer to capture status code from header.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func NewResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

// middleware to "log" response codes, latency histogram and count total number
// of requests.
func prometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		totalRequests.WithLabelValues(path).Inc()
		timer := prometheus.NewTimer(httpDuration.WithLabelValues(path))
		rw := NewResponseWriter(w)
		next.ServeHTTP(rw, r)
		statusCode := rw.statusCode
		timer.ObserveDuration()
		responseStatus.WithLabelValues(path, strconv.Itoa(statusCode)).Inc()
		totalRequestsProcessed.WithLabelValues(path).Inc()
	})
}

type ServerArgs struct {
	Port           uint          `arg:"--port,env:PORT" help:"defaults to 2425"`
	Dev            bool          `arg:"--dev,env:DEV" default:"false" help:"human readable debug logging"`
	CacheSize      int64         `arg:"--cache-size,env:CACHE_SIZE" default:"10000" help:"number of results to memoize, 0 disables the cache"`
	CacheTTL       time.Duration `arg:"--cache-ttl,env:CACHE_TTL" default:"10m" help:"lifetime of memoized results, 0 keeps them until evicted"`
	MaxDepth       int           `arg:"--max-depth,env:MAX_DEPTH" default:"256" help:"maximum bracket nesting, 0 is unbounded"`
	MaxTokens      int           `arg:"--max-tokens,env:MAX_TOKENS" default:"10000" help:"maximum tokens per expression, 0 is unbounded"`
	MaxBody        int64         `arg:"--max-body,env:MAX_BODY" default:"65536" help:"maximum request body in bytes, 0 is unbounded"`
	Timeout        time.Duration `arg:"--timeout,env:REQUEST_TIMEOUT" default:"2s"`
	MaxConcurrency int           `arg:"--max-concurrency,env:MAX_CONCURRENCY" default:"1000"`
}

func newRouter(calc engine.Calculator, logger *zap.Logger, args ServerArgs) *mux.Router {
	router := mux.NewRouter()
	router.Use(prometheusMiddleware)
	if args.Timeout > 0 {
		router.Use(httplib.TimeoutMiddleware(args.Timeout))
	}
	if args.MaxConcurrency > 0 {
		router.Use(httplib.RateLimitingMiddleware(args.MaxConcurrency))
	}
	controller := server{calc: calc, logger: logger, maxBody: args.MaxBody}
	controller.setHandlers(router)
	return router
}

// newCalculator builds the engine for args. The returned func stops the cache
// stats reporter and releases the cache.
func newCalculator(logger *zap.Logger, args ServerArgs) (engine.Calculator, func(), error) {
	opts := []engine.Option{
		engine.WithMaxDepth(args.MaxDepth),
		engine.WithMaxTokens(args.MaxTokens),
	}
	closeFn := func() {}
	if args.CacheSize > 0 {
		c, err := cache.NewLocal[engine.Result]("results", args.CacheSize)
		if err != nil {
			return engine.Calculator{}, nil, err
		}
		stop := make(chan struct{})
		c.ReportPeriodically(10*time.Second, stop)
		closeFn = func() {
			close(stop)
			c.Close()
		}
		opts = append(opts, engine.WithCache(c), engine.WithCacheTTL(args.CacheTTL))
	}
	return engine.NewCalculator(logger, opts...), closeFn, nil
}

func main() {
	var flags struct {
		ServerArgs
		common.PrometheusArgs
		common.HealthCheckArgs
		common.PprofArgs
	}
	arg.MustParse(&flags)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logger, err := logging.New(flags.Dev)
	if err != nil {
		panic(fmt.Sprintf("Failed to setup logger: %v", err))
	}
	defer logger.Sync()

	calc, closeCalc, err := newCalculator(logger, flags.ServerArgs)
	if err != nil {
		logger.Fatal("failed to create calculator", zap.Error(err))
	}
	defer closeCalc()

	stopped := make(chan os.Signal, 1)
	signal.Notify(stopped, syscall.SIGTERM, syscall.SIGINT)

	// Start a prometheus server and add a middleware to the main router to capture
	// standard metrics.
	common.StartPromMetricsServer(flags.MetricsPort)
	common.StartHealthCheckServer(flags.HealthPort, map[string]healthcheck.Check{
		"calculator": func() error {
			res, err := calc.Exec(context.Background(), "1+1")
			if err != nil {
				return err
			}
			if res.Value != 2 {
				return fmt.Errorf("1+1 evaluated to %d", res.Value)
			}
			return nil
		},
	})
	common.StartPprofServer(flags.PprofPort)

	router := newRouter(calc, logger, flags.ServerArgs)

	port := flags.Port
	if port == 0 {
		port = httplib.PORT
	}
	addr := fmt.Sprintf(":%d", port)
	logger.Info("starting http service", zap.String("addr", addr))
	l, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err))
	}
	srv := &http.Server{Handler: router}
	go func() {
		if err := srv.Serve(l); err != http.ErrServerClosed {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()
	// Signal that server is open for business.
	logger.Info("server is ready...")

	<-stopped
	logger.Info("shutting down http service")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}
