package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"quota-gateway/middleware/ratelimit"
	"quota-gateway/middleware/ratelimit/domain"
	"quota-gateway/middleware/ratelimit/infra"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	target, err := url.Parse(cfg.upstreamURL)
	if err != nil {
		log.Fatalf("invalid UPSTREAM_URL: %v", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("proxy error: %v", err)
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rdb *redis.Client
	if cfg.redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancelPing()
		if err != nil {
			log.Fatalf("redis ping error: %v", err)
		}
	}

	var store domain.CounterStore
	switch cfg.rateStore {
	case "redis":
		store = infra.NewRedisCounterStore(rdb, infra.WithCounterPrefix(cfg.counterPrefix))
	case "memory":
		mem := infra.NewMemoryCounterStore()
		mem.StartJanitor(ctx)
		store = mem
	}

	var sinks infra.MultiStats
	if cfg.statsEnabled {
		sinks = append(sinks, infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsBucket(cfg.statsBucket),
			infra.WithStatsTrackKeys(cfg.statsTrackKeys),
		))
	}
	if cfg.metricsEnabled {
		prom, err := infra.NewPromStats(prometheus.DefaultRegisterer)
		if err != nil {
			log.Fatalf("prometheus register error: %v", err)
		}
		sinks = append(sinks, prom)
	}
	var statsStore domain.StatsStore
	if len(sinks) > 0 {
		statsStore = sinks
	}

	keyFn := ratelimit.DefaultKeyFunc()
	if cfg.rateKeyHeader != "" {
		keyFn = headerKeyFunc(cfg.rateKeyHeader)
	}

	h := http.Handler(proxy)
	h = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		AcquireTimeout: cfg.concurrencyTimeout,
	})(h)
	if cfg.rateEnabled {
		h = ratelimit.Middleware(ratelimit.Options{
			Store:          store,
			Stats:          statsStore,
			Window:         cfg.quotaWindow,
			Max:            cfg.quotaMax,
			KeyFn:          keyFn,
			Whitelist:      listPredicate(cfg.allowlist, keyFn),
			Blacklist:      listPredicate(cfg.denylist, keyFn),
			DisableHeaders: cfg.disableHeaders,
			ErrorMessage:   cfg.errorMessage,
		})(h)
	}

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	var admin *http.Server
	if cfg.adminAddr != "" {
		admin = &http.Server{
			Addr:              cfg.adminAddr,
			Handler:           adminRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Printf("admin listening on %s", cfg.adminAddr)
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("admin server error: %v", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if admin != nil {
			_ = admin.Shutdown(shutdownCtx)
		}
	}()

	log.Printf("gateway listening on %s -> %s", cfg.listenAddr, target)
	log.Printf("quota: enabled=%v store=%s window=%s max=%d keyHeader=%q", cfg.rateEnabled, cfg.rateStore, cfg.quotaWindow, cfg.quotaMax, cfg.rateKeyHeader)
	log.Printf("lists: allow=%d deny=%d", len(cfg.allowlist), len(cfg.denylist))
	log.Printf("stats: redis=%v prometheus=%v", cfg.statsEnabled, cfg.metricsEnabled)
	log.Printf("concurrency: max=%d acquireTimeout=%s", cfg.concurrencyMax, cfg.concurrencyTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

// adminRouter expõe métricas e health em porta separada do tráfego proxied.
func adminRouter() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	return r
}

// headerKeyFunc usa um header fixo como identidade, caindo no resolver padrão
// quando ausente.
func headerKeyFunc(header string) ratelimit.KeyFunc {
	fallback := ratelimit.DefaultKeyFunc()
	return func(r *http.Request) (string, bool) {
		if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
			return v, true
		}
		return fallback(r)
	}
}

// listPredicate casa a identidade resolvida contra um conjunto fixo de chaves.
func listPredicate(keys map[string]struct{}, keyFn ratelimit.KeyFunc) ratelimit.Predicate {
	if len(keys) == 0 {
		return nil
	}
	return func(r *http.Request) (bool, error) {
		key, ok := keyFn(r)
		if !ok {
			return false, nil
		}
		_, hit := keys[key]
		return hit, nil
	}
}

type config struct {
	listenAddr  string
	upstreamURL string
	adminAddr   string

	rateEnabled    bool
	rateStore      string
	quotaWindow    time.Duration
	quotaMax       int
	rateKeyHeader  string
	allowlist      map[string]struct{}
	denylist       map[string]struct{}
	disableHeaders bool
	errorMessage   string
	counterPrefix  string

	redisAddr     string
	redisPassword string
	redisDB       int

	statsEnabled   bool
	statsPrefix    string
	statsTTL       time.Duration
	statsBucket    string
	statsTrackKeys bool
	metricsEnabled bool

	concurrencyMax     int
	concurrencyTimeout time.Duration
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.upstreamURL = os.Getenv("UPSTREAM_URL")
	cfg.adminAddr = os.Getenv("ADMIN_ADDR")

	cfg.rateEnabled = getenvBoolDefault("RATE_ENABLED", true)
	cfg.rateStore = strings.ToLower(getenvDefault("RATE_STORE", "memory"))
	cfg.quotaWindow = getenvDurationDefault("QUOTA_WINDOW", domain.DefaultWindow)
	cfg.quotaMax = getenvIntDefault("QUOTA_MAX", domain.DefaultMax)
	cfg.rateKeyHeader = os.Getenv("RATE_KEY_HEADER")
	cfg.allowlist = getenvSet("RATE_ALLOWLIST")
	cfg.denylist = getenvSet("RATE_DENYLIST")
	cfg.disableHeaders = getenvBoolDefault("RATE_DISABLE_HEADERS", false)
	cfg.errorMessage = os.Getenv("RATE_ERROR_MESSAGE")
	cfg.counterPrefix = getenvDefault("RATE_COUNTER_PREFIX", "ratelimit:counter")

	cfg.redisAddr = os.Getenv("REDIS_ADDR")
	cfg.redisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.redisDB = getenvIntDefault("REDIS_DB", 0)

	cfg.statsEnabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.statsPrefix = getenvDefault("RATE_STATS_PREFIX", "ratelimit:stats")
	cfg.statsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.statsBucket = getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.statsTrackKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)
	cfg.metricsEnabled = getenvBoolDefault("METRICS_ENABLED", false)

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	if cfg.upstreamURL == "" {
		return config{}, errors.New("UPSTREAM_URL is required")
	}
	if cfg.rateStore != "memory" && cfg.rateStore != "redis" {
		return config{}, errors.New("RATE_STORE must be memory or redis")
	}
	if cfg.rateStore == "redis" && cfg.redisAddr == "" {
		return config{}, errors.New("REDIS_ADDR is required when RATE_STORE=redis")
	}
	if cfg.statsEnabled && cfg.redisAddr == "" {
		return config{}, errors.New("REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}
	if cfg.quotaWindow <= 0 {
		return config{}, errors.New("QUOTA_WINDOW must be > 0")
	}
	if cfg.quotaMax <= 0 {
		return config{}, errors.New("QUOTA_MAX must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if cfg.metricsEnabled && cfg.adminAddr == "" {
		return config{}, errors.New("ADMIN_ADDR is required when METRICS_ENABLED=true")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// getenvSet lê uma lista separada por vírgula como conjunto.
func getenvSet(k string) map[string]struct{} {
	v := os.Getenv(k)
	if strings.TrimSpace(v) == "" {
		return nil
	}
	out := make(map[string]struct{})
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}
