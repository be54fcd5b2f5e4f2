package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"deepdelve.ai/internal/logging"
	persistlog "deepdelve.ai/internal/persistence/log"
	"deepdelve.ai/internal/sim/tuning"
	"deepdelve.ai/internal/sim/world"
	"deepdelve.ai/internal/sim/world/logic/geom"
	"deepdelve.ai/internal/sim/world/terrain/store"
	"deepdelve.ai/internal/sim/world/terrain/tile"
	"deepdelve.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		seedFlag   = flag.Int64("seed", -1, "world seed (overrides tuning when >= 0)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the chunk statistics index")
		disableLog = flag.Bool("disable_genlog", false, "disable the compressed generation log")
	)
	flag.Parse()

	logging.Init()
	logger := logging.New("server")

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, found, err := tuning.LoadOrDefault(tp)
	if err != nil {
		logger.WithError(err).Fatal("load tuning")
	}
	if !found {
		logger.WithField("path", tp).Info("tuning not found; using defaults")
	}
	seed := tune.Seed
	if *seedFlag >= 0 {
		seed = uint32(*seedFlag)
	}
	logger = logger.WithField("seed", seed)

	idx, err := openRuntimeIndex(*dataDir, seed, *disableDB)
	if err != nil {
		logger.WithError(err).Fatal("open index backend")
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertTuning(tune); err != nil {
			logger.WithError(err).Warn("index backend: upsert tuning")
		}
	}

	var observers store.Observers
	if !*disableLog {
		genLog := persistlog.NewGenLogger(filepath.Join(*dataDir, fmt.Sprintf("seed_%d", seed)))
		defer genLog.Close()
		observers = append(observers, genLog)
	}
	if idx != nil {
		observers = append(observers, idx)
	}

	cfg := world.MapConfig{
		Seed:              seed,
		Gen:               tune.WorldGen.Params(),
		PathfindNodeLimit: tune.Server.PathfindNodeLimit,
	}
	m := world.NewMap(cfg)
	m.Store().SetLogger(logging.New("chunks").WithField("seed", seed))
	m.Store().SetObserver(observers)
	runner := world.NewRunner(m)

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := runner.Run(ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("world stopped")
		}
	}()
	// Warm the area around the origin.
	radius := float64(tune.Server.PrefetchRadiusChunks * tile.Size)
	runner.Prefetch(geom.Focused(geom.V(0, 0), geom.V(2*radius, 2*radius)))

	srv := ws.NewServer(runner, seed, ws.Config{
		MaxPathfindThreshold: tune.Server.MaxPathfindThreshold,
		PrefetchRadiusChunks: tune.Server.PrefetchRadiusChunks,
		WriteTimeout:         time.Duration(tune.Server.WriteTimeoutMs) * time.Millisecond,
		QueryRateWindow:      time.Duration(tune.Server.QueryRateWindowMs) * time.Millisecond,
		QueryRateMax:         tune.Server.QueryRateMax,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		ctx2, cancel2 := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel2()
		var (
			loaded       int
			hits, misses uint64
		)
		if err := runner.Do(ctx2, func(m *world.Map) {
			loaded = len(m.Store().LoadedChunkKeys())
			hits, misses = m.Store().CacheStats()
		}); err != nil {
			http.Error(rw, err.Error(), http.StatusServiceUnavailable)
			return
		}

		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		fmt.Fprintf(rw, "# HELP deepdelve_loaded_chunks Generated chunk count.\n")
		fmt.Fprintf(rw, "# TYPE deepdelve_loaded_chunks gauge\n")
		fmt.Fprintf(rw, "deepdelve_loaded_chunks{seed=\"%d\"} %d\n", seed, loaded)

		fmt.Fprintf(rw, "# HELP deepdelve_chunk_cache_total Recent-chunk cache lookups.\n")
		fmt.Fprintf(rw, "# TYPE deepdelve_chunk_cache_total counter\n")
		fmt.Fprintf(rw, "deepdelve_chunk_cache_total{seed=\"%d\",result=%q} %d\n", seed, "hit", hits)
		fmt.Fprintf(rw, "deepdelve_chunk_cache_total{seed=\"%d\",result=%q} %d\n", seed, "miss", misses)

		if idx != nil {
			st := idx.Stats()
			fmt.Fprintf(rw, "# HELP deepdelve_index_queue_depth Index writer backlog.\n")
			fmt.Fprintf(rw, "# TYPE deepdelve_index_queue_depth gauge\n")
			fmt.Fprintf(rw, "deepdelve_index_queue_depth %d\n", st.QueueDepth)
			fmt.Fprintf(rw, "# HELP deepdelve_index_dropped_total Index writes dropped on a full queue.\n")
			fmt.Fprintf(rw, "# TYPE deepdelve_index_dropped_total counter\n")
			fmt.Fprintf(rw, "deepdelve_index_dropped_total %d\n", st.DropChunkTotal)
		}
	})

	if envBool("DD_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP()) {
		// Local-only map dump.
		mux.HandleFunc("/admin/v1/ascii", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			cx := queryInt(r, "cx", 0)
			cy := queryInt(r, "cy", 0)
			start := tile.ChunkStart(geom.C(cx, cy))
			ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel2()
			var out string
			if err := runner.Do(ctx2, func(m *world.Map) {
				out = m.RenderASCII(start, start.AddN(tile.Size-1))
			}); err != nil {
				http.Error(rw, err.Error(), http.StatusInternalServerError)
				return
			}
			rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = rw.Write([]byte(out))
		})
	}
	mux.HandleFunc("/v1/ws", srv.Handler())

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = httpSrv.Shutdown(ctx2)
		runner.Stop()
	}()

	logger.WithFields(logrus.Fields{"addr": *addr, "tuning_found": found}).Info("listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Fatal("ListenAndServe")
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func queryInt(r *http.Request, key string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
