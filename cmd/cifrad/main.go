package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"
	"google.golang.org/grpc"

	"github.com/RowanDark/cifra/internal/config"
	"github.com/RowanDark/cifra/internal/dictionary"
	"github.com/RowanDark/cifra/internal/env"
	"github.com/RowanDark/cifra/internal/history"
	"github.com/RowanDark/cifra/internal/logging"
	obsmetrics "github.com/RowanDark/cifra/internal/observability/metrics"
	"github.com/RowanDark/cifra/internal/service"
)

var version = "dev"

type options struct {
	addr        string
	metricsAddr string
	dictPath    string
	token       string
	auditPath   string
	historyPath string
	workers     int
	maxConns    int
	watch       bool
	cfg         config.Config
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.Server.Addr, "address for the gRPC server to listen on")
	metricsAddr := flag.String("metrics-addr", cfg.Server.MetricsAddr, "address for the Prometheus metrics endpoint (empty to disable)")
	dictPath := flag.String("dict", cfg.DictionaryPath, "reference word list, one word per line")
	token := flag.String("token", "", "bearer token required from clients (default $CIFRA_TOKEN, empty disables auth)")
	auditPath := flag.String("audit-log", cfg.AuditLogPath, "append audit events to this file instead of stdout")
	historyPath := flag.String("history", cfg.HistoryPath, "SQLite run history (empty to disable)")
	workers := flag.Int("workers", cfg.Crack.Workers, "parallel workers per crack request")
	maxConns := flag.Int("max-conns", cfg.Server.MaxConns, "maximum concurrent client connections")
	noWatch := flag.Bool("no-watch", false, "do not reload the dictionary when the file changes")
	logFormat := flag.String("log-format", "json", "log format: json or text")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("cifrad %s\n", version)
		return
	}
	if *workers < 1 || *maxConns < 1 {
		fmt.Fprintln(os.Stderr, "--workers and --max-conns must be at least 1")
		os.Exit(2)
	}
	if *token == "" {
		*token, _ = env.Lookup("CIFRA_TOKEN")
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := logging.New(os.Stderr, level, logging.ParseFormat(*logFormat), "cifrad")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{
		addr:        *addr,
		metricsAddr: *metricsAddr,
		dictPath:    *dictPath,
		token:       *token,
		auditPath:   *auditPath,
		historyPath: *historyPath,
		workers:     *workers,
		maxConns:    *maxConns,
		watch:       !*noWatch,
		cfg:         cfg,
	}

	lis, err := net.Listen("tcp", opts.addr)
	if err != nil {
		logger.Error("listen", "addr", opts.addr, "error", err)
		os.Exit(1)
	}
	if err := run(ctx, lis, opts, logger); err != nil {
		logger.Error("cifrad stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, lis net.Listener, opts options, logger *slog.Logger) error {
	auditOpts := []logging.Option{}
	if opts.auditPath != "" {
		auditOpts = append(auditOpts, logging.WithoutStdout(), logging.WithFile(opts.auditPath))
	}
	audit, err := logging.NewAuditLogger("cifrad", auditOpts...)
	if err != nil {
		return fmt.Errorf("configure audit logger: %w", err)
	}
	defer audit.Close()

	words, err := loadDictionary(opts.dictPath, logger, audit)
	if err != nil {
		return err
	}

	serverOpts := []service.Option{
		service.WithKeyspace(opts.cfg.Keyspace()),
		service.WithWorkers(opts.workers),
		service.WithAuditLogger(audit.WithComponent("cipher")),
		service.WithLogger(logger),
	}
	if opts.historyPath != "" {
		store, err := history.Open(opts.historyPath)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()
		serverOpts = append(serverOpts, service.WithHistory(store))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.watch {
		go watchDictionary(ctx, opts.dictPath, words, logger, audit)
	}
	if opts.metricsAddr != "" {
		go serveMetrics(ctx, opts.metricsAddr, logger)
	}

	srv := service.NewGRPCServer(opts.token, logger, audit.WithComponent("rpc"))
	hs := service.Register(srv, service.NewServer(words, serverOpts...))

	// Stop the gRPC server once the provided context is cancelled.
	go func() {
		<-ctx.Done()
		hs.Shutdown()

		done := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			srv.Stop()
		}
	}()

	logger.Info("cifrad listening", "addr", lis.Addr().String(), "version", version, "words", words.Load().Len(), "auth", opts.token != "")
	if err := srv.Serve(netutil.LimitListener(lis, opts.maxConns)); err != nil {
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
	return nil
}

// loadDictionary loads the initial word set. A missing file is not fatal:
// the daemon starts with an empty set and the watcher picks the file up once
// it appears.
func loadDictionary(path string, logger *slog.Logger, audit *logging.AuditLogger) (*dictionary.Holder, error) {
	set, err := dictionary.LoadFile(path)
	switch {
	case errors.Is(err, dictionary.ErrNotFound):
		logger.Warn("dictionary not found, starting empty", "path", path)
	case err != nil:
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	obsmetrics.SetDictionarySize(set.Len())
	_ = audit.Emit(logging.AuditEvent{
		EventType: logging.EventDictionaryLoad,
		Metadata:  map[string]any{"path": path, "words": set.Len()},
	})
	return dictionary.NewHolder(set), nil
}

func watchDictionary(ctx context.Context, path string, words *dictionary.Holder, logger *slog.Logger, audit *logging.AuditLogger) {
	err := dictionary.Watch(ctx, path, words, func(set dictionary.WordSet, err error) {
		if err != nil {
			logger.Warn("dictionary reload failed", "path", path, "error", err)
			_ = audit.Emit(logging.AuditEvent{
				EventType: logging.EventDictionaryReload,
				Decision:  logging.DecisionDeny,
				Reason:    err.Error(),
				Metadata:  map[string]any{"path": path},
			})
			return
		}
		obsmetrics.SetDictionarySize(set.Len())
		logger.Info("dictionary reloaded", "path", path, "words", set.Len())
		_ = audit.Emit(logging.AuditEvent{
			EventType: logging.EventDictionaryReload,
			Decision:  logging.DecisionAllow,
			Metadata:  map[string]any{"path": path, "words": set.Len()},
		})
	})
	if err != nil {
		logger.Warn("dictionary watcher stopped", "path", path, "error", err)
	}
}

func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", obsmetrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server", "error", err)
	}
}
