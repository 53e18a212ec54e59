package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aescanero/alquimia/internal/application/campaign"
	"github.com/aescanero/alquimia/internal/application/network"
	"github.com/aescanero/alquimia/internal/config"
	fabrichttp "github.com/aescanero/alquimia/pkg/adapters/fabric/http"
	"github.com/aescanero/alquimia/pkg/adapters/metrics/noop"
	"github.com/aescanero/alquimia/pkg/adapters/metrics/prometheus"
	storefile "github.com/aescanero/alquimia/pkg/adapters/store/file"
	storeredis "github.com/aescanero/alquimia/pkg/adapters/store/redis"
	apihttp "github.com/aescanero/alquimia/pkg/api/http"
	"github.com/aescanero/alquimia/pkg/domain"
	"github.com/aescanero/alquimia/pkg/ports"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

const usage = `usage: alquimia <command> [flags]

Commands:
  network   build an experiment graph from a molecule list
  submit    submit an experiment graph to the fabric
  status    classify every task under a reference handle
  restart   re-queue the errored tasks under a reference handle
  gather    aggregate completed results under a reference handle
  serve     run the operator HTTP API
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	var runErr error
	switch os.Args[1] {
	case "network":
		runErr = runNetwork(os.Args[2:], logger)
	case "submit":
		runErr = runSubmit(os.Args[2:], cfg, logger)
	case "status":
		runErr = runStatus(os.Args[2:], cfg, logger)
	case "restart":
		runErr = runRestart(os.Args[2:], cfg, logger)
	case "gather":
		runErr = runGather(os.Args[2:], cfg, logger)
	case "serve":
		runErr = runServe(cfg, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if runErr != nil {
		logger.Error("command failed", zap.String("command", os.Args[1]), zap.Error(runErr))
		os.Exit(1)
	}
}

func runNetwork(args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("network", flag.ExitOnError)
	input := fs.String("input", "", "path to the molecule list, one structure per line")
	settingsPath := fs.String("settings", "", "optional YAML settings bundle applied over the defaults")
	output := fs.String("output", "network.json", "where to write the experiment graph")
	fs.Parse(args)

	if *input == "" {
		return fmt.Errorf("-input is required")
	}

	settings := network.DefaultSettings()
	if *settingsPath != "" {
		var err error
		if settings, err = network.LoadSettings(*settingsPath); err != nil {
			return err
		}
	}

	molecules, err := network.ReadMolecules(*input)
	if err != nil {
		return err
	}

	graph, err := network.NewBuilder(settings, logger).Build(molecules)
	if err != nil {
		return err
	}
	if err := network.WriteGraph(graph, *output); err != nil {
		return err
	}

	logger.Info("experiment graph written",
		zap.String("path", *output),
		zap.Int("experiments", graph.Len()))
	return nil
}

func runSubmit(args []string, cfg *config.Config, logger *zap.Logger) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	graphPath := fs.String("graph", "network.json", "path to the experiment graph")
	org := fs.String("org", "", "scope organization")
	campaignName := fs.String("campaign", "", "scope campaign")
	project := fs.String("project", "", "scope project")
	repeats := fs.Int("repeats", 3, "independent repeats per experiment")
	fs.Parse(args)

	scope, err := campaign.ValidateScope(*org, *campaignName, *project)
	if err != nil {
		return err
	}

	graph, err := network.ReadGraph(*graphPath)
	if err != nil {
		return err
	}

	fabric, store, closeStore, err := buildBackends(cfg, noop.NewCollector(), logger)
	if err != nil {
		return err
	}
	defer closeStore()

	submitter := campaign.NewSubmitter(fabric, store, noop.NewCollector(), logger)
	handle, err := submitter.Submit(context.Background(), graph, scope, *repeats)
	if err != nil {
		return err
	}

	fmt.Println(handle.ID)
	return nil
}

func runStatus(args []string, cfg *config.Config, logger *zap.Logger) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	handleID := fs.String("handle", "", "reference handle ID")
	fs.Parse(args)

	handle, fabric, closeStore, err := loadHandle(cfg, *handleID, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	monitor := campaign.NewMonitor(fabric, noop.NewCollector(), logger)
	report, err := monitor.Status(context.Background(), handle)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(report))
	for key := range report {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)

	fmt.Println("experiment\tqueued\trunning\tcomplete\terror\tinvalid")
	for _, key := range keys {
		counts := report[domain.ExperimentKey(key)]
		fmt.Printf("%s\t%d\t%d\t%d\t%d\t%d\n",
			key, counts.Queued, counts.Running, counts.Complete, counts.Errored, counts.Invalid)
	}
	totals := report.Totals()
	fmt.Printf("total\t%d\t%d\t%d\t%d\t%d\n",
		totals.Queued, totals.Running, totals.Complete, totals.Errored, totals.Invalid)
	return nil
}

func runRestart(args []string, cfg *config.Config, logger *zap.Logger) error {
	fs := flag.NewFlagSet("restart", flag.ExitOnError)
	handleID := fs.String("handle", "", "reference handle ID")
	fs.Parse(args)

	handle, fabric, closeStore, err := loadHandle(cfg, *handleID, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	metrics := noop.NewCollector()
	monitor := campaign.NewMonitor(fabric, metrics, logger)
	restarter := campaign.NewRestarter(fabric, monitor, metrics, logger)

	requeued, err := restarter.Restart(context.Background(), handle)
	if err != nil {
		return err
	}

	fmt.Printf("re-queued %d errored tasks\n", requeued)
	return nil
}

func runGather(args []string, cfg *config.Config, logger *zap.Logger) error {
	fs := flag.NewFlagSet("gather", flag.ExitOnError)
	handleID := fs.String("handle", "", "reference handle ID")
	graphPath := fs.String("graph", "", "optional graph file, used for experiment display names")
	output := fs.String("output", "results.tsv", "where to write the TSV report")
	fs.Parse(args)

	handle, fabric, closeStore, err := loadHandle(cfg, *handleID, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	metrics := noop.NewCollector()
	monitor := campaign.NewMonitor(fabric, metrics, logger)
	gatherer := campaign.NewGatherer(fabric, monitor, logger)
	if *graphPath != "" {
		graph, err := network.ReadGraph(*graphPath)
		if err != nil {
			return err
		}
		gatherer = gatherer.WithNames(graph)
	}

	report, err := gatherer.Gather(context.Background(), handle)
	if err != nil {
		return err
	}

	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := report.WriteTSV(f); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Info("report written",
		zap.String("path", *output),
		zap.Int("experiments", len(report)))
	return nil
}

func runServe(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting alquimia",
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	metrics := prometheus.NewCollector()

	fabric, store, closeStore, err := buildBackends(cfg, metrics, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	monitor := campaign.NewMonitor(fabric, metrics, logger)
	restarter := campaign.NewRestarter(fabric, monitor, metrics, logger)
	gatherer := campaign.NewGatherer(fabric, monitor, logger)

	server := apihttp.NewServer(&apihttp.Config{
		Port:      cfg.HTTPPort,
		Store:     store,
		Monitor:   monitor,
		Restarter: restarter,
		Gatherer:  gatherer,
		Logger:    logger,
	})

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	logger.Info("alquimia started", zap.Int("http_port", cfg.HTTPPort))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("alquimia shut down complete")
	return nil
}

// buildBackends wires the fabric client and the configured handle
// store backend.
func buildBackends(cfg *config.Config, metrics ports.MetricsCollector, logger *zap.Logger) (ports.FabricClient, ports.HandleStore, func(), error) {
	fabric, err := fabrichttp.NewClient(&fabrichttp.Config{
		BaseURL:  cfg.Fabric.URL,
		Identity: cfg.Fabric.Identity,
		Secret:   cfg.Fabric.Secret,
		Metrics:  metrics,
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	switch cfg.Store.Backend {
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
		closeStore := func() {
			if err := client.Close(); err != nil {
				logger.Error("Redis close error", zap.Error(err))
			}
		}
		return fabric, storeredis.NewHandleStore(client, logger), closeStore, nil

	default:
		store, err := storefile.NewHandleStore(cfg.Store.HandleDir, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return fabric, store, func() {}, nil
	}
}

// loadHandle wires the backends and resolves a handle ID.
func loadHandle(cfg *config.Config, handleID string, logger *zap.Logger) (*domain.ReferenceHandle, ports.FabricClient, func(), error) {
	if handleID == "" {
		return nil, nil, nil, fmt.Errorf("-handle is required")
	}

	fabric, store, closeStore, err := buildBackends(cfg, noop.NewCollector(), logger)
	if err != nil {
		return nil, nil, nil, err
	}

	handle, err := store.Load(context.Background(), handleID)
	if err != nil {
		closeStore()
		return nil, nil, nil, err
	}
	return handle, fabric, closeStore, nil
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
