// Package main provides the ontoflow binary entry point.
// Ontoflow ingests OWL ontology documents and propagates each revision
// through an event-driven pipeline into property graph, search and
// triplestore backends.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ontoflow/ontoflow/graph"
	"github.com/ontoflow/ontoflow/graph/export"
	"github.com/ontoflow/ontoflow/owl"
	"github.com/ontoflow/ontoflow/pipeline"
	"github.com/ontoflow/ontoflow/processor/graphloader"
	"github.com/ontoflow/ontoflow/processor/indexer"
	"github.com/ontoflow/ontoflow/processor/ingestor"
	"github.com/ontoflow/ontoflow/processor/modeller"
	"github.com/ontoflow/ontoflow/processor/parser"
	"github.com/ontoflow/ontoflow/processor/tripleloader"
	"github.com/ontoflow/ontoflow/processor/validator"
	"github.com/ontoflow/ontoflow/vocabulary"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "ontoflow"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "ontoflow",
		Short: "Ontology ingestion and graph modelling pipeline",
		Long: `Ontoflow watches OWL ontology documents and propagates each revision
through an event-driven pipeline:

- validation of the RDF document
- parsing into classes, properties and individuals
- modelling as a directed property graph
- loading into a graph store (in-memory, Neo4j or Gremlin Server)
- indexing vertices for search (in-memory or Elasticsearch)
- optional loading into a SPARQL triplestore

All stages communicate via NATS JetStream.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, logLevel)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	cmd.AddCommand(modelCmd())

	return cmd
}

// modelCmd models an ontology document offline, without NATS or any
// backend, and prints the graph in the requested format.
func modelCmd() *cobra.Command {
	var (
		ontologyID int64
		revisionID int64
		format     string
	)

	cmd := &cobra.Command{
		Use:   "model <document>",
		Short: "Model an ontology document as a property graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ont, err := owl.ParseFile(args[0])
			if err != nil {
				return fmt.Errorf("parse document: %w", err)
			}

			propertyGraph, err := graph.Model(ontologyID, revisionID, ont, vocabulary.Default())
			if err != nil {
				return fmt.Errorf("model property graph: %w", err)
			}

			var out []byte
			switch format {
			case "native":
				out, err = export.Native(propertyGraph)
			case "interchange":
				out, err = export.InterchangeJSON(propertyGraph)
			case "vis":
				out, err = export.VisJSON(propertyGraph)
			default:
				return fmt.Errorf("unknown format %q (native, interchange, vis)", format)
			}
			if err != nil {
				return fmt.Errorf("encode graph: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().Int64Var(&ontologyID, "ontology-id", 1, "Ontology id stamped on the graph")
	cmd.Flags().Int64Var(&revisionID, "revision-id", 1, "Revision id stamped on the graph")
	cmd.Flags().StringVar(&format, "format", "native", "Output format (native, interchange, vis)")

	return cmd
}

// stageOrder starts consumers before the producer so no event is published
// into a stream nobody consumes from yet. The ingestor comes last.
var stageOrder = []string{
	"validator",
	"parser",
	"modeller",
	"graph-loader",
	"indexer",
	"triple-loader",
	"ingestor",
}

// stageFactory creates one stage component from its raw config.
type stageFactory func(json.RawMessage, component.Dependencies) (component.Discoverable, error)

var stageFactories = map[string]stageFactory{
	"ingestor":      ingestor.NewComponent,
	"validator":     validator.NewComponent,
	"parser":        parser.NewComponent,
	"modeller":      modeller.NewComponent,
	"graph-loader":  graphloader.NewComponent,
	"indexer":       indexer.NewComponent,
	"triple-loader": tripleloader.NewComponent,
}

func run(configPath, logLevel string) error {
	printBanner()

	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	natsClient, err := connectToNATS(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer natsClient.Close(ctx)

	js, err := natsClient.JetStream()
	if err != nil {
		return fmt.Errorf("get jetstream: %w", err)
	}
	if err := pipeline.EnsureStream(ctx, js); err != nil {
		return fmt.Errorf("ensure stream: %w", err)
	}
	logger.Debug("JetStream stream ready", "stream", pipeline.StreamName)

	if cfg.Metrics.Addr != "" {
		startMetricsListener(cfg.Metrics.Addr, logger)
	}

	registry := component.NewRegistry()
	if err := registerAll(registry); err != nil {
		return fmt.Errorf("register components: %w", err)
	}

	deps := component.Dependencies{
		NATSClient: natsClient,
		Logger:     logger,
	}

	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	components, err := startStages(signalCtx, cfg, deps, logger)
	if err != nil {
		stopStages(components, logger)
		return err
	}
	if len(components) == 0 {
		return fmt.Errorf("no stages enabled")
	}

	slog.Info("Ontoflow ready", "version", Version, "stages", len(components))

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	stopStages(components, logger)
	slog.Info("Ontoflow shutdown complete")
	return nil
}

func registerAll(registry *component.Registry) error {
	registrars := []struct {
		name     string
		register func(*component.Registry) error
	}{
		{"ingestor", func(r *component.Registry) error { return ingestor.Register(r) }},
		{"validator", func(r *component.Registry) error { return validator.Register(r) }},
		{"parser", func(r *component.Registry) error { return parser.Register(r) }},
		{"modeller", func(r *component.Registry) error { return modeller.Register(r) }},
		{"graph-loader", func(r *component.Registry) error { return graphloader.Register(r) }},
		{"indexer", func(r *component.Registry) error { return indexer.Register(r) }},
		{"triple-loader", func(r *component.Registry) error { return tripleloader.Register(r) }},
	}
	for _, reg := range registrars {
		if err := reg.register(registry); err != nil {
			return fmt.Errorf("register %s: %w", reg.name, err)
		}
	}
	return nil
}

// stage is the lifecycle every pipeline component implements.
type stage interface {
	Initialize() error
	Start(ctx context.Context) error
	Stop(timeout time.Duration) error
}

type runningStage struct {
	name string
	comp stage
}

func startStages(ctx context.Context, cfg *AppConfig, deps component.Dependencies, logger *slog.Logger) ([]runningStage, error) {
	var running []runningStage
	for _, name := range stageOrder {
		stageCfg, ok := cfg.Stages[name]
		if !ok || !stageCfg.Enabled {
			logger.Debug("stage disabled", "stage", name)
			continue
		}

		factory, ok := stageFactories[name]
		if !ok {
			return running, fmt.Errorf("unknown stage %q", name)
		}

		raw, err := stageCfg.RawConfig()
		if err != nil {
			return running, fmt.Errorf("stage %s: %w", name, err)
		}

		discoverable, err := factory(raw, deps)
		if err != nil {
			return running, fmt.Errorf("create stage %s: %w", name, err)
		}

		comp, ok := discoverable.(stage)
		if !ok {
			return running, fmt.Errorf("stage %s does not implement the component lifecycle", name)
		}

		if err := comp.Initialize(); err != nil {
			return running, fmt.Errorf("initialize stage %s: %w", name, err)
		}
		if err := comp.Start(ctx); err != nil {
			return running, fmt.Errorf("start stage %s: %w", name, err)
		}

		logger.Info("stage started", "stage", name)
		running = append(running, runningStage{name: name, comp: comp})
	}
	return running, nil
}

func stopStages(stages []runningStage, logger *slog.Logger) {
	shutdownTimeout := 30 * time.Second
	for i := len(stages) - 1; i >= 0; i-- {
		if err := stages[i].comp.Stop(shutdownTimeout); err != nil {
			logger.Error("failed to stop stage", "stage", stages[i].name, "error", err)
		}
	}
}

func startMetricsListener(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		logger.Info("metrics listener started", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics listener failed", "error", err)
		}
	}()
}

func printBanner() {
	fmt.Println("╔═══════════════════════════════════════════════╗")
	fmt.Println("║             Ontoflow v" + Version + "                    ║")
	fmt.Println("║     Ontology Graph Modelling Pipeline         ║")
	fmt.Println("╚═══════════════════════════════════════════════╝")
}

func connectToNATS(ctx context.Context, cfg *AppConfig, logger *slog.Logger) (*natsclient.Client, error) {
	natsURL := cfg.NATS.URL
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		natsURL = envURL
	}

	logger.Info("Connecting to NATS", "url", natsURL)

	reconnectWait := cfg.NATS.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = time.Second
	}

	client, err := natsclient.NewClient(natsURL,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
		natsclient.WithReconnectWait(reconnectWait),
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, natsURL)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, wrapNATSError(err, natsURL)
	}

	logger.Info("Connected to NATS", "url", natsURL)
	return client, nil
}

// wrapNATSError provides guidance when the NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

To start NATS:
  docker compose up -d nats

Or set NATS_URL environment variable to point to your NATS server.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}
