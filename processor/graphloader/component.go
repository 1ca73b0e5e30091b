// Package graphloader provides the graph loading stage: it reads a
// revision's modelled graph artifact and loads it into the configured
// graph store, replacing any prior revision of the same ontology.
package graphloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/ontoflow/ontoflow/graph/export"
	"github.com/ontoflow/ontoflow/graphstore"
	"github.com/ontoflow/ontoflow/graphstore/gremlin"
	"github.com/ontoflow/ontoflow/graphstore/memory"
	"github.com/ontoflow/ontoflow/graphstore/neo4j"
	"github.com/ontoflow/ontoflow/ontology"
	"github.com/ontoflow/ontoflow/pipeline"
)

// Component implements the graph loading processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger

	inputSubject  string
	inputStream   string
	outputSubject string

	artifacts *ontology.ArtifactStorage
	store     graphstore.Store

	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	graphsLoaded   atomic.Int64
	loadFailures   atomic.Int64
	lastActivityMu sync.RWMutex
	lastActivity   time.Time
}

// NewComponent creates a new graph loader processor.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	subject, stream := pipeline.ResolveInput(config.Ports, pipeline.SubjectModelled, pipeline.StreamName)

	return &Component{
		name:          "graph-loader",
		config:        config,
		natsClient:    deps.NATSClient,
		logger:        deps.GetLogger(),
		inputSubject:  subject,
		inputStream:   stream,
		outputSubject: pipeline.ResolveOutput(config.Ports, pipeline.SubjectGraphLoaded),
	}, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	return nil
}

func (c *Component) newStore() graphstore.Store {
	switch c.config.GetBackend() {
	case BackendNeo4j:
		return neo4j.New(neo4j.Config{
			URI:      c.config.URI,
			Username: c.config.Username,
			Password: c.config.Password,
		})
	case BackendGremlin:
		return gremlin.New(gremlin.Config{URL: c.config.URI})
	default:
		cfg := memory.DefaultConfig()
		cfg.FlushPath = c.config.FlushPath
		return memory.New(cfg, c.logger)
	}
}

// Start opens the graph store and begins consuming modelled revision events.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("component already running")
	}
	if c.natsClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}
	c.running = true
	c.startTime = time.Now()

	consumeCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	fail := func(err error) error {
		c.mu.Lock()
		c.running = false
		c.cancel = nil
		c.mu.Unlock()
		cancel()
		return err
	}

	artifacts, err := ontology.NewArtifactStorage(consumeCtx, c.natsClient)
	if err != nil {
		return fail(fmt.Errorf("open artifact storage: %w", err))
	}
	c.artifacts = artifacts

	store := c.newStore()
	if err := store.Open(consumeCtx); err != nil {
		return fail(fmt.Errorf("open %s graph store: %w", c.config.GetBackend(), err))
	}
	if store.Capabilities().Schema {
		if err := store.CreateSchema(consumeCtx); err != nil {
			return fail(fmt.Errorf("create graph schema: %w", err))
		}
	}
	c.store = store

	err = c.natsClient.ConsumeStreamWithConfig(consumeCtx, natsclient.StreamConsumerConfig{
		StreamName:    c.inputStream,
		ConsumerName:  "ontoflow-graph-loader",
		FilterSubject: c.inputSubject,
		DeliverPolicy: "new",
		AckPolicy:     "explicit",
		MaxDeliver:    3,
		AckWait:       10 * time.Second,
	}, c.handleMessage)
	if err != nil {
		_ = store.Close(context.Background())
		return fail(fmt.Errorf("start consumer: %w", err))
	}

	c.logger.Info("graph loader started",
		"input", c.inputSubject,
		"output", c.outputSubject,
		"backend", c.config.GetBackend())
	return nil
}

func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	start := time.Now()

	event, err := pipeline.ParseRevisionEvent(msg.Data())
	if err != nil {
		c.loadFailures.Add(1)
		c.logger.Warn("discarding malformed revision event", "error", err)
		_ = msg.Ack()
		pipeline.DefaultMetrics().Observe(c.name, time.Since(start), err)
		return
	}

	if err = c.load(ctx, event); err != nil {
		c.loadFailures.Add(1)
		c.logger.Warn("failed to load revision graph",
			"ontology_id", event.OntologyID,
			"revision_id", event.RevisionID,
			"error", err)
		_ = msg.Nak()
	} else {
		_ = msg.Ack()
	}
	pipeline.DefaultMetrics().Observe(c.name, time.Since(start), err)
}

func (c *Component) load(ctx context.Context, event pipeline.RevisionEvent) error {
	encoded, err := c.artifacts.Download(ctx, event.OntologyID, event.RevisionID, ontology.ArtifactGraph)
	if err != nil {
		if errors.Is(err, ontology.ErrNotFound) {
			return fmt.Errorf("graph artifact missing for revision %d", event.RevisionID)
		}
		return fmt.Errorf("download graph artifact: %w", err)
	}

	propertyGraph, err := export.ParseNative(encoded)
	if err != nil {
		return fmt.Errorf("decode graph artifact: %w", err)
	}

	if err := graphstore.Load(ctx, c.store, propertyGraph); err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	data, err := event.Marshal()
	if err != nil {
		return err
	}
	if err := c.natsClient.PublishToStream(ctx, c.outputSubject, data); err != nil {
		return fmt.Errorf("publish graph loaded event: %w", err)
	}

	vertices, edges := propertyGraph.Counts()
	c.graphsLoaded.Add(1)
	c.updateLastActivity()
	c.logger.Info("loaded revision graph",
		"ontology_id", event.OntologyID,
		"revision_id", event.RevisionID,
		"vertices", vertices,
		"edges", edges,
		"backend", c.config.GetBackend())
	return nil
}

// Stop gracefully stops the component and closes the graph store.
func (c *Component) Stop(timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	if c.store != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := c.store.Close(closeCtx); err != nil {
			c.logger.Warn("failed to close graph store", "error", err)
		}
	}
	c.running = false
	c.logger.Info("graph loader stopped",
		"graphs_loaded", c.graphsLoaded.Load(),
		"load_failures", c.loadFailures.Load())
	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "graph-loader",
		Type:        "processor",
		Description: "Loads modelled property graphs into the configured graph store",
		Version:     "1.0.0",
	}
}

// InputPorts returns configured input port definitions.
func (c *Component) InputPorts() []component.Port {
	return pipeline.InputPorts(c.config.Ports)
}

// OutputPorts returns configured output port definitions.
func (c *Component) OutputPorts() []component.Port {
	return pipeline.OutputPorts(c.config.Ports)
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return graphloaderSchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	if running {
		status = "running"
	}
	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(c.loadFailures.Load()),
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{LastActivity: c.getLastActivity()}
}

func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}
