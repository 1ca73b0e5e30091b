// Package indexer provides the indexing stage: it projects a loaded
// revision's vertices into the search index and, as the terminal stage,
// advances the ontology's latest revision pointer.
package indexer

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
	"github.com/ontoflow/ontoflow/ontology"
	"github.com/ontoflow/ontoflow/pipeline"
	"github.com/ontoflow/ontoflow/search"
	"github.com/ontoflow/ontoflow/search/elastic"
	searchmemory "github.com/ontoflow/ontoflow/search/memory"
)

// Component implements the indexing processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger

	inputSubject  string
	inputStream   string
	outputSubject string

	artifacts  *ontology.ArtifactStorage
	ontologies *ontology.Repository
	indexer    search.Indexer

	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	revisionsIndexed atomic.Int64
	indexFailures    atomic.Int64
	lastActivityMu   sync.RWMutex
	lastActivity     time.Time
}

// NewComponent creates a new indexer processor.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	subject, stream := pipeline.ResolveInput(config.Ports, pipeline.SubjectGraphLoaded, pipeline.StreamName)

	return &Component{
		name:          "indexer",
		config:        config,
		natsClient:    deps.NATSClient,
		logger:        deps.GetLogger(),
		inputSubject:  subject,
		inputStream:   stream,
		outputSubject: pipeline.ResolveOutput(config.Ports, pipeline.SubjectIndexed),
	}, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	return nil
}

func (c *Component) newIndexer() search.Indexer {
	if c.config.GetBackend() == BackendElastic {
		return elastic.New(elastic.Config{
			BaseURL:  c.config.BaseURL,
			Username: c.config.Username,
			Password: c.config.Password,
		})
	}
	return searchmemory.New()
}

// Start prepares the search index and begins consuming loaded revision events.
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

	ontologies, err := ontology.NewRepository(consumeCtx, c.natsClient, c.logger)
	if err != nil {
		return fail(fmt.Errorf("open ontology repository: %w", err))
	}
	c.ontologies = ontologies

	c.indexer = c.newIndexer()
	if err := c.indexer.CreateIndex(consumeCtx, c.config.GetIndex()); err != nil {
		return fail(fmt.Errorf("create search index: %w", err))
	}

	err = c.natsClient.ConsumeStreamWithConfig(consumeCtx, natsclient.StreamConsumerConfig{
		StreamName:    c.inputStream,
		ConsumerName:  "ontoflow-indexer",
		FilterSubject: c.inputSubject,
		DeliverPolicy: "new",
		AckPolicy:     "explicit",
		MaxDeliver:    3,
		AckWait:       10 * time.Second,
	}, c.handleMessage)
	if err != nil {
		return fail(fmt.Errorf("start consumer: %w", err))
	}

	c.logger.Info("indexer started",
		"input", c.inputSubject,
		"output", c.outputSubject,
		"backend", c.config.GetBackend(),
		"index", c.config.GetIndex())
	return nil
}

func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	start := time.Now()

	event, err := pipeline.ParseRevisionEvent(msg.Data())
	if err != nil {
		c.indexFailures.Add(1)
		c.logger.Warn("discarding malformed revision event", "error", err)
		_ = msg.Ack()
		pipeline.DefaultMetrics().Observe(c.name, time.Since(start), err)
		return
	}

	if err = c.index(ctx, event); err != nil {
		c.indexFailures.Add(1)
		c.logger.Warn("failed to index revision",
			"ontology_id", event.OntologyID,
			"revision_id", event.RevisionID,
			"error", err)
		_ = msg.Nak()
	} else {
		_ = msg.Ack()
	}
	pipeline.DefaultMetrics().Observe(c.name, time.Since(start), err)
}

func (c *Component) index(ctx context.Context, event pipeline.RevisionEvent) error {
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

	docs := search.FromGraph(propertyGraph)
	if err := c.indexer.IndexDocuments(ctx, c.config.GetIndex(), docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	latest, err := c.ontologies.UpdateLatestRevision(ctx, event.OntologyID, event.RevisionID)
	if err != nil {
		if errors.Is(err, ontology.ErrNotFound) {
			return fmt.Errorf("ontology %d not registered", event.OntologyID)
		}
		return fmt.Errorf("update latest revision: %w", err)
	}

	data, err := event.Marshal()
	if err != nil {
		return err
	}
	if err := c.natsClient.PublishToStream(ctx, c.outputSubject, data); err != nil {
		return fmt.Errorf("publish indexed event: %w", err)
	}

	c.revisionsIndexed.Add(1)
	c.updateLastActivity()
	c.logger.Info("indexed revision",
		"ontology_id", event.OntologyID,
		"revision_id", event.RevisionID,
		"documents", len(docs),
		"latest_revision", latest)
	return nil
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.running = false
	c.logger.Info("indexer stopped",
		"revisions_indexed", c.revisionsIndexed.Load(),
		"index_failures", c.indexFailures.Load())
	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "indexer",
		Type:        "processor",
		Description: "Indexes loaded graph vertices for search and publishes the revision",
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
	return indexerSchema
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
		ErrorCount: int(c.indexFailures.Load()),
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
