// Package ingestor provides the ingest input component: it watches a
// local directory for ontology documents, assigns each change the next
// revision number, stores the raw document as the revision's source
// artifact and publishes the ingested revision event.
package ingestor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/natsclient"

	"github.com/ontoflow/ontoflow/ontology"
	"github.com/ontoflow/ontoflow/pipeline"
	"github.com/ontoflow/ontoflow/source"
)

// Component implements the ingest input processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger

	outputSubject string

	watcher   *source.Watcher
	artifacts *ontology.ArtifactStorage
	events    *ontology.WebhookEventRepository

	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	documentsIngested atomic.Int64
	ingestErrors      atomic.Int64
	lastActivityMu    sync.RWMutex
	lastActivity      time.Time
}

// NewComponent creates a new ingestor input component.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Component{
		name:          "ingestor",
		config:        config,
		natsClient:    deps.NATSClient,
		logger:        deps.GetLogger(),
		outputSubject: pipeline.ResolveOutput(config.Ports, pipeline.SubjectIngested),
	}, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	return nil
}

// Start begins watching the configured directory.
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

	runCtx, cancel := context.WithCancel(ctx)
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

	artifacts, err := ontology.NewArtifactStorage(runCtx, c.natsClient)
	if err != nil {
		return fail(fmt.Errorf("open artifact storage: %w", err))
	}
	c.artifacts = artifacts

	events, err := ontology.NewWebhookEventRepository(runCtx, c.natsClient, c.logger)
	if err != nil {
		return fail(fmt.Errorf("open webhook event repository: %w", err))
	}
	c.events = events

	watcher, err := source.NewWatcher(source.Config{
		Dir:      c.config.WatchDir,
		Include:  c.config.Include,
		Debounce: c.config.GetDebounce(),
	}, c.logger)
	if err != nil {
		return fail(fmt.Errorf("create watcher: %w", err))
	}
	c.watcher = watcher

	if err := watcher.Start(runCtx); err != nil {
		return fail(fmt.Errorf("start watcher: %w", err))
	}

	go c.consumeChanges(runCtx)

	c.logger.Info("ingestor started",
		"ontology_id", c.config.OntologyID,
		"watch_dir", c.config.WatchDir,
		"output", c.outputSubject)
	return nil
}

func (c *Component) consumeChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-c.watcher.Changes():
			if !ok {
				return
			}
			if change.Op == source.OpDelete {
				// Revisions are immutable; a deleted document does not
				// retract already-ingested revisions.
				continue
			}
			if err := c.ingest(ctx, change); err != nil {
				c.ingestErrors.Add(1)
				c.logger.Warn("failed to ingest document change",
					"path", change.Path,
					"error", err)
			}
		}
	}
}

// ingest assigns the next revision number, stores the raw document and
// publishes the ingested event.
func (c *Component) ingest(ctx context.Context, change source.Change) error {
	content, err := os.ReadFile(change.AbsPath)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	revisionID := int64(1)
	latest, err := c.events.FindLatestByOntologyID(ctx, c.config.OntologyID)
	switch {
	case err == nil:
		revisionID = latest.RevisionID + 1
	case errors.Is(err, ontology.ErrNotFound):
		// First revision for this ontology.
	default:
		return fmt.Errorf("find latest revision: %w", err)
	}

	if err := c.artifacts.Upload(ctx, c.config.OntologyID, revisionID, ontology.ArtifactSource, content); err != nil {
		return fmt.Errorf("upload source artifact: %w", err)
	}

	event := pipeline.NewRevisionEvent(c.config.OntologyID, revisionID)
	if err := c.events.Save(ctx, &ontology.WebhookEvent{
		OntologyID: event.OntologyID,
		RevisionID: event.RevisionID,
		ReceivedAt: event.Timestamp,
	}); err != nil {
		return fmt.Errorf("save revision event: %w", err)
	}

	data, err := event.Marshal()
	if err != nil {
		return err
	}
	if err := c.natsClient.PublishToStream(ctx, c.outputSubject, data); err != nil {
		return fmt.Errorf("publish ingested event: %w", err)
	}

	c.documentsIngested.Add(1)
	c.updateLastActivity()
	c.logger.Info("ingested ontology revision",
		"ontology_id", event.OntologyID,
		"revision_id", event.RevisionID,
		"path", change.Path,
		"bytes", len(content))
	return nil
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return nil
	}
	if c.watcher != nil {
		_ = c.watcher.Stop()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.running = false
	c.logger.Info("ingestor stopped",
		"documents_ingested", c.documentsIngested.Load(),
		"ingest_errors", c.ingestErrors.Load())
	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "ingestor",
		Type:        "input",
		Description: "Watches a directory for ontology documents and emits revision events",
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
	return ingestorSchema
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
		ErrorCount: int(c.ingestErrors.Load()),
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
