// Package modeller provides the modelling stage: it turns a revision's
// parsed declarations into a directed property graph, resolving annotation
// property IRIs against the vocabulary catalogue, and stores the graph as
// the revision's graph artifact.
package modeller

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

	"github.com/ontoflow/ontoflow/graph"
	"github.com/ontoflow/ontoflow/graph/export"
	"github.com/ontoflow/ontoflow/ontology"
	"github.com/ontoflow/ontoflow/owl"
	"github.com/ontoflow/ontoflow/pipeline"
	"github.com/ontoflow/ontoflow/vocabulary"
)

// Component implements the modelling processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger

	inputSubject  string
	inputStream   string
	outputSubject string

	artifacts *ontology.ArtifactStorage
	catalogue *vocabulary.Catalogue

	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	graphsModelled atomic.Int64
	modelFailures  atomic.Int64
	lastActivityMu sync.RWMutex
	lastActivity   time.Time
}

// NewComponent creates a new modeller processor.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	subject, stream := pipeline.ResolveInput(config.Ports, pipeline.SubjectParsed, pipeline.StreamName)

	return &Component{
		name:          "modeller",
		config:        config,
		natsClient:    deps.NATSClient,
		logger:        deps.GetLogger(),
		inputSubject:  subject,
		inputStream:   stream,
		outputSubject: pipeline.ResolveOutput(config.Ports, pipeline.SubjectModelled),
		catalogue:     vocabulary.Default(),
	}, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	return nil
}

// Start begins consuming parsed revision events.
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

	err = c.natsClient.ConsumeStreamWithConfig(consumeCtx, natsclient.StreamConsumerConfig{
		StreamName:    c.inputStream,
		ConsumerName:  "ontoflow-modeller",
		FilterSubject: c.inputSubject,
		DeliverPolicy: "new",
		AckPolicy:     "explicit",
		MaxDeliver:    3,
		AckWait:       10 * time.Second,
	}, c.handleMessage)
	if err != nil {
		return fail(fmt.Errorf("start consumer: %w", err))
	}

	c.logger.Info("modeller started",
		"input", c.inputSubject,
		"output", c.outputSubject,
		"catalogue_size", c.catalogue.Len())
	return nil
}

func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	start := time.Now()

	event, err := pipeline.ParseRevisionEvent(msg.Data())
	if err != nil {
		c.modelFailures.Add(1)
		c.logger.Warn("discarding malformed revision event", "error", err)
		_ = msg.Ack()
		pipeline.DefaultMetrics().Observe(c.name, time.Since(start), err)
		return
	}

	err = c.model(ctx, event)
	switch {
	case err == nil:
		_ = msg.Ack()
	case errors.Is(err, errRejected):
		c.modelFailures.Add(1)
		c.logger.Warn("dropping unmodellable revision",
			"ontology_id", event.OntologyID,
			"revision_id", event.RevisionID,
			"error", err)
		_ = msg.Ack()
	default:
		c.modelFailures.Add(1)
		c.logger.Warn("failed to model revision",
			"ontology_id", event.OntologyID,
			"revision_id", event.RevisionID,
			"error", err)
		_ = msg.Nak()
	}
	pipeline.DefaultMetrics().Observe(c.name, time.Since(start), err)
}

// errRejected marks a deterministic modelling failure. The same artifact
// produces the same failure on every retry, so the event is dropped rather
// than redelivered.
var errRejected = errors.New("revision rejected")

func (c *Component) model(ctx context.Context, event pipeline.RevisionEvent) error {
	parsed, err := c.artifacts.Download(ctx, event.OntologyID, event.RevisionID, ontology.ArtifactParsed)
	if err != nil {
		if errors.Is(err, ontology.ErrNotFound) {
			return fmt.Errorf("%w: parsed artifact missing", errRejected)
		}
		return fmt.Errorf("download parsed artifact: %w", err)
	}

	var ont owl.Ontology
	if err := json.Unmarshal(parsed, &ont); err != nil {
		return fmt.Errorf("%w: decode parsed ontology: %v", errRejected, err)
	}

	propertyGraph, err := graph.Model(event.OntologyID, event.RevisionID, &ont, c.catalogue)
	if err != nil {
		return fmt.Errorf("%w: model property graph: %v", errRejected, err)
	}

	encoded, err := export.Native(propertyGraph)
	if err != nil {
		return fmt.Errorf("encode property graph: %w", err)
	}
	if err := c.artifacts.Upload(ctx, event.OntologyID, event.RevisionID, ontology.ArtifactGraph, encoded); err != nil {
		return fmt.Errorf("upload graph artifact: %w", err)
	}

	data, err := event.Marshal()
	if err != nil {
		return err
	}
	if err := c.natsClient.PublishToStream(ctx, c.outputSubject, data); err != nil {
		return fmt.Errorf("publish modelled event: %w", err)
	}

	vertices, edges := propertyGraph.Counts()
	c.graphsModelled.Add(1)
	c.updateLastActivity()
	c.logger.Info("modelled revision",
		"ontology_id", event.OntologyID,
		"revision_id", event.RevisionID,
		"vertices", vertices,
		"edges", edges)
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
	c.logger.Info("modeller stopped",
		"graphs_modelled", c.graphsModelled.Load(),
		"model_failures", c.modelFailures.Load())
	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "modeller",
		Type:        "processor",
		Description: "Models parsed ontology declarations as a directed property graph",
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
	return modellerSchema
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
		ErrorCount: int(c.modelFailures.Load()),
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
