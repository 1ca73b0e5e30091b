// Package validator provides the validation stage: it checks that an
// ingested revision belongs to a registered ontology and that its source
// document is well-formed RDF before the revision moves downstream.
package validator

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

	"github.com/ontoflow/ontoflow/ontology"
	"github.com/ontoflow/ontoflow/pipeline"
	"github.com/ontoflow/ontoflow/triplestore"
)

// Component implements the validation processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger

	inputSubject  string
	inputStream   string
	outputSubject string

	ontologies *ontology.Repository
	artifacts  *ontology.ArtifactStorage

	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	eventsValidated atomic.Int64
	eventsRejected  atomic.Int64
	handlerErrors   atomic.Int64
	lastActivityMu  sync.RWMutex
	lastActivity    time.Time
}

// NewComponent creates a new validator processor.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	subject, stream := pipeline.ResolveInput(config.Ports, pipeline.SubjectIngested, pipeline.StreamName)

	return &Component{
		name:          "validator",
		config:        config,
		natsClient:    deps.NATSClient,
		logger:        deps.GetLogger(),
		inputSubject:  subject,
		inputStream:   stream,
		outputSubject: pipeline.ResolveOutput(config.Ports, pipeline.SubjectValidated),
	}, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	return nil
}

// Start begins consuming ingested revision events.
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

	ontologies, err := ontology.NewRepository(consumeCtx, c.natsClient, c.logger)
	if err != nil {
		return fail(fmt.Errorf("open ontology repository: %w", err))
	}
	c.ontologies = ontologies

	artifacts, err := ontology.NewArtifactStorage(consumeCtx, c.natsClient)
	if err != nil {
		return fail(fmt.Errorf("open artifact storage: %w", err))
	}
	c.artifacts = artifacts

	err = c.natsClient.ConsumeStreamWithConfig(consumeCtx, natsclient.StreamConsumerConfig{
		StreamName:    c.inputStream,
		ConsumerName:  "ontoflow-validator",
		FilterSubject: c.inputSubject,
		DeliverPolicy: "new",
		AckPolicy:     "explicit",
		MaxDeliver:    3,
		AckWait:       10 * time.Second,
	}, c.handleMessage)
	if err != nil {
		return fail(fmt.Errorf("start consumer: %w", err))
	}

	c.logger.Info("validator started",
		"input", c.inputSubject,
		"output", c.outputSubject)
	return nil
}

// handleMessage validates one revision event. Permanent failures ack the
// message so it is not redelivered; transient failures nak for retry.
func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	start := time.Now()

	event, err := pipeline.ParseRevisionEvent(msg.Data())
	if err != nil {
		c.handlerErrors.Add(1)
		c.logger.Warn("discarding malformed revision event", "error", err)
		_ = msg.Ack()
		pipeline.DefaultMetrics().Observe(c.name, time.Since(start), err)
		return
	}

	err = c.validate(ctx, event)
	switch {
	case err == nil:
		_ = msg.Ack()
	case errors.Is(err, errRejected):
		c.eventsRejected.Add(1)
		c.logger.Warn("rejected revision",
			"ontology_id", event.OntologyID,
			"revision_id", event.RevisionID,
			"error", err)
		_ = msg.Ack()
	default:
		c.handlerErrors.Add(1)
		c.logger.Warn("failed to validate revision",
			"ontology_id", event.OntologyID,
			"revision_id", event.RevisionID,
			"error", err)
		_ = msg.Nak()
	}
	pipeline.DefaultMetrics().Observe(c.name, time.Since(start), err)
}

// errRejected marks a permanent validation failure. The revision never
// becomes valid on retry, so the event is dropped rather than redelivered.
var errRejected = errors.New("revision rejected")

func (c *Component) validate(ctx context.Context, event pipeline.RevisionEvent) error {
	if _, err := c.ontologies.FindByID(ctx, event.OntologyID); err != nil {
		if errors.Is(err, ontology.ErrNotFound) {
			return fmt.Errorf("%w: unknown ontology %d", errRejected, event.OntologyID)
		}
		return fmt.Errorf("look up ontology: %w", err)
	}

	document, err := c.artifacts.Download(ctx, event.OntologyID, event.RevisionID, ontology.ArtifactSource)
	if err != nil {
		if errors.Is(err, ontology.ErrNotFound) {
			return fmt.Errorf("%w: source artifact missing", errRejected)
		}
		return fmt.Errorf("download source artifact: %w", err)
	}

	triples, err := triplestore.Validate(document)
	if err != nil {
		return fmt.Errorf("%w: %v", errRejected, err)
	}
	if triples == 0 {
		return fmt.Errorf("%w: document contains no statements", errRejected)
	}

	data, err := event.Marshal()
	if err != nil {
		return err
	}
	if err := c.natsClient.PublishToStream(ctx, c.outputSubject, data); err != nil {
		return fmt.Errorf("publish validated event: %w", err)
	}

	c.eventsValidated.Add(1)
	c.updateLastActivity()
	c.logger.Info("validated revision",
		"ontology_id", event.OntologyID,
		"revision_id", event.RevisionID,
		"statements", triples)
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
	c.logger.Info("validator stopped",
		"events_validated", c.eventsValidated.Load(),
		"events_rejected", c.eventsRejected.Load())
	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "validator",
		Type:        "processor",
		Description: "Validates ingested ontology documents before downstream processing",
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
	return validatorSchema
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
		ErrorCount: int(c.handlerErrors.Load()),
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
