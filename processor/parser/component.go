// Package parser provides the parsing stage: it reads a validated
// revision's source document, extracts its classes, properties and
// individuals and stores the result as the revision's parsed artifact.
package parser

import (
	"bytes"
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
	"github.com/ontoflow/ontoflow/owl"
	"github.com/ontoflow/ontoflow/pipeline"
)

// Component implements the parsing processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger

	inputSubject  string
	inputStream   string
	outputSubject string

	artifacts *ontology.ArtifactStorage

	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	documentsParsed atomic.Int64
	parseFailures   atomic.Int64
	lastActivityMu  sync.RWMutex
	lastActivity    time.Time
}

// NewComponent creates a new parser processor.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	subject, stream := pipeline.ResolveInput(config.Ports, pipeline.SubjectValidated, pipeline.StreamName)

	return &Component{
		name:          "parser",
		config:        config,
		natsClient:    deps.NATSClient,
		logger:        deps.GetLogger(),
		inputSubject:  subject,
		inputStream:   stream,
		outputSubject: pipeline.ResolveOutput(config.Ports, pipeline.SubjectParsed),
	}, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	return nil
}

// Start begins consuming validated revision events.
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
		ConsumerName:  "ontoflow-parser",
		FilterSubject: c.inputSubject,
		DeliverPolicy: "new",
		AckPolicy:     "explicit",
		MaxDeliver:    3,
		AckWait:       10 * time.Second,
	}, c.handleMessage)
	if err != nil {
		return fail(fmt.Errorf("start consumer: %w", err))
	}

	c.logger.Info("parser started",
		"input", c.inputSubject,
		"output", c.outputSubject)
	return nil
}

func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	start := time.Now()

	event, err := pipeline.ParseRevisionEvent(msg.Data())
	if err != nil {
		c.parseFailures.Add(1)
		c.logger.Warn("discarding malformed revision event", "error", err)
		_ = msg.Ack()
		pipeline.DefaultMetrics().Observe(c.name, time.Since(start), err)
		return
	}

	if err = c.parse(ctx, event); err != nil {
		c.parseFailures.Add(1)
		c.logger.Warn("failed to parse revision",
			"ontology_id", event.OntologyID,
			"revision_id", event.RevisionID,
			"error", err)
		_ = msg.Nak()
	} else {
		_ = msg.Ack()
	}
	pipeline.DefaultMetrics().Observe(c.name, time.Since(start), err)
}

func (c *Component) parse(ctx context.Context, event pipeline.RevisionEvent) error {
	document, err := c.artifacts.Download(ctx, event.OntologyID, event.RevisionID, ontology.ArtifactSource)
	if err != nil {
		if errors.Is(err, ontology.ErrNotFound) {
			return fmt.Errorf("source artifact missing for revision %d", event.RevisionID)
		}
		return fmt.Errorf("download source artifact: %w", err)
	}

	ont, err := owl.Parse(bytes.NewReader(document))
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	parsed, err := json.Marshal(ont)
	if err != nil {
		return fmt.Errorf("encode parsed ontology: %w", err)
	}
	if err := c.artifacts.Upload(ctx, event.OntologyID, event.RevisionID, ontology.ArtifactParsed, parsed); err != nil {
		return fmt.Errorf("upload parsed artifact: %w", err)
	}

	data, err := event.Marshal()
	if err != nil {
		return err
	}
	if err := c.natsClient.PublishToStream(ctx, c.outputSubject, data); err != nil {
		return fmt.Errorf("publish parsed event: %w", err)
	}

	c.documentsParsed.Add(1)
	c.updateLastActivity()
	c.logger.Info("parsed revision",
		"ontology_id", event.OntologyID,
		"revision_id", event.RevisionID,
		"classes", len(ont.Classes),
		"object_properties", len(ont.ObjectProperties),
		"individuals", len(ont.Individuals))
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
	c.logger.Info("parser stopped",
		"documents_parsed", c.documentsParsed.Load(),
		"parse_failures", c.parseFailures.Load())
	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "parser",
		Type:        "processor",
		Description: "Parses validated ontology documents into structured declarations",
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
	return parserSchema
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
		ErrorCount: int(c.parseFailures.Load()),
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
