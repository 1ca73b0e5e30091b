// Package pipeline defines the wire contract between stages: the revision
// event payload, the JetStream stream and subject layout, and the stage
// throughput metrics. Stages exchange only the lightweight event; every
// artifact is re-fetched by its (ontologyId, revisionId) key.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// StreamName is the JetStream stream carrying all pipeline events.
const StreamName = "ONTOFLOW"

// SubjectWildcard covers every pipeline event subject.
const SubjectWildcard = "ontology.event.>"

// Stage event subjects, one per completed stage.
const (
	SubjectIngested          = "ontology.event.ingested"
	SubjectValidated         = "ontology.event.validated"
	SubjectParsed            = "ontology.event.parsed"
	SubjectModelled          = "ontology.event.modelled"
	SubjectGraphLoaded       = "ontology.event.graph.loaded"
	SubjectIndexed           = "ontology.event.indexed"
	SubjectTriplestoreLoaded = "ontology.event.triplestore.loaded"
)

// RevisionEvent identifies exactly one immutable input artifact of one
// ontology. Consumers must ignore unknown additional fields.
type RevisionEvent struct {
	OntologyID int64     `json:"ontologyId"`
	RevisionID int64     `json:"revisionId"`
	Timestamp  time.Time `json:"ts"`
}

// NewRevisionEvent stamps an event with the current time.
func NewRevisionEvent(ontologyID, revisionID int64) RevisionEvent {
	return RevisionEvent{
		OntologyID: ontologyID,
		RevisionID: revisionID,
		Timestamp:  time.Now().UTC(),
	}
}

// Validate rejects events that cannot address an artifact.
func (e RevisionEvent) Validate() error {
	if e.OntologyID <= 0 {
		return fmt.Errorf("invalid ontologyId: %d", e.OntologyID)
	}
	if e.RevisionID <= 0 {
		return fmt.Errorf("invalid revisionId: %d", e.RevisionID)
	}
	return nil
}

// ParseRevisionEvent decodes an event payload, tolerating unknown fields.
func ParseRevisionEvent(data []byte) (RevisionEvent, error) {
	var event RevisionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return RevisionEvent{}, fmt.Errorf("unmarshal revision event: %w", err)
	}
	if err := event.Validate(); err != nil {
		return RevisionEvent{}, err
	}
	return event, nil
}

// Marshal encodes the event for publishing.
func (e RevisionEvent) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal revision event: %w", err)
	}
	return data, nil
}

// EnsureStream creates or updates the pipeline stream. Idempotent, called
// once at process start before any component subscribes.
func EnsureStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Ontology pipeline revision events",
		Subjects:    []string{SubjectWildcard},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("create/update stream %s: %w", StreamName, err)
	}
	return nil
}
