package ontology

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"
)

// WebhookEventsBucket is the KV bucket holding received revision events,
// keyed {ontologyId}.{revisionId} for prefix scans per ontology.
const WebhookEventsBucket = "WEBHOOK_EVENTS"

// WebhookEventRepository persists received revision events.
type WebhookEventRepository struct {
	bucket KeyValue
	logger *slog.Logger
}

// NewWebhookEventRepository creates the bucket if needed.
func NewWebhookEventRepository(ctx context.Context, nc *natsclient.Client, logger *slog.Logger) (*WebhookEventRepository, error) {
	if nc == nil {
		return nil, fmt.Errorf("NATS client required")
	}
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("get jetstream: %w", err)
	}
	bucket, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      WebhookEventsBucket,
		Description: "Received ontology revision events",
	})
	if err != nil {
		return nil, fmt.Errorf("create/update kv bucket: %w", err)
	}
	return NewWebhookEventRepositoryWithBucket(bucket, logger), nil
}

// NewWebhookEventRepositoryWithBucket wraps an existing bucket.
func NewWebhookEventRepositoryWithBucket(bucket KeyValue, logger *slog.Logger) *WebhookEventRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookEventRepository{bucket: bucket, logger: logger}
}

func eventKey(ontologyID, revisionID int64) string {
	return fmt.Sprintf("%d.%d", ontologyID, revisionID)
}

// Save stores one event; re-saving the same (ontology, revision) is an
// idempotent overwrite.
func (r *WebhookEventRepository) Save(ctx context.Context, event *WebhookEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal webhook event: %w", err)
	}
	if _, err := r.bucket.Put(ctx, eventKey(event.OntologyID, event.RevisionID), data); err != nil {
		return fmt.Errorf("put webhook event: %w", err)
	}
	return nil
}

// FindLatestByOntologyID returns the event with the highest revision for
// the ontology.
func (r *WebhookEventRepository) FindLatestByOntologyID(ctx context.Context, ontologyID int64) (*WebhookEvent, error) {
	keys, err := r.bucket.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("list keys: %w", err)
	}

	prefix := fmt.Sprintf("%d.", ontologyID)
	var latest *WebhookEvent
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		entry, err := r.bucket.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, jetstream.ErrKeyDeleted) && !errors.Is(err, jetstream.ErrKeyNotFound) {
				r.logger.Warn("failed to get webhook event", "key", key, "error", err)
			}
			continue
		}
		var event WebhookEvent
		if err := json.Unmarshal(entry.Value(), &event); err != nil {
			r.logger.Warn("failed to unmarshal webhook event", "key", key, "error", err)
			continue
		}
		if latest == nil || event.RevisionID > latest.RevisionID {
			latest = &event
		}
	}

	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}
