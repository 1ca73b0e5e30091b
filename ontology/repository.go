package ontology

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"
)

// OntologiesBucket is the KV bucket holding ontology records.
const OntologiesBucket = "ONTOLOGIES"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("ontology: record not found")

// casAttempts bounds the retry loop of a compare-and-set update.
const casAttempts = 5

// KeyValue is the subset of the JetStream KV API the repositories use.
// jetstream.KeyValue satisfies it; tests supply an in-memory fake.
type KeyValue interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
	Keys(ctx context.Context, opts ...jetstream.WatchOpt) ([]string, error)
}

// Repository persists ontology records in a KV bucket.
type Repository struct {
	bucket KeyValue
	logger *slog.Logger
}

// NewRepository creates the bucket if needed and returns the repository.
func NewRepository(ctx context.Context, nc *natsclient.Client, logger *slog.Logger) (*Repository, error) {
	if nc == nil {
		return nil, fmt.Errorf("NATS client required")
	}
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("get jetstream: %w", err)
	}
	bucket, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      OntologiesBucket,
		Description: "Monitored ontology records",
	})
	if err != nil {
		return nil, fmt.Errorf("create/update kv bucket: %w", err)
	}
	return NewRepositoryWithBucket(bucket, logger), nil
}

// NewRepositoryWithBucket wraps an existing bucket.
func NewRepositoryWithBucket(bucket KeyValue, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{bucket: bucket, logger: logger}
}

func recordKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// FindByID returns the ontology record with the given id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Ontology, error) {
	entry, err := r.bucket.Get(ctx, recordKey(id))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get ontology %d: %w", id, err)
	}

	var record Ontology
	if err := json.Unmarshal(entry.Value(), &record); err != nil {
		return nil, fmt.Errorf("unmarshal ontology %d: %w", id, err)
	}
	return &record, nil
}

// Save stores the record, stamping timestamps.
func (r *Repository) Save(ctx context.Context, record *Ontology) error {
	if record.ID == 0 {
		return fmt.Errorf("ontology id is required")
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal ontology %d: %w", record.ID, err)
	}
	if _, err := r.bucket.Put(ctx, recordKey(record.ID), data); err != nil {
		return fmt.Errorf("put ontology %d: %w", record.ID, err)
	}
	return nil
}

// Delete removes the record.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.bucket.Delete(ctx, recordKey(id))
}

// List returns every ontology record.
func (r *Repository) List(ctx context.Context) ([]*Ontology, error) {
	keys, err := r.bucket.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list keys: %w", err)
	}

	records := make([]*Ontology, 0, len(keys))
	for _, key := range keys {
		entry, err := r.bucket.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, jetstream.ErrKeyDeleted) && !errors.Is(err, jetstream.ErrKeyNotFound) {
				r.logger.Warn("failed to get ontology record", "key", key, "error", err)
			}
			continue
		}
		var record Ontology
		if err := json.Unmarshal(entry.Value(), &record); err != nil {
			r.logger.Warn("failed to unmarshal ontology record", "key", key, "error", err)
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}

// UpdateLatestRevision advances the ontology's latest revision pointer to
// revisionID if it is newer, as a compare-and-set against the stored KV
// revision. An older incoming revision is not an error: it is the expected
// race under at-least-once, out-of-order delivery and leaves the pointer
// untouched. Returns the pointer value after the call.
func (r *Repository) UpdateLatestRevision(ctx context.Context, id, revisionID int64) (int64, error) {
	key := recordKey(id)

	var lastErr error
	for attempt := 0; attempt < casAttempts; attempt++ {
		entry, err := r.bucket.Get(ctx, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				return 0, ErrNotFound
			}
			return 0, fmt.Errorf("get ontology %d: %w", id, err)
		}

		var record Ontology
		if err := json.Unmarshal(entry.Value(), &record); err != nil {
			return 0, fmt.Errorf("unmarshal ontology %d: %w", id, err)
		}

		if revisionID <= record.LatestRevisionNumber {
			return record.LatestRevisionNumber, nil
		}

		record.LatestRevisionNumber = revisionID
		record.UpdatedAt = time.Now().UTC()
		data, err := json.Marshal(&record)
		if err != nil {
			return 0, fmt.Errorf("marshal ontology %d: %w", id, err)
		}

		if _, err := r.bucket.Update(ctx, key, data, entry.Revision()); err != nil {
			// Lost the race; re-read and retry.
			lastErr = err
			continue
		}
		return revisionID, nil
	}
	return 0, fmt.Errorf("update latest revision for ontology %d: %w", id, lastErr)
}
