package ontology

import (
	"context"
	"errors"
	"fmt"

	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"
)

// SecretsBucket is the KV bucket holding per-ontology credentials,
// separate from ontology records so a record read never exposes them.
const SecretsBucket = "ONTOLOGY_SECRETS"

// Well-known secret names.
const (
	SecretAccessToken   = "access-token"
	SecretWebhookSecret = "webhook-secret"
)

// SecretStore persists per-ontology credentials.
type SecretStore struct {
	bucket KeyValue
}

// NewSecretStore creates the bucket if needed and returns the store.
func NewSecretStore(ctx context.Context, nc *natsclient.Client) (*SecretStore, error) {
	if nc == nil {
		return nil, fmt.Errorf("NATS client required")
	}
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("get jetstream: %w", err)
	}
	bucket, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      SecretsBucket,
		Description: "Per-ontology credentials",
	})
	if err != nil {
		return nil, fmt.Errorf("create/update kv bucket: %w", err)
	}
	return NewSecretStoreWithBucket(bucket), nil
}

// NewSecretStoreWithBucket wraps an existing bucket.
func NewSecretStoreWithBucket(bucket KeyValue) *SecretStore {
	return &SecretStore{bucket: bucket}
}

func secretKey(ontologyID int64, name string) string {
	return fmt.Sprintf("%d.%s", ontologyID, name)
}

// Get returns the named secret for the ontology.
func (s *SecretStore) Get(ctx context.Context, ontologyID int64, name string) (string, error) {
	entry, err := s.bucket.Get(ctx, secretKey(ontologyID, name))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get secret %s for ontology %d: %w", name, ontologyID, err)
	}
	return string(entry.Value()), nil
}

// Set stores the named secret for the ontology.
func (s *SecretStore) Set(ctx context.Context, ontologyID int64, name, value string) error {
	if _, err := s.bucket.Put(ctx, secretKey(ontologyID, name), []byte(value)); err != nil {
		return fmt.Errorf("put secret %s for ontology %d: %w", name, ontologyID, err)
	}
	return nil
}

// Delete removes the named secret for the ontology.
func (s *SecretStore) Delete(ctx context.Context, ontologyID int64, name string) error {
	return s.bucket.Delete(ctx, secretKey(ontologyID, name))
}
