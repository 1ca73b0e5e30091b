package ontology

import (
	"context"
	"errors"
	"fmt"

	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"
)

// ArtifactsBucket is the Object Store bucket holding revision artifacts:
// the raw source document of each revision and its modelled graph.
const ArtifactsBucket = "ONTOLOGY_ARTIFACTS"

// Artifact kinds addressed by (ontologyId, revisionId).
const (
	ArtifactSource = "source"
	ArtifactParsed = "parsed"
	ArtifactGraph  = "graph"
)

// ObjectStore is the subset of the JetStream Object Store API the artifact
// storage uses. jetstream.ObjectStore satisfies it.
type ObjectStore interface {
	PutBytes(ctx context.Context, name string, data []byte) (*jetstream.ObjectInfo, error)
	GetBytes(ctx context.Context, name string, opts ...jetstream.GetObjectOpt) ([]byte, error)
	Delete(ctx context.Context, name string) error
}

// ArtifactStorage persists immutable revision artifacts. Re-uploading the
// same (ontology, revision, kind) overwrites with identical content, which
// keeps stage retries idempotent.
type ArtifactStorage struct {
	store ObjectStore
}

// NewArtifactStorage creates the bucket if needed and returns the storage.
func NewArtifactStorage(ctx context.Context, nc *natsclient.Client) (*ArtifactStorage, error) {
	if nc == nil {
		return nil, fmt.Errorf("NATS client required")
	}
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("get jetstream: %w", err)
	}
	store, err := js.CreateOrUpdateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      ArtifactsBucket,
		Description: "Ontology revision artifacts",
	})
	if err != nil {
		return nil, fmt.Errorf("create/update object store: %w", err)
	}
	return NewArtifactStorageWithStore(store), nil
}

// NewArtifactStorageWithStore wraps an existing object store.
func NewArtifactStorageWithStore(store ObjectStore) *ArtifactStorage {
	return &ArtifactStorage{store: store}
}

// ArtifactName addresses one artifact of one revision.
func ArtifactName(ontologyID, revisionID int64, kind string) string {
	return fmt.Sprintf("%d/%d/%s", ontologyID, revisionID, kind)
}

// Upload stores an artifact.
func (a *ArtifactStorage) Upload(ctx context.Context, ontologyID, revisionID int64, kind string, data []byte) error {
	name := ArtifactName(ontologyID, revisionID, kind)
	if _, err := a.store.PutBytes(ctx, name, data); err != nil {
		return fmt.Errorf("put artifact %s: %w", name, err)
	}
	return nil
}

// Download fetches an artifact.
func (a *ArtifactStorage) Download(ctx context.Context, ontologyID, revisionID int64, kind string) ([]byte, error) {
	name := ArtifactName(ontologyID, revisionID, kind)
	data, err := a.store.GetBytes(ctx, name)
	if err != nil {
		if errors.Is(err, jetstream.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get artifact %s: %w", name, err)
	}
	return data, nil
}

// Delete removes an artifact.
func (a *ArtifactStorage) Delete(ctx context.Context, ontologyID, revisionID int64, kind string) error {
	return a.store.Delete(ctx, ArtifactName(ontologyID, revisionID, kind))
}
