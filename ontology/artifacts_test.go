package ontology

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The storage must accept the real JetStream object store as-is.
var _ ObjectStore = (jetstream.ObjectStore)(nil)

type fakeObjectStore struct {
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) PutBytes(_ context.Context, name string, data []byte) (*jetstream.ObjectInfo, error) {
	f.objects[name] = append([]byte(nil), data...)
	return &jetstream.ObjectInfo{}, nil
}

func (f *fakeObjectStore) GetBytes(_ context.Context, name string, _ ...jetstream.GetObjectOpt) ([]byte, error) {
	data, ok := f.objects[name]
	if !ok {
		return nil, jetstream.ErrObjectNotFound
	}
	return data, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, name string) error {
	if _, ok := f.objects[name]; !ok {
		return jetstream.ErrObjectNotFound
	}
	delete(f.objects, name)
	return nil
}

func TestArtifactUploadDownload(t *testing.T) {
	ctx := context.Background()
	storage := NewArtifactStorageWithStore(newFakeObjectStore())

	document := []byte(`<rdf:RDF/>`)
	require.NoError(t, storage.Upload(ctx, 1, 2, ArtifactSource, document))

	got, err := storage.Download(ctx, 1, 2, ArtifactSource)
	require.NoError(t, err)
	assert.Equal(t, document, got)

	// Re-upload overwrites, keeping stage retries idempotent.
	require.NoError(t, storage.Upload(ctx, 1, 2, ArtifactSource, document))
	got, err = storage.Download(ctx, 1, 2, ArtifactSource)
	require.NoError(t, err)
	assert.Equal(t, document, got)
}

func TestArtifactDownloadMissing(t *testing.T) {
	ctx := context.Background()
	storage := NewArtifactStorageWithStore(newFakeObjectStore())

	_, err := storage.Download(ctx, 1, 1, ArtifactGraph)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "3/7/source", ArtifactName(3, 7, ArtifactSource))
	assert.Equal(t, "3/7/graph", ArtifactName(3, 7, ArtifactGraph))
}
