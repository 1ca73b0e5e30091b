package ontology

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntry struct {
	key      string
	value    []byte
	revision uint64
}

func (e *fakeEntry) Bucket() string                  { return "fake" }
func (e *fakeEntry) Key() string                     { return e.key }
func (e *fakeEntry) Value() []byte                   { return e.value }
func (e *fakeEntry) Revision() uint64                { return e.revision }
func (e *fakeEntry) Created() time.Time              { return time.Time{} }
func (e *fakeEntry) Delta() uint64                   { return 0 }
func (e *fakeEntry) Operation() jetstream.KeyValueOp { return jetstream.KeyValuePut }

// fakeKV is an in-memory KeyValue with real compare-and-set semantics.
type fakeKV struct {
	mu       sync.Mutex
	data     map[string]*fakeEntry
	sequence uint64

	// updateHook, when set, runs before each Update to inject races.
	updateHook func()
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]*fakeEntry)}
}

func (kv *fakeKV) Get(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	entry, ok := kv.data[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return &fakeEntry{key: entry.key, value: entry.value, revision: entry.revision}, nil
}

func (kv *fakeKV) Put(_ context.Context, key string, value []byte) (uint64, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.sequence++
	kv.data[key] = &fakeEntry{key: key, value: value, revision: kv.sequence}
	return kv.sequence, nil
}

func (kv *fakeKV) Update(_ context.Context, key string, value []byte, revision uint64) (uint64, error) {
	if kv.updateHook != nil {
		kv.updateHook()
	}
	kv.mu.Lock()
	defer kv.mu.Unlock()
	entry, ok := kv.data[key]
	if !ok || entry.revision != revision {
		return 0, jetstream.ErrKeyExists
	}
	kv.sequence++
	kv.data[key] = &fakeEntry{key: key, value: value, revision: kv.sequence}
	return kv.sequence, nil
}

func (kv *fakeKV) Delete(_ context.Context, key string, _ ...jetstream.KVDeleteOpt) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.data, key)
	return nil
}

func (kv *fakeKV) Keys(_ context.Context, _ ...jetstream.WatchOpt) ([]string, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if len(kv.data) == 0 {
		return nil, jetstream.ErrNoKeysFound
	}
	keys := make([]string, 0, len(kv.data))
	for key := range kv.data {
		keys = append(keys, key)
	}
	return keys, nil
}

func TestRepositorySaveAndFind(t *testing.T) {
	repo := NewRepositoryWithBucket(newFakeKV(), nil)
	ctx := context.Background()

	record := &Ontology{ID: 1, RepoHost: "github.com", RepoOwner: "acme", RepoName: "ontologies"}
	require.NoError(t, repo.Save(ctx, record))
	assert.False(t, record.CreatedAt.IsZero())

	found, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "acme", found.RepoOwner)

	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, 1))
	_, err = repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryRequiresID(t *testing.T) {
	repo := NewRepositoryWithBucket(newFakeKV(), nil)
	assert.Error(t, repo.Save(context.Background(), &Ontology{}))
}

func TestRepositoryList(t *testing.T) {
	repo := NewRepositoryWithBucket(newFakeKV(), nil)
	ctx := context.Background()

	records, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, repo.Save(ctx, &Ontology{ID: 1}))
	require.NoError(t, repo.Save(ctx, &Ontology{ID: 2}))
	records, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestUpdateLatestRevisionMonotonic(t *testing.T) {
	repo := NewRepositoryWithBucket(newFakeKV(), nil)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &Ontology{ID: 1}))

	// Out-of-order deliveries: the pointer only ever moves forward.
	for _, tc := range []struct {
		incoming int64
		want     int64
	}{
		{2, 2},
		{1, 2},
		{5, 5},
		{3, 5},
		{5, 5},
	} {
		got, err := repo.UpdateLatestRevision(ctx, 1, tc.incoming)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "incoming revision %d", tc.incoming)
	}

	record, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), record.LatestRevisionNumber)
}

func TestUpdateLatestRevisionRetriesOnConflict(t *testing.T) {
	kv := newFakeKV()
	repo := NewRepositoryWithBucket(kv, nil)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &Ontology{ID: 1}))

	// First attempt loses the race to a concurrent writer; the retry wins.
	raced := false
	kv.updateHook = func() {
		if raced {
			return
		}
		raced = true
		record := &Ontology{ID: 1, LatestRevisionNumber: 2}
		require.NoError(t, repo.Save(ctx, record))
	}

	got, err := repo.UpdateLatestRevision(ctx, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)
}

func TestUpdateLatestRevisionUnknownOntology(t *testing.T) {
	repo := NewRepositoryWithBucket(newFakeKV(), nil)
	_, err := repo.UpdateLatestRevision(context.Background(), 42, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSecretStore(t *testing.T) {
	store := NewSecretStoreWithBucket(newFakeKV())
	ctx := context.Background()

	_, err := store.Get(ctx, 1, SecretAccessToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, 1, SecretAccessToken, "tok-123"))
	value, err := store.Get(ctx, 1, SecretAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", value)

	// Secrets are scoped per ontology.
	_, err = store.Get(ctx, 2, SecretAccessToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, 1, SecretAccessToken))
	_, err = store.Get(ctx, 1, SecretAccessToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWebhookEventRepository(t *testing.T) {
	repo := NewWebhookEventRepositoryWithBucket(newFakeKV(), nil)
	ctx := context.Background()

	_, err := repo.FindLatestByOntologyID(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	for _, revision := range []int64{3, 1, 2} {
		require.NoError(t, repo.Save(ctx, &WebhookEvent{
			OntologyID: 1,
			RevisionID: revision,
			ReceivedAt: time.Now().UTC(),
		}))
	}
	require.NoError(t, repo.Save(ctx, &WebhookEvent{OntologyID: 2, RevisionID: 9}))

	latest, err := repo.FindLatestByOntologyID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), latest.RevisionID)
}
