// Package ontology holds the registry of monitored ontologies and their
// pipeline state: ontology records, webhook events, per-ontology secrets
// and revision artifacts, all persisted in NATS JetStream KV and Object
// Store buckets.
package ontology

import "time"

// Ontology is the identity and provenance of one monitored ontology
// source. Credentials never live here; they belong to the SecretStore.
type Ontology struct {
	// ID uniquely identifies the ontology within the registry.
	ID int64 `json:"id"`

	// Source repository coordinates.
	RepoHost   string `json:"repoHost"`
	RepoOwner  string `json:"repoOwner"`
	RepoName   string `json:"repoName"`
	RepoPath   string `json:"repoPath"`
	RepoBranch string `json:"repoBranch"`

	// EditorProjectID is the optional external ontology editor project.
	EditorProjectID string `json:"editorProjectId,omitempty"`

	// LatestRevisionNumber is monotonically non-decreasing and only moves
	// forward after a revision's terminal stage succeeds.
	LatestRevisionNumber int64 `json:"latestRevisionNumber"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WebhookEvent records one received revision notification.
type WebhookEvent struct {
	OntologyID int64     `json:"ontologyId"`
	RevisionID int64     `json:"revisionId"`
	ReceivedAt time.Time `json:"receivedAt"`
}
