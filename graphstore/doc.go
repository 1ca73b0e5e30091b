// Package graphstore defines the backend-neutral property graph store
// contract. One Store interface covers an embedded in-process store and
// remote stores reached over Bolt or a Gremlin Server websocket; callers
// branch on the store's capability vector, never on its concrete type.
package graphstore
