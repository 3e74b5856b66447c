package facts

import "encoding/json"

// ID is the run-wide identity assigned to a fact. Zero is never assigned.
type ID int64

// Fact is an immutable (predicate, key) pair with its assigned identity.
// Key is the canonical JSON payload; its shape is fixed per predicate (see
// keys.go).
type Fact struct {
	ID        ID              `json:"id"`
	Predicate Predicate       `json:"predicate"`
	Key       json.RawMessage `json:"key"`
}

// Ref is an identity reference embedded inside larger fact keys.
type Ref struct {
	ID ID `json:"id"`
}

// NewRef wraps an identity for embedding in a key.
func NewRef(id ID) Ref {
	return Ref{ID: id}
}
