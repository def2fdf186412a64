// Package content writes mirror documents to the Sanity content store.
// Writes are grouped into a Transaction: an ordered list of mutations that
// the store applies atomically on Commit.
package content

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrEmptyTransaction is returned when committing a transaction with no
// mutations.
var ErrEmptyTransaction = errors.New("content: transaction has no mutations")

// Document is a content-store document. It must carry "_id" and "_type".
type Document map[string]interface{}

func (d Document) ID() string {
	id, _ := d["_id"].(string)
	return id
}

// Patch overwrites the listed top-level fields of an existing document.
type Patch struct {
	ID  string                 `json:"id"`
	Set map[string]interface{} `json:"set"`
}

// Mutation holds exactly one operation.
type Mutation struct {
	CreateIfNotExists Document `json:"createIfNotExists,omitempty"`
	Patch             *Patch   `json:"patch,omitempty"`
}

// MutationResult reports what the store did for one mutation.
type MutationResult struct {
	ID        string `json:"id"`
	Operation string `json:"operation"`
}

type CommitResult struct {
	TransactionID string           `json:"transactionId"`
	Results       []MutationResult `json:"results"`
}

// Committer applies a batch of mutations atomically.
type Committer interface {
	Commit(ctx context.Context, transactionID string, mutations []Mutation) (*CommitResult, error)
}

type Transaction struct {
	id        string
	committer Committer
	mutations []Mutation
}

// NewTransaction starts an empty transaction with a fresh id.
func NewTransaction(committer Committer) *Transaction {
	return &Transaction{id: uuid.NewString(), committer: committer}
}

func (t *Transaction) ID() string { return t.id }

// CreateIfNotExists creates doc unless a document with its id exists.
func (t *Transaction) CreateIfNotExists(doc Document) *Transaction {
	t.mutations = append(t.mutations, Mutation{CreateIfNotExists: copyFields(doc)})
	return t
}

// PatchSet overwrites fields on document id. "_id" is never patched.
func (t *Transaction) PatchSet(id string, fields map[string]interface{}) *Transaction {
	set := copyFields(fields)
	delete(set, "_id")
	t.mutations = append(t.mutations, Mutation{Patch: &Patch{ID: id, Set: set}})
	return t
}

// Mutations returns the queued mutations in order.
func (t *Transaction) Mutations() []Mutation {
	out := make([]Mutation, len(t.mutations))
	copy(out, t.mutations)
	return out
}

func (t *Transaction) Commit(ctx context.Context) (*CommitResult, error) {
	if len(t.mutations) == 0 {
		return nil, ErrEmptyTransaction
	}
	return t.committer.Commit(ctx, t.id, t.mutations)
}

func copyFields(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
