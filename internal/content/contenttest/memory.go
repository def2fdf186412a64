// Package contenttest provides an in-memory content store for tests.
package contenttest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/imrishuroy/ordering-bff/internal/content"
)

// MemoryStore applies mutation batches atomically to an in-memory document
// set. Values are normalised through JSON, the same way the real store
// would see them.
type MemoryStore struct {
	mu        sync.Mutex
	documents map[string]content.Document
	commits   [][]content.Mutation

	// FailCommit, when set, is returned by the next Commit and cleared.
	FailCommit error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{documents: map[string]content.Document{}}
}

func (m *MemoryStore) Commit(ctx context.Context, transactionID string, mutations []content.Mutation) (*content.CommitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.FailCommit; err != nil {
		m.FailCommit = nil
		return nil, err
	}

	// work on a copy so a failing mutation leaves the store untouched
	next := make(map[string]content.Document, len(m.documents))
	for id, doc := range m.documents {
		next[id] = doc
	}

	result := &content.CommitResult{TransactionID: transactionID}
	for i, mut := range mutations {
		switch {
		case mut.CreateIfNotExists != nil:
			doc, err := normalise(mut.CreateIfNotExists)
			if err != nil {
				return nil, err
			}
			id := doc.ID()
			if id == "" {
				return nil, fmt.Errorf("mutation %d: createIfNotExists without _id", i)
			}
			op := "none"
			if _, exists := next[id]; !exists {
				next[id] = doc
				op = "create"
			}
			result.Results = append(result.Results, content.MutationResult{ID: id, Operation: op})
		case mut.Patch != nil:
			existing, ok := next[mut.Patch.ID]
			if !ok {
				return nil, fmt.Errorf("mutation %d: patch on missing document %q", i, mut.Patch.ID)
			}
			set, err := normalise(mut.Patch.Set)
			if err != nil {
				return nil, err
			}
			patched := make(content.Document, len(existing)+len(set))
			for k, v := range existing {
				patched[k] = v
			}
			for k, v := range set {
				patched[k] = v
			}
			next[mut.Patch.ID] = patched
			result.Results = append(result.Results, content.MutationResult{ID: mut.Patch.ID, Operation: "update"})
		default:
			return nil, fmt.Errorf("mutation %d: empty mutation", i)
		}
	}

	m.documents = next
	m.commits = append(m.commits, append([]content.Mutation(nil), mutations...))
	return result, nil
}

// Document returns a copy of the stored document.
func (m *MemoryStore) Document(id string) (content.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, false
	}
	out := make(content.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, true
}

// Commits returns every successfully applied batch in order.
func (m *MemoryStore) Commits() [][]content.Mutation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]content.Mutation(nil), m.commits...)
}

func normalise(fields map[string]interface{}) (content.Document, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc content.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
