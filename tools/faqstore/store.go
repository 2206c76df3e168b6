// Package faqstore provides the FAQ vector lookup backing the QnA
// specialist. Entries live in an embedded chromem collection; queries
// return the most similar question/answer pairs.
package faqstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// Entry is one FAQ question/answer pair.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Result is one retrieved pair with its similarity to the query.
type Result struct {
	Question  string
	Answer    string
	Relevance float32
}

// EmbeddingFunc matches chromem's embedding hook.
type EmbeddingFunc func(ctx context.Context, text string) ([]float32, error)

// Store wraps one chromem collection of FAQ entries.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	logger     *zap.Logger
}

// New opens the FAQ store. An empty persistPath keeps the collection
// in memory only.
func New(persistPath, collectionName string, embed EmbeddingFunc, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collectionName == "" {
		collectionName = "school_faq"
	}

	var db *chromem.DB
	var err error
	if persistPath == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(persistPath, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open faq store at %s: %w", persistPath, err)
		}
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, chromem.EmbeddingFunc(embed))
	if err != nil {
		return nil, fmt.Errorf("failed to open faq collection %s: %w", collectionName, err)
	}

	return &Store{db: db, collection: collection, logger: logger}, nil
}

// Seed indexes the given entries. The question text is what gets
// embedded; the answer rides along as metadata.
func (s *Store) Seed(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(entries))
	for i, e := range entries {
		docs[i] = chromem.Document{
			ID:      fmt.Sprintf("faq_%d", i),
			Content: e.Question,
			Metadata: map[string]string{
				"question": e.Question,
				"answer":   e.Answer,
			},
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, 2); err != nil {
		return fmt.Errorf("failed to index faq entries: %w", err)
	}

	s.logger.Info("faq store seeded", zap.Int("entries", len(entries)))
	return nil
}

// Count returns the number of indexed entries.
func (s *Store) Count() int {
	return s.collection.Count()
}

// Search returns the k most similar entries. An empty collection or no
// match yields an empty result, not an error.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Result, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	// chromem requires nResults <= doc count
	if k > count {
		k = count
	}
	if k <= 0 {
		k = 1
	}

	matches, err := s.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("faq query failed: %w", err)
	}

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Question:  m.Metadata["question"],
			Answer:    m.Metadata["answer"],
			Relevance: m.Similarity,
		}
	}
	return results, nil
}

// LoadSeedFile reads FAQ entries from a two-column CSV file
// (question, answer). A header row starting with "question" is
// skipped.
func LoadSeedFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var entries []Entry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
		}
		if len(record) < 2 {
			continue
		}
		if len(entries) == 0 && record[0] == "question" {
			continue
		}
		entries = append(entries, Entry{Question: record[0], Answer: record[1]})
	}
	return entries, nil
}
