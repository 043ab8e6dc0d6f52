package badger

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/servitor/core"
	"github.com/poiesic/servitor/storage"
)

// VectorStore implements storage.VectorStore for BadgerDB.
// Relevance queries scan all segments and rank by cosine similarity,
// normalized to a [0,1] relevance score.
type VectorStore struct {
	backend *Backend
}

var _ storage.VectorStore = (*VectorStore)(nil)

// NewVectorStore creates a new VectorStore.
func NewVectorStore(backend *Backend) *VectorStore {
	return &VectorStore{backend: backend}
}

// Add stores one or more segments. Segments with Id=0 get a
// content-derived ID; InsertedAt is set if zero.
func (s *VectorStore) Add(ctx context.Context, segments ...*core.Segment) ([]*core.Segment, error) {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, segment := range segments {
			if segment.Id == 0 {
				segment.Id = core.IDFromContent(segment.Text)
			}
			if segment.InsertedAt.IsZero() {
				segment.InsertedAt = time.Now().UTC()
			}

			key := makeSegmentKey(segment.Id)
			if err := tx.Set(key, storage.MarshalSegment(segment)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return segments, err
}

// FindRelevant returns segments relevant to the query vector, ordered by
// relevance score descending, up to maxResults. minScore is a relevance
// threshold in [0,1]; a non-empty filter requires metadata equality on
// every given key/value pair.
func (s *VectorStore) FindRelevant(ctx context.Context, vector []float32, maxResults int, minScore float32, filter map[string]string) ([]core.SegmentMatch, error) {
	if maxResults <= 0 {
		return nil, fmt.Errorf("%w: maxResults must be positive", storage.ErrInvalidQuery)
	}
	if minScore < 0 || minScore > 1 {
		return nil, fmt.Errorf("%w: minScore must be in [0,1]", storage.ErrInvalidQuery)
	}

	var matches []core.SegmentMatch
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(segmentPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var segment *core.Segment
			err := iter.Item().Value(func(val []byte) error {
				var err error
				segment, err = storage.UnmarshalSegment(val)
				return err
			})
			if err != nil {
				return err
			}
			if segment == nil || len(segment.Vector) == 0 {
				continue
			}
			if !matchesFilter(segment.Metadata, filter) {
				continue
			}

			score := core.RelevanceFromCosine(cosineSimilarity(vector, segment.Vector))
			if score >= minScore {
				matches = append(matches, core.SegmentMatch{
					Segment: segment,
					Score:   score,
				})
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by relevance descending
	slices.SortFunc(matches, func(a, b core.SegmentMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches, nil
}

// Close is a no-op; the backend owns the database handle.
func (s *VectorStore) Close() error {
	return nil
}

// matchesFilter reports whether metadata contains every filter pair.
func matchesFilter(metadata, filter map[string]string) bool {
	for k, want := range filter {
		if metadata[k] != want {
			return false
		}
	}
	return true
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors yield 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
