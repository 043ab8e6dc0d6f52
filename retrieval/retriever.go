// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/servitor/ai"
	"github.com/poiesic/servitor/core"
	"github.com/poiesic/servitor/storage"
)

const augmentPreamble = "Answer using the following information:"

// Retriever embeds a question and finds the most relevant stored segments.
type Retriever struct {
	embedder   ai.Embedder
	store      storage.VectorStore
	maxResults int
	minScore   float32
	filter     map[string]string
	logger     *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithMaxResults bounds the number of retrieved segments.
func WithMaxResults(n int) Option {
	return func(r *Retriever) {
		r.maxResults = n
	}
}

// WithMinScore sets the minimum relevance score in [0,1].
func WithMinScore(score float32) Option {
	return func(r *Retriever) {
		r.minScore = score
	}
}

// WithFilter restricts retrieval to segments whose metadata contains
// every given key/value pair.
func WithFilter(filter map[string]string) Option {
	return func(r *Retriever) {
		r.filter = filter
	}
}

// NewRetriever creates a retriever over the given embedder and store.
// Defaults: 5 results, minimum relevance 0.6.
func NewRetriever(embedder ai.Embedder, store storage.VectorStore, opts ...Option) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: retriever requires an embedder", core.ErrConfig)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: retriever requires a vector store", core.ErrConfig)
	}

	r := &Retriever{
		embedder:   embedder,
		store:      store,
		maxResults: 5,
		minScore:   0.6,
		logger:     slog.Default().With("component", "retriever"),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.maxResults < 1 {
		return nil, fmt.Errorf("%w: retriever maxResults must be positive", core.ErrConfig)
	}
	if r.minScore < 0 || r.minScore > 1 {
		return nil, fmt.Errorf("%w: retriever minScore must be in [0,1]", core.ErrConfig)
	}
	return r, nil
}

// Retrieve returns the segments most relevant to the question, ranked by
// relevance score descending.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]core.SegmentMatch, error) {
	vector, err := r.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, err
	}

	matches, err := r.store.FindRelevant(ctx, vector, r.maxResults, r.minScore, r.filter)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("retrieved segments", "question_len", len(question), "matches", len(matches))
	return matches, nil
}

// Augment retrieves segments for the question and appends them to the
// message text. When nothing relevant is found, the question is returned
// unchanged with no sources.
func (r *Retriever) Augment(ctx context.Context, question string) (string, []core.SegmentMatch, error) {
	matches, err := r.Retrieve(ctx, question)
	if err != nil {
		return "", nil, err
	}
	if len(matches) == 0 {
		return question, nil, nil
	}

	var sb strings.Builder
	sb.WriteString(question)
	sb.WriteString("\n\n")
	sb.WriteString(augmentPreamble)
	for _, match := range matches {
		sb.WriteString("\n")
		sb.WriteString(match.Segment.Text)
	}
	return sb.String(), matches, nil
}
