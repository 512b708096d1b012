// Package quiz fetches and normalizes externally sourced quiz questions,
// with a bundled local fallback pool for fetch failure or timeout.
package quiz

import (
	"context"
	"log"
	"math/rand/v2"
)

// Question is the normalized shape every question is reduced to,
// regardless of provider-specific nesting: {id, text, options[],
// correctIndex, optionalImages}.
type Question struct {
	ID             string
	Text           string
	Options        []string
	CorrectIndex   int
	OptionalImages []string
}

// Service fetches and caches per-source question pools. It is safe to
// share across rooms: callers pass the sourceId the room was configured
// with, and the fetch result belongs to whichever room asked for it — the
// room, not the Service, owns the cached pool (spec.md 4.8, "cached on the
// room").
type Service struct {
	provider Provider
}

// Provider is the external question-provider collaborator. Its API shape
// is intentionally left as an interface, per spec.md's explicit non-goal
// ("the external question-provider API shape is specified only as an
// interface").
type Provider interface {
	FetchRaw(ctx context.Context, sourceID string) (map[string]any, error)
}

// NewService constructs a quiz Service around the given Provider.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// FetchQuestions fetches sourceID's question document, normalizes it, and
// falls back to the bundled local pool on any failure (fetch error,
// timeout, or a document that normalizes to an empty pool). Failures are
// logged and never propagated to clients, per spec.md 7.
func (s *Service) FetchQuestions(ctx context.Context, sourceID string) []Question {
	raw, err := s.provider.FetchRaw(ctx, sourceID)
	if err != nil {
		log.Printf("quiz: fetch failed for source=%s: %v; using fallback pool", sourceID, err)
		return BundledFallback()
	}

	questions := Normalize(raw)
	if len(questions) == 0 {
		log.Printf("quiz: source=%s normalized to zero valid questions; using fallback pool", sourceID)
		return BundledFallback()
	}
	return questions
}

// PickEntryQuestions implements the fill/pad/repeat algorithm from spec.md
// 4.8: prefer questions the player hasn't attempted yet; if too few remain
// unattempted, fill with repeats drawn uniformly from the pool. An empty
// pool is replaced by the bundled fallback pool; a non-empty pool that is
// too small is filled with repeats from itself, not with fallback questions.
func PickEntryQuestions(pool []Question, attempted map[string]struct{}, count int) []Question {
	if count <= 0 {
		return nil
	}

	source := pool
	if len(source) == 0 {
		source = BundledFallback()
	}

	unattempted := make([]Question, 0, len(source))
	for _, q := range source {
		if _, seen := attempted[q.ID]; !seen {
			unattempted = append(unattempted, q)
		}
	}
	rand.Shuffle(len(unattempted), func(i, j int) { unattempted[i], unattempted[j] = unattempted[j], unattempted[i] })

	picked := make([]Question, 0, count)
	picked = append(picked, unattempted...)
	if len(picked) > count {
		picked = picked[:count]
	}

	for len(picked) < count && len(source) > 0 {
		picked = append(picked, source[rand.IntN(len(source))])
	}

	if len(picked) < count {
		fallback := BundledFallback()
		for len(picked) < count && len(fallback) > 0 {
			picked = append(picked, fallback[rand.IntN(len(fallback))])
		}
	}

	return picked
}
