package extract

import (
	"context"
	"math/rand"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/graphein/graphein/internal/models"
)

const (
	// DefaultMaxPairs caps how many unit pairs go to the model per import.
	DefaultMaxPairs = 100
	// relationBatchSize bounds concurrent relation calls.
	relationBatchSize = 10
)

// Pair is a candidate unit pair for relation extraction.
type Pair struct {
	A models.KnowledgeUnit
	B models.KnowledgeUnit
}

// RelationExtractor finds semantic triples between knowledge units.
type RelationExtractor struct {
	client Client
	log    *logrus.Logger

	// rng shuffles oversized candidate sets. Overridable in tests.
	rng *rand.Rand
}

// NewRelationExtractor creates a RelationExtractor.
func NewRelationExtractor(client Client, log *logrus.Logger) *RelationExtractor {
	return &RelationExtractor{
		client: client,
		log:    log,
		rng:    rand.New(rand.NewSource(rand.Int63())),
	}
}

// GeneratePairs selects candidate pairs among units. Pairs that share a tag,
// mention each other's title, or live in the same domain are preferred; any
// remaining pair qualifies through the fallback rule, so a small unit set
// yields every pair. The result is capped at maxPairs by random sampling.
func (e *RelationExtractor) GeneratePairs(units []models.KnowledgeUnit, maxPairs int) []Pair {
	if maxPairs <= 0 {
		maxPairs = DefaultMaxPairs
	}

	pairs := make([]Pair, 0, len(units)*2)

	for i := 0; i < len(units); i++ {
		for j := i + 1; j < len(units); j++ {
			if pairRelated(units[i], units[j]) {
				pairs = append(pairs, Pair{A: units[i], B: units[j]})
			}
		}
	}

	if len(pairs) > maxPairs {
		e.rng.Shuffle(len(pairs), func(i, j int) {
			pairs[i], pairs[j] = pairs[j], pairs[i]
		})
		pairs = pairs[:maxPairs]
	}

	return pairs
}

// pairRelated applies the candidate heuristics in order. The final rule
// accepts every pair; the earlier checks exist to document intent and to
// keep scoring hooks in one place.
func pairRelated(a, b models.KnowledgeUnit) bool {
	for _, ta := range a.Tags {
		for _, tb := range b.Tags {
			if strings.EqualFold(ta, tb) {
				return true
			}
		}
	}

	if titleMentioned(a.Title, b.Content) || titleMentioned(b.Title, a.Content) {
		return true
	}

	if a.Knowledge.Domain != "" && strings.EqualFold(a.Knowledge.Domain, b.Knowledge.Domain) {
		return true
	}

	return true
}

// titleMentioned reports whether title appears in content.
func titleMentioned(title, content string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}

	return strings.Contains(strings.ToLower(content), strings.ToLower(title))
}

// extractedRelation is the shape the model returns per relation.
type extractedRelation struct {
	Subject       string  `json:"subject"`
	Predicate     string  `json:"predicate"`
	Confidence    float64 `json:"confidence"`
	Bidirectional bool    `json:"bidirectional"`
	Context       string  `json:"context"`
}

// ExtractRelations runs relation extraction over the candidate pairs in
// concurrent batches and returns deduplicated triples referencing the units
// by ID. A pair whose call or parse fails contributes no relations.
func (e *RelationExtractor) ExtractRelations(ctx context.Context, units []models.KnowledgeUnit, maxPairs int) ([]models.SemanticTriple, error) {
	pairs := e.GeneratePairs(units, maxPairs)
	if len(pairs) == 0 {
		return nil, nil
	}

	var triples []models.SemanticTriple

	seen := make(map[string]bool)

	appendTriple := func(t models.SemanticTriple) {
		key := t.SubjectID + "|" + t.Predicate + "|" + t.ObjectID
		if seen[key] || t.SubjectID == t.ObjectID {
			return
		}

		seen[key] = true
		triples = append(triples, t)
	}

	for start := 0; start < len(pairs); start += relationBatchSize {
		end := min(start+relationBatchSize, len(pairs))

		g, gctx := errgroup.WithContext(ctx)

		// Results land in pair-submission order so the first-wins dedupe
		// below is deterministic regardless of goroutine scheduling.
		batch := make([][]models.SemanticTriple, end-start)

		for i := start; i < end; i++ {
			g.Go(func() error {
				found, err := e.extractPair(gctx, pairs[i])
				if err != nil {
					e.log.WithFields(logrus.Fields{
						"subject": pairs[i].A.Title,
						"object":  pairs[i].B.Title,
						"error":   err.Error(),
					}).Warn("relation extraction pair failed")

					return nil
				}

				batch[i-start] = found

				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return triples, err
		}

		for _, found := range batch {
			for _, t := range found {
				appendTriple(t)
			}
		}

		if err := ctx.Err(); err != nil {
			return triples, err
		}
	}

	return triples, nil
}

// extractPair runs one model call for a pair and maps the reply onto
// triples. Bidirectional relations expand to a reverse triple as well.
func (e *RelationExtractor) extractPair(ctx context.Context, p Pair) ([]models.SemanticTriple, error) {
	raw, err := e.client.Complete(ctx, relationSystemPrompt, relationUserPrompt(p.A, p.B))
	if err != nil {
		return nil, err
	}

	var relations []extractedRelation
	if err := unmarshalFlexible(raw, &relations); err != nil {
		return nil, err
	}

	triples := make([]models.SemanticTriple, 0, len(relations))

	for _, rel := range relations {
		predicate := strings.TrimSpace(rel.Predicate)
		if predicate == "" {
			continue
		}

		subjectID, objectID := p.A.ID, p.B.ID
		if strings.EqualFold(rel.Subject, "b") {
			subjectID, objectID = objectID, subjectID
		}

		if subjectID == "" || objectID == "" {
			continue
		}

		confidence := rel.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = 0.8
		}

		t := models.SemanticTriple{
			SubjectID:     subjectID,
			Predicate:     predicate,
			ObjectID:      objectID,
			RelationType:  models.RelationTypeFromPredicate(predicate),
			Confidence:    confidence,
			Bidirectional: rel.Bidirectional,
			Context:       rel.Context,
		}
		triples = append(triples, t)

		if rel.Bidirectional {
			reverse := t
			reverse.SubjectID, reverse.ObjectID = t.ObjectID, t.SubjectID
			triples = append(triples, reverse)
		}
	}

	return triples, nil
}
