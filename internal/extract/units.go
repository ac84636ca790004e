package extract

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/graphein/graphein/internal/models"
	"github.com/graphein/graphein/internal/segment"
)

const (
	// enhanceBatchSize bounds concurrent enhancement calls.
	enhanceBatchSize = 5
	// titleOverlapThreshold marks two titles as duplicates when the
	// character overlap of the shorter one reaches it.
	titleOverlapThreshold = 0.8
)

// UnitExtractor turns document text into deduplicated knowledge unit drafts.
type UnitExtractor struct {
	client Client
	log    *logrus.Logger
}

// NewUnitExtractor creates a UnitExtractor.
func NewUnitExtractor(client Client, log *logrus.Logger) *UnitExtractor {
	return &UnitExtractor{client: client, log: log}
}

// extractedUnit is the shape the model returns per unit.
type extractedUnit struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	UnitType   string   `json:"unit_type"`
	Domain     string   `json:"domain"`
	EntityType string   `json:"entity_type"`
	Importance int      `json:"importance"`
	Tags       []string `json:"tags"`
	Aliases    []string `json:"aliases"`
}

// ExtractFromText chunks the text, extracts units per chunk, and returns the
// deduplicated drafts. A chunk whose model call or parse fails contributes
// no units; the rest of the document still goes through.
func (e *UnitExtractor) ExtractFromText(ctx context.Context, text string, source models.Source) ([]models.KnowledgeUnit, error) {
	chunks := segment.Chunks(text, segment.DefaultChunkSize)
	if len(chunks) == 0 {
		return nil, nil
	}

	units := make([]models.KnowledgeUnit, 0, len(chunks)*4)

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := e.client.Complete(ctx, unitSystemPrompt, unitUserPrompt(chunk))
		if err != nil {
			e.log.WithFields(logrus.Fields{
				"chunk": i,
				"error": err.Error(),
			}).Warn("unit extraction chunk failed")

			continue
		}

		var extracted []extractedUnit
		if err := unmarshalFlexible(raw, &extracted); err != nil {
			e.log.WithFields(logrus.Fields{
				"chunk": i,
				"error": err.Error(),
			}).Warn("unit extraction parse failed")

			continue
		}

		for _, ex := range extracted {
			if strings.TrimSpace(ex.Title) == "" {
				continue
			}

			u := models.KnowledgeUnit{
				Title:    ex.Title,
				Content:  ex.Content,
				UnitType: ex.UnitType,
				Aliases:  ex.Aliases,
				Tags:     ex.Tags,
				Source:   source,
				Knowledge: models.Knowledge{
					Domain:     ex.Domain,
					EntityType: ex.EntityType,
					Importance: ex.Importance,
				},
				Metrics:   models.Metrics{Confidence: 0.7},
				CreatedBy: "import",
			}
			u.Source.Position = i
			u.Normalize(time.Now())

			units = append(units, u)
		}
	}

	return Deduplicate(units, nil), nil
}

// Enhance refines drafts with a second model pass, running batches
// concurrently. A failed enhancement leaves the draft unchanged.
func (e *UnitExtractor) Enhance(ctx context.Context, units []models.KnowledgeUnit) []models.KnowledgeUnit {
	enhanced := make([]models.KnowledgeUnit, len(units))
	copy(enhanced, units)

	var mu sync.Mutex

	for start := 0; start < len(units); start += enhanceBatchSize {
		end := min(start+enhanceBatchSize, len(units))

		g, gctx := errgroup.WithContext(ctx)

		for i := start; i < end; i++ {
			g.Go(func() error {
				u, err := e.enhanceOne(gctx, units[i])
				if err != nil {
					e.log.WithFields(logrus.Fields{
						"title": units[i].Title,
						"error": err.Error(),
					}).Warn("unit enhancement failed")

					return nil
				}

				mu.Lock()
				enhanced[i] = u
				mu.Unlock()

				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return enhanced
		}
	}

	return enhanced
}

// enhanceOne runs the refinement call for one unit.
func (e *UnitExtractor) enhanceOne(ctx context.Context, u models.KnowledgeUnit) (models.KnowledgeUnit, error) {
	raw, err := e.client.Complete(ctx, enhanceSystemPrompt, enhanceUserPrompt(u))
	if err != nil {
		return u, err
	}

	var ex extractedUnit
	if err := unmarshalFlexible(raw, &ex); err != nil {
		return u, err
	}

	if strings.TrimSpace(ex.Title) != "" {
		u.Title = ex.Title
		u.CanonicalName = ""
	}

	if ex.UnitType != "" {
		u.UnitType = ex.UnitType
	}

	if ex.Domain != "" {
		u.Knowledge.Domain = ex.Domain
	}

	if ex.EntityType != "" {
		u.Knowledge.EntityType = ex.EntityType
	}

	if ex.Importance >= 1 && ex.Importance <= 5 {
		u.Knowledge.Importance = ex.Importance
	}

	u.Tags = mergeStrings(u.Tags, ex.Tags)
	u.Aliases = mergeStrings(u.Aliases, ex.Aliases)
	u.Normalize(time.Now())

	return u, nil
}

// mergeStrings unions two string lists, preserving order of first sight.
func mergeStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))

	for _, s := range append(a, b...) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}

		seen[s] = true
		out = append(out, s)
	}

	return out
}

// Deduplicate collapses units whose titles match, either by substring
// containment or by character overlap of the shorter title. The unit with
// the longer content survives; a survivor keeps an already-assigned ID from
// either party, and the superseded title joins the survivor's aliases.
// Units in existing are considered already stored and always win identity.
func Deduplicate(units, existing []models.KnowledgeUnit) []models.KnowledgeUnit {
	kept := make([]models.KnowledgeUnit, 0, len(units)+len(existing))
	kept = append(kept, existing...)
	existingCount := len(existing)

	for _, u := range units {
		matched := -1

		for i := range kept {
			if titlesMatch(kept[i].Title, u.Title) {
				matched = i
				break
			}
		}

		if matched < 0 {
			kept = append(kept, u)
			continue
		}

		winner := mergeDuplicate(kept[matched], u, matched < existingCount)
		kept[matched] = winner
	}

	return kept
}

// mergeDuplicate folds dup into base. When base is already stored its ID and
// title identity are preserved regardless of content length. The survivor is
// flagged as having absorbed a duplicate.
func mergeDuplicate(base, dup models.KnowledgeUnit, baseStored bool) models.KnowledgeUnit {
	winner, loser := base, dup

	if !baseStored && len([]rune(dup.Content)) > len([]rune(base.Content)) {
		winner, loser = dup, base

		if base.ID != "" {
			winner.ID = base.ID
			winner.CanonicalName = base.CanonicalName
		}
	}

	if !strings.EqualFold(winner.Title, loser.Title) {
		winner.Aliases = mergeStrings(winner.Aliases, []string{loser.Title})
	}

	winner.Tags = mergeStrings(winner.Tags, loser.Tags)
	winner.Aliases = mergeStrings(winner.Aliases, loser.Aliases)
	winner.Status.IsDuplicate = true

	return winner
}

// titlesMatch reports whether two titles refer to the same unit.
func titlesMatch(a, b string) bool {
	al := strings.ToLower(strings.TrimSpace(a))
	bl := strings.ToLower(strings.TrimSpace(b))

	if al == "" || bl == "" {
		return false
	}

	if al == bl {
		return true
	}

	if strings.Contains(al, bl) || strings.Contains(bl, al) {
		return true
	}

	return charOverlap(al, bl) >= titleOverlapThreshold
}

// charOverlap is the share of the shorter title's characters, repeats
// included, that appear anywhere in the longer title.
func charOverlap(a, b string) float64 {
	shorter, longer := []rune(a), []rune(b)
	if len(longer) < len(shorter) {
		shorter, longer = longer, shorter
	}

	if len(shorter) == 0 {
		return 0
	}

	longerSet := make(map[rune]bool, len(longer))
	for _, r := range longer {
		longerSet[r] = true
	}

	matched := 0

	for _, r := range shorter {
		if longerSet[r] {
			matched++
		}
	}

	return float64(matched) / float64(len(shorter))
}
