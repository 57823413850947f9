package retrieval

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"ratemate/internal/models"
	"ratemate/internal/search"
)

// Engine is the similarity-search surface the assembler consumes.
type Engine interface {
	Search(ctx context.Context, collection search.Collection, vector []float64, threshold float64, limit int) ([]search.Record, error)
	Count(ctx context.Context, collection search.Collection) (int64, error)
}

// Assembler fans a query vector out over every corpus collection and merges
// the ranked matches into a uniform context shape.
type Assembler struct {
	engine    Engine
	threshold float64
	limit     int
	maxLen    int
}

// NewAssembler builds an assembler with per-collection limit and the combined
// context character budget.
func NewAssembler(engine Engine, threshold float64, limit, maxContextLen int) *Assembler {
	return &Assembler{engine: engine, threshold: threshold, limit: limit, maxLen: maxContextLen}
}

// Assemble searches all collections concurrently. A failing collection
// degrades to an empty result set; partial results are expected. Collection
// order and each engine's own ranking are preserved.
func (a *Assembler) Assemble(ctx context.Context, vector []float64) []models.RetrievedContext {
	if a.engine == nil || len(vector) == 0 {
		return nil
	}
	perCollection := make([][]models.RetrievedContext, len(search.Collections))
	var wg sync.WaitGroup
	for i, collection := range search.Collections {
		wg.Add(1)
		go func(slot int, collection search.Collection) {
			defer wg.Done()
			records, err := a.engine.Search(ctx, collection, vector, a.threshold, a.limit)
			if err != nil {
				log.Warn().Err(err).Str("collection", string(collection)).Msg("collection search degraded to empty")
				return
			}
			perCollection[slot] = mapRecords(collection, records)
		}(i, collection)
	}
	wg.Wait()

	var merged []models.RetrievedContext
	for _, items := range perCollection {
		merged = append(merged, items...)
	}
	return merged
}

// Stats gathers live record counts per collection, concurrently, defaulting
// to zero when a count query fails.
func (a *Assembler) Stats(ctx context.Context) models.CorpusStats {
	var stats models.CorpusStats
	if a.engine == nil {
		return stats
	}
	targets := map[search.Collection]*int64{
		search.CollectionPosts:       &stats.Posts,
		search.CollectionComments:    &stats.Comments,
		search.CollectionAttachments: &stats.Attachments,
	}
	var wg sync.WaitGroup
	for collection, target := range targets {
		wg.Add(1)
		go func(collection search.Collection, target *int64) {
			defer wg.Done()
			count, err := a.engine.Count(ctx, collection)
			if err != nil {
				log.Warn().Err(err).Str("collection", string(collection)).Msg("count query defaulted to zero")
				return
			}
			*target = count
		}(collection, target)
	}
	wg.Wait()
	return stats
}

// BuildContextBlock serializes retrieved items into the prompt's context
// block, hard-truncated to the character budget with an ellipsis marker.
// The cut is not word-aware.
func (a *Assembler) BuildContextBlock(items []models.RetrievedContext) string {
	if len(items) == 0 {
		return ""
	}
	entries := make([]string, 0, len(items))
	for _, item := range items {
		entries = append(entries, fmt.Sprintf("SOURCE: %s\n%s", item.Source, item.Content))
	}
	block := strings.Join(entries, "\n\n")
	if a.maxLen > 0 && len(block) > a.maxLen {
		block = block[:a.maxLen] + "..."
	}
	return block
}

func mapRecords(collection search.Collection, records []search.Record) []models.RetrievedContext {
	items := make([]models.RetrievedContext, 0, len(records))
	for _, rec := range records {
		switch collection {
		case search.CollectionPosts:
			title := rec.Title
			if title == "" {
				title = "Untitled"
			}
			items = append(items, models.RetrievedContext{
				Source:  fmt.Sprintf("Reddit Post: %s", title),
				Content: rec.Text,
				PostID:  rec.ID,
			})
		case search.CollectionComments:
			items = append(items, models.RetrievedContext{
				Source:  fmt.Sprintf("Comment on Post %d", rec.PostID),
				Content: rec.Text,
				PostID:  rec.PostID,
			})
		case search.CollectionAttachments:
			items = append(items, models.RetrievedContext{
				Source:  fmt.Sprintf("Document from Post %d", rec.PostID),
				Content: rec.Text,
				PostID:  rec.PostID,
			})
		}
	}
	return items
}
