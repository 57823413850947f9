package search

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"

	"ratemate/internal/storage"
)

// Local ranks corpus records by cosine similarity against embeddings stored
// as BLOBs in a SQL database. Suited to self-hosted corpora small enough to
// scan per query.
type Local struct {
	db *sql.DB
}

// NewLocal wraps an open corpus database.
func NewLocal(db *sql.DB) *Local {
	return &Local{db: db}
}

var collectionQueries = map[Collection]string{
	CollectionPosts:       `SELECT id, 0, title, text, embedding FROM posts`,
	CollectionComments:    `SELECT id, post_id, '', body, embedding FROM comments`,
	CollectionAttachments: `SELECT id, post_id, '', extracted_text, embedding FROM attachments`,
}

func (l *Local) Search(ctx context.Context, collection Collection, vector []float64, threshold float64, limit int) ([]Record, error) {
	query, ok := collectionQueries[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection: %s", collection)
	}
	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec  Record
			blob []byte
		)
		if err := rows.Scan(&rec.ID, &rec.PostID, &rec.Title, &rec.Text, &blob); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", collection, err)
		}
		embedding, err := storage.DecodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("%s id %d: %w", collection, rec.ID, err)
		}
		rec.Similarity = cosine(vector, embedding)
		if rec.Similarity < threshold {
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Similarity > records[j].Similarity
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (l *Local) Count(ctx context.Context, collection Collection) (int64, error) {
	if _, ok := collectionQueries[collection]; !ok {
		return 0, fmt.Errorf("unknown collection: %s", collection)
	}
	var count int64
	err := l.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, collection)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return count, nil
}

func cosine(query []float64, embedding []float32) float64 {
	n := len(query)
	if len(embedding) < n {
		n = len(embedding)
	}
	var dot, qNorm, eNorm float64
	for i := 0; i < n; i++ {
		e := float64(embedding[i])
		dot += query[i] * e
		eNorm += e * e
	}
	for _, q := range query {
		qNorm += q * q
	}
	if qNorm == 0 || eNorm == 0 {
		return 0
	}
	return dot / (math.Sqrt(qNorm) * math.Sqrt(eNorm))
}
