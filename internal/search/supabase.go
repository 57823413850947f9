package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Supabase queries the managed vector search engine through PostgREST:
// one match_*_embeddings RPC per collection plus exact-count head requests.
type Supabase struct {
	baseURL string
	anonKey string
	client  *http.Client
}

// NewSupabase builds the REST client. URL and key must both be present.
func NewSupabase(url, anonKey string) (*Supabase, error) {
	if url == "" || anonKey == "" {
		return nil, errors.New("supabase url and anon key are required")
	}
	return &Supabase{
		baseURL: strings.TrimRight(url, "/"),
		anonKey: anonKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

var rpcNames = map[Collection]string{
	CollectionPosts:       "match_posts_embeddings",
	CollectionComments:    "match_comments_embeddings",
	CollectionAttachments: "match_attachments_embeddings",
}

type matchRow struct {
	ID            int64   `json:"id"`
	PostID        int64   `json:"post_id"`
	Title         string  `json:"title"`
	Text          string  `json:"text"`
	Body          string  `json:"body"`
	ExtractedText string  `json:"extracted_text"`
	Similarity    float64 `json:"similarity"`
}

// Search calls the collection's match RPC and returns ranked records in the
// engine's own order.
func (s *Supabase) Search(ctx context.Context, collection Collection, vector []float64, threshold float64, limit int) ([]Record, error) {
	rpc, ok := rpcNames[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection: %s", collection)
	}
	payload, err := json.Marshal(map[string]any{
		"query_embedding": vector,
		"match_threshold": threshold,
		"match_count":     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("encode rpc params: %w", err)
	}
	url := fmt.Sprintf("%s/rest/v1/rpc/%s", s.baseURL, rpc)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc %s: %w", rpc, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rpc %s: %s: %s", rpc, resp.Status, body)
	}

	var rows []matchRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rpc %s: %w", rpc, err)
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := Record{ID: row.ID, PostID: row.PostID, Title: row.Title, Similarity: row.Similarity}
		switch collection {
		case CollectionPosts:
			rec.Text = row.Text
		case CollectionComments:
			rec.Text = row.Body
		case CollectionAttachments:
			rec.Text = row.ExtractedText
		}
		records = append(records, rec)
	}
	return records, nil
}

// Count issues an exact-count head request and parses the Content-Range total.
func (s *Supabase) Count(ctx context.Context, collection Collection) (int64, error) {
	url := fmt.Sprintf("%s/rest/v1/%s?select=id", s.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("count %s: %s", collection, resp.Status)
	}
	// Content-Range arrives as "0-24/3573" or "*/0".
	cr := resp.Header.Get("Content-Range")
	idx := strings.LastIndex(cr, "/")
	if idx < 0 {
		return 0, fmt.Errorf("count %s: missing content-range", collection)
	}
	total, err := strconv.ParseInt(cr[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("count %s: parse %q: %w", collection, cr, err)
	}
	return total, nil
}

func (s *Supabase) authorize(req *http.Request) {
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+s.anonKey)
}
