package models

// RetrievedContext is one passage pulled from the corpus for a query.
// Content is never nil; records without text map to an empty string.
type RetrievedContext struct {
	Source  string `json:"source"`
	Content string `json:"content"`
	PostID  int64  `json:"post_id,omitempty"`
}

// CorpusStats holds live record counts per collection, zero when a count
// query fails.
type CorpusStats struct {
	Posts       int64 `json:"posts"`
	Comments    int64 `json:"comments"`
	Attachments int64 `json:"attachments"`
}
