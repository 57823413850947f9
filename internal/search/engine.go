package search

// Collection names one indexed corpus table.
type Collection string

const (
	CollectionPosts       Collection = "posts"
	CollectionComments    Collection = "comments"
	CollectionAttachments Collection = "attachments"
)

// Collections lists every searchable collection in fan-out order.
var Collections = []Collection{CollectionPosts, CollectionComments, CollectionAttachments}

// Record is one ranked match from a collection. Title is set for posts,
// PostID for comments and attachments; Text carries whichever text column the
// collection has, possibly empty.
type Record struct {
	ID         int64
	PostID     int64
	Title      string
	Text       string
	Similarity float64
}
