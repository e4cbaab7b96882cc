// Package issues implements the issue registry: CRUD over community-reported
// issues plus the upvote/downvote counters. Content mutation is restricted to
// the issue's owner; voting is open to any authenticated caller.
package issues

// Issue represents a community-reported issue. UserID is a weak reference to
// the reporting user's id, bound at creation and never changed. The vote
// counters start at zero and only ever grow.
type Issue struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Image       string `json:"image"`
	Location    string `json:"location"`
	Upvotes     int32  `json:"upvotes"`
	Downvotes   int32  `json:"downvotes"`
}
