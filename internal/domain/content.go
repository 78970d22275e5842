package domain

import "time"

// ContentEntry is one row of the published content index. The canonical
// order is descending (InsertedAt, Slug); the slug tie-break guarantees a
// total order even when two entries share a timestamp.
type ContentEntry struct {
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Tags       []string  `json:"tags,omitempty"`
	InsertedAt time.Time `json:"inserted_at"`
}
