// Package model holds the persisted data structures. No business logic here.
package model

import "time"

// Record statuses. Only their queryability matters; new records are published.
const (
	StatusPublished = "publish"
	StatusDraft     = "draft"
)

// Record is the persisted unit behind one "file".
// Title is the name component of the filename and TypeTag the lower-cased
// type component. Content is opaque to the store.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	TypeTag   string    `json:"type_tag"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
