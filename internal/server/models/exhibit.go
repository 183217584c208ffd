// Package models defines server-side data models persisted in the database.
package models

import "time"

// Exhibit is the aggregate root for a published artwork listing. The
// relational row is the single source of truth for which storage objects
// are referenced: ThumbnailURL, ImageURLs and Model3DURL together form the
// referenced asset set.
type Exhibit struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	// GroupID is set when the exhibit is owned by a group instead of a
	// single user.
	GroupID *string `json:"group_id,omitempty"`

	Title            string `json:"title"`
	AuthorWord       string `json:"author_word"`
	Introduction     string `json:"introduction"`
	Size             string `json:"size"`
	ProductionMethod string `json:"production_method"`
	// Price and ForSale are opaque passthrough attributes; no billing logic
	// lives in this service.
	Price   int64 `json:"price"`
	ForSale bool  `json:"for_sale"`

	// ThumbnailURL is never empty for a persisted exhibit.
	ThumbnailURL string `json:"thumbnail_url"`
	// ImageURLs is the ordered gallery; position is significant.
	ImageURLs  []string `json:"image_urls"`
	Model3DURL *string  `json:"model3d_url,omitempty"`
	Distribute bool     `json:"distribute"`

	// Version is the optimistic-concurrency counter; every committed update
	// increments it by exactly one.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
