package models

import "time"

// GroupExhibit is a collective owner of exhibits. Its member roster is
// derived from accepted invite rows, never stored on the group itself.
type GroupExhibit struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
