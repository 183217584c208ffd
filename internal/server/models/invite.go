package models

import "time"

// Invite states. A row transitions PENDING -> ACCEPTED or PENDING -> DECLINED
// exactly once; terminal rows are immutable and kept as history.
const (
	InviteStatePending  = "PENDING"
	InviteStateAccepted = "ACCEPTED"
	InviteStateDeclined = "DECLINED"
)

// GroupInvite represents one user's relationship to one group exhibit.
// At most one row per (UserID, GroupID) pair may be PENDING or ACCEPTED
// at any time; the schema enforces this with a partial unique index.
type GroupInvite struct {
	ID        string     `json:"id"`
	GroupID   string     `json:"group_id"`
	UserID    string     `json:"user_id"`
	InviterID string     `json:"inviter_id"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

// GroupInviteView is the read-side projection returned to users listing
// their invites; GroupName is denormalized from the group row.
type GroupInviteView struct {
	GroupInvite
	GroupName string `json:"group_name"`
}
