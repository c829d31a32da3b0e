package models

import (
	"time"
)

// ShareTarget distinguishes the two share variants.
type ShareTarget string

const (
	ShareTargetNote   ShareTarget = "note"
	ShareTargetFolder ShareTarget = "folder"
)

// ShareRecord grants public read access to a note or a folder via a token.
// Token values are unique across the combined space of note and folder
// shares, and every live token is mirrored in the global registry.
type ShareRecord struct {
	ID           int64       `json:"id"`
	Target       ShareTarget `json:"-"`
	TargetID     int64       `json:"target_id"`
	Token        string      `json:"token"`
	Theme        *string     `json:"theme"`
	Indexable    bool        `json:"indexable"`
	PasswordHash *string     `json:"-"` // bcrypt hash, never plaintext
	Created      time.Time   `json:"created"`
}

// HasPassword reports whether the share is password protected.
func (r *ShareRecord) HasPassword() bool {
	return r.PasswordHash != nil && *r.PasswordHash != ""
}

// ShareStatus is the public-facing view of a target's share state.
type ShareStatus struct {
	Public      bool   `json:"public"`
	URL         string `json:"url,omitempty"`       // short path form
	URLQuery    string `json:"url_query,omitempty"` // query-string form
	Indexable   bool   `json:"indexable"`
	HasPassword bool   `json:"hasPassword"`
	Workspace   string `json:"workspace,omitempty"`
}

// SharedLink is an entry in the global share registry. It maps a live token
// to the owning user and target so an inbound public URL can be routed to
// the correct user's data without scanning all users.
type SharedLink struct {
	Token      string      `json:"token"`
	UserID     int64       `json:"user_id"`
	TargetType ShareTarget `json:"target_type"`
	TargetID   int64       `json:"target_id"`
	CreatedAt  time.Time   `json:"created_at"`
}
