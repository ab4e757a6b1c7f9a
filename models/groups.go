package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Group is a mailing list that email addresses can join with a code.
type Group struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListName returns the internal listname used by the mailing-list server.
// The group name is the external listname.
func (g *Group) ListName() string {
	return "g" + strings.ReplaceAll(g.ID.String(), "-", "")
}

// Membership links an email address to a group.
type Membership struct {
	GroupID uuid.UUID `json:"groupId"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"isAdmin"`
}

// GroupRequest is the payload used to create a group.
type GroupRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// JoinRequest asks for an email to be added to a group.
type JoinRequest struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Email string `json:"email"`
}

// MembersRequest carries a batch of addresses to add or remove. Raw is
// free text, such as a pasted address list, split on anything that cannot
// appear in an address.
type MembersRequest struct {
	Emails []string `json:"emails,omitempty"`
	Raw    string   `json:"raw,omitempty"`
}

// AdminRequest names a member to promote to admin.
type AdminRequest struct {
	Email string `json:"email"`
}

// GroupResponse represents a group together with its members.
type GroupResponse struct {
	Group   Group        `json:"group"`
	Members []Membership `json:"members"`
}
