package model

import "time"

// Member is a group member. Membership is keyed by email.
type Member struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// Group is a collection of members that events are scheduled for.
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Members     []Member  `json:"members"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasMember reports whether a member with the given email is in the group.
func (g Group) HasMember(email string) bool {
	for _, m := range g.Members {
		if m.Email == email {
			return true
		}
	}
	return false
}
