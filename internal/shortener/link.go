package shortener

import "time"

// Code represents a short URL code.
type Code string

// ShortLink maps a short code to a destination URL owned by a single user.
type ShortLink struct {
	Code      Code
	LongURL   string
	OwnerID   string
	CreatedAt time.Time
}

// OwnedBy reports whether userID owns the link.
func (l *ShortLink) OwnedBy(userID string) bool {
	return userID != "" && l.OwnerID == userID
}
