package domain

import "errors"

var ErrInvalidPhone = errors.New("invalid phone number format")
var ErrIdentityNotFound = errors.New("identity not found")
var ErrAdminExists = errors.New("admin already exists")
var ErrLinkExists = errors.New("link already exists")

// Identity maps a phone number to the chat that registered it.
// Phone is the unique key; re-registration overwrites ChatID (last write wins).
type Identity struct {
	Phone  string `json:"phone" bson:"phone"`
	ChatID int64  `json:"chat_id" bson:"chat_id"`
}

// ValidPhone reports whether s is a well-formed phone number: non-empty and
// ASCII digits only. No length bound is enforced.
func ValidPhone(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
